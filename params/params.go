package params

import (
	goflag "flag"
	"time"

	"github.com/blang/semver"
)

const (
	Version = "0.1.0"

	DefaultDockerEndpoint = "unix:///var/run/docker.sock"
	DefaultLogLevel       = "info"
	DefaultConfigFile     = "docbench.yml"
	DefaultResultsDir     = "results"
	DefaultSampleInterval = time.Second
	DefaultStopGrace      = 5 * time.Second
	DefaultBatchSize      = 10000
	DefaultUpdateLimit    = 10000
)

var (
	params = &Params{}
)

type Params struct {
	DockerEndpoint string
	LogLevel       string
	ConfigFile     string
	ResultsDir     string
	SampleInterval time.Duration
	StopGrace      time.Duration
	BatchSize      int
	UpdateLimit    int
	ImportRate     float64
	S3Bucket       string
	Version        semver.Version
}

func init() {
	params.Version = semver.MustParse(Version)

	goflag.StringVar(&params.DockerEndpoint, "docker-endpoint", DefaultDockerEndpoint, "docker endpoint used for container stats")
	goflag.StringVar(&params.LogLevel, "log-level", DefaultLogLevel, "log level")
	goflag.StringVar(&params.ConfigFile, "config", DefaultConfigFile, "path to the benchmark plan")
	goflag.StringVar(&params.ResultsDir, "results-dir", DefaultResultsDir, "directory for report files")
	goflag.DurationVar(&params.SampleInterval, "sample-interval", DefaultSampleInterval, "container stats sampling interval")
	goflag.DurationVar(&params.StopGrace, "stop-grace", DefaultStopGrace, "how long to wait for the sampler to acknowledge a stop")
	goflag.IntVar(&params.BatchSize, "batch-size", DefaultBatchSize, "documents per import batch")
	goflag.IntVar(&params.UpdateLimit, "update-limit", DefaultUpdateLimit, "max documents touched by the update step")
	goflag.Float64Var(&params.ImportRate, "import-rate", 0, "max documents per second during import, 0 means unlimited")
	goflag.StringVar(&params.S3Bucket, "s3-bucket", "", "optional S3 bucket reports are uploaded to")
}

func Get() *Params {
	return params
}

func Parse(args []string) error {
	FlagSetFromGoFlagSet(goflag.CommandLine).Parse(args)
	return nil
}
