package main

import (
	"os"

	"github.com/pkg/errors"
	"github.com/urfave/cli"

	"github.com/docbench/docbench/bench"
	"github.com/docbench/docbench/config"
	"github.com/docbench/docbench/db"
	"github.com/docbench/docbench/db/arango"
	"github.com/docbench/docbench/db/mongo"
	"github.com/docbench/docbench/db/raven"
	"github.com/docbench/docbench/log"
	"github.com/docbench/docbench/monitor"
	"github.com/docbench/docbench/params"
	"github.com/docbench/docbench/report"
	"github.com/docbench/docbench/stats"
)

func main() {
	app := cli.NewApp()

	app.Name = "docbench"
	app.Usage = "Benchmark document databases.  Import, CRUD, export, with container stats."
	app.Version = params.Version
	app.Commands = []cli.Command{
		{
			Name:   "run",
			Usage:  "run the benchmark plan",
			Action: handlerRun,
			Flags: []cli.Flag{
				cli.StringFlag{Name: "config", Usage: "path to the benchmark plan"},
				cli.StringFlag{Name: "log-level"},
				cli.StringFlag{Name: "results-dir"},
				cli.StringFlag{Name: "s3-bucket"},
			},
		},
	}

	app.Run(os.Args)
}

func handlerRun(c *cli.Context) error {
	if err := params.Parse(nil); err != nil {
		return err
	}
	p := params.Get()
	if v := c.String("config"); v != "" {
		p.ConfigFile = v
	}
	if v := c.String("log-level"); v != "" {
		p.LogLevel = v
	}
	if v := c.String("results-dir"); v != "" {
		p.ResultsDir = v
	}
	if v := c.String("s3-bucket"); v != "" {
		p.S3Bucket = v
	}
	log.SetLevel(p.LogLevel)

	cfg, err := config.Load(p.ConfigFile)
	if err != nil {
		log.Errorf("%v", err)
		return err
	}

	var backend stats.Backend
	if docker, err := stats.NewDockerBackend(p.DockerEndpoint); err != nil {
		// benchmarks still run, resource columns just come back empty
		log.Warningf("docker stats unavailable, resource monitoring disabled: %v", err)
	} else {
		backend = docker
	}

	runner := &bench.Runner{
		Monitor:     monitor.New(backend, p.StopGrace),
		Interval:    p.SampleInterval,
		BatchSize:   p.BatchSize,
		UpdateLimit: p.UpdateLimit,
		ImportRate:  p.ImportRate,
	}

	sinks := []bench.Sink{&report.FileSink{Dir: p.ResultsDir}}
	if p.S3Bucket != "" {
		s3, err := report.NewS3Sink(p.S3Bucket)
		if err != nil {
			log.Errorf("%v", err)
			return err
		}
		sinks = append(sinks, s3)
	}

	var firstErr error
	for _, dbCfg := range cfg.Databases {
		database, err := buildDatabase(dbCfg, p.ResultsDir)
		if err != nil {
			log.Errorf("%v", err)
			if firstErr == nil {
				firstErr = err
			}
			continue
		}

		runs, err := runner.Run(database, cfg.Datasets)
		if err != nil {
			log.Errorf("%s finished with errors: %v", dbCfg.Name, err)
			if firstErr == nil {
				firstErr = err
			}
		}

		// failed runs are persisted too, partial numbers beat none
		for _, run := range runs {
			for _, sink := range sinks {
				if err := sink.Persist(run); err != nil {
					log.Errorf("%v", err)
					if firstErr == nil {
						firstErr = err
					}
				}
			}
			report.LogSummary(run)
		}
	}
	return firstErr
}

func buildDatabase(cfg config.Database, exportDir string) (db.Database, error) {
	switch cfg.Kind {
	case "mongodb":
		return mongo.New(cfg.URL, cfg.Database, cfg.Container, exportDir), nil
	case "arangodb":
		return arango.New(cfg.URL, cfg.Username, cfg.Password, cfg.Database, cfg.Container, exportDir), nil
	case "ravendb":
		return raven.New(cfg.URL, cfg.Database, cfg.Container, exportDir), nil
	default:
		return nil, errors.Errorf("unknown database kind %q", cfg.Kind)
	}
}
