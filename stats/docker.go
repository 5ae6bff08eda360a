package stats

import (
	"time"

	docker "github.com/fsouza/go-dockerclient"
	"github.com/pkg/errors"
)

const statsTimeout = 5 * time.Second

// DockerBackend reads container stats over the docker API. Each Current
// call is a one-shot (non-streaming) stats query, the same numbers
// `docker stats --no-stream` reports.
type DockerBackend struct {
	client *docker.Client
}

func NewDockerBackend(endpoint string) (*DockerBackend, error) {
	client, err := docker.NewClient(endpoint)
	if err != nil {
		return nil, errors.Wrap(err, "failed to create docker client")
	}
	return &DockerBackend{client: client}, nil
}

func (b *DockerBackend) Ping() error {
	return b.client.Ping()
}

func (b *DockerBackend) Current(container string) (Stat, error) {
	statsC := make(chan *docker.Stats, 1)
	errC := make(chan error, 1)
	go func() {
		errC <- b.client.Stats(docker.StatsOptions{
			ID:                container,
			Stats:             statsC,
			Stream:            false,
			Timeout:           statsTimeout,
			InactivityTimeout: statsTimeout,
		})
	}()

	s, ok := <-statsC
	if err := <-errC; err != nil {
		return Stat{}, errors.Wrapf(err, "failed to read stats for %s", container)
	}
	if !ok || s == nil {
		return Stat{}, errors.Errorf("no stats returned for %s", container)
	}

	return Stat{
		CPUPercent:  cpuPercent(s),
		MemoryBytes: memoryUsage(s),
	}, nil
}

// cpuPercent mirrors the docker CLI calculation: the container's cpu time
// delta over the host's, scaled by the number of online CPUs.
func cpuPercent(s *docker.Stats) float64 {
	cpuDelta := float64(s.CPUStats.CPUUsage.TotalUsage) - float64(s.PreCPUStats.CPUUsage.TotalUsage)
	systemDelta := float64(s.CPUStats.SystemCPUUsage) - float64(s.PreCPUStats.SystemCPUUsage)
	if cpuDelta <= 0 || systemDelta <= 0 {
		return 0
	}

	cpus := float64(s.CPUStats.OnlineCPUs)
	if cpus == 0 {
		cpus = float64(len(s.CPUStats.CPUUsage.PercpuUsage))
	}
	if cpus == 0 {
		cpus = 1
	}
	return cpuDelta / systemDelta * cpus * 100
}

// memoryUsage excludes the page cache, like the docker CLI: cache on
// cgroup v1, inactive_file on v2.
func memoryUsage(s *docker.Stats) uint64 {
	usage := s.MemoryStats.Usage
	if cache := s.MemoryStats.Stats.Cache; cache > 0 && cache < usage {
		return usage - cache
	}
	if inactive := s.MemoryStats.Stats.InactiveFile; inactive > 0 && inactive < usage {
		return usage - inactive
	}
	return usage
}
