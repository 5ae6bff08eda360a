package stats

import (
	"testing"

	docker "github.com/fsouza/go-dockerclient"
	"github.com/stretchr/testify/assert"
)

func TestCpuPercent(t *testing.T) {
	s := &docker.Stats{}
	s.PreCPUStats.CPUUsage.TotalUsage = 1000
	s.PreCPUStats.SystemCPUUsage = 10000
	s.CPUStats.CPUUsage.TotalUsage = 2000
	s.CPUStats.SystemCPUUsage = 20000
	s.CPUStats.OnlineCPUs = 4

	// 1000/10000 of the host, 4 cpus: 40%
	assert.InDelta(t, 40.0, cpuPercent(s), 0.001)
}

func TestCpuPercentCanExceedOneCore(t *testing.T) {
	s := &docker.Stats{}
	s.CPUStats.CPUUsage.TotalUsage = 9000
	s.CPUStats.SystemCPUUsage = 20000
	s.PreCPUStats.CPUUsage.TotalUsage = 1000
	s.PreCPUStats.SystemCPUUsage = 10000
	s.CPUStats.OnlineCPUs = 8

	// multi-core utilization is reported unclamped
	assert.InDelta(t, 640.0, cpuPercent(s), 0.001)
}

func TestCpuPercentNoDelta(t *testing.T) {
	s := &docker.Stats{}
	s.CPUStats.CPUUsage.TotalUsage = 1000
	s.PreCPUStats.CPUUsage.TotalUsage = 1000

	assert.Equal(t, 0.0, cpuPercent(s))
}

func TestMemoryUsageSubtractsCache(t *testing.T) {
	s := &docker.Stats{}
	s.MemoryStats.Usage = 1000
	s.MemoryStats.Stats.Cache = 300

	assert.Equal(t, uint64(700), memoryUsage(s))
}

func TestMemoryUsageInactiveFile(t *testing.T) {
	s := &docker.Stats{}
	s.MemoryStats.Usage = 1000
	s.MemoryStats.Stats.InactiveFile = 250

	assert.Equal(t, uint64(750), memoryUsage(s))
}

func TestMemoryUsagePlain(t *testing.T) {
	s := &docker.Stats{}
	s.MemoryStats.Usage = 1000

	assert.Equal(t, uint64(1000), memoryUsage(s))
}
