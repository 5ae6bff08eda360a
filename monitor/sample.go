package monitor

import "time"

// Sample is one timestamped CPU/RAM reading for a monitored container.
// Samples within a session are ordered by capture time.
type Sample struct {
	Timestamp   time.Time `json:"timestamp"`
	CPUPercent  float64   `json:"cpu_percent"`
	MemoryBytes uint64    `json:"memory_bytes"`
}

// Summary aggregates the samples of one monitoring session. A session
// that collected nothing summarizes to all zeros.
type Summary struct {
	CPUAvg      float64 `json:"cpu_avg_percent"`
	CPUMax      float64 `json:"cpu_max_percent"`
	MemAvg      float64 `json:"mem_avg_bytes"`
	MemMax      uint64  `json:"mem_max_bytes"`
	SampleCount int     `json:"sample_count"`
}

// Summarize computes avg/max aggregates over a sample sequence.
func Summarize(samples []Sample) Summary {
	summary := Summary{SampleCount: len(samples)}
	if len(samples) == 0 {
		return summary
	}

	var cpuSum, memSum float64
	for _, s := range samples {
		cpuSum += s.CPUPercent
		memSum += float64(s.MemoryBytes)
		if s.CPUPercent > summary.CPUMax {
			summary.CPUMax = s.CPUPercent
		}
		if s.MemoryBytes > summary.MemMax {
			summary.MemMax = s.MemoryBytes
		}
	}
	summary.CPUAvg = cpuSum / float64(len(samples))
	summary.MemAvg = memSum / float64(len(samples))
	return summary
}
