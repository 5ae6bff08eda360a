package report

import (
	"time"

	"code.cloudfoundry.org/bytefmt"

	"github.com/docbench/docbench/bench"
	"github.com/docbench/docbench/log"
)

// LogSummary prints the condensed per-operation view of a run, the
// last thing an interactive user sees.
func LogSummary(run *bench.Run) {
	log.Infof("%s / %s (%s)", run.Database, run.Dataset,
		run.FinishedAt.Sub(run.StartedAt).Round(time.Millisecond))

	for _, result := range run.Results {
		res := result.Resources
		if result.Error != "" {
			log.Infof("  %-8s %9.4fs  FAILED: %s", result.Name, result.DurationSeconds, result.Error)
			continue
		}
		log.Infof("  %-8s %9.4fs  cpu avg %6.1f%% max %6.1f%%  mem avg %7s max %7s  (%d samples)",
			result.Name,
			result.DurationSeconds,
			res.CPUAvg,
			res.CPUMax,
			bytefmt.ByteSize(uint64(res.MemAvg)),
			bytefmt.ByteSize(res.MemMax),
			res.SampleCount)
	}
}
