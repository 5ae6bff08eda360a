package bench

import (
	"time"

	"github.com/pkg/errors"

	"github.com/docbench/docbench/log"
	"github.com/docbench/docbench/monitor"
)

// UnitOfWork is the operation being measured. It returns counters for
// the result's extra map.
type UnitOfWork func() (map[string]float64, error)

// Measure executes work exactly once, timing it and sampling container
// concurrently. An OperationResult is produced on every exit path; when
// work fails its error is returned after the monitor has been stopped.
//
// Timing wraps only the work itself. Monitor start/stop overhead and
// sampling granularity never affect the recorded duration.
func Measure(mon *monitor.Monitor, name, container string, interval time.Duration, work UnitOfWork) (OperationResult, error) {
	log.Infof("--- %s ---", name)

	if err := mon.Start(container, interval); err != nil {
		// best-effort: the operation proceeds without resource data
		log.Warningf("resource monitoring unavailable for %s: %v", name, err)
	}

	stopped := false
	defer func() {
		if !stopped {
			mon.Stop()
		}
	}()

	begin := time.Now()
	extra, workErr := work()
	duration := time.Since(begin)

	summary, stopErr := mon.Stop()
	stopped = true
	if stopErr != nil {
		log.Warningf("sampler for %s: %v", name, stopErr)
	}

	result := OperationResult{
		Name:            name,
		DurationSeconds: duration.Seconds(),
		Resources:       summary,
		Extra:           extra,
	}

	if workErr != nil {
		result.Error = workErr.Error()
		log.Errorf("%s failed after %.4fs: %v", name, result.DurationSeconds, workErr)
		return result, errors.Wrapf(workErr, "operation %s failed", name)
	}

	log.Infof("%s finished in %.4fs (cpu avg %.1f%%, %d samples)",
		name, result.DurationSeconds, summary.CPUAvg, summary.SampleCount)
	return result, nil
}
