package bench

import (
	"os"
	"time"

	"github.com/pkg/errors"

	"github.com/docbench/docbench/config"
	"github.com/docbench/docbench/db"
	"github.com/docbench/docbench/log"
	"github.com/docbench/docbench/monitor"
)

// Runner drives the fixed lifecycle (import, read, update, delete,
// export) against one database per dataset, measuring every step.
type Runner struct {
	Monitor     *monitor.Monitor
	Interval    time.Duration
	BatchSize   int
	UpdateLimit int
	ImportRate  float64
}

// Run benchmarks d over every dataset. A failed operation aborts the
// remaining steps for that dataset but later datasets still run, and
// every started run is returned (finalized) even when an error is.
func (r *Runner) Run(d db.Database, datasets []config.Dataset) ([]*Run, error) {
	log.Infof("==== benchmarking %s ====", d.Name())

	if err := d.Connect(); err != nil {
		return nil, errors.Wrapf(err, "failed to connect to %s", d.Name())
	}
	defer func() {
		if err := d.Close(); err != nil {
			log.Warningf("closing %s: %v", d.Name(), err)
		}
	}()

	var runs []*Run
	var firstErr error
	for _, ds := range datasets {
		if _, err := os.Stat(ds.File); err != nil {
			log.Warningf("dataset %s not found, skipping", ds.File)
			continue
		}

		run, err := r.runDataset(d, ds)
		runs = append(runs, run)
		if err != nil {
			log.Errorf("%s / %s aborted: %v", d.Name(), ds.Label, err)
			if firstErr == nil {
				firstErr = err
			}
		}
	}
	return runs, firstErr
}

func (r *Runner) runDataset(d db.Database, ds config.Dataset) (*Run, error) {
	log.Infof("== dataset %s ==", ds.Label)

	run := NewRun(d.Name(), ds.Label)
	defer run.Finalize()

	steps := []struct {
		name string
		work UnitOfWork
	}{
		{"import", func() (map[string]float64, error) {
			result, err := d.Import(ds.File, ds.Collection, db.ImportOptions{
				BatchSize: r.BatchSize,
				Rate:      r.ImportRate,
			})
			extra := map[string]float64{"documents": float64(result.Documents)}
			if result.BatchP50 > 0 {
				extra["batch_p50_ms"] = float64(result.BatchP50.Microseconds()) / 1000
				extra["batch_p99_ms"] = float64(result.BatchP99.Microseconds()) / 1000
			}
			return extra, err
		}},
		{"read", func() (map[string]float64, error) {
			return nil, d.Read(ds.Collection)
		}},
		{"update", func() (map[string]float64, error) {
			updated, err := d.Update(ds.Collection, r.UpdateLimit)
			return map[string]float64{"documents_updated": float64(updated)}, err
		}},
		{"delete", func() (map[string]float64, error) {
			deleted, err := d.Delete(ds.Collection)
			return map[string]float64{"documents_deleted": float64(deleted)}, err
		}},
		{"export", func() (map[string]float64, error) {
			path, err := d.Export(ds.Collection)
			if err == nil {
				log.Infof("exported %s to %s", ds.Collection, path)
			}
			return nil, err
		}},
	}

	for _, step := range steps {
		result, err := Measure(r.Monitor, step.name, d.ContainerName(), r.Interval, step.work)
		if appendErr := run.Append(result); appendErr != nil {
			return run, appendErr
		}
		if err != nil {
			// abort the remaining steps for this dataset; the partial
			// run is still finalized and persisted by the caller
			return run, err
		}
	}
	return run, nil
}
