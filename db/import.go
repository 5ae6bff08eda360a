package db

import (
	"context"
	"io"
	"time"

	hdrhistogram "github.com/HdrHistogram/hdrhistogram-go"
	"github.com/pkg/errors"
	"golang.org/x/time/rate"

	"github.com/docbench/docbench/dataset"
	"github.com/docbench/docbench/log"
)

type ImportOptions struct {
	// BatchSize is the number of documents per insert call.
	BatchSize int

	// Rate caps imported documents per second. Zero means unlimited.
	Rate float64
}

type ImportResult struct {
	Documents int

	// Per-batch insert latencies, so import runs can be compared on
	// more than the single wall-clock number.
	BatchP50 time.Duration
	BatchP99 time.Duration
}

const progressEvery = 50000

// ImportFile streams file into insert batch by batch. All backends
// funnel imports through here so batching, rate limiting and latency
// tracking behave identically across databases.
func ImportFile(file string, opts ImportOptions, insert func(dataset.Batch) error) (ImportResult, error) {
	if opts.BatchSize <= 0 {
		opts.BatchSize = dataset.DefaultBatchSize
	}

	reader, err := dataset.Open(file, opts.BatchSize)
	if err != nil {
		return ImportResult{}, err
	}
	defer reader.Close()

	var limiter *rate.Limiter
	if opts.Rate > 0 {
		limiter = rate.NewLimiter(rate.Limit(opts.Rate), opts.BatchSize)
	}

	histogram := hdrhistogram.New(1, time.Hour.Microseconds(), 3)

	result := ImportResult{}
	lastProgress := 0
	for {
		batch, err := reader.Next()
		if err == io.EOF {
			break
		}
		if err != nil {
			return result, err
		}

		if limiter != nil {
			if err := limiter.WaitN(context.Background(), len(batch)); err != nil {
				return result, errors.Wrap(err, "rate limiter")
			}
		}

		begin := time.Now()
		if err := insert(batch); err != nil {
			return result, errors.Wrapf(err, "batch insert failed after %d documents", result.Documents)
		}
		_ = histogram.RecordValue(time.Since(begin).Microseconds())

		result.Documents += len(batch)
		if result.Documents-lastProgress >= progressEvery {
			lastProgress = result.Documents
			log.Infof("  %d documents imported...", result.Documents)
		}
	}

	if skipped := reader.Skipped(); skipped > 0 {
		log.Warningf("%d unparseable lines skipped in %s", skipped, file)
	}

	if histogram.TotalCount() > 0 {
		result.BatchP50 = time.Duration(histogram.ValueAtQuantile(50)) * time.Microsecond
		result.BatchP99 = time.Duration(histogram.ValueAtQuantile(99)) * time.Microsecond
	}
	return result, nil
}
