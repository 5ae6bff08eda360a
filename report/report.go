package report

import (
	"encoding/csv"
	"encoding/json"
	"io"
	"sort"
	"strconv"

	"github.com/pkg/errors"

	"github.com/docbench/docbench/bench"
)

// The two renderers below derive from the same finalized run, so the
// values they emit always agree; the CSV is just the flattened view.

// WriteJSON renders the run as an indented, field-complete document.
func WriteJSON(w io.Writer, run *bench.Run) error {
	encoder := json.NewEncoder(w)
	encoder.SetIndent("", "  ")
	if err := encoder.Encode(run); err != nil {
		return errors.Wrap(err, "failed to encode run")
	}
	return nil
}

var csvColumns = []string{
	"database",
	"dataset",
	"operation",
	"duration_seconds",
	"cpu_avg_percent",
	"cpu_max_percent",
	"mem_avg_bytes",
	"mem_max_bytes",
	"sample_count",
	"error",
}

// WriteCSV renders one row per operation, resource summary flattened
// into columns. Extra counters become additional columns, the union of
// keys across the run's operations, sorted for a stable header.
func WriteCSV(w io.Writer, run *bench.Run) error {
	keySet := map[string]bool{}
	for _, result := range run.Results {
		for k := range result.Extra {
			keySet[k] = true
		}
	}
	extraKeys := make([]string, 0, len(keySet))
	for k := range keySet {
		extraKeys = append(extraKeys, k)
	}
	sort.Strings(extraKeys)

	writer := csv.NewWriter(w)
	if err := writer.Write(append(append([]string{}, csvColumns...), extraKeys...)); err != nil {
		return errors.Wrap(err, "failed to write csv header")
	}

	for _, result := range run.Results {
		row := []string{
			run.Database,
			run.Dataset,
			result.Name,
			formatFloat(result.DurationSeconds),
			formatFloat(result.Resources.CPUAvg),
			formatFloat(result.Resources.CPUMax),
			formatFloat(result.Resources.MemAvg),
			strconv.FormatUint(result.Resources.MemMax, 10),
			strconv.Itoa(result.Resources.SampleCount),
			result.Error,
		}
		for _, k := range extraKeys {
			if v, ok := result.Extra[k]; ok {
				row = append(row, formatFloat(v))
			} else {
				row = append(row, "")
			}
		}
		if err := writer.Write(row); err != nil {
			return errors.Wrap(err, "failed to write csv row")
		}
	}

	writer.Flush()
	return errors.Wrap(writer.Error(), "failed to flush csv")
}

func formatFloat(v float64) string {
	return strconv.FormatFloat(v, 'f', -1, 64)
}
