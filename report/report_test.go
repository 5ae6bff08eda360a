package report

import (
	"bytes"
	"encoding/csv"
	"encoding/json"
	"os"
	"path/filepath"
	"strconv"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/docbench/docbench/bench"
	"github.com/docbench/docbench/monitor"
)

func sampleRun(t *testing.T) *bench.Run {
	t.Helper()
	run := bench.NewRun("MongoDB", "Goodreads")
	require.NoError(t, run.Append(bench.OperationResult{
		Name:            "import",
		DurationSeconds: 12.3456,
		Resources: monitor.Summary{
			CPUAvg:      42.5,
			CPUMax:      180.25,
			MemAvg:      1.5e9,
			MemMax:      2 << 30,
			SampleCount: 12,
		},
		Extra: map[string]float64{"documents": 250000, "batch_p50_ms": 85.2},
	}))
	require.NoError(t, run.Append(bench.OperationResult{
		Name:            "read",
		DurationSeconds: 0.31,
		Resources:       monitor.Summary{SampleCount: 0},
	}))
	require.NoError(t, run.Append(bench.OperationResult{
		Name:            "update",
		DurationSeconds: 2.5,
		Resources:       monitor.Summary{CPUAvg: 10, CPUMax: 15, SampleCount: 2},
		Extra:           map[string]float64{"documents_updated": 10000},
		Error:           "write conflict",
	}))
	run.Finalize()
	return run
}

func TestJSONAndCSVAgree(t *testing.T) {
	run := sampleRun(t)

	var jsonBuf, csvBuf bytes.Buffer
	require.NoError(t, WriteJSON(&jsonBuf, run))
	require.NoError(t, WriteCSV(&csvBuf, run))

	decoded := bench.Run{}
	require.NoError(t, json.Unmarshal(jsonBuf.Bytes(), &decoded))
	require.Len(t, decoded.Results, 3)

	rows, err := csv.NewReader(bytes.NewReader(csvBuf.Bytes())).ReadAll()
	require.NoError(t, err)
	require.Len(t, rows, 4)

	header := rows[0]
	col := func(name string) int {
		for i, h := range header {
			if h == name {
				return i
			}
		}
		t.Fatalf("column %q missing", name)
		return -1
	}

	// extra keys across all operations, flattened and sorted
	assert.Equal(t, "batch_p50_ms", header[len(csvColumns)])
	assert.Equal(t, "documents", header[len(csvColumns)+1])
	assert.Equal(t, "documents_updated", header[len(csvColumns)+2])

	for i, result := range decoded.Results {
		row := rows[i+1]
		assert.Equal(t, decoded.Database, row[col("database")])
		assert.Equal(t, result.Name, row[col("operation")])

		duration, err := strconv.ParseFloat(row[col("duration_seconds")], 64)
		require.NoError(t, err)
		assert.Equal(t, result.DurationSeconds, duration)

		cpuMax, err := strconv.ParseFloat(row[col("cpu_max_percent")], 64)
		require.NoError(t, err)
		assert.Equal(t, result.Resources.CPUMax, cpuMax)

		assert.Equal(t, strconv.Itoa(result.Resources.SampleCount), row[col("sample_count")])
		assert.Equal(t, result.Error, row[col("error")])
	}

	// re-aggregating the tabular form reproduces the structured form
	var csvTotal, jsonTotal, csvCPUMax, jsonCPUMax float64
	for i, result := range decoded.Results {
		jsonTotal += result.DurationSeconds
		if result.Resources.CPUMax > jsonCPUMax {
			jsonCPUMax = result.Resources.CPUMax
		}
		d, _ := strconv.ParseFloat(rows[i+1][col("duration_seconds")], 64)
		csvTotal += d
		m, _ := strconv.ParseFloat(rows[i+1][col("cpu_max_percent")], 64)
		if m > csvCPUMax {
			csvCPUMax = m
		}
	}
	assert.Equal(t, jsonTotal, csvTotal)
	assert.Equal(t, jsonCPUMax, csvCPUMax)
}

func TestCSVMissingExtraIsEmpty(t *testing.T) {
	run := sampleRun(t)

	var buf bytes.Buffer
	require.NoError(t, WriteCSV(&buf, run))

	rows, err := csv.NewReader(&buf).ReadAll()
	require.NoError(t, err)

	// the read row has no extra counters at all
	readRow := rows[2]
	for i := len(csvColumns); i < len(readRow); i++ {
		assert.Empty(t, readRow[i])
	}
}

func TestFileSinkWritesBothFormats(t *testing.T) {
	dir := filepath.Join(t.TempDir(), "results")
	sink := &FileSink{Dir: dir}
	require.NoError(t, sink.Persist(sampleRun(t)))

	entries, err := os.ReadDir(dir)
	require.NoError(t, err)
	require.Len(t, entries, 2)

	var exts []string
	for _, e := range entries {
		exts = append(exts, filepath.Ext(e.Name()))
		assert.Contains(t, e.Name(), "metrics_mongodb_goodreads_")
	}
	assert.ElementsMatch(t, []string{".json", ".csv"}, exts)
}

func TestRunKeyIsFilesystemSafe(t *testing.T) {
	run := bench.NewRun("Raven DB", "My Set")
	run.Finalize()

	key := runKey(run)
	assert.NotContains(t, key, " ")
	assert.Contains(t, key, "raven-db")
	assert.Contains(t, key, "my-set")
}
