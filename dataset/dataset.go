package dataset

import (
	"bufio"
	"encoding/csv"
	"encoding/json"
	"io"
	"os"
	"strconv"
	"strings"

	"github.com/pkg/errors"
)

// Batch is a slice of schemaless documents.
type Batch []map[string]interface{}

const (
	DefaultBatchSize = 10000

	// JSON-lines files can carry full review texts on one line.
	maxLineBytes = 16 * 1024 * 1024
)

// Reader streams a JSON-lines or CSV dataset in batches. Rows or lines
// that fail to parse are counted and skipped, never fatal.
type Reader struct {
	file      *os.File
	batchSize int
	skipped   int

	scanner *bufio.Scanner
	csv     *csv.Reader
	header  []string
}

// Open prepares a reader for path. Files ending in .csv are parsed as
// CSV with a header row, anything else as one JSON document per line.
func Open(path string, batchSize int) (*Reader, error) {
	if batchSize <= 0 {
		batchSize = DefaultBatchSize
	}

	file, err := os.Open(path)
	if err != nil {
		return nil, errors.Wrapf(err, "failed to open dataset %s", path)
	}

	reader := &Reader{file: file, batchSize: batchSize}
	if strings.HasSuffix(strings.ToLower(path), ".csv") {
		reader.csv = csv.NewReader(file)
		reader.csv.FieldsPerRecord = -1
		header, err := reader.csv.Read()
		if err != nil {
			file.Close()
			return nil, errors.Wrapf(err, "failed to read csv header of %s", path)
		}
		reader.header = header
	} else {
		scanner := bufio.NewScanner(file)
		scanner.Buffer(make([]byte, 0, 64*1024), maxLineBytes)
		reader.scanner = scanner
	}
	return reader, nil
}

// Next returns the next batch, or io.EOF once the file is exhausted.
func (r *Reader) Next() (Batch, error) {
	if r.csv != nil {
		return r.nextCSV()
	}
	return r.nextJSON()
}

func (r *Reader) nextJSON() (Batch, error) {
	batch := make(Batch, 0, r.batchSize)
	for len(batch) < r.batchSize {
		if !r.scanner.Scan() {
			if err := r.scanner.Err(); err != nil {
				return batch, errors.Wrap(err, "failed to read dataset")
			}
			break
		}
		line := r.scanner.Bytes()
		if len(line) == 0 {
			continue
		}
		doc := map[string]interface{}{}
		if err := json.Unmarshal(line, &doc); err != nil {
			r.skipped++
			continue
		}
		batch = append(batch, doc)
	}
	if len(batch) == 0 {
		return nil, io.EOF
	}
	return batch, nil
}

func (r *Reader) nextCSV() (Batch, error) {
	batch := make(Batch, 0, r.batchSize)
	for len(batch) < r.batchSize {
		row, err := r.csv.Read()
		if err == io.EOF {
			break
		}
		if err != nil {
			r.skipped++
			continue
		}
		doc := make(map[string]interface{}, len(r.header))
		for i, name := range r.header {
			if i >= len(row) {
				doc[name] = nil
				continue
			}
			doc[name] = convert(row[i])
		}
		batch = append(batch, doc)
	}
	if len(batch) == 0 {
		return nil, io.EOF
	}
	return batch, nil
}

// convert maps a CSV field to the value type the JSON datasets would
// carry: numbers stay numbers, empty fields become null.
func convert(field string) interface{} {
	if field == "" {
		return nil
	}
	if n, err := strconv.ParseInt(field, 10, 64); err == nil {
		return n
	}
	if f, err := strconv.ParseFloat(field, 64); err == nil {
		return f
	}
	return field
}

// Skipped reports how many lines or rows failed to parse so far.
func (r *Reader) Skipped() int {
	return r.skipped
}

func (r *Reader) Close() error {
	return r.file.Close()
}
