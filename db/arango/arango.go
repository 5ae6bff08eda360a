package arango

import (
	"bufio"
	"context"
	"encoding/json"
	"fmt"
	"math"
	"os"
	"path/filepath"

	driver "github.com/arangodb/go-driver"
	"github.com/arangodb/go-driver/http"
	"github.com/pkg/errors"

	"github.com/docbench/docbench/dataset"
	"github.com/docbench/docbench/db"
	"github.com/docbench/docbench/log"
)

// Arango benchmarks an ArangoDB instance. Every run starts from a
// freshly created database so imports never see stale documents.
type Arango struct {
	endpoint  string
	username  string
	password  string
	database  string
	container string
	exportDir string

	client driver.Client
	db     driver.Database
}

func New(endpoint, username, password, database, container, exportDir string) *Arango {
	return &Arango{
		endpoint:  endpoint,
		username:  username,
		password:  password,
		database:  database,
		container: container,
		exportDir: exportDir,
	}
}

func (a *Arango) Name() string          { return "ArangoDB" }
func (a *Arango) ContainerName() string { return a.container }

func (a *Arango) Connect() error {
	conn, err := http.NewConnection(http.ConnectionConfig{
		Endpoints: []string{a.endpoint},
	})
	if err != nil {
		return errors.Wrap(err, "failed to create arangodb connection")
	}

	client, err := driver.NewClient(driver.ClientConfig{
		Connection:     conn,
		Authentication: driver.BasicAuthentication(a.username, a.password),
	})
	if err != nil {
		return errors.Wrap(err, "failed to create arangodb client")
	}

	ctx := context.Background()
	exists, err := client.DatabaseExists(ctx, a.database)
	if err != nil {
		return errors.Wrap(err, "failed to reach arangodb")
	}
	if exists {
		stale, err := client.Database(ctx, a.database)
		if err != nil {
			return errors.Wrapf(err, "failed to open database %s", a.database)
		}
		if err := stale.Remove(ctx); err != nil {
			return errors.Wrapf(err, "failed to drop database %s", a.database)
		}
	}

	database, err := client.CreateDatabase(ctx, a.database, nil)
	if err != nil {
		return errors.Wrapf(err, "failed to create database %s", a.database)
	}

	a.client = client
	a.db = database
	log.Infof("connected to arangodb database %s", a.database)
	return nil
}

func (a *Arango) Import(file, collection string, opts db.ImportOptions) (db.ImportResult, error) {
	ctx := context.Background()

	exists, err := a.db.CollectionExists(ctx, collection)
	if err != nil {
		return db.ImportResult{}, errors.Wrap(err, "failed to check collection")
	}
	if exists {
		stale, err := a.db.Collection(ctx, collection)
		if err != nil {
			return db.ImportResult{}, errors.Wrapf(err, "failed to open %s", collection)
		}
		if err := stale.Remove(ctx); err != nil {
			return db.ImportResult{}, errors.Wrapf(err, "failed to drop %s", collection)
		}
	}
	col, err := a.db.CreateCollection(ctx, collection, nil)
	if err != nil {
		return db.ImportResult{}, errors.Wrapf(err, "failed to create %s", collection)
	}

	return db.ImportFile(file, opts, func(batch dataset.Batch) error {
		docs := make([]map[string]interface{}, len(batch))
		for i, doc := range batch {
			docs[i] = clean(doc)
		}
		_, _, err := col.CreateDocuments(ctx, docs)
		return err
	})
}

// clean strips reserved keys and replaces non-finite floats, which the
// velocypack encoder rejects.
func clean(doc map[string]interface{}) map[string]interface{} {
	out := make(map[string]interface{}, len(doc))
	for k, v := range doc {
		if k == "_id" || k == "_key" || k == "_rev" {
			continue
		}
		if f, ok := v.(float64); ok && (math.IsNaN(f) || math.IsInf(f, 0)) {
			out[k] = nil
			continue
		}
		out[k] = v
	}
	return out
}

// filterAQL is the fixed benchmark query in AQL form, matching the
// predicates the other backends use.
func filterAQL(collection string) string {
	if collection == "amazon" {
		return "doc.Score > 4 OR CONTAINS(LOWER(doc.Summary), 'good')"
	}
	return "doc.rating >= 3" +
		" OR CONTAINS(LOWER(doc.review_text), 'fantastic')" +
		" OR CONTAINS(LOWER(doc.review_text), 'suspense')" +
		" OR CONTAINS(LOWER(doc.review_text), 'story')"
}

func (a *Arango) Read(collection string) error {
	ctx := context.Background()

	cursor, err := a.db.Query(ctx, fmt.Sprintf("FOR doc IN %s LIMIT 1 RETURN doc", collection), nil)
	if err != nil {
		return errors.Wrap(err, "failed to read single document")
	}
	var doc map[string]interface{}
	if _, err := cursor.ReadDocument(ctx, &doc); err != nil && !driver.IsNoMoreDocuments(err) {
		cursor.Close()
		return errors.Wrap(err, "failed to decode document")
	}
	cursor.Close()

	query := fmt.Sprintf("RETURN LENGTH(FOR doc IN %s FILTER %s RETURN 1)", collection, filterAQL(collection))
	cursor, err = a.db.Query(ctx, query, nil)
	if err != nil {
		return errors.Wrap(err, "failed to count matching documents")
	}
	defer cursor.Close()

	var count int
	if _, err := cursor.ReadDocument(ctx, &count); err != nil {
		return errors.Wrap(err, "failed to decode count")
	}
	log.Infof("  %d documents match the read query", count)
	return nil
}

func (a *Arango) Update(collection string, limit int) (int, error) {
	ctx := driver.WithQueryCount(context.Background())

	query := fmt.Sprintf(
		"FOR doc IN %s FILTER %s LIMIT @limit UPDATE doc WITH { benchmark_updated: true } IN %s RETURN 1",
		collection, filterAQL(collection), collection)
	cursor, err := a.db.Query(ctx, query, map[string]interface{}{"limit": limit})
	if err != nil {
		return 0, errors.Wrap(err, "failed to update documents")
	}
	defer cursor.Close()

	return int(cursor.Count()), nil
}

func (a *Arango) Delete(collection string) (int, error) {
	ctx := driver.WithQueryCount(context.Background())

	query := fmt.Sprintf(
		"FOR doc IN %s FILTER doc.benchmark_updated == true REMOVE doc IN %s RETURN 1",
		collection, collection)
	cursor, err := a.db.Query(ctx, query, nil)
	if err != nil {
		return 0, errors.Wrap(err, "failed to delete documents")
	}
	defer cursor.Close()

	return int(cursor.Count()), nil
}

func (a *Arango) Export(collection string) (string, error) {
	ctx := context.Background()

	cursor, err := a.db.Query(ctx, fmt.Sprintf("FOR doc IN %s RETURN doc", collection), nil)
	if err != nil {
		return "", errors.Wrap(err, "failed to scan collection")
	}
	defer cursor.Close()

	if err := os.MkdirAll(a.exportDir, 0755); err != nil {
		return "", errors.Wrap(err, "failed to create export dir")
	}
	path := filepath.Join(a.exportDir, fmt.Sprintf("export_arangodb_%s.json", collection))
	file, err := os.Create(path)
	if err != nil {
		return "", errors.Wrapf(err, "failed to create %s", path)
	}
	defer file.Close()

	writer := bufio.NewWriter(file)
	encoder := json.NewEncoder(writer)
	count := 0
	for {
		var doc map[string]interface{}
		if _, err := cursor.ReadDocument(ctx, &doc); driver.IsNoMoreDocuments(err) {
			break
		} else if err != nil {
			return "", errors.Wrap(err, "failed to decode document")
		}
		if err := encoder.Encode(doc); err != nil {
			return "", errors.Wrap(err, "failed to write document")
		}
		count++
	}
	if err := writer.Flush(); err != nil {
		return "", errors.Wrap(err, "failed to flush export")
	}

	log.Infof("  %d documents exported", count)
	return path, nil
}

func (a *Arango) Close() error {
	// the http connection has no explicit shutdown
	a.client = nil
	a.db = nil
	return nil
}
