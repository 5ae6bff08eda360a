package raven

import (
	"bufio"
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"

	ravendb "github.com/ravendb/ravendb-go-client"
	"github.com/pkg/errors"

	"github.com/docbench/docbench/dataset"
	"github.com/docbench/docbench/db"
	"github.com/docbench/docbench/log"
)

const pageSize = 1000

// Raven benchmarks a RavenDB instance. The database is dropped and
// recreated on connect so every run starts clean.
type Raven struct {
	url       string
	database  string
	container string
	exportDir string

	store *ravendb.DocumentStore
}

func New(url, database, container, exportDir string) *Raven {
	return &Raven{
		url:       url,
		database:  database,
		container: container,
		exportDir: exportDir,
	}
}

func (r *Raven) Name() string          { return "RavenDB" }
func (r *Raven) ContainerName() string { return r.container }

func (r *Raven) Connect() error {
	store := ravendb.NewDocumentStore([]string{r.url}, r.database)
	if err := store.Initialize(); err != nil {
		return errors.Wrap(err, "failed to initialize ravendb store")
	}

	// first run has nothing to drop
	if err := store.Maintenance().Server().Send(ravendb.NewDeleteDatabasesOperation(r.database, true)); err != nil {
		log.Debugf("dropping database %s: %v", r.database, err)
	}

	record := ravendb.DatabaseRecord{DatabaseName: r.database}
	if err := store.Maintenance().Server().Send(ravendb.NewCreateDatabaseOperation(&record, 1)); err != nil {
		store.Close()
		return errors.Wrapf(err, "failed to create database %s", r.database)
	}

	r.store = store
	log.Infof("connected to ravendb database %s", r.database)
	return nil
}

func (r *Raven) Import(file, collection string, opts db.ImportOptions) (db.ImportResult, error) {
	bulk := r.store.BulkInsert("")

	result, err := db.ImportFile(file, opts, func(batch dataset.Batch) error {
		for _, doc := range batch {
			delete(doc, "_id")
			metadata := &ravendb.MetadataAsDictionary{}
			metadata.Put("@collection", collection)
			if _, err := bulk.Store(doc, metadata); err != nil {
				return err
			}
		}
		return nil
	})
	if closeErr := bulk.Close(); closeErr != nil && err == nil {
		return db.ImportResult{}, errors.Wrap(closeErr, "failed to finish bulk insert")
	}
	if err != nil {
		return db.ImportResult{}, err
	}

	r.createIndex(collection)
	return result, nil
}

// createIndex builds the static index the benchmark queries hit, so the
// read step measures query time rather than cold indexing. Failure only
// degrades the later steps, it never fails the import.
func (r *Raven) createIndex(collection string) {
	indexDef := ravendb.NewIndexDefinition()
	if collection == "amazon" {
		indexDef.Name = "Amazon/ByScore"
		indexDef.Maps = []string{
			fmt.Sprintf("from doc in docs.%s select new { doc.Score, doc.Summary }", collection),
		}
	} else {
		indexDef.Name = "Goodreads/ByRating"
		indexDef.Maps = []string{
			fmt.Sprintf("from doc in docs.%s select new { doc.rating, doc.review_text }", collection),
		}
	}

	if err := r.store.Maintenance().Send(ravendb.NewPutIndexesOperation(indexDef)); err != nil {
		log.Warningf("failed to create index %s: %v", indexDef.Name, err)
		return
	}
	log.Infof("  created index %s", indexDef.Name)
}

// query applies the fixed benchmark predicate. The text-search arm the
// other backends carry needs a full-text index here, so the filter is
// the numeric one only.
func query(session *ravendb.DocumentSession, collection string) *ravendb.DocumentQuery {
	q := session.QueryCollection(collection)
	if collection == "amazon" {
		return q.WhereGreaterThan("Score", 4)
	}
	return q.WhereGreaterThanOrEqual("rating", 3)
}

func (r *Raven) Read(collection string) error {
	session, err := r.store.OpenSession("")
	if err != nil {
		return errors.Wrap(err, "failed to open session")
	}
	defer session.Close()

	var docs []map[string]interface{}
	if err := session.QueryCollection(collection).Take(1).GetResults(&docs); err != nil {
		return errors.Wrap(err, "failed to read single document")
	}

	count, err := query(session, collection).Count()
	if err != nil {
		return errors.Wrap(err, "failed to count matching documents")
	}
	log.Infof("  %d documents match the read query", count)
	return nil
}

func (r *Raven) Update(collection string, limit int) (int, error) {
	session, err := r.store.OpenSession("")
	if err != nil {
		return 0, errors.Wrap(err, "failed to open session")
	}
	defer session.Close()

	var docs []map[string]interface{}
	if err := query(session, collection).Take(limit).GetResults(&docs); err != nil {
		return 0, errors.Wrap(err, "failed to select update candidates")
	}

	for _, doc := range docs {
		doc["benchmark_updated"] = true
	}
	if err := session.SaveChanges(); err != nil {
		return 0, errors.Wrap(err, "failed to save updates")
	}
	return len(docs), nil
}

func (r *Raven) Delete(collection string) (int, error) {
	deleted := 0
	for {
		session, err := r.store.OpenSession("")
		if err != nil {
			return deleted, errors.Wrap(err, "failed to open session")
		}

		var docs []map[string]interface{}
		err = session.QueryCollection(collection).
			WhereEquals("benchmark_updated", true).
			Take(pageSize).
			GetResults(&docs)
		if err != nil {
			session.Close()
			return deleted, errors.Wrap(err, "failed to select delete candidates")
		}
		if len(docs) == 0 {
			session.Close()
			return deleted, nil
		}

		for _, doc := range docs {
			if err := session.Delete(doc); err != nil {
				session.Close()
				return deleted, errors.Wrap(err, "failed to delete document")
			}
		}
		if err := session.SaveChanges(); err != nil {
			session.Close()
			return deleted, errors.Wrap(err, "failed to save deletes")
		}
		deleted += len(docs)
		session.Close()
	}
}

func (r *Raven) Export(collection string) (string, error) {
	if err := os.MkdirAll(r.exportDir, 0755); err != nil {
		return "", errors.Wrap(err, "failed to create export dir")
	}
	path := filepath.Join(r.exportDir, fmt.Sprintf("export_ravendb_%s.json", collection))
	file, err := os.Create(path)
	if err != nil {
		return "", errors.Wrapf(err, "failed to create %s", path)
	}
	defer file.Close()

	writer := bufio.NewWriter(file)
	encoder := json.NewEncoder(writer)
	count := 0

	// sessions cap the number of server round trips, so each page gets
	// its own
	for skip := 0; ; skip += pageSize {
		session, err := r.store.OpenSession("")
		if err != nil {
			return "", errors.Wrap(err, "failed to open session")
		}

		var docs []map[string]interface{}
		err = session.QueryCollection(collection).
			Skip(skip).
			Take(pageSize).
			GetResults(&docs)
		session.Close()
		if err != nil {
			return "", errors.Wrap(err, "failed to scan collection")
		}
		if len(docs) == 0 {
			break
		}

		for _, doc := range docs {
			delete(doc, "@metadata")
			if err := encoder.Encode(doc); err != nil {
				return "", errors.Wrap(err, "failed to write document")
			}
			count++
		}
		if len(docs) < pageSize {
			break
		}
	}
	if err := writer.Flush(); err != nil {
		return "", errors.Wrap(err, "failed to flush export")
	}

	log.Infof("  %d documents exported", count)
	return path, nil
}

func (r *Raven) Close() error {
	if r.store != nil {
		r.store.Close()
	}
	return nil
}
