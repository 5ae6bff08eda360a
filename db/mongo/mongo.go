package mongo

import (
	"bufio"
	"context"
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"time"

	"github.com/pkg/errors"
	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"

	"github.com/docbench/docbench/dataset"
	"github.com/docbench/docbench/db"
	"github.com/docbench/docbench/log"
)

const connectTimeout = 10 * time.Second

// Mongo benchmarks a MongoDB instance through the official driver.
type Mongo struct {
	uri       string
	database  string
	container string
	exportDir string

	client *mongo.Client
	db     *mongo.Database
}

func New(uri, database, container, exportDir string) *Mongo {
	return &Mongo{
		uri:       uri,
		database:  database,
		container: container,
		exportDir: exportDir,
	}
}

func (m *Mongo) Name() string          { return "MongoDB" }
func (m *Mongo) ContainerName() string { return m.container }

func (m *Mongo) Connect() error {
	ctx, cancel := context.WithTimeout(context.Background(), connectTimeout)
	defer cancel()

	client, err := mongo.Connect(ctx, options.Client().ApplyURI(m.uri))
	if err != nil {
		return errors.Wrap(err, "failed to connect to mongodb")
	}
	if err := client.Ping(ctx, nil); err != nil {
		return errors.Wrap(err, "failed to ping mongodb")
	}

	m.client = client
	m.db = client.Database(m.database)
	log.Infof("connected to mongodb database %s", m.database)
	return nil
}

func (m *Mongo) Import(file, collection string, opts db.ImportOptions) (db.ImportResult, error) {
	ctx := context.Background()
	coll := m.db.Collection(collection)

	if err := coll.Drop(ctx); err != nil {
		return db.ImportResult{}, errors.Wrapf(err, "failed to drop %s", collection)
	}

	return db.ImportFile(file, opts, func(batch dataset.Batch) error {
		docs := make([]interface{}, len(batch))
		for i, doc := range batch {
			docs[i] = doc
		}
		_, err := coll.InsertMany(ctx, docs)
		return err
	})
}

// filter is the fixed benchmark query: the amazon dataset is matched on
// Score/Summary, everything else on rating/review_text.
func filter(collection string) bson.M {
	if collection == "amazon" {
		return bson.M{"$or": bson.A{
			bson.M{"Score": bson.M{"$gt": 4}},
			bson.M{"Summary": bson.M{"$regex": "good", "$options": "i"}},
		}}
	}
	return bson.M{"$or": bson.A{
		bson.M{"rating": bson.M{"$gte": 3}},
		bson.M{"review_text": bson.M{"$regex": "Fantastic|suspense|story", "$options": "i"}},
	}}
}

func (m *Mongo) Read(collection string) error {
	ctx := context.Background()
	coll := m.db.Collection(collection)

	var doc bson.M
	if err := coll.FindOne(ctx, bson.M{}).Decode(&doc); err != nil && err != mongo.ErrNoDocuments {
		return errors.Wrap(err, "failed to read single document")
	}

	count, err := coll.CountDocuments(ctx, filter(collection))
	if err != nil {
		return errors.Wrap(err, "failed to count matching documents")
	}
	log.Infof("  %d documents match the read query", count)
	return nil
}

func (m *Mongo) Update(collection string, limit int) (int, error) {
	ctx := context.Background()
	coll := m.db.Collection(collection)

	findOpts := options.Find().
		SetProjection(bson.M{"_id": 1}).
		SetLimit(int64(limit))
	cursor, err := coll.Find(ctx, filter(collection), findOpts)
	if err != nil {
		return 0, errors.Wrap(err, "failed to select update candidates")
	}

	var ids []interface{}
	for cursor.Next(ctx) {
		var doc struct {
			ID interface{} `bson:"_id"`
		}
		if err := cursor.Decode(&doc); err != nil {
			cursor.Close(ctx)
			return 0, errors.Wrap(err, "failed to decode candidate id")
		}
		ids = append(ids, doc.ID)
	}
	if err := cursor.Err(); err != nil {
		cursor.Close(ctx)
		return 0, errors.Wrap(err, "failed to iterate candidates")
	}
	cursor.Close(ctx)

	if len(ids) == 0 {
		return 0, nil
	}

	result, err := coll.UpdateMany(ctx,
		bson.M{"_id": bson.M{"$in": ids}},
		bson.M{"$set": bson.M{"benchmark_updated": true}})
	if err != nil {
		return 0, errors.Wrap(err, "failed to update documents")
	}
	return int(result.ModifiedCount), nil
}

func (m *Mongo) Delete(collection string) (int, error) {
	result, err := m.db.Collection(collection).
		DeleteMany(context.Background(), bson.M{"benchmark_updated": true})
	if err != nil {
		return 0, errors.Wrap(err, "failed to delete documents")
	}
	return int(result.DeletedCount), nil
}

func (m *Mongo) Export(collection string) (string, error) {
	ctx := context.Background()

	cursor, err := m.db.Collection(collection).Find(ctx, bson.M{})
	if err != nil {
		return "", errors.Wrap(err, "failed to scan collection")
	}
	defer cursor.Close(ctx)

	if err := os.MkdirAll(m.exportDir, 0755); err != nil {
		return "", errors.Wrap(err, "failed to create export dir")
	}
	path := filepath.Join(m.exportDir, fmt.Sprintf("export_mongodb_%s.json", collection))
	file, err := os.Create(path)
	if err != nil {
		return "", errors.Wrapf(err, "failed to create %s", path)
	}
	defer file.Close()

	writer := bufio.NewWriter(file)
	encoder := json.NewEncoder(writer)
	count := 0
	for cursor.Next(ctx) {
		var doc bson.M
		if err := cursor.Decode(&doc); err != nil {
			return "", errors.Wrap(err, "failed to decode document")
		}
		if err := encoder.Encode(doc); err != nil {
			return "", errors.Wrap(err, "failed to write document")
		}
		count++
	}
	if err := cursor.Err(); err != nil {
		return "", errors.Wrap(err, "failed to iterate collection")
	}
	if err := writer.Flush(); err != nil {
		return "", errors.Wrap(err, "failed to flush export")
	}

	log.Infof("  %d documents exported", count)
	return path, nil
}

func (m *Mongo) Close() error {
	if m.client == nil {
		return nil
	}
	ctx, cancel := context.WithTimeout(context.Background(), connectTimeout)
	defer cancel()
	return m.client.Disconnect(ctx)
}
