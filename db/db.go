package db

// Database is one benchmark target. The orchestrator drives the fixed
// lifecycle (import, read, update, delete, export) against this
// interface; each backend decides how the steps translate to its own
// query language. Operations run sequentially, never concurrently.
type Database interface {
	Name() string

	// ContainerName identifies the docker container to sample while
	// this database is exercised.
	ContainerName() string

	// Connect establishes the client and recreates the logical database
	// so every run starts clean.
	Connect() error

	// Import loads file into collection and reports how many documents
	// made it in.
	Import(file, collection string, opts ImportOptions) (ImportResult, error)

	// Read runs the fixed read workload: a single-document fetch plus a
	// filtered count.
	Read(collection string) error

	// Update flags up to limit matching documents and returns how many
	// were modified.
	Update(collection string, limit int) (int, error)

	// Delete removes the documents Update flagged and returns the count.
	Delete(collection string) (int, error)

	// Export dumps the collection to a JSON-lines file and returns its
	// path.
	Export(collection string) (string, error)

	Close() error
}
