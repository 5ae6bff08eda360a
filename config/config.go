package config

import (
	"os"

	"github.com/pkg/errors"
	"gopkg.in/yaml.v3"
)

// Config is the benchmark plan: which databases to exercise and which
// datasets to feed them.
type Config struct {
	Databases []Database `yaml:"databases"`
	Datasets  []Dataset  `yaml:"datasets"`
}

type Database struct {
	// Kind selects the backend: mongodb, arangodb or ravendb.
	Kind string `yaml:"kind"`
	// Name is the human-readable label used in reports.
	Name string `yaml:"name"`
	// URL is the connection string or endpoint for the database.
	URL      string `yaml:"url"`
	Username string `yaml:"username"`
	Password string `yaml:"password"`
	// Database is the logical database (re)created for the run.
	Database string `yaml:"database"`
	// Container is the docker container sampled while operations run.
	Container string `yaml:"container"`
}

type Dataset struct {
	// File is a JSON-lines or CSV file with one document per line/row.
	File       string `yaml:"file"`
	Collection string `yaml:"collection"`
	Label      string `yaml:"label"`
}

// Load reads and validates a benchmark plan.
func Load(path string) (*Config, error) {
	raw, err := os.ReadFile(path)
	if err != nil {
		return nil, errors.Wrapf(err, "failed to read config %s", path)
	}

	config := &Config{}
	if err := yaml.Unmarshal(raw, config); err != nil {
		return nil, errors.Wrapf(err, "failed to parse config %s", path)
	}

	if len(config.Databases) == 0 {
		return nil, errors.New("config lists no databases")
	}
	if len(config.Datasets) == 0 {
		return nil, errors.New("config lists no datasets")
	}
	for i, d := range config.Databases {
		if d.Kind == "" {
			return nil, errors.Errorf("database %d has no kind", i)
		}
		if d.Container == "" {
			return nil, errors.Errorf("database %q has no container name", d.Name)
		}
		if d.Name == "" {
			config.Databases[i].Name = d.Kind
		}
	}
	for i, ds := range config.Datasets {
		if ds.File == "" || ds.Collection == "" {
			return nil, errors.Errorf("dataset %d needs both file and collection", i)
		}
		if ds.Label == "" {
			config.Datasets[i].Label = ds.Collection
		}
	}

	return config, nil
}
