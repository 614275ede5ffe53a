package main

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"strings"

	"github.com/spf13/cobra"
	"github.com/spf13/viper"
	"gopkg.in/yaml.v3"

	"github.com/rezkam/todos/internal/application/todo"
	"github.com/rezkam/todos/internal/config"
	"github.com/rezkam/todos/internal/infrastructure/persistence"
)

// Flag names double as viper keys; TODOS_<KEY> with dashes replaced is the env var.
const (
	flagConfig          = "config"
	flagStorageType     = "storage-type"
	flagFSDir           = "fs-dir"
	flagSQLitePath      = "sqlite-path"
	flagMongoURI        = "mongo-uri"
	flagMongoDatabase   = "mongo-database"
	flagMongoCollection = "mongo-collection"
	flagDBDSN           = "db-dsn"
	flagGCSBucket       = "gcs-bucket"
	flagGCSPrefix       = "gcs-prefix"
	flagFormat          = "format"
)

const (
	formatJSON = "json"
	formatYAML = "yaml"
)

// cli holds the state shared by every subcommand.
type cli struct {
	v   *viper.Viper
	out io.Writer
}

func newRootCmd(out io.Writer) *cobra.Command {
	c := &cli{v: viper.New(), out: out}

	root := &cobra.Command{
		Use:   "todoctl",
		Short: "Query and manage todos in any configured store",
		Long: `todoctl runs the todo queries of the HTTP API directly against a store.

Configuration sources (in order of precedence):
  1. Command line flags
  2. Environment variables (TODOS_STORAGE_TYPE, TODOS_FS_DIR, TODOS_MONGO_URI, ...)
  3. A YAML config file given with --config

Examples:
  todoctl --storage-type fs --fs-dir ./data seed fixtures/todos.yaml
  todoctl list --status complete --sort-by category
  todoctl group status --sort-by count --sort-order desc`,
		SilenceUsage: true,
		PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
			return c.loadConfig(cmd)
		},
	}

	flags := root.PersistentFlags()
	flags.String(flagConfig, "", "YAML config file")
	flags.String(flagStorageType, config.StorageMongo, "Storage backend (mongo|postgres|sqlite|fs|gcs)")
	flags.String(flagFSDir, "./todos-data", "Directory of the fs backend")
	flags.String(flagSQLitePath, "todos.db", "Database file of the sqlite backend")
	flags.String(flagMongoURI, "mongodb://localhost:27017", "MongoDB connection URI")
	flags.String(flagMongoDatabase, "todos", "MongoDB database")
	flags.String(flagMongoCollection, "todos", "MongoDB collection")
	flags.String(flagDBDSN, "", "PostgreSQL connection string")
	flags.String(flagGCSBucket, "", "Bucket of the gcs backend")
	flags.String(flagGCSPrefix, "todos/", "Object name prefix of the gcs backend")
	flags.StringP(flagFormat, "f", formatJSON, "Output format (json|yaml)")

	c.v.SetEnvPrefix("TODOS")
	c.v.SetEnvKeyReplacer(strings.NewReplacer("-", "_"))
	c.v.AutomaticEnv()
	_ = c.v.BindPFlags(flags)

	root.AddCommand(
		c.newListCmd(),
		c.newGetCmd(),
		c.newGroupCmd(),
		c.newCreateCmd(),
		c.newDeleteCmd(),
		c.newSeedCmd(),
	)
	return root
}

func (c *cli) loadConfig(cmd *cobra.Command) error {
	path := c.v.GetString(flagConfig)
	if path == "" {
		return nil
	}
	c.v.SetConfigFile(path)
	c.v.SetConfigType("yaml")
	if err := c.v.ReadInConfig(); err != nil {
		return fmt.Errorf("failed to read config %s: %w", path, err)
	}
	return nil
}

func (c *cli) storageConfig() config.StorageConfig {
	return config.StorageConfig{
		Type: c.v.GetString(flagStorageType),
		Mongo: config.MongoConfig{
			URI:        c.v.GetString(flagMongoURI),
			Database:   c.v.GetString(flagMongoDatabase),
			Collection: c.v.GetString(flagMongoCollection),
		},
		Database:   config.DatabaseConfig{DSN: c.v.GetString(flagDBDSN)},
		SQLitePath: c.v.GetString(flagSQLitePath),
		FSDir:      c.v.GetString(flagFSDir),
		GCSBucket:  c.v.GetString(flagGCSBucket),
		GCSPrefix:  c.v.GetString(flagGCSPrefix),
	}
}

// withService opens the configured store for the duration of fn.
func (c *cli) withService(ctx context.Context, fn func(*todo.Service) error) error {
	cfg := c.storageConfig()
	if err := cfg.Validate(); err != nil {
		return err
	}

	store, err := persistence.Open(ctx, cfg)
	if err != nil {
		return fmt.Errorf("failed to open store: %w", err)
	}

	fnErr := fn(todo.NewService(store))
	if err := store.Close(); err != nil && fnErr == nil {
		return fmt.Errorf("failed to close store: %w", err)
	}
	return fnErr
}

func (c *cli) print(v any) error {
	switch format := c.v.GetString(flagFormat); format {
	case formatJSON:
		enc := json.NewEncoder(c.out)
		enc.SetIndent("", "  ")
		return enc.Encode(v)
	case formatYAML:
		enc := yaml.NewEncoder(c.out)
		enc.SetIndent(2)
		if err := enc.Encode(v); err != nil {
			return err
		}
		return enc.Close()
	default:
		return fmt.Errorf("unknown output format %q: must be json or yaml", format)
	}
}
