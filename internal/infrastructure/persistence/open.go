// Package persistence selects and opens the configured todo store.
package persistence

import (
	"context"
	"fmt"
	"io"
	"log/slog"
	"net/url"
	"time"

	"github.com/rezkam/todos/internal/application/todo"
	"github.com/rezkam/todos/internal/config"
	"github.com/rezkam/todos/internal/infrastructure/persistence/fs"
	"github.com/rezkam/todos/internal/infrastructure/persistence/gcs"
	"github.com/rezkam/todos/internal/infrastructure/persistence/mongo"
	"github.com/rezkam/todos/internal/infrastructure/persistence/postgres"
	"github.com/rezkam/todos/internal/infrastructure/persistence/sqlite"
)

// disconnectTimeout bounds closing stores whose Close needs a context.
const disconnectTimeout = 5 * time.Second

// Store is a todo repository that owns resources to release.
type Store interface {
	todo.Repository
	io.Closer
}

// Open opens the backend selected by cfg.Type.
func Open(ctx context.Context, cfg config.StorageConfig) (Store, error) {
	switch cfg.Type {
	case config.StorageMongo:
		store, err := mongo.NewStore(ctx, mongo.Config{
			URI:         cfg.Mongo.URI,
			Database:    cfg.Mongo.Database,
			Collection:  cfg.Mongo.Collection,
			MaxPoolSize: cfg.Mongo.MaxPoolSize,
			MinPoolSize: cfg.Mongo.MinPoolSize,
		})
		if err != nil {
			return nil, err
		}
		slog.InfoContext(ctx, "storage initialized",
			"type", cfg.Type,
			"uri", MaskPassword(cfg.Mongo.URI),
			"database", cfg.Mongo.Database,
			"collection", cfg.Mongo.Collection)
		return mongoCloser{store}, nil

	case config.StoragePostgres:
		store, err := postgres.Open(ctx, cfg.Database)
		if err != nil {
			return nil, err
		}
		slog.InfoContext(ctx, "storage initialized", "type", cfg.Type, "dsn", MaskPassword(cfg.Database.DSN))
		return store, nil

	case config.StorageSQLite:
		store, err := sqlite.NewStore(ctx, cfg.SQLitePath)
		if err != nil {
			return nil, err
		}
		slog.InfoContext(ctx, "storage initialized", "type", cfg.Type, "path", cfg.SQLitePath)
		return store, nil

	case config.StorageFS:
		store, err := fs.NewStore(cfg.FSDir)
		if err != nil {
			return nil, err
		}
		slog.InfoContext(ctx, "storage initialized", "type", cfg.Type, "dir", cfg.FSDir)
		return store, nil

	case config.StorageGCS:
		store, err := gcs.NewStore(ctx, cfg.GCSBucket, cfg.GCSPrefix)
		if err != nil {
			return nil, err
		}
		slog.InfoContext(ctx, "storage initialized", "type", cfg.Type, "bucket", cfg.GCSBucket, "prefix", cfg.GCSPrefix)
		return store, nil

	default:
		return nil, fmt.Errorf("unknown storage type %q", cfg.Type)
	}
}

// mongoCloser adapts the context-aware disconnect of the mongo store to io.Closer.
type mongoCloser struct {
	*mongo.Store
}

func (m mongoCloser) Close() error {
	ctx, cancel := context.WithTimeout(context.Background(), disconnectTimeout)
	defer cancel()
	return m.Store.Close(ctx)
}

// MaskPassword masks the password in a connection string for logging.
func MaskPassword(connStr string) string {
	u, err := url.Parse(connStr)
	if err != nil {
		// If parsing fails, fall back to full redaction to be safe
		return "[REDACTED]"
	}
	if u.User != nil {
		if _, hasPassword := u.User.Password(); hasPassword {
			u.User = url.UserPassword(u.User.Username(), "xxxxxx")
		}
	}
	return u.String()
}
