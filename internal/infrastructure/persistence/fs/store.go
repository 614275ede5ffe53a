// Package fs stores todos as one JSON document per file in a directory.
//
// Queries are evaluated in process with the query package. A sync.RWMutex guards
// the directory inside the process and a gofrs/flock lock file guards it across
// processes, so a running server and todoctl can share one directory.
package fs

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"strings"
	"sync"
	"time"

	"github.com/gofrs/flock"
	"github.com/google/uuid"
	"golang.org/x/sync/errgroup"

	"github.com/rezkam/todos/internal/application/todo"
	"github.com/rezkam/todos/internal/domain"
	"github.com/rezkam/todos/internal/query"
)

const (
	lockFileName      = ".todos.lock"
	lockRetryInterval = 50 * time.Millisecond
	lockTimeout       = 3 * time.Second

	// Limit concurrency to avoid "too many open files" on large directories.
	maxConcurrency = 20
)

var _ todo.Repository = (*Store)(nil)

// record is the on-disk document.
type record struct {
	ID       string `json:"_id"`
	Owner    string `json:"owner"`
	Status   bool   `json:"status"`
	Body     string `json:"body"`
	Category string `json:"category"`
}

// Store is a filesystem-based implementation of todo.Repository.
type Store struct {
	baseDir string
	mu      sync.RWMutex

	lockMu  sync.Mutex
	readers int
	lock    *flock.Flock
}

// NewStore creates a new filesystem store rooted at baseDir.
func NewStore(baseDir string) (*Store, error) {
	if err := os.MkdirAll(baseDir, 0o755); err != nil {
		return nil, fmt.Errorf("failed to create base directory: %w", err)
	}
	return &Store{
		baseDir: baseDir,
		lock:    flock.New(filepath.Join(baseDir, lockFileName)),
	}, nil
}

// Close releases the lock file handle.
func (s *Store) Close() error {
	return s.lock.Close()
}

func (s *Store) getFilePath(id string) string {
	return filepath.Join(s.baseDir, id+".json")
}

// parseID rejects anything that is not a UUID, which also keeps ids from escaping baseDir.
func parseID(id string) (string, error) {
	parsed, err := uuid.Parse(id)
	if err != nil {
		return "", domain.NewValidationError("id", id, domain.ErrInvalidID)
	}
	return parsed.String(), nil
}

// withLock runs fn holding the in-process mutex and the directory lock file.
// Readers share both locks; writers hold them exclusively.
func (s *Store) withLock(ctx context.Context, exclusive bool, fn func() error) error {
	if exclusive {
		s.mu.Lock()
		defer s.mu.Unlock()
	} else {
		s.mu.RLock()
		defer s.mu.RUnlock()
	}

	if err := s.acquire(ctx, exclusive); err != nil {
		return err
	}
	defer s.release(ctx, exclusive)

	return fn()
}

// acquire takes the lock file. The shared lock is taken by the first reader in
// the process and released by the last one, since flock state is per handle.
func (s *Store) acquire(ctx context.Context, exclusive bool) error {
	s.lockMu.Lock()
	defer s.lockMu.Unlock()

	if !exclusive && s.readers > 0 {
		s.readers++
		return nil
	}

	lockCtx, cancel := context.WithTimeout(ctx, lockTimeout)
	defer cancel()

	var locked bool
	var err error
	if exclusive {
		locked, err = s.lock.TryLockContext(lockCtx, lockRetryInterval)
	} else {
		locked, err = s.lock.TryRLockContext(lockCtx, lockRetryInterval)
	}
	if err != nil {
		return fmt.Errorf("failed to acquire lock: %w", err)
	}
	if !locked {
		return errors.New("could not acquire file lock")
	}
	if !exclusive {
		s.readers++
	}
	return nil
}

func (s *Store) release(ctx context.Context, exclusive bool) {
	s.lockMu.Lock()
	defer s.lockMu.Unlock()

	if !exclusive {
		s.readers--
		if s.readers > 0 {
			return
		}
	}
	if err := s.lock.Unlock(); err != nil {
		slog.ErrorContext(ctx, "failed to release file lock", "dir", s.baseDir, "error", err)
	}
}

// FindTodoByID reads a single todo file.
func (s *Store) FindTodoByID(ctx context.Context, id string) (*domain.Todo, error) {
	key, err := parseID(id)
	if err != nil {
		return nil, err
	}

	var out *domain.Todo
	err = s.withLock(ctx, false, func() error {
		data, err := os.ReadFile(s.getFilePath(key))
		if err != nil {
			if errors.Is(err, os.ErrNotExist) {
				return fmt.Errorf("%w: %s", domain.ErrTodoNotFound, id)
			}
			return fmt.Errorf("failed to read file: %w", err)
		}

		var rec record
		if err := json.Unmarshal(data, &rec); err != nil {
			return fmt.Errorf("failed to unmarshal todo: %w", err)
		}
		t := toDomain(rec)
		out = &t
		return nil
	})
	if err != nil {
		return nil, err
	}
	return out, nil
}

// FindTodos loads every todo and filters and sorts them in process.
func (s *Store) FindTodos(ctx context.Context, filter domain.Filter, sort domain.Sort) ([]domain.Todo, error) {
	var out []domain.Todo
	err := s.withLock(ctx, false, func() error {
		todos, err := s.loadAll(ctx)
		if err != nil {
			return err
		}
		out = query.Apply(todos, filter, sort)
		return nil
	})
	if err != nil {
		return nil, err
	}
	return out, nil
}

// GroupTodos loads every todo and groups them in process.
func (s *Store) GroupTodos(ctx context.Context, q domain.GroupQuery) ([]domain.Summary, error) {
	var out []domain.Summary
	err := s.withLock(ctx, false, func() error {
		todos, err := s.loadAll(ctx)
		if err != nil {
			return err
		}
		out = query.Group(todos, q.Dimension, q.Sort)
		return nil
	})
	if err != nil {
		return nil, err
	}
	return out, nil
}

// CreateTodo writes a new todo file under a fresh UUIDv7.
func (s *Store) CreateTodo(ctx context.Context, t *domain.Todo) (string, error) {
	id, err := uuid.NewV7()
	if err != nil {
		return "", fmt.Errorf("failed to generate id: %w", err)
	}

	rec := fromDomain(*t)
	rec.ID = id.String()

	data, err := json.MarshalIndent(rec, "", "  ")
	if err != nil {
		return "", fmt.Errorf("failed to marshal todo: %w", err)
	}

	err = s.withLock(ctx, true, func() error {
		return writeFileAtomic(s.getFilePath(rec.ID), data)
	})
	if err != nil {
		return "", err
	}
	return rec.ID, nil
}

// DeleteTodo removes a todo file. Deleting a missing todo reports zero deletions.
func (s *Store) DeleteTodo(ctx context.Context, id string) (int64, error) {
	key, err := parseID(id)
	if err != nil {
		return 0, err
	}

	var deleted int64
	err = s.withLock(ctx, true, func() error {
		if err := os.Remove(s.getFilePath(key)); err != nil {
			if errors.Is(err, os.ErrNotExist) {
				return nil
			}
			return fmt.Errorf("failed to delete file: %w", err)
		}
		deleted = 1
		return nil
	})
	if err != nil {
		return 0, err
	}
	return deleted, nil
}

// CountTodos counts the todo files in the directory.
func (s *Store) CountTodos(ctx context.Context) (int64, error) {
	var n int64
	err := s.withLock(ctx, false, func() error {
		names, err := s.listFiles()
		if err != nil {
			return err
		}
		n = int64(len(names))
		return nil
	})
	if err != nil {
		return 0, err
	}
	return n, nil
}

// listFiles returns the todo file names in directory order, which is ID order.
func (s *Store) listFiles() ([]string, error) {
	entries, err := os.ReadDir(s.baseDir)
	if err != nil {
		return nil, fmt.Errorf("failed to read directory: %w", err)
	}

	var names []string
	for _, entry := range entries {
		if !entry.IsDir() && strings.HasSuffix(entry.Name(), ".json") {
			names = append(names, entry.Name())
		}
	}
	return names, nil
}

// loadAll reads every todo file in parallel and returns them in ID order.
// A file removed after listing is skipped; any other read or decode failure fails the load.
func (s *Store) loadAll(ctx context.Context) ([]domain.Todo, error) {
	names, err := s.listFiles()
	if err != nil {
		return nil, err
	}

	results := make([]*domain.Todo, len(names))
	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(maxConcurrency)

	for i, name := range names {
		g.Go(func() error {
			if err := gctx.Err(); err != nil {
				return err
			}

			data, err := os.ReadFile(filepath.Join(s.baseDir, name))
			if errors.Is(err, os.ErrNotExist) {
				slog.DebugContext(ctx, "todo file removed during load", "file", name)
				return nil
			}
			if err != nil {
				return fmt.Errorf("failed to read todo file %s: %w", name, err)
			}

			var rec record
			if err := json.Unmarshal(data, &rec); err != nil {
				return fmt.Errorf("failed to decode todo file %s: %w", name, err)
			}
			t := toDomain(rec)
			results[i] = &t
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return nil, err
	}

	todos := make([]domain.Todo, 0, len(results))
	for _, t := range results {
		if t != nil {
			todos = append(todos, *t)
		}
	}
	return todos, nil
}

// writeFileAtomic writes data to a temp file in the same directory and renames it into place.
func writeFileAtomic(path string, data []byte) error {
	tmp, err := os.CreateTemp(filepath.Dir(path), ".todo-*.tmp")
	if err != nil {
		return fmt.Errorf("failed to create temp file: %w", err)
	}
	defer func() { _ = os.Remove(tmp.Name()) }()

	if _, err := tmp.Write(data); err != nil {
		_ = tmp.Close()
		return fmt.Errorf("failed to write file: %w", err)
	}
	if err := tmp.Close(); err != nil {
		return fmt.Errorf("failed to close temp file: %w", err)
	}
	if err := os.Rename(tmp.Name(), path); err != nil {
		return fmt.Errorf("failed to rename file: %w", err)
	}
	return nil
}

func toDomain(r record) domain.Todo {
	return domain.Todo{ID: r.ID, Owner: r.Owner, Status: r.Status, Body: r.Body, Category: r.Category}
}

func fromDomain(t domain.Todo) record {
	return record{ID: t.ID, Owner: t.Owner, Status: t.Status, Body: t.Body, Category: t.Category}
}
