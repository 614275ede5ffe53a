// Package gcs stores todos as JSON objects in a Google Cloud Storage bucket.
package gcs

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"strings"

	"cloud.google.com/go/storage"
	"github.com/google/uuid"
	"golang.org/x/sync/errgroup"
	"google.golang.org/api/iterator"

	"github.com/rezkam/todos/internal/application/todo"
	"github.com/rezkam/todos/internal/domain"
	"github.com/rezkam/todos/internal/query"
)

// GCS handles 20+ concurrent requests well, but we stay conservative.
const maxConcurrency = 20

var _ todo.Repository = (*Store)(nil)

type object struct {
	ID       string `json:"_id"`
	Owner    string `json:"owner"`
	Status   bool   `json:"status"`
	Body     string `json:"body"`
	Category string `json:"category"`
}

// Store is a GCS-based implementation of todo.Repository.
// Objects are named <prefix><id>.json; queries are evaluated in process.
type Store struct {
	client *storage.Client
	bucket string
	prefix string
}

// NewStore creates a new GCS store.
// It assumes the client is authenticated (e.g. via GOOGLE_APPLICATION_CREDENTIALS).
func NewStore(ctx context.Context, bucketName, prefix string) (*Store, error) {
	client, err := storage.NewClient(ctx)
	if err != nil {
		return nil, fmt.Errorf("failed to create GCS client: %w", err)
	}
	return NewStoreWithClient(client, bucketName, prefix), nil
}

// NewStoreWithClient creates a store on an existing client.
func NewStoreWithClient(client *storage.Client, bucketName, prefix string) *Store {
	return &Store{
		client: client,
		bucket: bucketName,
		prefix: prefix,
	}
}

// Close closes the underlying client.
func (s *Store) Close() error {
	return s.client.Close()
}

func (s *Store) objectName(id string) string {
	return s.prefix + id + ".json"
}

func parseID(id string) (string, error) {
	parsed, err := uuid.Parse(id)
	if err != nil {
		return "", domain.NewValidationError("id", id, domain.ErrInvalidID)
	}
	return parsed.String(), nil
}

// FindTodoByID reads a single todo object.
func (s *Store) FindTodoByID(ctx context.Context, id string) (*domain.Todo, error) {
	key, err := parseID(id)
	if err != nil {
		return nil, err
	}

	obj, err := s.readObject(ctx, s.objectName(key))
	if err != nil {
		// Use errors.Is to handle wrapped errors from GCS client
		if errors.Is(err, storage.ErrObjectNotExist) {
			return nil, fmt.Errorf("%w: %s", domain.ErrTodoNotFound, id)
		}
		return nil, err
	}
	t := toDomain(obj)
	return &t, nil
}

// FindTodos loads every todo and filters and sorts them in process.
func (s *Store) FindTodos(ctx context.Context, filter domain.Filter, sort domain.Sort) ([]domain.Todo, error) {
	todos, err := s.loadAll(ctx)
	if err != nil {
		return nil, err
	}
	return query.Apply(todos, filter, sort), nil
}

// GroupTodos loads every todo and groups them in process.
func (s *Store) GroupTodos(ctx context.Context, q domain.GroupQuery) ([]domain.Summary, error) {
	todos, err := s.loadAll(ctx)
	if err != nil {
		return nil, err
	}
	return query.Group(todos, q.Dimension, q.Sort), nil
}

// CreateTodo writes a new todo object under a fresh UUIDv7.
// The write is conditional on the object not existing.
func (s *Store) CreateTodo(ctx context.Context, t *domain.Todo) (string, error) {
	id, err := uuid.NewV7()
	if err != nil {
		return "", fmt.Errorf("failed to generate id: %w", err)
	}

	obj := fromDomain(*t)
	obj.ID = id.String()

	data, err := json.Marshal(obj)
	if err != nil {
		return "", fmt.Errorf("failed to marshal todo: %w", err)
	}

	handle := s.client.Bucket(s.bucket).Object(s.objectName(obj.ID)).If(storage.Conditions{DoesNotExist: true})
	w := handle.NewWriter(ctx)
	w.ContentType = "application/json"
	if _, err := w.Write(data); err != nil {
		_ = w.Close()
		return "", fmt.Errorf("failed to write object: %w", err)
	}
	if err := w.Close(); err != nil {
		return "", fmt.Errorf("failed to write object: %w", err)
	}
	return obj.ID, nil
}

// DeleteTodo removes a todo object. Deleting a missing todo reports zero deletions.
func (s *Store) DeleteTodo(ctx context.Context, id string) (int64, error) {
	key, err := parseID(id)
	if err != nil {
		return 0, err
	}

	err = s.client.Bucket(s.bucket).Object(s.objectName(key)).Delete(ctx)
	if err != nil {
		if errors.Is(err, storage.ErrObjectNotExist) {
			return 0, nil
		}
		return 0, fmt.Errorf("failed to delete object: %w", err)
	}
	return 1, nil
}

// CountTodos counts the todo objects under the prefix.
func (s *Store) CountTodos(ctx context.Context) (int64, error) {
	names, err := s.listObjects(ctx)
	if err != nil {
		return 0, err
	}
	return int64(len(names)), nil
}

// listObjects returns the todo object names in listing order, which is ID order.
func (s *Store) listObjects(ctx context.Context) ([]string, error) {
	it := s.client.Bucket(s.bucket).Objects(ctx, &storage.Query{Prefix: s.prefix})

	var names []string
	for {
		attrs, err := it.Next()
		if errors.Is(err, iterator.Done) {
			break
		}
		if err != nil {
			return nil, fmt.Errorf("failed to list objects: %w", err)
		}
		rest := strings.TrimPrefix(attrs.Name, s.prefix)
		if strings.HasSuffix(rest, ".json") && !strings.Contains(rest, "/") {
			names = append(names, attrs.Name)
		}
	}
	return names, nil
}

// loadAll fetches every todo object in parallel and returns them in ID order.
// An object deleted after listing is skipped; any other failure fails the load.
func (s *Store) loadAll(ctx context.Context) ([]domain.Todo, error) {
	names, err := s.listObjects(ctx)
	if err != nil {
		return nil, err
	}

	results := make([]*domain.Todo, len(names))
	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(maxConcurrency)

	for i, name := range names {
		g.Go(func() error {
			obj, err := s.readObject(gctx, name)
			if errors.Is(err, storage.ErrObjectNotExist) {
				slog.DebugContext(ctx, "todo object removed during load", "object", name)
				return nil
			}
			if err != nil {
				return err
			}
			t := toDomain(obj)
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

func (s *Store) readObject(ctx context.Context, name string) (object, error) {
	r, err := s.client.Bucket(s.bucket).Object(name).NewReader(ctx)
	if err != nil {
		return object{}, fmt.Errorf("failed to open todo object %s: %w", name, err)
	}
	defer r.Close()

	data, err := io.ReadAll(r)
	if err != nil {
		return object{}, fmt.Errorf("failed to read todo object %s: %w", name, err)
	}

	var obj object
	if err := json.Unmarshal(data, &obj); err != nil {
		return object{}, fmt.Errorf("failed to decode todo object %s: %w", name, err)
	}
	return obj, nil
}

func toDomain(o object) domain.Todo {
	return domain.Todo{ID: o.ID, Owner: o.Owner, Status: o.Status, Body: o.Body, Category: o.Category}
}

func fromDomain(t domain.Todo) object {
	return object{ID: t.ID, Owner: t.Owner, Status: t.Status, Body: t.Body, Category: t.Category}
}
