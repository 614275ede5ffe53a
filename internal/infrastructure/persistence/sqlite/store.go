// Package sqlite is the embedded SQLite implementation of todo.Repository,
// built on the pure-Go modernc.org/sqlite driver.
package sqlite

import (
	"context"
	"database/sql"
	"database/sql/driver"
	"embed"
	"errors"
	"fmt"
	"io/fs"
	"log/slog"
	"strings"
	"sync"

	"github.com/google/uuid"
	"github.com/pressly/goose/v3"
	sqlitedriver "modernc.org/sqlite"

	"github.com/rezkam/todos/internal/application/todo"
	"github.com/rezkam/todos/internal/domain"
)

//go:embed migrations/*.sql
var embedMigrations embed.FS

var _ todo.Repository = (*Store)(nil)

// Store implements todo.Repository on a single SQLite database.
type Store struct {
	db *sql.DB
}

// foldFunc is the SQL name of the Unicode lower-casing function. SQLite's
// built-in lower() only folds ASCII.
const foldFunc = "todos_fold"

var (
	registerOnce sync.Once
	registerErr  error
)

// registerFunctions adds foldFunc to the driver. Registration is process wide
// and must happen before the first connection is opened.
func registerFunctions() error {
	registerOnce.Do(func() {
		registerErr = sqlitedriver.RegisterDeterministicScalarFunction(foldFunc, 1, fold)
	})
	return registerErr
}

func fold(_ *sqlitedriver.FunctionContext, args []driver.Value) (driver.Value, error) {
	switch v := args[0].(type) {
	case nil:
		return nil, nil
	case string:
		return strings.ToLower(v), nil
	case []byte:
		return strings.ToLower(string(v)), nil
	default:
		return nil, fmt.Errorf("%s: unsupported argument type %T", foldFunc, v)
	}
}

// NewStore opens the database at path, applies pragmas and runs migrations.
func NewStore(ctx context.Context, path string) (*Store, error) {
	if err := registerFunctions(); err != nil {
		return nil, fmt.Errorf("failed to register sql functions: %w", err)
	}

	db, err := sql.Open("sqlite", path)
	if err != nil {
		return nil, fmt.Errorf("failed to open database: %w", err)
	}

	// Set busy timeout first to help with concurrent access during initialization
	pragmas := []string{
		"PRAGMA busy_timeout = 5000",
		"PRAGMA journal_mode = WAL",
		"PRAGMA synchronous = NORMAL",
	}
	for _, pragma := range pragmas {
		if _, err := db.ExecContext(ctx, pragma); err != nil {
			// Another process may hold the database while switching to WAL; it will have set it already.
			if pragma == "PRAGMA journal_mode = WAL" && strings.Contains(err.Error(), "database is locked") {
				continue
			}
			_ = db.Close()
			return nil, fmt.Errorf("failed to execute %s: %w", pragma, err)
		}
	}

	// Single writer connection for SQLite
	db.SetMaxOpenConns(1)
	db.SetMaxIdleConns(1)
	db.SetConnMaxLifetime(0)

	if err := runMigrations(ctx, db); err != nil {
		_ = db.Close()
		return nil, fmt.Errorf("failed to run migrations: %w", err)
	}

	return &Store{db: db}, nil
}

// runMigrations applies the embedded migrations with a goose provider.
func runMigrations(ctx context.Context, db *sql.DB) error {
	migrations, err := fs.Sub(embedMigrations, "migrations")
	if err != nil {
		return fmt.Errorf("failed to open embedded migrations: %w", err)
	}

	provider, err := goose.NewProvider(goose.DialectSQLite3, db, migrations)
	if err != nil {
		return fmt.Errorf("failed to create migration provider: %w", err)
	}

	results, err := provider.Up(ctx)
	if err != nil {
		return fmt.Errorf("failed to apply migrations: %w", err)
	}
	for _, r := range results {
		slog.DebugContext(ctx, "applied migration",
			"version", r.Source.Version,
			"duration_ms", r.Duration.Milliseconds())
	}
	return nil
}

// Close closes the database.
func (s *Store) Close() error {
	return s.db.Close()
}

func parseID(id string) (string, error) {
	parsed, err := uuid.Parse(id)
	if err != nil {
		return "", domain.NewValidationError("id", id, domain.ErrInvalidID)
	}
	return parsed.String(), nil
}

// FindTodoByID retrieves a single todo.
func (s *Store) FindTodoByID(ctx context.Context, id string) (*domain.Todo, error) {
	key, err := parseID(id)
	if err != nil {
		return nil, err
	}

	var t domain.Todo
	err = s.db.QueryRowContext(ctx, selectTodos+" WHERE id = ?", key).
		Scan(&t.ID, &t.Owner, &t.Status, &t.Body, &t.Category)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, fmt.Errorf("%w: %s", domain.ErrTodoNotFound, id)
		}
		return nil, fmt.Errorf("failed to get todo: %w", err)
	}
	return &t, nil
}

// FindTodos returns the todos matching filter ordered by sort.
func (s *Store) FindTodos(ctx context.Context, filter domain.Filter, sort domain.Sort) ([]domain.Todo, error) {
	query, args := buildFindQuery(filter, sort)

	rows, err := s.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("failed to find todos: %w", err)
	}
	defer rows.Close()

	todos := []domain.Todo{}
	for rows.Next() {
		var t domain.Todo
		if err := rows.Scan(&t.ID, &t.Owner, &t.Status, &t.Body, &t.Category); err != nil {
			return nil, fmt.Errorf("failed to scan todo: %w", err)
		}
		todos = append(todos, t)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("failed to iterate todos: %w", err)
	}
	return todos, nil
}

// GroupTodos partitions todos by q.Dimension.
func (s *Store) GroupTodos(ctx context.Context, q domain.GroupQuery) ([]domain.Summary, error) {
	query, err := buildGroupQuery(q)
	if err != nil {
		return nil, err
	}

	rows, err := s.db.QueryContext(ctx, query)
	if err != nil {
		return nil, fmt.Errorf("failed to group todos: %w", err)
	}
	defer rows.Close()

	summaries := []domain.Summary{}
	for rows.Next() {
		var (
			sum     domain.Summary
			members string
		)
		if err := rows.Scan(&sum.Key, &sum.Count, &members); err != nil {
			return nil, fmt.Errorf("failed to scan group: %w", err)
		}
		if sum.Members, err = decodeMembers(members); err != nil {
			return nil, fmt.Errorf("group %q: %w", sum.Key, err)
		}
		summaries = append(summaries, sum)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("failed to iterate groups: %w", err)
	}
	return summaries, nil
}

// CreateTodo inserts t under a new UUIDv7.
func (s *Store) CreateTodo(ctx context.Context, t *domain.Todo) (string, error) {
	id, err := uuid.NewV7()
	if err != nil {
		return "", fmt.Errorf("failed to generate id: %w", err)
	}

	_, err = s.db.ExecContext(ctx,
		`INSERT INTO todos (id, owner, status, body, category) VALUES (?, ?, ?, ?, ?)`,
		id.String(), t.Owner, t.Status, t.Body, t.Category)
	if err != nil {
		return "", fmt.Errorf("failed to create todo: %w", err)
	}
	return id.String(), nil
}

// DeleteTodo deletes by ID and reports the number of rows removed.
func (s *Store) DeleteTodo(ctx context.Context, id string) (int64, error) {
	key, err := parseID(id)
	if err != nil {
		return 0, err
	}

	result, err := s.db.ExecContext(ctx, `DELETE FROM todos WHERE id = ?`, key)
	if err != nil {
		return 0, fmt.Errorf("failed to delete todo: %w", err)
	}
	n, err := result.RowsAffected()
	if err != nil {
		return 0, fmt.Errorf("failed to read affected rows: %w", err)
	}
	return n, nil
}

// CountTodos returns the number of stored todos.
func (s *Store) CountTodos(ctx context.Context) (int64, error) {
	var n int64
	if err := s.db.QueryRowContext(ctx, `SELECT count(*) FROM todos`).Scan(&n); err != nil {
		return 0, fmt.Errorf("failed to count todos: %w", err)
	}
	return n, nil
}
