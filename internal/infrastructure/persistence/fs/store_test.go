package fs

import (
	"context"
	"os"
	"path/filepath"
	"sync"
	"testing"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/rezkam/todos/internal/application/todo"
	"github.com/rezkam/todos/internal/domain"
	"github.com/rezkam/todos/internal/infrastructure/persistence/compliance"
)

func TestFSStore_Compliance(t *testing.T) {
	compliance.Run(t, compliance.Harness{
		Setup: func(t *testing.T) (todo.Repository, func()) {
			store, err := NewStore(t.TempDir())
			require.NoError(t, err)
			return store, func() { _ = store.Close() }
		},
		MissingID:   uuid.NewString,
		MalformedID: "../../etc/passwd",
	})
}

func TestFSStore_CorruptFileFailsQueries(t *testing.T) {
	dir := t.TempDir()
	store, err := NewStore(dir)
	require.NoError(t, err)
	defer store.Close()
	ctx := context.Background()

	_, err = store.CreateTodo(ctx, &domain.Todo{Owner: "Ana", Body: "b", Category: "c"})
	require.NoError(t, err)
	corrupt := uuid.NewString() + ".json"
	require.NoError(t, os.WriteFile(filepath.Join(dir, corrupt), []byte("{not json"), 0o644))

	_, err = store.FindTodos(ctx, domain.Filter{}, domain.Sort{Field: domain.FieldOwner})
	require.Error(t, err)
	assert.ErrorContains(t, err, corrupt)

	for _, dim := range domain.Dimensions {
		_, err = store.GroupTodos(ctx, domain.GroupQuery{Dimension: dim})
		assert.Error(t, err, "grouping by %s must not omit the corrupt record", dim)
	}

	n, err := store.CountTodos(ctx)
	require.NoError(t, err)
	assert.Equal(t, int64(2), n)
}

func TestFSStore_IgnoresNonTodoFiles(t *testing.T) {
	dir := t.TempDir()
	store, err := NewStore(dir)
	require.NoError(t, err)
	defer store.Close()

	require.NoError(t, os.WriteFile(filepath.Join(dir, "README.txt"), []byte("hello"), 0o644))
	require.NoError(t, os.Mkdir(filepath.Join(dir, "nested.json"), 0o755))

	n, err := store.CountTodos(context.Background())
	require.NoError(t, err)
	assert.Zero(t, n)
}

func TestFSStore_SharedDirectory(t *testing.T) {
	dir := t.TempDir()
	a, err := NewStore(dir)
	require.NoError(t, err)
	defer a.Close()
	b, err := NewStore(dir)
	require.NoError(t, err)
	defer b.Close()
	ctx := context.Background()

	id, err := a.CreateTodo(ctx, &domain.Todo{Owner: "Ana", Body: "b", Category: "c"})
	require.NoError(t, err)

	got, err := b.FindTodoByID(ctx, id)
	require.NoError(t, err)
	assert.Equal(t, "Ana", got.Owner)
}

func TestFSStore_ConcurrentCreates(t *testing.T) {
	store, err := NewStore(t.TempDir())
	require.NoError(t, err)
	defer store.Close()
	ctx := context.Background()

	const n = 25
	var wg sync.WaitGroup
	errs := make(chan error, n)
	for range n {
		wg.Add(1)
		go func() {
			defer wg.Done()
			_, err := store.CreateTodo(ctx, &domain.Todo{Owner: "Ana", Body: "b", Category: "c"})
			errs <- err
		}()
	}
	wg.Wait()
	close(errs)

	for err := range errs {
		require.NoError(t, err)
	}
	count, err := store.CountTodos(ctx)
	require.NoError(t, err)
	assert.Equal(t, int64(n), count)
}
