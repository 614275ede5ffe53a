package main

import (
	"bytes"
	"context"
	"encoding/json"
	"io"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gopkg.in/yaml.v3"

	"github.com/rezkam/todos/internal/domain"
)

// run executes todoctl against an fs store in dir and returns stdout.
func run(t *testing.T, dir string, args ...string) (string, error) {
	t.Helper()
	var out bytes.Buffer
	root := newRootCmd(&out)
	root.SetErr(io.Discard)
	root.SetArgs(append([]string{"--storage-type", "fs", "--fs-dir", dir}, args...))
	err := root.ExecuteContext(context.Background())
	return out.String(), err
}

func seeded(t *testing.T) (dir string, ids []string) {
	t.Helper()
	dir = t.TempDir()
	out, err := run(t, dir, "seed", filepath.Join("testdata", "todos.yaml"))
	require.NoError(t, err)

	var result struct {
		Inserted int      `json:"inserted"`
		IDs      []string `json:"ids"`
	}
	require.NoError(t, json.Unmarshal([]byte(out), &result))
	require.Equal(t, 4, result.Inserted)
	return dir, result.IDs
}

func listOwners(t *testing.T, out string) []string {
	t.Helper()
	var rows []todoRow
	require.NoError(t, json.Unmarshal([]byte(out), &rows))
	owners := make([]string, 0, len(rows))
	for _, r := range rows {
		owners = append(owners, r.Owner)
	}
	return owners
}

func TestList(t *testing.T) {
	dir, _ := seeded(t)

	testCases := []struct {
		name string
		args []string
		want []string
	}{
		{name: "all", args: nil, want: []string{"Chris", "Fry", "Jill", "Jimmy"}},
		{name: "status", args: []string{"--status", "complete"}, want: []string{"Fry"}},
		{name: "contains", args: []string{"--contains", "POTATO"}, want: []string{"Jill"}},
		{name: "sorted and limited", args: []string{"--sort-by", "category", "--sort-order", "desc", "--limit", "2"}, want: []string{"Chris", "Jimmy"}},
	}

	for _, tc := range testCases {
		t.Run(tc.name, func(t *testing.T) {
			out, err := run(t, dir, append([]string{"list"}, tc.args...)...)
			require.NoError(t, err)
			assert.Equal(t, tc.want, listOwners(t, out))
		})
	}
}

func TestList_InvalidLimit(t *testing.T) {
	dir, _ := seeded(t)

	_, err := run(t, dir, "list", "--limit", "0")

	require.ErrorIs(t, err, domain.ErrInvalidLimit)
}

func TestGroup(t *testing.T) {
	dir, _ := seeded(t)

	out, err := run(t, dir, "group", "status", "--sort-by", "count", "--sort-order", "desc")
	require.NoError(t, err)

	var rows []summaryRow
	require.NoError(t, json.Unmarshal([]byte(out), &rows))
	require.Len(t, rows, 2)
	assert.Equal(t, "false", rows[0].Key)
	assert.Equal(t, 3, rows[0].Count)
	assert.Equal(t, "true", rows[1].Key)
	assert.Equal(t, []memberRow{{ID: rows[1].Todos[0].ID, Owner: "Fry"}}, rows[1].Todos)
}

func TestGroup_UnknownDimension(t *testing.T) {
	dir, _ := seeded(t)

	_, err := run(t, dir, "group", "body")

	require.ErrorIs(t, err, domain.ErrValidation)
}

func TestCreateGetDelete(t *testing.T) {
	dir := t.TempDir()

	out, err := run(t, dir, "create", "--owner", "Ana", "--status", "--body", "write docs", "--category", "work")
	require.NoError(t, err)
	var created map[string]string
	require.NoError(t, json.Unmarshal([]byte(out), &created))
	id := created["id"]
	require.NotEmpty(t, id)

	out, err = run(t, dir, "get", id)
	require.NoError(t, err)
	var row todoRow
	require.NoError(t, json.Unmarshal([]byte(out), &row))
	assert.Equal(t, todoRow{ID: id, Owner: "Ana", Status: true, Body: "write docs", Category: "work"}, row)

	_, err = run(t, dir, "delete", id)
	require.NoError(t, err)

	_, err = run(t, dir, "delete", id)
	require.ErrorIs(t, err, domain.ErrTodoNotFound)
}

func TestCreate_Validation(t *testing.T) {
	dir := t.TempDir()

	_, err := run(t, dir, "create", "--owner", "Ana", "--category", "work")

	require.ErrorIs(t, err, domain.ErrBodyRequired)
}

func TestYAMLOutput(t *testing.T) {
	dir, _ := seeded(t)

	out, err := run(t, dir, "--format", "yaml", "list", "--owner", "Jill")
	require.NoError(t, err)

	var rows []todoRow
	require.NoError(t, yaml.Unmarshal([]byte(out), &rows))
	require.Len(t, rows, 1)
	assert.Equal(t, "this is a potatoman", rows[0].Body)
}

func TestUnknownFormat(t *testing.T) {
	dir, _ := seeded(t)

	_, err := run(t, dir, "--format", "csv", "list")

	assert.ErrorContains(t, err, `unknown output format "csv"`)
}

func TestConfigFile(t *testing.T) {
	dir, _ := seeded(t)
	cfgPath := filepath.Join(t.TempDir(), "todoctl.yaml")
	require.NoError(t, os.WriteFile(cfgPath, []byte("format: yaml\n"), 0o600))

	out, err := run(t, dir, "--config", cfgPath, "list", "--owner", "Fry")
	require.NoError(t, err)

	var rows []todoRow
	require.NoError(t, yaml.Unmarshal([]byte(out), &rows))
	require.Len(t, rows, 1)
	assert.Contains(t, out, "owner: Fry")
}

func TestLoadFixtures_Invalid(t *testing.T) {
	path := filepath.Join(t.TempDir(), "bad.yaml")
	require.NoError(t, os.WriteFile(path, []byte("owner: [unclosed"), 0o600))

	_, err := loadFixtures(path)

	assert.ErrorContains(t, err, "failed to parse fixtures")
}
