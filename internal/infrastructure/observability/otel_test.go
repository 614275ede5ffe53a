package observability

import (
	"bytes"
	"context"
	"encoding/json"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestParseOTLPHeaders(t *testing.T) {
	testCases := []struct {
		name string
		raw  string
		want map[string]string
	}{
		{name: "empty", raw: "", want: nil},
		{name: "url encoded value", raw: "Authorization=Basic%20dG9rZW4=", want: map[string]string{"Authorization": "Basic dG9rZW4="}},
		{name: "multiple pairs", raw: "a=1, b=2", want: map[string]string{"a": "1", "b": "2"}},
		{name: "pair without value is skipped", raw: "novalue,c=3", want: map[string]string{"c": "3"}},
		{name: "undecodable value kept as is", raw: "d=100%", want: map[string]string{"d": "100%"}},
	}

	for _, tc := range testCases {
		t.Run(tc.name, func(t *testing.T) {
			assert.Equal(t, tc.want, parseOTLPHeaders(tc.raw))
		})
	}
}

func TestInit_Disabled(t *testing.T) {
	var buf bytes.Buffer
	ctx := context.Background()

	tel, err := Init(ctx, Config{Enabled: false, Output: &buf})
	require.NoError(t, err)

	tel.Logger.InfoContext(ctx, "todo created", "todo_id", "42")

	var entry map[string]any
	require.NoError(t, json.Unmarshal(buf.Bytes(), &entry))
	assert.Equal(t, "todo created", entry["msg"])
	assert.Equal(t, "42", entry["todo_id"])

	assert.NoError(t, tel.Shutdown(ctx))
}

func TestConfig_ServiceNameDefault(t *testing.T) {
	assert.Equal(t, DefaultServiceName, Config{}.serviceName())
	assert.Equal(t, "todos-cli", Config{ServiceName: "todos-cli"}.serviceName())
}
