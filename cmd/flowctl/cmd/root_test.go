package cmd

import (
	"bytes"
	"encoding/json"
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"flowengine/application/dispatch"
	"flowengine/pkg/auth"
)

func execute(t *testing.T, stdin string, args ...string) (string, error) {
	t.Helper()
	root := newRootCmd()
	var out bytes.Buffer
	root.SetOut(&out)
	root.SetErr(&bytes.Buffer{})
	root.SetIn(strings.NewReader(stdin))
	root.SetArgs(args)
	err := root.Execute()
	return out.String(), err
}

func TestRunEnvelopeFromFile(t *testing.T) {
	path := filepath.Join(t.TempDir(), "request.json")
	require.NoError(t, os.WriteFile(path, []byte(`{
		"id": "cli-1",
		"type": "critical-path",
		"data": {
			"nodes": [{"id": "A", "type": "task"}, {"id": "B", "type": "task"}],
			"connections": [{"sourceNodeId": "A", "targetNodeId": "B", "type": "dependency"}]
		}
	}`), 0o600))

	out, err := execute(t, "", "run", "--file", path)

	require.NoError(t, err)
	var resp dispatch.Response
	require.NoError(t, json.Unmarshal([]byte(out), &resp))
	assert.Equal(t, "cli-1", resp.ID)
	assert.Equal(t, dispatch.ResponseSuccess, resp.Type)
}

func TestRunPayloadFromStdin(t *testing.T) {
	out, err := execute(t, `{"nodes":[],"timeline":[]}`, "run", "--type", "analyze-progress")

	require.NoError(t, err)
	assert.Contains(t, out, `"id":"flowctl"`)
	assert.Contains(t, out, `"type":"success"`)
}

func TestRunFailFlag(t *testing.T) {
	out, err := execute(t, `{"id":"x","type":"summarize"}`, "run", "--fail")

	assert.EqualError(t, err, `request "x" failed: unknown operation: summarize`)
	assert.Contains(t, out, "unknown operation: summarize")
}

func TestRunRejectsBadEnvelope(t *testing.T) {
	_, err := execute(t, `{"id":`, "run")

	assert.ErrorContains(t, err, "invalid request envelope")
}

func TestOperationsCommand(t *testing.T) {
	out, err := execute(t, "", "operations")

	require.NoError(t, err)
	assert.Equal(t, "analyze-complexity\nanalyze-progress\ndetect-bottlenecks\ncritical-path\n", out)
}

func TestTokenCommand(t *testing.T) {
	t.Setenv("JWT_SECRET", "s3cret")
	t.Setenv("JWT_ISSUER", "")

	out, err := execute(t, "", "token", "--subject", "ci", "--ttl", "5m")
	require.NoError(t, err)

	validator, err := auth.NewJWTValidator("s3cret", "flowengine")
	require.NoError(t, err)
	claims, err := validator.ValidateToken(strings.TrimSpace(out))
	require.NoError(t, err)
	assert.Equal(t, "ci", claims.UserID)
	assert.WithinDuration(t, time.Now().Add(5*time.Minute), claims.ExpiresAt.Time, 5*time.Second)
}
