package audit

import (
	"bytes"
	"encoding/json"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestFileLoggerWritesJSONL(t *testing.T) {
	var buf bytes.Buffer
	l := newWriterLogger(&buf)

	l.Log(ActionTokenCreated, "cli", "127.0.0.1", "req-1", map[string]interface{}{"ttl": 3600})
	l.Log(ActionAuthFailed, "", "10.0.0.5", "req-2", nil)

	lines := strings.Split(strings.TrimSpace(buf.String()), "\n")
	require.Len(t, lines, 2)

	var first Entry
	require.NoError(t, json.Unmarshal([]byte(lines[0]), &first))
	assert.Equal(t, ActionTokenCreated, first.Action)
	assert.Equal(t, "cli", first.ClientID)
	assert.Equal(t, "req-1", first.RequestID)
	assert.EqualValues(t, 3600, first.Details["ttl"])
	assert.NotEmpty(t, first.Timestamp)

	var second Entry
	require.NoError(t, json.Unmarshal([]byte(lines[1]), &second))
	assert.Equal(t, ActionAuthFailed, second.Action)
	assert.Empty(t, second.ClientID)
	assert.Equal(t, "10.0.0.5", second.SourceIP)
}

func TestNopLogger(t *testing.T) {
	var l Logger = NopLogger{}
	// 只要不 panic 即可
	l.Log(ActionASRRequest, "c", "ip", "rid", nil)
}
