package audit

import (
	"bytes"
	"encoding/json"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestJSONLinesLogger(t *testing.T) {
	var buf bytes.Buffer
	session := NewJSONLinesLogger(&buf).NewSession()

	require.NoError(t, session.Command("/home/user", "make all", 0))
	require.NoError(t, session.Command("/home/user", "false", 1))

	lines := strings.Split(strings.TrimSpace(buf.String()), "\n")
	require.Len(t, lines, 2)

	var first, second Entry
	require.NoError(t, json.Unmarshal([]byte(lines[0]), &first))
	require.NoError(t, json.Unmarshal([]byte(lines[1]), &second))

	assert.Equal(t, "make all", first.Command)
	assert.Equal(t, 0, first.Status)
	assert.Equal(t, "/home/user", first.Dir)
	assert.NotEmpty(t, first.SessionID)
	assert.NotZero(t, first.TimestampMicros)

	assert.Equal(t, 1, second.Status)
	assert.Equal(t, first.SessionID, second.SessionID, "one session shares an ID")
}

func TestDiscard(t *testing.T) {
	session := Discard().NewSession()
	assert.NoError(t, session.Command("/", "echo hi", 0))
}
