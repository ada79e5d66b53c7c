package log

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func decodeLines(t *testing.T, buf *bytes.Buffer) []map[string]any {
	t.Helper()
	var entries []map[string]any
	for _, line := range strings.Split(strings.TrimSpace(buf.String()), "\n") {
		if line == "" {
			continue
		}
		var entry map[string]any
		require.NoError(t, json.Unmarshal([]byte(line), &entry))
		entries = append(entries, entry)
	}
	return entries
}

func TestLogger_InfoWritesJSON(t *testing.T) {
	var buf bytes.Buffer
	logger := NewLoggerWithOutput(&buf)

	logger.Info(context.Background(), "menu loaded")

	entries := decodeLines(t, &buf)
	require.Len(t, entries, 1)
	assert.Equal(t, "menu loaded", entries[0]["Message"])
	assert.Equal(t, "info", entries[0]["Level"])
	assert.Contains(t, entries[0], "DateTime")
}

func TestLogger_ExceptionStringifiesError(t *testing.T) {
	var buf bytes.Buffer
	logger := NewLoggerWithOutput(&buf)

	logger.Exception(context.Background(), "write failed", errors.New("disk full"))

	entries := decodeLines(t, &buf)
	require.Len(t, entries, 1)
	assert.Equal(t, "disk full", entries[0]["Exception"])
	assert.Equal(t, "error", entries[0]["Level"])
}

func TestLogger_CorrelationIDIsCarriedByContext(t *testing.T) {
	var buf bytes.Buffer
	logger := NewLoggerWithOutput(&buf)

	ctx := logger.WithCorrelationID(context.Background(), "req-42")
	logger.WarnWithExtra(ctx, "order rejected", map[string]any{"CustomerId": "2023001"})

	entries := decodeLines(t, &buf)
	require.Len(t, entries, 1)
	assert.Equal(t, "req-42", entries[0]["CorrelationId"])
	assert.Equal(t, "2023001", entries[0]["CustomerId"])
	assert.Equal(t, "warning", entries[0]["Level"])
}

func TestLogger_RequestResponseLevelFollowsStatus(t *testing.T) {
	var buf bytes.Buffer
	logger := NewLoggerWithOutput(&buf)
	ctx := context.Background()

	logger.RequestResponse(ctx, &Field{HTTPStatusCode: 201, Message: "ok"})
	logger.RequestResponse(ctx, &Field{HTTPStatusCode: 422, Message: "rejected"})
	logger.RequestResponse(ctx, &Field{HTTPStatusCode: 500, Message: "boom"})

	entries := decodeLines(t, &buf)
	require.Len(t, entries, 3)
	assert.Equal(t, "info", entries[0]["Level"])
	assert.Equal(t, "warning", entries[1]["Level"])
	assert.Equal(t, "error", entries[2]["Level"])
}

func TestLogger_FatalExits(t *testing.T) {
	var buf bytes.Buffer
	l := NewLoggerWithOutput(&buf).(*logger)
	code := 0
	l.exit = func(c int) { code = c }

	l.Fatal(context.Background(), "config missing", errors.New("no menu"))

	assert.Equal(t, -1, code)
	assert.Contains(t, buf.String(), "config missing")
}
