package logger

import (
	"encoding/json"
	"log/slog"
	"strconv"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestBuildLogEntry(t *testing.T) {
	before := time.Now().UnixNano()
	entry := buildLogEntry("eshop-api", "info", "hello", []slog.Attr{slog.String("k", "v")})

	require.Len(t, entry.Streams, 1)
	stream := entry.Streams[0]
	assert.Equal(t, map[string]string{"level": "info", "job": "eshop-api"}, stream.Stream)
	require.Len(t, stream.Values, 1)

	ts, err := strconv.ParseInt(stream.Values[0][0], 10, 64)
	require.NoError(t, err)
	assert.GreaterOrEqual(t, ts, before)

	var line map[string]any
	require.NoError(t, json.Unmarshal([]byte(stream.Values[0][1]), &line))
	assert.Equal(t, "hello", line["message"])
	assert.Equal(t, "v", line["k"])

	raw, err := json.Marshal(entry)
	require.NoError(t, err)
	assert.Contains(t, string(raw), `"streams":[{"stream":{`)
}

func TestBuildLogLine_ReservedKeysWin(t *testing.T) {
	at := time.Date(2026, 1, 2, 3, 4, 5, 0, time.UTC)
	line := buildLogLine(at, "warn", "disk", []slog.Attr{
		slog.String("message", "spoofed"),
		slog.Int("files", 3),
	})

	var m map[string]any
	require.NoError(t, json.Unmarshal([]byte(line), &m))
	assert.Equal(t, "disk", m["message"])
	assert.Equal(t, "warn", m["level"])
	assert.Equal(t, "2026-01-02T03:04:05Z", m["time"])
	assert.Equal(t, float64(3), m["files"])
}
