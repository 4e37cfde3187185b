package logger

import (
	"encoding/json"
	"log/slog"
	"strconv"
	"time"
)

// lokiPush is the body of POST /loki/api/v1/push.
type lokiPush struct {
	Streams []lokiStream `json:"streams"`
}

type lokiStream struct {
	Stream map[string]string `json:"stream"`
	Values [][2]string       `json:"values"`
}

// buildLogEntry wraps one log line into a single-stream push labelled with
// job and level.
func buildLogEntry(job, level, message string, attrs []slog.Attr) lokiPush {
	now := time.Now()
	return lokiPush{Streams: []lokiStream{{
		Stream: map[string]string{"level": level, "job": job},
		Values: [][2]string{{strconv.FormatInt(now.UnixNano(), 10), buildLogLine(now, level, message, attrs)}},
	}}}
}

// buildLogLine renders the same flat JSON shape the stdout handler writes.
// Attributes never override level, message or time.
func buildLogLine(at time.Time, level, message string, attrs []slog.Attr) string {
	line := make(map[string]any, len(attrs)+3)
	for _, attr := range attrs {
		line[attr.Key] = attr.Value.Resolve().Any()
	}
	line["level"] = level
	line["message"] = message
	line["time"] = at.UTC().Format(time.RFC3339Nano)

	b, err := json.Marshal(line)
	if err != nil {
		return `{"level":"` + level + `","message":` + strconv.Quote(message) + `}`
	}
	return string(b)
}
