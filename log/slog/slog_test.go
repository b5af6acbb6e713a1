package slog

import (
	"bytes"
	"encoding/json"
	stdslog "log/slog"
	"testing"

	"github.com/unkn0wn-root/resultcache"
)

func TestJSONOutput(t *testing.T) {
	var buf bytes.Buffer
	l := Logger{L: stdslog.New(stdslog.NewJSONHandler(&buf, &stdslog.HandlerOptions{Level: stdslog.LevelDebug}))}

	l.Info("cleared", resultcache.Fields{"namespace": "mikro", "removed": 3})

	var rec map[string]any
	if err := json.Unmarshal(buf.Bytes(), &rec); err != nil {
		t.Fatalf("bad json %q: %v", buf.String(), err)
	}
	if rec["msg"] != "cleared" || rec["level"] != "INFO" || rec["namespace"] != "mikro" || rec["removed"] != float64(3) {
		t.Fatalf("unexpected record %v", rec)
	}
}
