package db

import (
	"bytes"
	"context"
	"errors"
	"log/slog"
	"strings"
	"testing"
)

func TestGormLoggerWritesThroughSlog(t *testing.T) {
	var buf bytes.Buffer
	l := slog.New(slog.NewJSONHandler(&buf, nil))

	gl := NewGormLogger(l, false)
	gl.Info(context.Background(), "hidden %s", "query")
	if buf.Len() != 0 {
		t.Fatalf("expected info to be suppressed without LogSQL, got %s", buf.String())
	}

	gl.Error(context.Background(), "query failed: %v", errors.New("boom"))
	out := buf.String()
	if !strings.Contains(out, "query failed") || !strings.Contains(out, `"component":"gorm"`) {
		t.Fatalf("expected gorm error in slog output, got %s", out)
	}

	buf.Reset()
	NewGormLogger(l, true).Info(context.Background(), "select %d", 1)
	if !strings.Contains(buf.String(), "select 1") {
		t.Fatalf("expected info with LogSQL, got %s", buf.String())
	}
}
