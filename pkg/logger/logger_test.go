package logger

import (
	"bytes"
	"context"
	"encoding/json"
	"testing"

	"github.com/rs/zerolog"
)

func TestFieldsTravelThroughContext(t *testing.T) {
	var buf bytes.Buffer
	logg := New(Options{ServiceName: "test", Level: zerolog.InfoLevel, Output: &buf})

	ctx := logg.WithBatchID(context.Background(), "batch-123")
	ctx = logg.WithFields(ctx, map[string]any{"filename": "photo.jpg"})
	logg.Info(ctx, "file processed")

	var entry map[string]any
	if err := json.Unmarshal(buf.Bytes(), &entry); err != nil {
		t.Fatalf("log output is not json: %v", err)
	}
	if entry["batch_id"] != "batch-123" {
		t.Fatalf("expected batch_id field, got %v", entry["batch_id"])
	}
	if entry["filename"] != "photo.jpg" {
		t.Fatalf("expected filename field, got %v", entry["filename"])
	}
	if entry["service"] != "test" {
		t.Fatalf("expected service field, got %v", entry["service"])
	}
}

func TestParseLevel(t *testing.T) {
	t.Parallel()

	if ParseLevel("warn") != zerolog.WarnLevel {
		t.Fatal("expected warn level")
	}
	if ParseLevel("") != zerolog.InfoLevel {
		t.Fatal("expected info default for empty value")
	}
	if ParseLevel("bogus") != zerolog.InfoLevel {
		t.Fatal("expected info default for bogus value")
	}
}
