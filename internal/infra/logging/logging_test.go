//go:build !integration

package logging

import (
	"bytes"
	"context"
	"encoding/json"
	"testing"

	"github.com/rs/zerolog"
)

func TestWith(t *testing.T) {
	var buf bytes.Buffer
	base := zerolog.New(&buf)

	ctx := WithJob(WithChatID(WithRunID(context.Background(), "run-1"), 42), "promo:domains:en")
	With(ctx, &base).Info().Msg("hello")

	var got map[string]any
	if err := json.Unmarshal(buf.Bytes(), &got); err != nil {
		t.Fatalf("invalid json log line: %v", err)
	}
	if got["run_id"] != "run-1" || got["chat_id"] != float64(42) || got["job"] != "promo:domains:en" {
		t.Errorf("unexpected fields: %v", got)
	}
}

func TestComponent(t *testing.T) {
	var buf bytes.Buffer
	base := zerolog.New(&buf)
	Component(&base, "broadcast").Info().Msg("x")

	var got map[string]any
	_ = json.Unmarshal(buf.Bytes(), &got)
	if got["component"] != "broadcast" {
		t.Errorf("expected component field, got %v", got)
	}
}

func TestRedact(t *testing.T) {
	if Redact("123456789:ABCDEF", false) != "1234...EF" {
		t.Errorf("unexpected redaction %q", Redact("123456789:ABCDEF", false))
	}
	if Redact("short", false) != "***" {
		t.Error("short secrets must be fully hidden")
	}
	if Redact("visible", true) != "visible" {
		t.Error("dev mode keeps values")
	}
}
