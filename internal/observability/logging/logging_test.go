package logging

import (
	"bytes"
	"context"
	"encoding/json"
	"log/slog"
	"testing"
)

func TestNewLogger_ProdWritesJSONWithContextAttrs(t *testing.T) {
	var buf bytes.Buffer
	logger := NewLogger(Config{
		Service:       ServiceInfo{Name: "reminder", Version: "v1"},
		Environment:   EnvProd,
		DefaultModule: Module("practice-reminder"),
	}, &buf)

	ctx := WithRequestID(context.Background(), "req-1")
	logger.InfoContext(ctx, "hello", slog.String("reminder_id", "r-1"))

	var entry map[string]any
	if err := json.Unmarshal(buf.Bytes(), &entry); err != nil {
		t.Fatalf("expected JSON output, got %q: %v", buf.String(), err)
	}

	if entry["request_id"] != "req-1" {
		t.Errorf("request_id: got %v, want req-1", entry["request_id"])
	}
	if entry["module"] != "practice-reminder" {
		t.Errorf("module: got %v, want practice-reminder", entry["module"])
	}
	if entry["reminder_id"] != "r-1" {
		t.Errorf("reminder_id: got %v, want r-1", entry["reminder_id"])
	}
}

func TestNewLogger_ModuleFromContextOverridesDefault(t *testing.T) {
	var buf bytes.Buffer
	logger := NewLogger(Config{
		Environment:   EnvProd,
		DefaultModule: Module("default"),
	}, &buf)

	logger.InfoContext(WithModule(context.Background(), Module("scheduler")), "resync")

	var entry map[string]any
	if err := json.Unmarshal(buf.Bytes(), &entry); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if entry["module"] != "scheduler" {
		t.Errorf("module: got %v, want scheduler", entry["module"])
	}
}

func TestValidateAndExtractRequestID(t *testing.T) {
	tests := []struct {
		name     string
		input    string
		wantSame bool
	}{
		{name: "valid id is kept", input: "abc-123_x.y", wantSame: true},
		{name: "empty id is replaced", input: "", wantSame: false},
		{name: "id with spaces is replaced", input: "abc 123", wantSame: false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := ValidateAndExtractRequestID(tt.input)
			if tt.wantSame && got != tt.input {
				t.Errorf("got %q, want %q", got, tt.input)
			}
			if !tt.wantSame && (got == tt.input || got == "") {
				t.Errorf("expected a generated id, got %q", got)
			}
		})
	}
}
