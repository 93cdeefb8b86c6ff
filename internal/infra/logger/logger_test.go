package logger

import (
	"context"
	"testing"

	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
	"go.uber.org/zap/zaptest/observer"
)

func TestWithContextAttachesRequestID(t *testing.T) {
	core, logs := observer.New(zap.DebugLevel)
	prev := lg
	lg = zap.New(core)
	defer func() { lg = prev }()

	ctx := context.WithValue(context.Background(), RequestIDKey{}, "req-123")
	WithContext(ctx).Info("hello")

	entries := logs.All()
	if len(entries) != 1 {
		t.Fatalf("expected 1 log entry, got %d", len(entries))
	}

	var requestID string
	for _, field := range entries[0].Context {
		if field.Key == "request_id" && field.Type == zapcore.StringType {
			requestID = field.String
		}
	}
	if requestID != "req-123" {
		t.Fatalf("request_id field = %q, want req-123", requestID)
	}
}

func TestWithContextToleratesMissingID(t *testing.T) {
	core, logs := observer.New(zap.DebugLevel)
	prev := lg
	lg = zap.New(core)
	defer func() { lg = prev }()

	WithContext(context.Background()).Info("no id")

	entries := logs.All()
	if len(entries) != 1 {
		t.Fatalf("expected 1 log entry, got %d", len(entries))
	}
	for _, field := range entries[0].Context {
		if field.Key == "request_id" && field.String != "" {
			t.Fatalf("unexpected request_id %q", field.String)
		}
	}
}

func TestWithContextNilSafety(t *testing.T) {
	prev := lg
	lg = nil
	defer func() { lg = prev }()

	if WithContext(context.Background()) == nil {
		t.Fatal("WithContext returned nil logger")
	}
}

func TestMaskString(t *testing.T) {
	cases := []struct {
		in   string
		want string
	}{
		{"", ""},
		{"a", "***"},
		{"abcd", "***"},
		{"abcde", "ab***de"},
		{"RID_secretcode123", "RI***23"},
	}

	for _, tc := range cases {
		if got := MaskString(tc.in); got != tc.want {
			t.Errorf("MaskString(%q) = %q, want %q", tc.in, got, tc.want)
		}
	}
}
