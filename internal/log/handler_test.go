package log_test

import (
	"bytes"
	"context"
	"encoding/json"
	"log/slog"
	"testing"

	"github.com/ErlanBelekov/invoice-console/internal/domain"
	ctxlog "github.com/ErlanBelekov/invoice-console/internal/log"
	"github.com/ErlanBelekov/invoice-console/internal/requestid"
	"github.com/ErlanBelekov/invoice-console/internal/sessionctx"
)

func TestContextHandler_AddsRequestAndUser(t *testing.T) {
	var buf bytes.Buffer
	logger := slog.New(ctxlog.NewContextHandler(slog.NewJSONHandler(&buf, nil)))

	ctx := requestid.WithRequestID(context.Background(), "req-1")
	ctx = sessionctx.With(ctx, &domain.Session{ID: "s-1", UserID: "user-1"})
	logger.InfoContext(ctx, "hello")

	var rec map[string]any
	if err := json.Unmarshal(buf.Bytes(), &rec); err != nil {
		t.Fatalf("decode log line: %v", err)
	}
	if rec["request_id"] != "req-1" {
		t.Errorf("request_id = %v, want req-1", rec["request_id"])
	}
	if rec["user_id"] != "user-1" {
		t.Errorf("user_id = %v, want user-1", rec["user_id"])
	}
}

func TestContextHandler_AnonymousRecordHasNoUser(t *testing.T) {
	var buf bytes.Buffer
	logger := slog.New(ctxlog.NewContextHandler(slog.NewJSONHandler(&buf, nil)))

	logger.InfoContext(context.Background(), "hello")

	var rec map[string]any
	if err := json.Unmarshal(buf.Bytes(), &rec); err != nil {
		t.Fatalf("decode log line: %v", err)
	}
	if _, ok := rec["user_id"]; ok {
		t.Error("user_id should be absent")
	}
	if _, ok := rec["request_id"]; ok {
		t.Error("request_id should be absent")
	}
}
