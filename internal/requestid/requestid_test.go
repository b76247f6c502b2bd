package requestid_test

import (
	"context"
	"net/http"
	"testing"

	"github.com/ErlanBelekov/invoice-console/internal/requestid"
)

func TestPropagate_SetsHeaderFromContext(t *testing.T) {
	ctx := requestid.WithRequestID(context.Background(), "req-123")
	req, _ := http.NewRequest(http.MethodGet, "http://api.local/", nil)

	requestid.Propagate(ctx, req)

	if got := req.Header.Get(requestid.Header); got != "req-123" {
		t.Errorf("header = %q, want req-123", got)
	}
}

func TestPropagate_NoIDLeavesHeaderUnset(t *testing.T) {
	req, _ := http.NewRequest(http.MethodGet, "http://api.local/", nil)

	requestid.Propagate(context.Background(), req)

	if _, ok := req.Header[requestid.Header]; ok {
		t.Error("header should not be set without a request ID")
	}
}
