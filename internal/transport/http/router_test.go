package httptransport_test

import (
	"context"
	"io"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/ErlanBelekov/invoice-console/internal/domain"
	httptransport "github.com/ErlanBelekov/invoice-console/internal/transport/http"
	"github.com/ErlanBelekov/invoice-console/internal/transport/http/handler"
	"github.com/ErlanBelekov/invoice-console/internal/transport/http/middleware"
	"github.com/gin-gonic/gin"
)

func init() {
	gin.SetMode(gin.TestMode)
}

type noSessions struct{}

func (noSessions) Current(context.Context, string) (*domain.Session, error) {
	return nil, domain.ErrLoggedOut
}

func newRouter() *gin.Engine {
	logger := slog.New(slog.NewTextHandler(io.Discard, nil))
	cookie := middleware.Cookie{Name: "session_id"}
	h := httptransport.Handlers{
		Auth:     handler.NewAuthHandler(nil, cookie, logger),
		Account:  handler.NewAccountHandler(nil, logger),
		Invoices: handler.NewInvoiceHandler(nil, logger),
		Reports:  handler.NewReportHandler(nil, logger),
	}
	return httptransport.NewRouter(logger, h, noSessions{}, cookie)
}

func TestRouter_ProtectedPagesRedirectToLogin(t *testing.T) {
	r := newRouter()
	for target, want := range map[string]string{
		"/":               "/dashboard",
		"/dashboard":      "/login?next=%2Fdashboard",
		"/analytics":      "/login?next=%2Fanalytics",
		"/account":        "/login?next=%2Faccount",
		"/invoices":       "/login?next=%2Finvoices",
		"/invoices/new":   "/login?next=%2Finvoices%2Fnew",
		"/invoices/4/pdf": "/login?next=%2Finvoices%2F4%2Fpdf",
	} {
		w := httptest.NewRecorder()
		r.ServeHTTP(w, httptest.NewRequest(http.MethodGet, target, nil))
		if w.Code != http.StatusFound {
			t.Errorf("GET %s: status = %d, want 302", target, w.Code)
			continue
		}
		if loc := w.Header().Get("Location"); loc != want {
			t.Errorf("GET %s: Location = %q, want %q", target, loc, want)
		}
	}
}

func TestRouter_LoginPagePublicWithSecurityHeaders(t *testing.T) {
	w := httptest.NewRecorder()
	newRouter().ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/login", nil))

	if w.Code != http.StatusOK {
		t.Fatalf("status = %d, want 200", w.Code)
	}
	if w.Header().Get("X-Content-Type-Options") != "nosniff" {
		t.Error("security headers missing")
	}
	if w.Header().Get("X-Request-ID") == "" {
		t.Error("request id header missing")
	}
}

func TestRouter_UnknownRouteIs404(t *testing.T) {
	w := httptest.NewRecorder()
	newRouter().ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/nope", nil))
	if w.Code != http.StatusNotFound {
		t.Errorf("status = %d, want 404", w.Code)
	}
}
