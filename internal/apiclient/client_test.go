package apiclient_test

import (
	"context"
	"errors"
	"io"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/ErlanBelekov/invoice-console/internal/apiclient"
	"github.com/ErlanBelekov/invoice-console/internal/requestid"
)

type fakeTokens struct {
	token string
	err   error
	calls int
}

func (f *fakeTokens) AccessToken(_ context.Context) (string, error) {
	f.calls++
	return f.token, f.err
}

func newClient(url string, timeout time.Duration) *apiclient.Client {
	logger := slog.New(slog.NewTextHandler(io.Discard, nil))
	return apiclient.New(url, timeout, logger)
}

func TestGet_AttachesBearerAndDecodes(t *testing.T) {
	var gotAuth, gotAccept, gotReqID string
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		gotAuth = r.Header.Get("Authorization")
		gotAccept = r.Header.Get("Accept")
		gotReqID = r.Header.Get(requestid.Header)
		if r.URL.Path != "/api/invoices/1/" {
			t.Errorf("path = %s", r.URL.Path)
		}
		w.Header().Set("Content-Type", "application/json")
		_, _ = w.Write([]byte(`{"id":"1","invoice_number":"INV-1"}`))
	}))
	defer srv.Close()

	c := newClient(srv.URL+"/", time.Second).WithTokens(&fakeTokens{token: "tok-1"})
	ctx := requestid.WithRequestID(context.Background(), "req-9")

	var out struct {
		ID     string `json:"id"`
		Number string `json:"invoice_number"`
	}
	if err := c.Get(ctx, "/api/invoices/1/", &out); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if gotAuth != "Bearer tok-1" {
		t.Errorf("Authorization = %q, want Bearer tok-1", gotAuth)
	}
	if gotAccept != "application/json" {
		t.Errorf("Accept = %q", gotAccept)
	}
	if gotReqID != "req-9" {
		t.Errorf("X-Request-ID = %q, want req-9", gotReqID)
	}
	if out.Number != "INV-1" {
		t.Errorf("decoded number = %q", out.Number)
	}
}

func TestGet_EmptyTokenSendsNoAuthorization(t *testing.T) {
	var sawAuth bool
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		_, sawAuth = r.Header["Authorization"]
		w.WriteHeader(http.StatusOK)
	}))
	defer srv.Close()

	c := newClient(srv.URL, time.Second).WithTokens(&fakeTokens{})
	if err := c.Get(context.Background(), "/x", nil); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if sawAuth {
		t.Error("Authorization header should be absent for an empty token")
	}
}

func TestGet_TokenSourceErrorAbortsCall(t *testing.T) {
	hit := false
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		hit = true
	}))
	defer srv.Close()

	loggedOut := errors.New("logged out")
	c := newClient(srv.URL, time.Second).WithTokens(&fakeTokens{err: loggedOut})

	err := c.Get(context.Background(), "/x", nil)
	if !errors.Is(err, loggedOut) {
		t.Fatalf("want wrapped token error, got %v", err)
	}
	if hit {
		t.Error("request should not reach the server")
	}
}

func TestPostWithoutToken_NeverAsksForToken(t *testing.T) {
	var gotAuth, gotCT, gotBody string
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		gotAuth = r.Header.Get("Authorization")
		gotCT = r.Header.Get("Content-Type")
		b, _ := io.ReadAll(r.Body)
		gotBody = string(b)
		_, _ = w.Write([]byte(`{"access":"a","refresh":"r"}`))
	}))
	defer srv.Close()

	tokens := &fakeTokens{token: "should-not-be-used"}
	c := newClient(srv.URL, time.Second).WithTokens(tokens)

	var out struct{ Access, Refresh string }
	err := c.PostWithoutToken(context.Background(), "/api/auth/login/", map[string]string{"email": "a@b.c"}, &out)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if tokens.calls != 0 {
		t.Errorf("token source called %d times, want 0", tokens.calls)
	}
	if gotAuth != "" {
		t.Errorf("Authorization = %q, want empty", gotAuth)
	}
	if gotCT != "application/json" {
		t.Errorf("Content-Type = %q, want application/json", gotCT)
	}
	if gotBody != `{"email":"a@b.c"}` {
		t.Errorf("body = %s", gotBody)
	}
	if out.Access != "a" || out.Refresh != "r" {
		t.Errorf("decoded = %+v", out)
	}
}

func TestPostMultipart_UsesBoundaryContentType(t *testing.T) {
	var gotCT, gotName, gotFile string
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		gotCT = r.Header.Get("Content-Type")
		if err := r.ParseMultipartForm(1 << 20); err != nil {
			t.Errorf("parse multipart: %v", err)
			return
		}
		gotName = r.FormValue("name")
		f, _, err := r.FormFile("avatar")
		if err == nil {
			b, _ := io.ReadAll(f)
			gotFile = string(b)
		}
		w.WriteHeader(http.StatusOK)
	}))
	defer srv.Close()

	c := newClient(srv.URL, time.Second).WithTokens(&fakeTokens{token: "t"})
	form := &apiclient.Form{}
	form.Set("name", "Ada")
	form.AddFile(apiclient.File{Field: "avatar", Filename: "me.png", ContentType: "image/png", Data: []byte("png-bytes")})

	if err := c.PostMultipart(context.Background(), "/api/auth/edit/", form, nil); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if !strings.HasPrefix(gotCT, "multipart/form-data; boundary=") {
		t.Errorf("Content-Type = %q, want multipart with boundary", gotCT)
	}
	if strings.Contains(gotCT, "application/json") {
		t.Error("multipart request must not carry the JSON content type")
	}
	if gotName != "Ada" {
		t.Errorf("name = %q", gotName)
	}
	if gotFile != "png-bytes" {
		t.Errorf("file = %q", gotFile)
	}
}

func TestNon2xx_ReturnsAPIErrorWithMessage(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusForbidden)
		_, _ = w.Write([]byte(`{"error":"Only draft invoices can be edited"}`))
	}))
	defer srv.Close()

	c := newClient(srv.URL, time.Second)
	err := c.Put(context.Background(), "/api/invoices/1/", map[string]string{}, nil)

	apiErr, ok := apiclient.AsAPIError(err)
	if !ok {
		t.Fatalf("want *APIError, got %T %v", err, err)
	}
	if apiErr.StatusCode != http.StatusForbidden {
		t.Errorf("status = %d, want 403", apiErr.StatusCode)
	}
	if apiErr.Message != "Only draft invoices can be edited" {
		t.Errorf("message = %q", apiErr.Message)
	}
	if apiclient.StatusCode(err) != http.StatusForbidden {
		t.Errorf("StatusCode(err) = %d", apiclient.StatusCode(err))
	}
}

func TestNon2xx_FieldErrors(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusBadRequest)
		_, _ = w.Write([]byte(`{"email":["A user with that email already exists."]}`))
	}))
	defer srv.Close()

	err := newClient(srv.URL, time.Second).PostWithoutToken(context.Background(), "/api/auth/register/", nil, nil)
	apiErr, ok := apiclient.AsAPIError(err)
	if !ok {
		t.Fatalf("want *APIError, got %v", err)
	}
	if apiErr.Message != "Email: A user with that email already exists." {
		t.Errorf("message = %q", apiErr.Message)
	}
}

func TestNon2xx_NoBodyFallsBackToStatusText(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusBadGateway)
	}))
	defer srv.Close()

	err := newClient(srv.URL, time.Second).Get(context.Background(), "/x", nil)
	apiErr, ok := apiclient.AsAPIError(err)
	if !ok {
		t.Fatalf("want *APIError, got %v", err)
	}
	if apiErr.Message != http.StatusText(http.StatusBadGateway) {
		t.Errorf("message = %q", apiErr.Message)
	}
}

func TestTimeout_SurfacesAsError(t *testing.T) {
	release := make(chan struct{})
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		select {
		case <-release:
		case <-r.Context().Done():
		}
	}))
	defer srv.Close()
	defer close(release)

	err := newClient(srv.URL, 50*time.Millisecond).Get(context.Background(), "/slow", nil)
	if err == nil {
		t.Fatal("expected timeout error")
	}
	if _, ok := apiclient.AsAPIError(err); ok {
		t.Error("timeout should not be an APIError")
	}
}

func TestDelete_NoContent(t *testing.T) {
	var method string
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		method = r.Method
		w.WriteHeader(http.StatusNoContent)
	}))
	defer srv.Close()

	var out map[string]any
	if err := newClient(srv.URL, time.Second).Delete(context.Background(), "/api/invoices/4/", &out); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if method != http.MethodDelete {
		t.Errorf("method = %s", method)
	}
}

func TestPing(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path == "/healthz" {
			w.WriteHeader(http.StatusNotFound)
			return
		}
	}))

	if err := newClient(srv.URL, time.Second).Ping(context.Background()); err != nil {
		t.Errorf("a 404 still proves the API is reachable, got %v", err)
	}

	srv.Close()
	if err := newClient(srv.URL, time.Second).Ping(context.Background()); err == nil {
		t.Error("expected error once the server is gone")
	}
}
