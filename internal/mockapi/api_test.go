package mockapi_test

import (
	"bytes"
	"encoding/json"
	"io"
	"log/slog"
	"mime/multipart"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/ErlanBelekov/invoice-console/internal/domain"
	"github.com/ErlanBelekov/invoice-console/internal/mockapi"
	"github.com/gin-gonic/gin"
	"golang.org/x/crypto/bcrypt"
)

func init() {
	gin.SetMode(gin.TestMode)
}

var testSecret = []byte("mockapi-test-secret-at-least-32-bytes")

var discard = slog.New(slog.NewTextHandler(io.Discard, nil))

func newTestAPI(t *testing.T, rotate bool) (*gin.Engine, *mockapi.Store) {
	t.Helper()
	store, err := mockapi.NewSeededStore(bcrypt.MinCost)
	if err != nil {
		t.Fatalf("seed: %v", err)
	}
	tokens := mockapi.NewTokenIssuer(testSecret, time.Hour, 24*time.Hour)
	h := mockapi.NewHandler(store, tokens, rotate, "http://api.test", discard)
	return mockapi.NewRouter(discard, h, testSecret), store
}

func doJSON(t *testing.T, r http.Handler, method, path, token string, body any) *httptest.ResponseRecorder {
	t.Helper()
	var rd io.Reader
	if body != nil {
		b, err := json.Marshal(body)
		if err != nil {
			t.Fatalf("marshal: %v", err)
		}
		rd = bytes.NewReader(b)
	}
	req := httptest.NewRequest(method, path, rd)
	req.Header.Set("Content-Type", "application/json")
	if token != "" {
		req.Header.Set("Authorization", "Bearer "+token)
	}
	w := httptest.NewRecorder()
	r.ServeHTTP(w, req)
	return w
}

type tokens struct {
	Access  string `json:"access"`
	Refresh string `json:"refresh"`
	User    struct {
		PK    string `json:"pk"`
		Email string `json:"email"`
	} `json:"user"`
}

func login(t *testing.T, r http.Handler) tokens {
	t.Helper()
	w := doJSON(t, r, http.MethodPost, "/api/auth/login/", "", map[string]string{
		"email": mockapi.DemoEmail, "password": mockapi.DemoPassword,
	})
	if w.Code != http.StatusOK {
		t.Fatalf("login status = %d: %s", w.Code, w.Body)
	}
	var tk tokens
	if err := json.Unmarshal(w.Body.Bytes(), &tk); err != nil {
		t.Fatalf("decode: %v", err)
	}
	return tk
}

// ---- auth ----

func TestLogin_ReturnsTokensAndUser(t *testing.T) {
	r, _ := newTestAPI(t, true)
	tk := login(t, r)
	if tk.Access == "" || tk.Refresh == "" || tk.User.PK == "" {
		t.Fatalf("incomplete login response: %+v", tk)
	}
	if tk.User.Email != mockapi.DemoEmail {
		t.Errorf("email = %q", tk.User.Email)
	}
}

func TestLogin_WrongPassword_Returns401(t *testing.T) {
	r, _ := newTestAPI(t, true)
	w := doJSON(t, r, http.MethodPost, "/api/auth/login/", "", map[string]string{"email": mockapi.DemoEmail, "password": "nope"})
	if w.Code != http.StatusUnauthorized {
		t.Errorf("status = %d, want 401", w.Code)
	}
}

func TestRegister_FieldErrors(t *testing.T) {
	r, _ := newTestAPI(t, true)

	w := doJSON(t, r, http.MethodPost, "/api/auth/register/", "", map[string]string{
		"name": "Ada", "email": mockapi.DemoEmail, "password1": "secret1", "password2": "secret1",
	})
	if w.Code != http.StatusBadRequest || !strings.Contains(w.Body.String(), `"email"`) {
		t.Errorf("duplicate email: %d %s", w.Code, w.Body)
	}

	w = doJSON(t, r, http.MethodPost, "/api/auth/register/", "", map[string]string{
		"name": "Ada", "email": "ada@example.com", "password1": "secret1", "password2": "other12",
	})
	if w.Code != http.StatusBadRequest || !strings.Contains(w.Body.String(), `"password2"`) {
		t.Errorf("mismatch: %d %s", w.Code, w.Body)
	}

	w = doJSON(t, r, http.MethodPost, "/api/auth/register/", "", map[string]string{
		"name": "Ada", "email": "ada@example.com", "password1": "secret1", "password2": "secret1",
	})
	if w.Code != http.StatusCreated {
		t.Errorf("valid register: %d %s", w.Code, w.Body)
	}
}

func TestRefresh_RotationRevokesOldToken(t *testing.T) {
	r, _ := newTestAPI(t, true)
	tk := login(t, r)

	w := doJSON(t, r, http.MethodPost, "/api/auth/token/refresh/", "", map[string]string{"refresh": tk.Refresh})
	if w.Code != http.StatusOK {
		t.Fatalf("refresh status = %d: %s", w.Code, w.Body)
	}
	var next tokens
	_ = json.Unmarshal(w.Body.Bytes(), &next)
	if next.Access == "" || next.Refresh == "" || next.Refresh == tk.Refresh {
		t.Fatalf("expected a new refresh token, got %+v", next)
	}

	w = doJSON(t, r, http.MethodPost, "/api/auth/token/refresh/", "", map[string]string{"refresh": tk.Refresh})
	if w.Code != http.StatusUnauthorized {
		t.Errorf("reused refresh token: status = %d, want 401", w.Code)
	}
}

func TestRefresh_WithoutRotationKeepsToken(t *testing.T) {
	r, _ := newTestAPI(t, false)
	tk := login(t, r)

	for range 2 {
		w := doJSON(t, r, http.MethodPost, "/api/auth/token/refresh/", "", map[string]string{"refresh": tk.Refresh})
		if w.Code != http.StatusOK {
			t.Fatalf("refresh status = %d", w.Code)
		}
		if strings.Contains(w.Body.String(), `"refresh"`) {
			t.Errorf("no refresh token expected without rotation: %s", w.Body)
		}
	}
}

func TestLogout_RevokesRefreshToken(t *testing.T) {
	r, _ := newTestAPI(t, true)
	tk := login(t, r)

	if w := doJSON(t, r, http.MethodPost, "/api/auth/logout/", "", map[string]string{"refresh": tk.Refresh}); w.Code != http.StatusNoContent {
		t.Fatalf("logout status = %d", w.Code)
	}
	if w := doJSON(t, r, http.MethodPost, "/api/auth/token/refresh/", "", map[string]string{"refresh": tk.Refresh}); w.Code != http.StatusUnauthorized {
		t.Errorf("refresh after logout: status = %d, want 401", w.Code)
	}
}

func TestBearer_RejectsRefreshTokenAndMissingHeader(t *testing.T) {
	r, _ := newTestAPI(t, true)
	tk := login(t, r)

	if w := doJSON(t, r, http.MethodGet, "/api/invoices/", "", nil); w.Code != http.StatusUnauthorized {
		t.Errorf("no token: status = %d", w.Code)
	}
	if w := doJSON(t, r, http.MethodGet, "/api/invoices/", tk.Refresh, nil); w.Code != http.StatusUnauthorized {
		t.Errorf("refresh token as bearer: status = %d", w.Code)
	}
	if w := doJSON(t, r, http.MethodGet, "/api/invoices/", "garbage", nil); w.Code != http.StatusUnauthorized {
		t.Errorf("garbage token: status = %d", w.Code)
	}
}

// ---- profile ----

func postProfile(t *testing.T, r http.Handler, token string, fields map[string]string, avatar []byte) *httptest.ResponseRecorder {
	t.Helper()
	var buf bytes.Buffer
	mw := multipart.NewWriter(&buf)
	for k, v := range fields {
		_ = mw.WriteField(k, v)
	}
	if avatar != nil {
		fw, _ := mw.CreateFormFile("avatar", "me.png")
		_, _ = fw.Write(avatar)
	}
	_ = mw.Close()

	req := httptest.NewRequest(http.MethodPost, "/api/auth/edit/", &buf)
	req.Header.Set("Content-Type", mw.FormDataContentType())
	req.Header.Set("Authorization", "Bearer "+token)
	w := httptest.NewRecorder()
	r.ServeHTTP(w, req)
	return w
}

func TestEditProfile_AvatarOptional(t *testing.T) {
	r, _ := newTestAPI(t, true)
	tk := login(t, r)

	w := postProfile(t, r, tk.Access, map[string]string{"name": "Demo"}, []byte("\x89PNG fake"))
	if w.Code != http.StatusOK {
		t.Fatalf("status = %d: %s", w.Code, w.Body)
	}
	var u domain.User
	_ = json.Unmarshal(w.Body.Bytes(), &u)
	if !strings.HasPrefix(u.AvatarURL, "http://api.test/media/avatars/") {
		t.Fatalf("avatar url = %q", u.AvatarURL)
	}

	path := strings.TrimPrefix(u.AvatarURL, "http://api.test")
	if got := doJSON(t, r, http.MethodGet, path, "", nil); got.Code != http.StatusOK || got.Body.String() != "\x89PNG fake" {
		t.Errorf("serving avatar: %d", got.Code)
	}

	w = postProfile(t, r, tk.Access, map[string]string{"name": "Demo", "company_name": "Demo GmbH"}, nil)
	var u2 domain.User
	_ = json.Unmarshal(w.Body.Bytes(), &u2)
	if u2.AvatarURL != u.AvatarURL {
		t.Errorf("avatar url changed without upload: %q -> %q", u.AvatarURL, u2.AvatarURL)
	}
	if u2.BusinessName != "Demo GmbH" {
		t.Errorf("company_name alias not applied: %q", u2.BusinessName)
	}
}

// ---- invoices ----

func TestInvoices_ListIsScopedToOwner(t *testing.T) {
	r, _ := newTestAPI(t, true)
	tk := login(t, r)

	w := doJSON(t, r, http.MethodGet, "/api/invoices/", tk.Access, nil)
	var list []domain.Invoice
	_ = json.Unmarshal(w.Body.Bytes(), &list)
	if len(list) != 8 {
		t.Fatalf("demo user sees %d invoices, want 8", len(list))
	}

	doJSON(t, r, http.MethodPost, "/api/auth/register/", "", map[string]string{
		"name": "Bob", "email": "bob@example.com", "password1": "secret1", "password2": "secret1",
	})
	w = doJSON(t, r, http.MethodPost, "/api/auth/login/", "", map[string]string{"email": "bob@example.com", "password": "secret1"})
	var bob tokens
	_ = json.Unmarshal(w.Body.Bytes(), &bob)

	w = doJSON(t, r, http.MethodGet, "/api/invoices/", bob.Access, nil)
	if strings.TrimSpace(w.Body.String()) != "[]" {
		t.Errorf("new user should see no invoices, got %s", w.Body)
	}
	if w := doJSON(t, r, http.MethodGet, "/api/invoices/1/", bob.Access, nil); w.Code != http.StatusNotFound {
		t.Errorf("other user's invoice: status = %d, want 404", w.Code)
	}
}

func TestUpdateInvoice_NonDraft_Returns403(t *testing.T) {
	r, _ := newTestAPI(t, true)
	tk := login(t, r)

	w := doJSON(t, r, http.MethodPut, "/api/invoices/2/", tk.Access, map[string]any{})
	if w.Code != http.StatusForbidden {
		t.Fatalf("status = %d, want 403", w.Code)
	}
	if !strings.Contains(w.Body.String(), "Only draft invoices can be edited") {
		t.Errorf("body = %s", w.Body)
	}
}

func TestUpdateInvoice_DraftRecalculatesAndAudits(t *testing.T) {
	r, _ := newTestAPI(t, true)
	tk := login(t, r)

	body := map[string]any{
		"invoice_number": "INV-2024-004",
		"client_name":    "Creative Agency Pro",
		"client_email":   "hello@creativeagency.pro",
		"status":         "sent",
		"issue_date":     "2024-12-01",
		"due_date":       "",
		"items":          []map[string]any{{"description": "Brand Identity Design", "quantity": 2, "unit_price": "1000"}},
	}
	w := doJSON(t, r, http.MethodPut, "/api/invoices/4/", tk.Access, body)
	if w.Code != http.StatusOK {
		t.Fatalf("status = %d: %s", w.Code, w.Body)
	}
	var inv domain.Invoice
	_ = json.Unmarshal(w.Body.Bytes(), &inv)
	if inv.Amount.String() != "2200" || inv.Status != domain.StatusSent || inv.CanEdit {
		t.Errorf("updated = amount %s status %s can_edit %v", inv.Amount, inv.Status, inv.CanEdit)
	}
	if inv.DueDate.String() != "2024-12-08" {
		t.Errorf("due date = %s, want default of issue + 7", inv.DueDate)
	}

	w = doJSON(t, r, http.MethodGet, "/api/invoices/4/audit-log/", tk.Access, nil)
	var log []domain.AuditLogEntry
	_ = json.Unmarshal(w.Body.Bytes(), &log)
	if len(log) != 2 {
		t.Fatalf("audit entries = %d, want 2", len(log))
	}
	if log[0].Action != domain.AuditUpdated || log[1].Action != domain.AuditCreated {
		t.Errorf("actions = %s, %s", log[0].Action, log[1].Action)
	}
	if _, ok := log[0].Changes["status"]; !ok {
		t.Errorf("status change missing: %+v", log[0].Changes)
	}
	if log[0].UserEmail != mockapi.DemoEmail {
		t.Errorf("user email = %q", log[0].UserEmail)
	}

	// now sent, so further edits are refused
	if w := doJSON(t, r, http.MethodPut, "/api/invoices/4/", tk.Access, body); w.Code != http.StatusForbidden {
		t.Errorf("second edit: status = %d, want 403", w.Code)
	}
}

func TestCreateAndDeleteInvoice(t *testing.T) {
	r, _ := newTestAPI(t, true)
	tk := login(t, r)

	w := doJSON(t, r, http.MethodPost, "/api/invoices/", tk.Access, map[string]any{
		"invoice_number": "INV-2024-009",
		"client_name":    "New Client",
		"client_email":   "ap@newclient.com",
		"items":          []map[string]any{{"description": "Work", "quantity": 3, "unit_price": "100"}},
	})
	if w.Code != http.StatusCreated {
		t.Fatalf("create status = %d: %s", w.Code, w.Body)
	}
	var inv domain.Invoice
	_ = json.Unmarshal(w.Body.Bytes(), &inv)
	if inv.ID != "9" || inv.Status != domain.StatusDraft || inv.Tax.String() != "30" {
		t.Errorf("created = id %s status %s tax %s", inv.ID, inv.Status, inv.Tax)
	}

	if w := doJSON(t, r, http.MethodDelete, "/api/invoices/1/", tk.Access, nil); w.Code != http.StatusForbidden {
		t.Errorf("delete paid: status = %d, want 403", w.Code)
	}
	if w := doJSON(t, r, http.MethodDelete, "/api/invoices/9/", tk.Access, nil); w.Code != http.StatusNoContent {
		t.Errorf("delete draft: status = %d, want 204", w.Code)
	}
	if w := doJSON(t, r, http.MethodGet, "/api/invoices/9/", tk.Access, nil); w.Code != http.StatusNotFound {
		t.Errorf("deleted invoice still served: %d", w.Code)
	}
}

func TestCreateInvoice_ValidationErrors(t *testing.T) {
	r, _ := newTestAPI(t, true)
	tk := login(t, r)

	w := doJSON(t, r, http.MethodPost, "/api/invoices/", tk.Access, map[string]any{
		"invoice_number": "INV-X",
		"client_name":    "X",
		"client_email":   "not-an-email",
		"items":          []map[string]any{{"description": "Work", "quantity": 1, "unit_price": "1"}},
	})
	if w.Code != http.StatusBadRequest || !strings.Contains(w.Body.String(), `"client_email"`) {
		t.Errorf("status = %d body = %s", w.Code, w.Body)
	}
}

func TestHealthz(t *testing.T) {
	r, _ := newTestAPI(t, true)
	if w := doJSON(t, r, http.MethodGet, "/healthz", "", nil); w.Code != http.StatusOK {
		t.Errorf("status = %d", w.Code)
	}
}
