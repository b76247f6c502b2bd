package api_test

import (
	"context"
	"encoding/json"
	"errors"
	"io"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/ErlanBelekov/invoice-console/internal/apiclient"
	"github.com/ErlanBelekov/invoice-console/internal/domain"
	"github.com/ErlanBelekov/invoice-console/internal/infrastructure/api"
	"github.com/shopspring/decimal"
)

func newClient(t *testing.T, h http.HandlerFunc) *apiclient.Client {
	t.Helper()
	srv := httptest.NewServer(h)
	t.Cleanup(srv.Close)
	return apiclient.New(srv.URL, time.Second, slog.New(slog.NewTextHandler(io.Discard, nil)))
}

func TestLogin_ReturnsTokenPair(t *testing.T) {
	c := newClient(t, func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path != "/api/auth/login/" {
			t.Errorf("path = %s", r.URL.Path)
		}
		_, _ = w.Write([]byte(`{"access":"a1","refresh":"r1","user":{"pk":"u-1","name":"Demo","email":"demo@example.com"}}`))
	})

	pair, err := api.NewAuthGateway(c).Login(context.Background(), "demo@example.com", "pw")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if pair.UserID != "u-1" || pair.Access != "a1" || pair.Refresh != "r1" {
		t.Errorf("pair = %+v", pair)
	}
}

func TestLogin_BadCredentials(t *testing.T) {
	c := newClient(t, func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusUnauthorized)
		_, _ = w.Write([]byte(`{"error":"Invalid email or password"}`))
	})

	_, err := api.NewAuthGateway(c).Login(context.Background(), "x@y.z", "bad")
	if !errors.Is(err, domain.ErrInvalidCredentials) {
		t.Fatalf("want ErrInvalidCredentials, got %v", err)
	}
	if apiErr, ok := apiclient.AsAPIError(err); !ok || apiErr.Message != "Invalid email or password" {
		t.Errorf("API message should stay reachable, got %v", err)
	}
}

func TestRefresh_WithoutRotation(t *testing.T) {
	c := newClient(t, func(w http.ResponseWriter, r *http.Request) {
		var body map[string]string
		_ = json.NewDecoder(r.Body).Decode(&body)
		if body["refresh"] != "r1" {
			t.Errorf("refresh = %q", body["refresh"])
		}
		_, _ = w.Write([]byte(`{"access":"a2"}`))
	})

	pair, err := api.NewAuthGateway(c).Refresh(context.Background(), "r1")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if pair.Access != "a2" || pair.Refresh != "" {
		t.Errorf("pair = %+v", pair)
	}
}

func TestInvoiceUpdate_ForbiddenMapsToNotEditable(t *testing.T) {
	c := newClient(t, func(w http.ResponseWriter, r *http.Request) {
		if r.Method != http.MethodPut || r.URL.Path != "/api/invoices/2/" {
			t.Errorf("%s %s", r.Method, r.URL.Path)
		}
		w.WriteHeader(http.StatusForbidden)
		_, _ = w.Write([]byte(`{"error":"Only draft invoices can be edited"}`))
	})

	_, err := api.NewInvoiceRepository(c).Update(context.Background(), &domain.Invoice{ID: "2"})
	if !errors.Is(err, domain.ErrInvoiceNotEditable) {
		t.Fatalf("want ErrInvoiceNotEditable, got %v", err)
	}
}

func TestInvoiceGet_NotFound(t *testing.T) {
	c := newClient(t, func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusNotFound)
	})

	_, err := api.NewInvoiceRepository(c).GetByID(context.Background(), "99")
	if !errors.Is(err, domain.ErrInvoiceNotFound) {
		t.Fatalf("want ErrInvoiceNotFound, got %v", err)
	}
}

func TestInvoiceCreate_SendsItemsWithoutTotals(t *testing.T) {
	var body map[string]any
	c := newClient(t, func(w http.ResponseWriter, r *http.Request) {
		_ = json.NewDecoder(r.Body).Decode(&body)
		w.WriteHeader(http.StatusCreated)
		_, _ = w.Write([]byte(`{"id":"9","invoice_number":"INV-9","status":"draft","amount":"110","issue_date":"2024-12-01","due_date":"2024-12-08"}`))
	})

	inv := &domain.Invoice{
		InvoiceNumber: "INV-9",
		Status:        domain.StatusDraft,
		IssueDate:     domain.MustParseDate("2024-12-01"),
		Items:         []domain.LineItem{{Description: "Work", Quantity: 2, UnitPrice: decimal.NewFromInt(50)}},
	}
	created, err := api.NewInvoiceRepository(c).Create(context.Background(), inv)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if created.ID != "9" || created.DueDate.String() != "2024-12-08" {
		t.Errorf("created = %+v", created)
	}
	if _, ok := body["amount"]; ok {
		t.Error("amount must not be sent")
	}
	items, _ := body["items"].([]any)
	if len(items) != 1 {
		t.Fatalf("items = %v", body["items"])
	}
	if _, ok := items[0].(map[string]any)["total"]; ok {
		t.Error("line total must not be sent")
	}
}

func TestUpdateProfile_OmitsAvatarWhenNil(t *testing.T) {
	var hasAvatar bool
	var name string
	c := newClient(t, func(w http.ResponseWriter, r *http.Request) {
		if err := r.ParseMultipartForm(1 << 20); err != nil {
			t.Errorf("parse: %v", err)
		}
		_, hasAvatar = r.MultipartForm.File["avatar"]
		name = r.FormValue("name")
		_, _ = w.Write([]byte(`{"id":"u-1","name":"Ada","avatar_url":"/media/avatars/old.png"}`))
	})

	u, err := api.NewUserRepository(c).UpdateProfile(context.Background(), domain.ProfileUpdate{Name: "Ada"})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if hasAvatar {
		t.Error("avatar part should be absent")
	}
	if name != "Ada" {
		t.Errorf("name = %q", name)
	}
	if u.AvatarURL != "/media/avatars/old.png" {
		t.Errorf("avatar url = %q", u.AvatarURL)
	}
}
