package api

import (
	"context"
	"fmt"
	"net/http"

	"github.com/ErlanBelekov/invoice-console/internal/apiclient"
	"github.com/ErlanBelekov/invoice-console/internal/domain"
	"github.com/shopspring/decimal"
)

type InvoiceRepository struct {
	client *apiclient.Client
}

func NewInvoiceRepository(client *apiclient.Client) *InvoiceRepository {
	return &InvoiceRepository{client: client}
}

// invoiceWrite is the body of create and update calls. Totals are derived
// server side and never sent.
type invoiceWrite struct {
	InvoiceNumber string          `json:"invoice_number"`
	ClientName    string          `json:"client_name"`
	ClientEmail   string          `json:"client_email"`
	ClientAddress string          `json:"client_address"`
	Status        domain.Status   `json:"status"`
	IssueDate     domain.Date     `json:"issue_date"`
	DueDate       domain.Date     `json:"due_date"`
	Notes         string          `json:"notes"`
	Items         []lineItemWrite `json:"items"`
}

type lineItemWrite struct {
	Description string          `json:"description"`
	Quantity    int             `json:"quantity"`
	UnitPrice   decimal.Decimal `json:"unit_price"`
}

func toWrite(inv *domain.Invoice) invoiceWrite {
	items := make([]lineItemWrite, len(inv.Items))
	for i, it := range inv.Items {
		items[i] = lineItemWrite{Description: it.Description, Quantity: it.Quantity, UnitPrice: it.UnitPrice}
	}
	return invoiceWrite{
		InvoiceNumber: inv.InvoiceNumber,
		ClientName:    inv.ClientName,
		ClientEmail:   inv.ClientEmail,
		ClientAddress: inv.ClientAddress,
		Status:        inv.Status,
		IssueDate:     inv.IssueDate,
		DueDate:       inv.DueDate,
		Notes:         inv.Notes,
		Items:         items,
	}
}

func (r *InvoiceRepository) List(ctx context.Context) ([]domain.Invoice, error) {
	var out []domain.Invoice
	if err := r.client.Get(ctx, "/api/invoices/", &out); err != nil {
		return nil, fmt.Errorf("list invoices: %w", err)
	}
	return out, nil
}

func (r *InvoiceRepository) GetByID(ctx context.Context, id string) (*domain.Invoice, error) {
	var inv domain.Invoice
	if err := r.client.Get(ctx, invoicePath(id), &inv); err != nil {
		return nil, mapInvoiceErr("get invoice", err)
	}
	return &inv, nil
}

func (r *InvoiceRepository) Create(ctx context.Context, inv *domain.Invoice) (*domain.Invoice, error) {
	var created domain.Invoice
	if err := r.client.Post(ctx, "/api/invoices/", toWrite(inv), &created); err != nil {
		return nil, fmt.Errorf("create invoice: %w", err)
	}
	return &created, nil
}

func (r *InvoiceRepository) Update(ctx context.Context, inv *domain.Invoice) (*domain.Invoice, error) {
	var updated domain.Invoice
	if err := r.client.Put(ctx, invoicePath(inv.ID), toWrite(inv), &updated); err != nil {
		return nil, mapInvoiceErr("update invoice", err)
	}
	return &updated, nil
}

func (r *InvoiceRepository) Delete(ctx context.Context, id string) error {
	if err := r.client.Delete(ctx, invoicePath(id), nil); err != nil {
		return mapInvoiceErr("delete invoice", err)
	}
	return nil
}

func (r *InvoiceRepository) AuditLog(ctx context.Context, id string) ([]domain.AuditLogEntry, error) {
	var out []domain.AuditLogEntry
	if err := r.client.Get(ctx, invoicePath(id)+"audit-log/", &out); err != nil {
		return nil, mapInvoiceErr("audit log", err)
	}
	return out, nil
}

func invoicePath(id string) string {
	return "/api/invoices/" + id + "/"
}

func mapInvoiceErr(op string, err error) error {
	switch apiclient.StatusCode(err) {
	case http.StatusNotFound:
		return domain.ErrInvoiceNotFound
	case http.StatusForbidden:
		return fmt.Errorf("%w: %w", domain.ErrInvoiceNotEditable, err)
	}
	return fmt.Errorf("%s: %w", op, err)
}
