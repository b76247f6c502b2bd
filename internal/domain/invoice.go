package domain

import (
	"errors"
	"strings"
	"time"

	"github.com/shopspring/decimal"
)

var (
	ErrInvoiceNotFound    = errors.New("invoice not found")
	ErrInvoiceNotEditable = errors.New("only draft invoices can be edited")
	ErrInvalidStatus      = errors.New("invalid invoice status")
	ErrNoLineItems        = errors.New("invoice needs at least one line item")
	ErrNoClientEmail      = errors.New("invoice has no client email")
)

type Status string

const (
	StatusDraft   Status = "draft"
	StatusSent    Status = "sent"
	StatusPaid    Status = "paid"
	StatusOverdue Status = "overdue"
)

// Statuses lists every status in display order.
var Statuses = []Status{StatusDraft, StatusSent, StatusPaid, StatusOverdue}

func (s Status) Valid() bool {
	switch s {
	case StatusDraft, StatusSent, StatusPaid, StatusOverdue:
		return true
	}
	return false
}

// TaxRate is the flat rate applied to every invoice subtotal.
var TaxRate = decimal.New(10, -2)

// DefaultPaymentTermDays is added to the issue date when no due date is given.
const DefaultPaymentTermDays = 7

type LineItem struct {
	ID          string          `json:"id"`
	Description string          `json:"description"`
	Quantity    int             `json:"quantity"`
	UnitPrice   decimal.Decimal `json:"unit_price"`
	Total       decimal.Decimal `json:"total"`
}

// LineTotal is quantity × unit price.
func (li LineItem) LineTotal() decimal.Decimal {
	return li.UnitPrice.Mul(decimal.NewFromInt(int64(li.Quantity)))
}

type Invoice struct {
	ID            string          `json:"id"`
	InvoiceNumber string          `json:"invoice_number"`
	ClientName    string          `json:"client_name"`
	ClientEmail   string          `json:"client_email"`
	ClientAddress string          `json:"client_address,omitempty"`
	Amount        decimal.Decimal `json:"amount"`
	Subtotal      decimal.Decimal `json:"subtotal"`
	Tax           decimal.Decimal `json:"tax"`
	Status        Status          `json:"status"`
	IssueDate     Date            `json:"issue_date"`
	DueDate       Date            `json:"due_date"`
	Items         []LineItem      `json:"items"`
	Notes         string          `json:"notes,omitempty"`
	CanEdit       bool            `json:"can_edit"`
	CreatedAt     time.Time       `json:"created_at,omitzero"`
	UpdatedAt     time.Time       `json:"updated_at,omitzero"`
}

// Editable reports whether the invoice may still be changed.
func (inv *Invoice) Editable() bool {
	return inv.Status == StatusDraft
}

// Recalculate refreshes every line total and the invoice subtotal, tax and
// amount from the line items. Tax is rounded to cents.
func (inv *Invoice) Recalculate() {
	subtotal := decimal.Zero
	for i := range inv.Items {
		inv.Items[i].Total = inv.Items[i].LineTotal()
		subtotal = subtotal.Add(inv.Items[i].Total)
	}
	inv.Subtotal = subtotal
	inv.Tax = subtotal.Mul(TaxRate).Round(2)
	inv.Amount = inv.Subtotal.Add(inv.Tax)
	inv.CanEdit = inv.Editable()
}

// ApplyDefaults fills the due date from the issue date when it was left blank.
func (inv *Invoice) ApplyDefaults() {
	if inv.DueDate.IsZero() && !inv.IssueDate.IsZero() {
		inv.DueDate = DefaultDueDate(inv.IssueDate)
	}
}

func DefaultDueDate(issue Date) Date {
	return issue.AddDays(DefaultPaymentTermDays)
}

// Overdue reports whether a sent invoice is past its due date on day today.
func (inv *Invoice) Overdue(today Date) bool {
	return inv.Status == StatusSent && !inv.DueDate.IsZero() && inv.DueDate.Before(today.Time)
}

// StatusAll disables status filtering.
const StatusAll = "all"

// Filter returns the invoices matching status and a free-text query. An empty
// or "all" status matches everything; the query is matched case-insensitively
// against the invoice number, client name and client email.
func Filter(invoices []Invoice, status string, query string) []Invoice {
	q := strings.ToLower(strings.TrimSpace(query))
	out := make([]Invoice, 0, len(invoices))
	for _, inv := range invoices {
		if status != "" && status != StatusAll && string(inv.Status) != status {
			continue
		}
		if q != "" &&
			!strings.Contains(strings.ToLower(inv.InvoiceNumber), q) &&
			!strings.Contains(strings.ToLower(inv.ClientName), q) &&
			!strings.Contains(strings.ToLower(inv.ClientEmail), q) {
			continue
		}
		out = append(out, inv)
	}
	return out
}
