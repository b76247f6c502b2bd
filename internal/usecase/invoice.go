package usecase

import (
	"context"
	"fmt"
	"log/slog"
	"strings"

	"github.com/ErlanBelekov/invoice-console/internal/domain"
	"github.com/ErlanBelekov/invoice-console/internal/email"
	"github.com/ErlanBelekov/invoice-console/internal/metrics"
	"github.com/ErlanBelekov/invoice-console/internal/pdf"
	"github.com/ErlanBelekov/invoice-console/internal/repository"
	"github.com/ErlanBelekov/invoice-console/internal/sessionctx"
	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

type InvoiceUsecase struct {
	invoices repository.InvoiceRepository
	users    repository.UserRepository
	mailer   email.Sender
	logger   *slog.Logger
}

func NewInvoiceUsecase(invoices repository.InvoiceRepository, users repository.UserRepository, mailer email.Sender, logger *slog.Logger) *InvoiceUsecase {
	return &InvoiceUsecase{
		invoices: invoices,
		users:    users,
		mailer:   mailer,
		logger:   logger.With("component", "invoice"),
	}
}

type LineItemInput struct {
	Description string
	Quantity    int
	UnitPrice   decimal.Decimal
}

type InvoiceInput struct {
	InvoiceNumber string
	ClientName    string
	ClientEmail   string
	ClientAddress string
	IssueDate     domain.Date
	DueDate       domain.Date
	Notes         string
	Status        domain.Status
	Items         []LineItemInput
}

// InvoiceList is a filtered page of invoices together with the unfiltered
// count, for "Showing N of M".
type InvoiceList struct {
	Invoices []domain.Invoice
	Total    int
}

func (u *InvoiceUsecase) List(ctx context.Context, status, query string) (InvoiceList, error) {
	all, err := u.invoices.List(ctx)
	if err != nil {
		return InvoiceList{}, err
	}
	return InvoiceList{Invoices: domain.Filter(all, status, query), Total: len(all)}, nil
}

func (u *InvoiceUsecase) Get(ctx context.Context, id string) (*domain.Invoice, error) {
	return u.invoices.GetByID(ctx, id)
}

func (u *InvoiceUsecase) AuditLog(ctx context.Context, id string) ([]domain.AuditLogEntry, error) {
	return u.invoices.AuditLog(ctx, id)
}

// Create builds the invoice from input, computing every total before it is
// sent. Only draft and sent are accepted as initial statuses.
func (u *InvoiceUsecase) Create(ctx context.Context, input InvoiceInput) (*domain.Invoice, error) {
	if input.Status == "" {
		input.Status = domain.StatusDraft
	}
	if input.Status != domain.StatusDraft && input.Status != domain.StatusSent {
		return nil, domain.ErrInvalidStatus
	}

	inv := &domain.Invoice{Status: input.Status}
	if err := apply(inv, input); err != nil {
		return nil, err
	}

	created, err := u.invoices.Create(ctx, inv)
	if err != nil {
		return nil, err
	}
	u.logger.InfoContext(ctx, "invoice created", "invoice_id", created.ID, "status", created.Status)
	return created, nil
}

// Update edits a draft. Status may stay draft or move to sent.
func (u *InvoiceUsecase) Update(ctx context.Context, id string, input InvoiceInput) (*domain.Invoice, error) {
	inv, err := u.invoices.GetByID(ctx, id)
	if err != nil {
		return nil, err
	}
	if !inv.Editable() {
		return nil, domain.ErrInvoiceNotEditable
	}

	if input.Status == "" {
		input.Status = inv.Status
	}
	if input.Status != domain.StatusDraft && input.Status != domain.StatusSent {
		return nil, domain.ErrInvalidStatus
	}
	inv.Status = input.Status
	if err := apply(inv, input); err != nil {
		return nil, err
	}

	updated, err := u.invoices.Update(ctx, inv)
	if err != nil {
		return nil, err
	}
	u.logger.InfoContext(ctx, "invoice updated", "invoice_id", id, "status", updated.Status)
	return updated, nil
}

func (u *InvoiceUsecase) Delete(ctx context.Context, id string) error {
	inv, err := u.invoices.GetByID(ctx, id)
	if err != nil {
		return err
	}
	if !inv.Editable() {
		return domain.ErrInvoiceNotEditable
	}
	if err := u.invoices.Delete(ctx, id); err != nil {
		return err
	}
	u.logger.InfoContext(ctx, "invoice deleted", "invoice_id", id)
	return nil
}

// PDF renders the invoice. The issuer block is left out when the profile
// cannot be loaded.
func (u *InvoiceUsecase) PDF(ctx context.Context, id string) ([]byte, string, error) {
	inv, err := u.invoices.GetByID(ctx, id)
	if err != nil {
		return nil, "", err
	}
	doc, err := pdf.RenderInvoice(inv, u.issuer(ctx))
	if err != nil {
		return nil, "", err
	}
	return doc, pdf.Filename(inv), nil
}

// Send emails the invoice PDF to the client. A draft is marked sent once the
// email has gone out; other statuses are resent unchanged.
func (u *InvoiceUsecase) Send(ctx context.Context, id string) (*domain.Invoice, error) {
	inv, err := u.invoices.GetByID(ctx, id)
	if err != nil {
		return nil, err
	}
	if inv.ClientEmail == "" {
		return nil, domain.ErrNoClientEmail
	}

	from := u.issuer(ctx)
	doc, err := pdf.RenderInvoice(inv, from)
	if err != nil {
		return nil, err
	}

	msg := email.Message{
		To:      inv.ClientEmail,
		Subject: fmt.Sprintf("Invoice %s from %s", inv.InvoiceNumber, senderName(from)),
		HTML: fmt.Sprintf(
			`<p>Hello %s,</p><p>Please find invoice %s attached. Amount due: %s, due by %s.</p>`,
			inv.ClientName, inv.InvoiceNumber, inv.Amount.StringFixed(2), inv.DueDate,
		),
		Attachments: []email.Attachment{{Filename: pdf.Filename(inv), Content: doc}},
	}
	if err := u.mailer.Send(ctx, msg); err != nil {
		metrics.InvoiceEmailsTotal.WithLabelValues("failure").Inc()
		return nil, fmt.Errorf("email invoice: %w", err)
	}
	metrics.InvoiceEmailsTotal.WithLabelValues("success").Inc()
	u.logger.InfoContext(ctx, "invoice emailed", "invoice_id", id, "to", inv.ClientEmail)

	if !inv.Editable() {
		return inv, nil
	}
	inv.Status = domain.StatusSent
	updated, err := u.invoices.Update(ctx, inv)
	if err != nil {
		return nil, fmt.Errorf("mark invoice sent: %w", err)
	}
	return updated, nil
}

func (u *InvoiceUsecase) issuer(ctx context.Context) *domain.User {
	id := sessionctx.UserID(ctx)
	if id == "" {
		return nil
	}
	user, err := u.users.FindByID(ctx, id)
	if err != nil {
		u.logger.WarnContext(ctx, "load issuer profile failed", "error", err)
		return nil
	}
	return user
}

func senderName(u *domain.User) string {
	switch {
	case u == nil:
		return "your supplier"
	case u.BusinessName != "":
		return u.BusinessName
	default:
		return u.Name
	}
}

// apply copies input onto inv and recomputes totals and defaults.
func apply(inv *domain.Invoice, input InvoiceInput) error {
	items := make([]domain.LineItem, 0, len(input.Items))
	for _, it := range input.Items {
		if strings.TrimSpace(it.Description) == "" && it.Quantity == 0 && it.UnitPrice.IsZero() {
			continue
		}
		items = append(items, domain.LineItem{
			ID:          uuid.NewString(),
			Description: strings.TrimSpace(it.Description),
			Quantity:    it.Quantity,
			UnitPrice:   it.UnitPrice,
		})
	}
	if len(items) == 0 {
		return domain.ErrNoLineItems
	}

	inv.InvoiceNumber = strings.TrimSpace(input.InvoiceNumber)
	inv.ClientName = strings.TrimSpace(input.ClientName)
	inv.ClientEmail = strings.TrimSpace(input.ClientEmail)
	inv.ClientAddress = strings.TrimSpace(input.ClientAddress)
	inv.IssueDate = input.IssueDate
	inv.DueDate = input.DueDate
	inv.Notes = input.Notes
	inv.Items = items
	if inv.IssueDate.IsZero() {
		inv.IssueDate = domain.Today()
	}
	inv.ApplyDefaults()
	inv.Recalculate()
	return nil
}
