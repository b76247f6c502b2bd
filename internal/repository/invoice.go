package repository

import (
	"context"

	"github.com/ErlanBelekov/invoice-console/internal/domain"
)

type InvoiceRepository interface {
	List(ctx context.Context) ([]domain.Invoice, error)
	GetByID(ctx context.Context, id string) (*domain.Invoice, error)
	Create(ctx context.Context, inv *domain.Invoice) (*domain.Invoice, error)
	// Update only succeeds for drafts; otherwise domain.ErrInvoiceNotEditable.
	Update(ctx context.Context, inv *domain.Invoice) (*domain.Invoice, error)
	Delete(ctx context.Context, id string) error
	AuditLog(ctx context.Context, id string) ([]domain.AuditLogEntry, error)
}
