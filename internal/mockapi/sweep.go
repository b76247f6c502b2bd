package mockapi

import (
	"context"
	"log/slog"

	"github.com/ErlanBelekov/invoice-console/internal/domain"
)

// OverdueSweep returns a job that marks past-due sent invoices as overdue.
func OverdueSweep(store *Store, logger *slog.Logger) func(ctx context.Context) error {
	return func(ctx context.Context) error {
		if n := store.MarkOverdue(domain.Today()); n > 0 {
			logger.InfoContext(ctx, "invoices marked overdue", "count", n)
		}
		return nil
	}
}
