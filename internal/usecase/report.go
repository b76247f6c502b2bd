package usecase

import (
	"context"

	"github.com/ErlanBelekov/invoice-console/internal/domain"
)

// RecentInvoices is how many invoices the dashboard lists.
const RecentInvoices = 4

type Dashboard struct {
	Stats  domain.InvoiceStats
	Recent []domain.Invoice
}

func (u *InvoiceUsecase) Dashboard(ctx context.Context) (Dashboard, error) {
	all, err := u.invoices.List(ctx)
	if err != nil {
		return Dashboard{}, err
	}
	return Dashboard{
		Stats:  domain.ComputeStats(all),
		Recent: domain.Recent(all, RecentInvoices),
	}, nil
}

func (u *InvoiceUsecase) Analytics(ctx context.Context) (domain.Analytics, error) {
	all, err := u.invoices.List(ctx)
	if err != nil {
		return domain.Analytics{}, err
	}
	return domain.ComputeAnalytics(all), nil
}
