package domain

import (
	"sort"
	"time"

	"github.com/shopspring/decimal"
)

type InvoiceStats struct {
	Total          int             `json:"total"`
	Pending        int             `json:"pending"`
	Paid           int             `json:"paid"`
	Overdue        int             `json:"overdue"`
	TotalRevenue   decimal.Decimal `json:"total_revenue"`
	PendingRevenue decimal.Decimal `json:"pending_revenue"`
}

// ComputeStats summarizes invoices for the dashboard. Pending counts sent
// invoices; pending revenue covers both sent and overdue ones.
func ComputeStats(invoices []Invoice) InvoiceStats {
	stats := InvoiceStats{
		Total:          len(invoices),
		TotalRevenue:   decimal.Zero,
		PendingRevenue: decimal.Zero,
	}
	for _, inv := range invoices {
		stats.TotalRevenue = stats.TotalRevenue.Add(inv.Amount)
		switch inv.Status {
		case StatusSent:
			stats.Pending++
			stats.PendingRevenue = stats.PendingRevenue.Add(inv.Amount)
		case StatusPaid:
			stats.Paid++
		case StatusOverdue:
			stats.Overdue++
			stats.PendingRevenue = stats.PendingRevenue.Add(inv.Amount)
		}
	}
	return stats
}

type MonthRevenue struct {
	Month   time.Time       `json:"month"`
	Label   string          `json:"label"`
	Revenue decimal.Decimal `json:"revenue"`
}

type ClientRevenue struct {
	Name    string          `json:"name"`
	Revenue decimal.Decimal `json:"revenue"`
}

type Analytics struct {
	Stats          InvoiceStats    `json:"stats"`
	RevenueByMonth []MonthRevenue  `json:"revenue_by_month"`
	TopClients     []ClientRevenue `json:"top_clients"`
	StatusCounts   map[Status]int  `json:"status_counts"`
	PaidRevenue    decimal.Decimal `json:"paid_revenue"`
	OverdueRevenue decimal.Decimal `json:"overdue_revenue"`
}

const topClientsLimit = 5

// ComputeAnalytics aggregates invoices for the analytics page. Monthly revenue
// only counts paid invoices, bucketed by issue month; every month with an
// invoice appears, oldest first.
func ComputeAnalytics(invoices []Invoice) Analytics {
	a := Analytics{
		Stats:          ComputeStats(invoices),
		StatusCounts:   make(map[Status]int, len(Statuses)),
		PaidRevenue:    decimal.Zero,
		OverdueRevenue: decimal.Zero,
	}
	for _, s := range Statuses {
		a.StatusCounts[s] = 0
	}

	months := make(map[time.Time]decimal.Decimal)
	clients := make(map[string]decimal.Decimal)

	for _, inv := range invoices {
		a.StatusCounts[inv.Status]++

		switch inv.Status {
		case StatusPaid:
			a.PaidRevenue = a.PaidRevenue.Add(inv.Amount)
		case StatusOverdue:
			a.OverdueRevenue = a.OverdueRevenue.Add(inv.Amount)
		}

		if !inv.IssueDate.IsZero() {
			m := time.Date(inv.IssueDate.Year(), inv.IssueDate.Month(), 1, 0, 0, 0, 0, time.UTC)
			rev, ok := months[m]
			if !ok {
				rev = decimal.Zero
			}
			if inv.Status == StatusPaid {
				rev = rev.Add(inv.Amount)
			}
			months[m] = rev
		}

		prev, ok := clients[inv.ClientName]
		if !ok {
			prev = decimal.Zero
		}
		clients[inv.ClientName] = prev.Add(inv.Amount)
	}

	a.RevenueByMonth = make([]MonthRevenue, 0, len(months))
	for m, rev := range months {
		a.RevenueByMonth = append(a.RevenueByMonth, MonthRevenue{Month: m, Label: m.Format("Jan 2006"), Revenue: rev})
	}
	sort.Slice(a.RevenueByMonth, func(i, j int) bool {
		return a.RevenueByMonth[i].Month.Before(a.RevenueByMonth[j].Month)
	})

	a.TopClients = make([]ClientRevenue, 0, len(clients))
	for name, rev := range clients {
		a.TopClients = append(a.TopClients, ClientRevenue{Name: name, Revenue: rev})
	}
	sort.Slice(a.TopClients, func(i, j int) bool {
		if c := a.TopClients[i].Revenue.Cmp(a.TopClients[j].Revenue); c != 0 {
			return c > 0
		}
		return a.TopClients[i].Name < a.TopClients[j].Name
	})
	if len(a.TopClients) > topClientsLimit {
		a.TopClients = a.TopClients[:topClientsLimit]
	}

	return a
}

// Recent returns up to n invoices ordered by issue date, newest first.
func Recent(invoices []Invoice, n int) []Invoice {
	out := make([]Invoice, len(invoices))
	copy(out, invoices)
	sort.SliceStable(out, func(i, j int) bool {
		return out[i].IssueDate.After(out[j].IssueDate.Time)
	})
	if len(out) > n {
		out = out[:n]
	}
	return out
}
