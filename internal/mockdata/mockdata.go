// Package mockdata holds the fixture invoices used by the mock API and tests.
// Amount, subtotal and tax are kept exactly as recorded, even where they do
// not match the line items.
package mockdata

import (
	"github.com/ErlanBelekov/invoice-console/internal/domain"
	"github.com/shopspring/decimal"
)

var invoices = []domain.Invoice{
	{
		ID:            "1",
		InvoiceNumber: "INV-2024-001",
		ClientName:    "Acme Corporation",
		ClientEmail:   "billing@acme.com",
		ClientAddress: "123 Business St, New York, NY 10001",
		Amount:        money("2500.00"),
		Subtotal:      money("2272.73"),
		Tax:           money("227.27"),
		Status:        domain.StatusPaid,
		IssueDate:     domain.MustParseDate("2024-11-01"),
		DueDate:       domain.MustParseDate("2024-11-15"),
		Items: []domain.LineItem{
			{ID: "1", Description: "Web Development Services", Quantity: 40, UnitPrice: money("50"), Total: money("2000")},
			{ID: "2", Description: "UI/UX Design Consultation", Quantity: 5, UnitPrice: money("60"), Total: money("300")},
		},
		Notes: "Thank you for your business!",
	},
	{
		ID:            "2",
		InvoiceNumber: "INV-2024-002",
		ClientName:    "TechStart Inc",
		ClientEmail:   "accounts@techstart.io",
		ClientAddress: "456 Innovation Ave, San Francisco, CA 94102",
		Amount:        money("5800.00"),
		Subtotal:      money("5272.73"),
		Tax:           money("527.27"),
		Status:        domain.StatusSent,
		IssueDate:     domain.MustParseDate("2024-11-10"),
		DueDate:       domain.MustParseDate("2024-12-10"),
		Items: []domain.LineItem{
			{ID: "1", Description: "Mobile App Development", Quantity: 80, UnitPrice: money("60"), Total: money("4800")},
			{ID: "2", Description: "API Integration", Quantity: 10, UnitPrice: money("50"), Total: money("500")},
		},
		Notes: "Payment terms: Net 30",
	},
	{
		ID:            "3",
		InvoiceNumber: "INV-2024-003",
		ClientName:    "Global Solutions Ltd",
		ClientEmail:   "finance@globalsolutions.com",
		ClientAddress: "789 Corporate Blvd, London, UK",
		Amount:        money("3200.00"),
		Subtotal:      money("2909.09"),
		Tax:           money("290.91"),
		Status:        domain.StatusOverdue,
		IssueDate:     domain.MustParseDate("2024-10-15"),
		DueDate:       domain.MustParseDate("2024-11-15"),
		Items: []domain.LineItem{
			{ID: "1", Description: "System Maintenance", Quantity: 20, UnitPrice: money("80"), Total: money("1600")},
			{ID: "2", Description: "Cloud Infrastructure Setup", Quantity: 15, UnitPrice: money("100"), Total: money("1500")},
		},
		Notes: "Overdue payment - please remit immediately",
	},
	{
		ID:            "4",
		InvoiceNumber: "INV-2024-004",
		ClientName:    "Creative Agency Pro",
		ClientEmail:   "hello@creativeagency.pro",
		ClientAddress: "321 Design Lane, Austin, TX 78701",
		Amount:        money("1800.00"),
		Subtotal:      money("1636.36"),
		Tax:           money("163.64"),
		Status:        domain.StatusDraft,
		IssueDate:     domain.MustParseDate("2024-11-25"),
		DueDate:       domain.MustParseDate("2024-12-25"),
		Items: []domain.LineItem{
			{ID: "1", Description: "Brand Identity Design", Quantity: 1, UnitPrice: money("1500"), Total: money("1500")},
			{ID: "2", Description: "Logo Design Revisions", Quantity: 2, UnitPrice: money("75"), Total: money("150")},
		},
		Notes: "Draft - pending client approval",
	},
	{
		ID:            "5",
		InvoiceNumber: "INV-2024-005",
		ClientName:    "DataCorp Analytics",
		ClientEmail:   "billing@datacorp.com",
		ClientAddress: "555 Data Drive, Seattle, WA 98101",
		Amount:        money("4500.00"),
		Subtotal:      money("4090.91"),
		Tax:           money("409.09"),
		Status:        domain.StatusSent,
		IssueDate:     domain.MustParseDate("2024-11-20"),
		DueDate:       domain.MustParseDate("2024-12-20"),
		Items: []domain.LineItem{
			{ID: "1", Description: "Data Visualization Dashboard", Quantity: 30, UnitPrice: money("100"), Total: money("3000")},
			{ID: "2", Description: "Analytics Integration", Quantity: 15, UnitPrice: money("100"), Total: money("1500")},
		},
		Notes: "Payment expected by due date",
	},
	{
		ID:            "6",
		InvoiceNumber: "INV-2024-006",
		ClientName:    "E-Commerce Ventures",
		ClientEmail:   "accounts@ecomventures.com",
		ClientAddress: "999 Retail Road, Miami, FL 33101",
		Amount:        money("6200.00"),
		Subtotal:      money("5636.36"),
		Tax:           money("563.64"),
		Status:        domain.StatusPaid,
		IssueDate:     domain.MustParseDate("2024-10-05"),
		DueDate:       domain.MustParseDate("2024-11-05"),
		Items: []domain.LineItem{
			{ID: "1", Description: "E-commerce Platform Development", Quantity: 100, UnitPrice: money("55"), Total: money("5500")},
			{ID: "2", Description: "Payment Gateway Integration", Quantity: 1, UnitPrice: money("200"), Total: money("200")},
		},
		Notes: "Paid in full - thank you!",
	},
	{
		ID:            "7",
		InvoiceNumber: "INV-2024-007",
		ClientName:    "Marketing Masters",
		ClientEmail:   "finance@marketingmasters.net",
		ClientAddress: "777 Campaign Circle, Chicago, IL 60601",
		Amount:        money("2900.00"),
		Subtotal:      money("2636.36"),
		Tax:           money("263.64"),
		Status:        domain.StatusOverdue,
		IssueDate:     domain.MustParseDate("2024-10-01"),
		DueDate:       domain.MustParseDate("2024-11-01"),
		Items: []domain.LineItem{
			{ID: "1", Description: "SEO Optimization", Quantity: 20, UnitPrice: money("80"), Total: money("1600")},
			{ID: "2", Description: "Content Marketing Strategy", Quantity: 10, UnitPrice: money("120"), Total: money("1200")},
		},
		Notes: "Second reminder - payment overdue",
	},
	{
		ID:            "8",
		InvoiceNumber: "INV-2024-008",
		ClientName:    "FinTech Innovations",
		ClientEmail:   "ap@fintechinnovations.com",
		ClientAddress: "100 Finance Plaza, Boston, MA 02101",
		Amount:        money("7500.00"),
		Subtotal:      money("6818.18"),
		Tax:           money("681.82"),
		Status:        domain.StatusSent,
		IssueDate:     domain.MustParseDate("2024-11-28"),
		DueDate:       domain.MustParseDate("2024-12-28"),
		Items: []domain.LineItem{
			{ID: "1", Description: "Blockchain Integration", Quantity: 50, UnitPrice: money("120"), Total: money("6000")},
			{ID: "2", Description: "Smart Contract Development", Quantity: 10, UnitPrice: money("90"), Total: money("900")},
		},
		Notes: "Payment terms: Net 30 days",
	},
}

// Invoices returns a deep copy of the fixture set, safe to mutate.
func Invoices() []domain.Invoice {
	out := make([]domain.Invoice, len(invoices))
	for i, inv := range invoices {
		inv.Items = append([]domain.LineItem(nil), inv.Items...)
		inv.CanEdit = inv.Editable()
		out[i] = inv
	}
	return out
}

// Stats is the dashboard summary of the fixture set.
func Stats() domain.InvoiceStats {
	return domain.ComputeStats(Invoices())
}

func money(s string) decimal.Decimal {
	return decimal.RequireFromString(s)
}
