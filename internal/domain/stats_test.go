package domain_test

import (
	"testing"

	"github.com/ErlanBelekov/invoice-console/internal/domain"
	"github.com/ErlanBelekov/invoice-console/internal/mockdata"
)

func TestComputeAnalytics_Fixture(t *testing.T) {
	a := domain.ComputeAnalytics(mockdata.Invoices())

	if !a.PaidRevenue.Equal(dec("8700")) {
		t.Errorf("PaidRevenue = %s, want 8700", a.PaidRevenue)
	}
	if !a.OverdueRevenue.Equal(dec("6100")) {
		t.Errorf("OverdueRevenue = %s, want 6100", a.OverdueRevenue)
	}

	want := map[domain.Status]int{
		domain.StatusDraft:   1,
		domain.StatusSent:    3,
		domain.StatusPaid:    2,
		domain.StatusOverdue: 2,
	}
	for s, n := range want {
		if a.StatusCounts[s] != n {
			t.Errorf("StatusCounts[%s] = %d, want %d", s, a.StatusCounts[s], n)
		}
	}

	if len(a.RevenueByMonth) != 2 {
		t.Fatalf("RevenueByMonth len = %d, want 2", len(a.RevenueByMonth))
	}
	oct, nov := a.RevenueByMonth[0], a.RevenueByMonth[1]
	if oct.Label != "Oct 2024" || !oct.Revenue.Equal(dec("6200")) {
		t.Errorf("first month = %s %s, want Oct 2024 6200", oct.Label, oct.Revenue)
	}
	if nov.Label != "Nov 2024" || !nov.Revenue.Equal(dec("2500")) {
		t.Errorf("second month = %s %s, want Nov 2024 2500", nov.Label, nov.Revenue)
	}

	if len(a.TopClients) != 5 {
		t.Fatalf("TopClients len = %d, want 5", len(a.TopClients))
	}
	if a.TopClients[0].Name != "FinTech Innovations" {
		t.Errorf("top client = %s, want FinTech Innovations", a.TopClients[0].Name)
	}
	for i := 1; i < len(a.TopClients); i++ {
		if a.TopClients[i].Revenue.GreaterThan(a.TopClients[i-1].Revenue) {
			t.Errorf("top clients not sorted at %d", i)
		}
	}
}

func TestComputeStats_Empty(t *testing.T) {
	s := domain.ComputeStats(nil)
	if s.Total != 0 || !s.TotalRevenue.IsZero() || !s.PendingRevenue.IsZero() {
		t.Errorf("unexpected stats for empty input: %+v", s)
	}
}

func TestRecent_NewestFirst(t *testing.T) {
	got := domain.Recent(mockdata.Invoices(), 4)
	if len(got) != 4 {
		t.Fatalf("len = %d, want 4", len(got))
	}
	if got[0].InvoiceNumber != "INV-2024-008" {
		t.Errorf("newest = %s, want INV-2024-008", got[0].InvoiceNumber)
	}
	for i := 1; i < len(got); i++ {
		if got[i].IssueDate.After(got[i-1].IssueDate.Time) {
			t.Errorf("not sorted at %d", i)
		}
	}
}

func TestValidatePasswords(t *testing.T) {
	if err := domain.ValidatePasswords("secret1", "secret2"); err != domain.ErrPasswordMismatch {
		t.Errorf("mismatch: got %v", err)
	}
	if err := domain.ValidatePasswords("abc", "abc"); err != domain.ErrPasswordTooShort {
		t.Errorf("short: got %v", err)
	}
	if err := domain.ValidatePasswords("secret1", "secret1"); err != nil {
		t.Errorf("valid: got %v", err)
	}
}
