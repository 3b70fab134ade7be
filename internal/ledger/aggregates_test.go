package ledger

import (
	"cemeterycore/internal/localstore"
	"cemeterycore/pkg/domain"
	"context"
	"strings"
	"testing"
	"time"

	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/shopspring/decimal"
)

func TestSampleAggregates(t *testing.T) {
	l := openTestLedger(t, localstore.NewMemory())
	checks := []struct {
		name string
		got  decimal.Decimal
		want int64
	}{
		{"total", l.TotalRevenue(), 10500},
		{"paid", l.PaidAmount(), 5000},
		{"pending", l.PendingAmount(), 3500},
		{"overdue", l.OverdueAmount(), 2000},
	}
	for _, c := range checks {
		if !c.got.Equal(decimal.NewFromInt(c.want)) {
			t.Fatalf("%s: expected %d, got %s", c.name, c.want, c.got)
		}
	}
	if overdue := l.OverduePayments(); len(overdue) != 1 || overdue[0].CustomerName != "Robert Davis" {
		t.Fatalf("unexpected overdue list %+v", overdue)
	}
	if pending := l.PendingPayments(); len(pending) != 1 || pending[0].CustomerName != "Mary Johnson" {
		t.Fatalf("unexpected pending list %+v", pending)
	}

	s := l.Summary()
	if s.Payments != 3 || s.Paid != 1 || s.Pending != 1 || s.Overdue != 1 || !s.TotalRevenue.Equal(decimal.NewFromInt(10500)) {
		t.Fatalf("unexpected summary %+v", s)
	}
}

func TestDecimalAmountsSumExactly(t *testing.T) {
	ctx := context.Background()
	l := openTestLedger(t, localstore.NewMemory())
	for _, amt := range []string{"0.1", "0.2"} {
		in := validInput(1, domain.PaymentPaid)
		in.Amount = decimal.RequireFromString(amt)
		if _, err := l.Add(ctx, in); err != nil {
			t.Fatalf("add %s: %v", amt, err)
		}
	}
	if got := l.PaidAmount(); !got.Equal(decimal.RequireFromString("5000.3")) {
		t.Fatalf("expected exact decimal sum 5000.3, got %s", got)
	}
}

func TestPastDuePendingIsReportOnly(t *testing.T) {
	l := openTestLedger(t, localstore.NewMemory())
	asOf := time.Date(2024, 11, 20, 0, 0, 0, 0, time.UTC)
	late := l.PastDuePending(asOf)
	if len(late) != 1 || late[0].ID != "2" {
		t.Fatalf("expected Mary Johnson's payment past due, got %+v", late)
	}
	if got, _ := l.Get("2"); got.Status != domain.PaymentPending {
		t.Fatalf("expected status untouched, got %s", got.Status)
	}
	if early := l.PastDuePending(time.Date(2024, 11, 1, 0, 0, 0, 0, time.UTC)); len(early) != 0 {
		t.Fatalf("expected nothing past due yet, got %+v", early)
	}
}

func TestListFilters(t *testing.T) {
	l := openTestLedger(t, localstore.NewMemory())
	cases := []struct {
		name   string
		filter PaymentFilter
		want   []string
	}{
		{"all", PaymentFilter{}, []string{"1", "2", "3"}},
		{"status", PaymentFilter{Status: domain.PaymentPaid}, []string{"1"}},
		{"service", PaymentFilter{ServiceType: domain.ServiceMaintenance}, []string{"3"}},
		{"customer query", PaymentFilter{Query: "mary"}, []string{"2"}},
		{"description query", PaymentFilter{Query: "FAMILY"}, []string{"1"}},
		{"id query", PaymentFilter{Query: "3"}, []string{"3"}},
		{"combined miss", PaymentFilter{Status: domain.PaymentPaid, Query: "robert"}, nil},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			got := l.List(tc.filter)
			if len(got) != len(tc.want) {
				t.Fatalf("expected %v, got %d payments", tc.want, len(got))
			}
			for i, id := range tc.want {
				if got[i].ID != id {
					t.Fatalf("position %d: expected %s, got %s", i, id, got[i].ID)
				}
			}
		})
	}
}

func TestCollectorExportsAggregates(t *testing.T) {
	l := openTestLedger(t, localstore.NewMemory())
	expected := `
# HELP cemetery_ledger_amount Sum of payment amounts by status.
# TYPE cemetery_ledger_amount gauge
cemetery_ledger_amount{status="overdue"} 2000
cemetery_ledger_amount{status="paid"} 5000
cemetery_ledger_amount{status="pending"} 3500
# HELP cemetery_ledger_payments Number of payments by status.
# TYPE cemetery_ledger_payments gauge
cemetery_ledger_payments{status="overdue"} 1
cemetery_ledger_payments{status="paid"} 1
cemetery_ledger_payments{status="pending"} 1
# HELP cemetery_ledger_revenue Sum of all payment amounts.
# TYPE cemetery_ledger_revenue gauge
cemetery_ledger_revenue 10500
`
	if err := testutil.CollectAndCompare(l.Collector(), strings.NewReader(expected)); err != nil {
		t.Fatalf("unexpected metrics: %v", err)
	}
	if n := testutil.CollectAndCount(l.Collector(), "cemetery_ledger_amount"); n != 3 {
		t.Fatalf("expected 3 amount series, got %d", n)
	}
	if _, err := l.SetStatus(context.Background(), "3", domain.PaymentPaid); err != nil {
		t.Fatalf("set status: %v", err)
	}
	if n := testutil.CollectAndCount(l.Collector()); n != 7 {
		t.Fatalf("expected 7 series, got %d", n)
	}
}
