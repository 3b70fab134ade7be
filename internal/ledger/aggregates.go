package ledger

import (
	"cemeterycore/pkg/domain"
	"time"

	"github.com/shopspring/decimal"
)

// Summary is a point-in-time view of every aggregate.
type Summary struct {
	TotalRevenue  decimal.Decimal `json:"total_revenue"`
	PaidAmount    decimal.Decimal `json:"paid_amount"`
	PendingAmount decimal.Decimal `json:"pending_amount"`
	OverdueAmount decimal.Decimal `json:"overdue_amount"`
	Payments      int             `json:"payments"`
	Paid          int             `json:"paid"`
	Pending       int             `json:"pending"`
	Overdue       int             `json:"overdue"`
}

// TotalRevenue sums every amount regardless of status.
func (l *Ledger) TotalRevenue() decimal.Decimal {
	l.mu.RLock()
	defer l.mu.RUnlock()
	total := decimal.Zero
	for _, p := range l.payments {
		total = total.Add(p.Amount)
	}
	return total
}

// PaidAmount sums amounts of paid payments.
func (l *Ledger) PaidAmount() decimal.Decimal { return l.amountWithStatus(domain.PaymentPaid) }

// PendingAmount sums amounts of pending payments.
func (l *Ledger) PendingAmount() decimal.Decimal { return l.amountWithStatus(domain.PaymentPending) }

// OverdueAmount sums amounts of overdue payments.
func (l *Ledger) OverdueAmount() decimal.Decimal { return l.amountWithStatus(domain.PaymentOverdue) }

// OverduePayments lists payments marked overdue, newest first.
func (l *Ledger) OverduePayments() []Payment {
	return l.List(PaymentFilter{Status: domain.PaymentOverdue})
}

// PendingPayments lists payments marked pending, newest first.
func (l *Ledger) PendingPayments() []Payment {
	return l.List(PaymentFilter{Status: domain.PaymentPending})
}

func (l *Ledger) amountWithStatus(status domain.PaymentStatus) decimal.Decimal {
	l.mu.RLock()
	defer l.mu.RUnlock()
	total := decimal.Zero
	for _, p := range l.payments {
		if p.Status == status {
			total = total.Add(p.Amount)
		}
	}
	return total
}

// Summary computes all aggregates under one read lock.
func (l *Ledger) Summary() Summary {
	l.mu.RLock()
	defer l.mu.RUnlock()
	return summarize(l.payments)
}

func summarize(payments []Payment) Summary {
	s := Summary{
		TotalRevenue:  decimal.Zero,
		PaidAmount:    decimal.Zero,
		PendingAmount: decimal.Zero,
		OverdueAmount: decimal.Zero,
		Payments:      len(payments),
	}
	for _, p := range payments {
		s.TotalRevenue = s.TotalRevenue.Add(p.Amount)
		switch p.Status {
		case domain.PaymentPaid:
			s.PaidAmount = s.PaidAmount.Add(p.Amount)
			s.Paid++
		case domain.PaymentPending:
			s.PendingAmount = s.PendingAmount.Add(p.Amount)
			s.Pending++
		case domain.PaymentOverdue:
			s.OverdueAmount = s.OverdueAmount.Add(p.Amount)
			s.Overdue++
		}
	}
	return s
}

// PastDuePending lists pending payments whose due date is before asOf. It is
// a report only; statuses are never changed automatically.
func (l *Ledger) PastDuePending(asOf time.Time) []Payment {
	l.mu.RLock()
	defer l.mu.RUnlock()
	var out []Payment
	for _, p := range l.payments {
		if p.Status == domain.PaymentPending && p.DueDate != nil && p.DueDate.Before(asOf) {
			out = append(out, clonePayment(p))
		}
	}
	return out
}
