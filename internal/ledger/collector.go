package ledger

import (
	"cemeterycore/pkg/domain"

	"github.com/prometheus/client_golang/prometheus"
)

var (
	amountDesc = prometheus.NewDesc(
		"cemetery_ledger_amount",
		"Sum of payment amounts by status.",
		[]string{"status"}, nil,
	)
	countDesc = prometheus.NewDesc(
		"cemetery_ledger_payments",
		"Number of payments by status.",
		[]string{"status"}, nil,
	)
	revenueDesc = prometheus.NewDesc(
		"cemetery_ledger_revenue",
		"Sum of all payment amounts.",
		nil, nil,
	)
)

type collector struct {
	ledger *Ledger
}

// Collector exports the ledger aggregates. Values are computed at scrape time.
func (l *Ledger) Collector() prometheus.Collector {
	return collector{ledger: l}
}

func (c collector) Describe(ch chan<- *prometheus.Desc) {
	ch <- amountDesc
	ch <- countDesc
	ch <- revenueDesc
}

func (c collector) Collect(ch chan<- prometheus.Metric) {
	s := c.ledger.Summary()
	byStatus := []struct {
		status domain.PaymentStatus
		amount float64
		count  int
	}{
		{domain.PaymentPaid, s.PaidAmount.InexactFloat64(), s.Paid},
		{domain.PaymentPending, s.PendingAmount.InexactFloat64(), s.Pending},
		{domain.PaymentOverdue, s.OverdueAmount.InexactFloat64(), s.Overdue},
	}
	for _, b := range byStatus {
		ch <- prometheus.MustNewConstMetric(amountDesc, prometheus.GaugeValue, b.amount, string(b.status))
		ch <- prometheus.MustNewConstMetric(countDesc, prometheus.GaugeValue, float64(b.count), string(b.status))
	}
	ch <- prometheus.MustNewConstMetric(revenueDesc, prometheus.GaugeValue, s.TotalRevenue.InexactFloat64())
}
