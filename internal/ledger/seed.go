package ledger

import (
	"cemeterycore/pkg/domain"
	"time"

	"github.com/shopspring/decimal"
)

func samplePayments() []Payment {
	due := func(s string) *time.Time {
		t := mustDate(s)
		return &t
	}
	sample := func(id, customer string, amount int64, date string) Payment {
		d := mustDate(date)
		return Payment{
			Base:         domain.Base{ID: id, CreatedAt: d, UpdatedAt: d},
			CustomerName: customer,
			Amount:       decimal.NewFromInt(amount),
			Date:         d,
		}
	}

	booking := sample("1", "John Smith", 5000, "2024-10-15")
	booking.PlotInfo = "Plot A1"
	booking.GraveInfo = "Grave 12"
	booking.ServiceType = domain.ServicePlotBooking
	booking.Status = domain.PaymentPaid
	booking.Description = "Plot booking for family member"

	burial := sample("2", "Mary Johnson", 3500, "2024-11-01")
	burial.DueDate = due("2024-11-15")
	burial.PlotInfo = "Plot B2"
	burial.GraveInfo = "Grave 8"
	burial.ServiceType = domain.ServiceBurial
	burial.Status = domain.PaymentPending
	burial.Description = "Burial service arrangement"

	upkeep := sample("3", "Robert Davis", 2000, "2024-10-20")
	upkeep.DueDate = due("2024-10-30")
	upkeep.PlotInfo = "Plot A2"
	upkeep.ServiceType = domain.ServiceMaintenance
	upkeep.Status = domain.PaymentOverdue
	upkeep.Description = "Annual maintenance fee"

	return []Payment{booking, burial, upkeep}
}
