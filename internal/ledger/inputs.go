package ledger

import (
	"cemeterycore/internal/validation"
	"cemeterycore/pkg/domain"
	"fmt"
	"strings"
	"time"

	"github.com/shopspring/decimal"
)

// DateLayout is the calendar date format accepted for payment and due dates.
const DateLayout = "2006-01-02"

// PaymentInput carries the fields accepted by the payment form. Status
// defaults to pending.
type PaymentInput struct {
	CustomerName string               `json:"customer_name" validate:"required"`
	Amount       decimal.Decimal      `json:"amount" validate:"gt=0"`
	Date         string               `json:"date" validate:"required,datetime=2006-01-02"`
	DueDate      string               `json:"due_date" validate:"omitempty,datetime=2006-01-02"`
	PlotInfo     string               `json:"plot_info"`
	GraveInfo    string               `json:"grave_info"`
	ServiceType  domain.ServiceType   `json:"service_type" validate:"required,oneof=plot_booking burial_service maintenance other"`
	Status       domain.PaymentStatus `json:"status" validate:"omitempty,oneof=paid pending overdue"`
	Description  string               `json:"description"`
}

func (in PaymentInput) normalize() PaymentInput {
	for _, v := range []*string{&in.CustomerName, &in.Date, &in.DueDate, &in.PlotInfo, &in.GraveInfo, &in.Description} {
		*v = strings.TrimSpace(*v)
	}
	in.ServiceType = domain.ServiceType(strings.ToLower(strings.TrimSpace(string(in.ServiceType))))
	in.Status = domain.PaymentStatus(strings.ToLower(strings.TrimSpace(string(in.Status))))
	if in.Status == "" {
		in.Status = domain.PaymentPending
	}
	return in
}

func (in PaymentInput) toPayment() (Payment, error) {
	in = in.normalize()
	if err := validation.Struct(in); err != nil {
		return Payment{}, err
	}
	date, err := ParseDate(in.Date)
	if err != nil {
		return Payment{}, err
	}
	p := Payment{
		CustomerName: in.CustomerName,
		Amount:       in.Amount,
		Date:         date,
		PlotInfo:     in.PlotInfo,
		GraveInfo:    in.GraveInfo,
		ServiceType:  in.ServiceType,
		Status:       in.Status,
		Description:  in.Description,
	}
	if in.DueDate != "" {
		due, err := ParseDate(in.DueDate)
		if err != nil {
			return Payment{}, err
		}
		p.DueDate = &due
	}
	return p, nil
}

// ParseDate parses a YYYY-MM-DD date as midnight UTC.
func ParseDate(s string) (time.Time, error) {
	t, err := time.ParseInLocation(DateLayout, strings.TrimSpace(s), time.UTC)
	if err != nil {
		return time.Time{}, fmt.Errorf("parse date %q: %w", s, err)
	}
	return t, nil
}

func mustDate(s string) time.Time {
	t, err := ParseDate(s)
	if err != nil {
		panic(err)
	}
	return t
}

// checkPayment guards updates, which bypass PaymentInput.
func checkPayment(p Payment) error {
	var fields []validation.FieldError
	if strings.TrimSpace(p.CustomerName) == "" {
		fields = append(fields, validation.FieldError{Field: "customer_name", Rule: "required"})
	}
	if !p.Amount.IsPositive() {
		fields = append(fields, validation.FieldError{Field: "amount", Rule: "gt", Param: "0"})
	}
	if p.Date.IsZero() {
		fields = append(fields, validation.FieldError{Field: "date", Rule: "required"})
	}
	if !p.ServiceType.Valid() {
		fields = append(fields, validation.FieldError{Field: "service_type", Rule: "oneof", Param: "plot_booking burial_service maintenance other"})
	}
	if !p.Status.Valid() {
		fields = append(fields, validation.FieldError{Field: "status", Rule: "oneof", Param: "paid pending overdue"})
	}
	if len(fields) > 0 {
		return &validation.Error{Fields: fields}
	}
	return nil
}

// PaymentFilter narrows List. Empty fields match everything.
type PaymentFilter struct {
	Status      domain.PaymentStatus
	ServiceType domain.ServiceType
	// Query matches the customer name, id or description, ignoring case.
	Query string
}

func (f PaymentFilter) match(p Payment) bool {
	if f.Status != "" && p.Status != f.Status {
		return false
	}
	if f.ServiceType != "" && p.ServiceType != f.ServiceType {
		return false
	}
	q := strings.ToLower(strings.TrimSpace(f.Query))
	if q == "" {
		return true
	}
	return strings.Contains(strings.ToLower(p.CustomerName), q) ||
		strings.Contains(strings.ToLower(p.ID), q) ||
		strings.Contains(strings.ToLower(p.Description), q)
}

// List returns the payments matching filter, newest first.
func (l *Ledger) List(filter PaymentFilter) []Payment {
	l.mu.RLock()
	defer l.mu.RUnlock()
	out := make([]Payment, 0, len(l.payments))
	for _, p := range l.payments {
		if filter.match(p) {
			out = append(out, clonePayment(p))
		}
	}
	return out
}
