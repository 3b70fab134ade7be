// Package domain defines the cemetery inventory entities, burial records,
// payments, and the rule evaluation primitives shared by every store.
package domain

import (
	"fmt"
	"time"

	"github.com/shopspring/decimal"
)

// EntityType identifies the type of record stored in the core domain.
type EntityType string

// Supported entity type identifiers used in Change records and persistence buckets.
const (
	// EntityGraveyard identifies a graveyard record.
	EntityGraveyard EntityType = "graveyard"
	// EntityPlot identifies a plot record owned by a graveyard.
	EntityPlot EntityType = "plot"
	// EntityGrave identifies a single grave position inside a plot.
	EntityGrave        EntityType = "grave"
	EntityBurialRecord EntityType = "burial_record"
	EntityPayment      EntityType = "payment"
)

// GraveStatus describes whether a grave can still be assigned.
type GraveStatus string

// Grave statuses.
const (
	GraveAvailable   GraveStatus = "available"
	GraveUnavailable GraveStatus = "unavailable"
)

// Valid reports whether s is a known grave status.
func (s GraveStatus) Valid() bool {
	return s == GraveAvailable || s == GraveUnavailable
}

// RecordStatus enumerates the burial record approval workflow states.
type RecordStatus string

// Burial record workflow states. New records always start pending.
const (
	RecordPending  RecordStatus = "pending"
	RecordApproved RecordStatus = "approved"
	RecordRejected RecordStatus = "rejected"
)

// Valid reports whether s is a known record status.
func (s RecordStatus) Valid() bool {
	switch s {
	case RecordPending, RecordApproved, RecordRejected:
		return true
	}
	return false
}

// Gender recorded on a burial record.
type Gender string

const (
	GenderMale   Gender = "male"
	GenderFemale Gender = "female"
)

// PaymentStatus is set by staff and never derived from due dates.
type PaymentStatus string

// Payment statuses.
const (
	PaymentPaid    PaymentStatus = "paid"
	PaymentPending PaymentStatus = "pending"
	PaymentOverdue PaymentStatus = "overdue"
)

// Valid reports whether s is a known payment status.
func (s PaymentStatus) Valid() bool {
	switch s {
	case PaymentPaid, PaymentPending, PaymentOverdue:
		return true
	}
	return false
}

// ServiceType classifies what a payment was collected for.
type ServiceType string

// Payment service types.
const (
	ServicePlotBooking ServiceType = "plot_booking"
	ServiceBurial      ServiceType = "burial_service"
	ServiceMaintenance ServiceType = "maintenance"
	ServiceOther       ServiceType = "other"
)

// Valid reports whether s is a known service type.
func (s ServiceType) Valid() bool {
	switch s {
	case ServicePlotBooking, ServiceBurial, ServiceMaintenance, ServiceOther:
		return true
	}
	return false
}

// Severity captures rule outcomes.
type Severity string

// Rule evaluation severities determine commit behavior and logging.
const (
	// SeverityBlock blocks transaction commit.
	SeverityBlock Severity = "block"
	// SeverityWarn logs a warning but allows commit.
	SeverityWarn Severity = "warn"
	SeverityLog  Severity = "log"
)

// Base contains common fields for all domain records.
type Base struct {
	ID        string    `json:"id"`
	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`
}

// Graveyard is the root of the inventory hierarchy. TotalPlots is derived
// from the live plots referencing the graveyard whenever it is read.
type Graveyard struct {
	Base
	Name       string `json:"name"`
	Location   string `json:"location"`
	TotalPlots int    `json:"total_plots"`
}

// Plot is a rows by columns grid of graves inside a graveyard.
// GraveyardID, Rows and Columns are fixed once the plot exists.
type Plot struct {
	Base
	GraveyardID string `json:"graveyard_id"`
	PlotNumber  string `json:"plot_number"`
	Rows        int    `json:"rows"`
	Columns     int    `json:"columns"`
	TotalGraves int    `json:"total_graves"`
}

// MaxPlotSide bounds the rows and columns of a plot.
const MaxPlotSide = 50

// Capacity returns the number of graves a plot of this shape holds.
func (p Plot) Capacity() int {
	return p.Rows * p.Columns
}

// Grave is a single numbered position inside a plot.
type Grave struct {
	Base
	PlotID      string      `json:"plot_id"`
	GraveNumber int         `json:"grave_number"`
	Status      GraveStatus `json:"status"`
	ReservedBy  *string     `json:"reserved_by,omitempty"`
}

// GraveID returns the identifier of the n-th grave of a plot.
func GraveID(plotID string, n int) string {
	return fmt.Sprintf("%s-%d", plotID, n)
}

// Reserve marks the grave unavailable and records the holder.
func (g *Grave) Reserve(holder string) {
	g.Status = GraveUnavailable
	h := holder
	g.ReservedBy = &h
}

// Release makes the grave available again and clears the holder.
func (g *Grave) Release() {
	g.Status = GraveAvailable
	g.ReservedBy = nil
}

// Holder returns the reservation holder or an empty string.
func (g Grave) Holder() string {
	if g.ReservedBy == nil {
		return ""
	}
	return *g.ReservedBy
}

// BurialRecord documents a burial and its approval state. PlotID and GraveID
// are unchecked references; deleting a plot does not retract records.
type BurialRecord struct {
	Base
	Name        string       `json:"name"`
	FatherName  string       `json:"father_name"`
	DateOfDeath string       `json:"date_of_death"`
	Gender      Gender       `json:"gender"`
	Age         int          `json:"age"`
	Religion    string       `json:"religion"`
	PlotID      string       `json:"plot_id"`
	GraveID     string       `json:"grave_id"`
	Status      RecordStatus `json:"status"`
	ApprovedBy  *string      `json:"approved_by,omitempty"`
	ApprovedAt  *time.Time   `json:"approved_at,omitempty"`
	Notes       *string      `json:"notes,omitempty"`
}

// Payment is a single ledger entry. PlotInfo and GraveInfo are free text
// snapshots rather than live references.
type Payment struct {
	Base
	CustomerName string          `json:"customer_name"`
	Amount       decimal.Decimal `json:"amount"`
	Date         time.Time       `json:"date"`
	DueDate      *time.Time      `json:"due_date,omitempty"`
	PlotInfo     string          `json:"plot_info,omitempty"`
	GraveInfo    string          `json:"grave_info,omitempty"`
	ServiceType  ServiceType     `json:"service_type"`
	Status       PaymentStatus   `json:"status"`
	Description  string          `json:"description,omitempty"`
}

// Change describes a mutation applied to an entity within a transaction.
type Change struct {
	Entity EntityType
	Action Action
	Before any
	After  any
}

// Action indicates the type of modification performed.
type Action string

// Change actions enumerate supported CRUD operations captured in audit trail.
const (
	// ActionCreate indicates an entity was created.
	ActionCreate Action = "create"
	// ActionUpdate indicates an entity was updated.
	ActionUpdate Action = "update"
	ActionDelete Action = "delete"
)

// Violation reports a failed rule evaluation.
type Violation struct {
	Rule     string
	Severity Severity
	Message  string
	Entity   EntityType
	EntityID string
}

// Result aggregates violations from the rules engine.
type Result struct {
	Violations []Violation
}

// Merge appends violations from another result.
func (r *Result) Merge(other Result) {
	if len(other.Violations) == 0 {
		return
	}
	r.Violations = append(r.Violations, other.Violations...)
}

// HasBlocking returns true if the result contains blocking violations.
func (r Result) HasBlocking() bool {
	for _, v := range r.Violations {
		if v.Severity == SeverityBlock {
			return true
		}
	}
	return false
}

// RuleViolationError is returned when blocking violations are present.
type RuleViolationError struct {
	Result Result
}

func (e RuleViolationError) Error() string {
	for _, v := range e.Result.Violations {
		if v.Severity == SeverityBlock {
			return fmt.Sprintf("transaction blocked by rule %s: %s", v.Rule, v.Message)
		}
	}
	return "transaction blocked by rules"
}
