package core

import (
	"cemeterycore/internal/validation"
	"cemeterycore/pkg/domain"
	"errors"
	"strings"
)

// ErrForbidden is returned when the current role lacks a capability.
var ErrForbidden = errors.New("forbidden")

// Authorize returns ErrForbidden unless role grants capability.
func Authorize(role domain.Role, capability domain.Capability) error {
	if !role.Can(capability) {
		return &ForbiddenError{Role: role, Capability: capability}
	}
	return nil
}

// ForbiddenError names the role and the capability it lacks.
type ForbiddenError struct {
	Role       domain.Role
	Capability domain.Capability
}

func (e *ForbiddenError) Error() string {
	return "role " + string(e.Role) + " cannot " + strings.ReplaceAll(string(e.Capability), "_", " ")
}

// Is matches ErrForbidden.
func (e *ForbiddenError) Is(target error) bool { return target == ErrForbidden }

// ValidationError is returned when an input fails validation; the store is
// not touched.
type ValidationError = validation.Error

// GraveyardInput carries the fields accepted when adding a graveyard.
type GraveyardInput struct {
	Name     string `json:"name" validate:"required"`
	Location string `json:"location" validate:"required"`
}

// PlotInput carries the fields accepted when adding a plot.
type PlotInput struct {
	GraveyardID string `json:"graveyard_id" validate:"required"`
	PlotNumber  string `json:"plot_number" validate:"required"`
	Rows        int    `json:"rows" validate:"gt=0,lte=50"`
	Columns     int    `json:"columns" validate:"gt=0,lte=50"`
}

// BurialRecordInput carries the fields accepted when adding a burial record.
// Every field is mandatory.
type BurialRecordInput struct {
	Name        string `json:"name" validate:"required"`
	FatherName  string `json:"father_name" validate:"required"`
	DateOfDeath string `json:"date_of_death" validate:"required,datetime=2006-01-02"`
	Gender      string `json:"gender" validate:"required,oneof=male female"`
	Age         int    `json:"age" validate:"min=0,max=150"`
	Religion    string `json:"religion" validate:"required"`
	PlotID      string `json:"plot_id" validate:"required"`
	GraveID     string `json:"grave_id" validate:"required"`
}

func trimInput(values ...*string) {
	for _, v := range values {
		*v = strings.TrimSpace(*v)
	}
}

func (in GraveyardInput) normalize() (GraveyardInput, error) {
	trimInput(&in.Name, &in.Location)
	return in, validation.Struct(in)
}

func (in PlotInput) normalize() (PlotInput, error) {
	trimInput(&in.GraveyardID, &in.PlotNumber)
	return in, validation.Struct(in)
}

func (in BurialRecordInput) normalize() (BurialRecordInput, error) {
	trimInput(&in.Name, &in.FatherName, &in.DateOfDeath, &in.Religion, &in.PlotID, &in.GraveID)
	in.Gender = strings.ToLower(strings.TrimSpace(in.Gender))
	return in, validation.Struct(in)
}
