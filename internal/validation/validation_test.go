package validation

import (
	"errors"
	"fmt"
	"strings"
	"testing"

	"github.com/shopspring/decimal"
)

type sampleInput struct {
	Name   string          `json:"name" validate:"required"`
	Age    int             `json:"age" validate:"min=0,max=150"`
	Gender string          `json:"gender" validate:"required,oneof=male female"`
	Date   string          `json:"date" validate:"required,datetime=2006-01-02"`
	Amount decimal.Decimal `json:"amount" validate:"gt=0"`
	Note   string          `json:"-" validate:"omitempty,max=3"`
}

func validSample() sampleInput {
	return sampleInput{Name: "John Smith", Age: 78, Gender: "male", Date: "2024-10-15", Amount: decimal.RequireFromString("5000")}
}

func TestStructAcceptsValidInput(t *testing.T) {
	if err := Struct(validSample()); err != nil {
		t.Fatalf("expected valid input, got %v", err)
	}
}

func TestStructReportsJSONFieldNames(t *testing.T) {
	in := validSample()
	in.Name = ""
	in.Age = 151
	in.Gender = "other"
	in.Date = "15/10/2024"
	in.Amount = decimal.Zero
	in.Note = "long"

	err := Struct(in)
	var verr *Error
	if !errors.As(err, &verr) {
		t.Fatalf("expected *Error, got %T %v", err, err)
	}
	for _, field := range []string{"name", "age", "gender", "date", "amount", "Note"} {
		if !verr.Has(field) {
			t.Fatalf("expected %s to fail, got %+v", field, verr.Fields)
		}
	}
	msg := verr.Error()
	for _, want := range []string{"name is required", "age must be at most 150", "gender must be one of [male female]", "amount must be greater than 0"} {
		if !strings.Contains(msg, want) {
			t.Fatalf("expected %q in %q", want, msg)
		}
	}
	if fields, ok := FieldsOf(fmt.Errorf("wrapped: %w", err)); !ok || len(fields) != 6 {
		t.Fatalf("expected 6 wrapped fields, got %v %v", fields, ok)
	}
}

func TestNegativeAmountFails(t *testing.T) {
	in := validSample()
	in.Amount = decimal.NewFromInt(-10)
	if fields, ok := FieldsOf(Struct(in)); !ok || fields[0].Field != "amount" {
		t.Fatalf("expected amount failure, got %v", fields)
	}
}

func TestFieldErrorMessages(t *testing.T) {
	cases := map[FieldError]string{
		{Field: "age", Rule: "gte", Param: "0"}:                "age must be at least 0",
		{Field: "date", Rule: "datetime", Param: "2006-01-02"}: "date must be a date formatted as 2006-01-02",
		{Field: "x", Rule: "uuid"}:                             "x failed uuid",
	}
	for fe, want := range cases {
		if got := fe.Message(); got != want {
			t.Fatalf("expected %q, got %q", want, got)
		}
	}
	if _, ok := FieldsOf(errors.New("plain")); ok {
		t.Fatalf("expected plain error to be rejected")
	}
}

func TestStructRejectsNonStruct(t *testing.T) {
	if err := Struct(42); err == nil {
		t.Fatalf("expected error for non-struct input")
	}
}
