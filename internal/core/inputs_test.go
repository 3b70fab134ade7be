package core

import (
	"cemeterycore/pkg/domain"
	"errors"
	"testing"
)

func TestAuthorize(t *testing.T) {
	cases := []struct {
		role    domain.Role
		cap     domain.Capability
		allowed bool
	}{
		{domain.RoleAdmin, domain.CapApproveRecords, true},
		{domain.RoleStaff, domain.CapCreateRecords, true},
		{domain.RoleStaff, domain.CapApproveRecords, false},
		{domain.RoleVisitor, domain.CapView, true},
		{domain.RoleVisitor, domain.CapManagePayments, false},
	}
	for _, tc := range cases {
		err := Authorize(tc.role, tc.cap)
		if tc.allowed {
			if err != nil {
				t.Fatalf("%s/%s: unexpected error %v", tc.role, tc.cap, err)
			}
			continue
		}
		if !errors.Is(err, ErrForbidden) {
			t.Fatalf("%s/%s: expected ErrForbidden, got %v", tc.role, tc.cap, err)
		}
		var fe *ForbiddenError
		if !errors.As(err, &fe) || fe.Role != tc.role || fe.Capability != tc.cap {
			t.Fatalf("expected ForbiddenError detail, got %#v", err)
		}
	}
	if got := Authorize(domain.RoleStaff, domain.CapApproveRecords).Error(); got != "role staff cannot approve records" {
		t.Fatalf("unexpected message %q", got)
	}
}

func TestInputNormalizeTrims(t *testing.T) {
	in, err := BurialRecordInput{
		Name: "  Jane Doe ", FatherName: " John Doe", DateOfDeath: " 2024-01-02 ", Gender: " Female ",
		Age: 40, Religion: "None", PlotID: " p1 ", GraveID: "p1-3",
	}.normalize()
	if err != nil {
		t.Fatalf("normalize: %v", err)
	}
	if in.Name != "Jane Doe" || in.Gender != "female" || in.PlotID != "p1" || in.DateOfDeath != "2024-01-02" {
		t.Fatalf("unexpected normalized input %+v", in)
	}
	if _, err := (GraveyardInput{Name: "  ", Location: "x"}).normalize(); err == nil {
		t.Fatalf("expected blank name rejected")
	}
	var verr *ValidationError
	if _, err := (PlotInput{GraveyardID: "g", PlotNumber: "A1", Rows: 0, Columns: 2}).normalize(); !errors.As(err, &verr) || !verr.Has("rows") {
		t.Fatalf("expected rows error, got %v", err)
	}
}
