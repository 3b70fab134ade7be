package core

import (
	"cemeterycore/pkg/domain"
	"context"
	"errors"
	"testing"
	"time"
)

func TestBurialRecordWorkflow(t *testing.T) {
	ctx := context.Background()
	fixed := time.Date(2024, 11, 2, 10, 0, 0, 0, time.UTC)
	svc := NewInMemoryService(nil, WithClock(ClockFunc(func() time.Time { return fixed })))
	g := mustGraveyard(t, svc, "North")
	plot := mustPlot(t, svc, g.ID, "A1", 1, 2)

	in := validRecordInput(plot.ID, 1)
	in.Gender = " Male "
	rec, _, err := svc.AddBurialRecord(ctx, in)
	if err != nil {
		t.Fatalf("add record: %v", err)
	}
	if rec.Status != domain.RecordPending || rec.Gender != domain.GenderMale || rec.ID == "" || !rec.CreatedAt.Equal(fixed) {
		t.Fatalf("unexpected new record %+v", rec)
	}

	approved, _, err := svc.ApproveBurialRecord(ctx, rec.ID, "admin")
	if err != nil {
		t.Fatalf("approve: %v", err)
	}
	if approved.Status != domain.RecordApproved || approved.ApprovedBy == nil || *approved.ApprovedBy != "admin" {
		t.Fatalf("unexpected approval %+v", approved)
	}
	if approved.ApprovedAt == nil || !approved.ApprovedAt.Equal(fixed) {
		t.Fatalf("expected approval timestamp %v, got %v", fixed, approved.ApprovedAt)
	}

	rejected, _, err := svc.RejectBurialRecord(ctx, rec.ID, "duplicate entry")
	if err != nil {
		t.Fatalf("reject: %v", err)
	}
	if rejected.Status != domain.RecordRejected || rejected.Notes == nil || *rejected.Notes != "duplicate entry" {
		t.Fatalf("unexpected rejection %+v", rejected)
	}

	reapproved, _, err := svc.ApproveBurialRecord(ctx, rec.ID, "admin")
	if err != nil || reapproved.Status != domain.RecordApproved {
		t.Fatalf("expected rejected record to be approvable, got %+v err=%v", reapproved, err)
	}

	edited, _, err := svc.UpdateBurialRecord(ctx, rec.ID, func(r *BurialRecord) error {
		r.Religion = "Islam"
		return nil
	})
	if err != nil || edited.Religion != "Islam" {
		t.Fatalf("update record: %+v err=%v", edited, err)
	}

	if _, err := svc.DeleteBurialRecord(ctx, rec.ID); err != nil {
		t.Fatalf("delete record: %v", err)
	}
	if _, err := svc.GetBurialRecord(ctx, rec.ID); !domain.IsNotFound(err) {
		t.Fatalf("expected record gone, got %v", err)
	}
	if grave, err := svc.GetGrave(ctx, domain.GraveID(plot.ID, 1)); err != nil || grave.Status != domain.GraveAvailable {
		t.Fatalf("expected grave untouched by record delete, got %+v err=%v", grave, err)
	}
}

func TestBurialRecordValidation(t *testing.T) {
	ctx := context.Background()
	svc := newTestService(t)
	cases := map[string]func(*BurialRecordInput){
		"name":          func(in *BurialRecordInput) { in.Name = "" },
		"father_name":   func(in *BurialRecordInput) { in.FatherName = " " },
		"date_of_death": func(in *BurialRecordInput) { in.DateOfDeath = "15/10/2024" },
		"gender":        func(in *BurialRecordInput) { in.Gender = "unknown" },
		"age":           func(in *BurialRecordInput) { in.Age = 151 },
		"religion":      func(in *BurialRecordInput) { in.Religion = "" },
		"plot_id":       func(in *BurialRecordInput) { in.PlotID = "" },
		"grave_id":      func(in *BurialRecordInput) { in.GraveID = "" },
	}
	for field, mutate := range cases {
		t.Run(field, func(t *testing.T) {
			in := validRecordInput("plot-1", 1)
			mutate(&in)
			_, _, err := svc.AddBurialRecord(ctx, in)
			var verr *ValidationError
			if !errors.As(err, &verr) || !verr.Has(field) {
				t.Fatalf("expected %s validation failure, got %v", field, err)
			}
		})
	}
	negative := validRecordInput("plot-1", 1)
	negative.Age = -1
	if _, _, err := svc.AddBurialRecord(ctx, negative); err == nil {
		t.Fatalf("expected negative age to fail")
	}
	zero := validRecordInput("plot-1", 1)
	zero.Age = 0
	if _, _, err := svc.AddBurialRecord(ctx, zero); err != nil {
		t.Fatalf("expected age 0 to be accepted, got %v", err)
	}
}

func TestRecordsAcceptDanglingReferences(t *testing.T) {
	ctx := context.Background()
	svc := newTestService(t)
	rec, res, err := svc.AddBurialRecord(ctx, validRecordInput("no-such-plot", 4))
	if err != nil {
		t.Fatalf("expected unchecked references, got %v", err)
	}
	if len(res.Violations) != 1 || res.Violations[0].Rule != "burial_grave_reference" || res.Violations[0].Severity != domain.SeverityLog {
		t.Fatalf("expected a log-level reference violation, got %+v", res.Violations)
	}
	if got, err := svc.GetBurialRecord(ctx, rec.ID); err != nil || got.PlotID != "no-such-plot" {
		t.Fatalf("expected record stored, got %+v err=%v", got, err)
	}
}

func TestApproveRequiresApprover(t *testing.T) {
	ctx := context.Background()
	svc := newTestService(t)
	rec, _, err := svc.AddBurialRecord(ctx, validRecordInput("p", 1))
	if err != nil {
		t.Fatalf("add: %v", err)
	}
	if _, _, err := svc.ApproveBurialRecord(ctx, rec.ID, " "); err == nil {
		t.Fatalf("expected approver to be required")
	}
	if _, _, err := svc.ApproveBurialRecord(ctx, "missing", "admin"); !domain.IsNotFound(err) {
		t.Fatalf("expected not found, got %v", err)
	}
	if got, _ := svc.GetBurialRecord(ctx, rec.ID); got.Status != domain.RecordPending {
		t.Fatalf("expected record to stay pending, got %s", got.Status)
	}
}
