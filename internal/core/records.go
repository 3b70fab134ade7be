package core

import (
	"cemeterycore/pkg/domain"
	"context"
	"fmt"
	"strings"
)

// AddBurialRecord stores a new record in the pending state. The plot and
// grave references are not checked against the inventory.
func (s *Service) AddBurialRecord(ctx context.Context, in BurialRecordInput) (BurialRecord, Result, error) {
	var created BurialRecord
	res, err := s.run(ctx, "create_burial_record", func(ctx context.Context) (string, Result, error) {
		in, err := in.normalize()
		if err != nil {
			return "", Result{}, err
		}
		res, err := s.store.RunInTransaction(ctx, func(tx Transaction) error {
			var err error
			created, err = tx.CreateBurialRecord(BurialRecord{
				Name:        in.Name,
				FatherName:  in.FatherName,
				DateOfDeath: in.DateOfDeath,
				Gender:      domain.Gender(in.Gender),
				Age:         in.Age,
				Religion:    in.Religion,
				PlotID:      in.PlotID,
				GraveID:     in.GraveID,
			})
			return err
		})
		return created.ID, res, err
	})
	return created, res, err
}

// ApproveBurialRecord marks a record approved by approvedBy at the current
// time. Any prior status may be approved.
func (s *Service) ApproveBurialRecord(ctx context.Context, id, approvedBy string) (BurialRecord, Result, error) {
	approvedBy = strings.TrimSpace(approvedBy)
	return s.updateRecord(ctx, "approve_burial_record", id, func(r *BurialRecord) error {
		if approvedBy == "" {
			return fmt.Errorf("approve %s: approver is required", id)
		}
		at := s.now()
		r.Status = domain.RecordApproved
		r.ApprovedBy = &approvedBy
		r.ApprovedAt = &at
		return nil
	})
}

// RejectBurialRecord marks a record rejected and stores the reviewer's notes.
func (s *Service) RejectBurialRecord(ctx context.Context, id, notes string) (BurialRecord, Result, error) {
	return s.updateRecord(ctx, "reject_burial_record", id, func(r *BurialRecord) error {
		r.Status = domain.RecordRejected
		n := notes
		r.Notes = &n
		return nil
	})
}

// UpdateBurialRecord merges mutator's changes into a record.
func (s *Service) UpdateBurialRecord(ctx context.Context, id string, mutator func(*BurialRecord) error) (BurialRecord, Result, error) {
	return s.updateRecord(ctx, "update_burial_record", id, mutator)
}

func (s *Service) updateRecord(ctx context.Context, op, id string, mutator func(*BurialRecord) error) (BurialRecord, Result, error) {
	var updated BurialRecord
	res, err := s.run(ctx, op, func(ctx context.Context) (string, Result, error) {
		res, err := s.store.RunInTransaction(ctx, func(tx Transaction) error {
			var err error
			updated, err = tx.UpdateBurialRecord(id, mutator)
			return err
		})
		return id, res, err
	})
	return updated, res, err
}

// DeleteBurialRecord removes a record; the referenced grave is unaffected.
func (s *Service) DeleteBurialRecord(ctx context.Context, id string) (Result, error) {
	return s.run(ctx, "delete_burial_record", func(ctx context.Context) (string, Result, error) {
		res, err := s.store.RunInTransaction(ctx, func(tx Transaction) error {
			return tx.DeleteBurialRecord(id)
		})
		return id, res, err
	})
}
