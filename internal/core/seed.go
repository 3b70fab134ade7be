package core

import (
	"cemeterycore/pkg/domain"
	"context"
)

// SeedApprover is recorded as the approver of the sample burial records.
const SeedApprover = "admin"

type seedPlot struct {
	id, number   string
	rows, cols   int
	graveyardIdx int
}

type seedReservation struct {
	plotIdx, grave int
	holder         string
}

// Sample entities carry fixed ids so they resolve across process restarts.
var (
	seedGraveyardIDs = []string{"1", "2"}
	seedGraveyards   = []GraveyardInput{
		{Name: "Green Meadows Cemetery", Location: "123 Oak Street, Springfield"},
		{Name: "Peaceful Valley Memorial", Location: "456 Elm Avenue, Riverside"},
	}
	seedPlots = []seedPlot{
		{id: "1", number: "A1", rows: 5, cols: 6, graveyardIdx: 0},
		{id: "2", number: "A2", rows: 4, cols: 5, graveyardIdx: 0},
		{id: "3", number: "B1", rows: 6, cols: 4, graveyardIdx: 1},
	}
	seedRecords = []struct {
		id    string
		in    BurialRecordInput
		grave int
	}{
		{id: "1", in: BurialRecordInput{Name: "John Smith", FatherName: "Thomas Smith", DateOfDeath: "2024-10-15", Gender: "male", Age: 78, Religion: "Christianity"}, grave: 1},
		{id: "2", in: BurialRecordInput{Name: "Mary Johnson", FatherName: "Robert Johnson", DateOfDeath: "2024-10-20", Gender: "female", Age: 65, Religion: "Christianity"}, grave: 2},
	}
	// Reservations besides the graves taken by the sample burials.
	seedReservations = []seedReservation{
		{plotIdx: 0, grave: 7, holder: "Williams Family"},
		{plotIdx: 0, grave: 8, holder: "Williams Family"},
		{plotIdx: 1, grave: 3, holder: "Anna Davis"},
		{plotIdx: 2, grave: 5, holder: "Garcia Family"},
		{plotIdx: 2, grave: 12, holder: "Peter Brown"},
	}
)

// Seed loads the sample graveyards, plots and approved burial records when the
// store holds no graveyards yet. It reports whether anything was written.
func (s *Service) Seed(ctx context.Context) (bool, error) {
	existing, err := s.ListGraveyards(ctx)
	if err != nil {
		return false, err
	}
	if len(existing) > 0 {
		return false, nil
	}
	approvedAt := s.now()
	approver := SeedApprover
	_, err = s.store.RunInTransaction(ctx, func(tx Transaction) error {
		graveyardIDs := make([]string, 0, len(seedGraveyards))
		for _, in := range seedGraveyards {
			g, err := tx.CreateGraveyard(Graveyard{Base: Base{ID: seedGraveyardIDs[len(graveyardIDs)]}, Name: in.Name, Location: in.Location})
			if err != nil {
				return err
			}
			graveyardIDs = append(graveyardIDs, g.ID)
		}
		plotIDs := make([]string, 0, len(seedPlots))
		for _, sp := range seedPlots {
			p, err := tx.CreatePlot(Plot{Base: Base{ID: sp.id}, GraveyardID: graveyardIDs[sp.graveyardIdx], PlotNumber: sp.number, Rows: sp.rows, Columns: sp.cols})
			if err != nil {
				return err
			}
			plotIDs = append(plotIDs, p.ID)
		}
		firstPlot := plotIDs[0]
		for _, sr := range seedRecords {
			in := sr.in
			rec, err := tx.CreateBurialRecord(BurialRecord{
				Base:        Base{ID: sr.id},
				Name:        in.Name,
				FatherName:  in.FatherName,
				DateOfDeath: in.DateOfDeath,
				Gender:      domain.Gender(in.Gender),
				Age:         in.Age,
				Religion:    in.Religion,
				PlotID:      firstPlot,
				GraveID:     domain.GraveID(firstPlot, sr.grave),
			})
			if err != nil {
				return err
			}
			if _, err := tx.UpdateGrave(rec.GraveID, reserveMutator(in.Name)); err != nil {
				return err
			}
			if _, err := tx.UpdateBurialRecord(rec.ID, func(r *BurialRecord) error {
				r.Status = domain.RecordApproved
				r.ApprovedBy = &approver
				r.ApprovedAt = &approvedAt
				return nil
			}); err != nil {
				return err
			}
		}
		for _, r := range seedReservations {
			if _, err := tx.UpdateGrave(domain.GraveID(plotIDs[r.plotIdx], r.grave), reserveMutator(r.holder)); err != nil {
				return err
			}
		}
		return nil
	})
	if err != nil {
		return false, err
	}
	s.logger.Info("seeded sample inventory", "graveyards", len(seedGraveyards), "plots", len(seedPlots), "burial_records", len(seedRecords), "reserved_graves", len(seedRecords)+len(seedReservations))
	return true, nil
}
