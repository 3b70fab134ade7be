package core

import (
	"cemeterycore/pkg/domain"
	"context"
	"fmt"
	"strings"
)

// AddGraveyard creates a graveyard with no plots.
func (s *Service) AddGraveyard(ctx context.Context, in GraveyardInput) (Graveyard, Result, error) {
	var created Graveyard
	res, err := s.run(ctx, "create_graveyard", func(ctx context.Context) (string, Result, error) {
		in, err := in.normalize()
		if err != nil {
			return "", Result{}, err
		}
		res, err := s.store.RunInTransaction(ctx, func(tx Transaction) error {
			var err error
			created, err = tx.CreateGraveyard(Graveyard{Name: in.Name, Location: in.Location})
			return err
		})
		return created.ID, res, err
	})
	return created, res, err
}

// UpdateGraveyard merges mutator's changes into a graveyard.
func (s *Service) UpdateGraveyard(ctx context.Context, id string, mutator func(*Graveyard) error) (Graveyard, Result, error) {
	var updated Graveyard
	res, err := s.run(ctx, "update_graveyard", func(ctx context.Context) (string, Result, error) {
		res, err := s.store.RunInTransaction(ctx, func(tx Transaction) error {
			var err error
			updated, err = tx.UpdateGraveyard(id, mutator)
			return err
		})
		return id, res, err
	})
	return updated, res, err
}

// DeleteGraveyard removes a graveyard, its plots and their graves.
func (s *Service) DeleteGraveyard(ctx context.Context, id string) (Result, error) {
	return s.run(ctx, "delete_graveyard", func(ctx context.Context) (string, Result, error) {
		res, err := s.store.RunInTransaction(ctx, func(tx Transaction) error {
			return tx.DeleteGraveyard(id)
		})
		return id, res, err
	})
}

// AddPlot creates a plot and its rows*columns graves in one transaction.
func (s *Service) AddPlot(ctx context.Context, in PlotInput) (Plot, Result, error) {
	var created Plot
	res, err := s.run(ctx, "create_plot", func(ctx context.Context) (string, Result, error) {
		in, err := in.normalize()
		if err != nil {
			return "", Result{}, err
		}
		res, err := s.store.RunInTransaction(ctx, func(tx Transaction) error {
			var err error
			created, err = tx.CreatePlot(Plot{
				GraveyardID: in.GraveyardID,
				PlotNumber:  in.PlotNumber,
				Rows:        in.Rows,
				Columns:     in.Columns,
			})
			return err
		})
		return created.ID, res, err
	})
	return created, res, err
}

// UpdatePlot merges label changes; shape and owner changes fail with domain.ErrPlotResize.
func (s *Service) UpdatePlot(ctx context.Context, id string, mutator func(*Plot) error) (Plot, Result, error) {
	var updated Plot
	res, err := s.run(ctx, "update_plot", func(ctx context.Context) (string, Result, error) {
		res, err := s.store.RunInTransaction(ctx, func(tx Transaction) error {
			var err error
			updated, err = tx.UpdatePlot(id, mutator)
			return err
		})
		return id, res, err
	})
	return updated, res, err
}

// DeletePlot removes a plot and its graves. Burial records that reference
// the plot are kept.
func (s *Service) DeletePlot(ctx context.Context, id string) (Result, error) {
	return s.run(ctx, "delete_plot", func(ctx context.Context) (string, Result, error) {
		res, err := s.store.RunInTransaction(ctx, func(tx Transaction) error {
			return tx.DeletePlot(id)
		})
		return id, res, err
	})
}

// UpdateGrave applies mutator to one grave.
func (s *Service) UpdateGrave(ctx context.Context, id string, mutator func(*Grave) error) (Grave, Result, error) {
	return s.updateGrave(ctx, "update_grave", id, mutator)
}

// ReserveGrave marks a grave unavailable and records who holds it.
func (s *Service) ReserveGrave(ctx context.Context, id, holder string) (Grave, Result, error) {
	return s.updateGrave(ctx, "reserve_grave", id, reserveMutator(holder))
}

// ReleaseGrave makes a grave available and clears its holder.
func (s *Service) ReleaseGrave(ctx context.Context, id string) (Grave, Result, error) {
	return s.updateGrave(ctx, "release_grave", id, releaseMutator)
}

func (s *Service) updateGrave(ctx context.Context, op, id string, mutator func(*Grave) error) (Grave, Result, error) {
	var updated Grave
	res, err := s.run(ctx, op, func(ctx context.Context) (string, Result, error) {
		res, err := s.store.RunInTransaction(ctx, func(tx Transaction) error {
			var err error
			updated, err = tx.UpdateGrave(id, mutator)
			return err
		})
		return id, res, err
	})
	return updated, res, err
}

// BulkUpdateGraves applies mutator to each listed grave atomically. Unknown
// ids are skipped; the count of updated graves is returned.
func (s *Service) BulkUpdateGraves(ctx context.Context, ids []string, mutator func(*Grave) error) (int, Result, error) {
	return s.bulkUpdateGraves(ctx, "bulk_update_graves", ids, mutator)
}

// BulkReserveGraves reserves every listed grave for holder.
func (s *Service) BulkReserveGraves(ctx context.Context, ids []string, holder string) (int, Result, error) {
	return s.bulkUpdateGraves(ctx, "bulk_reserve_graves", ids, reserveMutator(holder))
}

// BulkReleaseGraves releases every listed grave.
func (s *Service) BulkReleaseGraves(ctx context.Context, ids []string) (int, Result, error) {
	return s.bulkUpdateGraves(ctx, "bulk_release_graves", ids, releaseMutator)
}

func (s *Service) bulkUpdateGraves(ctx context.Context, op string, ids []string, mutator func(*Grave) error) (int, Result, error) {
	var count int
	res, err := s.run(ctx, op, func(ctx context.Context) (string, Result, error) {
		res, err := s.store.RunInTransaction(ctx, func(tx Transaction) error {
			var err error
			count, err = tx.BulkUpdateGraves(ids, mutator)
			return err
		})
		return strings.Join(ids, ","), res, err
	})
	if err != nil {
		return 0, res, err
	}
	return count, res, nil
}

func reserveMutator(holder string) func(*Grave) error {
	holder = strings.TrimSpace(holder)
	return func(g *Grave) error {
		if holder == "" {
			return fmt.Errorf("reserve %s: holder is required", g.ID)
		}
		g.Reserve(holder)
		return nil
	}
}

func releaseMutator(g *Grave) error {
	g.Release()
	return nil
}

// SetGraveStatus returns a mutator that sets status and keeps the holder
// only while the grave stays unavailable.
func SetGraveStatus(status domain.GraveStatus) func(*Grave) error {
	return func(g *Grave) error {
		if !status.Valid() {
			return fmt.Errorf("invalid grave status %q", status)
		}
		g.Status = status
		if status == domain.GraveAvailable {
			g.ReservedBy = nil
		}
		return nil
	}
}
