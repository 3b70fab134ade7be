package core

import (
	"cemeterycore/pkg/domain"
	"context"
	"math"
	"strconv"
	"strings"
)

// GraveFilter narrows ListGraves. Empty fields match everything.
type GraveFilter struct {
	PlotID string
	Status domain.GraveStatus
	// Query matches a substring of the grave number or, case-insensitively,
	// of the reservation holder.
	Query string
}

func (f GraveFilter) match(g Grave) bool {
	if f.PlotID != "" && g.PlotID != f.PlotID {
		return false
	}
	if f.Status != "" && g.Status != f.Status {
		return false
	}
	q := strings.ToLower(strings.TrimSpace(f.Query))
	if q == "" {
		return true
	}
	return strings.Contains(strconv.Itoa(g.GraveNumber), q) ||
		strings.Contains(strings.ToLower(g.Holder()), q)
}

// RecordFilter narrows ListBurialRecords. Empty fields match everything.
type RecordFilter struct {
	Status domain.RecordStatus
	// Query matches the deceased's or the father's name, case-insensitively.
	Query string
}

func (f RecordFilter) match(r BurialRecord) bool {
	if f.Status != "" && r.Status != f.Status {
		return false
	}
	q := strings.ToLower(strings.TrimSpace(f.Query))
	if q == "" {
		return true
	}
	return strings.Contains(strings.ToLower(r.Name), q) ||
		strings.Contains(strings.ToLower(r.FatherName), q)
}

// ListGraveyards returns every graveyard with its live plot count.
func (s *Service) ListGraveyards(ctx context.Context) ([]Graveyard, error) {
	var out []Graveyard
	err := s.store.View(ctx, func(v TransactionView) error {
		out = v.ListGraveyards()
		return nil
	})
	return out, err
}

// GetGraveyard returns a graveyard by id.
func (s *Service) GetGraveyard(ctx context.Context, id string) (Graveyard, error) {
	var g Graveyard
	err := s.store.View(ctx, func(v TransactionView) error {
		var ok bool
		if g, ok = v.FindGraveyard(id); !ok {
			return domain.ErrNotFound{Entity: domain.EntityGraveyard, ID: id}
		}
		return nil
	})
	return g, err
}

// ListPlots returns the plots of graveyardID, or every plot when it is empty.
func (s *Service) ListPlots(ctx context.Context, graveyardID string) ([]Plot, error) {
	var out []Plot
	err := s.store.View(ctx, func(v TransactionView) error {
		for _, p := range v.ListPlots() {
			if graveyardID == "" || p.GraveyardID == graveyardID {
				out = append(out, p)
			}
		}
		return nil
	})
	return out, err
}

// GetPlot returns a plot by id.
func (s *Service) GetPlot(ctx context.Context, id string) (Plot, error) {
	var p Plot
	err := s.store.View(ctx, func(v TransactionView) error {
		var ok bool
		if p, ok = v.FindPlot(id); !ok {
			return domain.ErrNotFound{Entity: domain.EntityPlot, ID: id}
		}
		return nil
	})
	return p, err
}

// ListGraves returns graves matching filter ordered by plot then number.
func (s *Service) ListGraves(ctx context.Context, filter GraveFilter) ([]Grave, error) {
	var out []Grave
	err := s.store.View(ctx, func(v TransactionView) error {
		for _, g := range v.ListGraves() {
			if filter.match(g) {
				out = append(out, g)
			}
		}
		return nil
	})
	return out, err
}

// GetGrave returns a grave by id.
func (s *Service) GetGrave(ctx context.Context, id string) (Grave, error) {
	var g Grave
	err := s.store.View(ctx, func(v TransactionView) error {
		var ok bool
		if g, ok = v.FindGrave(id); !ok {
			return domain.ErrNotFound{Entity: domain.EntityGrave, ID: id}
		}
		return nil
	})
	return g, err
}

// ListBurialRecords returns records matching filter, newest first.
func (s *Service) ListBurialRecords(ctx context.Context, filter RecordFilter) ([]BurialRecord, error) {
	var out []BurialRecord
	err := s.store.View(ctx, func(v TransactionView) error {
		for _, r := range v.ListBurialRecords() {
			if filter.match(r) {
				out = append(out, r)
			}
		}
		return nil
	})
	return out, err
}

// GetBurialRecord returns a record by id.
func (s *Service) GetBurialRecord(ctx context.Context, id string) (BurialRecord, error) {
	var r BurialRecord
	err := s.store.View(ctx, func(v TransactionView) error {
		var ok bool
		if r, ok = v.FindBurialRecord(id); !ok {
			return domain.ErrNotFound{Entity: domain.EntityBurialRecord, ID: id}
		}
		return nil
	})
	return r, err
}

// Stats summarises inventory occupancy. Rates and averages are rounded to
// whole numbers and are zero when their denominator is zero.
type Stats struct {
	Graveyards            int `json:"total_graveyards"`
	Plots                 int `json:"total_plots"`
	Graves                int `json:"total_graves"`
	Available             int `json:"available_graves"`
	Unavailable           int `json:"unavailable_graves"`
	OccupancyRate         int `json:"occupancy_rate"`
	AvgGravesPerPlot      int `json:"avg_graves_per_plot"`
	AvgPlotsPerGraveyard  int `json:"avg_plots_per_graveyard"`
	PendingBurialRecords  int `json:"pending_burial_records"`
	ApprovedBurialRecords int `json:"approved_burial_records"`
}

// OccupancyStats computes Stats over one consistent snapshot.
func (s *Service) OccupancyStats(ctx context.Context) (Stats, error) {
	var st Stats
	err := s.store.View(ctx, func(v TransactionView) error {
		st = computeStats(v.ListGraveyards(), v.ListPlots(), v.ListGraves(), v.ListBurialRecords())
		return nil
	})
	return st, err
}

// GraveyardStats computes Stats for a single graveyard.
func (s *Service) GraveyardStats(ctx context.Context, graveyardID string) (Stats, error) {
	var st Stats
	err := s.store.View(ctx, func(v TransactionView) error {
		g, ok := v.FindGraveyard(graveyardID)
		if !ok {
			return domain.ErrNotFound{Entity: domain.EntityGraveyard, ID: graveyardID}
		}
		plotIDs := make(map[string]struct{})
		var plots []Plot
		for _, p := range v.ListPlots() {
			if p.GraveyardID == graveyardID {
				plots = append(plots, p)
				plotIDs[p.ID] = struct{}{}
			}
		}
		var graves []Grave
		for _, gr := range v.ListGraves() {
			if _, ok := plotIDs[gr.PlotID]; ok {
				graves = append(graves, gr)
			}
		}
		var records []BurialRecord
		for _, r := range v.ListBurialRecords() {
			if _, ok := plotIDs[r.PlotID]; ok {
				records = append(records, r)
			}
		}
		st = computeStats([]Graveyard{g}, plots, graves, records)
		return nil
	})
	return st, err
}

func computeStats(graveyards []Graveyard, plots []Plot, graves []Grave, records []BurialRecord) Stats {
	st := Stats{Graveyards: len(graveyards), Plots: len(plots), Graves: len(graves)}
	for _, g := range graves {
		if g.Status == domain.GraveAvailable {
			st.Available++
		} else {
			st.Unavailable++
		}
	}
	for _, r := range records {
		switch r.Status {
		case domain.RecordPending:
			st.PendingBurialRecords++
		case domain.RecordApproved:
			st.ApprovedBurialRecords++
		}
	}
	st.OccupancyRate = roundRatio(st.Unavailable*100, st.Graves)
	st.AvgGravesPerPlot = roundRatio(st.Graves, st.Plots)
	st.AvgPlotsPerGraveyard = roundRatio(st.Plots, st.Graveyards)
	return st
}

func roundRatio(num, den int) int {
	if den == 0 {
		return 0
	}
	return int(math.Round(float64(num) / float64(den)))
}
