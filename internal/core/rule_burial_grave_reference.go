package core

import (
	"cemeterycore/pkg/domain"
	"context"
	"fmt"
)

// NewBurialGraveReferenceRule logs burial records whose plot or grave does
// not exist. References stay unchecked, so the rule never blocks.
func NewBurialGraveReferenceRule() domain.Rule {
	return burialGraveReferenceRule{}
}

type burialGraveReferenceRule struct{}

func (burialGraveReferenceRule) Name() string { return "burial_grave_reference" }

func (r burialGraveReferenceRule) Evaluate(_ context.Context, view domain.RuleView, changes []domain.Change) (domain.Result, error) {
	candidates := make(map[string]struct{})
	deletedPlots := make(map[string]struct{})
	for _, change := range changes {
		switch change.Entity {
		case domain.EntityBurialRecord:
			if rec, ok := change.After.(domain.BurialRecord); ok {
				candidates[rec.ID] = struct{}{}
			}
		case domain.EntityPlot:
			if change.Action != domain.ActionDelete {
				continue
			}
			if p, ok := change.Before.(domain.Plot); ok {
				deletedPlots[p.ID] = struct{}{}
			}
		}
	}
	if len(candidates) == 0 && len(deletedPlots) == 0 {
		return domain.Result{}, nil
	}

	res := domain.Result{}
	for _, rec := range view.ListBurialRecords() {
		_, changed := candidates[rec.ID]
		_, orphaned := deletedPlots[rec.PlotID]
		if !changed && !orphaned {
			continue
		}
		if msg := danglingReference(view, rec); msg != "" {
			res.Violations = append(res.Violations, domain.Violation{
				Rule:     r.Name(),
				Severity: domain.SeverityLog,
				Message:  fmt.Sprintf("burial record %s (%s): %s", rec.Name, rec.ID, msg),
				Entity:   domain.EntityBurialRecord,
				EntityID: rec.ID,
			})
		}
	}
	return res, nil
}

func danglingReference(view domain.RuleView, rec domain.BurialRecord) string {
	if _, ok := view.FindPlot(rec.PlotID); !ok {
		return fmt.Sprintf("plot %s does not exist", rec.PlotID)
	}
	grave, ok := view.FindGrave(rec.GraveID)
	if !ok {
		return fmt.Sprintf("grave %s does not exist", rec.GraveID)
	}
	if grave.PlotID != rec.PlotID {
		return fmt.Sprintf("grave %s belongs to plot %s", rec.GraveID, grave.PlotID)
	}
	return ""
}
