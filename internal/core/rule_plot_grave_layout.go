package core

import (
	"cemeterycore/pkg/domain"
	"context"
	"fmt"
)

// NewPlotGraveLayoutRule blocks commits that leave a plot without exactly
// graves 1..total_graves.
func NewPlotGraveLayoutRule() domain.Rule {
	return plotGraveLayoutRule{}
}

type plotGraveLayoutRule struct{}

func (plotGraveLayoutRule) Name() string { return "plot_grave_layout" }

func (r plotGraveLayoutRule) Evaluate(_ context.Context, view domain.RuleView, _ []domain.Change) (domain.Result, error) {
	numbers := make(map[string]map[int]int)
	for _, g := range view.ListGraves() {
		if numbers[g.PlotID] == nil {
			numbers[g.PlotID] = make(map[int]int)
		}
		numbers[g.PlotID][g.GraveNumber]++
	}

	res := domain.Result{}
	for _, plot := range view.ListPlots() {
		got := numbers[plot.ID]
		if msg := layoutProblem(plot, got); msg != "" {
			res.Violations = append(res.Violations, domain.Violation{
				Rule:     r.Name(),
				Severity: domain.SeverityBlock,
				Message:  fmt.Sprintf("plot %s (%s): %s", plot.PlotNumber, plot.ID, msg),
				Entity:   domain.EntityPlot,
				EntityID: plot.ID,
			})
		}
	}
	for plotID := range numbers {
		if _, ok := view.FindPlot(plotID); !ok {
			res.Violations = append(res.Violations, domain.Violation{
				Rule:     r.Name(),
				Severity: domain.SeverityBlock,
				Message:  fmt.Sprintf("graves reference missing plot %s", plotID),
				Entity:   domain.EntityGrave,
				EntityID: plotID,
			})
		}
	}
	return res, nil
}

func layoutProblem(plot domain.Plot, numbers map[int]int) string {
	if plot.TotalGraves != plot.Capacity() {
		return fmt.Sprintf("total graves %d does not match %dx%d", plot.TotalGraves, plot.Rows, plot.Columns)
	}
	total := 0
	for n, count := range numbers {
		if n < 1 || n > plot.TotalGraves {
			return fmt.Sprintf("grave number %d outside 1..%d", n, plot.TotalGraves)
		}
		if count > 1 {
			return fmt.Sprintf("grave number %d used %d times", n, count)
		}
		total += count
	}
	if total != plot.TotalGraves {
		return fmt.Sprintf("has %d graves, expected %d", total, plot.TotalGraves)
	}
	return ""
}
