package core

import (
	"cemeterycore/pkg/domain"
	"context"
	"errors"
	"strings"
	"testing"
)

type stubView struct {
	graveyards []Graveyard
	plots      []Plot
	graves     []Grave
	records    []BurialRecord
}

func (v stubView) ListGraveyards() []Graveyard       { return v.graveyards }
func (v stubView) ListPlots() []Plot                 { return v.plots }
func (v stubView) ListGraves() []Grave               { return v.graves }
func (v stubView) ListBurialRecords() []BurialRecord { return v.records }

func (v stubView) FindGraveyard(id string) (Graveyard, bool) {
	for _, g := range v.graveyards {
		if g.ID == id {
			return g, true
		}
	}
	return Graveyard{}, false
}

func (v stubView) FindPlot(id string) (Plot, bool) {
	for _, p := range v.plots {
		if p.ID == id {
			return p, true
		}
	}
	return Plot{}, false
}

func (v stubView) FindGrave(id string) (Grave, bool) {
	for _, g := range v.graves {
		if g.ID == id {
			return g, true
		}
	}
	return Grave{}, false
}

func (v stubView) FindBurialRecord(id string) (BurialRecord, bool) {
	for _, r := range v.records {
		if r.ID == id {
			return r, true
		}
	}
	return BurialRecord{}, false
}

func layoutPlot(id string, rows, cols int) Plot {
	return Plot{Base: Base{ID: id}, PlotNumber: id, Rows: rows, Columns: cols, TotalGraves: rows * cols}
}

func layoutGraves(plotID string, numbers ...int) []Grave {
	out := make([]Grave, 0, len(numbers))
	for _, n := range numbers {
		out = append(out, Grave{Base: Base{ID: domain.GraveID(plotID, n)}, PlotID: plotID, GraveNumber: n, Status: domain.GraveAvailable})
	}
	return out
}

func TestPlotGraveLayoutRule(t *testing.T) {
	rule := NewPlotGraveLayoutRule()
	if rule.Name() != "plot_grave_layout" {
		t.Fatalf("unexpected name %s", rule.Name())
	}
	skewed := layoutPlot("p", 2, 2)
	skewed.TotalGraves = 5
	cases := []struct {
		name    string
		view    stubView
		problem string
	}{
		{name: "complete", view: stubView{plots: []Plot{layoutPlot("p", 2, 2)}, graves: layoutGraves("p", 1, 2, 3, 4)}},
		{name: "missing grave", view: stubView{plots: []Plot{layoutPlot("p", 2, 2)}, graves: layoutGraves("p", 1, 2, 3)}, problem: "has 3 graves"},
		{name: "out of range", view: stubView{plots: []Plot{layoutPlot("p", 1, 2)}, graves: layoutGraves("p", 1, 3)}, problem: "outside 1..2"},
		{name: "duplicate", view: stubView{plots: []Plot{layoutPlot("p", 1, 2)}, graves: layoutGraves("p", 1, 1)}, problem: "used 2 times"},
		{name: "bad total", view: stubView{plots: []Plot{skewed}, graves: layoutGraves("p", 1, 2, 3, 4)}, problem: "does not match"},
		{name: "orphan graves", view: stubView{graves: layoutGraves("gone", 1)}, problem: "missing plot gone"},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			res, err := rule.Evaluate(context.Background(), tc.view, nil)
			if err != nil {
				t.Fatalf("evaluate: %v", err)
			}
			if tc.problem == "" {
				if len(res.Violations) != 0 {
					t.Fatalf("expected no violations, got %+v", res.Violations)
				}
				return
			}
			if !res.HasBlocking() || !strings.Contains(res.Violations[0].Message, tc.problem) {
				t.Fatalf("expected blocking violation containing %q, got %+v", tc.problem, res.Violations)
			}
		})
	}
}

func TestReservationHolderRuleWarnsOnAvailableHolder(t *testing.T) {
	holder := "Stale Holder"
	grave := layoutGraves("p", 1)[0]
	grave.ReservedBy = &holder
	view := stubView{plots: []Plot{layoutPlot("p", 1, 1)}, graves: []Grave{grave}}
	changes := []Change{{Entity: domain.EntityGrave, Action: ActionUpdate, After: grave}}

	res, err := NewReservationHolderRule().Evaluate(context.Background(), view, changes)
	if err != nil {
		t.Fatalf("evaluate: %v", err)
	}
	if len(res.Violations) != 1 || res.Violations[0].Severity != SeverityWarn || res.HasBlocking() {
		t.Fatalf("expected a single warning, got %+v", res.Violations)
	}
	if res, _ := NewReservationHolderRule().Evaluate(context.Background(), view, nil); len(res.Violations) != 0 {
		t.Fatalf("expected untouched graves to be ignored, got %+v", res.Violations)
	}
}

func TestServiceSurfacesReservationWarning(t *testing.T) {
	ctx := context.Background()
	log := &captureLogger{}
	svc := newTestService(t, WithLogger(log))
	g := mustGraveyard(t, svc, "North")
	plot := mustPlot(t, svc, g.ID, "A1", 1, 1)

	grave, res, err := svc.UpdateGrave(ctx, domain.GraveID(plot.ID, 1), func(gr *Grave) error {
		holder := "Ghost"
		gr.ReservedBy = &holder
		return nil
	})
	if err != nil {
		t.Fatalf("expected warning not to block, got %v", err)
	}
	if grave.Holder() != "Ghost" || len(res.Violations) != 1 || res.Violations[0].Rule != "reservation_holder" {
		t.Fatalf("unexpected result %+v %+v", grave, res)
	}
	if !log.has("w:rule violation") {
		t.Fatalf("expected warning logged, got %v", log.calls)
	}
}

func TestBurialGraveReferenceRuleOnPlotDelete(t *testing.T) {
	ctx := context.Background()
	log := &captureLogger{}
	svc := newTestService(t, WithLogger(log))
	g := mustGraveyard(t, svc, "North")
	plot := mustPlot(t, svc, g.ID, "A1", 1, 2)
	if _, res, err := svc.AddBurialRecord(ctx, validRecordInput(plot.ID, 2)); err != nil || len(res.Violations) != 0 {
		t.Fatalf("expected clean record, res=%+v err=%v", res, err)
	}
	res, err := svc.DeletePlot(ctx, plot.ID)
	if err != nil {
		t.Fatalf("delete plot: %v", err)
	}
	if len(res.Violations) != 1 || res.Violations[0].Severity != SeverityLog || res.Violations[0].Entity != domain.EntityBurialRecord {
		t.Fatalf("expected dangling reference log, got %+v", res.Violations)
	}
	if !log.has("i:rule violation") {
		t.Fatalf("expected info log for log-level violation, got %v", log.calls)
	}
	if records, _ := svc.ListBurialRecords(ctx, RecordFilter{}); len(records) != 1 {
		t.Fatalf("expected record to survive plot deletion, got %d", len(records))
	}
}

func TestDanglingReferenceGraveFromOtherPlot(t *testing.T) {
	view := stubView{
		plots:  []Plot{layoutPlot("a", 1, 1), layoutPlot("b", 1, 1)},
		graves: append(layoutGraves("a", 1), layoutGraves("b", 1)...),
	}
	rec := BurialRecord{Base: Base{ID: "r"}, PlotID: "a", GraveID: domain.GraveID("b", 1)}
	if msg := danglingReference(view, rec); !strings.Contains(msg, "belongs to plot b") {
		t.Fatalf("unexpected message %q", msg)
	}
	rec.GraveID = domain.GraveID("a", 9)
	if msg := danglingReference(view, rec); !strings.Contains(msg, "does not exist") {
		t.Fatalf("unexpected message %q", msg)
	}
}

type failingRule struct{}

func (failingRule) Name() string { return "failing" }

func (failingRule) Evaluate(context.Context, domain.RuleView, []domain.Change) (domain.Result, error) {
	return domain.Result{}, errors.New("rule exploded")
}

func TestDefaultRulesEngineAndRuleErrors(t *testing.T) {
	names := make([]string, 0, 3)
	for _, r := range NewDefaultRulesEngine().Rules() {
		names = append(names, r.Name())
	}
	if strings.Join(names, ",") != "plot_grave_layout,reservation_holder,burial_grave_reference" {
		t.Fatalf("unexpected default rules %v", names)
	}

	engine := NewDefaultRulesEngine()
	engine.Register(failingRule{})
	svc := NewInMemoryService(engine)
	if _, _, err := svc.AddGraveyard(context.Background(), GraveyardInput{Name: "North", Location: "Road"}); err == nil || !strings.Contains(err.Error(), "rule exploded") {
		t.Fatalf("expected rule error to abort, got %v", err)
	}
	if graveyards, _ := svc.ListGraveyards(context.Background()); len(graveyards) != 0 {
		t.Fatalf("expected no graveyard committed, got %d", len(graveyards))
	}
}
