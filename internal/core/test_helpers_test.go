package core

import (
	"cemeterycore/pkg/domain"
	"context"
	"sync"
	"testing"
	"time"
)

type tickingClock struct {
	mu sync.Mutex
	t  time.Time
}

func newTickingClock() *tickingClock {
	return &tickingClock{t: time.Date(2024, 10, 1, 9, 0, 0, 0, time.UTC)}
}

func (c *tickingClock) Now() time.Time {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.t = c.t.Add(time.Minute)
	return c.t
}

type captureLogger struct {
	mu    sync.Mutex
	calls []string
}

func (c *captureLogger) record(prefix, msg string) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.calls = append(c.calls, prefix+msg)
}

func (c *captureLogger) Debug(msg string, _ ...any) { c.record("d:", msg) }
func (c *captureLogger) Info(msg string, _ ...any)  { c.record("i:", msg) }
func (c *captureLogger) Warn(msg string, _ ...any)  { c.record("w:", msg) }
func (c *captureLogger) Error(msg string, _ ...any) { c.record("e:", msg) }

func (c *captureLogger) has(call string) bool {
	c.mu.Lock()
	defer c.mu.Unlock()
	for _, got := range c.calls {
		if got == call {
			return true
		}
	}
	return false
}

func newTestService(t *testing.T, opts ...Option) *Service {
	t.Helper()
	opts = append([]Option{WithClock(newTickingClock())}, opts...)
	return NewInMemoryService(nil, opts...)
}

func mustGraveyard(t *testing.T, svc *Service, name string) Graveyard {
	t.Helper()
	g, _, err := svc.AddGraveyard(context.Background(), GraveyardInput{Name: name, Location: name + " Road"})
	if err != nil {
		t.Fatalf("add graveyard %s: %v", name, err)
	}
	return g
}

func mustPlot(t *testing.T, svc *Service, graveyardID, number string, rows, cols int) Plot {
	t.Helper()
	p, _, err := svc.AddPlot(context.Background(), PlotInput{GraveyardID: graveyardID, PlotNumber: number, Rows: rows, Columns: cols})
	if err != nil {
		t.Fatalf("add plot %s: %v", number, err)
	}
	return p
}

func validRecordInput(plotID string, grave int) BurialRecordInput {
	return BurialRecordInput{
		Name:        "John Smith",
		FatherName:  "Thomas Smith",
		DateOfDeath: "2024-10-15",
		Gender:      "male",
		Age:         78,
		Religion:    "Christianity",
		PlotID:      plotID,
		GraveID:     domain.GraveID(plotID, grave),
	}
}
