// Package memory provides an in-memory implementation of the cemetery
// persistence store. Every transaction works on a cloned snapshot that is
// swapped in on commit, so cascades only ever read pre-mutation state.
package memory

import (
	"cemeterycore/pkg/domain"
	"context"
	"fmt"
	"sort"
	"sync"
	"time"

	"github.com/google/uuid"
)

// Compile-time contract assertions ensuring memory.Store adheres to the domain persistence interfaces.
var _ domain.PersistentStore = (*Store)(nil)

type (
	// Graveyard aliases domain.Graveyard for in-memory persistence operations.
	Graveyard = domain.Graveyard
	// Plot aliases domain.Plot.
	Plot = domain.Plot
	// Grave aliases domain.Grave.
	Grave = domain.Grave
	// BurialRecord aliases domain.BurialRecord.
	BurialRecord = domain.BurialRecord
	// Change aliases domain.Change captured in transactions.
	Change = domain.Change
	// Result aliases domain.Result summarizing rule evaluation.
	Result = domain.Result
	// RulesEngine aliases domain.RulesEngine used to evaluate rules.
	RulesEngine = domain.RulesEngine
	// Transaction aliases domain.Transaction representing a mutable unit of work.
	Transaction = domain.Transaction
	// TransactionView aliases domain.TransactionView providing read-only state.
	TransactionView = domain.TransactionView
)

type memoryState struct {
	graveyards map[string]Graveyard
	plots      map[string]Plot
	graves     map[string]Grave
	records    map[string]BurialRecord
}

// Snapshot captures a point-in-time clone of the store state.
type Snapshot struct {
	Graveyards map[string]Graveyard    `json:"graveyards"`
	Plots      map[string]Plot         `json:"plots"`
	Graves     map[string]Grave        `json:"graves"`
	Records    map[string]BurialRecord `json:"burial_records"`
}

func newMemoryState() memoryState {
	return memoryState{
		graveyards: make(map[string]Graveyard),
		plots:      make(map[string]Plot),
		graves:     make(map[string]Grave),
		records:    make(map[string]BurialRecord),
	}
}

func snapshotFromMemoryState(state memoryState) Snapshot {
	s := Snapshot{
		Graveyards: make(map[string]Graveyard, len(state.graveyards)),
		Plots:      make(map[string]Plot, len(state.plots)),
		Graves:     make(map[string]Grave, len(state.graves)),
		Records:    make(map[string]BurialRecord, len(state.records)),
	}
	for k, v := range state.graveyards {
		s.Graveyards[k] = v
	}
	for k, v := range state.plots {
		s.Plots[k] = v
	}
	for k, v := range state.graves {
		s.Graves[k] = cloneGrave(v)
	}
	for k, v := range state.records {
		s.Records[k] = cloneRecord(v)
	}
	return s
}

func memoryStateFromSnapshot(s Snapshot) memoryState {
	state := newMemoryState()
	for k, v := range s.Graveyards {
		state.graveyards[k] = v
	}
	for k, v := range s.Plots {
		state.plots[k] = v
	}
	for k, v := range s.Graves {
		state.graves[k] = cloneGrave(v)
	}
	for k, v := range s.Records {
		state.records[k] = cloneRecord(v)
	}
	return state
}

// migrateSnapshot normalizes snapshots written by older builds or by hand:
// missing buckets become empty, map keys win over embedded ids, stored plot
// counters are dropped because they are derived on read, and graves without
// a status are treated as available. The input maps are not modified.
func migrateSnapshot(in Snapshot) Snapshot {
	snapshot := snapshotFromMemoryState(memoryStateFromSnapshot(in))
	for id, g := range snapshot.Graveyards {
		g.ID = id
		g.TotalPlots = 0
		snapshot.Graveyards[id] = g
	}
	for id, p := range snapshot.Plots {
		p.ID = id
		if p.TotalGraves == 0 {
			p.TotalGraves = p.Capacity()
		}
		snapshot.Plots[id] = p
	}
	for id, g := range snapshot.Graves {
		g.ID = id
		if g.Status == "" {
			g.Status = domain.GraveAvailable
		}
		if g.Status == domain.GraveAvailable && g.ReservedBy != nil && *g.ReservedBy == "" {
			g.ReservedBy = nil
		}
		snapshot.Graves[id] = g
	}
	for id, r := range snapshot.Records {
		r.ID = id
		if r.Status == "" {
			r.Status = domain.RecordPending
		}
		snapshot.Records[id] = r
	}
	return snapshot
}

func (s memoryState) clone() memoryState {
	return memoryStateFromSnapshot(snapshotFromMemoryState(s))
}

func cloneGrave(g Grave) Grave {
	if g.ReservedBy != nil {
		holder := *g.ReservedBy
		g.ReservedBy = &holder
	}
	return g
}

func cloneRecord(r BurialRecord) BurialRecord {
	if r.ApprovedBy != nil {
		v := *r.ApprovedBy
		r.ApprovedBy = &v
	}
	if r.ApprovedAt != nil {
		v := *r.ApprovedAt
		r.ApprovedAt = &v
	}
	if r.Notes != nil {
		v := *r.Notes
		r.Notes = &v
	}
	return r
}

func graveyardPlotIDs(state *memoryState, graveyardID string) []string {
	var ids []string
	for id, p := range state.plots {
		if p.GraveyardID == graveyardID {
			ids = append(ids, id)
		}
	}
	sort.Strings(ids)
	return ids
}

func plotGraveIDs(state *memoryState, plotID string) []string {
	var ids []string
	for id, g := range state.graves {
		if g.PlotID == plotID {
			ids = append(ids, id)
		}
	}
	sort.Strings(ids)
	return ids
}

func decorateGraveyard(state *memoryState, g Graveyard) Graveyard {
	g.TotalPlots = len(graveyardPlotIDs(state, g.ID))
	return g
}

func sortGraveyards(out []Graveyard) {
	sort.Slice(out, func(i, j int) bool {
		if !out[i].CreatedAt.Equal(out[j].CreatedAt) {
			return out[i].CreatedAt.Before(out[j].CreatedAt)
		}
		return out[i].ID < out[j].ID
	})
}

func sortPlots(out []Plot) {
	sort.Slice(out, func(i, j int) bool {
		if !out[i].CreatedAt.Equal(out[j].CreatedAt) {
			return out[i].CreatedAt.Before(out[j].CreatedAt)
		}
		return out[i].ID < out[j].ID
	})
}

func sortGraves(out []Grave) {
	sort.Slice(out, func(i, j int) bool {
		if out[i].PlotID != out[j].PlotID {
			return out[i].PlotID < out[j].PlotID
		}
		return out[i].GraveNumber < out[j].GraveNumber
	})
}

// newest first, matching how records are prepended on entry
func sortRecords(out []BurialRecord) {
	sort.Slice(out, func(i, j int) bool {
		if !out[i].CreatedAt.Equal(out[j].CreatedAt) {
			return out[i].CreatedAt.After(out[j].CreatedAt)
		}
		return out[i].ID > out[j].ID
	})
}

// Store provides an in-memory transactional store for the cemetery domain.
type Store struct {
	mu     sync.RWMutex
	state  memoryState
	engine *RulesEngine
	nowFn  func() time.Time
}

// NewStore constructs an in-memory store backed by the provided rules engine.
func NewStore(engine *RulesEngine) *Store {
	if engine == nil {
		engine = domain.NewRulesEngine()
	}
	return &Store{
		state:  newMemoryState(),
		engine: engine,
		nowFn:  func() time.Time { return time.Now().UTC() },
	}
}

func (s *Store) newID() string {
	return uuid.NewString()
}

// ExportState clones the current store state for external persistence.
func (s *Store) ExportState() Snapshot {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return snapshotFromMemoryState(s.state)
}

// ImportState replaces the store state with the provided snapshot.
func (s *Store) ImportState(snapshot Snapshot) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.state = memoryStateFromSnapshot(migrateSnapshot(snapshot))
}

// RulesEngine exposes the currently configured engine.
func (s *Store) RulesEngine() *RulesEngine {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.engine
}

// NowFunc returns the time provider used by the in-memory store.
func (s *Store) NowFunc() func() time.Time {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.nowFn
}

// SetNowFunc replaces the time provider. A nil fn restores the UTC wall clock.
func (s *Store) SetNowFunc(fn func() time.Time) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if fn == nil {
		fn = func() time.Time { return time.Now().UTC() }
	}
	s.nowFn = fn
}

type transaction struct {
	store   *Store
	state   memoryState
	changes []Change
	now     time.Time
}

type transactionView struct {
	state *memoryState
}

func newTransactionView(state *memoryState) TransactionView {
	return transactionView{state: state}
}

// ListGraveyards returns all graveyards with derived plot counts, oldest first.
func (v transactionView) ListGraveyards() []Graveyard {
	out := make([]Graveyard, 0, len(v.state.graveyards))
	for _, g := range v.state.graveyards {
		out = append(out, decorateGraveyard(v.state, g))
	}
	sortGraveyards(out)
	return out
}

// ListPlots returns all plots, oldest first.
func (v transactionView) ListPlots() []Plot {
	out := make([]Plot, 0, len(v.state.plots))
	for _, p := range v.state.plots {
		out = append(out, p)
	}
	sortPlots(out)
	return out
}

// ListGraves returns all graves ordered by plot then grave number.
func (v transactionView) ListGraves() []Grave {
	out := make([]Grave, 0, len(v.state.graves))
	for _, g := range v.state.graves {
		out = append(out, cloneGrave(g))
	}
	sortGraves(out)
	return out
}

// ListBurialRecords returns all burial records, newest first.
func (v transactionView) ListBurialRecords() []BurialRecord {
	out := make([]BurialRecord, 0, len(v.state.records))
	for _, r := range v.state.records {
		out = append(out, cloneRecord(r))
	}
	sortRecords(out)
	return out
}

func (v transactionView) FindGraveyard(id string) (Graveyard, bool) {
	g, ok := v.state.graveyards[id]
	if !ok {
		return Graveyard{}, false
	}
	return decorateGraveyard(v.state, g), true
}

func (v transactionView) FindPlot(id string) (Plot, bool) {
	p, ok := v.state.plots[id]
	return p, ok
}

func (v transactionView) FindGrave(id string) (Grave, bool) {
	g, ok := v.state.graves[id]
	if !ok {
		return Grave{}, false
	}
	return cloneGrave(g), true
}

func (v transactionView) FindBurialRecord(id string) (BurialRecord, bool) {
	r, ok := v.state.records[id]
	if !ok {
		return BurialRecord{}, false
	}
	return cloneRecord(r), true
}

// RunInTransaction executes fn within a transactional copy of the store state.
func (s *Store) RunInTransaction(ctx context.Context, fn func(tx Transaction) error) (Result, error) {
	if err := ctx.Err(); err != nil {
		return Result{}, err
	}
	s.mu.Lock()
	defer s.mu.Unlock()

	tx := &transaction{
		store: s,
		state: s.state.clone(),
		now:   s.nowFn(),
	}

	if err := fn(tx); err != nil {
		return Result{}, err
	}

	var result Result
	if s.engine != nil {
		view := newTransactionView(&tx.state)
		res, err := s.engine.Evaluate(ctx, view, tx.changes)
		if err != nil {
			return Result{}, err
		}
		result = res
		if res.HasBlocking() {
			return res, domain.RuleViolationError{Result: res}
		}
	}

	s.state = tx.state
	return result, nil
}

// View executes fn against a read-only snapshot of the store state.
func (s *Store) View(_ context.Context, fn func(TransactionView) error) error {
	s.mu.RLock()
	defer s.mu.RUnlock()

	snapshot := s.state.clone()
	view := newTransactionView(&snapshot)
	return fn(view)
}

func (tx *transaction) recordChange(change Change) {
	tx.changes = append(tx.changes, change)
}

// Snapshot returns a read-only view over the transactional state.
func (tx *transaction) Snapshot() TransactionView {
	return newTransactionView(&tx.state)
}

func (tx *transaction) FindGraveyard(id string) (Graveyard, bool) {
	return transactionView{state: &tx.state}.FindGraveyard(id)
}

func (tx *transaction) FindPlot(id string) (Plot, bool) {
	return transactionView{state: &tx.state}.FindPlot(id)
}

func (tx *transaction) FindGrave(id string) (Grave, bool) {
	return transactionView{state: &tx.state}.FindGrave(id)
}

func (tx *transaction) FindBurialRecord(id string) (BurialRecord, bool) {
	return transactionView{state: &tx.state}.FindBurialRecord(id)
}

// CreateGraveyard stores a new graveyard with no plots.
func (tx *transaction) CreateGraveyard(g Graveyard) (Graveyard, error) {
	if g.ID == "" {
		g.ID = tx.store.newID()
	}
	if _, exists := tx.state.graveyards[g.ID]; exists {
		return Graveyard{}, fmt.Errorf("graveyard %q already exists", g.ID)
	}
	g.CreatedAt = tx.now
	g.UpdatedAt = tx.now
	g.TotalPlots = 0
	tx.state.graveyards[g.ID] = g
	created := decorateGraveyard(&tx.state, g)
	tx.recordChange(Change{Entity: domain.EntityGraveyard, Action: domain.ActionCreate, After: created})
	return created, nil
}

// UpdateGraveyard mutates an existing graveyard. Identity and the derived
// plot count are not writable.
func (tx *transaction) UpdateGraveyard(id string, mutator func(*Graveyard) error) (Graveyard, error) {
	current, ok := tx.state.graveyards[id]
	if !ok {
		return Graveyard{}, domain.ErrNotFound{Entity: domain.EntityGraveyard, ID: id}
	}
	before := decorateGraveyard(&tx.state, current)
	if err := mutator(&current); err != nil {
		return Graveyard{}, err
	}
	current.ID = id
	current.CreatedAt = before.CreatedAt
	current.UpdatedAt = tx.now
	current.TotalPlots = 0
	tx.state.graveyards[id] = current
	after := decorateGraveyard(&tx.state, current)
	tx.recordChange(Change{Entity: domain.EntityGraveyard, Action: domain.ActionUpdate, Before: before, After: after})
	return after, nil
}

// DeleteGraveyard removes a graveyard together with its plots and their graves.
func (tx *transaction) DeleteGraveyard(id string) error {
	current, ok := tx.state.graveyards[id]
	if !ok {
		return domain.ErrNotFound{Entity: domain.EntityGraveyard, ID: id}
	}
	before := decorateGraveyard(&tx.state, current)
	for _, plotID := range graveyardPlotIDs(&tx.state, id) {
		tx.removePlot(plotID)
	}
	delete(tx.state.graveyards, id)
	tx.recordChange(Change{Entity: domain.EntityGraveyard, Action: domain.ActionDelete, Before: before})
	return nil
}

// CreatePlot stores a plot and generates its rows*columns graves, all available.
func (tx *transaction) CreatePlot(p Plot) (Plot, error) {
	if _, ok := tx.state.graveyards[p.GraveyardID]; !ok {
		return Plot{}, domain.ErrNotFound{Entity: domain.EntityGraveyard, ID: p.GraveyardID}
	}
	if p.Rows <= 0 || p.Columns <= 0 {
		return Plot{}, fmt.Errorf("plot rows and columns must be positive, got %dx%d", p.Rows, p.Columns)
	}
	if p.Rows > domain.MaxPlotSide || p.Columns > domain.MaxPlotSide {
		return Plot{}, fmt.Errorf("plot rows and columns must be at most %d, got %dx%d", domain.MaxPlotSide, p.Rows, p.Columns)
	}
	if p.ID == "" {
		p.ID = tx.store.newID()
	}
	if _, exists := tx.state.plots[p.ID]; exists {
		return Plot{}, fmt.Errorf("plot %q already exists", p.ID)
	}
	p.CreatedAt = tx.now
	p.UpdatedAt = tx.now
	p.TotalGraves = p.Capacity()
	for n := 1; n <= p.TotalGraves; n++ {
		if _, exists := tx.state.graves[domain.GraveID(p.ID, n)]; exists {
			return Plot{}, fmt.Errorf("grave %q already exists", domain.GraveID(p.ID, n))
		}
	}
	tx.state.plots[p.ID] = p
	tx.recordChange(Change{Entity: domain.EntityPlot, Action: domain.ActionCreate, After: p})
	for n := 1; n <= p.TotalGraves; n++ {
		g := Grave{
			Base:        domain.Base{ID: domain.GraveID(p.ID, n), CreatedAt: tx.now, UpdatedAt: tx.now},
			PlotID:      p.ID,
			GraveNumber: n,
			Status:      domain.GraveAvailable,
		}
		tx.state.graves[g.ID] = g
		tx.recordChange(Change{Entity: domain.EntityGrave, Action: domain.ActionCreate, After: g})
	}
	return p, nil
}

// UpdatePlot merges label changes into a plot. Changing the owning graveyard
// or the grid shape is rejected with domain.ErrPlotResize.
func (tx *transaction) UpdatePlot(id string, mutator func(*Plot) error) (Plot, error) {
	current, ok := tx.state.plots[id]
	if !ok {
		return Plot{}, domain.ErrNotFound{Entity: domain.EntityPlot, ID: id}
	}
	before := current
	if err := mutator(&current); err != nil {
		return Plot{}, err
	}
	if current.GraveyardID != before.GraveyardID || current.Rows != before.Rows || current.Columns != before.Columns {
		return Plot{}, domain.ErrPlotResize
	}
	current.ID = id
	current.CreatedAt = before.CreatedAt
	current.TotalGraves = before.TotalGraves
	current.UpdatedAt = tx.now
	tx.state.plots[id] = current
	tx.recordChange(Change{Entity: domain.EntityPlot, Action: domain.ActionUpdate, Before: before, After: current})
	return current, nil
}

// DeletePlot removes a plot and all of its graves.
func (tx *transaction) DeletePlot(id string) error {
	if _, ok := tx.state.plots[id]; !ok {
		return domain.ErrNotFound{Entity: domain.EntityPlot, ID: id}
	}
	tx.removePlot(id)
	return nil
}

func (tx *transaction) removePlot(id string) {
	for _, graveID := range plotGraveIDs(&tx.state, id) {
		g := tx.state.graves[graveID]
		delete(tx.state.graves, graveID)
		tx.recordChange(Change{Entity: domain.EntityGrave, Action: domain.ActionDelete, Before: g})
	}
	p := tx.state.plots[id]
	delete(tx.state.plots, id)
	tx.recordChange(Change{Entity: domain.EntityPlot, Action: domain.ActionDelete, Before: p})
}

// UpdateGrave applies a status or holder change to a single grave.
func (tx *transaction) UpdateGrave(id string, mutator func(*Grave) error) (Grave, error) {
	current, ok := tx.state.graves[id]
	if !ok {
		return Grave{}, domain.ErrNotFound{Entity: domain.EntityGrave, ID: id}
	}
	return tx.applyGrave(current, mutator)
}

// BulkUpdateGraves applies mutator to every listed grave. Unknown ids are
// skipped; the returned count covers graves actually updated.
func (tx *transaction) BulkUpdateGraves(ids []string, mutator func(*Grave) error) (int, error) {
	seen := make(map[string]struct{}, len(ids))
	updated := 0
	for _, id := range ids {
		if _, dup := seen[id]; dup {
			continue
		}
		seen[id] = struct{}{}
		current, ok := tx.state.graves[id]
		if !ok {
			continue
		}
		if _, err := tx.applyGrave(current, mutator); err != nil {
			return 0, err
		}
		updated++
	}
	return updated, nil
}

func (tx *transaction) applyGrave(current Grave, mutator func(*Grave) error) (Grave, error) {
	before := cloneGrave(current)
	if err := mutator(&current); err != nil {
		return Grave{}, err
	}
	if !current.Status.Valid() {
		return Grave{}, fmt.Errorf("grave %q: invalid status %q", before.ID, current.Status)
	}
	current.ID = before.ID
	current.PlotID = before.PlotID
	current.GraveNumber = before.GraveNumber
	current.CreatedAt = before.CreatedAt
	current.UpdatedAt = tx.now
	current = cloneGrave(current)
	tx.state.graves[current.ID] = current
	tx.recordChange(Change{Entity: domain.EntityGrave, Action: domain.ActionUpdate, Before: before, After: cloneGrave(current)})
	return cloneGrave(current), nil
}

// CreateBurialRecord stores a new record. Records always enter the workflow
// as pending, whatever status the caller supplied.
func (tx *transaction) CreateBurialRecord(r BurialRecord) (BurialRecord, error) {
	if r.ID == "" {
		r.ID = tx.store.newID()
	}
	if _, exists := tx.state.records[r.ID]; exists {
		return BurialRecord{}, fmt.Errorf("burial record %q already exists", r.ID)
	}
	r.CreatedAt = tx.now
	r.UpdatedAt = tx.now
	r.Status = domain.RecordPending
	r.ApprovedBy = nil
	r.ApprovedAt = nil
	r.Notes = nil
	r = cloneRecord(r)
	tx.state.records[r.ID] = r
	tx.recordChange(Change{Entity: domain.EntityBurialRecord, Action: domain.ActionCreate, After: cloneRecord(r)})
	return cloneRecord(r), nil
}

// UpdateBurialRecord mutates an existing burial record.
func (tx *transaction) UpdateBurialRecord(id string, mutator func(*BurialRecord) error) (BurialRecord, error) {
	current, ok := tx.state.records[id]
	if !ok {
		return BurialRecord{}, domain.ErrNotFound{Entity: domain.EntityBurialRecord, ID: id}
	}
	before := cloneRecord(current)
	if err := mutator(&current); err != nil {
		return BurialRecord{}, err
	}
	if !current.Status.Valid() {
		return BurialRecord{}, fmt.Errorf("burial record %q: invalid status %q", id, current.Status)
	}
	current.ID = id
	current.CreatedAt = before.CreatedAt
	current.UpdatedAt = tx.now
	current = cloneRecord(current)
	tx.state.records[id] = current
	tx.recordChange(Change{Entity: domain.EntityBurialRecord, Action: domain.ActionUpdate, Before: before, After: cloneRecord(current)})
	return cloneRecord(current), nil
}

// DeleteBurialRecord removes a record. The referenced grave is left untouched.
func (tx *transaction) DeleteBurialRecord(id string) error {
	current, ok := tx.state.records[id]
	if !ok {
		return domain.ErrNotFound{Entity: domain.EntityBurialRecord, ID: id}
	}
	delete(tx.state.records, id)
	tx.recordChange(Change{Entity: domain.EntityBurialRecord, Action: domain.ActionDelete, Before: cloneRecord(current)})
	return nil
}

// Read helpers ---------------------------------------------------------------

func (s *Store) committedView() transactionView {
	return transactionView{state: &s.state}
}

// GetGraveyard retrieves a graveyard by ID from committed state.
func (s *Store) GetGraveyard(id string) (Graveyard, bool) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.committedView().FindGraveyard(id)
}

// ListGraveyards returns all graveyards from committed state.
func (s *Store) ListGraveyards() []Graveyard {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.committedView().ListGraveyards()
}

// GetPlot retrieves a plot by ID.
func (s *Store) GetPlot(id string) (Plot, bool) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.committedView().FindPlot(id)
}

// ListPlots returns all plots from committed state.
func (s *Store) ListPlots() []Plot {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.committedView().ListPlots()
}

// GetGrave retrieves a grave by ID.
func (s *Store) GetGrave(id string) (Grave, bool) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.committedView().FindGrave(id)
}

// ListGraves returns all graves from committed state.
func (s *Store) ListGraves() []Grave {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.committedView().ListGraves()
}

// GetBurialRecord retrieves a burial record by ID.
func (s *Store) GetBurialRecord(id string) (BurialRecord, bool) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.committedView().FindBurialRecord(id)
}

// ListBurialRecords returns all burial records, newest first.
func (s *Store) ListBurialRecords() []BurialRecord {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.committedView().ListBurialRecords()
}
