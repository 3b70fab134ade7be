package domain

import "context"

// Transaction exposes the domain operations that a persistence implementation
// must support within an atomic scope.
type Transaction interface {
	Snapshot() TransactionView
	CreateGraveyard(Graveyard) (Graveyard, error)
	UpdateGraveyard(id string, mutator func(*Graveyard) error) (Graveyard, error)
	DeleteGraveyard(id string) error
	CreatePlot(Plot) (Plot, error)
	UpdatePlot(id string, mutator func(*Plot) error) (Plot, error)
	DeletePlot(id string) error
	UpdateGrave(id string, mutator func(*Grave) error) (Grave, error)
	BulkUpdateGraves(ids []string, mutator func(*Grave) error) (int, error)
	CreateBurialRecord(BurialRecord) (BurialRecord, error)
	UpdateBurialRecord(id string, mutator func(*BurialRecord) error) (BurialRecord, error)
	DeleteBurialRecord(id string) error
	FindGraveyard(id string) (Graveyard, bool)
	FindPlot(id string) (Plot, bool)
	FindGrave(id string) (Grave, bool)
	FindBurialRecord(id string) (BurialRecord, bool)
}

// TransactionView provides read-only access to snapshot data.
type TransactionView interface {
	RuleView
}

// PersistentStore is a minimal abstraction over durable backends. It mirrors
// the subset of store capabilities used directly by higher layers.
type PersistentStore interface {
	RunInTransaction(ctx context.Context, fn func(Transaction) error) (Result, error)
	View(ctx context.Context, fn func(TransactionView) error) error
	GetGraveyard(id string) (Graveyard, bool)
	ListGraveyards() []Graveyard
	GetPlot(id string) (Plot, bool)
	ListPlots() []Plot
	GetGrave(id string) (Grave, bool)
	ListGraves() []Grave
	GetBurialRecord(id string) (BurialRecord, bool)
	ListBurialRecords() []BurialRecord
}
