// Package ledger keeps the payment collection, derives revenue aggregates from
// it, and snapshots the whole collection to a keyed store after every change.
package ledger

import (
	"cemeterycore/internal/localstore"
	"cemeterycore/pkg/domain"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"sync"
	"time"

	"github.com/google/uuid"
)

// StorageKey is the snapshot key holding the serialized payment array.
const StorageKey = "graveyard_payments"

// Payment aliases the domain entity managed by the ledger.
type Payment = domain.Payment

// Logger is the structured logging surface the ledger writes to.
type Logger interface {
	Debug(msg string, args ...any)
	Info(msg string, args ...any)
	Warn(msg string, args ...any)
	Error(msg string, args ...any)
}

type noopLogger struct{}

func (noopLogger) Debug(string, ...any) {}
func (noopLogger) Info(string, ...any)  {}
func (noopLogger) Warn(string, ...any)  {}
func (noopLogger) Error(string, ...any) {}

// Option customises a Ledger.
type Option func(*Ledger)

// WithClock overrides the time source for created_at and updated_at.
func WithClock(now func() time.Time) Option {
	return func(l *Ledger) {
		if now != nil {
			l.now = now
		}
	}
}

// WithLogger sets the ledger logger.
func WithLogger(logger Logger) Option {
	return func(l *Ledger) {
		if logger != nil {
			l.logger = logger
		}
	}
}

// WithIDGenerator overrides payment id generation.
func WithIDGenerator(fn func() string) Option {
	return func(l *Ledger) {
		if fn != nil {
			l.newID = fn
		}
	}
}

// Ledger owns the payment collection. Payments are kept newest first.
type Ledger struct {
	mu       sync.RWMutex
	store    localstore.Store
	payments []Payment
	now      func() time.Time
	newID    func() string
	logger   Logger
}

// Open loads the payment snapshot from store. When no snapshot exists the
// sample payments are written and used instead. An unreadable snapshot is
// logged and leaves the ledger empty until the next mutation overwrites it.
func Open(ctx context.Context, store localstore.Store, opts ...Option) (*Ledger, error) {
	if store == nil {
		return nil, errors.New("ledger: nil store")
	}
	l := &Ledger{
		store:  store,
		now:    func() time.Time { return time.Now().UTC() },
		newID:  uuid.NewString,
		logger: noopLogger{},
	}
	for _, opt := range opts {
		opt(l)
	}
	data, ok, err := store.Load(ctx, StorageKey)
	if err != nil {
		return nil, fmt.Errorf("load payments: %w", err)
	}
	if !ok {
		seed := samplePayments()
		if err := l.save(ctx, seed); err != nil {
			return nil, fmt.Errorf("seed payments: %w", err)
		}
		l.payments = seed
		l.logger.Info("seeded sample payments", "count", len(seed), "driver", store.Driver())
		return l, nil
	}
	var payments []Payment
	if err := json.Unmarshal(data, &payments); err != nil {
		l.logger.Warn("discarding unreadable payment snapshot", "key", StorageKey, "error", err)
		return l, nil
	}
	l.payments = payments
	l.logger.Debug("loaded payments", "count", len(payments))
	return l, nil
}

func (l *Ledger) save(ctx context.Context, payments []Payment) error {
	if payments == nil {
		payments = []Payment{}
	}
	data, err := json.Marshal(payments)
	if err != nil {
		return fmt.Errorf("encode payments: %w", err)
	}
	return l.store.Save(ctx, StorageKey, data)
}

// commit persists next and swaps it in. On failure the previous collection
// stays in place.
func (l *Ledger) commit(ctx context.Context, op string, next []Payment) error {
	if err := l.save(ctx, next); err != nil {
		l.logger.Error("payment snapshot failed", "operation", op, "error", err)
		return fmt.Errorf("%s: save payments: %w", op, err)
	}
	l.payments = next
	return nil
}

// Add validates in and prepends the resulting payment.
func (l *Ledger) Add(ctx context.Context, in PaymentInput) (Payment, error) {
	p, err := in.toPayment()
	if err != nil {
		return Payment{}, err
	}
	l.mu.Lock()
	defer l.mu.Unlock()
	now := l.now()
	p.ID = l.newID()
	p.CreatedAt = now
	p.UpdatedAt = now

	next := make([]Payment, 0, len(l.payments)+1)
	next = append(next, p)
	next = append(next, l.payments...)
	if err := l.commit(ctx, "add payment", next); err != nil {
		return Payment{}, err
	}
	l.logger.Info("payment added", "id", p.ID, "status", p.Status, "amount", p.Amount.String())
	return p, nil
}

// Update applies mutator to the payment and refreshes updated_at. The id and
// created_at cannot be changed; the result must still be a valid payment.
func (l *Ledger) Update(ctx context.Context, id string, mutator func(*Payment) error) (Payment, error) {
	l.mu.Lock()
	defer l.mu.Unlock()
	idx := l.indexOf(id)
	if idx < 0 {
		return Payment{}, domain.ErrNotFound{Entity: domain.EntityPayment, ID: id}
	}
	current := l.payments[idx]
	updated := clonePayment(current)
	if mutator != nil {
		if err := mutator(&updated); err != nil {
			return Payment{}, err
		}
	}
	updated.ID = current.ID
	updated.CreatedAt = current.CreatedAt
	updated.UpdatedAt = l.now()
	if err := checkPayment(updated); err != nil {
		return Payment{}, err
	}

	next := make([]Payment, len(l.payments))
	copy(next, l.payments)
	next[idx] = updated
	if err := l.commit(ctx, "update payment", next); err != nil {
		return Payment{}, err
	}
	l.logger.Info("payment updated", "id", id, "status", updated.Status)
	return clonePayment(updated), nil
}

// SetStatus is the common status-only update.
func (l *Ledger) SetStatus(ctx context.Context, id string, status domain.PaymentStatus) (Payment, error) {
	return l.Update(ctx, id, func(p *Payment) error {
		p.Status = status
		return nil
	})
}

// Delete removes the payment.
func (l *Ledger) Delete(ctx context.Context, id string) error {
	l.mu.Lock()
	defer l.mu.Unlock()
	idx := l.indexOf(id)
	if idx < 0 {
		return domain.ErrNotFound{Entity: domain.EntityPayment, ID: id}
	}
	next := make([]Payment, 0, len(l.payments)-1)
	next = append(next, l.payments[:idx]...)
	next = append(next, l.payments[idx+1:]...)
	if err := l.commit(ctx, "delete payment", next); err != nil {
		return err
	}
	l.logger.Info("payment deleted", "id", id)
	return nil
}

// Get returns the payment with id.
func (l *Ledger) Get(id string) (Payment, bool) {
	l.mu.RLock()
	defer l.mu.RUnlock()
	idx := l.indexOf(id)
	if idx < 0 {
		return Payment{}, false
	}
	return clonePayment(l.payments[idx]), true
}

// All returns every payment, newest first.
func (l *Ledger) All() []Payment {
	return l.List(PaymentFilter{})
}

func (l *Ledger) indexOf(id string) int {
	for i := range l.payments {
		if l.payments[i].ID == id {
			return i
		}
	}
	return -1
}

func clonePayment(p Payment) Payment {
	if p.DueDate != nil {
		due := *p.DueDate
		p.DueDate = &due
	}
	return p
}
