// Package core exposes the cemetery inventory and burial record operations as
// a validated, observable service over a domain.PersistentStore.
package core

import (
	"cemeterycore/internal/infra/persistence/memory"
	"cemeterycore/pkg/domain"
	"context"
	"time"
)

// Logger is the structured logging surface the service writes to.
// *slog.Logger satisfies it.
type Logger interface {
	Debug(msg string, args ...any)
	Info(msg string, args ...any)
	Warn(msg string, args ...any)
	Error(msg string, args ...any)
}

// Clock supplies timestamps for approvals and audit entries.
type Clock interface {
	Now() time.Time
}

// ClockFunc adapts a function to Clock. A nil ClockFunc reports UTC wall time.
type ClockFunc func() time.Time

// Now implements Clock.
func (f ClockFunc) Now() time.Time {
	if f == nil {
		return time.Now().UTC()
	}
	return f().UTC()
}

// MetricsRecorder observes the outcome and latency of every service operation.
type MetricsRecorder interface {
	Observe(ctx context.Context, operation string, success bool, duration time.Duration)
}

// Tracer opens a span per service operation.
type Tracer interface {
	Start(ctx context.Context, operation string) (context.Context, TraceSpan)
}

// TraceSpan is closed with the operation error, nil on success.
type TraceSpan interface {
	End(err error)
}

// AuditStatus is the outcome recorded for an audited operation.
type AuditStatus string

const (
	AuditStatusSuccess AuditStatus = "success"
	AuditStatusError   AuditStatus = "error"
)

// AuditEntry describes one mutating operation.
type AuditEntry struct {
	Operation string
	Entity    EntityType
	Action    Action
	EntityID  string
	Status    AuditStatus
	Error     string
	Duration  time.Duration
	Timestamp time.Time
}

// AuditRecorder receives an entry after each mutating operation.
type AuditRecorder interface {
	Record(ctx context.Context, entry AuditEntry)
}

type noopLogger struct{}

func (noopLogger) Debug(string, ...any) {}
func (noopLogger) Info(string, ...any)  {}
func (noopLogger) Warn(string, ...any)  {}
func (noopLogger) Error(string, ...any) {}

type noopAuditRecorder struct{}

func (noopAuditRecorder) Record(context.Context, AuditEntry) {}

type noopMetricsRecorder struct{}

func (noopMetricsRecorder) Observe(context.Context, string, bool, time.Duration) {}

type noopTracer struct{}

func (noopTracer) Start(ctx context.Context, _ string) (context.Context, TraceSpan) {
	return ctx, noopSpan{}
}

type noopSpan struct{}

func (noopSpan) End(error) {}

type serviceOptions struct {
	clock    Clock
	clockSet bool
	logger   Logger
	audit    AuditRecorder
	metrics  MetricsRecorder
	tracer   Tracer
}

func defaultServiceOptions() serviceOptions {
	return serviceOptions{
		clock:   ClockFunc(nil),
		logger:  noopLogger{},
		audit:   noopAuditRecorder{},
		metrics: noopMetricsRecorder{},
		tracer:  noopTracer{},
	}
}

// Option customises a Service.
type Option func(*serviceOptions)

// WithClock overrides the time source. Stores that accept a time provider
// are switched to the same clock so entity timestamps agree with approvals.
func WithClock(clock Clock) Option {
	return func(o *serviceOptions) {
		if clock != nil {
			o.clock = clock
			o.clockSet = true
		}
	}
}

// WithLogger sets the logger used for operation outcomes and rule warnings.
func WithLogger(logger Logger) Option {
	return func(o *serviceOptions) {
		if logger != nil {
			o.logger = logger
		}
	}
}

// WithAuditRecorder sets the audit sink for mutating operations.
func WithAuditRecorder(recorder AuditRecorder) Option {
	return func(o *serviceOptions) {
		if recorder != nil {
			o.audit = recorder
		}
	}
}

// WithMetricsRecorder sets the metrics sink.
func WithMetricsRecorder(recorder MetricsRecorder) Option {
	return func(o *serviceOptions) {
		if recorder != nil {
			o.metrics = recorder
		}
	}
}

// WithTracer sets the tracer.
func WithTracer(tracer Tracer) Option {
	return func(o *serviceOptions) {
		if tracer != nil {
			o.tracer = tracer
		}
	}
}

// Service exposes transactional cemetery operations.
type Service struct {
	store   PersistentStore
	engine  *RulesEngine
	clock   Clock
	now     func() time.Time
	logger  Logger
	audit   AuditRecorder
	metrics MetricsRecorder
	tracer  Tracer
}

// NewService constructs a service backed by the supplied store.
func NewService(store PersistentStore, opts ...Option) *Service {
	o := defaultServiceOptions()
	for _, opt := range opts {
		opt(&o)
	}
	if o.clockSet {
		if setter, ok := store.(interface{ SetNowFunc(func() time.Time) }); ok {
			setter.SetNowFunc(o.clock.Now)
		}
	}
	var clock Clock
	if o.clockSet {
		clock = o.clock
	}
	return &Service{
		store:   store,
		engine:  extractRulesEngine(store),
		clock:   o.clock,
		now:     selectNowFunc(store, clock),
		logger:  o.logger,
		audit:   o.audit,
		metrics: o.metrics,
		tracer:  o.tracer,
	}
}

// NewInMemoryService creates a service over a fresh in-memory store. A nil
// engine selects NewDefaultRulesEngine.
func NewInMemoryService(engine *RulesEngine, opts ...Option) *Service {
	if engine == nil {
		engine = NewDefaultRulesEngine()
	}
	return NewService(memory.NewStore(engine), opts...)
}

// Store returns the underlying storage implementation.
func (s *Service) Store() PersistentStore {
	return s.store
}

// RulesEngine returns the store's engine, nil when the store does not expose one.
func (s *Service) RulesEngine() *RulesEngine {
	return s.engine
}

func extractRulesEngine(store PersistentStore) *RulesEngine {
	if provider, ok := store.(interface{ RulesEngine() *domain.RulesEngine }); ok {
		return provider.RulesEngine()
	}
	return nil
}

// selectNowFunc prefers an explicit clock, then the store's time provider,
// then UTC wall time.
func selectNowFunc(store PersistentStore, clock Clock) func() time.Time {
	if clock != nil {
		return clock.Now
	}
	if provider, ok := store.(interface{ NowFunc() func() time.Time }); ok {
		if fn := provider.NowFunc(); fn != nil {
			return func() time.Time { return fn().UTC() }
		}
	}
	return func() time.Time { return time.Now().UTC() }
}

type operationMeta struct {
	entity EntityType
	action Action
}

// operations lists the audited mutating operations.
var operations = map[string]operationMeta{
	"create_graveyard":      {domain.EntityGraveyard, ActionCreate},
	"update_graveyard":      {domain.EntityGraveyard, ActionUpdate},
	"delete_graveyard":      {domain.EntityGraveyard, ActionDelete},
	"create_plot":           {domain.EntityPlot, ActionCreate},
	"update_plot":           {domain.EntityPlot, ActionUpdate},
	"delete_plot":           {domain.EntityPlot, ActionDelete},
	"update_grave":          {domain.EntityGrave, ActionUpdate},
	"reserve_grave":         {domain.EntityGrave, ActionUpdate},
	"release_grave":         {domain.EntityGrave, ActionUpdate},
	"bulk_update_graves":    {domain.EntityGrave, ActionUpdate},
	"bulk_reserve_graves":   {domain.EntityGrave, ActionUpdate},
	"bulk_release_graves":   {domain.EntityGrave, ActionUpdate},
	"create_burial_record":  {domain.EntityBurialRecord, ActionCreate},
	"update_burial_record":  {domain.EntityBurialRecord, ActionUpdate},
	"approve_burial_record": {domain.EntityBurialRecord, ActionUpdate},
	"reject_burial_record":  {domain.EntityBurialRecord, ActionUpdate},
	"delete_burial_record":  {domain.EntityBurialRecord, ActionDelete},
}

// run wraps an operation with tracing, logging, metrics and auditing. fn
// returns the id of the entity it touched.
func (s *Service) run(ctx context.Context, op string, fn func(context.Context) (string, Result, error)) (Result, error) {
	ctx, span := s.tracer.Start(ctx, op)
	start := time.Now()
	s.logger.Debug("operation started", "operation", op)

	entityID, res, err := fn(ctx)
	duration := time.Since(start)

	for _, v := range res.Violations {
		args := []any{"operation", op, "rule", v.Rule, "entity", v.Entity, "entity_id", v.EntityID, "message", v.Message}
		switch v.Severity {
		case SeverityWarn:
			s.logger.Warn("rule violation", args...)
		case SeverityLog:
			s.logger.Info("rule violation", args...)
		}
	}
	span.End(err)
	s.metrics.Observe(ctx, op, err == nil, duration)
	if err != nil {
		s.logger.Error("operation failed", "operation", op, "entity_id", entityID, "error", err)
		s.recordAuditError(ctx, op, entityID, duration, err)
		return res, err
	}
	s.logger.Info("operation completed", "operation", op, "entity_id", entityID, "duration", duration)
	s.recordAuditSuccess(ctx, op, entityID, duration)
	return res, nil
}

func (s *Service) recordAuditSuccess(ctx context.Context, op, entityID string, duration time.Duration) {
	s.recordAudit(ctx, op, entityID, duration, nil)
}

func (s *Service) recordAuditError(ctx context.Context, op, entityID string, duration time.Duration, err error) {
	s.recordAudit(ctx, op, entityID, duration, err)
}

func (s *Service) recordAudit(ctx context.Context, op, entityID string, duration time.Duration, err error) {
	meta, ok := operations[op]
	if !ok {
		return
	}
	entry := AuditEntry{
		Operation: op,
		Entity:    meta.entity,
		Action:    meta.action,
		EntityID:  entityID,
		Status:    AuditStatusSuccess,
		Duration:  duration,
		Timestamp: s.clock.Now(),
	}
	if err != nil {
		entry.Status = AuditStatusError
		entry.Error = err.Error()
	}
	s.audit.Record(ctx, entry)
}
