// Package engine implements the operations of the string analysis service on
// top of a store.Store: create, lookup, structured and natural-language
// listing, and deletion.
package engine

import (
	"time"

	"go.uber.org/zap"

	"github.com/stevemurr/string-analysis-server/analyzer"
	"github.com/stevemurr/string-analysis-server/errors"
	"github.com/stevemurr/string-analysis-server/metrics"
	"github.com/stevemurr/string-analysis-server/query"
	"github.com/stevemurr/string-analysis-server/store"
)

// ListResult is the outcome of a structured listing.
type ListResult struct {
	Data           []store.Record `json:"data"`
	Count          int            `json:"count"`
	FiltersApplied query.Criteria `json:"filters_applied"`
}

// NaturalResult is the outcome of a natural-language listing.
type NaturalResult struct {
	Data             []store.Record       `json:"data"`
	Count            int                  `json:"count"`
	InterpretedQuery query.Interpretation `json:"interpreted_query"`
}

// Engine owns the collection through its store. Safe for concurrent use as
// long as the store is.
type Engine struct {
	store       store.Store
	interpreter *query.Interpreter
	logger      *zap.SugaredLogger
	metrics     *metrics.Metrics
	now         func() time.Time
}

// Option configures an Engine.
type Option func(*Engine)

// WithLogger sets the logger. The default discards everything.
func WithLogger(l *zap.SugaredLogger) Option {
	return func(e *Engine) { e.logger = l }
}

// WithMetrics records operation outcomes and the collection size in m.
func WithMetrics(m *metrics.Metrics) Option {
	return func(e *Engine) { e.metrics = m }
}

// WithClock overrides the creation timestamp source.
func WithClock(now func() time.Time) Option {
	return func(e *Engine) { e.now = now }
}

// WithInterpreter replaces the natural-language rule table.
func WithInterpreter(in *query.Interpreter) Option {
	return func(e *Engine) { e.interpreter = in }
}

// New creates an Engine over s.
func New(s store.Store, opts ...Option) *Engine {
	e := &Engine{
		store:       s,
		interpreter: query.NewInterpreter(),
		logger:      zap.NewNop().Sugar(),
		now:         time.Now,
	}
	for _, opt := range opts {
		opt(e)
	}
	if e.metrics != nil {
		n, err := s.Count()
		if err != nil {
			e.logger.Warnw("Failed to count strings", "error", err)
		}
		e.metrics.SetStored(n)
	}
	return e
}

// Create analyzes value and stores the result. value normally comes from
// decoded JSON: nil is ErrMissingValue and any non-string ErrInvalidInput.
// A value that is already stored is ErrConflict.
func (e *Engine) Create(value any) (rec store.Record, err error) {
	defer func() { e.observe("create", err) }()

	s, err := analyzer.Coerce(value)
	if err != nil {
		return store.Record{}, err
	}
	props := analyzer.Analyze(s)
	rec = store.Record{
		ID:         props.SHA256Hash,
		Value:      s,
		Properties: props,
		CreatedAt:  e.now().UTC(),
	}
	if err := e.store.Insert(rec); err != nil {
		return store.Record{}, err
	}
	e.metrics.AddStored(1)
	e.logger.Debugw("String stored", "id", shortID(rec.ID), "length", props.Length)
	return rec, nil
}

// Get returns the record whose value equals value exactly.
func (e *Engine) Get(value string) (rec store.Record, err error) {
	defer func() { e.observe("get", err) }()

	found, err := e.store.Get(value)
	if err != nil {
		return store.Record{}, errors.Wrap(err, "get string")
	}
	if found == nil {
		return store.Record{}, errors.Wrapf(errors.ErrNotFound, "value %q", value)
	}
	return *found, nil
}

// List returns the records matching c. When c sets at least one filter and
// nothing matches, the result is ErrNoMatches rather than an empty list.
func (e *Engine) List(c query.Criteria) (res ListResult, err error) {
	defer func() { e.observe("list", err) }()

	recs, err := e.store.List(c)
	if err != nil {
		return ListResult{}, errors.Wrap(err, "list strings")
	}
	if len(recs) == 0 && !c.Empty() {
		return ListResult{}, errors.ErrNoMatches
	}
	return ListResult{Data: recs, Count: len(recs), FiltersApplied: c}, nil
}

// ListNatural interprets text and lists the matching records. Unlike List,
// an interpreted query that matches nothing is an empty success.
func (e *Engine) ListNatural(text string) (res NaturalResult, err error) {
	defer func() { e.observe("list_natural", err) }()

	in, err := e.interpreter.Interpret(text)
	if err != nil {
		return NaturalResult{}, err
	}
	recs, err := e.store.List(in.ParsedFilters)
	if err != nil {
		return NaturalResult{}, errors.Wrap(err, "list strings")
	}
	e.logger.Debugw("Natural-language query interpreted", "query", text, "rule", in.Rule, "matches", len(recs))
	return NaturalResult{Data: recs, Count: len(recs), InterpretedQuery: in}, nil
}

// Delete removes the record whose value equals value exactly.
func (e *Engine) Delete(value string) (err error) {
	defer func() { e.observe("delete", err) }()

	existed, err := e.store.Delete(value)
	if err != nil {
		return errors.Wrap(err, "delete string")
	}
	if !existed {
		return errors.Wrapf(errors.ErrNotFound, "value %q", value)
	}
	e.metrics.AddStored(-1)
	return nil
}

// Count returns the number of stored records.
func (e *Engine) Count() (int, error) {
	n, err := e.store.Count()
	if err != nil {
		return 0, errors.Wrap(err, "count strings")
	}
	return n, nil
}

func (e *Engine) observe(operation string, err error) {
	e.metrics.ObserveOperation(operation, err)
}

// shortID truncates an ID to 8 characters for logging
func shortID(id string) string {
	if len(id) >= 8 {
		return id[:8]
	}
	return id
}
