// Package scenario persists the scenario aggregate: a Scenario row plus its
// founders, funding rounds and option pool.
//
// Writes that touch more than one table run as a fixed sequence of store
// calls with no rollback. When a later call fails after an earlier one
// committed, the returned error matches ErrPartialAggregate and the stored
// aggregate stays in that intermediate state until the caller retries the
// failed step or deletes the scenario.
package scenario

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/trace"

	"github.com/mmynk/equityplan/internal/auth"
	"github.com/mmynk/equityplan/internal/metrics"
	"github.com/mmynk/equityplan/internal/models"
	"github.com/mmynk/equityplan/internal/observability"
	"github.com/mmynk/equityplan/internal/storage"
)

const (
	opCreate          = "create_scenario"
	opList            = "list_scenarios"
	opGet             = "get_scenario"
	opRename          = "rename_scenario"
	opDelete          = "delete_scenario"
	opReplaceFounders = "replace_founders"
	opReplaceRounds   = "replace_rounds"
	opReplaceEsop     = "replace_esop"
)

// Repository is the owner-scoped CRUD surface over scenario aggregates.
// It keeps no state between calls: no cache, no locks, no retries.
type Repository struct {
	store   storage.Store
	metrics *metrics.Metrics
	tracer  trace.Tracer
	logger  *slog.Logger
}

// Option configures a Repository.
type Option func(*Repository)

// WithMetrics records operation latency and partial failures on m.
func WithMetrics(m *metrics.Metrics) Option {
	return func(r *Repository) { r.metrics = m }
}

// WithLogger replaces slog.Default.
func WithLogger(l *slog.Logger) Option {
	return func(r *Repository) { r.logger = l }
}

// WithTracer replaces the global-provider tracer.
func WithTracer(t trace.Tracer) Option {
	return func(r *Repository) { r.tracer = t }
}

// NewRepository creates a Repository over store.
func NewRepository(store storage.Store, opts ...Option) *Repository {
	r := &Repository{
		store:  store,
		tracer: observability.Tracer(),
		logger: slog.Default(),
	}
	for _, opt := range opts {
		opt(r)
	}
	return r
}

// CreateScenarioAggregate creates a scenario and its dependents as four
// sequential store calls: scenario, founders, rounds, then esop if given.
// Empty founder or round lists skip their call. The first failure stops the
// sequence; steps already committed stay committed.
func (r *Repository) CreateScenarioAggregate(ctx context.Context, in models.NewScenario) (agg *models.ScenarioAggregate, err error) {
	ctx, finish := r.start(ctx, opCreate, attribute.String("scenario.name", in.Name))
	defer func() { finish(err) }()

	owner, err := ownerFrom(ctx)
	if err != nil {
		return nil, err
	}

	log := &writeLog{op: opCreate}

	s := &models.Scenario{OwnerID: owner, Name: in.Name}
	if err := r.store.InsertScenario(ctx, s); err != nil {
		return nil, log.fail(StepInsertScenario, err)
	}
	log.commit(StepInsertScenario)
	trace.SpanFromContext(ctx).SetAttributes(attribute.String("scenario.id", s.ID))

	agg = &models.ScenarioAggregate{
		Scenario: *s,
		Founders: []models.Founder{},
		Rounds:   []models.FundingRound{},
	}

	if len(in.Founders) > 0 {
		founders, err := r.store.InsertFounders(ctx, owner, s.ID, in.Founders)
		if err != nil {
			return nil, log.fail(StepInsertFounders, err)
		}
		log.commit(StepInsertFounders)
		agg.Founders = founders
	}

	if len(in.Rounds) > 0 {
		rounds, err := r.store.InsertRounds(ctx, owner, s.ID, in.Rounds)
		if err != nil {
			return nil, log.fail(StepInsertRounds, err)
		}
		log.commit(StepInsertRounds)
		agg.Rounds = rounds
	}

	if in.Esop != nil {
		esop, err := r.store.InsertEsop(ctx, owner, s.ID, []models.EsopInput{*in.Esop})
		if err != nil {
			return nil, log.fail(StepInsertEsop, err)
		}
		if len(esop) > 0 {
			agg.Esop = &esop[0]
		}
	}

	r.logger.InfoContext(ctx, "Scenario created",
		"scenario_id", s.ID,
		"owner_id", owner,
		"founders", len(agg.Founders),
		"rounds", len(agg.Rounds),
		"esop", agg.Esop != nil,
	)
	return agg, nil
}

// ListScenariosForCurrentUser returns the caller's scenarios with their
// dependents, newest first. A caller with no scenarios gets an empty slice.
func (r *Repository) ListScenariosForCurrentUser(ctx context.Context) (list []*models.ScenarioAggregate, err error) {
	ctx, finish := r.start(ctx, opList)
	defer func() { finish(err) }()

	owner, err := ownerFrom(ctx)
	if err != nil {
		return nil, err
	}

	list, err = r.store.ListScenarios(ctx, owner)
	if err != nil {
		return nil, &StoreError{Op: opList, Step: StepListScenarios, Err: err}
	}
	if list == nil {
		list = []*models.ScenarioAggregate{}
	}
	return list, nil
}

// GetScenarioAggregate returns one of the caller's scenarios with its dependents.
func (r *Repository) GetScenarioAggregate(ctx context.Context, id string) (agg *models.ScenarioAggregate, err error) {
	ctx, finish := r.start(ctx, opGet, attribute.String("scenario.id", id))
	defer func() { finish(err) }()

	owner, err := ownerFrom(ctx)
	if err != nil {
		return nil, err
	}

	agg, err = r.store.GetScenario(ctx, owner, id)
	if errors.Is(err, storage.ErrNotFound) {
		return nil, fmt.Errorf("%w: %s", ErrNotFound, id)
	}
	if err != nil {
		return nil, &StoreError{Op: opGet, Step: StepGetScenario, Err: err}
	}
	return agg, nil
}

// RenameScenario changes the name of one of the caller's scenarios. Nothing
// else on the row changes apart from UpdatedAt. A missing or foreign id
// returns ErrNotFound.
func (r *Repository) RenameScenario(ctx context.Context, id, name string) (s *models.Scenario, err error) {
	ctx, finish := r.start(ctx, opRename, attribute.String("scenario.id", id))
	defer func() { finish(err) }()

	owner, err := ownerFrom(ctx)
	if err != nil {
		return nil, err
	}

	s, err = r.store.UpdateScenarioName(ctx, owner, id, name)
	if errors.Is(err, storage.ErrNotFound) {
		return nil, fmt.Errorf("%w: %s", ErrNotFound, id)
	}
	if err != nil {
		return nil, &StoreError{Op: opRename, Step: StepRenameScenario, Err: err}
	}
	return s, nil
}

// DeleteScenarioAggregate deletes one of the caller's scenarios with a single
// store call; the store's cascading foreign keys remove the dependents.
// Deleting a missing or foreign id succeeds without effect.
func (r *Repository) DeleteScenarioAggregate(ctx context.Context, id string) (err error) {
	ctx, finish := r.start(ctx, opDelete, attribute.String("scenario.id", id))
	defer func() { finish(err) }()

	owner, err := ownerFrom(ctx)
	if err != nil {
		return err
	}

	n, err := r.store.DeleteScenario(ctx, owner, id)
	if err != nil {
		return &StoreError{Op: opDelete, Step: StepDeleteScenario, Err: err}
	}
	if n == 0 {
		r.logger.DebugContext(ctx, "Delete matched no scenario", "scenario_id", id, "owner_id", owner)
	}
	return nil
}

// ReplaceFounders deletes every founder of the scenario, then inserts
// founders. The two calls are not atomic: if the insert fails the scenario
// is left with no founders. An empty list only deletes.
func (r *Repository) ReplaceFounders(ctx context.Context, scenarioID string, founders []models.FounderInput) (out []models.Founder, err error) {
	ctx, finish := r.start(ctx, opReplaceFounders,
		attribute.String("scenario.id", scenarioID),
		attribute.Int("items", len(founders)),
	)
	defer func() { finish(err) }()

	owner, err := ownerFrom(ctx)
	if err != nil {
		return nil, err
	}

	return replace(ctx, opReplaceFounders, scenarioID, founders,
		StepDeleteFounders, func(ctx context.Context) (int64, error) {
			return r.store.DeleteFounders(ctx, owner, scenarioID)
		},
		StepInsertFounders, func(ctx context.Context) ([]models.Founder, error) {
			return r.store.InsertFounders(ctx, owner, scenarioID, founders)
		},
	)
}

// ReplaceRounds is ReplaceFounders for funding rounds.
func (r *Repository) ReplaceRounds(ctx context.Context, scenarioID string, rounds []models.RoundInput) (out []models.FundingRound, err error) {
	ctx, finish := r.start(ctx, opReplaceRounds,
		attribute.String("scenario.id", scenarioID),
		attribute.Int("items", len(rounds)),
	)
	defer func() { finish(err) }()

	owner, err := ownerFrom(ctx)
	if err != nil {
		return nil, err
	}

	return replace(ctx, opReplaceRounds, scenarioID, rounds,
		StepDeleteRounds, func(ctx context.Context) (int64, error) {
			return r.store.DeleteRounds(ctx, owner, scenarioID)
		},
		StepInsertRounds, func(ctx context.Context) ([]models.FundingRound, error) {
			return r.store.InsertRounds(ctx, owner, scenarioID, rounds)
		},
	)
}

// ReplaceEsop is ReplaceFounders for the option pool. A scenario holds at
// most one pool, so more than one item is rejected before any store call.
func (r *Repository) ReplaceEsop(ctx context.Context, scenarioID string, esop []models.EsopInput) (out []models.EsopPool, err error) {
	ctx, finish := r.start(ctx, opReplaceEsop,
		attribute.String("scenario.id", scenarioID),
		attribute.Int("items", len(esop)),
	)
	defer func() { finish(err) }()

	owner, err := ownerFrom(ctx)
	if err != nil {
		return nil, err
	}
	if len(esop) > 1 {
		return nil, fmt.Errorf("%w: at most one esop pool per scenario, got %d", ErrInvalidArgument, len(esop))
	}

	return replace(ctx, opReplaceEsop, scenarioID, esop,
		StepDeleteEsop, func(ctx context.Context) (int64, error) {
			return r.store.DeleteEsop(ctx, owner, scenarioID)
		},
		StepInsertEsop, func(ctx context.Context) ([]models.EsopPool, error) {
			return r.store.InsertEsop(ctx, owner, scenarioID, esop)
		},
	)
}

// replace runs the delete-then-insert protocol shared by the Replace* methods.
// A delete that removed rows counts as committed; a zero-row delete does not.
func replace[In, Out any](
	ctx context.Context,
	op, scenarioID string,
	items []In,
	deleteStep Step, del func(context.Context) (int64, error),
	insertStep Step, ins func(context.Context) ([]Out, error),
) ([]Out, error) {
	log := &writeLog{op: op}

	n, err := del(ctx)
	if err != nil {
		return nil, log.fail(deleteStep, err)
	}
	if n > 0 {
		log.commit(deleteStep)
	}

	if len(items) == 0 {
		return []Out{}, nil
	}

	out, err := ins(ctx)
	if err != nil {
		if errors.Is(err, storage.ErrRowPolicy) && n == 0 {
			return nil, fmt.Errorf("%w: %s", ErrNotFound, scenarioID)
		}
		return nil, log.fail(insertStep, err)
	}
	return out, nil
}

// ownerFrom resolves the caller from the request context.
func ownerFrom(ctx context.Context) (string, error) {
	id, ok := auth.IdentityFromContext(ctx)
	if !ok {
		return "", ErrUnauthenticated
	}
	return id.UserID, nil
}

// start opens a span for op and returns a func that closes it and records
// the outcome. Pass the operation's final error to the returned func.
func (r *Repository) start(ctx context.Context, op string, attrs ...attribute.KeyValue) (context.Context, func(error)) {
	began := time.Now()
	ctx, span := r.tracer.Start(ctx, "scenario."+op, trace.WithAttributes(attrs...))

	return ctx, func(err error) {
		outcome := classify(err)
		r.metrics.ObserveOperation(op, outcome, time.Since(began))

		if err != nil {
			span.RecordError(err)
			span.SetStatus(codes.Error, outcome)
			r.logFailure(ctx, op, outcome, err)
		}
		span.SetAttributes(attribute.String("outcome", outcome))
		span.End()
	}
}

func (r *Repository) logFailure(ctx context.Context, op, outcome string, err error) {
	var storeErr *StoreError
	switch {
	case errors.As(err, &storeErr) && storeErr.Partial():
		r.metrics.PartialFailure(op, string(storeErr.Step))
		r.logger.ErrorContext(ctx, "Aggregate left partially written",
			"operation", op,
			"failed_step", storeErr.Step,
			"committed", storeErr.Committed,
			"error", storeErr.Err,
		)
	case outcome == "store_error":
		r.logger.WarnContext(ctx, "Store call failed", "operation", op, "error", err)
	default:
		r.logger.DebugContext(ctx, "Operation rejected", "operation", op, "outcome", outcome, "error", err)
	}
}

func classify(err error) string {
	switch {
	case err == nil:
		return "ok"
	case errors.Is(err, ErrUnauthenticated):
		return "unauthenticated"
	case errors.Is(err, ErrNotFound):
		return "not_found"
	case errors.Is(err, ErrInvalidArgument):
		return "invalid_argument"
	case errors.Is(err, ErrPartialAggregate):
		return "partial"
	default:
		return "store_error"
	}
}
