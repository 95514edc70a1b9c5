// Package storage provides abstractions for persistent data storage.
package storage

import (
	"context"
	"errors"

	"github.com/mmynk/equityplan/internal/models"
)

var (
	// ErrNotFound is returned when a targeted row does not exist or is not
	// visible to the owner making the call.
	ErrNotFound = errors.New("not found")

	// ErrRowPolicy is returned when a write would attach rows to a scenario
	// the owner cannot see.
	ErrRowPolicy = errors.New("row-level policy violation")
)

// Store is the relational data store behind the scenario aggregate.
//
// Every call is scoped to ownerID the way a row-level security policy would
// scope it: scenarios are filtered by their owner, and dependents (founders,
// rounds, esop) are filtered through their parent scenario. Each call is a
// single round trip and atomic on its own; nothing spans calls.
type Store interface {
	// InsertScenario persists a new scenario. ID, CreatedAt and UpdatedAt are
	// populated by the store; OwnerID must be set by the caller.
	InsertScenario(ctx context.Context, scenario *models.Scenario) error

	// InsertFounders inserts the batch under scenarioID and returns the rows
	// as stored. Returns ErrRowPolicy if ownerID does not own the scenario.
	InsertFounders(ctx context.Context, ownerID, scenarioID string, founders []models.FounderInput) ([]models.Founder, error)

	// InsertRounds behaves like InsertFounders for funding rounds.
	InsertRounds(ctx context.Context, ownerID, scenarioID string, rounds []models.RoundInput) ([]models.FundingRound, error)

	// InsertEsop behaves like InsertFounders for option pools. A scenario
	// holds at most one pool; a second insert fails.
	InsertEsop(ctx context.Context, ownerID, scenarioID string, esop []models.EsopInput) ([]models.EsopPool, error)

	// ListScenarios returns every scenario owned by ownerID with its
	// dependents embedded, newest first. Never nil.
	ListScenarios(ctx context.Context, ownerID string) ([]*models.ScenarioAggregate, error)

	// GetScenario returns one owned scenario with its dependents embedded.
	// Returns ErrNotFound if it does not exist or belongs to someone else.
	GetScenario(ctx context.Context, ownerID, scenarioID string) (*models.ScenarioAggregate, error)

	// UpdateScenarioName sets the name of an owned scenario and returns the
	// updated row. Returns ErrNotFound when no row matched.
	UpdateScenarioName(ctx context.Context, ownerID, scenarioID, name string) (*models.Scenario, error)

	// DeleteScenario removes an owned scenario; dependents go with it through
	// the foreign keys. Returns the number of scenario rows removed.
	DeleteScenario(ctx context.Context, ownerID, scenarioID string) (int64, error)

	// DeleteFounders, DeleteRounds and DeleteEsop remove every dependent of
	// that kind under an owned scenario and return how many rows went.
	DeleteFounders(ctx context.Context, ownerID, scenarioID string) (int64, error)
	DeleteRounds(ctx context.Context, ownerID, scenarioID string) (int64, error)
	DeleteEsop(ctx context.Context, ownerID, scenarioID string) (int64, error)

	// Close releases any resources held by the store.
	Close() error
}

// UserStore persists registered accounts.
type UserStore interface {
	CreateUser(ctx context.Context, user *models.User) error

	// GetUserByEmail and GetUserByID return (nil, nil) when no user matches.
	GetUserByEmail(ctx context.Context, email string) (*models.User, error)
	GetUserByID(ctx context.Context, id string) (*models.User, error)
}

// Backend is a store that serves both scenarios and users.
type Backend interface {
	Store
	UserStore
}
