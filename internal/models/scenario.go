package models

import "time"

// Scenario is a named, user-owned cap-table model.
// Only Name (and UpdatedAt with it) changes after creation.
type Scenario struct {
	// ID is the unique identifier for the scenario (UUID format).
	ID string

	// OwnerID is the user that created the scenario. It decides who can see
	// or change the scenario and everything that hangs off it.
	OwnerID string

	// Name is the display name (e.g., "Seed Round Plan").
	Name string

	CreatedAt time.Time
	UpdatedAt time.Time
}

// Founder is one founder's equity stake within a scenario.
type Founder struct {
	ID         string
	ScenarioID string
	Name       string

	// EquityPercentage is conventionally 0-100. Stored verbatim.
	EquityPercentage float64
}

// FundingRound is one priced round within a scenario.
// Amounts share a single implicit currency.
type FundingRound struct {
	ID               string
	ScenarioID       string
	RoundName        string
	InvestmentAmount float64

	// Valuation is the post-money valuation.
	Valuation float64
}

// EsopPool is the employee stock option pool of a scenario.
type EsopPool struct {
	ID         string
	ScenarioID string
	Percentage float64
}

// ScenarioAggregate is a Scenario together with its dependents.
// Slices are never nil; Esop is nil when the scenario has no pool.
type ScenarioAggregate struct {
	Scenario
	Founders []Founder
	Rounds   []FundingRound
	Esop     *EsopPool
}

// FounderInput is a founder before it has been persisted.
type FounderInput struct {
	Name             string
	EquityPercentage float64
}

// RoundInput is a funding round before it has been persisted.
type RoundInput struct {
	RoundName        string
	InvestmentAmount float64
	Valuation        float64
}

// EsopInput is an option pool before it has been persisted.
type EsopInput struct {
	Percentage float64
}

// NewScenario is everything needed to create a scenario aggregate in one call.
type NewScenario struct {
	Name     string
	Founders []FounderInput
	Rounds   []RoundInput

	// Esop is optional.
	Esop *EsopInput
}
