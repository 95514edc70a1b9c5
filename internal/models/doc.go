// Package models defines the core domain models for equityplan.
//
// # Aggregate
//
// A Scenario is the root of an aggregate that also holds its dependent
// collections:
//   - Founder: a named founder and the equity percentage they hold
//   - FundingRound: a priced round (investment and post-money valuation)
//   - EsopPool: the employee option pool, at most one per scenario
//
// Dependents never carry an owner of their own. They reference their
// scenario by ID and inherit its owner for every read and write.
//
// # Conventions
//
//  1. IDs are UUID strings assigned by the store.
//  2. Relationships use ID strings, not pointers.
//  3. Percentages and amounts are stored and returned verbatim; nothing here
//     computes dilution or cap-table math.
package models
