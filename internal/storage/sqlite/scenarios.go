package sqlite

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"

	"github.com/mmynk/equityplan/internal/models"
	"github.com/mmynk/equityplan/internal/storage"
)

// InsertScenario persists a new scenario row.
func (s *SQLiteStore) InsertScenario(ctx context.Context, scenario *models.Scenario) error {
	if scenario.OwnerID == "" {
		return fmt.Errorf("failed to insert scenario: owner_id required")
	}
	if scenario.ID == "" {
		scenario.ID = uuid.New().String()
	}
	now := time.Now().UTC()
	scenario.CreatedAt = now
	scenario.UpdatedAt = now

	_, err := s.db.ExecContext(ctx,
		"INSERT INTO scenarios (id, owner_id, name, created_at, updated_at) VALUES (?, ?, ?, ?, ?)",
		scenario.ID, scenario.OwnerID, scenario.Name, toNanos(now), toNanos(now),
	)
	if err != nil {
		return fmt.Errorf("failed to insert scenario: %w", err)
	}
	return nil
}

// InsertFounders inserts a founders batch in one transaction.
func (s *SQLiteStore) InsertFounders(ctx context.Context, ownerID, scenarioID string, founders []models.FounderInput) ([]models.Founder, error) {
	out := make([]models.Founder, 0, len(founders))
	err := s.withOwnedScenario(ctx, ownerID, scenarioID, func(tx *sql.Tx) error {
		for i, in := range founders {
			f := models.Founder{
				ID:               uuid.New().String(),
				ScenarioID:       scenarioID,
				Name:             in.Name,
				EquityPercentage: in.EquityPercentage,
			}
			_, err := tx.ExecContext(ctx,
				"INSERT INTO founders (id, scenario_id, position, name, equity_percentage) VALUES (?, ?, ?, ?, ?)",
				f.ID, f.ScenarioID, i, f.Name, f.EquityPercentage,
			)
			if err != nil {
				return fmt.Errorf("failed to insert founder: %w", err)
			}
			out = append(out, f)
		}
		return nil
	})
	if err != nil {
		return nil, err
	}
	return out, nil
}

// InsertRounds inserts a funding rounds batch in one transaction.
func (s *SQLiteStore) InsertRounds(ctx context.Context, ownerID, scenarioID string, rounds []models.RoundInput) ([]models.FundingRound, error) {
	out := make([]models.FundingRound, 0, len(rounds))
	err := s.withOwnedScenario(ctx, ownerID, scenarioID, func(tx *sql.Tx) error {
		for i, in := range rounds {
			r := models.FundingRound{
				ID:               uuid.New().String(),
				ScenarioID:       scenarioID,
				RoundName:        in.RoundName,
				InvestmentAmount: in.InvestmentAmount,
				Valuation:        in.Valuation,
			}
			_, err := tx.ExecContext(ctx,
				"INSERT INTO rounds (id, scenario_id, position, round_name, investment_amount, valuation) VALUES (?, ?, ?, ?, ?, ?)",
				r.ID, r.ScenarioID, i, r.RoundName, r.InvestmentAmount, r.Valuation,
			)
			if err != nil {
				return fmt.Errorf("failed to insert round: %w", err)
			}
			out = append(out, r)
		}
		return nil
	})
	if err != nil {
		return nil, err
	}
	return out, nil
}

// InsertEsop inserts option pool rows in one transaction.
func (s *SQLiteStore) InsertEsop(ctx context.Context, ownerID, scenarioID string, esop []models.EsopInput) ([]models.EsopPool, error) {
	out := make([]models.EsopPool, 0, len(esop))
	err := s.withOwnedScenario(ctx, ownerID, scenarioID, func(tx *sql.Tx) error {
		for _, in := range esop {
			e := models.EsopPool{
				ID:         uuid.New().String(),
				ScenarioID: scenarioID,
				Percentage: in.Percentage,
			}
			_, err := tx.ExecContext(ctx,
				"INSERT INTO esop (id, scenario_id, percentage) VALUES (?, ?, ?)",
				e.ID, e.ScenarioID, e.Percentage,
			)
			if err != nil {
				return fmt.Errorf("failed to insert esop: %w", err)
			}
			out = append(out, e)
		}
		return nil
	})
	if err != nil {
		return nil, err
	}
	return out, nil
}

// withOwnedScenario runs fn in a transaction after checking that ownerID owns
// scenarioID. The check stands in for the insert policy on dependent tables.
func (s *SQLiteStore) withOwnedScenario(ctx context.Context, ownerID, scenarioID string, fn func(tx *sql.Tx) error) error {
	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("failed to begin transaction: %w", err)
	}
	defer tx.Rollback()

	var exists int
	err = tx.QueryRowContext(ctx,
		"SELECT 1 FROM scenarios WHERE id = ? AND owner_id = ?",
		scenarioID, ownerID,
	).Scan(&exists)
	if errors.Is(err, sql.ErrNoRows) {
		return fmt.Errorf("scenario %s: %w", scenarioID, storage.ErrRowPolicy)
	}
	if err != nil {
		return fmt.Errorf("failed to check scenario owner: %w", err)
	}

	if err := fn(tx); err != nil {
		return err
	}

	if err := tx.Commit(); err != nil {
		return fmt.Errorf("failed to commit transaction: %w", err)
	}
	return nil
}

// ListScenarios returns the owner's scenarios with dependents, newest first.
// All four reads share one transaction so the result is a consistent snapshot.
func (s *SQLiteStore) ListScenarios(ctx context.Context, ownerID string) ([]*models.ScenarioAggregate, error) {
	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return nil, fmt.Errorf("failed to begin transaction: %w", err)
	}
	defer tx.Rollback()

	aggregates, err := queryScenarios(ctx, tx,
		`SELECT id, owner_id, name, created_at, updated_at FROM scenarios
		 WHERE owner_id = ? ORDER BY created_at DESC, rowid DESC`,
		ownerID,
	)
	if err != nil {
		return nil, err
	}

	const owned = "SELECT id FROM scenarios WHERE owner_id = ?"
	if err := loadDependents(ctx, tx, aggregates, owned, ownerID); err != nil {
		return nil, err
	}
	return aggregates, nil
}

// GetScenario retrieves one owned scenario with its dependents.
func (s *SQLiteStore) GetScenario(ctx context.Context, ownerID, scenarioID string) (*models.ScenarioAggregate, error) {
	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return nil, fmt.Errorf("failed to begin transaction: %w", err)
	}
	defer tx.Rollback()

	aggregates, err := queryScenarios(ctx, tx,
		"SELECT id, owner_id, name, created_at, updated_at FROM scenarios WHERE owner_id = ? AND id = ?",
		ownerID, scenarioID,
	)
	if err != nil {
		return nil, err
	}
	if len(aggregates) == 0 {
		return nil, fmt.Errorf("scenario %s: %w", scenarioID, storage.ErrNotFound)
	}

	const owned = "SELECT id FROM scenarios WHERE owner_id = ? AND id = ?"
	if err := loadDependents(ctx, tx, aggregates, owned, ownerID, scenarioID); err != nil {
		return nil, err
	}
	return aggregates[0], nil
}

func queryScenarios(ctx context.Context, tx *sql.Tx, query string, args ...any) ([]*models.ScenarioAggregate, error) {
	rows, err := tx.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("failed to get scenarios: %w", err)
	}
	defer rows.Close()

	aggregates := []*models.ScenarioAggregate{}
	for rows.Next() {
		agg := &models.ScenarioAggregate{}
		var createdAt, updatedAt int64
		if err := rows.Scan(&agg.ID, &agg.OwnerID, &agg.Name, &createdAt, &updatedAt); err != nil {
			return nil, fmt.Errorf("failed to scan scenario: %w", err)
		}
		agg.CreatedAt = fromNanos(createdAt)
		agg.UpdatedAt = fromNanos(updatedAt)
		aggregates = append(aggregates, agg)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("failed to iterate scenarios: %w", err)
	}
	return aggregates, nil
}

// loadDependents fetches founders, rounds and esop for the scenarios selected
// by the owned subquery and attaches them to aggregates.
func loadDependents(ctx context.Context, tx *sql.Tx, aggregates []*models.ScenarioAggregate, owned string, args ...any) error {
	var founders []models.Founder
	rows, err := tx.QueryContext(ctx,
		"SELECT id, scenario_id, name, equity_percentage FROM founders WHERE scenario_id IN ("+owned+") ORDER BY position",
		args...,
	)
	if err != nil {
		return fmt.Errorf("failed to get founders: %w", err)
	}
	for rows.Next() {
		var f models.Founder
		if err := rows.Scan(&f.ID, &f.ScenarioID, &f.Name, &f.EquityPercentage); err != nil {
			rows.Close()
			return fmt.Errorf("failed to scan founder: %w", err)
		}
		founders = append(founders, f)
	}
	rows.Close()
	if err := rows.Err(); err != nil {
		return fmt.Errorf("failed to iterate founders: %w", err)
	}

	var rounds []models.FundingRound
	rows, err = tx.QueryContext(ctx,
		"SELECT id, scenario_id, round_name, investment_amount, valuation FROM rounds WHERE scenario_id IN ("+owned+") ORDER BY position",
		args...,
	)
	if err != nil {
		return fmt.Errorf("failed to get rounds: %w", err)
	}
	for rows.Next() {
		var r models.FundingRound
		if err := rows.Scan(&r.ID, &r.ScenarioID, &r.RoundName, &r.InvestmentAmount, &r.Valuation); err != nil {
			rows.Close()
			return fmt.Errorf("failed to scan round: %w", err)
		}
		rounds = append(rounds, r)
	}
	rows.Close()
	if err := rows.Err(); err != nil {
		return fmt.Errorf("failed to iterate rounds: %w", err)
	}

	var esop []models.EsopPool
	rows, err = tx.QueryContext(ctx,
		"SELECT id, scenario_id, percentage FROM esop WHERE scenario_id IN ("+owned+")",
		args...,
	)
	if err != nil {
		return fmt.Errorf("failed to get esop: %w", err)
	}
	for rows.Next() {
		var e models.EsopPool
		if err := rows.Scan(&e.ID, &e.ScenarioID, &e.Percentage); err != nil {
			rows.Close()
			return fmt.Errorf("failed to scan esop: %w", err)
		}
		esop = append(esop, e)
	}
	rows.Close()
	if err := rows.Err(); err != nil {
		return fmt.Errorf("failed to iterate esop: %w", err)
	}

	storage.Attach(aggregates, founders, rounds, esop)
	return nil
}

// UpdateScenarioName renames an owned scenario.
func (s *SQLiteStore) UpdateScenarioName(ctx context.Context, ownerID, scenarioID, name string) (*models.Scenario, error) {
	scenario := &models.Scenario{}
	var createdAt, updatedAt int64
	err := s.db.QueryRowContext(ctx,
		`UPDATE scenarios SET name = ?, updated_at = ?
		 WHERE id = ? AND owner_id = ?
		 RETURNING id, owner_id, name, created_at, updated_at`,
		name, toNanos(time.Now()), scenarioID, ownerID,
	).Scan(&scenario.ID, &scenario.OwnerID, &scenario.Name, &createdAt, &updatedAt)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, fmt.Errorf("scenario %s: %w", scenarioID, storage.ErrNotFound)
	}
	if err != nil {
		return nil, fmt.Errorf("failed to update scenario: %w", err)
	}
	scenario.CreatedAt = fromNanos(createdAt)
	scenario.UpdatedAt = fromNanos(updatedAt)
	return scenario, nil
}

// DeleteScenario removes an owned scenario. Dependents cascade.
func (s *SQLiteStore) DeleteScenario(ctx context.Context, ownerID, scenarioID string) (int64, error) {
	return s.exec(ctx, "delete scenario",
		"DELETE FROM scenarios WHERE id = ? AND owner_id = ?",
		scenarioID, ownerID,
	)
}

// DeleteFounders removes every founder of an owned scenario.
func (s *SQLiteStore) DeleteFounders(ctx context.Context, ownerID, scenarioID string) (int64, error) {
	return s.exec(ctx, "delete founders",
		"DELETE FROM founders WHERE scenario_id IN (SELECT id FROM scenarios WHERE id = ? AND owner_id = ?)",
		scenarioID, ownerID,
	)
}

// DeleteRounds removes every funding round of an owned scenario.
func (s *SQLiteStore) DeleteRounds(ctx context.Context, ownerID, scenarioID string) (int64, error) {
	return s.exec(ctx, "delete rounds",
		"DELETE FROM rounds WHERE scenario_id IN (SELECT id FROM scenarios WHERE id = ? AND owner_id = ?)",
		scenarioID, ownerID,
	)
}

// DeleteEsop removes the option pool of an owned scenario.
func (s *SQLiteStore) DeleteEsop(ctx context.Context, ownerID, scenarioID string) (int64, error) {
	return s.exec(ctx, "delete esop",
		"DELETE FROM esop WHERE scenario_id IN (SELECT id FROM scenarios WHERE id = ? AND owner_id = ?)",
		scenarioID, ownerID,
	)
}

func (s *SQLiteStore) exec(ctx context.Context, op, query string, args ...any) (int64, error) {
	res, err := s.db.ExecContext(ctx, query, args...)
	if err != nil {
		return 0, fmt.Errorf("failed to %s: %w", op, err)
	}
	n, err := res.RowsAffected()
	if err != nil {
		return 0, fmt.Errorf("failed to %s: %w", op, err)
	}
	return n, nil
}
