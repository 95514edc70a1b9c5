// Package postgres provides a PostgreSQL-backed implementation of the storage
// interfaces on top of a pgx connection pool.
package postgres

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/mmynk/equityplan/internal/models"
	"github.com/mmynk/equityplan/internal/storage"
)

var _ storage.Backend = (*Store)(nil)

// Store implements storage.Store and storage.UserStore using PostgreSQL.
type Store struct {
	pool *pgxpool.Pool
}

// Open connects to dsn, verifies the connection and applies the schema.
func Open(ctx context.Context, dsn string) (*Store, error) {
	pool, err := pgxpool.New(ctx, dsn)
	if err != nil {
		return nil, fmt.Errorf("open postgres: %w", err)
	}
	if err := pool.Ping(ctx); err != nil {
		pool.Close()
		return nil, fmt.Errorf("ping postgres: %w", err)
	}
	if err := migrate(ctx, pool); err != nil {
		pool.Close()
		return nil, err
	}
	return &Store{pool: pool}, nil
}

// Close releases the pool.
func (s *Store) Close() error {
	s.pool.Close()
	return nil
}

// --- Scenarios ---

func (s *Store) InsertScenario(ctx context.Context, scenario *models.Scenario) error {
	if scenario.OwnerID == "" {
		return fmt.Errorf("insert scenario: owner_id required")
	}
	if scenario.ID == "" {
		scenario.ID = uuid.New().String()
	}
	err := s.pool.QueryRow(ctx,
		`INSERT INTO scenarios (id, owner_id, name) VALUES ($1, $2, $3)
		 RETURNING created_at, updated_at`,
		scenario.ID, scenario.OwnerID, scenario.Name,
	).Scan(&scenario.CreatedAt, &scenario.UpdatedAt)
	if err != nil {
		return fmt.Errorf("insert scenario: %w", err)
	}
	return nil
}

func (s *Store) ListScenarios(ctx context.Context, ownerID string) ([]*models.ScenarioAggregate, error) {
	var out []*models.ScenarioAggregate
	err := pgx.BeginTxFunc(ctx, s.pool, pgx.TxOptions{AccessMode: pgx.ReadOnly}, func(tx pgx.Tx) error {
		aggregates, err := queryScenarios(ctx, tx,
			`SELECT id, owner_id, name, created_at, updated_at FROM scenarios
			 WHERE owner_id = $1 ORDER BY created_at DESC, seq DESC`, ownerID)
		if err != nil {
			return err
		}
		ids := make([]string, len(aggregates))
		for i, agg := range aggregates {
			ids[i] = agg.ID
		}
		if err := loadDependents(ctx, tx, aggregates, ids); err != nil {
			return err
		}
		out = aggregates
		return nil
	})
	if err != nil {
		return nil, err
	}
	return out, nil
}

func (s *Store) GetScenario(ctx context.Context, ownerID, scenarioID string) (*models.ScenarioAggregate, error) {
	var out *models.ScenarioAggregate
	err := pgx.BeginTxFunc(ctx, s.pool, pgx.TxOptions{AccessMode: pgx.ReadOnly}, func(tx pgx.Tx) error {
		aggregates, err := queryScenarios(ctx, tx,
			`SELECT id, owner_id, name, created_at, updated_at FROM scenarios
			 WHERE owner_id = $1 AND id = $2`, ownerID, scenarioID)
		if err != nil {
			return err
		}
		if len(aggregates) == 0 {
			return fmt.Errorf("get scenario %s: %w", scenarioID, storage.ErrNotFound)
		}
		if err := loadDependents(ctx, tx, aggregates, []string{scenarioID}); err != nil {
			return err
		}
		out = aggregates[0]
		return nil
	})
	if err != nil {
		return nil, err
	}
	return out, nil
}

func queryScenarios(ctx context.Context, tx pgx.Tx, query string, args ...any) ([]*models.ScenarioAggregate, error) {
	rows, err := tx.Query(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("list scenarios: %w", err)
	}
	defer rows.Close()

	aggregates := []*models.ScenarioAggregate{}
	for rows.Next() {
		agg := &models.ScenarioAggregate{}
		if err := rows.Scan(&agg.ID, &agg.OwnerID, &agg.Name, &agg.CreatedAt, &agg.UpdatedAt); err != nil {
			return nil, fmt.Errorf("scan scenario: %w", err)
		}
		aggregates = append(aggregates, agg)
	}
	return aggregates, rows.Err()
}

// loadDependents fetches the dependents of the given scenario IDs. The IDs
// come from an owner-filtered read in the same transaction.
func loadDependents(ctx context.Context, tx pgx.Tx, aggregates []*models.ScenarioAggregate, ids []string) error {
	if len(ids) == 0 {
		return nil
	}

	rows, err := tx.Query(ctx,
		`SELECT id, scenario_id, name, equity_percentage FROM founders
		 WHERE scenario_id = ANY($1) ORDER BY position`, ids)
	if err != nil {
		return fmt.Errorf("list founders: %w", err)
	}
	founders, err := pgx.CollectRows(rows, func(row pgx.CollectableRow) (models.Founder, error) {
		var f models.Founder
		err := row.Scan(&f.ID, &f.ScenarioID, &f.Name, &f.EquityPercentage)
		return f, err
	})
	if err != nil {
		return fmt.Errorf("scan founders: %w", err)
	}

	rows, err = tx.Query(ctx,
		`SELECT id, scenario_id, round_name, investment_amount, valuation FROM rounds
		 WHERE scenario_id = ANY($1) ORDER BY position`, ids)
	if err != nil {
		return fmt.Errorf("list rounds: %w", err)
	}
	rounds, err := pgx.CollectRows(rows, func(row pgx.CollectableRow) (models.FundingRound, error) {
		var r models.FundingRound
		err := row.Scan(&r.ID, &r.ScenarioID, &r.RoundName, &r.InvestmentAmount, &r.Valuation)
		return r, err
	})
	if err != nil {
		return fmt.Errorf("scan rounds: %w", err)
	}

	rows, err = tx.Query(ctx,
		`SELECT id, scenario_id, percentage FROM esop WHERE scenario_id = ANY($1)`, ids)
	if err != nil {
		return fmt.Errorf("list esop: %w", err)
	}
	esop, err := pgx.CollectRows(rows, func(row pgx.CollectableRow) (models.EsopPool, error) {
		var e models.EsopPool
		err := row.Scan(&e.ID, &e.ScenarioID, &e.Percentage)
		return e, err
	})
	if err != nil {
		return fmt.Errorf("scan esop: %w", err)
	}

	storage.Attach(aggregates, founders, rounds, esop)
	return nil
}

func (s *Store) UpdateScenarioName(ctx context.Context, ownerID, scenarioID, name string) (*models.Scenario, error) {
	scenario := &models.Scenario{}
	err := s.pool.QueryRow(ctx,
		`UPDATE scenarios SET name = $1, updated_at = now()
		 WHERE id = $2 AND owner_id = $3
		 RETURNING id, owner_id, name, created_at, updated_at`,
		name, scenarioID, ownerID,
	).Scan(&scenario.ID, &scenario.OwnerID, &scenario.Name, &scenario.CreatedAt, &scenario.UpdatedAt)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, fmt.Errorf("update scenario %s: %w", scenarioID, storage.ErrNotFound)
		}
		return nil, fmt.Errorf("update scenario %s: %w", scenarioID, err)
	}
	return scenario, nil
}

func (s *Store) DeleteScenario(ctx context.Context, ownerID, scenarioID string) (int64, error) {
	tag, err := s.pool.Exec(ctx, `DELETE FROM scenarios WHERE id = $1 AND owner_id = $2`, scenarioID, ownerID)
	if err != nil {
		return 0, fmt.Errorf("delete scenario %s: %w", scenarioID, err)
	}
	return tag.RowsAffected(), nil
}

// --- Dependents ---

func (s *Store) InsertFounders(ctx context.Context, ownerID, scenarioID string, founders []models.FounderInput) ([]models.Founder, error) {
	out := make([]models.Founder, len(founders))
	rows := make([][]any, len(founders))
	for i, in := range founders {
		out[i] = models.Founder{ID: uuid.New().String(), ScenarioID: scenarioID, Name: in.Name, EquityPercentage: in.EquityPercentage}
		rows[i] = []any{out[i].ID, scenarioID, i, in.Name, in.EquityPercentage}
	}
	err := s.copyOwned(ctx, ownerID, scenarioID, "founders",
		[]string{"id", "scenario_id", "position", "name", "equity_percentage"}, rows)
	if err != nil {
		return nil, err
	}
	return out, nil
}

func (s *Store) InsertRounds(ctx context.Context, ownerID, scenarioID string, rounds []models.RoundInput) ([]models.FundingRound, error) {
	out := make([]models.FundingRound, len(rounds))
	rows := make([][]any, len(rounds))
	for i, in := range rounds {
		out[i] = models.FundingRound{
			ID:               uuid.New().String(),
			ScenarioID:       scenarioID,
			RoundName:        in.RoundName,
			InvestmentAmount: in.InvestmentAmount,
			Valuation:        in.Valuation,
		}
		rows[i] = []any{out[i].ID, scenarioID, i, in.RoundName, in.InvestmentAmount, in.Valuation}
	}
	err := s.copyOwned(ctx, ownerID, scenarioID, "rounds",
		[]string{"id", "scenario_id", "position", "round_name", "investment_amount", "valuation"}, rows)
	if err != nil {
		return nil, err
	}
	return out, nil
}

func (s *Store) InsertEsop(ctx context.Context, ownerID, scenarioID string, esop []models.EsopInput) ([]models.EsopPool, error) {
	out := make([]models.EsopPool, len(esop))
	rows := make([][]any, len(esop))
	for i, in := range esop {
		out[i] = models.EsopPool{ID: uuid.New().String(), ScenarioID: scenarioID, Percentage: in.Percentage}
		rows[i] = []any{out[i].ID, scenarioID, in.Percentage}
	}
	err := s.copyOwned(ctx, ownerID, scenarioID, "esop",
		[]string{"id", "scenario_id", "percentage"}, rows)
	if err != nil {
		return nil, err
	}
	return out, nil
}

// copyOwned bulk-inserts rows into table inside one transaction, after
// locking the parent scenario row and checking that ownerID owns it.
func (s *Store) copyOwned(ctx context.Context, ownerID, scenarioID, table string, columns []string, rows [][]any) error {
	return pgx.BeginTxFunc(ctx, s.pool, pgx.TxOptions{}, func(tx pgx.Tx) error {
		var id string
		err := tx.QueryRow(ctx,
			`SELECT id FROM scenarios WHERE id = $1 AND owner_id = $2 FOR SHARE`,
			scenarioID, ownerID,
		).Scan(&id)
		if errors.Is(err, pgx.ErrNoRows) {
			return fmt.Errorf("insert %s into scenario %s: %w", table, scenarioID, storage.ErrRowPolicy)
		}
		if err != nil {
			return fmt.Errorf("check scenario owner: %w", err)
		}
		if len(rows) == 0 {
			return nil
		}
		if _, err := tx.CopyFrom(ctx, pgx.Identifier{table}, columns, pgx.CopyFromRows(rows)); err != nil {
			return fmt.Errorf("insert %s: %w", table, err)
		}
		return nil
	})
}

func (s *Store) DeleteFounders(ctx context.Context, ownerID, scenarioID string) (int64, error) {
	return s.deleteOwned(ctx, "founders", ownerID, scenarioID)
}

func (s *Store) DeleteRounds(ctx context.Context, ownerID, scenarioID string) (int64, error) {
	return s.deleteOwned(ctx, "rounds", ownerID, scenarioID)
}

func (s *Store) DeleteEsop(ctx context.Context, ownerID, scenarioID string) (int64, error) {
	return s.deleteOwned(ctx, "esop", ownerID, scenarioID)
}

func (s *Store) deleteOwned(ctx context.Context, table, ownerID, scenarioID string) (int64, error) {
	query := `DELETE FROM ` + pgx.Identifier{table}.Sanitize() + ` t
		USING scenarios s
		WHERE t.scenario_id = s.id AND s.id = $1 AND s.owner_id = $2`
	tag, err := s.pool.Exec(ctx, query, scenarioID, ownerID)
	if err != nil {
		return 0, fmt.Errorf("delete %s: %w", table, err)
	}
	return tag.RowsAffected(), nil
}

// --- Users ---

func (s *Store) CreateUser(ctx context.Context, user *models.User) error {
	_, err := s.pool.Exec(ctx,
		`INSERT INTO users (id, email, display_name, password_hash, created_at, updated_at)
		 VALUES ($1, $2, $3, $4, $5, $6)`,
		user.ID, strings.ToLower(user.Email), user.DisplayName, user.PasswordHash, user.CreatedAt, user.UpdatedAt,
	)
	if err != nil {
		return fmt.Errorf("create user: %w", err)
	}
	return nil
}

func (s *Store) GetUserByEmail(ctx context.Context, email string) (*models.User, error) {
	return s.getUser(ctx, "email", strings.ToLower(email))
}

func (s *Store) GetUserByID(ctx context.Context, id string) (*models.User, error) {
	return s.getUser(ctx, "id", id)
}

func (s *Store) getUser(ctx context.Context, column, value string) (*models.User, error) {
	user := &models.User{}
	err := s.pool.QueryRow(ctx,
		`SELECT id, email, display_name, password_hash, created_at, updated_at
		 FROM users WHERE `+pgx.Identifier{column}.Sanitize()+` = $1`, value,
	).Scan(&user.ID, &user.Email, &user.DisplayName, &user.PasswordHash, &user.CreatedAt, &user.UpdatedAt)
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("get user by %s: %w", column, err)
	}
	return user, nil
}
