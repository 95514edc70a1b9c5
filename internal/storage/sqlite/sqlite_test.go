package sqlite

import (
	"context"
	"errors"
	"path/filepath"
	"testing"

	"github.com/mmynk/equityplan/internal/models"
	"github.com/mmynk/equityplan/internal/storage"
)

func newTestStore(t *testing.T) *SQLiteStore {
	t.Helper()

	store, err := New(filepath.Join(t.TempDir(), "test.db"))
	if err != nil {
		t.Fatalf("Failed to create store: %v", err)
	}
	t.Cleanup(func() { store.Close() })
	return store
}

func insertScenario(t *testing.T, store *SQLiteStore, owner, name string) *models.Scenario {
	t.Helper()

	scenario := &models.Scenario{OwnerID: owner, Name: name}
	if err := store.InsertScenario(context.Background(), scenario); err != nil {
		t.Fatalf("InsertScenario failed: %v", err)
	}
	return scenario
}

func TestSQLiteStore(t *testing.T) {
	store := newTestStore(t)
	ctx := context.Background()

	t.Run("InsertScenario assigns ID and timestamps", func(t *testing.T) {
		scenario := insertScenario(t, store, "alice", "Seed Round Plan")

		if scenario.ID == "" {
			t.Error("Expected scenario ID to be generated")
		}
		if scenario.CreatedAt.IsZero() || scenario.UpdatedAt.IsZero() {
			t.Error("Expected timestamps to be set")
		}
	})

	t.Run("InsertScenario requires owner", func(t *testing.T) {
		err := store.InsertScenario(ctx, &models.Scenario{Name: "Orphan"})
		if err == nil {
			t.Error("Expected error for scenario without owner")
		}
	})

	t.Run("GetScenario embeds dependents in insertion order", func(t *testing.T) {
		scenario := insertScenario(t, store, "alice", "Embed")

		founders, err := store.InsertFounders(ctx, "alice", scenario.ID, []models.FounderInput{
			{Name: "Alice", EquityPercentage: 60},
			{Name: "Bob", EquityPercentage: 40},
		})
		if err != nil {
			t.Fatalf("InsertFounders failed: %v", err)
		}
		if len(founders) != 2 || founders[0].ScenarioID != scenario.ID {
			t.Fatalf("Unexpected founders: %+v", founders)
		}
		if _, err := store.InsertRounds(ctx, "alice", scenario.ID, []models.RoundInput{
			{RoundName: "Seed", InvestmentAmount: 500000, Valuation: 4000000},
		}); err != nil {
			t.Fatalf("InsertRounds failed: %v", err)
		}
		if _, err := store.InsertEsop(ctx, "alice", scenario.ID, []models.EsopInput{{Percentage: 10}}); err != nil {
			t.Fatalf("InsertEsop failed: %v", err)
		}

		agg, err := store.GetScenario(ctx, "alice", scenario.ID)
		if err != nil {
			t.Fatalf("GetScenario failed: %v", err)
		}
		if agg.Name != "Embed" {
			t.Errorf("Name mismatch: got %s", agg.Name)
		}
		if len(agg.Founders) != 2 || agg.Founders[0].Name != "Alice" || agg.Founders[1].Name != "Bob" {
			t.Errorf("Founders mismatch: %+v", agg.Founders)
		}
		if len(agg.Rounds) != 1 || agg.Rounds[0].Valuation != 4000000 {
			t.Errorf("Rounds mismatch: %+v", agg.Rounds)
		}
		if agg.Esop == nil || agg.Esop.Percentage != 10 {
			t.Errorf("Esop mismatch: %+v", agg.Esop)
		}
	})

	t.Run("GetScenario hides other owners", func(t *testing.T) {
		scenario := insertScenario(t, store, "alice", "Private")

		_, err := store.GetScenario(ctx, "mallory", scenario.ID)
		if !errors.Is(err, storage.ErrNotFound) {
			t.Errorf("Expected ErrNotFound, got %v", err)
		}
	})

	t.Run("Insert dependents under foreign scenario violates policy", func(t *testing.T) {
		scenario := insertScenario(t, store, "alice", "Guarded")

		_, err := store.InsertFounders(ctx, "mallory", scenario.ID, []models.FounderInput{{Name: "Eve", EquityPercentage: 100}})
		if !errors.Is(err, storage.ErrRowPolicy) {
			t.Errorf("Expected ErrRowPolicy, got %v", err)
		}
		_, err = store.InsertRounds(ctx, "alice", "missing-scenario", []models.RoundInput{{RoundName: "A"}})
		if !errors.Is(err, storage.ErrRowPolicy) {
			t.Errorf("Expected ErrRowPolicy for missing scenario, got %v", err)
		}
	})

	t.Run("Second esop row is rejected", func(t *testing.T) {
		scenario := insertScenario(t, store, "alice", "One pool")

		if _, err := store.InsertEsop(ctx, "alice", scenario.ID, []models.EsopInput{{Percentage: 10}}); err != nil {
			t.Fatalf("InsertEsop failed: %v", err)
		}
		if _, err := store.InsertEsop(ctx, "alice", scenario.ID, []models.EsopInput{{Percentage: 5}}); err == nil {
			t.Error("Expected unique violation for second esop row")
		}
	})

	t.Run("Negative equity violates check constraint", func(t *testing.T) {
		scenario := insertScenario(t, store, "alice", "Checks")

		_, err := store.InsertFounders(ctx, "alice", scenario.ID, []models.FounderInput{
			{Name: "Ok", EquityPercentage: 50},
			{Name: "Bad", EquityPercentage: -1},
		})
		if err == nil {
			t.Fatal("Expected check constraint error")
		}

		// The batch is one call, so the valid row was not kept either.
		agg, err := store.GetScenario(ctx, "alice", scenario.ID)
		if err != nil {
			t.Fatalf("GetScenario failed: %v", err)
		}
		if len(agg.Founders) != 0 {
			t.Errorf("Expected 0 founders after failed batch, got %d", len(agg.Founders))
		}
	})

	t.Run("UpdateScenarioName", func(t *testing.T) {
		scenario := insertScenario(t, store, "alice", "Before")

		updated, err := store.UpdateScenarioName(ctx, "alice", scenario.ID, "After")
		if err != nil {
			t.Fatalf("UpdateScenarioName failed: %v", err)
		}
		if updated.Name != "After" {
			t.Errorf("Name not updated: got %s", updated.Name)
		}
		if !updated.CreatedAt.Equal(scenario.CreatedAt) {
			t.Errorf("CreatedAt changed: got %v, want %v", updated.CreatedAt, scenario.CreatedAt)
		}

		_, err = store.UpdateScenarioName(ctx, "mallory", scenario.ID, "Hijacked")
		if !errors.Is(err, storage.ErrNotFound) {
			t.Errorf("Expected ErrNotFound for foreign owner, got %v", err)
		}
	})

	t.Run("DeleteScenario cascades to dependents", func(t *testing.T) {
		scenario := insertScenario(t, store, "alice", "Doomed")
		store.InsertFounders(ctx, "alice", scenario.ID, []models.FounderInput{{Name: "A", EquityPercentage: 100}})
		store.InsertRounds(ctx, "alice", scenario.ID, []models.RoundInput{{RoundName: "Seed", InvestmentAmount: 1, Valuation: 10}})
		store.InsertEsop(ctx, "alice", scenario.ID, []models.EsopInput{{Percentage: 10}})

		n, err := store.DeleteScenario(ctx, "mallory", scenario.ID)
		if err != nil || n != 0 {
			t.Fatalf("Foreign delete: got (%d, %v), want (0, nil)", n, err)
		}

		n, err = store.DeleteScenario(ctx, "alice", scenario.ID)
		if err != nil || n != 1 {
			t.Fatalf("DeleteScenario: got (%d, %v), want (1, nil)", n, err)
		}

		for _, table := range []string{"founders", "rounds", "esop"} {
			var count int
			if err := store.db.QueryRowContext(ctx,
				"SELECT COUNT(*) FROM "+table+" WHERE scenario_id = ?", scenario.ID,
			).Scan(&count); err != nil {
				t.Fatalf("count %s: %v", table, err)
			}
			if count != 0 {
				t.Errorf("Expected 0 %s rows after cascade, got %d", table, count)
			}
		}
	})

	t.Run("Delete dependents is owner scoped", func(t *testing.T) {
		scenario := insertScenario(t, store, "alice", "Scoped")
		store.InsertFounders(ctx, "alice", scenario.ID, []models.FounderInput{{Name: "A", EquityPercentage: 100}})

		n, err := store.DeleteFounders(ctx, "mallory", scenario.ID)
		if err != nil || n != 0 {
			t.Errorf("Foreign DeleteFounders: got (%d, %v), want (0, nil)", n, err)
		}
		n, err = store.DeleteFounders(ctx, "alice", scenario.ID)
		if err != nil || n != 1 {
			t.Errorf("DeleteFounders: got (%d, %v), want (1, nil)", n, err)
		}
	})
}

func TestListScenarios(t *testing.T) {
	store := newTestStore(t)
	ctx := context.Background()

	t.Run("Empty owner returns empty slice", func(t *testing.T) {
		list, err := store.ListScenarios(ctx, "nobody")
		if err != nil {
			t.Fatalf("ListScenarios failed: %v", err)
		}
		if list == nil || len(list) != 0 {
			t.Errorf("Expected empty non-nil slice, got %#v", list)
		}
	})

	first := insertScenario(t, store, "alice", "First")
	second := insertScenario(t, store, "alice", "Second")
	insertScenario(t, store, "bob", "Bob's")
	store.InsertFounders(ctx, "alice", first.ID, []models.FounderInput{{Name: "F", EquityPercentage: 100}})

	t.Run("Newest first and owner scoped", func(t *testing.T) {
		list, err := store.ListScenarios(ctx, "alice")
		if err != nil {
			t.Fatalf("ListScenarios failed: %v", err)
		}
		if len(list) != 2 {
			t.Fatalf("Expected 2 scenarios, got %d", len(list))
		}
		if list[0].ID != second.ID || list[1].ID != first.ID {
			t.Errorf("Order mismatch: got [%s, %s]", list[0].Name, list[1].Name)
		}
		if len(list[1].Founders) != 1 {
			t.Errorf("Expected founder embedded in first scenario, got %d", len(list[1].Founders))
		}
		if list[0].Founders == nil || list[0].Rounds == nil {
			t.Error("Expected non-nil empty dependent slices")
		}
		if list[0].Esop != nil {
			t.Errorf("Expected no esop, got %+v", list[0].Esop)
		}
	})
}

func TestUsers(t *testing.T) {
	store := newTestStore(t)
	ctx := context.Background()

	user := models.NewUser("Alice@Example.com", "Alice", "hash")
	if err := store.CreateUser(ctx, user); err != nil {
		t.Fatalf("CreateUser failed: %v", err)
	}

	got, err := store.GetUserByEmail(ctx, "alice@example.com")
	if err != nil || got == nil {
		t.Fatalf("GetUserByEmail: got (%v, %v)", got, err)
	}
	if got.ID != user.ID || got.DisplayName != "Alice" {
		t.Errorf("User mismatch: %+v", got)
	}

	byID, err := store.GetUserByID(ctx, user.ID)
	if err != nil || byID == nil || byID.Email != "alice@example.com" {
		t.Errorf("GetUserByID: got (%+v, %v)", byID, err)
	}

	missing, err := store.GetUserByID(ctx, "nope")
	if err != nil || missing != nil {
		t.Errorf("Expected (nil, nil) for missing user, got (%v, %v)", missing, err)
	}

	if err := store.CreateUser(ctx, models.NewUser("alice@example.com", "Dup", "hash")); err == nil {
		t.Error("Expected unique violation for duplicate email")
	}
}
