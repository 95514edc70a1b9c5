package postgres

import (
	"context"
	"errors"
	"os"
	"testing"

	"github.com/google/go-cmp/cmp"
	"github.com/google/uuid"

	"github.com/mmynk/equityplan/internal/models"
	"github.com/mmynk/equityplan/internal/storage"
)

// openTestStore connects to EQUITYPLAN_TEST_DATABASE_URL or skips.
func openTestStore(t *testing.T) *Store {
	t.Helper()

	dsn := os.Getenv("EQUITYPLAN_TEST_DATABASE_URL")
	if dsn == "" {
		t.Skip("EQUITYPLAN_TEST_DATABASE_URL not set")
	}
	store, err := Open(context.Background(), dsn)
	if err != nil {
		t.Fatalf("Open failed: %v", err)
	}
	t.Cleanup(func() { store.Close() })
	return store
}

func TestStore(t *testing.T) {
	store := openTestStore(t)
	ctx := context.Background()

	// Fresh owners keep runs against a shared database independent.
	owner := "owner-" + uuid.NewString()
	other := "other-" + uuid.NewString()

	scenario := &models.Scenario{OwnerID: owner, Name: "Seed Round Plan"}
	if err := store.InsertScenario(ctx, scenario); err != nil {
		t.Fatalf("InsertScenario failed: %v", err)
	}

	t.Run("dependents round trip", func(t *testing.T) {
		if _, err := store.InsertFounders(ctx, owner, scenario.ID, []models.FounderInput{
			{Name: "Alice", EquityPercentage: 60},
			{Name: "Bob", EquityPercentage: 40},
		}); err != nil {
			t.Fatalf("InsertFounders failed: %v", err)
		}
		if _, err := store.InsertRounds(ctx, owner, scenario.ID, []models.RoundInput{
			{RoundName: "Seed", InvestmentAmount: 500000, Valuation: 4000000},
		}); err != nil {
			t.Fatalf("InsertRounds failed: %v", err)
		}
		if _, err := store.InsertEsop(ctx, owner, scenario.ID, []models.EsopInput{{Percentage: 10}}); err != nil {
			t.Fatalf("InsertEsop failed: %v", err)
		}

		list, err := store.ListScenarios(ctx, owner)
		if err != nil {
			t.Fatalf("ListScenarios failed: %v", err)
		}
		if len(list) != 1 {
			t.Fatalf("expected 1 scenario, got %d", len(list))
		}
		got := list[0]
		if len(got.Founders) != 2 || got.Founders[0].Name != "Alice" {
			t.Errorf("founders mismatch: %+v", got.Founders)
		}
		if len(got.Rounds) != 1 || got.Esop == nil || got.Esop.Percentage != 10 {
			t.Errorf("rounds/esop mismatch: %+v %+v", got.Rounds, got.Esop)
		}
	})

	t.Run("row policy", func(t *testing.T) {
		_, err := store.InsertFounders(ctx, other, scenario.ID, []models.FounderInput{{Name: "Eve"}})
		if !errors.Is(err, storage.ErrRowPolicy) {
			t.Errorf("expected ErrRowPolicy, got %v", err)
		}
		if _, err := store.GetScenario(ctx, other, scenario.ID); !errors.Is(err, storage.ErrNotFound) {
			t.Errorf("expected ErrNotFound, got %v", err)
		}
		if _, err := store.UpdateScenarioName(ctx, other, scenario.ID, "x"); !errors.Is(err, storage.ErrNotFound) {
			t.Errorf("expected ErrNotFound, got %v", err)
		}
		if n, err := store.DeleteFounders(ctx, other, scenario.ID); err != nil || n != 0 {
			t.Errorf("foreign DeleteFounders: got (%d, %v)", n, err)
		}
	})

	t.Run("cascade delete", func(t *testing.T) {
		n, err := store.DeleteScenario(ctx, owner, scenario.ID)
		if err != nil || n != 1 {
			t.Fatalf("DeleteScenario: got (%d, %v)", n, err)
		}
		var count int
		if err := store.pool.QueryRow(ctx,
			`SELECT (SELECT COUNT(*) FROM founders WHERE scenario_id = $1)
			      + (SELECT COUNT(*) FROM rounds WHERE scenario_id = $1)
			      + (SELECT COUNT(*) FROM esop WHERE scenario_id = $1)`, scenario.ID,
		).Scan(&count); err != nil {
			t.Fatalf("count dependents: %v", err)
		}
		if count != 0 {
			t.Errorf("expected no dependents after cascade, got %d", count)
		}
	})
}

func TestListScenariosSameTimestamp(t *testing.T) {
	store := openTestStore(t)
	ctx := context.Background()
	owner := "owner-" + uuid.NewString()

	var want []string
	for _, name := range []string{"first", "second", "third"} {
		sc := &models.Scenario{OwnerID: owner, Name: name}
		if err := store.InsertScenario(ctx, sc); err != nil {
			t.Fatalf("InsertScenario failed: %v", err)
		}
		want = append([]string{name}, want...)
	}
	// Collapse created_at so only insertion order can break the tie.
	if _, err := store.pool.Exec(ctx,
		`UPDATE scenarios SET created_at = '2026-01-01T00:00:00Z' WHERE owner_id = $1`, owner); err != nil {
		t.Fatalf("update created_at: %v", err)
	}

	list, err := store.ListScenarios(ctx, owner)
	if err != nil {
		t.Fatalf("ListScenarios failed: %v", err)
	}
	var got []string
	for _, agg := range list {
		got = append(got, agg.Name)
	}
	if diff := cmp.Diff(want, got); diff != "" {
		t.Errorf("order mismatch (-want +got):\n%s", diff)
	}
}
