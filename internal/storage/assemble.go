package storage

import "github.com/mmynk/equityplan/internal/models"

// Attach distributes dependent rows onto their scenarios by ScenarioID,
// preserving the order the rows arrive in. Rows whose scenario is not in
// aggregates are dropped. Empty collections end up as empty, non-nil slices.
func Attach(aggregates []*models.ScenarioAggregate, founders []models.Founder, rounds []models.FundingRound, esop []models.EsopPool) {
	byID := make(map[string]*models.ScenarioAggregate, len(aggregates))
	for _, agg := range aggregates {
		if agg.Founders == nil {
			agg.Founders = []models.Founder{}
		}
		if agg.Rounds == nil {
			agg.Rounds = []models.FundingRound{}
		}
		byID[agg.ID] = agg
	}

	for _, f := range founders {
		if agg, ok := byID[f.ScenarioID]; ok {
			agg.Founders = append(agg.Founders, f)
		}
	}
	for _, r := range rounds {
		if agg, ok := byID[r.ScenarioID]; ok {
			agg.Rounds = append(agg.Rounds, r)
		}
	}
	for i := range esop {
		if agg, ok := byID[esop[i].ScenarioID]; ok && agg.Esop == nil {
			pool := esop[i]
			agg.Esop = &pool
		}
	}
}
