package service

import (
	"time"

	"github.com/mmynk/equityplan/internal/models"
	"github.com/mmynk/equityplan/pkg/api"
)

func toAPIScenario(agg *models.ScenarioAggregate) *api.Scenario {
	out := &api.Scenario{
		ID:        agg.ID,
		UserID:    agg.OwnerID,
		Name:      agg.Name,
		CreatedAt: agg.CreatedAt,
		UpdatedAt: agg.UpdatedAt,
		Founders:  toAPIFounders(agg.Founders),
		Rounds:    toAPIRounds(agg.Rounds),
	}
	if agg.Esop != nil {
		out.Esop = toAPIEsop(*agg.Esop)
	}
	return out
}

func toAPIFounders(in []models.Founder) []*api.Founder {
	out := make([]*api.Founder, len(in))
	for i, f := range in {
		out[i] = &api.Founder{
			ID:         f.ID,
			ScenarioID: f.ScenarioID,
			Name:       f.Name,
			Equity:     f.EquityPercentage,
		}
	}
	return out
}

func toAPIRounds(in []models.FundingRound) []*api.Round {
	out := make([]*api.Round, len(in))
	for i, r := range in {
		out[i] = &api.Round{
			ID:         r.ID,
			ScenarioID: r.ScenarioID,
			RoundName:  r.RoundName,
			Investment: r.InvestmentAmount,
			Valuation:  r.Valuation,
		}
	}
	return out
}

func toAPIEsop(e models.EsopPool) *api.Esop {
	return &api.Esop{ID: e.ID, ScenarioID: e.ScenarioID, Percentage: e.Percentage}
}

// Nil entries in request slices are skipped.

func fromAPIFounders(in []*api.Founder) []models.FounderInput {
	out := make([]models.FounderInput, 0, len(in))
	for _, f := range in {
		if f == nil {
			continue
		}
		out = append(out, models.FounderInput{Name: f.Name, EquityPercentage: f.Equity})
	}
	return out
}

func fromAPIRounds(in []*api.Round) []models.RoundInput {
	out := make([]models.RoundInput, 0, len(in))
	for _, r := range in {
		if r == nil {
			continue
		}
		out = append(out, models.RoundInput{
			RoundName:        r.RoundName,
			InvestmentAmount: r.Investment,
			Valuation:        r.Valuation,
		})
	}
	return out
}

func fromAPIEsop(in []*api.Esop) []models.EsopInput {
	out := make([]models.EsopInput, 0, len(in))
	for _, e := range in {
		if e == nil {
			continue
		}
		out = append(out, models.EsopInput{Percentage: e.Percentage})
	}
	return out
}

func toAPIUser(u *models.User) *api.User {
	return &api.User{
		ID:          u.ID,
		Email:       u.Email,
		DisplayName: u.DisplayName,
		CreatedAt:   time.Unix(u.CreatedAt, 0).UTC(),
	}
}
