package service

import (
	"context"
	"log/slog"

	"connectrpc.com/connect"

	"github.com/mmynk/equityplan/internal/models"
	"github.com/mmynk/equityplan/internal/scenario"
	"github.com/mmynk/equityplan/internal/validate"
	"github.com/mmynk/equityplan/pkg/api"
)

// ScenarioService implements the ScenarioService RPC interface on top of
// the scenario repository. Input is validated here; ownership and the write
// protocol are the repository's job.
type ScenarioService struct {
	repo   *scenario.Repository
	logger *slog.Logger
}

// NewScenarioService creates a new scenario service.
func NewScenarioService(repo *scenario.Repository, logger *slog.Logger) *ScenarioService {
	return &ScenarioService{repo: repo, logger: logger}
}

// CreateScenario creates a scenario with its founders, rounds and optional pool.
func (s *ScenarioService) CreateScenario(ctx context.Context, req *connect.Request[api.CreateScenarioRequest]) (*connect.Response[api.CreateScenarioResponse], error) {
	s.logger.InfoContext(ctx, "CreateScenario request",
		"name", req.Msg.Name,
		"founders", len(req.Msg.Founders),
		"rounds", len(req.Msg.Rounds),
	)

	in := models.NewScenario{
		Name:     req.Msg.Name,
		Founders: fromAPIFounders(req.Msg.Founders),
		Rounds:   fromAPIRounds(req.Msg.Rounds),
	}
	if req.Msg.Esop != nil {
		in.Esop = &models.EsopInput{Percentage: req.Msg.Esop.Percentage}
	}

	in, err := validate.NewScenario(in)
	if err != nil {
		return nil, toConnectError(err)
	}

	agg, err := s.repo.CreateScenarioAggregate(ctx, in)
	if err != nil {
		return nil, toConnectError(err)
	}

	return connect.NewResponse(&api.CreateScenarioResponse{Scenario: toAPIScenario(agg)}), nil
}

// ListScenarios returns the caller's scenarios, newest first.
func (s *ScenarioService) ListScenarios(ctx context.Context, req *connect.Request[api.ListScenariosRequest]) (*connect.Response[api.ListScenariosResponse], error) {
	list, err := s.repo.ListScenariosForCurrentUser(ctx)
	if err != nil {
		return nil, toConnectError(err)
	}

	out := make([]*api.Scenario, len(list))
	for i, agg := range list {
		out[i] = toAPIScenario(agg)
	}

	s.logger.DebugContext(ctx, "ListScenarios", "count", len(out))
	return connect.NewResponse(&api.ListScenariosResponse{Scenarios: out}), nil
}

// GetScenario returns one of the caller's scenarios.
func (s *ScenarioService) GetScenario(ctx context.Context, req *connect.Request[api.GetScenarioRequest]) (*connect.Response[api.GetScenarioResponse], error) {
	if req.Msg.ScenarioID == "" {
		return nil, missing("scenario_id")
	}

	agg, err := s.repo.GetScenarioAggregate(ctx, req.Msg.ScenarioID)
	if err != nil {
		return nil, toConnectError(err)
	}
	return connect.NewResponse(&api.GetScenarioResponse{Scenario: toAPIScenario(agg)}), nil
}

// RenameScenario changes a scenario's name and returns the full scenario.
func (s *ScenarioService) RenameScenario(ctx context.Context, req *connect.Request[api.RenameScenarioRequest]) (*connect.Response[api.RenameScenarioResponse], error) {
	if req.Msg.ScenarioID == "" {
		return nil, missing("scenario_id")
	}
	name, err := validate.ScenarioName(req.Msg.Name)
	if err != nil {
		return nil, toConnectError(err)
	}

	if _, err := s.repo.RenameScenario(ctx, req.Msg.ScenarioID, name); err != nil {
		return nil, toConnectError(err)
	}
	agg, err := s.repo.GetScenarioAggregate(ctx, req.Msg.ScenarioID)
	if err != nil {
		return nil, toConnectError(err)
	}

	s.logger.InfoContext(ctx, "Scenario renamed", "scenario_id", agg.ID, "name", agg.Name)
	return connect.NewResponse(&api.RenameScenarioResponse{Scenario: toAPIScenario(agg)}), nil
}

// DeleteScenario deletes a scenario and, by cascade, its dependents.
// Unknown ids succeed.
func (s *ScenarioService) DeleteScenario(ctx context.Context, req *connect.Request[api.DeleteScenarioRequest]) (*connect.Response[api.DeleteScenarioResponse], error) {
	if req.Msg.ScenarioID == "" {
		return nil, missing("scenario_id")
	}

	if err := s.repo.DeleteScenarioAggregate(ctx, req.Msg.ScenarioID); err != nil {
		return nil, toConnectError(err)
	}

	s.logger.InfoContext(ctx, "Scenario deleted", "scenario_id", req.Msg.ScenarioID)
	return connect.NewResponse(&api.DeleteScenarioResponse{}), nil
}

// ReplaceFounders swaps the scenario's founders for the given set.
func (s *ScenarioService) ReplaceFounders(ctx context.Context, req *connect.Request[api.ReplaceFoundersRequest]) (*connect.Response[api.ReplaceFoundersResponse], error) {
	if req.Msg.ScenarioID == "" {
		return nil, missing("scenario_id")
	}
	founders, err := validate.Founders(fromAPIFounders(req.Msg.Founders))
	if err != nil {
		return nil, toConnectError(err)
	}

	out, err := s.repo.ReplaceFounders(ctx, req.Msg.ScenarioID, founders)
	if err != nil {
		return nil, toConnectError(err)
	}
	return connect.NewResponse(&api.ReplaceFoundersResponse{Founders: toAPIFounders(out)}), nil
}

// ReplaceRounds swaps the scenario's funding rounds for the given set.
func (s *ScenarioService) ReplaceRounds(ctx context.Context, req *connect.Request[api.ReplaceRoundsRequest]) (*connect.Response[api.ReplaceRoundsResponse], error) {
	if req.Msg.ScenarioID == "" {
		return nil, missing("scenario_id")
	}
	rounds, err := validate.Rounds(fromAPIRounds(req.Msg.Rounds))
	if err != nil {
		return nil, toConnectError(err)
	}

	out, err := s.repo.ReplaceRounds(ctx, req.Msg.ScenarioID, rounds)
	if err != nil {
		return nil, toConnectError(err)
	}
	return connect.NewResponse(&api.ReplaceRoundsResponse{Rounds: toAPIRounds(out)}), nil
}

// ReplaceEsop sets or clears the scenario's option pool.
func (s *ScenarioService) ReplaceEsop(ctx context.Context, req *connect.Request[api.ReplaceEsopRequest]) (*connect.Response[api.ReplaceEsopResponse], error) {
	if req.Msg.ScenarioID == "" {
		return nil, missing("scenario_id")
	}
	esop, err := validate.Esop(fromAPIEsop(req.Msg.Esop))
	if err != nil {
		return nil, toConnectError(err)
	}

	out, err := s.repo.ReplaceEsop(ctx, req.Msg.ScenarioID, esop)
	if err != nil {
		return nil, toConnectError(err)
	}

	resp := &api.ReplaceEsopResponse{}
	if len(out) > 0 {
		resp.Esop = toAPIEsop(out[0])
	}
	return connect.NewResponse(resp), nil
}
