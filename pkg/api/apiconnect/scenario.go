package apiconnect

import (
	"context"
	"net/http"
	"strings"

	"connectrpc.com/connect"

	"github.com/mmynk/equityplan/pkg/api"
)

// ScenarioServiceName is the fully-qualified name of the ScenarioService.
const ScenarioServiceName = "equityplan.v1.ScenarioService"

// Procedure paths of the ScenarioService.
const (
	ScenarioServiceCreateScenarioProcedure  = "/equityplan.v1.ScenarioService/CreateScenario"
	ScenarioServiceListScenariosProcedure   = "/equityplan.v1.ScenarioService/ListScenarios"
	ScenarioServiceGetScenarioProcedure     = "/equityplan.v1.ScenarioService/GetScenario"
	ScenarioServiceRenameScenarioProcedure  = "/equityplan.v1.ScenarioService/RenameScenario"
	ScenarioServiceDeleteScenarioProcedure  = "/equityplan.v1.ScenarioService/DeleteScenario"
	ScenarioServiceReplaceFoundersProcedure = "/equityplan.v1.ScenarioService/ReplaceFounders"
	ScenarioServiceReplaceRoundsProcedure   = "/equityplan.v1.ScenarioService/ReplaceRounds"
	ScenarioServiceReplaceEsopProcedure     = "/equityplan.v1.ScenarioService/ReplaceEsop"
)

// ScenarioServiceHandler is implemented by the server side of the ScenarioService.
type ScenarioServiceHandler interface {
	CreateScenario(context.Context, *connect.Request[api.CreateScenarioRequest]) (*connect.Response[api.CreateScenarioResponse], error)
	ListScenarios(context.Context, *connect.Request[api.ListScenariosRequest]) (*connect.Response[api.ListScenariosResponse], error)
	GetScenario(context.Context, *connect.Request[api.GetScenarioRequest]) (*connect.Response[api.GetScenarioResponse], error)
	RenameScenario(context.Context, *connect.Request[api.RenameScenarioRequest]) (*connect.Response[api.RenameScenarioResponse], error)
	DeleteScenario(context.Context, *connect.Request[api.DeleteScenarioRequest]) (*connect.Response[api.DeleteScenarioResponse], error)
	ReplaceFounders(context.Context, *connect.Request[api.ReplaceFoundersRequest]) (*connect.Response[api.ReplaceFoundersResponse], error)
	ReplaceRounds(context.Context, *connect.Request[api.ReplaceRoundsRequest]) (*connect.Response[api.ReplaceRoundsResponse], error)
	ReplaceEsop(context.Context, *connect.Request[api.ReplaceEsopRequest]) (*connect.Response[api.ReplaceEsopResponse], error)
}

// NewScenarioServiceHandler builds an HTTP handler from the service
// implementation. It returns the path on which to mount the handler and the
// handler itself.
func NewScenarioServiceHandler(svc ScenarioServiceHandler, opts ...connect.HandlerOption) (string, http.Handler) {
	opts = append([]connect.HandlerOption{Codec()}, opts...)

	routes := map[string]http.Handler{
		ScenarioServiceCreateScenarioProcedure: connect.NewUnaryHandler(
			ScenarioServiceCreateScenarioProcedure, svc.CreateScenario, opts...),
		ScenarioServiceListScenariosProcedure: connect.NewUnaryHandler(
			ScenarioServiceListScenariosProcedure, svc.ListScenarios, opts...),
		ScenarioServiceGetScenarioProcedure: connect.NewUnaryHandler(
			ScenarioServiceGetScenarioProcedure, svc.GetScenario, opts...),
		ScenarioServiceRenameScenarioProcedure: connect.NewUnaryHandler(
			ScenarioServiceRenameScenarioProcedure, svc.RenameScenario, opts...),
		ScenarioServiceDeleteScenarioProcedure: connect.NewUnaryHandler(
			ScenarioServiceDeleteScenarioProcedure, svc.DeleteScenario, opts...),
		ScenarioServiceReplaceFoundersProcedure: connect.NewUnaryHandler(
			ScenarioServiceReplaceFoundersProcedure, svc.ReplaceFounders, opts...),
		ScenarioServiceReplaceRoundsProcedure: connect.NewUnaryHandler(
			ScenarioServiceReplaceRoundsProcedure, svc.ReplaceRounds, opts...),
		ScenarioServiceReplaceEsopProcedure: connect.NewUnaryHandler(
			ScenarioServiceReplaceEsopProcedure, svc.ReplaceEsop, opts...),
	}
	return "/" + ScenarioServiceName + "/", router(routes)
}

// ScenarioServiceClient is a client for the ScenarioService.
type ScenarioServiceClient struct {
	createScenario  *connect.Client[api.CreateScenarioRequest, api.CreateScenarioResponse]
	listScenarios   *connect.Client[api.ListScenariosRequest, api.ListScenariosResponse]
	getScenario     *connect.Client[api.GetScenarioRequest, api.GetScenarioResponse]
	renameScenario  *connect.Client[api.RenameScenarioRequest, api.RenameScenarioResponse]
	deleteScenario  *connect.Client[api.DeleteScenarioRequest, api.DeleteScenarioResponse]
	replaceFounders *connect.Client[api.ReplaceFoundersRequest, api.ReplaceFoundersResponse]
	replaceRounds   *connect.Client[api.ReplaceRoundsRequest, api.ReplaceRoundsResponse]
	replaceEsop     *connect.Client[api.ReplaceEsopRequest, api.ReplaceEsopResponse]
}

// NewScenarioServiceClient constructs a client for the ScenarioService at
// baseURL, e.g. http://localhost:8080.
func NewScenarioServiceClient(httpClient connect.HTTPClient, baseURL string, opts ...connect.ClientOption) *ScenarioServiceClient {
	baseURL = strings.TrimRight(baseURL, "/")
	opts = append([]connect.ClientOption{Codec()}, opts...)

	return &ScenarioServiceClient{
		createScenario: connect.NewClient[api.CreateScenarioRequest, api.CreateScenarioResponse](
			httpClient, baseURL+ScenarioServiceCreateScenarioProcedure, opts...),
		listScenarios: connect.NewClient[api.ListScenariosRequest, api.ListScenariosResponse](
			httpClient, baseURL+ScenarioServiceListScenariosProcedure, opts...),
		getScenario: connect.NewClient[api.GetScenarioRequest, api.GetScenarioResponse](
			httpClient, baseURL+ScenarioServiceGetScenarioProcedure, opts...),
		renameScenario: connect.NewClient[api.RenameScenarioRequest, api.RenameScenarioResponse](
			httpClient, baseURL+ScenarioServiceRenameScenarioProcedure, opts...),
		deleteScenario: connect.NewClient[api.DeleteScenarioRequest, api.DeleteScenarioResponse](
			httpClient, baseURL+ScenarioServiceDeleteScenarioProcedure, opts...),
		replaceFounders: connect.NewClient[api.ReplaceFoundersRequest, api.ReplaceFoundersResponse](
			httpClient, baseURL+ScenarioServiceReplaceFoundersProcedure, opts...),
		replaceRounds: connect.NewClient[api.ReplaceRoundsRequest, api.ReplaceRoundsResponse](
			httpClient, baseURL+ScenarioServiceReplaceRoundsProcedure, opts...),
		replaceEsop: connect.NewClient[api.ReplaceEsopRequest, api.ReplaceEsopResponse](
			httpClient, baseURL+ScenarioServiceReplaceEsopProcedure, opts...),
	}
}

func (c *ScenarioServiceClient) CreateScenario(ctx context.Context, req *connect.Request[api.CreateScenarioRequest]) (*connect.Response[api.CreateScenarioResponse], error) {
	return c.createScenario.CallUnary(ctx, req)
}

func (c *ScenarioServiceClient) ListScenarios(ctx context.Context, req *connect.Request[api.ListScenariosRequest]) (*connect.Response[api.ListScenariosResponse], error) {
	return c.listScenarios.CallUnary(ctx, req)
}

func (c *ScenarioServiceClient) GetScenario(ctx context.Context, req *connect.Request[api.GetScenarioRequest]) (*connect.Response[api.GetScenarioResponse], error) {
	return c.getScenario.CallUnary(ctx, req)
}

func (c *ScenarioServiceClient) RenameScenario(ctx context.Context, req *connect.Request[api.RenameScenarioRequest]) (*connect.Response[api.RenameScenarioResponse], error) {
	return c.renameScenario.CallUnary(ctx, req)
}

func (c *ScenarioServiceClient) DeleteScenario(ctx context.Context, req *connect.Request[api.DeleteScenarioRequest]) (*connect.Response[api.DeleteScenarioResponse], error) {
	return c.deleteScenario.CallUnary(ctx, req)
}

func (c *ScenarioServiceClient) ReplaceFounders(ctx context.Context, req *connect.Request[api.ReplaceFoundersRequest]) (*connect.Response[api.ReplaceFoundersResponse], error) {
	return c.replaceFounders.CallUnary(ctx, req)
}

func (c *ScenarioServiceClient) ReplaceRounds(ctx context.Context, req *connect.Request[api.ReplaceRoundsRequest]) (*connect.Response[api.ReplaceRoundsResponse], error) {
	return c.replaceRounds.CallUnary(ctx, req)
}

func (c *ScenarioServiceClient) ReplaceEsop(ctx context.Context, req *connect.Request[api.ReplaceEsopRequest]) (*connect.Response[api.ReplaceEsopResponse], error) {
	return c.replaceEsop.CallUnary(ctx, req)
}

// router dispatches on the exact procedure path.
func router(routes map[string]http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		h, ok := routes[r.URL.Path]
		if !ok {
			http.NotFound(w, r)
			return
		}
		h.ServeHTTP(w, r)
	})
}
