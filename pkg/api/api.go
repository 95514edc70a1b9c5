// Package api defines the request and response messages of the equityplan
// RPC services. Messages travel as JSON.
package api

import "time"

// User is a registered account.
type User struct {
	ID          string    `json:"id"`
	Email       string    `json:"email"`
	DisplayName string    `json:"display_name"`
	CreatedAt   time.Time `json:"created_at"`
}

type RegisterRequest struct {
	Email       string `json:"email"`
	DisplayName string `json:"display_name"`
	Password    string `json:"password"`
}

type RegisterResponse struct {
	User  *User  `json:"user"`
	Token string `json:"token"`
}

type LoginRequest struct {
	Email    string `json:"email"`
	Password string `json:"password"`
}

type LoginResponse struct {
	User  *User  `json:"user"`
	Token string `json:"token"`
}

type GetCurrentUserRequest struct{}

type GetCurrentUserResponse struct {
	User *User `json:"user"`
}

// Scenario is a scenario row with its dependents embedded.
type Scenario struct {
	ID        string     `json:"id"`
	UserID    string     `json:"user_id"`
	Name      string     `json:"name"`
	CreatedAt time.Time  `json:"created_at"`
	UpdatedAt time.Time  `json:"updated_at"`
	Founders  []*Founder `json:"founders"`
	Rounds    []*Round   `json:"rounds"`
	Esop      *Esop      `json:"esop,omitempty"`
}

type Founder struct {
	ID         string  `json:"id,omitempty"`
	ScenarioID string  `json:"scenario_id,omitempty"`
	Name       string  `json:"name"`
	Equity     float64 `json:"equity"`
}

type Round struct {
	ID         string  `json:"id,omitempty"`
	ScenarioID string  `json:"scenario_id,omitempty"`
	RoundName  string  `json:"round_name"`
	Investment float64 `json:"investment"`
	Valuation  float64 `json:"valuation"`
}

type Esop struct {
	ID         string  `json:"id,omitempty"`
	ScenarioID string  `json:"scenario_id,omitempty"`
	Percentage float64 `json:"percentage"`
}

type CreateScenarioRequest struct {
	Name     string     `json:"name"`
	Founders []*Founder `json:"founders"`
	Rounds   []*Round   `json:"rounds"`
	Esop     *Esop      `json:"esop,omitempty"`
}

type CreateScenarioResponse struct {
	Scenario *Scenario `json:"scenario"`
}

type ListScenariosRequest struct{}

type ListScenariosResponse struct {
	Scenarios []*Scenario `json:"scenarios"`
}

type GetScenarioRequest struct {
	ScenarioID string `json:"scenario_id"`
}

type GetScenarioResponse struct {
	Scenario *Scenario `json:"scenario"`
}

type RenameScenarioRequest struct {
	ScenarioID string `json:"scenario_id"`
	Name       string `json:"name"`
}

type RenameScenarioResponse struct {
	Scenario *Scenario `json:"scenario"`
}

type DeleteScenarioRequest struct {
	ScenarioID string `json:"scenario_id"`
}

type DeleteScenarioResponse struct{}

type ReplaceFoundersRequest struct {
	ScenarioID string     `json:"scenario_id"`
	Founders   []*Founder `json:"founders"`
}

type ReplaceFoundersResponse struct {
	Founders []*Founder `json:"founders"`
}

type ReplaceRoundsRequest struct {
	ScenarioID string   `json:"scenario_id"`
	Rounds     []*Round `json:"rounds"`
}

type ReplaceRoundsResponse struct {
	Rounds []*Round `json:"rounds"`
}

// ReplaceEsopRequest clears the pool when Esop is empty. More than one
// entry is rejected.
type ReplaceEsopRequest struct {
	ScenarioID string  `json:"scenario_id"`
	Esop       []*Esop `json:"esop"`
}

type ReplaceEsopResponse struct {
	Esop *Esop `json:"esop,omitempty"`
}
