// Package validate normalizes and checks scenario input before it reaches
// the repository. The store enforces only non-negativity, so the rules
// users actually see live here.
package validate

import (
	"errors"
	"fmt"
	"strings"

	"github.com/mmynk/equityplan/internal/models"
)

// ErrInvalid is wrapped by every error this package returns.
var ErrInvalid = errors.New("invalid input")

// FieldError names the offending field, e.g. "founders[1].name".
type FieldError struct {
	Field   string
	Message string
}

func (e *FieldError) Error() string {
	return fmt.Sprintf("%s: %s", e.Field, e.Message)
}

func (e *FieldError) Unwrap() error { return ErrInvalid }

func invalid(field, format string, args ...any) error {
	return &FieldError{Field: field, Message: fmt.Sprintf(format, args...)}
}

// ScenarioName trims name and rejects it if nothing is left.
func ScenarioName(name string) (string, error) {
	name = strings.TrimSpace(name)
	if name == "" {
		return "", invalid("name", "please enter a scenario name")
	}
	return name, nil
}

// NewScenario returns a normalized copy of in. Names are trimmed, and an
// option pool of zero percent is dropped. A scenario needs at least one
// founder.
func NewScenario(in models.NewScenario) (models.NewScenario, error) {
	name, err := ScenarioName(in.Name)
	if err != nil {
		return models.NewScenario{}, err
	}
	if len(in.Founders) == 0 {
		return models.NewScenario{}, invalid("founders", "at least one founder is required")
	}

	founders, err := Founders(in.Founders)
	if err != nil {
		return models.NewScenario{}, err
	}
	rounds, err := Rounds(in.Rounds)
	if err != nil {
		return models.NewScenario{}, err
	}

	out := models.NewScenario{Name: name, Founders: founders, Rounds: rounds}
	if in.Esop != nil {
		esop, err := Esop([]models.EsopInput{*in.Esop})
		if err != nil {
			return models.NewScenario{}, err
		}
		if len(esop) == 1 {
			out.Esop = &esop[0]
		}
	}
	return out, nil
}

// Founders trims names and checks equity is a percentage.
func Founders(in []models.FounderInput) ([]models.FounderInput, error) {
	out := make([]models.FounderInput, 0, len(in))
	for i, f := range in {
		f.Name = strings.TrimSpace(f.Name)
		if f.Name == "" {
			return nil, invalid(fmt.Sprintf("founders[%d].name", i), "please fill in all founder names")
		}
		if err := percentage(fmt.Sprintf("founders[%d].equity", i), f.EquityPercentage); err != nil {
			return nil, err
		}
		out = append(out, f)
	}
	return out, nil
}

// Rounds trims names and checks amounts are non-negative.
func Rounds(in []models.RoundInput) ([]models.RoundInput, error) {
	out := make([]models.RoundInput, 0, len(in))
	for i, r := range in {
		r.RoundName = strings.TrimSpace(r.RoundName)
		if r.RoundName == "" {
			return nil, invalid(fmt.Sprintf("rounds[%d].round_name", i), "please fill in all round names")
		}
		if r.InvestmentAmount < 0 {
			return nil, invalid(fmt.Sprintf("rounds[%d].investment", i), "must not be negative, got %v", r.InvestmentAmount)
		}
		if r.Valuation < 0 {
			return nil, invalid(fmt.Sprintf("rounds[%d].valuation", i), "must not be negative, got %v", r.Valuation)
		}
		out = append(out, r)
	}
	return out, nil
}

// Esop accepts at most one pool, checks it is a percentage and drops it when
// it is zero.
func Esop(in []models.EsopInput) ([]models.EsopInput, error) {
	if len(in) > 1 {
		return nil, invalid("esop", "at most one esop pool per scenario, got %d", len(in))
	}
	out := make([]models.EsopInput, 0, len(in))
	for i, e := range in {
		if err := percentage(fmt.Sprintf("esop[%d].percentage", i), e.Percentage); err != nil {
			return nil, err
		}
		if e.Percentage > 0 {
			out = append(out, e)
		}
	}
	return out, nil
}

func percentage(field string, v float64) error {
	if v < 0 || v > 100 {
		return invalid(field, "must be between 0 and 100, got %v", v)
	}
	return nil
}
