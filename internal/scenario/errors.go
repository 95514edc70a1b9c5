package scenario

import (
	"errors"
	"fmt"
	"strings"
)

var (
	// ErrUnauthenticated is returned before any store call when the context
	// carries no caller identity.
	ErrUnauthenticated = errors.New("user not authenticated")

	// ErrNotFound means the scenario does not exist or is not the caller's.
	// The two cases are deliberately indistinguishable.
	ErrNotFound = errors.New("scenario not found")

	// ErrInvalidArgument is returned for input the repository refuses to
	// send to the store at all.
	ErrInvalidArgument = errors.New("invalid argument")

	// ErrPartialAggregate matches a *StoreError raised after an earlier step
	// of the same operation had already committed. The aggregate is left in
	// the intermediate state described by StoreError.Committed.
	ErrPartialAggregate = errors.New("aggregate partially written")
)

// Step names one store call within a repository operation.
type Step string

const (
	StepInsertScenario Step = "insert_scenario"
	StepInsertFounders Step = "insert_founders"
	StepInsertRounds   Step = "insert_rounds"
	StepInsertEsop     Step = "insert_esop"
	StepDeleteFounders Step = "delete_founders"
	StepDeleteRounds   Step = "delete_rounds"
	StepDeleteEsop     Step = "delete_esop"
	StepListScenarios  Step = "list_scenarios"
	StepGetScenario    Step = "get_scenario"
	StepRenameScenario Step = "rename_scenario"
	StepDeleteScenario Step = "delete_scenario"
)

// StoreError is a store failure surfaced by the repository. The store's own
// error is kept opaque and reachable through errors.Unwrap.
type StoreError struct {
	// Op is the repository operation, e.g. "create_scenario".
	Op string
	// Step is the store call that failed.
	Step Step
	// Committed lists the earlier steps of Op that changed stored state
	// and were not rolled back.
	Committed []Step
	Err       error
}

func (e *StoreError) Error() string {
	var b strings.Builder
	fmt.Fprintf(&b, "%s: %s failed", e.Op, e.Step)
	if len(e.Committed) > 0 {
		names := make([]string, len(e.Committed))
		for i, s := range e.Committed {
			names[i] = string(s)
		}
		fmt.Fprintf(&b, " after committing %s", strings.Join(names, ", "))
	}
	fmt.Fprintf(&b, ": %v", e.Err)
	return b.String()
}

func (e *StoreError) Unwrap() error { return e.Err }

// Is reports ErrPartialAggregate when an earlier step had committed.
func (e *StoreError) Is(target error) bool {
	return target == ErrPartialAggregate && e.Partial()
}

// Partial reports whether the failure left earlier steps committed.
func (e *StoreError) Partial() bool {
	return len(e.Committed) > 0
}

// writeLog tracks the committed steps of one multi-step write.
type writeLog struct {
	op        string
	committed []Step
}

func (w *writeLog) commit(step Step) {
	w.committed = append(w.committed, step)
}

func (w *writeLog) fail(step Step, err error) *StoreError {
	committed := make([]Step, len(w.committed))
	copy(committed, w.committed)
	return &StoreError{Op: w.op, Step: step, Committed: committed, Err: err}
}
