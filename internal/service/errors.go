package service

import (
	"errors"
	"fmt"
	"strings"

	"connectrpc.com/connect"

	"github.com/mmynk/equityplan/internal/scenario"
	"github.com/mmynk/equityplan/internal/validate"
)

var errStorage = errors.New("storage failure")

// toConnectError maps repository and validation errors to Connect codes.
// Store errors are not passed through to the client.
func toConnectError(err error) error {
	var storeErr *scenario.StoreError

	switch {
	case errors.Is(err, scenario.ErrUnauthenticated):
		return connect.NewError(connect.CodeUnauthenticated, err)
	case errors.Is(err, scenario.ErrNotFound):
		return connect.NewError(connect.CodeNotFound, err)
	case errors.Is(err, scenario.ErrInvalidArgument), errors.Is(err, validate.ErrInvalid):
		return connect.NewError(connect.CodeInvalidArgument, err)
	case errors.As(err, &storeErr) && storeErr.Partial():
		committed := make([]string, len(storeErr.Committed))
		for i, s := range storeErr.Committed {
			committed[i] = string(s)
		}
		return connect.NewError(connect.CodeAborted, fmt.Errorf(
			"%s failed after %s committed; retry the failed step or delete the scenario",
			storeErr.Step, strings.Join(committed, ", "),
		))
	default:
		return connect.NewError(connect.CodeInternal, errStorage)
	}
}

func missing(field string) error {
	return connect.NewError(connect.CodeInvalidArgument, fmt.Errorf("%s is required", field))
}
