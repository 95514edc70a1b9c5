// Package auth resolves who is calling: password accounts, JWT sessions and
// the request-scoped Identity handed to the scenario repository.
package auth

import (
	"context"

	"github.com/mmynk/equityplan/internal/models"
)

// Authenticator defines the interface for authentication implementations,
// so the service layer does not care how credentials are checked.
type Authenticator interface {
	// Register creates a new user account with the given email and credential.
	Register(ctx context.Context, email, displayName, credential string) (*models.User, error)

	// Authenticate verifies the user's credentials and returns the user if successful.
	Authenticate(ctx context.Context, email, credential string) (*models.User, error)

	// ValidateCredential checks if the credential meets the implementation's requirements.
	ValidateCredential(credential string) error
}
