// Package auth identifies the member behind an RPC call: it registers and
// verifies members and issues the bearer tokens the services accept.
package auth

import (
	"context"

	"github.com/mmynk/settleup/internal/models"
)

// Authenticator registers members and checks their credentials.
type Authenticator interface {
	// Register creates a member. Returns ErrEmailExists if the email is taken.
	Register(ctx context.Context, email, displayName, credential string) (*models.User, error)

	// Authenticate returns the member owning email if credential matches.
	Authenticate(ctx context.Context, email, credential string) (*models.User, error)

	// Lookup returns the member with the given ID.
	Lookup(ctx context.Context, userID string) (*models.User, error)
}
