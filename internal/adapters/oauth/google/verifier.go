package google

import (
	"context"
	"errors"

	"github.com/vncsmyrnk/election/internal/core/ports"
	"google.golang.org/api/idtoken"
)

// GoogleVerifier validates Google ID tokens. Voters are identified by their
// verified email address.
type GoogleVerifier struct{}

func NewVerifier() ports.TokenVerifier {
	return &GoogleVerifier{}
}

func (v *GoogleVerifier) Verify(ctx context.Context, token string, clientID string) (*ports.TokenPayload, error) {
	payload, err := idtoken.Validate(ctx, token, clientID)
	if err != nil {
		return nil, err
	}
	email, ok := payload.Claims["email"].(string)
	if !ok || email == "" {
		return nil, errors.New("email not found in claims")
	}
	if verified, _ := payload.Claims["email_verified"].(bool); !verified {
		return nil, errors.New("email not verified")
	}
	name, ok := payload.Claims["name"].(string)
	if !ok || name == "" {
		name = email
	}
	return &ports.TokenPayload{Email: email, Name: name}, nil
}
