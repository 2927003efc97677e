package auth

import (
	"context"
	"strings"

	"github.com/utpal74/track-my-tasks-api/model"
)

// Gate authenticates a request from its Authorization header.
type Gate struct {
	tokens   *TokenService
	resolver *Resolver
}

func NewGate(tokens *TokenService, resolver *Resolver) *Gate {
	return &Gate{tokens: tokens, resolver: resolver}
}

// Authenticate returns the acting user. Failures wrap ErrUnauthenticated,
// except store failures while resolving the user, which are returned as is.
func (g *Gate) Authenticate(ctx context.Context, header string) (*model.User, error) {
	token, err := BearerToken(header)
	if err != nil {
		return nil, err
	}
	subject, err := g.tokens.Verify(token)
	if err != nil {
		return nil, err
	}
	return g.resolver.Resolve(ctx, subject)
}

// BearerToken extracts the token from an "Authorization: Bearer <token>" value.
func BearerToken(header string) (string, error) {
	parts := strings.Fields(header)
	if len(parts) != 2 || !strings.EqualFold(parts[0], "Bearer") {
		return "", ErrMissingCredentials
	}
	return parts[1], nil
}
