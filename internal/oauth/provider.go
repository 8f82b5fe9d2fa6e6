package oauth

import (
	"context"
	"errors"
	"time"
)

// ErrNotImplemented is returned by every provider until its integration is
// configured. Routes translate it to a 501.
var ErrNotImplemented = errors.New("oauth provider not implemented")

type TokenResponse struct {
	AccessToken  string
	RefreshToken string
	ExpiresAt    *time.Time
	Scope        []string
	IDToken      string
}

type Profile struct {
	ID            string
	Email         string
	Name          string
	EmailVerified bool
	AvatarURL     string
}

// Provider is the capability contract for a social login integration.
type Provider interface {
	Name() string
	AuthorizationURL(ctx context.Context, state, codeChallenge string) (string, error)
	ExchangeCode(ctx context.Context, code, codeVerifier, redirectURI string) (*TokenResponse, error)
	FetchProfile(ctx context.Context, tokens *TokenResponse) (*Profile, error)
}

// Registry maps provider names to implementations.
type Registry map[string]Provider

func NewRegistry() Registry {
	return Registry{
		"google":   &googleProvider{},
		"facebook": &facebookProvider{},
		"apple":    &appleProvider{},
	}
}

func (r Registry) Get(name string) (Provider, bool) {
	provider, ok := r[name]
	return provider, ok
}
