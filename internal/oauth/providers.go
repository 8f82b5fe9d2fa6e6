package oauth

import "context"

// Stub providers. Each is an extension point only; no provider contract is
// configured yet.

type googleProvider struct{}

func (p *googleProvider) Name() string { return "google" }

func (p *googleProvider) AuthorizationURL(ctx context.Context, state, codeChallenge string) (string, error) {
	return "", ErrNotImplemented
}

func (p *googleProvider) ExchangeCode(ctx context.Context, code, codeVerifier, redirectURI string) (*TokenResponse, error) {
	return nil, ErrNotImplemented
}

func (p *googleProvider) FetchProfile(ctx context.Context, tokens *TokenResponse) (*Profile, error) {
	return nil, ErrNotImplemented
}

type facebookProvider struct{}

func (p *facebookProvider) Name() string { return "facebook" }

func (p *facebookProvider) AuthorizationURL(ctx context.Context, state, codeChallenge string) (string, error) {
	return "", ErrNotImplemented
}

func (p *facebookProvider) ExchangeCode(ctx context.Context, code, codeVerifier, redirectURI string) (*TokenResponse, error) {
	return nil, ErrNotImplemented
}

func (p *facebookProvider) FetchProfile(ctx context.Context, tokens *TokenResponse) (*Profile, error) {
	return nil, ErrNotImplemented
}

type appleProvider struct{}

func (p *appleProvider) Name() string { return "apple" }

func (p *appleProvider) AuthorizationURL(ctx context.Context, state, codeChallenge string) (string, error) {
	return "", ErrNotImplemented
}

func (p *appleProvider) ExchangeCode(ctx context.Context, code, codeVerifier, redirectURI string) (*TokenResponse, error) {
	return nil, ErrNotImplemented
}

func (p *appleProvider) FetchProfile(ctx context.Context, tokens *TokenResponse) (*Profile, error) {
	return nil, ErrNotImplemented
}
