package marketplace

import (
	"context"
	"fmt"

	"github.com/rs/zerolog"

	"github.com/marketplace/storefront/internal/client/session"
	"github.com/marketplace/storefront/internal/core/domain"
	"github.com/marketplace/storefront/internal/core/ports"
)

const (
	pathLogin    = "api/User/login"
	pathRegister = "api/User/register"
)

// AuthClient calls the account endpoints.
type AuthClient struct {
	http Requester
}

var _ ports.AuthAPI = (*AuthClient)(nil)

func NewAuthClient(r Requester) *AuthClient {
	return &AuthClient{http: r}
}

func (c *AuthClient) Login(ctx context.Context, req domain.AuthRequest) (*domain.AuthResponse, error) {
	var out domain.AuthResponse
	if err := c.http.Post(ctx, pathLogin, req, &out); err != nil {
		return nil, fmt.Errorf("login: %w", err)
	}
	return &out, nil
}

func (c *AuthClient) Register(ctx context.Context, req domain.AuthRequest) (*domain.AuthResponse, error) {
	var out domain.AuthResponse
	if err := c.http.Post(ctx, pathRegister, req, &out); err != nil {
		return nil, fmt.Errorf("register: %w", err)
	}
	return &out, nil
}

// SessionWriter stores a freshly issued credential bundle.
type SessionWriter interface {
	Login(ctx context.Context, b domain.CredentialBundle) error
}

// Accounts runs the sign-in and sign-up flows: call the API, decode the
// issued token into a bundle, store it and move to the home route.
type Accounts struct {
	api     ports.AuthAPI
	decoder ports.TokenDecoder
	session SessionWriter
	nav     ports.Navigator
	home    string
	log     zerolog.Logger
}

func NewAccounts(api ports.AuthAPI, dec ports.TokenDecoder, s SessionWriter, nav ports.Navigator, home string, log zerolog.Logger) *Accounts {
	return &Accounts{api: api, decoder: dec, session: s, nav: nav, home: home, log: log}
}

// SignIn logs in and stores the resulting session.
func (a *Accounts) SignIn(ctx context.Context, req domain.AuthRequest) (domain.CredentialBundle, error) {
	resp, err := a.api.Login(ctx, req)
	if err != nil {
		return domain.CredentialBundle{}, err
	}
	if resp.Token == "" {
		return domain.CredentialBundle{}, fmt.Errorf("login: %w", domain.ErrEmptyToken)
	}
	return a.establish(ctx, resp.Token)
}

// SignUp registers an account. When the API answers with a token the new
// account is signed in right away and signedIn is true.
func (a *Accounts) SignUp(ctx context.Context, req domain.AuthRequest) (b domain.CredentialBundle, signedIn bool, err error) {
	resp, err := a.api.Register(ctx, req)
	if err != nil {
		return domain.CredentialBundle{}, false, err
	}
	if resp.Token == "" {
		a.log.Info().Str("email", req.Email).Msg("registered, login required")
		return domain.CredentialBundle{}, false, nil
	}
	b, err = a.establish(ctx, resp.Token)
	if err != nil {
		return domain.CredentialBundle{}, false, err
	}
	return b, true, nil
}

func (a *Accounts) establish(ctx context.Context, token string) (domain.CredentialBundle, error) {
	b, err := session.BundleFromToken(a.decoder, token)
	if err != nil {
		return domain.CredentialBundle{}, fmt.Errorf("read issued token: %w", err)
	}
	if err := a.session.Login(ctx, b); err != nil {
		return domain.CredentialBundle{}, err
	}
	if a.nav != nil {
		a.nav.Navigate(a.home)
	}
	return b, nil
}
