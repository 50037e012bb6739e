// Package idp wraps the enterprise identity provider behind the small
// surface the app needs: interactive redirect login, redirect completion,
// and silent token acquisition from a cached refresh credential.
package idp

import (
	"context"
	"errors"
	"fmt"

	"github.com/coreos/go-oidc/v3/oidc"
	"golang.org/x/oauth2"

	"github.com/greetings-portal/web/internal/config"
	"github.com/greetings-portal/web/internal/model"
)

// ErrInteractionRequired means silent acquisition cannot proceed and the
// user must go through the interactive redirect flow again.
var ErrInteractionRequired = errors.New("interaction required")

type Client struct {
	oauth    oauth2.Config
	verifier *oidc.IDTokenVerifier
	bus      *EventBus
}

func NewClient(ctx context.Context, cfg config.AuthConfig, redirectURL string) (*Client, error) {
	if cfg.Authority == "" || cfg.ClientID == "" {
		return nil, fmt.Errorf("idp: AUTHORITY and CLIENT_ID are required")
	}

	provider, err := oidc.NewProvider(ctx, cfg.Authority)
	if err != nil {
		return nil, fmt.Errorf("idp: provider discovery failed: %w", err)
	}

	scopes := []string{oidc.ScopeOpenID, "profile", oidc.ScopeOfflineAccess}
	if cfg.Audience != "" {
		scopes = append(scopes, cfg.Audience+"/access_as_user")
	}

	return &Client{
		oauth: oauth2.Config{
			ClientID:     cfg.ClientID,
			ClientSecret: cfg.ClientSecret,
			Endpoint:     provider.Endpoint(),
			RedirectURL:  redirectURL,
			Scopes:       scopes,
		},
		verifier: provider.Verifier(&oidc.Config{ClientID: cfg.ClientID}),
		bus:      NewEventBus(),
	}, nil
}

// LoginURL starts the interactive phase: the caller redirects the whole
// page here and nothing is awaited past the redirect. The result is only
// observed via CompleteRedirect on the way back.
func (c *Client) LoginURL(state string) string {
	return c.oauth.AuthCodeURL(state)
}

// CompleteRedirect finishes the interactive flow: exchanges the
// authorization code, verifies the ID token, and returns the account it
// asserts together with the token set.
func (c *Client) CompleteRedirect(ctx context.Context, code string) (*model.Account, *oauth2.Token, error) {
	token, err := c.oauth.Exchange(ctx, code)
	if err != nil {
		return nil, nil, fmt.Errorf("idp: code exchange failed: %w", err)
	}

	rawIDToken, ok := token.Extra("id_token").(string)
	if !ok {
		return nil, nil, fmt.Errorf("idp: token response has no id_token")
	}

	idToken, err := c.verifier.Verify(ctx, rawIDToken)
	if err != nil {
		return nil, nil, fmt.Errorf("idp: id_token verification failed: %w", err)
	}

	var claims struct {
		Name              string `json:"name"`
		PreferredUsername string `json:"preferred_username"`
		Email             string `json:"email"`
	}
	if err := idToken.Claims(&claims); err != nil {
		return nil, nil, fmt.Errorf("idp: failed to parse id_token claims: %w", err)
	}

	username := claims.PreferredUsername
	if username == "" {
		username = claims.Email
	}

	account := &model.Account{
		ID:           idToken.Subject,
		Username:     username,
		Name:         claims.Name,
		RefreshToken: token.RefreshToken,
	}
	return account, token, nil
}

// AcquireTokenSilent obtains a fresh access token for the account without
// interactive UI, using its cached refresh credential. A provider response
// that demands user interaction is reported as ErrInteractionRequired.
//
// The account is not mutated. When the provider rotates the refresh token,
// the new one is on the returned token and the caller persists it into the
// session's account cache.
func (c *Client) AcquireTokenSilent(ctx context.Context, account *model.Account) (*oauth2.Token, error) {
	if account == nil || account.RefreshToken == "" {
		return nil, fmt.Errorf("idp: no cached credential for account: %w", ErrInteractionRequired)
	}

	src := c.oauth.TokenSource(ctx, &oauth2.Token{RefreshToken: account.RefreshToken})
	token, err := src.Token()
	if err != nil {
		if interactionRequired(err) {
			return nil, fmt.Errorf("idp: silent acquisition refused: %w", ErrInteractionRequired)
		}
		return nil, fmt.Errorf("idp: silent acquisition failed: %w", err)
	}
	return token, nil
}

// interactionRequired reports whether the token endpoint's refusal means
// the refresh credential is no longer usable without the user.
func interactionRequired(err error) bool {
	var retrieveErr *oauth2.RetrieveError
	if !errors.As(err, &retrieveErr) {
		return false
	}
	switch retrieveErr.ErrorCode {
	case "invalid_grant", "interaction_required", "login_required", "consent_required":
		return true
	}
	return false
}

func (c *Client) Events() *EventBus {
	return c.bus
}
