package session

import (
	"context"
	"errors"
	"log"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"golang.org/x/oauth2"

	"github.com/greetings-portal/web/internal/idp"
	"github.com/greetings-portal/web/internal/model"
)

// TokenAcquirer is the slice of the identity-provider client the session
// service needs: silent token acquisition for a cached account.
type TokenAcquirer interface {
	AcquireTokenSilent(ctx context.Context, account *model.Account) (*oauth2.Token, error)
}

// LoginCaller is the slice of the backend API client used during
// bootstrap: the one-time login acknowledgement call.
type LoginCaller interface {
	Login(token string, onUnauthorized func()) error
}

// Service owns the session lifecycle: bootstrap at page entry, login via
// the provider's event stream, logout on demand. Session state is read
// elsewhere but mutated only here and by the redirect-completion handler.
type Service struct {
	tokens      TokenAcquirer
	api         LoginCaller
	store       *Store
	unsubscribe func()
}

func NewService(tokens TokenAcquirer, api LoginCaller, store *Store, events *idp.EventBus) *Service {
	svc := &Service{
		tokens: tokens,
		api:    api,
		store:  store,
	}
	if events != nil {
		ch, unsubscribe := events.Subscribe()
		svc.unsubscribe = unsubscribe
		go svc.watchLoginEvents(ch)
	}
	return svc
}

// Close releases the login event subscription.
func (s *Service) Close() {
	if s.unsubscribe != nil {
		s.unsubscribe()
	}
}

// Bootstrap runs the page-entry auth sequence for one session:
//
//  1. if no account is cached, leave the session unauthenticated;
//  2. if accounts are cached but none is active, activate the first;
//  3. exactly once per page lifetime, acquire a token silently, persist
//     it under the fixed key, and fire the backend login call.
//
// The latch is armed before any network work, so a concurrent or repeated
// pass cannot issue a duplicate backend login call. Failures never
// propagate: interaction-required tears the session down to the login
// screen, everything else is logged and swallowed.
func (s *Service) Bootstrap(ctx context.Context, st *State) {
	accounts := st.Accounts()
	if len(accounts) == 0 {
		return
	}
	if st.ActiveAccount() == nil {
		st.SetActiveAccount(accounts[0].ID)
	}

	if !st.BeginBootstrap() {
		return
	}

	account := st.ActiveAccount()
	token, err := s.tokens.AcquireTokenSilent(ctx, account)
	if err != nil {
		if errors.Is(err, idp.ErrInteractionRequired) {
			log.Printf("silent token acquisition requires interaction for %s", account.Username)
			st.ClearSession()
			return
		}
		log.Printf("silent token acquisition failed: %v", err)
		st.FinishBootstrap()
		return
	}

	st.UpdateRefreshToken(account.ID, token.RefreshToken)
	st.SetValue(AccessTokenKey, token.AccessToken)

	// Fire-and-forget: backend login must not block rendering.
	go func() {
		if err := s.api.Login(token.AccessToken, st.SetForceLogin); err != nil {
			log.Printf("backend login call failed: %v", err)
		}
	}()

	st.FinishBootstrap()
}

// Token returns the stored access token, refreshing it silently when the
// stored one is expired or missing.
func (s *Service) Token(ctx context.Context, st *State) (string, error) {
	raw := st.Value(AccessTokenKey)
	if raw != "" && !tokenExpired(raw) {
		return raw, nil
	}

	account := st.ActiveAccount()
	if account == nil {
		return "", idp.ErrInteractionRequired
	}

	token, err := s.tokens.AcquireTokenSilent(ctx, account)
	if err != nil {
		return "", err
	}
	st.UpdateRefreshToken(account.ID, token.RefreshToken)
	st.SetValue(AccessTokenKey, token.AccessToken)
	return token.AccessToken, nil
}

// Logout destroys the local session. Provider-side sign-out is out of
// scope; the next page entry starts unauthenticated.
func (s *Service) Logout(st *State) {
	st.ClearSession()
}

func (s *Service) watchLoginEvents(ch <-chan idp.LoginEvent) {
	for event := range ch {
		if event.Err != nil {
			log.Printf("login failed: %v", event.Err)
			continue
		}
		if event.Account == nil {
			continue
		}
		if st, ok := s.store.Get(event.SessionID); ok {
			st.AddAccount(event.Account)
			st.SetActiveAccount(event.Account.ID)
			log.Printf("login successful, active account set: %s", event.Account.Username)
		}
	}
}

// tokenExpired peeks at the token's exp claim without verifying it. An
// opaque or claim-less token is treated as live; the backend is the
// authority on acceptance either way.
func tokenExpired(raw string) bool {
	claims := jwt.MapClaims{}
	if _, _, err := jwt.NewParser().ParseUnverified(raw, claims); err != nil {
		return false
	}
	exp, err := claims.GetExpirationTime()
	if err != nil || exp == nil {
		return false
	}
	return time.Until(exp.Time) < 30*time.Second
}
