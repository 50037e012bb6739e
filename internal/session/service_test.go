package session

import (
	"context"
	"errors"
	"sync"
	"sync/atomic"
	"testing"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"golang.org/x/oauth2"

	"github.com/greetings-portal/web/internal/idp"
	"github.com/greetings-portal/web/internal/model"
)

type fakeAcquirer struct {
	acquisitions atomic.Int32
	err          error
	token        string
	refreshToken string
}

func (f *fakeAcquirer) AcquireTokenSilent(ctx context.Context, account *model.Account) (*oauth2.Token, error) {
	f.acquisitions.Add(1)
	if f.err != nil {
		return nil, f.err
	}
	token := f.token
	if token == "" {
		token = "access-token"
	}
	return &oauth2.Token{AccessToken: token, RefreshToken: f.refreshToken}, nil
}

type fakeLoginAPI struct {
	logins atomic.Int32
	err    error
}

func (f *fakeLoginAPI) Login(token string, onUnauthorized func()) error {
	f.logins.Add(1)
	return f.err
}

func newBootstrappedState(store *Store) *State {
	st := store.Create()
	st.AddAccount(&model.Account{ID: "acc-1", Username: "first@example.com", Name: "First User", RefreshToken: "rt-1"})
	st.AddAccount(&model.Account{ID: "acc-2", Username: "second@example.com", Name: "Second User", RefreshToken: "rt-2"})
	return st
}

func TestBootstrapLoginCalledOnce(t *testing.T) {
	acquirer := &fakeAcquirer{}
	api := &fakeLoginAPI{}
	store := NewStore()
	svc := NewService(acquirer, api, store, nil)
	defer svc.Close()

	st := newBootstrappedState(store)

	// The triggering effect may fire repeatedly with the same client
	// instance; the latch keeps the backend call single-shot.
	var wg sync.WaitGroup
	for i := 0; i < 8; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			svc.Bootstrap(context.Background(), st)
		}()
	}
	wg.Wait()

	deadline := time.Now().Add(time.Second)
	for api.logins.Load() == 0 {
		if time.Now().After(deadline) {
			t.Fatal("backend login never called")
		}
		time.Sleep(2 * time.Millisecond)
	}
	time.Sleep(30 * time.Millisecond)

	if got := api.logins.Load(); got != 1 {
		t.Fatalf("backend login calls = %d, want exactly 1", got)
	}
	if got := acquirer.acquisitions.Load(); got != 1 {
		t.Fatalf("silent acquisitions = %d, want exactly 1", got)
	}
	if got := st.BootstrapState(); got != model.BootstrapDone {
		t.Fatalf("bootstrap state = %v, want done", got)
	}
	if st.Value(AccessTokenKey) != "access-token" {
		t.Fatalf("stored token = %q, want access-token", st.Value(AccessTokenKey))
	}
}

func TestBootstrapActivatesFirstCachedAccount(t *testing.T) {
	acquirer := &fakeAcquirer{}
	api := &fakeLoginAPI{}
	store := NewStore()
	svc := NewService(acquirer, api, store, nil)
	defer svc.Close()

	st := newBootstrappedState(store)
	svc.Bootstrap(context.Background(), st)

	active := st.ActiveAccount()
	if active == nil || active.ID != "acc-1" {
		t.Fatalf("active account = %+v, want acc-1", active)
	}
}

func TestBootstrapNoAccountsLeavesUnauthenticated(t *testing.T) {
	acquirer := &fakeAcquirer{}
	api := &fakeLoginAPI{}
	store := NewStore()
	svc := NewService(acquirer, api, store, nil)
	defer svc.Close()

	st := store.Create()
	svc.Bootstrap(context.Background(), st)

	if st.Authenticated() {
		t.Fatal("session authenticated without accounts")
	}
	if got := acquirer.acquisitions.Load(); got != 0 {
		t.Fatalf("silent acquisitions = %d, want 0", got)
	}
	if got := st.BootstrapState(); got != model.BootstrapNotStarted {
		t.Fatalf("bootstrap state = %v, want not_started", got)
	}
}

func TestBootstrapInteractionRequiredTearsDownSession(t *testing.T) {
	acquirer := &fakeAcquirer{err: idp.ErrInteractionRequired}
	api := &fakeLoginAPI{}
	store := NewStore()
	svc := NewService(acquirer, api, store, nil)
	defer svc.Close()

	st := newBootstrappedState(store)
	svc.Bootstrap(context.Background(), st)

	if st.Authenticated() {
		t.Fatal("session still authenticated, want torn down")
	}
	if got := api.logins.Load(); got != 0 {
		t.Fatalf("backend login calls = %d, want 0", got)
	}
}

func TestBootstrapOtherErrorLatchesWithoutLogin(t *testing.T) {
	acquirer := &fakeAcquirer{err: errors.New("provider unreachable")}
	api := &fakeLoginAPI{}
	store := NewStore()
	svc := NewService(acquirer, api, store, nil)
	defer svc.Close()

	st := newBootstrappedState(store)
	svc.Bootstrap(context.Background(), st)
	svc.Bootstrap(context.Background(), st)

	if got := acquirer.acquisitions.Load(); got != 1 {
		t.Fatalf("silent acquisitions = %d, want 1", got)
	}
	if got := api.logins.Load(); got != 0 {
		t.Fatalf("backend login calls = %d, want 0", got)
	}
}

func TestLoginEventSetsActiveAccount(t *testing.T) {
	acquirer := &fakeAcquirer{}
	api := &fakeLoginAPI{}
	store := NewStore()
	bus := idp.NewEventBus()
	svc := NewService(acquirer, api, store, bus)
	defer svc.Close()

	st := store.Create()
	account := &model.Account{ID: "acc-9", Username: "nine@example.com", Name: "Nine"}
	bus.Publish(idp.LoginEvent{SessionID: st.ID, Account: account})

	deadline := time.Now().Add(time.Second)
	for !st.Authenticated() {
		if time.Now().After(deadline) {
			t.Fatal("login event never activated the account")
		}
		time.Sleep(2 * time.Millisecond)
	}
	if got := st.ActiveAccount().ID; got != "acc-9" {
		t.Fatalf("active account = %s, want acc-9", got)
	}
}

func TestTokenReusesStoredOpaqueToken(t *testing.T) {
	acquirer := &fakeAcquirer{}
	store := NewStore()
	svc := NewService(acquirer, &fakeLoginAPI{}, store, nil)
	defer svc.Close()

	st := newBootstrappedState(store)
	st.SetActiveAccount("acc-1")
	st.SetValue(AccessTokenKey, "opaque-token")

	token, err := svc.Token(context.Background(), st)
	if err != nil {
		t.Fatalf("Token() error = %v", err)
	}
	if token != "opaque-token" {
		t.Fatalf("token = %q, want stored opaque-token", token)
	}
	if got := acquirer.acquisitions.Load(); got != 0 {
		t.Fatalf("silent acquisitions = %d, want 0", got)
	}
}

func TestTokenConcurrentRefreshRotatesSafely(t *testing.T) {
	acquirer := &fakeAcquirer{token: "fresh-token", refreshToken: "rt-rotated"}
	store := NewStore()
	svc := NewService(acquirer, &fakeLoginAPI{}, store, nil)
	defer svc.Close()

	st := newBootstrappedState(store)
	st.SetActiveAccount("acc-1")

	// Two feedback submits racing on one session both refresh silently;
	// rotation must land in the account cache without the acquisitions
	// stepping on each other's credential.
	var wg sync.WaitGroup
	for i := 0; i < 4; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			if _, err := svc.Token(context.Background(), st); err != nil {
				t.Errorf("Token() error = %v", err)
			}
		}()
	}
	wg.Wait()

	if got := st.ActiveAccount().RefreshToken; got != "rt-rotated" {
		t.Fatalf("cached refresh token = %q, want rt-rotated", got)
	}
	if st.Value(AccessTokenKey) != "fresh-token" {
		t.Fatalf("stored token = %q, want fresh-token", st.Value(AccessTokenKey))
	}
}

func TestTokenRefreshesExpiredJWT(t *testing.T) {
	expired, err := jwt.NewWithClaims(jwt.SigningMethodHS256, jwt.MapClaims{
		"exp": time.Now().Add(-time.Hour).Unix(),
	}).SignedString([]byte("test-secret"))
	if err != nil {
		t.Fatalf("sign test token: %v", err)
	}

	acquirer := &fakeAcquirer{token: "fresh-token"}
	store := NewStore()
	svc := NewService(acquirer, &fakeLoginAPI{}, store, nil)
	defer svc.Close()

	st := newBootstrappedState(store)
	st.SetActiveAccount("acc-1")
	st.SetValue(AccessTokenKey, expired)

	token, err := svc.Token(context.Background(), st)
	if err != nil {
		t.Fatalf("Token() error = %v", err)
	}
	if token != "fresh-token" {
		t.Fatalf("token = %q, want fresh-token", token)
	}
	if got := acquirer.acquisitions.Load(); got != 1 {
		t.Fatalf("silent acquisitions = %d, want 1", got)
	}
	if st.Value(AccessTokenKey) != "fresh-token" {
		t.Fatalf("stored token = %q, want fresh-token", st.Value(AccessTokenKey))
	}
}
