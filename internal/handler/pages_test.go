package handler

import (
	"context"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/gin-gonic/gin"
	"golang.org/x/oauth2"

	"github.com/greetings-portal/web/internal/model"
	"github.com/greetings-portal/web/internal/service"
	"github.com/greetings-portal/web/internal/session"
)

type stubAcquirer struct{}

func (stubAcquirer) AcquireTokenSilent(ctx context.Context, account *model.Account) (*oauth2.Token, error) {
	return &oauth2.Token{AccessToken: "test-token"}, nil
}

type stubLoginAPI struct{}

func (stubLoginAPI) Login(token string, onUnauthorized func()) error { return nil }

type stubFeedbackAPI struct{}

func (stubFeedbackAPI) CreateMessage(token string, msg model.CreateMessageRequest, onUnauthorized func()) error {
	return nil
}

func newTestRouter(t *testing.T) (*gin.Engine, *session.Store) {
	t.Helper()
	gin.SetMode(gin.TestMode)

	store := session.NewStore()
	sessions := session.NewService(stubAcquirer{}, stubLoginAPI{}, store, nil)
	t.Cleanup(sessions.Close)

	r := gin.New()
	RegisterRoutes(r, store, sessions, nil, service.NewFeedbackService(stubFeedbackAPI{}))
	return r, store
}

func authenticatedSession(store *session.Store) *session.State {
	st := store.Create()
	st.AddAccount(&model.Account{ID: "acc-1", Username: "user@example.com", Name: "Test User", RefreshToken: "rt"})
	st.SetActiveAccount("acc-1")
	return st
}

func TestRouteTable(t *testing.T) {
	tests := []struct {
		name          string
		path          string
		authenticated bool
		wantStatus    int
		wantLocation  string
	}{
		{name: "root-unauthenticated", path: "/", wantStatus: http.StatusFound, wantLocation: "/login"},
		{name: "dashboard-unauthenticated", path: "/dashboard", wantStatus: http.StatusFound, wantLocation: "/login"},
		{name: "unknown-unauthenticated", path: "/some/other/path", wantStatus: http.StatusFound, wantLocation: "/login"},
		{name: "login-unauthenticated", path: "/login", wantStatus: http.StatusOK},
		{name: "root-authenticated", path: "/", authenticated: true, wantStatus: http.StatusFound, wantLocation: "/dashboard"},
		{name: "login-authenticated", path: "/login", authenticated: true, wantStatus: http.StatusFound, wantLocation: "/dashboard"},
		{name: "dashboard-authenticated", path: "/dashboard", authenticated: true, wantStatus: http.StatusOK},
		{name: "unknown-authenticated", path: "/some/other/path", authenticated: true, wantStatus: http.StatusFound, wantLocation: "/dashboard"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			r, store := newTestRouter(t)

			req := httptest.NewRequest(http.MethodGet, tt.path, nil)
			if tt.authenticated {
				st := authenticatedSession(store)
				req.AddCookie(&http.Cookie{Name: sessionCookieName, Value: st.ID})
			}

			w := httptest.NewRecorder()
			r.ServeHTTP(w, req)

			if w.Code != tt.wantStatus {
				t.Fatalf("status = %d, want %d", w.Code, tt.wantStatus)
			}
			if tt.wantLocation != "" {
				if got := w.Header().Get("Location"); got != tt.wantLocation {
					t.Fatalf("location = %q, want %q", got, tt.wantLocation)
				}
			}
		})
	}
}

func TestDashboardRendersGreeting(t *testing.T) {
	r, store := newTestRouter(t)
	st := authenticatedSession(store)

	req := httptest.NewRequest(http.MethodGet, "/dashboard", nil)
	req.AddCookie(&http.Cookie{Name: sessionCookieName, Value: st.ID})
	w := httptest.NewRecorder()
	r.ServeHTTP(w, req)

	if w.Code != http.StatusOK {
		t.Fatalf("status = %d, want 200", w.Code)
	}
	if body := w.Body.String(); !strings.Contains(body, "Happy Diwali, Test!") {
		t.Fatalf("dashboard body missing greeting, got: %.200s", body)
	}
}

func TestForcedLoginRedirectsDashboard(t *testing.T) {
	r, store := newTestRouter(t)
	st := authenticatedSession(store)
	st.SetForceLogin()

	req := httptest.NewRequest(http.MethodGet, "/dashboard", nil)
	req.AddCookie(&http.Cookie{Name: sessionCookieName, Value: st.ID})
	w := httptest.NewRecorder()
	r.ServeHTTP(w, req)

	if w.Code != http.StatusFound {
		t.Fatalf("status = %d, want 302", w.Code)
	}
	if got := w.Header().Get("Location"); got != "/login" {
		t.Fatalf("location = %q, want /login", got)
	}
}

func TestNewSessionGetsCookie(t *testing.T) {
	r, _ := newTestRouter(t)

	req := httptest.NewRequest(http.MethodGet, "/login", nil)
	w := httptest.NewRecorder()
	r.ServeHTTP(w, req)

	cookie := w.Header().Get("Set-Cookie")
	if !strings.Contains(cookie, sessionCookieName+"=") {
		t.Fatalf("Set-Cookie = %q, want session cookie", cookie)
	}
	// Session-scoped: no Max-Age, the cookie dies with the browsing session.
	if strings.Contains(cookie, "Max-Age") {
		t.Fatalf("Set-Cookie = %q, want no Max-Age", cookie)
	}
}
