package handler

import (
	"fmt"
	"log"
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"

	"github.com/greetings-portal/web/internal/idp"
	"github.com/greetings-portal/web/internal/session"
)

type AuthHandler struct {
	idp *idp.Client
	svc *session.Service
}

func NewAuthHandler(idpClient *idp.Client, svc *session.Service) *AuthHandler {
	return &AuthHandler{idp: idpClient, svc: svc}
}

// SignIn initiates the interactive login: the whole page is redirected to
// the identity provider and nothing is awaited here. The result comes
// back through Callback.
func (h *AuthHandler) SignIn(c *gin.Context) {
	st := GetSession(c)
	state := uuid.NewString()
	st.SetPendingAuthState(state)
	c.Redirect(http.StatusFound, h.idp.LoginURL(state))
}

// Callback completes the redirect flow. It runs on every return from the
// provider and relies on nothing but the state nonce persisted in the
// session and the provider's response.
func (h *AuthHandler) Callback(c *gin.Context) {
	st := GetSession(c)

	if errCode := c.Query("error"); errCode != "" {
		err := fmt.Errorf("provider returned %s: %s", errCode, c.Query("error_description"))
		h.idp.Events().Publish(idp.LoginEvent{SessionID: st.ID, Err: err})
		log.Printf("login failed: %v", err)
		st.AddNotice("error", "Login failed!")
		c.Redirect(http.StatusFound, "/login")
		return
	}

	expected := st.ConsumePendingAuthState()
	if expected == "" || c.Query("state") != expected {
		log.Printf("login callback with unknown state for session %s", st.ID)
		c.Redirect(http.StatusFound, "/login")
		return
	}

	account, _, err := h.idp.CompleteRedirect(c.Request.Context(), c.Query("code"))
	if err != nil {
		h.idp.Events().Publish(idp.LoginEvent{SessionID: st.ID, Err: err})
		log.Printf("redirect completion failed: %v", err)
		st.AddNotice("error", "Login failed!")
		c.Redirect(http.StatusFound, "/login")
		return
	}

	st.AddAccount(account)
	st.SetActiveAccount(account.ID)
	h.idp.Events().Publish(idp.LoginEvent{SessionID: st.ID, Account: account})

	// The redirect return is a fresh page entry: re-arm the bootstrap
	// latch so the token acquisition + backend login sequence runs once
	// for the new account.
	st.ResetBootstrap()

	c.Redirect(http.StatusFound, "/dashboard")
}

// SignOut clears the local session and lands on the login screen.
func (h *AuthHandler) SignOut(c *gin.Context) {
	st := GetSession(c)
	h.svc.Logout(st)
	c.Redirect(http.StatusFound, "/login")
}
