package handler

import (
	"log"
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/greetings-portal/web/internal/template"
)

type PageHandler struct{}

func NewPageHandler() *PageHandler {
	return &PageHandler{}
}

// LoginPage renders the login view, or bounces an already authenticated
// session straight to the dashboard.
func (h *PageHandler) LoginPage(c *gin.Context) {
	st := GetSession(c)
	if st.Authenticated() {
		c.Redirect(http.StatusFound, "/dashboard")
		return
	}

	c.Header("Content-Type", "text/html; charset=utf-8")
	c.Status(http.StatusOK)
	if err := template.RenderLogin(c.Writer, template.LoginData{Notices: st.ConsumeNotices()}); err != nil {
		log.Printf("failed to render login page: %v", err)
	}
}

// DashboardPage renders the greeting and the feedback form. Reached only
// through the route guard.
func (h *PageHandler) DashboardPage(c *gin.Context) {
	st := GetSession(c)
	account := st.ActiveAccount()
	if account == nil {
		c.Redirect(http.StatusFound, "/login")
		return
	}

	data := template.DashboardData{
		FirstName:  account.FirstName(),
		FullName:   account.Name,
		DraftText:  st.Draft().Text,
		Attachment: template.AttachmentDataFromModel(st.Attachment()),
		Submission: st.Submission(),
		Notices:    st.ConsumeNotices(),
	}

	c.Header("Content-Type", "text/html; charset=utf-8")
	c.Status(http.StatusOK)
	if err := template.RenderDashboard(c.Writer, data); err != nil {
		log.Printf("failed to render dashboard: %v", err)
	}
}

// Index handles `/` and every unknown path: authenticated sessions go to
// the dashboard, everyone else to the login screen.
func (h *PageHandler) Index(c *gin.Context) {
	st := GetSession(c)
	if st != nil && st.Authenticated() && !st.ConsumeForceLogin() {
		c.Redirect(http.StatusFound, "/dashboard")
		return
	}
	c.Redirect(http.StatusFound, "/login")
}
