package handler

import (
	"github.com/gin-gonic/gin"

	"github.com/greetings-portal/web/internal/idp"
	"github.com/greetings-portal/web/internal/service"
	"github.com/greetings-portal/web/internal/session"
)

// RegisterRoutes wires the route table:
//
//	/login      authenticated → /dashboard, otherwise the login view
//	/dashboard  guarded; unauthenticated → /login
//	/           and any unknown path: redirect by auth state
func RegisterRoutes(r *gin.Engine, store *session.Store, sessions *session.Service,
	idpClient *idp.Client, feedback *service.FeedbackService) {

	pages := NewPageHandler()
	auth := NewAuthHandler(idpClient, sessions)
	fb := NewFeedbackHandler(sessions, feedback)

	r.Use(SessionMiddleware(store, sessions))

	r.GET("/ping", Ping)

	r.GET("/login", pages.LoginPage)
	r.GET("/", pages.Index)
	r.NoRoute(pages.Index)

	r.GET("/auth/signin", auth.SignIn)
	r.GET("/auth/callback", auth.Callback)
	r.POST("/auth/signout", auth.SignOut)

	dashboard := r.Group("/dashboard", RouteGuard())
	dashboard.GET("", pages.DashboardPage)
	dashboard.POST("/feedback", fb.Submit)
	dashboard.POST("/attachment", fb.StageAttachment)
	dashboard.POST("/attachment/remove", fb.RemoveAttachment)
}
