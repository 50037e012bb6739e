package main

import (
	"context"
	"log"

	"github.com/gin-gonic/gin"
	"github.com/joho/godotenv"

	"github.com/greetings-portal/web/internal/client"
	"github.com/greetings-portal/web/internal/config"
	"github.com/greetings-portal/web/internal/handler"
	"github.com/greetings-portal/web/internal/idp"
	"github.com/greetings-portal/web/internal/service"
	"github.com/greetings-portal/web/internal/session"
)

func main() {
	if err := godotenv.Load(); err != nil {
		log.Println("no .env file found, using process environment")
	}

	cfg := config.Load()

	idpClient, err := idp.NewClient(context.Background(), cfg.Auth, cfg.Server.BaseURL+"/auth/callback")
	if err != nil {
		log.Fatalf("identity provider setup failed: %v", err)
	}

	api := client.NewAPI(cfg.API)
	store := session.NewStore()
	sessions := session.NewService(idpClient, api, store, idpClient.Events())
	defer sessions.Close()

	feedback := service.NewFeedbackService(api)

	router := gin.Default()
	handler.RegisterRoutes(router, store, sessions, idpClient, feedback)

	if err := router.Run(cfg.Server.Addr); err != nil {
		log.Fatalf("server exited: %v", err)
	}
}
