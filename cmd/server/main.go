package main

import (
	"log"
	"strconv"

	"github.com/marcotondi/lfg-bot/internal/config"
	"github.com/marcotondi/lfg-bot/internal/database"
	"github.com/marcotondi/lfg-bot/internal/handlers"
	"github.com/marcotondi/lfg-bot/internal/middleware"
	"github.com/marcotondi/lfg-bot/internal/router"
	"github.com/marcotondi/lfg-bot/internal/services"
	"github.com/marcotondi/lfg-bot/internal/telegram"
	"github.com/marcotondi/lfg-bot/internal/ws"

	"github.com/gin-contrib/cors"
	"github.com/gin-gonic/gin"
)

func main() {
	cfg := config.Load()

	if cfg.TelegramToken == "" {
		log.Fatal("TELEGRAM_TOKEN is required")
	}

	db := database.Connect(cfg)
	database.AutoMigrate(db)

	hub := ws.NewHub()
	locks := services.NewTableLocks()

	userService := services.NewUserService(db)
	tableService := services.NewTableService(db, locks)
	regService := services.NewRegistrationService(db, locks)
	authService := services.NewAuthService(cfg.JWTSecret, cfg.AdminPassHash)

	client := telegram.NewClient(cfg.TelegramToken)
	notifyService := services.NewNotifyService(telegram.NewBotNotifier(client), hub)

	cmdRouter := router.New(userService, tableService)
	router.RegisterCommands(cmdRouter, router.Deps{
		Users:         userService,
		Tables:        tableService,
		Registrations: regService,
		Notify:        notifyService,
	})

	state := telegram.NewStateManager()
	updateHandler := telegram.NewUpdateHandler(client, state, cmdRouter, userService, tableService, regService)

	authHandler := handlers.NewAuthHandler(authService)
	tableHandler := handlers.NewTableHandler(tableService, regService, notifyService)
	userHandler := handlers.NewUserHandler(userService)
	wsHandler := handlers.NewWSHandler(hub)

	r := gin.Default()

	r.Use(cors.New(cors.Config{
		AllowOrigins:     []string{"*"},
		AllowMethods:     []string{"GET", "POST", "PATCH", "OPTIONS"},
		AllowHeaders:     []string{"Origin", "Content-Type", "Authorization"},
		AllowCredentials: true,
	}))

	r.GET("/health", func(c *gin.Context) {
		c.JSON(200, gin.H{"status": "ok"})
	})
	r.GET("/ws/tables/:id", wsHandler.HandleTableFeed)

	api := r.Group("/api/v1")
	{
		api.POST("/auth/login", authHandler.Login)

		api.GET("/tables", tableHandler.ListTables)
		api.GET("/tables/:id", tableHandler.GetTable)
		api.GET("/tables/:id/roster", tableHandler.GetRoster)

		admin := api.Group("")
		admin.Use(middleware.JWTAuth(authService))
		{
			admin.POST("/tables/:id/cancel", tableHandler.CancelTable)
			admin.PATCH("/tables/:id", tableHandler.UpdateTable)
			admin.GET("/users", userHandler.ListUsers)
			admin.POST("/users/:telegram_id/roles", userHandler.SetRole)
		}
	}

	if cfg.WebhookBaseURL != "" {
		webhook := telegram.NewWebhook(client, updateHandler, cfg.WebhookSecret)
		if err := webhook.Register(cfg.WebhookBaseURL); err != nil {
			log.Fatalf("failed to register webhook: %v", err)
		}
		r.POST("/webhook/telegram", webhook.Handle)
	} else {
		timeoutSec, _ := strconv.Atoi(cfg.PollTimeout)
		poller := telegram.NewPoller(client, updateHandler, timeoutSec)
		poller.Start()
		defer poller.Stop()
	}

	log.Printf("server starting on :%s", cfg.ServerPort)
	if err := r.Run(":" + cfg.ServerPort); err != nil {
		log.Fatalf("failed to start server: %v", err)
	}
}
