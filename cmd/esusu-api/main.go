package main

import (
	"context"
	"fmt"
	"log"
	"os"
	"os/signal"
	"syscall"

	"github.com/esusuconfam/esusu-api/internal/config"
	"github.com/esusuconfam/esusu-api/internal/database"
	"github.com/esusuconfam/esusu-api/internal/handlers"
	authmw "github.com/esusuconfam/esusu-api/internal/middleware"
	"github.com/esusuconfam/esusu-api/internal/services"
	"github.com/m1z23r/drift/pkg/drift"
	"github.com/m1z23r/drift/pkg/middleware"
)

func main() {
	cfg, err := config.Load()
	if err != nil {
		log.Fatalf("Failed to load config: %v", err)
	}

	ctx := context.Background()

	db, err := database.New(ctx, cfg.DatabaseURL)
	if err != nil {
		log.Fatalf("Failed to connect to database: %v", err)
	}
	defer db.Close()

	if err := db.Migrate(ctx); err != nil {
		log.Fatalf("Failed to run migrations: %v", err)
	}

	jwtService := services.NewJWTService(cfg.JWTSecret, cfg.JWTExpiry)
	membershipService := services.NewMembershipService(db)
	userService := services.NewUserService(db, membershipService)
	groupService := services.NewGroupService(db, membershipService)

	authHandler := handlers.NewAuthHandler(userService, jwtService, cfg.JWTExpiry)
	userHandler := handlers.NewUserHandler(userService)
	groupHandler := handlers.NewGroupHandler(groupService)

	app := drift.New()

	if cfg.IsProduction() {
		app.SetMode(drift.ReleaseMode)
	} else {
		app.SetMode(drift.DebugMode)
	}

	app.Use(middleware.Recovery())
	app.Use(middleware.CORSWithConfig(middleware.CORSConfig{
		AllowOrigins: []string{"*"},
		AllowMethods: []string{"GET", "POST", "PUT", "PATCH", "DELETE", "OPTIONS"},
		AllowHeaders: []string{"Origin", "Content-Type", "Accept", "Authorization"},
		MaxAge:       86400,
	}))
	app.Use(middleware.BodyParser())

	api := app.Group("/api/v1")

	auth := api.Group("/auth")
	auth.Post("/register", authHandler.Register)
	auth.Post("/login", authHandler.Login)

	protected := api.Group("")
	protected.Use(authmw.Auth(jwtService))

	protected.Get("/users/me", userHandler.GetProfile)
	protected.Get("/users/me/invites", userHandler.ListInvites)
	protected.Post("/invites/:id/respond", userHandler.RespondToInvite)

	protected.Get("/groups", groupHandler.Search)
	protected.Post("/groups", groupHandler.Create)
	protected.Post("/groups/join", groupHandler.JoinWithCode)
	protected.Get("/groups/:id", groupHandler.Get)
	protected.Get("/groups/:id/members", groupHandler.ListMembers)
	protected.Delete("/groups/:id/members/:userId", groupHandler.RemoveMember)
	protected.Post("/groups/:id/join-requests", groupHandler.RequestToJoin)
	protected.Get("/groups/:id/join-requests", groupHandler.ListJoinRequests)
	protected.Post("/groups/:id/invites", groupHandler.Invite)
	protected.Post("/join-requests/:id", groupHandler.HandleJoinRequest)

	api.Get("/health", func(c *drift.Context) {
		_ = c.JSON(200, map[string]string{"status": "ok"})
	})

	go func() {
		addr := fmt.Sprintf(":%s", cfg.Port)
		log.Printf("Server starting on %s", addr)
		if err := app.Run(addr); err != nil {
			log.Fatalf("Server failed: %v", err)
		}
	}()

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit

	log.Println("Shutting down server...")
}
