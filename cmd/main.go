package main

import (
	"context"
	"log"
	"os"

	"github.com/gofiber/fiber/v2"

	"github.com/hendisantika/jwt-auth-service/config"
	"github.com/hendisantika/jwt-auth-service/db"
	"github.com/hendisantika/jwt-auth-service/internal/auth/handler"
	"github.com/hendisantika/jwt-auth-service/internal/auth/middleware"
	repo "github.com/hendisantika/jwt-auth-service/internal/auth/repository/postgres"
	"github.com/hendisantika/jwt-auth-service/internal/auth/service"
)

func main() {
	cfg, err := config.Load(os.Args[1:])
	if err != nil {
		log.Fatalf("invalid configuration: %v", err)
	}

	ctx := context.Background()

	if err := db.Migrate(cfg.DBURL); err != nil {
		log.Fatalf("migration failed: %v", err)
	}

	pool, err := db.NewPostgresPool(ctx, cfg.DBURL)
	if err != nil {
		log.Fatalf("database connection failed: %v", err)
	}
	defer pool.Close()

	clock := service.SystemClock{}

	repository := repo.NewRepository(pool)
	txManager := repo.NewTxManager(pool)

	// A broken signing setup must abort startup, never surface per request.
	tokenService, err := service.NewTokenService(cfg.JWTSecret, cfg.AccessTokenTTL, clock)
	if err != nil {
		log.Fatalf("token service init failed: %v", err)
	}

	refreshService := service.NewRefreshTokenService(repository, cfg.RefreshTokenTTL, clock)
	authService := service.NewAuthService(repository, tokenService, refreshService,
		service.BcryptHasher{}, txManager, clock, cfg)
	authHandler := handler.NewAuthHandler(authService, cfg)

	authenticate := middleware.NewRequestAuthenticator(middleware.AuthenticatorConfig{
		Tokens:           tokenService,
		Users:            repository,
		AccessCookieName: cfg.AccessCookieName,
		ExcludedPrefixes: []string{"/api/v1/auth"},
	})

	app := fiber.New()
	handler.RegisterRoutes(app, authHandler, authenticate)

	if err := app.Listen(":" + cfg.Port); err != nil {
		log.Fatalf("server stopped: %v", err)
	}
}
