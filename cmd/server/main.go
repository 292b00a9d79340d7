// Package main is the entry point for the ProgramHub API server.
// It wires configuration, logging, the database pool, migrations, and
// all HTTP routes, then serves the JSON API.
package main

import (
	"context"
	"log"
	"time"

	"github.com/gofiber/fiber/v2"
	"github.com/gofiber/fiber/v2/middleware/recover"
	"github.com/gofiber/fiber/v2/middleware/session"

	"github.com/maeulsoft/programhub/internal/config"
	"github.com/maeulsoft/programhub/internal/database"
	"github.com/maeulsoft/programhub/internal/handlers"
	"github.com/maeulsoft/programhub/internal/logger"
	"github.com/maeulsoft/programhub/internal/repository"
	"github.com/maeulsoft/programhub/internal/security"
	"github.com/maeulsoft/programhub/internal/services"
)

func main() {
	cfg, err := config.Load()
	if err != nil {
		log.Fatalf("failed to load configuration: %v", err)
	}

	appLog := logger.NewStructured(cfg.Logging.Level, cfg.Logging.Format)
	appLog.Info("starting programhub", map[string]interface{}{
		"environment": cfg.App.Environment,
		"port":        cfg.Server.Port,
	})

	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	db, err := database.Connect(ctx, database.Config{
		URL:      cfg.Database.URL,
		MaxConns: cfg.Database.MaxConns,
		MinConns: cfg.Database.MinConns,
	})
	cancel()
	if err != nil {
		log.Fatalf("failed to connect to database: %v", err)
	}
	defer db.Close()

	if err := database.RunMigrations(cfg.Database.URL, appLog); err != nil {
		log.Fatalf("failed to run migrations: %v", err)
	}

	store := session.New(session.Config{
		Expiration:     cfg.Session.Expiration,
		CookieName:     cfg.Session.CookieName,
		CookieSecure:   cfg.Session.CookieSecure,
		CookieHTTPOnly: true,
		CookieSameSite: "Lax",
		CookiePath:     "/",
	})

	loginLimiter := security.NewRateLimiter(cfg.Limits.LoginPerMinute, time.Minute/time.Duration(cfg.Limits.LoginPerMinute))
	defer loginLimiter.Stop()
	submitLimiter := security.NewRateLimiter(cfg.Limits.SubmitPerMinute, time.Minute/time.Duration(cfg.Limits.SubmitPerMinute))
	defer submitLimiter.Stop()

	userRepo := repository.NewUserRepository(db)
	auditRepo := repository.NewAuditRepository(db)
	statsRepo := repository.NewStatsRepository(db)

	programService := services.NewProgramService(db, appLog)
	applicationService := services.NewApplicationService(db, appLog)
	selectionService := services.NewSelectionService(db, appLog)
	authService := services.NewAuthService(userRepo, appLog)
	userService := services.NewUserService(userRepo, appLog)

	app := fiber.New(fiber.Config{
		AppName:      cfg.App.Name,
		ErrorHandler: handlers.ErrorHandler(appLog),
	})
	app.Use(recover.New())

	app.Get("/healthz", func(c *fiber.Ctx) error {
		if err := db.Ping(c.Context()); err != nil {
			return fiber.NewError(fiber.StatusServiceUnavailable, "database unreachable")
		}
		return c.JSON(fiber.Map{"ok": true})
	})

	handlers.RegisterRoutes(app, handlers.Deps{
		Store:         store,
		Auth:          handlers.NewAuthHandler(store, authService, auditRepo),
		Programs:      handlers.NewProgramHandler(programService, applicationService, auditRepo),
		Applications:  handlers.NewApplicationHandler(applicationService, auditRepo),
		Selections:    handlers.NewSelectionHandler(selectionService, auditRepo),
		Dashboard:     handlers.NewDashboardHandler(statsRepo, auditRepo),
		Users:         handlers.NewUserHandler(userService, auditRepo),
		LoginLimiter:  loginLimiter,
		SubmitLimiter: submitLimiter,
	})

	if err := app.Listen(":" + cfg.Server.Port); err != nil {
		log.Fatalf("server stopped: %v", err)
	}
}
