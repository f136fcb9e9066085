package main

import (
	"fmt"
	"log"
	"os"
	"time"

	"github.com/Marcys1903/ordinansa-sub003/internal/config"
	"github.com/Marcys1903/ordinansa-sub003/internal/database"
	"github.com/Marcys1903/ordinansa-sub003/internal/handlers"
	"github.com/Marcys1903/ordinansa-sub003/internal/middleware"
	"github.com/Marcys1903/ordinansa-sub003/internal/security"
	"github.com/gofiber/fiber/v2"
	"github.com/gofiber/fiber/v2/middleware/recover"
	"github.com/gofiber/fiber/v2/middleware/session"
	"github.com/gofiber/template/html/v2"
	"github.com/spf13/cobra"
)

func serveCmd(configPath *string) *cobra.Command {
	return &cobra.Command{
		Use:   "serve",
		Short: "Start the HTTP server",
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := config.Load(*configPath)
			if err != nil {
				return err
			}
			return serve(cfg)
		},
	}
}

func serve(cfg *config.Config) error {
	if err := database.Connect(&database.Config{
		URL:      cfg.Database.URL,
		MaxConns: 25,
		MinConns: 5,
	}); err != nil {
		return fmt.Errorf("failed to initialize database: %w", err)
	}
	defer database.Close()

	securityConfig := security.DefaultSecurityConfig()
	securityLogger := security.NewLogger()
	validation := security.NewValidationService(securityConfig)

	// Alerter is nil until an email/SIEM integration exists; the monitor
	// still logs bulk-operation and login-failure events.
	securityMiddleware := middleware.NewSecurityMiddleware(securityLogger, securityConfig, nil)
	monitor := security.NewSecurityMonitor(securityLogger, securityConfig, nil)

	// Per-endpoint rate limiters. Refill rates spread each per-minute
	// budget evenly across the minute.
	priorityLimiter := security.NewRateLimiter(
		securityConfig.RateLimitPriority,
		60*time.Second/time.Duration(securityConfig.RateLimitPriority),
	)
	defer priorityLimiter.Stop()

	registrationLimiter := security.NewRateLimiter(
		securityConfig.RateLimitRegistration,
		60*time.Second/time.Duration(securityConfig.RateLimitRegistration),
	)
	defer registrationLimiter.Stop()

	notificationLimiter := security.NewRateLimiter(
		securityConfig.RateLimitNotification,
		60*time.Second/time.Duration(securityConfig.RateLimitNotification),
	)
	defer notificationLimiter.Stop()

	engine := html.New("./web/templates", ".html")
	engine.AddFunc("add", func(a, b int) int { return a + b })
	engine.AddFunc("sub", func(a, b int) int { return a - b })
	if os.Getenv("ENV") != "production" {
		engine.Reload(true)
	}

	app := fiber.New(fiber.Config{
		Views:             engine,
		ViewsLayout:       "layouts/main",
		PassLocalsToViews: true,
		ReadTimeout:       cfg.Server.ReadTimeout,
		WriteTimeout:      cfg.Server.WriteTimeout,
	})

	app.Use(recover.New())
	app.Use(securityMiddleware.RequestLogger())
	app.Use(securityMiddleware.SecureHeaders())
	app.Use(securityMiddleware.InputValidation())

	app.Static("/static", "./web/static")

	store := session.New(session.Config{
		Expiration:     cfg.Session.Expiration,
		CookieSecure:   true,
		CookieHTTPOnly: true,
		CookieSameSite: "Lax",
		CookieName:     securityConfig.SessionCookieName,
		CookiePath:     "/",
	})

	app.Use(securityMiddleware.SetCSRFToken(store))

	authHandler := handlers.NewAuthHandler(store, securityMiddleware, securityLogger)
	dashboardHandler := handlers.NewDashboardHandler()
	historyHandler := handlers.NewHistoryHandler(validation)
	priorityHandler := handlers.NewPriorityHandler(validation, securityLogger)
	registrationHandler := handlers.NewRegistrationHandler(validation, securityLogger)
	notificationHandler := handlers.NewNotificationHandler(securityLogger, monitor)
	progressHandler := handlers.NewProgressHandler()
	adminHandler := handlers.NewAdminHandler(validation, securityLogger)

	// Root redirects authenticated users to the dashboard.
	app.Get("/", func(c *fiber.Ctx) error {
		sess, _ := store.Get(c)
		if sess.Get("user_id") != nil {
			return c.Redirect("/dashboard")
		}
		return c.Redirect("/login")
	})

	app.Get("/login", authHandler.ShowLogin)
	app.Post("/login", authHandler.Login)
	app.Get("/logout", authHandler.Logout)

	// Authenticated routes. POST routes also pass CSRF validation and a
	// per-endpoint rate limit.
	authed := app.Group("/",
		middleware.AuthRequired(store),
		securityMiddleware.CSRFProtection(store),
	)

	authed.Get("/dashboard", dashboardHandler.Dashboard)
	authed.Get("/history", historyHandler.History)

	authed.Get("/priority", priorityHandler.Worklist)
	authed.Post("/priority",
		securityMiddleware.RateLimit(priorityLimiter, "priority"),
		priorityHandler.Action,
	)

	authed.Get("/registrations", registrationHandler.Ledger)
	authed.Post("/registrations",
		securityMiddleware.RateLimit(registrationLimiter, "registration"),
		registrationHandler.Action,
	)

	authed.Get("/notifications", notificationHandler.Center)
	authed.Post("/notifications",
		securityMiddleware.RateLimit(notificationLimiter, "notification"),
		notificationHandler.Action,
	)

	authed.Get("/progress", progressHandler.Report)
	authed.Post("/progress", progressHandler.UpdateKPI)

	// Admin-only routes.
	admin := app.Group("/admin",
		middleware.AuthRequired(store),
		middleware.AdminOnly(),
		securityMiddleware.CSRFProtection(store),
	)

	admin.Get("/users", adminHandler.Users)
	admin.Post("/users", adminHandler.UsersAction)
	admin.Get("/audit", adminHandler.Audit)

	securityLogger.Info(fmt.Sprintf("QC Ordinance Tracker listening on :%s", cfg.Server.Port))

	if err := app.Listen(":" + cfg.Server.Port); err != nil {
		securityLogger.Critical("Failed to start server", err)
		log.Fatalf("Failed to start server: %v", err)
	}
	return nil
}
