package main

import (
	"context"
	"errors"
	"fmt"
	"github.com/Chakyiu/chakyiu-blog/internal/auth"
	"github.com/Chakyiu/chakyiu-blog/internal/cache"
	"github.com/Chakyiu/chakyiu-blog/internal/config"
	"github.com/Chakyiu/chakyiu-blog/internal/data"
	"github.com/Chakyiu/chakyiu-blog/internal/github"
	"github.com/Chakyiu/chakyiu-blog/internal/handler"
	"github.com/Chakyiu/chakyiu-blog/internal/logger"
	"github.com/Chakyiu/chakyiu-blog/internal/markdown"
	"github.com/Chakyiu/chakyiu-blog/internal/middleware"
	"github.com/Chakyiu/chakyiu-blog/internal/service"
	"github.com/Chakyiu/chakyiu-blog/internal/session"
	"github.com/Chakyiu/chakyiu-blog/internal/view"
	"github.com/Chakyiu/chakyiu-blog/web"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/spf13/pflag"
	_ "go.uber.org/automaxprocs"
)

func main() {
	// --- Configuration Loading ---
	flags := pflag.NewFlagSet("server", pflag.ExitOnError)
	config.Flags(flags)
	if err := flags.Parse(os.Args[1:]); err != nil {
		fmt.Printf("Failed to parse flags: %v\n", err)
		os.Exit(2)
	}
	cfg, err := config.LoadConfig(flags)
	if err != nil {
		// Use fmt.Printf here because the logger is not yet initialized.
		fmt.Printf("Failed to load configuration: %v\n", err)
		os.Exit(1)
	}

	// --- Logger Initialization ---
	log := logger.New(cfg.Log, os.Stdout)

	// --- Database Initialization and Migration ---
	log.Info("Connecting to the database...")
	db, err := data.NewDB(cfg.DB)
	if err != nil {
		log.Fatal(err, "Failed to connect to database")
	}
	defer db.Close()

	log.Info("Applying database migrations...")
	if err := data.ApplyMigrations(db); err != nil {
		log.Fatal(err, "Failed to apply migrations")
	}
	log.Info("Migrations applied successfully.")
	if migrateOnly, _ := flags.GetBool("migrate-only"); migrateOnly {
		return
	}

	// --- Pre-flight Checks ---
	if cfg.Session.SecretKey == "" || cfg.Session.SecretKey == "CHANGE_ME_IN_PRODUCTION_SECRET!!" {
		log.Fatal(errors.New("session secret key not set"), "Please set a secure BLOG_SESSION_SECRETKEY environment variable.")
	}

	// --- Session Management Setup ---
	sessionManager := session.New(db, session.Options{
		Lifetime: time.Duration(cfg.Session.Lifetime) * time.Hour,
		Secure:   cfg.Server.TLS.Enabled,
	})

	// --- Authentication and Authorization Setup ---
	log.Info("Initializing authentication and authorization...")
	startCtx, cancelStart := context.WithTimeout(context.Background(), 15*time.Second)
	var authenticator handler.Authenticator
	if a, err := auth.NewAuthenticator(startCtx, &cfg.OIDC); err != nil {
		log.Error(err, "OIDC provider unavailable, sign-in is disabled")
	} else {
		authenticator = a
	}
	cancelStart()

	enforcer, err := auth.NewEnforcer(db.DriverName(), cfg.DB.DSN, "auth_model.conf")
	if err != nil {
		log.Fatal(err, "Failed to initialize enforcer")
	}
	auth.SeedDefaultPolicies(enforcer, log)
	log.Info("Auth components initialized and policies seeded.")

	// --- View Template Initialization ---
	viewService, err := view.New(web.TemplateFS)
	if err != nil {
		log.Fatal(err, "Failed to initialize view templates")
	}

	// --- Cache Initialization ---
	log.Info(fmt.Sprintf("Initializing %s cache...", cfg.Cache.Driver))
	store, err := cache.New(cfg.Cache)
	if err != nil {
		log.Fatal(err, "Failed to initialize cache")
	}
	defer store.Close()
	ttl := time.Duration(cfg.Cache.TTLSeconds) * time.Second

	renderer := markdown.New(cfg.Content)

	// --- Dependency Injection and Handler Initialization ---
	postRepository := data.NewSQLPostRepository(db)
	commentRepository := data.NewSQLCommentRepository(db)
	notificationRepository := data.NewSQLNotificationRepository(db)
	userRepository := data.NewSQLUserRepository(db)
	projectRepository := data.NewSQLProjectRepository(db)

	dispatcher := service.NewDispatcher(notificationRepository, store, log)
	postService := service.NewPostService(postRepository, renderer, store, ttl, cfg.Content, log)
	commentService := service.NewCommentService(commentRepository, postRepository, renderer, dispatcher, cfg.Content, log)
	projectService := service.NewProjectService(projectRepository, renderer, github.NewReadmeClient(cfg.GitHub), cfg.Content, log)
	notificationService := service.NewNotificationService(notificationRepository, store, ttl, log)
	userService := service.NewUserService(userRepository, auth.NewRoleSync(enforcer), dispatcher, cfg.OIDC.AdminEmails, log)

	pages := handler.NewPages(viewService, notificationService, log)
	handlers := handler.Handlers{
		Posts:         handler.NewPostHandler(postService, commentService, pages, renderer, cfg.Content.MaxCommentLength, log),
		Projects:      handler.NewProjectHandler(projectService, pages, log),
		Comments:      handler.NewCommentHandler(commentService, log),
		Notifications: handler.NewNotificationHandler(notificationService, pages, log),
		Users:         handler.NewUserHandler(userService, log),
		Auth:          handler.NewAuthHandler(authenticator, sessionManager, userService, log),
		Seo:           handler.NewSeoHandler(postService, projectService, cfg.Server, log),
	}

	authzMiddleware := middleware.Authorizer(enforcer, sessionManager, log)
	errorMiddleware := middleware.Error(log, viewService)

	// --- Router Setup ---
	router := handler.NewRouter(handlers, authzMiddleware, errorMiddleware, sessionManager)

	// --- Server Initialization and Graceful Shutdown ---
	server := &http.Server{
		Addr:              fmt.Sprintf(":%s", cfg.Server.Port),
		Handler:           router,
		ReadHeaderTimeout: 10 * time.Second,
	}
	go func() {
		if cfg.Server.TLS.Enabled {
			log.Info(fmt.Sprintf("Starting HTTPS server on %s", server.Addr))
			if err := server.ListenAndServeTLS(cfg.Server.TLS.CertFile, cfg.Server.TLS.KeyFile); err != nil && !errors.Is(err, http.ErrServerClosed) {
				log.Fatal(err, "Could not start HTTPS server")
			}
		} else {
			log.Info(fmt.Sprintf("Starting HTTP server on %s", server.Addr))
			if err := server.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
				log.Fatal(err, "Could not start HTTP server")
			}
		}
	}()
	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit
	log.Warn("Shutting down server...")
	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	if err := server.Shutdown(ctx); err != nil {
		log.Fatal(err, "Server forced to shutdown")
	}
	log.Info("Server exiting")
}
