package main

import (
	"context"
	"errors"
	"log"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/gin-gonic/gin"

	"quizone/config"
	"quizone/handlers"
	"quizone/logger"
	"quizone/mail"
	"quizone/middleware"
	"quizone/routes"
	"quizone/services"
	"quizone/storage"
	"quizone/storage/gormstore"
	"quizone/storage/memstore"
)

func main() {
	// Load configuration
	cfg := config.Load()

	host, _ := os.Hostname()
	logger.Init(cfg.RollbarToken, cfg.Env, host)
	defer logger.Close()

	store, resets := initStorage(cfg)

	var mailer mail.Sender
	if cfg.SendgridAPIKey != "" {
		mailer = mail.NewSendgridSender(cfg.SendgridAPIKey, cfg.MailFrom)
	} else {
		mailer = mail.NewConsoleSender(cfg.MailFrom)
	}

	images, err := services.NewLocalImageStore(cfg.UploadDir, cfg.PublicURL)
	if err != nil {
		log.Fatal("Failed to prepare upload directory:", err)
	}

	// Initialize services
	authService := services.NewAuthService(store, resets, mailer, services.NewGoogleVerifier(cfg.GoogleClientID), services.AuthConfig{
		AccessSecret:  cfg.JWTSecret,
		RefreshSecret: cfg.JWTRefresh,
		AccessTTL:     cfg.AccessTTL,
		RefreshTTL:    cfg.RefreshTTL,
		FrontendURL:   cfg.FrontendURL,
	})
	registry := services.NewRegistry(authService)
	examService := services.NewExamService(store)
	resultService := services.NewResultService(store)

	// Initialize WebSocket hub
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	hub := services.NewHub(registry)
	hubDone := make(chan struct{})
	go func() {
		hub.Run(ctx)
		close(hubDone)
	}()

	// Initialize handlers
	h := routes.Handlers{
		Auth:         handlers.NewAuthHandler(authService, images),
		User:         handlers.NewUserHandler(services.NewUserService(store), images),
		QuestionPack: handlers.NewQuestionPackHandler(services.NewQuestionPackService(store), images),
		Flashcard:    handlers.NewFlashcardHandler(services.NewFlashcardService(store), images),
		Comment:      handlers.NewCommentHandler(services.NewCommentService(store), images),
		Class:        handlers.NewClassHandler(services.NewClassService(store, cfg.FrontendURL)),
		Exam:         handlers.NewExamHandler(examService, resultService),
		Message:      handlers.NewMessageHandler(services.NewMessageService(store, registry)),
		Admin:        handlers.NewAdminHandler(services.NewAdminService(store, registry)),
	}

	// Setup Gin router
	if cfg.Env == "PROD" {
		gin.SetMode(gin.ReleaseMode)
	}
	router := gin.New()
	router.Use(gin.Logger(), middleware.Recovery(), middleware.CORS(cfg.FrontendURL))

	routes.SetupRoutes(router, h, hub, authService, cfg.UploadDir)

	srv := &http.Server{
		Addr:              cfg.Addr(),
		Handler:           router,
		ReadHeaderTimeout: 10 * time.Second,
	}

	go func() {
		log.Printf("Server starting on %s (storage: %s)", cfg.Addr(), cfg.StorageDriver)
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			log.Fatal("Failed to start server:", err)
		}
	}()

	<-ctx.Done()
	log.Println("Shutting down server...")

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	if err := srv.Shutdown(shutdownCtx); err != nil {
		log.Printf("Server shutdown: %v", err)
	}
	<-hubDone
	registry.Shutdown()
}

// initStorage picks postgres + redis, or the in-memory store for local runs.
func initStorage(cfg *config.Config) (storage.Store, services.ResetTokenStore) {
	if cfg.StorageDriver == config.StorageMemory {
		log.Println("Using in-memory storage; data is lost on restart")
		return memstore.New(), services.NewMemoryResetTokens()
	}

	// Initialize database
	db, err := config.InitDB(cfg)
	if err != nil {
		log.Fatal("Failed to connect to database:", err)
	}
	if err := gormstore.AutoMigrate(db); err != nil {
		log.Fatal("Failed to migrate database:", err)
	}

	// Initialize Redis
	redisClient := config.InitRedis(cfg)
	return gormstore.New(db), services.NewRedisResetTokens(redisClient)
}
