package main

import (
	"context"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/gorilla/mux"
	"github.com/medflow/intake/api"
	"github.com/medflow/intake/cache"
	"github.com/medflow/intake/config"
	"github.com/medflow/intake/flow"
	"github.com/medflow/intake/middleware"
	"github.com/medflow/intake/models"
	"github.com/medflow/intake/providers"
	"github.com/medflow/intake/security"
	"github.com/medflow/intake/services"
	"github.com/medflow/intake/stores"
	"gorm.io/driver/postgres"
	"gorm.io/gorm"
)

const (
	colorReset  = "\033[0m"
	colorRed    = "\033[31m"
	colorGreen  = "\033[32m"
	colorYellow = "\033[33m"
	colorBlue   = "\033[34m"
	colorCyan   = "\033[36m"
	colorBold   = "\033[1m"
)

func printStep(step, message string) {
	fmt.Printf("%s[%s]%s %s%s%s\n", colorBlue, step, colorReset, colorBold, message, colorReset)
}

func printSuccess(message string) {
	fmt.Printf("%s✓%s %s\n", colorGreen, colorReset, message)
}

func printWarning(message string) {
	fmt.Printf("%s⚠%s %s\n", colorYellow, colorReset, message)
}

func printError(message string) {
	fmt.Printf("%s✗%s %s\n", colorRed, colorReset, message)
}

func main() {
	fmt.Printf("%s%sMedFlow Intake — telehealth intake and payment service%s\n\n", colorCyan, colorBold, colorReset)

	printStep("1/7", "Loading configuration...")
	cfg, err := config.LoadConfig()
	if err != nil {
		printError(fmt.Sprintf("Failed to load configuration: %v", err))
		os.Exit(1)
	}
	if err := cfg.Validate(); err != nil {
		printError(fmt.Sprintf("Configuration validation failed: %v", err))
		os.Exit(1)
	}
	printSuccess("Configuration loaded and validated")

	printStep("2/7", "Connecting to database...")
	db, err := gorm.Open(postgres.Open(cfg.GetDatabaseURL()), &gorm.Config{})
	if err != nil {
		printError(fmt.Sprintf("Failed to connect to database: %v", err))
		os.Exit(1)
	}

	sqlDB, err := db.DB()
	if err != nil {
		printError(fmt.Sprintf("Failed to get database instance: %v", err))
		os.Exit(1)
	}
	defer sqlDB.Close()

	if err := db.AutoMigrate(&models.Request{}, &models.RequestAnswers{}, &models.Payment{}); err != nil {
		printError(fmt.Sprintf("Failed to run migrations: %v", err))
		os.Exit(1)
	}
	printSuccess(fmt.Sprintf("Connected to PostgreSQL at %s:%d", cfg.Database.Host, cfg.Database.Port))

	printStep("3/7", "Connecting to draft storage...")
	var draftStore flow.DraftStore
	redisDrafts, err := cache.NewRedisDraftStore(cache.RedisConfig{
		Host:     cfg.Redis.Host,
		Port:     cfg.Redis.Port,
		Password: cfg.Redis.Password,
		DB:       cfg.Redis.DB,
		DraftTTL: cfg.Redis.DraftTTL,
	})
	if err != nil {
		printWarning(fmt.Sprintf("Failed to connect to Redis: %v (drafts held in memory only)", err))
		draftStore = flow.NewMemoryDraftStore()
	} else {
		defer redisDrafts.Close()
		draftStore = redisDrafts
		printSuccess(fmt.Sprintf("Connected to Redis at %s:%d", cfg.Redis.Host, cfg.Redis.Port))
	}

	printStep("4/7", "Initializing payment gateway...")
	var gateway providers.CheckoutProvider
	switch cfg.Gateway.Provider {
	case "xendit":
		gateway = providers.NewXenditProvider(cfg.Xendit.Secret)
	default:
		gateway = providers.NewStripeProvider(cfg.Stripe.Secret)
	}
	printSuccess(fmt.Sprintf("Payment gateway ready: %s", gateway.Name()))

	printStep("5/7", "Initializing stores and services...")
	requestStore := stores.NewRequestStore(db)
	paymentStore := stores.NewPaymentStore(db)
	resolver := services.NewPriceResolver(cfg.Pricing)
	submissionService := services.NewSubmissionService(requestStore, paymentStore, gateway, resolver, cfg.Checkout, cfg.Gateway.Timeout)
	retryService := services.NewPaymentRetryService(requestStore, paymentStore, gateway, resolver, cfg.Checkout, cfg.Gateway.Timeout)
	printSuccess("Stores and services initialized")

	printStep("6/7", "Setting up HTTP server...")
	jwtManager := security.NewJWTManager(cfg.Security.JWTSecret, "medflow", "intake-api")
	authMiddleware := middleware.NewAuthMiddleware(jwtManager)

	intakeHandler := api.NewIntakeHandler(submissionService, retryService, submissionService)
	draftHandler := api.NewDraftHandler(draftStore)

	router := mux.NewRouter()
	router.Use(middleware.RecoveryMiddleware)
	router.Use(middleware.LoggingMiddleware)
	router.Use(middleware.CORSMiddleware([]string{"http://localhost:3000", cfg.Checkout.BaseURL}))
	router.Use(authMiddleware.IdentityMiddleware)

	apiRouter := router.PathPrefix("/api/v1").Subrouter()
	apiRouter.HandleFunc("/health", api.HealthCheckHandler).Methods("GET")
	apiRouter.HandleFunc("/requests", intakeHandler.HandleSubmit).Methods("POST")
	apiRouter.HandleFunc("/requests", intakeHandler.HandleListRequests).Methods("GET")
	apiRouter.HandleFunc("/requests/{id}", intakeHandler.HandleGetRequest).Methods("GET")
	apiRouter.HandleFunc("/requests/{id}/payment/retry", intakeHandler.HandleRetryPayment).Methods("POST")
	apiRouter.HandleFunc("/drafts/{service}", draftHandler.HandleGet).Methods("GET")
	apiRouter.HandleFunc("/drafts/{service}", draftHandler.HandlePut).Methods("PUT")
	apiRouter.HandleFunc("/drafts/{service}", draftHandler.HandleDelete).Methods("DELETE")

	server := &http.Server{
		Addr:         ":" + cfg.Server.Port,
		Handler:      router,
		ReadTimeout:  cfg.Server.ReadTimeout,
		WriteTimeout: cfg.Server.WriteTimeout,
		IdleTimeout:  cfg.Server.IdleTimeout,
	}
	printSuccess("HTTP server configured")

	printStep("7/7", "Starting...")
	go func() {
		if err := server.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			printError(fmt.Sprintf("Server failed to start: %v", err))
			os.Exit(1)
		}
	}()
	printSuccess(fmt.Sprintf("Listening on port %s (%s)", cfg.Server.Port, cfg.Environment))

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit

	printWarning("Shutting down...")

	ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()

	if err := server.Shutdown(ctx); err != nil {
		printError(fmt.Sprintf("Server forced to shutdown: %v", err))
		os.Exit(1)
	}

	printSuccess("Server stopped gracefully")
}
