package main

import (
	"context"
	"log"
	"log/slog"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/redis/go-redis/v9"

	"github.com/fleetgate/fleetgate-core/internal/adapters/driven/auth"
	"github.com/fleetgate/fleetgate-core/internal/adapters/driven/postgres"
	redisadapter "github.com/fleetgate/fleetgate-core/internal/adapters/driven/redis"
	"github.com/fleetgate/fleetgate-core/internal/adapters/driven/tesla"
	"github.com/fleetgate/fleetgate-core/internal/adapters/driving/http"
	"github.com/fleetgate/fleetgate-core/internal/config"
	"github.com/fleetgate/fleetgate-core/internal/core/ports/driven"
	"github.com/fleetgate/fleetgate-core/internal/core/services"
)

var version = "dev"

func main() {
	cfg, err := config.Load()
	if err != nil {
		log.Fatalf("Configuration error: %v", err)
	}
	if cfg.Version != "" {
		version = cfg.Version
	}

	log.Printf("fleetgate-core %s starting", version)

	// Setup context with cancellation for graceful shutdown
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	// Handle shutdown signals
	sigCh := make(chan os.Signal, 1)
	signal.Notify(sigCh, syscall.SIGINT, syscall.SIGTERM)
	go func() {
		<-sigCh
		log.Println("Shutdown signal received, stopping...")
		cancel()
	}()

	// ===== Initialize PostgreSQL =====
	log.Println("Connecting to PostgreSQL...")
	dbConfig := postgres.Config{
		URL:             cfg.DatabaseURL,
		MaxOpenConns:    cfg.DBMaxOpenConns,
		MaxIdleConns:    cfg.DBMaxIdleConns,
		ConnMaxLifetime: 5 * time.Minute,
		ConnMaxIdleTime: 1 * time.Minute,
	}
	db, err := postgres.Connect(ctx, dbConfig)
	if err != nil {
		log.Fatalf("Failed to connect to database: %v", err)
	}
	defer db.Close()

	// Initialize schema (idempotent)
	if err := db.InitSchema(ctx); err != nil {
		log.Fatalf("Failed to initialize schema: %v", err)
	}
	log.Println("PostgreSQL connected and schema initialized")

	// ===== Initialize Redis (optional) =====
	var redisClient *redis.Client
	if cfg.RedisURL != "" {
		log.Println("Connecting to Redis...")
		opts, err := redis.ParseURL(cfg.RedisURL)
		if err != nil {
			log.Fatalf("Failed to parse Redis URL: %v", err)
		}
		redisClient = redis.NewClient(opts)
		if err := redisClient.Ping(ctx).Err(); err != nil {
			log.Fatalf("Failed to connect to Redis: %v", err)
		}
		defer redisClient.Close()
		log.Println("Redis connected")
	}

	// ===== PostgreSQL Stores =====
	userStore := postgres.NewUserStore(db)

	var tokenStore driven.TokenStore
	if key := cfg.EncryptionKey(); key != nil {
		cipher, err := postgres.NewTokenCipher(key)
		if err != nil {
			log.Fatalf("Failed to create token cipher: %v", err)
		}
		tokenStore = postgres.NewEncryptedTokenStore(db, cipher)
		log.Println("Delegated tokens encrypted at rest")
	} else {
		tokenStore = postgres.NewTokenStore(db)
	}

	// ===== Distributed Lock (Redis if available, otherwise PostgreSQL advisory locks) =====
	var distributedLock driven.DistributedLock
	var lockPinger http.Pinger
	if redisClient != nil {
		redisLock := redisadapter.NewLock(redisClient)
		distributedLock = redisLock
		lockPinger = redisLock
		log.Println("Using Redis refresh lock")
	} else {
		advisoryLock := postgres.NewAdvisoryLock(db)
		distributedLock = advisoryLock
		lockPinger = advisoryLock
		log.Println("Using PostgreSQL advisory refresh lock")
	}

	// ===== Driven adapters (infrastructure) =====
	sessionCodec := auth.NewSessionCodec(cfg.SigningSecret)
	attemptCodec := auth.NewAttemptCodec(cfg.SigningSecret)

	oauthClient := tesla.NewOAuthClient(tesla.OAuthClientConfig{
		BaseURL:      cfg.TeslaAuthBaseURL,
		ClientID:     cfg.TeslaClientID,
		ClientSecret: cfg.TeslaClientSecret,
		RedirectURI:  cfg.TeslaRedirectURI,
	})
	fleetClient := tesla.NewFleetClient(tesla.FleetClientConfig{
		BaseURL: cfg.TeslaFleetBaseURL,
	})

	// Services (core business logic)
	authFlowService := services.NewAuthFlowService(services.AuthFlowConfig{
		Users:    userStore,
		Tokens:   tokenStore,
		OAuth:    oauthClient,
		Sessions: sessionCodec,
		Attempts: attemptCodec,
		Logger:   slog.Default(),
	})
	tokenSupplier := services.NewTokenSupplier(services.TokenSupplierConfig{
		Tokens: tokenStore,
		OAuth:  oauthClient,
		Lock:   distributedLock,
		Logger: slog.Default(),
	})
	userService := services.NewUserService(userStore)
	vehicleService := services.NewVehicleService(tokenSupplier, fleetClient)

	serverConfig := http.Config{
		Host:          cfg.Host,
		Port:          cfg.Port,
		Version:       version,
		SuccessURL:    cfg.AuthSuccessURL,
		SecureCookies: cfg.Production(),
	}
	server := http.NewServer(serverConfig, authFlowService, userService, vehicleService, sessionCodec, db, lockPinger)

	log.Printf("API server starting on :%d", cfg.Port)
	if err := server.Start(); err != nil {
		log.Fatalf("Server error: %v", err)
	}
}
