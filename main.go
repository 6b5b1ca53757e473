package main

import (
	"context"
	"log"
	"os"
	"os/signal"
	"syscall"
	"time"

	"client-vault/internal/audit"
	"client-vault/internal/auth"
	"client-vault/internal/config"
	"client-vault/internal/http"
	"client-vault/internal/repository/postgres"
	"client-vault/internal/storage/s3"
	"client-vault/pkg/password"

	"github.com/joho/godotenv"
	"github.com/redis/go-redis/v9"
)

const (
	envFilePath      = ".env"
	serverAddrPrefix = ":"
	signalBufferSize = 1
	logOutputFlags   = log.LstdFlags | log.Lshortfile
	startupTimeout   = 30 * time.Second
)

var shutdownSignals = []os.Signal{
	syscall.SIGINT,
	syscall.SIGTERM,
}

func main() {
	if err := godotenv.Load(envFilePath); err != nil {
		log.Println("Warning: .env file not found, using environment variables")
	}

	log.SetOutput(os.Stderr)
	log.SetFlags(logOutputFlags)

	cfg, err := config.Load()
	if err != nil {
		log.Fatalf("Failed to load configuration: %v", err)
	}

	log.Println("Configuration loaded successfully")

	db, err := postgres.New(&cfg.Database)
	if err != nil {
		log.Fatalf("Failed to connect to database: %v", err)
	}
	defer db.Close()

	log.Println("Database connection established")

	startupCtx, cancelStartup := context.WithTimeout(context.Background(), startupTimeout)
	defer cancelStartup()

	if err := db.Migrate(startupCtx); err != nil {
		log.Fatalf("Failed to migrate database: %v", err)
	}

	log.Println("Database schema up to date")

	mediaStore, err := s3.NewClient(&cfg.AWS)
	if err != nil {
		log.Fatalf("Failed to create S3 client: %v", err)
	}

	log.Println("S3 client initialized")

	jwtService := auth.NewJWTService(cfg.JWT.Secret, cfg.JWT.ExpiryDuration)

	serverDeps := &http.ServerDependencies{
		Config:     cfg,
		Users:      postgres.NewUserRepository(db),
		Assets:     postgres.NewAssetRepository(db),
		Media:      mediaStore,
		Hasher:     password.NewHasher(cfg.App.BcryptCost),
		JWTService: jwtService,
		Audit:      audit.NewLogger(db.Pool),
	}

	if cfg.OAuth.OAuthEnabled() {
		redisClient := redis.NewClient(&redis.Options{
			Addr:     cfg.Redis.Addr,
			Password: cfg.Redis.Password,
			DB:       cfg.Redis.DB,
		})
		defer redisClient.Close()

		if err := redisClient.Ping(startupCtx).Err(); err != nil {
			log.Fatalf("Failed to connect to redis: %v", err)
		}

		serverDeps.OAuth = auth.NewGoogleProvider(&cfg.OAuth)
		serverDeps.States = auth.NewRedisStateStore(redisClient)

		log.Println("Google login enabled")
	} else {
		log.Println("Google login disabled: GOOGLE_CLIENT_ID not set")
	}

	server := http.NewServer(serverDeps)

	go func() {
		log.Printf("Starting HTTP server on port %s", cfg.Server.Port)
		if err := server.Start(serverAddrPrefix + cfg.Server.Port); err != nil {
			log.Printf("Server stopped: %v", err)
		}
	}()

	quit := make(chan os.Signal, signalBufferSize)
	signal.Notify(quit, shutdownSignals...)
	<-quit

	log.Println("Shutting down server...")

	ctx, cancel := context.WithTimeout(context.Background(), cfg.Server.ShutdownTimeout)
	defer cancel()

	if err := server.Shutdown(ctx); err != nil {
		log.Fatalf("Server forced to shutdown: %v", err)
	}

	log.Println("Server exited gracefully")
}
