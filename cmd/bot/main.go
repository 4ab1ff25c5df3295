package main

import (
	"context"
	"errors"
	"log"
	"net/http"
	"os"
	"os/signal"
	"strconv"
	"strings"
	"syscall"
	"time"

	"github.com/joho/godotenv"
	"github.com/redis/go-redis/v9"

	"github.com/Impluse2/flowersss/internal/admin"
	"github.com/Impluse2/flowersss/internal/bot"
	"github.com/Impluse2/flowersss/internal/cache"
	"github.com/Impluse2/flowersss/internal/cart"
	"github.com/Impluse2/flowersss/internal/catalog"
	"github.com/Impluse2/flowersss/internal/refresh"
	"github.com/Impluse2/flowersss/internal/repository"
	"github.com/Impluse2/flowersss/internal/telegram"
)

func getEnv(key, defaultValue string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return defaultValue
}

func getEnvInt(key string, defaultValue int) int {
	if value := os.Getenv(key); value != "" {
		if n, err := strconv.Atoi(value); err == nil {
			return n
		}
		log.Printf("invalid %s=%q, using %d", key, os.Getenv(key), defaultValue)
	}
	return defaultValue
}

func main() {
	log.Println("flowersss bot starting...")

	if err := godotenv.Load(); err != nil {
		log.Println("no .env file, relying on environment")
	}

	// Configuration
	botToken := os.Getenv("BOT_TOKEN")
	if botToken == "" {
		log.Fatal("BOT_TOKEN is required")
	}
	baseURL := getEnv("BASE_URL", "https://flowersss.example.com")
	siteURL := getEnv("SITE_URL", baseURL)
	pageSize := getEnvInt("PAGE_SIZE", 10)
	adminPort := getEnv("ADMIN_PORT", "8081")
	scraperCmd := getEnv("SCRAPER_CMD", "./parser")
	scraperTimeout := time.Duration(getEnvInt("SCRAPER_TIMEOUT_SECONDS", 300)) * time.Second

	// Database setup
	creds := &repository.Credentials{
		Host:              getEnv("DB_HOST", "localhost"),
		Port:              getEnvInt("DB_PORT", 5432),
		User:              getEnv("DB_USER", "postgres"),
		Password:          getEnv("DB_PASSWORD", "postgres"),
		DBName:            getEnv("DB_NAME", "flowersss"),
		MigrationsDirPath: getEnv("MIGRATIONS_PATH", "./internal/repository/migrations"),
	}

	repo, err := repository.NewRepository(creds)
	if err != nil {
		log.Fatalf("Failed to connect to database: %v", err)
	}
	defer repo.Close()

	if err := repo.RunMigrations(creds); err != nil {
		log.Fatalf("Failed to run migrations: %v", err)
	}
	log.Println("Database migrations completed")

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	// Redis cart cache
	redisClient := redis.NewClient(&redis.Options{
		Addr:     getEnv("REDIS_ADDR", "localhost:6379"),
		Password: getEnv("REDIS_PASSWORD", ""),
		DB:       0,
	})
	defer redisClient.Close()
	if err := redisClient.Ping(ctx).Err(); err != nil {
		log.Fatal("Redis connection failed: ", err)
	}
	log.Println("Redis ping succeeded")

	// Catalog: load the initial snapshot; an empty catalog is tolerated until
	// the first refresh succeeds.
	store := catalog.NewStore(repo, baseURL)
	if err := store.Reload(ctx); err != nil {
		log.Printf("initial catalog load failed: %v", err)
	} else {
		log.Printf("catalog loaded: %d products", len(store.Current()))
	}

	cartService := cart.NewService(repo, cache.NewRedisCache(redisClient))

	var scraperArgs []string
	if fields := strings.Fields(scraperCmd); len(fields) > 1 {
		scraperCmd, scraperArgs = fields[0], fields[1:]
	}
	runner := refresh.NewCommandRunner(scraperCmd, scraperArgs, scraperTimeout)
	coordinator := refresh.NewCoordinator(runner, store)

	router := bot.NewRouter(store, cartService, coordinator, siteURL, pageSize)

	// Admin endpoint
	adminServer := &http.Server{
		Addr:    ":" + adminPort,
		Handler: admin.NewHandler(store),
	}
	go func() {
		log.Printf("admin endpoint listening on :%s", adminPort)
		if err := adminServer.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			log.Fatalf("admin server failed: %v", err)
		}
	}()

	tgBot, err := telegram.New(botToken, router)
	if err != nil {
		log.Fatalf("Failed to start telegram bot: %v", err)
	}

	go tgBot.Run(ctx)
	log.Println("bot is polling for updates")

	<-ctx.Done()

	log.Println("Shutting down...")
	shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	if err := adminServer.Shutdown(shutdownCtx); err != nil {
		log.Printf("admin server shutdown: %v", err)
	}

	log.Println("bot stopped")
}
