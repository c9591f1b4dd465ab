package main

import (
	"context"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/joho/godotenv"
	"go.uber.org/zap"

	"failboard/internal/bot"
	"failboard/internal/config"
	"failboard/internal/db"
	"failboard/internal/router"
	"failboard/internal/services"
	"failboard/internal/storage"
	"failboard/internal/storage/pg"
	"failboard/internal/storage/stubs"
)

func main() {
	logger, err := zap.NewProduction()
	if err != nil {
		panic(err)
	}
	defer logger.Sync()

	if err := godotenv.Load(); err != nil {
		logger.Info("No .env file found, using system environment variables")
	}

	cfg, err := config.LoadFromEnv()
	if err != nil {
		logger.Fatal("Failed to load configuration", zap.Error(err))
	}

	// Storage
	var store storage.Storage
	if cfg.UseMockDB {
		logger.Info("Using in-memory storage")
		store = stubs.NewMockDB()
	} else {
		gdb, err := db.Init(cfg.DatabaseURL)
		if err != nil {
			logger.Fatal("Failed to initialize database", zap.Error(err))
		}
		logger.Info("Database connection established")
		store = pg.New(gdb)
	}
	defer store.Close()

	// Services
	authService := services.NewAuthService(store, cfg.JWTSecret, cfg.TokenTTL)
	userService := services.NewUserService(store)
	postService := services.NewPostService(store)
	voteService := services.NewVoteService(store)
	leaderboardService := services.NewLeaderboardService(store)

	// Telegram bot (optional: no token means API-only mode)
	var tgBot *bot.Bot
	if cfg.TelegramToken != "" {
		tgBot, err = bot.NewBot(cfg.TelegramToken, userService, postService,
			voteService, leaderboardService, cfg.BotInitialStatus, logger)
		if err != nil {
			logger.Fatal("Failed to create Telegram bot", zap.Error(err))
		}
	} else {
		logger.Info("TELEGRAM_BOT_TOKEN not set, running API-only")
	}

	// HTTP server
	r := gin.Default()
	router.RegisterRoutes(r, authService, userService, postService, cfg.APIInitialStatus, tgBot)

	server := &http.Server{
		Addr:         ":" + cfg.Port,
		Handler:      r,
		ReadTimeout:  10 * time.Second,
		WriteTimeout: 10 * time.Second,
	}

	go func() {
		logger.Info("HTTP server starting", zap.String("port", cfg.Port))
		if err := server.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			logger.Fatal("HTTP server error", zap.Error(err))
		}
	}()

	if tgBot != nil {
		if cfg.WebhookMode {
			logger.Info("Starting bot in webhook mode", zap.String("url", cfg.WebhookURL))
			if err := tgBot.StartWebhook(cfg.WebhookURL); err != nil {
				logger.Fatal("Failed to set up webhook", zap.Error(err))
			}
		} else {
			go func() {
				if err := tgBot.Start(); err != nil {
					logger.Fatal("Failed to start bot", zap.Error(err))
				}
			}()
		}
	}

	// Wait for interrupt
	sigChan := make(chan os.Signal, 1)
	signal.Notify(sigChan, syscall.SIGINT, syscall.SIGTERM)
	<-sigChan

	logger.Info("Shutting down")
	shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	if err := server.Shutdown(shutdownCtx); err != nil {
		logger.Error("HTTP server shutdown error", zap.Error(err))
	}
}
