package main

import (
	"context"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/joho/godotenv"
	"github.com/labstack/echo/v4"
	"github.com/labstack/echo/v4/middleware"
	"go.uber.org/zap"

	"github.com/postureperfect/avatar-server/adapters/lipsync"
	"github.com/postureperfect/avatar-server/adapters/llm"
	"github.com/postureperfect/avatar-server/adapters/mongo"
	"github.com/postureperfect/avatar-server/adapters/tts"
	"github.com/postureperfect/avatar-server/internal/api"
	"github.com/postureperfect/avatar-server/internal/assets"
	"github.com/postureperfect/avatar-server/usecase"
)

func main() {
	// Load .env if present
	_ = godotenv.Load()

	// Initialize logger
	logger, _ := zap.NewProduction()
	defer logger.Sync()

	// Create Echo instance
	e := echo.New()

	// Middleware
	e.Use(middleware.Logger())
	e.Use(middleware.Recover())
	e.Use(middleware.CORS())

	// Document store
	mongoClient, err := mongo.NewClient(logger)
	if err != nil {
		logger.Fatal("failed to connect to MongoDB", zap.Error(err))
	}
	userRepo := mongo.NewUserRepository(mongoClient.Database)
	contactRepo := mongo.NewContactRepository(mongoClient.Database)

	indexCtx, cancelIndex := context.WithTimeout(context.Background(), 10*time.Second)
	if err := userRepo.EnsureIndexes(indexCtx); err != nil {
		logger.Fatal("failed to ensure indexes", zap.Error(err))
	}
	cancelIndex()

	// Pipeline adapters
	generator, err := llm.NewGeminiGenerator(context.Background(), llm.NewGeminiConfigFromEnv(), logger)
	if err != nil {
		logger.Fatal("failed to initialize Gemini", zap.Error(err))
	}
	synthesizer := tts.NewGoogleTranslateTTS(tts.NewGoogleTranslateConfigFromEnv(), logger)
	transcoder := lipsync.NewFFmpegTranscoder("", logger)
	extractor := lipsync.NewRhubarbExtractor("", logger)

	assetStore, err := assets.NewStore(assets.NewStoreConfigFromEnv(), logger)
	if err != nil {
		logger.Fatal("failed to initialize asset store", zap.Error(err))
	}

	// Pipeline orchestrator
	chatService := usecase.NewChatService(
		usecase.ChatConfig{},
		generator,
		synthesizer,
		transcoder,
		extractor,
		assetStore,
		logger,
	)

	// Initialize API routes
	api.InitRoutes(e, chatService, userRepo, contactRepo, logger)

	// Start server
	port := os.Getenv("PORT")
	if port == "" {
		port = "3000"
	}

	// Graceful shutdown
	go func() {
		if err := e.Start(":" + port); err != nil && err != http.ErrServerClosed {
			logger.Fatal("shutting down the server", zap.Error(err))
		}
	}()

	logger.Info("Avatar server started", zap.String("port", port))

	// Wait for interrupt signal to gracefully shutdown the server
	quit := make(chan os.Signal, 1)
	signal.Notify(quit, os.Interrupt, syscall.SIGTERM)
	<-quit

	logger.Info("Server is shutting down...")

	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	if err := e.Shutdown(ctx); err != nil {
		logger.Fatal("Server forced to shutdown", zap.Error(err))
	}

	if err := mongoClient.Close(ctx); err != nil {
		logger.Error("Failed to close MongoDB connection", zap.Error(err))
	}

	logger.Info("Server exited")
}
