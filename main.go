package main

import (
	"context"
	"errors"
	"net/http"
	"os"
	"os/signal"
	"strings"
	"sync"
	"syscall"
	"time"

	ginzap "github.com/gin-contrib/zap"
	"github.com/gin-gonic/gin"
	"github.com/spf13/viper"
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"

	"github.com/aklyne/leadsync/api"
	"github.com/aklyne/leadsync/database"
	"github.com/aklyne/leadsync/integrations"
	"github.com/aklyne/leadsync/internal/board"
	"github.com/aklyne/leadsync/internal/leads"
	"github.com/aklyne/leadsync/internal/syncer"
)

func main() {
	levelStr := strings.ToLower(os.Getenv("LOG_LEVEL"))
	if levelStr == "" {
		levelStr = "debug"
	}
	level, err := zapcore.ParseLevel(levelStr)
	if err != nil {
		level = zapcore.InfoLevel
	}

	encoderConfig := zap.NewDevelopmentEncoderConfig()
	encoderConfig.EncodeLevel = zapcore.CapitalColorLevelEncoder
	encoderConfig.EncodeTime = zapcore.ISO8601TimeEncoder

	config := zap.Config{
		Level:            zap.NewAtomicLevelAt(level),
		Development:      true,
		Encoding:         "console",
		EncoderConfig:    encoderConfig,
		OutputPaths:      []string{"stdout"},
		ErrorOutputPaths: []string{"stderr"},
	}

	logger, _ := config.Build()
	defer logger.Sync()
	zap.ReplaceGlobals(logger)

	viper.SetConfigName("config")
	viper.SetConfigType("toml")
	viper.AddConfigPath(".")
	if err := viper.ReadInConfig(); err != nil {
		zap.L().Fatal("Error reading config file", zap.Error(err))
	}

	dbPath := viper.GetString("database.path")
	if dbPath == "" {
		dbPath = "sync.db"
	}
	db := database.Init(dbPath)
	sqlDB, _ := db.DB()

	port := viper.GetString("server.port")
	if port == "" {
		port = "8080"
	}

	sheetStore, err := integrations.NewSheetsStore()
	if err != nil {
		zap.L().Fatal("Failed to initialise Google Sheets client", zap.Error(err))
	}
	zap.L().Info("Successfully authenticated with Google Sheets API.")
	leadStore := leads.NewStore(sheetStore)

	trelloBoard := integrations.NewTrelloBoard(
		viper.GetString("trello.api_key"),
		viper.GetString("trello.api_token"),
		viper.GetString("trello.board_id"),
		viper.GetString("trello.callback_url"),
	)
	if trelloBoard.BoardID == "" {
		zap.L().Fatal("trello.board_id is not configured")
	}

	boardAdapter, err := board.NewAdapter(trelloBoard)
	if err != nil {
		zap.L().Fatal("Failed to connect to Trello board", zap.Error(err))
	}

	syncService := &syncer.Service{
		Leads: leadStore,
		Board: boardAdapter,
		DB:    db,
	}

	router := gin.Default()
	router.Use(ginzap.Ginzap(logger, time.RFC3339, true))
	router.Use(ginzap.RecoveryWithZap(logger, true))

	apiHandler := &api.Handler{
		DB:    db,
		Leads: leadStore,
		Board: boardAdapter,
		Sync:  syncService,
	}
	apiGroup := router.Group("/api")
	{
		apiGroup.GET("/leads", apiHandler.ListLeadsHandler)
		apiGroup.POST("/leads", apiHandler.CreateLeadHandler)
		apiGroup.GET("/leads/:id", apiHandler.GetLeadHandler)
		apiGroup.PATCH("/leads/:id", apiHandler.UpdateLeadHandler)
		apiGroup.POST("/leads/:id/sync", apiHandler.SyncLeadHandler)
		apiGroup.GET("/items", apiHandler.ListWorkItemsHandler)
		apiGroup.GET("/items/:id", apiHandler.GetWorkItemHandler)
		apiGroup.POST("/items/:id/archive", apiHandler.ArchiveWorkItemHandler)
		apiGroup.POST("/sync", apiHandler.ReconcileHandler)
		apiGroup.GET("/sync/history", apiHandler.SyncHistoryHandler)
		apiGroup.POST("/trello-webhook", apiHandler.TrelloWebhookHandler)
		apiGroup.HEAD("/trello-webhook", apiHandler.TrelloWebhookHandler)
		apiGroup.GET("/health", apiHandler.HealthCheckHandler)
	}

	srv := &http.Server{
		Addr:    ":" + port,
		Handler: router,
	}

	zap.L().Info("Starting server", zap.String("port", port))
	go func() {
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			zap.L().Fatal("Server error", zap.Error(err))
		}
	}()

	// Give the server a moment to start
	time.Sleep(250 * time.Millisecond)

	var webhookID string
	if trelloBoard.CallbackURL != "" {
		zap.L().Info("Registering Trello webhook", zap.String("boardID", trelloBoard.BoardID))
		webhookID, err = trelloBoard.RegisterWebhook()
		if err != nil {
			zap.L().Fatal("Failed to register webhook on startup", zap.Error(err))
		}
	} else {
		zap.L().Warn("trello.callback_url not set; board moves will not sync back to leads")
	}

	sigCh := make(chan os.Signal, 2)
	signal.Notify(sigCh, os.Interrupt, syscall.SIGTERM)

	done := make(chan struct{})
	var once sync.Once

	cleanup := func(reason string) {
		zap.L().Info("Shutdown initiated", zap.String("reason", reason))

		ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
		defer cancel()

		zap.L().Info("Shutting down HTTP server...")
		if err := srv.Shutdown(ctx); err != nil {
			zap.L().Error("Error shutting down server", zap.Error(err))
		} else {
			zap.L().Info("HTTP server shut down gracefully.")
		}

		if webhookID != "" {
			if err := trelloBoard.DeleteWebhook(webhookID); err != nil {
				zap.L().Error("Error deleting webhook", zap.Error(err))
			} else {
				zap.L().Info("Successfully deleted webhook")
			}
		}

		if sqlDB != nil {
			if err := sqlDB.Close(); err != nil {
				zap.L().Error("Error closing database", zap.Error(err))
			} else {
				zap.L().Info("Database connection closed.")
			}
		}
		close(done)
	}

	go func() {
		sig := <-sigCh
		once.Do(func() {
			cleanup(sig.String())
		})

		// if a second signal is caught, exit immediately
		go func() {
			<-sigCh
			zap.L().Info("Second interrupt signal received. Exiting immediately.")
			os.Exit(1)
		}()
	}()

	<-done
	zap.L().Info("Exiting...")
}
