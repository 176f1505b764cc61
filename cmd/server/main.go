package main

import (
	"context"
	"errors"
	"fmt"
	"log"
	"net/http"
	"os/signal"
	"syscall"
	"time"

	"github.com/gin-gonic/gin"
	"golang.org/x/sync/errgroup"

	"jetrent/internal/config"
	"jetrent/internal/dialogue"
	"jetrent/internal/handler"
	"jetrent/internal/logger"
	"jetrent/internal/repository"
	"jetrent/internal/search"
	"jetrent/internal/service"
)

var (
	Version   = "dev"
	BuildTime = "unknown"
	GitCommit = "unknown"
)

const shutdownTimeout = 10 * time.Second

func main() {
	// Print version info
	log.Printf("JetRent Apartment Assistant")
	log.Printf("Version: %s", Version)
	log.Printf("Build Time: %s", BuildTime)
	log.Printf("Git Commit: %s", GitCommit)
	log.Println("")

	if err := run(); err != nil {
		log.Fatalf("❌ %v", err)
	}
}

func run() error {
	// Load configuration
	cfg, err := config.Load()
	if err != nil {
		return fmt.Errorf("failed to load configuration: %w", err)
	}

	appLogger := logger.New(cfg.Logging)
	gin.SetMode(cfg.Server.GinMode)

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	// Initialize storage
	storage, err := repository.Open(ctx, cfg, appLogger)
	if err != nil {
		return fmt.Errorf("failed to open storage: %w", err)
	}
	defer storage.Close()

	dispatcher, err := search.New(&cfg.Search, appLogger)
	if err != nil {
		return fmt.Errorf("failed to initialize search: %w", err)
	}

	// Initialize OpenAI client
	var (
		aiClient service.AIClient
		opts     []dialogue.Option
	)
	if cfg.OpenAI.Enabled {
		openaiClient := service.NewOpenAIClient(&cfg.OpenAI, appLogger)
		aiClient = openaiClient
		opts = append(opts, dialogue.WithResponder(service.NewResponseGenerator(openaiClient, appLogger)))
	} else {
		appLogger.Warn("⚠️  OpenAI is disabled, using rule-based extraction and template replies")
		appLogger.Warn("   Set OPENAI_API_KEY environment variable to enable AI features")
	}

	// Initialize services
	extractor := service.NewParameterExtractor(aiClient, service.NewRuleExtractor(), appLogger)
	pipeline := dialogue.NewPipeline(extractor, dispatcher, appLogger, opts...)

	chatService := service.NewChatService(pipeline, storage.Conversations, appLogger)
	listingService := service.NewListingService(dispatcher, appLogger)
	bookmarkService := service.NewBookmarkService(storage.Bookmarks, appLogger)

	appLogger.Info("✅ Services initialized")

	router := handler.NewRouter(
		&cfg.Server,
		handler.Handlers{
			Chat:      handler.NewChatHandler(chatService),
			Listings:  handler.NewListingHandler(listingService),
			Bookmarks: handler.NewBookmarkHandler(bookmarkService),
		},
		handler.BuildInfo{Version: Version, BuildTime: BuildTime, GitCommit: GitCommit},
		gin.Recovery(),
		handler.RequestLogger(appLogger),
	)

	addr := fmt.Sprintf("%s:%d", cfg.Server.Host, cfg.Server.Port)
	srv := &http.Server{
		Addr:              addr,
		Handler:           router,
		ReadHeaderTimeout: 10 * time.Second,
	}

	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		appLogger.Infof("🚀 Starting server on %s", addr)
		appLogger.Infof("📝 API: http://localhost:%d/api/v1", cfg.Server.Port)
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			return fmt.Errorf("failed to start server: %w", err)
		}
		return nil
	})
	g.Go(func() error {
		<-gctx.Done()
		appLogger.Info("🛑 Shutting down server...")

		shutdownCtx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
		defer cancel()
		return srv.Shutdown(shutdownCtx)
	})

	if err := g.Wait(); err != nil {
		return err
	}
	appLogger.Info("✅ Server stopped")
	return nil
}
