package main

import (
	"context"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/gin-contrib/gzip"
	"github.com/gin-gonic/gin"
	"github.com/spf13/cobra"
	"github.com/xxxsen/common/logger"
	"github.com/xxxsen/common/logutil"
	"github.com/xxxsen/common/webapi"
	"go.uber.org/zap"

	"github.com/studypal-ai/ragserver/internal/ai"
	"github.com/studypal-ai/ragserver/internal/client"
	"github.com/studypal-ai/ragserver/internal/config"
	"github.com/studypal-ai/ragserver/internal/embedcache"
	"github.com/studypal-ai/ragserver/internal/extract"
	"github.com/studypal-ai/ragserver/internal/gateway"
	"github.com/studypal-ai/ragserver/internal/handler"
	"github.com/studypal-ai/ragserver/internal/middleware"
	"github.com/studypal-ai/ragserver/internal/objstore"
	"github.com/studypal-ai/ragserver/internal/transcript"
	"github.com/studypal-ai/ragserver/internal/vecstore"
)

func main() {
	var configPath string

	rootCmd := &cobra.Command{
		Use:   "ragserver",
		Short: "retrieval augmented study assistant services",
	}
	rootCmd.PersistentFlags().StringVar(&configPath, "config", "", "path to config.json")

	rootCmd.AddCommand(
		serviceCmd(&configPath, "gateway", "run the backend gateway service", runGateway),
		serviceCmd(&configPath, "extractor", "run the document extraction service", runExtractor),
		serviceCmd(&configPath, "embedder", "run the embedding service", runEmbedder),
		serviceCmd(&configPath, "store", "run the vector store service", runStore),
		serviceCmd(&configPath, "llm", "run the LLM prompt service", runLLM),
	)

	if err := rootCmd.Execute(); err != nil {
		logutil.GetLogger(context.Background()).Fatal("startup error", zap.Error(err))
	}
}

func serviceCmd(configPath *string, name, short string, run func(*config.Config) error) *cobra.Command {
	return &cobra.Command{
		Use:   name,
		Short: short,
		RunE: func(cmd *cobra.Command, args []string) error {
			if *configPath == "" {
				return fmt.Errorf("--config is required")
			}
			cfg, err := config.Load(*configPath)
			if err != nil {
				return err
			}
			logger.Init(
				cfg.LogConfig.File,
				cfg.LogConfig.Level,
				int(cfg.LogConfig.FileCount),
				int(cfg.LogConfig.FileSize),
				int(cfg.LogConfig.KeepDays),
				cfg.LogConfig.Console,
			)
			logutil.GetLogger(context.Background()).Info("config loaded",
				zap.String("config", *configPath), zap.String("service", name))
			return run(cfg)
		},
	}
}

func runGateway(cfg *config.Config) error {
	if err := cfg.ValidateGateway(); err != nil {
		return err
	}
	objects, err := objstore.New(context.Background(), cfg.Gateway.S3)
	if err != nil {
		return fmt.Errorf("init object store: %w", err)
	}
	svc := gateway.NewService(
		objects,
		client.NewExtractorClient(cfg.Gateway.ExtractorURL, 10*time.Minute),
		client.NewStoreClient(cfg.Gateway.StoreURL, 5*time.Minute),
		client.NewLLMClient(cfg.Gateway.LLMURL, 2*time.Minute),
	)
	h := handler.NewGatewayHandler(svc)

	middlewares := []gin.HandlerFunc{
		middleware.CORS(cfg.Gateway.CORSOrigins),
		gzip.Gzip(gzip.DefaultCompression),
	}
	if cfg.Gateway.RateLimitSeconds > 0 {
		middlewares = append(middlewares, middleware.RateLimit(time.Duration(cfg.Gateway.RateLimitSeconds)*time.Second))
	}
	return serve(cfg.Gateway.Port, h.Register, middlewares...)
}

func runExtractor(cfg *config.Config) error {
	if err := cfg.ValidateExtractor(); err != nil {
		return err
	}
	objects, err := objstore.New(context.Background(), cfg.Extractor.S3)
	if err != nil {
		return fmt.Errorf("init object store: %w", err)
	}
	transcripts := transcript.NewClient(cfg.Extractor.TimedTextURL, cfg.Extractor.TranscriptLng)
	coordinator := extract.NewCoordinator(
		objects,
		transcripts,
		cfg.Extractor.Chunk.MaxTokens,
		cfg.Extractor.Chunk.OverlapTokens,
		cfg.Extractor.Parallelism,
	)
	h := handler.NewExtractorHandler(coordinator)
	return serve(cfg.Extractor.Port, h.Register)
}

func runEmbedder(cfg *config.Config) error {
	if err := cfg.ValidateEmbedder(); err != nil {
		return err
	}
	provider, err := ai.NewEmbedProvider(cfg.Embedder.Provider, cfg.Embedder.ProviderArgs)
	if err != nil {
		return fmt.Errorf("init embed provider: %w", err)
	}
	embedder := ai.NewEmbedder(provider, cfg.Embedder.Model)
	embedder = embedcache.WrapLruCacheToEmbedder(
		embedder,
		cfg.Embedder.CacheSize,
		time.Duration(cfg.Embedder.CacheTTLHours)*time.Hour,
	)
	h := handler.NewEmbedderHandler(embedder)
	return serve(cfg.Embedder.Port, h.Register)
}

func runStore(cfg *config.Config) error {
	if err := cfg.ValidateStore(); err != nil {
		return err
	}
	db, err := vecstore.Open(cfg.Store.Database)
	if err != nil {
		return fmt.Errorf("open db: %w", err)
	}
	if err := vecstore.ApplyMigrations(db); err != nil {
		return fmt.Errorf("migrations: %w", err)
	}
	repo := vecstore.NewRepo(db, cfg.Store.EmbeddingDim)
	embedder := client.NewEmbedderClient(cfg.Store.EmbedderURL, 2*time.Minute)
	svc := vecstore.NewService(repo, embedder)
	h := handler.NewStoreHandler(svc)
	return serve(cfg.Store.Port, h.Register)
}

func runLLM(cfg *config.Config) error {
	if err := cfg.ValidateLLM(); err != nil {
		return err
	}
	provider, err := ai.NewProvider(cfg.LLM.Provider, cfg.LLM.ProviderArgs)
	if err != nil {
		return fmt.Errorf("init llm provider: %w", err)
	}
	generator := ai.NewGenerator(provider, cfg.LLM.Model)
	h := handler.NewLLMHandler(generator)
	return serve(cfg.LLM.Port, h.Register)
}

func serve(port int, register func(*gin.RouterGroup), extra ...gin.HandlerFunc) error {
	if len(extra) == 0 {
		extra = []gin.HandlerFunc{gzip.Gzip(gzip.DefaultCompression)}
	}
	addr := fmt.Sprintf("0.0.0.0:%d", port)
	engine, err := webapi.NewEngine(
		"/",
		addr,
		webapi.WithRegister(func(group *gin.RouterGroup) {
			register(group)
		}),
		webapi.WithExtraMiddlewares(extra...),
	)
	if err != nil {
		return fmt.Errorf("init web engine: %w", err)
	}
	logutil.GetLogger(context.Background()).Info("http server listening", zap.String("addr", addr))

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	go func() {
		if err := engine.Run(); err != nil && err != http.ErrServerClosed {
			logutil.GetLogger(context.Background()).Error("server error", zap.Error(err))
		}
	}()

	<-ctx.Done()
	logutil.GetLogger(context.Background()).Info("server stopping...")
	return nil
}
