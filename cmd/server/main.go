package main

import (
	"context"
	"log/slog"
	"os"

	"idarati-backend/config"
	"idarati-backend/handlers"
	"idarati-backend/repository"
	"idarati-backend/service"

	"github.com/gin-gonic/gin"
	"github.com/google/generative-ai-go/genai"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/joho/godotenv"
	"google.golang.org/api/option"
)

func main() {
	// Load .env file from project root (relative to cmd/server/)
	if err := godotenv.Load(); err != nil {
		if err := godotenv.Load("../../.env"); err != nil {
			slog.Warn("no .env file found, using environment variables")
		}
	}

	cfg := config.Load()

	logger, cleanup := config.SetupLogger(cfg.LogFile, slog.LevelInfo)
	defer cleanup()
	slog.SetDefault(logger)

	db, err := initPostgres(cfg.DatabaseURL, logger)
	if err != nil {
		logger.Error("failed to initialize Postgres", "error", err)
		os.Exit(1)
	}
	defer db.Close()

	geminiClient, err := initGemini(cfg, logger)
	if err != nil {
		logger.Error("failed to initialize Gemini", "error", err)
		os.Exit(1)
	}

	procedureRepo := repository.NewProcedureRepository(db)
	embedder := service.NewGeminiEmbedder(cfg.GeminiAPIKey, cfg.EmbeddingModel, cfg.EmbeddingDimension)
	generator := service.NewGeminiGenerator(geminiClient, cfg.GenerationModel)

	retriever := service.NewRetriever(
		service.WithEmbedder(embedder),
		service.WithProcedureStore(procedureRepo),
	)

	synthesizer := service.NewAnswerSynthesizer(
		service.WithGenerator(generator),
	)

	pipeline := service.NewResponsePipeline(
		service.WithRetriever(retriever),
		service.WithSynthesizer(synthesizer),
		service.WithLogger(logger),
	)

	chatHandler := handlers.NewChatHandler(pipeline, retriever, logger)

	r := gin.Default()
	chatHandler.RegisterRoutes(r)

	logger.Info("server starting", "addr", cfg.Addr)
	if err := r.Run(cfg.Addr); err != nil {
		logger.Error("failed to start server", "error", err)
		os.Exit(1)
	}
}

func initPostgres(connString string, logger *slog.Logger) (*pgxpool.Pool, error) {
	pool, err := pgxpool.New(context.Background(), connString)
	if err != nil {
		return nil, err
	}

	ctx := context.Background()
	if err := pool.Ping(ctx); err != nil {
		return nil, err
	}

	// Enable pgvector extension
	_, err = pool.Exec(ctx, "CREATE EXTENSION IF NOT EXISTS vector")
	if err != nil {
		logger.Warn("failed to create pgvector extension, it may already be installed or require superuser privileges", "error", err)
	} else {
		logger.Info("pgvector extension enabled")
	}

	logger.Info("Postgres connection established with pgvector support")
	return pool, nil
}

func initGemini(cfg config.Config, logger *slog.Logger) (*genai.Client, error) {
	if cfg.GeminiAPIKey == "" {
		logger.Warn("GEMINI_API_KEY not set")
	}

	ctx := context.Background()
	client, err := genai.NewClient(ctx, option.WithAPIKey(cfg.GeminiAPIKey))
	if err != nil {
		return nil, err
	}

	logger.Info("Gemini client initialized", "model", cfg.GenerationModel)
	return client, nil
}
