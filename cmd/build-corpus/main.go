package main

import (
	"context"
	"encoding/json"
	"log"
	"time"

	"idarati-backend/config"
	"idarati-backend/models"
	"idarati-backend/repository"
	"idarati-backend/service"
	"idarati-backend/storage"

	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/joho/godotenv"
)

// sourceProcedure is one record as exported from the procedure
// catalogue, an array of which makes up each corpus source document.
type sourceProcedure struct {
	Title         string          `json:"title"`
	Content       string          `json:"content"`
	Metadata      models.Metadata `json:"metadata"`
	ThematicID    *string         `json:"thematicId"`
	ProcedureLink *string         `json:"procedureLink"`
	ThematicLink  *string         `json:"thematicLink"`
}

func main() {
	if err := godotenv.Load(); err != nil {
		if err := godotenv.Load("../../.env"); err != nil {
			log.Println("Warning: no .env file found, using environment variables")
		}
	}

	cfg := config.Load()
	if cfg.GeminiAPIKey == "" {
		log.Fatal("GEMINI_API_KEY environment variable is required")
	}

	pool, err := pgxpool.New(context.Background(), cfg.DatabaseURL)
	if err != nil {
		log.Fatalf("Failed to connect to database: %v", err)
	}
	defer pool.Close()

	ctx := context.Background()

	// Verify table exists
	var tableExists bool
	err = pool.QueryRow(ctx, "SELECT EXISTS (SELECT FROM information_schema.tables WHERE table_name = 'procedures')").Scan(&tableExists)
	if err != nil {
		log.Fatalf("Failed to check table existence: %v", err)
	}
	if !tableExists {
		log.Fatal("procedures table does not exist. Please run: go run cmd/create-schema/main.go")
	}

	source, err := storage.NewCorpusSourceFromEnv()
	if err != nil {
		log.Fatalf("Failed to initialize corpus source: %v", err)
	}

	repo := repository.NewProcedureRepository(pool)
	embedder := service.NewGeminiEmbedder(cfg.GeminiAPIKey, cfg.EmbeddingModel, cfg.EmbeddingDimension)

	names, err := source.List(ctx)
	if err != nil {
		log.Fatalf("Failed to list corpus sources: %v", err)
	}
	if len(names) == 0 {
		log.Fatal("No corpus source documents found")
	}

	for _, name := range names {
		log.Printf("Processing: %s", name)

		count, err := repo.CountBySource(ctx, name)
		if err != nil {
			log.Printf("  Error checking existing records: %v", err)
			continue
		}
		if count > 0 {
			log.Printf("  Skipping (already ingested: %d records)", count)
			continue
		}

		reader, err := source.Open(ctx, name)
		if err != nil {
			log.Printf("  Error opening %s: %v", name, err)
			continue
		}

		var records []sourceProcedure
		decodeErr := json.NewDecoder(reader).Decode(&records)
		reader.Close()
		if decodeErr != nil {
			log.Printf("  Error decoding %s: %v", name, decodeErr)
			continue
		}

		inserted := 0
		for _, rec := range records {
			if rec.Title == "" || rec.Content == "" {
				continue
			}

			embedding, err := embedder.EmbedDocument(ctx, rec.Title+"\n"+rec.Content)
			if err != nil {
				log.Printf("  Error embedding %q: %v", rec.Title, err)
				continue
			}

			doc := &repository.ProcedureDocument{
				Title:          rec.Title,
				Content:        rec.Content,
				Metadata:       rec.Metadata,
				ThematicID:     rec.ThematicID,
				ProcedureLink:  rec.ProcedureLink,
				ThematicLink:   rec.ThematicLink,
				SourceDocument: name,
				Embedding:      embedding,
			}
			if err := repo.Insert(ctx, doc); err != nil {
				log.Printf("  Error storing %q: %v", rec.Title, err)
				continue
			}
			inserted++
		}

		log.Printf("  Ingested %d/%d records from %s", inserted, len(records), name)

		// Rate limiting between source documents
		time.Sleep(2 * time.Second)
	}

	log.Println("Corpus build complete")
}
