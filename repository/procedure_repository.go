package repository

import (
	"context"
	"fmt"
	"strings"

	"idarati-backend/models"

	"github.com/jackc/pgx/v5/pgxpool"
)

// EmbeddingDimension is the fixed dimensionality of corpus embeddings.
const EmbeddingDimension = 768

// ProcedureRepository handles database operations for the procedure
// corpus.
type ProcedureRepository struct {
	db *pgxpool.Pool
}

// NewProcedureRepository creates a new procedure repository.
func NewProcedureRepository(db *pgxpool.Pool) *ProcedureRepository {
	return &ProcedureRepository{db: db}
}

// ProcedureDocument is one corpus record as stored, used by the
// ingestion toolchain.
type ProcedureDocument struct {
	Title          string
	Content        string
	Metadata       models.Metadata
	ThematicID     *string
	ProcedureLink  *string
	ThematicLink   *string
	SourceDocument string
	Embedding      []float64
}

// formatVector formats an embedding vector as a pgvector literal.
func formatVector(embedding []float64) string {
	if len(embedding) == 0 {
		return "[]"
	}
	parts := make([]string, 0, len(embedding))
	for _, v := range embedding {
		parts = append(parts, fmt.Sprintf("%.6f", v))
	}
	return "[" + strings.Join(parts, ",") + "]"
}

// SearchBySimilarity returns the procedures closest to the query
// embedding, ordered by descending similarity. Records below threshold
// are excluded by the store itself; ties are broken by corpus insertion
// order so repeated searches are stable.
func (r *ProcedureRepository) SearchBySimilarity(
	ctx context.Context,
	embedding []float64,
	threshold float64,
	count int,
) ([]models.RetrievedProcedure, error) {
	if len(embedding) != EmbeddingDimension {
		return nil, fmt.Errorf("embedding must be %d dimensions, got %d", EmbeddingDimension, len(embedding))
	}
	if count <= 0 {
		count = models.DefaultRetrieveCount
	}

	vectorStr := formatVector(embedding)

	query := `
		SELECT
			id,
			title,
			content,
			metadata,
			thematic_id,
			procedure_link,
			thematic_link,
			1 - (embedding <=> $1::vector) AS similarity
		FROM procedures
		WHERE
			embedding IS NOT NULL
			AND 1 - (embedding <=> $1::vector) >= $2
		ORDER BY
			embedding <=> $1::vector,
			created_at,
			id
		LIMIT $3`

	rows, err := r.db.Query(ctx, query, vectorStr, threshold, count)
	if err != nil {
		return nil, fmt.Errorf("failed to query procedures: %w", err)
	}
	defer rows.Close()

	var procedures []models.RetrievedProcedure
	for rows.Next() {
		var p models.RetrievedProcedure
		err := rows.Scan(
			&p.ID,
			&p.Title,
			&p.Content,
			&p.Metadata,
			&p.ThematicID,
			&p.ProcedureLink,
			&p.ThematicLink,
			&p.Similarity,
		)
		if err != nil {
			return nil, fmt.Errorf("failed to scan procedure: %w", err)
		}
		procedures = append(procedures, p)
	}

	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("error iterating procedures: %w", err)
	}

	return procedures, nil
}

// Insert stores one procedure document with its embedding.
func (r *ProcedureRepository) Insert(ctx context.Context, doc *ProcedureDocument) error {
	if len(doc.Embedding) != EmbeddingDimension {
		return fmt.Errorf("embedding must be %d dimensions, got %d", EmbeddingDimension, len(doc.Embedding))
	}

	query := `
		INSERT INTO procedures (
			title, content, metadata, thematic_id,
			procedure_link, thematic_link, source_document, embedding
		) VALUES ($1, $2, $3, $4, $5, $6, $7, $8::vector)`

	_, err := r.db.Exec(
		ctx, query,
		doc.Title,
		doc.Content,
		doc.Metadata,
		doc.ThematicID,
		doc.ProcedureLink,
		doc.ThematicLink,
		doc.SourceDocument,
		formatVector(doc.Embedding),
	)
	if err != nil {
		return fmt.Errorf("failed to insert procedure: %w", err)
	}
	return nil
}

// CountBySource returns how many records were already ingested from a
// given source document, so re-runs of the ingester can skip it.
func (r *ProcedureRepository) CountBySource(ctx context.Context, sourceDocument string) (int, error) {
	var count int
	err := r.db.QueryRow(ctx,
		"SELECT COUNT(*) FROM procedures WHERE source_document = $1",
		sourceDocument,
	).Scan(&count)
	if err != nil {
		return 0, fmt.Errorf("failed to count procedures: %w", err)
	}
	return count, nil
}
