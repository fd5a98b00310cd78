package service

import (
	"context"
	"errors"
	"fmt"

	"idarati-backend/models"
)

// ErrRetrievalFailed wraps embedding or store failures raised during
// retrieval. The retriever never swallows errors; the caller decides
// the fallback behavior.
var ErrRetrievalFailed = errors.New("failed to retrieve procedures")

// QueryEmbedder turns a user query into a dense vector.
type QueryEmbedder interface {
	EmbedQuery(ctx context.Context, text, model string) ([]float64, error)
}

// ProcedureSearcher is the vector-searchable procedure corpus.
type ProcedureSearcher interface {
	SearchBySimilarity(ctx context.Context, embedding []float64, threshold float64, count int) ([]models.RetrievedProcedure, error)
}

// Retriever orchestrates embedding and similarity search for one query.
type Retriever struct {
	embedder QueryEmbedder
	store    ProcedureSearcher
}

// RetrieverOption is a functional option for Retriever.
type RetrieverOption func(*Retriever)

// WithEmbedder sets the query embedder.
func WithEmbedder(e QueryEmbedder) RetrieverOption {
	return func(r *Retriever) {
		r.embedder = e
	}
}

// WithProcedureStore sets the procedure store.
func WithProcedureStore(s ProcedureSearcher) RetrieverOption {
	return func(r *Retriever) {
		r.store = s
	}
}

// NewRetriever creates a new retriever.
func NewRetriever(opts ...RetrieverOption) *Retriever {
	r := &Retriever{}
	for _, opt := range opts {
		opt(r)
	}
	return r
}

// Retrieve embeds the query text and returns the ranked candidates,
// possibly empty. The store already orders by descending similarity and
// respects the count cap; the cap is enforced here again defensively.
func (r *Retriever) Retrieve(ctx context.Context, query models.Query) ([]models.RetrievedProcedure, error) {
	if r.embedder == nil {
		return nil, fmt.Errorf("%w: embedder not set", ErrRetrievalFailed)
	}
	if r.store == nil {
		return nil, fmt.Errorf("%w: procedure store not set", ErrRetrievalFailed)
	}

	embedding, err := r.embedder.EmbedQuery(ctx, query.Text, query.EmbeddingModel)
	if err != nil {
		return nil, fmt.Errorf("%w: %w", ErrRetrievalFailed, err)
	}
	if len(embedding) == 0 {
		return nil, fmt.Errorf("%w: %w", ErrRetrievalFailed, ErrEmbeddingFailed)
	}

	candidates, err := r.store.SearchBySimilarity(ctx, embedding, query.Threshold, query.Count)
	if err != nil {
		return nil, fmt.Errorf("%w: %w", ErrRetrievalFailed, err)
	}

	if query.Count > 0 && len(candidates) > query.Count {
		candidates = candidates[:query.Count]
	}

	return candidates, nil
}
