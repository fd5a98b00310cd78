package service

import (
	"context"
	"errors"
	"testing"

	"idarati-backend/models"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type fakeEmbedder struct {
	vector    []float64
	err       error
	lastText  string
	lastModel string
}

func (e *fakeEmbedder) EmbedQuery(_ context.Context, text, model string) ([]float64, error) {
	e.lastText = text
	e.lastModel = model
	return e.vector, e.err
}

type fakeSearcher struct {
	results       []models.RetrievedProcedure
	err           error
	lastThreshold float64
	lastCount     int
}

func (s *fakeSearcher) SearchBySimilarity(_ context.Context, _ []float64, threshold float64, count int) ([]models.RetrievedProcedure, error) {
	s.lastThreshold = threshold
	s.lastCount = count
	return s.results, s.err
}

func TestRetrievePassesQueryThrough(t *testing.T) {
	embedder := &fakeEmbedder{vector: []float64{0.1, 0.2}}
	store := &fakeSearcher{results: []models.RetrievedProcedure{{ID: "a"}}}
	r := NewRetriever(WithEmbedder(embedder), WithProcedureStore(store))

	got, err := r.Retrieve(context.Background(), models.Query{
		Text:           "تجديد جواز السفر",
		Threshold:      0.6,
		Count:          3,
		EmbeddingModel: "text-embedding-004",
	})
	require.NoError(t, err)

	assert.Equal(t, "تجديد جواز السفر", embedder.lastText)
	assert.Equal(t, "text-embedding-004", embedder.lastModel)
	assert.Equal(t, 0.6, store.lastThreshold)
	assert.Equal(t, 3, store.lastCount)
	require.Len(t, got, 1)
	assert.Equal(t, "a", got[0].ID)
}

func TestRetrieveEmptyResultIsNotAnError(t *testing.T) {
	r := NewRetriever(
		WithEmbedder(&fakeEmbedder{vector: []float64{0.1}}),
		WithProcedureStore(&fakeSearcher{results: nil}),
	)

	got, err := r.Retrieve(context.Background(), models.Query{Text: "سؤال", Count: 3})
	require.NoError(t, err)
	assert.Empty(t, got)
}

func TestRetrieveEnforcesCountCap(t *testing.T) {
	store := &fakeSearcher{results: []models.RetrievedProcedure{
		{ID: "a"}, {ID: "b"}, {ID: "c"}, {ID: "d"},
	}}
	r := NewRetriever(
		WithEmbedder(&fakeEmbedder{vector: []float64{0.1}}),
		WithProcedureStore(store),
	)

	got, err := r.Retrieve(context.Background(), models.Query{Text: "سؤال", Count: 2})
	require.NoError(t, err)
	require.Len(t, got, 2)
	assert.Equal(t, "a", got[0].ID)
	assert.Equal(t, "b", got[1].ID)
}

func TestRetrieveErrors(t *testing.T) {
	t.Run("embedder failure", func(t *testing.T) {
		cause := errors.New("api quota exceeded")
		r := NewRetriever(
			WithEmbedder(&fakeEmbedder{err: cause}),
			WithProcedureStore(&fakeSearcher{}),
		)

		_, err := r.Retrieve(context.Background(), models.Query{Text: "سؤال"})
		assert.ErrorIs(t, err, ErrRetrievalFailed)
		assert.ErrorIs(t, err, cause)
	})

	t.Run("empty embedding", func(t *testing.T) {
		r := NewRetriever(
			WithEmbedder(&fakeEmbedder{vector: []float64{}}),
			WithProcedureStore(&fakeSearcher{}),
		)

		_, err := r.Retrieve(context.Background(), models.Query{Text: "سؤال"})
		assert.ErrorIs(t, err, ErrRetrievalFailed)
		assert.ErrorIs(t, err, ErrEmbeddingFailed)
	})

	t.Run("store failure", func(t *testing.T) {
		cause := errors.New("pg down")
		r := NewRetriever(
			WithEmbedder(&fakeEmbedder{vector: []float64{0.1}}),
			WithProcedureStore(&fakeSearcher{err: cause}),
		)

		_, err := r.Retrieve(context.Background(), models.Query{Text: "سؤال"})
		assert.ErrorIs(t, err, ErrRetrievalFailed)
		assert.ErrorIs(t, err, cause)
	})

	t.Run("missing collaborators", func(t *testing.T) {
		_, err := NewRetriever().Retrieve(context.Background(), models.Query{Text: "سؤال"})
		assert.ErrorIs(t, err, ErrRetrievalFailed)
	})
}
