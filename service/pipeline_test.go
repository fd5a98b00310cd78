package service

import (
	"context"
	"errors"
	"io"
	"log/slog"
	"testing"

	"idarati-backend/models"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type fakeRetriever struct {
	candidates []models.RetrievedProcedure
	err        error
	calls      int
	lastQuery  models.Query
}

func (r *fakeRetriever) Retrieve(_ context.Context, query models.Query) ([]models.RetrievedProcedure, error) {
	r.calls++
	r.lastQuery = query
	return r.candidates, r.err
}

type fakeSynthesizer struct {
	resp  *models.StructuredResponse
	err   error
	calls int
}

func (s *fakeSynthesizer) Synthesize(_ context.Context, _ string, _ []models.RetrievedProcedure) (*models.StructuredResponse, error) {
	s.calls++
	return s.resp, s.err
}

func quietLogger() *slog.Logger {
	return slog.New(slog.NewTextHandler(io.Discard, nil))
}

func TestPipelineAnswered(t *testing.T) {
	answer := models.StructuredResponse{Summary: "س"}.Normalized()
	retriever := &fakeRetriever{candidates: []models.RetrievedProcedure{{ID: "a"}}}
	synth := &fakeSynthesizer{resp: &answer}

	p := NewResponsePipeline(
		WithRetriever(retriever),
		WithSynthesizer(synth),
		WithLogger(quietLogger()),
	)

	outcome := p.Answer(context.Background(), models.Query{Text: "سؤال", Threshold: 0.5, Count: 5})

	assert.Equal(t, models.OutcomeAnswered, outcome.Kind())
	require.NotNil(t, outcome.Response())
	assert.Equal(t, "س", outcome.Response().Summary)
	assert.Equal(t, 1, synth.calls)
}

func TestPipelineNoMatchSkipsSynthesis(t *testing.T) {
	retriever := &fakeRetriever{candidates: nil}
	synth := &fakeSynthesizer{}

	p := NewResponsePipeline(
		WithRetriever(retriever),
		WithSynthesizer(synth),
		WithLogger(quietLogger()),
	)

	outcome := p.Answer(context.Background(), models.Query{Text: "سؤال غريب", Threshold: 0.5, Count: 5})

	assert.Equal(t, models.OutcomeNoMatch, outcome.Kind())
	assert.Equal(t, 0, synth.calls, "the model must not be invoked when nothing matched")

	resp := outcome.Response()
	require.NotNil(t, resp)
	assert.Equal(t, noMatchSummary, resp.Summary)
	assert.Equal(t, models.DefaultLegalCitation, resp.LegalCitation)
	assert.Equal(t, []string{}, resp.Checklist)
	assert.Equal(t, []models.RetrievedProcedure{}, resp.RetrievedProcedures)
}

func TestPipelineRetrievalFailure(t *testing.T) {
	retriever := &fakeRetriever{err: errors.New("connection refused")}
	synth := &fakeSynthesizer{}

	p := NewResponsePipeline(
		WithRetriever(retriever),
		WithSynthesizer(synth),
		WithLogger(quietLogger()),
	)

	outcome := p.Answer(context.Background(), models.Query{Text: "سؤال"})

	assert.Equal(t, models.OutcomeFailed, outcome.Kind())
	assert.Nil(t, outcome.Response())
	assert.Equal(t, failureMessage, outcome.Message())
	assert.NotContains(t, outcome.Message(), "connection refused")
	assert.Equal(t, 0, synth.calls)
}

func TestPipelineSynthesisFailure(t *testing.T) {
	retriever := &fakeRetriever{candidates: []models.RetrievedProcedure{{ID: "a"}}}
	synth := &fakeSynthesizer{err: ErrSynthesisFailed}

	p := NewResponsePipeline(
		WithRetriever(retriever),
		WithSynthesizer(synth),
		WithLogger(quietLogger()),
	)

	outcome := p.Answer(context.Background(), models.Query{Text: "سؤال"})

	assert.Equal(t, models.OutcomeFailed, outcome.Kind())
	assert.Equal(t, failureMessage, outcome.Message())
}

func TestPipelineStateless(t *testing.T) {
	// A failed turn leaves no residue: the next turn with a healthy
	// retriever answers normally.
	answer := models.StructuredResponse{Summary: "س"}.Normalized()
	retriever := &fakeRetriever{err: errors.New("boom")}
	synth := &fakeSynthesizer{resp: &answer}

	p := NewResponsePipeline(
		WithRetriever(retriever),
		WithSynthesizer(synth),
		WithLogger(quietLogger()),
	)

	first := p.Answer(context.Background(), models.Query{Text: "سؤال"})
	assert.Equal(t, models.OutcomeFailed, first.Kind())

	retriever.err = nil
	retriever.candidates = []models.RetrievedProcedure{{ID: "a"}}
	second := p.Answer(context.Background(), models.Query{Text: "سؤال"})
	assert.Equal(t, models.OutcomeAnswered, second.Kind())
}
