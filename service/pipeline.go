package service

import (
	"context"
	"log/slog"

	"idarati-backend/models"
)

// noMatchSummary invites the user to rephrase when retrieval finds
// nothing relevant.
const noMatchSummary = "لم يتم العثور على مسطرة مطابقة في قاعدة البيانات. من فضلك وضح طلبك أو جرب صياغة أخرى."

// failureMessage is the only failure text ever shown to a user; raw
// causes are logged for operators, never surfaced.
const failureMessage = "تعذر الحصول على إجابة حالياً بسبب خطأ غير متوقع. جرّب مجدداً أو راجع idarati.ma."

// CandidateRetriever yields ranked corpus candidates for a query.
type CandidateRetriever interface {
	Retrieve(ctx context.Context, query models.Query) ([]models.RetrievedProcedure, error)
}

// Synthesizer turns a prompt and candidates into a structured answer.
type Synthesizer interface {
	Synthesize(ctx context.Context, userPrompt string, candidates []models.RetrievedProcedure) (*models.StructuredResponse, error)
}

// ResponsePipeline composes retrieval and synthesis into one answer
// call with a closed three-way outcome. Each call is independent; no
// state is kept between turns and nothing is retried here.
type ResponsePipeline struct {
	retriever   CandidateRetriever
	synthesizer Synthesizer
	logger      *slog.Logger
}

// PipelineOption is a functional option for ResponsePipeline.
type PipelineOption func(*ResponsePipeline)

// WithRetriever sets the candidate retriever.
func WithRetriever(r CandidateRetriever) PipelineOption {
	return func(p *ResponsePipeline) {
		p.retriever = r
	}
}

// WithSynthesizer sets the answer synthesizer.
func WithSynthesizer(s Synthesizer) PipelineOption {
	return func(p *ResponsePipeline) {
		p.synthesizer = s
	}
}

// WithLogger sets the operator logger.
func WithLogger(l *slog.Logger) PipelineOption {
	return func(p *ResponsePipeline) {
		p.logger = l
	}
}

// NewResponsePipeline creates a new response pipeline.
func NewResponsePipeline(opts ...PipelineOption) *ResponsePipeline {
	p := &ResponsePipeline{logger: slog.Default()}
	for _, opt := range opts {
		opt(p)
	}
	return p
}

// NoMatchResponse is the fixed structured response returned when the
// corpus has nothing above the threshold.
func NoMatchResponse() *models.StructuredResponse {
	resp := models.StructuredResponse{
		Summary:       noMatchSummary,
		LegalCitation: models.DefaultLegalCitation,
	}.Normalized()
	return &resp
}

// Answer runs the full pipeline for one query. Zero candidates yield
// NoMatch without invoking the generative model; any retrieval or
// synthesis error yields Failed with a user-safe message.
func (p *ResponsePipeline) Answer(ctx context.Context, query models.Query) models.Outcome {
	candidates, err := p.retriever.Retrieve(ctx, query)
	if err != nil {
		p.logger.Error("retrieval failed", "error", err)
		return models.Failed(failureMessage)
	}

	if len(candidates) == 0 {
		p.logger.Info("no procedures matched", "threshold", query.Threshold)
		return models.NoMatch(NoMatchResponse())
	}

	resp, err := p.synthesizer.Synthesize(ctx, query.Text, candidates)
	if err != nil {
		p.logger.Error("synthesis failed", "error", err)
		return models.Failed(failureMessage)
	}

	return models.Answered(resp)
}
