package service

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"strings"

	"idarati-backend/models"
)

// ErrSynthesisFailed signals that the model returned no payload or a
// payload that is not valid JSON. This is distinct from the no-match
// path: it means the model said nothing usable, not that no documents
// were found.
var ErrSynthesisFailed = errors.New("invalid model output")

// systemInstruction restricts the assistant to the supplied context and
// tells it how to construct procedure and thematic links from the IDs
// found there.
const systemInstruction = `أنت "مساعد إدارتي" (Idarati Assistant). مهمتك هي تبسيط المساطر الإدارية المغربية.
سأزودك بسياق (Context) مستخرج من قاعدة بيانات idarati.ma.

يجب عليك:
1. استخراج المعلومات من السياق المقدم فقط.
2. بناء رابط المسطرة ورابط الموضوع (Thematic) بدقة باستخدام المعرفات (IDs) الموجودة في السياق.
3. إذا كان هناك أكثر من مسطرة متعلقة، اقترح رابط الموضوع ليتصفح المستخدم بقية الإجراءات.

هيكلة الرابط:
- رابط المسطرة: https://idarati.ma/informationnel/ar/thematique/{thematicId}/{procedureId}
- رابط الموضوع: https://idarati.ma/informationnel/ar/thematique/{thematicId}

القواعد:
- لغة عربية سليمة (فصحى أو دارجة مهذبة).
- إذا لم تجد معلومة في السياق، اطلب من المستخدم توضيح طلبه.`

// noContextSentinel stands in for the context block when retrieval
// produced nothing; the model is still invoked so it can ask the user
// to clarify instead of failing hard.
const noContextSentinel = "No context provided."

// unknownThematicSentinel replaces an absent thematic identifier in the
// serialized context.
const unknownThematicSentinel = "unknown-thematic"

// StructuredGenerator is the schema-constrained generative model.
type StructuredGenerator interface {
	GenerateStructured(ctx context.Context, systemInstruction, prompt string) (string, error)
}

// AnswerSynthesizer turns a user prompt plus retrieved candidates into
// a validated StructuredResponse.
type AnswerSynthesizer struct {
	generator StructuredGenerator
}

// SynthesizerOption is a functional option for AnswerSynthesizer.
type SynthesizerOption func(*AnswerSynthesizer)

// WithGenerator sets the structured generator.
func WithGenerator(g StructuredGenerator) SynthesizerOption {
	return func(s *AnswerSynthesizer) {
		s.generator = g
	}
}

// NewAnswerSynthesizer creates a new answer synthesizer.
func NewAnswerSynthesizer(opts ...SynthesizerOption) *AnswerSynthesizer {
	s := &AnswerSynthesizer{}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// buildContext serializes each candidate as a labeled record. Thematic
// identifiers may live either on the record or inside its metadata.
func buildContext(candidates []models.RetrievedProcedure) string {
	if len(candidates) == 0 {
		return noContextSentinel
	}

	blocks := make([]string, 0, len(candidates))
	for i, c := range candidates {
		procedureID := c.ID
		if procedureID == "" {
			procedureID = fmt.Sprintf("unknown-%d", i+1)
		}

		thematicID := unknownThematicSentinel
		if c.ThematicID != nil && *c.ThematicID != "" {
			thematicID = *c.ThematicID
		} else if v := c.Metadata.String("thematicId"); v != "" {
			thematicID = v
		} else if v := c.Metadata.String("thematic_id"); v != "" {
			thematicID = v
		}

		blocks = append(blocks, fmt.Sprintf(
			"Procedure: %s\nID: %s\nThematicID: %s\nContent: %s",
			c.Title, procedureID, thematicID, c.Content,
		))
	}
	return strings.Join(blocks, "\n---\n")
}

// modelPayload mirrors the JSON document the model is asked to emit.
// Optional members are pointers so absence can be told from emptiness.
type modelPayload struct {
	Summary       string    `json:"summary"`
	Checklist     []string  `json:"checklist"`
	LegalCitation *string   `json:"legalCitation"`
	QuickActions  *[]string `json:"quickActions"`
	ProcedureLink string    `json:"procedureLink"`
	ThematicLink  string    `json:"thematicLink"`
}

// Synthesize invokes the model against the serialized candidates and
// validates its output. Missing optional fields coerce to safe defaults
// rather than failing, so minor model drift never breaks the chat. The
// retrieved procedures are carried over from the candidate list, not
// regenerated by the model, so their links and metadata match the
// corpus exactly.
func (s *AnswerSynthesizer) Synthesize(
	ctx context.Context,
	userPrompt string,
	candidates []models.RetrievedProcedure,
) (*models.StructuredResponse, error) {
	if s.generator == nil {
		return nil, errors.New("generator not set")
	}

	prompt := fmt.Sprintf("Context:\n%s\n\nUser Question: %s", buildContext(candidates), userPrompt)

	payload, err := s.generator.GenerateStructured(ctx, systemInstruction, prompt)
	if err != nil {
		return nil, fmt.Errorf("%w: %w", ErrSynthesisFailed, err)
	}
	if strings.TrimSpace(payload) == "" {
		return nil, fmt.Errorf("%w: empty payload", ErrSynthesisFailed)
	}

	var parsed modelPayload
	if err := json.Unmarshal([]byte(payload), &parsed); err != nil {
		return nil, fmt.Errorf("%w: %v", ErrSynthesisFailed, err)
	}

	resp := models.StructuredResponse{
		Summary:             parsed.Summary,
		Checklist:           parsed.Checklist,
		ProcedureLink:       parsed.ProcedureLink,
		ThematicLink:        parsed.ThematicLink,
		RetrievedProcedures: append([]models.RetrievedProcedure(nil), candidates...),
	}
	if parsed.LegalCitation != nil {
		resp.LegalCitation = *parsed.LegalCitation
	}
	if parsed.QuickActions != nil {
		resp.QuickActions = *parsed.QuickActions
	}

	normalized := resp.Normalized()
	return &normalized, nil
}
