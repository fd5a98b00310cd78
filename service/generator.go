package service

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/google/generative-ai-go/genai"
)

// ErrGenerationFailed signals that the generative model returned no
// usable payload.
var ErrGenerationFailed = errors.New("failed to generate content")

// structuredResponseSchema constrains the model output to the canonical
// answer shape. Summary, checklist and both links are mandatory; the
// rest degrade gracefully downstream.
var structuredResponseSchema = &genai.Schema{
	Type: genai.TypeObject,
	Properties: map[string]*genai.Schema{
		"summary":       {Type: genai.TypeString},
		"checklist":     {Type: genai.TypeArray, Items: &genai.Schema{Type: genai.TypeString}},
		"legalCitation": {Type: genai.TypeString},
		"quickActions":  {Type: genai.TypeArray, Items: &genai.Schema{Type: genai.TypeString}},
		"procedureLink": {Type: genai.TypeString},
		"thematicLink":  {Type: genai.TypeString},
	},
	Required: []string{"summary", "checklist", "procedureLink", "thematicLink"},
}

// GeminiGenerator produces schema-constrained JSON answers from the
// Gemini API.
type GeminiGenerator struct {
	client *genai.Client
	model  string
}

// NewGeminiGenerator wraps an initialized genai client.
func NewGeminiGenerator(client *genai.Client, model string) *GeminiGenerator {
	return &GeminiGenerator{client: client, model: model}
}

// GenerateStructured invokes the model with the given system
// instruction and prompt, constrained to the structured answer schema,
// and returns the raw JSON payload.
func (g *GeminiGenerator) GenerateStructured(ctx context.Context, systemInstruction, prompt string) (string, error) {
	if g.client == nil {
		return "", ErrMissingCredential
	}

	model := g.client.GenerativeModel(g.model)
	model.SystemInstruction = &genai.Content{
		Parts: []genai.Part{genai.Text(systemInstruction)},
	}
	model.ResponseMIMEType = "application/json"
	model.ResponseSchema = structuredResponseSchema

	resp, err := model.GenerateContent(ctx, genai.Text(prompt))
	if err != nil {
		return "", fmt.Errorf("%w: %v", ErrGenerationFailed, err)
	}

	if len(resp.Candidates) == 0 {
		return "", fmt.Errorf("%w: API returned no candidates", ErrGenerationFailed)
	}

	var payload strings.Builder
	for _, candidate := range resp.Candidates {
		if candidate.Content == nil {
			continue
		}
		for _, part := range candidate.Content.Parts {
			if text, ok := part.(genai.Text); ok {
				payload.WriteString(string(text))
			}
		}
	}

	result := strings.TrimSpace(payload.String())
	if result == "" {
		return "", fmt.Errorf("%w: API returned empty content", ErrGenerationFailed)
	}

	return result, nil
}
