package service

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"math"
	"net/http"
	"time"
)

var (
	ErrMissingCredential = errors.New("gemini api key not configured")
	ErrEmbeddingFailed   = errors.New("failed to generate embedding")
)

const (
	embeddingAPIBase = "https://generativelanguage.googleapis.com/v1beta/models"
	maxRetries       = 3
	initialBackoff   = time.Second
)

// Embedding task types understood by the Gemini embedContent API.
const (
	taskTypeQuery    = "RETRIEVAL_QUERY"
	taskTypeDocument = "RETRIEVAL_DOCUMENT"
)

// embeddingRequest represents an embedContent API request.
type embeddingRequest struct {
	Model                string       `json:"model"`
	Content              contentInput `json:"content"`
	TaskType             string       `json:"task_type,omitempty"`
	OutputDimensionality int          `json:"output_dimensionality,omitempty"`
}

type contentInput struct {
	Parts []partInput `json:"parts"`
}

type partInput struct {
	Text string `json:"text"`
}

// embeddingResponse represents an embedContent API response.
type embeddingResponse struct {
	Embedding embeddingData `json:"embedding"`
}

type embeddingData struct {
	Values []float64 `json:"values"`
}

// GeminiEmbedder turns free text into fixed-length dense vectors using
// the Gemini embedContent endpoint. The credential is injected at
// construction, never read from the environment at call time.
type GeminiEmbedder struct {
	apiKey    string
	model     string
	dimension int
	baseURL   string
	client    *http.Client
}

// NewGeminiEmbedder creates an embedder for the given default model and
// output dimensionality.
func NewGeminiEmbedder(apiKey, model string, dimension int) *GeminiEmbedder {
	return &GeminiEmbedder{
		apiKey:    apiKey,
		model:     model,
		dimension: dimension,
		baseURL:   embeddingAPIBase,
		client:    &http.Client{Timeout: 30 * time.Second},
	}
}

// EmbedQuery embeds a user query. An empty model falls back to the
// embedder's default.
func (e *GeminiEmbedder) EmbedQuery(ctx context.Context, text, model string) ([]float64, error) {
	return e.embed(ctx, text, model, taskTypeQuery)
}

// EmbedDocument embeds a corpus document for indexing.
func (e *GeminiEmbedder) EmbedDocument(ctx context.Context, text string) ([]float64, error) {
	return e.embed(ctx, text, "", taskTypeDocument)
}

func (e *GeminiEmbedder) embed(ctx context.Context, text, model, taskType string) ([]float64, error) {
	if e.apiKey == "" {
		return nil, ErrMissingCredential
	}
	if model == "" {
		model = e.model
	}

	reqBody := embeddingRequest{
		Model: "models/" + model,
		Content: contentInput{
			Parts: []partInput{{Text: text}},
		},
		TaskType:             taskType,
		OutputDimensionality: e.dimension,
	}

	jsonData, err := json.Marshal(reqBody)
	if err != nil {
		return nil, fmt.Errorf("failed to marshal request: %w", err)
	}

	endpoint := fmt.Sprintf("%s/%s:embedContent", e.baseURL, model)

	backoff := initialBackoff
	for attempt := 0; attempt < maxRetries; attempt++ {
		if attempt > 0 {
			time.Sleep(backoff)
			backoff *= 2
		}

		req, err := http.NewRequestWithContext(ctx, "POST", endpoint, bytes.NewBuffer(jsonData))
		if err != nil {
			return nil, fmt.Errorf("failed to create request: %w", err)
		}
		req.Header.Set("Content-Type", "application/json")
		req.Header.Set("x-goog-api-key", e.apiKey)

		resp, err := e.client.Do(req)
		if err != nil {
			if attempt == maxRetries-1 {
				return nil, fmt.Errorf("failed to send request after %d attempts: %w", maxRetries, err)
			}
			continue
		}

		if resp.StatusCode == http.StatusOK {
			var apiResp embeddingResponse
			decodeErr := json.NewDecoder(resp.Body).Decode(&apiResp)
			resp.Body.Close()
			if decodeErr != nil {
				if attempt == maxRetries-1 {
					return nil, fmt.Errorf("failed to decode response: %w", decodeErr)
				}
				continue
			}

			embedding := apiResp.Embedding.Values
			if len(embedding) == 0 {
				return nil, fmt.Errorf("%w: provider returned empty vector", ErrEmbeddingFailed)
			}
			normalize(embedding)
			return embedding, nil
		}

		resp.Body.Close()

		// 400/401 will not get better on retry.
		if resp.StatusCode == http.StatusBadRequest || resp.StatusCode == http.StatusUnauthorized {
			return nil, fmt.Errorf("%w: API error: %d", ErrEmbeddingFailed, resp.StatusCode)
		}

		if attempt == maxRetries-1 {
			return nil, fmt.Errorf("%w: API error after %d attempts: %d", ErrEmbeddingFailed, maxRetries, resp.StatusCode)
		}
	}

	return nil, ErrEmbeddingFailed
}

// normalize scales the vector to unit length in place.
func normalize(embedding []float64) {
	norm := 0.0
	for _, v := range embedding {
		norm += v * v
	}
	norm = math.Sqrt(norm)
	if norm > 0 {
		for i := range embedding {
			embedding[i] /= norm
		}
	}
}
