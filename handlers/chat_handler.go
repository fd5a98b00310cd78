package handlers

import (
	"context"
	"log/slog"
	"net/http"

	"idarati-backend/models"

	"github.com/gin-gonic/gin"
)

// AnswerPipeline produces a three-way outcome for a query.
type AnswerPipeline interface {
	Answer(ctx context.Context, query models.Query) models.Outcome
}

// CandidateRetriever exposes raw retrieval for the debug endpoint.
type CandidateRetriever interface {
	Retrieve(ctx context.Context, query models.Query) ([]models.RetrievedProcedure, error)
}

// ChatHandler handles the HTTP-facing variant of the answer pipeline.
type ChatHandler struct {
	pipeline  AnswerPipeline
	retriever CandidateRetriever
	logger    *slog.Logger
}

// NewChatHandler creates a new chat handler.
func NewChatHandler(pipeline AnswerPipeline, retriever CandidateRetriever, logger *slog.Logger) *ChatHandler {
	if logger == nil {
		logger = slog.Default()
	}
	return &ChatHandler{
		pipeline:  pipeline,
		retriever: retriever,
		logger:    logger,
	}
}

// RegisterRoutes mounts the handler on the router.
func (h *ChatHandler) RegisterRoutes(r *gin.Engine) {
	r.GET("/health", h.Health)
	r.POST("/ask", h.Ask)
	r.POST("/retrieve", h.Retrieve)
}

// AskRequest represents the request body for /ask and /retrieve.
type AskRequest struct {
	Prompt         string  `json:"prompt" binding:"required"`
	MatchThreshold float64 `json:"match_threshold"`
	MatchCount     int     `json:"match_count"`
	EmbeddingModel string  `json:"embedding_model"`
}

func (req AskRequest) query(defaultCount int) models.Query {
	return models.Query{
		Text:           req.Prompt,
		Threshold:      req.MatchThreshold,
		Count:          req.MatchCount,
		EmbeddingModel: req.EmbeddingModel,
	}.Normalize(defaultCount)
}

// Health handles GET /health.
func (h *ChatHandler) Health(c *gin.Context) {
	c.JSON(http.StatusOK, gin.H{
		"status": "ok",
	})
}

// Ask handles POST /ask. Answered and NoMatch both render the
// structured response body; Failed renders an error envelope with the
// user-safe message only.
func (h *ChatHandler) Ask(c *gin.Context) {
	var req AskRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{
			"success": false,
			"error": gin.H{
				"code":    "INVALID_REQUEST",
				"message": err.Error(),
			},
		})
		return
	}

	outcome := h.pipeline.Answer(c.Request.Context(), req.query(models.DefaultAskCount))

	switch outcome.Kind() {
	case models.OutcomeAnswered, models.OutcomeNoMatch:
		c.JSON(http.StatusOK, outcome.Response())
	case models.OutcomeFailed:
		c.JSON(http.StatusBadGateway, gin.H{
			"success": false,
			"error": gin.H{
				"code":    "ANSWER_FAILED",
				"message": outcome.Message(),
			},
		})
	}
}

// Retrieve handles POST /retrieve: raw retrieval results without answer
// synthesis, mainly for debugging the corpus.
func (h *ChatHandler) Retrieve(c *gin.Context) {
	var req AskRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{
			"success": false,
			"error": gin.H{
				"code":    "INVALID_REQUEST",
				"message": err.Error(),
			},
		})
		return
	}

	results, err := h.retriever.Retrieve(c.Request.Context(), req.query(models.DefaultRetrieveCount))
	if err != nil {
		h.logger.Error("retrieval failed", "error", err)
		c.JSON(http.StatusBadGateway, gin.H{
			"success": false,
			"error": gin.H{
				"code":    "RETRIEVAL_FAILED",
				"message": "retrieval is temporarily unavailable",
			},
		})
		return
	}

	if results == nil {
		results = []models.RetrievedProcedure{}
	}

	c.JSON(http.StatusOK, gin.H{
		"results": results,
		"count":   len(results),
	})
}
