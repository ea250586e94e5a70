package handler

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/studypal-ai/ragserver/internal/ai"
	"github.com/studypal-ai/ragserver/internal/model"
	"github.com/studypal-ai/ragserver/internal/pkg/response"
)

type EmbedderHandler struct {
	embedder ai.IEmbedder
}

func NewEmbedderHandler(embedder ai.IEmbedder) *EmbedderHandler {
	return &EmbedderHandler{embedder: embedder}
}

func (h *EmbedderHandler) Register(g *gin.RouterGroup) {
	g.GET("/", h.Root)
	g.GET("/health", h.Health)
	g.POST("/embed", h.Embed)
}

func (h *EmbedderHandler) Root(c *gin.Context) {
	response.JSON(c, gin.H{"message": "Welcome to the Embedding Service"})
}

func (h *EmbedderHandler) Health(c *gin.Context) {
	response.JSON(c, gin.H{"status": "Embedding Service is healthy"})
}

// Embed responds with the bare float array, not an object wrapper.
func (h *EmbedderHandler) Embed(c *gin.Context) {
	var req model.EmbedRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.Error(c, http.StatusBadRequest, "invalid request body")
		return
	}
	if req.Inputs == "" {
		response.Error(c, http.StatusBadRequest, "inputs is required")
		return
	}
	vec, err := h.embedder.Embed(c.Request.Context(), req.Inputs)
	if err != nil {
		response.Error(c, http.StatusInternalServerError, "failed to embed input")
		return
	}
	response.JSON(c, vec)
}
