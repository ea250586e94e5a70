package handler

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/studypal-ai/ragserver/internal/ai"
	"github.com/studypal-ai/ragserver/internal/model"
	"github.com/studypal-ai/ragserver/internal/pkg/response"
)

type LLMHandler struct {
	generator ai.IGenerator
}

func NewLLMHandler(generator ai.IGenerator) *LLMHandler {
	return &LLMHandler{generator: generator}
}

func (h *LLMHandler) Register(g *gin.RouterGroup) {
	g.GET("/", h.Root)
	g.GET("/health", h.Health)
	g.POST("/generate", h.Generate)
}

func (h *LLMHandler) Root(c *gin.Context) {
	response.JSON(c, gin.H{"message": "Welcome to the LLM Prompt Service"})
}

func (h *LLMHandler) Health(c *gin.Context) {
	response.JSON(c, gin.H{"status": "LLM Prompt Service is healthy"})
}

func (h *LLMHandler) Generate(c *gin.Context) {
	var req model.GenerateRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.Error(c, http.StatusBadRequest, "invalid request body")
		return
	}
	if req.Prompt == "" {
		response.Error(c, http.StatusBadRequest, "prompt is required")
		return
	}
	text, err := h.generator.Generate(c.Request.Context(), req.Prompt, ai.GenerateOptions{
		Temperature: req.Temperature,
		MaxTokens:   req.MaxTokens,
	})
	if err != nil {
		response.Error(c, http.StatusInternalServerError, "failed to generate response")
		return
	}
	response.JSON(c, model.GenerateResponse{GeneratedText: text})
}
