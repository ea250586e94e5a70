package handler

import (
	"errors"
	"net/http"
	"strconv"

	"github.com/gin-gonic/gin"

	"github.com/studypal-ai/ragserver/internal/gateway"
	"github.com/studypal-ai/ragserver/internal/model"
	"github.com/studypal-ai/ragserver/internal/pkg/response"
)

type GatewayHandler struct {
	svc *gateway.Service
}

func NewGatewayHandler(svc *gateway.Service) *GatewayHandler {
	return &GatewayHandler{svc: svc}
}

func (h *GatewayHandler) Register(g *gin.RouterGroup) {
	g.GET("/", h.Root)
	g.GET("/health", h.Health)
	g.GET("/createSession", h.CreateSession)
	g.POST("/uploadDocs", h.UploadDocs)
	g.POST("/store", h.Store)
	g.GET("/databaseQuery", h.DatabaseQuery)
	g.GET("/query", h.Query)
	g.GET("/promptQuery", h.PromptQuery)
}

func (h *GatewayHandler) Root(c *gin.Context) {
	response.JSON(c, gin.H{"message": "Welcome to the Backend Service"})
}

func (h *GatewayHandler) Health(c *gin.Context) {
	response.JSON(c, gin.H{"status": "Backend Service is healthy"})
}

func (h *GatewayHandler) CreateSession(c *gin.Context) {
	response.JSON(c, gin.H{"session_id": h.svc.CreateSession()})
}

type uploadDocsRequest struct {
	SessionID string   `json:"session_id"`
	Filenames []string `json:"filenames"`
}

func (h *GatewayHandler) UploadDocs(c *gin.Context) {
	var req uploadDocsRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.Error(c, http.StatusBadRequest, "invalid request body")
		return
	}
	if req.SessionID == "" || len(req.Filenames) == 0 {
		response.Error(c, http.StatusBadRequest, "session_id and filenames are required")
		return
	}
	urls, err := h.svc.PresignUploads(c.Request.Context(), req.SessionID, req.Filenames)
	if err != nil {
		response.Error(c, http.StatusInternalServerError, "failed to create upload URLs")
		return
	}
	response.JSON(c, urls)
}

func (h *GatewayHandler) Store(c *gin.Context) {
	var req gateway.StoreDocumentsRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.Error(c, http.StatusBadRequest, "invalid request body")
		return
	}
	if req.SessionID == "" || req.Tag == "" {
		response.Error(c, http.StatusBadRequest, "session_id and tag are required")
		return
	}
	if _, err := h.svc.StoreDocuments(c.Request.Context(), &req); err != nil {
		if errors.Is(err, gateway.ErrNoDocuments) {
			response.Error(c, http.StatusNotFound, "No documents found in S3 for this session_id")
			return
		}
		response.Error(c, http.StatusInternalServerError, err.Error())
		return
	}
	response.JSON(c, gin.H{"message": "Documents stored successfully"})
}

func (h *GatewayHandler) DatabaseQuery(c *gin.Context) {
	query := c.Query("query")
	if query == "" {
		response.Error(c, http.StatusBadRequest, "Query parameter 'query' is required.")
		return
	}
	req := &model.SearchRequest{
		Query:     query,
		Tag:       c.Query("tag"),
		SessionID: c.Query("session_id"),
		TopK:      queryInt(c, "top_k", 5),
	}
	results, err := h.svc.DatabaseQuery(c.Request.Context(), req)
	if err != nil {
		response.Error(c, http.StatusInternalServerError, "Failed to query the vector store.")
		return
	}
	response.JSON(c, model.SearchResponse{Results: results})
}

func (h *GatewayHandler) Query(c *gin.Context) {
	query := c.Query("query")
	if query == "" {
		response.Error(c, http.StatusBadRequest, "Query parameter 'query' is required.")
		return
	}
	params := &gateway.QueryParams{
		Query:       query,
		Tag:         c.Query("tag"),
		SessionID:   c.Query("session_id"),
		Temperature: queryFloat(c, "temperature", 0),
		MaxTokens:   queryInt(c, "max_tokens", 0),
	}
	answer, err := h.svc.Query(c.Request.Context(), params)
	if err != nil {
		response.Error(c, http.StatusInternalServerError, "Failed to process the combined query")
		return
	}
	response.JSON(c, model.GenerateResponse{GeneratedText: answer})
}

func (h *GatewayHandler) PromptQuery(c *gin.Context) {
	prompt := c.Query("prompt")
	if prompt == "" {
		response.Error(c, http.StatusBadRequest, "Query parameter 'prompt' is required.")
		return
	}
	req := &model.GenerateRequest{
		Prompt:      prompt,
		Temperature: queryFloat(c, "temperature", 0.7),
		MaxTokens:   queryInt(c, "max_tokens", 500),
	}
	answer, err := h.svc.PromptQuery(c.Request.Context(), req)
	if err != nil {
		response.Error(c, http.StatusInternalServerError, "Failed to query Prompt Service.")
		return
	}
	response.JSON(c, model.GenerateResponse{GeneratedText: answer})
}

func queryInt(c *gin.Context, name string, fallback int) int {
	raw := c.Query(name)
	if raw == "" {
		return fallback
	}
	v, err := strconv.Atoi(raw)
	if err != nil {
		return fallback
	}
	return v
}

func queryFloat(c *gin.Context, name string, fallback float32) float32 {
	raw := c.Query(name)
	if raw == "" {
		return fallback
	}
	v, err := strconv.ParseFloat(raw, 32)
	if err != nil {
		return fallback
	}
	return float32(v)
}
