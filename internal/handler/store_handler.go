package handler

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/studypal-ai/ragserver/internal/model"
	"github.com/studypal-ai/ragserver/internal/pkg/response"
	"github.com/studypal-ai/ragserver/internal/vecstore"
)

type StoreHandler struct {
	svc *vecstore.Service
}

func NewStoreHandler(svc *vecstore.Service) *StoreHandler {
	return &StoreHandler{svc: svc}
}

func (h *StoreHandler) Register(g *gin.RouterGroup) {
	g.GET("/", h.Root)
	g.GET("/health", h.Health)
	g.POST("/store", h.Store)
	g.POST("/search", h.Search)
	g.GET("/totalChunks", h.TotalChunks)
}

func (h *StoreHandler) Root(c *gin.Context) {
	response.JSON(c, gin.H{"message": "Welcome to the Vector Store Service"})
}

func (h *StoreHandler) Health(c *gin.Context) {
	response.JSON(c, gin.H{"status": "Vector Store Service is healthy"})
}

func (h *StoreHandler) Store(c *gin.Context) {
	var req model.StoreRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.Error(c, http.StatusBadRequest, "invalid request body")
		return
	}
	if req.Tag == "" || req.SessionID == "" {
		response.Error(c, http.StatusBadRequest, "tag and session_id are required")
		return
	}
	if err := h.svc.Store(c.Request.Context(), &req); err != nil {
		response.Error(c, http.StatusInternalServerError, err.Error())
		return
	}
	response.JSON(c, gin.H{"status": "ok"})
}

func (h *StoreHandler) Search(c *gin.Context) {
	var req model.SearchRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.Error(c, http.StatusBadRequest, "invalid request body")
		return
	}
	if req.Query == "" {
		response.Error(c, http.StatusBadRequest, "query is required")
		return
	}
	if req.TopK <= 0 {
		req.TopK = 5
	}
	results, err := h.svc.Search(c.Request.Context(), &req)
	if err != nil {
		response.Error(c, http.StatusInternalServerError, err.Error())
		return
	}
	response.JSON(c, model.SearchResponse{Results: results})
}

func (h *StoreHandler) TotalChunks(c *gin.Context) {
	tag := c.Query("tag")
	sessionID := c.Query("session_id")
	if tag == "" || sessionID == "" {
		response.Error(c, http.StatusBadRequest, "Query parameters 'tag' and 'session_id' are required.")
		return
	}
	total, err := h.svc.TotalChunks(c.Request.Context(), tag, sessionID)
	if err != nil {
		response.Error(c, http.StatusInternalServerError, "failed to count chunks")
		return
	}
	response.JSON(c, model.TotalChunksResponse{Status: "ok", Total: total})
}
