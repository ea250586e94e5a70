package handler

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/studypal-ai/ragserver/internal/extract"
	"github.com/studypal-ai/ragserver/internal/model"
	"github.com/studypal-ai/ragserver/internal/pkg/response"
)

type ExtractorHandler struct {
	coordinator *extract.Coordinator
}

func NewExtractorHandler(coordinator *extract.Coordinator) *ExtractorHandler {
	return &ExtractorHandler{coordinator: coordinator}
}

func (h *ExtractorHandler) Register(g *gin.RouterGroup) {
	g.GET("/", h.Root)
	g.GET("/health", h.Health)
	g.POST("/process", h.Process)
}

func (h *ExtractorHandler) Root(c *gin.Context) {
	response.JSON(c, gin.H{"message": "Welcome to the Extractor Service"})
}

func (h *ExtractorHandler) Health(c *gin.Context) {
	response.JSON(c, gin.H{"status": "Extractor Service is healthy"})
}

func (h *ExtractorHandler) Process(c *gin.Context) {
	var req model.ProcessRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.Error(c, http.StatusBadRequest, "invalid request body")
		return
	}
	if len(req.Documents) == 0 && len(req.YoutubeVideos) == 0 {
		response.Error(c, http.StatusBadRequest, "documents or youtube_videos must be provided")
		return
	}
	result := h.coordinator.Process(c.Request.Context(), &req)
	response.JSON(c, result)
}
