package handler

import (
	"net/http"
	"time"

	"ytfetch/internal/model"
	"ytfetch/internal/service"
	"ytfetch/pkg/logger"
	"ytfetch/pkg/validator"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"
)

const (
	serviceName    = "ytfetch"
	serviceVersion = "1.0.0"
)

// ExtractorStatus reports whether the extraction tool can be invoked.
// Satisfied by *extractor.Client.
type ExtractorStatus interface {
	Available() bool
}

// VideoHandler handles video-related requests
type VideoHandler struct {
	videoService *service.VideoService
	statsService *service.StatsService
	status       ExtractorStatus
	cfg          *model.Config
}

// NewVideoHandler creates a new video handler
func NewVideoHandler(vs *service.VideoService, ss *service.StatsService, status ExtractorStatus, cfg *model.Config) *VideoHandler {
	return &VideoHandler{
		videoService: vs,
		statsService: ss,
		status:       status,
		cfg:          cfg,
	}
}

// GetVideoInfo handles GET /api/video-info
func (h *VideoHandler) GetVideoInfo(c *gin.Context) {
	videoURL := c.Query("url")

	if videoURL == "" {
		logger.Logger.Warn("Empty URL provided")
		c.JSON(http.StatusBadRequest, model.ErrorResponse{
			Error:   "invalid_url",
			Message: "Video URL is required",
			Code:    http.StatusBadRequest,
		})
		return
	}

	// Reject non-YouTube URLs before touching the extractor.
	if !validator.IsYouTubeURL(videoURL) {
		logger.Logger.Warn("Invalid YouTube URL", zap.String("url", videoURL))
		c.JSON(http.StatusBadRequest, model.ErrorResponse{
			Error:   "invalid_url",
			Message: "Not a valid YouTube URL",
			Code:    http.StatusBadRequest,
		})
		return
	}

	videoInfo, err := h.videoService.GetVideoInfo(c.Request.Context(), videoURL)
	if err != nil {
		c.JSON(http.StatusBadGateway, model.ErrorResponse{
			Error:   "extraction_failed",
			Message: err.Error(),
			Code:    http.StatusBadGateway,
		})
		return
	}

	c.JSON(http.StatusOK, videoInfo)
}

// ListFormats handles GET /api/formats
func (h *VideoHandler) ListFormats(c *gin.Context) {
	videoURL := c.Query("url")

	if videoURL == "" {
		logger.Logger.Warn("Empty URL provided")
		c.JSON(http.StatusBadRequest, model.ErrorResponse{
			Error:   "invalid_url",
			Message: "Video URL is required",
			Code:    http.StatusBadRequest,
		})
		return
	}

	if !validator.IsYouTubeURL(videoURL) {
		logger.Logger.Warn("Invalid YouTube URL", zap.String("url", videoURL))
		c.JSON(http.StatusBadRequest, model.ErrorResponse{
			Error:   "invalid_url",
			Message: "Not a valid YouTube URL",
			Code:    http.StatusBadRequest,
		})
		return
	}

	formats, err := h.videoService.ListFormats(c.Request.Context(), videoURL)
	if err != nil {
		c.JSON(http.StatusBadGateway, model.ErrorResponse{
			Error:   "extraction_failed",
			Message: err.Error(),
			Code:    http.StatusBadGateway,
		})
		return
	}

	c.JSON(http.StatusOK, formats)
}

// HealthCheck handles GET /api/health
func (h *VideoHandler) HealthCheck(c *gin.Context) {
	c.JSON(http.StatusOK, model.HealthResponse{
		Status:         "healthy",
		Service:        serviceName,
		Version:        serviceVersion,
		YtDlpAvailable: h.status.Available(),
		DownloadsDir:   h.cfg.Storage.DownloadDir,
		Timestamp:      time.Now().UTC().Format(time.RFC3339),
	})
}

// Stats handles GET /api/stats
func (h *VideoHandler) Stats(c *gin.Context) {
	c.JSON(http.StatusOK, model.StatsResponse{
		Success: true,
		Stats:   h.statsService.Snapshot(),
	})
}
