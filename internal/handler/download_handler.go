package handler

import (
	"fmt"
	"net/http"
	"net/url"
	"strconv"
	"strings"

	"ytfetch/internal/model"
	"ytfetch/internal/service"
	"ytfetch/pkg/logger"
	"ytfetch/pkg/validator"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"
)

// DownloadHandler handles download-related requests
type DownloadHandler struct {
	downloadService *service.DownloadService
	statsService    *service.StatsService
	cfg             *model.Config
}

// NewDownloadHandler creates a new download handler
func NewDownloadHandler(ds *service.DownloadService, ss *service.StatsService, cfg *model.Config) *DownloadHandler {
	return &DownloadHandler{
		downloadService: ds,
		statsService:    ss,
		cfg:             cfg,
	}
}

// Download handles GET /api/download. The file is fetched into a
// per-request temp dir and streamed from disk; nothing is buffered in
// memory and nothing is sent before the extractor has finished.
func (h *DownloadHandler) Download(c *gin.Context) {
	videoURL := c.Query("url")
	formatID := c.DefaultQuery("format_id", "best")

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

	if !validator.ValidateFormatID(formatID) {
		logger.Logger.Warn("Invalid format ID", zap.String("format_id", formatID))
		c.JSON(http.StatusBadRequest, model.ErrorResponse{
			Error:   "invalid_format",
			Message: "Invalid format ID",
			Code:    http.StatusBadRequest,
		})
		return
	}

	file, err := h.downloadService.Download(c.Request.Context(), videoURL, formatID)
	if err != nil {
		logger.Logger.Error("Download failed", zap.Error(err), zap.String("url", videoURL))
		c.JSON(http.StatusBadGateway, model.ErrorResponse{
			Error:   "download_failed",
			Message: err.Error(),
			Code:    http.StatusBadGateway,
		})
		return
	}
	defer file.Cleanup()

	if maxSize := h.downloadService.MaxFileSizeBytes(); file.Size > maxSize {
		maxSizeMB := maxSize / (1024 * 1024)
		fileSizeMB := file.Size / (1024 * 1024)
		logger.Logger.Warn("File size exceeds limit",
			zap.Int64("file_size", file.Size),
			zap.Int64("max_size", maxSize),
			zap.String("ip", c.ClientIP()))
		c.JSON(http.StatusRequestEntityTooLarge, model.ErrorResponse{
			Error:   "file_too_large",
			Message: fmt.Sprintf("File size exceeds maximum limit of %dMB. Requested size: %dMB.", maxSizeMB, fileSizeMB),
			Code:    http.StatusRequestEntityTooLarge,
		})
		return
	}

	c.Header("Content-Disposition", buildContentDispositionHeader(file.Filename))
	c.Header("Content-Type", "application/octet-stream")
	c.Header("X-File-Name", url.QueryEscape(file.Filename))
	c.Header("X-File-Size", strconv.FormatInt(file.Size, 10))
	c.File(file.Path)

	h.statsService.RecordDownload(file.Size)

	logger.Logger.Info("File served",
		zap.String("filename", file.Filename),
		zap.Int64("size", file.Size),
		zap.String("ip", c.ClientIP()))
}

// buildContentDispositionHeader builds a proper Content-Disposition header
// with RFC 5987 encoding for unicode and special characters
func buildContentDispositionHeader(filename string) string {
	needsEncoding := false
	for _, r := range filename {
		if r > 127 || r == '"' || r == '\\' || r == ';' || r == ',' {
			needsEncoding = true
			break
		}
	}

	if strings.ContainsAny(filename, " \t\n\r") {
		needsEncoding = true
	}

	if !needsEncoding {
		return fmt.Sprintf(`attachment; filename="%s"`, filename)
	}

	// RFC 5987: filename*=UTF-8''<percent-encoded-filename>
	encodedFilename := url.QueryEscape(filename)
	return fmt.Sprintf(`attachment; filename*=UTF-8''%s`, encodedFilename)
}
