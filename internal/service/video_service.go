package service

import (
	"context"
	"fmt"

	"ytfetch/internal/format"
	"ytfetch/internal/model"
	"ytfetch/pkg/logger"

	"go.uber.org/zap"
)

// MetadataProber resolves a URL into video metadata. Satisfied by
// *extractor.Client.
type MetadataProber interface {
	Probe(ctx context.Context, url string) (*model.VideoMetadata, error)
}

// descriptionLimit caps how much of the description is returned.
const descriptionLimit = 300

// VideoService handles video metadata requests
type VideoService struct {
	prober MetadataProber
}

// NewVideoService creates a new video service
func NewVideoService(prober MetadataProber) *VideoService {
	return &VideoService{prober: prober}
}

// GetVideoInfo probes a URL and returns display-ready metadata with
// normalized format groups. An empty format list is a valid result.
func (s *VideoService) GetVideoInfo(ctx context.Context, videoURL string) (*model.VideoInfoResponse, error) {
	meta, err := s.prober.Probe(ctx, videoURL)
	if err != nil {
		logger.Logger.Error("Failed to probe video", zap.Error(err), zap.String("url", videoURL))
		return nil, err
	}

	groups := format.Normalize(meta.Formats)

	logger.Logger.Info("Video info retrieved",
		zap.String("title", meta.Title),
		zap.Int("video_formats", groups.VideoTotal),
		zap.Int("audio_formats", groups.AudioTotal))

	return &model.VideoInfoResponse{
		Success:     true,
		Title:       meta.Title,
		Channel:     meta.Channel,
		Duration:    formatDuration(meta.Duration),
		ViewCount:   meta.ViewCount,
		Thumbnail:   meta.Thumbnail,
		VideoID:     meta.ID,
		Description: truncateDescription(meta.Description),
		Formats:     groups,
		OriginalURL: meta.OriginalURL,
	}, nil
}

// ListFormats probes a URL and returns the raw format list untouched,
// for callers that want every variant instead of the ranked display
// lists.
func (s *VideoService) ListFormats(ctx context.Context, videoURL string) (*model.FormatsResponse, error) {
	meta, err := s.prober.Probe(ctx, videoURL)
	if err != nil {
		logger.Logger.Error("Failed to list formats", zap.Error(err), zap.String("url", videoURL))
		return nil, err
	}

	return &model.FormatsResponse{
		Success: true,
		Formats: meta.Formats,
		Total:   len(meta.Formats),
		VideoID: meta.ID,
	}, nil
}

// formatDuration renders seconds as HH:MM:SS, or MM:SS under an hour.
func formatDuration(seconds int) string {
	if seconds <= 0 {
		return "00:00"
	}

	hours := seconds / 3600
	minutes := (seconds % 3600) / 60
	secs := seconds % 60

	if hours > 0 {
		return fmt.Sprintf("%02d:%02d:%02d", hours, minutes, secs)
	}
	return fmt.Sprintf("%02d:%02d", minutes, secs)
}

func truncateDescription(desc string) string {
	if desc == "" {
		return "No description"
	}
	runes := []rune(desc)
	if len(runes) <= descriptionLimit {
		return desc
	}
	return string(runes[:descriptionLimit]) + "..."
}
