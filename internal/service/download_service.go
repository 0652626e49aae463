package service

import (
	"context"
	"os"
	"path/filepath"

	"ytfetch/internal/storage"
	"ytfetch/pkg/logger"
	"ytfetch/pkg/validator"

	"go.uber.org/zap"
)

// MediaFetcher downloads the media for a URL and format selector into
// a destination directory. Satisfied by *extractor.Client.
type MediaFetcher interface {
	Download(ctx context.Context, url, formatID, destDir string) (string, error)
}

// maxFilenameLen bounds the filename sent in Content-Disposition.
const maxFilenameLen = 120

// DownloadedFile describes a completed download ready for streaming.
// Cleanup must be called once the bytes have been sent (or the
// request abandoned); it removes the backing temp dir.
type DownloadedFile struct {
	Path     string
	Filename string
	Size     int64
	Cleanup  func()
}

// DownloadService handles media downloads
type DownloadService struct {
	fetcher        MediaFetcher
	storageManager *storage.Manager
}

// NewDownloadService creates a new download service
func NewDownloadService(fetcher MediaFetcher, sm *storage.Manager) *DownloadService {
	return &DownloadService{
		fetcher:        fetcher,
		storageManager: sm,
	}
}

// Download fetches the requested format into a fresh temp dir and
// returns the file ready for streaming. Nothing is sent to the client
// until the extractor has produced a concrete file.
func (s *DownloadService) Download(ctx context.Context, videoURL, formatID string) (*DownloadedFile, error) {
	tempDir, err := s.storageManager.NewTempDir()
	if err != nil {
		logger.Logger.Error("Failed to create temp dir", zap.Error(err))
		return nil, err
	}

	path, err := s.fetcher.Download(ctx, videoURL, formatID, tempDir)
	if err != nil {
		s.storageManager.Remove(tempDir)
		return nil, err
	}

	info, err := os.Stat(path)
	if err != nil {
		s.storageManager.Remove(tempDir)
		return nil, err
	}

	return &DownloadedFile{
		Path:     path,
		Filename: downloadFilename(path),
		Size:     info.Size(),
		Cleanup:  func() { s.storageManager.Remove(tempDir) },
	}, nil
}

// MaxFileSizeBytes exposes the streaming size cap for the handler.
func (s *DownloadService) MaxFileSizeBytes() int64 {
	return s.storageManager.MaxFileSizeBytes()
}

// downloadFilename derives the client-facing filename from the
// downloaded path, sanitized and bounded.
func downloadFilename(path string) string {
	name := validator.SanitizeFilename(filepath.Base(path))
	return validator.TruncateFilename(name, maxFilenameLen)
}
