// Package extractor wraps the yt-dlp binary. It owns the process
// boundary: everything that resolves a URL into metadata or media
// bytes happens on the other side of it.
package extractor

import (
	"bufio"
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"os/exec"
	"path/filepath"
	"strings"
	"time"

	"ytfetch/internal/model"
	"ytfetch/pkg/logger"

	"go.uber.org/zap"
)

// Sentinel errors for upstream failure classes. The wrapped message
// carries yt-dlp's own description and is surfaced to the user as-is.
var (
	ErrBinaryNotFound   = errors.New("yt-dlp binary not found")
	ErrVideoUnavailable = errors.New("video unavailable")
	ErrPrivateVideo     = errors.New("private video")
	ErrAgeRestricted    = errors.New("age-restricted video")
	ErrGeoBlocked       = errors.New("video not available in this region")
	ErrTimeout          = errors.New("extraction timed out")
)

// Client invokes yt-dlp as a subprocess.
type Client struct {
	cfg *model.ExtractorConfig
}

// New creates an extraction client
func New(cfg *model.ExtractorConfig) *Client {
	return &Client{cfg: cfg}
}

// Available reports whether the yt-dlp binary can be resolved.
func (c *Client) Available() bool {
	_, err := exec.LookPath(c.cfg.BinPath)
	return err == nil
}

// ytdlpJSON mirrors the subset of `yt-dlp -J` output this service
// consumes.
type ytdlpJSON struct {
	ID          string            `json:"id"`
	Title       string            `json:"title"`
	Channel     string            `json:"channel"`
	Uploader    string            `json:"uploader"`
	Duration    float64           `json:"duration"`
	ViewCount   int64             `json:"view_count"`
	Description string            `json:"description"`
	Thumbnail   string            `json:"thumbnail"`
	WebpageURL  string            `json:"webpage_url"`
	Formats     []model.RawFormat `json:"formats"`
}

// Probe fetches metadata for a URL without downloading anything.
func (c *Client) Probe(ctx context.Context, videoURL string) (*model.VideoMetadata, error) {
	if !c.Available() {
		return nil, ErrBinaryNotFound
	}

	ctx, cancel := context.WithTimeout(ctx, time.Duration(c.cfg.ProbeTimeout)*time.Second)
	defer cancel()

	args := []string{"-J", "--no-playlist", "--no-warnings"}
	if c.cfg.GeoBypassCountry != "" {
		args = append(args, "--geo-bypass-country", c.cfg.GeoBypassCountry)
	}
	args = append(args, videoURL)

	cmd := exec.CommandContext(ctx, c.cfg.BinPath, args...)
	var stderr bytes.Buffer
	cmd.Stderr = &stderr

	output, err := cmd.Output()
	if err != nil {
		return nil, classifyError(ctx, stderr.String(), err)
	}

	var data ytdlpJSON
	if err := json.Unmarshal(output, &data); err != nil {
		return nil, fmt.Errorf("failed to parse extractor output: %w", err)
	}

	return mapMetadata(&data, videoURL), nil
}

// mapMetadata converts raw yt-dlp output to the typed metadata model,
// applying documented defaults for absent fields.
func mapMetadata(data *ytdlpJSON, originalURL string) *model.VideoMetadata {
	channel := data.Channel
	if channel == "" {
		channel = data.Uploader
	}

	formats := make([]model.RawFormat, 0, len(data.Formats))
	for _, f := range data.Formats {
		// Absent codec fields default to the "none" sentinel so
		// classification never sees an empty codec string.
		if f.VCodec == "" {
			f.VCodec = "none"
		}
		if f.ACodec == "" {
			f.ACodec = "none"
		}
		formats = append(formats, f)
	}

	return &model.VideoMetadata{
		ID:          data.ID,
		Title:       data.Title,
		Channel:     channel,
		Duration:    int(data.Duration),
		ViewCount:   data.ViewCount,
		Description: data.Description,
		Thumbnail:   data.Thumbnail,
		OriginalURL: originalURL,
		Formats:     formats,
	}
}

// Download fetches the media for a URL and format selector into
// destDir and returns the path of the resulting file. The caller owns
// destDir and its cleanup.
func (c *Client) Download(ctx context.Context, videoURL, formatID, destDir string) (string, error) {
	if !c.Available() {
		return "", ErrBinaryNotFound
	}

	ctx, cancel := context.WithTimeout(ctx, time.Duration(c.cfg.DownloadTimeout)*time.Second)
	defer cancel()

	cmd := exec.CommandContext(ctx, c.cfg.BinPath, c.downloadArgs(videoURL, formatID, destDir)...)
	var stderr bytes.Buffer
	cmd.Stderr = &stderr

	stdout, err := cmd.StdoutPipe()
	if err != nil {
		return "", err
	}
	if err := cmd.Start(); err != nil {
		return "", classifyError(ctx, stderr.String(), err)
	}

	// --newline makes yt-dlp emit one progress line per update, so
	// the scanner sees them as they happen.
	scanner := bufio.NewScanner(stdout)
	for scanner.Scan() {
		if line := strings.TrimSpace(scanner.Text()); isProgressLine(line) && logger.Logger != nil {
			logger.Logger.Debug("Download progress",
				zap.String("url", videoURL),
				zap.String("line", line))
		}
	}

	if err := cmd.Wait(); err != nil {
		return "", classifyError(ctx, stderr.String(), err)
	}

	path, err := resolveDownloadedFile(destDir)
	if err != nil {
		return "", err
	}

	logger.Logger.Info("Download completed",
		zap.String("url", videoURL),
		zap.String("format_id", formatID),
		zap.String("path", path))

	return path, nil
}

// downloadArgs builds the yt-dlp invocation for a format selector.
func (c *Client) downloadArgs(videoURL, formatID, destDir string) []string {
	outputTemplate := filepath.Join(destDir, "%(title)s.%(ext)s")
	args := []string{"--no-playlist", "--no-warnings", "--newline", "-o", outputTemplate}

	if isAudioSelector(formatID) {
		args = append(args, "-f", "bestaudio/best", "-x", "--audio-format", "mp3")
	} else {
		args = append(args, "-f", formatID, "--merge-output-format", "mp4")
	}
	if c.cfg.GeoBypassCountry != "" {
		args = append(args, "--geo-bypass-country", c.cfg.GeoBypassCountry)
	}
	return append(args, videoURL)
}

// isAudioSelector reports whether a format selector asks for an
// audio-only download.
func isAudioSelector(formatID string) bool {
	return strings.Contains(strings.ToLower(formatID), "audio")
}

// isProgressLine matches yt-dlp's "[download]  42.0% of ..." updates.
func isProgressLine(line string) bool {
	return strings.HasPrefix(line, "[download]")
}

// resolveDownloadedFile locates the file yt-dlp produced. The dest
// dir is created fresh per request, so the newest regular file is the
// download.
func resolveDownloadedFile(destDir string) (string, error) {
	entries, err := os.ReadDir(destDir)
	if err != nil {
		return "", err
	}

	var newest string
	var newestMod time.Time
	for _, e := range entries {
		if e.IsDir() || strings.HasPrefix(e.Name(), ".") {
			continue
		}
		// Skip yt-dlp intermediates left behind by interrupted merges.
		if strings.HasSuffix(e.Name(), ".part") || strings.HasSuffix(e.Name(), ".ytdl") {
			continue
		}
		info, err := e.Info()
		if err != nil {
			continue
		}
		if newest == "" || info.ModTime().After(newestMod) {
			newest = e.Name()
			newestMod = info.ModTime()
		}
	}

	if newest == "" {
		return "", errors.New("downloaded file not found")
	}
	return filepath.Join(destDir, newest), nil
}

// classifyError maps yt-dlp failures onto the sentinel errors,
// keeping the tool's own description in the message.
func classifyError(ctx context.Context, output string, err error) error {
	if errors.Is(ctx.Err(), context.DeadlineExceeded) {
		return ErrTimeout
	}

	lower := strings.ToLower(output)
	detail := firstErrorLine(output)

	switch {
	case strings.Contains(lower, "private video"):
		return fmt.Errorf("%w: %s", ErrPrivateVideo, detail)
	case strings.Contains(lower, "sign in to confirm your age"),
		strings.Contains(lower, "age-restricted"):
		return fmt.Errorf("%w: %s", ErrAgeRestricted, detail)
	case strings.Contains(lower, "not available in your country"),
		strings.Contains(lower, "geo restriction"):
		return fmt.Errorf("%w: %s", ErrGeoBlocked, detail)
	case strings.Contains(lower, "video unavailable"),
		strings.Contains(lower, "video has been removed"):
		return fmt.Errorf("%w: %s", ErrVideoUnavailable, detail)
	}

	if detail != "" {
		return fmt.Errorf("extraction failed: %s", detail)
	}
	return fmt.Errorf("extraction failed: %w", err)
}

// firstErrorLine picks the first "ERROR:" line from yt-dlp output,
// falling back to the first non-empty line.
func firstErrorLine(output string) string {
	var fallback string
	for _, line := range strings.Split(output, "\n") {
		line = strings.TrimSpace(line)
		if line == "" {
			continue
		}
		if strings.HasPrefix(line, "ERROR:") {
			return strings.TrimSpace(strings.TrimPrefix(line, "ERROR:"))
		}
		if fallback == "" {
			fallback = line
		}
	}
	return fallback
}
