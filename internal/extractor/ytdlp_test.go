package extractor

import (
	"context"
	"encoding/json"
	"errors"
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"ytfetch/internal/model"
)

const sampleProbeOutput = `{
	"id": "dQw4w9WgXcQ",
	"title": "Never Gonna Give You Up",
	"channel": "Rick Astley",
	"duration": 213.0,
	"view_count": 1400000000,
	"description": "The official video",
	"thumbnail": "https://i.ytimg.com/vi/dQw4w9WgXcQ/maxresdefault.jpg",
	"webpage_url": "https://www.youtube.com/watch?v=dQw4w9WgXcQ",
	"formats": [
		{"format_id": "137", "ext": "mp4", "vcodec": "avc1", "acodec": "none", "resolution": "1080p", "filesize": 1000},
		{"format_id": "140", "ext": "m4a", "acodec": "mp4a", "filesize": 500},
		{"format_id": "sb0", "ext": "mhtml"}
	]
}`

func TestMapMetadata(t *testing.T) {
	var data ytdlpJSON
	if err := json.Unmarshal([]byte(sampleProbeOutput), &data); err != nil {
		t.Fatalf("unmarshal sample: %v", err)
	}

	meta := mapMetadata(&data, "https://youtu.be/dQw4w9WgXcQ")

	if meta.ID != "dQw4w9WgXcQ" {
		t.Errorf("ID=%q", meta.ID)
	}
	if meta.Channel != "Rick Astley" {
		t.Errorf("Channel=%q", meta.Channel)
	}
	if meta.Duration != 213 {
		t.Errorf("Duration=%d", meta.Duration)
	}
	if meta.OriginalURL != "https://youtu.be/dQw4w9WgXcQ" {
		t.Errorf("OriginalURL=%q", meta.OriginalURL)
	}
	if len(meta.Formats) != 3 {
		t.Fatalf("got %d formats, want 3", len(meta.Formats))
	}
	// Absent codec fields are defaulted to the "none" sentinel.
	if meta.Formats[1].VCodec != "none" {
		t.Errorf("formats[1].VCodec=%q, want none", meta.Formats[1].VCodec)
	}
	if meta.Formats[2].VCodec != "none" || meta.Formats[2].ACodec != "none" {
		t.Errorf("formats[2] codecs=(%q, %q), want both none", meta.Formats[2].VCodec, meta.Formats[2].ACodec)
	}
}

func TestMapMetadata_UploaderFallback(t *testing.T) {
	data := &ytdlpJSON{Title: "clip", Uploader: "someone"}
	meta := mapMetadata(data, "u")
	if meta.Channel != "someone" {
		t.Errorf("Channel=%q, want uploader fallback", meta.Channel)
	}
}

func TestClassifyError(t *testing.T) {
	tests := []struct {
		name   string
		output string
		want   error
	}{
		{"private", "ERROR: [youtube] abc: Private video. Sign in if you've been granted access", ErrPrivateVideo},
		{"age", "ERROR: Sign in to confirm your age. This video may be inappropriate", ErrAgeRestricted},
		{"geo", "ERROR: The uploader has not made this video available in your country", ErrGeoBlocked},
		{"removed", "ERROR: Video unavailable. This video has been removed by the uploader", ErrVideoUnavailable},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := classifyError(context.Background(), tt.output, errors.New("exit status 1"))
			if !errors.Is(err, tt.want) {
				t.Errorf("classifyError=%v, want %v", err, tt.want)
			}
			// The descriptive line is kept in the message.
			if len(err.Error()) <= len(tt.want.Error()) {
				t.Errorf("message %q carries no detail", err.Error())
			}
		})
	}
}

func TestClassifyError_Timeout(t *testing.T) {
	ctx, cancel := context.WithDeadline(context.Background(), time.Now().Add(-time.Second))
	defer cancel()
	err := classifyError(ctx, "", errors.New("signal: killed"))
	if !errors.Is(err, ErrTimeout) {
		t.Errorf("classifyError=%v, want ErrTimeout", err)
	}
}

func TestIsAudioSelector(t *testing.T) {
	tests := []struct {
		formatID string
		want     bool
	}{
		{"bestaudio", true},
		{"BestAudio/best", true},
		{"best", false},
		{"137", false},
	}
	for _, tt := range tests {
		if got := isAudioSelector(tt.formatID); got != tt.want {
			t.Errorf("isAudioSelector(%q)=%v, want %v", tt.formatID, got, tt.want)
		}
	}
}

func TestDownloadArgs(t *testing.T) {
	c := New(&model.ExtractorConfig{BinPath: "yt-dlp", GeoBypassCountry: "US"})

	args := strings.Join(c.downloadArgs("https://youtu.be/dQw4w9WgXcQ", "137", "/tmp/dl"), " ")
	for _, want := range []string{"--newline", "-f 137", "--merge-output-format mp4", "--geo-bypass-country US"} {
		if !strings.Contains(args, want) {
			t.Errorf("video args missing %q: %s", want, args)
		}
	}

	args = strings.Join(c.downloadArgs("https://youtu.be/dQw4w9WgXcQ", "bestaudio", "/tmp/dl"), " ")
	for _, want := range []string{"-f bestaudio/best", "-x", "--audio-format mp3"} {
		if !strings.Contains(args, want) {
			t.Errorf("audio args missing %q: %s", want, args)
		}
	}
}

func TestIsProgressLine(t *testing.T) {
	tests := []struct {
		line string
		want bool
	}{
		{"[download]  42.0% of 12.34MiB at 1.2MiB/s ETA 00:05", true},
		{"[download] Destination: clip.mp4", true},
		{"[merger] Merging formats", false},
		{"", false},
	}
	for _, tt := range tests {
		if got := isProgressLine(tt.line); got != tt.want {
			t.Errorf("isProgressLine(%q)=%v, want %v", tt.line, got, tt.want)
		}
	}
}

func TestResolveDownloadedFile(t *testing.T) {
	dir := t.TempDir()

	older := filepath.Join(dir, "clip.f137.mp4.part")
	if err := os.WriteFile(older, []byte("partial"), 0644); err != nil {
		t.Fatal(err)
	}
	final := filepath.Join(dir, "clip.mp4")
	if err := os.WriteFile(final, []byte("video"), 0644); err != nil {
		t.Fatal(err)
	}

	got, err := resolveDownloadedFile(dir)
	if err != nil {
		t.Fatalf("resolveDownloadedFile: %v", err)
	}
	if got != final {
		t.Errorf("got %q, want %q", got, final)
	}
}

func TestResolveDownloadedFile_Empty(t *testing.T) {
	if _, err := resolveDownloadedFile(t.TempDir()); err == nil {
		t.Error("expected error for empty dir")
	}
}
