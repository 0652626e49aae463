package handler

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"net/url"
	"os"
	"testing"

	"ytfetch/internal/model"
	"ytfetch/internal/service"
	"ytfetch/pkg/logger"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"
)

func TestMain(m *testing.M) {
	gin.SetMode(gin.TestMode)
	logger.Logger = zap.NewNop()
	os.Exit(m.Run())
}

type fakeProber struct {
	meta   *model.VideoMetadata
	err    error
	called bool
}

func (f *fakeProber) Probe(ctx context.Context, url string) (*model.VideoMetadata, error) {
	f.called = true
	return f.meta, f.err
}

type fakeStatus struct {
	available bool
}

func (f *fakeStatus) Available() bool { return f.available }

type fakeSizer struct{}

func (fakeSizer) DownloadDirBytes() int64 { return 0 }

func testConfig() *model.Config {
	return &model.Config{
		Storage: model.StorageConfig{
			DownloadDir:    "./downloads",
			MaxVideoSizeMB: 500,
		},
	}
}

func newVideoHandler(prober *fakeProber, status *fakeStatus) *VideoHandler {
	return NewVideoHandler(
		service.NewVideoService(prober),
		service.NewStatsService(fakeSizer{}),
		status,
		testConfig(),
	)
}

func performRequest(t *testing.T, handler gin.HandlerFunc, target string) *httptest.ResponseRecorder {
	t.Helper()
	router := gin.New()
	router.GET("/api/video-info", handler)
	router.GET("/api/formats", handler)
	router.GET("/api/health", handler)
	router.GET("/api/stats", handler)

	req := httptest.NewRequest(http.MethodGet, target, nil)
	w := httptest.NewRecorder()
	router.ServeHTTP(w, req)
	return w
}

func TestGetVideoInfoOK(t *testing.T) {
	prober := &fakeProber{meta: &model.VideoMetadata{
		ID:       "dQw4w9WgXcQ",
		Title:    "Test Video",
		Duration: 125,
		Formats: []model.RawFormat{
			{FormatID: "22", Ext: "mp4", VCodec: "avc1", ACodec: "mp4a", Resolution: "1280x720"},
		},
	}}
	h := newVideoHandler(prober, &fakeStatus{available: true})

	w := performRequest(t, h.GetVideoInfo,
		"/api/video-info?url="+url.QueryEscape("https://www.youtube.com/watch?v=dQw4w9WgXcQ"))

	if w.Code != http.StatusOK {
		t.Fatalf("status = %d, want 200; body %s", w.Code, w.Body.String())
	}

	var resp model.VideoInfoResponse
	if err := json.Unmarshal(w.Body.Bytes(), &resp); err != nil {
		t.Fatalf("decode response: %v", err)
	}
	if !resp.Success || resp.VideoID != "dQw4w9WgXcQ" {
		t.Errorf("unexpected response: %+v", resp)
	}
	if resp.Duration != "02:05" {
		t.Errorf("duration = %q, want 02:05", resp.Duration)
	}
}

func TestGetVideoInfoMissingURL(t *testing.T) {
	prober := &fakeProber{}
	h := newVideoHandler(prober, &fakeStatus{})

	w := performRequest(t, h.GetVideoInfo, "/api/video-info")

	if w.Code != http.StatusBadRequest {
		t.Errorf("status = %d, want 400", w.Code)
	}
	if prober.called {
		t.Error("extractor invoked for a missing URL")
	}
}

func TestGetVideoInfoRejectsForeignHost(t *testing.T) {
	prober := &fakeProber{}
	h := newVideoHandler(prober, &fakeStatus{})

	w := performRequest(t, h.GetVideoInfo,
		"/api/video-info?url="+url.QueryEscape("https://vimeo.com/12345"))

	if w.Code != http.StatusBadRequest {
		t.Errorf("status = %d, want 400", w.Code)
	}
	if prober.called {
		t.Error("extractor invoked for a non-YouTube URL")
	}

	var resp model.ErrorResponse
	if err := json.Unmarshal(w.Body.Bytes(), &resp); err != nil {
		t.Fatalf("decode error body: %v", err)
	}
	if resp.Error != "invalid_url" {
		t.Errorf("error = %q, want invalid_url", resp.Error)
	}
}

func TestGetVideoInfoUpstreamFailure(t *testing.T) {
	prober := &fakeProber{err: errors.New("Private video. Sign in if you've been granted access")}
	h := newVideoHandler(prober, &fakeStatus{})

	w := performRequest(t, h.GetVideoInfo,
		"/api/video-info?url="+url.QueryEscape("https://youtu.be/dQw4w9WgXcQ"))

	if w.Code != http.StatusBadGateway {
		t.Errorf("status = %d, want 502", w.Code)
	}

	var resp model.ErrorResponse
	if err := json.Unmarshal(w.Body.Bytes(), &resp); err != nil {
		t.Fatalf("decode error body: %v", err)
	}
	if resp.Message != prober.err.Error() {
		t.Errorf("message = %q, want extractor message verbatim", resp.Message)
	}
}

func TestListFormatsOK(t *testing.T) {
	prober := &fakeProber{meta: &model.VideoMetadata{
		ID: "dQw4w9WgXcQ",
		Formats: []model.RawFormat{
			{FormatID: "137", VCodec: "avc1", ACodec: "none"},
			{FormatID: "140", VCodec: "none", ACodec: "mp4a"},
		},
	}}
	h := newVideoHandler(prober, &fakeStatus{})

	w := performRequest(t, h.ListFormats,
		"/api/formats?url="+url.QueryEscape("https://youtu.be/dQw4w9WgXcQ"))

	if w.Code != http.StatusOK {
		t.Fatalf("status = %d, want 200; body %s", w.Code, w.Body.String())
	}

	var resp model.FormatsResponse
	if err := json.Unmarshal(w.Body.Bytes(), &resp); err != nil {
		t.Fatalf("decode response: %v", err)
	}
	if !resp.Success || resp.Total != 2 || resp.VideoID != "dQw4w9WgXcQ" {
		t.Errorf("unexpected response: %+v", resp)
	}
	if resp.Formats[0].FormatID != "137" {
		t.Errorf("formats[0].format_id = %q, want raw list unchanged", resp.Formats[0].FormatID)
	}
}

func TestListFormatsRejectsInvalidURL(t *testing.T) {
	prober := &fakeProber{}
	h := newVideoHandler(prober, &fakeStatus{})

	w := performRequest(t, h.ListFormats,
		"/api/formats?url="+url.QueryEscape("https://vimeo.com/123"))

	if w.Code != http.StatusBadRequest {
		t.Errorf("status = %d, want 400", w.Code)
	}
	if prober.called {
		t.Error("extractor invoked for a non-YouTube URL")
	}
}

func TestHealthCheck(t *testing.T) {
	h := newVideoHandler(&fakeProber{}, &fakeStatus{available: false})

	w := performRequest(t, h.HealthCheck, "/api/health")

	if w.Code != http.StatusOK {
		t.Fatalf("status = %d, want 200", w.Code)
	}

	var resp model.HealthResponse
	if err := json.Unmarshal(w.Body.Bytes(), &resp); err != nil {
		t.Fatalf("decode response: %v", err)
	}
	if resp.Status != "healthy" {
		t.Errorf("status = %q, want healthy", resp.Status)
	}
	if resp.YtDlpAvailable {
		t.Error("yt_dlp_available = true, want false")
	}
	if resp.DownloadsDir != "./downloads" {
		t.Errorf("downloads_dir = %q", resp.DownloadsDir)
	}
}

func TestStats(t *testing.T) {
	stats := service.NewStatsService(fakeSizer{})
	stats.RecordRequest("/api/video-info")
	h := NewVideoHandler(service.NewVideoService(&fakeProber{}), stats, &fakeStatus{}, testConfig())

	w := performRequest(t, h.Stats, "/api/stats")

	if w.Code != http.StatusOK {
		t.Fatalf("status = %d, want 200", w.Code)
	}

	var resp model.StatsResponse
	if err := json.Unmarshal(w.Body.Bytes(), &resp); err != nil {
		t.Fatalf("decode response: %v", err)
	}
	if !resp.Success || resp.Stats.RequestsServed != 1 {
		t.Errorf("unexpected stats response: %+v", resp)
	}
}
