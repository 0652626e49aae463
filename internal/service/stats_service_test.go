package service

import "testing"

type fakeSizer struct {
	bytes int64
}

func (f *fakeSizer) DownloadDirBytes() int64 { return f.bytes }

func TestStatsServiceCounters(t *testing.T) {
	svc := NewStatsService(&fakeSizer{bytes: 4096})

	svc.RecordRequest("/api/video-info")
	svc.RecordRequest("/api/video-info")
	svc.RecordRequest("/api/health")
	svc.RecordDownload(1000)
	svc.RecordDownload(2500)

	stats := svc.Snapshot()

	if stats.RequestsServed != 3 {
		t.Errorf("requests_served = %d, want 3", stats.RequestsServed)
	}
	if stats.RequestsByRoute["/api/video-info"] != 2 {
		t.Errorf("video-info count = %d, want 2", stats.RequestsByRoute["/api/video-info"])
	}
	if stats.DownloadsServed != 2 {
		t.Errorf("downloads_served = %d, want 2", stats.DownloadsServed)
	}
	if stats.BytesServed != 3500 {
		t.Errorf("bytes_served = %d, want 3500", stats.BytesServed)
	}
	if stats.DownloadDirBytes != 4096 {
		t.Errorf("download_dir_bytes = %d, want 4096", stats.DownloadDirBytes)
	}
}

func TestStatsSnapshotIsolated(t *testing.T) {
	svc := NewStatsService(&fakeSizer{})
	svc.RecordRequest("/api/health")

	stats := svc.Snapshot()
	stats.RequestsByRoute["/api/health"] = 99

	if svc.Snapshot().RequestsByRoute["/api/health"] != 1 {
		t.Error("snapshot map shares state with the service")
	}
}
