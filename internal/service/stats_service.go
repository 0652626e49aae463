package service

import (
	"sync"
	"time"

	"ytfetch/internal/model"
)

// DownloadDirSizer reports the on-disk size of the downloads root.
// Satisfied by *storage.Manager.
type DownloadDirSizer interface {
	DownloadDirBytes() int64
}

// StatsService tracks request counters for the /api/stats endpoint.
type StatsService struct {
	sizer     DownloadDirSizer
	startedAt time.Time

	mu        sync.RWMutex
	requests  map[string]int64
	total     int64
	downloads int64
	bytes     int64
}

// NewStatsService creates a new stats service
func NewStatsService(sizer DownloadDirSizer) *StatsService {
	return &StatsService{
		sizer:     sizer,
		startedAt: time.Now(),
		requests:  make(map[string]int64),
	}
}

// RecordRequest counts one request against a route.
func (ss *StatsService) RecordRequest(route string) {
	ss.mu.Lock()
	defer ss.mu.Unlock()
	ss.requests[route]++
	ss.total++
}

// RecordDownload counts one served download and its size.
func (ss *StatsService) RecordDownload(sizeBytes int64) {
	ss.mu.Lock()
	defer ss.mu.Unlock()
	ss.downloads++
	ss.bytes += sizeBytes
}

// Snapshot returns the current counters.
func (ss *StatsService) Snapshot() model.ServerStats {
	ss.mu.RLock()
	defer ss.mu.RUnlock()

	byRoute := make(map[string]int64, len(ss.requests))
	for route, count := range ss.requests {
		byRoute[route] = count
	}

	return model.ServerStats{
		UptimeSeconds:    int64(time.Since(ss.startedAt).Seconds()),
		RequestsServed:   ss.total,
		RequestsByRoute:  byRoute,
		DownloadsServed:  ss.downloads,
		BytesServed:      ss.bytes,
		DownloadDirBytes: ss.sizer.DownloadDirBytes(),
	}
}
