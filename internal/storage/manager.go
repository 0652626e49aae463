package storage

import (
	"os"
	"path/filepath"
	"strings"
	"time"

	"ytfetch/internal/model"
	"ytfetch/pkg/logger"

	"github.com/google/uuid"
	"go.uber.org/zap"
)

// tempDirPrefix marks per-request download directories so the sweep
// never touches anything else under the downloads root.
const tempDirPrefix = "dl-"

// Manager owns the downloads root. Each download gets a fresh temp
// dir that the request removes when done; the background sweep picks
// up dirs orphaned by crashed or interrupted requests.
type Manager struct {
	cfg      *model.StorageConfig
	quitChan chan bool
}

// NewManager creates a new storage manager
func NewManager(cfg *model.StorageConfig) *Manager {
	return &Manager{
		cfg:      cfg,
		quitChan: make(chan bool),
	}
}

// EnsureDirs creates the downloads and logs directories
func (m *Manager) EnsureDirs() error {
	if err := os.MkdirAll(m.cfg.DownloadDir, 0755); err != nil {
		return err
	}
	return os.MkdirAll(m.cfg.LogDir, 0755)
}

// NewTempDir creates a per-request directory under the downloads root.
func (m *Manager) NewTempDir() (string, error) {
	dir := filepath.Join(m.cfg.DownloadDir, tempDirPrefix+uuid.NewString())
	if err := os.Mkdir(dir, 0755); err != nil {
		return "", err
	}
	return dir, nil
}

// Remove deletes a temp dir and everything in it.
func (m *Manager) Remove(dir string) {
	if err := os.RemoveAll(dir); err != nil && logger.Logger != nil {
		logger.Logger.Warn("Failed to remove temp dir", zap.String("dir", dir), zap.Error(err))
	}
}

// DownloadDir returns the downloads root path.
func (m *Manager) DownloadDir() string {
	return m.cfg.DownloadDir
}

// MaxFileSizeBytes returns the configured streaming size cap.
func (m *Manager) MaxFileSizeBytes() int64 {
	return int64(m.cfg.MaxVideoSizeMB) * 1024 * 1024
}

// DownloadDirBytes reports the total size of the downloads root.
func (m *Manager) DownloadDirBytes() int64 {
	var total int64
	filepath.Walk(m.cfg.DownloadDir, func(path string, info os.FileInfo, err error) error {
		if err != nil {
			return nil
		}
		if !info.IsDir() {
			total += info.Size()
		}
		return nil
	})
	return total
}

// Start starts the orphan sweep routine
func (m *Manager) Start() {
	go m.sweepRoutine()
}

// Stop stops the sweep routine
func (m *Manager) Stop() {
	select {
	case m.quitChan <- true:
	default:
		if logger.Logger != nil {
			logger.Logger.Warn("Could not send stop signal to storage sweep")
		}
	}
}

func (m *Manager) sweepRoutine() {
	ticker := time.NewTicker(time.Duration(m.cfg.CleanupInterval) * time.Second)
	defer ticker.Stop()

	if logger.Logger != nil {
		logger.Logger.Info("Storage sweep routine started",
			zap.Int("cleanup_interval_seconds", m.cfg.CleanupInterval),
			zap.Int("temp_ttl_seconds", m.cfg.TempTTLSeconds))
	}

	for {
		select {
		case <-m.quitChan:
			if logger.Logger != nil {
				logger.Logger.Info("Storage sweep routine stopped")
			}
			return
		case <-ticker.C:
			m.SweepNow()
		}
	}
}

// SweepNow removes temp dirs older than the TTL. Exported so tests
// and shutdown paths can trigger a pass directly.
func (m *Manager) SweepNow() {
	entries, err := os.ReadDir(m.cfg.DownloadDir)
	if err != nil {
		return
	}

	cutoff := time.Now().Add(-time.Duration(m.cfg.TempTTLSeconds) * time.Second)
	removed := 0

	for _, e := range entries {
		if !e.IsDir() || !strings.HasPrefix(e.Name(), tempDirPrefix) {
			continue
		}
		info, err := e.Info()
		if err != nil {
			continue
		}
		if info.ModTime().After(cutoff) {
			continue
		}
		dir := filepath.Join(m.cfg.DownloadDir, e.Name())
		if err := os.RemoveAll(dir); err != nil {
			if logger.Logger != nil {
				logger.Logger.Error("Failed to remove orphaned temp dir", zap.String("dir", dir), zap.Error(err))
			}
			continue
		}
		removed++
	}

	if removed > 0 && logger.Logger != nil {
		logger.Logger.Info("Storage sweep completed", zap.Int("removed", removed))
	}
}
