package service

import (
	"sync"
	"time"

	"ytfetch/internal/model"
	"ytfetch/pkg/logger"

	"go.uber.org/zap"
	"golang.org/x/time/rate"
)

// ipLimiter pairs a token bucket with its last activity time so idle
// entries can be swept.
type ipLimiter struct {
	limiter  *rate.Limiter
	lastSeen time.Time
}

// RateLimitService enforces a per-IP request rate on the API.
type RateLimitService struct {
	cfg       *model.RateLimitConfig
	perMinute int
	burst     int
	mu        sync.Mutex
	limiters  map[string]*ipLimiter
	quitChan  chan bool
}

// NewRateLimitService creates a new rate limit service
func NewRateLimitService(cfg *model.RateLimitConfig) *RateLimitService {
	// A zero or negative configured rate would be a zero bucket
	// interval and a zero burst would deny every request; clamp both
	// to one.
	perMinute := cfg.RequestsPerMinute
	if perMinute < 1 {
		perMinute = 1
	}
	burst := cfg.BurstSize
	if burst < 1 {
		burst = 1
	}

	service := &RateLimitService{
		cfg:       cfg,
		perMinute: perMinute,
		burst:     burst,
		limiters:  make(map[string]*ipLimiter),
		quitChan:  make(chan bool),
	}

	if cfg.Enabled {
		go service.cleanupRoutine()
	}

	return service
}

// Allow reports whether a request from ip may proceed.
func (rls *RateLimitService) Allow(ip string) bool {
	if !rls.cfg.Enabled {
		return true
	}

	rls.mu.Lock()
	entry, exists := rls.limiters[ip]
	if !exists {
		entry = &ipLimiter{
			limiter: rate.NewLimiter(
				rate.Every(time.Minute/time.Duration(rls.perMinute)),
				rls.burst,
			),
		}
		rls.limiters[ip] = entry
	}
	entry.lastSeen = time.Now()
	rls.mu.Unlock()

	allowed := entry.limiter.Allow()
	if !allowed && logger.Logger != nil {
		logger.Logger.Warn("Rate limit exceeded", zap.String("ip", ip),
			zap.Int("requests_per_minute", rls.perMinute))
	}
	return allowed
}

// cleanupRoutine periodically drops limiters for idle IPs.
func (rls *RateLimitService) cleanupRoutine() {
	ticker := time.NewTicker(time.Duration(rls.cfg.CleanupInterval) * time.Second)
	defer ticker.Stop()

	for {
		select {
		case <-rls.quitChan:
			if logger.Logger != nil {
				logger.Logger.Info("Rate limit service stopped")
			}
			return
		case <-ticker.C:
			rls.cleanup()
		}
	}
}

func (rls *RateLimitService) cleanup() {
	rls.mu.Lock()
	defer rls.mu.Unlock()

	now := time.Now()
	removed := 0

	for ip, entry := range rls.limiters {
		if now.Sub(entry.lastSeen) > 2*time.Hour {
			delete(rls.limiters, ip)
			removed++
		}
	}

	if removed > 0 && logger.Logger != nil {
		logger.Logger.Debug("Rate limit entries cleaned up",
			zap.Int("removed", removed), zap.Int("remaining", len(rls.limiters)))
	}
}

// Stop stops the rate limit service
func (rls *RateLimitService) Stop() {
	if rls.cfg.Enabled {
		rls.quitChan <- true
	}
}
