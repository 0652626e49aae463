package model

// Config holds application configuration
type Config struct {
	Server    ServerConfig
	Storage   StorageConfig
	Extractor ExtractorConfig
	Logging   LoggingConfig
	RateLimit RateLimitConfig
}

// ServerConfig holds server configuration
type ServerConfig struct {
	Port    int
	Host    string
	Timeout int // seconds
}

// StorageConfig holds storage configuration
type StorageConfig struct {
	DownloadDir     string
	LogDir          string
	MaxVideoSizeMB  int
	CleanupInterval int // seconds
	TempTTLSeconds  int // time to live for per-request temp dirs
}

// ExtractorConfig holds yt-dlp invocation configuration
type ExtractorConfig struct {
	BinPath          string
	ProbeTimeout     int // seconds
	DownloadTimeout  int // seconds
	GeoBypassCountry string
}

// LoggingConfig holds logging configuration
type LoggingConfig struct {
	Level    string
	FilePath string
}

// RateLimitConfig holds rate limiting configuration
type RateLimitConfig struct {
	Enabled           bool
	RequestsPerMinute int
	BurstSize         int
	CleanupInterval   int // seconds between sweeps of idle per-IP entries
}
