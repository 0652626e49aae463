package config

import (
	"os"
	"strconv"
	"strings"

	"ytfetch/internal/model"

	"github.com/joho/godotenv"
)

// Load loads configuration from environment variables
func Load() *model.Config {
	godotenv.Load()

	return &model.Config{
		Server: model.ServerConfig{
			Port:    getEnvInt("SERVER_PORT", 5000),
			Host:    getEnvStr("SERVER_HOST", "0.0.0.0"),
			Timeout: getEnvInt("SERVER_TIMEOUT", 300),
		},
		Storage: model.StorageConfig{
			DownloadDir:     getEnvStr("DOWNLOAD_DIR", "./downloads"),
			LogDir:          getEnvStr("LOG_DIR", "./logs"),
			MaxVideoSizeMB:  getEnvInt("MAX_VIDEO_SIZE_MB", 500),
			CleanupInterval: getEnvInt("STORAGE_CLEANUP_INTERVAL", 600),
			TempTTLSeconds:  getEnvInt("TEMP_TTL_SECONDS", 3600),
		},
		Extractor: model.ExtractorConfig{
			BinPath:          getEnvStr("YTDLP_PATH", "yt-dlp"),
			ProbeTimeout:     getEnvInt("YTDLP_PROBE_TIMEOUT", 30),
			DownloadTimeout:  getEnvInt("YTDLP_DOWNLOAD_TIMEOUT", 600),
			GeoBypassCountry: getEnvStr("YTDLP_GEO_BYPASS_COUNTRY", "US"),
		},
		Logging: model.LoggingConfig{
			Level:    getEnvStr("LOG_LEVEL", "info"),
			FilePath: getEnvStr("LOG_FILE", "./logs/app.log"),
		},
		RateLimit: model.RateLimitConfig{
			Enabled:           getEnvBool("RATELIMIT_ENABLED", true),
			RequestsPerMinute: getEnvInt("RATELIMIT_REQUESTS_PER_MINUTE", 10),
			BurstSize:         getEnvInt("RATELIMIT_BURST_SIZE", 5),
			CleanupInterval:   getEnvInt("RATELIMIT_CLEANUP_INTERVAL", 1800),
		},
	}
}

func getEnvStr(key, defaultVal string) string {
	if value, exists := os.LookupEnv(key); exists {
		return value
	}
	return defaultVal
}

func getEnvInt(key string, defaultVal int) int {
	valStr := getEnvStr(key, "")
	if val, err := strconv.Atoi(valStr); err == nil {
		return val
	}
	return defaultVal
}

func getEnvBool(key string, defaultVal bool) bool {
	valStr := strings.ToLower(getEnvStr(key, ""))
	if valStr == "true" || valStr == "1" || valStr == "yes" {
		return true
	}
	if valStr == "false" || valStr == "0" || valStr == "no" {
		return false
	}
	return defaultVal
}
