package model

// VideoMetadata contains parsed video metadata from yt-dlp
type VideoMetadata struct {
	ID          string
	Title       string
	Channel     string
	Duration    int // seconds
	ViewCount   int64
	Description string
	Thumbnail   string
	OriginalURL string
	Formats     []RawFormat
}

// RawFormat is one downloadable stream variant as reported by yt-dlp.
// Fields may be absent in the source JSON; absent codec fields are
// defaulted to "none" by the extractor so classification never sees
// an empty codec string.
type RawFormat struct {
	FormatID   string `json:"format_id"`
	Ext        string `json:"ext"`
	VCodec     string `json:"vcodec"`
	ACodec     string `json:"acodec"`
	Resolution string `json:"resolution"`
	FormatNote string `json:"format_note"`
	Filesize   int64  `json:"filesize"`
}

// NormalizedFormat is a display-ready format entry, derived from a
// RawFormat and never mutated after creation.
type NormalizedFormat struct {
	ID        string `json:"id"`
	Quality   string `json:"quality"`
	SizeBytes int64  `json:"size_bytes"`
	Extension string `json:"extension"`
	Kind      string `json:"kind"` // "video" or "audio"
	IsBest    bool   `json:"is_best"`
}

// FormatGroups holds the two ranked format lists surfaced to the
// client, capped for display, with the uncapped totals alongside.
type FormatGroups struct {
	Video      []NormalizedFormat `json:"video"`
	Audio      []NormalizedFormat `json:"audio"`
	VideoTotal int                `json:"video_total"`
	AudioTotal int                `json:"audio_total"`
}

// VideoInfoResponse is the response body for GET /api/video-info
type VideoInfoResponse struct {
	Success     bool         `json:"success"`
	Title       string       `json:"title"`
	Channel     string       `json:"channel"`
	Duration    string       `json:"duration"`
	ViewCount   int64        `json:"view_count"`
	Thumbnail   string       `json:"thumbnail"`
	VideoID     string       `json:"video_id"`
	Description string       `json:"description"`
	Formats     FormatGroups `json:"formats"`
	OriginalURL string       `json:"original_url"`
}

// FormatsResponse is the response body for GET /api/formats: the raw
// format list as reported by yt-dlp, without ranking or capping.
type FormatsResponse struct {
	Success bool        `json:"success"`
	Formats []RawFormat `json:"formats"`
	Total   int         `json:"total"`
	VideoID string      `json:"video_id"`
}

// HealthResponse is the response body for GET /api/health
type HealthResponse struct {
	Status         string `json:"status"`
	Service        string `json:"service"`
	Version        string `json:"version"`
	YtDlpAvailable bool   `json:"yt_dlp_available"`
	DownloadsDir   string `json:"downloads_dir"`
	Timestamp      string `json:"timestamp"`
}

// StatsResponse is the response body for GET /api/stats
type StatsResponse struct {
	Success bool        `json:"success"`
	Stats   ServerStats `json:"stats"`
}

// ServerStats carries request counters and storage usage
type ServerStats struct {
	UptimeSeconds    int64            `json:"uptime_seconds"`
	RequestsServed   int64            `json:"requests_served"`
	RequestsByRoute  map[string]int64 `json:"requests_by_route"`
	DownloadsServed  int64            `json:"downloads_served"`
	BytesServed      int64            `json:"bytes_served"`
	DownloadDirBytes int64            `json:"download_dir_bytes"`
}

// ErrorResponse represents an API error
type ErrorResponse struct {
	Error   string `json:"error"`
	Message string `json:"message"`
	Code    int    `json:"code"`
}
