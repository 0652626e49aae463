package validator

import (
	"regexp"
	"strconv"
	"strings"
)

// youtubePatterns are the accepted YouTube URL shapes: a bare
// youtube.com/youtu.be host with any path, watch URLs with optional
// trailing parameters, short youtu.be links, shorts, and playlists.
// The scheme and www./m. prefixes are optional everywhere.
var youtubePatterns = []*regexp.Regexp{
	regexp.MustCompile(`^(https?://)?(www\.|m\.)?(youtube\.com|youtu\.be)(/.*)?$`),
	regexp.MustCompile(`^(https?://)?(www\.|m\.)?youtube\.com/watch\?v=[\w-]+(&.*)?$`),
	regexp.MustCompile(`^(https?://)?youtu\.be/[\w-]+(\?.*)?$`),
	regexp.MustCompile(`^(https?://)?(www\.|m\.)?youtube\.com/shorts/[\w-]+(\?.*)?$`),
	regexp.MustCompile(`^(https?://)?(www\.|m\.)?youtube\.com/playlist\?list=[\w-]+(&.*)?$`),
}

// videoIDPattern captures the id following any of the common URL
// shapes (youtu.be/, /v/, /u/<user>/, /embed/, watch?v=, &v=, ?v=).
var videoIDPattern = regexp.MustCompile(`(?:youtu\.be/|/v/|/u/\w/|/embed/|watch\?v=|[?&]v=)([^#&?/]*)`)

// videoIDLength is the exact length of a YouTube video id. Captures
// of any other length are rejected.
const videoIDLength = 11

// IsYouTubeURL reports whether the candidate string matches one of
// the accepted YouTube URL shapes.
func IsYouTubeURL(raw string) bool {
	s := strings.TrimSpace(raw)
	if s == "" {
		return false
	}
	for _, p := range youtubePatterns {
		if p.MatchString(s) {
			return true
		}
	}
	return false
}

// ExtractVideoID parses a video id out of a URL. The second return
// value is false unless the captured id is exactly 11 characters.
func ExtractVideoID(raw string) (string, bool) {
	m := videoIDPattern.FindStringSubmatch(raw)
	if len(m) != 2 {
		return "", false
	}
	if len(m[1]) != videoIDLength {
		return "", false
	}
	return m[1], true
}

// formatKeywords are the selector names yt-dlp understands directly.
var formatKeywords = []string{"best", "worst", "bestvideo", "bestaudio", "worstvideo", "worstaudio"}

// ValidateFormatID accepts yt-dlp selector keywords, composite
// selectors ("/" fallbacks, "+" merges) and plain numeric format ids.
func ValidateFormatID(formatID string) bool {
	if len(formatID) == 0 || len(formatID) > 50 {
		return false
	}

	lower := strings.ToLower(formatID)
	if strings.ContainsAny(lower, "/+") {
		return true
	}
	for _, kw := range formatKeywords {
		if strings.Contains(lower, kw) {
			return true
		}
	}

	// Specific format ids are numeric, possibly with a suffix ("22", "137-drc").
	head := strings.SplitN(formatID, "-", 2)[0]
	if _, err := strconv.Atoi(head); err == nil {
		return true
	}
	return false
}

// SanitizeFilename removes dangerous characters from filename
func SanitizeFilename(filename string) string {
	dangerousChars := []string{"<", ">", ":", "\"", "/", "\\", "|", "?", "*", "\x00"}
	result := filename
	for _, char := range dangerousChars {
		result = strings.ReplaceAll(result, char, "_")
	}
	return result
}

// TruncateFilename truncates filename to max length while preserving
// the extension. Truncation happens at rune boundaries so multi-byte
// characters are never split.
func TruncateFilename(filename string, maxLen int) string {
	runes := []rune(filename)
	if len(runes) <= maxLen {
		return filename
	}

	lastDot := strings.LastIndex(filename, ".")
	if lastDot == -1 {
		return string(runes[:maxLen])
	}

	ext := filename[lastDot:]
	extRunes := []rune(ext)

	availableLen := maxLen - len(extRunes)
	if availableLen <= 0 {
		return string(runes[:maxLen])
	}

	return string(runes[:availableLen]) + ext
}
