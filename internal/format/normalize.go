// Package format turns the extractor's raw format listings into the
// two ranked lists (video, audio) surfaced to the client.
package format

import (
	"sort"
	"strings"

	"ytfetch/internal/model"
)

// Kind labels for NormalizedFormat.Kind.
const (
	KindVideo = "video"
	KindAudio = "audio"
)

// codecNone is the sentinel yt-dlp uses for an absent codec.
const codecNone = "none"

// ClassifyVideoFirst is the classification policy: a format is video
// when its video codec is present, audio when only its audio codec is
// present, and dropped when both are "none". A format carrying both
// codecs counts as video, never both.
func classify(f model.RawFormat) (string, bool) {
	if f.VCodec != codecNone && f.VCodec != "" {
		return KindVideo, true
	}
	if f.ACodec != codecNone && f.ACodec != "" {
		return KindAudio, true
	}
	return "", false
}

// qualityLadder is the fixed video ranking, best first.
var qualityLadder = []string{"4K", "1440p", "1080p", "720p", "480p", "360p", "240p", "144p"}

// qualityRank maps ladder labels to their priority; lower is better.
var qualityRank = func() map[string]int {
	m := make(map[string]int, len(qualityLadder))
	for i, q := range qualityLadder {
		m[q] = i
	}
	return m
}()

// unrankedPriority sorts below every ladder match.
var unrankedPriority = len(qualityLadder)

// displayLimit caps how many entries of each ranked list are surfaced.
const displayLimit = 6

// Defaults applied to missing fields, per kind.
const (
	defaultVideoID      = "best"
	defaultAudioID      = "bestaudio"
	defaultVideoExt     = "mp4"
	defaultAudioExt     = "mp3"
	defaultVideoQuality = "HD"
	defaultAudioQuality = "Audio"
)

// Normalize classifies, ranks and caps the raw format list. An empty
// input yields empty groups; that is a valid result, not an error.
func Normalize(raw []model.RawFormat) model.FormatGroups {
	var video, audio []model.NormalizedFormat

	for _, f := range raw {
		kind, ok := classify(f)
		if !ok {
			continue
		}
		switch kind {
		case KindVideo:
			video = append(video, normalizeVideo(f))
		case KindAudio:
			audio = append(audio, normalizeAudio(f))
		}
	}

	sortVideo(video)
	sortAudio(audio)

	groups := model.FormatGroups{
		Video:      video,
		Audio:      audio,
		VideoTotal: len(video),
		AudioTotal: len(audio),
	}
	if len(groups.Video) > displayLimit {
		groups.Video = groups.Video[:displayLimit]
	}
	if len(groups.Audio) > displayLimit {
		groups.Audio = groups.Audio[:displayLimit]
	}
	return groups
}

func normalizeVideo(f model.RawFormat) model.NormalizedFormat {
	return model.NormalizedFormat{
		ID:        defaultStr(f.FormatID, defaultVideoID),
		Quality:   videoQuality(f),
		SizeBytes: f.Filesize,
		Extension: defaultStr(f.Ext, defaultVideoExt),
		Kind:      KindVideo,
		IsBest:    isBestNote(f.FormatNote),
	}
}

func normalizeAudio(f model.RawFormat) model.NormalizedFormat {
	return model.NormalizedFormat{
		ID:        defaultStr(f.FormatID, defaultAudioID),
		Quality:   defaultStr(f.FormatNote, defaultAudioQuality),
		SizeBytes: f.Filesize,
		Extension: defaultStr(f.Ext, defaultAudioExt),
		Kind:      KindAudio,
		IsBest:    isBestNote(f.FormatNote),
	}
}

// videoQuality derives the display label: a ladder label wins,
// otherwise whichever of resolution or note is present, otherwise the
// default.
func videoQuality(f model.RawFormat) string {
	if _, ok := qualityRank[f.Resolution]; ok {
		return f.Resolution
	}
	if _, ok := qualityRank[f.FormatNote]; ok {
		return f.FormatNote
	}
	if f.Resolution != "" {
		return f.Resolution
	}
	if f.FormatNote != "" {
		return f.FormatNote
	}
	return defaultVideoQuality
}

// isBestNote reports whether the note flags this format as "best",
// case-insensitive.
func isBestNote(note string) bool {
	return strings.Contains(strings.ToLower(note), "best")
}

// videoSortRank flattens the ordering into one integer. Ladder
// entries keep their ladder position and are never reordered by the
// "best" note; the note only promotes entries off the ladder, which
// otherwise sort below every ladder match.
func videoSortRank(f model.NormalizedFormat) int {
	r := ladderRank(f.Quality)
	if r == unrankedPriority && f.IsBest {
		return -1
	}
	return r
}

// sortVideo orders by: promoted off-ladder "best" entries, then the
// quality ladder, then descending file size among unranked entries.
func sortVideo(formats []model.NormalizedFormat) {
	sort.SliceStable(formats, func(i, j int) bool {
		ra, rb := videoSortRank(formats[i]), videoSortRank(formats[j])
		if ra != rb {
			return ra < rb
		}
		return formats[i].SizeBytes > formats[j].SizeBytes
	})
}

// sortAudio orders purely by descending file size; zero/missing size
// sorts last.
func sortAudio(formats []model.NormalizedFormat) {
	sort.SliceStable(formats, func(i, j int) bool {
		return formats[i].SizeBytes > formats[j].SizeBytes
	})
}

func ladderRank(quality string) int {
	if r, ok := qualityRank[quality]; ok {
		return r
	}
	return unrankedPriority
}

func defaultStr(s, fallback string) string {
	if s == "" {
		return fallback
	}
	return s
}
