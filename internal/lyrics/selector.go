package lyrics

import "strings"

// Select picks the best candidate out of a search answer:
//  1. first non-instrumental result with any lyric body
//  2. first non-instrumental result with plain lyrics
//  3. first result with synced lyrics
//  4. first result at all
func Select(results []Result) (Result, bool) {
	if len(results) == 0 {
		return Result{}, false
	}

	for _, r := range results {
		if !r.Instrumental && (!isBlank(r.SyncedLyrics) || !isBlank(r.PlainLyrics)) {
			return r, true
		}
	}
	for _, r := range results {
		if !r.Instrumental && !isBlank(r.PlainLyrics) {
			return r, true
		}
	}
	for _, r := range results {
		if !isBlank(r.SyncedLyrics) {
			return r, true
		}
	}

	return results[0], true
}

// Classify turns the chosen candidate into content for the requested song.
func Classify(r Result, title, artist string, durationMs int64) *Content {
	if r.Instrumental {
		return NewInfo(title, artist, InfoInstrumental, durationMs)
	}

	if !isBlank(r.SyncedLyrics) {
		if lines := Parse(r.SyncedLyrics); len(lines) > 0 {
			return NewSynced(title, artist, lines, durationMs)
		}
	}

	if !isBlank(r.PlainLyrics) {
		return NewPlain(title, artist, r.PlainLyrics, durationMs)
	}

	return NewInfo(title, artist, InfoEmpty, durationMs)
}

// ResolveDuration prefers the player-reported length over the lookup's.
func ResolveDuration(hintMs int64, r Result) int64 {
	if hintMs > 0 {
		return hintMs
	}
	if r.Duration <= 0 {
		return 0
	}
	return int64(r.Duration * 1000)
}

// differsFrom reports whether the candidate names a different song than the
// one asked for, ignoring case and surrounding whitespace.
func differsFrom(r Result, title, artist string) bool {
	return !strings.EqualFold(strings.TrimSpace(r.TrackName), strings.TrimSpace(title)) ||
		!strings.EqualFold(strings.TrimSpace(r.ArtistName), strings.TrimSpace(artist))
}

func isBlank(s string) bool {
	return strings.TrimSpace(s) == ""
}
