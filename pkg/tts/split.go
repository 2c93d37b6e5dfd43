package tts

import (
	"strings"
	"unicode"
)

// SplitText breaks text into provider-sized chunks. Splits happen at the
// sentence boundary nearest maxChars, falling back to whitespace, never
// mid-word (a single word longer than maxChars is the one unavoidable
// exception). At most maxChunks chunks are produced; any trailing text
// beyond that budget is dropped and truncated=true is returned, since
// partial speech beats no speech for a live interview prompt.
//
// The split is deterministic: identical input always yields identical
// chunks and the same truncation point.
func SplitText(text string, maxChars, maxChunks int) (chunks []string, truncated bool) {
	rest := strings.TrimSpace(text)
	if rest == "" || maxChars <= 0 || maxChunks <= 0 {
		return nil, rest != ""
	}

	for rest != "" {
		if len(chunks) == maxChunks {
			return chunks, true
		}
		runes := []rune(rest)
		if len(runes) <= maxChars {
			chunks = append(chunks, rest)
			return chunks, false
		}
		cut := splitPoint(runes, maxChars)
		chunks = append(chunks, strings.TrimSpace(string(runes[:cut])))
		rest = strings.TrimSpace(string(runes[cut:]))
	}
	return chunks, false
}

// splitPoint returns the index (in runes, 0 < idx <= maxChars) to cut at.
// Preference order: end of the last full sentence within the limit, last
// whitespace within the limit, hard cut at the limit.
func splitPoint(runes []rune, maxChars int) int {
	// Sentence boundary: terminator followed by whitespace (or the limit
	// itself), scanning backwards from the limit.
	for i := maxChars; i > 0; i-- {
		if !isSentenceEnd(runes[i-1]) {
			continue
		}
		if i == len(runes) || unicode.IsSpace(runes[i]) {
			return i
		}
	}
	// Whitespace boundary: cut before the word that would straddle the
	// limit.
	for i := maxChars; i > 0; i-- {
		if unicode.IsSpace(runes[i-1]) {
			return i
		}
	}
	// One unbroken word longer than the limit.
	return maxChars
}

func isSentenceEnd(r rune) bool {
	switch r {
	case '.', '!', '?', '。', '！', '？':
		return true
	}
	return false
}
