package usecase

import "strings"

// StripEmoji removes emoticon code points from a model reply. The TTS
// provider reads them out loud otherwise.
func StripEmoji(text string) string {
	return strings.Map(func(r rune) rune {
		if r >= 0x1F600 && r <= 0x1F64F {
			return -1
		}
		return r
	}, text)
}

// SplitText splits text into consecutive rune slices of at most maxLength.
// The chunks partition the input exactly: concatenating them reconstructs it
// with no loss, duplication, or overlap. Empty input yields no chunks.
func SplitText(text string, maxLength int) []string {
	if maxLength <= 0 {
		maxLength = defaultMaxChunkLength
	}

	runes := []rune(text)
	var chunks []string
	for i := 0; i < len(runes); i += maxLength {
		end := i + maxLength
		if end > len(runes) {
			end = len(runes)
		}
		chunks = append(chunks, string(runes[i:end]))
	}
	return chunks
}
