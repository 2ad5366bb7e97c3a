package repositories

import "context"

// TextToSpeech abstracts text-to-speech services
type TextToSpeech interface {
	// Synthesize converts text to compressed audio bytes (MP3).
	Synthesize(ctx context.Context, text string, config VoiceConfig) ([]byte, error)
}

// VoiceConfig represents voice configuration for TTS
type VoiceConfig struct {
	Language string `json:"language"`
	Slow     bool   `json:"slow"`
}
