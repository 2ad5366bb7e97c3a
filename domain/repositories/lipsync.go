package repositories

import (
	"context"

	"github.com/postureperfect/avatar-server/domain/entities"
)

// AudioTranscoder converts a compressed audio file into a waveform sibling
// the viseme analyzer can consume.
type AudioTranscoder interface {
	// Transcode converts the file at inputPath and returns the path of the
	// waveform output.
	Transcode(ctx context.Context, inputPath string) (string, error)
}

// VisemeExtractor derives a mouth-shape timeline from a waveform file.
type VisemeExtractor interface {
	Extract(ctx context.Context, wavPath string) (entities.VisemeTimeline, error)
}
