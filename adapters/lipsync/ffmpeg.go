package lipsync

import (
	"context"
	"fmt"
	"os"
	"os/exec"
	"strings"

	"go.uber.org/zap"

	"github.com/postureperfect/avatar-server/domain/entities"
	"github.com/postureperfect/avatar-server/domain/repositories"
)

const defaultFFmpegPath = "ffmpeg"

// FFmpegTranscoder converts compressed audio files to WAV by shelling out to
// ffmpeg. The viseme analyzer only accepts waveform input.
type FFmpegTranscoder struct {
	binaryPath string
	logger     *zap.Logger
}

// Ensure FFmpegTranscoder implements the AudioTranscoder interface
var _ repositories.AudioTranscoder = (*FFmpegTranscoder)(nil)

// NewFFmpegTranscoder creates a new ffmpeg-backed transcoder. An empty
// binaryPath falls back to FFMPEG_PATH and then to "ffmpeg" on PATH.
func NewFFmpegTranscoder(binaryPath string, logger *zap.Logger) *FFmpegTranscoder {
	if binaryPath == "" {
		binaryPath = os.Getenv("FFMPEG_PATH")
	}
	if binaryPath == "" {
		binaryPath = defaultFFmpegPath
	}

	return &FFmpegTranscoder{
		binaryPath: binaryPath,
		logger:     logger,
	}
}

// Transcode converts the file at inputPath to a WAV sibling (same stem,
// ".wav" extension) and returns the output path.
func (f *FFmpegTranscoder) Transcode(ctx context.Context, inputPath string) (string, error) {
	outputPath := replaceExt(inputPath, ".wav")

	cmd := exec.CommandContext(ctx, f.binaryPath, "-y", "-i", inputPath, outputPath)
	output, err := cmd.CombinedOutput()
	if err != nil {
		f.logger.Error("ffmpeg failed",
			zap.String("input", inputPath),
			zap.String("output", string(output)),
			zap.Error(err))
		return "", &entities.TranscodeError{Err: fmt.Errorf("ffmpeg: %w", err)}
	}

	info, err := os.Stat(outputPath)
	if err != nil {
		return "", &entities.TranscodeError{Err: fmt.Errorf("ffmpeg produced no output file: %w", err)}
	}
	if info.Size() == 0 {
		return "", &entities.TranscodeError{Err: fmt.Errorf("ffmpeg produced an empty output file")}
	}

	f.logger.Debug("Transcoded audio",
		zap.String("input", inputPath),
		zap.String("wav", outputPath),
		zap.Int64("bytes", info.Size()))

	return outputPath, nil
}

// replaceExt swaps the file extension of path, keeping the stem.
func replaceExt(path, ext string) string {
	if idx := strings.LastIndex(path, "."); idx > strings.LastIndex(path, "/") {
		return path[:idx] + ext
	}
	return path + ext
}
