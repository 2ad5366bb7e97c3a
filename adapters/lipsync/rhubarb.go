package lipsync

import (
	"context"
	"encoding/json"
	"fmt"
	"os"
	"os/exec"

	"go.uber.org/zap"

	"github.com/postureperfect/avatar-server/domain/entities"
	"github.com/postureperfect/avatar-server/domain/repositories"
)

const defaultRhubarbPath = "rhubarb"

// RhubarbExtractor derives viseme timelines from WAV files using the Rhubarb
// Lip Sync command-line tool in phonetic recognition mode.
type RhubarbExtractor struct {
	binaryPath string
	logger     *zap.Logger
}

// Ensure RhubarbExtractor implements the VisemeExtractor interface
var _ repositories.VisemeExtractor = (*RhubarbExtractor)(nil)

// NewRhubarbExtractor creates a new Rhubarb-backed extractor. An empty
// binaryPath falls back to RHUBARB_PATH and then to "rhubarb" on PATH.
func NewRhubarbExtractor(binaryPath string, logger *zap.Logger) *RhubarbExtractor {
	if binaryPath == "" {
		binaryPath = os.Getenv("RHUBARB_PATH")
	}
	if binaryPath == "" {
		binaryPath = defaultRhubarbPath
	}

	return &RhubarbExtractor{
		binaryPath: binaryPath,
		logger:     logger,
	}
}

// Extract runs Rhubarb on wavPath, writing its JSON timeline to a sibling
// file, then parses that file.
func (r *RhubarbExtractor) Extract(ctx context.Context, wavPath string) (entities.VisemeTimeline, error) {
	jsonPath := replaceExt(wavPath, ".json")

	cmd := exec.CommandContext(ctx, r.binaryPath, "-f", "json", "-o", jsonPath, wavPath, "-r", "phonetic")
	output, err := cmd.CombinedOutput()
	if err != nil {
		r.logger.Error("rhubarb failed",
			zap.String("wav", wavPath),
			zap.String("output", string(output)),
			zap.Error(err))
		return entities.VisemeTimeline{}, &entities.LipSyncError{Err: fmt.Errorf("rhubarb: %w", err)}
	}

	data, err := os.ReadFile(jsonPath)
	if err != nil {
		return entities.VisemeTimeline{}, &entities.LipSyncError{Err: fmt.Errorf("rhubarb produced no output file: %w", err)}
	}

	timeline, err := ParseTimeline(data)
	if err != nil {
		return entities.VisemeTimeline{}, err
	}

	r.logger.Debug("Extracted viseme timeline",
		zap.String("wav", wavPath),
		zap.Int("cues", len(timeline.MouthCues)),
		zap.Float64("duration", timeline.Metadata.Duration))

	return timeline, nil
}

// ParseTimeline parses Rhubarb's JSON output and checks that the cue start
// offsets are non-decreasing.
func ParseTimeline(data []byte) (entities.VisemeTimeline, error) {
	var timeline entities.VisemeTimeline
	if err := json.Unmarshal(data, &timeline); err != nil {
		return entities.VisemeTimeline{}, &entities.LipSyncError{Err: fmt.Errorf("unparseable timeline: %w", err)}
	}

	for i := 1; i < len(timeline.MouthCues); i++ {
		if timeline.MouthCues[i].Start < timeline.MouthCues[i-1].Start {
			return entities.VisemeTimeline{}, &entities.LipSyncError{
				Err: fmt.Errorf("cue %d starts at %f, before previous cue at %f",
					i, timeline.MouthCues[i].Start, timeline.MouthCues[i-1].Start),
			}
		}
	}

	return timeline, nil
}
