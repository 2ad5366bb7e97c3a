package usecase

import (
	"context"
	"encoding/base64"
	"fmt"

	"go.uber.org/zap"

	"github.com/postureperfect/avatar-server/domain/entities"
	"github.com/postureperfect/avatar-server/domain/repositories"
	"github.com/postureperfect/avatar-server/internal/assets"
)

const defaultMaxChunkLength = 200

// ChatConfig holds pipeline tuning knobs.
type ChatConfig struct {
	// MaxChunkLength caps the length of a reply chunk in runes. The TTS
	// provider rejects longer texts (default: 200).
	MaxChunkLength int
	// Voice is passed through to the speech synthesizer.
	Voice repositories.VoiceConfig
}

// ChatService drives one user message through the full avatar pipeline:
// reply generation, chunking, then per chunk speech synthesis, waveform
// transcoding, viseme extraction and base64 encoding. Chunks are processed
// strictly in order and the first failing stage aborts the whole request;
// callers never see a partial response.
type ChatService struct {
	generator  repositories.ReplyGenerator
	tts        repositories.TextToSpeech
	transcoder repositories.AudioTranscoder
	extractor  repositories.VisemeExtractor
	store      *assets.Store
	logger     *zap.Logger

	maxChunkLength int
	voice          repositories.VoiceConfig
}

// NewChatService creates a new chat pipeline service
func NewChatService(
	config ChatConfig,
	generator repositories.ReplyGenerator,
	tts repositories.TextToSpeech,
	transcoder repositories.AudioTranscoder,
	extractor repositories.VisemeExtractor,
	store *assets.Store,
	logger *zap.Logger,
) *ChatService {
	maxChunkLength := config.MaxChunkLength
	if maxChunkLength <= 0 {
		maxChunkLength = defaultMaxChunkLength
	}

	return &ChatService{
		generator:      generator,
		tts:            tts,
		transcoder:     transcoder,
		extractor:      extractor,
		store:          store,
		logger:         logger,
		maxChunkLength: maxChunkLength,
		voice:          config.Voice,
	}
}

// Chat resolves a user message into an ordered segment list. An empty
// message short-circuits to an empty response without touching any
// collaborator.
func (s *ChatService) Chat(ctx context.Context, userMessage string) (*entities.ChatResponse, error) {
	response := &entities.ChatResponse{Messages: []entities.MessageSegment{}}

	err := s.ChatStream(ctx, userMessage, func(segment entities.MessageSegment) error {
		response.Messages = append(response.Messages, segment)
		return nil
	})
	if err != nil {
		return nil, err
	}

	return response, nil
}

// ChatStream runs the same pipeline but hands each segment to emit as soon
// as it is resolved, in chunk order. Any stage failure stops the stream; the
// caller decides what already-emitted segments mean (the HTTP handler
// collects them all before answering, the websocket handler forwards them
// progressively).
func (s *ChatService) ChatStream(ctx context.Context, userMessage string, emit func(entities.MessageSegment) error) error {
	if userMessage == "" {
		return nil
	}

	reply, err := s.generator.GenerateReply(ctx, userMessage, entities.KnownAnimations)
	if err != nil {
		return err
	}

	cleaned := StripEmoji(reply.Text)
	chunks := SplitText(cleaned, s.maxChunkLength)
	if len(chunks) == 0 {
		return nil
	}

	s.logger.Info("Reply chunked",
		zap.Int("chunks", len(chunks)),
		zap.String("animation", reply.Animation))

	workspace, err := s.store.NewWorkspace()
	if err != nil {
		return &entities.SynthesisError{Err: err}
	}
	defer workspace.Cleanup()

	for i, chunk := range chunks {
		segment, err := s.resolveSegment(ctx, workspace, i, chunk, reply.Animation)
		if err != nil {
			s.logger.Error("Pipeline aborted",
				zap.Int("chunk", i),
				zap.Error(err))
			return err
		}

		if err := emit(segment); err != nil {
			return err
		}
	}

	return nil
}

// resolveSegment pushes one chunk through synthesis, transcoding and viseme
// extraction.
func (s *ChatService) resolveSegment(ctx context.Context, workspace *assets.Workspace, index int, chunk, animation string) (entities.MessageSegment, error) {
	audio, err := s.tts.Synthesize(ctx, chunk, s.voice)
	if err != nil {
		return entities.MessageSegment{}, err
	}

	mp3Path, err := workspace.WriteAsset(fmt.Sprintf("message_%d", index), ".mp3", audio)
	if err != nil {
		return entities.MessageSegment{}, &entities.SynthesisError{Err: err}
	}

	wavPath, err := s.transcoder.Transcode(ctx, mp3Path)
	if err != nil {
		return entities.MessageSegment{}, err
	}

	timeline, err := s.extractor.Extract(ctx, wavPath)
	if err != nil {
		return entities.MessageSegment{}, err
	}

	return entities.MessageSegment{
		Text:             chunk,
		Audio:            base64.StdEncoding.EncodeToString(audio),
		Lipsync:          timeline,
		FacialExpression: entities.DefaultFacialExpression,
		Animation:        animation,
	}, nil
}
