package usecase

import (
	"context"
	"encoding/base64"
	"errors"
	"fmt"
	"strings"
	"testing"

	"github.com/stretchr/testify/require"
	"go.uber.org/zap/zaptest"

	"github.com/postureperfect/avatar-server/domain/entities"
	"github.com/postureperfect/avatar-server/domain/repositories"
	"github.com/postureperfect/avatar-server/internal/assets"
)

type fakeGenerator struct {
	reply entities.GeneratedReply
	err   error
	calls int
}

func (f *fakeGenerator) GenerateReply(ctx context.Context, userMessage string, animations []string) (entities.GeneratedReply, error) {
	f.calls++
	if f.err != nil {
		return entities.GeneratedReply{}, f.err
	}
	return f.reply, nil
}

type fakeTTS struct {
	audio []byte
	err   error
	calls int
}

func (f *fakeTTS) Synthesize(ctx context.Context, text string, config repositories.VoiceConfig) ([]byte, error) {
	f.calls++
	if f.err != nil {
		return nil, f.err
	}
	// Embed the text so segment audio is distinguishable per chunk.
	return append(append([]byte{}, f.audio...), []byte(text[:1])...), nil
}

type fakeTranscoder struct {
	failAt int // 1-based call number to fail on, 0 = never
	calls  int
}

func (f *fakeTranscoder) Transcode(ctx context.Context, inputPath string) (string, error) {
	f.calls++
	if f.failAt != 0 && f.calls == f.failAt {
		return "", &entities.TranscodeError{Err: errors.New("boom")}
	}
	return strings.TrimSuffix(inputPath, ".mp3") + ".wav", nil
}

type fakeExtractor struct {
	timeline entities.VisemeTimeline
	err      error
	calls    int
}

func (f *fakeExtractor) Extract(ctx context.Context, wavPath string) (entities.VisemeTimeline, error) {
	f.calls++
	if f.err != nil {
		return entities.VisemeTimeline{}, f.err
	}
	return f.timeline, nil
}

func newTestService(t *testing.T, generator *fakeGenerator, tts *fakeTTS, transcoder *fakeTranscoder, extractor *fakeExtractor) *ChatService {
	t.Helper()

	store, err := assets.NewStore(assets.StoreConfig{BaseDir: t.TempDir()}, zaptest.NewLogger(t))
	require.NoError(t, err)

	return NewChatService(ChatConfig{}, generator, tts, transcoder, extractor, store, zaptest.NewLogger(t))
}

func TestChatEmptyMessageShortCircuits(t *testing.T) {
	generator := &fakeGenerator{}
	tts := &fakeTTS{}
	transcoder := &fakeTranscoder{}
	extractor := &fakeExtractor{}
	service := newTestService(t, generator, tts, transcoder, extractor)

	response, err := service.Chat(context.Background(), "")
	require.NoError(t, err)
	require.NotNil(t, response.Messages)
	require.Empty(t, response.Messages)

	require.Zero(t, generator.calls, "generator must not be called")
	require.Zero(t, tts.calls, "tts must not be called")
	require.Zero(t, transcoder.calls, "transcoder must not be called")
	require.Zero(t, extractor.calls, "extractor must not be called")
}

func TestChatSplitsLongReplyIntoOrderedSegments(t *testing.T) {
	replyText := ""
	for i := 0; i < 450; i++ {
		replyText += fmt.Sprintf("%d", i%10)
	}

	generator := &fakeGenerator{reply: entities.GeneratedReply{Text: replyText, Animation: "Laughing"}}
	tts := &fakeTTS{audio: []byte("mp3")}
	transcoder := &fakeTranscoder{}
	extractor := &fakeExtractor{timeline: entities.VisemeTimeline{
		MouthCues: []entities.MouthCue{{Start: 0, End: 0.5, Value: "A"}},
	}}
	service := newTestService(t, generator, tts, transcoder, extractor)

	response, err := service.Chat(context.Background(), "tell me everything")
	require.NoError(t, err)
	require.Len(t, response.Messages, 3)

	var rebuilt strings.Builder
	for _, segment := range response.Messages {
		rebuilt.WriteString(segment.Text)
		require.Equal(t, "Laughing", segment.Animation)
		require.Equal(t, entities.DefaultFacialExpression, segment.FacialExpression)
		require.Len(t, segment.Lipsync.MouthCues, 1)
	}
	require.Equal(t, replyText, rebuilt.String())

	require.Equal(t, 3, tts.calls)
	require.Equal(t, 3, transcoder.calls)
	require.Equal(t, 3, extractor.calls)
}

func TestChatAudioIsBase64OfSynthesizedBytes(t *testing.T) {
	generator := &fakeGenerator{reply: entities.GeneratedReply{Text: "short reply", Animation: "Idle"}}
	tts := &fakeTTS{audio: []byte{0x00, 0xFF, 0x10, 0x42}}
	service := newTestService(t, generator, tts, &fakeTranscoder{}, &fakeExtractor{})

	response, err := service.Chat(context.Background(), "hi")
	require.NoError(t, err)
	require.Len(t, response.Messages, 1)

	decoded, err := base64.StdEncoding.DecodeString(response.Messages[0].Audio)
	require.NoError(t, err)
	require.Equal(t, append([]byte{0x00, 0xFF, 0x10, 0x42}, 's'), decoded)
}

func TestChatAbortsAtomicallyOnTranscodeFailure(t *testing.T) {
	generator := &fakeGenerator{reply: entities.GeneratedReply{Text: strings.Repeat("a", 450), Animation: "Idle"}}
	tts := &fakeTTS{audio: []byte("mp3")}
	transcoder := &fakeTranscoder{failAt: 2}
	service := newTestService(t, generator, tts, transcoder, &fakeExtractor{})

	response, err := service.Chat(context.Background(), "hi")
	require.Error(t, err)
	require.Nil(t, response, "no partial response on failure")

	var transcodeErr *entities.TranscodeError
	require.ErrorAs(t, err, &transcodeErr)

	// Chunk 3 never starts once chunk 2 fails.
	require.Equal(t, 2, tts.calls)
	require.Equal(t, 2, transcoder.calls)
}

func TestChatPropagatesGenerationError(t *testing.T) {
	generator := &fakeGenerator{err: &entities.GenerationError{Err: errors.New("not json")}}
	tts := &fakeTTS{}
	service := newTestService(t, generator, tts, &fakeTranscoder{}, &fakeExtractor{})

	response, err := service.Chat(context.Background(), "hi")
	require.Error(t, err)
	require.Nil(t, response)

	var generationErr *entities.GenerationError
	require.ErrorAs(t, err, &generationErr)
	require.Zero(t, tts.calls, "pipeline must stop before synthesis")
}

func TestChatEmojiOnlyReplyYieldsNoSegments(t *testing.T) {
	generator := &fakeGenerator{reply: entities.GeneratedReply{Text: "\U0001F600\U0001F601", Animation: "Idle"}}
	tts := &fakeTTS{}
	service := newTestService(t, generator, tts, &fakeTranscoder{}, &fakeExtractor{})

	response, err := service.Chat(context.Background(), "hi")
	require.NoError(t, err)
	require.Empty(t, response.Messages)
	require.Zero(t, tts.calls)
}

func TestChatStreamEmitsInChunkOrder(t *testing.T) {
	generator := &fakeGenerator{reply: entities.GeneratedReply{Text: strings.Repeat("ab", 250), Animation: "Talking_0"}}
	tts := &fakeTTS{audio: []byte("mp3")}
	service := newTestService(t, generator, tts, &fakeTranscoder{}, &fakeExtractor{})

	var texts []string
	err := service.ChatStream(context.Background(), "hi", func(segment entities.MessageSegment) error {
		texts = append(texts, segment.Text)
		return nil
	})
	require.NoError(t, err)
	require.Len(t, texts, 3)
	require.Equal(t, strings.Repeat("ab", 250), strings.Join(texts, ""))
}
