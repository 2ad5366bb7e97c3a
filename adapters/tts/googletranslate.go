package tts

import (
	"context"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"os"
	"strings"
	"time"
	"unicode/utf8"

	"go.uber.org/zap"

	"github.com/postureperfect/avatar-server/domain/entities"
	"github.com/postureperfect/avatar-server/domain/repositories"
)

const (
	defaultBaseURL  = "https://translate.google.com"
	defaultLanguage = "en"
	defaultTimeout  = 30 * time.Second

	// The unofficial translate_tts endpoint rejects texts longer than this,
	// so reply chunking upstream has to stay at or below it.
	maxTextLength = 200
)

// GoogleTranslateConfig holds configuration for the GoogleTranslateTTS adapter.
// All fields are optional:
// - BaseURL: Host serving the translate_tts endpoint (default: "https://translate.google.com")
// - Language: BCP-47 language tag for synthesis (default: "en")
// - HTTPClient: Client used for fetches (default: 30s-timeout client)
type GoogleTranslateConfig struct {
	BaseURL    string
	Language   string
	HTTPClient *http.Client
}

// NewGoogleTranslateConfigFromEnv creates a GoogleTranslateConfig from environment variables
func NewGoogleTranslateConfigFromEnv() GoogleTranslateConfig {
	return GoogleTranslateConfig{
		BaseURL:  os.Getenv("TTS_BASE_URL"),
		Language: os.Getenv("TTS_LANGUAGE"),
	}
}

// GoogleTranslateTTS implements TextToSpeech against the public Google
// Translate speech endpoint.
type GoogleTranslateTTS struct {
	baseURL    string
	language   string
	httpClient *http.Client
	logger     *zap.Logger
}

// Ensure GoogleTranslateTTS implements the TextToSpeech interface
var _ repositories.TextToSpeech = (*GoogleTranslateTTS)(nil)

// NewGoogleTranslateTTS creates a new Google Translate TTS instance
func NewGoogleTranslateTTS(config GoogleTranslateConfig, logger *zap.Logger) *GoogleTranslateTTS {
	baseURL := config.BaseURL
	if baseURL == "" {
		baseURL = defaultBaseURL
	}

	language := config.Language
	if language == "" {
		language = defaultLanguage
	}

	httpClient := config.HTTPClient
	if httpClient == nil {
		httpClient = &http.Client{Timeout: defaultTimeout}
	}

	return &GoogleTranslateTTS{
		baseURL:    baseURL,
		language:   language,
		httpClient: httpClient,
		logger:     logger,
	}
}

// AudioURL builds the fetchable synthesis URL for the given text.
func (g *GoogleTranslateTTS) AudioURL(text string, config repositories.VoiceConfig) string {
	language := config.Language
	if language == "" {
		language = g.language
	}

	speed := "1"
	if config.Slow {
		speed = "0.24"
	}

	query := url.Values{}
	query.Set("ie", "UTF-8")
	query.Set("q", text)
	query.Set("tl", language)
	query.Set("total", "1")
	query.Set("idx", "0")
	query.Set("textlen", fmt.Sprintf("%d", utf8.RuneCountInString(text)))
	query.Set("client", "tw-ob")
	query.Set("prev", "input")
	query.Set("ttsspeed", speed)

	return g.baseURL + "/translate_tts?" + query.Encode()
}

// Synthesize fetches MP3 audio for the given text.
func (g *GoogleTranslateTTS) Synthesize(ctx context.Context, text string, config repositories.VoiceConfig) ([]byte, error) {
	if strings.TrimSpace(text) == "" {
		return nil, &entities.SynthesisError{Err: fmt.Errorf("text cannot be empty")}
	}

	if utf8.RuneCountInString(text) > maxTextLength {
		return nil, &entities.SynthesisError{Err: fmt.Errorf("text exceeds %d characters", maxTextLength)}
	}

	audioURL := g.AudioURL(text, config)

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, audioURL, nil)
	if err != nil {
		return nil, &entities.SynthesisError{Err: fmt.Errorf("failed to create request: %w", err)}
	}

	resp, err := g.httpClient.Do(req)
	if err != nil {
		g.logger.Error("TTS fetch failed", zap.Error(err))
		return nil, &entities.SynthesisError{Err: err}
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		body, _ := io.ReadAll(io.LimitReader(resp.Body, 512))
		g.logger.Error("TTS provider returned error",
			zap.Int("statusCode", resp.StatusCode),
			zap.String("response", string(body)))
		return nil, &entities.SynthesisError{Err: fmt.Errorf("provider returned status %d", resp.StatusCode)}
	}

	audio, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, &entities.SynthesisError{Err: fmt.Errorf("failed to read audio stream: %w", err)}
	}

	if len(audio) == 0 {
		return nil, &entities.SynthesisError{Err: fmt.Errorf("provider returned empty audio")}
	}

	g.logger.Debug("Fetched synthesized audio",
		zap.Int("bytes", len(audio)),
		zap.Int("text_length", utf8.RuneCountInString(text)))

	return audio, nil
}
