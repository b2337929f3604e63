// Package media handles voice messages: speech-to-text for incoming
// audio and text-to-speech for voice replies. Failures here map to
// core.ErrMedia and never touch the ledgers.
package media

import (
	"context"
	"fmt"
	"io"
	"unicode"

	"github.com/openai/openai-go"
	"github.com/openai/openai-go/option"

	"shop-agent/internal/core"
)

// SpeechService transcribes and synthesizes audio.
type SpeechService interface {
	// Transcribe converts spoken audio to text. Filename carries the
	// container hint ("voice.ogg"); langHint is an optional BCP-47
	// language code.
	Transcribe(ctx context.Context, audio io.Reader, filename, langHint string) (string, error)
	// Synthesize converts a reply to spoken audio (mp3 bytes).
	Synthesize(ctx context.Context, text, lang string) ([]byte, error)
}

type speechService struct {
	client *openai.Client
}

// NewSpeechService builds a SpeechService against the OpenAI audio
// endpoints.
func NewSpeechService(apiKey string) SpeechService {
	client := openai.NewClient(option.WithAPIKey(apiKey))
	return &speechService{client: &client}
}

func (s *speechService) Transcribe(ctx context.Context, audio io.Reader, filename, langHint string) (string, error) {
	params := openai.AudioTranscriptionNewParams{
		Model: openai.AudioModelWhisper1,
		File:  openai.File(audio, filename, "application/octet-stream"),
	}
	if langHint != "" {
		params.Language = openai.String(langHint)
	}
	resp, err := s.client.Audio.Transcriptions.New(ctx, params)
	if err != nil {
		return "", fmt.Errorf("transcribe audio: %w: %v", core.ErrMedia, err)
	}
	return resp.Text, nil
}

func (s *speechService) Synthesize(ctx context.Context, text, lang string) ([]byte, error) {
	_ = lang // the TTS model detects language from the text itself
	resp, err := s.client.Audio.Speech.New(ctx, openai.AudioSpeechNewParams{
		Model: openai.SpeechModelTTS1,
		Voice: openai.AudioSpeechNewParamsVoiceAlloy,
		Input: text,
	})
	if err != nil {
		return nil, fmt.Errorf("synthesize speech: %w: %v", core.ErrMedia, err)
	}
	defer resp.Body.Close()
	data, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, fmt.Errorf("read synthesized audio: %w: %v", core.ErrMedia, err)
	}
	return data, nil
}

// DetectLanguage guesses "hi" for text containing Devanagari and "en"
// otherwise. Good enough for a voice hint; the transcriber copes with
// a wrong guess.
func DetectLanguage(text string) string {
	for _, r := range text {
		if unicode.Is(unicode.Devanagari, r) {
			return "hi"
		}
	}
	return "en"
}
