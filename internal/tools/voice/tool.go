// Package voice implements the voice tool kind of the Tool Broker:
// speech-to-text and text-to-speech capability interfaces that let
// process_voice complete a transcribe -> route_ai -> synthesize
// composition without depending on a vendor ASR/TTS engine, adapted
// from internal/tools/ai.Tool's Handler shape for the ai tool kind.
package voice

import (
	"context"
	"strings"

	"github.com/haasonsaas/jarvisgate/internal/model"
)

// SpeechToText transcribes raw audio bytes into text. A production
// implementation wraps a vendor ASR engine; StubTranscriber below
// stands in for one until a real engine is wired up.
type SpeechToText interface {
	Transcribe(ctx context.Context, audio []byte) (string, error)
}

// TextToSpeech synthesizes audio from text. A production
// implementation wraps a vendor TTS engine; StubSynthesizer below
// stands in for one until a real engine is wired up.
type TextToSpeech interface {
	Synthesize(ctx context.Context, text string) (audio []byte, err error)
}

// StubTranscriber treats the incoming bytes as already-decoded UTF-8
// text, exercising the speech_to_text wire contract without a vendor
// ASR engine.
type StubTranscriber struct{}

// Transcribe implements SpeechToText.
func (StubTranscriber) Transcribe(ctx context.Context, audio []byte) (string, error) {
	text := strings.TrimSpace(string(audio))
	if text == "" {
		return "", model.NewError(model.KindInvalidInput, "voice", "audio decoded to an empty transcript", nil)
	}
	return text, nil
}

// StubSynthesizer returns text's UTF-8 bytes as the "audio" payload,
// exercising the text_to_speech wire contract without a vendor TTS
// engine.
type StubSynthesizer struct{}

// Synthesize implements TextToSpeech.
func (StubSynthesizer) Synthesize(ctx context.Context, text string) ([]byte, error) {
	if strings.TrimSpace(text) == "" {
		return nil, model.NewError(model.KindInvalidInput, "voice", "cannot synthesize empty text", nil)
	}
	return []byte(text), nil
}

// Tool is the voice broker.Handler: it exposes the speech_to_text and
// text_to_speech commands the broker's process_voice composition
// dispatches through.
type Tool struct {
	stt SpeechToText
	tts TextToSpeech
}

// New builds a voice tool. A nil stt or tts defaults to the in-process
// stub implementation.
func New(stt SpeechToText, tts TextToSpeech) *Tool {
	if stt == nil {
		stt = StubTranscriber{}
	}
	if tts == nil {
		tts = StubSynthesizer{}
	}
	return &Tool{stt: stt, tts: tts}
}

func (t *Tool) Start(ctx context.Context) error { return nil }

func (t *Tool) Stop(ctx context.Context) error { return nil }

func (t *Tool) Capabilities() []string {
	return []string{"speech_to_text", "text_to_speech"}
}

func (t *Tool) Dispatch(ctx context.Context, command string, params map[string]any) (any, error) {
	switch command {
	case "speech_to_text":
		audio, _ := params["audio"].(string)
		return t.stt.Transcribe(ctx, []byte(audio))
	case "text_to_speech":
		text, _ := params["text"].(string)
		return t.tts.Synthesize(ctx, text)
	default:
		return nil, model.NewError(model.KindUnsupportedCommand, "voice", "unsupported command: "+command, nil)
	}
}
