package broker

import (
	"context"
	"testing"

	"github.com/haasonsaas/jarvisgate/internal/model"
)

func newVoiceFakeHandler() *fakeHandler {
	return &fakeHandler{
		caps: []string{"speech_to_text", "text_to_speech"},
		dispatch: func(ctx context.Context, command string, params map[string]any) (any, error) {
			switch command {
			case "speech_to_text":
				return params["audio"].(string), nil
			case "text_to_speech":
				return []byte(params["text"].(string)), nil
			default:
				return nil, model.NewError(model.KindUnsupportedCommand, "voice", "unsupported command: "+command, nil)
			}
		},
	}
}

func newAIFakeHandler(reply string) *fakeHandler {
	return &fakeHandler{
		caps: []string{"route_ai"},
		dispatch: func(ctx context.Context, command string, params map[string]any) (any, error) {
			return reply, nil
		},
	}
}

func TestProcessVoiceComposesSTTThenAIThenTTS(t *testing.T) {
	b := New(nil)
	b.Register("voice", newVoiceFakeHandler())
	b.Register("ai", newAIFakeHandler("hello back"))
	b.StartAll(context.Background())

	result, err := b.ProcessVoice(context.Background(), []byte("hello"))
	if err != nil {
		t.Fatalf("ProcessVoice: %v", err)
	}
	if result.Transcript != "hello" {
		t.Fatalf("transcript = %q, want %q", result.Transcript, "hello")
	}
	if result.Reply != "hello back" {
		t.Fatalf("reply = %q, want %q", result.Reply, "hello back")
	}
	if string(result.Audio) != "hello back" {
		t.Fatalf("audio = %q, want %q", result.Audio, "hello back")
	}
}

func TestProcessVoiceFailsWhenVoiceToolUnregistered(t *testing.T) {
	b := New(nil)
	b.Register("ai", newAIFakeHandler("hello back"))
	b.StartAll(context.Background())

	if _, err := b.ProcessVoice(context.Background(), []byte("hello")); err == nil {
		t.Fatal("expected error when voice tool is unregistered")
	}
}

func TestProcessVoicePropagatesAIFailure(t *testing.T) {
	b := New(nil)
	b.Register("voice", newVoiceFakeHandler())
	b.StartAll(context.Background())

	if _, err := b.ProcessVoice(context.Background(), []byte("hello")); err == nil {
		t.Fatal("expected error when ai tool is unregistered")
	}
}
