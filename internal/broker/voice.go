package broker

import "context"

// AIRouter routes a free text prompt to the ai tool kind for a
// conversational fallback response (general-conversation, reminders,
// system-control, and unknown categories all land here).
type AIRouter interface {
	RouteAI(ctx context.Context, prompt string) (string, error)
}

// VoiceResult is the outcome of a process_voice composition: the
// speech-to-text transcript, the ai reply routed from it, and the
// text-to-speech audio synthesized from that reply.
type VoiceResult struct {
	Transcript string
	Reply      string
	Audio      []byte
}

// RouteAI sends prompt to the "ai" tool's route_ai command.
func (b *Broker) RouteAI(ctx context.Context, prompt string) (string, error) {
	result, err := b.Dispatch(ctx, "ai", "route_ai", map[string]any{"prompt": prompt})
	if err != nil {
		return "", err
	}
	text, _ := result.Output.(string)
	return text, nil
}

// ProcessVoice runs the process_voice composition: speech-to-text ->
// ai -> text-to-speech. It dispatches through the registered "voice"
// tool's speech_to_text/text_to_speech commands and the "ai" tool's
// route_ai command, the same way RouteAI composes over the ai tool.
// If no voice tool is registered, Dispatch itself reports
// KindToolUnknown.
func (b *Broker) ProcessVoice(ctx context.Context, audio []byte) (VoiceResult, error) {
	sttResult, err := b.Dispatch(ctx, "voice", "speech_to_text", map[string]any{"audio": string(audio)})
	if err != nil {
		return VoiceResult{}, err
	}
	transcript, _ := sttResult.Output.(string)

	reply, err := b.RouteAI(ctx, transcript)
	if err != nil {
		return VoiceResult{}, err
	}

	ttsResult, err := b.Dispatch(ctx, "voice", "text_to_speech", map[string]any{"text": reply})
	if err != nil {
		return VoiceResult{}, err
	}
	speech, _ := ttsResult.Output.([]byte)

	return VoiceResult{Transcript: transcript, Reply: reply, Audio: speech}, nil
}
