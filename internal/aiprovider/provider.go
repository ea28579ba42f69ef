package aiprovider

import (
	"context"
	"encoding/json"
	"fmt"

	"github.com/anthropics/anthropic-sdk-go"
	"github.com/anthropics/anthropic-sdk-go/option"
	"github.com/aws/aws-sdk-go-v2/aws"
	"github.com/aws/aws-sdk-go-v2/service/bedrockruntime"
	"github.com/sashabaranov/go-openai"
)

// CompletionRequest is the non-streaming request shape the Tool Broker's
// AI sub-module issues. Unlike the teacher's streaming,
// tool-calling-loop-coupled LLMProvider, a workflow step needs a single
// complete response, not a token stream.
type CompletionRequest struct {
	Model     string
	System    string
	Prompt    string
	MaxTokens int
}

// CompletionResponse carries the generated text plus token usage for
// accounting.
type CompletionResponse struct {
	Text         string
	InputTokens  int
	OutputTokens int
}

// Provider is the minimal interface each vendor client satisfies.
type Provider interface {
	Vendor() Vendor
	Complete(ctx context.Context, req CompletionRequest) (CompletionResponse, error)
}

// AnthropicProvider wraps anthropic-sdk-go's Messages API, adapted from
// the teacher's internal/agent/providers/anthropic.go (streaming removed:
// the broker needs one complete response per dispatch, not incremental
// chunks).
type AnthropicProvider struct {
	client anthropic.Client
}

// NewAnthropicProvider builds a client authenticated with apiKey.
func NewAnthropicProvider(apiKey string) *AnthropicProvider {
	return &AnthropicProvider{client: anthropic.NewClient(option.WithAPIKey(apiKey))}
}

func (p *AnthropicProvider) Vendor() Vendor { return VendorAnthropic }

func (p *AnthropicProvider) Complete(ctx context.Context, req CompletionRequest) (CompletionResponse, error) {
	params := anthropic.MessageNewParams{
		Model:     anthropic.Model(req.Model),
		MaxTokens: int64(maxTokensOrDefault(req.MaxTokens)),
		Messages: []anthropic.MessageParam{
			anthropic.NewUserMessage(anthropic.NewTextBlock(req.Prompt)),
		},
	}
	if req.System != "" {
		params.System = []anthropic.TextBlockParam{{Text: req.System}}
	}
	msg, err := p.client.Messages.New(ctx, params)
	if err != nil {
		return CompletionResponse{}, NewProviderError(VendorAnthropic, req.Model, err)
	}
	var text string
	for _, block := range msg.Content {
		if block.Type == "text" {
			text += block.Text
		}
	}
	return CompletionResponse{
		Text:         text,
		InputTokens:  int(msg.Usage.InputTokens),
		OutputTokens: int(msg.Usage.OutputTokens),
	}, nil
}

// OpenAIProvider wraps sashabaranov/go-openai's chat completion API,
// adapted from the teacher's internal/agent/providers/openai.go.
type OpenAIProvider struct {
	client *openai.Client
}

// NewOpenAIProvider builds a client authenticated with apiKey.
func NewOpenAIProvider(apiKey string) *OpenAIProvider {
	return &OpenAIProvider{client: openai.NewClient(apiKey)}
}

func (p *OpenAIProvider) Vendor() Vendor { return VendorOpenAI }

func (p *OpenAIProvider) Complete(ctx context.Context, req CompletionRequest) (CompletionResponse, error) {
	messages := []openai.ChatCompletionMessage{}
	if req.System != "" {
		messages = append(messages, openai.ChatCompletionMessage{Role: openai.ChatMessageRoleSystem, Content: req.System})
	}
	messages = append(messages, openai.ChatCompletionMessage{Role: openai.ChatMessageRoleUser, Content: req.Prompt})

	resp, err := p.client.CreateChatCompletion(ctx, openai.ChatCompletionRequest{
		Model:     req.Model,
		Messages:  messages,
		MaxTokens: maxTokensOrDefault(req.MaxTokens),
	})
	if err != nil {
		return CompletionResponse{}, NewProviderError(VendorOpenAI, req.Model, err)
	}
	if len(resp.Choices) == 0 {
		return CompletionResponse{}, NewProviderError(VendorOpenAI, req.Model, fmt.Errorf("empty choices"))
	}
	return CompletionResponse{
		Text:         resp.Choices[0].Message.Content,
		InputTokens:  resp.Usage.PromptTokens,
		OutputTokens: resp.Usage.CompletionTokens,
	}, nil
}

// BedrockProvider wraps aws-sdk-go-v2's bedrockruntime InvokeModel call,
// adapted from the teacher's internal/agent/providers/bedrock.go. It
// targets Titan-family text models with a minimal request/response
// envelope rather than the full Converse API.
type BedrockProvider struct {
	client *bedrockruntime.Client
}

// NewBedrockProvider builds a client from an already-resolved aws.Config.
func NewBedrockProvider(cfg aws.Config) *BedrockProvider {
	return &BedrockProvider{client: bedrockruntime.NewFromConfig(cfg)}
}

func (p *BedrockProvider) Vendor() Vendor { return VendorBedrock }

type titanRequest struct {
	InputText            string              `json:"inputText"`
	TextGenerationConfig titanGenerationSpec `json:"textGenerationConfig"`
}

type titanGenerationSpec struct {
	MaxTokenCount int `json:"maxTokenCount"`
}

type titanResponse struct {
	Results []struct {
		OutputText       string `json:"outputText"`
		TokenCount       int    `json:"tokenCount"`
	} `json:"results"`
	InputTextTokenCount int `json:"inputTextTokenCount"`
}

func (p *BedrockProvider) Complete(ctx context.Context, req CompletionRequest) (CompletionResponse, error) {
	prompt := req.Prompt
	if req.System != "" {
		prompt = req.System + "\n\n" + req.Prompt
	}
	body, err := json.Marshal(titanRequest{
		InputText:            prompt,
		TextGenerationConfig: titanGenerationSpec{MaxTokenCount: maxTokensOrDefault(req.MaxTokens)},
	})
	if err != nil {
		return CompletionResponse{}, NewProviderError(VendorBedrock, req.Model, err)
	}
	out, err := p.client.InvokeModel(ctx, &bedrockruntime.InvokeModelInput{
		ModelId:     aws.String(req.Model),
		ContentType: aws.String("application/json"),
		Body:        body,
	})
	if err != nil {
		return CompletionResponse{}, NewProviderError(VendorBedrock, req.Model, err)
	}
	var parsed titanResponse
	if err := json.Unmarshal(out.Body, &parsed); err != nil {
		return CompletionResponse{}, NewProviderError(VendorBedrock, req.Model, err)
	}
	var text string
	var outputTokens int
	if len(parsed.Results) > 0 {
		text = parsed.Results[0].OutputText
		outputTokens = parsed.Results[0].TokenCount
	}
	return CompletionResponse{
		Text:         text,
		InputTokens:  parsed.InputTextTokenCount,
		OutputTokens: outputTokens,
	}, nil
}

func maxTokensOrDefault(n int) int {
	if n <= 0 {
		return 1024
	}
	return n
}
