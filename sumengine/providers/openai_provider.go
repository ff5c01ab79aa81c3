package providers

import (
	"context"
	"errors"
	"strings"

	"github.com/openai/openai-go/v3"
	"github.com/openai/openai-go/v3/option"
	"github.com/sirupsen/logrus"

	"github.com/smartnotes/summarizer/sumengine/domain"
)

// DefaultOpenAIModel is used when no model is configured.
const DefaultOpenAIModel = "gpt-4o-mini"

// OpenAIProvider is the adapter for the OpenAI API.
type OpenAIProvider struct {
	client openai.Client
	model  string
}

// NewOpenAIProvider creates a new OpenAI provider.
func NewOpenAIProvider(apiKey, model string) *OpenAIProvider {
	if model == "" {
		model = DefaultOpenAIModel
	}
	return &OpenAIProvider{
		client: openai.NewClient(option.WithAPIKey(apiKey)),
		model:  model,
	}
}

// Complete implements the SummaryGateway interface for OpenAI.
func (p *OpenAIProvider) Complete(ctx context.Context, content string) (domain.GatewayResult, error) {
	completion, err := p.client.Chat.Completions.New(ctx, openai.ChatCompletionNewParams{
		Model: openai.ChatModel(p.model),
		Messages: []openai.ChatCompletionMessageParamUnion{
			openai.UserMessage(summaryPrompt + content),
		},
	})
	if err != nil {
		return domain.GatewayResult{}, p.classify(err)
	}

	if len(completion.Choices) == 0 {
		return domain.GatewayResult{}, domain.NewFailure(domain.FailureInvalidResponse, "no choices in openai response")
	}

	text := strings.TrimSpace(completion.Choices[0].Message.Content)
	if text == "" {
		return domain.GatewayResult{}, domain.NewFailure(domain.FailureInvalidResponse, "empty summary from openai")
	}

	logrus.WithFields(logrus.Fields{
		"model":         p.model,
		"input_tokens":  completion.Usage.PromptTokens,
		"output_tokens": completion.Usage.CompletionTokens,
	}).Debug("[OPENAI] Summary completed")

	return domain.GatewayResult{Text: text, ModelUsed: p.model}, nil
}

func (p *OpenAIProvider) classify(err error) *domain.Failure {
	var apiErr *openai.Error
	if errors.As(err, &apiErr) {
		return classifyStatus(apiErr.StatusCode, apiErr.Message)
	}
	return classifyTransportError(err)
}
