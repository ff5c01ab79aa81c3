package providers

import (
	"context"
	"errors"
	"strings"

	"github.com/sirupsen/logrus"
	"google.golang.org/genai"

	"github.com/smartnotes/summarizer/sumengine/domain"
)

// DefaultGeminiModel is used when no model is configured.
const DefaultGeminiModel = "gemini-2.5-flash"

// GeminiProvider is the adapter for the Google Gemini API.
type GeminiProvider struct {
	apiKey string
	model  string
}

// NewGeminiProvider creates a new Gemini provider.
func NewGeminiProvider(apiKey, model string) *GeminiProvider {
	if model == "" {
		model = DefaultGeminiModel
	}
	return &GeminiProvider{apiKey: apiKey, model: model}
}

// Complete implements the SummaryGateway interface for Gemini.
func (p *GeminiProvider) Complete(ctx context.Context, content string) (domain.GatewayResult, error) {
	client, err := genai.NewClient(ctx, &genai.ClientConfig{
		APIKey:  p.apiKey,
		Backend: genai.BackendGeminiAPI,
	})
	if err != nil {
		return domain.GatewayResult{}, p.classify(err)
	}

	contents := []*genai.Content{{
		Role:  genai.RoleUser,
		Parts: []*genai.Part{{Text: summaryPrompt + content}},
	}}

	result, err := client.Models.GenerateContent(ctx, p.model, contents, nil)
	if err != nil {
		return domain.GatewayResult{}, p.classify(err)
	}

	if result == nil || len(result.Candidates) == 0 {
		return domain.GatewayResult{}, domain.NewFailure(domain.FailureInvalidResponse, "no candidates in gemini response")
	}

	// Extract text manually from the parts, more robust than result.Text()
	var sb strings.Builder
	for _, part := range result.Candidates[0].Content.Parts {
		if part.Text != "" {
			sb.WriteString(part.Text)
		}
	}
	text := strings.TrimSpace(sb.String())
	if text == "" {
		return domain.GatewayResult{}, domain.NewFailure(domain.FailureInvalidResponse, "empty summary from gemini")
	}

	if result.UsageMetadata != nil {
		logrus.WithFields(logrus.Fields{
			"model":         p.model,
			"input_tokens":  result.UsageMetadata.PromptTokenCount,
			"output_tokens": result.UsageMetadata.CandidatesTokenCount,
		}).Debug("[GEMINI] Summary completed")
	}

	return domain.GatewayResult{Text: text, ModelUsed: p.model}, nil
}

func (p *GeminiProvider) classify(err error) *domain.Failure {
	var apiErr genai.APIError
	if errors.As(err, &apiErr) {
		return classifyStatus(apiErr.Code, apiErr.Message)
	}
	return classifyTransportError(err)
}
