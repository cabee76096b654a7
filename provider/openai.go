package provider

import (
	"context"
	"encoding/json"
	"fmt"
	"strings"

	"github.com/sashabaranov/go-openai"

	"github.com/motorplaza/lingocache"
)

// OpenAIProvider implements Provider using OpenAI's chat API. It has
// no server-side glossary support; glossary-aware requests translate
// normally with GlossaryApplied left false.
type OpenAIProvider struct {
	client      *openai.Client
	model       string
	temperature float32
}

// OpenAIConfig holds configuration for the OpenAI provider.
type OpenAIConfig struct {
	APIKey      string  // API key, required
	Model       string  // Model to use (default: "gpt-4o-mini")
	Temperature float32 // Temperature for generation (default: 0.3)
	BaseURL     string  // Custom base URL (optional)
}

// NewOpenAIProvider creates a new OpenAI provider.
func NewOpenAIProvider(cfg OpenAIConfig) (*OpenAIProvider, error) {
	if cfg.APIKey == "" {
		return nil, &lingocache.ConfigError{Field: "openai.api_key", Message: "API key is required"}
	}

	config := openai.DefaultConfig(cfg.APIKey)
	if cfg.BaseURL != "" {
		config.BaseURL = cfg.BaseURL
	}

	model := cfg.Model
	if model == "" {
		model = "gpt-4o-mini"
	}

	temperature := cfg.Temperature
	if temperature == 0 {
		temperature = 0.3
	}

	return &OpenAIProvider{
		client:      openai.NewClientWithConfig(config),
		model:       model,
		temperature: temperature,
	}, nil
}

// Translate translates a batch of texts using OpenAI.
func (p *OpenAIProvider) Translate(ctx context.Context, req Request) (*Result, error) {
	if len(req.Contents) == 0 {
		return &Result{Translations: []string{}}, nil
	}

	resp, err := p.client.CreateChatCompletion(ctx, openai.ChatCompletionRequest{
		Model: p.model,
		Messages: []openai.ChatCompletionMessage{
			{Role: openai.ChatMessageRoleSystem, Content: p.buildSystemPrompt(req)},
			{Role: openai.ChatMessageRoleUser, Content: p.buildUserMessage(req)},
		},
		Temperature: p.temperature,
		ResponseFormat: &openai.ChatCompletionResponseFormat{
			Type: openai.ChatCompletionResponseFormatTypeJSONObject,
		},
	})
	if err != nil {
		return nil, &lingocache.ProviderError{
			Message:     "OpenAI API call failed",
			Cause:       err,
			Retryable:   isRetryableError(err),
			RateLimited: isRateLimitError(err),
		}
	}

	if len(resp.Choices) == 0 {
		return nil, &lingocache.ProviderError{
			Message:   "no response from OpenAI",
			Retryable: true,
		}
	}

	translations, err := p.parseResponse(resp.Choices[0].Message.Content, len(req.Contents))
	if err != nil {
		return nil, err
	}

	return &Result{Translations: translations}, nil
}

func (p *OpenAIProvider) buildSystemPrompt(req Request) string {
	targetName := lingocache.LanguageName(req.TargetLanguageCode)
	sourceName := lingocache.LanguageName(req.SourceLanguageCode)

	return fmt.Sprintf(`# Role
You are an expert native translator. You translate %s content to %s with the fluency of a highly educated native speaker.

# Task
Translate the provided texts into idiomatic %s.

# Style Guide
- **Natural Flow**: Avoid literal translations. Rephrase sentences to sound completely natural to a native speaker.
- **Plain Output**: Return only the translation. Never prepend language labels such as "%s:".
- **Interpolation**: Do NOT translate variables or placeholders (e.g., {{name}}, {count}, %%s, $1).
- **Formatting**: Preserve meaningful whitespace (leading/trailing spaces, multiple spaces, newlines).

# Format
Return a valid JSON object with a single key "translations" containing an array of strings in the exact same order as the input.
Example: { "translations": ["translated string 1", "translated string 2"] }
Do NOT wrap in Markdown code blocks.`, sourceName, targetName, targetName, targetName)
}

func (p *OpenAIProvider) buildUserMessage(req Request) string {
	data, _ := json.Marshal(req.Contents)
	return string(data)
}

func (p *OpenAIProvider) parseResponse(content string, expectedCount int) ([]string, error) {
	// Try parsing as object first
	var objResult map[string]interface{}
	if err := json.Unmarshal([]byte(content), &objResult); err == nil {
		if translations, ok := objResult["translations"]; ok {
			if arr, ok := translations.([]interface{}); ok {
				return toStringSlice(arr, expectedCount)
			}
		}

		// Fallback: find first array value
		for _, v := range objResult {
			if arr, ok := v.([]interface{}); ok {
				return toStringSlice(arr, expectedCount)
			}
		}
	}

	// Try parsing as direct array
	var arrResult []interface{}
	if err := json.Unmarshal([]byte(content), &arrResult); err == nil {
		return toStringSlice(arrResult, expectedCount)
	}

	return nil, &lingocache.ProviderError{
		Message: "invalid response format from OpenAI",
	}
}

func toStringSlice(arr []interface{}, expectedCount int) ([]string, error) {
	result := make([]string, len(arr))
	for i, v := range arr {
		if s, ok := v.(string); ok {
			result[i] = s
		} else {
			result[i] = fmt.Sprintf("%v", v)
		}
	}

	if len(result) != expectedCount {
		return nil, &lingocache.CountMismatchError{
			Expected: expectedCount,
			Got:      len(result),
		}
	}

	return result, nil
}

func isRetryableError(err error) bool {
	errStr := strings.ToLower(err.Error())
	retryablePatterns := []string{
		"rate limit",
		"timeout",
		"connection refused",
		"temporary",
		"503",
		"502",
		"429",
	}

	for _, pattern := range retryablePatterns {
		if strings.Contains(errStr, pattern) {
			return true
		}
	}
	return false
}

func isRateLimitError(err error) bool {
	errStr := strings.ToLower(err.Error())
	return strings.Contains(errStr, "rate limit") || strings.Contains(errStr, "429")
}

// Verify OpenAIProvider implements Provider.
var _ Provider = (*OpenAIProvider)(nil)
