package translation

import (
	"context"
	"errors"
	"fmt"
	"net/http"

	"github.com/sashabaranov/go-openai"
)

// openAICompleter talks to the OpenAI chat completion API or any
// OpenAI-compatible endpoint set through baseURL
type openAICompleter struct {
	client *openai.Client
	model  string
}

func newOpenAICompleter(apiKey, baseURL, model string) *openAICompleter {
	clientConfig := openai.DefaultConfig(apiKey)
	if baseURL != "" {
		clientConfig.BaseURL = baseURL
	}

	return &openAICompleter{
		client: openai.NewClientWithConfig(clientConfig),
		model:  model,
	}
}

func (c *openAICompleter) complete(ctx context.Context, system, user string) (string, error) {
	req := openai.ChatCompletionRequest{
		Model: c.model,
		Messages: []openai.ChatCompletionMessage{
			{
				Role:    openai.ChatMessageRoleSystem,
				Content: system,
			},
			{
				Role:    openai.ChatMessageRoleUser,
				Content: user,
			},
		},
		Temperature: 0.3,
	}

	resp, err := c.client.CreateChatCompletion(ctx, req)
	if err != nil {
		if isBadRequest(err) {
			return "", fmt.Errorf("%w: %v", ErrRejected, err)
		}
		return "", fmt.Errorf("OpenAI API error: %w", err)
	}

	if len(resp.Choices) == 0 {
		return "", ErrEmptyTranslation
	}

	return resp.Choices[0].Message.Content, nil
}

// isBadRequest reports whether the API refused the request itself
func isBadRequest(err error) bool {
	var apiErr *openai.APIError
	if errors.As(err, &apiErr) {
		return apiErr.HTTPStatusCode == http.StatusBadRequest
	}

	var reqErr *openai.RequestError
	if errors.As(err, &reqErr) {
		return reqErr.HTTPStatusCode == http.StatusBadRequest
	}

	return false
}
