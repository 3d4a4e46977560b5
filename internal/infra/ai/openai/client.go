package openai

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"strings"

	"github.com/sashabaranov/go-openai"

	domai "github.com/admitlens/admitlens/internal/domain/ai"
	"github.com/admitlens/admitlens/internal/infra/ai/prompt"
)

const maxTokens = 2048

type Client struct {
	*openai.Client
	Model string
}

func NewClient(apiKey, model string) *Client {
	return &Client{Client: openai.NewClient(apiKey), Model: model}
}

// AnalyzeProfile implements the domain ai.Client port for profile analysis.
func (c *Client) AnalyzeProfile(ctx context.Context, req domai.ProfileRequest) (*domai.ProfileResponse, error) {
	raw, err := c.complete(ctx, prompt.ProfileSystem(), prompt.ProfileUser(req))
	if err != nil {
		return nil, err
	}
	resp, err := parseProfileResponse(raw)
	if err != nil {
		return nil, err
	}
	return resp, nil
}

// AnalyzeFit implements the domain ai.Client port for institution fit.
func (c *Client) AnalyzeFit(ctx context.Context, req domai.FitRequest) (*domai.FitResponse, error) {
	raw, err := c.complete(ctx, prompt.FitSystem(), prompt.FitUser(req))
	if err != nil {
		return nil, err
	}
	resp, err := parseFitResponse(raw)
	if err != nil {
		return nil, err
	}
	return resp, nil
}

func (c *Client) complete(ctx context.Context, system, user string) (string, error) {
	model := c.Model
	if model == "" {
		model = "o3-2025-04-16"
	}
	req := openai.ChatCompletionRequest{
		Model: model,
		ResponseFormat: &openai.ChatCompletionResponseFormat{
			Type: openai.ChatCompletionResponseFormatTypeJSONObject,
		},
		Messages: []openai.ChatCompletionMessage{
			{Role: openai.ChatMessageRoleSystem, Content: system},
			{Role: openai.ChatMessageRoleUser, Content: user},
		},
	}
	// For reasoning models (o1/o3/o4/gpt-5*) use MaxCompletionTokens instead of MaxTokens
	if strings.HasPrefix(model, "o1") || strings.HasPrefix(model, "o3") || strings.HasPrefix(model, "o4") || strings.HasPrefix(model, "gpt-5") {
		req.MaxCompletionTokens = maxTokens
	} else {
		req.MaxTokens = maxTokens
	}

	resp, err := c.CreateChatCompletion(ctx, req)
	if err != nil {
		var apiErr *openai.APIError
		if errors.As(err, &apiErr) && apiErr.HTTPStatusCode == http.StatusTooManyRequests {
			return "", domai.ErrQuotaExceeded
		}
		return "", fmt.Errorf("failed to create chat completion: %w", err)
	}
	if len(resp.Choices) == 0 {
		return "", fmt.Errorf("empty completion: %w", domai.ErrMalformedOutput)
	}
	return resp.Choices[0].Message.Content, nil
}
