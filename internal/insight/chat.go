// Package insight provides the AI collaborators for the service-center
// demo: sign interpretation, visit-intent prediction, officer case briefs,
// and personalized greetings. Every collaborator works without a language
// model via deterministic rule-based fallbacks.
package insight

import (
	"context"
	"fmt"

	openai "github.com/sashabaranov/go-openai"
)

// ChatClient is the minimal language-model surface the insight
// collaborators need. A nil ChatClient selects the rule-based fallbacks.
type ChatClient interface {
	// Complete sends a single-turn prompt and returns the raw reply text.
	// When jsonMode is set the model is constrained to emit a JSON object.
	Complete(ctx context.Context, prompt string, maxTokens int, jsonMode bool) (string, error)
}

const chatModel = openai.GPT4oMini

type openAIChat struct {
	client *openai.Client
}

// NewOpenAIChat creates a ChatClient backed by the OpenAI chat API.
func NewOpenAIChat(apiKey string) ChatClient {
	return &openAIChat{client: openai.NewClient(apiKey)}
}

func (c *openAIChat) Complete(ctx context.Context, prompt string, maxTokens int, jsonMode bool) (string, error) {
	req := openai.ChatCompletionRequest{
		Model:     chatModel,
		MaxTokens: maxTokens,
		Messages: []openai.ChatCompletionMessage{
			{Role: openai.ChatMessageRoleUser, Content: prompt},
		},
	}
	if jsonMode {
		req.ResponseFormat = &openai.ChatCompletionResponseFormat{
			Type: openai.ChatCompletionResponseFormatTypeJSONObject,
		}
	}

	resp, err := c.client.CreateChatCompletion(ctx, req)
	if err != nil {
		return "", fmt.Errorf("chat completion failed: %w", err)
	}
	if len(resp.Choices) == 0 {
		return "", fmt.Errorf("no response from model")
	}

	return resp.Choices[0].Message.Content, nil
}
