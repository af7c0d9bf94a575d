// Package llm talks to the chat completion API.
package llm

import (
	"context"

	"github.com/sashabaranov/go-openai"

	"github.com/comigor/becas-go/internal/config"
)

// Client is the part of openai.Client the generator needs; tests mock it.
type Client interface {
	CreateChatCompletion(ctx context.Context, req openai.ChatCompletionRequest) (openai.ChatCompletionResponse, error)
}

var _ Client = (*openai.Client)(nil)

// NewClient builds an OpenAI client from cfg. An empty BaseURL keeps the
// library default.
func NewClient(cfg config.LLMConfig) *openai.Client {
	c := openai.DefaultConfig(cfg.APIKey)
	if cfg.BaseURL != "" {
		c.BaseURL = cfg.BaseURL
	}
	return openai.NewClientWithConfig(c)
}
