package llm

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"strings"

	"ordermind/ordermind/services/streaming"
	"ordermind/ordermind/utils/logging"

	"github.com/openai/openai-go"
	"github.com/openai/openai-go/option"
	"go.uber.org/zap"
)

const (
	DefaultModel          = "gpt-4o-mini"
	DefaultEmbeddingModel = "text-embedding-3-large"
)

var ErrNoChoices = errors.New("no choices in completion")

type Options struct {
	APIKey         string
	BaseURL        string
	Model          string
	EmbeddingModel string
	HTTPClient     *http.Client
	// MaxRetries < 0 keeps the SDK default.
	MaxRetries int
}

// Client talks to an OpenAI-compatible chat completions API.
type Client struct {
	api            openai.Client
	model          string
	embeddingModel string
}

func NewClient(opts Options) *Client {
	reqOpts := []option.RequestOption{}
	if opts.APIKey != "" {
		reqOpts = append(reqOpts, option.WithAPIKey(opts.APIKey))
	}
	if opts.BaseURL != "" {
		reqOpts = append(reqOpts, option.WithBaseURL(opts.BaseURL))
	}
	if opts.HTTPClient != nil {
		reqOpts = append(reqOpts, option.WithHTTPClient(opts.HTTPClient))
	}
	if opts.MaxRetries >= 0 {
		reqOpts = append(reqOpts, option.WithMaxRetries(opts.MaxRetries))
	}
	model := opts.Model
	if model == "" {
		model = DefaultModel
	}
	embeddingModel := opts.EmbeddingModel
	if embeddingModel == "" {
		embeddingModel = DefaultEmbeddingModel
	}
	return &Client{
		api:            openai.NewClient(reqOpts...),
		model:          model,
		embeddingModel: embeddingModel,
	}
}

func messages(prompt, system string) []openai.ChatCompletionMessageParamUnion {
	msgs := make([]openai.ChatCompletionMessageParamUnion, 0, 2)
	if system != "" {
		msgs = append(msgs, openai.SystemMessage(system))
	}
	return append(msgs, openai.UserMessage(prompt))
}

// Stream implements streaming.TokenSource over a streamed chat completion.
func (c *Client) Stream(ctx context.Context, prompt, format string, deliver func(streaming.Fragment)) string {
	defer logging.LogDuration(ctx, "llm_stream")()

	stream := c.api.Chat.Completions.NewStreaming(ctx, openai.ChatCompletionNewParams{
		Model:    openai.ChatModel(c.model),
		Messages: messages(prompt, format),
	})
	defer stream.Close()

	var full strings.Builder
	for stream.Next() {
		chunk := stream.Current()
		for _, choice := range chunk.Choices {
			if choice.Delta.Content == "" {
				continue
			}
			full.WriteString(choice.Delta.Content)
			deliver(streaming.Fragment{Content: choice.Delta.Content})
		}
	}
	if err := stream.Err(); err != nil {
		logging.ErrorLogger.Error("llm stream error", zap.Error(err), zap.Int("partial_bytes", full.Len()))
		deliver(streaming.Fragment{Err: err})
		return full.String()
	}
	deliver(streaming.Fragment{Content: streaming.Sentinel, Done: true})
	return full.String()
}

// Complete runs a single non-streaming completion.
func (c *Client) Complete(ctx context.Context, prompt, system string) (string, error) {
	defer logging.LogDuration(ctx, "llm_complete")()

	resp, err := c.api.Chat.Completions.New(ctx, openai.ChatCompletionNewParams{
		Model:    openai.ChatModel(c.model),
		Messages: messages(prompt, system),
	})
	if err != nil {
		return "", fmt.Errorf("chat completion: %w", err)
	}
	if len(resp.Choices) == 0 {
		return "", ErrNoChoices
	}
	return resp.Choices[0].Message.Content, nil
}

// Embed returns one vector per input text, in input order.
func (c *Client) Embed(ctx context.Context, texts []string) ([][]float64, error) {
	defer logging.LogDuration(ctx, "llm_embed")()
	if len(texts) == 0 {
		return nil, nil
	}

	resp, err := c.api.Embeddings.New(ctx, openai.EmbeddingNewParams{
		Model: openai.EmbeddingModel(c.embeddingModel),
		Input: openai.EmbeddingNewParamsInputUnion{OfArrayOfStrings: texts},
	})
	if err != nil {
		return nil, fmt.Errorf("embeddings: %w", err)
	}
	if len(resp.Data) != len(texts) {
		return nil, fmt.Errorf("embeddings: got %d vectors for %d inputs", len(resp.Data), len(texts))
	}
	out := make([][]float64, len(texts))
	for _, d := range resp.Data {
		if d.Index < 0 || int(d.Index) >= len(out) {
			return nil, fmt.Errorf("embeddings: index %d out of range", d.Index)
		}
		out[d.Index] = d.Embedding
	}
	return out, nil
}
