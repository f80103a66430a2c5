package adapter

import (
	"context"
	"strings"
	"sync"

	"brainstormer/backend/pkg/errors"
	"brainstormer/backend/pkg/logger"
	"github.com/sashabaranov/go-openai"
	"go.uber.org/zap"
)

// LLMAdapter handles communication with the generation service. It is
// the only place that knows the wire protocol; callers validate the
// content themselves because the service gives no guarantee of valid
// JSON even when JSON is requested.
type LLMAdapter struct {
	client    *openai.Client
	model     string
	fastModel string
	mu        sync.RWMutex // Protects model fields for concurrent access
	logger    *zap.Logger
}

// NewLLMAdapter creates a new LLM adapter. baseURL is optional; when set
// it points the client at an OpenAI-compatible gateway.
func NewLLMAdapter(baseURL, apiKey, model, fastModel string) *LLMAdapter {
	if apiKey == "" {
		apiKey = "dummy-key"
	}

	config := openai.DefaultConfig(apiKey)
	if baseURL != "" {
		config.BaseURL = strings.TrimRight(baseURL, "/") + "/v1"
	}

	return &LLMAdapter{
		client:    openai.NewClientWithConfig(config),
		model:     model,
		fastModel: fastModel,
		logger:    logger.Get(),
	}
}

// SetModel updates the primary model used by this adapter
func (a *LLMAdapter) SetModel(model string) {
	if model != "" {
		a.mu.Lock()
		a.model = model
		a.mu.Unlock()
		a.logger.Debug("LLM adapter model updated", zap.String("model", model))
	}
}

// Message is one role-tagged entry in the conversation sent to the
// generation service
type Message struct {
	Role    string
	Content string
}

// Roles accepted in Message.Role. An empty role defaults to user.
const (
	RoleUser      = openai.ChatMessageRoleUser
	RoleAssistant = openai.ChatMessageRoleAssistant
)

// Request describes one generation call
type Request struct {
	System      string
	Messages    []Message
	Fast        bool // use the cheaper model
	MaxTokens   int
	Temperature float32
}

// Complete sends a request and returns the full completion text.
// Failures are surfaced once, without retry: the expansion flow must see
// the first error and leave the graph untouched.
func (a *LLMAdapter) Complete(ctx context.Context, req Request) (string, error) {
	model := a.pick(req.Fast)

	resp, err := a.client.CreateChatCompletion(ctx, a.build(model, req, false))
	if err != nil {
		a.logger.Error("LLM request failed",
			zap.Error(err),
			zap.String("model", model),
		)
		return "", errors.NewGenerationFailed(model, err)
	}

	if len(resp.Choices) == 0 {
		return "", errors.NewGenerationFailed(model, nil)
	}

	content := resp.Choices[0].Message.Content
	a.logger.Debug("LLM response generated",
		zap.String("model", model),
		zap.Int("length", len(content)),
	)
	return content, nil
}

// Stream opens a token stream for the request. The returned source
// yields one content delta per Recv and io.EOF when the service is done.
func (a *LLMAdapter) Stream(ctx context.Context, req Request) (TokenSource, error) {
	model := a.pick(req.Fast)

	stream, err := a.client.CreateChatCompletionStream(ctx, a.build(model, req, true))
	if err != nil {
		a.logger.Error("LLM stream request failed",
			zap.Error(err),
			zap.String("model", model),
		)
		return nil, errors.NewGenerationFailed(model, err)
	}

	return &openaiSource{stream: stream}, nil
}

func (a *LLMAdapter) pick(fast bool) string {
	a.mu.RLock()
	defer a.mu.RUnlock()
	if fast && a.fastModel != "" {
		return a.fastModel
	}
	return a.model
}

func (a *LLMAdapter) build(model string, req Request, stream bool) openai.ChatCompletionRequest {
	messages := make([]openai.ChatCompletionMessage, 0, len(req.Messages)+1)
	if req.System != "" {
		messages = append(messages, openai.ChatCompletionMessage{
			Role:    openai.ChatMessageRoleSystem,
			Content: req.System,
		})
	}
	for _, msg := range req.Messages {
		role := msg.Role
		if role == "" {
			role = openai.ChatMessageRoleUser
		}
		messages = append(messages, openai.ChatCompletionMessage{
			Role:    role,
			Content: msg.Content,
		})
	}

	temperature := req.Temperature
	if temperature == 0 {
		temperature = 0.7
	}

	return openai.ChatCompletionRequest{
		Model:       model,
		Messages:    messages,
		MaxTokens:   req.MaxTokens,
		Temperature: temperature,
		Stream:      stream,
	}
}

// TokenSource is a finite, non-restartable sequence of content deltas.
// Recv returns io.EOF after the last token; Close abandons the
// underlying call.
type TokenSource interface {
	Recv() (string, error)
	Close() error
}

// openaiSource adapts the go-openai stream to TokenSource, skipping
// empty deltas
type openaiSource struct {
	stream *openai.ChatCompletionStream
}

func (s *openaiSource) Recv() (string, error) {
	for {
		resp, err := s.stream.Recv()
		if err != nil {
			return "", err
		}
		if len(resp.Choices) == 0 {
			continue
		}
		if content := resp.Choices[0].Delta.Content; content != "" {
			return content, nil
		}
	}
}

func (s *openaiSource) Close() error {
	s.stream.Close()
	return nil
}

// StripCodeFences removes a markdown ```json wrapper the service often
// puts around JSON it was asked for
func StripCodeFences(content string) string {
	content = strings.TrimSpace(content)
	content = strings.TrimPrefix(content, "```json")
	content = strings.TrimPrefix(content, "```")
	content = strings.TrimSuffix(content, "```")
	return strings.TrimSpace(content)
}
