package answer

import (
	"context"
	"fmt"
	"strings"

	"github.com/tmc/langchaingo/llms"
	"github.com/tmc/langchaingo/llms/openai"
)

const defaultSystemPrompt = "Provide brief, concise responses with a friendly and human tone. Do not use markdown formatting."

// LLM answers questions with an OpenAI-compatible model and keeps the
// conversation per user in memory.
type LLM struct {
	client       llms.Model
	history      *History
	historyLimit int
	systemPrompt string
}

// NewLLM creates an OpenAI-compatible backend.
func NewLLM(apiKey, baseURL, model string, historyLimit int) (*LLM, error) {
	client, err := openai.New(
		openai.WithToken(apiKey),
		openai.WithBaseURL(baseURL),
		openai.WithModel(model),
	)
	if err != nil {
		return nil, fmt.Errorf("failed to create LLM client: %w", err)
	}

	return NewLLMWithModel(client, historyLimit), nil
}

// NewLLMWithModel wraps an existing model.
func NewLLMWithModel(client llms.Model, historyLimit int) *LLM {
	return &LLM{
		client:       client,
		history:      NewHistory(),
		historyLimit: historyLimit,
		systemPrompt: defaultSystemPrompt,
	}
}

func (l *LLM) Ask(ctx context.Context, uid int64, question string) (string, error) {
	msgs := []llms.MessageContent{
		llms.TextParts(llms.ChatMessageTypeSystem, l.systemPrompt),
	}

	for _, turn := range l.history.Turns(uid) {
		var msgType llms.ChatMessageType
		switch turn.Role {
		case RoleUser:
			msgType = llms.ChatMessageTypeHuman
		case RoleAssistant:
			msgType = llms.ChatMessageTypeAI
		default:
			continue
		}
		msgs = append(msgs, llms.TextParts(msgType, turn.Content))
	}

	msgs = append(msgs, llms.TextParts(llms.ChatMessageTypeHuman, question))

	resp, err := l.client.GenerateContent(ctx, msgs)
	if err != nil {
		return "", fmt.Errorf("failed to generate content: %w", err)
	}

	if len(resp.Choices) == 0 || strings.TrimSpace(resp.Choices[0].Content) == "" {
		return "", ErrMalformedResponse
	}

	content := resp.Choices[0].Content
	l.history.Add(uid, l.historyLimit,
		Turn{Role: RoleUser, Content: question},
		Turn{Role: RoleAssistant, Content: content},
	)

	return content, nil
}

func (l *LLM) Reset(_ context.Context, uid int64) error {
	l.history.Clear(uid)
	return nil
}
