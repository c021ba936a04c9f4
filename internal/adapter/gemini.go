package adapter

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/google/generative-ai-go/genai"
	"google.golang.org/api/option"

	"github.com/ChlorophyllA/skin2/internal/model"
)

const consultationPrompt = `你是一名皮肤科智能问诊助手。根据用户描述的症状给出可能的皮肤问题、日常护理建议，
并提醒用户在症状严重或持续时及时到正规医院皮肤科就诊。回答使用简体中文，条理清晰，不做确定性诊断。`

// Replier answers a consultation question given the prior turns.
type Replier interface {
	Reply(ctx context.Context, history []model.ChatMessage, question string) (string, error)
}

// GeminiReplier answers with a Gemini chat model.
type GeminiReplier struct {
	client *genai.Client
	model  string
}

func NewGeminiReplier(ctx context.Context, apiKey, modelName string) (*GeminiReplier, error) {
	apiKey = strings.TrimSpace(apiKey)
	if apiKey == "" {
		return nil, errors.New("GEMINI_API_KEY is empty")
	}
	cl, err := genai.NewClient(ctx, option.WithAPIKey(apiKey))
	if err != nil {
		return nil, fmt.Errorf("gemini client: %w", err)
	}
	return &GeminiReplier{client: cl, model: strings.TrimSpace(modelName)}, nil
}

func (g *GeminiReplier) Close() error {
	return g.client.Close()
}

func (g *GeminiReplier) Reply(ctx context.Context, history []model.ChatMessage, question string) (string, error) {
	m := g.client.GenerativeModel(g.model)
	m.SystemInstruction = &genai.Content{
		Parts: []genai.Part{genai.Text(consultationPrompt)},
	}

	cs := m.StartChat()
	cs.History = toContents(history)

	resp, err := cs.SendMessage(ctx, genai.Text(question))
	if err != nil {
		return "", fmt.Errorf("gemini reply: %w", err)
	}
	txt := strings.TrimSpace(firstText(resp))
	if txt == "" {
		return "", errors.New("gemini reply: empty response")
	}
	return txt, nil
}

// toContents maps chat turns onto Gemini roles ("user" / "model").
func toContents(history []model.ChatMessage) []*genai.Content {
	out := make([]*genai.Content, 0, len(history))
	for _, msg := range history {
		role := "user"
		if msg.Role == "assistant" {
			role = "model"
		}
		out = append(out, &genai.Content{
			Role:  role,
			Parts: []genai.Part{genai.Text(msg.Content)},
		})
	}
	return out
}

func firstText(resp *genai.GenerateContentResponse) string {
	if resp == nil || len(resp.Candidates) == 0 {
		return ""
	}
	for _, c := range resp.Candidates {
		if c.Content == nil {
			continue
		}
		for _, p := range c.Content.Parts {
			if t, ok := p.(genai.Text); ok {
				return string(t)
			}
		}
	}
	return ""
}
