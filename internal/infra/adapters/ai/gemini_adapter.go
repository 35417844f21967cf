// File: internal/infra/adapters/ai/gemini_adapter.go
package ai

import (
	"context"
	"errors"
	"strings"
	"time"

	"google.golang.org/genai"

	"nomadlybot/internal/domain/ports/adapter"
	"nomadlybot/internal/infra/metrics"
)

var _ adapter.AIServiceAdapter = (*GeminiAdapter)(nil)

type GeminiAdapter struct {
	client       *genai.Client
	defaultModel string
}

// NewGeminiAdapter creates a Gemini adapter using the official SDK.
func NewGeminiAdapter(ctx context.Context, apiKey, baseURL, defaultModel string, timeout time.Duration) (*GeminiAdapter, error) {
	if apiKey == "" {
		return nil, errors.New("gemini: empty api key")
	}
	if defaultModel == "" || !strings.HasPrefix(strings.ToLower(defaultModel), "gemini") {
		defaultModel = "gemini-2.0-flash"
	}
	httpOpts := genai.HTTPOptions{BaseURL: baseURL}
	if timeout > 0 {
		httpOpts.Timeout = &timeout
	}
	c, err := genai.NewClient(ctx, &genai.ClientConfig{
		APIKey:      apiKey,
		Backend:     genai.BackendGeminiAPI,
		HTTPOptions: httpOpts,
	})
	if err != nil {
		return nil, err
	}
	return &GeminiAdapter{client: c, defaultModel: defaultModel}, nil
}

func (g *GeminiAdapter) Chat(ctx context.Context, model string, messages []adapter.Message, opts adapter.ChatOptions) (string, error) {
	if len(messages) == 0 {
		return "", errors.New("gemini: no messages")
	}
	model = g.resolveModel(model)

	cfg := &genai.GenerateContentConfig{}
	if opts.MaxTokens > 0 {
		cfg.MaxOutputTokens = int32(opts.MaxTokens)
	}
	if opts.Temperature > 0 {
		cfg.Temperature = genai.Ptr(float32(opts.Temperature))
	}
	contents, system := toGenAIContents(messages)
	if system != nil {
		cfg.SystemInstruction = system
	}

	start := time.Now()
	resp, err := g.client.Models.GenerateContent(ctx, model, contents, cfg)
	latency := time.Since(start).Milliseconds()
	if err != nil {
		metrics.ObserveChatUsage("gemini", model, 0, 0, latency, false)
		return "", err
	}
	var in, out int
	if resp.UsageMetadata != nil {
		in = int(resp.UsageMetadata.PromptTokenCount)
		out = int(resp.UsageMetadata.CandidatesTokenCount)
	}
	metrics.ObserveChatUsage("gemini", model, in, out, latency, true)

	text := resp.Text()
	if text == "" {
		return "", errors.New("gemini: empty candidate")
	}
	return text, nil
}

// resolveModel keeps OpenAI model names from reaching the Gemini API.
func (g *GeminiAdapter) resolveModel(model string) string {
	if strings.HasPrefix(strings.ToLower(model), "gemini") {
		return model
	}
	return g.defaultModel
}

// toGenAIContents maps chat history to Gemini contents. System messages become
// the system instruction since Gemini has no system role in history.
func toGenAIContents(msgs []adapter.Message) ([]*genai.Content, *genai.Content) {
	out := make([]*genai.Content, 0, len(msgs))
	var system []string
	for _, m := range msgs {
		switch strings.ToLower(m.Role) {
		case "system":
			system = append(system, m.Content)
		case "assistant", "model":
			out = append(out, genai.NewContentFromText(m.Content, genai.RoleModel))
		default:
			out = append(out, genai.NewContentFromText(m.Content, genai.RoleUser))
		}
	}
	if len(system) == 0 {
		return out, nil
	}
	return out, genai.NewContentFromText(strings.Join(system, "\n\n"), genai.RoleUser)
}
