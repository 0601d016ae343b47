package generation

import (
	"context"
	"errors"
	"fmt"

	"github.com/samber/lo"
	"github.com/tmc/langchaingo/llms"
	"google.golang.org/genai"
)

// ReportSchema asks Gemini for the report as ordered sections.
var ReportSchema = genai.Schema{
	Type: genai.TypeObject,
	Properties: map[string]*genai.Schema{
		"sections": {
			Type:        genai.TypeArray,
			Description: "Report sections in the order the topics were requested.",
			Items: &genai.Schema{
				Type: genai.TypeObject,
				Properties: map[string]*genai.Schema{
					"heading": {
						Type:        genai.TypeString,
						Description: "Short section title without markdown symbols.",
					},
					"lines": {
						Type:        genai.TypeArray,
						Description: "One entry per point, plain text without bullet symbols.",
						Items:       &genai.Schema{Type: genai.TypeString},
					},
				},
				Required: []string{"heading", "lines"},
			},
		},
	},
	Required: []string{"sections"},
}

// GeminiModel adapts the Gemini SDK to the langchaingo Model interface.
type GeminiModel struct {
	client     *genai.Client
	model      string
	structured bool
}

func NewGeminiModel(ctx context.Context, apiKey, model string, structured bool) (*GeminiModel, error) {
	client, err := genai.NewClient(ctx, &genai.ClientConfig{
		APIKey:  apiKey,
		Backend: genai.BackendGeminiAPI,
	})
	if err != nil {
		return nil, fmt.Errorf("create gemini client: %w", err)
	}
	return &GeminiModel{client: client, model: model, structured: structured}, nil
}

func (g *GeminiModel) Call(ctx context.Context, prompt string, options ...llms.CallOption) (string, error) {
	resp, err := g.GenerateContent(ctx, []llms.MessageContent{llms.TextParts(llms.ChatMessageTypeHuman, prompt)}, options...)
	if err != nil {
		return "", err
	}
	if len(resp.Choices) == 0 {
		return "", errors.New("no response from Gemini")
	}
	return resp.Choices[0].Content, nil
}

func (g *GeminiModel) GenerateContent(ctx context.Context, messages []llms.MessageContent, options ...llms.CallOption) (*llms.ContentResponse, error) {
	opts := &llms.CallOptions{}
	for _, opt := range options {
		opt(opts)
	}

	contents, err := toGeminiContents(messages)
	if err != nil {
		return nil, err
	}

	resp, err := g.client.Models.GenerateContent(ctx, g.model, contents, g.generateConfig(opts))
	if err != nil {
		return nil, fmt.Errorf("failed to generate content: %w", err)
	}
	return convertGeminiResponse(resp)
}

func (g *GeminiModel) generateConfig(opts *llms.CallOptions) *genai.GenerateContentConfig {
	var cfg genai.GenerateContentConfig
	if opts.Temperature > 0 {
		cfg.Temperature = lo.ToPtr(float32(opts.Temperature))
	}
	if opts.MaxTokens > 0 {
		cfg.MaxOutputTokens = int32(opts.MaxTokens)
	}
	if g.structured {
		cfg.ResponseSchema = &ReportSchema
		cfg.ResponseMIMEType = "application/json"
	}
	return &cfg
}

func toGeminiContents(messages []llms.MessageContent) ([]*genai.Content, error) {
	var contents []*genai.Content
	for _, msg := range messages {
		parts := make([]*genai.Part, 0, len(msg.Parts))
		for _, part := range msg.Parts {
			switch typed := part.(type) {
			case llms.TextContent:
				parts = append(parts, &genai.Part{Text: typed.Text})
			default:
				return nil, fmt.Errorf("unsupported content type: %T", part)
			}
		}
		if len(parts) == 0 {
			continue
		}
		// gemini only knows user and model roles
		content := &genai.Content{Parts: parts, Role: "user"}
		if msg.Role == llms.ChatMessageTypeAI {
			content.Role = "model"
		}
		contents = append(contents, content)
	}
	return contents, nil
}

func convertGeminiResponse(resp *genai.GenerateContentResponse) (*llms.ContentResponse, error) {
	if resp == nil || len(resp.Candidates) == 0 {
		return nil, fmt.Errorf("empty response from Gemini")
	}

	out := &llms.ContentResponse{Choices: make([]*llms.ContentChoice, 0, len(resp.Candidates))}
	for _, candidate := range resp.Candidates {
		choice := &llms.ContentChoice{StopReason: string(candidate.FinishReason)}
		if candidate.Content != nil {
			for _, part := range candidate.Content.Parts {
				if part != nil && part.Text != "" {
					choice.Content += part.Text
				}
			}
		}
		out.Choices = append(out.Choices, choice)
	}
	return out, nil
}
