package llm

import (
	"context"
	"fmt"
	"strings"
	"time"

	generativelanguage "google.golang.org/api/generativelanguage/v1beta"
	"google.golang.org/api/option"

	"recruitflow/internal/config"
)

// DeveloperClient calls the Gemini Developer API with an API key.
type DeveloperClient struct {
	models  *generativelanguage.ModelsService
	model   string
	timeout time.Duration
}

// NewDeveloperClient creates a Gemini Developer API client. Extra options are appended after
// the API key, which lets tests point the client at a local endpoint.
func NewDeveloperClient(ctx context.Context, cfg config.GeminiConfig, opts ...option.ClientOption) (*DeveloperClient, error) {
	if cfg.APIKey == "" {
		return nil, fmt.Errorf("GEMINI_API_KEY is required for the Gemini Developer API")
	}

	opts = append([]option.ClientOption{option.WithAPIKey(cfg.APIKey)}, opts...)
	svc, err := generativelanguage.NewService(ctx, opts...)
	if err != nil {
		return nil, fmt.Errorf("create gemini client: %w", err)
	}

	model := cfg.Model
	if !strings.HasPrefix(model, "models/") {
		model = "models/" + model
	}
	return &DeveloperClient{
		models:  svc.Models,
		model:   model,
		timeout: cfg.Timeout,
	}, nil
}

// Generate sends a single prompt and returns the concatenated text parts of the first candidate.
func (d *DeveloperClient) Generate(ctx context.Context, prompt string) (string, error) {
	if d.timeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, d.timeout)
		defer cancel()
	}

	req := &generativelanguage.GenerateContentRequest{
		Contents: []*generativelanguage.Content{{
			Role:  "user",
			Parts: []*generativelanguage.Part{{Text: prompt}},
		}},
		SystemInstruction: &generativelanguage.Content{
			Parts: []*generativelanguage.Part{{Text: systemInstruction}},
		},
		GenerationConfig: &generativelanguage.GenerationConfig{
			Temperature:     temperature,
			TopK:            topK,
			TopP:            topP,
			MaxOutputTokens: maxOutputTokens,
		},
	}

	resp, err := d.models.GenerateContent(d.model, req).Context(ctx).Do()
	if err != nil {
		return "", fmt.Errorf("generate content: %w", err)
	}
	if len(resp.Candidates) == 0 || resp.Candidates[0].Content == nil {
		return "", ErrBlocked
	}

	var b strings.Builder
	for _, part := range resp.Candidates[0].Content.Parts {
		if part != nil {
			b.WriteString(part.Text)
		}
	}
	return b.String(), nil
}
