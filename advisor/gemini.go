package advisor

import (
	"context"
	"fmt"

	"google.golang.org/genai"
)

// DefaultModel is the Gemini model used when none is configured.
const DefaultModel = "gemini-2.5-flash"

// Generator answers a prompt with text.
type Generator interface {
	Generate(ctx context.Context, prompt string) (string, error)
}

// Gemini is a Generator backed by a Gemini model.
type Gemini struct {
	Name      string
	ModelName string
	Config    *genai.GenerateContentConfig
	client    *genai.Client
}

// NewGemini creates a Gemini client from the environment (GOOGLE_API_KEY or
// the Vertex AI variables) asking model for JSON answers.
func NewGemini(ctx context.Context, model string) (*Gemini, error) {
	client, err := genai.NewClient(ctx, nil)
	if err != nil {
		return nil, fmt.Errorf("create genai client: %w", err)
	}
	if model == "" {
		model = DefaultModel
	}
	return &Gemini{
		Name:      "Reconciler",
		ModelName: model,
		Config: &genai.GenerateContentConfig{
			ResponseMIMEType: "application/json",
			SystemInstruction: &genai.Content{Parts: []*genai.Part{{Text: `
			You help a person keep their checkbook register in sync with their bank.
			You know how banks and card processors label merchants: abbreviations, store
			numbers, payment processor prefixes, parent companies and trading names.
			You answer with STRICT JSON only (no comments, no trailing commas, no extra text).
			`}}},
		},
		client: client,
	}, nil
}

// Generate sends prompt to the model and returns its text answer.
func (g *Gemini) Generate(ctx context.Context, prompt string) (string, error) {
	contents := []*genai.Content{
		{
			Role:  "user",
			Parts: []*genai.Part{{Text: prompt}},
		},
	}
	resp, err := g.client.Models.GenerateContent(ctx, g.ModelName, contents, g.Config)
	if err != nil {
		return "", fmt.Errorf("%s: generate content: %w", g.Name, err)
	}
	text := resp.Text()
	if text == "" {
		return "", fmt.Errorf("%s: empty response from model", g.Name)
	}
	return text, nil
}
