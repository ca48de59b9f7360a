package deductions

import (
	"context"
	"fmt"

	"google.golang.org/genai"
)

var suggestionsSchema = &genai.Schema{
	Type: genai.TypeObject,
	Properties: map[string]*genai.Schema{
		"suggestedDeductions": {
			Type:        genai.TypeArray,
			Description: "Potential tax deductions the user might be eligible for, with brief explanations.",
			Items:       &genai.Schema{Type: genai.TypeString},
		},
		"summary": {
			Type:        genai.TypeString,
			Description: "A concise summary of the analysis and the rationale behind the suggested deductions.",
		},
	},
	Required: []string{"suggestedDeductions", "summary"},
}

// GenAIGenerator implements Generator on the Gemini API.
type GenAIGenerator struct {
	client *genai.Client
	model  string
}

func NewGenAIGenerator(ctx context.Context, apiKey, model string) (*GenAIGenerator, error) {
	if apiKey == "" {
		return nil, fmt.Errorf("genai API key is required")
	}
	if model == "" {
		model = "gemini-2.0-flash"
	}
	client, err := genai.NewClient(ctx, &genai.ClientConfig{
		APIKey:  apiKey,
		Backend: genai.BackendGeminiAPI,
	})
	if err != nil {
		return nil, fmt.Errorf("failed to create GenAI client: %w", err)
	}
	return &GenAIGenerator{client: client, model: model}, nil
}

func (g *GenAIGenerator) Generate(ctx context.Context, prompt string, attachments []Attachment) (string, error) {
	parts := make([]*genai.Part, 0, len(attachments)+1)
	parts = append(parts, genai.NewPartFromText(prompt))
	for _, a := range attachments {
		parts = append(parts, genai.NewPartFromBytes(a.Data, a.MIMEType))
	}
	contents := []*genai.Content{genai.NewContentFromParts(parts, genai.RoleUser)}

	resp, err := g.client.Models.GenerateContent(ctx, g.model, contents, &genai.GenerateContentConfig{
		ResponseMIMEType: "application/json",
		ResponseSchema:   suggestionsSchema,
	})
	if err != nil {
		return "", err
	}
	return resp.Text(), nil
}

func (g *GenAIGenerator) Name() string { return "genai:" + g.model }
