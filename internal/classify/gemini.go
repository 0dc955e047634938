package classify

import (
	"context"
	"encoding/json"
	"fmt"
	"strings"

	"google.golang.org/genai"
)

// DefaultModelName is the Gemini model used when none is configured.
const DefaultModelName = "gemini-2.5-flash"

// GeminiOracle classifies descriptions with a Gemini model. The model is
// instructed to answer with a single strict-JSON object {"category": name};
// anything else surfaces as an error and the caller falls back to "Other".
type GeminiOracle struct {
	client *genai.Client
	model  string
}

// NewGeminiOracle creates the oracle. The API key is taken from the
// environment by the genai client itself.
func NewGeminiOracle(ctx context.Context, model string) (*GeminiOracle, error) {
	if model == "" {
		model = DefaultModelName
	}
	client, err := genai.NewClient(ctx, &genai.ClientConfig{
		HTTPOptions: genai.HTTPOptions{APIVersion: "v1"},
	})
	if err != nil {
		return nil, fmt.Errorf("gemini: create client: %w", err)
	}
	return &GeminiOracle{client: client, model: model}, nil
}

// Model returns the configured model name.
func (o *GeminiOracle) Model() string {
	return o.model
}

// Classify asks the model for exactly one category for the description.
func (o *GeminiOracle) Classify(ctx context.Context, description string, categories []string) (string, error) {
	prompt := buildClassifyPrompt(description, categories)

	contents := []*genai.Content{
		{
			Role: "user",
			Parts: []*genai.Part{
				{Text: prompt},
			},
		},
	}

	resp, err := o.client.Models.GenerateContent(ctx, o.model, contents, nil)
	if err != nil {
		return "", fmt.Errorf("gemini: generate content: %w", err)
	}

	rawText := resp.Text()
	if rawText == "" {
		return "", fmt.Errorf("gemini: empty response from model")
	}

	clean := cleanModelJSON(rawText)

	var result struct {
		Category string `json:"category"`
	}
	if err := json.Unmarshal([]byte(clean), &result); err != nil {
		return "", fmt.Errorf("gemini: unmarshal JSON: %w\nraw response: %s", err, rawText)
	}
	if strings.TrimSpace(result.Category) == "" {
		return "", fmt.Errorf("gemini: response has no category\nraw response: %s", rawText)
	}

	return result.Category, nil
}

func buildClassifyPrompt(description string, categories []string) string {
	var b strings.Builder
	b.WriteString("You are an expense classification assistant. Classify the following expense into ONE of these categories:\n")
	for _, cat := range categories {
		b.WriteString("- " + cat + "\n")
	}
	b.WriteString("\nReturn ONLY a valid JSON object in this format:\n")
	b.WriteString("{\"category\": \"CategoryName\"}\n\n")
	b.WriteString("Do NOT wrap the response in code fences.\n")
	b.WriteString("Do NOT use ```json or any Markdown.\n")
	b.WriteString("Output must begin with \"{\" and end with \"}\".\n\n")
	b.WriteString(fmt.Sprintf("Expense Description: %q\n", description))
	return b.String()
}

// cleanModelJSON strips Markdown fences and surrounding junk if the model
// ignored the strict-JSON instructions, keeping only the first balanced
// object span.
func cleanModelJSON(raw string) string {
	s := strings.TrimSpace(raw)

	if strings.HasPrefix(s, "```") {
		// Drop the first line (``` or ```json).
		if idx := strings.Index(s, "\n"); idx != -1 {
			s = s[idx+1:]
		} else {
			return s
		}
		s = strings.TrimSpace(s)
	}

	if idx := strings.LastIndex(s, "```"); idx != -1 {
		s = s[:idx]
	}

	s = strings.TrimSpace(s)

	if start := strings.Index(s, "{"); start != -1 {
		if end := strings.LastIndex(s, "}"); end != -1 && end > start {
			s = strings.TrimSpace(s[start : end+1])
		}
	}

	return s
}
