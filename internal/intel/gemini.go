package intel

import (
	"context"
	"fmt"
	"net/http"
	"time"

	"google.golang.org/genai"
)

// Source is a web page the analysis was grounded on.
type Source struct {
	URL   string `json:"url"`
	Title string `json:"title"`
}

// Result is one analyzer answer.
type Result struct {
	Text    string
	Sources []Source
}

// Analyzer runs one research prompt. Implementations make exactly one
// request per call and do not retry.
type Analyzer interface {
	Analyze(ctx context.Context, prompt string) (Result, error)
}

// GeminiClient calls generateContent with Google Search grounding.
type GeminiClient struct {
	client *genai.Client
	model  string
}

// NewGemini builds a client for the Gemini API. An empty baseURL keeps the
// SDK's default endpoint.
func NewGemini(ctx context.Context, apiKey, model, baseURL string) (*GeminiClient, error) {
	client, err := genai.NewClient(ctx, &genai.ClientConfig{
		APIKey:     apiKey,
		Backend:    genai.BackendGeminiAPI,
		HTTPClient: &http.Client{Timeout: 90 * time.Second},
		HTTPOptions: genai.HTTPOptions{
			BaseURL:    baseURL,
			APIVersion: "v1beta",
		},
	})
	if err != nil {
		return nil, fmt.Errorf("gemini client: %w", err)
	}
	return &GeminiClient{client: client, model: model}, nil
}

func (c *GeminiClient) Analyze(ctx context.Context, prompt string) (Result, error) {
	resp, err := c.client.Models.GenerateContent(ctx, c.model, genai.Text(prompt), &genai.GenerateContentConfig{
		Tools: []*genai.Tool{{GoogleSearch: &genai.GoogleSearch{}}},
	})
	if err != nil {
		return Result{}, fmt.Errorf("gemini generate: %w", err)
	}

	res := Result{Text: resp.Text()}
	if len(resp.Candidates) == 0 || resp.Candidates[0].GroundingMetadata == nil {
		return res, nil
	}
	for _, ch := range resp.Candidates[0].GroundingMetadata.GroundingChunks {
		if ch == nil || ch.Web == nil || ch.Web.URI == "" {
			continue
		}
		res.Sources = append(res.Sources, Source{URL: ch.Web.URI, Title: ch.Web.Title})
	}
	return res, nil
}
