package agent

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"os"
	"time"
)

const (
	geminiAPIBase      = "https://generativelanguage.googleapis.com/v1beta"
	defaultGeminiModel = "gemini-2.5-flash-lite"
)

// Gemini reviews via the Gemini REST API.
type Gemini struct {
	apiKey  string
	model   string
	baseURL string
	client  *http.Client
}

// NewGemini creates a Gemini agent. The API key comes from GEMINI_API_KEY.
func NewGemini(model string, timeout time.Duration) *Gemini {
	if model == "" {
		model = defaultGeminiModel
	}
	return &Gemini{
		apiKey:  os.Getenv("GEMINI_API_KEY"),
		model:   model,
		baseURL: geminiAPIBase,
		client:  &http.Client{Timeout: timeout},
	}
}

func (g *Gemini) ID() string { return "gemini" }

// Available reports whether an API key is configured. No network call.
func (g *Gemini) Available() bool { return g.apiKey != "" }

func (g *Gemini) Review(ctx context.Context, prompt string, rc Context) Outcome {
	if !g.Available() {
		return Failed(g.ID(), "gemini not available (no API key)")
	}

	start := time.Now()
	fullPrompt := BuildPrompt(prompt, rc)

	var content string
	err := retryWithBackoff(ctx, 2, func() error {
		var callErr error
		content, callErr = g.generate(ctx, fullPrompt)
		return callErr
	})
	durationMS := time.Since(start).Milliseconds()

	if err != nil {
		out := Failed(g.ID(), err.Error())
		out.DurationMS = durationMS
		return out
	}
	if content == "" {
		out := Failed(g.ID(), "empty response from gemini")
		out.DurationMS = durationMS
		return out
	}

	out := ParseResponse(g.ID(), content)
	out.DurationMS = durationMS
	return out
}

func (g *Gemini) generate(ctx context.Context, prompt string) (string, error) {
	body := geminiRequest{
		Contents: []geminiContent{
			{Parts: []geminiPart{{Text: prompt}}},
		},
		GenerationConfig: geminiGenConfig{
			Temperature:     0.1,
			MaxOutputTokens: 2000,
		},
	}

	payload, err := json.Marshal(body)
	if err != nil {
		return "", fmt.Errorf("marshaling request: %w", err)
	}

	url := fmt.Sprintf("%s/models/%s:generateContent?key=%s", g.baseURL, g.model, g.apiKey)
	httpReq, err := http.NewRequestWithContext(ctx, http.MethodPost, url, bytes.NewReader(payload))
	if err != nil {
		return "", fmt.Errorf("creating request: %w", err)
	}
	httpReq.Header.Set("Content-Type", "application/json")

	httpResp, err := g.client.Do(httpReq)
	if err != nil {
		return "", fmt.Errorf("sending request: %w", err)
	}
	defer httpResp.Body.Close()

	respBody, err := io.ReadAll(httpResp.Body)
	if err != nil {
		return "", fmt.Errorf("reading response: %w", err)
	}

	switch {
	case httpResp.StatusCode == http.StatusTooManyRequests:
		return "", &rateLimitError{detail: fmt.Sprintf("gemini status %d", httpResp.StatusCode)}
	case httpResp.StatusCode == http.StatusUnauthorized || httpResp.StatusCode == http.StatusForbidden:
		return "", &authError{message: string(respBody)}
	case httpResp.StatusCode != http.StatusOK:
		return "", fmt.Errorf("API error (status %d): %s", httpResp.StatusCode, string(respBody))
	}

	var result geminiResponse
	if err := json.Unmarshal(respBody, &result); err != nil {
		return "", fmt.Errorf("parsing response: %w", err)
	}

	var content string
	if len(result.Candidates) > 0 {
		for _, part := range result.Candidates[0].Content.Parts {
			content += part.Text
		}
	}
	return content, nil
}

type geminiRequest struct {
	Contents         []geminiContent `json:"contents"`
	GenerationConfig geminiGenConfig `json:"generationConfig"`
}

type geminiContent struct {
	Parts []geminiPart `json:"parts"`
}

type geminiPart struct {
	Text string `json:"text"`
}

type geminiGenConfig struct {
	Temperature     float64 `json:"temperature"`
	MaxOutputTokens int     `json:"maxOutputTokens"`
}

type geminiResponse struct {
	Candidates []struct {
		Content geminiContent `json:"content"`
	} `json:"candidates"`
}
