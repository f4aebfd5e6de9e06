// Package llm talks to a llama.cpp-style completion backend for transcript
// summarization and comment sentiment classification.
package llm

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"strings"
	"unicode/utf8"

	"github.com/iconidentify/socialscope/internal/config"
)

// Client generates analysis text from scraped content.
type Client interface {
	Summarize(ctx context.Context, text string) (string, error)
	ClassifySentiment(ctx context.Context, text string) (string, error)
}

// maxSentimentInput caps how much comment text goes into the sentiment prompt;
// a one-word answer does not need more context than this.
const maxSentimentInput = 1000

// HTTPClient implements Client against the /completion endpoint.
type HTTPClient struct {
	completionURL   string
	summaryTokens   int
	sentimentTokens int
	httpClient      *http.Client
}

// NewClient creates an LLM client from config.
func NewClient(cfg config.LLMConfig) *HTTPClient {
	return &HTTPClient{
		completionURL:   cfg.CompletionURL,
		summaryTokens:   cfg.SummaryTokens,
		sentimentTokens: cfg.SentimentTokens,
		httpClient: &http.Client{
			Timeout: cfg.Timeout,
		},
	}
}

// completionRequest is the backend's request body.
type completionRequest struct {
	Prompt      string   `json:"prompt"`
	NPredict    int      `json:"n_predict"`
	Temperature float64  `json:"temperature"`
	Stop        []string `json:"stop"`
}

type completionResponse struct {
	Content string `json:"content"`
}

// Summarize produces a concise summary of the transcript.
func (c *HTTPClient) Summarize(ctx context.Context, text string) (string, error) {
	prompt := "Provide a concise summary of this text: " + text
	out, err := c.complete(ctx, prompt, c.summaryTokens)
	if err != nil {
		return "", fmt.Errorf("summarize: %w", err)
	}
	return strings.TrimSpace(out), nil
}

// ClassifySentiment labels the overall sentiment of comment text as
// Positive, Negative or Neutral.
func (c *HTTPClient) ClassifySentiment(ctx context.Context, text string) (string, error) {
	if len(text) > maxSentimentInput {
		cut := maxSentimentInput
		for cut > 0 && !utf8.RuneStart(text[cut]) {
			cut--
		}
		text = text[:cut]
	}
	prompt := "Classify the overall sentiment of the following comments as Positive, Negative or Neutral. Answer with one word.\n\nComments: " + text + "\n\nSentiment:"
	out, err := c.complete(ctx, prompt, c.sentimentTokens)
	if err != nil {
		return "", fmt.Errorf("classify sentiment: %w", err)
	}
	return normalizeSentiment(out), nil
}

func (c *HTTPClient) complete(ctx context.Context, prompt string, nPredict int) (string, error) {
	body, err := json.Marshal(completionRequest{
		Prompt:      prompt,
		NPredict:    nPredict,
		Temperature: 0.7,
		Stop:        []string{"User:"},
	})
	if err != nil {
		return "", fmt.Errorf("marshal request: %w", err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.completionURL, bytes.NewReader(body))
	if err != nil {
		return "", fmt.Errorf("create request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return "", fmt.Errorf("send request: %w", err)
	}
	defer resp.Body.Close()

	respBody, err := io.ReadAll(resp.Body)
	if err != nil {
		return "", fmt.Errorf("read response: %w", err)
	}
	if resp.StatusCode != http.StatusOK {
		return "", fmt.Errorf("completion backend error (status %d): %s", resp.StatusCode, string(respBody))
	}

	var result completionResponse
	if err := json.Unmarshal(respBody, &result); err != nil {
		return "", fmt.Errorf("unmarshal response: %w", err)
	}
	return result.Content, nil
}

// normalizeSentiment maps free-form model output onto the three labels.
// Unrecognized output falls back to Neutral rather than erroring the task.
func normalizeSentiment(raw string) string {
	lowered := strings.ToLower(strings.TrimSpace(raw))
	switch {
	case strings.HasPrefix(lowered, "positive"):
		return "Positive"
	case strings.HasPrefix(lowered, "negative"):
		return "Negative"
	default:
		return "Neutral"
	}
}
