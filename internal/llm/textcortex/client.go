// Package textcortex implements llm.Client against the TextCortex completions API.
package textcortex

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"strings"
	"time"
	"unicode/utf8"

	"resume-portal/internal/llm"
)

// DefaultURL is the TextCortex text completion endpoint.
const DefaultURL = "https://api.textcortex.com/v1/texts/completions"

const (
	defaultFormality   = "default"
	defaultMaxTokens   = 2048
	defaultModel       = "chat-sophos-1"
	defaultN           = 1
	defaultLang        = "en"
	defaultTemperature = 0.65

	maxErrorBody = 512
)

// Client implements llm.Client using TextCortex.
type Client struct {
	apiKey     string
	url        string
	httpClient *http.Client
}

// NewClient constructs a client. A zero timeout leaves the request bounded only by ctx.
func NewClient(apiKey, url string, timeout time.Duration) (*Client, error) {
	if strings.TrimSpace(apiKey) == "" {
		return nil, fmt.Errorf("API_KEY is required for TextCortex")
	}
	if strings.TrimSpace(url) == "" {
		url = DefaultURL
	}
	return &Client{
		apiKey:     apiKey,
		url:        url,
		httpClient: &http.Client{Timeout: timeout},
	}, nil
}

type completionRequest struct {
	Formality   string  `json:"formality"`
	MaxTokens   int     `json:"max_tokens"`
	Model       string  `json:"model"`
	N           int     `json:"n"`
	SourceLang  string  `json:"source_lang"`
	TargetLang  string  `json:"target_lang"`
	Temperature float64 `json:"temperature"`
	Text        string  `json:"text"`
}

type completionResponse struct {
	Data *struct {
		Outputs []struct {
			Text *string `json:"text"`
		} `json:"outputs"`
	} `json:"data"`
}

// Complete posts prompt and returns data.outputs[0].text.
func (c *Client) Complete(ctx context.Context, prompt string) (string, error) {
	payload, err := json.Marshal(completionRequest{
		Formality:   defaultFormality,
		MaxTokens:   defaultMaxTokens,
		Model:       defaultModel,
		N:           defaultN,
		SourceLang:  defaultLang,
		TargetLang:  defaultLang,
		Temperature: defaultTemperature,
		Text:        prompt,
	})
	if err != nil {
		return "", &llm.GatewayError{Op: "encode", Err: err}
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.url, bytes.NewReader(payload))
	if err != nil {
		return "", &llm.GatewayError{Op: "request", Err: err}
	}
	req.Header.Set("Authorization", "Bearer "+c.apiKey)
	req.Header.Set("Content-Type", "application/json")

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return "", &llm.GatewayError{Op: "send", Err: err}
	}
	defer resp.Body.Close()

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return "", &llm.GatewayError{Op: "read", StatusCode: resp.StatusCode, Err: err}
	}
	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		return "", &llm.GatewayError{
			Op:         "status",
			StatusCode: resp.StatusCode,
			Err:        errors.New(truncate(strings.TrimSpace(string(body)), maxErrorBody)),
		}
	}

	var parsed completionResponse
	if err := json.Unmarshal(body, &parsed); err != nil {
		return "", &llm.GatewayError{Op: "decode", StatusCode: resp.StatusCode, Err: err}
	}
	if parsed.Data == nil || len(parsed.Data.Outputs) == 0 || parsed.Data.Outputs[0].Text == nil {
		return "", &llm.GatewayError{
			Op:         "decode",
			StatusCode: resp.StatusCode,
			Err:        errors.New("response missing data.outputs[0].text"),
		}
	}
	return *parsed.Data.Outputs[0].Text, nil
}

// truncate cuts s to at most n bytes without splitting a rune.
func truncate(s string, n int) string {
	if len(s) <= n {
		return s
	}
	for n > 0 && !utf8.RuneStart(s[n]) {
		n--
	}
	return s[:n]
}
