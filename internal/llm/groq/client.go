// Package groq is a minimal client for the Groq OpenAI-compatible API:
// chat completions with tools, Whisper transcription, and speech synthesis.
package groq

import (
	"fmt"
	"io"
	"net/http"
)

const defaultBaseURL = "https://api.groq.com/openai/v1"

// Client talks to the Groq API. Timeouts are the caller's responsibility via
// request contexts; the embedded http.Client sets no deadline of its own.
type Client struct {
	apiKey     string
	baseURL    string
	httpClient *http.Client

	chatModel string
	sttModel  string
	ttsModel  string
	ttsVoice  string
}

// Option configures a Client.
type Option func(*Client)

// WithBaseURL overrides the API endpoint. Used by tests.
func WithBaseURL(url string) Option {
	return func(c *Client) { c.baseURL = url }
}

// WithHTTPClient overrides the HTTP client.
func WithHTTPClient(hc *http.Client) Option {
	return func(c *Client) { c.httpClient = hc }
}

// NewClient creates a Groq API client.
func NewClient(apiKey, chatModel, sttModel, ttsModel, ttsVoice string, opts ...Option) *Client {
	c := &Client{
		apiKey:     apiKey,
		baseURL:    defaultBaseURL,
		httpClient: &http.Client{},
		chatModel:  chatModel,
		sttModel:   sttModel,
		ttsModel:   ttsModel,
		ttsVoice:   ttsVoice,
	}
	for _, opt := range opts {
		opt(c)
	}
	return c
}

func (c *Client) do(req *http.Request) (*http.Response, error) {
	req.Header.Set("Authorization", "Bearer "+c.apiKey)

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return nil, fmt.Errorf("send request: %w", err)
	}
	if resp.StatusCode != http.StatusOK {
		body, _ := io.ReadAll(io.LimitReader(resp.Body, 4096))
		_ = resp.Body.Close()
		return nil, fmt.Errorf("non-OK HTTP status %s: %s", resp.Status, body)
	}
	return resp, nil
}
