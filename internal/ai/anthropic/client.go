package anthropic

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"strings"
	"sync"

	"github.com/Lin-Jiong-HDU/gate/internal/ai"
)

const (
	defaultBaseURL = "https://api.anthropic.com"
	apiVersion     = "2023-06-01"

	// DefaultModel is used when no model is configured.
	DefaultModel = "claude-3-5-haiku-20241022"
)

// Client implements ai.Proposer for the Anthropic Messages API
type Client struct {
	apiKey  string
	model   string
	baseURL string
	opts    ai.Options
	http    *http.Client

	mu       sync.Mutex
	messages []ai.Message
}

// NewClient creates a new Anthropic client
func NewClient(apiKey, model, baseURL string, opts ai.Options) *Client {
	if baseURL == "" {
		baseURL = defaultBaseURL
	}
	if model == "" {
		model = DefaultModel
	}
	opts = opts.WithDefaults()
	return &Client{
		apiKey:  apiKey,
		model:   model,
		baseURL: strings.TrimRight(baseURL, "/"),
		opts:    opts,
		http:    &http.Client{Timeout: opts.Timeout},
	}
}

// Propose sends the instruction and parses the reply into a proposal.
// The conversation is kept across calls until Reset.
func (c *Client) Propose(ctx context.Context, instruction string, recent []ai.Turn) (*ai.Proposal, error) {
	prompt := instruction
	if c.opts.IncludeHistory {
		prompt = ai.BuildUserPrompt(instruction, recent)
	}

	c.mu.Lock()
	defer c.mu.Unlock()

	c.messages = append(c.messages, ai.Message{Role: "user", Content: prompt})

	reply, err := c.callAPI(ctx, c.messages)
	if err != nil {
		c.messages = c.messages[:len(c.messages)-1]
		return nil, err
	}
	c.messages = append(c.messages, ai.Message{Role: "assistant", Content: reply})

	return ai.ParseProposal(reply)
}

// Reset clears the conversation.
func (c *Client) Reset() {
	c.mu.Lock()
	c.messages = nil
	c.mu.Unlock()
}

// callAPI makes the actual call to /v1/messages
func (c *Client) callAPI(ctx context.Context, messages []ai.Message) (string, error) {
	reqBody := map[string]interface{}{
		"model":      c.model,
		"max_tokens": c.opts.MaxTokens,
		"system":     ai.SystemPrompt,
		"messages":   messages,
	}

	jsonBody, err := json.Marshal(reqBody)
	if err != nil {
		return "", fmt.Errorf("failed to marshal request: %w", err)
	}

	req, err := http.NewRequestWithContext(ctx, "POST", c.baseURL+"/v1/messages", bytes.NewReader(jsonBody))
	if err != nil {
		return "", fmt.Errorf("failed to create request: %w", err)
	}

	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("x-api-key", c.apiKey)
	req.Header.Set("anthropic-version", apiVersion)

	resp, err := c.http.Do(req)
	if err != nil {
		return "", fmt.Errorf("request failed: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		body, _ := io.ReadAll(resp.Body)
		return "", fmt.Errorf("API error (status %d): %s", resp.StatusCode, string(body))
	}

	var respData struct {
		Content []struct {
			Type string `json:"type"`
			Text string `json:"text"`
		} `json:"content"`
	}

	if err := json.NewDecoder(resp.Body).Decode(&respData); err != nil {
		return "", fmt.Errorf("failed to decode response: %w", err)
	}

	for _, block := range respData.Content {
		if block.Type == "text" {
			return block.Text, nil
		}
	}

	return "", fmt.Errorf("no text content in response")
}
