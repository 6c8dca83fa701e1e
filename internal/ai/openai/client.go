package openai

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"sync"

	"github.com/Lin-Jiong-HDU/gate/internal/ai"
)

const defaultBaseURL = "https://api.openai.com/v1"

// Client implements ai.Proposer for OpenAI-compatible chat completion APIs
type Client struct {
	apiKey  string
	model   string
	baseURL string
	opts    ai.Options
	http    *http.Client

	mu       sync.Mutex
	messages []ai.Message
}

// NewClient creates a new OpenAI client
func NewClient(apiKey, model, baseURL string, opts ai.Options) *Client {
	if baseURL == "" {
		baseURL = defaultBaseURL
	}
	opts = opts.WithDefaults()
	return &Client{
		apiKey:  apiKey,
		model:   model,
		baseURL: baseURL,
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

	messages := make([]ai.Message, 0, len(c.messages)+1)
	messages = append(messages, ai.Message{Role: "system", Content: ai.SystemPrompt})
	messages = append(messages, c.messages...)

	reply, err := c.callAPI(ctx, messages)
	if err != nil {
		// Drop the unanswered turn so the conversation stays alternating
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

// callAPI makes the actual API call
func (c *Client) callAPI(ctx context.Context, messages []ai.Message) (string, error) {
	reqBody := map[string]interface{}{
		"model":      c.model,
		"messages":   messages,
		"max_tokens": c.opts.MaxTokens,
	}

	jsonBody, err := json.Marshal(reqBody)
	if err != nil {
		return "", fmt.Errorf("failed to marshal request: %w", err)
	}

	req, err := http.NewRequestWithContext(ctx, "POST", c.baseURL+"/chat/completions", bytes.NewReader(jsonBody))
	if err != nil {
		return "", fmt.Errorf("failed to create request: %w", err)
	}

	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("Authorization", "Bearer "+c.apiKey)

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
		Choices []struct {
			Message struct {
				Content string `json:"content"`
			} `json:"message"`
		} `json:"choices"`
	}

	if err := json.NewDecoder(resp.Body).Decode(&respData); err != nil {
		return "", fmt.Errorf("failed to decode response: %w", err)
	}

	if len(respData.Choices) == 0 {
		return "", fmt.Errorf("no choices in response")
	}

	return respData.Choices[0].Message.Content, nil
}
