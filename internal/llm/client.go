package llm

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"time"

	"resume-screener/internal/logger"
)

type Provider string

const (
	ProviderOpenAI Provider = "openai"
	ProviderOllama Provider = "ollama"
	ProviderGroq   Provider = "groq"
	ProviderNone   Provider = "none"
)

const systemPrompt = "You are a recruiting assistant. Return only valid JSON."

// Client talks to a chat-completion provider over plain HTTP. OpenAI and
// Groq share the same wire protocol; Ollama has its own generate endpoint.
type Client struct {
	provider  Provider
	apiKey    string
	model     string
	ollamaURL string
	http      *http.Client

	openAIURL string
	groqURL   string
}

func NewClient(provider, apiKey, model, ollamaURL string) *Client {
	return &Client{
		provider:  Provider(provider),
		apiKey:    apiKey,
		model:     model,
		ollamaURL: ollamaURL,
		http:      &http.Client{Timeout: 120 * time.Second}, // generous for slower local models
		openAIURL: "https://api.openai.com/v1/chat/completions",
		groqURL:   "https://api.groq.com/openai/v1/chat/completions",
	}
}

// Configured reports whether this client can actually reach a model. The
// hosted providers need an API key; Ollama only needs its local endpoint.
func (c *Client) Configured() bool {
	switch c.provider {
	case ProviderOpenAI, ProviderGroq:
		return c.apiKey != ""
	case ProviderOllama:
		return c.ollamaURL != ""
	default:
		return false
	}
}

// Model returns the configured model name.
func (c *Client) Model() string {
	return c.model
}

// Generate sends a prompt to the configured provider and returns the raw
// text of the model's reply.
func (c *Client) Generate(ctx context.Context, prompt string) (string, error) {
	switch c.provider {
	case ProviderOpenAI:
		return c.callChatCompletions(ctx, c.openAIURL, prompt)
	case ProviderGroq:
		return c.callChatCompletions(ctx, c.groqURL, prompt)
	case ProviderOllama:
		return c.callOllama(ctx, prompt)
	case ProviderNone:
		return "", fmt.Errorf("LLM provider not configured")
	default:
		return "", fmt.Errorf("unknown provider: %s", c.provider)
	}
}

func (c *Client) callChatCompletions(ctx context.Context, url, prompt string) (string, error) {
	reqBody := map[string]interface{}{
		"model": c.model,
		"messages": []map[string]string{
			{
				"role":    "system",
				"content": systemPrompt,
			},
			{
				"role":    "user",
				"content": prompt,
			},
		},
		"temperature": 0.1,
		"response_format": map[string]string{
			"type": "json_object",
		},
	}

	jsonData, _ := json.Marshal(reqBody)

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, url, bytes.NewBuffer(jsonData))
	if err != nil {
		return "", err
	}
	req.Header.Set("Authorization", "Bearer "+c.apiKey)
	req.Header.Set("Content-Type", "application/json")

	start := time.Now()
	resp, err := c.http.Do(req)
	if err != nil {
		return "", fmt.Errorf("%s request failed: %w", c.provider, err)
	}
	defer resp.Body.Close()

	logger.Debug().
		Str("provider", string(c.provider)).
		Int("status", resp.StatusCode).
		Dur("elapsed", time.Since(start)).
		Msg("chat completion round trip")

	if resp.StatusCode != http.StatusOK {
		return "", fmt.Errorf("%s API error: %d", c.provider, resp.StatusCode)
	}

	var result struct {
		Choices []struct {
			Message struct {
				Content string `json:"content"`
			} `json:"message"`
		} `json:"choices"`
		Error struct {
			Message string `json:"message"`
		} `json:"error"`
	}

	if err := json.NewDecoder(resp.Body).Decode(&result); err != nil {
		return "", err
	}

	if result.Error.Message != "" {
		return "", fmt.Errorf("%s error: %s", c.provider, result.Error.Message)
	}

	if len(result.Choices) == 0 {
		return "", fmt.Errorf("no response from %s", c.provider)
	}

	return result.Choices[0].Message.Content, nil
}

func (c *Client) callOllama(ctx context.Context, prompt string) (string, error) {
	reqBody := map[string]interface{}{
		"model":  c.model,
		"prompt": prompt,
		"stream": false,
		"format": "json",
	}

	jsonData, _ := json.Marshal(reqBody)

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.ollamaURL+"/api/generate", bytes.NewBuffer(jsonData))
	if err != nil {
		return "", err
	}
	req.Header.Set("Content-Type", "application/json")

	start := time.Now()
	resp, err := c.http.Do(req)
	if err != nil {
		return "", fmt.Errorf("Ollama connection failed (is Ollama running?): %w", err)
	}
	defer resp.Body.Close()

	logger.Debug().
		Int("status", resp.StatusCode).
		Dur("elapsed", time.Since(start)).
		Msg("ollama round trip")

	var result struct {
		Response string `json:"response"`
		Error    string `json:"error"`
	}

	if err := json.NewDecoder(resp.Body).Decode(&result); err != nil {
		return "", err
	}

	if result.Error != "" {
		return "", fmt.Errorf("Ollama error: %s", result.Error)
	}

	return result.Response, nil
}
