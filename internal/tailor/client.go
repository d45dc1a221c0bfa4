package tailor

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"log"
	"net/http"
	"time"
)

const (
	groqBaseURL  = "https://api.groq.com/openai/v1/chat/completions"
	defaultModel = "llama-3.3-70b-versatile"
	httpTimeout  = 60 * time.Second
)

// Client calls a Groq (OpenAI-compatible) chat-completions endpoint to
// tailor a resume against a job description. Keys come from a KeyDeck; if
// the deck deals an empty key, Generate returns ErrNoKeys gracefully rather
// than attempting an unauthenticated call.
type Client struct {
	deck   *KeyDeck
	model  string
	client *http.Client
}

// ErrNoKeys indicates no API key is configured.
var ErrNoKeys = fmt.Errorf("no API keys configured")

// NewClient constructs a Client with a shared HTTP client. An empty model
// falls back to the default.
func NewClient(deck *KeyDeck, model string) *Client {
	if model == "" {
		model = defaultModel
	}
	return &Client{
		deck:   deck,
		model:  model,
		client: &http.Client{Timeout: httpTimeout},
	}
}

type chatRequest struct {
	Model          string        `json:"model"`
	Messages       []chatMessage `json:"messages"`
	Temperature    float64       `json:"temperature"`
	ResponseFormat *respFormat   `json:"response_format,omitempty"`
}

type chatMessage struct {
	Role    string `json:"role"`
	Content string `json:"content"`
}

type respFormat struct {
	Type string `json:"type"`
}

type chatResponse struct {
	Choices []struct {
		Message struct {
			Content string `json:"content"`
		} `json:"message"`
	} `json:"choices"`
}

// Generate sends the tailoring prompt and returns the raw JSON resume the
// model produced, plus a short prefix of the key used (for observability —
// never the full key).
func (c *Client) Generate(ctx context.Context, systemPrompt, userPrompt string) (content, keyHint string, err error) {
	key := c.deck.Next()
	if key == "" {
		log.Println("[tailor] GROQ_KEYS / GROQ_API_KEY not set — skipping generation")
		return "", "", ErrNoKeys
	}

	messages := []chatMessage{}
	if systemPrompt != "" {
		messages = append(messages, chatMessage{Role: "system", Content: systemPrompt})
	}
	messages = append(messages, chatMessage{Role: "user", Content: userPrompt})

	payload, err := json.Marshal(chatRequest{
		Model:          c.model,
		Messages:       messages,
		Temperature:    0.7,
		ResponseFormat: &respFormat{Type: "json_object"},
	})
	if err != nil {
		return "", "", fmt.Errorf("marshal request: %w", err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, groqBaseURL, bytes.NewReader(payload))
	if err != nil {
		return "", "", err
	}
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("Authorization", "Bearer "+key)

	resp, err := c.client.Do(req)
	if err != nil {
		return "", "", fmt.Errorf("http POST: %w", err)
	}
	defer resp.Body.Close()

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return "", "", fmt.Errorf("read body: %w", err)
	}

	if resp.StatusCode != http.StatusOK {
		return "", "", fmt.Errorf("groq returned %d: %s", resp.StatusCode, string(body))
	}

	var apiResp chatResponse
	if err := json.Unmarshal(body, &apiResp); err != nil {
		return "", "", fmt.Errorf("json unmarshal: %w", err)
	}
	if len(apiResp.Choices) == 0 {
		return "", "", fmt.Errorf("groq returned no choices")
	}

	return apiResp.Choices[0].Message.Content, keyPrefix(key), nil
}

func keyPrefix(key string) string {
	if len(key) > 10 {
		return key[:10]
	}
	return key
}
