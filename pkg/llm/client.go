package llm

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"strings"
	"time"
	"unicode"

	"github.com/charmbracelet/log"
)

const (
	DefaultModel   = "gpt-4o-mini"
	DefaultBaseURL = "https://api.openai.com/v1"
)

// Client talks to an OpenAI-compatible chat completions API and
// implements Resolver. Per-call deadlines come from the caller's
// context; the embedded http.Client timeout is only a safety net.
type Client struct {
	baseURL string
	apiKey  string
	model   string
	client  *http.Client
}

// NewClient creates a chat completions client. Unset model/baseURL fall
// back to their defaults.
func NewClient(apiKey, model, baseURL string) *Client {
	if model == "" {
		model = DefaultModel
	}
	if baseURL == "" {
		baseURL = DefaultBaseURL
	}
	return &Client{
		baseURL: strings.TrimRight(baseURL, "/"),
		apiKey:  apiKey,
		model:   model,
		client:  &http.Client{Timeout: 60 * time.Second},
	}
}

// --- wire types ---

type chatMessage struct {
	Role    string `json:"role"`
	Content string `json:"content"`
}

type chatRequest struct {
	Model       string        `json:"model"`
	Messages    []chatMessage `json:"messages"`
	MaxTokens   int           `json:"max_tokens"`
	Temperature float64       `json:"temperature"`
}

type chatChoice struct {
	Message struct {
		Content string `json:"content"`
	} `json:"message"`
}

type chatResponse struct {
	Choices []chatChoice `json:"choices"`
	Error   *struct {
		Message string `json:"message"`
	} `json:"error,omitempty"`
}

// ResolveBatch sends one disambiguation request covering every query
// and parses the one-word-per-line answer positionally. Lines that are
// not a single alphabetic word are dropped, leaving the local guess.
func (c *Client) ResolveBatch(ctx context.Context, queries []Query, sentence string) (map[int]string, error) {
	if len(queries) == 0 {
		return map[int]string{}, nil
	}

	content, err := c.complete(ctx, disambiguationSystem, buildDisambiguationPrompt(queries, sentence))
	if err != nil {
		return nil, err
	}

	var lines []string
	for _, line := range strings.Split(content, "\n") {
		if line = strings.TrimSpace(line); line != "" {
			lines = append(lines, line)
		}
	}

	resolved := make(map[int]string, len(queries))
	for i, q := range queries {
		if i >= len(lines) {
			break
		}
		word := strings.ToLower(lines[i])
		if isSingleWord(word) {
			resolved[q.Index] = word
		} else {
			log.Debugf("Dropping non-word resolver line %q for token %q", lines[i], q.Token)
		}
	}
	return resolved, nil
}

// Polish asks the model to fix misexpansions in a dictionary-expanded
// sentence. A response that is empty or wildly longer than the input is
// discarded in favor of the expansion.
func (c *Client) Polish(ctx context.Context, original, expanded string) (string, error) {
	content, err := c.complete(ctx, polishSystem, buildPolishPrompt(original, expanded))
	if err != nil {
		return "", err
	}

	result := strings.TrimSpace(content)
	if len(result) >= 2 && result[0] == '"' && result[len(result)-1] == '"' {
		result = result[1 : len(result)-1]
	}
	if result == "" || len(result) > len(expanded)*3 {
		log.Debugf("Discarding implausible polish result (%d chars)", len(result))
		return expanded, nil
	}
	return result, nil
}

// complete performs one chat completion round trip.
func (c *Client) complete(ctx context.Context, system, user string) (string, error) {
	body, err := json.Marshal(chatRequest{
		Model: c.model,
		Messages: []chatMessage{
			{Role: "system", Content: system},
			{Role: "user", Content: user},
		},
		MaxTokens:   200,
		Temperature: 0,
	})
	if err != nil {
		return "", fmt.Errorf("%w: encode request: %v", ErrResolve, err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost,
		c.baseURL+"/chat/completions", bytes.NewReader(body))
	if err != nil {
		return "", fmt.Errorf("%w: build request: %v", ErrResolve, err)
	}
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("Authorization", "Bearer "+c.apiKey)

	resp, err := c.client.Do(req)
	if err != nil {
		return "", fmt.Errorf("%w: %v", ErrResolve, err)
	}
	defer resp.Body.Close()

	raw, err := io.ReadAll(resp.Body)
	if err != nil {
		return "", fmt.Errorf("%w: read body: %v", ErrResolve, err)
	}

	var chatResp chatResponse
	if err := json.Unmarshal(raw, &chatResp); err != nil {
		return "", fmt.Errorf("%w: decode response: %v", ErrResolve, err)
	}
	if chatResp.Error != nil {
		return "", fmt.Errorf("%w: API error: %s", ErrResolve, chatResp.Error.Message)
	}
	if len(chatResp.Choices) == 0 {
		return "", fmt.Errorf("%w: empty choices (status %d)", ErrResolve, resp.StatusCode)
	}
	return stripMarkdownFence(chatResp.Choices[0].Message.Content), nil
}

// stripMarkdownFence removes optional ``` wrapping from model output.
func stripMarkdownFence(s string) string {
	s = strings.TrimSpace(s)
	if strings.HasPrefix(s, "```") {
		if idx := strings.Index(s, "\n"); idx != -1 {
			s = s[idx+1:]
		}
		if idx := strings.LastIndex(s, "```"); idx != -1 {
			s = s[:idx]
		}
		s = strings.TrimSpace(s)
	}
	return s
}

func isSingleWord(s string) bool {
	if s == "" {
		return false
	}
	for _, r := range s {
		if !unicode.IsLetter(r) {
			return false
		}
	}
	return true
}
