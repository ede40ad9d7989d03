package llm

import (
	"context"
	"encoding/json"
	"errors"
	"io"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
)

// chatServer fakes an OpenAI-compatible endpoint answering with content.
func chatServer(t *testing.T, content string, capture *chatRequest) *httptest.Server {
	t.Helper()
	return httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path != "/chat/completions" {
			t.Errorf("Unexpected path %s", r.URL.Path)
		}
		if got := r.Header.Get("Authorization"); got != "Bearer test-key" {
			t.Errorf("Missing bearer auth, got %q", got)
		}
		if capture != nil {
			body, _ := io.ReadAll(r.Body)
			if err := json.Unmarshal(body, capture); err != nil {
				t.Errorf("Request body not a chat request: %v", err)
			}
		}
		resp := map[string]any{
			"choices": []map[string]any{
				{"message": map[string]any{"content": content}},
			},
		}
		json.NewEncoder(w).Encode(resp)
	}))
}

func TestResolveBatch(t *testing.T) {
	var captured chatRequest
	srv := chatServer(t, "you\nhelp\n", &captured)
	defer srv.Close()

	c := NewClient("test-key", "test-model", srv.URL)
	queries := []Query{
		{Index: 1, Token: "y", Candidates: []string{"you", "your"}},
		{Index: 3, Token: "hel", Candidates: []string{"help", "hello"}},
	}

	resolved, err := c.ResolveBatch(context.Background(), queries, "cn y hel me")
	if err != nil {
		t.Fatal(err)
	}
	if resolved[1] != "you" || resolved[3] != "help" {
		t.Errorf("Positional parse broken: %v", resolved)
	}
	if captured.Model != "test-model" {
		t.Errorf("Expected model in request, got %q", captured.Model)
	}
	if len(captured.Messages) != 2 || captured.Messages[0].Role != "system" {
		t.Errorf("Expected system+user messages, got %+v", captured.Messages)
	}
	if !strings.Contains(captured.Messages[1].Content, "cn y hel me") {
		t.Error("Sentence context missing from prompt")
	}
}

// lines that are not a single word are dropped, leaving the local guess
func TestResolveBatchDropsNonWords(t *testing.T) {
	srv := chatServer(t, "you\nnot a word!\n", nil)
	defer srv.Close()

	c := NewClient("test-key", "", srv.URL)
	queries := []Query{
		{Index: 0, Token: "y", Candidates: []string{"you"}},
		{Index: 1, Token: "hel", Candidates: []string{"help"}},
	}

	resolved, err := c.ResolveBatch(context.Background(), queries, "y hel")
	if err != nil {
		t.Fatal(err)
	}
	if _, ok := resolved[1]; ok {
		t.Errorf("Non-word line should be dropped: %v", resolved)
	}
	if resolved[0] != "you" {
		t.Errorf("Valid line lost: %v", resolved)
	}
}

func TestResolveBatchEmpty(t *testing.T) {
	c := NewClient("test-key", "", "http://unreachable.invalid")
	resolved, err := c.ResolveBatch(context.Background(), nil, "")
	if err != nil {
		t.Fatalf("Empty batch must not hit the network: %v", err)
	}
	if len(resolved) != 0 {
		t.Errorf("Expected empty map, got %v", resolved)
	}
}

// fenced model output still parses
func TestResolveBatchMarkdownFence(t *testing.T) {
	srv := chatServer(t, "```\nyou\n```", nil)
	defer srv.Close()

	c := NewClient("test-key", "", srv.URL)
	resolved, err := c.ResolveBatch(context.Background(),
		[]Query{{Index: 0, Token: "y", Candidates: []string{"you"}}}, "y")
	if err != nil {
		t.Fatal(err)
	}
	if resolved[0] != "you" {
		t.Errorf("Fenced answer lost: %v", resolved)
	}
}

func TestResolveBatchAPIError(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusTooManyRequests)
		w.Write([]byte(`{"error": {"message": "rate limited"}}`))
	}))
	defer srv.Close()

	c := NewClient("test-key", "", srv.URL)
	_, err := c.ResolveBatch(context.Background(),
		[]Query{{Index: 0, Token: "y"}}, "y")
	if !errors.Is(err, ErrResolve) {
		t.Errorf("Expected ErrResolve, got %v", err)
	}
}

func TestResolveBatchContextCancel(t *testing.T) {
	srv := chatServer(t, "you\n", nil)
	defer srv.Close()

	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	c := NewClient("test-key", "", srv.URL)
	_, err := c.ResolveBatch(ctx, []Query{{Index: 0, Token: "y"}}, "y")
	if !errors.Is(err, ErrResolve) {
		t.Errorf("Cancelled context should surface as ErrResolve, got %v", err)
	}
}

func TestPolish(t *testing.T) {
	testCases := []struct {
		reply       string
		expected    string
		description string
	}{
		{"can you help me with this", "can you help me with this", "Plain reply"},
		{`"can you help me"`, "can you help me", "Quoted reply unwrapped"},
		{"", "can you hel me", "Empty reply keeps expansion"},
		{strings.Repeat("x", 200), "can you hel me", "Runaway reply keeps expansion"},
	}

	for _, tc := range testCases {
		t.Run(tc.description, func(t *testing.T) {
			srv := chatServer(t, tc.reply, nil)
			defer srv.Close()

			c := NewClient("test-key", "", srv.URL)
			got, err := c.Polish(context.Background(), "cn y hel me", "can you hel me")
			if err != nil {
				t.Fatal(err)
			}
			if got != tc.expected {
				t.Errorf("Polish = %q, want %q", got, tc.expected)
			}
		})
	}
}

func TestStripMarkdownFence(t *testing.T) {
	testCases := []struct {
		in          string
		out         string
		description string
	}{
		{"plain", "plain", "No fence"},
		{"```\nbody\n```", "body", "Bare fence"},
		{"```text\nbody\n```", "body", "Fence with language"},
	}
	for _, tc := range testCases {
		t.Run(tc.description, func(t *testing.T) {
			if got := stripMarkdownFence(tc.in); got != tc.out {
				t.Errorf("stripMarkdownFence(%q) = %q, want %q", tc.in, got, tc.out)
			}
		})
	}
}
