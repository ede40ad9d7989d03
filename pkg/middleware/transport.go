/*
Package middleware wraps an http.RoundTripper so shorthand typed into
chat-completion requests is expanded transparently before it reaches
the provider. Drop it into any OpenAI-style client:

	client := &http.Client{
		Transport: middleware.NewTransport(nil, expander),
	}

Only POST bodies carrying a JSON "messages" array are touched; user
message strings are expanded in place and everything else passes
through byte for byte. Expansion problems never fail a request.
*/
package middleware

import (
	"bytes"
	"encoding/json"
	"io"
	"net/http"
	"strings"

	"github.com/charmbracelet/log"

	"github.com/bastiangx/longhand/pkg/expand"
)

// Transport is an http.RoundTripper that expands user chat messages.
type Transport struct {
	base http.RoundTripper
	exp  *expand.Expander
}

// NewTransport wraps base (http.DefaultTransport when nil).
func NewTransport(base http.RoundTripper, exp *expand.Expander) *Transport {
	if base == nil {
		base = http.DefaultTransport
	}
	return &Transport{base: base, exp: exp}
}

// chatMessage is the fragment of a chat message we care about; other
// fields survive through the raw JSON surgery in rewriteBody.
type chatMessage struct {
	Role    string          `json:"role"`
	Content json.RawMessage `json:"content"`
}

// RoundTrip rewrites eligible request bodies and forwards. Any parse or
// rewrite problem forwards the original request untouched.
func (t *Transport) RoundTrip(req *http.Request) (*http.Response, error) {
	if req.Method != http.MethodPost || req.Body == nil || !isJSONRequest(req) {
		return t.base.RoundTrip(req)
	}

	body, err := io.ReadAll(req.Body)
	req.Body.Close()
	if err != nil {
		return nil, err
	}

	rewritten, changed := t.rewriteBody(body)
	if !changed {
		rewritten = body
	}

	clone := req.Clone(req.Context())
	clone.Body = io.NopCloser(bytes.NewReader(rewritten))
	clone.ContentLength = int64(len(rewritten))
	clone.Header.Del("Content-Length")
	return t.base.RoundTrip(clone)
}

// rewriteBody expands user message strings inside a chat-completions
// JSON body. Returns changed=false when the body is not one.
func (t *Transport) rewriteBody(body []byte) ([]byte, bool) {
	var payload map[string]json.RawMessage
	if err := json.Unmarshal(body, &payload); err != nil {
		return nil, false
	}
	rawMessages, ok := payload["messages"]
	if !ok {
		return nil, false
	}

	var messages []json.RawMessage
	if err := json.Unmarshal(rawMessages, &messages); err != nil {
		return nil, false
	}

	changed := false
	for i, raw := range messages {
		var msg chatMessage
		if err := json.Unmarshal(raw, &msg); err != nil || msg.Role != "user" {
			continue
		}
		var content string
		if err := json.Unmarshal(msg.Content, &content); err != nil {
			continue // structured content blocks pass through untouched
		}

		expanded := t.exp.Expand(content, false)
		if expanded == content {
			continue
		}

		var obj map[string]json.RawMessage
		if err := json.Unmarshal(raw, &obj); err != nil {
			continue
		}
		newContent, err := json.Marshal(expanded)
		if err != nil {
			continue
		}
		obj["content"] = newContent
		newMsg, err := json.Marshal(obj)
		if err != nil {
			continue
		}
		messages[i] = newMsg
		changed = true
		log.Debugf("Expanded chat message %d: %q -> %q", i, content, expanded)
	}
	if !changed {
		return nil, false
	}

	newMessages, err := json.Marshal(messages)
	if err != nil {
		return nil, false
	}
	payload["messages"] = newMessages
	out, err := json.Marshal(payload)
	if err != nil {
		return nil, false
	}
	return out, true
}

func isJSONRequest(req *http.Request) bool {
	ct := req.Header.Get("Content-Type")
	return ct == "" || strings.HasPrefix(ct, "application/json")
}
