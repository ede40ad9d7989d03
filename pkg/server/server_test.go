package server

import (
	"bytes"
	"context"
	"strings"
	"testing"

	"github.com/vmihailenco/msgpack/v5"

	"github.com/bastiangx/longhand/pkg/corpus"
	"github.com/bastiangx/longhand/pkg/expand"
	"github.com/bastiangx/longhand/pkg/learn"
)

func testExpander(t *testing.T) *expand.Expander {
	t.Helper()
	c, err := corpus.Default()
	if err != nil {
		t.Fatal(err)
	}
	e, err := expand.New(c, expand.DefaultConfig())
	if err != nil {
		t.Fatal(err)
	}
	return e
}

// runServer feeds encoded requests through a server and returns a
// decoder over everything it wrote.
func runServer(t *testing.T, store learn.Store, reqs ...Request) *msgpack.Decoder {
	t.Helper()

	var in bytes.Buffer
	enc := msgpack.NewEncoder(&in)
	for _, req := range reqs {
		if err := enc.Encode(req); err != nil {
			t.Fatal(err)
		}
	}

	var out bytes.Buffer
	srv := NewServerIO(testExpander(t), store, 0, &in, &out)
	if err := srv.Start(); err != nil {
		t.Fatalf("Server returned error: %v", err)
	}
	return msgpack.NewDecoder(&out)
}

func expectReady(t *testing.T, dec *msgpack.Decoder) {
	t.Helper()
	var status StatusResponse
	if err := dec.Decode(&status); err != nil {
		t.Fatalf("Missing ready status: %v", err)
	}
	if status.Status != "ready" {
		t.Fatalf("Expected ready status, got %q", status.Status)
	}
}

func TestServerExpand(t *testing.T) {
	dec := runServer(t, nil, Request{ID: "r1", Cmd: "expand", Text: "cn y hel me"})
	expectReady(t, dec)

	var resp ExpandResponse
	if err := dec.Decode(&resp); err != nil {
		t.Fatal(err)
	}
	if resp.ID != "r1" {
		t.Errorf("Response ID mismatch: %q", resp.ID)
	}
	if resp.Expanded != "can you help me" {
		t.Errorf("Expected expansion, got %q", resp.Expanded)
	}
	if resp.Confidence <= 0 || resp.Confidence > 1 {
		t.Errorf("Confidence out of range: %v", resp.Confidence)
	}
	if len(resp.Tokens) != 0 {
		t.Errorf("Tokens should be absent without 'd': %+v", resp.Tokens)
	}
}

func TestServerExpandDetailed(t *testing.T) {
	dec := runServer(t, nil, Request{ID: "r1", Cmd: "expand", Text: "cn thin", Detailed: true})
	expectReady(t, dec)

	var resp ExpandResponse
	if err := dec.Decode(&resp); err != nil {
		t.Fatal(err)
	}
	if len(resp.Tokens) != 2 {
		t.Fatalf("Expected 2 token infos, got %d", len(resp.Tokens))
	}
	if resp.Tokens[0].Expanded != "can" || resp.Tokens[1].Outcome != "passthrough" {
		t.Errorf("Unexpected token infos: %+v", resp.Tokens)
	}
}

func TestServerExpandErrors(t *testing.T) {
	testCases := []struct {
		req         Request
		description string
	}{
		{Request{ID: "e1", Cmd: "expand"}, "Missing text"},
		{Request{ID: "e2", Cmd: "expand", Text: strings.Repeat("a ", 6000)}, "Oversized text"},
		{Request{ID: "e3", Cmd: "nope"}, "Unknown cmd"},
		{Request{ID: "e4", Cmd: "learn", Action: "record", Abbrev: "thx", Word: "thanks"}, "Learn without store"},
	}

	for _, tc := range testCases {
		t.Run(tc.description, func(t *testing.T) {
			dec := runServer(t, nil, tc.req)
			expectReady(t, dec)

			var errResp ErrorResponse
			if err := dec.Decode(&errResp); err != nil {
				t.Fatal(err)
			}
			if errResp.ID != tc.req.ID || errResp.Code != 400 {
				t.Errorf("Unexpected error response: %+v", errResp)
			}
		})
	}
}

// a configured limit replaces the default one
func TestServerMaxTextLen(t *testing.T) {
	var in bytes.Buffer
	enc := msgpack.NewEncoder(&in)
	for _, req := range []Request{
		{ID: "m1", Cmd: "expand", Text: "cn y hel"},
		{ID: "m2", Cmd: "expand", Text: "cn y hel me wo"},
	} {
		if err := enc.Encode(req); err != nil {
			t.Fatal(err)
		}
	}

	var out bytes.Buffer
	srv := NewServerIO(testExpander(t), nil, 10, &in, &out)
	if err := srv.Start(); err != nil {
		t.Fatalf("Server returned error: %v", err)
	}
	dec := msgpack.NewDecoder(&out)
	expectReady(t, dec)

	var resp ExpandResponse
	if err := dec.Decode(&resp); err != nil {
		t.Fatal(err)
	}
	if resp.ID != "m1" || resp.Expanded != "can you help" {
		t.Errorf("Text within the limit should expand: %+v", resp)
	}

	var errResp ErrorResponse
	if err := dec.Decode(&errResp); err != nil {
		t.Fatal(err)
	}
	if errResp.ID != "m2" || errResp.Code != 400 {
		t.Errorf("Text over the limit should be rejected: %+v", errResp)
	}
}

func TestServerHealth(t *testing.T) {
	dec := runServer(t, nil, Request{ID: "h1", Cmd: "health"})
	expectReady(t, dec)

	var status StatusResponse
	if err := dec.Decode(&status); err != nil {
		t.Fatal(err)
	}
	if status.ID != "h1" || status.Status != "ok" {
		t.Errorf("Unexpected health response: %+v", status)
	}
}

func TestServerLearn(t *testing.T) {
	store, err := learn.NewFileStore(t.TempDir() + "/learned.json")
	if err != nil {
		t.Fatal(err)
	}

	dec := runServer(t, store,
		Request{ID: "l1", Cmd: "learn", Action: "record", Abbrev: "thx", Word: "thanks"},
		Request{ID: "l2", Cmd: "learn", Action: "get", Abbrev: "thx"},
		Request{ID: "l3", Cmd: "expand", Text: "thx"},
		Request{ID: "l4", Cmd: "learn", Action: "clear"},
	)
	expectReady(t, dec)

	var recorded LearnResponse
	if err := dec.Decode(&recorded); err != nil {
		t.Fatal(err)
	}
	if recorded.Status != "recorded" {
		t.Errorf("Unexpected record response: %+v", recorded)
	}

	var got LearnResponse
	if err := dec.Decode(&got); err != nil {
		t.Fatal(err)
	}
	if got.Word != "thanks" {
		t.Errorf("Expected learned preference, got %+v", got)
	}

	// the recorded correction acts as an override right away
	var expanded ExpandResponse
	if err := dec.Decode(&expanded); err != nil {
		t.Fatal(err)
	}
	if expanded.Expanded != "thanks" {
		t.Errorf("Recorded correction not applied: %q", expanded.Expanded)
	}

	var cleared LearnResponse
	if err := dec.Decode(&cleared); err != nil {
		t.Fatal(err)
	}
	if cleared.Status != "cleared" {
		t.Errorf("Unexpected clear response: %+v", cleared)
	}

	all, err := store.All(context.Background())
	if err != nil {
		t.Fatal(err)
	}
	if len(all) != 0 {
		t.Errorf("Store not cleared: %v", all)
	}
}

func TestServerLearnValidation(t *testing.T) {
	store, err := learn.NewFileStore(t.TempDir() + "/learned.json")
	if err != nil {
		t.Fatal(err)
	}

	dec := runServer(t, store,
		Request{ID: "v1", Cmd: "learn", Action: "record", Abbrev: "thx"},
		Request{ID: "v2", Cmd: "learn", Action: "get"},
		Request{ID: "v3", Cmd: "learn", Action: "bogus"},
	)
	expectReady(t, dec)

	for _, id := range []string{"v1", "v2", "v3"} {
		var errResp ErrorResponse
		if err := dec.Decode(&errResp); err != nil {
			t.Fatal(err)
		}
		if errResp.ID != id || errResp.Code != 400 {
			t.Errorf("Unexpected error response: %+v", errResp)
		}
	}
}

func TestServerEOF(t *testing.T) {
	var in, out bytes.Buffer
	srv := NewServerIO(testExpander(t), nil, 0, &in, &out)
	if err := srv.Start(); err != nil {
		t.Errorf("EOF should end the loop cleanly, got %v", err)
	}
}
