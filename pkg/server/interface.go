/*
Package server implements msgpack IPC for the expansion engine.

The server speaks binary msgpack over stdin/stdout so editors and other
host processes can expand shorthand without linking the engine. Each
message carries an ID the client chooses and a cmd selecting the
operation; messages are processed synchronously with timing info in the
response.

# IPC

Expansion requests use this structure (shown as JSON for readability):

	{"id": "req_001", "cmd": "expand", "t": "cn y hel me", "sl": false, "d": false}

The server responds with the expanded text and confidence:

	{"id": "req_001", "x": "can you help me", "c": 0.83, "ms": 2, "a": []}

With "d" set, the response additionally carries per-token outcomes.

Correction requests feed the learning store:

	{"id": "lrn_001", "cmd": "learn", "action": "record", "ab": "thx", "w": "thanks"}
	{"id": "lrn_002", "cmd": "learn", "action": "get", "ab": "thx"}
	{"id": "lrn_003", "cmd": "learn", "action": "clear"}

A "health" cmd answers with a status message; the server also emits a
ready status when it starts so hosts know when to begin sending.

msgpack keeps messages compact and avoids JSON string escaping costs on
every round trip; a raw Decoder/Encoder pair on the pipe handles
framing.
*/
package server

// Request is the single incoming message envelope. Cmd selects the
// operation: "expand", "learn", "health".
type Request struct {
	ID  string `msgpack:"id"`
	Cmd string `msgpack:"cmd"`

	// expand fields
	Text      string `msgpack:"t,omitempty"`
	Spaceless bool   `msgpack:"sl,omitempty"`
	Detailed  bool   `msgpack:"d,omitempty"`

	// learn fields; Action is "record", "get" or "clear"
	Action string `msgpack:"action,omitempty"`
	Abbrev string `msgpack:"ab,omitempty"`
	Word   string `msgpack:"w,omitempty"`
}

// TokenInfo is one per-token outcome in a detailed response.
type TokenInfo struct {
	Original   string  `msgpack:"o"`
	Expanded   string  `msgpack:"x"`
	Confidence float64 `msgpack:"c"`
	Outcome    string  `msgpack:"r"`
}

// ExpandResponse answers an expand request.
type ExpandResponse struct {
	ID         string      `msgpack:"id"`
	Expanded   string      `msgpack:"x"`
	Confidence float64     `msgpack:"c"`
	TimeTaken  int64       `msgpack:"ms"`
	Ambiguous  []int       `msgpack:"a"`
	LLMErr     string      `msgpack:"le,omitempty"`
	Tokens     []TokenInfo `msgpack:"tk,omitempty"`
}

// LearnResponse answers a learn request.
type LearnResponse struct {
	ID     string `msgpack:"id"`
	Status string `msgpack:"status"`
	Word   string `msgpack:"w,omitempty"`
}

// StatusResponse reports server state ("ready", "ok").
type StatusResponse struct {
	ID     string `msgpack:"id,omitempty"`
	Status string `msgpack:"status"`
}

// ErrorResponse reports a failed request.
type ErrorResponse struct {
	ID    string `msgpack:"id"`
	Error string `msgpack:"e"`
	Code  int    `msgpack:"c"`
}
