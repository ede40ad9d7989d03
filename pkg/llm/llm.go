/*
Package llm is the optional network-bound disambiguation fallback.

The engine hands over one batch of ambiguous tokens per expansion; the
resolver returns its pick per token index. Everything here is strictly
optional: the engine works without a resolver, and a resolver failure
only degrades confidence, never the expansion itself.
*/
package llm

import (
	"context"
	"errors"
)

// ErrResolve is wrapped by every resolver failure surfaced to callers.
var ErrResolve = errors.New("llm: resolve failed")

// Query describes one ambiguous token offered to the resolver.
type Query struct {
	// Index is the token's position in the expansion, used to map the
	// answer back.
	Index int
	// Token is the original surface form.
	Token string
	// Candidates are the local best guesses, best first.
	Candidates []string
}

// Resolver answers one batched disambiguation request per expansion.
// Implementations must honor ctx cancellation; the engine calls with a
// hard deadline and uses its local guesses on any error.
type Resolver interface {
	ResolveBatch(ctx context.Context, queries []Query, sentence string) (map[int]string, error)
}
