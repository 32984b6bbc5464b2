package ai

import "context"

// Client is the LLM boundary. Generate may fail or time out; callers must
// treat failure as non-fatal.
type Client interface {
	Generate(ctx context.Context, system, user string) (string, error)
}
