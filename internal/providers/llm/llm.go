package llm

import "context"

type Provider interface {
	// Complete sends one prompt and returns the whole reply text.
	Complete(ctx context.Context, prompt string) (string, error)
	Close() error
}
