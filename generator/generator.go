package generator

import "context"

// Generator produces one utterance from a prompt. Implementations make a
// single attempt against their backend: any transport error, malformed
// response or empty candidate list is surfaced as an error with no partial
// state retained. The context bounds and cancels the call.
type Generator interface {
	Generate(ctx context.Context, prompt string) (string, error)
}

// Func adapts an ordinary function to the Generator interface.
type Func func(ctx context.Context, prompt string) (string, error)

// Generate implements Generator.
func (f Func) Generate(ctx context.Context, prompt string) (string, error) { return f(ctx, prompt) }
