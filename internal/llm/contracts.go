package llm

import "context"

// CompletionRequest is one prompt for one model.
type CompletionRequest struct {
	Model       string
	System      string
	User        string
	Temperature float64
}

// Completer is the interface the pipeline depends on: prompt in, text out.
// Provider differences (transport, auth, base URL) live behind it.
type Completer interface {
	Complete(ctx context.Context, req CompletionRequest) (string, error)
}
