package domain

import "context"

// Message roles for chat completion prompts.
const (
	RoleSystem = "system"
	RoleUser   = "user"
)

// Message is one prompt message for the chat model.
type Message struct {
	Role    string
	Content string
}

// ChatModel is the remote chat completion contract. Both operations take the
// full prompt; the provider decides everything else from its own settings
// (model name, sampling temperature, output cap).
type ChatModel interface {
	// Complete returns the full generated text in one call.
	Complete(ctx context.Context, messages []Message) (string, error)
	// Stream starts an incremental completion. The returned stream must be
	// closed by the caller; abandoning it mid-way releases the underlying
	// connection.
	Stream(ctx context.Context, messages []Message) (ChatStream, error)
}

// ChatStream yields incremental text fragments in generation order.
type ChatStream interface {
	// Recv returns the next fragment, or io.EOF once generation completes.
	// Fragments may be empty; callers filter those rather than forward them.
	Recv() (string, error)
	Close() error
}
