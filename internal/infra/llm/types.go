// Package llm defines the model-agnostic LLM provider abstraction.
// All types here are shared between the provider interface and adapters.
package llm

// Message represents a single turn in a conversation (role + content).
type Message struct {
	Role    string // "system" | "user" | "assistant"
	Content string
}

// ChatRequest is the input for a non-streaming chat completion.
type ChatRequest struct {
	// Model overrides the provider default when non-empty. The suggestion
	// coordinator passes the user's model choice through here untouched.
	Model       string
	Messages    []Message
	Temperature float32
	MaxTokens   int
}

// ChatResponse is the output from a non-streaming chat completion.
type ChatResponse struct {
	Content    string // The assistant message text.
	StopReason string // "stop" | "length" | "error"
}

// ModelMeta describes the model / provider identity.
type ModelMeta struct {
	ID        string // e.g. "llama3.2:3b"
	Provider  string // e.g. "ollama"
	Version   string
	MaxTokens int // Maximum context window size.
}
