// Package provider talks to OpenAI-compatible chat-completion APIs.
package provider

import "context"

// Chat roles.
const (
	RoleSystem    = "system"
	RoleUser      = "user"
	RoleAssistant = "assistant"
)

// Message is one role-tagged chat message.
type Message struct {
	Role    string `json:"role"`
	Content string `json:"content"`
}

// Request describes a single completion call.
type Request struct {
	// Model overrides the client's default model when non-empty.
	Model       string
	Messages    []Message
	Temperature *float64
	MaxTokens   int
	// JSON asks the provider for a JSON object response.
	JSON bool
}

// Completion is the provider's answer.
type Completion struct {
	Content   string
	Citations []string
	Model     string
}

// Completer issues chat completions.
type Completer interface {
	Complete(ctx context.Context, req Request) (*Completion, error)
}

// Temperature returns a pointer for Request.Temperature.
func Temperature(t float64) *float64 { return &t }

// System builds a system message.
func System(content string) Message { return Message{Role: RoleSystem, Content: content} }

// User builds a user message.
func User(content string) Message { return Message{Role: RoleUser, Content: content} }
