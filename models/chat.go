package models

// ChatRole represents the author of a chat message
type ChatRole string

const (
	RoleUser      ChatRole = "user"
	RoleAssistant ChatRole = "assistant"
)

// ChatMessage represents a single entry in the chat transcript
type ChatMessage struct {
	Role    ChatRole `json:"role"`
	Content string   `json:"content"`
}

// GenerationRequest is a single prompt sent to the text-generation service
type GenerationRequest struct {
	Prompt          string
	Temperature     float32
	MaxOutputTokens int32
}

// GenerationResponse carries the generated text
type GenerationResponse struct {
	Text         string
	FinishReason string
}
