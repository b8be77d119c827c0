package domain

// Chat roles.
const (
	RoleSystem    = "system"
	RoleUser      = "user"
	RoleAssistant = "assistant"
)

// ChatMessage represents a single message in a conversation.
type ChatMessage struct {
	// Role is one of "system", "user", or "assistant".
	Role string `json:"role"`

	// Content is the message text.
	Content string `json:"content"`
}

// Sampling configures nucleus sampling and repetition penalty.
type Sampling struct {
	TopP             float64
	FrequencyPenalty float64
}

// Choice is one ranked completion returned by a provider.
type Choice struct {
	Message      ChatMessage `json:"message"`
	FinishReason string      `json:"finish_reason,omitempty"`
}

// FirstContent returns the content of the top-ranked choice, or "".
func FirstContent(choices []Choice) string {
	if len(choices) == 0 {
		return ""
	}
	return choices[0].Message.Content
}
