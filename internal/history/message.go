package history

import "time"

// Role identifies who authored a message.
type Role string

const (
	RoleUser      Role = "user"
	RoleAssistant Role = "assistant"
)

// Greeting is the seed assistant message every conversation starts with.
const Greeting = "¡Hola! ¿En qué puedo ayudarte hoy con respecto a becas?"

// Message is a single entry of the conversation. Messages are never edited;
// CreatedAt is fixed when the message is appended.
type Message struct {
	Role      Role      `json:"role"`
	Content   string    `json:"content"`
	CreatedAt time.Time `json:"created_at"`
}

// User builds a user message stamped with now.
func User(content string, now time.Time) Message {
	return Message{Role: RoleUser, Content: content, CreatedAt: now}
}

// Assistant builds an assistant message stamped with now.
func Assistant(content string, now time.Time) Message {
	return Message{Role: RoleAssistant, Content: content, CreatedAt: now}
}
