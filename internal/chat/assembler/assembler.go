// internal/chat/assembler/assembler.go
package assembler

import (
	"strings"

	"askai-service/internal/models"
)

// greetings are matched against the trimmed, lowercased message before any
// upstream call is made.
var greetings = map[string]struct{}{
	"hello":     {},
	"hi":        {},
	"hey":       {},
	"greetings": {},
}

// IsGreeting reports whether the message is a bare greeting.
func IsGreeting(message string) bool {
	_, ok := greetings[strings.ToLower(strings.TrimSpace(message))]
	return ok
}

// SanitizeHistory keeps only well-formed conversation turns: objects whose
// role and content are non-empty strings. Extra fields (client-side ids and
// the like) are dropped.
func SanitizeHistory(history []interface{}) []models.ChatMessage {
	sanitized := make([]models.ChatMessage, 0, len(history))
	for _, turn := range history {
		m, ok := turn.(map[string]interface{})
		if !ok {
			continue
		}
		role, ok := m["role"].(string)
		if !ok || role == "" {
			continue
		}
		content, ok := m["content"].(string)
		if !ok || content == "" {
			continue
		}
		sanitized = append(sanitized, models.ChatMessage{Role: role, Content: content})
	}
	return sanitized
}

// Assemble builds the upstream message list: the system prompt first, then
// the sanitized history, then the user's question.
func Assemble(systemPrompt string, history []models.ChatMessage, userMessage string) []models.ChatMessage {
	messages := make([]models.ChatMessage, 0, len(history)+2)
	messages = append(messages, models.ChatMessage{Role: "system", Content: systemPrompt})
	messages = append(messages, history...)
	messages = append(messages, models.ChatMessage{Role: "user", Content: userMessage})
	return messages
}

// EchoHistory builds the history returned on every successful response: the
// sanitized turns followed by the user's question and the assistant's answer.
func EchoHistory(history []models.ChatMessage, userMessage, answer string) []models.ChatMessage {
	echoed := make([]models.ChatMessage, 0, len(history)+2)
	echoed = append(echoed, history...)
	echoed = append(echoed, models.ChatMessage{Role: "user", Content: userMessage})
	echoed = append(echoed, models.ChatMessage{Role: "assistant", Content: answer})
	return echoed
}
