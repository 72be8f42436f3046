// internal/models/chat.go
package models

// ChatMessage is a single conversation turn, both as accepted from clients
// (after sanitization) and as sent to the completion service.
type ChatMessage struct {
	Role    string `json:"role"`
	Content string `json:"content"`
}

// Citation is one entry of the raw citation list returned by the completion
// service. List position is significant: position = the 1-based marker number
// used in the raw answer text. Page-like fields arrive as arbitrary JSON
// scalars, so they stay untyped until the reconciler inspects them.
type Citation struct {
	URL        string      `json:"url,omitempty"`
	Title      string      `json:"title,omitempty"`
	Page       interface{} `json:"page,omitempty"`
	PageNumber interface{} `json:"pageNumber,omitempty"`
	ChunkID    interface{} `json:"chunk_id,omitempty"`
}

// Reference is one resolved entry of the response reference list.
type Reference struct {
	Index int    `json:"index"`
	Title string `json:"title"`
	URL   string `json:"url"`
}

// AskRequest is the inbound body of POST /api/ask-ai. History entries are kept
// untyped because clients send extra fields (ids, timestamps) and occasionally
// junk entries; sanitization reduces them to ChatMessage or drops them.
type AskRequest struct {
	Message string        `json:"message"`
	History []interface{} `json:"history"`
}

// AskResponse is the success body of POST /api/ask-ai.
type AskResponse struct {
	Answer     string        `json:"answer"`
	History    []ChatMessage `json:"history"`
	References []Reference   `json:"references"`
}
