package models

import "time"

// Sender identifies who authored a message.
type Sender string

const (
	SenderUser      Sender = "user"
	SenderAssistant Sender = "assistant"
)

// Message is a single entry in a session transcript. Once appended to a
// store its fields never change; corrections arrive as new messages.
// Assistant messages additionally carry their classified block sequence,
// which is the form the renderer draws.
type Message struct {
	ID        string         `json:"id"`
	Sender    Sender         `json:"sender"`
	Text      string         `json:"text"`
	Blocks    []ContentBlock `json:"blocks,omitempty"`
	CreatedAt time.Time      `json:"created_at"`
}
