package ws

import "encoding/json"

// Message types exchanged over the live submission feed.
const (
	TypeSubmissionRecorded = "submission_recorded"
	TypeError              = "error"
	TypePing               = "ping"
	TypePong               = "pong"
)

// Message is the WebSocket envelope.
type Message struct {
	Type    string          `json:"type"`
	Payload json.RawMessage `json:"payload,omitempty"`
}

// NewMessage builds a message, marshalling the payload.
func NewMessage(msgType string, payload any) (Message, error) {
	raw, err := json.Marshal(payload)
	if err != nil {
		return Message{}, err
	}
	return Message{Type: msgType, Payload: raw}, nil
}

// ErrorPayload reports a feed-level error to the client.
type ErrorPayload struct {
	Code    string `json:"code"`
	Message string `json:"message"`
}
