package messages

import (
	"encoding/json"
	"fmt"
)

// Message is the base interface for all messages crossing the router.
type Message interface {
	Type() string
}

// MessageType constants for type identification
const (
	TypeCopyToClipboard = "copyToClipboard"
)

// CopyToClipboard - sent by the selection watcher when the selection holds text
type CopyToClipboard struct {
	Text string
}

func (m CopyToClipboard) Type() string { return TypeCopyToClipboard }

// Unknown is what Decode yields for a tag nobody defined here.
type Unknown struct {
	Kind string
}

func (m Unknown) Type() string { return m.Kind }

// Envelope carries an encoded message between processes.
type Envelope struct {
	From    string
	To      string
	Payload []byte
}

// ProcessNames - constants for process identification
const (
	ProcessSelection = "selection"
	ProcessClipboard = "clipboard"
)

type wire struct {
	Type string `json:"type"`
	Text string `json:"text,omitempty"`
}

// Encode serializes m into its wire form: {"type": ..., "text": ...}.
func Encode(m Message) ([]byte, error) {
	if m == nil {
		return nil, fmt.Errorf("encode: nil message")
	}
	w := wire{Type: m.Type()}
	if c, ok := m.(CopyToClipboard); ok {
		w.Text = c.Text
	}
	return json.Marshal(w)
}

// Decode parses a wire payload. Only the discriminator is checked.
func Decode(payload []byte) (Message, error) {
	var w wire
	if err := json.Unmarshal(payload, &w); err != nil {
		return nil, fmt.Errorf("decode: %w", err)
	}
	switch w.Type {
	case TypeCopyToClipboard:
		return CopyToClipboard{Text: w.Text}, nil
	default:
		return Unknown{Kind: w.Type}, nil
	}
}
