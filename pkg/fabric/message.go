package fabric

import (
	"encoding/json"

	"webframe/pkg/frameerr"
)

// Message is the payload exchanged over the fabric. It is an open record:
// unknown fields survive a parse/serialize round trip and the timestamp is
// genuinely optional rather than defaulted.
type Message struct {
	Text      string
	Timestamp string
	Extra     map[string]any
}

type messageFields struct {
	Text      *string `json:"message"`
	Timestamp *string `json:"timestamp"`
}

// ParseMessage decodes a serialized Message, tolerating unknown fields.
func ParseMessage(raw string) (Message, error) {
	var known messageFields
	if err := json.Unmarshal([]byte(raw), &known); err != nil {
		return Message{}, frameerr.Wrap(frameerr.CategoryInvalidPayload, "", err)
	}
	if known.Text == nil {
		return Message{}, frameerr.New(frameerr.CategoryInvalidPayload, "missing message field")
	}

	var all map[string]any
	if err := json.Unmarshal([]byte(raw), &all); err != nil {
		return Message{}, frameerr.Wrap(frameerr.CategoryInvalidPayload, "", err)
	}
	delete(all, "message")
	delete(all, "timestamp")
	if len(all) == 0 {
		all = nil
	}

	msg := Message{Text: *known.Text, Extra: all}
	if known.Timestamp != nil {
		msg.Timestamp = *known.Timestamp
	}

	return msg, nil
}

// MarshalJSON serializes the documented fields and merges retained extras.
func (m Message) MarshalJSON() ([]byte, error) {
	fields := make(map[string]any, len(m.Extra)+2)
	for key, value := range m.Extra {
		fields[key] = value
	}
	fields["message"] = m.Text
	if m.Timestamp != "" {
		fields["timestamp"] = m.Timestamp
	}

	return json.Marshal(fields)
}
