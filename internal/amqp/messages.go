package amqp

import (
	"encoding/json"
	"errors"
	"time"
)

// Change kinds carried by RecordChangedMessage.
const (
	ChangeCreated = "created"
	ChangeUpdated = "updated"
	ChangeDeleted = "deleted"
)

// RecordChangedMessage announces that the expense collection changed.
// Receivers re-fetch the full list; the id is informational.
type RecordChangedMessage struct {
	Change    string    `json:"change"`
	ID        string    `json:"id"`
	Timestamp time.Time `json:"timestamp"`
}

func NewRecordChangedMessage(change, id string) *RecordChangedMessage {
	return &RecordChangedMessage{
		Change:    change,
		ID:        id,
		Timestamp: time.Now().UTC(),
	}
}

func (m *RecordChangedMessage) ToJSON() ([]byte, error) {
	return json.Marshal(m)
}

// RecordChangedMessageFromJSON decodes and checks a message body.
func RecordChangedMessageFromJSON(data []byte) (*RecordChangedMessage, error) {
	var msg RecordChangedMessage
	if err := json.Unmarshal(data, &msg); err != nil {
		return nil, err
	}
	switch msg.Change {
	case ChangeCreated, ChangeUpdated, ChangeDeleted:
	default:
		return nil, errors.New("unknown change kind: " + msg.Change)
	}
	return &msg, nil
}
