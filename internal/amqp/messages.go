package amqp

import (
	"encoding/json"
	"fmt"
	"time"
)

// EventRecordDeleted is the type of RecordDeletedMessage.
const EventRecordDeleted = "record.deleted"

// RecordDeletedMessage announces that a record was deleted from a list.
type RecordDeletedMessage struct {
	Type      string    `json:"type"`
	List      string    `json:"list"`
	Endpoint  string    `json:"endpoint"`
	RecordID  string    `json:"record_id"`
	Timestamp time.Time `json:"timestamp"`
}

// NewRecordDeletedMessage creates a deletion event stamped with the current time.
func NewRecordDeletedMessage(list, endpoint, id string) *RecordDeletedMessage {
	return &RecordDeletedMessage{
		Type:      EventRecordDeleted,
		List:      list,
		Endpoint:  endpoint,
		RecordID:  id,
		Timestamp: time.Now().UTC(),
	}
}

// ToJSON converts the message to JSON bytes
func (m *RecordDeletedMessage) ToJSON() ([]byte, error) {
	return json.Marshal(m)
}

// RecordDeletedMessageFromJSON parses a deletion event.
func RecordDeletedMessageFromJSON(data []byte) (*RecordDeletedMessage, error) {
	var msg RecordDeletedMessage
	if err := json.Unmarshal(data, &msg); err != nil {
		return nil, err
	}
	if msg.Type != EventRecordDeleted {
		return nil, fmt.Errorf("unexpected event type %q", msg.Type)
	}
	if msg.RecordID == "" {
		return nil, fmt.Errorf("event without record id")
	}
	return &msg, nil
}
