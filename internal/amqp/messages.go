package amqp

import (
	"encoding/json"
	"time"
)

// ChangeMessage announces that a record was created, updated or deleted.
// It carries identifiers only; consumers read the record itself if they care.
type ChangeMessage struct {
	Resource  string    `json:"resource"`
	Action    string    `json:"action"`
	ID        string    `json:"id"`
	OwnerID   string    `json:"ownerId"`
	Timestamp time.Time `json:"timestamp"`
}

// NewChangeMessage stamps the message with the current time.
func NewChangeMessage(resource, action, id, ownerID string) *ChangeMessage {
	return &ChangeMessage{
		Resource:  resource,
		Action:    action,
		ID:        id,
		OwnerID:   ownerID,
		Timestamp: time.Now().UTC(),
	}
}

// RoutingKey is "<prefix>.<resource>.<action>", e.g. records.expense.created.
func (m *ChangeMessage) RoutingKey(prefix string) string {
	return prefix + "." + m.Resource + "." + m.Action
}

// ToJSON converts the message to JSON bytes
func (m *ChangeMessage) ToJSON() ([]byte, error) {
	return json.Marshal(m)
}

// ChangeMessageFromJSON decodes a message published by Notify.
func ChangeMessageFromJSON(data []byte) (*ChangeMessage, error) {
	var msg ChangeMessage
	if err := json.Unmarshal(data, &msg); err != nil {
		return nil, err
	}
	return &msg, nil
}
