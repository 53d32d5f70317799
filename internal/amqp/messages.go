package amqp

import (
	"encoding/json"
	"time"

	"github.com/google/uuid"
)

// NotificationMessage carries one outbound user notification through the
// broker. ID ties the broker-side record back to the dispatch that
// produced it.
type NotificationMessage struct {
	ID          string    `json:"id"`
	RecipientID int64     `json:"recipient_id"`
	Text        string    `json:"text"`
	CreatedAt   time.Time `json:"created_at"`
}

func NewNotificationMessage(recipientID int64, text string) *NotificationMessage {
	return &NotificationMessage{
		ID:          uuid.NewString(),
		RecipientID: recipientID,
		Text:        text,
		CreatedAt:   time.Now().UTC(),
	}
}

func (m *NotificationMessage) ToJSON() ([]byte, error) {
	return json.Marshal(m)
}

func NotificationMessageFromJSON(data []byte) (*NotificationMessage, error) {
	var m NotificationMessage
	if err := json.Unmarshal(data, &m); err != nil {
		return nil, err
	}
	return &m, nil
}
