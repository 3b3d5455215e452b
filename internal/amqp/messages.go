package amqp

import (
	"encoding/json"
	"time"

	"renewme/internal/core"
)

// SubscriptionChangedMessage announces that a command changed the list.
// Consumers reload the full list; the message carries no record data.
// Revisions are only ordered between messages of the same Source.
type SubscriptionChangedMessage struct {
	Action    string    `json:"action"`
	ID        string    `json:"id,omitempty"`
	Source    string    `json:"source,omitempty"`
	Revision  int64     `json:"revision"`
	Timestamp time.Time `json:"timestamp"`
}

// NewSubscriptionChangedMessage creates a change notification stamped now.
func NewSubscriptionChangedMessage(action, id, source string, revision int64) *SubscriptionChangedMessage {
	return &SubscriptionChangedMessage{
		Action:    action,
		ID:        id,
		Source:    source,
		Revision:  revision,
		Timestamp: time.Now(),
	}
}

// ToJSON converts the message to JSON bytes
func (m *SubscriptionChangedMessage) ToJSON() ([]byte, error) {
	return json.Marshal(m)
}

// SubscriptionChangedMessageFromJSON decodes a change notification.
func SubscriptionChangedMessageFromJSON(data []byte) (*SubscriptionChangedMessage, error) {
	var msg SubscriptionChangedMessage
	if err := json.Unmarshal(data, &msg); err != nil {
		return nil, err
	}
	return &msg, nil
}

// ReminderDueMessage carries everything a delivery service needs to send one
// renewal reminder.
type ReminderDueMessage struct {
	SubscriptionID   string    `json:"subscriptionId"`
	Name             string    `json:"name"`
	Amount           float64   `json:"amount"`
	Currency         string    `json:"currency"`
	FormattedAmount  string    `json:"formattedAmount"`
	RenewalDate      time.Time `json:"renewalDate"`
	DaysUntilRenewal int       `json:"daysUntilRenewal"`
	WhatsAppNumber   string    `json:"whatsappNumber"`
	Timestamp        time.Time `json:"timestamp"`
}

// NewReminderDueMessage builds the message for one reminder queue entry.
func NewReminderDueMessage(r core.Reminder) *ReminderDueMessage {
	s := r.Subscription
	return &ReminderDueMessage{
		SubscriptionID:   s.ID,
		Name:             s.Name,
		Amount:           s.Amount,
		Currency:         s.Currency,
		FormattedAmount:  core.FormatCurrency(s.Amount, s.Currency),
		RenewalDate:      s.RenewalDate,
		DaysUntilRenewal: r.DaysUntilRenewal,
		WhatsAppNumber:   s.WhatsAppNumber,
		Timestamp:        time.Now(),
	}
}

// ToJSON converts the message to JSON bytes
func (m *ReminderDueMessage) ToJSON() ([]byte, error) {
	return json.Marshal(m)
}

// ReminderDueMessageFromJSON decodes a reminder message.
func ReminderDueMessageFromJSON(data []byte) (*ReminderDueMessage, error) {
	var msg ReminderDueMessage
	if err := json.Unmarshal(data, &msg); err != nil {
		return nil, err
	}
	return &msg, nil
}
