package core

import (
	"errors"
	"strings"
	"time"
)

const (
	Weekly  Frequency = "weekly"
	Monthly Frequency = "monthly"
	Yearly  Frequency = "yearly"
)

type (
	// Frequency is the billing cadence of a subscription.
	Frequency string

	// Subscription is one recurring payment. JSON names match the browser
	// blob the app historically kept in local storage.
	Subscription struct {
		ID                 string    `json:"id"`
		Name               string    `json:"name"`
		Amount             float64   `json:"amount"`
		Currency           string    `json:"currency"`
		RenewalDate        time.Time `json:"renewalDate"`
		Frequency          Frequency `json:"frequency"`
		Category           string    `json:"category"`
		PaymentMethod      string    `json:"paymentMethod"`
		AutoRenew          bool      `json:"autoRenew"`
		WhatsAppReminder   bool      `json:"whatsappReminder"`
		WhatsAppNumber     string    `json:"whatsappNumber"`
		ReminderDaysBefore int       `json:"reminderDaysBefore"`
		Description        string    `json:"description,omitempty"`
		IsActive           bool      `json:"isActive"`
		CreatedAt          time.Time `json:"createdAt"`
	}
)

// Frequencies lists the supported cadences in display order.
var Frequencies = []Frequency{Weekly, Monthly, Yearly}

// Categories lists the categories offered to clients. Records may carry any
// free-text category; this list only seeds pickers.
var Categories = []string{
	"Entertainment", "Health", "Utilities", "Software",
	"Education", "Transportation", "Food", "Other",
}

var (
	ErrEmptyName            = errors.New("empty name")
	ErrInvalidAmount        = errors.New("invalid amount")
	ErrInvalidCurrency      = errors.New("unsupported currency")
	ErrInvalidFrequency     = errors.New("invalid frequency")
	ErrInvalidRenewalDate   = errors.New("invalid renewal date")
	ErrInvalidReminderDays  = errors.New("invalid reminder days")
	ErrSubscriptionNotFound = errors.New("subscription not found")
	ErrDuplicateID          = errors.New("duplicate subscription id")
	ErrNameTooLong          = errors.New("name too long (max 200 characters)")
	ErrDescriptionTooLong   = errors.New("description too long (max 500 characters)")
)

var validationErrors = []error{
	ErrEmptyName, ErrNameTooLong, ErrInvalidAmount, ErrInvalidCurrency,
	ErrInvalidFrequency, ErrInvalidRenewalDate, ErrInvalidReminderDays,
	ErrDescriptionTooLong,
}

// IsValidationError reports whether err comes from Subscription.Validate.
func IsValidationError(err error) bool {
	for _, target := range validationErrors {
		if errors.Is(err, target) {
			return true
		}
	}
	return false
}

// IsValid reports whether f is one of the supported cadences.
func (f Frequency) IsValid() bool {
	switch f {
	case Weekly, Monthly, Yearly:
		return true
	default:
		return false
	}
}

func (f Frequency) String() string {
	return string(f)
}

// Title returns the cadence with its first letter upper-cased ("Monthly").
func (f Frequency) Title() string {
	if f == "" {
		return ""
	}
	return strings.ToUpper(string(f[:1])) + string(f[1:])
}

func (s Subscription) Validate() error {
	if strings.TrimSpace(s.Name) == "" {
		return ErrEmptyName
	}
	if len(s.Name) > 200 {
		return ErrNameTooLong
	}
	if s.Amount < 0 || s.Amount != s.Amount {
		return ErrInvalidAmount
	}
	if _, ok := LookupCurrency(s.Currency); !ok {
		return ErrInvalidCurrency
	}
	if s.RenewalDate.IsZero() {
		return ErrInvalidRenewalDate
	}
	if !s.Frequency.IsValid() {
		return ErrInvalidFrequency
	}
	if s.ReminderDaysBefore < 0 {
		return ErrInvalidReminderDays
	}
	if len(s.Description) > 500 {
		return ErrDescriptionTooLong
	}
	return nil
}

// WantsReminder reports whether the record qualifies for the reminder queue
// regardless of its renewal window. A record asking for reminders without a
// number is valid but never queued.
func (s Subscription) WantsReminder() bool {
	return s.IsActive && s.WhatsAppReminder && s.WhatsAppNumber != ""
}

// NewSubscriptionDefaults returns the values a blank entry form starts from.
func NewSubscriptionDefaults(now time.Time) Subscription {
	return Subscription{
		Currency:           "NGN",
		RenewalDate:        now,
		Frequency:          Monthly,
		Category:           Categories[0],
		AutoRenew:          true,
		ReminderDaysBefore: 1,
		IsActive:           true,
	}
}
