package http

import (
	"fmt"
	"reflect"
	"strings"
	"time"

	"github.com/go-playground/validator/v10"

	"renewme/internal/core"
)

// Validate checks request DTOs. Field names in messages follow the JSON tags.
var Validate = newValidator()

func newValidator() *validator.Validate {
	v := validator.New(validator.WithRequiredStructEnabled())
	v.RegisterTagNameFunc(func(fld reflect.StructField) string {
		name := strings.SplitN(fld.Tag.Get("json"), ",", 2)[0]
		if name == "-" {
			return ""
		}
		return name
	})
	_ = v.RegisterValidation("currency", func(fl validator.FieldLevel) bool {
		_, ok := core.LookupCurrency(fl.Field().String())
		return ok
	})
	return v
}

// SubscriptionRequest is the body of create and update calls. Omitted
// optional fields take the defaults of a blank entry form.
type SubscriptionRequest struct {
	ID                 string   `json:"id" validate:"omitempty,max=64"`
	Name               string   `json:"name" validate:"required,max=200"`
	Amount             *float64 `json:"amount" validate:"required,gte=0"`
	Currency           string   `json:"currency" validate:"omitempty,currency"`
	RenewalDate        string   `json:"renewalDate" validate:"required"`
	Frequency          string   `json:"frequency" validate:"omitempty,oneof=weekly monthly yearly"`
	Category           string   `json:"category" validate:"max=100"`
	PaymentMethod      string   `json:"paymentMethod" validate:"max=100"`
	AutoRenew          *bool    `json:"autoRenew"`
	WhatsAppReminder   bool     `json:"whatsappReminder"`
	WhatsAppNumber     string   `json:"whatsappNumber" validate:"max=32"`
	ReminderDaysBefore *int     `json:"reminderDaysBefore" validate:"omitempty,gte=0,lte=365"`
	Description        string   `json:"description" validate:"max=500"`
	IsActive           *bool    `json:"isActive"`
}

// ToSubscription applies the request over the form defaults for now.
func (req SubscriptionRequest) ToSubscription(now time.Time) (core.Subscription, error) {
	renewal, err := parseRenewalDate(req.RenewalDate)
	if err != nil {
		return core.Subscription{}, err
	}

	sub := core.NewSubscriptionDefaults(now)
	sub.ID = sanitizeInput(req.ID)
	sub.Name = sanitizeInput(req.Name)
	sub.Amount = *req.Amount
	sub.RenewalDate = renewal
	if req.Currency != "" {
		sub.Currency = req.Currency
	}
	if req.Frequency != "" {
		sub.Frequency = core.Frequency(req.Frequency)
	}
	if c := sanitizeInput(req.Category); c != "" {
		sub.Category = c
	}
	sub.PaymentMethod = sanitizeInput(req.PaymentMethod)
	if req.AutoRenew != nil {
		sub.AutoRenew = *req.AutoRenew
	}
	sub.WhatsAppReminder = req.WhatsAppReminder
	sub.WhatsAppNumber = sanitizeInput(req.WhatsAppNumber)
	if req.ReminderDaysBefore != nil {
		sub.ReminderDaysBefore = *req.ReminderDaysBefore
	}
	sub.Description = sanitizeInput(req.Description)
	if req.IsActive != nil {
		sub.IsActive = *req.IsActive
	}
	return sub, nil
}

// parseRenewalDate accepts a calendar date, read as local midnight, or a
// full RFC 3339 timestamp.
func parseRenewalDate(v string) (time.Time, error) {
	v = strings.TrimSpace(v)
	if t, err := time.ParseInLocation(time.DateOnly, v, time.Local); err == nil {
		return t, nil
	}
	if t, err := time.Parse(time.RFC3339, v); err == nil {
		return t, nil
	}
	return time.Time{}, fmt.Errorf("%w: %q", core.ErrInvalidRenewalDate, v)
}

// validationMessages renders validator errors one line per field.
func validationMessages(err error) []string {
	verrs, ok := err.(validator.ValidationErrors)
	if !ok {
		return []string{err.Error()}
	}
	msgs := make([]string, 0, len(verrs))
	for _, fe := range verrs {
		field := fe.Field()
		switch fe.Tag() {
		case "required":
			msgs = append(msgs, field+" is required")
		case "max":
			msgs = append(msgs, field+" must be at most "+fe.Param()+" characters")
		case "gte":
			msgs = append(msgs, field+" must be at least "+fe.Param())
		case "lte":
			msgs = append(msgs, field+" must be at most "+fe.Param())
		case "oneof":
			msgs = append(msgs, field+" must be one of: "+fe.Param())
		case "currency":
			msgs = append(msgs, field+" must be one of: "+strings.Join(core.CurrencyCodes(), " "))
		default:
			msgs = append(msgs, field+" is invalid")
		}
	}
	return msgs
}
