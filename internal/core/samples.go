package core

import "time"

const day = 24 * time.Hour

// SampleSubscriptions returns the demo records seeded into an empty store,
// with renewal and creation dates relative to now.
func SampleSubscriptions(now time.Time) []Subscription {
	return []Subscription{
		{
			ID: "1", Name: "Netflix", Amount: 15.99, Currency: "USD",
			RenewalDate: now.Add(3 * day), Frequency: Monthly, Category: "Entertainment",
			PaymentMethod: "Credit Card", AutoRenew: true,
			WhatsAppReminder: true, WhatsAppNumber: "+1234567890", ReminderDaysBefore: 2,
			Description: "Video streaming service", IsActive: true,
			CreatedAt: now.Add(-30 * day),
		},
		{
			ID: "2", Name: "DSTV Premium", Amount: 18000, Currency: "NGN",
			RenewalDate: now.Add(10 * day), Frequency: Monthly, Category: "Entertainment",
			PaymentMethod: "Bank Transfer", AutoRenew: true,
			ReminderDaysBefore: 1,
			Description:        "Satellite TV subscription", IsActive: true,
			CreatedAt: now.Add(-60 * day),
		},
		{
			ID: "3", Name: "Gym Membership", Amount: 500, Currency: "GHS",
			RenewalDate: now.Add(1 * day), Frequency: Monthly, Category: "Health",
			PaymentMethod: "Mobile Money", AutoRenew: true,
			WhatsAppReminder: true, WhatsAppNumber: "+2330000000", ReminderDaysBefore: 1,
			Description: "Monthly gym access", IsActive: true,
			CreatedAt: now.Add(-15 * day),
		},
		{
			ID: "4", Name: "Spotify Premium", Amount: 9.99, Currency: "USD",
			RenewalDate: now.Add(7 * day), Frequency: Monthly, Category: "Entertainment",
			PaymentMethod: "PayPal", AutoRenew: true,
			WhatsAppReminder: true, WhatsAppNumber: "+23480000000", ReminderDaysBefore: 3,
			Description: "Music streaming service", IsActive: true,
			CreatedAt: now.Add(-45 * day),
		},
	}
}
