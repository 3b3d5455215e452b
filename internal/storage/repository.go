package storage

import (
	"context"
	"database/sql"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"time"

	"renewme/internal/core"
	"renewme/internal/store"

	_ "modernc.org/sqlite"
)

var _ store.SubscriptionStore = (*SQLiteRepository)(nil)

type SQLiteRepository struct {
	db *sql.DB
}

func NewSQLiteRepository(dbPath string) (*SQLiteRepository, error) {
	if err := os.MkdirAll(filepath.Dir(dbPath), 0755); err != nil {
		return nil, fmt.Errorf("create db directory: %w", err)
	}

	db, err := sql.Open("sqlite", dbPath)
	if err != nil {
		return nil, fmt.Errorf("open sqlite database: %w", err)
	}
	// One writer; Save replaces the table inside a transaction.
	db.SetMaxOpenConns(1)

	if err := db.Ping(); err != nil {
		db.Close()
		return nil, fmt.Errorf("ping database: %w", err)
	}

	if err := RunMigrations(dbPath); err != nil {
		db.Close()
		return nil, fmt.Errorf("run migrations: %w", err)
	}

	return &SQLiteRepository{db: db}, nil
}

func (r *SQLiteRepository) Close() error {
	if r.db != nil {
		return r.db.Close()
	}
	return nil
}

const selectSubscriptions = `
SELECT id, name, amount, currency, renewal_date, frequency, category,
       payment_method, description, auto_renew, is_active,
       whatsapp_reminder, whatsapp_number, reminder_days_before, created_at
FROM subscriptions
ORDER BY position`

const insertSubscription = `
INSERT INTO subscriptions (
    id, position, name, amount, currency, renewal_date, frequency, category,
    payment_method, description, auto_renew, is_active,
    whatsapp_reminder, whatsapp_number, reminder_days_before, created_at
) VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)`

// Load implements store.SubscriptionStore
func (r *SQLiteRepository) Load(ctx context.Context) ([]core.Subscription, error) {
	rows, err := r.db.QueryContext(ctx, selectSubscriptions)
	if err != nil {
		return nil, fmt.Errorf("query subscriptions: %w", err)
	}
	defer rows.Close()

	subs := []core.Subscription{}
	for rows.Next() {
		var (
			s                   core.Subscription
			frequency           string
			renewal, created    string
			autoRenew, isActive bool
			reminder            bool
		)
		if err := rows.Scan(&s.ID, &s.Name, &s.Amount, &s.Currency, &renewal, &frequency, &s.Category,
			&s.PaymentMethod, &s.Description, &autoRenew, &isActive,
			&reminder, &s.WhatsAppNumber, &s.ReminderDaysBefore, &created); err != nil {
			return nil, fmt.Errorf("scan subscription: %w", err)
		}
		s.Frequency = core.Frequency(frequency)
		s.AutoRenew = autoRenew
		s.IsActive = isActive
		s.WhatsAppReminder = reminder
		if s.RenewalDate, err = parseTime(renewal); err != nil {
			return nil, fmt.Errorf("subscription %s renewal_date: %w", s.ID, err)
		}
		if s.CreatedAt, err = parseTime(created); err != nil {
			return nil, fmt.Errorf("subscription %s created_at: %w", s.ID, err)
		}
		subs = append(subs, s)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate subscriptions: %w", err)
	}
	return subs, nil
}

// Save implements store.SubscriptionStore. The table is replaced in one
// transaction so readers never see a partial list.
func (r *SQLiteRepository) Save(ctx context.Context, subs []core.Subscription) error {
	tx, err := r.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("begin transaction: %w", err)
	}
	defer tx.Rollback()

	if _, err := tx.ExecContext(ctx, `DELETE FROM subscriptions`); err != nil {
		return fmt.Errorf("clear subscriptions: %w", err)
	}

	stmt, err := tx.PrepareContext(ctx, insertSubscription)
	if err != nil {
		return fmt.Errorf("prepare insert: %w", err)
	}
	defer stmt.Close()

	for i, s := range subs {
		_, err := stmt.ExecContext(ctx,
			s.ID, i, s.Name, s.Amount, s.Currency, formatTime(s.RenewalDate), string(s.Frequency), s.Category,
			s.PaymentMethod, s.Description, s.AutoRenew, s.IsActive,
			s.WhatsAppReminder, s.WhatsAppNumber, s.ReminderDaysBefore, formatTime(s.CreatedAt))
		if err != nil {
			return fmt.Errorf("insert subscription %s: %w", s.ID, err)
		}
	}

	if err := tx.Commit(); err != nil {
		return fmt.Errorf("commit: %w", err)
	}

	slog.DebugContext(ctx, "Subscriptions saved to SQLite", "count", len(subs))
	return nil
}

func formatTime(t time.Time) string {
	return t.Format(time.RFC3339Nano)
}

func parseTime(s string) (time.Time, error) {
	return time.Parse(time.RFC3339Nano, s)
}
