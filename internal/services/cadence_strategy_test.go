package services

import (
	"math"
	"testing"
	"time"

	"renewme/internal/core"
)

func TestMonthlyEquivalent(t *testing.T) {
	tests := []struct {
		name      string
		frequency core.Frequency
		amount    float64
		want      float64
	}{
		{"monthly is unchanged", core.Monthly, 15.99, 15.99},
		{"weekly times 4.33", core.Weekly, 10, 43.3},
		{"weekly fraction", core.Weekly, 2.5, 2.5 * 4.33},
		{"yearly over 12", core.Yearly, 120, 10},
		{"yearly fraction", core.Yearly, 99.99, 99.99 / 12},
		{"unknown contributes zero", core.Frequency("daily"), 50, 0},
		{"zero amount", core.Weekly, 0, 0},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := MonthlyEquivalent(core.Subscription{Amount: tt.amount, Frequency: tt.frequency})
			if math.Abs(got-tt.want) > 1e-9 {
				t.Errorf("MonthlyEquivalent() = %v, want %v", got, tt.want)
			}
		})
	}
}

func TestCadenceNext(t *testing.T) {
	start := time.Date(2025, 1, 31, 0, 0, 0, 0, time.UTC)
	tests := []struct {
		frequency core.Frequency
		want      time.Time
	}{
		{core.Weekly, time.Date(2025, 2, 7, 0, 0, 0, 0, time.UTC)},
		// Day overflow is kept: Feb 31 normalizes to Mar 3.
		{core.Monthly, time.Date(2025, 3, 3, 0, 0, 0, 0, time.UTC)},
		{core.Yearly, time.Date(2026, 1, 31, 0, 0, 0, 0, time.UTC)},
	}

	for _, tt := range tests {
		t.Run(string(tt.frequency), func(t *testing.T) {
			c, err := GetCadence(tt.frequency)
			if err != nil {
				t.Fatalf("GetCadence: %v", err)
			}
			if got := c.Next(start); !got.Equal(tt.want) {
				t.Errorf("Next() = %v, want %v", got, tt.want)
			}
		})
	}
}

func TestProjectionCaps(t *testing.T) {
	want := map[core.Frequency]int{core.Weekly: 30, core.Monthly: 6, core.Yearly: 1}
	for f, n := range want {
		c, err := GetCadence(f)
		if err != nil {
			t.Fatalf("GetCadence(%s): %v", f, err)
		}
		if c.ProjectionCap() != n {
			t.Errorf("%s cap = %d, want %d", f, c.ProjectionCap(), n)
		}
	}
}

func TestGetCadenceUnknown(t *testing.T) {
	if _, err := GetCadence("fortnightly"); err == nil {
		t.Fatal("expected error for unknown frequency")
	}
}

type fortnightly struct{}

func (fortnightly) MonthlyEquivalent(a float64) float64 { return a * 2 }
func (fortnightly) Next(t time.Time) time.Time          { return t.AddDate(0, 0, 14) }
func (fortnightly) ProjectionCap() int                  { return 15 }

func TestRegisterCadence(t *testing.T) {
	const f = core.Frequency("fortnightly")
	RegisterCadence(f, fortnightly{})
	t.Cleanup(func() {
		cadenceMu.Lock()
		delete(cadenceStrategies, f)
		cadenceMu.Unlock()
	})

	if got := MonthlyEquivalent(core.Subscription{Amount: 3, Frequency: f}); got != 6 {
		t.Errorf("MonthlyEquivalent() = %v, want 6", got)
	}
}
