// Package services provides the renewal engine and the orchestration around
// the subscription list.
//
// This file implements the Strategy Pattern for billing cadences. Each
// frequency has a strategy that knows how to normalize an amount to a
// monthly figure and how to step a renewal date forward.

package services

import (
	"fmt"
	"sync"
	"time"

	"renewme/internal/core"
)

// WeeksPerMonth is the average number of weeks in a month used when
// normalizing weekly amounts.
const WeeksPerMonth = 4.33

// ProjectionHorizonMonths is how far ahead the renewal projection looks.
const ProjectionHorizonMonths = 6

// Cadence is the strategy interface for one billing frequency.
type Cadence interface {
	// MonthlyEquivalent rescales an amount billed at this cadence to a
	// per-month figure.
	MonthlyEquivalent(amount float64) float64
	// Next returns the renewal that follows t.
	Next(t time.Time) time.Time
	// ProjectionCap bounds how many occurrences the projection walks for one
	// subscription.
	ProjectionCap() int
}

// WeeklyCadence bills every 7 days.
type WeeklyCadence struct{}

func (WeeklyCadence) MonthlyEquivalent(amount float64) float64 { return amount * WeeksPerMonth }
func (WeeklyCadence) Next(t time.Time) time.Time               { return t.AddDate(0, 0, 7) }

// ProjectionCap leaves about five weeks of headroom per projected month.
func (WeeklyCadence) ProjectionCap() int { return ProjectionHorizonMonths * 5 }

// MonthlyCadence bills on the same day every month. Day overflow (Jan 31 ->
// Mar 3) is accepted as the calendar produces it.
type MonthlyCadence struct{}

func (MonthlyCadence) MonthlyEquivalent(amount float64) float64 { return amount }
func (MonthlyCadence) Next(t time.Time) time.Time               { return t.AddDate(0, 1, 0) }
func (MonthlyCadence) ProjectionCap() int                       { return ProjectionHorizonMonths }

// YearlyCadence bills once a year.
type YearlyCadence struct{}

func (YearlyCadence) MonthlyEquivalent(amount float64) float64 { return amount / 12 }
func (YearlyCadence) Next(t time.Time) time.Time               { return t.AddDate(1, 0, 0) }
func (YearlyCadence) ProjectionCap() int                       { return 1 }

var (
	cadenceMu sync.RWMutex
	// cadenceStrategies maps frequencies to their strategies.
	cadenceStrategies = map[core.Frequency]Cadence{
		core.Weekly:  WeeklyCadence{},
		core.Monthly: MonthlyCadence{},
		core.Yearly:  YearlyCadence{},
	}
)

// GetCadence returns the strategy for a frequency.
func GetCadence(frequency core.Frequency) (Cadence, error) {
	cadenceMu.RLock()
	defer cadenceMu.RUnlock()
	c, ok := cadenceStrategies[frequency]
	if !ok {
		return nil, fmt.Errorf("unknown frequency: %s", frequency)
	}
	return c, nil
}

// RegisterCadence adds or replaces the strategy for a frequency.
func RegisterCadence(frequency core.Frequency, c Cadence) {
	cadenceMu.Lock()
	defer cadenceMu.Unlock()
	cadenceStrategies[frequency] = c
}

// MonthlyEquivalent returns the subscription's amount normalized to one
// month. Unknown frequencies contribute zero.
func MonthlyEquivalent(s core.Subscription) float64 {
	c, err := GetCadence(s.Frequency)
	if err != nil {
		return 0
	}
	return c.MonthlyEquivalent(s.Amount)
}
