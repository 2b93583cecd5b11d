// Package domain holds the demand forecaster and the appointment pattern
// analysis. Both are pure functions over scheduling occupancies.
package domain

import (
	"errors"
	"fmt"
	"math"
	"time"

	scheduling "github.com/felixgeelhaar/meditrack/internal/scheduling/domain"
)

// DefaultHorizonDays is used when a forecast asks for a non-positive horizon.
const DefaultHorizonDays = 30

// ErrUnknownForecastMode is returned by ParseForecastMode.
var ErrUnknownForecastMode = errors.New("unknown forecast mode")

// ForecastMode selects how historical days are averaged per weekday.
type ForecastMode string

const (
	// ForecastModeCumulative adds each occupancy's running position within
	// its date to the weekday bucket, so a date with n occupancies
	// contributes 1, 2, ..., n.
	ForecastModeCumulative ForecastMode = "cumulative"

	// ForecastModeDailyMean adds one value per historical date: its total.
	ForecastModeDailyMean ForecastMode = "daily_mean"
)

// ParseForecastMode validates a mode name. Empty means cumulative.
func ParseForecastMode(s string) (ForecastMode, error) {
	switch ForecastMode(s) {
	case "", ForecastModeCumulative:
		return ForecastModeCumulative, nil
	case ForecastModeDailyMean:
		return ForecastModeDailyMean, nil
	}
	return "", fmt.Errorf("%w: %q", ErrUnknownForecastMode, s)
}

// DailyDemand is the expected load on one future date.
type DailyDemand struct {
	Date     time.Time `json:"date"`
	Expected float64   `json:"expected"`
}

// Forecast is the output of ForecastDemand.
type Forecast struct {
	Mode            ForecastMode             `json:"mode"`
	WeekdayAverages map[time.Weekday]float64 `json:"weekday_averages"`
	Predicted       []DailyDemand            `json:"predicted"`
}

// ByDate keys the predictions by ISO calendar date.
func (f Forecast) ByDate() map[string]float64 {
	out := make(map[string]float64, len(f.Predicted))
	for _, p := range f.Predicted {
		out[p.Date.Format(time.DateOnly)] = p.Expected
	}
	return out
}

// Weekdays lists weekdays Monday first.
var Weekdays = []time.Weekday{
	time.Monday, time.Tuesday, time.Wednesday, time.Thursday,
	time.Friday, time.Saturday, time.Sunday,
}

// ForecastDemand averages non-cancelled history per weekday and projects it
// onto the horizonDays dates following today. History is bucketed by calendar
// date in today's location. Every weekday is present in WeekdayAverages;
// weekdays never seen average 0. Predictions are rounded to one decimal
// place.
func ForecastDemand(history []scheduling.Occupancy, horizonDays int, today time.Time, mode ForecastMode) Forecast {
	if horizonDays <= 0 {
		horizonDays = DefaultHorizonDays
	}
	if mode == "" {
		mode = ForecastModeCumulative
	}

	samples := weekdaySamples(history, mode, today.Location())

	averages := make(map[time.Weekday]float64, len(Weekdays))
	for _, day := range Weekdays {
		values := samples[day]
		if len(values) == 0 {
			averages[day] = 0
			continue
		}
		sum := 0
		for _, v := range values {
			sum += v
		}
		averages[day] = float64(sum) / float64(len(values))
	}

	start := scheduling.StartOfDay(today)
	predicted := make([]DailyDemand, 0, horizonDays)
	for i := 1; i <= horizonDays; i++ {
		date := start.AddDate(0, 0, i)
		predicted = append(predicted, DailyDemand{
			Date:     date,
			Expected: roundTenth(averages[date.Weekday()]),
		})
	}

	return Forecast{Mode: mode, WeekdayAverages: averages, Predicted: predicted}
}

func weekdaySamples(history []scheduling.Occupancy, mode ForecastMode, loc *time.Location) map[time.Weekday][]int {
	type dayKey struct {
		year  int
		month time.Month
		day   int
	}

	daily := make(map[dayKey]int)
	weekdayOf := make(map[dayKey]time.Weekday)
	var order []dayKey
	samples := make(map[time.Weekday][]int)

	for _, o := range history {
		if o.IsCancelled() {
			continue
		}
		start := o.Start.In(loc)
		y, m, d := start.Date()
		key := dayKey{y, m, d}
		if _, seen := daily[key]; !seen {
			order = append(order, key)
			weekdayOf[key] = start.Weekday()
		}
		daily[key]++

		if mode == ForecastModeCumulative {
			samples[start.Weekday()] = append(samples[start.Weekday()], daily[key])
		}
	}

	if mode == ForecastModeDailyMean {
		for _, key := range order {
			samples[weekdayOf[key]] = append(samples[weekdayOf[key]], daily[key])
		}
	}
	return samples
}

func roundTenth(v float64) float64 {
	return math.Round(v*10) / 10
}
