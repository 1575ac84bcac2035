// Package forecast projects balances forward and explains spending: daily
// burn plus recurring payments, envelope breaches, category trends and a
// next-month regression.
package forecast

import (
	"time"

	"expensetracker/internal/confidence"
	"expensetracker/internal/detect"
	"expensetracker/internal/money"
	"expensetracker/internal/models"
)

// DefaultDays is the projection window used when none is requested.
const DefaultDays = 30

type DayProjection struct {
	Date    string  `json:"date"`
	Balance float64 `json:"balance"`
}

type Forecast struct {
	CurrentBalance   float64          `json:"current_balance"`
	ProjectedBalance float64          `json:"projected_balance"`
	DailyAverage     float64          `json:"daily_avg_spending"`
	Days             int              `json:"days"`
	Projections      []DayProjection  `json:"daily_projections"`
	RecurringCount   int              `json:"recurring_count"`
	Confidence       confidence.Level `json:"confidence"`
}

// Balance projects the balance for days days starting at now. Each day
// subtracts the average daily spend and adds every recurring payment due
// that day; a pattern is re-applied once per interval for as long as the
// window lasts. Patterns overdue by more than one interval are left out.
func Balance(txns []models.Transaction, patterns []detect.RecurringPattern, days int, now time.Time) Forecast {
	if days <= 0 {
		days = DefaultDays
	}
	if len(txns) == 0 {
		return Forecast{Days: days, Projections: []DayProjection{}, Confidence: confidence.Low}
	}

	amounts := make([]float64, len(txns))
	for i, t := range txns {
		amounts[i] = t.Amount
	}
	current := money.Sum(amounts...)
	daily := DailyAverage(txns)

	start := dayOf(now)
	due := recurringSchedule(patterns, start, days)

	projected := current
	projections := make([]DayProjection, 0, days)
	for d := 0; d < days; d++ {
		date := start.AddDate(0, 0, d).Format(models.DateLayout)
		projected -= daily
		projected += due[date]
		projections = append(projections, DayProjection{Date: date, Balance: money.Round(projected)})
	}

	return Forecast{
		CurrentBalance:   money.Round(current),
		ProjectedBalance: money.Round(projected),
		DailyAverage:     money.Round(daily),
		Days:             days,
		Projections:      projections,
		RecurringCount:   len(patterns),
		Confidence:       Score(txns, len(patterns), now).Level(confidence.Standard),
	}
}

// DailyAverage is the total spent divided by the days between the first and
// last expense, with a floor of one day. It is never negative.
func DailyAverage(txns []models.Transaction) float64 {
	var spent []float64
	var first, last time.Time
	for _, t := range txns {
		if !t.IsExpense() {
			continue
		}
		day, err := t.Day()
		if err != nil {
			continue
		}
		if first.IsZero() || day.Before(first) {
			first = day
		}
		if last.IsZero() || day.After(last) {
			last = day
		}
		spent = append(spent, money.Abs(t.Amount))
	}
	if len(spent) == 0 {
		return 0
	}
	span := int(last.Sub(first).Hours() / 24)
	if span < 1 {
		span = 1
	}
	return money.Sum(spent...) / float64(span)
}

// Score weighs history size, recurring patterns and how recent the data is.
func Score(txns []models.Transaction, recurring int, now time.Time) confidence.Score {
	n := len(txns)
	s := confidence.Score(0)
	switch {
	case n > 50:
		s = s.Add(true, 40)
	case n > 20:
		s = s.Add(true, 25)
	case n > 5:
		s = s.Add(true, 10)
	}
	s = s.Add(true, float64(min(recurring*10, 30)))

	today := dayOf(now)
	recent := 0
	for _, t := range txns {
		day, err := t.Day()
		if err != nil {
			continue
		}
		if today.Sub(day).Hours()/24 < 30 {
			recent++
		}
	}
	return s.Add(recent > 10, 30)
}

// recurringSchedule maps each date in the window to the recurring amounts
// due on it.
func recurringSchedule(patterns []detect.RecurringPattern, start time.Time, days int) map[string]float64 {
	end := start.AddDate(0, 0, days-1)
	due := make(map[string]float64)
	for _, p := range patterns {
		next, err := p.Next()
		if err != nil {
			continue
		}
		step := p.Interval()
		// More than one interval overdue means the payment has lapsed.
		if step > 0 && next.Before(start.AddDate(0, 0, -step)) {
			continue
		}
		for at := next; !at.After(end); at = at.AddDate(0, 0, step) {
			if !at.Before(start) {
				due[at.Format(models.DateLayout)] += p.AvgAmount
			}
			if step < 1 {
				break
			}
		}
	}
	return due
}

func dayOf(t time.Time) time.Time {
	return time.Date(t.Year(), t.Month(), t.Day(), 0, 0, 0, 0, time.UTC)
}
