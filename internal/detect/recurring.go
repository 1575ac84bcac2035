package detect

import (
	"math"
	"sort"
	"time"

	"expensetracker/internal/money"
	"expensetracker/internal/models"
)

// Cadence is how often a recurring payment repeats.
type Cadence string

const (
	Weekly  Cadence = "Weekly"
	Monthly Cadence = "Monthly"
)

// RecurringPattern is derived from history on every request; it is never
// stored.
type RecurringPattern struct {
	Merchant     string  `json:"merchant"`
	Pattern      Cadence `json:"pattern"`
	AvgAmount    float64 `json:"avg_amount"`
	IntervalDays float64 `json:"interval_days"`
	Occurrences  int     `json:"occurrences"`
	LastDate     string  `json:"last_date"`
	NextExpected string  `json:"next_expected"`
}

// Interval is the mean gap rounded to whole days.
func (p RecurringPattern) Interval() int {
	return int(math.Round(p.IntervalDays))
}

// Next parses NextExpected.
func (p RecurringPattern) Next() (time.Time, error) {
	return time.Parse(models.DateLayout, p.NextExpected)
}

type dated struct {
	day    time.Time
	amount float64
}

// DetectRecurring groups transactions by merchant and reports the groups
// whose gaps look weekly or monthly. Merchants appear in the order they are
// first seen in txns. Transactions with unparseable dates are ignored.
func DetectRecurring(txns []models.Transaction) []RecurringPattern {
	var order []string
	groups := make(map[string][]dated)
	for _, t := range txns {
		day, err := t.Day()
		if err != nil {
			continue
		}
		if _, seen := groups[t.Merchant]; !seen {
			order = append(order, t.Merchant)
		}
		groups[t.Merchant] = append(groups[t.Merchant], dated{day: day, amount: t.Amount})
	}

	var patterns []RecurringPattern
	for _, merchant := range order {
		entries := groups[merchant]
		if len(entries) < 2 {
			continue
		}
		sort.SliceStable(entries, func(i, j int) bool { return entries[i].day.Before(entries[j].day) })

		gaps := make([]float64, 0, len(entries)-1)
		for i := 1; i < len(entries); i++ {
			gaps = append(gaps, math.Round(entries[i].day.Sub(entries[i-1].day).Hours()/24))
		}
		mean, variance := meanVariance(gaps)

		cadence, ok := classifyCadence(mean, variance)
		if !ok {
			continue
		}

		amounts := make([]float64, len(entries))
		for i, e := range entries {
			amounts[i] = e.amount
		}
		last := entries[len(entries)-1].day
		patterns = append(patterns, RecurringPattern{
			Merchant:     merchant,
			Pattern:      cadence,
			AvgAmount:    money.Round(money.Sum(amounts...) / float64(len(amounts))),
			IntervalDays: mean,
			Occurrences:  len(entries),
			LastDate:     last.Format(models.DateLayout),
			NextExpected: last.AddDate(0, 0, int(math.Round(mean))).Format(models.DateLayout),
		})
	}
	return patterns
}

// classifyCadence checks monthly before weekly.
func classifyCadence(mean, variance float64) (Cadence, bool) {
	if mean >= 28 && mean <= 31 && variance < 10 {
		return Monthly, true
	}
	if mean >= 6 && mean <= 8 && variance < 2 {
		return Weekly, true
	}
	return "", false
}

// meanVariance returns the mean and population variance of xs.
func meanVariance(xs []float64) (float64, float64) {
	if len(xs) == 0 {
		return 0, 0
	}
	var sum float64
	for _, x := range xs {
		sum += x
	}
	mean := sum / float64(len(xs))
	var sq float64
	for _, x := range xs {
		sq += (x - mean) * (x - mean)
	}
	return mean, sq / float64(len(xs))
}
