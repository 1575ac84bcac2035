// Package insights compares a user's spending month over month and tracks
// progress on savings challenges. Everything is computed from stored
// transactions on each request.
package insights

import (
	"fmt"
	"sort"
	"time"

	"expensetracker/internal/models"
	"expensetracker/internal/money"
)

// Status values for a comparison message
const (
	StatusSuccess = "success"
	StatusWarning = "warning"
	StatusInfo    = "info"
)

// similarBand is the change, in percent, still reported as "similar".
const similarBand = 5.0

type CategoryChange struct {
	Category    string  `json:"category"`
	Current     float64 `json:"current"`
	Previous    float64 `json:"previous"`
	DiffPercent float64 `json:"diff_percent"`
	DiffAmount  float64 `json:"diff_amount"`
}

// Comparison is this month's spending against last month's.
type Comparison struct {
	Message       string           `json:"message"`
	Status        string           `json:"status"`
	CurrentTotal  float64          `json:"current_total"`
	PreviousTotal float64          `json:"previous_total"`
	Details       []CategoryChange `json:"details"`
}

// Compare sums expenses by category for the calendar month containing now
// and the month before it. Categories only appear in Details when they had
// spending last month.
func Compare(txns []models.Transaction, now time.Time) Comparison {
	monthStart := time.Date(now.Year(), now.Month(), 1, 0, 0, 0, 0, time.UTC)
	prevStart := monthStart.AddDate(0, -1, 0)
	nextStart := monthStart.AddDate(0, 1, 0)

	current := make(map[string]float64)
	previous := make(map[string]float64)
	var curTotal, prevTotal float64
	hasPrevious := false

	for _, t := range txns {
		day, err := t.Day()
		if err != nil {
			continue
		}
		switch {
		case !day.Before(prevStart) && day.Before(monthStart):
			hasPrevious = true
			if t.IsExpense() {
				previous[t.Category] += money.Abs(t.Amount)
				prevTotal += money.Abs(t.Amount)
			}
		case !day.Before(monthStart) && day.Before(nextStart):
			if t.IsExpense() {
				current[t.Category] += money.Abs(t.Amount)
				curTotal += money.Abs(t.Amount)
			}
		}
	}

	c := Comparison{Status: StatusInfo, Details: []CategoryChange{}}
	if !hasPrevious {
		c.Message = "No previous month data available for comparison"
		return c
	}
	c.CurrentTotal = money.Round(curTotal)
	c.PreviousTotal = money.Round(prevTotal)

	for cat, prev := range previous {
		if prev <= 0 {
			continue
		}
		cur := current[cat]
		c.Details = append(c.Details, CategoryChange{
			Category:    cat,
			Current:     money.Round(cur),
			Previous:    money.Round(prev),
			DiffPercent: money.RoundTo((cur-prev)/prev*100, 1),
			DiffAmount:  money.Round(cur - prev),
		})
	}
	sort.Slice(c.Details, func(i, j int) bool { return c.Details[i].Category < c.Details[j].Category })

	if c.PreviousTotal <= 0 {
		c.Message = "This is your first month tracking expenses"
		return c
	}
	diff := money.RoundTo((c.CurrentTotal-c.PreviousTotal)/c.PreviousTotal*100, 1)
	switch {
	case diff < -similarBand:
		c.Status = StatusSuccess
		c.Message = fmt.Sprintf("Great job! You spent %.1f%% less than last month", -diff)
	case diff > similarBand:
		c.Status = StatusWarning
		c.Message = fmt.Sprintf("You spent %.1f%% more than last month", diff)
	default:
		c.Message = fmt.Sprintf("Your spending is similar to last month (%+.1f%%)", diff)
	}
	return c
}
