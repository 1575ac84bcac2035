package insights

import (
	"time"

	"expensetracker/internal/models"
	"expensetracker/internal/money"
)

// Challenge ids
const (
	NoSpendDays   = "no_spend_day"
	SaveTarget    = "save_5000"
	CategoryLimit = "category_limit"
)

// Definition describes a challenge a user can take on.
type Definition struct {
	ID          string  `json:"id"`
	Name        string  `json:"name"`
	Description string  `json:"description"`
	Target      float64 `json:"target"`
	Reward      string  `json:"reward"`
	Points      int     `json:"points"`
	// Category is only set for category limits
	Category string `json:"category,omitempty"`
}

var Catalog = []Definition{
	{
		ID:          NoSpendDays,
		Name:        "No-Spend Day Challenge",
		Description: "Complete 5 days without any expenses",
		Target:      5,
		Reward:      "Budget Master Badge",
		Points:      100,
	},
	{
		ID:          SaveTarget,
		Name:        "Save 5000 Challenge",
		Description: "Keep this month's spending 5000 below this month's income",
		Target:      5000,
		Reward:      "Savings Champion",
		Points:      200,
	},
	{
		ID:          CategoryLimit,
		Name:        "Category Budget Challenge",
		Description: "Spend no more than 8000 on Food & Dining in the month after starting",
		Target:      8000,
		Reward:      "Food Budget Hero",
		Points:      150,
		Category:    "Food & Dining",
	},
}

func Lookup(id string) (Definition, bool) {
	for _, d := range Catalog {
		if d.ID == id {
			return d, true
		}
	}
	return Definition{}, false
}

// Progress is a user's attempt at a challenge together with where it stands.
type Progress struct {
	Definition
	EntryID    int64   `json:"entry_id"`
	Outcome    string  `json:"outcome"`
	StartedAt  string  `json:"started_at"`
	FinishedAt string  `json:"finished_at,omitempty"`
	Progress   float64 `json:"progress"`
	Earned     int     `json:"earned_points"`
	// Changed is set when Review moved the attempt out of active
	Changed bool `json:"-"`
}

// Board groups a user's attempts and totals the points earned.
type Board struct {
	Active      []Progress   `json:"active"`
	Finished    []Progress   `json:"finished"`
	TotalPoints int          `json:"total_points"`
	Available   []Definition `json:"available"`
}

// Evaluate measures an attempt started on started against the transactions
// and reports its outcome as of now:
//
//   - no_spend_day counts whole days since the start with no expense
//   - save_5000 is this month's income minus this month's expenses
//   - category_limit is the limit minus what was spent in the category in
//     the month after the start, settled once that month is over
func Evaluate(def Definition, started time.Time, txns []models.Transaction, now time.Time) (float64, string) {
	today := time.Date(now.Year(), now.Month(), now.Day(), 0, 0, 0, 0, time.UTC)

	switch def.ID {
	case NoSpendDays:
		spent := make(map[string]bool)
		for _, t := range txns {
			if t.IsExpense() {
				spent[t.Date] = true
			}
		}
		days := 0
		for d := started; d.Before(today); d = d.AddDate(0, 0, 1) {
			if !spent[d.Format(models.DateLayout)] {
				days++
			}
		}
		if float64(days) >= def.Target {
			return float64(days), models.ChallengeCompleted
		}
		return float64(days), models.ChallengeActive

	case SaveTarget:
		monthStart := time.Date(now.Year(), now.Month(), 1, 0, 0, 0, 0, time.UTC)
		amounts := amountsBetween(txns, monthStart, monthStart.AddDate(0, 1, 0), "")
		savings := money.Sum(amounts...)
		if savings >= def.Target {
			return savings, models.ChallengeCompleted
		}
		return max(savings, 0), models.ChallengeActive

	case CategoryLimit:
		end := started.AddDate(0, 1, 0)
		var spent []float64
		for _, a := range amountsBetween(txns, started, end, def.Category) {
			if a < 0 {
				spent = append(spent, -a)
			}
		}
		remaining := money.Round(def.Target - money.Sum(spent...))
		switch {
		case today.Before(end):
			return remaining, models.ChallengeActive
		case remaining >= 0:
			return remaining, models.ChallengeCompleted
		default:
			return remaining, models.ChallengeFailed
		}
	}
	return 0, models.ChallengeActive
}

// amountsBetween returns the amounts dated in [from, to), limited to
// category when it is set.
func amountsBetween(txns []models.Transaction, from, to time.Time, category string) []float64 {
	var out []float64
	for _, t := range txns {
		if category != "" && t.Category != category {
			continue
		}
		day, err := t.Day()
		if err != nil || day.Before(from) || !day.Before(to) {
			continue
		}
		out = append(out, t.Amount)
	}
	return out
}

// Review evaluates every attempt. Active attempts whose outcome is now
// settled come back with Changed set, FinishedAt filled in and, when
// completed, the challenge's points.
func Review(entries []models.Challenge, txns []models.Transaction, now time.Time) []Progress {
	out := make([]Progress, 0, len(entries))
	for _, e := range entries {
		def, ok := Lookup(e.ChallengeID)
		if !ok {
			continue
		}
		p := Progress{
			Definition: def,
			EntryID:    e.ID,
			Outcome:    e.Outcome,
			StartedAt:  e.StartedAt,
			FinishedAt: e.FinishedAt,
			Earned:     e.Points,
		}
		started, err := time.Parse(models.DateLayout, e.StartedAt)
		if err != nil {
			out = append(out, p)
			continue
		}

		progress, outcome := Evaluate(def, started, txns, now)
		p.Progress = progress
		if e.Outcome == models.ChallengeActive && outcome != models.ChallengeActive {
			p.Outcome = outcome
			p.FinishedAt = now.Format(models.DateLayout)
			p.Changed = true
			if outcome == models.ChallengeCompleted {
				p.Earned = def.Points
			}
		}
		out = append(out, p)
	}
	return out
}

// NewBoard splits reviewed attempts into active and finished.
func NewBoard(progress []Progress) Board {
	b := Board{Active: []Progress{}, Finished: []Progress{}, Available: Catalog}
	for _, p := range progress {
		if p.Outcome == models.ChallengeActive {
			b.Active = append(b.Active, p)
			continue
		}
		b.Finished = append(b.Finished, p)
		b.TotalPoints += p.Earned
	}
	return b
}
