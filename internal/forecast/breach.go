package forecast

import (
	"fmt"
	"sort"
	"strings"

	"expensetracker/internal/money"
	"expensetracker/internal/models"
)

type BreachTransaction struct {
	Merchant string  `json:"merchant"`
	Amount   float64 `json:"amount"`
	Date     string  `json:"date"`
}

type CategoryAmount struct {
	Category string  `json:"category"`
	Amount   float64 `json:"amount"`
}

// Breach explains why an envelope went over its allocation.
type Breach struct {
	EnvelopeName        string              `json:"envelope_name"`
	Overage             float64             `json:"overage"`
	PercentageOver      float64             `json:"percentage_over"`
	LargestTransactions []BreachTransaction `json:"largest_transactions"`
	CategoryBreakdown   []CategoryAmount    `json:"category_breakdown"`
	Suggestion          string              `json:"suggestion"`
}

// BudgetBreach returns nil unless the envelope has spent more than it was
// allocated. txns may contain transactions from other envelopes; only the
// ones referencing env are considered.
func BudgetBreach(env models.Envelope, txns []models.Transaction) *Breach {
	if !env.Overspent() {
		return nil
	}

	var mine []models.Transaction
	for _, t := range txns {
		if t.EnvelopeID != nil && *t.EnvelopeID == env.ID {
			mine = append(mine, t)
		}
	}

	overage := env.Spent - env.Allocated
	ratio := 1.0
	if env.Allocated > 0 {
		ratio = overage / env.Allocated
	}

	sort.SliceStable(mine, func(i, j int) bool {
		return money.Abs(mine[i].Amount) > money.Abs(mine[j].Amount)
	})
	largest := make([]BreachTransaction, 0, 3)
	for i := 0; i < len(mine) && i < 3; i++ {
		largest = append(largest, BreachTransaction{
			Merchant: mine[i].Merchant,
			Amount:   money.Abs(mine[i].Amount),
			Date:     mine[i].Date,
		})
	}

	breakdown := categoryTotals(mine)

	var suggestions []string
	if ratio > 0.5 {
		suggestions = append(suggestions, fmt.Sprintf("Consider increasing the '%s' budget by at least $%.2f", env.Name, money.Round(overage)))
	}
	if len(breakdown) > 0 {
		suggestions = append(suggestions, fmt.Sprintf("'%s' is the largest spending category - look for savings here", breakdown[0].Category))
	}
	suggestions = append(suggestions, "Review recent transactions for unnecessary expenses")

	return &Breach{
		EnvelopeName:        env.Name,
		Overage:             money.Round(overage),
		PercentageOver:      money.Round(ratio * 100),
		LargestTransactions: largest,
		CategoryBreakdown:   breakdown,
		Suggestion:          strings.Join(suggestions, " | "),
	}
}

// categoryTotals sums |amount| per category, largest first. Equal totals
// keep first-seen order.
func categoryTotals(txns []models.Transaction) []CategoryAmount {
	var out []CategoryAmount
	index := make(map[string]int)
	for _, t := range txns {
		i, ok := index[t.Category]
		if !ok {
			i = len(out)
			index[t.Category] = i
			out = append(out, CategoryAmount{Category: t.Category})
		}
		out[i].Amount = money.Sum(out[i].Amount, money.Abs(t.Amount))
	}
	sort.SliceStable(out, func(i, j int) bool { return out[i].Amount > out[j].Amount })
	for i := range out {
		out[i].Amount = money.Round(out[i].Amount)
	}
	return out
}
