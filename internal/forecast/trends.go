package forecast

import (
	"sort"

	"expensetracker/internal/money"
	"expensetracker/internal/models"
)

const topN = 5

type NamedAmount struct {
	Name   string  `json:"name"`
	Amount float64 `json:"amount"`
}

type MonthAmount struct {
	Month  string  `json:"month"`
	Amount float64 `json:"amount"`
}

type Trends struct {
	TopCategories []NamedAmount `json:"top_categories"`
	TopMerchants  []NamedAmount `json:"top_merchants"`
	MonthlyTrend  []MonthAmount `json:"monthly_trend"`
}

// SpendingTrends summarises expenses by category, merchant and month.
func SpendingTrends(txns []models.Transaction) Trends {
	categories := make(map[string]float64)
	merchants := make(map[string]float64)
	months := make(map[string]float64)

	for _, t := range txns {
		if !t.IsExpense() {
			continue
		}
		spent := money.Abs(t.Amount)
		categories[t.Category] = money.Sum(categories[t.Category], spent)
		merchants[t.Merchant] = money.Sum(merchants[t.Merchant], spent)
		if day, err := t.Day(); err == nil {
			m := day.Format("2006-01")
			months[m] = money.Sum(months[m], spent)
		}
	}

	trend := make([]MonthAmount, 0, len(months))
	for m, v := range months {
		trend = append(trend, MonthAmount{Month: m, Amount: money.Round(v)})
	}
	sort.Slice(trend, func(i, j int) bool { return trend[i].Month < trend[j].Month })

	return Trends{
		TopCategories: top(categories, topN),
		TopMerchants:  top(merchants, topN),
		MonthlyTrend:  trend,
	}
}

// top returns the n largest entries; ties are broken by name.
func top(totals map[string]float64, n int) []NamedAmount {
	out := make([]NamedAmount, 0, len(totals))
	for k, v := range totals {
		out = append(out, NamedAmount{Name: k, Amount: money.Round(v)})
	}
	sort.Slice(out, func(i, j int) bool {
		if out[i].Amount != out[j].Amount {
			return out[i].Amount > out[j].Amount
		}
		return out[i].Name < out[j].Name
	})
	if len(out) > n {
		out = out[:n]
	}
	return out
}
