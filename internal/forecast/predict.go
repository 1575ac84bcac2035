package forecast

import (
	"time"

	"expensetracker/internal/money"
)

// Prediction is next month's expected spend from a least-squares line
// through the monthly totals.
type Prediction struct {
	Month  string  `json:"month"`
	Amount float64 `json:"amount"`
	Slope  float64 `json:"slope"`
	Trend  string  `json:"trend"`
	Months int     `json:"months_used"`
}

// PredictNextMonth fits amount = a + b*i over the months in order. One month
// of data predicts the same amount again; none predicts zero. Predictions
// never go below zero.
func PredictNextMonth(monthly []MonthAmount) Prediction {
	p := Prediction{Trend: "stable", Months: len(monthly)}
	if len(monthly) == 0 {
		return p
	}
	p.Month = nextMonth(monthly[len(monthly)-1].Month)
	if len(monthly) == 1 {
		p.Amount = monthly[0].Amount
		return p
	}

	n := float64(len(monthly))
	var sx, sy, sxx, sxy float64
	for i, m := range monthly {
		x := float64(i)
		sx += x
		sy += m.Amount
		sxx += x * x
		sxy += x * m.Amount
	}
	slope := (n*sxy - sx*sy) / (n*sxx - sx*sx)
	intercept := (sy - slope*sx) / n

	amount := intercept + slope*n
	if amount < 0 {
		amount = 0
	}
	p.Amount = money.Round(amount)
	p.Slope = money.Round(slope)
	switch {
	case p.Slope > 0:
		p.Trend = "increasing"
	case p.Slope < 0:
		p.Trend = "decreasing"
	}
	return p
}

func nextMonth(month string) string {
	t, err := time.Parse("2006-01", month)
	if err != nil {
		return ""
	}
	return t.AddDate(0, 1, 0).Format("2006-01")
}
