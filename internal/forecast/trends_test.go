package forecast

import (
	"testing"

	"expensetracker/internal/models"
)

func TestSpendingTrends(t *testing.T) {
	txns := []models.Transaction{
		{Merchant: "Amazon", Category: "Shopping", Date: "2024-01-05", Amount: -100},
		{Merchant: "Amazon", Category: "Shopping", Date: "2024-02-05", Amount: -50},
		{Merchant: "Starbucks", Category: "Food & Dining", Date: "2024-02-06", Amount: -5.5},
		{Merchant: "Employer", Category: "Income", Date: "2024-02-01", Amount: 3000},
	}

	got := SpendingTrends(txns)

	if len(got.TopCategories) != 2 || got.TopCategories[0] != (NamedAmount{"Shopping", 150}) {
		t.Errorf("TopCategories = %+v", got.TopCategories)
	}
	if len(got.TopMerchants) != 2 || got.TopMerchants[1] != (NamedAmount{"Starbucks", 5.5}) {
		t.Errorf("TopMerchants = %+v", got.TopMerchants)
	}
	wantMonths := []MonthAmount{{"2024-01", 100}, {"2024-02", 55.5}}
	if len(got.MonthlyTrend) != 2 || got.MonthlyTrend[0] != wantMonths[0] || got.MonthlyTrend[1] != wantMonths[1] {
		t.Errorf("MonthlyTrend = %+v, want %+v", got.MonthlyTrend, wantMonths)
	}
}

func TestTopLimitsResults(t *testing.T) {
	totals := map[string]float64{"a": 1, "b": 2, "c": 3, "d": 4, "e": 5, "f": 6, "g": 6}
	got := top(totals, 5)
	if len(got) != 5 {
		t.Fatalf("len(top) = %d, want 5", len(got))
	}
	if got[0].Name != "f" || got[1].Name != "g" {
		t.Errorf("top ties = %s, %s; want f, g", got[0].Name, got[1].Name)
	}
}

func TestPredictNextMonth(t *testing.T) {
	tests := []struct {
		name    string
		monthly []MonthAmount
		want    Prediction
	}{
		{
			name:    "rising",
			monthly: []MonthAmount{{"2024-01", 100}, {"2024-02", 200}, {"2024-03", 300}},
			want:    Prediction{Month: "2024-04", Amount: 400, Slope: 100, Trend: "increasing", Months: 3},
		},
		{
			name:    "floors at zero",
			monthly: []MonthAmount{{"2024-11", 300}, {"2024-12", 100}},
			want:    Prediction{Month: "2025-01", Amount: 0, Slope: -200, Trend: "decreasing", Months: 2},
		},
		{
			name:    "single month",
			monthly: []MonthAmount{{"2024-05", 42}},
			want:    Prediction{Month: "2024-06", Amount: 42, Trend: "stable", Months: 1},
		},
		{
			name: "no data",
			want: Prediction{Trend: "stable"},
		},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := PredictNextMonth(tt.monthly); got != tt.want {
				t.Errorf("PredictNextMonth() = %+v, want %+v", got, tt.want)
			}
		})
	}
}
