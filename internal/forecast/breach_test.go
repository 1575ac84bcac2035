package forecast

import (
	"testing"

	"expensetracker/internal/models"
)

func envTx(envelopeID int64, merchant, category, date string, amount float64) models.Transaction {
	return models.Transaction{EnvelopeID: &envelopeID, Merchant: merchant, Category: category, Date: date, Amount: amount}
}

func TestBudgetBreachNotOverspent(t *testing.T) {
	env := models.Envelope{ID: 1, Name: "Food", Allocated: 100, Spent: 100}
	if got := BudgetBreach(env, nil); got != nil {
		t.Errorf("BudgetBreach() = %+v, want nil", got)
	}
}

func TestBudgetBreach(t *testing.T) {
	env := models.Envelope{ID: 1, Name: "Food", Allocated: 100, Spent: 180}
	txns := []models.Transaction{
		envTx(1, "Market", "Groceries", "2024-03-01", -50),
		envTx(1, "Market", "Groceries", "2024-03-02", -80),
		envTx(1, "Diner", "Dining", "2024-03-03", -30),
		envTx(1, "Cafe", "Dining", "2024-03-04", -20),
		envTx(2, "Airline", "Travel", "2024-03-04", -500),
		{Merchant: "Loose", Amount: -999},
	}

	got := BudgetBreach(env, txns)
	if got == nil {
		t.Fatal("BudgetBreach() = nil, want breach")
	}
	if got.Overage != 80 || got.PercentageOver != 80 {
		t.Errorf("Overage, PercentageOver = %v, %v; want 80, 80", got.Overage, got.PercentageOver)
	}
	if len(got.LargestTransactions) != 3 {
		t.Fatalf("len(LargestTransactions) = %d, want 3", len(got.LargestTransactions))
	}
	wantAmounts := []float64{80, 50, 30}
	for i, w := range wantAmounts {
		if got.LargestTransactions[i].Amount != w {
			t.Errorf("LargestTransactions[%d].Amount = %v, want %v", i, got.LargestTransactions[i].Amount, w)
		}
	}
	wantBreakdown := []CategoryAmount{{"Groceries", 130}, {"Dining", 50}}
	if len(got.CategoryBreakdown) != len(wantBreakdown) {
		t.Fatalf("CategoryBreakdown = %+v, want %+v", got.CategoryBreakdown, wantBreakdown)
	}
	for i := range wantBreakdown {
		if got.CategoryBreakdown[i] != wantBreakdown[i] {
			t.Errorf("CategoryBreakdown[%d] = %+v, want %+v", i, got.CategoryBreakdown[i], wantBreakdown[i])
		}
	}
	wantSuggestion := "Consider increasing the 'Food' budget by at least $80.00 | " +
		"'Groceries' is the largest spending category - look for savings here | " +
		"Review recent transactions for unnecessary expenses"
	if got.Suggestion != wantSuggestion {
		t.Errorf("Suggestion = %q, want %q", got.Suggestion, wantSuggestion)
	}
}

func TestBudgetBreachSmallOverage(t *testing.T) {
	env := models.Envelope{ID: 3, Name: "Fun", Allocated: 100, Spent: 120}
	got := BudgetBreach(env, nil)
	if got == nil {
		t.Fatal("BudgetBreach() = nil, want breach")
	}
	if got.PercentageOver != 20 {
		t.Errorf("PercentageOver = %v, want 20", got.PercentageOver)
	}
	if got.Suggestion != "Review recent transactions for unnecessary expenses" {
		t.Errorf("Suggestion = %q", got.Suggestion)
	}
}

func TestBudgetBreachZeroAllocation(t *testing.T) {
	env := models.Envelope{ID: 4, Name: "Misc", Allocated: 0, Spent: 25}
	got := BudgetBreach(env, nil)
	if got == nil || got.PercentageOver != 100 {
		t.Errorf("BudgetBreach(zero allocation) = %+v, want 100%% over", got)
	}
}
