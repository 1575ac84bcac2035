package detect

import (
	"testing"

	"expensetracker/internal/models"
)

func txn(merchant, date string, amount float64) models.Transaction {
	return models.Transaction{Merchant: merchant, Date: date, Amount: amount}
}

func TestDetectRecurringNetflix(t *testing.T) {
	got := DetectRecurring([]models.Transaction{
		txn("Netflix", "2024-03-15", -50),
		txn("Netflix", "2024-01-15", -50),
		txn("Netflix", "2024-02-15", -50),
	})
	if len(got) != 1 {
		t.Fatalf("DetectRecurring() returned %d patterns, want 1", len(got))
	}
	p := got[0]
	if p.Merchant != "Netflix" || p.Pattern != Monthly || p.AvgAmount != -50.0 {
		t.Errorf("pattern = %+v, want Netflix Monthly -50", p)
	}
	if p.LastDate != "2024-03-15" || p.Occurrences != 3 {
		t.Errorf("pattern = %+v, want last 2024-03-15 with 3 occurrences", p)
	}
}

func TestDetectRecurring(t *testing.T) {
	tests := []struct {
		name     string
		txns     []models.Transaction
		want     Cadence
		wantNext string
	}{
		{
			name: "exactly thirty days apart",
			txns: []models.Transaction{
				txn("Gym", "2024-01-01", -30),
				txn("Gym", "2024-01-31", -30),
				txn("Gym", "2024-03-01", -30),
			},
			want:     Monthly,
			wantNext: "2024-03-31",
		},
		{
			name: "weekly",
			txns: []models.Transaction{
				txn("Cleaner", "2024-01-01", -20),
				txn("Cleaner", "2024-01-08", -20),
				txn("Cleaner", "2024-01-15", -20),
			},
			want:     Weekly,
			wantNext: "2024-01-22",
		},
		{
			name: "two entries are enough",
			txns: []models.Transaction{
				txn("Insurance", "2024-04-01", -100),
				txn("Insurance", "2024-05-01", -100),
			},
			want:     Monthly,
			wantNext: "2024-05-31",
		},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := DetectRecurring(tt.txns)
			if len(got) != 1 {
				t.Fatalf("DetectRecurring() returned %d patterns, want 1", len(got))
			}
			if got[0].Pattern != tt.want {
				t.Errorf("Pattern = %v, want %v", got[0].Pattern, tt.want)
			}
			if got[0].NextExpected != tt.wantNext {
				t.Errorf("NextExpected = %v, want %v", got[0].NextExpected, tt.wantNext)
			}
		})
	}
}

func TestDetectRecurringExclusions(t *testing.T) {
	got := DetectRecurring([]models.Transaction{
		txn("Once", "2024-01-01", -10),
		txn("Irregular", "2024-01-01", -10),
		txn("Irregular", "2024-01-06", -10),
		txn("Irregular", "2024-02-15", -10),
		txn("Bad Date", "not-a-date", -10),
		txn("Bad Date", "2024-01-01", -10),
	})
	if len(got) != 0 {
		t.Errorf("DetectRecurring() = %+v, want none", got)
	}
}

func TestDetectRecurringAveragesAndOrder(t *testing.T) {
	got := DetectRecurring([]models.Transaction{
		txn("Spotify", "2024-01-10", -9.99),
		txn("Rent", "2024-01-01", -1000),
		txn("Spotify", "2024-02-10", -10.99),
		txn("Rent", "2024-02-01", -1000),
		txn("Spotify", "2024-03-10", -10.99),
	})
	if len(got) != 2 {
		t.Fatalf("DetectRecurring() returned %d patterns, want 2", len(got))
	}
	if got[0].Merchant != "Spotify" || got[1].Merchant != "Rent" {
		t.Errorf("order = %s, %s; want Spotify, Rent", got[0].Merchant, got[1].Merchant)
	}
	if got[0].AvgAmount != -10.66 {
		t.Errorf("Spotify AvgAmount = %v, want -10.66", got[0].AvgAmount)
	}
}

func TestMeanVariance(t *testing.T) {
	mean, variance := meanVariance([]float64{31, 29})
	if mean != 30 || variance != 1 {
		t.Errorf("meanVariance(31, 29) = %v, %v; want 30, 1", mean, variance)
	}
	if m, v := meanVariance(nil); m != 0 || v != 0 {
		t.Errorf("meanVariance(nil) = %v, %v; want 0, 0", m, v)
	}
}
