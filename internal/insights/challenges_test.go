package insights

import (
	"testing"
	"time"

	"expensetracker/internal/models"
)

func day(s string) time.Time {
	d, err := time.Parse(models.DateLayout, s)
	if err != nil {
		panic(err)
	}
	return d
}

func TestEvaluate(t *testing.T) {
	noSpend, _ := Lookup(NoSpendDays)
	save, _ := Lookup(SaveTarget)
	limit, _ := Lookup(CategoryLimit)

	tests := []struct {
		name         string
		def          Definition
		started      string
		txns         []models.Transaction
		now          time.Time
		wantProgress float64
		wantOutcome  string
	}{
		{
			name:    "five quiet days",
			def:     noSpend,
			started: "2024-04-01",
			txns: []models.Transaction{
				spend("2024-04-02", "Shopping", -5),
				spend("2024-04-05", "Shopping", -5),
				spend("2024-04-06", "Income", 100),
			},
			now:          time.Date(2024, 4, 10, 10, 0, 0, 0, time.UTC),
			wantProgress: 7,
			wantOutcome:  models.ChallengeCompleted,
		},
		{
			name:         "today does not count yet",
			def:          noSpend,
			started:      "2024-04-08",
			txns:         []models.Transaction{spend("2024-04-09", "Shopping", -5)},
			now:          time.Date(2024, 4, 10, 23, 0, 0, 0, time.UTC),
			wantProgress: 1,
			wantOutcome:  models.ChallengeActive,
		},
		{
			name:    "saved this month",
			def:     save,
			started: "2024-04-01",
			txns: []models.Transaction{
				spend("2024-04-01", "Income", 8000),
				spend("2024-04-03", "Shopping", -2500),
				spend("2024-03-20", "Income", 90000),
			},
			now:          april20,
			wantProgress: 5500,
			wantOutcome:  models.ChallengeCompleted,
		},
		{
			name:         "overspent this month",
			def:          save,
			started:      "2024-04-01",
			txns:         []models.Transaction{spend("2024-04-03", "Shopping", -200)},
			now:          april20,
			wantProgress: 0,
			wantOutcome:  models.ChallengeActive,
		},
		{
			name:    "limit month still running",
			def:     limit,
			started: "2024-03-25",
			txns: []models.Transaction{
				spend("2024-03-26", "Food & Dining", -3000),
				spend("2024-03-27", "Shopping", -9000),
			},
			now:          april20,
			wantProgress: 5000,
			wantOutcome:  models.ChallengeActive,
		},
		{
			name:    "limit kept",
			def:     limit,
			started: "2024-03-10",
			txns: []models.Transaction{
				spend("2024-03-26", "Food & Dining", -3000),
				spend("2024-04-15", "Food & Dining", -9000),
			},
			now:          april20,
			wantProgress: 5000,
			wantOutcome:  models.ChallengeCompleted,
		},
		{
			name:         "limit broken",
			def:          limit,
			started:      "2024-03-10",
			txns:         []models.Transaction{spend("2024-03-12", "Food & Dining", -8500)},
			now:          april20,
			wantProgress: -500,
			wantOutcome:  models.ChallengeFailed,
		},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			progress, outcome := Evaluate(tt.def, day(tt.started), tt.txns, tt.now)
			if progress != tt.wantProgress || outcome != tt.wantOutcome {
				t.Errorf("Evaluate() = %v, %q; want %v, %q", progress, outcome, tt.wantProgress, tt.wantOutcome)
			}
		})
	}
}

func TestReviewAndBoard(t *testing.T) {
	entries := []models.Challenge{
		{ID: 1, ChallengeID: NoSpendDays, Outcome: models.ChallengeActive, StartedAt: "2024-04-01"},
		{ID: 2, ChallengeID: SaveTarget, Outcome: models.ChallengeActive, StartedAt: "2024-04-01"},
		{ID: 3, ChallengeID: CategoryLimit, Outcome: models.ChallengeCompleted, StartedAt: "2024-01-01", FinishedAt: "2024-02-01", Points: 150},
		{ID: 4, ChallengeID: "retired", Outcome: models.ChallengeActive, StartedAt: "2024-04-01"},
	}
	txns := []models.Transaction{spend("2024-04-19", "Shopping", -10)}

	reviewed := Review(entries, txns, april20)

	if len(reviewed) != 3 {
		t.Fatalf("len(Review()) = %d, want 3", len(reviewed))
	}
	first := reviewed[0]
	if !first.Changed || first.Outcome != models.ChallengeCompleted || first.Earned != 100 || first.FinishedAt != "2024-04-20" {
		t.Errorf("no-spend attempt = %+v, want completed today with 100 points", first)
	}
	if reviewed[1].Changed || reviewed[1].Outcome != models.ChallengeActive {
		t.Errorf("save attempt = %+v, want still active", reviewed[1])
	}
	if reviewed[2].Changed {
		t.Errorf("finished attempt was changed: %+v", reviewed[2])
	}

	b := NewBoard(reviewed)
	if len(b.Active) != 1 || len(b.Finished) != 2 || b.TotalPoints != 250 {
		t.Errorf("board = %d active, %d finished, %d points; want 1, 2, 250", len(b.Active), len(b.Finished), b.TotalPoints)
	}
	if len(b.Available) != len(Catalog) {
		t.Errorf("Available = %d definitions, want %d", len(b.Available), len(Catalog))
	}
}
