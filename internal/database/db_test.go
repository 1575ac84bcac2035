package database

import (
	"errors"
	"path/filepath"
	"testing"
	"time"

	"golang.org/x/crypto/bcrypt"

	"expensetracker/internal/models"
)

func newTestDB(t *testing.T) *DB {
	t.Helper()
	passwordCost = bcrypt.MinCost

	db, err := Open(filepath.Join(t.TempDir(), "test.db"))
	if err != nil {
		t.Fatalf("Open() error = %v", err)
	}
	t.Cleanup(func() { db.Close() })
	if err := db.Init(); err != nil {
		t.Fatalf("Init() error = %v", err)
	}
	return db
}

func newTestUser(t *testing.T, db *DB) models.User {
	t.Helper()
	u, err := db.CreateUser("alice", "Alice@Example.com", "secret123", true)
	if err != nil {
		t.Fatalf("CreateUser() error = %v", err)
	}
	return u
}

func addTxn(t *testing.T, db *DB, userID int64, amount float64, merchant, date string, envelopeID *int64) int64 {
	t.Helper()
	id, err := db.AddTransaction(models.Transaction{
		UserID:     userID,
		Amount:     amount,
		Merchant:   merchant,
		Category:   "Other",
		Date:       date,
		EnvelopeID: envelopeID,
	})
	if err != nil {
		t.Fatalf("AddTransaction(%v, %s) error = %v", amount, merchant, err)
	}
	return id
}

func TestUsers(t *testing.T) {
	db := newTestDB(t)
	u := newTestUser(t, db)

	if u.Email != "alice@example.com" {
		t.Errorf("Email = %q, want lower-cased", u.Email)
	}

	if _, err := db.CreateUser("bob", "alice@example.com", "pw", false); !errors.Is(err, ErrEmailTaken) {
		t.Errorf("duplicate CreateUser() error = %v, want ErrEmailTaken", err)
	}

	tests := []struct {
		name     string
		email    string
		password string
		wantErr  error
	}{
		{"valid", "alice@example.com", "secret123", nil},
		{"case insensitive email", " ALICE@example.com", "secret123", nil},
		{"wrong password", "alice@example.com", "nope", ErrInvalidCredentials},
		{"unknown email", "carol@example.com", "secret123", ErrInvalidCredentials},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := db.Authenticate(tt.email, tt.password)
			if !errors.Is(err, tt.wantErr) {
				t.Fatalf("Authenticate() error = %v, want %v", err, tt.wantErr)
			}
			if tt.wantErr == nil && got.ID != u.ID {
				t.Errorf("Authenticate() id = %d, want %d", got.ID, u.ID)
			}
		})
	}

	if err := db.UpdateUserSettings(u.ID, "alice2", false); err != nil {
		t.Fatalf("UpdateUserSettings() error = %v", err)
	}
	got, err := db.GetUser(u.ID)
	if err != nil {
		t.Fatalf("GetUser() error = %v", err)
	}
	if got.Username != "alice2" || got.AutoDetect {
		t.Errorf("GetUser() = %+v, want updated settings", got)
	}
	if _, err := db.GetUser(999); !errors.Is(err, ErrNotFound) {
		t.Errorf("GetUser(999) error = %v, want ErrNotFound", err)
	}
}

func TestTransactionsAndEnvelopeSpent(t *testing.T) {
	db := newTestDB(t)
	u := newTestUser(t, db)

	addTxn(t, db, u.ID, 1000, "Salary", "2024-01-01", nil)
	env, err := db.CreateEnvelope(u.ID, "Groceries", 300)
	if err != nil {
		t.Fatalf("CreateEnvelope() error = %v", err)
	}

	id := addTxn(t, db, u.ID, -120, "Walmart", "2024-01-05", &env.ID)
	addTxn(t, db, u.ID, -30, "Uber", "2024-01-06", nil)

	env, _ = db.GetEnvelope(u.ID, env.ID)
	if env.Spent != 120 {
		t.Errorf("Spent = %v, want 120", env.Spent)
	}

	txns, err := db.ListTransactions(u.ID, 0)
	if err != nil {
		t.Fatalf("ListTransactions() error = %v", err)
	}
	if len(txns) != 3 || txns[0].Merchant != "Uber" {
		t.Errorf("ListTransactions() = %+v, want 3 newest first", txns)
	}
	if limited, _ := db.ListTransactions(u.ID, 2); len(limited) != 2 {
		t.Errorf("ListTransactions(limit 2) len = %d", len(limited))
	}

	sum, err := db.BalanceSummary(u.ID)
	if err != nil {
		t.Fatalf("BalanceSummary() error = %v", err)
	}
	want := models.BalanceSummary{Income: 1000, Expenses: 150, Balance: 850}
	if sum != want {
		t.Errorf("BalanceSummary() = %+v, want %+v", sum, want)
	}

	if err := db.DeleteTransaction(u.ID, id); err != nil {
		t.Fatalf("DeleteTransaction() error = %v", err)
	}
	env, _ = db.GetEnvelope(u.ID, env.ID)
	if env.Spent != 0 {
		t.Errorf("Spent after delete = %v, want 0", env.Spent)
	}
	if err := db.DeleteTransaction(u.ID, id); !errors.Is(err, ErrNotFound) {
		t.Errorf("second DeleteTransaction() error = %v, want ErrNotFound", err)
	}

	bogus := int64(42)
	_, err = db.AddTransaction(models.Transaction{UserID: u.ID, Amount: -1, Merchant: "x", Date: "2024-01-01", EnvelopeID: &bogus})
	if !errors.Is(err, ErrNotFound) {
		t.Errorf("AddTransaction(unknown envelope) error = %v, want ErrNotFound", err)
	}
	if _, err := db.AddTransaction(models.Transaction{UserID: u.ID, Amount: -1, Date: "01/02/2024"}); err == nil {
		t.Error("AddTransaction(bad date) error = nil")
	}
}

func TestEnvelopeFunds(t *testing.T) {
	db := newTestDB(t)
	u := newTestUser(t, db)
	addTxn(t, db, u.ID, 500, "Salary", "2024-01-01", nil)

	if _, err := db.CreateEnvelope(u.ID, "Too big", 600); !errors.Is(err, ErrInsufficientFunds) {
		t.Fatalf("CreateEnvelope(600) error = %v, want ErrInsufficientFunds", err)
	}
	if _, err := db.CreateEnvelope(u.ID, " \t", 0); !errors.Is(err, ErrInvalidName) {
		t.Errorf("CreateEnvelope(blank name) error = %v, want ErrInvalidName", err)
	}
	food, err := db.CreateEnvelope(u.ID, "Food", 200)
	if err != nil {
		t.Fatalf("CreateEnvelope() error = %v", err)
	}
	fun, err := db.CreateEnvelope(u.ID, "Fun", 0)
	if err != nil {
		t.Fatalf("CreateEnvelope() error = %v", err)
	}

	avail, err := db.AvailableFunds(u.ID)
	if err != nil {
		t.Fatalf("AvailableFunds() error = %v", err)
	}
	if avail != 300 {
		t.Errorf("AvailableFunds() = %v, want 300", avail)
	}

	tests := []struct {
		name    string
		amount  float64
		wantErr error
	}{
		{"zero", 0, ErrInvalidAmount},
		{"negative", -5, ErrInvalidAmount},
		{"over available", 301, ErrInsufficientFunds},
		{"fits", 100, nil},
	}
	for _, tt := range tests {
		t.Run("allocate "+tt.name, func(t *testing.T) {
			err := db.AllocateToEnvelope(u.ID, fun.ID, tt.amount)
			if !errors.Is(err, tt.wantErr) {
				t.Errorf("AllocateToEnvelope(%v) error = %v, want %v", tt.amount, err, tt.wantErr)
			}
		})
	}

	if err := db.TransferEnvelopeFunds(u.ID, food.ID, fun.ID, 250); !errors.Is(err, ErrInsufficientFunds) {
		t.Errorf("TransferEnvelopeFunds(250) error = %v, want ErrInsufficientFunds", err)
	}
	if err := db.TransferEnvelopeFunds(u.ID, food.ID, food.ID, 10); err == nil {
		t.Error("TransferEnvelopeFunds(same envelope) error = nil")
	}
	if err := db.TransferEnvelopeFunds(u.ID, food.ID, fun.ID, 50); err != nil {
		t.Fatalf("TransferEnvelopeFunds(50) error = %v", err)
	}

	envs, err := db.ListEnvelopes(u.ID)
	if err != nil {
		t.Fatalf("ListEnvelopes() error = %v", err)
	}
	got := map[string]float64{}
	for _, e := range envs {
		got[e.Name] = e.Allocated
	}
	if got["Food"] != 150 || got["Fun"] != 150 {
		t.Errorf("allocations = %v, want Food 150, Fun 150", got)
	}
}

func TestGoals(t *testing.T) {
	db := newTestDB(t)
	u := newTestUser(t, db)
	addTxn(t, db, u.ID, 100, "Salary", "2024-01-01", nil)

	g, err := db.CreateGoal(u.ID, "Laptop", 80, "2024-12-31")
	if err != nil {
		t.Fatalf("CreateGoal() error = %v", err)
	}
	if _, err := db.CreateGoal(u.ID, "Nothing", 0, ""); !errors.Is(err, ErrInvalidAmount) {
		t.Errorf("CreateGoal(0) error = %v, want ErrInvalidAmount", err)
	}
	if _, err := db.CreateGoal(u.ID, "   ", 10, ""); !errors.Is(err, ErrInvalidName) {
		t.Errorf("CreateGoal(blank name) error = %v, want ErrInvalidName", err)
	}

	g, err = db.ContributeToGoal(u.ID, g.ID, 80)
	if err != nil {
		t.Fatalf("ContributeToGoal() error = %v", err)
	}
	if !g.Complete() {
		t.Errorf("goal %+v should be complete", g)
	}
	if _, err := db.ContributeToGoal(u.ID, g.ID, 30); !errors.Is(err, ErrInsufficientFunds) {
		t.Errorf("ContributeToGoal(over) error = %v, want ErrInsufficientFunds", err)
	}

	if err := db.DeleteGoal(u.ID, g.ID); err != nil {
		t.Fatalf("DeleteGoal() error = %v", err)
	}
	if goals, _ := db.ListGoals(u.ID); len(goals) != 0 {
		t.Errorf("ListGoals() = %v, want empty", goals)
	}
	if err := db.DeleteGoal(u.ID, g.ID); !errors.Is(err, ErrNotFound) {
		t.Errorf("DeleteGoal() again error = %v, want ErrNotFound", err)
	}
}

func TestDetectedLifecycle(t *testing.T) {
	db := newTestDB(t)
	u := newTestUser(t, db)
	addTxn(t, db, u.ID, 100, "Salary", "2024-01-01", nil)
	env, _ := db.CreateEnvelope(u.ID, "Shopping", 50)

	n, err := db.StoreDetected(u.ID, []models.DetectedTransaction{
		{Amount: -25, Merchant: "Amazon", Category: "Shopping", Date: "2024-01-03", Confidence: "High", IsOnline: true},
		{Amount: -8, Merchant: "", Date: "2024-01-04", Confidence: "Low"},
	})
	if err != nil || n != 2 {
		t.Fatalf("StoreDetected() = %d, %v", n, err)
	}

	items, err := db.ListDetected(u.ID)
	if err != nil {
		t.Fatalf("ListDetected() error = %v", err)
	}
	if len(items) != 2 {
		t.Fatalf("ListDetected() len = %d, want 2", len(items))
	}
	var amazon, unknown models.DetectedTransaction
	for _, d := range items {
		if d.Merchant == "Amazon" {
			amazon = d
		} else {
			unknown = d
		}
	}
	if unknown.Merchant != models.UnknownMerchant || unknown.Category != models.DefaultCategory {
		t.Errorf("defaults not applied: %+v", unknown)
	}

	txn, err := db.AcceptDetected(u.ID, amazon.ID, &env.ID, "")
	if err != nil {
		t.Fatalf("AcceptDetected() error = %v", err)
	}
	if txn.Notes != "Auto-detected (High confidence)" || !txn.IsOnlineSale {
		t.Errorf("AcceptDetected() = %+v", txn)
	}
	env, _ = db.GetEnvelope(u.ID, env.ID)
	if env.Spent != 25 {
		t.Errorf("envelope spent = %v, want 25", env.Spent)
	}
	if _, err := db.GetDetected(u.ID, amazon.ID); !errors.Is(err, ErrNotFound) {
		t.Errorf("accepted row still staged: %v", err)
	}

	if err := db.RejectDetected(u.ID, unknown.ID); err != nil {
		t.Fatalf("RejectDetected() error = %v", err)
	}
	if err := db.RejectDetected(u.ID, unknown.ID); !errors.Is(err, ErrNotFound) {
		t.Errorf("RejectDetected() again error = %v, want ErrNotFound", err)
	}
}

func TestLinks(t *testing.T) {
	db := newTestDB(t)
	u := newTestUser(t, db)

	amount := 499.0
	link := models.TrackedLink{
		TrackingID: "abc-123",
		UserID:     u.ID,
		Merchant:   "Amazon",
		Title:      "Headphones",
		Amount:     &amount,
		TargetURL:  "https://www.amazon.in/dp/1",
	}
	if err := db.CreateTrackedLink(link); err != nil {
		t.Fatalf("CreateTrackedLink() error = %v", err)
	}
	if err := db.CreateTrackedLink(models.TrackedLink{TrackingID: "no-amount", UserID: u.ID, Merchant: "Shop", TargetURL: "https://x.com"}); err != nil {
		t.Fatalf("CreateTrackedLink() error = %v", err)
	}

	if err := db.RecordClick("abc-123", u.ID, "test-agent", ""); err != nil {
		t.Fatalf("RecordClick() error = %v", err)
	}
	if err := db.RecordClick("missing", u.ID, "", ""); !errors.Is(err, ErrNotFound) {
		t.Errorf("RecordClick(missing) error = %v, want ErrNotFound", err)
	}
	if err := db.MarkLinkAccepted("abc-123"); err != nil {
		t.Fatalf("MarkLinkAccepted() error = %v", err)
	}

	got, err := db.GetTrackedLink("abc-123")
	if err != nil {
		t.Fatalf("GetTrackedLink() error = %v", err)
	}
	if !got.Clicked || !got.Accepted || got.Amount == nil || *got.Amount != 499 {
		t.Errorf("GetTrackedLink() = %+v", got)
	}
	if other, _ := db.GetTrackedLink("no-amount"); other.Amount != nil {
		t.Errorf("Amount = %v, want nil", *other.Amount)
	}

	clicks, err := db.ListUserClicks(u.ID, 10)
	if err != nil {
		t.Fatalf("ListUserClicks() error = %v", err)
	}
	if len(clicks) != 1 || clicks[0].Title != "Headphones" || !clicks[0].Accepted {
		t.Errorf("ListUserClicks() = %+v", clicks)
	}

	stats, err := db.ClickStats(u.ID)
	if err != nil {
		t.Fatalf("ClickStats() error = %v", err)
	}
	want := models.ClickStats{TotalLinks: 2, TotalClicks: 1, ClickedLinks: 1, AcceptedLinks: 1, ClickRate: 50}
	if stats != want {
		t.Errorf("ClickStats() = %+v, want %+v", stats, want)
	}

	now := time.Date(2024, 3, 9, 12, 0, 0, 0, time.UTC)
	id, err := db.CreateDetectedFromLink(u.ID, got, 499, "High", now)
	if err != nil {
		t.Fatalf("CreateDetectedFromLink() error = %v", err)
	}
	d, err := db.GetDetected(u.ID, id)
	if err != nil {
		t.Fatalf("GetDetected() error = %v", err)
	}
	if d.Amount != -499 || d.Category != "Shopping" || d.Date != "2024-03-09" || d.TrackingID != "abc-123" {
		t.Errorf("detected from link = %+v", d)
	}
	if p := d.Promote(); p.Notes != "Auto-detected (High confidence) | tracking_id=abc-123" {
		t.Errorf("Promote().Notes = %q", p.Notes)
	}
}

func TestOffers(t *testing.T) {
	db := newTestDB(t)
	u := newTestUser(t, db)

	if _, err := db.CreateOffer(models.Offer{UserID: u.ID, Merchant: "Amazon", DiscountPercent: 150}); !errors.Is(err, ErrInvalidAmount) {
		t.Errorf("CreateOffer(150%%) error = %v, want ErrInvalidAmount", err)
	}
	id, err := db.CreateOffer(models.Offer{UserID: u.ID, Merchant: "Amazon", DiscountPercent: 10, Expiry: "2030-01-01"})
	if err != nil {
		t.Fatalf("CreateOffer() error = %v", err)
	}
	if _, err := db.CreateOffer(models.Offer{UserID: u.ID, Merchant: "Swiggy", DiscountPercent: 20}); err != nil {
		t.Fatalf("CreateOffer() error = %v", err)
	}

	if err := db.DeactivateOffer(u.ID, id); err != nil {
		t.Fatalf("DeactivateOffer() error = %v", err)
	}
	active, _ := db.ListOffers(u.ID, true)
	all, _ := db.ListOffers(u.ID, false)
	if len(active) != 1 || active[0].Merchant != "Swiggy" {
		t.Errorf("ListOffers(active) = %+v", active)
	}
	if len(all) != 2 {
		t.Errorf("ListOffers(all) len = %d, want 2", len(all))
	}
}

func TestChallenges(t *testing.T) {
	db := newTestDB(t)
	u := newTestUser(t, db)

	c, err := db.StartChallenge(u.ID, "no_spend_day", "2024-04-01")
	if err != nil {
		t.Fatalf("StartChallenge() error = %v", err)
	}
	if c.Outcome != models.ChallengeActive || c.StartedAt != "2024-04-01" {
		t.Errorf("StartChallenge() = %+v", c)
	}
	if _, err := db.StartChallenge(u.ID, "no_spend_day", "2024-04-02"); !errors.Is(err, ErrChallengeActive) {
		t.Errorf("second StartChallenge() error = %v, want ErrChallengeActive", err)
	}

	if err := db.FinishChallenge(u.ID, c.ID, models.ChallengeCompleted, "2024-04-08", 100); err != nil {
		t.Fatalf("FinishChallenge() error = %v", err)
	}
	if err := db.FinishChallenge(u.ID, c.ID, models.ChallengeFailed, "2024-04-09", 0); !errors.Is(err, ErrNotFound) {
		t.Errorf("FinishChallenge(finished) error = %v, want ErrNotFound", err)
	}
	if _, err := db.StartChallenge(u.ID, "no_spend_day", "2024-04-09"); err != nil {
		t.Fatalf("StartChallenge() after finishing error = %v", err)
	}

	list, err := db.ListChallenges(u.ID)
	if err != nil {
		t.Fatalf("ListChallenges() error = %v", err)
	}
	if len(list) != 2 || list[0].Points != 100 || list[0].FinishedAt != "2024-04-08" || list[1].Outcome != models.ChallengeActive {
		t.Errorf("ListChallenges() = %+v", list)
	}
}
