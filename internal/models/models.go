package models

import (
	"time"
)

// DateLayout is the storage and wire format for transaction dates.
const DateLayout = "2006-01-02"

// Categories is the list of selectable transaction categories
var Categories = []string{
	"Food & Dining",
	"Shopping",
	"Transportation",
	"Bills & Utilities",
	"Entertainment",
	"Healthcare",
	"Travel",
	"Income",
	"Other",
}

// DefaultCategory is assigned when nothing better is known
const DefaultCategory = "Other"

// UnknownMerchant is the placeholder for rows without a usable merchant
const UnknownMerchant = "Unknown"

type User struct {
	ID           int64     `json:"id"`
	Username     string    `json:"username"`
	Email        string    `json:"email"`
	PasswordHash string    `json:"-"`
	AutoDetect   bool      `json:"auto_detect"`
	CreatedAt    time.Time `json:"created_at"`
}

type Transaction struct {
	ID           int64     `json:"id"`
	UserID       int64     `json:"user_id"`
	Amount       float64   `json:"amount"` // negative for expenses
	Merchant     string    `json:"merchant"`
	Category     string    `json:"category"`
	Date         string    `json:"date"`
	EnvelopeID   *int64    `json:"envelope_id,omitempty"`
	Notes        string    `json:"notes"`
	IsOnlineSale bool      `json:"is_online_sale"`
	CreatedAt    time.Time `json:"created_at"`
}

// Day parses the transaction date.
func (t Transaction) Day() (time.Time, error) {
	return time.Parse(DateLayout, t.Date)
}

// IsExpense reports whether the transaction takes money out.
func (t Transaction) IsExpense() bool {
	return t.Amount < 0
}

// DetectedTransaction is an imported row waiting for the user to accept or reject it
type DetectedTransaction struct {
	ID         int64     `json:"id"`
	UserID     int64     `json:"user_id"`
	Amount     float64   `json:"amount"`
	Merchant   string    `json:"merchant"`
	Category   string    `json:"category"`
	Date       string    `json:"date"`
	Confidence string    `json:"confidence"`
	IsOnline   bool      `json:"is_online"`
	TrackingID string    `json:"tracking_id,omitempty"`
	CreatedAt  time.Time `json:"created_at"`
}

// Promote turns the staged row into the transaction recorded on acceptance
func (d DetectedTransaction) Promote() Transaction {
	notes := "Auto-detected (" + d.Confidence + " confidence)"
	if d.TrackingID != "" {
		notes += " | tracking_id=" + d.TrackingID
	}
	return Transaction{
		UserID:       d.UserID,
		Amount:       d.Amount,
		Merchant:     d.Merchant,
		Category:     d.Category,
		Date:         d.Date,
		Notes:        notes,
		IsOnlineSale: d.IsOnline,
	}
}

type Envelope struct {
	ID        int64     `json:"id"`
	UserID    int64     `json:"user_id"`
	Name      string    `json:"name"`
	Allocated float64   `json:"allocated"`
	Spent     float64   `json:"spent"`
	CreatedAt time.Time `json:"created_at"`
}

// Remaining is what is left to spend in the envelope
func (e Envelope) Remaining() float64 {
	return e.Allocated - e.Spent
}

// Overspent reports whether spending has passed the allocation
func (e Envelope) Overspent() bool {
	return e.Spent > e.Allocated
}

type Goal struct {
	ID            int64     `json:"id"`
	UserID        int64     `json:"user_id"`
	Name          string    `json:"name"`
	TargetAmount  float64   `json:"target_amount"`
	CurrentAmount float64   `json:"current_amount"`
	Deadline      string    `json:"deadline,omitempty"`
	CreatedAt     time.Time `json:"created_at"`
}

// Complete reports whether the goal has been reached
func (g Goal) Complete() bool {
	return g.CurrentAmount >= g.TargetAmount
}

// Progress returns completion as a percentage capped at 100
func (g Goal) Progress() float64 {
	if g.TargetAmount <= 0 {
		return 100
	}
	p := g.CurrentAmount / g.TargetAmount * 100
	if p > 100 {
		return 100
	}
	return p
}

// BalanceSummary is income, expenses and their difference for a user
type BalanceSummary struct {
	Income   float64 `json:"income"`
	Expenses float64 `json:"expenses"`
	Balance  float64 `json:"balance"`
}

// TrackedLink is a shopping link handed out to a user
type TrackedLink struct {
	TrackingID string    `json:"tracking_id"`
	UserID     int64     `json:"user_id"`
	Merchant   string    `json:"merchant"`
	Title      string    `json:"title"`
	Amount     *float64  `json:"amount,omitempty"`
	TargetURL  string    `json:"target_url"`
	Clicked    bool      `json:"clicked"`
	Accepted   bool      `json:"accepted"`
	CreatedAt  time.Time `json:"created_at"`
}

type LinkClick struct {
	ID         int64     `json:"id"`
	TrackingID string    `json:"tracking_id"`
	UserID     int64     `json:"user_id"`
	ClickedAt  time.Time `json:"clicked_at"`
	UserAgent  string    `json:"user_agent"`
	Referrer   string    `json:"referrer"`
	Merchant   string    `json:"merchant,omitempty"`
	Title      string    `json:"title,omitempty"`
	Amount     *float64  `json:"amount,omitempty"`
	Accepted   bool      `json:"accepted"`
}

// ClickStats summarises a user's tracked links
type ClickStats struct {
	TotalLinks    int     `json:"total_links"`
	TotalClicks   int     `json:"total_clicks"`
	ClickedLinks  int     `json:"clicked_links"`
	AcceptedLinks int     `json:"accepted_links"`
	ClickRate     float64 `json:"click_rate"`
}

// Challenge outcomes
const (
	ChallengeActive    = "active"
	ChallengeCompleted = "completed"
	ChallengeFailed    = "failed"
)

// Challenge is one attempt by a user at a savings challenge
type Challenge struct {
	ID          int64     `json:"id"`
	UserID      int64     `json:"user_id"`
	ChallengeID string    `json:"challenge_id"`
	Outcome     string    `json:"outcome"`
	StartedAt   string    `json:"started_at"`
	FinishedAt  string    `json:"finished_at,omitempty"`
	Points      int       `json:"points"`
	CreatedAt   time.Time `json:"created_at"`
}

type Offer struct {
	ID              int64     `json:"id"`
	UserID          int64     `json:"user_id"`
	Merchant        string    `json:"merchant"`
	DiscountPercent float64   `json:"discount_percent"`
	Description     string    `json:"description"`
	Expiry          string    `json:"expiry,omitempty"`
	Active          bool      `json:"active"`
	CreatedAt       time.Time `json:"created_at"`
}

// Expired reports whether the offer's expiry date is before now
func (o Offer) Expired(now time.Time) bool {
	if o.Expiry == "" {
		return false
	}
	exp, err := time.Parse(DateLayout, o.Expiry)
	if err != nil {
		return false
	}
	today, _ := time.Parse(DateLayout, now.Format(DateLayout))
	return exp.Before(today)
}
