package handlers

import (
	"net/http"
	"strconv"
	"strings"
	"time"

	"expensetracker/internal/detect"
	"expensetracker/internal/logger"
	"expensetracker/internal/models"
)

type transactionRequest struct {
	Amount     float64 `json:"amount"`
	Type       string  `json:"type"` // "expense" or "income"; sets the sign when given
	Merchant   string  `json:"merchant"`
	Category   string  `json:"category"`
	Date       string  `json:"date"`
	EnvelopeID *int64  `json:"envelope_id"`
	Notes      string  `json:"notes"`
}

func (req transactionRequest) transaction(userID int64, now time.Time) (models.Transaction, error) {
	if req.Amount == 0 {
		return models.Transaction{}, badRequest("amount is required")
	}
	amount := req.Amount
	switch strings.ToLower(req.Type) {
	case "":
	case "expense":
		if amount > 0 {
			amount = -amount
		}
	case "income":
		if amount < 0 {
			amount = -amount
		}
	default:
		return models.Transaction{}, badRequest("type must be expense or income")
	}

	date := strings.TrimSpace(req.Date)
	if date == "" {
		date = now.Format(models.DateLayout)
	} else if _, err := time.Parse(models.DateLayout, date); err != nil {
		return models.Transaction{}, badRequest("date must be YYYY-MM-DD")
	}

	merchant := strings.TrimSpace(req.Merchant)
	if merchant == "" {
		merchant = models.UnknownMerchant
	}
	category := req.Category
	if category == "" {
		category = detect.Classify(merchant, req.Notes)
	}

	return models.Transaction{
		UserID:       userID,
		Amount:       amount,
		Merchant:     merchant,
		Category:     category,
		Date:         date,
		EnvelopeID:   req.EnvelopeID,
		Notes:        req.Notes,
		IsOnlineSale: detect.IsOnlineSale(merchant),
	}, nil
}

func (h *Handler) TransactionsList(w http.ResponseWriter, r *http.Request) {
	limit := 0
	if s := r.URL.Query().Get("limit"); s != "" {
		n, err := strconv.Atoi(s)
		if err != nil || n < 0 {
			fail(w, r, "transaction_list_invalid", badRequest("invalid limit"))
			return
		}
		limit = n
	}

	txns, err := h.db.ListTransactions(userID(r), limit)
	if err != nil {
		fail(w, r, "transaction_list_error", err)
		return
	}
	writeJSON(w, http.StatusOK, nonNil(txns))
}

func (h *Handler) TransactionsCreate(w http.ResponseWriter, r *http.Request) {
	var req transactionRequest
	if err := decodeJSON(w, r, &req); err != nil {
		fail(w, r, "transaction_decode_error", err)
		return
	}
	t, err := req.transaction(userID(r), h.now())
	if err != nil {
		fail(w, r, "transaction_invalid", err)
		return
	}

	t.ID, err = h.db.AddTransaction(t)
	if err != nil {
		fail(w, r, "transaction_add_error", err)
		return
	}
	h.record(r, t)

	logger.FromContext(r.Context()).Info("transaction_added", "transaction_id", t.ID, "category", t.Category)
	saved, err := h.db.GetTransaction(t.UserID, t.ID)
	if err != nil {
		fail(w, r, "transaction_get_error", err)
		return
	}
	writeJSON(w, http.StatusCreated, saved)
}

func (h *Handler) TransactionsShow(w http.ResponseWriter, r *http.Request) {
	id, err := pathID(r, "id")
	if err != nil {
		fail(w, r, "transaction_get_invalid", err)
		return
	}
	t, err := h.db.GetTransaction(userID(r), id)
	if err != nil {
		fail(w, r, "transaction_get_error", err)
		return
	}
	writeJSON(w, http.StatusOK, t)
}

func (h *Handler) TransactionsDelete(w http.ResponseWriter, r *http.Request) {
	id, err := pathID(r, "id")
	if err != nil {
		fail(w, r, "transaction_delete_invalid", err)
		return
	}
	if err := h.db.DeleteTransaction(userID(r), id); err != nil {
		fail(w, r, "transaction_delete_error", err)
		return
	}
	logger.FromContext(r.Context()).Info("transaction_deleted", "transaction_id", id)
	w.WriteHeader(http.StatusNoContent)
}

func (h *Handler) OnlineSales(w http.ResponseWriter, r *http.Request) {
	txns, err := h.db.ListOnlineSales(userID(r))
	if err != nil {
		fail(w, r, "online_sales_error", err)
		return
	}
	writeJSON(w, http.StatusOK, nonNil(txns))
}

type dashboard struct {
	User           models.User               `json:"user"`
	Summary        models.BalanceSummary     `json:"summary"`
	AvailableFunds float64                   `json:"available_funds"`
	Recent         []models.Transaction      `json:"recent_transactions"`
	Envelopes      []models.Envelope         `json:"envelopes"`
	Goals          []models.Goal             `json:"goals"`
	PendingReview  int                       `json:"pending_review"`
	Recurring      []detect.RecurringPattern `json:"recurring"`
}

func (h *Handler) Dashboard(w http.ResponseWriter, r *http.Request) {
	u, err := h.currentUser(r)
	if err != nil {
		fail(w, r, "dashboard_user_error", err)
		return
	}

	d := dashboard{User: u}
	if d.Summary, err = h.db.BalanceSummary(u.ID); err != nil {
		fail(w, r, "dashboard_balance_error", err)
		return
	}
	if d.AvailableFunds, err = h.db.AvailableFunds(u.ID); err != nil {
		fail(w, r, "dashboard_funds_error", err)
		return
	}
	all, err := h.db.ListTransactions(u.ID, 0)
	if err != nil {
		fail(w, r, "dashboard_transactions_error", err)
		return
	}
	d.Recent = nonNil(all[:min(len(all), 10)])
	d.Recurring = nonNil(detect.DetectRecurring(all))

	envelopes, err := h.db.ListEnvelopes(u.ID)
	if err != nil {
		fail(w, r, "dashboard_envelopes_error", err)
		return
	}
	d.Envelopes = nonNil(envelopes)

	goals, err := h.db.ListGoals(u.ID)
	if err != nil {
		fail(w, r, "dashboard_goals_error", err)
		return
	}
	d.Goals = nonNil(goals)

	detected, err := h.db.ListDetected(u.ID)
	if err != nil {
		fail(w, r, "dashboard_detected_error", err)
		return
	}
	d.PendingReview = len(detected)

	writeJSON(w, http.StatusOK, d)
}

// nonNil keeps empty lists as [] rather than null in responses
func nonNil[T any](s []T) []T {
	if s == nil {
		return []T{}
	}
	return s
}
