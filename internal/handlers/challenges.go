package handlers

import (
	"net/http"

	"github.com/go-chi/chi/v5"

	"expensetracker/internal/insights"
	"expensetracker/internal/logger"
	"expensetracker/internal/models"
)

func (h *Handler) Comparison(w http.ResponseWriter, r *http.Request) {
	txns, err := h.db.ListTransactions(userID(r), 0)
	if err != nil {
		fail(w, r, "comparison_transactions_error", err)
		return
	}
	writeJSON(w, http.StatusOK, insights.Compare(txns, h.now()))
}

// ChallengesList reviews the user's challenges, settling any that finished
// since the last look, and returns the board.
func (h *Handler) ChallengesList(w http.ResponseWriter, r *http.Request) {
	l := logger.FromContext(r.Context())
	id := userID(r)

	entries, err := h.db.ListChallenges(id)
	if err != nil {
		fail(w, r, "challenge_list_error", err)
		return
	}
	txns, err := h.db.ListTransactions(id, 0)
	if err != nil {
		fail(w, r, "challenge_transactions_error", err)
		return
	}

	reviewed := insights.Review(entries, txns, h.now())
	for _, p := range reviewed {
		if !p.Changed {
			continue
		}
		if err := h.db.FinishChallenge(id, p.EntryID, p.Outcome, p.FinishedAt, p.Earned); err != nil {
			fail(w, r, "challenge_finish_error", err)
			return
		}
		l.Info("challenge_finished", "challenge", p.ID, "outcome", p.Outcome, "points", p.Earned)
	}
	writeJSON(w, http.StatusOK, insights.NewBoard(reviewed))
}

func (h *Handler) ChallengesStart(w http.ResponseWriter, r *http.Request) {
	def, ok := insights.Lookup(chi.URLParam(r, "challenge"))
	if !ok {
		fail(w, r, "challenge_start_invalid", badRequest("unknown challenge"))
		return
	}

	c, err := h.db.StartChallenge(userID(r), def.ID, h.now().Format(models.DateLayout))
	if err != nil {
		fail(w, r, "challenge_start_error", err)
		return
	}
	logger.FromContext(r.Context()).Info("challenge_started", "challenge", def.ID, "entry_id", c.ID)
	writeJSON(w, http.StatusCreated, c)
}
