package handlers

import (
	"net/http"
	"strings"

	"expensetracker/internal/forecast"
	"expensetracker/internal/logger"
)

func (h *Handler) EnvelopesList(w http.ResponseWriter, r *http.Request) {
	envelopes, err := h.db.ListEnvelopes(userID(r))
	if err != nil {
		fail(w, r, "envelope_list_error", err)
		return
	}
	available, err := h.db.AvailableFunds(userID(r))
	if err != nil {
		fail(w, r, "envelope_funds_error", err)
		return
	}
	writeJSON(w, http.StatusOK, map[string]any{
		"envelopes":       nonNil(envelopes),
		"available_funds": available,
	})
}

func (h *Handler) EnvelopesCreate(w http.ResponseWriter, r *http.Request) {
	var req struct {
		Name      string  `json:"name"`
		Allocated float64 `json:"allocated"`
	}
	if err := decodeJSON(w, r, &req); err != nil {
		fail(w, r, "envelope_decode_error", err)
		return
	}
	req.Name = strings.TrimSpace(req.Name)
	if req.Name == "" {
		fail(w, r, "envelope_invalid", badRequest("name is required"))
		return
	}

	env, err := h.db.CreateEnvelope(userID(r), req.Name, req.Allocated)
	if err != nil {
		fail(w, r, "envelope_create_error", err)
		return
	}
	logger.FromContext(r.Context()).Info("envelope_created", "envelope_id", env.ID, "allocated", env.Allocated)
	writeJSON(w, http.StatusCreated, env)
}

func (h *Handler) EnvelopeTransactions(w http.ResponseWriter, r *http.Request) {
	id, err := pathID(r, "id")
	if err != nil {
		fail(w, r, "envelope_transactions_invalid", err)
		return
	}
	if _, err := h.db.GetEnvelope(userID(r), id); err != nil {
		fail(w, r, "envelope_get_error", err)
		return
	}
	txns, err := h.db.ListEnvelopeTransactions(userID(r), id)
	if err != nil {
		fail(w, r, "envelope_transactions_error", err)
		return
	}
	writeJSON(w, http.StatusOK, nonNil(txns))
}

type amountRequest struct {
	Amount float64 `json:"amount"`
}

func (h *Handler) EnvelopesAllocate(w http.ResponseWriter, r *http.Request) {
	id, err := pathID(r, "id")
	if err != nil {
		fail(w, r, "envelope_allocate_invalid", err)
		return
	}
	var req amountRequest
	if err := decodeJSON(w, r, &req); err != nil {
		fail(w, r, "envelope_allocate_decode_error", err)
		return
	}

	if err := h.db.AllocateToEnvelope(userID(r), id, req.Amount); err != nil {
		fail(w, r, "envelope_allocate_error", err)
		return
	}
	env, err := h.db.GetEnvelope(userID(r), id)
	if err != nil {
		fail(w, r, "envelope_get_error", err)
		return
	}
	logger.FromContext(r.Context()).Info("envelope_allocated", "envelope_id", id, "amount", req.Amount)
	writeJSON(w, http.StatusOK, env)
}

func (h *Handler) EnvelopesTransfer(w http.ResponseWriter, r *http.Request) {
	var req struct {
		FromID int64   `json:"from_envelope_id"`
		ToID   int64   `json:"to_envelope_id"`
		Amount float64 `json:"amount"`
	}
	if err := decodeJSON(w, r, &req); err != nil {
		fail(w, r, "envelope_transfer_decode_error", err)
		return
	}
	if req.FromID == req.ToID {
		fail(w, r, "envelope_transfer_invalid", badRequest("cannot transfer to the same envelope"))
		return
	}

	if err := h.db.TransferEnvelopeFunds(userID(r), req.FromID, req.ToID, req.Amount); err != nil {
		fail(w, r, "envelope_transfer_error", err)
		return
	}
	logger.FromContext(r.Context()).Info("envelope_transfer", "from", req.FromID, "to", req.ToID, "amount", req.Amount)
	writeJSON(w, http.StatusOK, map[string]string{"status": "transferred"})
}

func (h *Handler) EnvelopeBreach(w http.ResponseWriter, r *http.Request) {
	id, err := pathID(r, "id")
	if err != nil {
		fail(w, r, "envelope_breach_invalid", err)
		return
	}
	env, err := h.db.GetEnvelope(userID(r), id)
	if err != nil {
		fail(w, r, "envelope_get_error", err)
		return
	}
	txns, err := h.db.ListEnvelopeTransactions(userID(r), id)
	if err != nil {
		fail(w, r, "envelope_transactions_error", err)
		return
	}

	breach := forecast.BudgetBreach(env, txns)
	writeJSON(w, http.StatusOK, map[string]any{
		"breached": breach != nil,
		"breach":   breach,
	})
}

func (h *Handler) GoalsList(w http.ResponseWriter, r *http.Request) {
	goals, err := h.db.ListGoals(userID(r))
	if err != nil {
		fail(w, r, "goal_list_error", err)
		return
	}
	writeJSON(w, http.StatusOK, nonNil(goals))
}

func (h *Handler) GoalsCreate(w http.ResponseWriter, r *http.Request) {
	var req struct {
		Name     string  `json:"name"`
		Target   float64 `json:"target_amount"`
		Deadline string  `json:"deadline"`
	}
	if err := decodeJSON(w, r, &req); err != nil {
		fail(w, r, "goal_decode_error", err)
		return
	}
	req.Name = strings.TrimSpace(req.Name)
	if req.Name == "" {
		fail(w, r, "goal_invalid", badRequest("name is required"))
		return
	}

	g, err := h.db.CreateGoal(userID(r), req.Name, req.Target, req.Deadline)
	if err != nil {
		fail(w, r, "goal_create_error", err)
		return
	}
	logger.FromContext(r.Context()).Info("goal_created", "goal_id", g.ID)
	writeJSON(w, http.StatusCreated, g)
}

func (h *Handler) GoalsContribute(w http.ResponseWriter, r *http.Request) {
	id, err := pathID(r, "id")
	if err != nil {
		fail(w, r, "goal_contribute_invalid", err)
		return
	}
	var req amountRequest
	if err := decodeJSON(w, r, &req); err != nil {
		fail(w, r, "goal_contribute_decode_error", err)
		return
	}

	g, err := h.db.ContributeToGoal(userID(r), id, req.Amount)
	if err != nil {
		fail(w, r, "goal_contribute_error", err)
		return
	}
	logger.FromContext(r.Context()).Info("goal_contribution", "goal_id", id, "amount", req.Amount, "complete", g.Complete())
	writeJSON(w, http.StatusOK, map[string]any{
		"goal":     g,
		"complete": g.Complete(),
		"progress": g.Progress(),
	})
}

func (h *Handler) GoalsDelete(w http.ResponseWriter, r *http.Request) {
	id, err := pathID(r, "id")
	if err != nil {
		fail(w, r, "goal_delete_invalid", err)
		return
	}
	if err := h.db.DeleteGoal(userID(r), id); err != nil {
		fail(w, r, "goal_delete_error", err)
		return
	}
	logger.FromContext(r.Context()).Info("goal_deleted", "goal_id", id)
	w.WriteHeader(http.StatusNoContent)
}
