package handlers

import (
	"net/http"
	"strings"
	"time"

	"expensetracker/internal/logger"
	"expensetracker/internal/models"
	"expensetracker/internal/offers"
)

func (h *Handler) OffersList(w http.ResponseWriter, r *http.Request) {
	list, err := h.db.ListOffers(userID(r), true)
	if err != nil {
		fail(w, r, "offer_list_error", err)
		return
	}
	writeJSON(w, http.StatusOK, map[string]any{
		"offers": nonNil(offers.Active(list, h.now())),
		"sites":  offers.Sites,
	})
}

func (h *Handler) OffersCreate(w http.ResponseWriter, r *http.Request) {
	var req struct {
		Merchant        string  `json:"merchant"`
		DiscountPercent float64 `json:"discount_percent"`
		Description     string  `json:"description"`
		Expiry          string  `json:"expiry"`
	}
	if err := decodeJSON(w, r, &req); err != nil {
		fail(w, r, "offer_decode_error", err)
		return
	}
	if strings.TrimSpace(req.Merchant) == "" {
		fail(w, r, "offer_invalid", badRequest("merchant is required"))
		return
	}
	if req.Expiry != "" {
		if _, err := time.Parse(models.DateLayout, req.Expiry); err != nil {
			fail(w, r, "offer_invalid", badRequest("expiry must be YYYY-MM-DD"))
			return
		}
	}

	o := models.Offer{
		UserID:          userID(r),
		Merchant:        strings.TrimSpace(req.Merchant),
		DiscountPercent: req.DiscountPercent,
		Description:     req.Description,
		Expiry:          req.Expiry,
		Active:          true,
	}
	id, err := h.db.CreateOffer(o)
	if err != nil {
		fail(w, r, "offer_create_error", err)
		return
	}
	o.ID = id
	logger.FromContext(r.Context()).Info("offer_created", "offer_id", id, "merchant", o.Merchant)
	writeJSON(w, http.StatusCreated, o)
}

func (h *Handler) OffersDeactivate(w http.ResponseWriter, r *http.Request) {
	id, err := pathID(r, "id")
	if err != nil {
		fail(w, r, "offer_deactivate_invalid", err)
		return
	}
	if err := h.db.DeactivateOffer(userID(r), id); err != nil {
		fail(w, r, "offer_deactivate_error", err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

func (h *Handler) OffersSavings(w http.ResponseWriter, r *http.Request) {
	list, err := h.db.ListOffers(userID(r), true)
	if err != nil {
		fail(w, r, "offer_list_error", err)
		return
	}
	txns, err := h.db.ListTransactions(userID(r), 0)
	if err != nil {
		fail(w, r, "savings_transactions_error", err)
		return
	}
	writeJSON(w, http.StatusOK, offers.PotentialSavings(list, txns, h.now()))
}
