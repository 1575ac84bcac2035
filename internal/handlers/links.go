package handlers

import (
	"net/http"
	"strconv"

	"github.com/go-chi/chi/v5"

	"expensetracker/internal/linktrack"
	"expensetracker/internal/logger"
)

func (h *Handler) LinksCreate(w http.ResponseWriter, r *http.Request) {
	var req struct {
		Merchant  string   `json:"merchant"`
		Title     string   `json:"title"`
		Amount    *float64 `json:"amount"`
		TargetURL string   `json:"target_url"`
	}
	if err := decodeJSON(w, r, &req); err != nil {
		fail(w, r, "link_decode_error", err)
		return
	}

	link, err := h.links.Create(r.Context(), userID(r), req.Merchant, req.Title, req.Amount, req.TargetURL)
	if err != nil {
		fail(w, r, "link_create_error", err)
		return
	}
	writeJSON(w, http.StatusCreated, map[string]any{
		"link":         link,
		"tracking_url": linktrack.URL(link.TrackingID),
		"confidence":   linktrack.Confidence(link.Merchant, link.Amount),
		"safe_target":  linktrack.IsSafeRedirect(link.TargetURL),
	})
}

func (h *Handler) LinksClicks(w http.ResponseWriter, r *http.Request) {
	limit := 50
	if s := r.URL.Query().Get("limit"); s != "" {
		if n, err := strconv.Atoi(s); err == nil && n > 0 {
			limit = n
		}
	}
	clicks, err := h.db.ListUserClicks(userID(r), limit)
	if err != nil {
		fail(w, r, "link_clicks_error", err)
		return
	}
	writeJSON(w, http.StatusOK, nonNil(clicks))
}

func (h *Handler) LinksStats(w http.ResponseWriter, r *http.Request) {
	stats, err := h.db.ClickStats(userID(r))
	if err != nil {
		fail(w, r, "link_stats_error", err)
		return
	}
	writeJSON(w, http.StatusOK, stats)
}

// Track follows a tracking link: the purchase is booked (or staged with
// ?review=1) and the browser is sent on to the target when it is safe.
func (h *Handler) Track(w http.ResponseWriter, r *http.Request) {
	trackingID := chi.URLParam(r, "id")
	review := r.URL.Query().Get("review") == "1"

	v, err := h.links.Visit(r.Context(), trackingID, userID(r), r.UserAgent(), r.Referer(), review)
	if err != nil {
		fail(w, r, "link_visit_error", err)
		return
	}
	if v.Transaction != nil {
		h.record(r, *v.Transaction)
	}
	logger.FromContext(r.Context()).Info("link_visited",
		"tracking_id", trackingID,
		"review", review,
		"confidence", v.Confidence,
		"redirect", v.Redirect != "",
	)

	if v.Redirect != "" {
		http.Redirect(w, r, v.Redirect, http.StatusFound)
		return
	}
	writeJSON(w, http.StatusOK, map[string]any{
		"transaction": v.Transaction,
		"detected_id": v.DetectedID,
		"confidence":  v.Confidence,
		"message":     "target is not an allowed redirect",
	})
}
