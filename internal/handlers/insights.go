package handlers

import (
	"net/http"
	"strconv"

	"expensetracker/internal/detect"
	"expensetracker/internal/forecast"
	"expensetracker/internal/logger"
)

const maxForecastDays = 365

func (h *Handler) Recurring(w http.ResponseWriter, r *http.Request) {
	txns, err := h.db.ListTransactions(userID(r), 0)
	if err != nil {
		fail(w, r, "recurring_transactions_error", err)
		return
	}
	writeJSON(w, http.StatusOK, nonNil(detect.DetectRecurring(txns)))
}

func (h *Handler) Forecast(w http.ResponseWriter, r *http.Request) {
	days := h.forecastDays
	if s := r.URL.Query().Get("days"); s != "" {
		n, err := strconv.Atoi(s)
		if err != nil || n < 1 || n > maxForecastDays {
			fail(w, r, "forecast_invalid", badRequest("days must be between 1 and %d", maxForecastDays))
			return
		}
		days = n
	}

	txns, err := h.db.ListTransactions(userID(r), 0)
	if err != nil {
		fail(w, r, "forecast_transactions_error", err)
		return
	}
	patterns := detect.DetectRecurring(txns)
	f := forecast.Balance(txns, patterns, days, h.now())

	logger.FromContext(r.Context()).Debug("forecast_computed", "days", days, "recurring", len(patterns), "confidence", f.Confidence)
	writeJSON(w, http.StatusOK, f)
}

func (h *Handler) Trends(w http.ResponseWriter, r *http.Request) {
	txns, err := h.db.ListTransactions(userID(r), 0)
	if err != nil {
		fail(w, r, "trends_transactions_error", err)
		return
	}
	writeJSON(w, http.StatusOK, forecast.SpendingTrends(txns))
}

func (h *Handler) Prediction(w http.ResponseWriter, r *http.Request) {
	txns, err := h.db.ListTransactions(userID(r), 0)
	if err != nil {
		fail(w, r, "prediction_transactions_error", err)
		return
	}
	trends := forecast.SpendingTrends(txns)
	writeJSON(w, http.StatusOK, forecast.PredictNextMonth(trends.MonthlyTrend))
}
