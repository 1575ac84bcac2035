package handlers

import (
	"net/http"

	"github.com/go-chi/chi/v5"

	"expensetracker/internal/logger"
)

// Routes builds the router: access logging on everything, session auth on
// all but signup, login, health and version.
func (h *Handler) Routes() http.Handler {
	r := chi.NewRouter()
	r.Use(logger.HTTPMiddleware)

	r.Get("/health", func(w http.ResponseWriter, r *http.Request) {
		w.Write([]byte("ok"))
	})

	r.Route("/api", func(r chi.Router) {
		r.Post("/signup", h.Signup)
		r.Post("/login", h.Login)
		r.Post("/logout", h.Logout)
		r.Get("/version", h.APIVersion)

		r.Group(func(r chi.Router) {
			r.Use(h.auth.Middleware)

			r.Get("/me", h.Me)
			r.Put("/settings", h.UpdateSettings)
			r.Get("/dashboard", h.Dashboard)
			r.Get("/categories", h.Categories)

			// Transactions
			r.Get("/transactions", h.TransactionsList)
			r.Post("/transactions", h.TransactionsCreate)
			r.Get("/transactions/{id}", h.TransactionsShow)
			r.Delete("/transactions/{id}", h.TransactionsDelete)
			r.Get("/online-sales", h.OnlineSales)

			// Import and review
			r.Post("/import", h.Import)
			r.Get("/detected", h.DetectedList)
			r.Post("/detected/{id}/accept", h.DetectedAccept)
			r.Post("/detected/{id}/reject", h.DetectedReject)
			r.Post("/reconcile", h.Reconcile)

			// Envelopes
			r.Get("/envelopes", h.EnvelopesList)
			r.Post("/envelopes", h.EnvelopesCreate)
			r.Get("/envelopes/{id}/transactions", h.EnvelopeTransactions)
			r.Post("/envelopes/{id}/allocate", h.EnvelopesAllocate)
			r.Post("/envelopes/transfer", h.EnvelopesTransfer)
			r.Get("/envelopes/{id}/breach", h.EnvelopeBreach)

			// Goals
			r.Get("/goals", h.GoalsList)
			r.Post("/goals", h.GoalsCreate)
			r.Post("/goals/{id}/contribute", h.GoalsContribute)
			r.Delete("/goals/{id}", h.GoalsDelete)

			// Insights
			r.Get("/recurring", h.Recurring)
			r.Get("/forecast", h.Forecast)
			r.Get("/trends", h.Trends)
			r.Get("/prediction", h.Prediction)
			r.Get("/comparison", h.Comparison)

			// Challenges
			r.Get("/challenges", h.ChallengesList)
			r.Post("/challenges/{challenge}/start", h.ChallengesStart)

			// Offers
			r.Get("/offers", h.OffersList)
			r.Post("/offers", h.OffersCreate)
			r.Post("/offers/{id}/deactivate", h.OffersDeactivate)
			r.Get("/offers/savings", h.OffersSavings)

			// Tracked links
			r.Post("/links", h.LinksCreate)
			r.Get("/links/clicks", h.LinksClicks)
			r.Get("/links/stats", h.LinksStats)

			// Files
			r.Get("/export", h.ExportCSV)
			r.Post("/backup", h.Backup)
			r.Post("/backup/open", h.BackupOpen)
		})
	})

	r.With(h.auth.Middleware).Get("/track/{id}", h.Track)

	return r
}
