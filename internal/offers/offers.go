// Package offers applies user-entered merchant discounts to spending.
package offers

import (
	"strings"
	"time"

	"expensetracker/internal/detect"
	"expensetracker/internal/models"
	"expensetracker/internal/money"
)

// Site is a shopping site with a public deals page
type Site struct {
	Name string `json:"name"`
	URL  string `json:"url"`
}

// Sites lists the deals pages shown alongside a user's own offers
var Sites = []Site{
	{"Amazon", "https://www.amazon.in/deals"},
	{"Flipkart", "https://www.flipkart.com/offers-store"},
	{"Myntra", "https://www.myntra.com/sale"},
	{"Swiggy", "https://www.swiggy.com/offers"},
	{"Zomato", "https://www.zomato.com/offers"},
	{"Paytm", "https://paytm.com/offers"},
}

// SiteFor returns the site whose name appears in merchant
func SiteFor(merchant string) (Site, bool) {
	m := detect.Fold(merchant)
	for _, s := range Sites {
		if strings.Contains(m, detect.Fold(s.Name)) {
			return s, true
		}
	}
	return Site{}, false
}

// Active drops deactivated and expired offers
func Active(offers []models.Offer, now time.Time) []models.Offer {
	var out []models.Offer
	for _, o := range offers {
		if o.Active && !o.Expired(now) {
			out = append(out, o)
		}
	}
	return out
}

// Applied is an offer applied to one transaction
type Applied struct {
	TransactionID int64   `json:"transaction_id"`
	Merchant      string  `json:"merchant"`
	Original      float64 `json:"original_amount"`
	Discount      float64 `json:"discount"`
	Final         float64 `json:"final_amount"`
	Offer         string  `json:"offer_description"`
}

// Apply finds the largest discount whose merchant appears in the
// transaction's merchant. Amounts are absolute values.
func Apply(t models.Transaction, offers []models.Offer) (Applied, bool) {
	merchant := detect.Fold(t.Merchant)
	var best *models.Offer
	for i := range offers {
		o := &offers[i]
		if o.Merchant == "" || !strings.Contains(merchant, detect.Fold(o.Merchant)) {
			continue
		}
		if best == nil || o.DiscountPercent > best.DiscountPercent {
			best = o
		}
	}
	if best == nil {
		return Applied{}, false
	}

	amount := money.Abs(t.Amount)
	discount := money.Round(amount * best.DiscountPercent / 100)
	return Applied{
		TransactionID: t.ID,
		Merchant:      t.Merchant,
		Original:      amount,
		Discount:      discount,
		Final:         money.Round(amount - discount),
		Offer:         best.Description,
	}, true
}

// Savings is what the user's offers would have saved on past spending
type Savings struct {
	Total   float64   `json:"total"`
	Applied []Applied `json:"applied"`
}

// PotentialSavings applies the best active, unexpired offer to each expense
func PotentialSavings(offers []models.Offer, txns []models.Transaction, now time.Time) Savings {
	active := Active(offers, now)
	var s Savings
	var discounts []float64
	for _, t := range txns {
		if !t.IsExpense() {
			continue
		}
		if a, ok := Apply(t, active); ok {
			s.Applied = append(s.Applied, a)
			discounts = append(discounts, a.Discount)
		}
	}
	s.Total = money.Sum(discounts...)
	return s
}
