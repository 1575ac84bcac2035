// Package linktrack hands out tracking links for shopping offers and turns
// visits to those links into transactions.
package linktrack

import (
	"context"
	"errors"
	"fmt"
	"net/url"
	"strings"
	"time"

	"github.com/google/uuid"

	"expensetracker/internal/confidence"
	"expensetracker/internal/detect"
	"expensetracker/internal/logger"
	"expensetracker/internal/models"
)

// SafeDomains are the only redirect targets a tracked link may send to.
var SafeDomains = []string{
	"amazon.in", "amazon.com",
	"flipkart.com",
	"myntra.com",
	"swiggy.com",
	"zomato.com",
	"paytm.com",
	"snapdeal.com",
	"ajio.com",
	"nykaa.com",
}

var knownMerchants = []string{"amazon", "flipkart", "myntra", "swiggy", "zomato", "paytm", "snapdeal", "ajio", "nykaa"}

// DefaultAmount is charged for a visit to a link created without a price.
const DefaultAmount = 1000.0

var ErrInvalidLink = errors.New("merchant and target url are required")

// Store is the persistence the tracker needs.
type Store interface {
	CreateTrackedLink(l models.TrackedLink) error
	GetTrackedLink(trackingID string) (models.TrackedLink, error)
	RecordClick(trackingID string, userID int64, userAgent, referrer string) error
	MarkLinkAccepted(trackingID string) error
	AddTransaction(t models.Transaction) (int64, error)
	CreateDetectedFromLink(userID int64, link models.TrackedLink, amount float64, confidence string, now time.Time) (int64, error)
}

type Tracker struct {
	store Store
	Now   func() time.Time
}

func New(store Store) *Tracker {
	return &Tracker{store: store, Now: time.Now}
}

// URL is the path a tracking link is served on.
func URL(trackingID string) string {
	return "/track/" + trackingID
}

// Create registers a new tracking link for userID
func (t *Tracker) Create(ctx context.Context, userID int64, merchant, title string, amount *float64, targetURL string) (models.TrackedLink, error) {
	merchant = strings.TrimSpace(merchant)
	targetURL = strings.TrimSpace(targetURL)
	if merchant == "" || targetURL == "" {
		return models.TrackedLink{}, ErrInvalidLink
	}

	link := models.TrackedLink{
		TrackingID: uuid.NewString(),
		UserID:     userID,
		Merchant:   merchant,
		Title:      strings.TrimSpace(title),
		Amount:     amount,
		TargetURL:  targetURL,
	}
	if err := t.store.CreateTrackedLink(link); err != nil {
		return models.TrackedLink{}, err
	}

	logger.FromContext(ctx).Info("tracked_link_created",
		"tracking_id", link.TrackingID,
		"merchant", merchant,
		"safe_target", IsSafeRedirect(targetURL),
	)
	return link, nil
}

// Visit is the outcome of following a tracking link.
type Visit struct {
	Link       models.TrackedLink
	Confidence confidence.Level
	// Transaction is set when the purchase was recorded directly
	Transaction *models.Transaction
	// DetectedID is set when the purchase was staged for review
	DetectedID int64
	// Redirect is the target url, empty when it is not a safe destination
	Redirect string
}

// Visit records a click by userID and books the purchase. With review set
// the purchase is staged as a detected transaction instead of recorded.
func (t *Tracker) Visit(ctx context.Context, trackingID string, userID int64, userAgent, referrer string, review bool) (Visit, error) {
	link, err := t.store.GetTrackedLink(trackingID)
	if err != nil {
		return Visit{}, err
	}
	if err := t.store.RecordClick(trackingID, userID, userAgent, referrer); err != nil {
		return Visit{}, err
	}

	v := Visit{
		Link:       link,
		Confidence: Confidence(link.Merchant, link.Amount),
	}
	if IsSafeRedirect(link.TargetURL) {
		v.Redirect = link.TargetURL
	} else {
		logger.FromContext(ctx).Warn("tracked_link_unsafe_target", "tracking_id", trackingID, "target_url", link.TargetURL)
	}

	amount := DefaultAmount
	if link.Amount != nil && *link.Amount != 0 {
		amount = *link.Amount
	}
	now := t.Now()

	if review {
		id, err := t.store.CreateDetectedFromLink(userID, link, amount, string(v.Confidence), now)
		if err != nil {
			return v, err
		}
		v.DetectedID = id
		return v, nil
	}

	txn := models.Transaction{
		UserID:       userID,
		Amount:       -abs(amount),
		Merchant:     link.Merchant,
		Category:     "Shopping",
		Date:         now.Format(models.DateLayout),
		Notes:        fmt.Sprintf("From %s | tracking_id=%s", link.Title, trackingID),
		IsOnlineSale: true,
	}
	txn.ID, err = t.store.AddTransaction(txn)
	if err != nil {
		return v, err
	}
	if err := t.store.MarkLinkAccepted(trackingID); err != nil {
		return v, err
	}
	v.Transaction = &txn
	return v, nil
}

// Confidence rates a link purchase: a known merchant and a price each add
// 40 points.
func Confidence(merchant string, amount *float64) confidence.Level {
	m := detect.Fold(merchant)
	known := false
	for _, km := range knownMerchants {
		if strings.Contains(m, km) {
			known = true
			break
		}
	}
	var s confidence.Score
	s = s.Add(known, 40)
	s = s.Add(amount != nil && *amount > 0, 40)
	return s.Level(confidence.Standard)
}

// IsSafeRedirect reports whether raw is an https url on one of SafeDomains
// or a subdomain of one.
func IsSafeRedirect(raw string) bool {
	u, err := url.Parse(raw)
	if err != nil || u.Scheme != "https" {
		return false
	}
	host := strings.TrimPrefix(strings.ToLower(u.Hostname()), "www.")
	for _, d := range SafeDomains {
		if host == d || strings.HasSuffix(host, "."+d) {
			return true
		}
	}
	return false
}

func abs(f float64) float64 {
	if f < 0 {
		return -f
	}
	return f
}
