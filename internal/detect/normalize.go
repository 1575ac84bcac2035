// Package detect turns raw statement rows into categorized transaction
// candidates and finds recurring payments in a user's history.
package detect

import (
	"regexp"
	"strings"
	"unicode/utf8"

	"golang.org/x/text/cases"

	"expensetracker/internal/models"
)

const maxMerchantLen = 50

type merchantRule struct {
	pattern   *regexp.Regexp
	canonical string
}

// Order matters: the first matching rule wins.
var merchantRules = []merchantRule{
	{regexp.MustCompile(`(?i)AMZN|AMAZON`), "Amazon"},
	{regexp.MustCompile(`(?i)FLIPKART|FKRT`), "Flipkart"},
	{regexp.MustCompile(`(?i)WALMART|WAL-MART|WM SUPERCENTER`), "Walmart"},
	{regexp.MustCompile(`(?i)TARGET`), "Target"},
	{regexp.MustCompile(`(?i)STARBUCKS|SBUX`), "Starbucks"},
	{regexp.MustCompile(`(?i)MCDONALD`), "McDonald's"},
	{regexp.MustCompile(`(?i)SHELL|EXXON|CHEVRON|BP\s`), "Gas Station"},
	{regexp.MustCompile(`(?i)UBER|LYFT`), "Rideshare"},
	{regexp.MustCompile(`(?i)NETFLIX`), "Netflix"},
	{regexp.MustCompile(`(?i)SPOTIFY`), "Spotify"},
	{regexp.MustCompile(`(?i)APPLE\.COM|ITUNES`), "Apple"},
	{regexp.MustCompile(`(?i)MYNTRA`), "Myntra"},
	{regexp.MustCompile(`(?i)SWIGGY`), "Swiggy"},
	{regexp.MustCompile(`(?i)ZOMATO`), "Zomato"},
	{regexp.MustCompile(`(?i)PAYTM`), "Paytm"},
}

var (
	storeNumber = regexp.MustCompile(`#\d+`)
	longDigits  = regexp.MustCompile(`\d{10,}`)
)

var onlineIndicators = []string{"amazon", "ebay", "etsy", "paypal", "stripe", "shopify", ".com", "online", "web"}

// Fold case-folds s. Merchant names, keywords and column names are all
// compared in folded form.
func Fold(s string) string {
	return cases.Fold().String(s)
}

func matchRule(s string) (string, bool) {
	for _, r := range merchantRules {
		if r.pattern.MatchString(s) {
			return r.canonical, true
		}
	}
	return "", false
}

// NormalizeMerchant maps a raw statement merchant onto a canonical brand
// name. Unknown merchants lose store numbers and long reference numbers and
// are cut to 50 characters. Normalizing an already normalized name returns
// it unchanged.
func NormalizeMerchant(raw string) string {
	if name, ok := matchRule(raw); ok {
		return name
	}

	cleaned := storeNumber.ReplaceAllString(raw, "")
	cleaned = longDigits.ReplaceAllString(cleaned, "")
	cleaned = strings.TrimSpace(cleaned)
	if name, ok := matchRule(cleaned); ok {
		return name
	}

	if utf8.RuneCountInString(cleaned) > maxMerchantLen {
		cleaned = strings.TrimSpace(string([]rune(cleaned)[:maxMerchantLen]))
	}
	if cleaned == "" {
		return models.UnknownMerchant
	}
	return cleaned
}

// IsKnownMerchant reports whether any canonicalization rule matches name.
func IsKnownMerchant(name string) bool {
	_, ok := matchRule(name)
	return ok
}

// IsOnlineSale reports whether the merchant looks like an online store.
func IsOnlineSale(merchant string) bool {
	m := Fold(merchant)
	for _, ind := range onlineIndicators {
		if strings.Contains(m, ind) {
			return true
		}
	}
	return false
}
