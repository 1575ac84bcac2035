package detect

import (
	"strings"
	"unicode/utf8"

	"expensetracker/internal/confidence"
	"expensetracker/internal/models"
)

type categoryKeywords struct {
	category string
	keywords []string
}

// Ties go to the category listed first.
var categoryTable = []categoryKeywords{
	{"Food & Dining", []string{"restaurant", "cafe", "coffee", "pizza", "burger", "food", "dining", "starbucks", "mcdonald", "subway", "chipotle"}},
	{"Shopping", []string{"amazon", "walmart", "target", "store", "shop", "retail", "mall"}},
	{"Transportation", []string{"uber", "lyft", "gas", "fuel", "parking", "transit", "taxi"}},
	{"Bills & Utilities", []string{"electric", "water", "internet", "phone", "utility", "bill"}},
	{"Entertainment", []string{"netflix", "spotify", "movie", "theater", "game", "entertainment"}},
	{"Healthcare", []string{"pharmacy", "doctor", "hospital", "medical", "health", "cvs", "walgreens"}},
}

// Classify picks the category whose keywords appear most often in the
// merchant and description. Nothing matching yields "Other".
func Classify(merchant, description string) string {
	text := Fold(merchant + " " + description)

	best, bestScore := models.DefaultCategory, 0
	for _, c := range categoryTable {
		score := 0
		for _, kw := range c.keywords {
			if strings.Contains(text, kw) {
				score++
			}
		}
		if score > bestScore {
			best, bestScore = c.category, score
		}
	}
	return best
}

// Score is the detection confidence score for a normalized merchant and
// its category.
func Score(merchant, category string) confidence.Score {
	return confidence.Score(0).
		Add(IsKnownMerchant(merchant), 40).
		Add(category != models.DefaultCategory, 30).
		Add(utf8.RuneCountInString(merchant) > 3 && !strings.HasPrefix(merchant, models.UnknownMerchant), 30)
}

// Confidence labels a detected row.
func Confidence(merchant, category string) confidence.Level {
	return Score(merchant, category).Level(confidence.Standard)
}
