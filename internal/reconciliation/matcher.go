package reconciliation

import (
	"math"
	"time"

	"github.com/texttheater/golang-levenshtein/levenshtein"

	"expensetracker/internal/confidence"
	"expensetracker/internal/detect"
	"expensetracker/internal/money"
	"expensetracker/internal/models"
)

const (
	maxDayDiff      = 3
	amountTolerance = 0.01
	minSimilarity   = 0.6
)

// Match pairs a statement line with the stored transaction it was matched to
type Match struct {
	Statement   StatementLine      `json:"statement"`
	Transaction models.Transaction `json:"user"`
	Similarity  float64            `json:"similarity"`
	Confidence  confidence.Level   `json:"confidence"`
}

type Result struct {
	Matches               []Match              `json:"matches"`
	UnmatchedStatement    []StatementLine      `json:"unmatched_statement"`
	UnmatchedTransactions []models.Transaction `json:"unmatched_user"`
	MatchRate             float64              `json:"match_rate"`
}

// Reconcile matches statement lines against stored transactions greedily,
// in statement order. A transaction claimed by one line is never offered to
// a later line, even if the later line would have matched it better.
func Reconcile(lines []StatementLine, txns []models.Transaction) Result {
	pool := make([]models.Transaction, len(txns))
	copy(pool, txns)

	res := Result{
		Matches:               []Match{},
		UnmatchedStatement:    []StatementLine{},
		UnmatchedTransactions: []models.Transaction{},
	}
	for _, line := range lines {
		idx, sim := bestMatch(line, pool)
		if idx < 0 {
			res.UnmatchedStatement = append(res.UnmatchedStatement, line)
			continue
		}
		txn := pool[idx]
		res.Matches = append(res.Matches, Match{
			Statement:   line,
			Transaction: txn,
			Similarity:  math.Round(sim*1000) / 1000,
			Confidence:  MatchScore(line, txn).Level(confidence.Match),
		})
		pool = append(pool[:idx], pool[idx+1:]...)
	}
	res.UnmatchedTransactions = append(res.UnmatchedTransactions, pool...)

	if len(lines) > 0 {
		res.MatchRate = math.Round(float64(len(res.Matches))/float64(len(lines))*1000) / 10
	}
	return res
}

// bestMatch returns the index of the pool transaction most similar to line
// among those within the date window and amount tolerance, or -1.
func bestMatch(line StatementLine, pool []models.Transaction) (int, float64) {
	lineDay, err := line.Day()
	if err != nil {
		return -1, 0
	}

	best, bestScore := -1, 0.0
	for i, txn := range pool {
		day, err := txn.Day()
		if err != nil {
			continue
		}
		if dayDiff(lineDay, day) > maxDayDiff {
			continue
		}
		if money.Diff(line.Amount, txn.Amount) > amountTolerance {
			continue
		}
		sim := merchantSimilarity(line, txn)
		if sim > bestScore && sim > minSimilarity {
			best, bestScore = i, sim
		}
	}
	return best, bestScore
}

// MatchScore weighs amount equality, date proximity and merchant similarity.
func MatchScore(line StatementLine, txn models.Transaction) confidence.Score {
	s := confidence.Score(0).Add(money.Diff(line.Amount, txn.Amount) < amountTolerance, 40)

	lineDay, err1 := line.Day()
	day, err2 := txn.Day()
	if err1 == nil && err2 == nil {
		diff := dayDiff(lineDay, day)
		s = s.Add(diff == 0, 30).Add(diff == 1, 20)
	}
	return s.Add(true, merchantSimilarity(line, txn)*30)
}

// merchantSimilarity scores both the normalized and the raw statement text
// against the stored merchant and keeps the better one.
func merchantSimilarity(line StatementLine, txn models.Transaction) float64 {
	sim := Similarity(line.Merchant, txn.Merchant)
	if line.Raw != "" {
		sim = max(sim, Similarity(line.Raw, txn.Merchant))
	}
	return sim
}

// Similarity is an edit-distance ratio in [0, 1] over the case-folded
// strings: 1 means identical.
func Similarity(a, b string) float64 {
	return levenshtein.RatioForStrings(
		[]rune(detect.Fold(a)),
		[]rune(detect.Fold(b)),
		levenshtein.DefaultOptions,
	)
}

func dayDiff(a, b time.Time) int {
	d := int(math.Round(a.Sub(b).Hours() / 24))
	if d < 0 {
		return -d
	}
	return d
}
