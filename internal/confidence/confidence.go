// Package confidence turns additive heuristic scores into the coarse
// High/Medium/Low labels shown next to detected, tracked and matched
// transactions. Each caller owns its point sources; only the cut-offs and
// the label set are shared.
package confidence

type Level string

const (
	High   Level = "High"
	Medium Level = "Medium"
	Low    Level = "Low"
)

// Thresholds are inclusive lower bounds for each tier.
type Thresholds struct {
	High   float64
	Medium float64
}

var (
	// Standard is used for import detection, link tracking and forecasts.
	Standard = Thresholds{High: 70, Medium: 40}
	// Match is used for reconciliation matches.
	Match = Thresholds{High: 80, Medium: 60}
)

// Level buckets a score.
func (t Thresholds) Level(score float64) Level {
	switch {
	case score >= t.High:
		return High
	case score >= t.Medium:
		return Medium
	default:
		return Low
	}
}

// Score accumulates points from independent signals.
type Score float64

// Add returns s plus points when cond holds.
func (s Score) Add(cond bool, points float64) Score {
	if cond {
		return s + Score(points)
	}
	return s
}

func (s Score) Level(t Thresholds) Level {
	return t.Level(float64(s))
}

// Rank orders levels so callers can compare them; higher is better.
func (l Level) Rank() int {
	switch l {
	case High:
		return 2
	case Medium:
		return 1
	default:
		return 0
	}
}
