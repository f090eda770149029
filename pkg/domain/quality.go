package domain

// Quality classifies a single decision by its XP delta.
type Quality string

const (
	QualityGood  Quality = "good"
	QualityRisky Quality = "risky"
	QualityBad   Quality = "bad"
)

// Thresholds used by Evaluate.
const (
	GoodXPThreshold  = 15
	RiskyXPThreshold = 1
)

// Evaluate classifies an XP delta: >= 15 is good, 1..14 is risky, <= 0 is bad.
func Evaluate(xpChange int) Quality {
	switch {
	case xpChange >= GoodXPThreshold:
		return QualityGood
	case xpChange >= RiskyXPThreshold:
		return QualityRisky
	default:
		return QualityBad
	}
}

// IsBad reports whether the decision counts toward auto-failure.
func (q Quality) IsBad() bool {
	return q == QualityBad
}

// Performance is the tier assigned to a final score.
type Performance string

const (
	PerformanceExcellent Performance = "excellent"
	PerformanceGood      Performance = "good"
	PerformanceAverage   Performance = "average"
	PerformancePoor      Performance = "poor"
)

// Rate maps a final score to its performance tier.
func Rate(score int) Performance {
	switch {
	case score >= 100:
		return PerformanceExcellent
	case score >= 50:
		return PerformanceGood
	case score >= 0:
		return PerformanceAverage
	default:
		return PerformancePoor
	}
}
