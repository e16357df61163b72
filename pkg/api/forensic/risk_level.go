package forensic

// RiskLevel is the ordinal classification derived from the numeric risk score.
type RiskLevel string

const (
	RiskLow      RiskLevel = "LOW"
	RiskMedium   RiskLevel = "MEDIUM"
	RiskHigh     RiskLevel = "HIGH"
	RiskCritical RiskLevel = "CRITICAL"
)

// Canonical score thresholds for each level. The same table is used by
// every caller; see LevelForScore.
const (
	CriticalScoreThreshold = 70.0
	HighScoreThreshold     = 50.0
	MediumScoreThreshold   = 25.0
)

// LevelForScore maps a risk score in [0, 100] to its risk level.
// The level is a pure function of the score.
func LevelForScore(score float64) RiskLevel {
	switch {
	case score >= CriticalScoreThreshold:
		return RiskCritical
	case score >= HighScoreThreshold:
		return RiskHigh
	case score >= MediumScoreThreshold:
		return RiskMedium
	default:
		return RiskLow
	}
}

func (l RiskLevel) String() string {
	return string(l)
}
