package forensic

// Finding is the common record produced by every detector: a category tag,
// human-readable indicators, and the (non-negative) number of risk points
// the detector contributes to the total score.
//
// A detector that fails part-way through still returns its Finding, with
// Err describing what went wrong. Errors never remove indicators that were
// collected before the failure.
type Finding struct {
	Category   string   `json:"category"`
	Indicators []string `json:"indicators,omitempty"`
	RiskPoints float64  `json:"risk_points"`
	Err        string   `json:"error,omitempty"`
}

// Flag records an indicator and adds the associated risk points.
func (f *Finding) Flag(indicator string, points float64) {
	f.Indicators = append(f.Indicators, indicator)
	f.RiskPoints += points
}

// SetError records a sub-check failure on the finding.
func (f *Finding) SetError(err error) {
	if err != nil {
		f.Err = err.Error()
	}
}

// SecretMatch summarises the matches of one secret/PII pattern.
// Sample is redacted for credential-like pattern types and truncated
// otherwise.
type SecretMatch struct {
	Type   string `json:"type"`
	Count  int    `json:"count"`
	Sample string `json:"sample"`
}

// RedactedSample is the fixed placeholder reported instead of the matched
// value for credential-like secret types.
const RedactedSample = "[REDACTED]"
