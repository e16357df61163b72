// Package risk turns the accumulated detector findings into a final score,
// level, sensitivity flag and handling recommendations. Scoring is purely
// additive over detector points, clamped to [0, 100], so the same findings
// always produce the same score.
package risk

import (
	"fmt"
	"strings"

	"github.com/exfilwatch/file-analysis/pkg/api/forensic"
)

// securityIssueCategories are the detector categories whose indicators are
// promoted to the security-issue list; everything else stays a risk
// indicator.
var securityIssueCategories = map[string]bool{
	"hidden_content": true,
	"executable":     true,
}

// Scorer derives the final assessment. sensitiveThreshold is the score at
// or above which a result is marked sensitive.
type Scorer struct {
	sensitiveThreshold float64
}

func NewScorer(sensitiveThreshold float64) *Scorer {
	return &Scorer{sensitiveThreshold: sensitiveThreshold}
}

// Score fills the assessment fields of result from its findings. It is the
// last orchestration stage and reads everything the detectors produced.
func (s *Scorer) Score(result *forensic.AnalysisResult) {
	total := 0.0
	contributing := map[string]bool{}

	record := func(finding *forensic.Finding) {
		total += finding.RiskPoints
		if finding.RiskPoints > 0 {
			contributing[finding.Category] = true
		}
		for _, indicator := range finding.Indicators {
			tagged := fmt.Sprintf("%s: %s", finding.Category, indicator)
			if securityIssueCategories[finding.Category] {
				result.SecurityIssues = append(result.SecurityIssues, tagged)
			} else {
				result.RiskIndicators = append(result.RiskIndicators, tagged)
			}
		}
	}

	for _, finding := range result.Findings.All() {
		record(finding)
	}
	if result.Hidden != nil {
		record(&result.Hidden.Finding)
	}

	result.RiskScore = clamp(total)
	result.RiskLevel = forensic.LevelForScore(result.RiskScore)
	result.Sensitive = result.RiskScore >= s.sensitiveThreshold
	result.Recommendations = s.recommend(result, contributing)
}

func clamp(score float64) float64 {
	if score < 0 {
		return 0
	}
	if score > 100 {
		return 100
	}
	return score
}

// recommend produces handling advice for the categories that contributed
// points, ordered from most to least severe.
func (s *Scorer) recommend(result *forensic.AnalysisResult, contributing map[string]bool) []string {
	var recommendations []string
	add := func(category, advice string) {
		if contributing[category] {
			recommendations = append(recommendations, advice)
		}
	}

	switch result.RiskLevel {
	case forensic.RiskCritical:
		recommendations = append(recommendations, "isolate the file and escalate to the security team")
	case forensic.RiskHigh:
		recommendations = append(recommendations, "quarantine pending manual review")
	}

	add("hidden_content", "extract and inspect the concealed content in a sandbox")
	add("executable", "submit the binary for malware analysis")
	add("content", "rotate any credentials matched by the content scan")
	add("pdf", "open the document only in a viewer with scripting disabled")
	add("office", "do not enable macros; open in protected view")
	add("archive", "do not extract on a production host")
	add("database", "review database access controls and contents")
	add("image", "strip metadata before sharing the image")
	add("filename", "review whether the file belongs at this location")

	if result.Sensitive && !result.FileType.IsExecutable() {
		recommendations = append(recommendations, "handle as sensitive material per data-handling policy")
	}
	if len(recommendations) == 0 && result.RiskScore == 0 {
		recommendations = append(recommendations, "no special handling required")
	}
	return recommendations
}

// Summary renders a one-line human summary of the assessment.
func Summary(result *forensic.AnalysisResult) string {
	parts := []string{
		fmt.Sprintf("%s risk (%.0f/100)", result.RiskLevel, result.RiskScore),
	}
	if count := len(result.SecurityIssues); count > 0 {
		parts = append(parts, fmt.Sprintf("%d security issue(s)", count))
	}
	if count := len(result.RiskIndicators); count > 0 {
		parts = append(parts, fmt.Sprintf("%d risk indicator(s)", count))
	}
	if result.Sensitive {
		parts = append(parts, "sensitive")
	}
	return strings.Join(parts, ", ")
}
