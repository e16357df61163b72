package risk

import (
	"strings"
	"testing"

	"github.com/exfilwatch/file-analysis/pkg/api/forensic"
)

func TestScoreClampsAtHundred(t *testing.T) {
	result := &forensic.AnalysisResult{}
	content := &forensic.ContentFindings{Finding: forensic.Finding{Category: "content"}}
	for i := 0; i < 10; i++ {
		content.Flag("repeated severe indicator", 30)
	}
	result.Findings.Content = content

	NewScorer(50).Score(result)

	if result.RiskScore != 100 {
		t.Errorf("RiskScore = %v, want clamped to 100", result.RiskScore)
	}
	if result.RiskLevel != forensic.RiskCritical {
		t.Errorf("RiskLevel = %v, want CRITICAL", result.RiskLevel)
	}
}

func TestScoreLevelBoundaries(t *testing.T) {
	tests := []struct {
		points float64
		want   forensic.RiskLevel
	}{
		{0, forensic.RiskLow},
		{24.9, forensic.RiskLow},
		{25, forensic.RiskMedium},
		{49.9, forensic.RiskMedium},
		{50, forensic.RiskHigh},
		{69.9, forensic.RiskHigh},
		{70, forensic.RiskCritical},
		{100, forensic.RiskCritical},
	}
	for _, test := range tests {
		result := &forensic.AnalysisResult{}
		if test.points > 0 {
			result.Findings.Filename = &forensic.Finding{Category: "filename", RiskPoints: test.points}
		}
		NewScorer(50).Score(result)
		if result.RiskLevel != test.want {
			t.Errorf("score %v: RiskLevel = %v, want %v", test.points, result.RiskLevel, test.want)
		}
	}
}

func TestScoreSensitivity(t *testing.T) {
	tests := []struct {
		points float64
		want   bool
	}{
		{49, false},
		{50, true},
		{80, true},
	}
	for _, test := range tests {
		result := &forensic.AnalysisResult{}
		result.Findings.Filename = &forensic.Finding{Category: "filename", RiskPoints: test.points}
		NewScorer(50).Score(result)
		if result.Sensitive != test.want {
			t.Errorf("score %v: Sensitive = %v, want %v", test.points, result.Sensitive, test.want)
		}
	}
}

func TestScoreDeterministic(t *testing.T) {
	build := func() *forensic.AnalysisResult {
		result := &forensic.AnalysisResult{}
		result.Findings.Content = &forensic.ContentFindings{
			Finding: forensic.Finding{Category: "content", RiskPoints: 30, Indicators: []string{"x"}},
		}
		result.Hidden = &forensic.HiddenContent{
			Finding: forensic.Finding{Category: "hidden_content", RiskPoints: 20, Indicators: []string{"y"}},
		}
		return result
	}

	first, second := build(), build()
	NewScorer(50).Score(first)
	NewScorer(50).Score(second)

	if first.RiskScore != second.RiskScore || first.RiskLevel != second.RiskLevel {
		t.Errorf("identical findings scored differently: %v/%v vs %v/%v",
			first.RiskScore, first.RiskLevel, second.RiskScore, second.RiskLevel)
	}
	if first.RiskScore != 50 {
		t.Errorf("RiskScore = %v, want 50", first.RiskScore)
	}
}

func TestScoreSecurityIssuePromotion(t *testing.T) {
	result := &forensic.AnalysisResult{}
	result.Hidden = &forensic.HiddenContent{
		Finding: forensic.Finding{
			Category:   "hidden_content",
			Indicators: []string{"polyglot: 2 distinct signatures in scan window"},
			RiskPoints: 30,
		},
	}
	result.Findings.Filename = &forensic.Finding{
		Category:   "filename",
		Indicators: []string{"sensitive keyword in name"},
		RiskPoints: 10,
	}

	NewScorer(50).Score(result)

	if len(result.SecurityIssues) != 1 || !strings.HasPrefix(result.SecurityIssues[0], "hidden_content:") {
		t.Errorf("SecurityIssues = %v", result.SecurityIssues)
	}
	if len(result.RiskIndicators) != 1 || !strings.HasPrefix(result.RiskIndicators[0], "filename:") {
		t.Errorf("RiskIndicators = %v", result.RiskIndicators)
	}
}

func TestRecommendations(t *testing.T) {
	result := &forensic.AnalysisResult{FileType: forensic.CategoryZip}
	result.Findings.Office = &forensic.OfficeFindings{
		Finding: forensic.Finding{Category: "office", RiskPoints: 40, Indicators: []string{"VBA macros present (1 file(s))"}},
	}

	NewScorer(50).Score(result)

	var hasMacroAdvice bool
	for _, rec := range result.Recommendations {
		if strings.Contains(rec, "macros") {
			hasMacroAdvice = true
		}
	}
	if !hasMacroAdvice {
		t.Errorf("Recommendations = %v, want macro advice", result.Recommendations)
	}
}

func TestRecommendationsCleanFile(t *testing.T) {
	result := &forensic.AnalysisResult{}
	result.Findings.Content = &forensic.ContentFindings{Finding: forensic.Finding{Category: "content"}}

	NewScorer(50).Score(result)

	if len(result.Recommendations) != 1 || !strings.Contains(result.Recommendations[0], "no special handling") {
		t.Errorf("Recommendations = %v", result.Recommendations)
	}
}

func TestSummary(t *testing.T) {
	result := &forensic.AnalysisResult{
		RiskScore:      72,
		RiskLevel:      forensic.RiskCritical,
		SecurityIssues: []string{"hidden_content: trailing data"},
		Sensitive:      true,
	}

	summary := Summary(result)

	for _, want := range []string{"CRITICAL", "72/100", "1 security issue(s)", "sensitive"} {
		if !strings.Contains(summary, want) {
			t.Errorf("Summary = %q, missing %q", summary, want)
		}
	}
}
