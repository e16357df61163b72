package forensic

import (
	"time"
)

// FileMetadata records filesystem and external-tool metadata for the
// analyzed file. Extra holds unstructured key/values from external tools
// (exiftool groups and similar); fields that drive scoring are typed.
type FileMetadata struct {
	Size        int64             `json:"size_bytes"`
	SizeHuman   string            `json:"size_human,omitempty"`
	Modified    time.Time         `json:"modified"`
	Accessed    time.Time         `json:"accessed"`
	Permissions string            `json:"permissions,omitempty"`
	SHA256      string            `json:"sha256,omitempty"`
	FileCommand string            `json:"file_command,omitempty"`
	Extra       map[string]string `json:"extra,omitempty"`
}

// AnalysisResult is the complete output of one engine invocation.
// It is created fresh per call, populated by the orchestrator, and then
// owned by the caller; the engine keeps no reference to it.
type AnalysisResult struct {
	ID             string         `json:"id"`
	Path           string         `json:"path"`
	FileType       Category       `json:"file_type"`
	Depth          Depth          `json:"analysis_depth"`
	Findings       Findings       `json:"findings"`
	SecurityIssues []string       `json:"security_issues,omitempty"`
	RiskIndicators []string       `json:"risk_indicators,omitempty"`
	Metadata       *FileMetadata  `json:"metadata,omitempty"`
	Hidden         *HiddenContent `json:"hidden_content,omitempty"`
	Signature      *SignatureInfo `json:"file_signature,omitempty"`

	// RiskScore is always within [0, 100] and RiskLevel is derived from
	// it via LevelForScore.
	RiskScore float64   `json:"risk_score"`
	RiskLevel RiskLevel `json:"risk_level"`
	Sensitive bool      `json:"is_sensitive"`

	Recommendations []string  `json:"recommendations,omitempty"`
	CreatedAt       time.Time `json:"created_at"`

	// Error is set only for fatal failures (the path could not be
	// opened); no detector output is present in that case.
	Error string `json:"error,omitempty"`
}
