// Package executable inspects native binaries. Format and architecture
// are read from fixed header offsets; printable strings come from an
// optional strings(1) enrichment, filtered down to plausible text before
// keyword matching.
package executable

import (
	"context"
	"encoding/binary"
	"fmt"
	"strings"

	"github.com/exfilwatch/file-analysis/pkg/api/forensic"
)

const (
	suspiciousStringPoints = 15
	executablePoints       = 10

	minStringLen     = 6
	maxStringsListed = 30

	// Strings below this length must be almost pure alphanumeric to
	// count as text; short symbol-heavy fragments are nearly always
	// noise from code or data sections.
	shortStringLen = 15
)

// peHeaderOffsetField is where the DOS header stores the PE header offset.
const peHeaderOffsetField = 0x3c

var peMachines = map[uint16]string{
	0x014c: "x86",
	0x8664: "x64",
	0x01c0: "arm",
	0xaa64: "arm64",
}

var elfClasses = map[byte]string{
	1: "32-bit",
	2: "64-bit",
}

// suspiciousKeywords flag capability hints inside binary strings.
var suspiciousKeywords = []string{
	"password", "credential", "token", "api_key",
	"keylog", "inject", "exploit", "shell", "reverse",
}

// Enricher extracts printable strings from a binary.
type Enricher interface {
	Strings(ctx context.Context, path string, minLen int) []string
}

type Analyzer struct {
	enricher Enricher
}

func NewAnalyzer(enricher Enricher) *Analyzer {
	return &Analyzer{enricher: enricher}
}

func (a *Analyzer) Analyze(ctx context.Context, path string, category forensic.Category, data []byte) *forensic.ExecutableFindings {
	findings := &forensic.ExecutableFindings{
		Finding: forensic.Finding{Category: "executable"},
	}

	switch category {
	case forensic.CategoryPE:
		parsePE(data, findings)
	case forensic.CategoryELF:
		parseELF(data, findings)
	}
	findings.Flag("native executable", executablePoints)

	if a.enricher != nil {
		a.inspectStrings(ctx, path, findings)
	}
	return findings
}

func parsePE(data []byte, findings *forensic.ExecutableFindings) {
	findings.Format = "pe"
	if len(data) < peHeaderOffsetField+4 {
		return
	}

	offset := binary.LittleEndian.Uint32(data[peHeaderOffsetField:])
	if int(offset)+6 > len(data) {
		return
	}
	if string(data[offset:offset+4]) != "PE\x00\x00" {
		findings.Indicators = append(findings.Indicators, "DOS stub without valid PE header")
		return
	}

	machine := binary.LittleEndian.Uint16(data[offset+4:])
	if arch, ok := peMachines[machine]; ok {
		findings.Architecture = arch
	}
}

func parseELF(data []byte, findings *forensic.ExecutableFindings) {
	findings.Format = "elf"
	if len(data) < 5 {
		return
	}
	// EI_CLASS is the fifth identification byte.
	findings.Architecture = elfClasses[data[4]]
}

func (a *Analyzer) inspectStrings(ctx context.Context, path string, findings *forensic.ExecutableFindings) {
	extracted := a.enricher.Strings(ctx, path, minStringLen)

	for _, s := range extracted {
		if !plausibleText(s) {
			continue
		}
		if len(findings.Strings) < maxStringsListed {
			findings.Strings = append(findings.Strings, s)
		}
		lower := strings.ToLower(s)
		for _, keyword := range suspiciousKeywords {
			if strings.Contains(lower, keyword) {
				findings.SuspiciousStrings = append(findings.SuspiciousStrings, s)
				break
			}
		}
	}

	if count := len(findings.SuspiciousStrings); count > 0 {
		findings.Flag(fmt.Sprintf("%d suspicious capability string(s) in binary", count), suspiciousStringPoints)
	}
}

// plausibleText rejects the symbol soup strings(1) recovers from code and
// data sections, keeping identifiers, messages and paths.
func plausibleText(s string) bool {
	if strings.ContainsAny(s, "#{}[]'\"`") && !looksLikePath(s) {
		return false
	}

	alnum := 0
	letters := 0
	consecutiveJunk := 0
	maxJunk := 0
	for _, r := range s {
		switch {
		case r >= 'a' && r <= 'z', r >= 'A' && r <= 'Z':
			alnum++
			letters++
			consecutiveJunk = 0
		case r >= '0' && r <= '9':
			alnum++
			consecutiveJunk = 0
		case r == '/' || r == '\\' || r == '.' || r == '_' || r == '-' || r == ' ' || r == ':':
			consecutiveJunk = 0
		default:
			consecutiveJunk++
			if consecutiveJunk > maxJunk {
				maxJunk = consecutiveJunk
			}
		}
	}

	if maxJunk > 1 {
		return false
	}
	ratio := float64(alnum) / float64(len(s))
	if len(s) < shortStringLen {
		return ratio >= 0.95 && letters > 0
	}
	return ratio >= 0.6
}

func looksLikePath(s string) bool {
	return strings.HasPrefix(s, "/") || strings.Contains(s, ":\\")
}
