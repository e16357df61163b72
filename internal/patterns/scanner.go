package patterns

import (
	"fmt"
	"path/filepath"
	"strings"
	"time"

	"github.com/texttheater/golang-levenshtein/levenshtein"

	"github.com/exfilwatch/file-analysis/internal/config"
	"github.com/exfilwatch/file-analysis/internal/inspect"
	"github.com/exfilwatch/file-analysis/internal/signature"
	"github.com/exfilwatch/file-analysis/pkg/api/forensic"
)

// Weights for the forensic red flags. Hacking-tool names are treated as
// near-certain indicators of compromise, hence the highest weight.
const (
	hackingToolPoints     = 40
	doubleExtensionPoints = 30
	rtlOverridePoints     = 50
	headerMismatchPoints  = 20
	highEntropyPoints     = 25
)

// Scanner applies the pattern catalog to file content and names.
// It is immutable after construction and safe for concurrent use.
type Scanner struct {
	cfg     *config.Config
	catalog *signature.Catalog
}

func NewScanner(cfg *config.Config, catalog *signature.Catalog) *Scanner {
	return &Scanner{cfg: cfg, catalog: catalog}
}

// ScanContent runs the full cross-cutting content check over a bounded
// prefix of the file: secret/PII patterns, forensic filename flags,
// header/extension mismatch and the gated entropy check.
func (s *Scanner) ScanContent(path string, data []byte) *forensic.ContentFindings {
	findings := &forensic.ContentFindings{
		Finding: forensic.Finding{Category: "content"},
	}

	s.scanFilenameFlags(path, findings)
	s.checkHeaderMismatch(path, data, findings)
	s.checkEntropy(path, data, findings)

	findings.Secrets = ScanSecrets(string(data))
	for _, match := range findings.Secrets {
		findings.TotalMatches += match.Count
		findings.Flag(fmt.Sprintf("%s: %d match(es)", match.Type, match.Count),
			10+2*float64(match.Count))
	}

	return findings
}

// ScanSecrets applies the secret/PII catalog to text and reports per-type
// match counts with a sample. Samples for credential-like types are
// replaced by a fixed placeholder; other samples are truncated.
func ScanSecrets(content string) []forensic.SecretMatch {
	var matches []forensic.SecretMatch
	for _, pattern := range secretPatterns {
		found := pattern.regex.FindAllString(content, -1)
		if len(found) == 0 {
			continue
		}

		sample := found[0]
		if pattern.redact {
			sample = forensic.RedactedSample
		} else if len(sample) > 30 {
			sample = sample[:30]
		}

		matches = append(matches, forensic.SecretMatch{
			Type:   pattern.name,
			Count:  len(found),
			Sample: sample,
		})
	}
	return matches
}

func (s *Scanner) scanFilenameFlags(path string, findings *forensic.ContentFindings) {
	base := filepath.Base(path)
	lower := strings.ToLower(base)

	if tool := s.matchHackingTool(lower); tool != "" {
		findings.HackingTool = tool
		findings.Flag("hacking tool name: "+tool, hackingToolPoints)
	}

	if doubleExtension.MatchString(lower) {
		findings.DoubleExtension = true
		findings.Flag("double extension: "+base, doubleExtensionPoints)
	}

	if strings.ContainsRune(base, rtlOverride) {
		findings.RTLOverride = true
		findings.Flag("right-to-left override character in filename", rtlOverridePoints)
	}
}

// matchHackingTool reports the known tool whose name appears in, or is
// within edit distance 1 of, a token of the filename. The edit-distance
// pass catches lightly mangled names like pr0cdump.
func (s *Scanner) matchHackingTool(lowerName string) string {
	for _, tool := range s.cfg.HackingTools {
		if strings.Contains(lowerName, tool) {
			return tool
		}
	}
	if lowerName == "lsass.dmp" || lowerName == "shadow.copy" {
		return lowerName
	}

	for _, token := range splitTokens(lowerName) {
		if len(token) < 6 {
			continue
		}
		for _, tool := range s.cfg.HackingTools {
			distance := levenshtein.DistanceForStrings([]rune(token), []rune(tool), levenshtein.DefaultOptions)
			if distance == 1 {
				return tool
			}
		}
	}
	return ""
}

func splitTokens(name string) []string {
	return strings.FieldsFunc(name, func(r rune) bool {
		return !('a' <= r && r <= 'z' || '0' <= r && r <= '9')
	})
}

// expectedHeaders maps common extensions to the signature category their
// content should carry. Only unambiguous pairs are checked.
var expectedHeaders = map[string]forensic.Category{
	".jpg":  forensic.CategoryJPEG,
	".jpeg": forensic.CategoryJPEG,
	".png":  forensic.CategoryPNG,
	".pdf":  forensic.CategoryPDF,
	".exe":  forensic.CategoryPE,
	".zip":  forensic.CategoryZip,
	".gif":  forensic.CategoryGIF,
}

func (s *Scanner) checkHeaderMismatch(path string, data []byte, findings *forensic.ContentFindings) {
	ext := strings.ToLower(filepath.Ext(path))
	expected, checked := expectedHeaders[ext]
	if !checked || len(data) == 0 {
		return
	}

	if s.catalog.Identify(data) == expected {
		return
	}

	found := data
	if len(found) > 4 {
		found = found[:4]
	}
	findings.HeaderMismatch = &forensic.HeaderMismatch{
		Expected: expected,
		FoundHex: fmt.Sprintf("%x", found),
	}
	findings.Flag(fmt.Sprintf("header does not match extension %s (expected %s, found %x)",
		ext, expected, found), headerMismatchPoints)
}

func (s *Scanner) checkEntropy(path string, data []byte, findings *forensic.ContentFindings) {
	findings.Entropy = inspect.Entropy(data)
	if findings.Entropy <= s.cfg.HighEntropyThreshold {
		return
	}

	ext := strings.ToLower(filepath.Ext(path))
	for _, allowed := range s.cfg.HighEntropyAllowlist {
		if ext == allowed {
			return
		}
	}

	findings.HighEntropy = true
	indicator := fmt.Sprintf("high entropy %.2f outside compressed/media formats", findings.Entropy)
	// Chi-square near 255 corroborates an encrypted/random byte stream
	// rather than merely dense structured data.
	if chi := inspect.ChiSquareUniform(data); chi < 512 {
		indicator += fmt.Sprintf(", byte distribution near-uniform (chi-square %.0f)", chi)
	}
	findings.Flag(indicator, highEntropyPoints)
}

// ScanFilenameSensitivity scores the filename alone: sensitive keywords,
// backup/export shapes, throwaway archive names and generic names.
func (s *Scanner) ScanFilenameSensitivity(path string) *forensic.Finding {
	finding := &forensic.Finding{Category: "filename"}
	lower := strings.ToLower(filepath.Base(path))

	for _, keyword := range s.cfg.SensitiveKeywords {
		if strings.Contains(lower, keyword) {
			finding.Flag("sensitive keyword: "+keyword, 10)
		}
	}
	if backupExportName.MatchString(lower) {
		finding.Flag("backup/export name pattern", 15)
	}
	if tempArchiveName.MatchString(lower) {
		finding.Flag("temporary archive name", 12)
	}
	for _, generic := range genericNames {
		if strings.Contains(lower, generic) {
			finding.Flag("generic name: "+generic, 5)
			break
		}
	}

	return finding
}

// ScanEncoding flags compression containers hiding behind an unrelated
// extension, and headers that look like bare base64 blobs.
func (s *Scanner) ScanEncoding(path string, header []byte) *forensic.Finding {
	finding := &forensic.Finding{Category: "encoding"}
	ext := strings.ToLower(filepath.Ext(path))

	compressionSigs := []struct {
		prefix []byte
		name   string
		exts   []string
	}{
		{[]byte{0x1f, 0x8b}, "gzip", []string{".gz", ".tgz"}},
		{[]byte("BZh"), "bzip2", []string{".bz2"}},
		{[]byte{0xfd, '7', 'z', 'X', 'Z', 0x00}, "xz", []string{".xz"}},
		{[]byte{0x28, 0xb5, 0x2f, 0xfd}, "zstd", []string{".zst"}},
	}
	for _, sig := range compressionSigs {
		if !hasPrefix(header, sig.prefix) {
			continue
		}
		expected := false
		for _, e := range sig.exts {
			if ext == e {
				expected = true
				break
			}
		}
		if !expected {
			finding.Flag(fmt.Sprintf("hidden %s compression (extension %s)", sig.name, ext), 20)
		}
	}

	if len(header) >= 20 && base64Header.Match(header) {
		finding.Flag("header looks like bare base64 data", 10)
	}

	return finding
}

// ScanSize flags size anomalies: very large files and empty files with a
// sensitive or dangerous extension.
func (s *Scanner) ScanSize(path string, size int64) *forensic.Finding {
	finding := &forensic.Finding{Category: "size_anomaly"}
	ext := strings.ToLower(filepath.Ext(path))

	if size > 100<<20 {
		finding.Flag(fmt.Sprintf("very large file (%d bytes)", size), 20)
	}
	if size == 0 {
		for _, dangerous := range s.cfg.DangerousExtensions {
			if ext == dangerous {
				finding.Flag("empty file with dangerous extension", 15)
				break
			}
		}
	}

	return finding
}

// ScanTemporal flags recent modification/access and off-hours access.
// Results depend on now, so the orchestrator only runs this at the
// FORENSIC depth.
func (s *Scanner) ScanTemporal(modified, accessed, now time.Time) *forensic.Finding {
	finding := &forensic.Finding{Category: "temporal"}

	if now.Sub(modified) < 24*time.Hour {
		finding.Flag("modified within the last 24h", 15)
	}
	if now.Sub(accessed) < 2*time.Hour {
		finding.Flag("accessed within the last 2h", 10)
	}
	if hour := accessed.Hour(); hour < 7 || hour > 20 || accessed.Weekday() == time.Saturday || accessed.Weekday() == time.Sunday {
		finding.Flag("accessed outside working hours", 20)
	}

	return finding
}

func hasPrefix(data, prefix []byte) bool {
	if len(data) < len(prefix) {
		return false
	}
	for i, b := range prefix {
		if data[i] != b {
			return false
		}
	}
	return true
}
