// Package textfile inspects text and script files: encoding detection by
// trial decode, script-language heuristics, obfuscation scoring and
// credential, URL and address extraction.
package textfile

import (
	"bytes"
	"fmt"
	"path/filepath"
	"regexp"
	"strings"
	"unicode/utf8"

	"golang.org/x/text/encoding"
	"golang.org/x/text/encoding/charmap"
	"golang.org/x/text/encoding/unicode"

	"github.com/exfilwatch/file-analysis/internal/patterns"
	"github.com/exfilwatch/file-analysis/internal/utils"
	"github.com/exfilwatch/file-analysis/pkg/api/forensic"
	"github.com/exfilwatch/file-analysis/pkg/valuecounts"
)

const (
	maxURLsListed = 20
	maxIPsListed  = 20

	obfuscationThreshold = 5
	longLineThreshold    = 500

	obfuscationPoints = 25
	suspiciousPoints  = 10
	secretPointsBase  = 10
	secretPointsEach  = 2
)

var (
	urlPattern = regexp.MustCompile(`https?://[^\s"'<>)]+`)
	ipPattern  = regexp.MustCompile(`\b(?:\d{1,3}\.){3}\d{1,3}\b`)
	hexEscape  = regexp.MustCompile(`\\x[0-9a-fA-F]{2}`)
)

// trialEncodings is the decode order. UTF-8 is validated directly; the
// single-byte charmaps never fail, so their order decides the label for
// non-UTF-8 content.
var trialEncodings = []struct {
	name    string
	decoder *encoding.Decoder
}{
	{"latin-1", charmap.ISO8859_1.NewDecoder()},
	{"windows-1252", charmap.Windows1252.NewDecoder()},
}

// languageByExtension maps script extensions to a language label.
var languageByExtension = map[string]string{
	".py":   "python",
	".js":   "javascript",
	".ts":   "typescript",
	".sh":   "shell",
	".bash": "shell",
	".ps1":  "powershell",
	".rb":   "ruby",
	".pl":   "perl",
	".php":  "php",
	".sql":  "sql",
	".bat":  "batch",
	".vbs":  "vbscript",
	".go":   "go",
	".java": "java",
	".c":    "c",
	".cpp":  "c++",
}

// suspiciousOperations are capability patterns grouped by concern. The
// group name, not the matched text, is reported.
var suspiciousOperations = []struct {
	name    string
	pattern *regexp.Regexp
}{
	{"shell execution", regexp.MustCompile(`(?i)\b(?:os\.system|subprocess|shell_exec|popen|invoke-expression|iex\b)`)},
	{"sql statements", regexp.MustCompile(`(?i)\b(?:select\s+.+\s+from|insert\s+into|drop\s+table|union\s+select)\b`)},
	{"file operations", regexp.MustCompile(`(?i)\b(?:unlink|rmtree|shred|del\s+/[fq]|remove-item)\b`)},
	{"network access", regexp.MustCompile(`(?i)\b(?:socket\.|urllib|requests\.|curl\s|wget\s|invoke-webrequest|net\.dial)`)},
	{"crypto usage", regexp.MustCompile(`(?i)\b(?:aes|rsa|fernet|cryptography|encrypt|decrypt)\b`)},
}

type Analyzer struct{}

func NewAnalyzer() *Analyzer {
	return &Analyzer{}
}

func (a *Analyzer) Analyze(path string, data []byte) *forensic.TextFindings {
	findings := &forensic.TextFindings{
		Finding: forensic.Finding{Category: "text"},
	}

	content, encodingName := decode(data)
	findings.Encoding = encodingName
	findings.CharCount = utf8.RuneCountInString(content)
	findings.Language = languageByExtension[strings.ToLower(filepath.Ext(path))]

	lines := strings.Split(content, "\n")
	findings.LineCount = len(lines)
	findings.LineLengths = lineLengths(lines)

	findings.ObfuscationScore = obfuscationScore(content, lines)
	if findings.ObfuscationScore >= obfuscationThreshold {
		findings.Flag(fmt.Sprintf("obfuscation indicators (score %d)", findings.ObfuscationScore), obfuscationPoints)
	}

	for _, op := range suspiciousOperations {
		if op.pattern.MatchString(content) {
			findings.SuspiciousPatterns = append(findings.SuspiciousPatterns, op.name)
		}
	}
	if count := len(findings.SuspiciousPatterns); count > 0 {
		findings.Flag(fmt.Sprintf("%d suspicious operation pattern(s)", count), suspiciousPoints)
	}

	findings.URLs = capped(utils.RemoveDuplicates(urlPattern.FindAllString(content, -1)), maxURLsListed)
	findings.IPs = capped(utils.RemoveDuplicates(ipPattern.FindAllString(content, -1)), maxIPsListed)

	findings.Secrets = patterns.ScanSecrets(content)
	if len(findings.Secrets) > 0 {
		total := 0
		for _, secret := range findings.Secrets {
			total += secret.Count
		}
		findings.Flag(fmt.Sprintf("%d credential-pattern match(es)", total),
			secretPointsBase+float64(total)*secretPointsEach)
	}

	return findings
}

// decode returns the content as UTF-8 text and the encoding label it was
// decoded from.
func decode(data []byte) (string, string) {
	if utf8.Valid(data) {
		return string(data), "utf-8"
	}
	if bytes.HasPrefix(data, []byte{0xff, 0xfe}) || bytes.HasPrefix(data, []byte{0xfe, 0xff}) {
		decoded, err := unicode.UTF16(unicode.LittleEndian, unicode.UseBOM).NewDecoder().Bytes(data)
		if err == nil {
			return string(decoded), "utf-16"
		}
	}
	for _, trial := range trialEncodings {
		decoded, err := trial.decoder.Bytes(data)
		if err == nil && utf8.Valid(decoded) {
			return string(decoded), trial.name
		}
	}
	return string(data), "unknown"
}

func lineLengths(lines []string) valuecounts.ValueCounts {
	return valuecounts.Count(utils.Transform(lines, func(line string) int {
		return len(line)
	}))
}

// obfuscationScore counts dynamic-evaluation and encoding constructs. One
// point per eval/exec call, per base64 mention, per hex escape, per line
// longer than the threshold.
func obfuscationScore(content string, lines []string) int {
	score := strings.Count(content, "eval(") +
		strings.Count(content, "exec(") +
		strings.Count(content, "base64") +
		len(hexEscape.FindAllString(content, -1))

	for _, line := range lines {
		if len(line) > longLineThreshold {
			score++
		}
	}
	return score
}

func capped(items []string, max int) []string {
	if len(items) > max {
		return items[:max]
	}
	return items
}
