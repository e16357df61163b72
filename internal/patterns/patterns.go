// Package patterns implements the reusable content and filename pattern
// catalog: secret/PII detection, forensic red flags (hacking-tool names,
// double extensions, RTL-override spoofing, header/extension mismatch)
// and the entropy gate.
package patterns

import (
	"regexp"
)

// secretPattern describes one secret/PII detection rule. Each match
// contributes perMatch points on top of the base weight; redact controls
// whether the reported sample is replaced by a fixed placeholder.
type secretPattern struct {
	name     string
	regex    *regexp.Regexp
	base     float64
	perMatch float64
	redact   bool
}

// The catalog mirrors common credential and PII formats. Lookaround-based
// patterns (bare AWS secrets, Azure keys) are deliberately absent: RE2 has
// no lookarounds and without them those patterns match far too much.
var secretPatterns = []secretPattern{
	{"credit_card", regexp.MustCompile(`\b(?:\d[ -]*?){13,16}\b`), 10, 2, false},
	{"email", regexp.MustCompile(`[a-zA-Z0-9._%+-]+@[a-zA-Z0-9.-]+\.[a-zA-Z]{2,}`), 10, 2, false},
	{"ipv4", regexp.MustCompile(`\b(?:\d{1,3}\.){3}\d{1,3}\b`), 10, 2, false},
	{"phone_us", regexp.MustCompile(`\b\d{3}[-.]?\d{3}[-.]?\d{4}\b`), 10, 2, false},
	{"ssn_us", regexp.MustCompile(`\b\d{3}-\d{2}-\d{4}\b`), 10, 2, false},
	{"iban", regexp.MustCompile(`\b[A-Z]{2}\d{2}[A-Z0-9]{4,30}\b`), 10, 2, false},
	{"private_key", regexp.MustCompile(`-----BEGIN (?:RSA |DSA |EC |OPENSSH |PGP )?PRIVATE KEY-----`), 10, 2, true},
	{"api_key", regexp.MustCompile(`(?i)(?:api[_-]?key|apikey)["\s:=]+[a-zA-Z0-9\-_]{20,}`), 10, 2, true},
	{"password", regexp.MustCompile(`(?i)(?:password|passwd)["\s:=]+\S+`), 10, 2, true},
	{"aws_key", regexp.MustCompile(`(?:AKIA|ASIA)[0-9A-Z]{16}`), 10, 2, true},
	{"google_api", regexp.MustCompile(`AIza[0-9A-Za-z\-_]{35}`), 10, 2, true},
	{"slack_token", regexp.MustCompile(`xox[baprs]-[0-9a-zA-Z]{10,48}`), 10, 2, true},
	{"jwt", regexp.MustCompile(`eyJ[a-zA-Z0-9_-]*\.eyJ[a-zA-Z0-9_-]*\.[a-zA-Z0-9_-]*`), 10, 2, true},
	{"crypto_address", regexp.MustCompile(`\b(?:bc1|[13])[a-zA-HJ-NP-Z0-9]{25,39}\b|\b0x[a-fA-F0-9]{40}\b`), 10, 2, false},
}

// doubleExtension matches names like invoice.pdf.exe where the final,
// effective extension is executable-like.
var doubleExtension = regexp.MustCompile(`\.[a-z]{3,4}\.(?:exe|bat|ps1|vbs|js)$`)

// rtlOverride is the Unicode right-to-left override character used to
// visually disguise executable extensions.
const rtlOverride = '‮'

// backupExportName matches backup/dump/export names carrying a year,
// a common shape for staged exfiltration archives.
var backupExportName = regexp.MustCompile(`(?:copy|copie|backup|dump|export).*\d{4}`)

// tempArchiveName matches throwaway archive names.
var tempArchiveName = regexp.MustCompile(`(?:temp|tmp|test).*\.(?:zip|rar|7z)`)

// genericNames are meaningless default names that deserve a light flag.
var genericNames = []string{"download", "new", "untitled", "document1", "sans_titre"}

// base64Header matches a header consisting solely of base64 alphabet
// characters with optional padding.
var base64Header = regexp.MustCompile(`^[A-Za-z0-9+/]+={0,2}$`)
