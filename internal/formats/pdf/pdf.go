// Package pdf inspects PDF documents for active content (JavaScript,
// launch actions, forms, attachments) without a full object-graph parse.
// Marker scanning over a bounded content window is deliberate: malformed
// documents that break strict parsers still get inspected.
package pdf

import (
	"bytes"
	"context"
	"fmt"
	"regexp"

	"github.com/exfilwatch/file-analysis/internal/utils"
	"github.com/exfilwatch/file-analysis/pkg/api/forensic"
)

const (
	maxObjectsListed = 20
	maxLinksListed   = 20
)

var (
	versionPattern = regexp.MustCompile(`%PDF-(\d\.\d)`)
	pagePattern    = regexp.MustCompile(`/Type\s*/Page[^s]`)
	objectPattern  = regexp.MustCompile(`(\d+)\s+(\d+)\s+obj\b`)
	urlPattern     = regexp.MustCompile(`/URI\s*\((https?://[^)]+)\)`)
)

// Risk weights for active PDF content.
const (
	javascriptPoints = 30
	openActionPoints = 25
	attachmentPoints = 15
	formPoints       = 5
	encryptedPoints  = 10
)

// Enricher supplies document metadata from an external tool. Nil results
// mean the tool is unavailable and enrichment is skipped.
type Enricher interface {
	PDFInfo(ctx context.Context, path string) map[string]string
}

// Analyzer inspects PDF structure. enricher may be nil.
type Analyzer struct {
	enricher Enricher
}

func NewAnalyzer(enricher Enricher) *Analyzer {
	return &Analyzer{enricher: enricher}
}

// Analyze scans data (a bounded prefix of the document) for structural
// and active-content markers.
func (a *Analyzer) Analyze(ctx context.Context, path string, data []byte) *forensic.PDFFindings {
	findings := &forensic.PDFFindings{
		Finding: forensic.Finding{Category: "pdf"},
	}

	if m := versionPattern.FindSubmatch(data); m != nil {
		findings.Version = string(m[1])
	}
	findings.Pages = len(pagePattern.FindAll(data, -1))

	if bytes.Contains(data, []byte("/Encrypt")) {
		findings.Encrypted = true
		findings.Flag("encrypted document", encryptedPoints)
	}
	if bytes.Contains(data, []byte("/JavaScript")) || bytes.Contains(data, []byte("/JS")) {
		findings.HasJavaScript = true
		findings.Flag("embedded JavaScript", javascriptPoints)
	}
	if bytes.Contains(data, []byte("/OpenAction")) || bytes.Contains(data, []byte("/AA")) {
		findings.Flag("automatic action on open", openActionPoints)
	}
	if bytes.Contains(data, []byte("/AcroForm")) {
		findings.HasForms = true
		findings.Flag("interactive form", formPoints)
	}
	if bytes.Contains(data, []byte("/EmbeddedFile")) || bytes.Contains(data, []byte("/Filespec")) {
		findings.HasAttachments = true
		findings.Flag("file attachment", attachmentPoints)
	}

	for _, m := range objectPattern.FindAllSubmatch(data, maxObjectsListed) {
		findings.Objects = append(findings.Objects, fmt.Sprintf("%s %s obj", m[1], m[2]))
	}

	links := utils.Transform(urlPattern.FindAllSubmatch(data, -1), func(m [][]byte) string {
		return string(m[1])
	})
	findings.Links = utils.RemoveDuplicates(links)
	if len(findings.Links) > maxLinksListed {
		findings.Links = findings.Links[:maxLinksListed]
	}

	if a.enricher != nil {
		findings.Metadata = a.enricher.PDFInfo(ctx, path)
		// pdfinfo counts pages authoritatively; the marker estimate can
		// undercount linearized documents.
		if pages, ok := findings.Metadata["Pages"]; ok {
			var n int
			if _, err := fmt.Sscanf(pages, "%d", &n); err == nil && n > 0 {
				findings.Pages = n
			}
		}
	}

	return findings
}
