package pdf

import (
	"context"
	"strings"
	"testing"
)

type stubEnricher struct {
	info map[string]string
}

func (s *stubEnricher) PDFInfo(_ context.Context, _ string) map[string]string {
	return s.info
}

func TestAnalyzeActiveContent(t *testing.T) {
	doc := strings.Join([]string{
		"%PDF-1.7",
		"1 0 obj << /Type /Catalog /OpenAction 2 0 R /AcroForm 3 0 R >> endobj",
		"2 0 obj << /S /JavaScript /JS (app.alert(1)) >> endobj",
		"4 0 obj << /Type /Page >> endobj",
		"5 0 obj << /Type /Page >> endobj",
		"%%EOF",
	}, "\n")

	findings := NewAnalyzer(nil).Analyze(context.Background(), "malicious.pdf", []byte(doc))

	if findings.Version != "1.7" {
		t.Errorf("Version = %q, want 1.7", findings.Version)
	}
	if !findings.HasJavaScript {
		t.Errorf("HasJavaScript = false, want true")
	}
	if !findings.HasForms {
		t.Errorf("HasForms = false, want true")
	}
	if findings.Pages != 2 {
		t.Errorf("Pages = %d, want 2", findings.Pages)
	}
	// JavaScript, open action and form flags all contribute.
	if findings.RiskPoints != javascriptPoints+openActionPoints+formPoints {
		t.Errorf("RiskPoints = %v, want %v", findings.RiskPoints, javascriptPoints+openActionPoints+formPoints)
	}
}

func TestAnalyzeBenignDocument(t *testing.T) {
	doc := "%PDF-1.4\n1 0 obj << /Type /Page >> endobj\n%%EOF"

	findings := NewAnalyzer(nil).Analyze(context.Background(), "report.pdf", []byte(doc))

	if findings.RiskPoints != 0 {
		t.Errorf("RiskPoints = %v, want 0 for benign document", findings.RiskPoints)
	}
	if findings.HasJavaScript || findings.HasForms || findings.HasAttachments || findings.Encrypted {
		t.Errorf("benign document flagged: %+v", findings)
	}
}

func TestAnalyzeLinks(t *testing.T) {
	doc := `%PDF-1.5
1 0 obj << /Type /Annot /A << /URI (https://example.com/login) >> >> endobj
2 0 obj << /Type /Annot /A << /URI (https://example.com/login) >> >> endobj
3 0 obj << /Type /Annot /A << /URI (http://evil.test/payload) >> >> endobj`

	findings := NewAnalyzer(nil).Analyze(context.Background(), "links.pdf", []byte(doc))

	if len(findings.Links) != 2 {
		t.Fatalf("Links = %v, want 2 unique URLs", findings.Links)
	}
	if findings.Links[0] != "https://example.com/login" {
		t.Errorf("Links[0] = %q", findings.Links[0])
	}
}

func TestAnalyzeEnrichmentOverridesPageCount(t *testing.T) {
	enricher := &stubEnricher{info: map[string]string{"Pages": "42", "Producer": "LibreOffice"}}

	findings := NewAnalyzer(enricher).Analyze(context.Background(), "big.pdf", []byte("%PDF-1.6"))

	if findings.Pages != 42 {
		t.Errorf("Pages = %d, want 42 from enrichment", findings.Pages)
	}
	if findings.Metadata["Producer"] != "LibreOffice" {
		t.Errorf("Metadata = %v", findings.Metadata)
	}
}

func TestAnalyzeEncrypted(t *testing.T) {
	doc := "%PDF-1.6\ntrailer << /Encrypt 5 0 R >>"

	findings := NewAnalyzer(nil).Analyze(context.Background(), "locked.pdf", []byte(doc))

	if !findings.Encrypted {
		t.Errorf("Encrypted = false, want true")
	}
}
