package office

import (
	"archive/zip"
	"os"
	"path/filepath"
	"testing"
)

// writeDocx writes a minimal OOXML container with the given entries.
func writeDocx(t *testing.T, name string, entries map[string]string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), name)
	f, err := os.Create(path)
	if err != nil {
		t.Fatal(err)
	}
	w := zip.NewWriter(f)
	for entryName, body := range entries {
		entry, err := w.Create(entryName)
		if err != nil {
			t.Fatal(err)
		}
		if _, err := entry.Write([]byte(body)); err != nil {
			t.Fatal(err)
		}
	}
	if err := w.Close(); err != nil {
		t.Fatal(err)
	}
	if err := f.Close(); err != nil {
		t.Fatal(err)
	}
	return path
}

func TestAnalyzeMacroDocument(t *testing.T) {
	path := writeDocx(t, "invoice.docm", map[string]string{
		"[Content_Types].xml": "<Types/>",
		"word/document.xml":   "<w:document><w:body><w:p>Please enable macros</w:p></w:body></w:document>",
		"word/vbaProject.bin": "\xcc\x61macro bytes",
	})

	findings := NewAnalyzer().Analyze(path, []byte("PK\x03\x04"))

	if !findings.HasMacros {
		t.Fatalf("HasMacros = false, want true")
	}
	if len(findings.MacroFiles) != 1 || findings.MacroFiles[0] != "word/vbaProject.bin" {
		t.Errorf("MacroFiles = %v", findings.MacroFiles)
	}
	if findings.RiskPoints < macroPoints {
		t.Errorf("RiskPoints = %v, want at least %v", findings.RiskPoints, macroPoints)
	}
}

func TestAnalyzeCleanDocument(t *testing.T) {
	path := writeDocx(t, "notes.docx", map[string]string{
		"word/document.xml": "<w:document><w:body><w:p>hello world of text</w:p></w:body></w:document>",
		"docProps/core.xml": `<coreProperties><creator>alice</creator><title>Notes</title></coreProperties>`,
	})

	findings := NewAnalyzer().Analyze(path, []byte("PK\x03\x04"))

	if findings.HasMacros {
		t.Errorf("HasMacros = true, want false")
	}
	if findings.RiskPoints != 0 {
		t.Errorf("RiskPoints = %v, want 0", findings.RiskPoints)
	}
	if findings.Metadata["creator"] != "alice" {
		t.Errorf("Metadata = %v", findings.Metadata)
	}
	if findings.Content == nil || findings.Content.Subtype != "document" {
		t.Fatalf("Content = %+v, want document summary", findings.Content)
	}
	if findings.Content.WordCount != 4 {
		t.Errorf("WordCount = %d, want 4", findings.Content.WordCount)
	}
}

func TestAnalyzeExternalLinks(t *testing.T) {
	path := writeDocx(t, "linked.docx", map[string]string{
		"word/document.xml": "<w:document/>",
		"word/_rels/document.xml.rels": `<Relationships>
			<Relationship Id="rId1" Target="https://tracker.example/pixel.gif" TargetMode="External"/>
			<Relationship Id="rId2" Target="styles.xml"/>
		</Relationships>`,
	})

	findings := NewAnalyzer().Analyze(path, []byte("PK\x03\x04"))

	if len(findings.ExternalLinks) != 1 {
		t.Fatalf("ExternalLinks = %v, want 1", findings.ExternalLinks)
	}
	if findings.ExternalLinks[0] != "https://tracker.example/pixel.gif" {
		t.Errorf("ExternalLinks[0] = %q", findings.ExternalLinks[0])
	}
}

func TestAnalyzeWorkbookSummary(t *testing.T) {
	path := writeDocx(t, "report.xlsx", map[string]string{
		"xl/workbook.xml":          "<workbook/>",
		"xl/worksheets/sheet1.xml": `<worksheet><c><f>SUM(A1:A9)</f></c><c><f>A1*2</f></c></worksheet>`,
		"xl/worksheets/sheet2.xml": `<worksheet><c><f>NOW()</f></c></worksheet>`,
	})

	findings := NewAnalyzer().Analyze(path, []byte("PK\x03\x04"))

	if findings.Content == nil || findings.Content.Subtype != "workbook" {
		t.Fatalf("Content = %+v, want workbook summary", findings.Content)
	}
	if findings.Content.Sheets != 2 {
		t.Errorf("Sheets = %d, want 2", findings.Content.Sheets)
	}
	if findings.Content.Formulas != 3 {
		t.Errorf("Formulas = %d, want 3", findings.Content.Formulas)
	}
}

func TestAnalyzeLegacyFormat(t *testing.T) {
	header := []byte{0xd0, 0xcf, 0x11, 0xe0, 0xa1, 0xb1, 0x1a, 0xe1}

	findings := NewAnalyzer().Analyze("old_report.doc", header)

	if findings.Format != "legacy" {
		t.Errorf("Format = %q, want legacy", findings.Format)
	}
	if findings.RiskPoints != legacyFormatPoints {
		t.Errorf("RiskPoints = %v, want %v", findings.RiskPoints, legacyFormatPoints)
	}
}

func TestAnalyzeCorruptContainer(t *testing.T) {
	path := filepath.Join(t.TempDir(), "broken.docx")
	if err := os.WriteFile(path, []byte("PK\x03\x04 truncated central directory"), 0o644); err != nil {
		t.Fatal(err)
	}

	findings := NewAnalyzer().Analyze(path, []byte("PK\x03\x04"))

	if findings.Err == "" {
		t.Errorf("Err = empty, want recorded open error")
	}
	if findings.Content == nil || findings.Content.Subtype != "document" {
		t.Errorf("Content = %+v, want extension-derived document subtype", findings.Content)
	}
}

func TestSubtype(t *testing.T) {
	tests := []struct {
		path string
		want string
	}{
		{"a.docx", "document"},
		{"b.xlsm", "workbook"},
		{"c.pptx", "presentation"},
		{"d.txt", ""},
	}
	for _, test := range tests {
		if got := Subtype(test.path); got != test.want {
			t.Errorf("Subtype(%q) = %q, want %q", test.path, got, test.want)
		}
	}
}
