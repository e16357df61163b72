// Package office inspects Office documents. Modern OOXML files are ZIP
// containers and are enumerated entry by entry; legacy OLE2 binaries are
// not parsed, only flagged, since their compound-file format routinely
// carries macros invisible to surface checks.
package office

import (
	"archive/zip"
	"bytes"
	"encoding/xml"
	"fmt"
	"io"
	"path"
	"regexp"
	"strings"

	"github.com/exfilwatch/file-analysis/internal/utils"
	"github.com/exfilwatch/file-analysis/pkg/api/forensic"
)

const (
	macroPoints        = 40
	legacyFormatPoints = 15
	embeddedObjPoints  = 10
	externalLinkPoints = 5

	// Per-entry XML reads are capped so a crafted document cannot make
	// the analyzer buffer unbounded content.
	maxEntryRead = 1 << 20

	maxSheetsScanned = 5
)

var externalTarget = regexp.MustCompile(`Target="(https?://[^"]+)"`)

// coreProperties is the subset of docProps/core.xml worth surfacing.
type coreProperties struct {
	Creator        string `xml:"creator"`
	LastModifiedBy string `xml:"lastModifiedBy"`
	Title          string `xml:"title"`
	Subject        string `xml:"subject"`
	Created        string `xml:"created"`
	Modified       string `xml:"modified"`
}

type Analyzer struct{}

func NewAnalyzer() *Analyzer {
	return &Analyzer{}
}

// Analyze inspects the document at path. data is the identification
// header, used only to distinguish OOXML from legacy containers.
func (a *Analyzer) Analyze(path string, data []byte) *forensic.OfficeFindings {
	findings := &forensic.OfficeFindings{
		Finding: forensic.Finding{Category: "office"},
	}

	if !bytes.HasPrefix(data, []byte("PK")) {
		findings.Format = "legacy"
		findings.Flag("legacy binary format, macro inspection not possible", legacyFormatPoints)
		return findings
	}
	findings.Format = "ooxml"

	reader, err := zip.OpenReader(path)
	if err != nil {
		findings.SetError(fmt.Errorf("open document container: %w", err))
		// The container is unreadable; fall back to the extension for
		// the subtype.
		if subtype := Subtype(path); subtype != "" {
			findings.Content = &forensic.OfficeContent{Subtype: subtype}
		}
		return findings
	}
	defer reader.Close()

	a.inspectEntries(&reader.Reader, findings)
	return findings
}

func (a *Analyzer) inspectEntries(reader *zip.Reader, findings *forensic.OfficeFindings) {
	subtype := ""
	content := &forensic.OfficeContent{}

	for _, entry := range reader.File {
		name := entry.Name

		switch {
		case strings.Contains(name, "vbaProject"), strings.HasSuffix(name, ".bin") && strings.Contains(name, "macro"):
			findings.HasMacros = true
			findings.MacroFiles = append(findings.MacroFiles, name)

		case strings.Contains(name, "embeddings/") || strings.Contains(name, "oleObject"):
			findings.EmbeddedObjects = append(findings.EmbeddedObjects, name)

		case name == "docProps/core.xml":
			findings.Metadata = readCoreProperties(entry)

		case strings.HasSuffix(name, ".rels"):
			findings.ExternalLinks = append(findings.ExternalLinks, readExternalTargets(entry)...)
		}

		switch {
		case name == "word/document.xml":
			subtype = "document"
			a.summarizeDocument(entry, content)
		case strings.HasPrefix(name, "word/media/"):
			content.Images++
		case name == "xl/workbook.xml":
			subtype = "workbook"
		case strings.HasPrefix(name, "xl/worksheets/sheet"):
			if content.Sheets < maxSheetsScanned {
				a.summarizeSheet(entry, content)
			}
			content.Sheets++
		case strings.HasPrefix(name, "ppt/slides/slide") && strings.HasSuffix(name, ".xml"):
			subtype = "presentation"
			content.Slides++
		case strings.HasPrefix(name, "ppt/notesSlides/"):
			content.Notes++
		case strings.HasPrefix(name, "ppt/media/"):
			content.Media++
		}
	}

	if findings.HasMacros {
		findings.Flag(fmt.Sprintf("VBA macros present (%d file(s))", len(findings.MacroFiles)), macroPoints)
	}
	if count := len(findings.EmbeddedObjects); count > 0 {
		findings.Flag(fmt.Sprintf("%d embedded object(s)", count), embeddedObjPoints)
	}
	findings.ExternalLinks = utils.RemoveDuplicates(findings.ExternalLinks)
	if count := len(findings.ExternalLinks); count > 0 {
		findings.Flag(fmt.Sprintf("%d external link(s)", count), externalLinkPoints)
	}

	if subtype != "" {
		content.Subtype = subtype
		findings.Content = content
	}
}

// summarizeDocument extracts a text summary from the main document part.
func (a *Analyzer) summarizeDocument(entry *zip.File, content *forensic.OfficeContent) {
	data, err := readEntry(entry)
	if err != nil {
		return
	}

	var text strings.Builder
	decoder := xml.NewDecoder(bytes.NewReader(data))
	for {
		token, err := decoder.Token()
		if err != nil {
			break
		}
		if chars, ok := token.(xml.CharData); ok {
			text.Write(chars)
			text.WriteByte(' ')
		}
	}

	content.TextLength = text.Len()
	content.WordCount = len(strings.Fields(text.String()))
	content.Tables = bytes.Count(data, []byte("<w:tbl>"))
}

// summarizeSheet counts formulas and external references in one worksheet.
func (a *Analyzer) summarizeSheet(entry *zip.File, content *forensic.OfficeContent) {
	data, err := readEntry(entry)
	if err != nil {
		return
	}
	content.Formulas += bytes.Count(data, []byte("<f>")) + bytes.Count(data, []byte("<f "))
	content.ExternalRefs += bytes.Count(data, []byte("externalReference"))
}

func readCoreProperties(entry *zip.File) map[string]string {
	data, err := readEntry(entry)
	if err != nil {
		return nil
	}

	var props coreProperties
	if err := xml.Unmarshal(data, &props); err != nil {
		return nil
	}

	metadata := map[string]string{}
	for key, value := range map[string]string{
		"creator":          props.Creator,
		"last_modified_by": props.LastModifiedBy,
		"title":            props.Title,
		"subject":          props.Subject,
		"created":          props.Created,
		"modified":         props.Modified,
	} {
		if value != "" {
			metadata[key] = value
		}
	}
	if len(metadata) == 0 {
		return nil
	}
	return metadata
}

func readExternalTargets(entry *zip.File) []string {
	data, err := readEntry(entry)
	if err != nil {
		return nil
	}
	return utils.Transform(externalTarget.FindAllSubmatch(data, -1), func(m [][]byte) string {
		return string(m[1])
	})
}

func readEntry(entry *zip.File) ([]byte, error) {
	rc, err := entry.Open()
	if err != nil {
		return nil, err
	}
	defer rc.Close()
	return io.ReadAll(io.LimitReader(rc, maxEntryRead))
}

// Subtype guesses the OOXML subtype from the file extension, used when the
// container cannot be opened.
func Subtype(filePath string) string {
	switch strings.ToLower(path.Ext(filePath)) {
	case ".docx", ".docm":
		return "document"
	case ".xlsx", ".xlsm":
		return "workbook"
	case ".pptx", ".pptm":
		return "presentation"
	}
	return ""
}
