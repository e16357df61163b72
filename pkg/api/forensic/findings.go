package forensic

import "github.com/exfilwatch/file-analysis/pkg/valuecounts"

// Findings groups the per-detector records of a single analysis.
// A field is non-nil only if the corresponding detector actually ran,
// so the JSON object contains exactly the categories that were checked.
type Findings struct {
	PDF        *PDFFindings        `json:"pdf,omitempty"`
	Office     *OfficeFindings     `json:"office,omitempty"`
	Archive    *ArchiveFindings    `json:"archive,omitempty"`
	Image      *ImageFindings      `json:"image,omitempty"`
	Database   *DatabaseFindings   `json:"database,omitempty"`
	Executable *ExecutableFindings `json:"executable,omitempty"`
	Text       *TextFindings       `json:"text,omitempty"`

	Filename *Finding         `json:"filename,omitempty"`
	Content  *ContentFindings `json:"content,omitempty"`
	Size     *Finding         `json:"size_anomaly,omitempty"`
	Encoding *Finding         `json:"encoding,omitempty"`
	Temporal *Finding         `json:"temporal,omitempty"`
}

// All returns the base Finding of every detector that ran, in a fixed order.
func (f *Findings) All() []*Finding {
	var all []*Finding
	add := func(base *Finding) {
		if base != nil {
			all = append(all, base)
		}
	}
	if f.PDF != nil {
		add(&f.PDF.Finding)
	}
	if f.Office != nil {
		add(&f.Office.Finding)
	}
	if f.Archive != nil {
		add(&f.Archive.Finding)
	}
	if f.Image != nil {
		add(&f.Image.Finding)
	}
	if f.Database != nil {
		add(&f.Database.Finding)
	}
	if f.Executable != nil {
		add(&f.Executable.Finding)
	}
	if f.Text != nil {
		add(&f.Text.Finding)
	}
	add(f.Filename)
	if f.Content != nil {
		add(&f.Content.Finding)
	}
	add(f.Size)
	add(f.Encoding)
	add(f.Temporal)
	return all
}

// PDFFindings records the structural inspection of a PDF file.
type PDFFindings struct {
	Finding

	Version        string            `json:"version,omitempty"`
	Pages          int               `json:"pages"`
	Encrypted      bool              `json:"encrypted"`
	HasJavaScript  bool              `json:"has_javascript"`
	HasForms       bool              `json:"has_forms"`
	HasAttachments bool              `json:"has_attachments"`
	Objects        []string          `json:"objects,omitempty"`
	Links          []string          `json:"links,omitempty"`
	Metadata       map[string]string `json:"metadata,omitempty"`
}

// OfficeFindings records the structural inspection of an Office document.
type OfficeFindings struct {
	Finding

	Format          string            `json:"format"`
	HasMacros       bool              `json:"has_macros"`
	MacroFiles      []string          `json:"macro_files,omitempty"`
	EmbeddedObjects []string          `json:"embedded_objects,omitempty"`
	ExternalLinks   []string          `json:"external_links,omitempty"`
	Metadata        map[string]string `json:"metadata,omitempty"`
	Content         *OfficeContent    `json:"content_summary,omitempty"`
}

// OfficeContent is a lightweight content summary for one OOXML subtype.
// Only the fields relevant to Subtype are populated.
type OfficeContent struct {
	Subtype string `json:"subtype"`

	// document
	TextLength int `json:"text_length,omitempty"`
	WordCount  int `json:"word_count,omitempty"`
	Images     int `json:"images,omitempty"`
	Tables     int `json:"tables,omitempty"`

	// workbook
	Sheets       int `json:"sheets,omitempty"`
	Formulas     int `json:"formulas,omitempty"`
	ExternalRefs int `json:"external_refs,omitempty"`

	// presentation
	Slides int `json:"slides,omitempty"`
	Notes  int `json:"notes,omitempty"`
	Media  int `json:"media,omitempty"`
}

// ArchiveFindings records the inspection of an archive container.
// Sizes come from entry metadata only; payloads are never decompressed.
type ArchiveFindings struct {
	Finding

	Type             string         `json:"type,omitempty"`
	EntryCount       int            `json:"entry_count"`
	TotalSize        int64          `json:"total_size"`
	CompressedSize   int64          `json:"compressed_size"`
	CompressionRatio float64        `json:"compression_ratio"`
	Encrypted        bool           `json:"encrypted"`
	DeepNesting      bool           `json:"deep_nesting"`
	BombSuspect      bool           `json:"bomb_suspect"`
	ExtensionCounts  map[string]int `json:"extension_counts,omitempty"`
	DangerousEntries []string       `json:"dangerous_entries,omitempty"`
	SensitiveEntries []string       `json:"sensitive_entries,omitempty"`
	Entries          []string       `json:"entries,omitempty"`
}

// ImageFindings records the inspection of a raster image.
type ImageFindings struct {
	Finding

	Format     string            `json:"format,omitempty"`
	Dimensions string            `json:"dimensions,omitempty"`
	BitDepth   int               `json:"bit_depth,omitempty"`
	ColorType  string            `json:"color_type,omitempty"`
	GPS        *GPSLocation      `json:"gps_location,omitempty"`
	Software   string            `json:"software,omitempty"`
	Exif       map[string]string `json:"exif,omitempty"`
	StegoRisk  bool              `json:"steganography_risk"`
}

// GPSLocation holds coordinates recovered from image metadata.
type GPSLocation struct {
	Latitude  string `json:"lat"`
	Longitude string `json:"lon"`
}

// TableInfo describes one table of an embedded database.
type TableInfo struct {
	Columns []string `json:"columns,omitempty"`
	Rows    int64    `json:"rows"`
}

// DatabaseFindings records the catalog enumeration of an embedded database.
type DatabaseFindings struct {
	Finding

	Type            string               `json:"type,omitempty"`
	Tables          []string             `json:"tables,omitempty"`
	TableCount      int                  `json:"table_count"`
	TotalRecords    int64                `json:"total_records"`
	Schema          map[string]TableInfo `json:"schema,omitempty"`
	SensitiveTables []string             `json:"sensitive_tables,omitempty"`
	Indices         []string             `json:"indices,omitempty"`
}

// ExecutableFindings records the inspection of a native executable.
type ExecutableFindings struct {
	Finding

	Format            string   `json:"format,omitempty"`
	Architecture      string   `json:"architecture,omitempty"`
	Strings           []string `json:"strings,omitempty"`
	SuspiciousStrings []string `json:"suspicious_strings,omitempty"`
}

// TextFindings records the inspection of a text or script file.
type TextFindings struct {
	Finding

	Encoding           string                  `json:"encoding,omitempty"`
	Language           string                  `json:"language,omitempty"`
	LineCount          int                     `json:"line_count"`
	CharCount          int                     `json:"char_count"`
	LineLengths        valuecounts.ValueCounts `json:"line_lengths,omitempty"`
	ObfuscationScore   int                     `json:"obfuscation_score"`
	SuspiciousPatterns []string                `json:"suspicious_patterns,omitempty"`
	URLs               []string                `json:"urls,omitempty"`
	IPs                []string                `json:"ips,omitempty"`
	Secrets            []SecretMatch           `json:"secrets_found,omitempty"`
}

// ContentFindings records the cross-cutting content pattern scan that runs
// regardless of the identified file type.
type ContentFindings struct {
	Finding

	Entropy         float64         `json:"entropy"`
	HighEntropy     bool            `json:"high_entropy"`
	TotalMatches    int             `json:"total_matches"`
	Secrets         []SecretMatch   `json:"secrets,omitempty"`
	HackingTool     string          `json:"hacking_tool,omitempty"`
	DoubleExtension bool            `json:"double_extension"`
	RTLOverride     bool            `json:"rtl_override"`
	HeaderMismatch  *HeaderMismatch `json:"header_mismatch,omitempty"`
}

// HeaderMismatch records a file whose magic bytes do not match its extension.
type HeaderMismatch struct {
	Expected Category `json:"expected"`
	FoundHex string   `json:"found"`
}

// EmbeddedFile is a signature match at a nonzero offset within the scan
// window, suggesting a file hidden inside the file.
type EmbeddedFile struct {
	Category  Category `json:"type"`
	Offset    int      `json:"offset"`
	Signature string   `json:"signature"`
}

// HiddenContent records polyglot, trailing-data and embedded-file detection.
type HiddenContent struct {
	Finding

	Polyglot        bool           `json:"polyglot"`
	SignaturesFound []Category     `json:"signatures_found,omitempty"`
	TrailingData    bool           `json:"trailing_data"`
	TrailingBytes   int64          `json:"trailing_bytes,omitempty"`
	EmbeddedFiles   []EmbeddedFile `json:"embedded_files,omitempty"`
}

// SignatureInfo records the raw header of the analyzed file and the
// signature categories it matches.
type SignatureInfo struct {
	Hex       string     `json:"hex"`
	ASCII     string     `json:"ascii"`
	Matches   []Category `json:"matches,omitempty"`
	Extension string     `json:"extension,omitempty"`
}
