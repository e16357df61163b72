// Package hidden detects content concealed inside a file: polyglot
// signature combinations, data trailing a format's terminal marker, and
// embedded file signatures at nonzero offsets.
package hidden

import (
	"bytes"
	"fmt"

	"github.com/exfilwatch/file-analysis/internal/inspect"
	"github.com/exfilwatch/file-analysis/internal/signature"
	"github.com/exfilwatch/file-analysis/internal/utils"
	"github.com/exfilwatch/file-analysis/pkg/api/forensic"
)

// Terminal-marker tolerances: a PDF may legitimately carry a few bytes
// after %%EOF, and the ZIP end-of-central-directory record is 22 bytes
// long plus an optional comment.
const (
	pdfEOFTolerance  = 10
	zipEOCDRecordLen = 22
)

// TailWindow is how many bytes from the end of the file the trailing-data
// check inspects. It covers the maximum ZIP end-of-central-directory
// comment (64 KiB) plus the record itself.
const TailWindow = 64*1024 + zipEOCDRecordLen

var (
	pdfEOFMarker = []byte("%%EOF")
	zipEOCDSig   = []byte{'P', 'K', 0x05, 0x06}
)

// Detector runs the hidden-content checks over a bounded window of file
// content. Immutable and safe for concurrent use.
type Detector struct {
	catalog    *signature.Catalog
	scanWindow int
}

func NewDetector(catalog *signature.Catalog, scanWindow int) *Detector {
	if scanWindow <= 0 {
		scanWindow = inspect.DefaultScanWindow
	}
	return &Detector{catalog: catalog, scanWindow: scanWindow}
}

// Detect inspects data (a bounded prefix of the file) for hidden content.
// tail holds the last bytes of the file for the trailing-data check; a
// nil tail means data spans the whole file. totalSize is the full file
// size.
func (d *Detector) Detect(data []byte, tail []byte, totalSize int64) *forensic.HiddenContent {
	result := &forensic.HiddenContent{
		Finding: forensic.Finding{Category: "hidden_content"},
	}

	hits := inspect.SlidingScan(data, d.catalog, d.scanWindow)

	categories := utils.RemoveDuplicates(utils.Transform(hits, func(h inspect.Hit) forensic.Category {
		return h.Category
	}))

	// Polyglot: two or more distinct signature categories anywhere in
	// the scan window, not just at offset zero.
	if len(categories) > 1 {
		result.Polyglot = true
		result.SignaturesFound = categories
		result.Flag(fmt.Sprintf("polyglot: %d distinct signatures in scan window", len(categories)), 30)
	}

	for _, hit := range hits {
		if hit.Offset == 0 {
			continue
		}
		result.EmbeddedFiles = append(result.EmbeddedFiles, forensic.EmbeddedFile{
			Category:  hit.Category,
			Offset:    hit.Offset,
			Signature: fmt.Sprintf("%x", d.catalog.PrefixFor(hit.Category)),
		})
	}
	if count := len(result.EmbeddedFiles); count > 0 {
		result.Flag(fmt.Sprintf("%d potential embedded file(s)", count), 15)
	}

	if tail == nil && totalSize <= int64(len(data)) {
		tail = utils.LastNBytes(data, TailWindow)
	}
	d.checkTrailingData(data, tail, totalSize, result)

	return result
}

// checkTrailingData looks for bytes after the format's defined terminal
// marker. Only formats with a well-defined end marker are checked. The
// marker is searched in the file's last bytes: an early marker inside
// the content prefix (incremental PDF updates, nested archives) must not
// count the rest of a well-formed file as trailing.
func (d *Detector) checkTrailingData(header []byte, tail []byte, totalSize int64, result *forensic.HiddenContent) {
	if len(tail) == 0 {
		return
	}
	tailStart := totalSize - int64(len(tail))

	switch {
	case bytes.HasPrefix(header, []byte("%PDF")):
		eof := bytes.LastIndex(tail, pdfEOFMarker)
		if eof == -1 {
			return
		}
		trailing := totalSize - tailStart - int64(eof) - int64(len(pdfEOFMarker))
		if trailing > pdfEOFTolerance {
			result.TrailingData = true
			result.TrailingBytes = trailing
		}

	case bytes.HasPrefix(header, []byte("PK")):
		eocd := bytes.LastIndex(tail, zipEOCDSig)
		if eocd == -1 {
			return
		}
		trailing := totalSize - tailStart - int64(eocd) - zipEOCDRecordLen
		if trailing > 0 {
			result.TrailingData = true
			result.TrailingBytes = trailing
		}
	}

	if result.TrailingData {
		result.Flag(fmt.Sprintf("%d byte(s) after end-of-file marker", result.TrailingBytes), 20)
	}
}
