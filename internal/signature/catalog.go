// Package signature identifies file format categories from magic bytes.
package signature

import (
	"bytes"

	"github.com/exfilwatch/file-analysis/pkg/api/forensic"
)

// Entry associates a format category with its known byte-prefix patterns.
type Entry struct {
	Category forensic.Category
	Prefixes [][]byte
}

// Catalog is an immutable, ordered list of signature entries. Identification
// tests entries in order; the first matching prefix wins. A single Catalog
// is safe for concurrent use.
type Catalog struct {
	entries []Entry
}

// NewCatalog builds a catalog from the given entries, preserving order.
func NewCatalog(entries []Entry) *Catalog {
	return &Catalog{entries: entries}
}

// defaultPrefixes is the magic-byte table. ZIP precedes the legacy Office
// container in forensic.AllCategories so that OOXML documents identify as
// zip; the Office analyzer decides between OOXML and legacy from there.
var defaultPrefixes = map[forensic.Category][][]byte{
	forensic.CategoryPDF:          {[]byte("%PDF")},
	forensic.CategoryZip:          {{'P', 'K', 0x03, 0x04}, {'P', 'K', 0x05, 0x06}, {'P', 'K', 0x07, 0x08}},
	forensic.CategoryRar:          {{'R', 'a', 'r', '!', 0x1a, 0x07}},
	forensic.CategoryGzip:         {{0x1f, 0x8b}},
	forensic.CategoryBzip2:        {[]byte("BZh")},
	forensic.Category7z:           {{'7', 'z', 0xbc, 0xaf, 0x27, 0x1c}},
	forensic.CategoryPNG:          {{0x89, 'P', 'N', 'G', 0x0d, 0x0a, 0x1a, 0x0a}},
	forensic.CategoryJPEG:         {{0xff, 0xd8, 0xff}},
	forensic.CategoryGIF:          {[]byte("GIF87a"), []byte("GIF89a")},
	forensic.CategoryLegacyOffice: {{0xd0, 0xcf, 0x11, 0xe0, 0xa1, 0xb1, 0x1a, 0xe1}},
	forensic.CategoryPE:           {[]byte("MZ")},
	forensic.CategoryELF:          {{0x7f, 'E', 'L', 'F'}},
	forensic.CategorySQLite:       {append([]byte("SQLite format 3"), 0x00)},
}

// DefaultCatalog returns the standard signature table, ordered by
// forensic.AllCategories.
func DefaultCatalog() *Catalog {
	entries := make([]Entry, 0, len(forensic.AllCategories))
	for _, category := range forensic.AllCategories {
		entries = append(entries, Entry{category, defaultPrefixes[category]})
	}
	return NewCatalog(entries)
}

// Identify returns the category of the first entry whose prefix matches
// the start of header, or CategoryUnknown when nothing matches. Extension
// and MIME hints play no part in identification; disagreement between
// them and the signature is reported later as a risk indicator.
func (c *Catalog) Identify(header []byte) forensic.Category {
	for _, entry := range c.entries {
		for _, prefix := range entry.Prefixes {
			if bytes.HasPrefix(header, prefix) {
				return entry.Category
			}
		}
	}
	return forensic.CategoryUnknown
}

// Matches returns every category whose prefix matches the start of header,
// in catalog order.
func (c *Catalog) Matches(header []byte) []forensic.Category {
	var matches []forensic.Category
	for _, entry := range c.entries {
		for _, prefix := range entry.Prefixes {
			if bytes.HasPrefix(header, prefix) {
				matches = append(matches, entry.Category)
				break
			}
		}
	}
	return matches
}

// Entries exposes the catalog's entries for scanning code. The returned
// slice must not be modified.
func (c *Catalog) Entries() []Entry {
	return c.entries
}

// PrefixFor returns the primary (first) prefix registered for a category,
// or nil if the category has no entry.
func (c *Catalog) PrefixFor(category forensic.Category) []byte {
	for _, entry := range c.entries {
		if entry.Category == category && len(entry.Prefixes) > 0 {
			return entry.Prefixes[0]
		}
	}
	return nil
}
