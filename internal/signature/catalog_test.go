package signature

import (
	"reflect"
	"testing"

	"github.com/exfilwatch/file-analysis/pkg/api/forensic"
)

func TestIdentify(t *testing.T) {
	catalog := DefaultCatalog()

	testCases := []struct {
		name     string
		header   []byte
		expected forensic.Category
	}{
		{"pdf", []byte{0x25, 0x50, 0x44, 0x46, '-', '1', '.', '7'}, forensic.CategoryPDF},
		{"png", []byte{0x89, 0x50, 0x4e, 0x47, 0x0d, 0x0a, 0x1a, 0x0a}, forensic.CategoryPNG},
		{"zip", []byte("PK\x03\x04rest"), forensic.CategoryZip},
		{"empty zip", []byte("PK\x05\x06"), forensic.CategoryZip},
		{"jpeg", []byte{0xff, 0xd8, 0xff, 0xe0}, forensic.CategoryJPEG},
		{"gif89", []byte("GIF89a"), forensic.CategoryGIF},
		{"pe", []byte("MZ\x90\x00"), forensic.CategoryPE},
		{"elf", []byte{0x7f, 'E', 'L', 'F', 0x02}, forensic.CategoryELF},
		{"sqlite", []byte("SQLite format 3\x00"), forensic.CategorySQLite},
		{"ole2", []byte{0xd0, 0xcf, 0x11, 0xe0, 0xa1, 0xb1, 0x1a, 0xe1}, forensic.CategoryLegacyOffice},
		{"gzip", []byte{0x1f, 0x8b, 0x08}, forensic.CategoryGzip},
		{"unknown", []byte("hello world"), forensic.CategoryUnknown},
		{"empty", nil, forensic.CategoryUnknown},
		{"truncated sqlite", []byte("SQLite for"), forensic.CategoryUnknown},
	}

	for _, test := range testCases {
		t.Run(test.name, func(t *testing.T) {
			if actual := catalog.Identify(test.header); actual != test.expected {
				t.Errorf("Identify(%q): expected %s, got %s", test.header, test.expected, actual)
			}
		})
	}
}

func TestMatchesReturnsAllCategories(t *testing.T) {
	catalog := DefaultCatalog()

	matches := catalog.Matches([]byte("MZ\x90\x00\x03"))
	expected := []forensic.Category{forensic.CategoryPE}
	if !reflect.DeepEqual(matches, expected) {
		t.Errorf("expected %v, got %v", expected, matches)
	}
}

func TestPrefixFor(t *testing.T) {
	catalog := DefaultCatalog()
	if prefix := catalog.PrefixFor(forensic.CategoryPDF); string(prefix) != "%PDF" {
		t.Errorf("expected %%PDF, got %q", prefix)
	}
	if prefix := catalog.PrefixFor(forensic.CategoryUnknown); prefix != nil {
		t.Errorf("expected nil prefix for unknown, got %q", prefix)
	}
}

func TestDefaultCatalogCoversEveryCategory(t *testing.T) {
	catalog := DefaultCatalog()

	if got := len(catalog.Entries()); got != len(forensic.AllCategories) {
		t.Fatalf("catalog has %d entries, want %d", got, len(forensic.AllCategories))
	}
	for i, entry := range catalog.Entries() {
		if entry.Category != forensic.AllCategories[i] {
			t.Errorf("entry %d = %v, want %v", i, entry.Category, forensic.AllCategories[i])
		}
		if len(entry.Prefixes) == 0 {
			t.Errorf("category %v has no signature prefixes", entry.Category)
		}
	}
}
