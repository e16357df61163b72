// Package forensic defines the serializable result types produced by the
// file risk-analysis engine.
package forensic

// Category represents a file format family recognised by its magic bytes.
type Category string

const (
	CategoryUnknown Category = "unknown"

	CategoryPDF          Category = "pdf"
	CategoryZip          Category = "zip"
	CategoryRar          Category = "rar"
	CategoryGzip         Category = "gzip"
	CategoryBzip2        Category = "bzip2"
	Category7z           Category = "7z"
	CategoryPNG          Category = "png"
	CategoryJPEG         Category = "jpeg"
	CategoryGIF          Category = "gif"
	CategoryLegacyOffice Category = "office-legacy"
	CategoryPE           Category = "pe"
	CategoryELF          Category = "elf"
	CategorySQLite       Category = "sqlite"
)

// AllCategories lists every category with an associated byte signature,
// in the order signatures are tested during identification.
var AllCategories = []Category{
	CategoryPDF,
	CategoryZip,
	CategoryRar,
	CategoryGzip,
	CategoryBzip2,
	Category7z,
	CategoryPNG,
	CategoryJPEG,
	CategoryGIF,
	CategoryLegacyOffice,
	CategoryPE,
	CategoryELF,
	CategorySQLite,
}

func (c Category) String() string {
	return string(c)
}

// IsArchive reports whether files of this category are container archives
// handled by the archive analyzer.
func (c Category) IsArchive() bool {
	switch c {
	case CategoryZip, CategoryRar, CategoryGzip, CategoryBzip2, Category7z:
		return true
	default:
		return false
	}
}

// IsImage reports whether files of this category are raster images.
func (c Category) IsImage() bool {
	switch c {
	case CategoryPNG, CategoryJPEG, CategoryGIF:
		return true
	default:
		return false
	}
}

// IsExecutable reports whether files of this category are native executables.
func (c Category) IsExecutable() bool {
	return c == CategoryPE || c == CategoryELF
}
