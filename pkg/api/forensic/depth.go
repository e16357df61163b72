package forensic

import (
	"errors"
	"fmt"
	"strings"
)

// Depth controls how much work the engine performs on a single file.
//
// It implements encoding.TextUnmarshaler and encoding.TextMarshaler so it
// can be used with flag.TextVar.
type Depth string

const (
	// DepthSurface identifies the file type and records its signature,
	// nothing more.
	DepthSurface Depth = "SURFACE"

	// DepthStandard adds the per-format structural analyzer and the
	// content pattern scans.
	DepthStandard Depth = "STANDARD"

	// DepthDeep adds hidden-content detection and external tool
	// enrichment (file metadata, EXIF, printable strings).
	DepthDeep Depth = "DEEP"

	// DepthForensic adds time-sensitive checks (recent modification and
	// off-hours access); results at this depth depend on the wall clock.
	DepthForensic Depth = "FORENSIC"
)

// ErrUnsupportedDepth is returned when parsing a string that does not
// correspond to a defined analysis depth.
var ErrUnsupportedDepth = errors.New("analysis depth unsupported")

// AllDepths lists the supported depths in increasing order of work.
var AllDepths = []Depth{DepthSurface, DepthStandard, DepthDeep, DepthForensic}

// ParseDepth converts a string to a Depth, case-insensitively.
func ParseDepth(s string) (Depth, error) {
	for _, d := range AllDepths {
		if strings.EqualFold(s, string(d)) {
			return d, nil
		}
	}
	return "", fmt.Errorf("%w: %s", ErrUnsupportedDepth, s)
}

// AtLeast reports whether d includes all the work performed at depth other.
func (d Depth) AtLeast(other Depth) bool {
	return d.rank() >= other.rank()
}

func (d Depth) rank() int {
	for i, depth := range AllDepths {
		if d == depth {
			return i
		}
	}
	return -1
}

func (d Depth) String() string {
	return string(d)
}

// UnmarshalText implements the encoding.TextUnmarshaler interface.
func (d *Depth) UnmarshalText(text []byte) error {
	depth, err := ParseDepth(string(text))
	if err != nil {
		return err
	}
	*d = depth
	return nil
}

// MarshalText implements the encoding.TextMarshaler interface.
func (d Depth) MarshalText() ([]byte, error) {
	return []byte(d), nil
}
