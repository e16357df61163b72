// Package imagefile inspects raster images. Dimensions are read from
// fixed header offsets rather than a full decode; metadata comes from an
// optional exiftool enrichment.
package imagefile

import (
	"context"
	"encoding/binary"
	"fmt"

	"github.com/exfilwatch/file-analysis/pkg/api/forensic"
)

const (
	gpsPoints   = 20
	stegoPoints = 15
)

// PNG IHDR layout: the 8-byte signature, a 4-byte chunk length and the
// 4-byte "IHDR" tag precede width and height.
const (
	pngDimsOffset     = 16
	pngBitDepthOffset = 24
	pngColorOffset    = 25
)

var pngColorTypes = map[byte]string{
	0: "grayscale",
	2: "rgb",
	3: "palette",
	4: "grayscale-alpha",
	6: "rgba",
}

// Enricher supplies image metadata from an external tool.
type Enricher interface {
	Exif(ctx context.Context, path string) map[string]string
}

type Analyzer struct {
	enricher  Enricher
	stegoSize int64
}

// NewAnalyzer builds an image analyzer. Images larger than stegoSize bytes
// are flagged as potential steganography carriers; enricher may be nil.
func NewAnalyzer(enricher Enricher, stegoSize int64) *Analyzer {
	return &Analyzer{enricher: enricher, stegoSize: stegoSize}
}

func (a *Analyzer) Analyze(ctx context.Context, path string, category forensic.Category, data []byte, size int64) *forensic.ImageFindings {
	findings := &forensic.ImageFindings{
		Finding: forensic.Finding{Category: "image"},
		Format:  string(category),
	}

	switch category {
	case forensic.CategoryPNG:
		parsePNG(data, findings)
	case forensic.CategoryJPEG:
		parseJPEG(data, findings)
	}

	if a.stegoSize > 0 && size > a.stegoSize {
		findings.StegoRisk = true
		findings.Flag(fmt.Sprintf("unusually large image (%d bytes), possible steganography carrier", size), stegoPoints)
	}

	if a.enricher != nil {
		a.enrich(ctx, path, findings)
	}

	return findings
}

func parsePNG(data []byte, findings *forensic.ImageFindings) {
	if len(data) < pngColorOffset+1 {
		return
	}
	width := binary.BigEndian.Uint32(data[pngDimsOffset:])
	height := binary.BigEndian.Uint32(data[pngDimsOffset+4:])
	findings.Dimensions = fmt.Sprintf("%dx%d", width, height)
	findings.BitDepth = int(data[pngBitDepthOffset])
	findings.ColorType = pngColorTypes[data[pngColorOffset]]
}

// parseJPEG walks the bounded header prefix for the SOF0 marker, which
// carries sample precision then height and width.
func parseJPEG(data []byte, findings *forensic.ImageFindings) {
	for i := 0; i+8 < len(data); i++ {
		if data[i] != 0xff || data[i+1] != 0xc0 {
			continue
		}
		height := binary.BigEndian.Uint16(data[i+5:])
		width := binary.BigEndian.Uint16(data[i+7:])
		findings.Dimensions = fmt.Sprintf("%dx%d", width, height)
		findings.BitDepth = int(data[i+4])
		return
	}
}

func (a *Analyzer) enrich(ctx context.Context, path string, findings *forensic.ImageFindings) {
	exif := a.enricher.Exif(ctx, path)
	if exif == nil {
		return
	}
	findings.Exif = exif

	lat, hasLat := exif["GPSLatitude"]
	lon, hasLon := exif["GPSLongitude"]
	if hasLat && hasLon {
		findings.GPS = &forensic.GPSLocation{Latitude: lat, Longitude: lon}
		findings.Flag("GPS coordinates embedded in image metadata", gpsPoints)
	}
	findings.Software = exif["Software"]
}
