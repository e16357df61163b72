package imagefile

import (
	"context"
	"encoding/binary"
	"testing"

	"github.com/exfilwatch/file-analysis/pkg/api/forensic"
)

type stubEnricher struct {
	exif map[string]string
}

func (s *stubEnricher) Exif(_ context.Context, _ string) map[string]string {
	return s.exif
}

// pngHeader builds a valid signature plus IHDR chunk prefix.
func pngHeader(width, height uint32, bitDepth, colorType byte) []byte {
	data := []byte{0x89, 'P', 'N', 'G', 0x0d, 0x0a, 0x1a, 0x0a}
	data = append(data, 0, 0, 0, 13)
	data = append(data, []byte("IHDR")...)
	data = binary.BigEndian.AppendUint32(data, width)
	data = binary.BigEndian.AppendUint32(data, height)
	return append(data, bitDepth, colorType)
}

func TestAnalyzePNGDimensions(t *testing.T) {
	data := pngHeader(1920, 1080, 8, 6)

	findings := NewAnalyzer(nil, 0).Analyze(context.Background(), "shot.png", forensic.CategoryPNG, data, int64(len(data)))

	if findings.Dimensions != "1920x1080" {
		t.Errorf("Dimensions = %q, want 1920x1080", findings.Dimensions)
	}
	if findings.BitDepth != 8 {
		t.Errorf("BitDepth = %d, want 8", findings.BitDepth)
	}
	if findings.ColorType != "rgba" {
		t.Errorf("ColorType = %q, want rgba", findings.ColorType)
	}
}

func TestAnalyzeTruncatedPNG(t *testing.T) {
	data := []byte{0x89, 'P', 'N', 'G'}

	findings := NewAnalyzer(nil, 0).Analyze(context.Background(), "stub.png", forensic.CategoryPNG, data, 4)

	if findings.Dimensions != "" {
		t.Errorf("Dimensions = %q, want empty for truncated header", findings.Dimensions)
	}
}

func TestAnalyzeJPEGDimensions(t *testing.T) {
	data := []byte{0xff, 0xd8, 0xff, 0xe0, 0x00, 0x10}
	data = append(data, make([]byte, 32)...)
	// SOF0: marker, length, precision, height, width.
	sof := []byte{0xff, 0xc0, 0x00, 0x11, 0x08}
	sof = binary.BigEndian.AppendUint16(sof, 480)
	sof = binary.BigEndian.AppendUint16(sof, 640)
	data = append(data, sof...)

	findings := NewAnalyzer(nil, 0).Analyze(context.Background(), "photo.jpg", forensic.CategoryJPEG, data, int64(len(data)))

	if findings.Dimensions != "640x480" {
		t.Errorf("Dimensions = %q, want 640x480", findings.Dimensions)
	}
}

func TestAnalyzeGPSExtraction(t *testing.T) {
	enricher := &stubEnricher{exif: map[string]string{
		"GPSLatitude":  "48.8584",
		"GPSLongitude": "2.2945",
		"Software":     "Adobe Photoshop",
	}}

	findings := NewAnalyzer(enricher, 0).Analyze(context.Background(), "trip.jpg", forensic.CategoryJPEG, nil, 100)

	if findings.GPS == nil {
		t.Fatalf("GPS = nil, want coordinates")
	}
	if findings.GPS.Latitude != "48.8584" || findings.GPS.Longitude != "2.2945" {
		t.Errorf("GPS = %+v", findings.GPS)
	}
	if findings.Software != "Adobe Photoshop" {
		t.Errorf("Software = %q", findings.Software)
	}
	if findings.RiskPoints != gpsPoints {
		t.Errorf("RiskPoints = %v, want %v", findings.RiskPoints, gpsPoints)
	}
}

func TestAnalyzeStegoRisk(t *testing.T) {
	tests := []struct {
		name string
		size int64
		want bool
	}{
		{"small image", 100 << 10, false},
		{"oversized image", 8 << 20, true},
	}
	for _, test := range tests {
		t.Run(test.name, func(t *testing.T) {
			findings := NewAnalyzer(nil, 5<<20).Analyze(context.Background(), "img.png", forensic.CategoryPNG, pngHeader(10, 10, 8, 2), test.size)
			if findings.StegoRisk != test.want {
				t.Errorf("StegoRisk = %v, want %v", findings.StegoRisk, test.want)
			}
		})
	}
}
