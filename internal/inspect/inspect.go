// Package inspect provides the low-level byte primitives shared by all
// format analyzers: bounded header reads, Shannon entropy and bounded
// sliding-window signature scanning.
package inspect

import (
	"errors"
	"fmt"
	"io"
	"math"
	"os"

	"github.com/exfilwatch/file-analysis/internal/signature"
	"github.com/exfilwatch/file-analysis/pkg/api/forensic"
)

// DefaultScanWindow bounds sliding signature scans. Offsets beyond the
// window are not claimed to be scanned; the cap is a latency bound.
const DefaultScanWindow = 10000

// ReadHeader reads up to n bytes from the start of path. Fewer bytes are
// returned without error when the file is shorter than n.
func ReadHeader(path string, n int) ([]byte, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("open %s: %w", path, err)
	}
	defer f.Close()

	header := make([]byte, n)
	read, err := io.ReadFull(f, header)
	if err != nil && !errors.Is(err, io.EOF) && !errors.Is(err, io.ErrUnexpectedEOF) {
		return nil, fmt.Errorf("read header of %s: %w", path, err)
	}
	return header[:read], nil
}

// ReadPrefix reads up to max bytes from the start of path. It is
// ReadHeader under a name that signals larger, content-scale windows.
func ReadPrefix(path string, max int64) ([]byte, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("open %s: %w", path, err)
	}
	defer f.Close()

	data, err := io.ReadAll(io.LimitReader(f, max))
	if err != nil {
		return nil, fmt.Errorf("read prefix of %s: %w", path, err)
	}
	return data, nil
}

// ReadTail reads up to n bytes from the end of path. The whole file is
// returned when it is shorter than n.
func ReadTail(path string, n int) ([]byte, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("open %s: %w", path, err)
	}
	defer f.Close()

	info, err := f.Stat()
	if err != nil {
		return nil, fmt.Errorf("stat %s: %w", path, err)
	}
	if size := info.Size(); int64(n) > size {
		n = int(size)
	}
	if _, err := f.Seek(-int64(n), io.SeekEnd); err != nil {
		return nil, fmt.Errorf("seek in %s: %w", path, err)
	}
	tail := make([]byte, n)
	if _, err := io.ReadFull(f, tail); err != nil {
		return nil, fmt.Errorf("read tail of %s: %w", path, err)
	}
	return tail, nil
}

// Entropy computes the Shannon entropy of data over the byte alphabet,
// in bits per byte. The result is within [0, 8]; empty input yields 0.
func Entropy(data []byte) float64 {
	if len(data) == 0 {
		return 0
	}

	var counts [256]int
	for _, b := range data {
		counts[b]++
	}

	entropy := 0.0
	total := float64(len(data))
	for _, count := range counts {
		if count == 0 {
			continue
		}
		p := float64(count) / total
		entropy -= p * math.Log2(p)
	}
	return entropy
}

// ChiSquareUniform computes the chi-square statistic of the byte
// distribution of data against the uniform distribution over 256 bins.
// Random (encrypted/compressed) data yields values near 255; structured
// data yields much larger values. Empty input yields 0.
func ChiSquareUniform(data []byte) float64 {
	if len(data) == 0 {
		return 0
	}

	var counts [256]int
	for _, b := range data {
		counts[b]++
	}

	expected := float64(len(data)) / 256.0
	chi := 0.0
	for _, count := range counts {
		diff := float64(count) - expected
		chi += diff * diff / expected
	}
	return chi
}

// Hit records one signature match found by SlidingScan.
type Hit struct {
	Category forensic.Category
	Offset   int
}

// SlidingScan tests every catalog signature at every offset within the
// first maxOffset bytes of data and returns all matches in offset order.
// A maxOffset <= 0 selects DefaultScanWindow.
func SlidingScan(data []byte, catalog *signature.Catalog, maxOffset int) []Hit {
	if maxOffset <= 0 {
		maxOffset = DefaultScanWindow
	}
	if maxOffset > len(data) {
		maxOffset = len(data)
	}

	var hits []Hit
	for offset := 0; offset < maxOffset; offset++ {
		window := data[offset:]
		for _, entry := range catalog.Entries() {
			for _, prefix := range entry.Prefixes {
				if len(prefix) <= len(window) && matchesAt(window, prefix) {
					hits = append(hits, Hit{Category: entry.Category, Offset: offset})
					break
				}
			}
		}
	}
	return hits
}

func matchesAt(window, prefix []byte) bool {
	for i, b := range prefix {
		if window[i] != b {
			return false
		}
	}
	return true
}
