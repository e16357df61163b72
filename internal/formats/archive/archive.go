// Package archive enumerates archive containers without extracting them.
// Entry names and declared sizes come from container metadata only, so a
// decompression bomb is detected from its ratio rather than triggered.
package archive

import (
	"archive/tar"
	"archive/zip"
	"compress/bzip2"
	"compress/gzip"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"

	"github.com/exfilwatch/file-analysis/internal/config"
	"github.com/exfilwatch/file-analysis/pkg/api/forensic"
)

const (
	maxEntriesListed = 50

	bombPoints        = 45
	encryptedPoints   = 15
	nestingPoints     = 20
	dangerousPoints   = 25
	sensitivePoints   = 15
	unreadablePoints  = 10
)

// zip local-header general-purpose bit 0 marks an encrypted entry.
const zipEncryptedFlag = 0x1

// archiveExtensions marks entries that are themselves archives, used for
// nesting-depth estimation.
var archiveExtensions = map[string]bool{
	".zip": true, ".rar": true, ".7z": true, ".gz": true,
	".tgz": true, ".bz2": true, ".tar": true, ".xz": true,
}

type Analyzer struct {
	cfg *config.Config
}

func NewAnalyzer(cfg *config.Config) *Analyzer {
	return &Analyzer{cfg: cfg}
}

// Analyze enumerates the archive at path. compressedSize is the on-disk
// size of the container.
func (a *Analyzer) Analyze(path string, category forensic.Category, compressedSize int64) *forensic.ArchiveFindings {
	findings := &forensic.ArchiveFindings{
		Finding:        forensic.Finding{Category: "archive"},
		Type:           string(category),
		CompressedSize: compressedSize,
	}

	var err error
	switch category {
	case forensic.CategoryZip:
		err = a.enumerateZip(path, findings)
	case forensic.CategoryGzip, forensic.CategoryBzip2:
		err = a.enumerateTarball(path, category, findings)
	default:
		// rar and 7z containers need format-specific parsers; surface
		// checks still apply via the shared content scan.
		findings.Indicators = append(findings.Indicators,
			fmt.Sprintf("%s container not enumerated", category))
		return findings
	}
	if err != nil {
		findings.SetError(fmt.Errorf("enumerate archive: %w", err))
		findings.Flag("unreadable or corrupt archive structure", unreadablePoints)
		return findings
	}

	a.assess(findings)
	return findings
}

func (a *Analyzer) enumerateZip(path string, findings *forensic.ArchiveFindings) error {
	reader, err := zip.OpenReader(path)
	if err != nil {
		return err
	}
	defer reader.Close()

	for _, entry := range reader.File {
		a.recordEntry(findings, entry.Name, int64(entry.UncompressedSize64), entry.FileInfo().IsDir())
		if entry.Flags&zipEncryptedFlag != 0 {
			findings.Encrypted = true
		}
	}
	return nil
}

// enumerateTarball handles .tar.gz and .tar.bz2. A compressed stream that
// is not a tar archive (plain .gz of a single file) yields zero entries
// without error.
func (a *Analyzer) enumerateTarball(path string, category forensic.Category, findings *forensic.ArchiveFindings) error {
	f, err := os.Open(path)
	if err != nil {
		return err
	}
	defer f.Close()

	var stream io.Reader
	switch category {
	case forensic.CategoryGzip:
		gz, err := gzip.NewReader(f)
		if err != nil {
			return err
		}
		defer gz.Close()
		stream = gz
	case forensic.CategoryBzip2:
		stream = bzip2.NewReader(f)
	}

	tr := tar.NewReader(stream)
	for {
		header, err := tr.Next()
		if err == io.EOF {
			return nil
		}
		if err != nil {
			if findings.EntryCount == 0 {
				// Not a tarball at all. Treat as a single-member stream.
				return nil
			}
			return err
		}
		a.recordEntry(findings, header.Name, header.Size, header.Typeflag == tar.TypeDir)
	}
}

func (a *Analyzer) recordEntry(findings *forensic.ArchiveFindings, name string, size int64, isDir bool) {
	findings.EntryCount++
	findings.TotalSize += size

	if len(findings.Entries) < maxEntriesListed {
		findings.Entries = append(findings.Entries, name)
	}
	if isDir {
		return
	}

	ext := strings.ToLower(filepath.Ext(name))
	if ext != "" {
		if findings.ExtensionCounts == nil {
			findings.ExtensionCounts = map[string]int{}
		}
		findings.ExtensionCounts[ext]++
	}

	for _, dangerous := range a.cfg.DangerousExtensions {
		if ext == dangerous {
			findings.DangerousEntries = append(findings.DangerousEntries, name)
			break
		}
	}

	lower := strings.ToLower(filepath.Base(name))
	for _, keyword := range a.cfg.SensitiveKeywords {
		if strings.Contains(lower, keyword) {
			findings.SensitiveEntries = append(findings.SensitiveEntries, name)
			break
		}
	}

	if strings.Count(name, "/") > a.cfg.ArchiveNestingDepth {
		findings.DeepNesting = true
	}
	if archiveExtensions[ext] {
		findings.Indicators = append(findings.Indicators, fmt.Sprintf("nested archive: %s", name))
	}
}

// assess converts the enumeration into risk flags.
func (a *Analyzer) assess(findings *forensic.ArchiveFindings) {
	if findings.TotalSize > 0 && findings.CompressedSize > 0 {
		findings.CompressionRatio = float64(findings.CompressedSize) / float64(findings.TotalSize)
	}

	if findings.CompressionRatio > 0 && findings.CompressionRatio < a.cfg.ArchiveBombRatio {
		findings.BombSuspect = true
		findings.Flag(fmt.Sprintf("compression ratio %.4f suggests decompression bomb", findings.CompressionRatio), bombPoints)
	}
	if findings.EntryCount > a.cfg.ArchiveBombEntries {
		findings.BombSuspect = true
		findings.Flag(fmt.Sprintf("%d entries exceeds bomb threshold", findings.EntryCount), bombPoints)
	}
	if findings.Encrypted {
		findings.Flag("encrypted entries", encryptedPoints)
	}
	if findings.DeepNesting {
		findings.Flag("deeply nested entry paths", nestingPoints)
	}
	if count := len(findings.DangerousEntries); count > 0 {
		findings.Flag(fmt.Sprintf("%d entries with dangerous extensions", count), dangerousPoints)
	}
	if count := len(findings.SensitiveEntries); count > 0 {
		findings.Flag(fmt.Sprintf("%d entries with sensitive names", count), sensitivePoints)
	}
}
