// Package analysis orchestrates a single-file analysis run: identify the
// file, dispatch the per-format analyzer, run the cross-cutting scans and
// derive the final assessment.
//
// A run only fails outright when the file cannot be opened. Individual
// detector failures, including panics, are recorded on the corresponding
// finding and the run continues.
package analysis

import (
	"context"
	"encoding/hex"
	"fmt"
	"log/slog"
	"path/filepath"
	"runtime/debug"
	"strings"
	"time"

	"github.com/google/uuid"

	"github.com/exfilwatch/file-analysis/internal/config"
	"github.com/exfilwatch/file-analysis/internal/extern"
	"github.com/exfilwatch/file-analysis/internal/formats/archive"
	"github.com/exfilwatch/file-analysis/internal/formats/database"
	"github.com/exfilwatch/file-analysis/internal/formats/executable"
	"github.com/exfilwatch/file-analysis/internal/formats/imagefile"
	"github.com/exfilwatch/file-analysis/internal/formats/office"
	"github.com/exfilwatch/file-analysis/internal/formats/pdf"
	"github.com/exfilwatch/file-analysis/internal/formats/textfile"
	"github.com/exfilwatch/file-analysis/internal/hidden"
	"github.com/exfilwatch/file-analysis/internal/inspect"
	"github.com/exfilwatch/file-analysis/internal/log"
	"github.com/exfilwatch/file-analysis/internal/patterns"
	"github.com/exfilwatch/file-analysis/internal/risk"
	"github.com/exfilwatch/file-analysis/internal/signature"
	"github.com/exfilwatch/file-analysis/pkg/api/forensic"
)

// officeExtensions routes ZIP containers to the Office analyzer instead of
// the archive analyzer.
var officeExtensions = map[string]bool{
	".docx": true, ".docm": true,
	".xlsx": true, ".xlsm": true,
	".pptx": true, ".pptm": true,
	".odt": true, ".ods": true, ".odp": true,
}

// Engine runs analyses. It is immutable after construction and safe for
// concurrent use.
type Engine struct {
	cfg     *config.Config
	catalog *signature.Catalog
	runner  *extern.Runner
	scanner *patterns.Scanner
	hidden  *hidden.Detector
	scorer  *risk.Scorer

	archive  *archive.Analyzer
	database *database.Analyzer
	office   *office.Analyzer
	text     *textfile.Analyzer

	// now is the clock for temporal checks; a fixed clock keeps tests
	// deterministic.
	now func() time.Time
}

func NewEngine(cfg *config.Config) *Engine {
	catalog := signature.DefaultCatalog()
	return &Engine{
		cfg:      cfg,
		catalog:  catalog,
		runner:   extern.NewRunner(cfg.ToolTimeout),
		scanner:  patterns.NewScanner(cfg, catalog),
		hidden:   hidden.NewDetector(catalog, cfg.ScanWindow),
		scorer:   risk.NewScorer(cfg.SensitiveScoreThreshold),
		archive:  archive.NewAnalyzer(cfg),
		database: database.NewAnalyzer(cfg.SensitiveTableNames),
		office:   office.NewAnalyzer(),
		text:     textfile.NewAnalyzer(),
		now:      time.Now,
	}
}

// Analyze runs a full analysis of the file at path, performing the work
// selected by depth. The returned result always carries an ID and a
// timestamp; its Error field is set only when the file itself could not
// be read.
func (e *Engine) Analyze(ctx context.Context, path string, depth forensic.Depth) *forensic.AnalysisResult {
	result := &forensic.AnalysisResult{
		ID:        uuid.NewString(),
		Path:      path,
		Depth:     depth,
		CreatedAt: e.now().UTC(),
	}
	ctx = logContext(ctx, result)

	e.logStage(ctx, StatusIdentifying)
	header, err := inspect.ReadHeader(path, e.cfg.HeaderBytes)
	if err != nil {
		result.Error = err.Error()
		result.RiskLevel = forensic.RiskLow
		slog.ErrorContext(ctx, "Analysis aborted", "error", err)
		return result
	}
	e.identify(path, header, result)
	e.collectMetadata(ctx, path, depth, result)

	if depth.AtLeast(forensic.DepthStandard) {
		prefix, err := inspect.ReadPrefix(path, e.cfg.ContentWindow)
		if err != nil {
			// Readable a moment ago; degrade to the surface result.
			prefix = header
		}

		e.logStage(ctx, StatusTypeDispatch)
		e.dispatch(ctx, path, depth, prefix, result)

		e.logStage(ctx, StatusCrossCutting)
		e.crossCutting(ctx, path, depth, prefix, result)
	}

	e.logStage(ctx, StatusScoring)
	e.scorer.Score(result)

	e.logStage(ctx, StatusDone)
	slog.InfoContext(ctx, "Analysis complete",
		"file_type", result.FileType,
		"summary", risk.Summary(result))
	return result
}

// identify records the file type and raw signature.
func (e *Engine) identify(path string, header []byte, result *forensic.AnalysisResult) {
	result.FileType = e.catalog.Identify(header)

	sigLen := len(header)
	if sigLen > 16 {
		sigLen = 16
	}
	result.Signature = &forensic.SignatureInfo{
		Hex:       hex.EncodeToString(header[:sigLen]),
		ASCII:     printable(header[:sigLen]),
		Matches:   e.catalog.Matches(header),
		Extension: strings.ToLower(filepath.Ext(path)),
	}
}

// dispatch runs the analyzer for the identified format family.
func (e *Engine) dispatch(ctx context.Context, path string, depth forensic.Depth, prefix []byte, result *forensic.AnalysisResult) {
	deep := depth.AtLeast(forensic.DepthDeep)
	size := fileSize(result)

	switch category := result.FileType; {
	case category == forensic.CategoryPDF:
		var enricher pdf.Enricher
		if deep {
			enricher = e.runner
		}
		e.protect(ctx, "pdf", func() {
			result.Findings.PDF = pdf.NewAnalyzer(enricher).Analyze(ctx, path, prefix)
		}, func(err error) {
			result.Findings.PDF = &forensic.PDFFindings{Finding: failed("pdf", err)}
		})

	case category == forensic.CategoryZip && officeExtensions[strings.ToLower(filepath.Ext(path))],
		category == forensic.CategoryLegacyOffice:
		e.protect(ctx, "office", func() {
			result.Findings.Office = e.office.Analyze(path, prefix)
		}, func(err error) {
			result.Findings.Office = &forensic.OfficeFindings{Finding: failed("office", err)}
		})

	case category.IsArchive():
		e.protect(ctx, "archive", func() {
			result.Findings.Archive = e.archive.Analyze(path, category, size)
		}, func(err error) {
			result.Findings.Archive = &forensic.ArchiveFindings{Finding: failed("archive", err)}
		})

	case category.IsImage():
		var enricher imagefile.Enricher
		if deep {
			enricher = e.runner
		}
		e.protect(ctx, "image", func() {
			result.Findings.Image = imagefile.NewAnalyzer(enricher, e.cfg.StegoImageSize).Analyze(ctx, path, category, prefix, size)
		}, func(err error) {
			result.Findings.Image = &forensic.ImageFindings{Finding: failed("image", err)}
		})

	case category == forensic.CategorySQLite:
		e.protect(ctx, "database", func() {
			result.Findings.Database = e.database.Analyze(ctx, path)
		}, func(err error) {
			result.Findings.Database = &forensic.DatabaseFindings{Finding: failed("database", err)}
		})

	case category.IsExecutable():
		var enricher executable.Enricher
		if deep {
			enricher = e.runner
		}
		e.protect(ctx, "executable", func() {
			result.Findings.Executable = executable.NewAnalyzer(enricher).Analyze(ctx, path, category, prefix)
		}, func(err error) {
			result.Findings.Executable = &forensic.ExecutableFindings{Finding: failed("executable", err)}
		})

	case category == forensic.CategoryUnknown && looksTextual(prefix):
		e.protect(ctx, "text", func() {
			result.Findings.Text = e.text.Analyze(path, prefix)
		}, func(err error) {
			result.Findings.Text = &forensic.TextFindings{Finding: failed("text", err)}
		})
	}
}

// crossCutting runs the format-independent scans.
func (e *Engine) crossCutting(ctx context.Context, path string, depth forensic.Depth, prefix []byte, result *forensic.AnalysisResult) {
	e.protect(ctx, "content", func() {
		result.Findings.Content = e.scanner.ScanContent(path, prefix)
	}, func(err error) {
		result.Findings.Content = &forensic.ContentFindings{Finding: failed("content", err)}
	})

	result.Findings.Filename = e.scanner.ScanFilenameSensitivity(path)
	result.Findings.Encoding = e.scanner.ScanEncoding(path, prefix)
	result.Findings.Size = e.scanner.ScanSize(path, fileSize(result))

	if depth.AtLeast(forensic.DepthDeep) {
		e.protect(ctx, "hidden_content", func() {
			// Trailing-data checks need the real end of the file, not
			// the end of the bounded prefix.
			var tail []byte
			if size := fileSize(result); size > int64(len(prefix)) {
				tail, _ = inspect.ReadTail(path, hidden.TailWindow)
			}
			result.Hidden = e.hidden.Detect(prefix, tail, fileSize(result))
		}, func(err error) {
			result.Hidden = &forensic.HiddenContent{Finding: failed("hidden_content", err)}
		})
	}

	if depth.AtLeast(forensic.DepthForensic) && result.Metadata != nil {
		result.Findings.Temporal = e.scanner.ScanTemporal(result.Metadata.Modified, result.Metadata.Accessed, e.now())
	}
}

// protect runs a detector, converting a panic into a recorded failure so
// one misbehaving detector cannot abort the run.
func (e *Engine) protect(ctx context.Context, name string, fn func(), onPanic func(error)) {
	defer func() {
		if r := recover(); r != nil {
			err := fmt.Errorf("detector panic: %v", r)
			slog.ErrorContext(ctx, "Detector panicked",
				"detector", name,
				"panic", r,
				"stack", string(debug.Stack()))
			onPanic(err)
		}
	}()
	fn()
}

// failed builds a finding that records only the detector failure.
func failed(category string, err error) forensic.Finding {
	return forensic.Finding{Category: category, Err: err.Error()}
}

func fileSize(result *forensic.AnalysisResult) int64 {
	if result.Metadata == nil {
		return 0
	}
	return result.Metadata.Size
}

// looksTextual reports whether the prefix is plausibly text: no NUL bytes
// and mostly printable or whitespace content.
func looksTextual(prefix []byte) bool {
	if len(prefix) == 0 {
		return false
	}
	printableCount := 0
	for _, b := range prefix {
		if b == 0 {
			return false
		}
		if b == '\n' || b == '\r' || b == '\t' || (b >= 0x20 && b < 0x7f) || b >= 0x80 {
			printableCount++
		}
	}
	return float64(printableCount)/float64(len(prefix)) > 0.9
}

func printable(data []byte) string {
	out := make([]byte, len(data))
	for i, b := range data {
		if b >= 0x20 && b < 0x7f {
			out[i] = b
		} else {
			out[i] = '.'
		}
	}
	return string(out)
}

func logContext(ctx context.Context, result *forensic.AnalysisResult) context.Context {
	return log.ContextWithAttrs(ctx,
		slog.String("analysis_id", result.ID),
		slog.String("path", result.Path),
		log.LabelAttr("depth", result.Depth.String()))
}

func (e *Engine) logStage(ctx context.Context, status Status) {
	slog.DebugContext(ctx, "Analysis stage", "status", status.String())
}
