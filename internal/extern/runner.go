// Package extern invokes optional external tools (file, pdfinfo, exiftool,
// strings) under a fixed timeout. Tool absence, failure or timeout is
// advisory only: callers receive empty results, never errors, so an
// analysis stays complete when no tools are installed.
package extern

import (
	"context"
	"encoding/json"
	"fmt"
	"log/slog"
	"os/exec"
	"strconv"
	"strings"
	"time"
)

// DefaultTimeout bounds each tool invocation when no explicit timeout is
// configured.
const DefaultTimeout = 10 * time.Second

// Runner executes external enrichment tools. The zero value is not
// usable; construct with NewRunner.
type Runner struct {
	timeout time.Duration
}

func NewRunner(timeout time.Duration) *Runner {
	if timeout <= 0 {
		timeout = DefaultTimeout
	}
	return &Runner{timeout: timeout}
}

// run executes one tool and returns its stdout. ok is false when the tool
// is missing, fails or times out; the failure is logged at debug level
// and otherwise ignored.
func (r *Runner) run(ctx context.Context, name string, args ...string) (output []byte, ok bool) {
	ctx, cancel := context.WithTimeout(ctx, r.timeout)
	defer cancel()

	cmd := exec.CommandContext(ctx, name, args...)
	output, err := cmd.Output()
	if err != nil {
		slog.DebugContext(ctx, "external tool unavailable", "tool", name, "error", err)
		return nil, false
	}
	return output, true
}

// FileDescription returns the output of `file --brief` for path, or ""
// when the file command is unavailable.
func (r *Runner) FileDescription(ctx context.Context, path string) string {
	output, ok := r.run(ctx, "file", "--brief", path)
	if !ok {
		return ""
	}
	return strings.TrimSpace(string(output))
}

// PDFInfo returns pdfinfo's key/value output for path, or nil when
// pdfinfo is unavailable.
func (r *Runner) PDFInfo(ctx context.Context, path string) map[string]string {
	output, ok := r.run(ctx, "pdfinfo", path)
	if !ok {
		return nil
	}

	info := map[string]string{}
	for _, line := range strings.Split(string(output), "\n") {
		key, value, found := strings.Cut(line, ":")
		if !found {
			continue
		}
		info[strings.TrimSpace(key)] = strings.TrimSpace(value)
	}
	return info
}

// Exif returns exiftool's flattened key/value output for path, or nil
// when exiftool is unavailable or its output cannot be parsed.
func (r *Runner) Exif(ctx context.Context, path string) map[string]string {
	output, ok := r.run(ctx, "exiftool", "-json", path)
	if !ok {
		return nil
	}

	// exiftool -json emits an array with one object per input file.
	var records []map[string]any
	if err := json.Unmarshal(output, &records); err != nil || len(records) == 0 {
		slog.DebugContext(ctx, "unparseable exiftool output", "error", err)
		return nil
	}

	exif := make(map[string]string, len(records[0]))
	for key, value := range records[0] {
		exif[key] = fmt.Sprint(value)
	}
	return exif
}

// Strings returns printable strings of at least minLen bytes extracted
// from the binary at path, or nil when strings(1) is unavailable.
func (r *Runner) Strings(ctx context.Context, path string, minLen int) []string {
	output, ok := r.run(ctx, "strings", "-n", strconv.Itoa(minLen), path)
	if !ok {
		return nil
	}

	var result []string
	for _, line := range strings.Split(string(output), "\n") {
		if line != "" {
			result = append(result, line)
		}
	}
	return result
}
