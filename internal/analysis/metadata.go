package analysis

import (
	"context"
	"fmt"
	"log/slog"
	"os"
	"syscall"
	"time"

	"github.com/exfilwatch/file-analysis/internal/utils"
	"github.com/exfilwatch/file-analysis/pkg/api/forensic"
)

// collectMetadata gathers filesystem metadata for the analyzed file. A
// stat failure is logged and leaves result.Metadata nil; the analysis
// itself continues with size-dependent checks disabled.
func (e *Engine) collectMetadata(ctx context.Context, path string, depth forensic.Depth, result *forensic.AnalysisResult) {
	info, err := os.Stat(path)
	if err != nil {
		slog.WarnContext(ctx, "Metadata collection failed", "error", err)
		return
	}

	metadata := &forensic.FileMetadata{
		Size:        info.Size(),
		SizeHuman:   utils.HumanSize(info.Size()),
		Modified:    info.ModTime().UTC(),
		Accessed:    accessTime(info).UTC(),
		Permissions: fmt.Sprintf("%04o", info.Mode().Perm()),
	}

	if depth.AtLeast(forensic.DepthStandard) {
		if digest, err := utils.HashFile(path); err == nil {
			metadata.SHA256 = digest
		} else {
			slog.WarnContext(ctx, "Hashing failed", "error", err)
		}
	}
	if depth.AtLeast(forensic.DepthDeep) {
		metadata.FileCommand = e.runner.FileDescription(ctx, path)
	}

	result.Metadata = metadata
}

// accessTime extracts atime where the platform stat provides it, falling
// back to the modification time.
func accessTime(info os.FileInfo) time.Time {
	if stat, ok := info.Sys().(*syscall.Stat_t); ok {
		return time.Unix(int64(stat.Atim.Sec), int64(stat.Atim.Nsec))
	}
	return info.ModTime()
}
