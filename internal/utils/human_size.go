package utils

import "fmt"

// HumanSize formats a byte count using binary units (KiB = 1024 B).
func HumanSize(sizeBytes int64) string {
	size := float64(sizeBytes)
	for _, unit := range []string{"B", "KB", "MB", "GB", "TB"} {
		if size < 1024.0 {
			return fmt.Sprintf("%.2f %s", size, unit)
		}
		size /= 1024.0
	}
	return fmt.Sprintf("%.2f PB", size)
}
