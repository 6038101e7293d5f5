package cli

import (
	"fmt"
	"path/filepath"
)

// manifestSiblingPath derives Manifest.toml beside a Project.toml path,
// matching pkg/ops's own (unexported) convention.
func manifestSiblingPath(projectPath string) string {
	return filepath.Join(filepath.Dir(projectPath), "Manifest.toml")
}

// prettyCount renders "N unit" with pluralization dropped (units already
// name a plural noun like "entries").
func prettyCount(n int, unit string) string {
	return fmt.Sprintf("%d %s", n, unit)
}

// prettyBytes renders a byte count in the largest whole unit that keeps
// at least one significant digit.
func prettyBytes(n int64) string {
	const unit = 1024
	if n < unit {
		return fmt.Sprintf("%d B", n)
	}
	div, exp := int64(unit), 0
	for x := n / unit; x >= unit; x /= unit {
		div *= unit
		exp++
	}
	return fmt.Sprintf("%.1f %ciB", float64(n)/float64(div), "KMGTPE"[exp])
}
