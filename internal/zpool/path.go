package zpool

import (
	"os/exec"
	"path/filepath"
	"strings"

	"github.com/cockroachdb/errors"
)

// SystemDirs are appended to PATH before looking up the zpool binary;
// monitoring agents often run with a minimal PATH that lacks them.
var SystemDirs = []string{"/sbin", "/usr/sbin", "/usr/local/sbin", "/usr/local/bin"}

// AugmentPath returns path with every SystemDirs entry it lacks appended.
func AugmentPath(path string) string {
	var dirs []string
	if path != "" {
		dirs = filepath.SplitList(path)
	}
	seen := make(map[string]bool, len(dirs))
	for _, d := range dirs {
		seen[d] = true
	}
	for _, d := range SystemDirs {
		if !seen[d] {
			dirs = append(dirs, d)
			seen[d] = true
		}
	}
	return strings.Join(dirs, string(filepath.ListSeparator))
}

// LookupBinary resolves name on the current PATH.
func LookupBinary(name string) (string, error) {
	if name == "" {
		return "", errors.Wrap(ErrToolUnavailable, "zpool")
	}
	path, err := exec.LookPath(name)
	if err != nil {
		return "", errors.WithHint(
			errors.Wrapf(ErrToolUnavailable, "%s", name),
			"install the ZFS userland utilities or pass --zpool with the full path",
		)
	}
	return path, nil
}
