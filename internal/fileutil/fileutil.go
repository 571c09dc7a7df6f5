// Package fileutil holds the small path predicates shared by the
// configuration layer.
package fileutil

import (
	"os"
	"strings"
)

// IsFilePath reports whether s names a concrete file location rather
// than a bare config name. Anything carrying a path separator, either
// flavor, counts as a path; "site" or "site.yaml" does not.
func IsFilePath(s string) bool {
	return strings.ContainsAny(s, `/\`)
}

// FileExists reports whether path exists and is not a directory.
func FileExists(path string) bool {
	info, err := os.Stat(path)
	return err == nil && !info.IsDir()
}
