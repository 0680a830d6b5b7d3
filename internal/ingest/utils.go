package ingest

import (
	"path/filepath"
	"strings"

	"github.com/joseph-ayodele/recibos-extractor/constants"
)

// AllowedExt checks if a file extension is in exts, or in the default pdf/txt set when exts is nil.
func AllowedExt(ext string, exts map[string]struct{}) bool {
	if exts == nil {
		exts = constants.AllowedExtensions
	}
	_, ok := exts[constants.NormalizeExt(ext)]
	return ok
}

// IsHidden checks if a file or directory is hidden (starts with '.').
func IsHidden(path string) bool {
	base := filepath.Base(path)
	return strings.HasPrefix(base, ".") && base != "." && base != ".."
}

// ExtSet builds a lookup set from a list such as "pdf,.TXT".
func ExtSet(exts []string) map[string]struct{} {
	set := map[string]struct{}{}
	for _, e := range exts {
		if e = constants.NormalizeExt(strings.TrimSpace(e)); e != "" {
			set[e] = struct{}{}
		}
	}
	if len(set) == 0 {
		return nil
	}
	return set
}
