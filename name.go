package bundle

import (
	"fmt"
	"strings"
)

// ArchiveSuffix is the extension of every bundle archive.
const ArchiveSuffix = ".tar.gz"

// ArchiveName renders the canonical archive name for an identifier and
// version: <identifier>-<major>.<minor>.<patch>.tar.gz.
func ArchiveName(identifier string, v Version) string {
	return fmt.Sprintf("%s-%s%s", identifier, v, ArchiveSuffix)
}

// ParseArchiveName splits a bundle archive name into its identifier and
// version. The name uniquely determines both.
func ParseArchiveName(name string) (string, Version, error) {
	base, ok := strings.CutSuffix(name, ArchiveSuffix)
	if !ok {
		return "", Version{}, fmt.Errorf("not a bundle archive name: %q", name)
	}
	idx := strings.LastIndex(base, "-")
	if idx <= 0 {
		return "", Version{}, fmt.Errorf("not a bundle archive name: %q", name)
	}
	v, err := ParseVersion(base[idx+1:])
	if err != nil {
		return "", Version{}, fmt.Errorf("not a bundle archive name: %q: %w", name, err)
	}
	return base[:idx], v, nil
}
