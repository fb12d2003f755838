package bundle

import (
	"fmt"
	"strconv"
	"strings"
)

// Version is a semantic version with major, minor, and patch components.
type Version struct {
	Major uint64
	Minor uint64
	Patch uint64
}

// BumpKind selects which component a bump operation increments.
type BumpKind uint8

const (
	BumpPatch BumpKind = iota
	BumpMinor
	BumpMajor
)

// ParseBumpKind maps an operator-supplied keyword to a BumpKind.
func ParseBumpKind(s string) (BumpKind, error) {
	switch s {
	case "patch":
		return BumpPatch, nil
	case "minor":
		return BumpMinor, nil
	case "major":
		return BumpMajor, nil
	default:
		return 0, fmt.Errorf("unknown bump kind %q (want patch, minor, or major)", s)
	}
}

// ParseVersion parses a version string.
//
// The input must be exactly three dot-separated non-negative integers with
// no leading zeros beyond "0" itself. Anything else returns
// ErrInvalidVersion.
func ParseVersion(s string) (Version, error) {
	parts := strings.Split(s, ".")
	if len(parts) != 3 {
		return Version{}, fmt.Errorf("%w: %q", ErrInvalidVersion, s)
	}

	var nums [3]uint64
	for i, part := range parts {
		n, err := parseComponent(part)
		if err != nil {
			return Version{}, fmt.Errorf("%w: %q", ErrInvalidVersion, s)
		}
		nums[i] = n
	}

	return Version{Major: nums[0], Minor: nums[1], Patch: nums[2]}, nil
}

// parseComponent parses a single version component, rejecting empty strings,
// signs, and leading zeros.
func parseComponent(s string) (uint64, error) {
	if s == "" {
		return 0, fmt.Errorf("empty component")
	}
	if len(s) > 1 && s[0] == '0' {
		return 0, fmt.Errorf("leading zero in %q", s)
	}
	for _, c := range s {
		if c < '0' || c > '9' {
			return 0, fmt.Errorf("non-digit in %q", s)
		}
	}
	return strconv.ParseUint(s, 10, 64)
}

// String renders the version as "X.Y.Z".
func (v Version) String() string {
	return fmt.Sprintf("%d.%d.%d", v.Major, v.Minor, v.Patch)
}

// Bump returns the version after applying the given bump kind.
func (v Version) Bump(kind BumpKind) Version {
	switch kind {
	case BumpMajor:
		return Version{Major: v.Major + 1}
	case BumpMinor:
		return Version{Major: v.Major, Minor: v.Minor + 1}
	default:
		return Version{Major: v.Major, Minor: v.Minor, Patch: v.Patch + 1}
	}
}

// Compare returns -1, 0, or 1 depending on whether v is ordered before,
// equal to, or after other.
func (v Version) Compare(other Version) int {
	switch {
	case v.Major != other.Major:
		return compareUint(v.Major, other.Major)
	case v.Minor != other.Minor:
		return compareUint(v.Minor, other.Minor)
	default:
		return compareUint(v.Patch, other.Patch)
	}
}

func compareUint(a, b uint64) int {
	switch {
	case a < b:
		return -1
	case a > b:
		return 1
	default:
		return 0
	}
}
