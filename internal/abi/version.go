package abi

import (
	"fmt"
	"regexp"

	goversion "github.com/hashicorp/go-version"
)

// versionPattern extracts a major.minor pair from an arbitrary runtime
// version string, e.g. "glibc 2.31" or "ldd (GNU libc) 2.17".
var versionPattern = regexp.MustCompile(`(\d+)\.(\d+)`)

// Version is a parsed two-component C-runtime version. The zero value is not
// a valid version; use Parse or MustParse.
type Version struct {
	v *goversion.Version
}

// Parse parses a "major.minor" string into a Version. Anything that is not
// exactly two numeric components is rejected.
func Parse(s string) (Version, error) {
	if !versionPattern.MatchString(s) || versionPattern.FindString(s) != s {
		return Version{}, fmt.Errorf("malformed ABI version %q: expected \"major.minor\"", s)
	}
	v, err := goversion.NewVersion(s)
	if err != nil {
		return Version{}, fmt.Errorf("malformed ABI version %q: %w", s, err)
	}
	return Version{v: v}, nil
}

// MustParse is Parse for statically known inputs; it panics on error.
func MustParse(s string) Version {
	v, err := Parse(s)
	if err != nil {
		panic(err)
	}
	return v
}

// Extract scans a free-form runtime banner (getconf or ldd output) for the
// first major.minor pair and parses it.
func Extract(banner string) (Version, error) {
	m := versionPattern.FindString(banner)
	if m == "" {
		return Version{}, fmt.Errorf("no ABI version found in runtime banner %q", banner)
	}
	return Parse(m)
}

// IsZero reports whether the version is the unusable zero value.
func (v Version) IsZero() bool {
	return v.v == nil
}

// Major returns the major component.
func (v Version) Major() int {
	return v.v.Segments()[0]
}

// Minor returns the minor component.
func (v Version) Minor() int {
	return v.v.Segments()[1]
}

// Compare returns -1, 0 or 1. Majors are compared first; minors only break
// major ties.
func (v Version) Compare(other Version) int {
	return v.v.Compare(other.v)
}

// InRange reports whether v lies within the inclusive [min, max] interval.
func (v Version) InRange(min, max Version) bool {
	return v.Compare(min) >= 0 && v.Compare(max) <= 0
}

// String renders the version back as "major.minor".
func (v Version) String() string {
	if v.v == nil {
		return "<unset>"
	}
	return fmt.Sprintf("%d.%d", v.Major(), v.Minor())
}
