// Package update checks GitHub releases for newer builds and replaces
// the running binary in place.
package update

import (
	"fmt"
	"strconv"
	"strings"
)

const (
	Repo       = "dictoapp/dicto"
	BinaryName = "dicto"
)

// Release is a published build newer than the running one.
type Release struct {
	Version     string
	AssetURL    string
	ChecksumURL string
}

type semver struct {
	major, minor, patch int
}

func parseSemver(v string) (semver, error) {
	v = strings.TrimPrefix(v, "v")
	// Drop prerelease and build metadata suffixes.
	if i := strings.IndexAny(v, "-+"); i >= 0 {
		v = v[:i]
	}
	parts := strings.Split(v, ".")
	if len(parts) != 3 {
		return semver{}, fmt.Errorf("not a semver: %q", v)
	}
	var s semver
	for i, dst := range []*int{&s.major, &s.minor, &s.patch} {
		n, err := strconv.Atoi(parts[i])
		if err != nil {
			return semver{}, fmt.Errorf("not a semver: %q", v)
		}
		*dst = n
	}
	return s, nil
}

func (s semver) newerThan(o semver) bool {
	switch {
	case s.major != o.major:
		return s.major > o.major
	case s.minor != o.minor:
		return s.minor > o.minor
	default:
		return s.patch > o.patch
	}
}

// NewerThan reports whether the release is strictly newer than the
// running version. Unparseable versions (dev builds) never update.
func (r Release) NewerThan(current string) bool {
	cur, err := parseSemver(current)
	if err != nil {
		return false
	}
	rel, err := parseSemver(r.Version)
	if err != nil {
		return false
	}
	return rel.newerThan(cur)
}
