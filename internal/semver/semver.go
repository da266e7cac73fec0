package semver

import (
	"regexp"
	"strconv"
	"strings"
)

// tripleRe matches the first dotted numeric triple anywhere in a version
// string, so range prefixes ("^4.9.5", ">=16.8.0 <19") and build metadata
// suffixes ("4.9.5+sha.abc") are tolerated.
var tripleRe = regexp.MustCompile(`\d+\.\d+\.\d+`)

// Complies reports whether the discovered version string satisfies the
// minimum required version. The lower bound is inclusive. Strings carrying
// no numeric triple at all ("latest", "workspace:*") never comply.
func Complies(discovered, minimum string) bool {
	found := tripleRe.FindString(discovered)
	if found == "" {
		return false
	}
	have, ok := parseTriple(found)
	if !ok {
		return false
	}
	want, ok := parseTriple(tripleRe.FindString(minimum))
	if !ok {
		return false
	}
	for i := range 3 {
		if have[i] != want[i] {
			return have[i] > want[i]
		}
	}
	return true
}

func parseTriple(s string) ([3]uint64, bool) {
	var out [3]uint64
	parts := strings.Split(s, ".")
	if len(parts) != 3 {
		return out, false
	}
	for i, part := range parts {
		n, err := strconv.ParseUint(part, 10, 64)
		if err != nil {
			return out, false
		}
		out[i] = n
	}
	return out, true
}
