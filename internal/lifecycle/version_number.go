package lifecycle

import (
	"fmt"
	"regexp"
	"strconv"
	"strings"
	"unicode"
)

var semverPattern = regexp.MustCompile(`^v?(\d+)\.(\d+)\.(\d+)$`)

// CompareVersionNumbers orders version numbers naturally: runs of digits
// compare numerically, so "1.10.0" sorts after "1.9.0".
func CompareVersionNumbers(a, b string) int {
	ca, cb := chunks(a), chunks(b)
	for i := 0; i < len(ca) && i < len(cb); i++ {
		if c := compareChunk(ca[i], cb[i]); c != 0 {
			return c
		}
	}
	switch {
	case len(ca) < len(cb):
		return -1
	case len(ca) > len(cb):
		return 1
	}
	return 0
}

func chunks(s string) []string {
	var out []string
	start := 0
	for i := 1; i <= len(s); i++ {
		if i == len(s) || unicode.IsDigit(rune(s[i])) != unicode.IsDigit(rune(s[i-1])) {
			out = append(out, s[start:i])
			start = i
		}
	}
	return out
}

func compareChunk(a, b string) int {
	aNum := unicode.IsDigit(rune(a[0]))
	bNum := unicode.IsDigit(rune(b[0]))
	if aNum && bNum {
		a = strings.TrimLeft(a, "0")
		b = strings.TrimLeft(b, "0")
		if len(a) != len(b) {
			if len(a) < len(b) {
				return -1
			}
			return 1
		}
	}
	return strings.Compare(a, b)
}

// NextVersionNumber bumps the minor part of the highest major.minor.patch
// number in existing. Without any parsable number it starts at 1.0.0.
func NextVersionNumber(existing []string) string {
	major, minor, found := 0, 0, false
	for _, v := range existing {
		m := semverPattern.FindStringSubmatch(v)
		if m == nil {
			continue
		}
		ma, _ := strconv.Atoi(m[1])
		mi, _ := strconv.Atoi(m[2])
		if !found || ma > major || (ma == major && mi > minor) {
			major, minor, found = ma, mi, true
		}
	}
	if !found {
		return "1.0.0"
	}
	return fmt.Sprintf("%d.%d.0", major, minor+1)
}
