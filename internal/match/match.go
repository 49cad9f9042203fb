package match

import (
	"path/filepath"
	"strings"
	"unicode"
)

// LongestCommonSubstring returns the longest contiguous run of characters
// shared by a and b after both are lower-cased. When several runs tie, the
// one ending earliest in a wins. Empty input yields "".
func LongestCommonSubstring(a, b string) string {
	if a == "" || b == "" {
		return ""
	}
	ra := []rune(strings.ToLower(a))
	rb := []rune(strings.ToLower(b))

	// prev[j] and curr[j] hold the length of the common suffix of
	// ra[:i] and rb[:j]; two rows are enough.
	prev := make([]int, len(rb)+1)
	curr := make([]int, len(rb)+1)
	best, end := 0, 0
	for i := 1; i <= len(ra); i++ {
		for j := 1; j <= len(rb); j++ {
			if ra[i-1] == rb[j-1] {
				curr[j] = prev[j-1] + 1
				if curr[j] > best {
					best, end = curr[j], i
				}
			} else {
				curr[j] = 0
			}
		}
		prev, curr = curr, prev
	}
	if best == 0 {
		return ""
	}
	return string(ra[end-best : end])
}

// StripExtension drops the final extension of a process image name:
// "HeroesOfTheStorm_x64.exe" becomes "HeroesOfTheStorm_x64". Names without
// a dot, and dot-files such as ".hidden", are returned unchanged.
func StripExtension(name string) string {
	ext := filepath.Ext(name)
	if ext == "" || ext == name {
		return name
	}
	return strings.TrimSuffix(name, ext)
}

// Normalize removes every whitespace character from a declared name and
// lower-cases it.
func Normalize(declared string) string {
	return strings.ToLower(strings.Map(func(r rune) rune {
		if unicode.IsSpace(r) {
			return -1
		}
		return r
	}, declared))
}

// Deferred reports whether observed, a process image name taken from a
// start event, resolves a placeholder registered as declared.
func Deferred(declared, observed string) bool {
	want := Normalize(declared)
	if want == "" {
		return false
	}
	lcs := LongestCommonSubstring(StripExtension(observed), want)
	return lcs != "" && lcs == want
}
