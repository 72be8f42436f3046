// internal/chat/reconciler/marker.go
package reconciler

import (
	"regexp"
	"strings"
)

// markerPattern matches inline citation markers like [3]. Only bare digits
// count; [3a] or [note] are left alone.
var markerPattern = regexp.MustCompile(`\[(\d+)\]`)

// rewriteMarkers replaces every [n] in text using the given number mapping.
// Numbers without a mapping are left untouched.
func rewriteMarkers(text string, mapping map[string]string) string {
	return markerPattern.ReplaceAllStringFunc(text, func(marker string) string {
		number := marker[1 : len(marker)-1]
		if replacement, ok := mapping[number]; ok {
			return "[" + replacement + "]"
		}
		return marker
	})
}

// stripMarkers removes every [n] whose number is not in keep, returning the
// cleaned text and how many markers were dropped. Surrounding text is left
// exactly as it was.
func stripMarkers(text string, keep map[string]bool) (string, int) {
	removed := 0
	cleaned := markerPattern.ReplaceAllStringFunc(text, func(marker string) string {
		number := marker[1 : len(marker)-1]
		if keep[number] {
			return marker
		}
		removed++
		return ""
	})
	return cleaned, removed
}

// markerNumbers returns the distinct marker numbers present in text, in
// first-occurrence order.
func markerNumbers(text string) []string {
	seen := make(map[string]bool)
	var numbers []string
	for _, match := range markerPattern.FindAllStringSubmatch(text, -1) {
		if !seen[match[1]] {
			seen[match[1]] = true
			numbers = append(numbers, match[1])
		}
	}
	return numbers
}

// separateAdjacentMarkers inserts ", " between back-to-back markers so
// [1][2][3] reads as [1], [2], [3]. Markers already separated by anything
// are untouched, which makes the pass idempotent.
func separateAdjacentMarkers(text string) string {
	locs := markerPattern.FindAllStringIndex(text, -1)
	if len(locs) < 2 {
		return text
	}

	var b strings.Builder
	b.Grow(len(text) + 2*len(locs))
	prev := 0
	for i, loc := range locs {
		b.WriteString(text[prev:loc[1]])
		prev = loc[1]
		if i+1 < len(locs) && locs[i+1][0] == loc[1] {
			b.WriteString(", ")
		}
	}
	b.WriteString(text[prev:])
	return b.String()
}
