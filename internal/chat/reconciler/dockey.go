// internal/chat/reconciler/dockey.go
package reconciler

import (
	"strings"

	"askai-service/internal/models"
)

// sentinelDocumentKey groups citations that expose neither a url nor a
// title. With a single source document they all refer to the same place.
const sentinelDocumentKey = "primary-document"

// keyStrategies derive the grouping key from a citation, tried in order. The
// first non-empty key wins; the last entry always matches.
var keyStrategies = []func(models.Citation) string{
	func(c models.Citation) string { return strings.ToLower(c.URL) },
	func(c models.Citation) string { return strings.ToLower(c.Title) },
	func(models.Citation) string { return sentinelDocumentKey },
}

// DocumentKey returns the key citations are deduplicated by. Matching is
// case-insensitive so URL or title casing differences do not split a
// document into two references.
func DocumentKey(c models.Citation) string {
	for _, strategy := range keyStrategies {
		if key := strategy(c); key != "" {
			return key
		}
	}
	return sentinelDocumentKey
}
