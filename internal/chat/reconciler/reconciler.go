// internal/chat/reconciler/reconciler.go
package reconciler

import (
	"fmt"
	"math"
	"sort"
	"strconv"
	"strings"

	"askai-service/internal/common/logger"
	"askai-service/internal/common/metrics"
	"askai-service/internal/models"
)

// Reconciler rewrites the raw answer's citation markers against a
// deduplicated reference list and appends footnote links. Every reference
// points into the one configured document; only the page fragment varies.
type Reconciler struct {
	docBaseURL string
	docTitle   string
	logger     logger.Logger
}

func New(docBaseURL, docTitle string, log logger.Logger) *Reconciler {
	return &Reconciler{
		docBaseURL: docBaseURL,
		docTitle:   docTitle,
		logger:     log.WithFields(map[string]interface{}{"component": "reconciler"}),
	}
}

// Reconcile post-processes the model's answer in five passes: deduplicate
// citations by document, renumber markers to the deduplicated indices, build
// the reference list, strip markers no reference backs, then normalize
// adjacent markers and append footnote links. With no citations the valid
// set is empty, so every marker is stripped and no footnotes are appended.
func (r *Reconciler) Reconcile(answer string, citations []models.Citation) (string, []models.Reference) {
	r.logger.Debug("citations received", map[string]interface{}{
		"count": len(citations),
	})

	// 1. Deduplicate by document key, assigning dense indices in
	// first-occurrence order.
	keyToIndex := make(map[string]int, len(citations))
	var unique []models.Citation
	for _, c := range citations {
		key := DocumentKey(c)
		if _, ok := keyToIndex[key]; !ok {
			keyToIndex[key] = len(unique) + 1
			unique = append(unique, c)
		}
	}

	// 2. Renumber markers. The model numbers citations by their position in
	// the citations array, so position i+1 maps to that document's new index.
	renumbering := make(map[string]string, len(citations))
	for i, c := range citations {
		if newIndex, ok := keyToIndex[DocumentKey(c)]; ok {
			renumbering[strconv.Itoa(i+1)] = strconv.Itoa(newIndex)
		}
	}
	answer = rewriteMarkers(answer, renumbering)

	// 3. Build the reference list.
	references := make([]models.Reference, 0, len(unique))
	for i, c := range unique {
		url := r.docBaseURL
		if page, ok := pageFragment(c); ok {
			url += "#page=" + page
		} else {
			r.logger.Warn("no usable page number for citation", map[string]interface{}{
				"index": i + 1,
				"title": c.Title,
			})
		}
		references = append(references, models.Reference{
			Index: i + 1,
			Title: r.referenceTitle(c),
			URL:   url,
		})
	}
	metrics.ReferencesBuilt.Add(float64(len(references)))

	// 4. Strip orphan markers, i.e. numbers no reference backs. Markers the
	// renumbering pass could not map land here too.
	valid := make(map[string]bool, len(references))
	for _, ref := range references {
		valid[strconv.Itoa(ref.Index)] = true
	}
	var removed int
	answer, removed = stripMarkers(answer, valid)
	if removed > 0 {
		metrics.OrphanMarkersRemoved.Add(float64(removed))
		r.logger.Warn("removed orphan citation markers", map[string]interface{}{
			"removed": removed,
		})
	}

	// 5. Normalize adjacency and append footnote links.
	answer = separateAdjacentMarkers(answer)
	answer = r.appendFootnotes(answer, unique)

	return answer, references
}

func (r *Reconciler) referenceTitle(c models.Citation) string {
	if c.Title != "" {
		return c.Title
	}
	return r.docTitle
}

// referenceURL returns the document URL, with a page fragment when the
// citation carries a usable page number.
func (r *Reconciler) referenceURL(c models.Citation) string {
	if page, ok := pageFragment(c); ok {
		return r.docBaseURL + "#page=" + page
	}
	return r.docBaseURL
}

// appendFootnotes appends a "[n]: url" line for every marker still present
// in the answer, sorted numerically. With no surviving markers the trimmed
// answer is returned alone, without a dangling footnote block.
func (r *Reconciler) appendFootnotes(answer string, unique []models.Citation) string {
	numbers := markerNumbers(answer)
	if len(numbers) == 0 {
		return strings.TrimSpace(answer)
	}

	sort.Slice(numbers, func(i, j int) bool {
		a, _ := strconv.Atoi(numbers[i])
		b, _ := strconv.Atoi(numbers[j])
		return a < b
	})

	var block strings.Builder
	for _, number := range numbers {
		idx, err := strconv.Atoi(number)
		if err == nil && idx >= 1 && idx <= len(unique) {
			fmt.Fprintf(&block, "[%s]: %s\n", number, r.referenceURL(unique[idx-1]))
		} else {
			// Unreachable through Reconcile, where orphan removal runs
			// first; kept for direct callers.
			fmt.Fprintf(&block, "[%s]: #\n", number)
			r.logger.Warn("marker has no backing reference", map[string]interface{}{
				"marker": number,
			})
		}
	}

	return strings.TrimSpace(answer) + "\n\n" + strings.TrimSpace(block.String()) + "\n"
}

// pageFragment scans page, pageNumber and chunk_id in that order and returns
// the first value that reads as a positive integer. String values keep their
// original text, so a zero-padded "007" stays "007" in the fragment.
func pageFragment(c models.Citation) (string, bool) {
	for _, v := range []interface{}{c.Page, c.PageNumber, c.ChunkID} {
		if page, ok := positivePageNumber(v); ok {
			return page, true
		}
	}
	return "", false
}

func positivePageNumber(v interface{}) (string, bool) {
	switch value := v.(type) {
	case string:
		if isPositiveDigits(value) {
			return value, true
		}
	case float64:
		if value > 0 && value == math.Trunc(value) {
			return strconv.FormatFloat(value, 'f', -1, 64), true
		}
	case int:
		if value > 0 {
			return strconv.Itoa(value), true
		}
	}
	return "", false
}

// isPositiveDigits reports whether s consists solely of ASCII digits with at
// least one of them non-zero, so "007" passes and "0" does not.
func isPositiveDigits(s string) bool {
	if s == "" {
		return false
	}
	nonZero := false
	for _, r := range s {
		if r < '0' || r > '9' {
			return false
		}
		if r != '0' {
			nonZero = true
		}
	}
	return nonZero
}
