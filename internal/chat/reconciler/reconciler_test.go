// internal/chat/reconciler/reconciler_test.go
package reconciler

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"askai-service/internal/common/logger"
	"askai-service/internal/models"
)

const (
	testBaseURL  = "https://blob.example.com/handbook.pdf?sig=abc"
	testDocTitle = "Employee Handbook"
)

func newTestReconciler(t *testing.T) *Reconciler {
	return New(testBaseURL, testDocTitle, logger.NewTestLogger(t))
}

// ==========================
// Reconcile Tests
// ==========================

func TestReconcile_DeduplicatesAndRenumbers(t *testing.T) {
	r := newTestReconciler(t)

	citations := []models.Citation{
		{URL: "https://idx/chapters/one", Title: "Chapter One", Page: "3"},
		{URL: "https://idx/chapters/two", Title: "Chapter Two"},
		{URL: "https://IDX/chapters/ONE", Title: "Chapter One again", Page: "9"},
	}

	answer, references := r.Reconcile("One says [1]. Two says [2]. Dup says [3].", citations)

	assert.Equal(t,
		"One says [1]. Two says [2]. Dup says [1].\n\n"+
			"[1]: "+testBaseURL+"#page=3\n"+
			"[2]: "+testBaseURL+"\n",
		answer)

	require.Len(t, references, 2)
	assert.Equal(t, models.Reference{Index: 1, Title: "Chapter One", URL: testBaseURL + "#page=3"}, references[0])
	assert.Equal(t, models.Reference{Index: 2, Title: "Chapter Two", URL: testBaseURL}, references[1])
}

func TestReconcile_RemovesOrphanMarkers(t *testing.T) {
	r := newTestReconciler(t)

	citations := []models.Citation{
		{URL: "https://idx/doc", Title: "Doc", Page: "2"},
	}

	answer, references := r.Reconcile("Known [1] but unknown [4].", citations)

	assert.Equal(t,
		"Known [1] but unknown .\n\n"+
			"[1]: "+testBaseURL+"#page=2\n",
		answer)
	require.Len(t, references, 1)
}

func TestReconcile_NoCitations(t *testing.T) {
	r := newTestReconciler(t)

	answer, references := r.Reconcile("Raw answer with a [1] marker.", nil)

	assert.Equal(t, "Raw answer with a  marker.", answer)
	assert.Equal(t, []models.Reference{}, references)
}

func TestReconcile_NoCitationsNoMarkers(t *testing.T) {
	r := newTestReconciler(t)

	answer, references := r.Reconcile("  Plain answer.  ", nil)

	assert.Equal(t, "Plain answer.", answer)
	assert.Equal(t, []models.Reference{}, references)
}

func TestReconcile_SeparatesAdjacentMarkers(t *testing.T) {
	r := newTestReconciler(t)

	citations := []models.Citation{
		{URL: "https://idx/a", Title: "A", Page: "1"},
		{URL: "https://idx/b", Title: "B", Page: "2"},
		{URL: "https://idx/c", Title: "C", Page: "3"},
	}

	answer, references := r.Reconcile("Facts [1][2][3].", citations)

	assert.Equal(t,
		"Facts [1], [2], [3].\n\n"+
			"[1]: "+testBaseURL+"#page=1\n"+
			"[2]: "+testBaseURL+"#page=2\n"+
			"[3]: "+testBaseURL+"#page=3\n",
		answer)
	assert.Len(t, references, 3)
}

func TestReconcile_AlreadySeparatedMarkersUnchanged(t *testing.T) {
	r := newTestReconciler(t)

	citations := []models.Citation{
		{URL: "https://idx/a", Title: "A", Page: "1"},
		{URL: "https://idx/b", Title: "B", Page: "2"},
	}

	answer, _ := r.Reconcile("Facts [1], [2].", citations)

	assert.Equal(t,
		"Facts [1], [2].\n\n"+
			"[1]: "+testBaseURL+"#page=1\n"+
			"[2]: "+testBaseURL+"#page=2\n",
		answer)
}

func TestReconcile_NoMarkersMeansNoFootnotes(t *testing.T) {
	r := newTestReconciler(t)

	citations := []models.Citation{
		{URL: "https://idx/doc", Title: "Doc", Page: "2"},
	}

	answer, references := r.Reconcile("  A plain answer without markers. \n", citations)

	assert.Equal(t, "A plain answer without markers.", answer)
	assert.Len(t, references, 1)
}

func TestReconcile_OnlyOrphansMeansNoFootnotes(t *testing.T) {
	r := newTestReconciler(t)

	citations := []models.Citation{
		{URL: "https://idx/doc", Title: "Doc", Page: "2"},
	}

	answer, _ := r.Reconcile("Only [7] here.", citations)

	assert.Equal(t, "Only  here.", answer)
}

func TestReconcile_SentinelGroupsAnonymousCitations(t *testing.T) {
	r := newTestReconciler(t)

	citations := []models.Citation{
		{Page: "4"},
		{ChunkID: "8"},
	}

	answer, references := r.Reconcile("See [1] and [2].", citations)

	assert.Equal(t,
		"See [1] and [1].\n\n"+
			"[1]: "+testBaseURL+"#page=4\n",
		answer)

	require.Len(t, references, 1)
	assert.Equal(t, models.Reference{Index: 1, Title: testDocTitle, URL: testBaseURL + "#page=4"}, references[0])
}

func TestReconcile_TitleFallsBackToDocumentTitle(t *testing.T) {
	r := newTestReconciler(t)

	citations := []models.Citation{
		{URL: "https://idx/doc", Page: "6"},
	}

	_, references := r.Reconcile("From [1].", citations)

	require.Len(t, references, 1)
	assert.Equal(t, testDocTitle, references[0].Title)
}

func TestReconcile_DeduplicatesByTitleWhenURLMissing(t *testing.T) {
	r := newTestReconciler(t)

	citations := []models.Citation{
		{Title: "Benefits Guide", Page: "10"},
		{Title: "BENEFITS GUIDE", Page: "11"},
	}

	_, references := r.Reconcile("See [1] and [2].", citations)

	require.Len(t, references, 1)
	assert.Equal(t, "Benefits Guide", references[0].Title)
	assert.Equal(t, testBaseURL+"#page=10", references[0].URL)
}

func TestReconcile_UnmappedMarkersNeverSurvive(t *testing.T) {
	r := newTestReconciler(t)

	// Two citations collapsing to one reference; any marker above the
	// citation count has no mapping and must not outlive orphan removal.
	citations := []models.Citation{
		{URL: "https://idx/doc", Page: "1"},
		{URL: "https://IDX/DOC", Page: "2"},
	}

	answer, references := r.Reconcile("A [1] B [2] C [3] D [9] E [99999999999999999999].", citations)

	require.Len(t, references, 1)
	assert.Equal(t, []string{"1"}, markerNumbers(answer))
	assert.Equal(t,
		"A [1] B [1] C  D  E .\n\n"+
			"[1]: "+testBaseURL+"#page=1\n",
		answer)
}

// ==========================
// Helper Tests
// ==========================

func TestDocumentKey(t *testing.T) {
	tests := []struct {
		name     string
		citation models.Citation
		expected string
	}{
		{
			name:     "url wins and is lowercased",
			citation: models.Citation{URL: "https://IDX/Doc", Title: "Title"},
			expected: "https://idx/doc",
		},
		{
			name:     "title when url empty",
			citation: models.Citation{Title: "Benefits Guide"},
			expected: "benefits guide",
		},
		{
			name:     "sentinel when both empty",
			citation: models.Citation{},
			expected: sentinelDocumentKey,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.expected, DocumentKey(tt.citation))
		})
	}
}

func TestPageFragment(t *testing.T) {
	tests := []struct {
		name     string
		citation models.Citation
		expected string
		ok       bool
	}{
		{name: "page string", citation: models.Citation{Page: "12"}, expected: "12", ok: true},
		{name: "zero is not a page", citation: models.Citation{Page: "0"}, ok: false},
		{name: "all zeros is not a page", citation: models.Citation{Page: "00"}, ok: false},
		{name: "zero padded page keeps padding", citation: models.Citation{Page: "007"}, expected: "007", ok: true},
		{name: "scan continues past zero", citation: models.Citation{Page: "0", PageNumber: "5"}, expected: "5", ok: true},
		{name: "scan continues past non-numeric", citation: models.Citation{Page: "abc", PageNumber: "7"}, expected: "7", ok: true},
		{name: "chunk id as last resort", citation: models.Citation{ChunkID: "9"}, expected: "9", ok: true},
		{name: "integral json number", citation: models.Citation{PageNumber: float64(7)}, expected: "7", ok: true},
		{name: "fractional json number rejected", citation: models.Citation{Page: 7.5}, ok: false},
		{name: "negative json number rejected", citation: models.Citation{Page: float64(-2)}, ok: false},
		{name: "plain int accepted", citation: models.Citation{ChunkID: 3}, expected: "3", ok: true},
		{name: "mixed digits rejected", citation: models.Citation{Page: "12a"}, ok: false},
		{name: "negative string rejected", citation: models.Citation{Page: "-4"}, ok: false},
		{name: "nothing set", citation: models.Citation{}, ok: false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			page, ok := pageFragment(tt.citation)
			assert.Equal(t, tt.ok, ok)
			if tt.ok {
				assert.Equal(t, tt.expected, page)
			}
		})
	}
}

func TestAppendFootnotes_MarkerBeyondReferences(t *testing.T) {
	r := newTestReconciler(t)

	unique := []models.Citation{
		{URL: "https://idx/doc", Page: "2"},
	}

	got := r.appendFootnotes("Cited [9].", unique)

	assert.Equal(t, "Cited [9].\n\n[9]: #\n", got)
}

func TestSeparateAdjacentMarkers(t *testing.T) {
	tests := []struct {
		name     string
		text     string
		expected string
	}{
		{name: "pair", text: "[1][2]", expected: "[1], [2]"},
		{name: "chain of three", text: "[1][2][3]", expected: "[1], [2], [3]"},
		{name: "already separated", text: "[1], [2]", expected: "[1], [2]"},
		{name: "space between", text: "[1] [2]", expected: "[1] [2]"},
		{name: "multi digit", text: "a[12][3]b", expected: "a[12], [3]b"},
		{name: "single marker", text: "[1]", expected: "[1]"},
		{name: "no markers", text: "plain text", expected: "plain text"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.expected, separateAdjacentMarkers(tt.text))
			// Running the pass twice must not change the result again.
			assert.Equal(t, tt.expected, separateAdjacentMarkers(separateAdjacentMarkers(tt.text)))
		})
	}
}

func TestRewriteMarkers(t *testing.T) {
	mapping := map[string]string{"1": "2", "2": "1"}

	assert.Equal(t, "swap [2] and [1], keep [5]", rewriteMarkers("swap [1] and [2], keep [5]", mapping))
}

func TestStripMarkers(t *testing.T) {
	keep := map[string]bool{"1": true}

	cleaned, removed := stripMarkers("keep [1] drop [2].", keep)

	assert.Equal(t, "keep [1] drop .", cleaned)
	assert.Equal(t, 1, removed)
}

// ==========================
// Benchmarks
// ==========================

func BenchmarkReconcile(b *testing.B) {
	r := New(testBaseURL, testDocTitle, logger.NewNoOpLogger())

	citations := []models.Citation{
		{URL: "https://idx/one", Title: "One", Page: "3"},
		{URL: "https://idx/two", Title: "Two", Page: "14"},
		{URL: "https://IDX/ONE", Title: "One", Page: "5"},
		{Title: "Three", PageNumber: float64(22)},
		{ChunkID: "7"},
	}
	answer := "First [1], second [2][3], third [4] and more [5]. Stray [8] ends it."

	b.ResetTimer()
	for i := 0; i < b.N; i++ {
		r.Reconcile(answer, citations)
	}
}
