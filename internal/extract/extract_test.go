package extract

import (
	"fmt"
	"log/slog"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const baseURL = "https://www.dhgate.com/wholesale/search.do?act=search&searchkey=kids"

func newTestExtractor(maxItems int) *Extractor {
	return New(maxItems, slog.Default())
}

func TestCandidatesFromProductAnchors(t *testing.T) {
	html := `<html><body>
		<a href="https://www.dhgate.com/product/kids-jersey/111.html" title="Kids Jersey Home">Kids Jersey Home</a>
		<a href="https://www.dhgate.com/product/kids-shorts/222.html">Kids Shorts 2024</a>
	</body></html>`

	candidates, err := newTestExtractor(50).Candidates(html, baseURL)

	require.NoError(t, err)
	require.Len(t, candidates, 2)
	assert.Equal(t, "Kids Jersey Home", candidates[0].Title)
	assert.Equal(t, "https://www.dhgate.com/product/kids-jersey/111.html", candidates[0].Link)
	assert.Equal(t, "Kids Shorts 2024", candidates[1].Title)
}

func TestCandidatesDeduplicateByHref(t *testing.T) {
	html := `<html><body>
		<a href="/product/kids-jersey/111.html" title="Kids Jersey">x</a>
		<div class="search-item"><a href="/product/kids-jersey/111.html" title="Kids Jersey again">y</a></div>
		<a href="/product/kids-jersey/333.html" title="Other Jersey">z</a>
	</body></html>`

	candidates, err := newTestExtractor(50).Candidates(html, baseURL)

	require.NoError(t, err)
	require.Len(t, candidates, 2)
	assert.Equal(t, "Kids Jersey", candidates[0].Title)
}

func TestCandidatesResolveRelativeLinks(t *testing.T) {
	tests := []struct {
		name     string
		href     string
		expected string
	}{
		{
			name:     "site relative",
			href:     "/product/kids-jersey/111.html",
			expected: "https://www.dhgate.com/product/kids-jersey/111.html",
		},
		{
			name:     "protocol relative",
			href:     "//m.dhgate.com/product/kids-jersey/111.html",
			expected: "https://m.dhgate.com/product/kids-jersey/111.html",
		},
		{
			name:     "already absolute",
			href:     "https://www.dhgate.com/product/kids-jersey/111.html",
			expected: "https://www.dhgate.com/product/kids-jersey/111.html",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			html := fmt.Sprintf(`<a href=%q title="Kids Jersey">Kids Jersey</a>`, tt.href)

			candidates, err := newTestExtractor(50).Candidates(html, baseURL)

			require.NoError(t, err)
			require.Len(t, candidates, 1)
			assert.Equal(t, tt.expected, candidates[0].Link)
		})
	}
}

func TestCandidatesTitleFallbackToParentHeading(t *testing.T) {
	html := `<div class="pro-item">
		<a href="/product/kids-jersey/111.html"><img src="thumb.jpg"></a>
		<h3>Kids Jersey From Heading</h3>
	</div>`

	candidates, err := newTestExtractor(50).Candidates(html, baseURL)

	require.NoError(t, err)
	require.Len(t, candidates, 1)
	assert.Equal(t, "Kids Jersey From Heading", candidates[0].Title)
}

func TestCandidatesSkipItemsWithoutTitle(t *testing.T) {
	html := `<div><a href="/product/kids-jersey/111.html"><img src="thumb.jpg"></a></div>
		<a href="/product/kids-shorts/222.html" title="Kids Shorts">Kids Shorts</a>`

	candidates, err := newTestExtractor(50).Candidates(html, baseURL)

	require.NoError(t, err)
	require.Len(t, candidates, 1)
	assert.Equal(t, "Kids Shorts", candidates[0].Title)
}

func TestCandidatesIgnoreNonProductLinks(t *testing.T) {
	html := `<a href="/help/contact.html" title="Contact">Contact</a>
		<a href="/product/kids-jersey/111.html" title="Kids Jersey">Kids Jersey</a>`

	candidates, err := newTestExtractor(50).Candidates(html, baseURL)

	require.NoError(t, err)
	require.Len(t, candidates, 1)
	assert.Equal(t, "Kids Jersey", candidates[0].Title)
}

func TestCandidatesCapped(t *testing.T) {
	html := ""
	for i := 0; i < 10; i++ {
		html += fmt.Sprintf(`<a href="/product/kids/%d.html" title="Kids Item %d">Kids Item %d</a>`, 100+i, i, i)
	}

	candidates, err := newTestExtractor(3).Candidates(html, baseURL)

	require.NoError(t, err)
	assert.Len(t, candidates, 3)
	assert.Equal(t, "Kids Item 0", candidates[0].Title)
}

func TestCandidatesExtractPrice(t *testing.T) {
	html := `<div class="search-item">
		<a href="/product/kids-jersey/111.html" title="Kids Jersey">Kids Jersey</a>
		<span class="price">US $12.50 - 15.00</span>
	</div>`

	candidates, err := newTestExtractor(50).Candidates(html, baseURL)

	require.NoError(t, err)
	require.Len(t, candidates, 1)
	assert.Equal(t, "US $12.50 - 15.00", candidates[0].Price)
}

func TestCandidatesEmptyMarkup(t *testing.T) {
	candidates, err := newTestExtractor(50).Candidates("", baseURL)

	require.NoError(t, err)
	assert.Empty(t, candidates)
}
