package detect

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestProductID(t *testing.T) {
	tests := []struct {
		name     string
		link     string
		expected string
	}{
		{
			name:     "numeric product path",
			link:     "https://www.dhgate.com/product/kids-jersey/493478194.html",
			expected: "dhgate_493478194",
		},
		{
			name:     "tracking query stripped",
			link:     "https://www.dhgate.com/product/kids-jersey/493478194.html?trackid=abc&f=source",
			expected: "dhgate_493478194",
		},
		{
			name:     "fragment stripped",
			link:     "https://www.dhgate.com/product/kids-jersey/493478194.html#reviews",
			expected: "dhgate_493478194",
		},
		{
			name:     "mobile subdomain shares identity",
			link:     "https://m.dhgate.com/product/kids-jersey/493478194.html",
			expected: "dhgate_493478194",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.expected, ProductID(tt.link))
		})
	}
}

func TestProductIDStableAcrossSuffixes(t *testing.T) {
	base := "https://www.dhgate.com/product/x/123.html"

	assert.Equal(t, ProductID(base), ProductID(base+"?trackid=abc"))
	assert.Equal(t, ProductID(base), ProductID(base+"#foo"))
	assert.Equal(t, ProductID(base), ProductID(base+"?a=1&b=2#frag"))
}

func TestProductIDHashFallback(t *testing.T) {
	// No numeric product segment: fall back to hashing the stripped URL.
	id := ProductID("https://www.dhgate.com/store/21168508")

	assert.NotEmpty(t, id)
	assert.NotContains(t, id, "dhgate_")
	assert.Len(t, id, 32)

	// Fallback ids are stable across tracking suffixes too.
	assert.Equal(t, id, ProductID("https://www.dhgate.com/store/21168508?src=mail"))
}

func TestProductIDDifferentProductsDiffer(t *testing.T) {
	a := ProductID("https://www.dhgate.com/product/x/111.html")
	b := ProductID("https://www.dhgate.com/product/x/222.html")

	assert.NotEqual(t, a, b)
}
