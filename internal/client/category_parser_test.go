package client

import (
	"testing"

	"cosme/crawler/internal/domain"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const landingHTML = `
<html><body>
<div id="theme-items">
  <div class="block">
    <h4><a href="/categories/item/800/top">スキンケア</a></h4>
    <div class="high-section">
      <p><a href="/categories/item/801/top">洗顔</a></p>
      <ul>
        <li><a href="/categories/item/901/top">洗顔フォーム</a></li>
        <li><a href="/categories/item/902/top">洗顔石けん</a></li>
      </ul>
      <p><a href="/categories/item/802/top">化粧水</a></p>
      <ul>
        <li><a href="/categories/item/903/top">化粧水</a></li>
      </ul>
    </div>
  </div>
  <div class="block">
    <h4><a href="/categories/item/810/top">ボディケア</a></h4>
    <div class="high-section">
      <ul>
        <li><a href="/categories/item/911/top">ボディソープ</a></li>
      </ul>
    </div>
  </div>
  <div class="block">
    <h4><a href="/categories/item/820/top">フレグランス</a></h4>
    <div class="high-section"></div>
  </div>
</div>
</body></html>`

func level(name, url string) domain.Level {
	return domain.PresentLevel(name, url)
}

func TestReconcileSection(t *testing.T) {
	a := level("A", "/a")
	b := level("B", "/b")
	x := []domain.Level{level("x", "/x")}
	y := []domain.Level{level("y", "/y"), level("z", "/z")}

	t.Run("matching counts are zipped", func(t *testing.T) {
		section, err := ReconcileSection([]domain.Level{a, b}, [][]domain.Level{x, y})
		require.NoError(t, err)
		assert.False(t, section.NoSubLevels)
		require.Len(t, section.Entries, 2)
		assert.Equal(t, a, section.Entries[0].Secondary)
		assert.Equal(t, x, section.Entries[0].Tertiary)
		assert.Equal(t, b, section.Entries[1].Secondary)
		assert.Equal(t, y, section.Entries[1].Tertiary)
	})

	t.Run("lists without labels get an absent secondary", func(t *testing.T) {
		section, err := ReconcileSection(nil, [][]domain.Level{x, y})
		require.NoError(t, err)
		require.Len(t, section.Entries, 2)
		for _, entry := range section.Entries {
			assert.False(t, entry.Secondary.Present)
		}
		assert.Equal(t, y, section.Entries[1].Tertiary)
	})

	t.Run("empty block has no sub-levels", func(t *testing.T) {
		section, err := ReconcileSection(nil, nil)
		require.NoError(t, err)
		assert.True(t, section.NoSubLevels)
		assert.Empty(t, section.Entries)
	})

	t.Run("mismatched counts fail", func(t *testing.T) {
		_, err := ReconcileSection([]domain.Level{a, b}, [][]domain.Level{x})
		assert.ErrorIs(t, err, ErrUnrecognizedSection)
	})

	t.Run("labels without lists fail", func(t *testing.T) {
		_, err := ReconcileSection([]domain.Level{a}, nil)
		assert.ErrorIs(t, err, ErrUnrecognizedSection)
	})
}

func TestBuildTaxonomy(t *testing.T) {
	parser := NewCatalogParser("https://www.cosme.net")

	taxonomy, err := parser.BuildTaxonomy(mustDocument(landingHTML))
	require.NoError(t, err)

	assert.Equal(t, []string{"スキンケア", "ボディケア", "フレグランス"}, taxonomy.Names())

	skincare := taxonomy.Primaries[0]
	assert.Equal(t, "https://www.cosme.net/categories/item/800/top", skincare.Category.URL)
	require.Len(t, skincare.Entries, 2)
	assert.Equal(t, "洗顔", skincare.Entries[0].Secondary.Name)
	assert.Equal(t, "https://www.cosme.net/categories/item/801/top", skincare.Entries[0].Secondary.URL)
	require.Len(t, skincare.Entries[0].Tertiary, 2)
	assert.Equal(t, "洗顔石けん", skincare.Entries[0].Tertiary[1].Name)

	body := taxonomy.Primaries[1]
	require.Len(t, body.Entries, 1)
	assert.False(t, body.Entries[0].Secondary.Present)
	assert.Equal(t, "ボディソープ", body.Entries[0].Tertiary[0].Name)

	fragrance := taxonomy.Primaries[2]
	require.Len(t, fragrance.Entries, 1)
	assert.False(t, fragrance.Entries[0].Secondary.Present)
	require.Len(t, fragrance.Entries[0].Tertiary, 1)
	assert.False(t, fragrance.Entries[0].Tertiary[0].Present)
}

func TestBuildTaxonomyPaths(t *testing.T) {
	parser := NewCatalogParser("https://www.cosme.net")

	taxonomy, err := parser.BuildTaxonomy(mustDocument(landingHTML))
	require.NoError(t, err)

	paths := taxonomy.Paths("")
	require.Len(t, paths, 5)

	assert.Equal(t, "スキンケア", paths[0].Primary)
	assert.Equal(t, "洗顔フォーム", paths[0].Tertiary.Name)
	assert.Equal(t, "https://www.cosme.net/categories/item/901/top", paths[0].CategoryURL)

	// a primary without sub-levels is crawled through its own URL
	synthetic := paths[4]
	assert.Equal(t, "フレグランス", synthetic.Primary)
	assert.Equal(t, domain.NoneMarker, synthetic.Secondary.DisplayName())
	assert.Equal(t, domain.NoneMarker, synthetic.Tertiary.DisplayName())
	assert.Equal(t, "https://www.cosme.net/categories/item/820/top", synthetic.CategoryURL)

	only := taxonomy.Paths("ボディケア")
	require.Len(t, only, 1)
	assert.Equal(t, "ボディソープ", only[0].Tertiary.Name)
}

func TestPathsOnePerTertiary(t *testing.T) {
	single := &domain.Taxonomy{Primaries: []domain.Primary{{
		Category: domain.PresentLevel("スキンケア", "https://www.cosme.net/categories/item/800/top"),
		Entries: []domain.SecondaryEntry{
			{Secondary: domain.PresentLevel("洗顔", ""), Tertiary: []domain.Level{domain.PresentLevel("洗顔料", "/a")}},
			{Secondary: domain.PresentLevel("化粧水", ""), Tertiary: []domain.Level{domain.PresentLevel("化粧水", "/b")}},
		},
	}}}
	// one tertiary per secondary: one path per secondary
	assert.Len(t, single.Paths(""), 2)

	single.Primaries[0].Entries[0].Tertiary = append(single.Primaries[0].Entries[0].Tertiary,
		domain.PresentLevel("クレンジング", "/c"))
	paths := single.Paths("")
	require.Len(t, paths, 3)
	assert.Equal(t, "クレンジング", paths[1].Tertiary.Name)
	assert.Equal(t, "洗顔", paths[1].Secondary.Name)
}

func TestBuildTaxonomyFailures(t *testing.T) {
	parser := NewCatalogParser("https://www.cosme.net")

	testCases := []struct {
		name string
		html string
		want error
	}{
		{
			name: "missing root",
			html: `<div id="other"></div>`,
			want: ErrNoRoot,
		},
		{
			name: "no primaries",
			html: `<div id="theme-items"></div>`,
			want: ErrEmptyTaxonomy,
		},
		{
			name: "duplicate primary",
			html: `<div id="theme-items">
				<h4><a href="/a">Dup</a></h4><div class="high-section"></div>
				<h4><a href="/b">Dup</a></h4><div class="high-section"></div>
			</div>`,
			want: ErrDuplicatePrimary,
		},
		{
			name: "heading without link",
			html: `<div id="theme-items"><h4>Plain</h4><div class="high-section"></div></div>`,
			want: ErrMalformedPrimary,
		},
		{
			name: "section count mismatch",
			html: `<div id="theme-items">
				<h4><a href="/a">A</a></h4><div class="high-section"></div>
				<h4><a href="/b">B</a></h4>
			</div>`,
			want: ErrSectionCountMismatch,
		},
		{
			name: "label and list counts mismatch",
			html: `<div id="theme-items">
				<h4><a href="/a">A</a></h4>
				<div class="high-section">
					<p><a href="/s1">S1</a></p><p><a href="/s2">S2</a></p>
					<ul><li><a href="/t">T</a></li></ul>
				</div>
			</div>`,
			want: ErrUnrecognizedSection,
		},
	}

	for _, tc := range testCases {
		t.Run(tc.name, func(t *testing.T) {
			taxonomy, err := parser.BuildTaxonomy(mustDocument(tc.html))
			assert.ErrorIs(t, err, tc.want)
			assert.Nil(t, taxonomy)
		})
	}
}

func TestResolveURL(t *testing.T) {
	testCases := []struct {
		base     string
		href     string
		expected string
	}{
		{"https://www.cosme.net", "/categories/item/1/top", "https://www.cosme.net/categories/item/1/top"},
		{"https://www.cosme.net/category/", "x/top", "https://www.cosme.net/category/x/top"},
		{"https://www.cosme.net", "https://other.example/a", "https://other.example/a"},
		{"https://www.cosme.net", "//img.cosme.net/a.jpg", "https://img.cosme.net/a.jpg"},
		{"https://www.cosme.net", "", ""},
	}

	for _, tc := range testCases {
		assert.Equal(t, tc.expected, ResolveURL(tc.base, tc.href), tc.href)
	}
}
