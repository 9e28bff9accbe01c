package domain

import "fmt"

// NoneMarker is rendered for a taxonomy level that does not exist on a branch
const NoneMarker = "none"

// Level is one node of the taxonomy at any depth. A zero Level is Absent
type Level struct {
	Name    string `json:"name"`
	URL     string `json:"url"`
	Present bool   `json:"present"`
}

// PresentLevel builds a level that exists in the source markup
func PresentLevel(name, url string) Level {
	return Level{Name: name, URL: url, Present: true}
}

// AbsentLevel marks a level the site does not render for a branch
func AbsentLevel() Level {
	return Level{}
}

// DisplayName returns the level name or the "none" marker
func (l Level) DisplayName() string {
	if !l.Present {
		return NoneMarker
	}
	return l.Name
}

func (l Level) String() string {
	if !l.Present {
		return NoneMarker
	}
	return fmt.Sprintf("%s (%s)", l.Name, l.URL)
}

// SecondaryEntry pairs a secondary category with its tertiary categories
type SecondaryEntry struct {
	Secondary Level   `json:"secondary"`
	Tertiary  []Level `json:"tertiary"`
}

// Section is the reconciled content of one "high section" block
type Section struct {
	Entries     []SecondaryEntry `json:"entries"`
	NoSubLevels bool             `json:"no_sub_levels"` // block renders neither labels nor link lists
}

// Primary is a top-level category together with its reconciled sub-levels
type Primary struct {
	Category Level            `json:"category"`
	Entries  []SecondaryEntry `json:"entries"`
}

// Taxonomy is the ordered three-level category tree of the catalog.
// It is built once per run and never mutated afterwards
type Taxonomy struct {
	Primaries []Primary `json:"primaries"`
}

// Names returns the primary category names in document order
func (t *Taxonomy) Names() []string {
	names := make([]string, 0, len(t.Primaries))
	for _, p := range t.Primaries {
		names = append(names, p.Category.Name)
	}
	return names
}

// Lookup finds a primary category by its displayed name
func (t *Taxonomy) Lookup(name string) (Primary, bool) {
	for _, p := range t.Primaries {
		if p.Category.Name == name {
			return p, true
		}
	}
	return Primary{}, false
}

// Paths flattens the taxonomy into crawl units in traversal order.
// An empty selection flattens every primary category
func (t *Taxonomy) Paths(selected string) []CategoryPath {
	var paths []CategoryPath
	for _, p := range t.Primaries {
		if selected != "" && p.Category.Name != selected {
			continue
		}
		paths = append(paths, p.Paths()...)
	}
	return paths
}

// Paths flattens one primary category. A secondary entry without tertiary
// categories is crawled through its own URL
func (p Primary) Paths() []CategoryPath {
	var paths []CategoryPath
	for _, entry := range p.Entries {
		if len(entry.Tertiary) == 0 {
			paths = append(paths, CategoryPath{
				Primary:     p.Category.Name,
				Secondary:   entry.Secondary,
				Tertiary:    AbsentLevel(),
				CategoryURL: entry.Secondary.URL,
			})
			continue
		}
		for _, tertiary := range entry.Tertiary {
			url := tertiary.URL
			if !tertiary.Present {
				url = p.Category.URL
			}
			paths = append(paths, CategoryPath{
				Primary:     p.Category.Name,
				Secondary:   entry.Secondary,
				Tertiary:    tertiary,
				CategoryURL: url,
			})
		}
	}
	return paths
}

// CategoryPath is one fully resolved leaf of the taxonomy scoping a crawl
type CategoryPath struct {
	Primary     string `json:"primary"`
	Secondary   Level  `json:"secondary"`
	Tertiary    Level  `json:"tertiary"`
	CategoryURL string `json:"category_url"`
}

func (c CategoryPath) String() string {
	return fmt.Sprintf("%s / %s / %s", c.Primary, c.Secondary.DisplayName(), c.Tertiary.DisplayName())
}
