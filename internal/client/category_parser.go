package client

import (
	"fmt"
	"net/url"
	"strings"

	"cosme/crawler/internal/domain"

	"github.com/PuerkitoBio/goquery"
	log "github.com/sirupsen/logrus"
)

// Selectors contains CSS selectors for the landing and listing pages
type Selectors struct {
	Root           string // container of the themed category blocks
	Primary        string // heading of a primary category
	HighSection    string
	Label          string // secondary category label inside a high section
	LinkList       string // tertiary link list inside a high section
	Pagination     string
	ProductSection string
	Item           string
	Brand          string
	Price          string
	Release        string
	CommentCount   string
	Rating         string
	PointCount     string
	Image          string
}

var DefaultSelectors = Selectors{
	Root:           "#theme-items",
	Primary:        "h4",
	HighSection:    ".high-section",
	Label:          "p",
	LinkList:       "ul",
	Pagination:     ".cmn-paging p",
	ProductSection: ".keyword-product-section",
	Item:           ".item",
	Brand:          ".brand a",
	Price:          ".price",
	Release:        ".sell",
	CommentCount:   ".count",
	Rating:         ".value",
	PointCount:     ".point",
	Image:          ".pic img",
}

// CatalogParser turns fetched documents into taxonomy and product records
type CatalogParser struct {
	baseURL   string
	selectors Selectors
}

func NewCatalogParser(baseURL string) *CatalogParser {
	return &CatalogParser{
		baseURL:   baseURL,
		selectors: DefaultSelectors,
	}
}

// BuildTaxonomy parses the landing page into the three-level category tree.
// Any structural violation fails the whole build; no partial taxonomy is returned
func (p *CatalogParser) BuildTaxonomy(doc *goquery.Document) (*domain.Taxonomy, error) {
	root := doc.Find(p.selectors.Root).First()
	if root.Length() == 0 {
		return nil, ErrNoRoot
	}

	primaries, err := p.extractPrimaries(root)
	if err != nil {
		return nil, err
	}

	var sections []domain.Section
	for i, hs := range root.Find(p.selectors.HighSection).EachIter() {
		section, err := p.extractSection(hs)
		if err != nil {
			return nil, fmt.Errorf("high section %d: %w", i, err)
		}
		sections = append(sections, section)
	}

	if len(sections) != len(primaries) {
		return nil, fmt.Errorf("%w: %d sections, %d primaries", ErrSectionCountMismatch, len(sections), len(primaries))
	}

	taxonomy := &domain.Taxonomy{Primaries: make([]domain.Primary, 0, len(primaries))}
	for i, primary := range primaries {
		entries := sections[i].Entries
		if sections[i].NoSubLevels {
			// crawl the primary category through its own landing URL
			entries = []domain.SecondaryEntry{{
				Secondary: domain.AbsentLevel(),
				Tertiary:  []domain.Level{domain.AbsentLevel()},
			}}
		}
		taxonomy.Primaries = append(taxonomy.Primaries, domain.Primary{
			Category: primary,
			Entries:  entries,
		})
	}

	log.Debugf("Built taxonomy with %d primary categories", len(taxonomy.Primaries))
	return taxonomy, nil
}

func (p *CatalogParser) extractPrimaries(root *goquery.Selection) ([]domain.Level, error) {
	var primaries []domain.Level
	seen := make(map[string]struct{})

	for i, heading := range root.Find(p.selectors.Primary).EachIter() {
		link := heading.Find("a").First()
		if link.Length() == 0 {
			return nil, fmt.Errorf("%w: heading %d", ErrMalformedPrimary, i)
		}

		name := strings.TrimSpace(link.Text())
		if _, dup := seen[name]; dup {
			return nil, fmt.Errorf("%w: %q", ErrDuplicatePrimary, name)
		}
		seen[name] = struct{}{}

		primaries = append(primaries, domain.PresentLevel(name, p.href(link)))
	}

	if len(primaries) == 0 {
		return nil, ErrEmptyTaxonomy
	}
	return primaries, nil
}

func (p *CatalogParser) extractSection(hs *goquery.Selection) (domain.Section, error) {
	var labels []domain.Level
	for _, label := range hs.Find(p.selectors.Label).EachIter() {
		link := label.Find("a").First()
		if link.Length() == 0 {
			labels = append(labels, domain.PresentLevel(strings.TrimSpace(label.Text()), ""))
			continue
		}
		labels = append(labels, domain.PresentLevel(strings.TrimSpace(link.Text()), p.href(link)))
	}

	var linkLists [][]domain.Level
	for _, list := range hs.Find(p.selectors.LinkList).EachIter() {
		tertiary := make([]domain.Level, 0)
		for _, link := range list.Find("a").EachIter() {
			tertiary = append(tertiary, domain.PresentLevel(strings.TrimSpace(link.Text()), p.href(link)))
		}
		linkLists = append(linkLists, tertiary)
	}

	return ReconcileSection(labels, linkLists)
}

// ReconcileSection pairs secondary labels with tertiary link lists.
//
//   - equal non-zero counts: zipped in document order
//   - no labels, one or more lists: every list gets an absent secondary
//   - neither labels nor lists: the block has no sub-levels
//   - anything else is not a recognized shape
func ReconcileSection(labels []domain.Level, linkLists [][]domain.Level) (domain.Section, error) {
	switch {
	case len(labels) == 0 && len(linkLists) == 0:
		return domain.Section{NoSubLevels: true}, nil

	case len(labels) == 0:
		entries := make([]domain.SecondaryEntry, 0, len(linkLists))
		for _, list := range linkLists {
			entries = append(entries, domain.SecondaryEntry{
				Secondary: domain.AbsentLevel(),
				Tertiary:  list,
			})
		}
		return domain.Section{Entries: entries}, nil

	case len(labels) == len(linkLists):
		entries := make([]domain.SecondaryEntry, 0, len(labels))
		for i, label := range labels {
			entries = append(entries, domain.SecondaryEntry{
				Secondary: label,
				Tertiary:  linkLists[i],
			})
		}
		return domain.Section{Entries: entries}, nil

	default:
		return domain.Section{}, fmt.Errorf("%w: %d labels, %d link lists",
			ErrUnrecognizedSection, len(labels), len(linkLists))
	}
}

func (p *CatalogParser) href(link *goquery.Selection) string {
	href, exists := link.Attr("href")
	if !exists {
		return ""
	}
	return ResolveURL(p.baseURL, strings.TrimSpace(href))
}

// ResolveURL makes href absolute against base. Unparseable input is returned unchanged
func ResolveURL(base, href string) string {
	if href == "" || base == "" {
		return href
	}
	ref, err := url.Parse(href)
	if err != nil || ref.IsAbs() {
		return href
	}
	baseURL, err := url.Parse(base)
	if err != nil {
		return href
	}
	return baseURL.ResolveReference(ref).String()
}
