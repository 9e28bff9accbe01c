package client

import (
	"fmt"
	"net/url"
	"path"
	"regexp"
	"strconv"
	"strings"

	"cosme/crawler/internal/domain"

	"github.com/PuerkitoBio/goquery"
	log "github.com/sirupsen/logrus"
)

// DefaultItemsPerPage is the number of products the catalog renders per listing page
const DefaultItemsPerPage = 10

// ImageSizeSuffix is the thumbnail query appended to product image URLs
const ImageSizeSuffix = "?target=70x70"

var leadingCountRegex = regexp.MustCompile(`^\s*([0-9][0-9,]*)`)

// ItemCount reads the total number of products from the pagination summary,
// e.g. "137件中 1-10件" yields 137
func (p *CatalogParser) ItemCount(doc *goquery.Document) (int, error) {
	summary := doc.Find(p.selectors.Pagination).First()
	if summary.Length() == 0 {
		return 0, ErrNoPagination
	}

	text := summary.Text()
	matches := leadingCountRegex.FindStringSubmatch(text)
	if len(matches) < 2 {
		return 0, fmt.Errorf("%w: no leading item count in %q", ErrNoPagination, strings.TrimSpace(text))
	}

	total, err := strconv.Atoi(strings.ReplaceAll(matches[1], ",", ""))
	if err != nil {
		return 0, fmt.Errorf("%w: %v", ErrNoPagination, err)
	}
	return total, nil
}

// PageCount is ceil(totalItems / itemsPerPage), never less than one page
func PageCount(totalItems, itemsPerPage int) int {
	if itemsPerPage < 1 {
		itemsPerPage = DefaultItemsPerPage
	}
	if totalItems <= 0 {
		return 1
	}
	return (totalItems + itemsPerPage - 1) / itemsPerPage
}

// ExtractRecords maps every product section of a listing page to a record,
// in document order. Structurally corrupt sections are skipped and counted
func (p *CatalogParser) ExtractRecords(doc *goquery.Document) ([]domain.ProductRecord, int) {
	records := make([]domain.ProductRecord, 0)
	skipped := 0

	for i, section := range doc.Find(p.selectors.ProductSection).EachIter() {
		record, err := p.extractRecord(section)
		if err != nil {
			log.Debugf("Skipping product section %d: %v", i, err)
			skipped++
			continue
		}
		records = append(records, record)
	}

	return records, skipped
}

func (p *CatalogParser) extractRecord(s *goquery.Selection) (domain.ProductRecord, error) {
	item := s.Find(p.selectors.Item).First()
	if item.Length() == 0 {
		return domain.ProductRecord{}, ErrCorruptSection
	}

	productLink := item.Find("a").First()

	record := domain.ProductRecord{
		Product:      textField(productLink),
		Brand:        textField(s.Find(p.selectors.Brand).First()),
		Price:        textField(s.Find(p.selectors.Price).First()),
		Release:      textField(s.Find(p.selectors.Release).First()),
		CommentCount: textField(s.Find(p.selectors.CommentCount).First()),
		Rating:       textField(s.Find(p.selectors.Rating).First()),
		PointCount:   textField(s.Find(p.selectors.PointCount).First()),
		ImageURL:     p.linkField(s.Find(p.selectors.Image).First(), "src"),
		ProductURL:   p.linkField(productLink, "href"),
	}

	if record.ImageURL.Present {
		record.ImageURL.Value = strings.ReplaceAll(record.ImageURL.Value, ImageSizeSuffix, "")
	}

	return record, nil
}

func textField(sel *goquery.Selection) domain.Field {
	if sel.Length() == 0 {
		return domain.Missing()
	}
	return domain.Text(strings.TrimSpace(sel.Text()))
}

func (p *CatalogParser) linkField(sel *goquery.Selection, attr string) domain.Field {
	if sel.Length() == 0 {
		return domain.Missing()
	}
	value, exists := sel.Attr(attr)
	if !exists {
		return domain.Missing()
	}
	return domain.Text(ResolveURL(p.baseURL, strings.TrimSpace(value)))
}

// ListingURL maps a category landing URL to its product listing URL:
// a trailing "top" path segment becomes "products"
func ListingURL(categoryURL string) string {
	u, err := url.Parse(categoryURL)
	if err != nil {
		return categoryURL
	}

	trimmed := strings.TrimRight(u.Path, "/")
	if path.Base(trimmed) != "top" {
		return categoryURL
	}
	u.Path = path.Join(path.Dir(trimmed), "products")
	return u.String()
}

// PageURL addresses the zero-based listing page of a category
func PageURL(listingURL string, page int) string {
	return strings.TrimRight(listingURL, "/") + "/page/" + strconv.Itoa(page)
}
