package client

import (
	"context"
	"fmt"
	"sync/atomic"

	"cosme/crawler/internal/config"
	"cosme/crawler/internal/domain"

	"github.com/PuerkitoBio/goquery"
	log "github.com/sirupsen/logrus"
	"golang.org/x/sync/errgroup"
)

// MaxConcurrency caps in-flight listing page fetches; configuration can only lower it
const MaxConcurrency = config.MaxConcurrency

type CatalogClient interface {
	GetTaxonomy(ctx context.Context, landingURL string) (*domain.Taxonomy, error)
	GetPageCount(ctx context.Context, listingURL string) (int, error)
	GetListingPages(ctx context.Context, listingURL string, pageCount int) []PageResult
	ExtractRecords(doc *goquery.Document) ([]domain.ProductRecord, int)
}

// PageResult is the outcome of fetching one listing page: a document or an error
type PageResult struct {
	Page int
	URL  string
	Doc  *goquery.Document
	Err  error
}

func (r PageResult) OK() bool {
	return r.Err == nil && r.Doc != nil
}

type CosmeClient struct {
	fetcher        Fetcher
	parser         *CatalogParser
	itemsPerPage   int
	maxConcurrency int
}

func NewCosmeClient(cfg config.CrawlerConfig, fetcher Fetcher) *CosmeClient {
	itemsPerPage := cfg.ItemsPerPage
	if itemsPerPage < 1 {
		itemsPerPage = DefaultItemsPerPage
	}
	maxConcurrency := cfg.MaxConcurrency
	if maxConcurrency < 1 || maxConcurrency > MaxConcurrency {
		maxConcurrency = MaxConcurrency
	}

	return &CosmeClient{
		fetcher:        fetcher,
		parser:         NewCatalogParser(cfg.BaseURL),
		itemsPerPage:   itemsPerPage,
		maxConcurrency: maxConcurrency,
	}
}

func (c *CosmeClient) GetTaxonomy(ctx context.Context, landingURL string) (*domain.Taxonomy, error) {
	doc, err := c.fetcher.Fetch(ctx, landingURL)
	if err != nil {
		return nil, fmt.Errorf("failed to fetch landing page: %w", err)
	}

	taxonomy, err := c.parser.BuildTaxonomy(doc)
	if err != nil {
		return nil, fmt.Errorf("failed to build category taxonomy: %w", err)
	}

	return taxonomy, nil
}

// GetPageCount fetches the first listing page and derives the number of pages
func (c *CosmeClient) GetPageCount(ctx context.Context, listingURL string) (int, error) {
	doc, err := c.fetcher.Fetch(ctx, listingURL)
	if err != nil {
		return 0, fmt.Errorf("failed to fetch first listing page: %w", err)
	}

	total, err := c.parser.ItemCount(doc)
	if err != nil {
		return 0, fmt.Errorf("failed to resolve pagination for %s: %w", listingURL, err)
	}

	pages := PageCount(total, c.itemsPerPage)
	log.Debugf("%s: %d items over %d pages", listingURL, total, pages)
	return pages, nil
}

func (c *CosmeClient) GetListingPages(ctx context.Context, listingURL string, pageCount int) []PageResult {
	return FetchPages(ctx, c.fetcher, listingURL, pageCount, c.maxConcurrency)
}

func (c *CosmeClient) ExtractRecords(doc *goquery.Document) ([]domain.ProductRecord, int) {
	return c.parser.ExtractRecords(doc)
}

// FetchPages fetches pages [0, pageCount) of a listing with at most limit
// requests in flight, never more than MaxConcurrency. Every page is issued
// regardless of sibling failures and result i always belongs to page i
func FetchPages(ctx context.Context, fetcher Fetcher, listingURL string, pageCount, limit int) []PageResult {
	if pageCount <= 0 {
		return []PageResult{}
	}
	if limit < 1 {
		limit = 1
	}
	if limit > MaxConcurrency {
		limit = MaxConcurrency
	}

	results := make([]PageResult, pageCount)
	var failed atomic.Int32

	g := new(errgroup.Group)
	g.SetLimit(limit)

	for page := 0; page < pageCount; page++ {
		pageURL := PageURL(listingURL, page)
		g.Go(func() error {
			doc, err := fetcher.Fetch(ctx, pageURL)
			if err != nil {
				failed.Add(1)
				log.Warnf("❌ Failed to fetch page %d of %s: %v", page, listingURL, err)
			}
			results[page] = PageResult{Page: page, URL: pageURL, Doc: doc, Err: err}
			// page failures live in their slot, never in the group error
			return nil
		})
	}

	_ = g.Wait()

	if n := failed.Load(); n > 0 {
		log.Warnf("⚠️ %d of %d pages failed for %s", n, pageCount, listingURL)
	}
	return results
}
