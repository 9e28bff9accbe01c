package service

import (
	"context"
	"errors"
	"fmt"
	"iter"
	"strings"
	"time"

	"cosme/crawler/internal/client"
	"cosme/crawler/internal/domain"
	"cosme/crawler/internal/repository"

	log "github.com/sirupsen/logrus"
)

// AllCategories selects every primary category
const AllCategories = "all"

var (
	ErrUnknownCategory  = errors.New("unknown primary category")
	ErrUnresolvablePath = errors.New("category has no URL to crawl")
)

type Service struct {
	client          client.CatalogClient
	landingURL      string
	categoryRetries int
}

func NewService(client client.CatalogClient, landingURL string, categoryRetries int) *Service {
	return &Service{
		client:          client,
		landingURL:      landingURL,
		categoryRetries: categoryRetries,
	}
}

// Run crawls the selected primary category (or all of them) and saves every
// extracted record. Only a taxonomy failure, an unknown selection or a
// failing repository end the run early; everything else is reported
func (s *Service) Run(ctx context.Context, selected string, repo repository.RecordRepository) (*Report, error) {
	report := &Report{StartedAt: time.Now()}
	defer func() { report.FinishedAt = time.Now() }()

	paths, err := s.Paths(ctx, selected)
	if err != nil {
		return report, err
	}

	log.Infof("🔄 Crawling %d categories", len(paths))

	for record := range s.Records(ctx, paths, report) {
		if err := repo.SaveRecord(ctx, record); err != nil {
			return report, fmt.Errorf("failed to save record: %w", err)
		}
		report.Saved++
	}

	if err := ctx.Err(); err != nil {
		return report, fmt.Errorf("crawl interrupted: %w", err)
	}

	return report, nil
}

// Paths builds the taxonomy and flattens the selected part of it
func (s *Service) Paths(ctx context.Context, selected string) ([]domain.CategoryPath, error) {
	selected = strings.TrimSpace(selected)
	if strings.EqualFold(selected, AllCategories) {
		selected = ""
	}

	taxonomy, err := s.client.GetTaxonomy(ctx, s.landingURL)
	if err != nil {
		return nil, err
	}

	if selected != "" {
		if _, ok := taxonomy.Lookup(selected); !ok {
			return nil, fmt.Errorf("%w: %q (known: %s)", ErrUnknownCategory, selected, strings.Join(taxonomy.Names(), ", "))
		}
	}

	return taxonomy.Paths(selected), nil
}

// Records streams the records of every path in taxonomy order. Categories are
// crawled one at a time; failures are added to report and the stream moves on
func (s *Service) Records(ctx context.Context, paths []domain.CategoryPath, report *Report) iter.Seq[domain.ProductRecord] {
	return func(yield func(domain.ProductRecord) bool) {
		for _, path := range paths {
			if ctx.Err() != nil {
				return
			}
			for _, record := range s.crawlCategory(ctx, path, report) {
				if !yield(record) {
					return
				}
			}
		}
	}
}

func (s *Service) crawlCategory(ctx context.Context, path domain.CategoryPath, report *Report) []domain.ProductRecord {
	report.Categories++

	if path.CategoryURL == "" {
		log.Errorf("❌ Category %s has no URL", path)
		report.fail(Failure{Stage: StageCategory, Path: path, Err: ErrUnresolvablePath})
		return nil
	}

	start := time.Now()
	listingURL := client.ListingURL(path.CategoryURL)
	log.Infof("🔄 Processing category: %s", path)

	pageCount, err := s.pageCount(ctx, listingURL)
	if err != nil {
		log.Errorf("❌ Failed to resolve pages for %s: %v", path, err)
		report.fail(Failure{Stage: StagePagination, Path: path, URL: listingURL, Err: err})
		return nil
	}

	var records []domain.ProductRecord
	for _, page := range s.client.GetListingPages(ctx, listingURL, pageCount) {
		report.Pages++
		if !page.OK() {
			report.fail(Failure{Stage: StagePage, Path: path, URL: page.URL, Page: page.Page, Err: page.Err})
			continue
		}

		extracted, skipped := s.client.ExtractRecords(page.Doc)
		report.SkippedSections += skipped
		for _, record := range extracted {
			records = append(records, record.WithPath(path))
		}
	}
	report.Extracted += len(records)

	log.Infof("✅ Completed %s: %d pages, %d records in %v",
		path, pageCount, len(records), time.Since(start).Round(time.Millisecond))
	return records
}

func (s *Service) pageCount(ctx context.Context, listingURL string) (int, error) {
	var err error
	for attempt := 0; attempt <= s.categoryRetries; attempt++ {
		var pages int
		pages, err = s.client.GetPageCount(ctx, listingURL)
		if err == nil {
			return pages, nil
		}
		if attempt < s.categoryRetries {
			log.Warnf("🔄 Retrying pagination for %s (attempt %d): %v", listingURL, attempt+1, err)
		}
	}
	return 0, err
}
