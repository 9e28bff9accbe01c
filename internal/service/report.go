package service

import (
	"fmt"
	"time"

	"cosme/crawler/internal/domain"

	log "github.com/sirupsen/logrus"
)

// Stage names the scope a failure was recovered at
type Stage string

const (
	StageCategory   Stage = "category"   // category path has no URL to crawl
	StagePagination Stage = "pagination" // page count could not be resolved
	StagePage       Stage = "page"       // one listing page failed to fetch
)

// Failure identifies one skipped category or page and why
type Failure struct {
	Stage Stage
	Path  domain.CategoryPath
	URL   string
	Page  int
	Err   error
}

func (f Failure) Error() string {
	if f.Stage == StagePage {
		return fmt.Sprintf("[%s] %s page %d (%s): %v", f.Stage, f.Path, f.Page, f.URL, f.Err)
	}
	return fmt.Sprintf("[%s] %s (%s): %v", f.Stage, f.Path, f.URL, f.Err)
}

func (f Failure) Unwrap() error {
	return f.Err
}

// Report summarizes a run: what was crawled and what was skipped
type Report struct {
	StartedAt  time.Time
	FinishedAt time.Time

	Categories       int
	CategoriesFailed int
	Pages            int
	PagesFailed      int
	SkippedSections  int
	Extracted        int
	Saved            int

	Failures []Failure
}

func (r *Report) fail(f Failure) {
	switch f.Stage {
	case StagePage:
		r.PagesFailed++
	default:
		r.CategoriesFailed++
	}
	r.Failures = append(r.Failures, f)
}

// Log writes the run summary and every reported failure
func (r *Report) Log() {
	for _, f := range r.Failures {
		log.Warnf("⚠️ Skipped %s", f.Error())
	}

	log.WithFields(log.Fields{
		"categories":        r.Categories,
		"categories_failed": r.CategoriesFailed,
		"pages":             r.Pages,
		"pages_failed":      r.PagesFailed,
		"skipped_sections":  r.SkippedSections,
		"extracted":         r.Extracted,
		"saved":             r.Saved,
		"duration":          r.FinishedAt.Sub(r.StartedAt).Round(time.Second),
	}).Info("📊 Crawl finished")
}
