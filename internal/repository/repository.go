package repository

import (
	"context"

	"cosme/crawler/internal/domain"
)

// RecordRepository is the sink the crawl streams product records into
type RecordRepository interface {
	SaveRecord(ctx context.Context, record domain.ProductRecord) error
	Close() error
}

const createTableSQL = `
CREATE TABLE IF NOT EXISTS product_records (
	pri_cat        TEXT NOT NULL,
	sec_cat        TEXT NOT NULL,
	ter_cat        TEXT NOT NULL,
	cate_url       TEXT NOT NULL,
	product        TEXT,
	brand          TEXT,
	price          TEXT,
	release_date   TEXT,
	comment_counts TEXT,
	evaluation     TEXT,
	pt_counts      TEXT,
	img_url        TEXT,
	pdct_url       TEXT,
	crawled_at     TIMESTAMP NOT NULL
)`

// recordArgs orders a record's values as the product_records columns;
// absent fields become NULL
func recordArgs(record domain.ProductRecord) []any {
	return []any{
		record.PrimaryCategory,
		record.SecondaryCategory,
		record.TertiaryCategory,
		record.CategoryURL,
		nullable(record.Product),
		nullable(record.Brand),
		nullable(record.Price),
		nullable(record.Release),
		nullable(record.CommentCount),
		nullable(record.Rating),
		nullable(record.PointCount),
		nullable(record.ImageURL),
		nullable(record.ProductURL),
	}
}

func nullable(f domain.Field) any {
	if !f.Present {
		return nil
	}
	return f.Value
}
