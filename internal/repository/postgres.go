package repository

import (
	"context"
	"fmt"
	"time"

	"cosme/crawler/internal/domain"

	"github.com/jackc/pgx/v5/pgconn"
	"github.com/jackc/pgx/v5/pgxpool"
)

type execer interface {
	Exec(ctx context.Context, sql string, arguments ...any) (pgconn.CommandTag, error)
}

type PostgresRepository struct {
	db    execer
	close func()
	now   func() time.Time
}

func NewPostgresRepository(db *pgxpool.Pool) *PostgresRepository {
	return &PostgresRepository{
		db:    db,
		close: db.Close,
		now:   time.Now,
	}
}

// EnsureSchema creates the product_records table when missing
func (r *PostgresRepository) EnsureSchema(ctx context.Context) error {
	if _, err := r.db.Exec(ctx, createTableSQL); err != nil {
		return fmt.Errorf("failed to create product_records table: %w", err)
	}
	return nil
}

func (r *PostgresRepository) SaveRecord(ctx context.Context, record domain.ProductRecord) error {
	query := `
	INSERT INTO product_records (pri_cat, sec_cat, ter_cat, cate_url, product, brand, price,
		release_date, comment_counts, evaluation, pt_counts, img_url, pdct_url, crawled_at)
	VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12, $13, $14)`

	args := append(recordArgs(record), r.now())
	if _, err := r.db.Exec(ctx, query, args...); err != nil {
		return fmt.Errorf("failed to save record: %w", err)
	}

	return nil
}

func (r *PostgresRepository) Close() error {
	if r.close != nil {
		r.close()
	}
	return nil
}
