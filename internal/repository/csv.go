package repository

import (
	"context"
	"encoding/csv"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"sync"
	"time"

	"cosme/crawler/internal/domain"

	log "github.com/sirupsen/logrus"
)

// CSVRepository writes records as rows of one CSV file, header first
type CSVRepository struct {
	mu     sync.Mutex
	out    io.WriteCloser
	writer *csv.Writer
	rows   int
}

// CSVFileName names the output of a run started at the given time
func CSVFileName(startedAt time.Time) string {
	return fmt.Sprintf("cosmeinfo%s.csv", startedAt.Format("20060102150405"))
}

func NewCSVFileRepository(dir string, startedAt time.Time, localizeHeaders bool) (*CSVRepository, error) {
	path := filepath.Join(dir, CSVFileName(startedAt))
	file, err := os.Create(path)
	if err != nil {
		return nil, fmt.Errorf("failed to create output file: %w", err)
	}

	repo, err := NewCSVRepository(file, localizeHeaders)
	if err != nil {
		file.Close()
		return nil, err
	}

	log.Infof("📝 Writing records to %s", path)
	return repo, nil
}

func NewCSVRepository(out io.WriteCloser, localizeHeaders bool) (*CSVRepository, error) {
	writer := csv.NewWriter(out)
	if err := writer.Write(domain.Header(localizeHeaders)); err != nil {
		return nil, fmt.Errorf("failed to write header: %w", err)
	}

	return &CSVRepository{
		out:    out,
		writer: writer,
	}, nil
}

func (r *CSVRepository) SaveRecord(_ context.Context, record domain.ProductRecord) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	if err := r.writer.Write(record.Row()); err != nil {
		return fmt.Errorf("failed to write record: %w", err)
	}
	r.rows++

	return nil
}

// Close flushes buffered rows and closes the underlying writer
func (r *CSVRepository) Close() error {
	r.mu.Lock()
	defer r.mu.Unlock()

	r.writer.Flush()
	if err := r.writer.Error(); err != nil {
		r.out.Close()
		return fmt.Errorf("failed to flush records: %w", err)
	}

	log.Debugf("Flushed %d rows", r.rows)
	return r.out.Close()
}
