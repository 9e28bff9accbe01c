package client

import (
	"context"
	"errors"
	"strings"
	"sync"
	"sync/atomic"
	"time"

	"github.com/PuerkitoBio/goquery"
)

// MockFetcher serves canned HTML by URL and counts concurrent calls
type MockFetcher struct {
	mu    sync.Mutex
	pages map[string]string
	fails map[string]bool
	calls []string

	delay       time.Duration
	inFlight    atomic.Int32
	maxInFlight atomic.Int32
}

func NewMockFetcher() *MockFetcher {
	return &MockFetcher{
		pages: make(map[string]string),
		fails: make(map[string]bool),
	}
}

func (m *MockFetcher) Fetch(ctx context.Context, url string) (*goquery.Document, error) {
	current := m.inFlight.Add(1)
	defer m.inFlight.Add(-1)
	for {
		seen := m.maxInFlight.Load()
		if current <= seen || m.maxInFlight.CompareAndSwap(seen, current) {
			break
		}
	}

	if m.delay > 0 {
		time.Sleep(m.delay)
	}

	m.mu.Lock()
	m.calls = append(m.calls, url)
	html, ok := m.pages[url]
	fail := m.fails[url]
	m.mu.Unlock()

	if fail {
		return nil, newFetchError(KindNetwork, url, errors.New("connection reset"))
	}
	if !ok {
		return nil, newFetchError(KindStatus, url, errors.New("HTTP error: 404 Not Found"))
	}
	doc, err := goquery.NewDocumentFromReader(strings.NewReader(html))
	if err != nil {
		return nil, newFetchError(KindParse, url, err)
	}
	return doc, nil
}

func (m *MockFetcher) Calls() []string {
	m.mu.Lock()
	defer m.mu.Unlock()
	return append([]string(nil), m.calls...)
}

func mustDocument(html string) *goquery.Document {
	doc, err := goquery.NewDocumentFromReader(strings.NewReader(html))
	if err != nil {
		panic(err)
	}
	return doc
}
