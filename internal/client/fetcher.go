package client

import (
	"context"
	"errors"
	"fmt"
	"net"
	"strings"
	"time"

	"cosme/crawler/internal/config"
	"cosme/crawler/internal/proxy"

	"github.com/PuerkitoBio/goquery"
	log "github.com/sirupsen/logrus"
	"go.uber.org/ratelimit"
	"golang.org/x/net/html/charset"
	"resty.dev/v3"
)

// Fetcher retrieves and parses one document. Every failure is a *FetchError
type Fetcher interface {
	Fetch(ctx context.Context, url string) (*goquery.Document, error)
}

// HTTPFetcher fetches documents over HTTP with resty
type HTTPFetcher struct {
	rl         ratelimit.Limiter
	baseURL    string
	httpClient *resty.Client
}

func NewHTTPFetcher(cfg config.CrawlerConfig, proxySupplier proxy.ProxySupplier) *HTTPFetcher {
	client := resty.New().
		SetTimeout(time.Duration(cfg.Timeout)*time.Second).
		SetRetryCount(cfg.MaxRetries).
		SetRetryWaitTime(2*time.Second).
		SetRetryMaxWaitTime(10*time.Second).
		SetHeader("User-Agent", cfg.UserAgent).
		SetHeader("Accept", "text/html,application/xhtml+xml,application/xml;q=0.9,*/*;q=0.8").
		SetHeader("Accept-Language", "ja,en-US;q=0.7,en;q=0.3")

	if proxySupplier != nil {
		if proxyURL := proxySupplier.Get(); proxyURL != "" {
			client.SetProxy(proxyURL)
			log.Infof("🔗 Using proxy: %s", proxyURL)
		}
	}

	rl := ratelimit.NewUnlimited()
	if cfg.MaxRequestsPerSecond > 0 {
		rl = ratelimit.New(cfg.MaxRequestsPerSecond)
	}

	return &HTTPFetcher{
		rl:         rl,
		baseURL:    cfg.BaseURL,
		httpClient: client,
	}
}

// Fetch GETs url (resolved against the base URL when relative) and parses the body as HTML
func (f *HTTPFetcher) Fetch(ctx context.Context, url string) (*goquery.Document, error) {
	url = ResolveURL(f.baseURL, url)

	log.Debugf("start: %s", url)
	start := time.Now()
	defer func() {
		log.Debugf("end: %s (%v)", url, time.Since(start).Round(time.Millisecond))
	}()

	f.rl.Take()

	resp, err := f.httpClient.R().
		SetContext(ctx).
		Get(url)
	if err != nil {
		if isTimeout(err) {
			return nil, newFetchError(KindTimeout, url, err)
		}
		if ctx.Err() != nil {
			return nil, newFetchError(KindNetwork, url, fmt.Errorf("request cancelled: %w", ctx.Err()))
		}
		return nil, newFetchError(KindNetwork, url, err)
	}

	if resp.IsError() {
		return nil, newFetchError(KindStatus, url, fmt.Errorf("HTTP error: %s", resp.Status()))
	}

	body, err := charset.NewReader(strings.NewReader(resp.String()), resp.Header().Get("Content-Type"))
	if err != nil {
		return nil, newFetchError(KindParse, url, fmt.Errorf("failed to decode body: %w", err))
	}

	doc, err := goquery.NewDocumentFromReader(body)
	if err != nil {
		return nil, newFetchError(KindParse, url, fmt.Errorf("failed to parse HTML: %w", err))
	}

	return doc, nil
}

// Close releases the underlying HTTP client
func (f *HTTPFetcher) Close() error {
	return f.httpClient.Close()
}

func isTimeout(err error) bool {
	if errors.Is(err, context.DeadlineExceeded) {
		return true
	}
	var netErr net.Error
	return errors.As(err, &netErr) && netErr.Timeout()
}
