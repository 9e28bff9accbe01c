package client

import (
	"context"
	"net/http"
	"net/http/httptest"
	"sync/atomic"
	"testing"
	"time"

	"cosme/crawler/internal/config"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newTestFetcher(t *testing.T, baseURL string, timeout int) *HTTPFetcher {
	t.Helper()
	f := NewHTTPFetcher(config.CrawlerConfig{
		BaseURL:   baseURL,
		Timeout:   timeout,
		UserAgent: "test-agent",
	}, nil)
	t.Cleanup(func() { f.Close() })
	return f
}

func TestHTTPFetcherFetch(t *testing.T) {
	var userAgent atomic.Value
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		userAgent.Store(r.Header.Get("User-Agent"))
		switch r.URL.Path {
		case "/ok":
			w.Header().Set("Content-Type", "text/html; charset=utf-8")
			w.Write([]byte(`<html><body><h1>スキンケア</h1></body></html>`))
		case "/sjis":
			w.Header().Set("Content-Type", "text/html; charset=shift_jis")
			// "化粧" in Shift_JIS
			w.Write([]byte("<html><body><h1>\x89\xbb\x8f\xcf</h1></body></html>"))
		default:
			http.Error(w, "gone", http.StatusInternalServerError)
		}
	}))
	defer server.Close()

	f := newTestFetcher(t, server.URL, 5)

	doc, err := f.Fetch(context.Background(), server.URL+"/ok")
	require.NoError(t, err)
	assert.Equal(t, "スキンケア", doc.Find("h1").Text())
	assert.Equal(t, "test-agent", userAgent.Load())

	doc, err = f.Fetch(context.Background(), "/sjis")
	require.NoError(t, err)
	assert.Equal(t, "化粧", doc.Find("h1").Text())

	_, err = f.Fetch(context.Background(), server.URL+"/error")
	require.Error(t, err)
	assert.True(t, IsFetchKind(err, KindStatus))
}

func TestHTTPFetcherNetworkFailure(t *testing.T) {
	server := httptest.NewServer(http.NotFoundHandler())
	url := server.URL
	server.Close()

	f := newTestFetcher(t, url, 2)

	_, err := f.Fetch(context.Background(), url+"/page/0")
	require.Error(t, err)

	var fetchErr *FetchError
	require.ErrorAs(t, err, &fetchErr)
	assert.Equal(t, url+"/page/0", fetchErr.URL)
	assert.Contains(t, []FetchErrorKind{KindNetwork, KindTimeout}, fetchErr.Kind)
}

func TestHTTPFetcherTimeout(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		select {
		case <-time.After(3 * time.Second):
		case <-r.Context().Done():
		}
	}))
	defer server.Close()

	f := newTestFetcher(t, server.URL, 1)

	_, err := f.Fetch(context.Background(), server.URL+"/slow")
	require.Error(t, err)
	assert.True(t, IsFetchKind(err, KindTimeout), err.Error())
}
