package proxy

import (
	"context"
	"sync"
	"time"

	log "github.com/sirupsen/logrus"
	"golang.org/x/sync/errgroup"
	"resty.dev/v3"
)

// maxParallelProbes bounds concurrent proxy checks at startup
const maxParallelProbes = 20

// ProxySupplier hands out proxies in round-robin order
type ProxySupplier interface {
	Get() string
}

// Prober reports whether testURL is reachable through proxyURL
type Prober func(ctx context.Context, proxyURL, testURL string) bool

type proxySupplier struct {
	proxies []string
	current int
	mutex   sync.Mutex
}

// NewProxySupplier keeps the proxies that can reach testURL, in configured order
func NewProxySupplier(ctx context.Context, proxies []string, testURL string) ProxySupplier {
	return newProxySupplier(ctx, proxies, testURL, isProxyValid)
}

func newProxySupplier(ctx context.Context, proxies []string, testURL string, probe Prober) *proxySupplier {
	if len(proxies) == 0 {
		return &proxySupplier{}
	}

	log.Infof("🔄 Testing %d proxies against %s...", len(proxies), testURL)

	working := make([]bool, len(proxies))
	g := new(errgroup.Group)
	g.SetLimit(maxParallelProbes)

	for i, proxyURL := range proxies {
		g.Go(func() error {
			working[i] = probe(ctx, proxyURL, testURL)
			if working[i] {
				log.Infof("✅ Proxy %s is working", proxyURL)
			} else {
				log.Infof("❌ Proxy %s is not working, skipping", proxyURL)
			}
			return nil
		})
	}
	_ = g.Wait()

	valid := make([]string, 0, len(proxies))
	for i, proxyURL := range proxies {
		if working[i] {
			valid = append(valid, proxyURL)
		}
	}

	log.Infof("✅ Proxy supplier initialized with %d working proxies out of %d", len(valid), len(proxies))
	return &proxySupplier{proxies: valid}
}

// Get returns the next proxy URL, or "" when none is usable
func (p *proxySupplier) Get() string {
	p.mutex.Lock()
	defer p.mutex.Unlock()

	if len(p.proxies) == 0 {
		return ""
	}

	proxy := p.proxies[p.current]
	p.current = (p.current + 1) % len(p.proxies)

	return proxy
}

func isProxyValid(ctx context.Context, proxyURL, testURL string) bool {
	client := resty.New().
		SetTimeout(5 * time.Second).
		SetRetryCount(0).
		SetProxy(proxyURL)
	defer client.Close()

	resp, err := client.R().
		SetContext(ctx).
		Get(testURL)
	if err != nil {
		log.Debugf("Proxy test failed for %s: %v", proxyURL, err)
		return false
	}

	if resp.IsError() {
		log.Debugf("Proxy test failed for %s with status: %s", proxyURL, resp.Status())
		return false
	}

	return true
}
