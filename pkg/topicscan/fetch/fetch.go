// Package fetch pulls items from news feeds, Reddit, HackerNews and Google
// Trends.
package fetch

import (
	"context"
	"fmt"
	"io"
	"net/http"
	"time"

	"golang.org/x/time/rate"

	"github.com/cognicore/topicscan/internal/logger"
	"github.com/cognicore/topicscan/pkg/topicscan/model"
)

const (
	defaultRateLimit = 2 * time.Second
	userAgent        = "LinkedInTopicScanner/0.1"
)

// Fetcher downloads items from one source. Per-query failures are logged
// and skipped; an error means the source produced nothing usable.
type Fetcher interface {
	Name() string
	Fetch(ctx context.Context) ([]model.Item, error)
}

// Pacer enforces a minimum delay between successive requests. The first
// request is never delayed.
type Pacer struct {
	limiter *rate.Limiter
}

// NewPacer returns a Pacer allowing one request per interval. A
// non-positive interval disables pacing.
func NewPacer(interval time.Duration) *Pacer {
	if interval <= 0 {
		return &Pacer{limiter: rate.NewLimiter(rate.Inf, 1)}
	}
	return &Pacer{limiter: rate.NewLimiter(rate.Every(interval), 1)}
}

// Wait blocks until the next request may be sent.
func (p *Pacer) Wait(ctx context.Context) error {
	return p.limiter.Wait(ctx)
}

// rateLimit converts the configured seconds, falling back to the default
// when unset.
func rateLimit(seconds float64) time.Duration {
	if seconds == 0 {
		return defaultRateLimit
	}
	return time.Duration(seconds * float64(time.Second))
}

// Deps are the collaborators shared by every fetcher.
type Deps struct {
	Client *http.Client
	Log    logger.Logger
}

func (d Deps) client() *http.Client {
	if d.Client != nil {
		return d.Client
	}
	return &http.Client{Timeout: 30 * time.Second}
}

// get performs a GET and returns the body of a 2xx response.
func get(ctx context.Context, client *http.Client, url string) ([]byte, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, url, nil)
	if err != nil {
		return nil, fmt.Errorf("build request: %w", err)
	}
	req.Header.Set("User-Agent", userAgent)

	resp, err := client.Do(req)
	if err != nil {
		return nil, fmt.Errorf("get %s: %w", url, err)
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		return nil, fmt.Errorf("get %s: status %d", url, resp.StatusCode)
	}
	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, fmt.Errorf("read %s: %w", url, err)
	}
	return body, nil
}

// Cache filters items already seen in a previous run of a source.
type Cache interface {
	FilterNew(ctx context.Context, items []model.Item, source string) []model.Item
	Update(ctx context.Context, source string) error
}

// Result is the outcome of fetching every source.
type Result struct {
	Items       []model.Item
	SourcesUsed []string
	Fetched     map[string]int
	Skipped     map[string]int
}

// FetchAll runs fetchers in order. A failing fetcher is logged and left
// out of SourcesUsed. When cache is non-nil, items older than the source's
// previous run are dropped and the run time recorded. maxPerSource caps
// the items kept per source when positive.
func FetchAll(ctx context.Context, fetchers []Fetcher, cache Cache, maxPerSource int, log logger.Logger) Result {
	log = logger.OrNop(log)
	res := Result{Fetched: map[string]int{}, Skipped: map[string]int{}}

	for _, f := range fetchers {
		if ctx.Err() != nil {
			log.Warn("fetch interrupted", logger.Error(ctx.Err()))
			break
		}
		name := f.Name()
		start := time.Now()

		items, err := f.Fetch(ctx)
		if err != nil {
			log.Error("fetcher failed", logger.String("source", name), logger.Error(err))
			continue
		}

		if cache != nil {
			before := len(items)
			items = cache.FilterNew(ctx, items, name)
			res.Skipped[name] = before - len(items)
			if err := cache.Update(ctx, name); err != nil {
				log.Warn("fetch cache update failed", logger.String("source", name), logger.Error(err))
			}
		}
		if maxPerSource > 0 && len(items) > maxPerSource {
			items = items[:maxPerSource]
		}

		res.Items = append(res.Items, items...)
		res.SourcesUsed = append(res.SourcesUsed, name)
		res.Fetched[name] = len(items)
		log.Info("source fetched",
			logger.String("source", name),
			logger.Int("items", len(items)),
			logger.Int("skipped", res.Skipped[name]),
			logger.Duration("took", time.Since(start)))
	}
	return res
}
