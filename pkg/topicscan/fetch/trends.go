package fetch

import (
	"context"
	"strconv"
	"strings"
	"time"

	"github.com/mmcdole/gofeed"
	ext "github.com/mmcdole/gofeed/extensions"

	"github.com/cognicore/topicscan/internal/logger"
	"github.com/cognicore/topicscan/pkg/topicscan/config"
	"github.com/cognicore/topicscan/pkg/topicscan/model"
)

const googleTrendsBase = "https://trends.google.com/trending/rss"

// GoogleTrends reads the daily trending searches feed. Each entry is one
// search term; its approximate traffic becomes the item score.
type GoogleTrends struct {
	feedReader
	geo  string
	base string
	now  func() time.Time
}

func NewGoogleTrends(cfg config.Source, deps Deps) *GoogleTrends {
	g := &GoogleTrends{
		feedReader: newFeedReader("google_trends", cfg, deps),
		geo:        cfg.Geo,
		base:       baseURL(cfg, googleTrendsBase),
		now:        time.Now,
	}
	if g.geo == "" {
		g.geo = "US"
	}
	return g
}

func (g *GoogleTrends) Fetch(ctx context.Context) ([]model.Item, error) {
	if err := g.pacer.Wait(ctx); err != nil {
		return nil, err
	}
	feed, err := g.parse(ctx, g.base+"?geo="+g.geo)
	if err != nil {
		g.log.Warn("trending searches failed", logger.Error(err))
		return nil, nil
	}

	now := g.now().UTC()
	items := make([]model.Item, 0, len(feed.Items))
	for _, entry := range feed.Items {
		term := strings.TrimSpace(entry.Title)
		if term == "" {
			continue
		}
		published := inUTC(entry.PublishedParsed)
		if published == nil {
			published = &now
		}
		items = append(items, model.Item{
			Title:        term,
			Description:  "Trending search: " + term,
			URL:          newsURL(entry),
			Source:       g.name,
			SourceDetail: "trending_searches",
			Published:    published,
			Score:        approxTraffic(entry),
		})
	}

	g.log.Info("trending searches read", logger.Int("items", len(items)))
	return items, nil
}

func trendsExt(entry *gofeed.Item, name string) []ext.Extension {
	if entry.Extensions == nil {
		return nil
	}
	return entry.Extensions["ht"][name]
}

// approxTraffic parses ht:approx_traffic values such as "2,000+".
func approxTraffic(entry *gofeed.Item) int {
	vals := trendsExt(entry, "approx_traffic")
	if len(vals) == 0 {
		return 0
	}
	digits := strings.NewReplacer(",", "", "+", "", " ", "").Replace(vals[0].Value)
	n, err := strconv.Atoi(digits)
	if err != nil {
		return 0
	}
	return n
}

// newsURL returns the first related article link, falling back to the
// entry link.
func newsURL(entry *gofeed.Item) string {
	for _, news := range trendsExt(entry, "news_item") {
		if urls := news.Children["news_item_url"]; len(urls) > 0 && urls[0].Value != "" {
			return urls[0].Value
		}
	}
	return entry.Link
}
