package fetch

import (
	"bytes"
	"context"
	"fmt"
	"net/url"
	"strings"
	"time"

	"github.com/mmcdole/gofeed"

	"github.com/cognicore/topicscan/internal/logger"
	"github.com/cognicore/topicscan/pkg/topicscan/config"
	"github.com/cognicore/topicscan/pkg/topicscan/model"
)

const (
	googleNewsBase = "https://news.google.com/rss/search"
	redditBase     = "https://www.reddit.com"
)

// feedRequest is one feed download. An empty detail means the feed's own
// title is used as source_detail.
type feedRequest struct {
	url    string
	detail string
	label  string
}

// feedReader downloads RSS/Atom feeds with pacing and URL de-duplication.
type feedReader struct {
	name   string
	deps   Deps
	pacer  *Pacer
	parser *gofeed.Parser
	log    logger.Logger
}

func newFeedReader(name string, cfg config.Source, deps Deps) feedReader {
	return feedReader{
		name:   name,
		deps:   deps,
		pacer:  NewPacer(rateLimit(cfg.RateLimit)),
		parser: gofeed.NewParser(),
		log:    logger.OrNop(deps.Log).With(logger.String("source", name)),
	}
}

func (r feedReader) Name() string { return r.name }

func (r feedReader) read(ctx context.Context, reqs []feedRequest) ([]model.Item, error) {
	seen := make(map[string]struct{})
	var items []model.Item

	for _, req := range reqs {
		if err := r.pacer.Wait(ctx); err != nil {
			return nil, err
		}
		feed, err := r.parse(ctx, req.url)
		if err != nil {
			r.log.Error("feed failed", logger.String("feed", req.label), logger.Error(err))
			continue
		}

		detail := req.detail
		if detail == "" {
			detail = feed.Title
			if detail == "" {
				detail = req.url
			}
		}

		for _, entry := range feed.Items {
			if _, dup := seen[entry.Link]; dup {
				continue
			}
			seen[entry.Link] = struct{}{}
			items = append(items, model.Item{
				Title:        entry.Title,
				Description:  entryDescription(entry),
				URL:          entry.Link,
				Source:       r.name,
				SourceDetail: detail,
				Published:    inUTC(entry.PublishedParsed),
			})
		}
	}

	r.log.Info("feeds read", logger.Int("items", len(items)), logger.Int("feeds", len(reqs)))
	return items, nil
}

func (r feedReader) parse(ctx context.Context, feedURL string) (*gofeed.Feed, error) {
	body, err := get(ctx, r.deps.client(), feedURL)
	if err != nil {
		return nil, err
	}
	feed, err := r.parser.Parse(bytes.NewReader(body))
	if err != nil {
		return nil, fmt.Errorf("parse feed: %w", err)
	}
	return feed, nil
}

// entryDescription prefers the summary; Atom feeds such as Reddit's carry
// the text only in content.
// inUTC copies t into UTC so exported dates carry no feed offset.
func inUTC(t *time.Time) *time.Time {
	if t == nil {
		return nil
	}
	u := t.UTC()
	return &u
}

func entryDescription(entry *gofeed.Item) string {
	if entry.Description != "" {
		return entry.Description
	}
	return entry.Content
}

func baseURL(cfg config.Source, def string) string {
	if cfg.BaseURL != "" {
		return strings.TrimRight(cfg.BaseURL, "/")
	}
	return def
}

// GoogleNews searches Google News RSS for each configured query.
type GoogleNews struct {
	feedReader
	queries []string
	base    string
}

func NewGoogleNews(cfg config.Source, deps Deps) *GoogleNews {
	return &GoogleNews{
		feedReader: newFeedReader("google_news", cfg, deps),
		queries:    cfg.Queries,
		base:       baseURL(cfg, googleNewsBase),
	}
}

func (g *GoogleNews) Fetch(ctx context.Context) ([]model.Item, error) {
	if len(g.queries) == 0 {
		g.log.Warn("no search queries configured")
		return nil, nil
	}
	reqs := make([]feedRequest, 0, len(g.queries))
	for _, q := range g.queries {
		reqs = append(reqs, feedRequest{
			url:    g.base + "?q=" + url.QueryEscape(q) + "&hl=en&gl=US&ceid=US:en",
			detail: q,
			label:  q,
		})
	}
	return g.read(ctx, reqs)
}

// Reddit reads subreddit listing feeds.
type Reddit struct {
	feedReader
	subreddits []string
	sort       string
	timeFilter string
	limit      int
	base       string
}

func NewReddit(cfg config.Source, deps Deps) *Reddit {
	r := &Reddit{
		feedReader: newFeedReader("reddit", cfg, deps),
		subreddits: cfg.Subreddits,
		sort:       cfg.Sort,
		timeFilter: cfg.TimeFilter,
		limit:      cfg.Limit,
		base:       baseURL(cfg, redditBase),
	}
	if r.sort == "" {
		r.sort = "top"
	}
	if r.timeFilter == "" {
		r.timeFilter = "week"
	}
	if r.limit == 0 {
		r.limit = 50
	}
	return r
}

func (r *Reddit) Fetch(ctx context.Context) ([]model.Item, error) {
	if len(r.subreddits) == 0 {
		r.log.Warn("no subreddits configured")
		return nil, nil
	}
	reqs := make([]feedRequest, 0, len(r.subreddits))
	for _, sub := range r.subreddits {
		reqs = append(reqs, feedRequest{
			url:    fmt.Sprintf("%s/r/%s/%s/.rss?t=%s&limit=%d", r.base, sub, r.sort, r.timeFilter, r.limit),
			detail: "r/" + sub,
			label:  "r/" + sub,
		})
	}
	return r.read(ctx, reqs)
}

// LinkedInRSS reads newsletter feeds. source_detail is the feed title.
type LinkedInRSS struct {
	feedReader
	urls []string
}

func NewLinkedInRSS(cfg config.Source, deps Deps) *LinkedInRSS {
	return &LinkedInRSS{
		feedReader: newFeedReader("linkedin_rss", cfg, deps),
		urls:       cfg.NewsletterURLs,
	}
}

func (l *LinkedInRSS) Fetch(ctx context.Context) ([]model.Item, error) {
	if len(l.urls) == 0 {
		l.log.Debug("no newsletter feeds configured")
		return nil, nil
	}
	reqs := make([]feedRequest, 0, len(l.urls))
	for _, u := range l.urls {
		reqs = append(reqs, feedRequest{url: u, label: u})
	}
	return l.read(ctx, reqs)
}
