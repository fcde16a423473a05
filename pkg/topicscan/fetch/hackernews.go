package fetch

import (
	"context"
	"encoding/json"
	"fmt"
	"strings"
	"time"

	"github.com/cognicore/topicscan/internal/logger"
	"github.com/cognicore/topicscan/pkg/topicscan/config"
	"github.com/cognicore/topicscan/pkg/topicscan/model"
)

const (
	hackerNewsBase    = "https://hacker-news.firebaseio.com/v0"
	hackerNewsItem    = "https://news.ycombinator.com/item?id=%d"
	hackerNewsTimeout = 10 * time.Second
)

type hnStory struct {
	ID    int    `json:"id"`
	Type  string `json:"type"`
	Title string `json:"title"`
	URL   string `json:"url"`
	Score int    `json:"score"`
	Time  *int64 `json:"time"`
}

// HackerNews reads top stories from the Firebase API and keeps those whose
// title mentions a relevance keyword.
type HackerNews struct {
	deps       Deps
	pacer      *Pacer
	base       string
	maxStories int
	keywords   []string
	log        logger.Logger
}

func NewHackerNews(cfg config.Source, deps Deps) *HackerNews {
	h := &HackerNews{
		deps:       deps,
		pacer:      NewPacer(rateLimit(cfg.RateLimit)),
		base:       baseURL(cfg, hackerNewsBase),
		maxStories: cfg.MaxStories,
		log:        logger.OrNop(deps.Log).With(logger.String("source", "hackernews")),
	}
	if h.maxStories == 0 {
		h.maxStories = 200
	}
	for _, kw := range cfg.RelevanceKeywords {
		h.keywords = append(h.keywords, strings.ToLower(kw))
	}
	return h
}

func (h *HackerNews) Name() string { return "hackernews" }

func (h *HackerNews) Fetch(ctx context.Context) ([]model.Item, error) {
	var ids []int
	if err := h.getJSON(ctx, h.base+"/topstories.json", &ids); err != nil {
		return nil, fmt.Errorf("top stories: %w", err)
	}
	ids = ids[:min(h.maxStories, len(ids))]

	var items []model.Item
	for _, id := range ids {
		if err := h.pacer.Wait(ctx); err != nil {
			return nil, err
		}

		var story *hnStory
		if err := h.getJSON(ctx, fmt.Sprintf("%s/item/%d.json", h.base, id), &story); err != nil {
			h.log.Debug("story failed", logger.Int("id", id), logger.Error(err))
			continue
		}
		if story == nil || story.Type != "story" || !h.relevant(story.Title) {
			continue
		}

		item := model.Item{
			Title:        story.Title,
			URL:          story.URL,
			Source:       h.Name(),
			SourceDetail: "hackernews",
			Score:        story.Score,
		}
		if item.URL == "" {
			item.URL = fmt.Sprintf(hackerNewsItem, id)
		}
		if story.Time != nil {
			published := time.Unix(*story.Time, 0).UTC()
			item.Published = &published
		}
		items = append(items, item)
	}

	h.log.Info("stories read", logger.Int("relevant", len(items)), logger.Int("stories", len(ids)))
	return items, nil
}

func (h *HackerNews) relevant(title string) bool {
	if len(h.keywords) == 0 {
		return true
	}
	lower := strings.ToLower(title)
	for _, kw := range h.keywords {
		if strings.Contains(lower, kw) {
			return true
		}
	}
	return false
}

func (h *HackerNews) getJSON(ctx context.Context, url string, dst any) error {
	ctx, cancel := context.WithTimeout(ctx, hackerNewsTimeout)
	defer cancel()

	body, err := get(ctx, h.deps.client(), url)
	if err != nil {
		return err
	}
	if err := json.Unmarshal(body, dst); err != nil {
		return fmt.Errorf("decode %s: %w", url, err)
	}
	return nil
}
