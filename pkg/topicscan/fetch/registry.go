package fetch

import (
	"github.com/cognicore/topicscan/internal/logger"
	"github.com/cognicore/topicscan/pkg/topicscan/config"
)

// Constructor builds a fetcher from its source settings.
type Constructor func(cfg config.Source, deps Deps) Fetcher

// Registry maps source names to constructors and fixes the order in which
// sources are fetched.
type Registry struct {
	order []string
	ctors map[string]Constructor
}

// NewRegistry returns an empty registry.
func NewRegistry() *Registry {
	return &Registry{ctors: make(map[string]Constructor)}
}

// DefaultRegistry knows every built-in source.
func DefaultRegistry() *Registry {
	r := NewRegistry()
	r.Register("google_news", func(c config.Source, d Deps) Fetcher { return NewGoogleNews(c, d) })
	r.Register("reddit", func(c config.Source, d Deps) Fetcher { return NewReddit(c, d) })
	r.Register("hackernews", func(c config.Source, d Deps) Fetcher { return NewHackerNews(c, d) })
	r.Register("google_trends", func(c config.Source, d Deps) Fetcher { return NewGoogleTrends(c, d) })
	r.Register("linkedin_rss", func(c config.Source, d Deps) Fetcher { return NewLinkedInRSS(c, d) })
	return r
}

// Register adds or replaces a source. New names are appended to the order.
func (r *Registry) Register(name string, ctor Constructor) {
	if _, ok := r.ctors[name]; !ok {
		r.order = append(r.order, name)
	}
	r.ctors[name] = ctor
}

// Names lists registered sources in fetch order.
func (r *Registry) Names() []string {
	return append([]string(nil), r.order...)
}

// Build creates fetchers for every registered source that is enabled in
// sources (absent means enabled) and, when only is non-empty, named in it.
func (r *Registry) Build(sources map[string]config.Source, only []string, deps Deps) []Fetcher {
	log := logger.OrNop(deps.Log)
	allowed := make(map[string]bool, len(only))
	for _, name := range only {
		allowed[name] = true
	}
	for name := range allowed {
		if _, ok := r.ctors[name]; !ok {
			log.Warn("unknown source ignored", logger.String("source", name))
		}
	}

	var out []Fetcher
	for _, name := range r.order {
		cfg := sources[name]
		if !cfg.IsEnabled() {
			continue
		}
		if len(allowed) > 0 && !allowed[name] {
			continue
		}
		out = append(out, r.ctors[name](cfg, deps))
	}
	return out
}
