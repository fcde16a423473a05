package main

import (
	"context"
	"path/filepath"
	"sort"
	"strings"
	"time"

	"github.com/redis/go-redis/v9"
	"github.com/spf13/cobra"

	"github.com/cognicore/topicscan/internal/logger"
	"github.com/cognicore/topicscan/internal/rss"
	"github.com/cognicore/topicscan/pkg/topicscan"
	"github.com/cognicore/topicscan/pkg/topicscan/fetch"
	"github.com/cognicore/topicscan/pkg/topicscan/fetchcache"
	"github.com/cognicore/topicscan/pkg/topicscan/history"
	"github.com/cognicore/topicscan/pkg/topicscan/metrics"
	"github.com/cognicore/topicscan/pkg/topicscan/model"
	"github.com/cognicore/topicscan/pkg/topicscan/report"
	"github.com/cognicore/topicscan/pkg/topicscan/store"
	"github.com/cognicore/topicscan/pkg/topicscan/store/memstore"
	"github.com/cognicore/topicscan/pkg/topicscan/store/sqlite"
	"github.com/cognicore/topicscan/pkg/topicscan/summarize"
)

type scanOptions struct {
	sources  []string
	noReport bool
	email    bool
	dryRun   bool
	input    string
}

func newScanCmd(a *app) *cobra.Command {
	var opts scanOptions
	cmd := &cobra.Command{
		Use:   "scan",
		Short: "Fetch sources, extract trending topics and report them",
		RunE: func(cmd *cobra.Command, _ []string) error {
			return a.scan(cmd.Context(), opts)
		},
	}
	f := cmd.Flags()
	f.StringSliceVarP(&opts.sources, "sources", "s", nil, "comma-separated sources (google_news,reddit,hackernews,google_trends,linkedin_rss)")
	f.BoolVar(&opts.noReport, "no-report", false, "skip console report, exports and email")
	f.BoolVar(&opts.email, "email", false, "send the newsletter email")
	f.BoolVar(&opts.dryRun, "dry-run", false, "only check configuration")
	f.StringVar(&opts.input, "input", "", "read items from a JSONL file instead of fetching")
	return cmd
}

func (a *app) dataDir() string {
	return a.cfg.General.DataDir
}

func (a *app) dryRun() {
	a.printf(warn, "DRY RUN - checking configuration...\n")
	a.printf(nil, "  Config: %s\n", a.configDir)
	a.printf(nil, "  Data: %s\n", a.dataDir())
	a.printf(nil, "  Sources: %s\n", strings.Join(a.cfg.EnabledSources(), ", "))
	cats := make([]string, 0, len(a.keywords))
	for c := range a.keywords {
		cats = append(cats, c)
	}
	sort.Strings(cats)
	a.printf(nil, "  Keyword categories: %s\n", strings.Join(cats, ", "))
	if err := a.cfg.Validate(); err != nil {
		a.printf(fail, "  %v\n", err)
		return
	}
	a.printf(okColor, "Configuration OK\n")
}

func (a *app) fetchCache(ctx context.Context) *fetchcache.Cache {
	var backend fetchcache.Backend = fetchcache.NewFileBackend(a.dataDir())
	if strings.EqualFold(a.cfg.Cache.Backend, "redis") {
		rc := a.cfg.Cache.Redis
		client := redis.NewClient(&redis.Options{Addr: rc.Addr, Password: rc.Password, DB: rc.DB})
		backend = fetchcache.NewRedisBackend(client, rc.Key)
	}
	return fetchcache.New(ctx, backend, a.log)
}

// openDedup returns nil when dedup is off or its store cannot be opened.
func (a *app) openDedup(ctx context.Context) (*store.Dedup, func()) {
	d := a.cfg.Dedup
	if !d.Enabled {
		return nil, func() {}
	}
	var sent store.SentStore
	switch strings.ToLower(d.Backend) {
	case "memory":
		sent = memstore.New()
	default:
		path := d.Path
		if !filepath.IsAbs(path) {
			path = filepath.Join(a.dataDir(), path)
		}
		s, err := sqlite.Open(ctx, path)
		if err != nil {
			a.log.Error("Dedup store unavailable", logger.String("path", path), logger.Error(err))
			return nil, func() {}
		}
		sent = s
	}
	return store.NewDedup(sent, a.log), func() { _ = sent.Close() }
}

func (a *app) collect(ctx context.Context, opts scanOptions) (fetch.Result, error) {
	if opts.input != "" {
		items, err := rss.LoadFromJSONL(opts.input, a.log)
		if err != nil {
			return fetch.Result{}, err
		}
		res := fetch.Result{Items: items, Fetched: map[string]int{}}
		for _, it := range items {
			if res.Fetched[it.Source] == 0 {
				res.SourcesUsed = append(res.SourcesUsed, it.Source)
			}
			res.Fetched[it.Source]++
		}
		a.printf(nil, "  Loaded %d items from %s\n", len(items), opts.input)
		return res, nil
	}

	fetchers := a.registry.Build(a.cfg.Sources, opts.sources, fetch.Deps{Client: a.httpClient, Log: a.log})
	res := fetch.FetchAll(ctx, fetchers, a.fetchCache(ctx), a.cfg.General.MaxItemsPerSource, a.log)
	for _, name := range res.SourcesUsed {
		a.printf(nil, "  %s: ", name)
		a.printf(okColor, "%d items", res.Fetched[name])
		if n := res.Skipped[name]; n > 0 {
			a.printf(dim, " (%d old skipped)", n)
		}
		a.printf(nil, "\n")
	}
	return res, nil
}

func (a *app) scan(ctx context.Context, opts scanOptions) error {
	start := a.now()
	if opts.dryRun {
		a.dryRun()
		return nil
	}

	a.printf(heading, "PHASE 1: Collect\n")
	res, err := a.collect(ctx, opts)
	if err != nil {
		return err
	}
	items := res.Items
	if len(items) == 0 {
		a.printf(fail, "No data fetched!\n")
		return nil
	}

	dedup, closeDedup := a.openDedup(ctx)
	defer closeDedup()
	if dedup != nil {
		before := len(items)
		items = dedup.FilterNew(ctx, items, a.cfg.Dedup.Days)
		a.printf(nil, "  Dedup: %d new (%d already sent)\n", len(items), before-len(items))
		if len(items) == 0 {
			a.printf(warn, "No new articles, everything was sent before.\n")
			return nil
		}
	}

	fs, err := store.NewFileStore(a.dataDir(), a.log)
	if err != nil {
		return err
	}
	if err := fs.SaveRawBySource(items, res.SourcesUsed); err != nil {
		a.log.Warn("Saving raw items failed", logger.Error(err))
	}

	a.printf(heading, "\nPHASE 2: Process")
	a.printf(nil, " (%d items)\n", len(items))
	provider := summarize.NewProvider(a.cfg.AI, a.log)
	pipeline := topicscan.NewPipeline(a.cfg, a.keywords, summarize.NewPhraseRanker(provider), a.log)
	topics, clusters := pipeline.Process(ctx, items)
	if len(topics) == 0 {
		a.printf(warn, "No topics extracted\n")
		return nil
	}
	a.printf(nil, "  %d keywords, %d clusters\n", len(topics), len(clusters))

	if _, err := fs.SaveProcessed(topics); err != nil {
		a.log.Warn("Saving processed topics failed", logger.Error(err))
	}

	runID := report.NewRunID()
	tracker := history.Open(a.dataDir(), a.log)
	if _, err := tracker.AddRun(runID, topics); err != nil {
		a.log.Warn("Saving history failed", logger.Error(err))
	}

	info := report.RunInfo{
		RunID:          runID,
		ScanDate:       a.now().Format("2006-01-02"),
		SourcesUsed:    res.SourcesUsed,
		TotalItems:     len(items),
		ProcessingTime: a.now().Sub(start),
	}
	exporter := report.NewExporter(fs, a.log)
	built := exporter.BuildReport(topics, clusters, info)

	intro := ""
	summarizer := summarize.New(provider, a.cfg.AI.Enabled, a.cfg.AI.MaxTokens, a.log)
	if summarizer.Available() {
		a.printf(heading, "\nPHASE 3: AI summaries\n")
		clusters = summarizer.SummarizeClusters(ctx, clusters, items, topicscan.CategoriesByItem(topics))
		intro = summarizer.NewsletterIntro(ctx, clusters, summarize.IntroMeta{TotalItems: len(items), SourcesUsed: res.SourcesUsed})
		built.Clusters = clusters
		a.printf(okColor, "  done\n")
	}

	if !opts.noReport {
		a.printf(heading, "\nReport\n")
		report.NewConsole(a.cfg.Reporting.Console, a.out).Print(topics, clusters, built.Metadata)

		if a.cfg.Reporting.Export.JSON {
			if path, err := exporter.ExportJSON(built); err != nil {
				a.log.Error("JSON export failed", logger.Error(err))
			} else {
				a.printf(nil, "  JSON report: %s\n", path)
			}
		}
		if a.cfg.Reporting.Export.CSV {
			if path, err := exporter.ExportCSV(topics); err != nil {
				a.log.Error("CSV export failed", logger.Error(err))
			} else {
				a.printf(nil, "  CSV report: %s\n", path)
			}
		}

		if opts.email || a.cfg.Email.Enabled {
			a.sendEmail(ctx, dedup, clusters, items, built.Metadata, intro, opts.email)
		}
	}

	elapsed := a.now().Sub(start)
	a.writeMetrics(res, len(topics), len(clusters), elapsed)
	a.printf(okColor, "\nDone! (%.1fs)\n", elapsed.Seconds())
	return nil
}

func (a *app) sendEmail(ctx context.Context, dedup *store.Dedup, clusters []model.Cluster, items []model.Item, meta report.Metadata, intro string, force bool) {
	cfg := a.cfg.Email
	if force {
		cfg.Enabled = true
	}
	if dedup != nil && dedup.SentToday(ctx) {
		a.printf(warn, "  A newsletter was already sent today\n")
	}
	a.printf(nil, "  Sending newsletter email... ")
	if !report.NewMailer(cfg, a.log).WithSender(a.sendMail).Send(ctx, clusters, items, meta, intro) {
		a.printf(fail, "failed (check email config)\n")
		return
	}
	a.printf(okColor, "sent\n")
	if dedup == nil {
		return
	}
	n, err := dedup.MarkSent(ctx, items, clusters)
	if err != nil {
		a.log.Error("Recording sent articles failed", logger.Error(err))
		return
	}
	a.printf(nil, "  Dedup: %d sent articles recorded\n", n)
}

func (a *app) writeMetrics(res fetch.Result, topics, clusters int, elapsed time.Duration) {
	path := a.cfg.Metrics.Textfile
	if path == "" {
		return
	}
	m := metrics.New()
	m.Observe(metrics.Run{
		FetchedBySource: res.Fetched,
		Topics:          topics,
		Clusters:        clusters,
		Duration:        elapsed,
		Finished:        a.now(),
	})
	if err := m.WriteTextfile(path); err != nil {
		a.log.Warn("Writing metrics failed", logger.Error(err))
		return
	}
	a.log.Debug("Metrics written", logger.String("path", path), logger.Duration("elapsed", elapsed))
}
