package report

import (
	"fmt"
	"io"
	"os"
	"sort"
	"strings"

	"github.com/fatih/color"
	"github.com/jedib0t/go-pretty/v6/table"
	"github.com/jedib0t/go-pretty/v6/text"

	"github.com/cognicore/topicscan/pkg/topicscan/config"
	"github.com/cognicore/topicscan/pkg/topicscan/model"
)

const (
	categoryKeywords = 5
	clusterTerms     = 5
)

var categoryColors = map[string]*color.Color{
	"marketing_digital": color.New(color.FgCyan),
	"ai_ml":             color.New(color.FgMagenta),
	"data_analytics":    color.New(color.FgGreen),
}

func categoryColor(key string) *color.Color {
	if c, ok := categoryColors[key]; ok {
		return c
	}
	return color.New(color.FgWhite)
}

func scoreString(score float64) string {
	s := fmt.Sprintf("%.3f", score)
	switch {
	case score >= 0.5:
		return color.GreenString(s)
	case score >= 0.3:
		return color.YellowString(s)
	default:
		return s
	}
}

// Console prints the scan report as terminal tables.
type Console struct {
	out         io.Writer
	topN        int
	showSources bool
}

// NewConsole writes to out, or stdout when out is nil.
func NewConsole(cfg config.ConsoleReport, out io.Writer) *Console {
	if out == nil {
		out = os.Stdout
	}
	if cfg.TopN <= 0 {
		cfg.TopN = 15
	}
	return &Console{out: out, topN: cfg.TopN, showSources: cfg.ShowSources}
}

// Print renders the header, the top topics, the category breakdown and,
// when present, the cluster table.
func (c *Console) Print(topics []model.Topic, clusters []model.Cluster, meta Metadata) {
	fmt.Fprintln(c.out)
	c.printHeader(meta, len(topics))
	c.printTopTopics(topics)
	c.printCategories(topics)
	if len(clusters) > 0 {
		c.printClusters(clusters)
	}
	fmt.Fprintln(c.out)
}

func (c *Console) newTable(title string) table.Writer {
	t := table.NewWriter()
	t.SetOutputMirror(c.out)
	t.SetStyle(table.StyleRounded)
	t.SetTitle(title)
	return t
}

func (c *Console) printHeader(meta Metadata, topicCount int) {
	sources := "N/A"
	if len(meta.SourcesUsed) > 0 {
		sources = strings.Join(meta.SourcesUsed, ", ")
	}
	t := c.newTable("SCAN REPORT")
	t.AppendRow(table.Row{color.New(color.Bold).Sprint("Topic Scanner")})
	t.AppendRow(table.Row{"Date: " + meta.ScanDate})
	t.AppendRow(table.Row{fmt.Sprintf("Total items: %d | Topics extracted: %d", meta.TotalItemsFetched, topicCount)})
	t.AppendRow(table.Row{"Sources: " + sources})
	t.Render()
}

func (c *Console) printTopTopics(topics []model.Topic) {
	t := c.newTable(fmt.Sprintf("Top %d Trending Topics", c.topN))
	header := table.Row{"#", "Keyword", "Score", "Category", "Mentions"}
	if c.showSources {
		header = append(header, "Sources")
	}
	t.AppendHeader(header)
	t.SetColumnConfigs([]table.ColumnConfig{
		{Number: 3, Align: text.AlignRight},
		{Number: 5, Align: text.AlignRight},
	})

	for i, tp := range topics {
		if i == c.topN {
			break
		}
		var cat string
		if len(tp.Categories) > 0 {
			primary := tp.Categories[0]
			name := primary.DisplayName
			if name == "" {
				name = primary.Category
			}
			cat = categoryColor(primary.Category).Sprint(name)
		} else {
			cat = color.New(color.Faint).Sprint("Other")
		}
		row := table.Row{i + 1, tp.Keyword, scoreString(tp.TrendScore), cat, tp.MentionCount}
		if c.showSources {
			row = append(row, strings.Join(tp.Sources, ", "))
		}
		t.AppendRow(row)
	}
	t.Render()
}

type categoryGroup struct {
	key    string
	topics []model.Topic
}

// groupByCategory buckets topics under every category they carry, in order
// of first appearance, then orders buckets by size.
func groupByCategory(topics []model.Topic) []categoryGroup {
	var groups []categoryGroup
	pos := map[string]int{}
	for _, tp := range topics {
		for _, ca := range tp.Categories {
			key := ca.Category
			if key == "" {
				key = "other"
			}
			i, ok := pos[key]
			if !ok {
				i = len(groups)
				pos[key] = i
				groups = append(groups, categoryGroup{key: key})
			}
			groups[i].topics = append(groups[i].topics, tp)
		}
	}
	sort.SliceStable(groups, func(a, b int) bool { return len(groups[a].topics) > len(groups[b].topics) })
	return groups
}

func (g categoryGroup) displayName() string {
	for _, ca := range g.topics[0].Categories {
		if ca.Category == g.key && ca.DisplayName != "" {
			return ca.DisplayName
		}
	}
	return g.key
}

func (c *Console) printCategories(topics []model.Topic) {
	t := c.newTable("Topics by Category")
	t.AppendHeader(table.Row{"Category", "Count", "Top Keywords"})
	for _, g := range groupByCategory(topics) {
		var kws []string
		for i, tp := range g.topics {
			if i == categoryKeywords {
				break
			}
			kws = append(kws, tp.Keyword)
		}
		t.AppendRow(table.Row{categoryColor(g.key).Sprint(g.displayName()), len(g.topics), strings.Join(kws, ", ")})
	}
	t.Render()
}

func (c *Console) printClusters(clusters []model.Cluster) {
	t := c.newTable("Topic Clusters")
	t.AppendHeader(table.Row{"#", "Label", "Size", "Top Terms"})
	for i, cl := range clusters {
		terms := cl.TopTerms
		if len(terms) > clusterTerms {
			terms = terms[:clusterTerms]
		}
		t.AppendRow(table.Row{i + 1, cl.Label, cl.Size, strings.Join(terms, ", ")})
	}
	t.Render()
}
