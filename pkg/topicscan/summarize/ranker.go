package summarize

import (
	"context"
	"fmt"
	"regexp"
	"strings"

	"github.com/cognicore/topicscan/pkg/topicscan/extract"
)

const (
	rankerDocs      = 60
	rankerDocChars  = 300
	rankerMaxTokens = 512
)

// PhraseRanker asks the model for the corpus keyphrases. It backs the
// "phrase" extraction method.
type PhraseRanker struct {
	provider Provider
}

var _ extract.PhraseRanker = (*PhraseRanker)(nil)

// NewPhraseRanker returns nil when provider is nil so callers can pass the
// result straight to extract.New.
func NewPhraseRanker(provider Provider) extract.PhraseRanker {
	if provider == nil {
		return nil
	}
	return &PhraseRanker{provider: provider}
}

// RankPhrases returns up to topN phrases, best first. Scores fall linearly
// with rank.
func (r *PhraseRanker) RankPhrases(ctx context.Context, docs []string, topN int) ([]extract.RankedPhrase, error) {
	if len(docs) == 0 || topN <= 0 {
		return nil, nil
	}
	text, err := r.provider.Complete(ctx, rankerPrompt(docs, topN), rankerMaxTokens)
	if err != nil {
		return nil, err
	}

	phrases := parsePhrases(text, topN)
	if len(phrases) == 0 {
		return nil, fmt.Errorf("phrase ranker: no phrases in response")
	}
	out := make([]extract.RankedPhrase, len(phrases))
	for i, p := range phrases {
		out[i] = extract.RankedPhrase{Phrase: p, Score: float64(len(phrases)-i) / float64(len(phrases))}
	}
	return out, nil
}

func rankerPrompt(docs []string, topN int) string {
	var b strings.Builder
	fmt.Fprintf(&b, "List the %d most important keyphrases (1-3 words, lowercase) that appear verbatim in these headlines. One phrase per line, most important first, no numbering.\n\n", topN)
	for i, d := range docs {
		if i == rankerDocs {
			break
		}
		b.WriteString("- ")
		b.WriteString(truncate(d, rankerDocChars))
		b.WriteByte('\n')
	}
	return b.String()
}

var listMarker = regexp.MustCompile(`^(?:[-*•]|\d+[.)])\s*`)

func parsePhrases(text string, topN int) []string {
	seen := map[string]struct{}{}
	var out []string
	for _, line := range strings.Split(text, "\n") {
		p := strings.ToLower(strings.TrimSpace(line))
		p = listMarker.ReplaceAllString(p, "")
		p = strings.Trim(p, `"' `)
		if p == "" {
			continue
		}
		if _, ok := seen[p]; ok {
			continue
		}
		seen[p] = struct{}{}
		out = append(out, p)
		if len(out) == topN {
			break
		}
	}
	return out
}
