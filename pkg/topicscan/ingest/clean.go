package ingest

import (
	"regexp"
	"strings"

	"golang.org/x/net/html"
)

var (
	tagPattern        = regexp.MustCompile(`<[^>]+>`)
	hexPattern        = regexp.MustCompile(`\b[0-9a-f]{6}\b`)
	urlPattern        = regexp.MustCompile(`https?://\S+`)
	shortTokenPattern = regexp.MustCompile(`\b[a-z]{1,2}\b`)
	spacePattern      = regexp.MustCompile(`\s+`)
)

// shortAllow lists two-letter domain acronyms that survive short-token removal.
var shortAllow = map[string]struct{}{
	"ai": {}, "ml": {}, "hr": {}, "pr": {}, "ux": {},
	"ui": {}, "qa": {}, "ci": {}, "cd": {},
}

// Clean decodes entities and strips tags, hex colour artifacts, URLs and
// lowercase one- and two-letter tokens (except known acronyms).
func Clean(text string) string {
	return clean(text, true)
}

// CleanKeepShort is Clean without the short-token filter.
func CleanKeepShort(text string) string {
	return clean(text, false)
}

func clean(text string, dropShort bool) string {
	text = html.UnescapeString(text)
	text = tagPattern.ReplaceAllString(text, " ")
	text = hexPattern.ReplaceAllString(text, " ")
	text = urlPattern.ReplaceAllString(text, " ")
	if dropShort {
		text = shortTokenPattern.ReplaceAllStringFunc(text, func(tok string) string {
			if _, ok := shortAllow[tok]; ok {
				return tok
			}
			return " "
		})
	}
	text = spacePattern.ReplaceAllString(text, " ")
	return strings.TrimSpace(text)
}

// StripHTML returns the visible text of an HTML fragment.
func StripHTML(s string) string {
	doc, err := html.Parse(strings.NewReader(s))
	if err != nil {
		return s
	}

	var buf strings.Builder
	var extractText func(*html.Node)
	extractText = func(n *html.Node) {
		if n.Type == html.TextNode {
			buf.WriteString(n.Data)
		}
		for c := n.FirstChild; c != nil; c = c.NextSibling {
			extractText(c)
		}
	}
	extractText(doc)

	return strings.TrimSpace(buf.String())
}
