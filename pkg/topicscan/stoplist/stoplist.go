package stoplist

import (
	"sort"
	"strings"
)

// Manager holds a set of stopwords.
type Manager struct {
	stops map[string]struct{}
}

// NewManager creates a new stoplist manager
func NewManager(initialStops ...[]string) *Manager {
	m := &Manager{stops: make(map[string]struct{})}
	for _, list := range initialStops {
		for _, s := range list {
			m.Add(s)
		}
	}
	return m
}

// Default returns English stopwords merged with RSS/HTML boilerplate.
func Default() *Manager {
	return NewManager(English, Boilerplate)
}

// IsStop checks if a token is a stopword
func (m *Manager) IsStop(token string) bool {
	_, ok := m.stops[strings.ToLower(token)]
	return ok
}

// Add adds a token to the stoplist
func (m *Manager) Add(token string) {
	token = strings.ToLower(strings.TrimSpace(token))
	if token == "" {
		return
	}
	m.stops[token] = struct{}{}
}

// Remove removes a token from the stoplist
func (m *Manager) Remove(token string) {
	delete(m.stops, strings.ToLower(token))
}

// All returns all stopwords, sorted.
func (m *Manager) All() []string {
	result := make([]string, 0, len(m.stops))
	for s := range m.stops {
		result = append(result, s)
	}
	sort.Strings(result)
	return result
}

// Len reports the number of stopwords.
func (m *Manager) Len() int { return len(m.stops) }

// Boilerplate are markup and feed artifacts that survive cleaning.
var Boilerplate = []string{
	"nbsp", "amp", "quot", "href", "http", "https", "www", "com",
	"span", "font", "div", "class", "style", "color", "size",
	"reddit", "link", "comments", "submitted", "points", "ago",
}
