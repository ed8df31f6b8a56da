package catalog

import (
	"regexp"
	"strings"
)

// Query is a parsed search query: free text plus zero or more tag filters.
// Tag filters use intersection semantics: a song must carry every tag.
type Query struct {
	Text string   `json:"text"`
	Tags []string `json:"tags"`
}

// SearchResult is a ranked list of hydrated songs plus autocomplete
// suggestions drawn from the name/artist index.
type SearchResult struct {
	Songs       []*Song  `json:"songs"`
	Suggestions []string `json:"suggestions"`
}

// IsEmpty reports whether the query would match nothing meaningful.
func (q Query) IsEmpty() bool {
	return strings.TrimSpace(q.Text) == "" && len(q.Tags) == 0
}

var tagFilterRe = regexp.MustCompile(`(?i)(?:t:|tag:)(?:'([^']+)'|"([^"]+)"|(\S+))`)

// ParseQuery splits a raw search string into free text and tag filters.
// Tags are written as t:electronic or tag:'vlog music'; quoting allows
// spaces. Both text and tags are lowercased.
func ParseQuery(raw string) Query {
	var tags []string
	for _, m := range tagFilterRe.FindAllStringSubmatch(raw, -1) {
		for _, group := range m[1:] {
			if group != "" {
				tags = append(tags, strings.ToLower(group))
			}
		}
	}
	text := tagFilterRe.ReplaceAllString(raw, "")
	return Query{
		Text: strings.ToLower(strings.TrimSpace(text)),
		Tags: tags,
	}
}

// ParseArtistTitle splits an "Artist - Title" stem into its parts. When the
// separator is absent the whole stem is the title and the artist is empty.
func ParseArtistTitle(stem string) (artist, title string) {
	if idx := strings.Index(stem, " - "); idx >= 0 {
		return strings.TrimSpace(stem[:idx]), strings.TrimSpace(stem[idx+3:])
	}
	return "", stem
}
