package catalog

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestParseQuery(t *testing.T) {
	tests := []struct {
		name string
		raw  string
		text string
		tags []string
	}{
		{"plain text", "Upbeat Song", "upbeat song", nil},
		{"single tag", "t:electronic", "", []string{"electronic"}},
		{"tag prefix long form", "tag:phonk", "", []string{"phonk"}},
		{"quoted tag with spaces", "chill t:'vlog music'", "chill", []string{"vlog music"}},
		{"double quoted tag", `t:"lo-fi / chillhop"`, "", []string{"lo-fi / chillhop"}},
		{"mixed text and tags", "upbeat t:electronic t:'vlog music'", "upbeat", []string{"electronic", "vlog music"}},
		{"case insensitive prefix", "T:Electronic", "", []string{"electronic"}},
		{"empty", "   ", "", nil},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			q := ParseQuery(tt.raw)
			assert.Equal(t, tt.text, q.Text)
			assert.Equal(t, tt.tags, q.Tags)
		})
	}
}

func TestQueryIsEmpty(t *testing.T) {
	assert.True(t, Query{}.IsEmpty())
	assert.True(t, Query{Text: "   "}.IsEmpty())
	assert.False(t, Query{Text: "a"}.IsEmpty())
	assert.False(t, Query{Tags: []string{"electronic"}}.IsEmpty())
}

func TestParseArtistTitle(t *testing.T) {
	artist, title := ParseArtistTitle("DJ X - Lo-fi Beat")
	assert.Equal(t, "DJ X", artist)
	assert.Equal(t, "Lo-fi Beat", title)

	artist, title = ParseArtistTitle("Untitled Track")
	assert.Equal(t, "", artist)
	assert.Equal(t, "Untitled Track", title)
}
