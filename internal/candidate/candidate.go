// Package candidate reduces a free-text model reply to catalog animations.
package candidate

import (
	"strings"

	"github.com/nidhogg/animseq/internal/catalog"
)

// Extractor turns a raw model reply into an ordered candidate list.
// An empty result is a normal outcome, not an error.
type Extractor interface {
	Extract(raw string, cat *catalog.Catalog) []catalog.ActionID
}

// CommaExtractor splits on commas and keeps exact catalog matches.
// Repeated suggestions are kept so they weigh more during selection.
type CommaExtractor struct{}

// Extract implements Extractor.
func (CommaExtractor) Extract(raw string, cat *catalog.Catalog) []catalog.ActionID {
	var out []catalog.ActionID
	for _, frag := range strings.Split(raw, ",") {
		id := catalog.ActionID(strings.TrimSpace(frag))
		if cat.IsValid(id) {
			out = append(out, id)
		}
	}
	return out
}

// Extract uses the default comma-separated strategy.
func Extract(raw string, cat *catalog.Catalog) []catalog.ActionID {
	return CommaExtractor{}.Extract(raw, cat)
}
