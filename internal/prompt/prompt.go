// Package prompt renders the model query for one simulation step.
package prompt

import (
	"fmt"
	"strings"

	"github.com/nidhogg/animseq/internal/catalog"
	"github.com/nidhogg/animseq/internal/role"
)

// Build renders the query for the next step. It is a pure function of its inputs.
func Build(r role.Role, history []catalog.ActionID, cat *catalog.Catalog) string {
	var b strings.Builder
	b.WriteString("You are an assistant for selecting plausible next animations for a virtual character.\n")
	fmt.Fprintf(&b, "The character's role is: %s\n\n", r)

	b.WriteString("Here is the sequence of previous actions:\n")
	if len(history) == 0 {
		b.WriteString("(none)")
	}
	for i, a := range history {
		if i > 0 {
			b.WriteByte('\n')
		}
		fmt.Fprintf(&b, "%d. %s", i+1, a)
	}
	b.WriteString("\n\n")

	b.WriteString("Choose the 1 to 3 most plausible next animations from the list below.\n")
	b.WriteString("Respond only with a comma-separated list of animation IDs.\n\n")

	b.WriteString("Available animations:\n")
	for i, id := range cat.IDs() {
		if i > 0 {
			b.WriteString(", ")
		}
		b.WriteString(string(id))
	}
	return b.String()
}

// Builder binds a catalog so the simulator can depend on an interface.
type Builder struct {
	cat *catalog.Catalog
}

// NewBuilder creates a Builder for the given catalog.
func NewBuilder(cat *catalog.Catalog) *Builder {
	return &Builder{cat: cat}
}

// Build renders the prompt for role and history.
func (b *Builder) Build(r role.Role, history []catalog.ActionID) string {
	return Build(r, history, b.cat)
}
