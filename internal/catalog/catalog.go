package catalog

import (
	"errors"
	"fmt"
	"strings"
)

// ActionID identifies one character animation.
type ActionID string

// ErrInvalidCatalog is returned when a catalog definition is inconsistent.
var ErrInvalidCatalog = errors.New("invalid catalog configuration")

// Catalog is the immutable set of animations a character may perform,
// plus the subset that starts the termination countdown.
type Catalog struct {
	ids      []ActionID
	members  map[ActionID]struct{}
	triggers map[ActionID]struct{}
	trigList []ActionID
}

// New builds a catalog. Every trigger must also be a member.
func New(ids []ActionID, triggers []ActionID) (*Catalog, error) {
	if len(ids) == 0 {
		return nil, fmt.Errorf("%w: no animations defined", ErrInvalidCatalog)
	}

	c := &Catalog{
		ids:      make([]ActionID, 0, len(ids)),
		members:  make(map[ActionID]struct{}, len(ids)),
		triggers: make(map[ActionID]struct{}, len(triggers)),
	}
	for _, id := range ids {
		if strings.TrimSpace(string(id)) == "" {
			return nil, fmt.Errorf("%w: blank animation id", ErrInvalidCatalog)
		}
		if _, dup := c.members[id]; dup {
			return nil, fmt.Errorf("%w: duplicate animation %q", ErrInvalidCatalog, id)
		}
		c.members[id] = struct{}{}
		c.ids = append(c.ids, id)
	}
	for _, t := range triggers {
		if _, ok := c.members[t]; !ok {
			return nil, fmt.Errorf("%w: trigger %q is not in the catalog", ErrInvalidCatalog, t)
		}
		if _, dup := c.triggers[t]; dup {
			continue
		}
		c.triggers[t] = struct{}{}
		c.trigList = append(c.trigList, t)
	}
	return c, nil
}

// FromStrings is a convenience wrapper around New for config-supplied lists.
func FromStrings(ids, triggers []string) (*Catalog, error) {
	return New(toIDs(ids), toIDs(triggers))
}

func toIDs(ss []string) []ActionID {
	out := make([]ActionID, len(ss))
	for i, s := range ss {
		out[i] = ActionID(s)
	}
	return out
}

// IsValid reports whether id is a catalog member.
func (c *Catalog) IsValid(id ActionID) bool {
	_, ok := c.members[id]
	return ok
}

// IsTerminationTrigger reports whether id is a termination trigger.
func (c *Catalog) IsTerminationTrigger(id ActionID) bool {
	_, ok := c.triggers[id]
	return ok
}

// IDs returns all animations in definition order.
func (c *Catalog) IDs() []ActionID {
	out := make([]ActionID, len(c.ids))
	copy(out, c.ids)
	return out
}

// Triggers returns the termination triggers in definition order.
func (c *Catalog) Triggers() []ActionID {
	out := make([]ActionID, len(c.trigList))
	copy(out, c.trigList)
	return out
}

// Len returns the number of animations.
func (c *Catalog) Len() int { return len(c.ids) }
