package role

import (
	"errors"
	"fmt"
	"math/rand"
)

// Role is the behavioral framing a character keeps for a whole run.
type Role string

// Built-in roles: seller, buyer, and a negative control.
const (
	Seller   Role = "판매책"
	Buyer    Role = "구매자"
	Negative Role = "네거티브"
)

var (
	ErrNoRoles     = errors.New("no roles configured")
	ErrUnknownRole = errors.New("unknown role")
)

// Default returns the built-in role set.
func Default() []Role {
	return []Role{Seller, Buyer, Negative}
}

// FromStrings converts config-supplied labels, falling back to Default when empty.
func FromStrings(labels []string) []Role {
	if len(labels) == 0 {
		return Default()
	}
	out := make([]Role, len(labels))
	for i, l := range labels {
		out[i] = Role(l)
	}
	return out
}

// Pick chooses one role uniformly at random.
func Pick(r *rand.Rand, roles []Role) (Role, error) {
	if len(roles) == 0 {
		return "", ErrNoRoles
	}
	return roles[r.Intn(len(roles))], nil
}

// Parse validates a user-supplied label against the allowed set.
func Parse(s string, roles []Role) (Role, error) {
	for _, r := range roles {
		if string(r) == s {
			return r, nil
		}
	}
	return "", fmt.Errorf("%w: %q", ErrUnknownRole, s)
}
