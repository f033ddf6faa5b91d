package prompt

import (
	"strings"
	"testing"

	"github.com/nidhogg/animseq/internal/catalog"
	"github.com/nidhogg/animseq/internal/role"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestBuildExactLayout(t *testing.T) {
	cat, err := catalog.New([]catalog.ActionID{"IdleStanding", "ClimbStairs", "Rummaging"}, nil)
	require.NoError(t, err)

	got := Build("buyer", []catalog.ActionID{"IdleStanding", "ClimbStairs"}, cat)
	want := "You are an assistant for selecting plausible next animations for a virtual character.\n" +
		"The character's role is: buyer\n\n" +
		"Here is the sequence of previous actions:\n" +
		"1. IdleStanding\n" +
		"2. ClimbStairs\n\n" +
		"Choose the 1 to 3 most plausible next animations from the list below.\n" +
		"Respond only with a comma-separated list of animation IDs.\n\n" +
		"Available animations:\n" +
		"IdleStanding, ClimbStairs, Rummaging"
	assert.Equal(t, want, got)
}

func TestBuildListsEveryAnimationOnce(t *testing.T) {
	cat := catalog.Default()
	got := Build(role.Seller, []catalog.ActionID{catalog.Idle}, cat)

	idx := strings.Index(got, "Available animations:\n")
	require.NotEqual(t, -1, idx)
	vocab := strings.Split(got[idx+len("Available animations:\n"):], ", ")
	assert.Equal(t, len(cat.IDs()), len(vocab))
	for i, id := range cat.IDs() {
		assert.Equal(t, string(id), vocab[i])
	}
	assert.Contains(t, got, "The character's role is: "+string(role.Seller)+"\n")
}

func TestBuildIsDeterministic(t *testing.T) {
	cat := catalog.Default()
	h := []catalog.ActionID{catalog.Idle, "PickUpFromBox", "ClimbStairs"}
	assert.Equal(t, Build(role.Buyer, h, cat), Build(role.Buyer, h, cat))
	assert.Equal(t, Build(role.Buyer, h, cat), NewBuilder(cat).Build(role.Buyer, h))
}

func TestBuildEmptyHistory(t *testing.T) {
	got := Build(role.Negative, nil, catalog.Default())
	assert.Contains(t, got, "Here is the sequence of previous actions:\n(none)\n\nChoose")
	assert.NotContains(t, got, "1. ")
}

func TestBuildNumbersFromOne(t *testing.T) {
	h := []catalog.ActionID{"A", "B", "C"}
	cat, _ := catalog.New(h, nil)
	got := Build("r", h, cat)
	assert.Contains(t, got, "1. A\n2. B\n3. C\n")
	assert.NotContains(t, got, "0. ")
}
