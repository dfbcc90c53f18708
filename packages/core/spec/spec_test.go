package spec

import (
	"context"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func noop(ctx context.Context) error { return nil }

func buildSuite() *Suite {
	s := New()
	s.Describe("outer", func(g *G) {
		g.It("first", noop)
		g.Describe("inner", func(g *G) {
			g.It("second", noop)
			g.It("third", noop)
		})
		g.XIt("someday", "not implemented")
	})
	s.It("top-level", noop)
	return s
}

func TestSuiteBuilder(t *testing.T) {
	roots := buildSuite().Roots()
	require.Len(t, roots, 2)

	outer := roots[0]
	assert.Equal(t, KindGroup, outer.Kind)
	assert.Equal(t, "outer", outer.Label)
	require.Len(t, outer.Children, 3)

	assert.Equal(t, KindExample, outer.Children[0].Kind)
	assert.Equal(t, "first", outer.Children[0].Label)
	assert.Contains(t, outer.Children[0].Source, "spec_test.go")

	inner := outer.Children[1]
	assert.Equal(t, KindGroup, inner.Kind)
	require.Len(t, inner.Children, 2)

	pending := outer.Children[2]
	assert.True(t, pending.Pending)
	assert.Equal(t, "not implemented", pending.Reason)

	assert.Equal(t, KindExample, roots[1].Kind)
	assert.Equal(t, 5, CountExamples(roots))
}

func TestHooksRegistration(t *testing.T) {
	s := New()
	s.Describe("g", func(g *G) {
		g.BeforeEach(noop)
		g.BeforeEach(noop)
		g.AfterEach(noop)
		g.BeforeAll(noop)
		g.AfterAll(noop)
		g.Around(func(ctx context.Context, next Action) error { return next(ctx) })
		g.It("e", noop)
	})

	hooks := s.Roots()[0].Hooks
	assert.Len(t, hooks.BeforeEach, 2)
	assert.Len(t, hooks.AfterEach, 1)
	assert.Len(t, hooks.BeforeAll, 1)
	assert.Len(t, hooks.AfterAll, 1)
	assert.Len(t, hooks.Around, 1)
}

func TestPath(t *testing.T) {
	p := Path{Groups: []string{"a", "b"}, Requirement: "does x"}
	assert.Equal(t, "a > b > does x", p.String())
	assert.Equal(t, p.String(), p.Key())

	assert.Equal(t, "does x", Path{Requirement: "does x"}.String())
}

func TestFilter(t *testing.T) {
	roots := buildSuite().Roots()

	t.Run("always true keeps the structure", func(t *testing.T) {
		kept := Filter(roots, func(Path) bool { return true })
		require.Len(t, kept, 2)
		assert.Equal(t, 5, CountExamples(kept))
		assert.Len(t, kept[0].Children, 3)
	})

	t.Run("always false yields an empty forest", func(t *testing.T) {
		assert.Empty(t, Filter(roots, func(Path) bool { return false }))
	})

	t.Run("a group with no surviving children is dropped", func(t *testing.T) {
		kept := Filter(roots, func(p Path) bool {
			return !strings.Contains(p.String(), "inner")
		})
		require.Len(t, kept, 2)
		for _, child := range kept[0].Children {
			assert.NotEqual(t, "inner", child.Label)
		}
	})

	t.Run("predicate sees the full path", func(t *testing.T) {
		kept := Filter(roots, func(p Path) bool {
			return p.String() == "outer > inner > second"
		})
		require.Len(t, kept, 1)
		require.Len(t, kept[0].Children, 1)
		assert.Equal(t, "inner", kept[0].Children[0].Label)
		assert.Equal(t, 1, CountExamples(kept))
	})

	t.Run("input is not modified", func(t *testing.T) {
		Filter(roots, func(Path) bool { return false })
		assert.Equal(t, 5, CountExamples(roots))
		assert.Len(t, roots[0].Children, 3)
	})
}

func collectOrder(nodes []*Node) []string {
	var out []string
	for _, n := range nodes {
		out = append(out, n.Label)
		if n.Kind == KindGroup {
			out = append(out, collectOrder(n.Children)...)
		}
	}
	return out
}

func TestShuffle(t *testing.T) {
	s := New()
	s.Describe("g", func(g *G) {
		for _, name := range []string{"a", "b", "c", "d", "e", "f", "g", "h"} {
			g.It(name, noop)
		}
	})
	roots := s.Roots()

	t.Run("same seed gives the same order", func(t *testing.T) {
		first := collectOrder(Shuffle(roots, 42))
		for i := 0; i < 5; i++ {
			assert.Equal(t, first, collectOrder(Shuffle(roots, 42)))
		}
	})

	t.Run("different seeds give different orders", func(t *testing.T) {
		orders := map[string]bool{}
		for seed := int64(0); seed < 20; seed++ {
			orders[strings.Join(collectOrder(Shuffle(roots, seed)), ",")] = true
		}
		assert.Greater(t, len(orders), 1)
	})

	t.Run("input is not modified", func(t *testing.T) {
		before := collectOrder(roots)
		Shuffle(roots, 7)
		assert.Equal(t, before, collectOrder(roots))
	})

	t.Run("shuffling preserves the example set", func(t *testing.T) {
		shuffled := Shuffle(roots, 99)
		assert.Equal(t, CountExamples(roots), CountExamples(shuffled))
		assert.ElementsMatch(t, collectOrder(roots), collectOrder(shuffled))
	})
}

func TestSummaryMonoid(t *testing.T) {
	a := Summary{Examples: 3, Failures: 1}
	b := Summary{Examples: 2, Failures: 2}
	c := Summary{Examples: 7, Failures: 0}

	t.Run("identity", func(t *testing.T) {
		assert.Equal(t, a, a.Merge(Summary{}))
		assert.Equal(t, a, Summary{}.Merge(a))
	})

	t.Run("commutativity", func(t *testing.T) {
		assert.Equal(t, a.Merge(b), b.Merge(a))
	})

	t.Run("associativity", func(t *testing.T) {
		assert.Equal(t, a.Merge(b).Merge(c), a.Merge(b.Merge(c)))
	})

	t.Run("passed", func(t *testing.T) {
		assert.True(t, c.Passed())
		assert.False(t, a.Passed())
	})
}

func TestSentinels(t *testing.T) {
	t.Run("equal values produce no error", func(t *testing.T) {
		assert.NoError(t, Equal(3, 3))
		assert.NoError(t, EqualLines("a\nb", "a\nb"))
	})

	t.Run("unequal values produce a mismatch", func(t *testing.T) {
		err := Equal(3, 4)
		m, ok := AsMismatch(err)
		require.True(t, ok)
		assert.Equal(t, []string{"3"}, m.Expected)
		assert.Equal(t, []string{"4"}, m.Actual)
	})

	t.Run("unequal lines carry each line", func(t *testing.T) {
		err := EqualLines("a\nb", "a\nc")
		m, ok := AsMismatch(err)
		require.True(t, ok)
		assert.Equal(t, []string{"a", "b"}, m.Expected)
		assert.Equal(t, []string{"a", "c"}, m.Actual)
	})

	t.Run("skip produces a pending marker", func(t *testing.T) {
		p, ok := AsPending(Skipf("waiting on %s", "upstream"))
		require.True(t, ok)
		assert.Equal(t, "waiting on upstream", p.Reason)
	})

	t.Run("plain failures are neither", func(t *testing.T) {
		err := Failf("boom")
		_, mismatch := AsMismatch(err)
		_, pending := AsPending(err)
		assert.False(t, mismatch)
		assert.False(t, pending)
	})
}

func TestMatchPattern(t *testing.T) {
	assert.True(t, MatchPattern("anything", ""))
	assert.True(t, MatchPattern("a > b > c", "a > b > c"))
	assert.False(t, MatchPattern("a > b > c", "a > b"))
	assert.True(t, MatchPattern("a > b > c", "a > b*"))
	assert.True(t, MatchPattern("a > b > c", "*> c"))
	assert.True(t, MatchPattern("a > b > c", "*b*"))
	assert.False(t, MatchPattern("a > b > c", "*x*"))
}
