package spec

import (
	"context"
	"fmt"
	"runtime"
)

// Action is the evaluable body of an example or hook. The context is
// cancelled when the example's timeout elapses, so blocking actions can
// observe it and unwind early.
type Action func(ctx context.Context) error

// AroundFunc wraps "the rest of the evaluation" as an explicit
// continuation. A well-behaved wrapper invokes next exactly once; the
// runner tolerates zero or multiple invocations.
type AroundFunc func(ctx context.Context, next Action) error

// Kind discriminates the two node variants.
type Kind int

const (
	KindGroup Kind = iota
	KindExample
)

// Node is one vertex of the spec tree: a labelled group with ordered
// children and hooks, or a leaf example with an action.
type Node struct {
	Kind     Kind
	Label    string // group label or example requirement
	Children []*Node
	Hooks    Hooks
	Action   Action
	Pending  bool
	Reason   string // pending reason, when declared pending
	Source   string // file:line of the declaration
}

// Hooks holds the scoped setup/teardown actions of one group.
type Hooks struct {
	BeforeEach []Action
	AfterEach  []Action
	BeforeAll  []Action
	AfterAll   []Action
	Around     []AroundFunc
}

// Suite accumulates top-level groups and examples.
type Suite struct {
	roots []*Node
}

// New returns an empty suite.
func New() *Suite {
	return &Suite{}
}

// Roots returns the top-level nodes in declaration order.
func (s *Suite) Roots() []*Node {
	return s.roots
}

// Describe appends a top-level group built by body.
func (s *Suite) Describe(label string, body func(g *G)) {
	node := &Node{Kind: KindGroup, Label: label, Source: callerSource(2)}
	body(&G{node: node})
	s.roots = append(s.roots, node)
}

// It appends a top-level example.
func (s *Suite) It(requirement string, action Action) {
	s.roots = append(s.roots, &Node{
		Kind:   KindExample,
		Label:  requirement,
		Action: action,
		Source: callerSource(2),
	})
}

// G is the builder handle passed to Describe bodies.
type G struct {
	node *Node
}

// Describe appends a nested group.
func (g *G) Describe(label string, body func(g *G)) {
	child := &Node{Kind: KindGroup, Label: label, Source: callerSource(2)}
	body(&G{node: child})
	g.node.Children = append(g.node.Children, child)
}

// It appends an example to the group.
func (g *G) It(requirement string, action Action) {
	g.node.Children = append(g.node.Children, &Node{
		Kind:   KindExample,
		Label:  requirement,
		Action: action,
		Source: callerSource(2),
	})
}

// XIt appends an example that is reported pending and never evaluated.
func (g *G) XIt(requirement string, reason string) {
	g.node.Children = append(g.node.Children, &Node{
		Kind:    KindExample,
		Label:   requirement,
		Pending: true,
		Reason:  reason,
		Source:  callerSource(2),
	})
}

// BeforeEach registers an action run before every example in the group
// and its subgroups. Multiple registrations run in declaration order.
func (g *G) BeforeEach(action Action) {
	g.node.Hooks.BeforeEach = append(g.node.Hooks.BeforeEach, action)
}

// AfterEach registers an action run after every example in the group and
// its subgroups, in reverse declaration order, even when the example or
// an earlier hook failed.
func (g *G) AfterEach(action Action) {
	g.node.Hooks.AfterEach = append(g.node.Hooks.AfterEach, action)
}

// BeforeAll registers a shared resource initializer, run once before the
// first example under the group that needs it.
func (g *G) BeforeAll(action Action) {
	g.node.Hooks.BeforeAll = append(g.node.Hooks.BeforeAll, action)
}

// AfterAll registers a teardown run once after the last example under the
// group completes, provided initialization succeeded.
func (g *G) AfterAll(action Action) {
	g.node.Hooks.AfterAll = append(g.node.Hooks.AfterAll, action)
}

// Around registers a wrapper receiving the rest of the evaluation as an
// explicit continuation. Wrappers compose innermost-to-outermost: outer
// groups wrap inner groups wrap the example's action.
func (g *G) Around(wrap AroundFunc) {
	g.node.Hooks.Around = append(g.node.Hooks.Around, wrap)
}

// CountExamples returns the number of example leaves in the forest. The
// traversal is side-effect-free.
func CountExamples(nodes []*Node) int {
	count := 0
	for _, n := range nodes {
		if n.Kind == KindExample {
			count++
			continue
		}
		count += CountExamples(n.Children)
	}
	return count
}

func callerSource(skip int) string {
	_, file, line, ok := runtime.Caller(skip)
	if !ok {
		return ""
	}
	return fmt.Sprintf("%s:%d", file, line)
}
