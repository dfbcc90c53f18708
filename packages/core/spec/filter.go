package spec

// Predicate decides whether an example identified by path is kept.
type Predicate func(path Path) bool

// Filter returns a pruned copy of the forest containing only examples the
// predicate keeps. A group whose children are all filtered out is dropped
// entirely rather than emitted empty. The input forest is not modified.
func Filter(nodes []*Node, keep Predicate) []*Node {
	return filterLevel(nodes, nil, keep)
}

func filterLevel(nodes []*Node, groups []string, keep Predicate) []*Node {
	var out []*Node
	for _, n := range nodes {
		if n.Kind == KindExample {
			if keep(Path{Groups: groups, Requirement: n.Label}) {
				out = append(out, n)
			}
			continue
		}
		childGroups := append(append([]string(nil), groups...), n.Label)
		children := filterLevel(n.Children, childGroups, keep)
		if len(children) == 0 {
			continue
		}
		copied := *n
		copied.Children = children
		out = append(out, &copied)
	}
	return out
}

// MatchPattern matches a path string against a simple glob pattern
// supporting a leading and/or trailing "*". An empty pattern matches
// everything.
func MatchPattern(name, pattern string) bool {
	if pattern == "" {
		return true
	}

	if pattern[0] == '*' && pattern[len(pattern)-1] == '*' && len(pattern) > 1 {
		substr := pattern[1 : len(pattern)-1]
		for i := 0; i <= len(name)-len(substr); i++ {
			if name[i:i+len(substr)] == substr {
				return true
			}
		}
		return false
	}

	if pattern[0] == '*' {
		suffix := pattern[1:]
		return len(name) >= len(suffix) && name[len(name)-len(suffix):] == suffix
	}

	if pattern[len(pattern)-1] == '*' {
		prefix := pattern[:len(pattern)-1]
		return len(name) >= len(prefix) && name[:len(prefix)] == prefix
	}

	return name == pattern
}
