package spec

import "strings"

// PathSeparator joins group labels and the requirement when a Path is
// rendered or keyed.
const PathSeparator = " > "

// Path identifies one example within a run: the ordered labels of its
// enclosing groups plus the example's requirement text. Paths are not
// guaranteed unique when labels repeat.
type Path struct {
	Groups      []string
	Requirement string
}

func (p Path) String() string {
	if len(p.Groups) == 0 {
		return p.Requirement
	}
	return strings.Join(p.Groups, PathSeparator) + PathSeparator + p.Requirement
}

// Key returns a string usable as a set member for rerun filtering.
func (p Path) Key() string {
	return p.String()
}
