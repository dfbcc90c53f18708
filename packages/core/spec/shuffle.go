package spec

import "math/rand"

// Shuffle returns a copy of the forest with siblings reordered at every
// level by a pseudorandom generator seeded with seed. The same seed and
// the same tree always produce the same order. The input forest is not
// modified.
func Shuffle(nodes []*Node, seed int64) []*Node {
	rng := rand.New(rand.NewSource(seed))
	return shuffleLevel(nodes, rng)
}

// shuffleLevel reorders one sibling slice and recurses in the shuffled
// order, so the generator's consumption sequence is fully determined by
// the tree shape and the seed.
func shuffleLevel(nodes []*Node, rng *rand.Rand) []*Node {
	out := make([]*Node, len(nodes))
	copy(out, nodes)
	rng.Shuffle(len(out), func(i, j int) {
		out[i], out[j] = out[j], out[i]
	})
	for i, n := range out {
		if n.Kind != KindGroup {
			continue
		}
		copied := *n
		copied.Children = shuffleLevel(n.Children, rng)
		out[i] = &copied
	}
	return out
}
