// Package diff aligns two token sequences using a longest common
// subsequence and reports the alignment as an ordered list of chunks.
//
// Concatenating the ExpectedOnly and Both chunks in order reconstructs the
// expected sequence; concatenating ActualOnly and Both reconstructs the
// actual sequence. Ties in minimality are broken by preferring the
// earliest-indexed alignment, so identical inputs always produce identical
// output.
package diff

import "strings"

// Op tags a chunk of the alignment.
type Op int

const (
	// Both marks tokens present in expected and actual.
	Both Op = iota
	// ExpectedOnly marks tokens present only in the expected sequence.
	ExpectedOnly
	// ActualOnly marks tokens present only in the actual sequence.
	ActualOnly
)

// Chunk is a maximal run of consecutive tokens sharing one Op.
type Chunk struct {
	Op     Op
	Tokens []string
}

// Sequences computes the alignment between expected and actual.
func Sequences(expected, actual []string) []Chunk {
	m, n := len(expected), len(actual)

	// lcs[i][j] = length of the LCS of expected[i:] and actual[j:].
	lcs := make([][]int, m+1)
	for i := range lcs {
		lcs[i] = make([]int, n+1)
	}
	for i := m - 1; i >= 0; i-- {
		for j := n - 1; j >= 0; j-- {
			if expected[i] == actual[j] {
				lcs[i][j] = lcs[i+1][j+1] + 1
			} else if lcs[i+1][j] >= lcs[i][j+1] {
				lcs[i][j] = lcs[i+1][j]
			} else {
				lcs[i][j] = lcs[i][j+1]
			}
		}
	}

	var chunks []Chunk
	push := func(op Op, token string) {
		if len(chunks) > 0 && chunks[len(chunks)-1].Op == op {
			last := &chunks[len(chunks)-1]
			last.Tokens = append(last.Tokens, token)
			return
		}
		chunks = append(chunks, Chunk{Op: op, Tokens: []string{token}})
	}

	// Walk from the front so equal-length alternatives resolve to the
	// earliest-indexed alignment: matches are taken as soon as they are
	// optimal, and expected tokens are consumed before actual ones.
	i, j := 0, 0
	for i < m && j < n {
		switch {
		case expected[i] == actual[j]:
			push(Both, expected[i])
			i++
			j++
		case lcs[i+1][j] >= lcs[i][j+1]:
			push(ExpectedOnly, expected[i])
			i++
		default:
			push(ActualOnly, actual[j])
			j++
		}
	}
	for ; i < m; i++ {
		push(ExpectedOnly, expected[i])
	}
	for ; j < n; j++ {
		push(ActualOnly, actual[j])
	}

	return chunks
}

// Lines splits two strings on newlines and aligns the resulting lines.
func Lines(expected, actual string) []Chunk {
	return Sequences(splitLines(expected), splitLines(actual))
}

func splitLines(s string) []string {
	if s == "" {
		return nil
	}
	return strings.Split(s, "\n")
}
