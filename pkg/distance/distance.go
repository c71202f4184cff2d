// Package distance implements the lexical similarity measure used to match
// user input against edge keywords.
package distance

import "strings"

// Scorer computes a non-negative matching cost between a keyword and an input.
// Lower is better; zero means identical.
type Scorer func(a, b string) int

// Score returns the Levenshtein distance between a and b, ignoring case.
//
// Both inputs are upper-cased and compared rune by rune, so the result is the
// minimum number of single-rune insertions, deletions and substitutions that
// turn one into the other. It is symmetric, Score(a, a) == 0, and an empty
// input costs the full length of the other one.
func Score(a, b string) int {
	ra := []rune(strings.ToUpper(a))
	rb := []rune(strings.ToUpper(b))

	if len(ra) == 0 {
		return len(rb)
	}
	if len(rb) == 0 {
		return len(ra)
	}

	// Keep the rolling row on the shorter side.
	if len(rb) > len(ra) {
		ra, rb = rb, ra
	}

	costs := make([]int, len(rb)+1)
	for k := range costs {
		costs[k] = k
	}

	for i, ca := range ra {
		costs[0] = i + 1
		corner := i

		for j, cb := range rb {
			upper := costs[j+1]
			if ca == cb {
				costs[j+1] = corner
			} else {
				costs[j+1] = min(costs[j], upper, corner) + 1
			}
			corner = upper
		}
	}

	return costs[len(rb)]
}
