package services

import "strings"

// diffRatio measures line-level similarity between two texts in [0, 1]:
// twice the number of common lines (longest common subsequence) over
// the total line count. 1.0 means identical, 0 means nothing shared.
func diffRatio(old, new string) float64 {
	if old == new {
		return 1.0
	}

	a := strings.Split(old, "\n")
	b := strings.Split(new, "\n")
	if len(a) == 0 && len(b) == 0 {
		return 1.0
	}

	common := lcsLines(a, b)
	return 2.0 * float64(common) / float64(len(a)+len(b))
}

// lcsLines computes the longest common subsequence length over lines
// with a two-row dynamic program.
func lcsLines(a, b []string) int {
	if len(a) == 0 || len(b) == 0 {
		return 0
	}

	prev := make([]int, len(b)+1)
	curr := make([]int, len(b)+1)
	for i := 1; i <= len(a); i++ {
		for j := 1; j <= len(b); j++ {
			if a[i-1] == b[j-1] {
				curr[j] = prev[j-1] + 1
			} else if prev[j] >= curr[j-1] {
				curr[j] = prev[j]
			} else {
				curr[j] = curr[j-1]
			}
		}
		prev, curr = curr, prev
	}
	return prev[len(b)]
}
