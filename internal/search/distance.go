// Package search filters and ranks case cards against free-text queries
// using exact substring matching with an edit-distance fallback.
package search

// Distance returns the optimal string alignment distance between a and b:
// the number of single-rune insertions, deletions, substitutions and
// adjacent transpositions needed to turn one into the other.
func Distance(a, b string) int {
	return osa([]rune(a), []rune(b), -1)
}

// BoundedDistance is Distance with an upper bound. Once the distance is
// known to exceed limit it stops and returns limit+1.
func BoundedDistance(a, b string, limit int) int {
	if limit < 0 {
		limit = 0
	}
	return osa([]rune(a), []rune(b), limit)
}

// osa runs the dynamic program over three rolling rows. A negative limit
// disables the early exit.
func osa(a, b []rune, limit int) int {
	if limit >= 0 && abs(len(a)-len(b)) > limit {
		return limit + 1
	}
	if len(a) == 0 {
		return clamp(len(b), limit)
	}
	if len(b) == 0 {
		return clamp(len(a), limit)
	}

	width := len(b) + 1
	prevPrev := make([]int, width)
	prev := make([]int, width)
	cur := make([]int, width)
	for j := range prev {
		prev[j] = j
	}

	prevMin := 0
	for i := 1; i <= len(a); i++ {
		cur[0] = i
		rowMin := cur[0]
		for j := 1; j <= len(b); j++ {
			cost := 1
			if a[i-1] == b[j-1] {
				cost = 0
			}
			best := prev[j] + 1
			if v := cur[j-1] + 1; v < best {
				best = v
			}
			if v := prev[j-1] + cost; v < best {
				best = v
			}
			if i > 1 && j > 1 && a[i-1] == b[j-2] && a[i-2] == b[j-1] {
				if v := prevPrev[j-2] + 1; v < best {
					best = v
				}
			}
			cur[j] = best
			if best < rowMin {
				rowMin = best
			}
		}
		// Later rows build on this row and, through transpositions, the one before it.
		if limit >= 0 && rowMin > limit && prevMin > limit {
			return limit + 1
		}
		prevMin = rowMin
		prevPrev, prev, cur = prev, cur, prevPrev
	}
	return clamp(prev[len(b)], limit)
}

func clamp(d, limit int) int {
	if limit >= 0 && d > limit {
		return limit + 1
	}
	return d
}

func abs(v int) int {
	if v < 0 {
		return -v
	}
	return v
}
