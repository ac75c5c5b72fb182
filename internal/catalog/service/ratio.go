package service

import (
	edlib "github.com/hbollon/go-edlib"
)

// WeightedRatio scores two normalized strings on a 0..100 scale.
//
// The base score is the Indel ratio 200*LCS/(len(a)+len(b)). When one string is at
// least 1.5x longer than the other, the best alignment of the shorter string inside
// the longer one is also tried and scaled down (0.9, or 0.6 from 8x on), so a short code
// typed by a user can still reach a long catalog model. Normalized strings carry no
// whitespace, which makes the token-based variants of the metric collapse into these
// two cases.
func WeightedRatio(a, b string) float64 {
	if a == "" || b == "" {
		return 0
	}
	la, lb := len(a), len(b)
	if la > lb {
		a, b = b, a
		la, lb = lb, la
	}

	score := ratio(a, b)
	lenRatio := float64(lb) / float64(la)
	if lenRatio < 1.5 {
		return score
	}

	scale := 0.9
	if lenRatio >= 8 {
		scale = 0.6
	}
	if p := partialRatio(a, b) * scale; p > score {
		score = p
	}
	return score
}

func ratio(a, b string) float64 {
	total := len(a) + len(b)
	if total == 0 {
		return 100
	}
	return 200 * float64(edlib.LCS(a, b)) / float64(total)
}

// partialRatio slides short over long, including windows hanging off either end.
func partialRatio(short, long string) float64 {
	m, n := len(short), len(long)
	best := 0.0
	for start := -(m - 1); start < n; start++ {
		lo, hi := start, start+m
		if lo < 0 {
			lo = 0
		}
		if hi > n {
			hi = n
		}
		if s := ratio(short, long[lo:hi]); s > best {
			best = s
			if best == 100 {
				break
			}
		}
	}
	return best
}
