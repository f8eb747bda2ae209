package solver

import (
	"statcalc/domain/core"
)

// smallestInteger returns the smallest n >= lo with ok(n) true, assuming
// ok is monotone. The bracket doubles up to max.
func smallestInteger(param string, lo, max int64, maxIter int, ok func(int64) (bool, error)) (int64, error) {
	iter := 0
	hi := lo
	for {
		hit, err := ok(hi)
		if err != nil {
			return 0, err
		}
		if hit {
			break
		}
		iter++
		if hi >= max || iter >= maxIter {
			return 0, core.NewNonConvergenceError(param, iter)
		}
		lo = hi + 1
		hi = min(hi*2, max)
	}

	for lo < hi {
		iter++
		if iter > maxIter {
			return 0, core.NewNonConvergenceError(param, iter)
		}
		mid := lo + (hi-lo)/2
		hit, err := ok(mid)
		if err != nil {
			return 0, err
		}
		if hit {
			hi = mid
		} else {
			lo = mid + 1
		}
	}
	return hi, nil
}

// bisectIncreasing finds x >= 0 with |f(x) - target| < tol for a
// non-decreasing f. The upper bracket starts at step and doubles.
func bisectIncreasing(param string, f func(float64) float64, target, step, tol float64, maxIter int) (float64, error) {
	lo, hi := 0.0, step
	if f(lo) >= target {
		return lo, nil
	}

	iter := 0
	for f(hi) < target {
		iter++
		if iter >= maxIter {
			return 0, core.NewNonConvergenceError(param, iter)
		}
		lo, hi = hi, hi*2
	}

	for ; iter < maxIter; iter++ {
		mid := lo + (hi-lo)/2
		v := f(mid)
		if d := v - target; d < tol && d > -tol {
			return mid, nil
		}
		if v < target {
			lo = mid
		} else {
			hi = mid
		}
	}
	return 0, core.NewNonConvergenceError(param, iter)
}
