package fixedpoint

// #region scale
// Scale is the fixed-point unit: 10000 represents 1.0.
const Scale = 10000

// #endregion scale

// #region clamp
// Clamp saturates v into [lo, hi].
func Clamp(v, lo, hi int64) int64 {
	if v < lo {
		return lo
	}
	if v > hi {
		return hi
	}
	return v
}

// #endregion clamp

// #region sqrt
// Sqrt returns floor(sqrt(n)) via Newton-Raphson iteration.
// Integer-only so the result is bit-reproducible across platforms.
func Sqrt(n uint64) uint64 {
	if n == 0 {
		return 0
	}
	if n < 4 {
		return 1
	}

	// Seed with n/2+1, an over-estimate of the root for all n >= 4 that
	// cannot overflow at the top of the u64 range.
	x := n
	y := x/2 + 1

	// The iteration decreases monotonically until it crosses floor(sqrt(n)).
	for y < x {
		x = y
		y = (x + n/x) / 2
	}

	return x
}

// #endregion sqrt
