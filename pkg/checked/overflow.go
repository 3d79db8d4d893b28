// Package checked provides overflow-checked integer arithmetic shared by
// every component that must fail an operation rather than silently wrap:
// buffer growth, gap-buffer growth, and the m4 arithmetic built-ins.
package checked

import "math"

// Add returns a+b and true, or (0, false) if the addition overflows a
// 64-bit signed integer.
func Add(a, b int64) (int64, bool) {
	if b > 0 && a > math.MaxInt64-b {
		return 0, false
	}

	if b < 0 && a < math.MinInt64-b {
		return 0, false
	}

	return a + b, true
}

// Sub returns a-b and true, or (0, false) on overflow.
func Sub(a, b int64) (int64, bool) {
	if b == math.MinInt64 {
		if a >= 0 {
			return 0, false
		}

		return a - b, true
	}

	return Add(a, -b)
}

// Mul returns a*b and true, or (0, false) if the multiplication overflows a
// 64-bit signed integer.
func Mul(a, b int64) (int64, bool) {
	if a == 0 || b == 0 {
		return 0, true
	}

	if (a == -1 && b == math.MinInt64) || (b == -1 && a == math.MinInt64) {
		return 0, false
	}

	product := a * b
	if product/b != a {
		return 0, false
	}

	return product, true
}

// AddInt is the int-width convenience form of [Add].
func AddInt(a, b int) (int, bool) {
	r, ok := Add(int64(a), int64(b))
	if !ok || r < math.MinInt || r > math.MaxInt {
		return 0, false
	}

	return int(r), true
}

// MulInt is the int-width convenience form of [Mul].
func MulInt(a, b int) (int, bool) {
	r, ok := Mul(int64(a), int64(b))
	if !ok || r < math.MinInt || r > math.MaxInt {
		return 0, false
	}

	return int(r), true
}
