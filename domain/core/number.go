package core

import (
	"math"
	"math/big"
	"strconv"
)

// Number is a real value. Values read from user input keep an exact
// rational form so boundary checks against 0, 1 and integer limits are
// exact; derived values carry only their float64 approximation.
type Number struct {
	rat *big.Rat
	f   float64
}

// NewRat returns an exact Number holding a copy of r.
func NewRat(r *big.Rat) Number {
	c := new(big.Rat).Set(r)
	f, _ := c.Float64()
	return Number{rat: c, f: f}
}

// NewInt returns the exact integer i.
func NewInt(i int64) Number {
	return NewRat(big.NewRat(i, 1))
}

// NewFloat returns an inexact Number.
func NewFloat(f float64) Number {
	return Number{f: f}
}

// IsExact reports whether n carries an exact rational value.
func (n Number) IsExact() bool {
	return n.rat != nil
}

// Float64 returns the nearest float64.
func (n Number) Float64() float64 {
	return n.f
}

// Rat returns an exact copy, or the binary expansion of the float for
// inexact values. It returns nil for NaN and infinities.
func (n Number) Rat() *big.Rat {
	if n.rat != nil {
		return new(big.Rat).Set(n.rat)
	}
	if math.IsNaN(n.f) || math.IsInf(n.f, 0) {
		return nil
	}
	return new(big.Rat).SetFloat64(n.f)
}

func (n Number) Sign() int {
	if n.rat != nil {
		return n.rat.Sign()
	}
	switch {
	case n.f > 0:
		return 1
	case n.f < 0:
		return -1
	}
	return 0
}

// Cmp compares exactly when both operands are exact.
func (n Number) Cmp(m Number) int {
	if n.rat != nil && m.rat != nil {
		return n.rat.Cmp(m.rat)
	}
	switch {
	case n.f < m.f:
		return -1
	case n.f > m.f:
		return 1
	}
	return 0
}

func (n Number) CmpInt(i int64) int {
	return n.Cmp(NewInt(i))
}

// IsInteger reports whether n is a finite whole number.
func (n Number) IsInteger() bool {
	if n.rat != nil {
		return n.rat.IsInt()
	}
	return !math.IsInf(n.f, 0) && n.f == math.Trunc(n.f)
}

// Int64 returns n as an int64 when it is a whole number in range.
func (n Number) Int64() (int64, bool) {
	if !n.IsInteger() {
		return 0, false
	}
	if n.rat != nil {
		num := n.rat.Num()
		if !num.IsInt64() {
			return 0, false
		}
		return num.Int64(), true
	}
	if n.f > math.MaxInt64 || n.f < math.MinInt64 {
		return 0, false
	}
	return int64(n.f), true
}

// IsProbability reports 0 <= n <= 1.
func (n Number) IsProbability() bool {
	return n.Sign() >= 0 && n.CmpInt(1) <= 0
}

// IsOpenProbability reports 0 < n < 1.
func (n Number) IsOpenProbability() bool {
	return n.Sign() > 0 && n.CmpInt(1) < 0
}

func (n Number) String() string {
	if n.rat != nil {
		return n.rat.RatString()
	}
	return strconv.FormatFloat(n.f, 'g', -1, 64)
}

// Value is either a known Number or the explicit unknown placeholder.
type Value struct {
	num   Number
	known bool
}

// Known wraps n as a known value.
func Known(n Number) Value {
	return Value{num: n, known: true}
}

// Unknown returns the placeholder for a value the caller asks to solve for.
func Unknown() Value {
	return Value{}
}

func (v Value) IsKnown() bool {
	return v.known
}

// Number returns the known number; ok is false for unknowns.
func (v Value) Number() (Number, bool) {
	return v.num, v.known
}

func (v Value) String() string {
	if !v.known {
		return "-"
	}
	return v.num.String()
}

// Add returns n+m, exact when both operands are.
func (n Number) Add(m Number) Number {
	if n.rat != nil && m.rat != nil {
		return NewRat(new(big.Rat).Add(n.rat, m.rat))
	}
	return NewFloat(n.f + m.f)
}

// Sub returns n-m, exact when both operands are.
func (n Number) Sub(m Number) Number {
	if n.rat != nil && m.rat != nil {
		return NewRat(new(big.Rat).Sub(n.rat, m.rat))
	}
	return NewFloat(n.f - m.f)
}

// Mul returns n*m, exact when both operands are.
func (n Number) Mul(m Number) Number {
	if n.rat != nil && m.rat != nil {
		return NewRat(new(big.Rat).Mul(n.rat, m.rat))
	}
	return NewFloat(n.f * m.f)
}

// Quo returns n/m, exact when both operands are. The caller rules out a
// zero divisor.
func (n Number) Quo(m Number) Number {
	if n.rat != nil && m.rat != nil && m.rat.Sign() != 0 {
		return NewRat(new(big.Rat).Quo(n.rat, m.rat))
	}
	return NewFloat(n.f / m.f)
}

func (n Number) Abs() Number {
	if n.Sign() < 0 {
		return NewInt(0).Sub(n)
	}
	return n
}
