// Package rat implements exact rational arithmetic for the solver core.
// Values are immutable and always kept in lowest terms with a positive
// denominator; zero is canonically 0/1. Numerator and denominator are
// arbitrary-precision: elimination multiplies coefficients together and
// fixed-width integers would silently corrupt equality checks.
package rat

import (
	"errors"
	"fmt"
	"math/big"
)

// ErrNotInteger is returned by Int when the value has a non-unit denominator.
var ErrNotInteger = errors.New("rational is not an integer")

var (
	bigOne = big.NewInt(1)
)

// Rat is an exact rational number. The zero value is 0/1 and ready to use.
type Rat struct {
	num *big.Int
	den *big.Int // always > 0 once normalized
}

// New returns the rational num/den in lowest terms. den must be non-zero.
func New(num, den int64) Rat {
	if den == 0 {
		panic("rat: zero denominator")
	}
	return normalize(big.NewInt(num), big.NewInt(den))
}

// FromInt returns n/1.
func FromInt(n int64) Rat {
	return Rat{num: big.NewInt(n), den: big.NewInt(1)}
}

// Zero returns 0/1.
func Zero() Rat { return FromInt(0) }

// One returns 1/1.
func One() Rat { return FromInt(1) }

func normalize(num, den *big.Int) Rat {
	if den.Sign() == 0 {
		panic("rat: zero denominator")
	}
	if num.Sign() == 0 {
		return Rat{num: big.NewInt(0), den: big.NewInt(1)}
	}
	n := new(big.Int).Set(num)
	d := new(big.Int).Set(den)
	if d.Sign() < 0 {
		n.Neg(n)
		d.Neg(d)
	}
	g := new(big.Int).GCD(nil, nil, new(big.Int).Abs(n), d)
	if g.Cmp(bigOne) != 0 {
		n.Quo(n, g)
		d.Quo(d, g)
	}
	return Rat{num: n, den: d}
}

func (r Rat) parts() (*big.Int, *big.Int) {
	if r.num == nil {
		return big.NewInt(0), big.NewInt(1)
	}
	return r.num, r.den
}

// Add returns r + s.
func (r Rat) Add(s Rat) Rat {
	rn, rd := r.parts()
	sn, sd := s.parts()
	num := new(big.Int).Mul(rn, sd)
	num.Add(num, new(big.Int).Mul(sn, rd))
	den := new(big.Int).Mul(rd, sd)
	return normalize(num, den)
}

// Sub returns r - s.
func (r Rat) Sub(s Rat) Rat {
	return r.Add(s.Neg())
}

// Mul returns r * s.
func (r Rat) Mul(s Rat) Rat {
	rn, rd := r.parts()
	sn, sd := s.parts()
	num := new(big.Int).Mul(rn, sn)
	den := new(big.Int).Mul(rd, sd)
	return normalize(num, den)
}

// Neg returns -r.
func (r Rat) Neg() Rat {
	rn, rd := r.parts()
	return Rat{num: new(big.Int).Neg(rn), den: new(big.Int).Set(rd)}
}

// Inv returns 1/r. r must be non-zero; the reducer only inverts pivots,
// which are chosen to be non-zero.
func (r Rat) Inv() Rat {
	rn, rd := r.parts()
	if rn.Sign() == 0 {
		panic("rat: inverse of zero")
	}
	return normalize(new(big.Int).Set(rd), new(big.Int).Set(rn))
}

// IsZero reports whether r == 0.
func (r Rat) IsZero() bool {
	rn, _ := r.parts()
	return rn.Sign() == 0
}

// Sign returns -1, 0, or +1 according to the sign of r.
func (r Rat) Sign() int {
	rn, _ := r.parts()
	return rn.Sign()
}

// Cmp compares r and s, returning -1, 0, or +1.
func (r Rat) Cmp(s Rat) int {
	return r.Sub(s).Sign()
}

// Int returns the integer value of r. It fails with ErrNotInteger when the
// reduced denominator is not 1; this is how non-integral candidate
// assignments are rejected during the search.
func (r Rat) Int() (*big.Int, error) {
	rn, rd := r.parts()
	if rd.Cmp(bigOne) != 0 {
		return nil, ErrNotInteger
	}
	return new(big.Int).Set(rn), nil
}

// Floor returns the largest integer <= r.
func (r Rat) Floor() *big.Int {
	rn, rd := r.parts()
	q := new(big.Int)
	m := new(big.Int)
	q.QuoRem(rn, rd, m)
	if m.Sign() < 0 {
		q.Sub(q, bigOne)
	}
	return q
}

// Ceil returns the smallest integer >= r.
func (r Rat) Ceil() *big.Int {
	rn, rd := r.parts()
	q := new(big.Int)
	m := new(big.Int)
	q.QuoRem(rn, rd, m)
	if m.Sign() > 0 {
		q.Add(q, bigOne)
	}
	return q
}

// Num returns a copy of the numerator.
func (r Rat) Num() *big.Int {
	rn, _ := r.parts()
	return new(big.Int).Set(rn)
}

// Den returns a copy of the denominator (always positive).
func (r Rat) Den() *big.Int {
	_, rd := r.parts()
	return new(big.Int).Set(rd)
}

// String formats r as "n" or "n/d".
func (r Rat) String() string {
	rn, rd := r.parts()
	if rd.Cmp(bigOne) == 0 {
		return rn.String()
	}
	return fmt.Sprintf("%s/%s", rn, rd)
}
