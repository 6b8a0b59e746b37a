package rat

import (
	"math/big"
	"testing"

	"pgregory.net/rapid"
)

func TestNormalization(t *testing.T) {
	tests := []struct {
		num, den int64
		want     string
	}{
		{1, 1, "1"},
		{2, 4, "1/2"},
		{-2, 4, "-1/2"},
		{2, -4, "-1/2"},
		{-2, -4, "1/2"},
		{0, 5, "0"},
		{0, -5, "0"},
		{6, 3, "2"},
		{7, 3, "7/3"},
	}

	for _, tt := range tests {
		got := New(tt.num, tt.den)
		if got.String() != tt.want {
			t.Errorf("New(%d, %d) = %s, want %s", tt.num, tt.den, got.String(), tt.want)
		}
		if got.Den().Sign() <= 0 {
			t.Errorf("New(%d, %d) has non-positive denominator", tt.num, tt.den)
		}
	}
}

func TestZeroDenominatorPanics(t *testing.T) {
	defer func() {
		if recover() == nil {
			t.Error("expected panic for zero denominator")
		}
	}()
	New(1, 0)
}

func TestZeroValueUsable(t *testing.T) {
	var r Rat
	if !r.IsZero() {
		t.Error("zero value should be zero")
	}
	if got := r.Add(One()); got.Cmp(One()) != 0 {
		t.Errorf("0 + 1 = %s, want 1", got)
	}
}

func TestInt(t *testing.T) {
	if _, err := New(1, 2).Int(); err != ErrNotInteger {
		t.Errorf("expected ErrNotInteger for 1/2, got %v", err)
	}

	n, err := New(6, 3).Int()
	if err != nil {
		t.Fatalf("Int failed for 6/3: %v", err)
	}
	if n.Int64() != 2 {
		t.Errorf("6/3 = %d, want 2", n.Int64())
	}
}

func TestFloorCeil(t *testing.T) {
	tests := []struct {
		num, den     int64
		floor, ceil  int64
	}{
		{7, 2, 3, 4},
		{-7, 2, -4, -3},
		{6, 2, 3, 3},
		{0, 1, 0, 0},
		{-1, 3, -1, 0},
	}

	for _, tt := range tests {
		r := New(tt.num, tt.den)
		if got := r.Floor().Int64(); got != tt.floor {
			t.Errorf("Floor(%d/%d) = %d, want %d", tt.num, tt.den, got, tt.floor)
		}
		if got := r.Ceil().Int64(); got != tt.ceil {
			t.Errorf("Ceil(%d/%d) = %d, want %d", tt.num, tt.den, got, tt.ceil)
		}
	}
}

func TestInvZeroPanics(t *testing.T) {
	defer func() {
		if recover() == nil {
			t.Error("expected panic for Inv of zero")
		}
	}()
	Zero().Inv()
}

func genRat(t *rapid.T, label string) Rat {
	num := rapid.Int64Range(-1000, 1000).Draw(t, label+"_num")
	den := rapid.Int64Range(1, 1000).Draw(t, label+"_den")
	return New(num, den)
}

func TestAddCommutative(t *testing.T) {
	rapid.Check(t, func(t *rapid.T) {
		a := genRat(t, "a")
		b := genRat(t, "b")
		if a.Add(b).Cmp(b.Add(a)) != 0 {
			t.Fatalf("a+b != b+a for a=%s b=%s", a, b)
		}
	})
}

func TestMulInverse(t *testing.T) {
	rapid.Check(t, func(t *rapid.T) {
		a := genRat(t, "a")
		if a.IsZero() {
			return
		}
		if got := a.Mul(a.Inv()); got.Cmp(One()) != 0 {
			t.Fatalf("a * 1/a = %s for a=%s, want 1", got, a)
		}
	})
}

func TestReducedForm(t *testing.T) {
	rapid.Check(t, func(t *rapid.T) {
		a := genRat(t, "a")
		b := genRat(t, "b")
		for _, r := range []Rat{a.Add(b), a.Mul(b), a.Sub(b), a.Neg()} {
			if r.Den().Sign() <= 0 {
				t.Fatalf("non-positive denominator in %s", r)
			}
			g := new(big.Int).GCD(nil, nil, new(big.Int).Abs(r.Num()), r.Den())
			if g.Int64() != 1 {
				t.Fatalf("not in lowest terms: %s (gcd %s)", r, g)
			}
		}
	})
}

func TestFloorCeilBracket(t *testing.T) {
	rapid.Check(t, func(t *rapid.T) {
		a := genRat(t, "a")
		fl := a.Floor()
		cl := a.Ceil()
		if a.Sub(Rat{}).Cmp(a) != 0 {
			t.Fatal("identity broken")
		}
		flR := FromInt(fl.Int64())
		clR := FromInt(cl.Int64())
		if flR.Cmp(a) > 0 {
			t.Fatalf("floor(%s) = %s > value", a, fl)
		}
		if clR.Cmp(a) < 0 {
			t.Fatalf("ceil(%s) = %s < value", a, cl)
		}
		if new(big.Int).Sub(cl, fl).Int64() > 1 {
			t.Fatalf("ceil - floor > 1 for %s", a)
		}
	})
}
