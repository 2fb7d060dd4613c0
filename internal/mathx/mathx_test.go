package mathx

import (
	"errors"
	"math/big"
	"testing"
)

func bi(v int64) *big.Int { return big.NewInt(v) }

func TestGCD(t *testing.T) {
	t.Parallel()
	tests := []struct {
		name    string
		a, b, g int64
	}{
		{"coprime", 17, 31, 1},
		{"common factor", 12, 18, 6},
		{"equal", 7, 7, 7},
		{"zero left", 0, 5, 5},
		{"zero right", 5, 0, 5},
		{"both zero", 0, 0, 0},
		{"large multiple", 1 << 40, 1 << 20, 1 << 20},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := GCD(bi(tt.a), bi(tt.b))
			if got.Cmp(bi(tt.g)) != 0 {
				t.Errorf("GCD(%d, %d) = %v, want %d", tt.a, tt.b, got, tt.g)
			}
		})
	}
}

func TestGCD_DoesNotMutateInputs(t *testing.T) {
	t.Parallel()
	a := bi(48)
	b := bi(18)
	GCD(a, b)
	if a.Cmp(bi(48)) != 0 || b.Cmp(bi(18)) != 0 {
		t.Errorf("inputs mutated: a=%v b=%v", a, b)
	}
}

func TestExtGCD_BezoutIdentity(t *testing.T) {
	t.Parallel()
	pairs := [][2]int64{{240, 46}, {65537, 3120}, {99991, 17}, {12, 0}}
	for _, p := range pairs {
		a, b := bi(p[0]), bi(p[1])
		g, x, y := ExtGCD(a, b)

		// a*x + b*y must equal g
		lhs := new(big.Int).Mul(a, x)
		lhs.Add(lhs, new(big.Int).Mul(b, y))
		if lhs.Cmp(g) != 0 {
			t.Errorf("ExtGCD(%v, %v): got x=%v y=%v g=%v, identity = %v", a, b, x, y, g, lhs)
		}
		if g.Cmp(GCD(a, b)) != 0 {
			t.Errorf("ExtGCD(%v, %v) gcd = %v, want %v", a, b, g, GCD(a, b))
		}
	}
}

func TestModInverse(t *testing.T) {
	t.Parallel()
	tests := []struct {
		name string
		a, m int64
	}{
		{"small", 3, 7},
		{"common exponent", 65537, 99990},
		{"one", 1, 97},
		{"a larger than m", 101, 97},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			a, m := bi(tt.a), bi(tt.m)
			inv, err := ModInverse(a, m)
			if err != nil {
				t.Fatalf("ModInverse(%v, %v) error = %v", a, m, err)
			}
			if inv.Sign() < 0 || inv.Cmp(m) >= 0 {
				t.Errorf("inverse %v out of range [0, %v)", inv, m)
			}
			prod := new(big.Int).Mul(a, inv)
			prod.Mod(prod, m)
			if prod.Cmp(bi(1)) != 0 {
				t.Errorf("a*inv mod m = %v, want 1", prod)
			}
		})
	}
}

func TestModInverse_NoInverse(t *testing.T) {
	t.Parallel()
	_, err := ModInverse(bi(6), bi(9))
	if !errors.Is(err, ErrNoInverse) {
		t.Errorf("ModInverse(6, 9) error = %v, want ErrNoInverse", err)
	}
}

func TestModExp(t *testing.T) {
	t.Parallel()
	tests := []struct {
		name               string
		base, exp, m, want int64
	}{
		{"basic", 4, 13, 497, 445},
		{"zero exponent", 9, 0, 7, 1},
		{"identity base", 1, 1000, 13, 1},
		{"modulus one", 5, 3, 1, 0},
		{"base above modulus", 10, 2, 7, 2},
		{"fermat little", 2, 96, 97, 1},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := ModExp(bi(tt.base), bi(tt.exp), bi(tt.m))
			if got.Cmp(bi(tt.want)) != 0 {
				t.Errorf("ModExp(%d, %d, %d) = %v, want %d", tt.base, tt.exp, tt.m, got, tt.want)
			}
		})
	}
}

func TestModExp_MatchesBigExp(t *testing.T) {
	t.Parallel()
	// Cross-check the hand-rolled ladder against the library primitive on
	// values wide enough to exercise multi-word arithmetic.
	base, _ := new(big.Int).SetString("f3c91a7b2d44e8091c6b23a9e0217f5d9b31", 16)
	exp, _ := new(big.Int).SetString("10001", 16)
	m, _ := new(big.Int).SetString("c7e3a91f5b2d8e6410392c7f8a1b5d3e99d1", 16)

	got := ModExp(base, exp, m)
	want := new(big.Int).Exp(base, exp, m)
	if got.Cmp(want) != 0 {
		t.Errorf("ModExp = %v, want %v", got, want)
	}
}

func TestModExp_DoesNotMutateInputs(t *testing.T) {
	t.Parallel()
	base, exp, m := bi(4), bi(13), bi(497)
	ModExp(base, exp, m)
	if base.Cmp(bi(4)) != 0 || exp.Cmp(bi(13)) != 0 || m.Cmp(bi(497)) != 0 {
		t.Errorf("inputs mutated: base=%v exp=%v m=%v", base, exp, m)
	}
}

func TestByteLen(t *testing.T) {
	t.Parallel()
	tests := []struct {
		n    int64
		want int
	}{
		{0, 0},
		{1, 1},
		{255, 1},
		{256, 2},
		{65535, 2},
		{65536, 3},
	}
	for _, tt := range tests {
		if got := ByteLen(bi(tt.n)); got != tt.want {
			t.Errorf("ByteLen(%d) = %d, want %d", tt.n, got, tt.want)
		}
	}
}
