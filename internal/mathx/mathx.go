// Package mathx implements the arbitrary-precision number theory used by the
// RSA core: Euclidean GCD, the extended Euclidean algorithm for modular
// inverses, and modular exponentiation by repeated squaring.
//
// The routines are written out explicitly over math/big values rather than
// delegating to big.Int's Exp/ModInverse fast paths, so the arithmetic the
// library performs is exactly the arithmetic it documents.
package mathx

import (
	"errors"
	"math/big"
)

// ErrNoInverse is returned by ModInverse when gcd(a, m) != 1.
var ErrNoInverse = errors.New("no modular inverse exists")

var one = big.NewInt(1)

// GCD returns the greatest common divisor of a and b using the Euclidean
// algorithm. Both inputs must be non-negative. GCD(0, 0) is 0.
func GCD(a, b *big.Int) *big.Int {
	x := new(big.Int).Set(a)
	y := new(big.Int).Set(b)
	for y.Sign() != 0 {
		x, y = y, x.Mod(x, y)
	}
	return x
}

// ExtGCD returns (g, x, y) such that a*x + b*y = g = gcd(a, b).
func ExtGCD(a, b *big.Int) (g, x, y *big.Int) {
	if b.Sign() == 0 {
		return new(big.Int).Set(a), big.NewInt(1), big.NewInt(0)
	}
	q, r := new(big.Int).QuoRem(a, b, new(big.Int))
	g, x1, y1 := ExtGCD(b, r)
	// x = y1, y = x1 - (a/b)*y1
	return g, y1, new(big.Int).Sub(x1, q.Mul(q, y1))
}

// ModInverse returns the multiplicative inverse of a modulo m, in [0, m).
// It returns ErrNoInverse when a and m are not coprime.
func ModInverse(a, m *big.Int) (*big.Int, error) {
	g, x, _ := ExtGCD(a, m)
	if g.Cmp(one) != 0 {
		return nil, ErrNoInverse
	}
	return x.Mod(x, m), nil
}

// ModExp returns base^exp mod m computed by binary square-and-multiply.
// exp must be non-negative and m must be positive.
//
// This implementation is NOT constant-time: the multiply in each iteration
// depends on the corresponding exponent bit. That leak is accepted for this
// library; callers needing side-channel resistance must not use it with
// secret exponents on shared hardware.
func ModExp(base, exp, m *big.Int) *big.Int {
	if m.Cmp(one) == 0 {
		return big.NewInt(0)
	}
	result := big.NewInt(1)
	b := new(big.Int).Mod(base, m)
	e := new(big.Int).Set(exp)
	for e.Sign() > 0 {
		if e.Bit(0) == 1 {
			result.Mul(result, b)
			result.Mod(result, m)
		}
		e.Rsh(e, 1)
		b.Mul(b, b)
		b.Mod(b, m)
	}
	return result
}

// ByteLen returns the number of bytes needed to represent n,
// ceil(bitLen(n)/8).
func ByteLen(n *big.Int) int {
	return (n.BitLen() + 7) / 8
}
