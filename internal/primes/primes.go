// Package primes provides probabilistic primality testing and random prime
// generation for RSA key material.
package primes

import (
	"crypto/rand"
	"errors"
	"fmt"
	"io"
	"math/big"

	"github.com/keyforge/rsacore/internal/mathx"
)

// DefaultRounds is the number of Miller-Rabin witness rounds used when the
// caller does not choose one. The false-positive probability after r rounds
// is at most 4^-r.
const DefaultRounds = 40

// ErrBitsTooSmall is returned by GeneratePrime for requests below 16 bits,
// where Miller-Rabin witness sampling has too little room to be meaningful.
var ErrBitsTooSmall = errors.New("prime bit length too small")

// smallPrimes is the trial-division front line. Candidates divisible by any
// of these are rejected before Miller-Rabin runs.
var smallPrimes = []int64{2, 3, 5, 7, 11, 13, 17, 19, 23, 29, 31, 37}

var (
	one   = big.NewInt(1)
	two   = big.NewInt(2)
	three = big.NewInt(3)
)

// IsProbablePrime reports whether n is prime with overwhelming probability.
// It trial-divides by the small primes up to 37, then runs rounds of
// Miller-Rabin with independently random witnesses drawn from [2, n-2].
// Values below 2 are composite by definition here.
func IsProbablePrime(n *big.Int, rounds int) bool {
	if n.Cmp(two) < 0 {
		return false
	}
	rem := new(big.Int)
	for _, p := range smallPrimes {
		sp := big.NewInt(p)
		if n.Cmp(sp) == 0 {
			return true
		}
		if rem.Mod(n, sp).Sign() == 0 {
			return false
		}
	}

	// Write n-1 = d * 2^s with d odd.
	nMinus1 := new(big.Int).Sub(n, one)
	d := new(big.Int).Set(nMinus1)
	s := 0
	for d.Bit(0) == 0 {
		d.Rsh(d, 1)
		s++
	}

	nMinus3 := new(big.Int).Sub(n, three)
	for i := 0; i < rounds; i++ {
		a, err := rand.Int(rand.Reader, nMinus3)
		if err != nil {
			// crypto/rand failing is unrecoverable for a primality
			// decision; treat the candidate as composite and let the
			// caller resample.
			return false
		}
		a.Add(a, two) // witness in [2, n-2]
		if !witness(a, d, s, n, nMinus1) {
			return false
		}
	}
	return true
}

// witness reports whether a fails to prove n composite.
func witness(a, d *big.Int, s int, n, nMinus1 *big.Int) bool {
	x := mathx.ModExp(a, d, n)
	if x.Cmp(one) == 0 || x.Cmp(nMinus1) == 0 {
		return true
	}
	for i := 0; i < s-1; i++ {
		x.Mul(x, x)
		x.Mod(x, n)
		if x.Cmp(nMinus1) == 0 {
			return true
		}
	}
	return false
}

// GeneratePrime returns a random probable prime with exactly bits significant
// bits. The candidate's top bit is forced to 1 (guaranteeing the bit length)
// and its low bit is forced to 1 (oddness). Sampling repeats until a
// candidate passes IsProbablePrime; there is no iteration cap.
func GeneratePrime(bits int) (*big.Int, error) {
	if bits < 16 {
		return nil, fmt.Errorf("%w: %d bits", ErrBitsTooSmall, bits)
	}

	buf := make([]byte, (bits+7)/8)
	for {
		if _, err := io.ReadFull(rand.Reader, buf); err != nil {
			return nil, fmt.Errorf("read random candidate: %w", err)
		}

		// Drop excess high bits so the candidate has at most bits bits.
		if excess := len(buf)*8 - bits; excess > 0 {
			buf[0] &= 0xFF >> excess
		}

		x := new(big.Int).SetBytes(buf)
		x.SetBit(x, bits-1, 1)
		x.SetBit(x, 0, 1)

		if IsProbablePrime(x, DefaultRounds) {
			return x, nil
		}
	}
}
