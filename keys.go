package rsacore

import (
	"fmt"
	"math/big"

	"github.com/keyforge/rsacore/internal/mathx"
	"github.com/keyforge/rsacore/internal/primes"
)

// MinKeyBits is the smallest accepted RSA key size. Sizes this small are for
// coursework and interoperability testing; 2048 bits or more is the floor for
// anything that matters.
const MinKeyBits = 256

// DefaultPublicExponent is the public exponent used when the caller does not
// choose one.
const DefaultPublicExponent = 65537

// PublicKey is an RSA public key {e, n}.
type PublicKey struct {
	// E is the public exponent.
	E *big.Int
	// N is the modulus, the product of two primes.
	N *big.Int
}

// PrivateKey is an RSA private key {d, n}. N is the same modulus as the
// paired public key.
type PrivateKey struct {
	// D is the private exponent, the inverse of e modulo phi(n).
	D *big.Int
	// N is the modulus.
	N *big.Int
}

// KeyPair owns a matched public/private key sharing one modulus. It is
// created atomically by GenerateKeyPair and never mutated afterwards; callers
// replace it wholesale when they want new keys.
type KeyPair struct {
	Public  *PublicKey
	Private *PrivateKey
}

// Bits returns the modulus bit length.
func (pub *PublicKey) Bits() int { return pub.N.BitLen() }

// Size returns the modulus length in bytes. Every ciphertext block and every
// signature produced under this key is exactly Size bytes.
func (pub *PublicKey) Size() int { return mathx.ByteLen(pub.N) }

// Bits returns the modulus bit length.
func (priv *PrivateKey) Bits() int { return priv.N.BitLen() }

// Size returns the modulus length in bytes.
func (priv *PrivateKey) Size() int { return mathx.ByteLen(priv.N) }

func (pub *PublicKey) validate() error {
	if pub == nil || pub.E == nil || pub.N == nil || pub.E.Sign() <= 0 || pub.N.Sign() <= 0 {
		return fmt.Errorf("%w: public key missing e or n", ErrInvalidKey)
	}
	return nil
}

func (priv *PrivateKey) validate() error {
	if priv == nil || priv.D == nil || priv.N == nil || priv.D.Sign() <= 0 || priv.N.Sign() <= 0 {
		return fmt.Errorf("%w: private key missing d or n", ErrInvalidKey)
	}
	return nil
}

// keyGenConfig holds configuration for key generation.
type keyGenConfig struct {
	e     int64
	trace TraceFunc
}

// KeyGenOption configures GenerateKeyPair.
type KeyGenOption func(*keyGenConfig)

// WithPublicExponent sets the public exponent e. It must be odd and greater
// than 1; 65537 is the default and the sensible choice.
func WithPublicExponent(e int64) KeyGenOption {
	return func(c *keyGenConfig) {
		c.e = e
	}
}

// WithTrace subscribes fn to structured progress events during generation.
func WithTrace(fn TraceFunc) KeyGenOption {
	return func(c *keyGenConfig) {
		c.trace = fn
	}
}

// GenerateKeyPair creates an RSA keypair with a modulus of roughly bits bits.
//
// The two primes take floor(bits/2) and ceil(bits/2) bits. A pair is
// discarded and regenerated when the primes collide or when e is not coprime
// to phi(n); e itself is never changed behind the caller's back, so the
// exponent in the returned key is always exactly the one requested.
func GenerateKeyPair(bits int, opts ...KeyGenOption) (*KeyPair, error) {
	cfg := keyGenConfig{e: DefaultPublicExponent}
	for _, opt := range opts {
		opt(&cfg)
	}

	if bits < MinKeyBits {
		return nil, fmt.Errorf("%w: %d bits, need at least %d", ErrKeySize, bits, MinKeyBits)
	}
	if cfg.e <= 1 || cfg.e%2 == 0 {
		return nil, fmt.Errorf("%w: e must be odd and > 1, got %d", ErrPublicExponent, cfg.e)
	}

	e := big.NewInt(cfg.e)
	one := big.NewInt(1)
	half := bits / 2

	for attempt := 1; ; attempt++ {
		p, err := primes.GeneratePrime(half)
		if err != nil {
			return nil, fmt.Errorf("generate p: %w", err)
		}
		cfg.emit(TraceEvent{Op: TraceOpPrime, Attempt: attempt, Bits: half})

		q, err := primes.GeneratePrime(bits - half)
		if err != nil {
			return nil, fmt.Errorf("generate q: %w", err)
		}
		cfg.emit(TraceEvent{Op: TraceOpPrime, Attempt: attempt, Bits: bits - half})

		if p.Cmp(q) == 0 {
			cfg.emit(TraceEvent{Op: TraceOpRetry, Attempt: attempt, Bits: bits})
			continue
		}

		n := new(big.Int).Mul(p, q)
		phi := new(big.Int).Mul(new(big.Int).Sub(p, one), new(big.Int).Sub(q, one))

		if mathx.GCD(e, phi).Cmp(one) != 0 {
			cfg.emit(TraceEvent{Op: TraceOpRetry, Attempt: attempt, Bits: bits})
			continue
		}

		d, err := mathx.ModInverse(e, phi)
		if err != nil {
			// Unreachable after the gcd check above.
			return nil, fmt.Errorf("%w: %v", ErrInvalidKey, err)
		}

		cfg.emit(TraceEvent{Op: TraceOpDone, Attempt: attempt, Bits: n.BitLen()})
		return &KeyPair{
			Public:  &PublicKey{E: new(big.Int).Set(e), N: n},
			Private: &PrivateKey{D: d, N: new(big.Int).Set(n)},
		}, nil
	}
}

func (c *keyGenConfig) emit(ev TraceEvent) {
	if c.trace != nil {
		c.trace(ev)
	}
}
