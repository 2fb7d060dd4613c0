package rsacore

import (
	"crypto/rand"
	"crypto/sha256"
	"fmt"
	"hash"
	"math/big"

	"github.com/keyforge/rsacore/internal/mathx"
	"github.com/keyforge/rsacore/internal/padding"
)

// Scheme selects the encryption padding.
type Scheme string

const (
	// SchemeOAEP is RSAES-OAEP, the default. Semantically secure; every
	// block carries a fresh random seed.
	SchemeOAEP Scheme = "oaep"
	// SchemePKCS1v15 is the legacy RSAES-PKCS1-v1_5 pad. Its 11-byte
	// overhead lets small moduli carry payloads OAEP cannot, which is the
	// only reason it is still here.
	SchemePKCS1v15 Scheme = "pkcs1v15"
)

// cipherConfig holds configuration for block encryption.
type cipherConfig struct {
	newHash func() hash.Hash
	label   []byte
	scheme  Scheme
}

// CipherOption configures the block and byte cipher operations.
type CipherOption func(*cipherConfig)

// WithHash sets the hash used by OAEP and its MGF1. Default: SHA-256.
// SHA-1 remains available for small legacy moduli where SHA-256's 66 bytes
// of OAEP overhead exceed the block size.
func WithHash(newHash func() hash.Hash) CipherOption {
	return func(c *cipherConfig) {
		c.newHash = newHash
	}
}

// WithLabel sets the OAEP label. Both sides must agree on it. Default: empty.
func WithLabel(label []byte) CipherOption {
	return func(c *cipherConfig) {
		c.label = label
	}
}

// WithScheme selects the padding scheme. Default: SchemeOAEP.
func WithScheme(s Scheme) CipherOption {
	return func(c *cipherConfig) {
		c.scheme = s
	}
}

func newCipherConfig(opts []CipherOption) cipherConfig {
	cfg := cipherConfig{newHash: sha256.New, scheme: SchemeOAEP}
	for _, opt := range opts {
		opt(&cfg)
	}
	return cfg
}

// capacity returns the largest plaintext one block can carry under k-byte
// moduli, which may be negative when the modulus is too small for the pad.
func (c *cipherConfig) capacity(k int) int {
	if c.scheme == SchemePKCS1v15 {
		return k - 11
	}
	return padding.OAEPCapacity(k, c.newHash)
}

func (c *cipherConfig) pad(msg []byte, k int) ([]byte, error) {
	if c.scheme == SchemePKCS1v15 {
		return padding.PadPKCS1v15(rand.Reader, msg, k)
	}
	return padding.EncodeOAEP(rand.Reader, c.newHash, msg, k, c.label)
}

func (c *cipherConfig) unpad(em []byte, k int) ([]byte, error) {
	if c.scheme == SchemePKCS1v15 {
		return padding.UnpadPKCS1v15(em)
	}
	return padding.DecodeOAEP(c.newHash, em, k, c.label)
}

// MaxMessageLen returns the longest message EncryptBlock accepts for the
// given modulus and options. A result <= 0 means the modulus cannot carry
// any payload under the selected scheme.
func MaxMessageLen(n *big.Int, opts ...CipherOption) int {
	cfg := newCipherConfig(opts)
	return cfg.capacity(mathx.ByteLen(n))
}

// EncryptBlock pads message into a single block and raises it to the public
// exponent. The ciphertext is exactly pub.Size() bytes, big-endian.
func EncryptBlock(message []byte, pub *PublicKey, opts ...CipherOption) ([]byte, error) {
	if err := pub.validate(); err != nil {
		return nil, err
	}
	cfg := newCipherConfig(opts)
	k := pub.Size()

	em, err := cfg.pad(message, k)
	if err != nil {
		return nil, err
	}

	m := new(big.Int).SetBytes(em)
	if m.Cmp(pub.N) >= 0 {
		return nil, ErrEncodingOutOfRange
	}

	c := mathx.ModExp(m, pub.E, pub.N)
	return c.FillBytes(make([]byte, k)), nil
}

// DecryptBlock reverses EncryptBlock for one ciphertext block of exactly
// priv.Size() bytes.
func DecryptBlock(ciphertext []byte, priv *PrivateKey, opts ...CipherOption) ([]byte, error) {
	if err := priv.validate(); err != nil {
		return nil, err
	}
	cfg := newCipherConfig(opts)
	k := priv.Size()

	if len(ciphertext) != k {
		return nil, fmt.Errorf("%w: got %d bytes, want %d", ErrCiphertextSize, len(ciphertext), k)
	}

	c := new(big.Int).SetBytes(ciphertext)
	m := mathx.ModExp(c, priv.D, priv.N)
	return cfg.unpad(m.FillBytes(make([]byte, k)), k)
}

// EncryptBytes encrypts arbitrary-length data by splitting it into chunks of
// the per-block capacity and encrypting each chunk independently. Output is
// the concatenation of the k-byte ciphertext blocks.
//
// There is no chaining between blocks. At the RSA layer this is ECB-like,
// which is acceptable under OAEP because every block gets its own random
// seed; under the legacy v1.5 scheme every block likewise gets fresh random
// padding bytes.
func EncryptBytes(data []byte, pub *PublicKey, opts ...CipherOption) ([]byte, error) {
	if err := pub.validate(); err != nil {
		return nil, err
	}
	cfg := newCipherConfig(opts)
	k := pub.Size()

	step := cfg.capacity(k)
	if step <= 0 {
		if len(data) == 0 {
			return nil, nil
		}
		return nil, fmt.Errorf("%w: modulus too small for %s", ErrMessageTooLarge, cfg.scheme)
	}

	out := make([]byte, 0, ((len(data)+step-1)/step)*k)
	for i := 0; i < len(data); i += step {
		end := min(i+step, len(data))
		block, err := EncryptBlock(data[i:end], pub, opts...)
		if err != nil {
			return nil, err
		}
		out = append(out, block...)
	}
	return out, nil
}

// DecryptBytes reverses EncryptBytes. The ciphertext length must be a
// multiple of the modulus byte length.
func DecryptBytes(ciphertext []byte, priv *PrivateKey, opts ...CipherOption) ([]byte, error) {
	if err := priv.validate(); err != nil {
		return nil, err
	}
	k := priv.Size()

	if len(ciphertext)%k != 0 {
		return nil, fmt.Errorf("%w: %d bytes is not a multiple of block size %d", ErrCiphertextSize, len(ciphertext), k)
	}

	var out []byte
	for i := 0; i < len(ciphertext); i += k {
		chunk, err := DecryptBlock(ciphertext[i:i+k], priv, opts...)
		if err != nil {
			return nil, err
		}
		out = append(out, chunk...)
	}
	return out, nil
}
