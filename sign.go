package rsacore

import (
	"crypto/rand"
	"crypto/sha256"
	"math/big"

	"github.com/keyforge/rsacore/internal/mathx"
	"github.com/keyforge/rsacore/internal/padding"
)

// SignatureSaltLen is the PSS salt length in bytes.
const SignatureSaltLen = 32

// Sign produces an RSA-PSS signature over data with SHA-256. The signature
// is exactly priv.Size() bytes.
func Sign(data []byte, priv *PrivateKey) ([]byte, error) {
	if err := priv.validate(); err != nil {
		return nil, err
	}

	emBits := priv.N.BitLen() - 1
	em, err := padding.EncodePSS(rand.Reader, sha256.New, data, emBits, SignatureSaltLen)
	if err != nil {
		return nil, err
	}

	m := new(big.Int).SetBytes(em)
	if m.Cmp(priv.N) >= 0 {
		return nil, ErrSignatureEncoding
	}

	s := mathx.ModExp(m, priv.D, priv.N)
	return s.FillBytes(make([]byte, priv.Size())), nil
}

// Verify reports whether sig is a valid signature over data under pub.
// Invalid signatures are a normal outcome, not an error: malformed input of
// any kind simply verifies as false.
func Verify(data, sig []byte, pub *PublicKey) bool {
	if pub.validate() != nil {
		return false
	}
	if len(sig) != pub.Size() {
		return false
	}

	s := new(big.Int).SetBytes(sig)
	m := mathx.ModExp(s, pub.E, pub.N)

	emBits := pub.N.BitLen() - 1
	emLen := (emBits + 7) / 8
	if mathx.ByteLen(m) > emLen {
		return false
	}

	return padding.VerifyPSS(sha256.New, data, m.FillBytes(make([]byte, emLen)), emBits, SignatureSaltLen)
}
