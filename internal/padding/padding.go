// Package padding implements the message encodings that make raw RSA safe to
// use: OAEP for encryption, PSS for signatures, the MGF1 mask generator both
// schemes share, and the legacy PKCS#1 v1.5 encryption pad kept for small
// moduli.
//
// Decode failures are deliberately opaque. Every structural problem in an
// OAEP or v1.5 unpad surfaces as the same ErrPadding value so that callers
// cannot be used as a padding oracle distinguishing which check failed.
package padding

import (
	"bytes"
	"crypto/subtle"
	"encoding/binary"
	"errors"
	"fmt"
	"hash"
	"io"
)

var (
	// ErrMessageTooLarge is returned when a plaintext does not fit the
	// capacity of the pad for the given modulus size.
	ErrMessageTooLarge = errors.New("message too large for modulus")

	// ErrPadding is returned for any structural decode failure.
	ErrPadding = errors.New("invalid padding")
)

// xorBytes XORs mask into dst in place. len(mask) must be >= len(dst).
func xorBytes(dst, mask []byte) {
	for i := range dst {
		dst[i] ^= mask[i]
	}
}

// MGF1 expands seed into a maskLen-byte mask by hashing seed || counter for a
// 4-byte big-endian counter starting at zero and concatenating the digests.
func MGF1(seed []byte, maskLen int, newHash func() hash.Hash) []byte {
	h := newHash()
	var counter [4]byte
	out := make([]byte, 0, maskLen+h.Size())
	for c := uint32(0); len(out) < maskLen; c++ {
		binary.BigEndian.PutUint32(counter[:], c)
		h.Reset()
		h.Write(seed)
		h.Write(counter[:])
		out = h.Sum(out)
	}
	return out[:maskLen]
}

// OAEPCapacity returns the longest message EncodeOAEP accepts for a k-byte
// modulus and the given hash. Negative values mean the modulus is too small
// for the hash.
func OAEPCapacity(k int, newHash func() hash.Hash) int {
	return k - 2*newHash().Size() - 2
}

// EncodeOAEP builds the k-byte OAEP encoding 0x00 || maskedSeed || maskedDB
// of msg, following RFC 8017 EME-OAEP with a random per-call seed.
func EncodeOAEP(random io.Reader, newHash func() hash.Hash, msg []byte, k int, label []byte) ([]byte, error) {
	h := newHash()
	hLen := h.Size()
	if len(msg) > k-2*hLen-2 {
		return nil, fmt.Errorf("%w: OAEP capacity is %d bytes", ErrMessageTooLarge, k-2*hLen-2)
	}

	h.Write(label)
	lHash := h.Sum(nil)

	em := make([]byte, k)
	seed := em[1 : 1+hLen]
	db := em[1+hLen:]

	copy(db, lHash)
	db[len(db)-len(msg)-1] = 0x01
	copy(db[len(db)-len(msg):], msg)

	if _, err := io.ReadFull(random, seed); err != nil {
		return nil, fmt.Errorf("read OAEP seed: %w", err)
	}

	xorBytes(db, MGF1(seed, len(db), newHash))
	xorBytes(seed, MGF1(db, hLen, newHash))
	return em, nil
}

// DecodeOAEP reverses EncodeOAEP and returns the embedded message. Any
// structural failure (wrong length, nonzero leading byte, label mismatch,
// missing separator) yields the bare ErrPadding.
func DecodeOAEP(newHash func() hash.Hash, em []byte, k int, label []byte) ([]byte, error) {
	h := newHash()
	hLen := h.Size()
	if len(em) != k || k < 2*hLen+2 {
		return nil, ErrPadding
	}

	h.Write(label)
	lHash := h.Sum(nil)

	leading := em[0]
	seed := make([]byte, hLen)
	copy(seed, em[1:1+hLen])
	db := make([]byte, k-hLen-1)
	copy(db, em[1+hLen:])

	xorBytes(seed, MGF1(db, hLen, newHash))
	xorBytes(db, MGF1(seed, len(db), newHash))

	labelOK := subtle.ConstantTimeCompare(db[:hLen], lHash) == 1
	sep := bytes.IndexByte(db[hLen:], 0x01)
	if leading != 0 || !labelOK || sep < 0 {
		return nil, ErrPadding
	}
	return db[hLen+sep+1:], nil
}

// EncodePSS produces the emLen-byte PSS encoding of msg for a modulus with
// emBits usable bits, using a fresh random salt of saltLen bytes.
func EncodePSS(random io.Reader, newHash func() hash.Hash, msg []byte, emBits, saltLen int) ([]byte, error) {
	h := newHash()
	h.Write(msg)
	mHash := h.Sum(nil)
	hLen := len(mHash)

	emLen := (emBits + 7) / 8
	if emLen < hLen+saltLen+2 {
		return nil, fmt.Errorf("%w: encoding target too short", ErrPadding)
	}

	salt := make([]byte, saltLen)
	if _, err := io.ReadFull(random, salt); err != nil {
		return nil, fmt.Errorf("read PSS salt: %w", err)
	}

	// M' = eight zero bytes || mHash || salt
	h.Reset()
	h.Write(make([]byte, 8))
	h.Write(mHash)
	h.Write(salt)
	h2 := h.Sum(nil)

	em := make([]byte, emLen)
	db := em[:emLen-hLen-1]
	db[len(db)-saltLen-1] = 0x01
	copy(db[len(db)-saltLen:], salt)

	xorBytes(db, MGF1(h2, len(db), newHash))

	// Clear the bits that fall outside emBits.
	if maskBits := 8*emLen - emBits; maskBits > 0 {
		db[0] &= 0xFF >> maskBits
	}

	copy(em[emLen-hLen-1:], h2)
	em[emLen-1] = 0xBC
	return em, nil
}

// VerifyPSS reports whether em is a valid PSS encoding of msg. Malformed
// input is a verification failure, never an error.
func VerifyPSS(newHash func() hash.Hash, msg, em []byte, emBits, saltLen int) bool {
	h := newHash()
	h.Write(msg)
	mHash := h.Sum(nil)
	hLen := len(mHash)

	emLen := (emBits + 7) / 8
	if len(em) != emLen || emLen < hLen+saltLen+2 {
		return false
	}
	if em[emLen-1] != 0xBC {
		return false
	}

	db := make([]byte, emLen-hLen-1)
	copy(db, em[:emLen-hLen-1])
	h2 := em[emLen-hLen-1 : emLen-1]

	maskBits := 8*emLen - emBits
	if maskBits > 0 && db[0]&(0xFF<<(8-maskBits)) != 0 {
		return false
	}

	xorBytes(db, MGF1(h2, len(db), newHash))
	if maskBits > 0 {
		db[0] &= 0xFF >> maskBits
	}

	psLen := emLen - hLen - saltLen - 2
	for _, b := range db[:psLen] {
		if b != 0 {
			return false
		}
	}
	if db[psLen] != 0x01 {
		return false
	}
	salt := db[len(db)-saltLen:]

	h.Reset()
	h.Write(make([]byte, 8))
	h.Write(mHash)
	h.Write(salt)
	h3 := h.Sum(nil)

	return subtle.ConstantTimeCompare(h2, h3) == 1
}

// PadPKCS1v15 builds the k-byte EME-PKCS1-v1_5 encoding
// 0x00 0x02 PS 0x00 msg with at least eight nonzero random padding bytes.
// Kept for moduli too small to carry OAEP; new callers should prefer OAEP.
func PadPKCS1v15(random io.Reader, msg []byte, k int) ([]byte, error) {
	if len(msg) > k-11 {
		return nil, fmt.Errorf("%w: PKCS#1 v1.5 capacity is %d bytes", ErrMessageTooLarge, k-11)
	}

	em := make([]byte, k)
	em[1] = 0x02
	ps := em[2 : k-len(msg)-1]
	for i := range ps {
		for {
			var b [1]byte
			if _, err := io.ReadFull(random, b[:]); err != nil {
				return nil, fmt.Errorf("read padding bytes: %w", err)
			}
			if b[0] != 0 {
				ps[i] = b[0]
				break
			}
		}
	}
	copy(em[k-len(msg):], msg)
	return em, nil
}

// UnpadPKCS1v15 reverses PadPKCS1v15.
func UnpadPKCS1v15(em []byte) ([]byte, error) {
	if len(em) < 11 || em[0] != 0x00 || em[1] != 0x02 {
		return nil, ErrPadding
	}
	sep := bytes.IndexByte(em[2:], 0x00)
	if sep < 0 || sep < 8 {
		return nil, ErrPadding
	}
	return em[2+sep+1:], nil
}
