package rsacore

import (
	"crypto/aes"
	"crypto/cipher"
	"crypto/hmac"
	"crypto/rand"
	"crypto/sha256"
	"encoding/json"
	"fmt"
	"io"
)

const (
	// EnvelopeVersion is the wire format version produced by EncryptHybrid.
	EnvelopeVersion = 1
	// EnvelopeAlgorithm names the fixed algorithm suite of version 1
	// envelopes.
	EnvelopeAlgorithm = "RSA-OAEP+AES-CTR+HMAC-SHA256"

	envelopeAESKeySize = 16
	envelopeMACKeySize = 16
	envelopeIVSize     = 16
	envelopeKeyBlobLen = envelopeAESKeySize + envelopeMACKeySize
)

// envelopeSigPrefix domain-separates the signed payload from anything else
// signed with the same key.
var envelopeSigPrefix = []byte("HYB1")

// Envelope is the hybrid ciphertext container: a per-message AES-CTR key and
// HMAC key wrapped under the recipient's RSA key, the bulk ciphertext, the
// authentication tag over IV||ciphertext, and an optional sender signature.
// All binary fields are standard base64.
type Envelope struct {
	// V is the wire format version.
	V int `json:"v"`
	// Alg names the algorithm suite.
	Alg string `json:"alg"`
	// EK is the RSA-OAEP-wrapped symmetric key blob.
	EK string `json:"ek"`
	// IV is the AES-CTR initialization vector.
	IV string `json:"iv"`
	// CT is the symmetric ciphertext.
	CT string `json:"ct"`
	// Tag is the HMAC-SHA-256 tag over IV || CT.
	Tag string `json:"tag"`
	// Sig is the sender's PSS signature, empty when unsigned.
	Sig string `json:"sig"`
}

// envelopeWire mirrors Envelope with pointer fields so that a missing
// required field is distinguishable from a present-but-empty one.
type envelopeWire struct {
	V   *int    `json:"v"`
	Alg *string `json:"alg"`
	EK  *string `json:"ek"`
	IV  *string `json:"iv"`
	CT  *string `json:"ct"`
	Tag *string `json:"tag"`
	Sig string  `json:"sig"`
}

// OpenedEnvelope is the result of DecryptHybrid.
type OpenedEnvelope struct {
	// Plaintext is the decrypted payload.
	Plaintext []byte
	// SignatureVerified reports whether the envelope carried a signature
	// that was checked and found valid. Unsigned envelopes and decryptions
	// with verification disabled leave it false.
	SignatureVerified bool
}

// sealConfig holds configuration for EncryptHybrid.
type sealConfig struct {
	signer *PrivateKey
}

// SealOption configures EncryptHybrid.
type SealOption func(*sealConfig)

// WithSigner makes the envelope carry a PSS signature by the sender.
func WithSigner(priv *PrivateKey) SealOption {
	return func(c *sealConfig) {
		c.signer = priv
	}
}

// openConfig holds configuration for DecryptHybrid.
type openConfig struct {
	sender     *PublicKey
	skipVerify bool
}

// OpenOption configures DecryptHybrid.
type OpenOption func(*openConfig)

// WithSenderPublicKey supplies the key used to verify a signed envelope.
func WithSenderPublicKey(pub *PublicKey) OpenOption {
	return func(c *openConfig) {
		c.sender = pub
	}
}

// WithoutSignatureVerification skips signature checking even when the
// envelope carries one. The authentication tag is still enforced.
func WithoutSignatureVerification() OpenOption {
	return func(c *openConfig) {
		c.skipVerify = true
	}
}

// sigPayload is the byte string the optional signature covers. It binds the
// wrapped key, IV, ciphertext and tag together so none can be swapped
// between envelopes.
func sigPayload(ek, iv, ct, tag []byte) []byte {
	payload := make([]byte, 0, len(envelopeSigPrefix)+len(ek)+len(iv)+len(ct)+len(tag))
	payload = append(payload, envelopeSigPrefix...)
	payload = append(payload, ek...)
	payload = append(payload, iv...)
	payload = append(payload, ct...)
	payload = append(payload, tag...)
	return payload
}

func ctrCrypt(key, iv, data []byte) ([]byte, error) {
	block, err := aes.NewCipher(key)
	if err != nil {
		return nil, fmt.Errorf("create cipher: %w", err)
	}
	out := make([]byte, len(data))
	cipher.NewCTR(block, iv).XORKeyStream(out, data)
	return out, nil
}

// EncryptHybrid seals data for the recipient: a fresh AES-128-CTR key
// encrypts the payload, a separate HMAC-SHA-256 key authenticates
// IV||ciphertext, and both keys travel RSA-OAEP-wrapped under the
// recipient's public key. With WithSigner the envelope additionally carries
// a PSS signature over the whole payload. The result is the envelope's JSON
// serialization.
//
// The RSA wrap needs room for a 32-byte key blob under OAEP-SHA-256, so the
// recipient modulus must be at least 784 bits; 1024 and up in practice.
func EncryptHybrid(data []byte, recipient *PublicKey, opts ...SealOption) ([]byte, error) {
	if err := recipient.validate(); err != nil {
		return nil, err
	}
	var cfg sealConfig
	for _, opt := range opts {
		opt(&cfg)
	}

	keys := make([]byte, envelopeKeyBlobLen+envelopeIVSize)
	if _, err := io.ReadFull(rand.Reader, keys); err != nil {
		return nil, fmt.Errorf("read envelope keys: %w", err)
	}
	aesKey := keys[:envelopeAESKeySize]
	macKey := keys[envelopeAESKeySize:envelopeKeyBlobLen]
	iv := keys[envelopeKeyBlobLen:]

	ct, err := ctrCrypt(aesKey, iv, data)
	if err != nil {
		return nil, err
	}

	mac := hmac.New(sha256.New, macKey)
	mac.Write(iv)
	mac.Write(ct)
	tag := mac.Sum(nil)

	ek, err := EncryptBlock(keys[:envelopeKeyBlobLen], recipient)
	if err != nil {
		return nil, fmt.Errorf("wrap envelope keys: %w", err)
	}

	var sig []byte
	if cfg.signer != nil {
		sig, err = Sign(sigPayload(ek, iv, ct, tag), cfg.signer)
		if err != nil {
			return nil, fmt.Errorf("sign envelope: %w", err)
		}
	}

	env := Envelope{
		V:   EnvelopeVersion,
		Alg: EnvelopeAlgorithm,
		EK:  ToBase64(ek),
		IV:  ToBase64(iv),
		CT:  ToBase64(ct),
		Tag: ToBase64(tag),
	}
	if len(sig) > 0 {
		env.Sig = ToBase64(sig)
	}
	return json.Marshal(env)
}

// parseEnvelope validates structure only: JSON shape, required fields,
// version and algorithm. It runs before any cryptographic material is
// touched.
func parseEnvelope(blob []byte) (*envelopeWire, error) {
	var w envelopeWire
	if err := json.Unmarshal(blob, &w); err != nil {
		return nil, fmt.Errorf("%w: %v", ErrFormat, err)
	}
	if w.V == nil || w.Alg == nil || w.EK == nil || w.IV == nil || w.CT == nil || w.Tag == nil {
		return nil, fmt.Errorf("%w: missing required field", ErrFormat)
	}
	if *w.V != EnvelopeVersion || *w.Alg != EnvelopeAlgorithm {
		return nil, fmt.Errorf("%w: unsupported version or algorithm", ErrFormat)
	}
	return &w, nil
}

// DecryptHybrid opens an envelope produced by EncryptHybrid.
//
// Order of checks: container format and version, then RSA unwrap of the key
// blob, then the authentication tag in constant time, then the signature if
// present and verification is enabled, and only then symmetric decryption.
// A tampered ciphertext or tag fails with ErrAuthentication before any
// plaintext exists.
func DecryptHybrid(blob []byte, recipient *PrivateKey, opts ...OpenOption) (*OpenedEnvelope, error) {
	if err := recipient.validate(); err != nil {
		return nil, err
	}
	var cfg openConfig
	for _, opt := range opts {
		opt(&cfg)
	}

	w, err := parseEnvelope(blob)
	if err != nil {
		return nil, err
	}

	ek, err := FromBase64(*w.EK)
	if err != nil {
		return nil, fmt.Errorf("%w: bad ek encoding", ErrFormat)
	}
	iv, err := FromBase64(*w.IV)
	if err != nil {
		return nil, fmt.Errorf("%w: bad iv encoding", ErrFormat)
	}
	ct, err := FromBase64(*w.CT)
	if err != nil {
		return nil, fmt.Errorf("%w: bad ct encoding", ErrFormat)
	}
	tag, err := FromBase64(*w.Tag)
	if err != nil {
		return nil, fmt.Errorf("%w: bad tag encoding", ErrFormat)
	}
	sig, err := FromBase64(w.Sig)
	if err != nil {
		return nil, fmt.Errorf("%w: bad sig encoding", ErrFormat)
	}
	if len(iv) != envelopeIVSize {
		return nil, fmt.Errorf("%w: bad iv length", ErrFormat)
	}

	keyBlob, err := DecryptBlock(ek, recipient)
	if err != nil {
		return nil, fmt.Errorf("unwrap envelope keys: %w", err)
	}
	if len(keyBlob) != envelopeKeyBlobLen {
		return nil, fmt.Errorf("%w: got %d bytes, want %d", ErrKeyBlob, len(keyBlob), envelopeKeyBlobLen)
	}
	aesKey := keyBlob[:envelopeAESKeySize]
	macKey := keyBlob[envelopeAESKeySize:]

	mac := hmac.New(sha256.New, macKey)
	mac.Write(iv)
	mac.Write(ct)
	if !hmac.Equal(mac.Sum(nil), tag) {
		return nil, ErrAuthentication
	}

	verified := false
	if len(sig) > 0 && !cfg.skipVerify {
		if cfg.sender == nil {
			return nil, ErrSignerKeyMissing
		}
		if !Verify(sigPayload(ek, iv, ct, tag), sig, cfg.sender) {
			return nil, ErrSignatureInvalid
		}
		verified = true
	}

	plaintext, err := ctrCrypt(aesKey, iv, ct)
	if err != nil {
		return nil, err
	}
	return &OpenedEnvelope{Plaintext: plaintext, SignatureVerified: verified}, nil
}
