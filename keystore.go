package rsacore

import (
	"crypto/aes"
	"crypto/cipher"
	"crypto/rand"
	"crypto/sha256"
	"encoding/json"
	"encoding/xml"
	"fmt"
	"io"
	"math/big"
	"os"

	"golang.org/x/crypto/pbkdf2"
)

// Key files use the RSAKeyValue XML document: base64 big-endian Modulus plus
// Exponent for public keys or D for private keys.
type xmlKeyValue struct {
	XMLName  xml.Name `xml:"RSAKeyValue"`
	Modulus  string   `xml:"Modulus,omitempty"`
	Exponent string   `xml:"Exponent,omitempty"`
	D        string   `xml:"D,omitempty"`
}

func intToB64(n *big.Int) (string, error) {
	if n == nil || n.Sign() <= 0 {
		return "", fmt.Errorf("%w: non-positive key integer", ErrInvalidKey)
	}
	return ToBase64(n.Bytes()), nil
}

func b64ToInt(s string) (*big.Int, error) {
	raw, err := FromBase64(s)
	if err != nil {
		return nil, fmt.Errorf("%w: bad base64 integer", ErrInvalidKey)
	}
	n := new(big.Int).SetBytes(raw)
	if n.Sign() <= 0 {
		return nil, fmt.Errorf("%w: non-positive key integer", ErrInvalidKey)
	}
	return n, nil
}

func marshalPublicKey(pub *PublicKey) ([]byte, error) {
	if err := pub.validate(); err != nil {
		return nil, err
	}
	modulus, err := intToB64(pub.N)
	if err != nil {
		return nil, err
	}
	exponent, err := intToB64(pub.E)
	if err != nil {
		return nil, err
	}
	return xml.Marshal(xmlKeyValue{Modulus: modulus, Exponent: exponent})
}

func marshalPrivateKey(priv *PrivateKey) ([]byte, error) {
	if err := priv.validate(); err != nil {
		return nil, err
	}
	modulus, err := intToB64(priv.N)
	if err != nil {
		return nil, err
	}
	d, err := intToB64(priv.D)
	if err != nil {
		return nil, err
	}
	return xml.Marshal(xmlKeyValue{Modulus: modulus, D: d})
}

func unmarshalPublicKey(data []byte) (*PublicKey, error) {
	var kv xmlKeyValue
	if err := xml.Unmarshal(data, &kv); err != nil {
		return nil, fmt.Errorf("%w: not an RSAKeyValue document", ErrInvalidKey)
	}
	if kv.Modulus == "" || kv.Exponent == "" {
		return nil, fmt.Errorf("%w: missing Modulus or Exponent", ErrInvalidKey)
	}
	n, err := b64ToInt(kv.Modulus)
	if err != nil {
		return nil, err
	}
	e, err := b64ToInt(kv.Exponent)
	if err != nil {
		return nil, err
	}
	return &PublicKey{E: e, N: n}, nil
}

func unmarshalPrivateKey(data []byte) (*PrivateKey, error) {
	var kv xmlKeyValue
	if err := xml.Unmarshal(data, &kv); err != nil {
		return nil, fmt.Errorf("%w: not an RSAKeyValue document", ErrInvalidKey)
	}
	if kv.Modulus == "" || kv.D == "" {
		return nil, fmt.Errorf("%w: missing Modulus or D", ErrInvalidKey)
	}
	n, err := b64ToInt(kv.Modulus)
	if err != nil {
		return nil, err
	}
	d, err := b64ToInt(kv.D)
	if err != nil {
		return nil, err
	}
	return &PrivateKey{D: d, N: n}, nil
}

// SavePublicKey writes pub to path as an RSAKeyValue XML document.
func SavePublicKey(pub *PublicKey, path string) error {
	data, err := marshalPublicKey(pub)
	if err != nil {
		return err
	}
	return os.WriteFile(path, data, 0o644)
}

// SavePrivateKey writes priv to path as an RSAKeyValue XML document.
// The file is created owner-readable only; for storage that survives a
// leaked disk, use SaveEncryptedPrivateKey instead.
func SavePrivateKey(priv *PrivateKey, path string) error {
	data, err := marshalPrivateKey(priv)
	if err != nil {
		return err
	}
	return os.WriteFile(path, data, 0o600)
}

// LoadPublicKey reads an RSAKeyValue public key from path.
func LoadPublicKey(path string) (*PublicKey, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read key file: %w", err)
	}
	return unmarshalPublicKey(data)
}

// LoadPrivateKey reads an RSAKeyValue private key from path.
func LoadPrivateKey(path string) (*PrivateKey, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read key file: %w", err)
	}
	return unmarshalPrivateKey(data)
}

const (
	keystoreKDF = "PBKDF2-SHA256"

	// DefaultKDFIterations is the PBKDF2 iteration count for new encrypted
	// key files.
	DefaultKDFIterations = 600_000

	keystoreSaltSize = 16
	keystoreKeySize  = 32
)

// encryptedKeyFile is the JSON container for a passphrase-protected private
// key: the RSAKeyValue document encrypted with AES-256-GCM under a
// PBKDF2-derived key.
type encryptedKeyFile struct {
	KDF        string `json:"kdf"`
	Iterations int    `json:"iter"`
	Salt       string `json:"salt"`
	Nonce      string `json:"nonce"`
	Data       string `json:"data"`
}

// keystoreConfig holds configuration for encrypted key files.
type keystoreConfig struct {
	iterations int
}

// KeystoreOption configures SaveEncryptedPrivateKey.
type KeystoreOption func(*keystoreConfig)

// WithKDFIterations overrides the PBKDF2 iteration count. Lower values are
// only appropriate in tests.
func WithKDFIterations(n int) KeystoreOption {
	return func(c *keystoreConfig) {
		c.iterations = n
	}
}

// SaveEncryptedPrivateKey writes priv to path encrypted under passphrase.
func SaveEncryptedPrivateKey(priv *PrivateKey, path, passphrase string, opts ...KeystoreOption) error {
	cfg := keystoreConfig{iterations: DefaultKDFIterations}
	for _, opt := range opts {
		opt(&cfg)
	}

	plain, err := marshalPrivateKey(priv)
	if err != nil {
		return err
	}

	salt := make([]byte, keystoreSaltSize)
	if _, err := io.ReadFull(rand.Reader, salt); err != nil {
		return fmt.Errorf("read salt: %w", err)
	}

	key := pbkdf2.Key([]byte(passphrase), salt, cfg.iterations, keystoreKeySize, sha256.New)
	gcm, err := newGCM(key)
	if err != nil {
		return err
	}

	nonce := make([]byte, gcm.NonceSize())
	if _, err := io.ReadFull(rand.Reader, nonce); err != nil {
		return fmt.Errorf("read nonce: %w", err)
	}

	file := encryptedKeyFile{
		KDF:        keystoreKDF,
		Iterations: cfg.iterations,
		Salt:       ToBase64(salt),
		Nonce:      ToBase64(nonce),
		Data:       ToBase64(gcm.Seal(nil, nonce, plain, nil)),
	}
	out, err := json.Marshal(file)
	if err != nil {
		return err
	}
	return os.WriteFile(path, out, 0o600)
}

// LoadEncryptedPrivateKey reads a key written by SaveEncryptedPrivateKey.
// A wrong passphrase and a corrupted file are indistinguishable: both fail
// with ErrInvalidKey.
func LoadEncryptedPrivateKey(path, passphrase string) (*PrivateKey, error) {
	raw, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read key file: %w", err)
	}

	var file encryptedKeyFile
	if err := json.Unmarshal(raw, &file); err != nil {
		return nil, fmt.Errorf("%w: not an encrypted key file", ErrInvalidKey)
	}
	if file.KDF != keystoreKDF || file.Iterations <= 0 {
		return nil, fmt.Errorf("%w: unsupported key derivation", ErrInvalidKey)
	}

	salt, err := FromBase64(file.Salt)
	if err != nil {
		return nil, fmt.Errorf("%w: bad salt encoding", ErrInvalidKey)
	}
	nonce, err := FromBase64(file.Nonce)
	if err != nil {
		return nil, fmt.Errorf("%w: bad nonce encoding", ErrInvalidKey)
	}
	data, err := FromBase64(file.Data)
	if err != nil {
		return nil, fmt.Errorf("%w: bad data encoding", ErrInvalidKey)
	}

	key := pbkdf2.Key([]byte(passphrase), salt, file.Iterations, keystoreKeySize, sha256.New)
	gcm, err := newGCM(key)
	if err != nil {
		return nil, err
	}
	if len(nonce) != gcm.NonceSize() {
		return nil, fmt.Errorf("%w: bad nonce length", ErrInvalidKey)
	}

	plain, err := gcm.Open(nil, nonce, data, nil)
	if err != nil {
		return nil, fmt.Errorf("%w: wrong passphrase or corrupted file", ErrInvalidKey)
	}
	return unmarshalPrivateKey(plain)
}

func newGCM(key []byte) (cipher.AEAD, error) {
	block, err := aes.NewCipher(key)
	if err != nil {
		return nil, fmt.Errorf("create cipher: %w", err)
	}
	gcm, err := cipher.NewGCM(block)
	if err != nil {
		return nil, fmt.Errorf("create GCM: %w", err)
	}
	return gcm, nil
}
