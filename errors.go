package rsacore

import (
	"errors"

	"github.com/keyforge/rsacore/internal/padding"
)

// Sentinel errors for errors.Is() checks.
var (
	// ErrInvalidKey is returned when key material is malformed: missing or
	// non-positive components, a key file with the wrong structure, or a
	// passphrase that does not open an encrypted key file.
	ErrInvalidKey = errors.New("invalid key material")

	// ErrKeySize is returned when a requested key size is below the
	// supported minimum.
	ErrKeySize = errors.New("key size too small")

	// ErrPublicExponent is returned when the requested public exponent is
	// even or not greater than 1.
	ErrPublicExponent = errors.New("invalid public exponent")

	// ErrMessageTooLarge is returned when a plaintext exceeds the padding
	// capacity of the current modulus.
	ErrMessageTooLarge = padding.ErrMessageTooLarge

	// ErrPadding is returned on any structural OAEP or PKCS#1 v1.5 decode
	// failure. It is deliberately opaque: the message never says which
	// padding check failed.
	ErrPadding = padding.ErrPadding

	// ErrEncodingOutOfRange is returned when a padded message does not fit
	// below the modulus. A correct encoder never produces such a value.
	ErrEncodingOutOfRange = errors.New("padded message out of range for modulus")

	// ErrCiphertextSize is returned when a ciphertext block has the wrong
	// length for the key's modulus.
	ErrCiphertextSize = errors.New("invalid ciphertext size")

	// ErrSignatureEncoding is returned when a PSS encoding does not fit
	// below the modulus during signing.
	ErrSignatureEncoding = errors.New("signature encoding out of range for modulus")

	// ErrFormat is returned when an envelope is structurally malformed or
	// declares an unsupported version or algorithm. Format checks run
	// before any cryptographic operation.
	ErrFormat = errors.New("invalid envelope format")

	// ErrKeyBlob is returned when the RSA-decrypted symmetric key blob has
	// the wrong length.
	ErrKeyBlob = errors.New("invalid key blob size")

	// ErrAuthentication is returned when the envelope's authentication tag
	// does not match. Decryption never proceeds past this check.
	ErrAuthentication = errors.New("invalid authentication tag")

	// ErrSignerKeyMissing is returned when an envelope carries a signature
	// but no sender public key was supplied to verify it.
	ErrSignerKeyMissing = errors.New("signature present but sender public key missing")

	// ErrSignatureInvalid is returned when an envelope signature fails
	// verification during authenticated decryption.
	ErrSignatureInvalid = errors.New("signature verification failed")
)
