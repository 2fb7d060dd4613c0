// Package rsacore is a from-scratch, textbook-independent implementation of
// RSA public-key cryptography: arbitrary-precision modular arithmetic,
// Miller-Rabin primality testing, OAEP and PSS padding, a chunked block
// cipher, digital signatures, and a hybrid RSA+AES envelope scheme.
//
// Nothing here delegates to a platform RSA implementation; the point of the
// library is that every step of the algorithms is written out and testable.
// For production systems with no such requirement, use crypto/rsa.
//
// # Algorithm Suite
//
//   - RSAES-OAEP (RFC 8017) with SHA-256 and MGF1 for encryption. SHA-1 and
//     the legacy PKCS#1 v1.5 pad remain selectable for moduli too small to
//     carry OAEP-SHA-256.
//
//   - RSASSA-PSS (RFC 8017) with SHA-256 and 32-byte salts for signatures.
//
//   - AES-128-CTR + HMAC-SHA-256 (encrypt-then-MAC) for the bulk payload of
//     hybrid envelopes, with both symmetric keys wrapped under RSA-OAEP.
//
//   - PBKDF2-SHA-256 + AES-256-GCM for passphrase-protected private key
//     files.
//
// # Basic usage
//
//	pair, err := rsacore.GenerateKeyPair(2048)
//	if err != nil {
//	    log.Fatal(err)
//	}
//
//	envelope, err := rsacore.EncryptHybrid(data, pair.Public)
//	if err != nil {
//	    log.Fatal(err)
//	}
//
//	opened, err := rsacore.DecryptHybrid(envelope, pair.Private)
//	if err != nil {
//	    log.Fatal(err)
//	}
//	fmt.Printf("%s\n", opened.Plaintext)
//
// # Security Model
//
// Hybrid envelopes are authenticated: the HMAC tag over IV||ciphertext is
// checked in constant time before any decryption happens, so tampering with
// a ciphertext fails closed instead of yielding corrupted plaintext. OAEP
// and PSS comparisons that could act as padding oracles use constant-time
// comparison, and every OAEP decode failure surfaces as the same opaque
// error.
//
// Modular exponentiation is NOT constant-time (see internal/mathx). Keys are
// plain immutable values owned by the caller; the package keeps no state
// between calls and the only shared resource is crypto/rand, which is safe
// for concurrent use. Independent operations may run concurrently without
// coordination.
//
// # Key Management
//
// GenerateKeyPair produces an immutable KeyPair. Keys serialize to the
// RSAKeyValue XML document (SavePublicKey, SavePrivateKey); private keys can
// instead be stored passphrase-encrypted with SaveEncryptedPrivateKey.
// Private key material should never be logged or checked into version
// control.
package rsacore
