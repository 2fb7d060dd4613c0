package rsacore

import (
	"bytes"
	"crypto/sha1"
	"errors"
	"hash"
	"testing"
)

func sha1New() hash.Hash { return sha1.New() }

func TestEncryptDecryptBlock(t *testing.T) {
	pair := testKeyPair(t, 1024)

	tests := []struct {
		name string
		msg  []byte
	}{
		{"empty", nil},
		{"short", []byte("hi")},
		{"text", []byte("block cipher round trip")},
		{"max length", bytes.Repeat([]byte{0x5A}, MaxMessageLen(pair.Public.N))},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			ct, err := EncryptBlock(tt.msg, pair.Public)
			if err != nil {
				t.Fatalf("EncryptBlock() error = %v", err)
			}
			if len(ct) != pair.Public.Size() {
				t.Fatalf("ciphertext length = %d, want %d", len(ct), pair.Public.Size())
			}

			got, err := DecryptBlock(ct, pair.Private)
			if err != nil {
				t.Fatalf("DecryptBlock() error = %v", err)
			}
			if !bytes.Equal(got, tt.msg) {
				t.Errorf("decrypted = %x, want %x", got, tt.msg)
			}
		})
	}
}

func TestEncryptBlock_MessageTooLarge(t *testing.T) {
	pair := testKeyPair(t, 1024)
	msg := bytes.Repeat([]byte{1}, MaxMessageLen(pair.Public.N)+1)
	_, err := EncryptBlock(msg, pair.Public)
	if !errors.Is(err, ErrMessageTooLarge) {
		t.Errorf("error = %v, want ErrMessageTooLarge", err)
	}
}

func TestDecryptBlock_WrongLength(t *testing.T) {
	pair := testKeyPair(t, 1024)
	for _, n := range []int{0, 1, pair.Private.Size() - 1, pair.Private.Size() + 1} {
		_, err := DecryptBlock(make([]byte, n), pair.Private)
		if !errors.Is(err, ErrCiphertextSize) {
			t.Errorf("length %d: error = %v, want ErrCiphertextSize", n, err)
		}
	}
}

func TestDecryptBlock_TamperedBlock(t *testing.T) {
	pair := testKeyPair(t, 1024)
	ct, err := EncryptBlock([]byte("payload"), pair.Public)
	if err != nil {
		t.Fatal(err)
	}
	ct[17] ^= 0x01
	_, err = DecryptBlock(ct, pair.Private)
	if !errors.Is(err, ErrPadding) {
		t.Errorf("error = %v, want ErrPadding", err)
	}
}

func TestEncryptDecryptBytes(t *testing.T) {
	pair := testKeyPair(t, 1024)
	k := pair.Public.Size()

	tests := []struct {
		name string
		data []byte
	}{
		{"empty", nil},
		{"short", []byte("hello")},
		{"exactly one chunk", bytes.Repeat([]byte{7}, MaxMessageLen(pair.Public.N))},
		{"multi block", bytes.Repeat([]byte("0123456789"), 40)},
		{"binary", func() []byte {
			b := make([]byte, 300)
			for i := range b {
				b[i] = byte(i)
			}
			return b
		}()},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			ct, err := EncryptBytes(tt.data, pair.Public)
			if err != nil {
				t.Fatalf("EncryptBytes() error = %v", err)
			}
			if len(ct)%k != 0 {
				t.Fatalf("ciphertext length %d is not a multiple of %d", len(ct), k)
			}

			got, err := DecryptBytes(ct, pair.Private)
			if err != nil {
				t.Fatalf("DecryptBytes() error = %v", err)
			}
			if !bytes.Equal(got, tt.data) {
				t.Errorf("round trip mismatch: got %d bytes, want %d", len(got), len(tt.data))
			}
		})
	}
}

func TestDecryptBytes_NotBlockMultiple(t *testing.T) {
	pair := testKeyPair(t, 1024)
	ct, err := EncryptBytes([]byte("some data"), pair.Public)
	if err != nil {
		t.Fatal(err)
	}
	_, err = DecryptBytes(ct[:len(ct)-1], pair.Private)
	if !errors.Is(err, ErrCiphertextSize) {
		t.Errorf("error = %v, want ErrCiphertextSize", err)
	}
}

func TestEncryptBytes_LabelMustMatch(t *testing.T) {
	pair := testKeyPair(t, 1024)
	ct, err := EncryptBytes([]byte("labelled"), pair.Public, WithLabel([]byte("ctx-a")))
	if err != nil {
		t.Fatal(err)
	}

	if _, err := DecryptBytes(ct, pair.Private, WithLabel([]byte("ctx-b"))); !errors.Is(err, ErrPadding) {
		t.Errorf("mismatched label error = %v, want ErrPadding", err)
	}
	got, err := DecryptBytes(ct, pair.Private, WithLabel([]byte("ctx-a")))
	if err != nil {
		t.Fatalf("matching label error = %v", err)
	}
	if !bytes.Equal(got, []byte("labelled")) {
		t.Error("round trip mismatch with label")
	}
}

// A 512-bit modulus has 64-byte blocks: too small for OAEP-SHA-256 (66 bytes
// of overhead) but fine with SHA-1 or the legacy v1.5 pad. This is the
// smallest configuration the library keeps working end to end.
func TestSmallModulus_512(t *testing.T) {
	pair := testKeyPair(t, 512)
	msg := []byte("test message")

	t.Run("oaep sha-256 does not fit", func(t *testing.T) {
		_, err := EncryptBytes(msg, pair.Public)
		if !errors.Is(err, ErrMessageTooLarge) {
			t.Errorf("error = %v, want ErrMessageTooLarge", err)
		}
	})

	t.Run("oaep sha-1", func(t *testing.T) {
		ct, err := EncryptBytes(msg, pair.Public, WithHash(sha1New))
		if err != nil {
			t.Fatalf("EncryptBytes() error = %v", err)
		}
		got, err := DecryptBytes(ct, pair.Private, WithHash(sha1New))
		if err != nil {
			t.Fatalf("DecryptBytes() error = %v", err)
		}
		if !bytes.Equal(got, msg) {
			t.Errorf("decrypted = %q, want %q", got, msg)
		}
	})

	t.Run("pkcs1 v1.5", func(t *testing.T) {
		ct, err := EncryptBytes(msg, pair.Public, WithScheme(SchemePKCS1v15))
		if err != nil {
			t.Fatalf("EncryptBytes() error = %v", err)
		}
		got, err := DecryptBytes(ct, pair.Private, WithScheme(SchemePKCS1v15))
		if err != nil {
			t.Fatalf("DecryptBytes() error = %v", err)
		}
		if !bytes.Equal(got, msg) {
			t.Errorf("decrypted = %q, want %q", got, msg)
		}
	})
}

func TestMaxMessageLen(t *testing.T) {
	pair := testKeyPair(t, 1024)
	k := pair.Public.Size()

	if got := MaxMessageLen(pair.Public.N); got != k-2*32-2 {
		t.Errorf("OAEP-SHA256 capacity = %d, want %d", got, k-2*32-2)
	}
	if got := MaxMessageLen(pair.Public.N, WithHash(sha1New)); got != k-2*20-2 {
		t.Errorf("OAEP-SHA1 capacity = %d, want %d", got, k-2*20-2)
	}
	if got := MaxMessageLen(pair.Public.N, WithScheme(SchemePKCS1v15)); got != k-11 {
		t.Errorf("v1.5 capacity = %d, want %d", got, k-11)
	}
}

func TestCipher_NilKeys(t *testing.T) {
	t.Parallel()
	var pub *PublicKey
	var priv *PrivateKey

	if _, err := EncryptBlock([]byte("x"), pub); !errors.Is(err, ErrInvalidKey) {
		t.Errorf("EncryptBlock(nil key) error = %v, want ErrInvalidKey", err)
	}
	if _, err := DecryptBlock([]byte("x"), priv); !errors.Is(err, ErrInvalidKey) {
		t.Errorf("DecryptBlock(nil key) error = %v, want ErrInvalidKey", err)
	}
}
