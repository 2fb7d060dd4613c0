package rsacore

import (
	"sync"
	"testing"
)

// Key generation dominates test time, so tests share one keypair per size.
// Keys are immutable, which makes sharing across parallel tests safe.
var (
	keyCacheMu sync.Mutex
	keyCache   = map[int]*KeyPair{}
)

func testKeyPair(t *testing.T, bits int) *KeyPair {
	t.Helper()
	keyCacheMu.Lock()
	defer keyCacheMu.Unlock()

	if pair, ok := keyCache[bits]; ok {
		return pair
	}
	pair, err := GenerateKeyPair(bits)
	if err != nil {
		t.Fatalf("GenerateKeyPair(%d) error = %v", bits, err)
	}
	keyCache[bits] = pair
	return pair
}
