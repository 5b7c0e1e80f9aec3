package auth

import (
	"sync"

	"github.com/zeebo/blake3"
	"golang.org/x/crypto/bcrypt"
)

// HashAPIKey hashes a plaintext API key with the given cost.
func HashAPIKey(key string, cost int) (string, error) {
	hashed, err := bcrypt.GenerateFromPassword([]byte(key), cost)
	if err != nil {
		return "", err
	}
	return string(hashed), nil
}

// CompareAPIKey verifies a key against its hashed value.
func CompareAPIKey(hashed, plain string) error {
	return bcrypt.CompareHashAndPassword([]byte(hashed), []byte(plain))
}

// keyVerifier remembers the digests of keys that already passed bcrypt, so
// a client reusing its key pays the bcrypt cost once.
type keyVerifier struct {
	hash     string
	mu       sync.RWMutex
	verified map[[32]byte]struct{}
}

func newKeyVerifier(hash string) *keyVerifier {
	return &keyVerifier{hash: hash, verified: make(map[[32]byte]struct{})}
}

func (v *keyVerifier) verify(plain string) bool {
	digest := blake3.Sum256([]byte(plain))

	v.mu.RLock()
	_, ok := v.verified[digest]
	v.mu.RUnlock()
	if ok {
		return true
	}

	if CompareAPIKey(v.hash, plain) != nil {
		return false
	}
	v.mu.Lock()
	v.verified[digest] = struct{}{}
	v.mu.Unlock()
	return true
}
