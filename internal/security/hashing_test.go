package security

import (
	"strings"
	"testing"
)

func TestHasher_HashAndCompare(t *testing.T) {
	h := NewTestHasher()
	password := []byte("correct horse battery staple")
	hash, err := h.Hash(password)
	if err != nil {
		t.Fatalf("Hash: %v", err)
	}
	if !strings.HasPrefix(hash, "$argon2id$v=19$") {
		t.Errorf("hash = %q, want PHC argon2id prefix", hash)
	}
	if err := h.Compare(hash, password); err != nil {
		t.Fatalf("Compare: %v", err)
	}
}

func TestHasher_CompareWrongPassword(t *testing.T) {
	h := NewTestHasher()
	hash, _ := h.Hash([]byte("right"))
	if err := h.Compare(hash, []byte("wrong")); err != ErrMismatchedHashAndPassword {
		t.Errorf("Compare wrong password: err = %v, want ErrMismatchedHashAndPassword", err)
	}
}

func TestHasher_SaltedHashesDiffer(t *testing.T) {
	h := NewTestHasher()
	a, err := h.Hash([]byte("same password"))
	if err != nil {
		t.Fatalf("Hash: %v", err)
	}
	b, err := h.Hash([]byte("same password"))
	if err != nil {
		t.Fatalf("Hash: %v", err)
	}
	if a == b {
		t.Error("two hashes of the same password should differ (random salt)")
	}
	if err := h.Compare(a, []byte("same password")); err != nil {
		t.Errorf("Compare a: %v", err)
	}
	if err := h.Compare(b, []byte("same password")); err != nil {
		t.Errorf("Compare b: %v", err)
	}
}

func TestHasher_ParamsEmbeddedInHash(t *testing.T) {
	// Verification must use the costs embedded in the stored hash, so hashes
	// survive a config change.
	old := NewHasher(16*1024, 2, 1)
	hash, err := old.Hash([]byte("pw"))
	if err != nil {
		t.Fatalf("Hash: %v", err)
	}
	current := NewHasher(64*1024, 4, 2)
	if err := current.Compare(hash, []byte("pw")); err != nil {
		t.Errorf("Compare with different configured costs: %v", err)
	}
}

func TestHasher_MalformedHashIsMismatchNotPanic(t *testing.T) {
	h := NewTestHasher()
	testCases := []struct {
		name string
		hash string
	}{
		{"empty", ""},
		{"not a hash", "hello"},
		{"bcrypt hash", "$2a$10$N9qo8uLOickgx2ZMRZoMyeIjZAgcfl7p92ldGxad68LJZdL17lhWy"},
		{"wrong variant", "$argon2i$v=19$m=65536,t=4,p=2$c2FsdA$aGFzaA"},
		{"wrong version", "$argon2id$v=18$m=65536,t=4,p=2$c2FsdA$aGFzaA"},
		{"missing segments", "$argon2id$v=19$m=65536,t=4,p=2"},
		{"bad params", "$argon2id$v=19$m=banana,t=4,p=2$c2FsdA$aGFzaA"},
		{"zero params", "$argon2id$v=19$m=0,t=0,p=0$c2FsdA$aGFzaA"},
		{"bad salt base64", "$argon2id$v=19$m=65536,t=4,p=2$!!!$aGFzaA"},
		{"bad key base64", "$argon2id$v=19$m=65536,t=4,p=2$c2FsdA$!!!"},
		{"empty key", "$argon2id$v=19$m=65536,t=4,p=2$c2FsdA$"},
	}
	for _, tc := range testCases {
		t.Run(tc.name, func(t *testing.T) {
			if err := h.Compare(tc.hash, []byte("pw")); err != ErrMismatchedHashAndPassword {
				t.Errorf("Compare(%q): err = %v, want ErrMismatchedHashAndPassword", tc.hash, err)
			}
		})
	}
}

func TestNewHasher_ZeroValuesFallBack(t *testing.T) {
	h := NewHasher(0, 0, 0)
	if h.MemoryKiB != 64*1024 || h.Time != 4 || h.Parallelism != 2 {
		t.Errorf("defaults = %d/%d/%d, want 65536/4/2", h.MemoryKiB, h.Time, h.Parallelism)
	}
}
