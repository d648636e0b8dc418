package security

import (
	"crypto/rand"
	"crypto/subtle"
	"encoding/base64"
	"errors"
	"fmt"
	"strings"

	"golang.org/x/crypto/argon2"
)

// ErrMismatchedHashAndPassword is returned by Compare when the password does not
// match the hash, or when the stored hash is malformed or uses an unsupported
// algorithm. Callers must treat all of these as verification failure.
var ErrMismatchedHashAndPassword = errors.New("password does not match hash")

const saltLength = 16
const keyLength = 32

// Hasher hashes and verifies passwords using Argon2id. The salt is generated
// internally and embedded in the output string; callers never supply it.
// Callers must not log or persist plaintext passwords.
type Hasher struct {
	MemoryKiB   uint32
	Time        uint32
	Parallelism uint8
}

// NewHasher returns a Hasher with the given Argon2id costs. Zero values fall
// back to 64 MiB memory, time cost 4, parallelism 2.
func NewHasher(memoryKiB, timeCost, parallelism int) *Hasher {
	h := &Hasher{MemoryKiB: 64 * 1024, Time: 4, Parallelism: 2}
	if memoryKiB > 0 {
		h.MemoryKiB = uint32(memoryKiB)
	}
	if timeCost > 0 {
		h.Time = uint32(timeCost)
	}
	if parallelism > 0 && parallelism < 256 {
		h.Parallelism = uint8(parallelism)
	}
	return h
}

// Hash produces an Argon2id hash of password in PHC string format:
// $argon2id$v=19$m=<mem>,t=<time>,p=<lanes>$<b64 salt>$<b64 key>.
// Hashing is deliberately memory-hard; see Config.LoginMaxConcurrent for
// bounding concurrent calls on shared hosts.
func (h *Hasher) Hash(password []byte) (string, error) {
	salt := make([]byte, saltLength)
	if _, err := rand.Read(salt); err != nil {
		return "", err
	}
	key := argon2.IDKey(password, salt, h.Time, h.MemoryKiB, h.Parallelism, keyLength)
	return fmt.Sprintf("$argon2id$v=%d$m=%d,t=%d,p=%d$%s$%s",
		argon2.Version, h.MemoryKiB, h.Time, h.Parallelism,
		base64.RawStdEncoding.EncodeToString(salt),
		base64.RawStdEncoding.EncodeToString(key),
	), nil
}

// Compare verifies password against the stored PHC hash using constant-time
// comparison. The costs embedded in the hash are used, not the Hasher's, so
// verification keeps working after cost changes. Returns nil on match and
// ErrMismatchedHashAndPassword on mismatch or any malformed input; it never
// returns a different error for a corrupt hash.
func (h *Hasher) Compare(hash string, password []byte) error {
	memory, timeCost, lanes, salt, key, err := decodeHash(hash)
	if err != nil {
		return ErrMismatchedHashAndPassword
	}
	computed := argon2.IDKey(password, salt, timeCost, memory, lanes, uint32(len(key)))
	if subtle.ConstantTimeCompare(computed, key) != 1 {
		return ErrMismatchedHashAndPassword
	}
	return nil
}

func decodeHash(hash string) (memory, timeCost uint32, lanes uint8, salt, key []byte, err error) {
	parts := strings.Split(hash, "$")
	// Leading "$" yields an empty first element: ["", "argon2id", "v=19", params, salt, key].
	if len(parts) != 6 || parts[0] != "" || parts[1] != "argon2id" {
		return 0, 0, 0, nil, nil, errors.New("security: unsupported hash format")
	}
	var version int
	if _, err := fmt.Sscanf(parts[2], "v=%d", &version); err != nil || version != argon2.Version {
		return 0, 0, 0, nil, nil, errors.New("security: unsupported argon2 version")
	}
	var p uint32
	if _, err := fmt.Sscanf(parts[3], "m=%d,t=%d,p=%d", &memory, &timeCost, &p); err != nil {
		return 0, 0, 0, nil, nil, errors.New("security: malformed argon2 params")
	}
	if memory == 0 || timeCost == 0 || p == 0 || p > 255 {
		return 0, 0, 0, nil, nil, errors.New("security: argon2 params out of range")
	}
	salt, err = base64.RawStdEncoding.DecodeString(parts[4])
	if err != nil {
		return 0, 0, 0, nil, nil, err
	}
	key, err = base64.RawStdEncoding.DecodeString(parts[5])
	if err != nil || len(key) == 0 {
		return 0, 0, 0, nil, nil, errors.New("security: malformed argon2 key")
	}
	return memory, timeCost, uint8(p), salt, key, nil
}
