package security

// NewTestTokenProvider returns a TokenProvider with a fixed secret for tests.
func NewTestTokenProvider() *TokenProvider {
	return NewTokenProvider("test-secret-do-not-use-in-production")
}

// NewTestHasher returns a Hasher with low costs so tests stay fast.
func NewTestHasher() *Hasher {
	return NewHasher(8*1024, 1, 1)
}
