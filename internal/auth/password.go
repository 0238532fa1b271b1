package auth

import "golang.org/x/crypto/bcrypt"

// HashPassword hashes a plaintext password with configured cost.
func HashPassword(password string, cost int) (string, error) {
	hashed, err := bcrypt.GenerateFromPassword([]byte(password), cost)
	if err != nil {
		return "", err
	}
	return string(hashed), nil
}

// ComparePassword verifies a password against its hashed value.
func ComparePassword(hashed, plain string) error {
	return bcrypt.CompareHashAndPassword([]byte(hashed), []byte(plain))
}

// DummyHasher provides a throwaway hash at the configured cost so that
// lookups for unknown accounts spend the same time as a real comparison.
// The hash is built up front so no request pays for generating it.
type DummyHasher struct {
	hash string
}

// NewDummyHasher returns a hasher for the given bcrypt cost.
func NewDummyHasher(cost int) *DummyHasher {
	hash, err := HashPassword("not-a-real-password", cost)
	if err != nil {
		hash, _ = HashPassword("not-a-real-password", bcrypt.DefaultCost)
	}
	return &DummyHasher{hash: hash}
}

// Compare runs a comparison against the dummy hash. It always fails.
func (d *DummyHasher) Compare(plain string) {
	_ = ComparePassword(d.hash, plain)
}
