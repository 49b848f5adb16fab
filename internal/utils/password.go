package utils

import "golang.org/x/crypto/bcrypt"

// DefaultBcryptCost is intentionally above the library default; login latency
// is dominated by this on purpose.
const DefaultBcryptCost = 12

var bcryptCost = DefaultBcryptCost

// SetBcryptCost overrides the hashing cost factor. Values outside the valid
// bcrypt range are ignored.
func SetBcryptCost(cost int) {
	if cost >= bcrypt.MinCost && cost <= bcrypt.MaxCost {
		bcryptCost = cost
	}
}

// HashPassword hashes a plaintext password with bcrypt.
func HashPassword(password string) (string, error) {
	hash, err := bcrypt.GenerateFromPassword([]byte(password), bcryptCost)
	if err != nil {
		return "", err
	}
	return string(hash), nil
}

// CheckPassword compares a plaintext password with a stored bcrypt hash.
func CheckPassword(password, hash string) bool {
	return bcrypt.CompareHashAndPassword([]byte(hash), []byte(password)) == nil
}
