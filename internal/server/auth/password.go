package auth

import "golang.org/x/crypto/bcrypt"

// MinPasswordCost is the lowest bcrypt work factor the server accepts.
const MinPasswordCost = 10

// HashPassword returns a bcrypt hash of plaintext. The hash embeds salt and
// cost, so verification needs no side channel. Costs below MinPasswordCost
// are raised to it.
func HashPassword(plaintext string, cost int) (string, error) {
	if cost < MinPasswordCost {
		cost = MinPasswordCost
	}
	b, err := bcrypt.GenerateFromPassword([]byte(plaintext), cost)
	if err != nil {
		return "", err
	}
	return string(b), nil
}

// CheckPassword reports whether plaintext matches hash. A malformed hash is
// not an error, just a failed check. Callers must never log either argument.
func CheckPassword(plaintext, hash string) bool {
	return bcrypt.CompareHashAndPassword([]byte(hash), []byte(plaintext)) == nil
}
