package utils

import "golang.org/x/crypto/bcrypt"

// HashPassword produces the value stored in ADMIN_PASSWORD_HASH.  A cost
// outside the range bcrypt accepts falls back to bcrypt.DefaultCost.
func HashPassword(organizerPassword string, cost int) (string, error) {
	if cost < bcrypt.MinCost || cost > bcrypt.MaxCost {
		cost = bcrypt.DefaultCost
	}
	hash, err := bcrypt.GenerateFromPassword([]byte(organizerPassword), cost)
	if err != nil {
		return "", err
	}
	return string(hash), nil
}

// VerifyPassword reports whether attempt matches the organizer hash.  A
// malformed hash never matches.
func VerifyPassword(organizerHash, attempt string) bool {
	return bcrypt.CompareHashAndPassword([]byte(organizerHash), []byte(attempt)) == nil
}
