package password

import "golang.org/x/crypto/bcrypt"

const cost = 10

// Hash returns the bcrypt hash stored for local accounts.
func Hash(password string) (string, error) {
	hashed, err := bcrypt.GenerateFromPassword([]byte(password), cost)
	if err != nil {
		return "", err
	}
	return string(hashed), nil
}

// Verify checks whether a password matches the stored bcrypt hash.
func Verify(password, encoded string) bool {
	if encoded == "" {
		return false
	}
	return bcrypt.CompareHashAndPassword([]byte(encoded), []byte(password)) == nil
}
