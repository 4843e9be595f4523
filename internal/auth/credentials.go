package auth

import "golang.org/x/crypto/bcrypt"

// HashPassword derives an adaptive salted digest from the plaintext. The
// default cost keeps interactive login latency acceptable.
func HashPassword(plain string) (string, error) {
	digest, err := bcrypt.GenerateFromPassword([]byte(plain), bcrypt.DefaultCost)
	if err != nil {
		return "", err
	}
	return string(digest), nil
}

// VerifyPassword reports whether the plaintext matches the digest. The
// comparison is delegated to bcrypt, which is safe against timing analysis.
func VerifyPassword(plain, digest string) bool {
	return bcrypt.CompareHashAndPassword([]byte(digest), []byte(plain)) == nil
}
