package service

import (
	"crypto/rand"
	"crypto/sha256"
	"crypto/subtle"
	"encoding/hex"
	"fmt"
	"math/big"
	"strings"

	"golang.org/x/crypto/bcrypt"

	"github.com/noah-isme/qazaq-teachers/internal/models"
)

const (
	passwordAlphabet        = "abcdefghijklmnopqrstuvwxyzABCDEFGHIJKLMNOPQRSTUVWXYZ0123456789"
	generatedPasswordLength = 8
)

func hashPassword(password string) (string, error) {
	digest, err := bcrypt.GenerateFromPassword([]byte(password), bcrypt.DefaultCost)
	if err != nil {
		return "", fmt.Errorf("failed to hash password: %w", err)
	}
	return string(digest), nil
}

// checkPassword reports whether password matches digest and whether the
// digest is a legacy one that should be replaced with a bcrypt hash.
func checkPassword(digest, password string) (ok, rehash bool) {
	if legacy, found := strings.CutPrefix(digest, models.LegacyDigestPrefix); found {
		sum := sha256.Sum256([]byte(password))
		expected := hex.EncodeToString(sum[:])
		return subtle.ConstantTimeCompare([]byte(strings.ToLower(legacy)), []byte(expected)) == 1, true
	}
	return bcrypt.CompareHashAndPassword([]byte(digest), []byte(password)) == nil, false
}

// RandomPassword returns an alphanumeric password of the given length.
func RandomPassword(length int) (string, error) {
	if length <= 0 {
		length = generatedPasswordLength
	}

	limit := big.NewInt(int64(len(passwordAlphabet)))
	out := make([]byte, length)
	for i := range out {
		n, err := rand.Int(rand.Reader, limit)
		if err != nil {
			return "", fmt.Errorf("failed to generate password: %w", err)
		}
		out[i] = passwordAlphabet[n.Int64()]
	}
	return string(out), nil
}
