package util

import (
	"crypto/rand"
	"fmt"
	"math/big"
)

const tokenAlphabet = "ABCDEFGHIJKLMNOPQRSTUVWXYZabcdefghijklmnopqrstuvwxyz0123456789"

// GenerateToken returns the public prefix and the secret part of a new API
// key. The key handed to the user is "<prefix>.<secret>".
func GenerateToken(prefixLen, secretLen int) (prefix, secret string, err error) {
	if prefix, err = secureString(prefixLen); err != nil {
		return "", "", err
	}
	if secret, err = secureString(secretLen); err != nil {
		return "", "", err
	}
	return prefix, secret, nil
}

func secureString(n int) (string, error) {
	b := make([]byte, n)
	max := big.NewInt(int64(len(tokenAlphabet)))
	for i := range b {
		k, err := rand.Int(rand.Reader, max)
		if err != nil {
			return "", fmt.Errorf("failed to generate token: %w", err)
		}
		b[i] = tokenAlphabet[k.Int64()]
	}
	return string(b), nil
}
