package util

import (
	"fmt"
	"math/rand"
	"strings"
)

const alphabet = "abcdefghijklmnopqrstuvwxyz"

// RandomInt generates a random integer between min and max
func RandomInt(min, max int32) int32 {
	return min + rand.Int31n(max-min+1)
}

// RandomString generates a random string of length n
func RandomString(n int) string {
	var sb strings.Builder
	k := len(alphabet)

	for i := 0; i < n; i++ {
		c := alphabet[rand.Intn(k)]
		sb.WriteByte(c)
	}

	return sb.String()
}

// RandomUser generates a random username
func RandomUser() string {
	return RandomString(6)
}

// RandomTicker generates a random upper-case ticker symbol
func RandomTicker() string {
	return strings.ToUpper(RandomString(4))
}

// RandomEmail generates a random email
func RandomEmail() string {
	return fmt.Sprintf("%s@email.com", RandomString(6))
}

// RandomFloat generates a random float in [min, max)
func RandomFloat(min, max float64) float64 {
	return min + (max-min)*rand.Float64()
}
