package utils

import (
	"crypto/rand"
	"encoding/base64"
	"html"
	"log"

	"golang.org/x/crypto/bcrypt"
)

const passwordCost = 10

// dummyHash is compared against when the email is unknown so that a failed
// login costs the same bcrypt work either way.
var dummyHash, _ = bcrypt.GenerateFromPassword([]byte("not-a-real-password"), passwordCost)

func HashPassword(password string) (string, error) {
	bytes, err := bcrypt.GenerateFromPassword([]byte(password), passwordCost)
	return string(bytes), err
}

// BurnPasswordCheck runs a comparison against a throwaway hash.
func BurnPasswordCheck(password string) {
	_ = bcrypt.CompareHashAndPassword(dummyHash, []byte(password))
}

func GenerateToken(length int) string {
	bytes := make([]byte, length)
	if _, err := rand.Read(bytes); err != nil {
		log.Fatalf("Failed to generate token: %v", err)
	}
	return base64.RawURLEncoding.EncodeToString(bytes)
}

func escapeHTML(s string) string {
	return html.EscapeString(s)
}
