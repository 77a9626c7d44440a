package utils

import (
	"fmt"
	netmail "net/mail"
	"regexp"
	"strconv"
	"strings"
	"unicode/utf8"

	"golang.org/x/crypto/bcrypt"
)

const (
	MaxFieldLength       = 255
	MaxDescriptionLength = 2000
)

var (
	uppercase   = regexp.MustCompile(`[A-Z]`)
	lowercase   = regexp.MustCompile(`[a-z]`)
	digit       = regexp.MustCompile(`\d`)
	specialChar = regexp.MustCompile(`[!@#$%^&*()_+\-=\[\]{};':"\\|,.<>\/?]`)
)

func CheckPasswordHash(password, hash string) bool {
	err := bcrypt.CompareHashAndPassword([]byte(hash), []byte(password))
	return err == nil
}

func ValidateEmail(email string) error {
	addr, err := netmail.ParseAddress(email)
	if err != nil {
		return err
	}
	// reject "Name <a@b>" forms, only the bare address is accepted
	if addr.Address != email {
		return fmt.Errorf("mail: expected bare address")
	}
	return nil
}

// ValidatePassword applies the strong password rule used for admin accounts.
func ValidatePassword(password string) error {
	if len(password) < 8 {
		return fmt.Errorf("password must be at least 8 characters long")
	}
	if !uppercase.MatchString(password) {
		return fmt.Errorf("password must contain at least one uppercase letter")
	}
	if !lowercase.MatchString(password) {
		return fmt.Errorf("password must contain at least one lowercase letter")
	}
	if !digit.MatchString(password) {
		return fmt.Errorf("password must contain at least one digit")
	}
	if !specialChar.MatchString(password) {
		return fmt.Errorf("password must contain at least one special character")
	}
	return nil
}

// ValidateField checks that a free text form value is present and not longer
// than max characters.
func ValidateField(name, value string, max int) error {
	n := utf8.RuneCountInString(strings.TrimSpace(value))
	if n == 0 || n > max {
		return fmt.Errorf("%s must be between 1 and %d characters", name, max)
	}
	return nil
}

// ParseReportID parses a report id taken from a form or URL path.
func ParseReportID(raw string) (int64, error) {
	id, err := strconv.ParseInt(strings.TrimSpace(raw), 10, 64)
	if err != nil || id <= 0 {
		return 0, fmt.Errorf("invalid report id %q", raw)
	}
	return id, nil
}
