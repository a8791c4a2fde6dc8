package domain

import (
	"net/mail"
	"net/url"
	"strings"
	"time"
)

// User is the domain model for member accounts.
type User struct {
	ID           string
	Name         string
	Email        string
	PhoneNumber  string
	PhotoURL     string
	PasswordHash string
	Role         Role
	BirthDate    string
	Approved     bool
	CreatedAt    time.Time
	UpdatedAt    time.Time
}

// IsEmailValid reports whether the address parses as a bare RFC 5322 address.
func IsEmailValid(email string) bool {
	addr, err := mail.ParseAddress(email)
	if err != nil {
		return false
	}
	return addr.Address == email
}

// IsURLValid reports whether the value parses as an absolute URL.
func IsURLValid(raw string) bool {
	parsed, err := url.Parse(raw)
	if err != nil {
		return false
	}
	return parsed.Scheme != "" && parsed.Host != ""
}

// IsPhoneNumberValid accepts numbers of 9 to 12 digits, with or without a
// leading +; separators and punctuation are ignored. Covers local numbers
// as well as area-code and country-prefix forms.
func IsPhoneNumberValid(phoneNumber string) bool {
	trimmed := strings.TrimSpace(phoneNumber)
	if trimmed == "" {
		return false
	}
	if strings.HasPrefix(trimmed, "+") {
		trimmed = trimmed[1:]
	}

	digits := 0
	for _, r := range trimmed {
		if r >= '0' && r <= '9' {
			digits++
		}
	}
	return digits >= 9 && digits <= 12
}
