package domain

import (
	"fmt"
	"strings"
	"time"
)

// User is an API account authenticated via email/password and JWT
type User struct {
	ID           string
	Email        string
	PasswordHash string
	CreatedAt    time.Time
}

// ValidateUser validates a User instance
func ValidateUser(u *User) error {
	if u == nil {
		return fmt.Errorf("user cannot be nil")
	}
	if u.ID == "" {
		return fmt.Errorf("user ID is required")
	}
	if !IsValidEmail(u.Email) {
		return fmt.Errorf("user Email is invalid: %s", u.Email)
	}
	if u.PasswordHash == "" {
		return fmt.Errorf("user PasswordHash is required")
	}
	return nil
}

// IsValidEmail performs a minimal shape check on an email address
func IsValidEmail(email string) bool {
	at := strings.Index(email, "@")
	if at <= 0 || at == len(email)-1 {
		return false
	}
	domainPart := email[at+1:]
	return strings.Contains(domainPart, ".") && !strings.ContainsAny(email, " \t\n")
}
