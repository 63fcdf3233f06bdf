package usecase

import (
	"fmt"
	"regexp"
	"strings"
)

type ValidationError struct {
	Field   string
	Message string
}

func (e ValidationError) Error() string {
	return fmt.Sprintf("%s: %s", e.Field, e.Message)
}

// Conservative shape check: local part, domain, 2-6 letter TLD.
var emailPattern = regexp.MustCompile(`^[a-zA-Z0-9._%+-]+@[a-zA-Z0-9.-]+\.[a-zA-Z]{2,6}$`)

func validateEmail(email string) *ValidationError {
	if strings.TrimSpace(email) == "" {
		return &ValidationError{"email", "Email is required"}
	}
	if !emailPattern.MatchString(email) {
		return &ValidationError{"email", "Invalid email format"}
	}
	return nil
}

func validatePhoneNumber(phoneNumber string) *ValidationError {
	if strings.TrimSpace(phoneNumber) == "" {
		return &ValidationError{"phoneNumber", "phoneNumber is required"}
	}
	return nil
}
