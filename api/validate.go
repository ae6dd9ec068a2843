package api

import (
	"errors"
	"fmt"
	"unicode/utf8"
)

//MinPasswordLength is the shortest admin password accepted
const MinPasswordLength = 8

//Password validation errors
var (
	ErrPasswordMismatch = errors.New("Passwords do not match")
	ErrPasswordTooShort = fmt.Errorf("Password must be at least %d characters", MinPasswordLength)
)

//ValidateString returns an error if the given value is not within the parameters
func ValidateString(field, value string, max int) error {
	if value == "" {
		return fmt.Errorf("%s must not be empty", field)
	} else if n := utf8.RuneCountInString(value); n > max {
		return fmt.Errorf("%s length (%d) was more than maximum allowed (%d)", field, n, max)
	}
	return nil
}

//ValidateNewPassword returns an error if password is not an acceptable replacement
//password or confirm does not repeat it
func ValidateNewPassword(password, confirm string) error {
	if password != confirm {
		return ErrPasswordMismatch
	}
	if utf8.RuneCountInString(password) < MinPasswordLength {
		return ErrPasswordTooShort
	}
	return nil
}
