package api

import (
	"crypto/subtle"
	"errors"

	"golang.org/x/crypto/bcrypt"
)

const bcryptCost = 12

//Admin represents the dashboard's single authenticatable user
type Admin struct {
	Username string `json:"username"`
	Hash     []byte `json:"-"`
}

//NewAdmin returns an Admin with the given credentials, hashing password with bcrypt
func NewAdmin(username, password string) (*Admin, error) {
	if err := ValidateString("username", username, 255); err != nil {
		return nil, &Error{Description: "Could not validate username", Type: ErrorTypeUser, Err: err}
	}
	if password == "" {
		return nil, &Error{Description: "Could not validate password", Type: ErrorTypeUser, Err: errors.New("password cannot be empty")}
	}

	hash, err := bcrypt.GenerateFromPassword([]byte(password), bcryptCost)
	if err != nil {
		return nil, &Error{Description: "Could not bcrypt encrypt password", Type: ErrorTypeServer, Err: err}
	}

	return &Admin{Username: username, Hash: hash}, nil
}

//Authenticate returns nil if username and password match the stored credentials
func (a *Admin) Authenticate(username, password string) error {
	userOK := subtle.ConstantTimeCompare([]byte(username), []byte(a.Username)) == 1
	passErr := bcrypt.CompareHashAndPassword(a.Hash, []byte(password))
	if !userOK || passErr != nil {
		return &Error{Description: "Could not authenticate credentials", Type: ErrorTypeAuth, Err: errors.New("invalid credentials")}
	}
	return nil
}

//ChangePassword replaces the password hash after checking the new password and its confirmation
func (a *Admin) ChangePassword(newPassword, confirmPassword string) error {
	if err := ValidateNewPassword(newPassword, confirmPassword); err != nil {
		return &Error{Description: "Could not validate password", Type: ErrorTypeUser, Err: err}
	}

	hash, err := bcrypt.GenerateFromPassword([]byte(newPassword), bcryptCost)
	if err != nil {
		return &Error{Description: "Could not bcrypt encrypt password", Type: ErrorTypeServer, Err: err}
	}

	a.Hash = hash
	return nil
}
