package api

import "fmt"

//ErrorType are APIError types
type ErrorType int

//ErrorTypes
const (
	ErrorTypeUser ErrorType = iota
	ErrorTypeServer
	ErrorTypeNotFound
	ErrorTypeAuth
)

func (t ErrorType) String() string {
	switch t {
	case ErrorTypeUser:
		return "User Error"
	case ErrorTypeNotFound:
		return "Not Found"
	case ErrorTypeAuth:
		return "Auth Error"
	}
	return "Server Error"
}

//Error wraps errors in the API
type Error struct {
	Description string
	Type        ErrorType
	Err         error
}

func (e *Error) Error() string {
	return fmt.Sprintf("%s: %s: %v", e.Type, e.Description, e.Err)
}

func (e *Error) Unwrap() error {
	return e.Err
}
