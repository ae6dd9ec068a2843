package httpapi

import (
	"errors"
	"net/http"

	"github.com/korylprince/dental-receptionist/api"
)

//ErrorResponse represents an HTTP error. Detail explains client errors in a form fit to show a user.
type ErrorResponse struct {
	Code   int    `json:"code"`
	Error  string `json:"error"`
	Detail string `json:"detail,omitempty"`
}

//handleError returns a handlerResponse response for the given code
func handleError(code int, err error) *handlerResponse {
	return &handlerResponse{Code: code, Body: &ErrorResponse{Code: code, Error: http.StatusText(code)}, Err: err}
}

//handleDetail returns a handlerResponse for the given code with a user-facing detail
func handleDetail(code int, detail string, err error) *handlerResponse {
	return &handlerResponse{Code: code, Body: &ErrorResponse{Code: code, Error: http.StatusText(code), Detail: detail}, Err: err}
}

//notFoundHandler returns a 404 handlerResponse
func notFoundHandler(w http.ResponseWriter, r *http.Request) *handlerResponse {
	return handleError(http.StatusNotFound, errors.New("Could not find handler"))
}

//methodNotAllowedHandler returns a 405 handlerResponse
func methodNotAllowedHandler(w http.ResponseWriter, r *http.Request) *handlerResponse {
	return handleError(http.StatusMethodNotAllowed, errors.New("Method not allowed"))
}

//checkAPIError checks an api.Error and returns a handlerResponse for it, or nil if there was no error
func checkAPIError(err error) *handlerResponse {
	if err == nil {
		return nil
	}

	var e *api.Error
	if !errors.As(err, &e) {
		return handleError(http.StatusInternalServerError, err)
	}

	switch e.Type {
	case api.ErrorTypeUser:
		return handleDetail(http.StatusBadRequest, e.Err.Error(), err)
	case api.ErrorTypeNotFound:
		return handleDetail(http.StatusNotFound, e.Err.Error(), err)
	case api.ErrorTypeAuth:
		return handleDetail(http.StatusUnauthorized, e.Err.Error(), err)
	}
	return handleError(http.StatusInternalServerError, err)
}
