package httpapi

import (
	"encoding/json"
	"fmt"
	"net/http"

	"github.com/korylprince/dental-receptionist/api"
)

//GET /api/settings
func handleReadSettings(s api.Store) returnHandler {
	return func(w http.ResponseWriter, r *http.Request) *handlerResponse {
		settings, err := s.ReadSettings(r.Context())
		if resp := checkAPIError(err); resp != nil {
			return resp
		}

		return &handlerResponse{Code: http.StatusOK, Body: settings}
	}
}

//POST /api/settings
func handleUpdateSettings(s api.Store) returnHandler {
	return func(w http.ResponseWriter, r *http.Request) *handlerResponse {
		var u *api.SettingsUpdate
		if err := json.NewDecoder(r.Body).Decode(&u); err != nil || u == nil {
			return handleError(http.StatusBadRequest, fmt.Errorf("Could not decode json: %v", err))
		}

		err := s.UpdateSettings(r.Context(), u)
		if resp := checkAPIError(err); resp != nil {
			return resp
		}

		return &handlerResponse{Code: http.StatusOK, Body: okResponse}
	}
}

//POST /api/admin/change-password
func handleChangePassword(s api.Store) returnHandler {
	return func(w http.ResponseWriter, r *http.Request) *handlerResponse {
		var req *ChangePasswordRequest
		if err := json.NewDecoder(r.Body).Decode(&req); err != nil || req == nil {
			return handleError(http.StatusBadRequest, fmt.Errorf("Could not decode json: %v", err))
		}

		err := s.ChangePassword(r.Context(), req.NewPassword, req.ConfirmPassword)
		if resp := checkAPIError(err); resp != nil {
			return resp
		}

		return &handlerResponse{Code: http.StatusOK, Body: okResponse}
	}
}
