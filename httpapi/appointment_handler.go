package httpapi

import (
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"strconv"

	"github.com/gorilla/mux"
	"github.com/korylprince/dental-receptionist/api"
)

//GET /api/appointments
func handleListAppointments(s api.Store) returnHandler {
	return func(w http.ResponseWriter, r *http.Request) *handlerResponse {
		q := r.URL.Query()
		filters := api.AppointmentFilters{
			Date:   q.Get("date"),
			Status: q.Get("status_filter"),
			Search: q.Get("search"),
		}

		list, err := s.ListAppointments(r.Context(), filters)
		if resp := checkAPIError(err); resp != nil {
			return resp
		}

		return &handlerResponse{Code: http.StatusOK, Body: list}
	}
}

//POST /api/appointments/:id/cancel
func handleCancelAppointment(s api.Store) returnHandler {
	return func(w http.ResponseWriter, r *http.Request) *handlerResponse {
		id, err := strconv.ParseInt(mux.Vars(r)["id"], 10, 64)
		if err != nil {
			return handleError(http.StatusBadRequest, fmt.Errorf("Could not decode id: %v", err))
		}

		var req api.CancelRequest
		if err = json.NewDecoder(r.Body).Decode(&req); err != nil && !errors.Is(err, io.EOF) {
			return handleError(http.StatusBadRequest, fmt.Errorf("Could not decode json: %v", err))
		}

		err = s.CancelAppointment(r.Context(), id, req.Reason)
		if resp := checkAPIError(err); resp != nil {
			return resp
		}

		return &handlerResponse{Code: http.StatusOK, Body: okResponse}
	}
}
