package httpapi

import (
	"fmt"
	"net/http"
	"time"

	"github.com/korylprince/dental-receptionist/api"
)

//GET /api/stats
func handleReadStats(s api.Store) returnHandler {
	return func(w http.ResponseWriter, r *http.Request) *handlerResponse {
		today := r.URL.Query().Get("date")
		if today == "" {
			today = time.Now().Format(api.DateLayout)
		} else if _, err := time.Parse(api.DateLayout, today); err != nil {
			return handleDetail(http.StatusBadRequest, "date must be in YYYY-MM-DD format", fmt.Errorf("Could not parse date: %v", err))
		}

		list, err := s.ListAppointments(r.Context(), api.AppointmentFilters{})
		if resp := checkAPIError(err); resp != nil {
			return resp
		}

		return &handlerResponse{Code: http.StatusOK, Body: api.ComputeStats(list, today)}
	}
}
