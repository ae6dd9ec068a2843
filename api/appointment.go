package api

import (
	"fmt"
	"strings"
	"time"
)

//DateLayout and TimeLayout are the wire formats of Appointment.Date and Appointment.Time
const (
	DateLayout = "2006-01-02"
	TimeLayout = "15:04"
)

//AppointmentStatus is the status of an Appointment
type AppointmentStatus string

//AppointmentStatuses
const (
	StatusConfirmed AppointmentStatus = "confirmed"
	StatusCancelled AppointmentStatus = "cancelled"
)

//DefaultCancelReason is recorded when a cancellation gives no reason
const DefaultCancelReason = "Cancelled by staff"

//Appointment represents a booked visit
type Appointment struct {
	ID          int64             `json:"id"`
	PatientName string            `json:"patient_name"`
	Phone       string            `json:"phone"`
	Service     string            `json:"service"`
	Date        string            `json:"date"`
	Time        string            `json:"time"`
	Status      AppointmentStatus `json:"status"`
	Reason      string            `json:"reason,omitempty"`
}

//Validate cleans and validates the given Appointment
func (a *Appointment) Validate() error {
	a.PatientName = strings.TrimSpace(a.PatientName)
	a.Phone = strings.TrimSpace(a.Phone)
	a.Service = strings.TrimSpace(a.Service)

	if err := ValidateString("patient_name", a.PatientName, 255); err != nil {
		return err
	}
	if err := ValidateString("phone", a.Phone, 64); err != nil {
		return err
	}
	if err := ValidateString("service", a.Service, 64); err != nil {
		return err
	}
	if _, err := time.Parse(DateLayout, a.Date); err != nil {
		return fmt.Errorf("date (%s) must be in YYYY-MM-DD format", a.Date)
	}
	if _, err := time.Parse(TimeLayout, a.Time); err != nil {
		return fmt.Errorf("time (%s) must be in HH:MM format", a.Time)
	}

	switch a.Status {
	case "":
		a.Status = StatusConfirmed
	case StatusConfirmed, StatusCancelled:
	default:
		return fmt.Errorf("status (%s) must be a valid status", a.Status)
	}
	return nil
}

//AppointmentFilters narrows an appointment listing. Empty fields match everything.
type AppointmentFilters struct {
	Date   string `json:"date"`
	Status string `json:"status"`
	Search string `json:"search"`
}

//Match reports whether a passes every filter: exact date, exact status and a
//case-insensitive substring of the patient name
func (f AppointmentFilters) Match(a *Appointment) bool {
	if f.Date != "" && a.Date != f.Date {
		return false
	}
	if f.Status != "" && string(a.Status) != f.Status {
		return false
	}
	if s := strings.TrimSpace(f.Search); s != "" &&
		!strings.Contains(strings.ToLower(a.PatientName), strings.ToLower(s)) {
		return false
	}
	return true
}

//Filter returns the appointments in list that match f, in order
func (f AppointmentFilters) Filter(list []*Appointment) []*Appointment {
	out := make([]*Appointment, 0, len(list))
	for _, a := range list {
		if f.Match(a) {
			out = append(out, a)
		}
	}
	return out
}

//CancelRequest is the request body for cancelling an Appointment
type CancelRequest struct {
	Reason string `json:"reason"`
}
