package api

import (
	"context"
	"errors"
	"fmt"
	"sort"
	"strings"
	"sync"
	"time"
)

//ErrNotCancellable is returned when cancelling an appointment that is missing or already cancelled
var ErrNotCancellable = errors.New("Appointment not found or already cancelled")

//Store is the clinic data the admin dashboard and the receptionist read and write
type Store interface {
	ListAppointments(ctx context.Context, filters AppointmentFilters) ([]*Appointment, error)
	CreateAppointment(ctx context.Context, a *Appointment) (id int64, err error)
	CancelAppointment(ctx context.Context, id int64, reason string) error
	ReadSettings(ctx context.Context) (*Settings, error)
	UpdateSettings(ctx context.Context, u *SettingsUpdate) error
	Authenticate(ctx context.Context, username, password string) error
	ChangePassword(ctx context.Context, newPassword, confirmPassword string) error
}

//MemoryStore is a Store held in memory
type MemoryStore struct {
	mu           sync.RWMutex
	appointments []*Appointment
	nextID       int64
	settings     Settings
	admin        *Admin
}

//NewMemoryStore returns a MemoryStore with the default settings and the given admin
func NewMemoryStore(admin *Admin) *MemoryStore {
	return &MemoryStore{
		nextID:   1,
		settings: DefaultSettings(),
		admin:    admin,
	}
}

//ListAppointments returns copies of the appointments matching filters, ordered by date and time
func (s *MemoryStore) ListAppointments(ctx context.Context, filters AppointmentFilters) ([]*Appointment, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	list := make([]*Appointment, 0, len(s.appointments))
	for _, a := range filters.Filter(s.appointments) {
		c := *a
		list = append(list, &c)
	}

	sort.SliceStable(list, func(i, j int) bool {
		if list[i].Date != list[j].Date {
			return list[i].Date < list[j].Date
		}
		return list[i].Time < list[j].Time
	})

	return list, nil
}

//CreateAppointment validates and stores a (ID is ignored and created) and returns its ID
func (s *MemoryStore) CreateAppointment(ctx context.Context, a *Appointment) (id int64, err error) {
	c := *a
	if err = c.Validate(); err != nil {
		return 0, &Error{Description: "Could not validate Appointment", Type: ErrorTypeUser, Err: err}
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	c.ID = s.nextID
	s.nextID++
	s.appointments = append(s.appointments, &c)

	return c.ID, nil
}

//CancelAppointment marks a confirmed appointment cancelled
func (s *MemoryStore) CancelAppointment(ctx context.Context, id int64, reason string) error {
	if reason = strings.TrimSpace(reason); reason == "" {
		reason = DefaultCancelReason
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	for _, a := range s.appointments {
		if a.ID == id && a.Status == StatusConfirmed {
			a.Status = StatusCancelled
			a.Reason = reason
			return nil
		}
	}

	return &Error{Description: fmt.Sprintf("Could not cancel Appointment(%d)", id), Type: ErrorTypeNotFound, Err: ErrNotCancellable}
}

//ReadSettings returns a copy of the clinic settings
func (s *MemoryStore) ReadSettings(ctx context.Context) (*Settings, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	c := s.settings.Clone()
	return &c, nil
}

//UpdateSettings validates u and merges it into the clinic settings
func (s *MemoryStore) UpdateSettings(ctx context.Context, u *SettingsUpdate) error {
	if u.Empty() {
		return &Error{Description: "Could not validate Settings", Type: ErrorTypeUser, Err: errors.New("no settings given")}
	}
	if err := u.Validate(); err != nil {
		return &Error{Description: "Could not validate Settings", Type: ErrorTypeUser, Err: err}
	}

	s.mu.Lock()
	s.settings.Apply(u)
	s.mu.Unlock()
	return nil
}

//Authenticate checks the admin credentials
func (s *MemoryStore) Authenticate(ctx context.Context, username, password string) error {
	s.mu.RLock()
	admin := s.admin
	s.mu.RUnlock()

	if admin == nil {
		return &Error{Description: "Could not authenticate credentials", Type: ErrorTypeAuth, Err: errors.New("no admin configured")}
	}
	return admin.Authenticate(username, password)
}

//ChangePassword replaces the admin password
func (s *MemoryStore) ChangePassword(ctx context.Context, newPassword, confirmPassword string) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.admin == nil {
		return &Error{Description: "Could not change password", Type: ErrorTypeServer, Err: errors.New("no admin configured")}
	}
	c := *s.admin
	if err := c.ChangePassword(newPassword, confirmPassword); err != nil {
		return err
	}
	s.admin = &c
	return nil
}

//Seed adds a handful of demo appointments around today
func (s *MemoryStore) Seed(ctx context.Context, today time.Time) error {
	day := func(offset int) string {
		return today.AddDate(0, 0, offset).Format(DateLayout)
	}

	demo := []*Appointment{
		{PatientName: "Ayesha Khan", Phone: "0300-1234567", Service: "cleaning", Date: day(0), Time: "10:00"},
		{PatientName: "Bilal Ahmed", Phone: "0321-7654321", Service: "checkup", Date: day(0), Time: "11:30"},
		{PatientName: "Sara Malik", Phone: "0333-1112223", Service: "filling", Date: day(1), Time: "09:00"},
		{PatientName: "Omar Farooq", Phone: "0345-9998887", Service: "whitening", Date: day(2), Time: "14:00"},
		{PatientName: "Hina Raza", Phone: "0312-4445556", Service: "extraction", Date: day(-1), Time: "15:30"},
	}

	var last int64
	for _, a := range demo {
		id, err := s.CreateAppointment(ctx, a)
		if err != nil {
			return err
		}
		last = id
	}

	return s.CancelAppointment(ctx, last, "Patient rescheduled")
}
