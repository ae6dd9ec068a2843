package api

import (
	"fmt"
	"net/mail"
	"strings"
)

//ClinicInfo is the clinic's contact information
type ClinicInfo struct {
	Name    string `json:"name"`
	Address string `json:"address"`
	Phone   string `json:"phone"`
	Email   string `json:"email"`
}

//Validate cleans and validates the given ClinicInfo
func (i *ClinicInfo) Validate() error {
	i.Name = strings.TrimSpace(i.Name)
	i.Address = strings.TrimSpace(i.Address)
	i.Phone = strings.TrimSpace(i.Phone)
	i.Email = strings.TrimSpace(i.Email)

	if err := ValidateString("name", i.Name, 255); err != nil {
		return err
	}
	if err := ValidateString("address", i.Address, 255); err != nil {
		return err
	}
	if err := ValidateString("phone", i.Phone, 64); err != nil {
		return err
	}
	if i.Email != "" {
		if e, err := mail.ParseAddress(i.Email); err != nil || e.Address != i.Email {
			return fmt.Errorf("email (%s) must be a valid email", i.Email)
		}
	}
	return nil
}

//ClinicHours holds the opening hours text for each day, e.g. "9:00 AM – 5:00 PM" or "Closed"
type ClinicHours struct {
	Monday    string `json:"Monday"`
	Tuesday   string `json:"Tuesday"`
	Wednesday string `json:"Wednesday"`
	Thursday  string `json:"Thursday"`
	Friday    string `json:"Friday"`
	Saturday  string `json:"Saturday"`
	Sunday    string `json:"Sunday"`
}

func (h *ClinicHours) field(day string) *string {
	switch strings.ToLower(day) {
	case "monday":
		return &h.Monday
	case "tuesday":
		return &h.Tuesday
	case "wednesday":
		return &h.Wednesday
	case "thursday":
		return &h.Thursday
	case "friday":
		return &h.Friday
	case "saturday":
		return &h.Saturday
	case "sunday":
		return &h.Sunday
	}
	return nil
}

//Day returns the hours for the named day (case-insensitive)
func (h ClinicHours) Day(day string) (string, bool) {
	f := h.field(day)
	if f == nil {
		return "", false
	}
	return *f, true
}

//SetDay sets the hours for the named day (case-insensitive)
func (h *ClinicHours) SetDay(day, hours string) error {
	f := h.field(day)
	if f == nil {
		return fmt.Errorf("day (%s) must be a day of the week", day)
	}
	*f = strings.TrimSpace(hours)
	return nil
}

//Validate cleans and validates the given ClinicHours
func (h *ClinicHours) Validate() error {
	for _, day := range DaysOfWeek {
		f := h.field(day)
		*f = strings.TrimSpace(*f)
		if err := ValidateString(day, *f, 64); err != nil {
			return err
		}
	}
	return nil
}

//ServiceConfig describes one bookable service
type ServiceConfig struct {
	Name        string `json:"name"`
	DurationMin int    `json:"duration_min"`
	Price       string `json:"price"`
}

//Services maps service keys to their configuration
type Services map[string]ServiceConfig

//Validate cleans and validates the given Services
func (s Services) Validate() error {
	for key, svc := range s {
		svc.Name = strings.TrimSpace(svc.Name)
		svc.Price = strings.TrimSpace(svc.Price)
		if err := ValidateString(key+".name", svc.Name, 255); err != nil {
			return err
		}
		if svc.DurationMin <= 0 {
			return fmt.Errorf("%s.duration_min (%d) must be positive", key, svc.DurationMin)
		}
		s[key] = svc
	}
	return nil
}

//Settings is the clinic configuration editable from the admin dashboard
type Settings struct {
	Info     ClinicInfo  `json:"info"`
	Hours    ClinicHours `json:"hours"`
	Services Services    `json:"services"`
}

//SettingsUpdate is a partial Settings; nil sections are left unchanged
type SettingsUpdate struct {
	Info     *ClinicInfo  `json:"info,omitempty"`
	Hours    *ClinicHours `json:"hours,omitempty"`
	Services Services     `json:"services,omitempty"`
}

//Validate cleans and validates every present section
func (u *SettingsUpdate) Validate() error {
	if u.Info != nil {
		if err := u.Info.Validate(); err != nil {
			return err
		}
	}
	if u.Hours != nil {
		if err := u.Hours.Validate(); err != nil {
			return err
		}
	}
	if u.Services != nil {
		if err := u.Services.Validate(); err != nil {
			return err
		}
	}
	return nil
}

//Empty reports whether u changes nothing
func (u *SettingsUpdate) Empty() bool {
	return u.Info == nil && u.Hours == nil && u.Services == nil
}

//Apply merges u into s. Services are merged by key.
func (s *Settings) Apply(u *SettingsUpdate) {
	if u.Info != nil {
		s.Info = *u.Info
	}
	if u.Hours != nil {
		s.Hours = *u.Hours
	}
	if u.Services != nil {
		if s.Services == nil {
			s.Services = make(Services, len(u.Services))
		}
		for key, svc := range u.Services {
			s.Services[key] = svc
		}
	}
}

//Clone returns a deep copy of s
func (s Settings) Clone() Settings {
	c := s
	c.Services = make(Services, len(s.Services))
	for key, svc := range s.Services {
		c.Services[key] = svc
	}
	return c
}

//DefaultSettings returns the settings a new clinic starts with
func DefaultSettings() Settings {
	return Settings{
		Info: ClinicInfo{
			Name:    "Bright Smile Dental",
			Address: "Plot 22 Street 17 DHA Phase-2, Islamabad",
			Phone:   "0301-9568220",
			Email:   "clinicbright@gmail.com",
		},
		Hours: ClinicHours{
			Monday:    "9:00 AM – 5:00 PM",
			Tuesday:   "9:00 AM – 5:00 PM",
			Wednesday: "9:00 AM – 5:00 PM",
			Thursday:  "9:00 AM – 5:00 PM",
			Friday:    "9:00 AM – 5:00 PM",
			Saturday:  "9:00 AM – 1:00 PM",
			Sunday:    "Closed",
		},
		Services: Services{
			"cleaning":   {Name: "Teeth Cleaning", DurationMin: 60, Price: "RS 3,500"},
			"checkup":    {Name: "Dental Check-up", DurationMin: 45, Price: "RS 2,000"},
			"filling":    {Name: "Dental Filling", DurationMin: 90, Price: "RS 5,500"},
			"extraction": {Name: "Tooth Extraction", DurationMin: 60, Price: "RS 6,500"},
			"whitening":  {Name: "Teeth Whitening", DurationMin: 90, Price: "RS 9,500"},
			"emergency":  {Name: "Emergency Visit", DurationMin: 30, Price: "RS 4,000"},
		},
	}
}
