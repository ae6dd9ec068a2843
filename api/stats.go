package api

//Stats represents appointment counts shown above the dashboard table
type Stats struct {
	Today     int `json:"today"`
	Confirmed int `json:"confirmed"`
	Cancelled int `json:"cancelled"`
	All       int `json:"all"`
}

//ComputeStats counts list. today is a date in DateLayout; Today counts every
//appointment on that date whatever its status.
func ComputeStats(list []*Appointment, today string) Stats {
	s := Stats{All: len(list)}
	for _, a := range list {
		if a.Date == today {
			s.Today++
		}
		switch a.Status {
		case StatusConfirmed:
			s.Confirmed++
		case StatusCancelled:
			s.Cancelled++
		}
	}
	return s
}
