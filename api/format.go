package api

import "time"

//Placeholder is displayed in place of an empty value
const Placeholder = "—"

//DaysOfWeek lists the days in ClinicHours, in display order
var DaysOfWeek = []string{"Monday", "Tuesday", "Wednesday", "Thursday", "Friday", "Saturday", "Sunday"}

//ServiceKeys lists the bookable services, in display order
var ServiceKeys = []string{"cleaning", "checkup", "filling", "extraction", "whitening", "emergency"}

var serviceNames = map[string]string{
	"cleaning":   "Teeth Cleaning",
	"checkup":    "Dental Check-up",
	"filling":    "Dental Filling",
	"extraction": "Tooth Extraction",
	"whitening":  "Teeth Whitening",
	"emergency":  "Emergency Visit",
}

//FormatDate formats a YYYY-MM-DD date like "Mon, Jan 2, 2006"
func FormatDate(d string) string {
	if d == "" {
		return Placeholder
	}
	t, err := time.Parse(DateLayout, d)
	if err != nil {
		return d
	}
	return t.Format("Mon, Jan 2, 2006")
}

//FormatTime formats an HH:MM time like "3:04 PM"
func FormatTime(s string) string {
	if s == "" {
		return Placeholder
	}
	t, err := time.Parse(TimeLayout, s)
	if err != nil {
		return s
	}
	return t.Format("3:04 PM")
}

//FormatService returns the display name of a service key. Unknown keys are returned as is.
func FormatService(key string) string {
	if name, ok := serviceNames[key]; ok {
		return name
	}
	return key
}
