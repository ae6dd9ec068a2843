package chatbot

// DefaultToolLabel is shown for tools without a specific label
const DefaultToolLabel = "Processing…"

var toolLabels = map[string]string{
	"check_availability":       "Checking availability…",
	"schedule_appointment":     "Booking appointment…",
	"cancel_appointment":       "Cancelling appointment…",
	"get_patient_appointments": "Looking up appointments…",
	"get_clinic_info":          "Fetching clinic info…",
}

// ToolLabel returns the progress text to display while the named tool runs.
// An empty name returns an empty label (no tool running).
func ToolLabel(name string) string {
	if name == "" {
		return ""
	}
	if label, ok := toolLabels[name]; ok {
		return label
	}
	return DefaultToolLabel
}
