package httpapi

import (
	"context"
	"fmt"
	"sort"
	"strings"

	"golang.org/x/time/rate"

	"github.com/korylprince/dental-receptionist/api"
	"github.com/korylprince/dental-receptionist/chatbot"
)

//Responder produces the event stream for one chat turn. emit writes a single
//event to the client; Respond must end with exactly one terminal event unless
//emit fails.
type Responder interface {
	Respond(ctx context.Context, sess *Session, message string, emit func(chatbot.Event) error) error
}

//FailCommand makes the ScriptedResponder fail the turn
const FailCommand = "/fail"

const defaultFailMessage = "Something went wrong on our side. Please try again."

type keywordTool struct {
	keywords []string
	tool     string
}

//checked in order; the first match wins
var keywordTools = []keywordTool{
	{[]string{"cancel"}, "cancel_appointment"},
	{[]string{"book", "schedule", "reserve"}, "schedule_appointment"},
	{[]string{"available", "availability", "slot", "opening"}, "check_availability"},
	{[]string{"my appointment", "appointments"}, "get_patient_appointments"},
	{[]string{"hour", "open", "price", "cost", "service", "address", "where", "phone", "email"}, "get_clinic_info"},
}

func matchTool(message string) string {
	m := strings.ToLower(message)
	for _, kt := range keywordTools {
		for _, k := range kt.keywords {
			if strings.Contains(m, k) {
				return kt.tool
			}
		}
	}
	return ""
}

//ScriptedResponder answers from a keyword table instead of a language model.
//Replies are built from the clinic settings and streamed word by word.
type ScriptedResponder struct {
	store api.Store
	rate  rate.Limit
}

//NewScriptedResponder returns a ScriptedResponder that streams chunksPerSecond
//text events per second. A non-positive rate streams without delay.
func NewScriptedResponder(store api.Store, chunksPerSecond float64) *ScriptedResponder {
	r := &ScriptedResponder{store: store, rate: rate.Inf}
	if chunksPerSecond > 0 {
		r.rate = rate.Limit(chunksPerSecond)
	}
	return r
}

//Respond implements Responder
func (s *ScriptedResponder) Respond(ctx context.Context, sess *Session, message string, emit func(chatbot.Event) error) error {
	if strings.HasPrefix(message, FailCommand) {
		msg := strings.TrimSpace(strings.TrimPrefix(message, FailCommand))
		if msg == "" {
			msg = defaultFailMessage
		}
		//the upstream backend always follows an error with done
		if err := emit(chatbot.Event{Type: chatbot.EventError, Message: msg}); err != nil {
			return err
		}
		return emit(chatbot.Event{Type: chatbot.EventDone})
	}

	tool := matchTool(message)
	if tool != "" {
		if err := emit(chatbot.Event{Type: chatbot.EventTool, Name: tool}); err != nil {
			return err
		}
	}

	reply, err := s.reply(ctx, sess, tool, message)
	if err != nil {
		if eErr := emit(chatbot.Event{Type: chatbot.EventError, Message: defaultFailMessage}); eErr != nil {
			return eErr
		}
		if eErr := emit(chatbot.Event{Type: chatbot.EventDone}); eErr != nil {
			return eErr
		}
		return err
	}

	limiter := rate.NewLimiter(s.rate, 1)
	for _, word := range strings.SplitAfter(reply, " ") {
		if word == "" {
			continue
		}
		if err = limiter.Wait(ctx); err != nil {
			return fmt.Errorf("failed to pace reply: %w", err)
		}
		if err = emit(chatbot.Event{Type: chatbot.EventText, Chunk: word}); err != nil {
			return err
		}
	}

	return emit(chatbot.Event{Type: chatbot.EventDone})
}

func (s *ScriptedResponder) reply(ctx context.Context, sess *Session, tool, message string) (string, error) {
	settings, err := s.store.ReadSettings(ctx)
	if err != nil {
		return "", err
	}

	switch tool {
	case "cancel_appointment":
		return "I can help you cancel. Please tell me the name and phone number on the booking, and which appointment you'd like to cancel.", nil
	case "schedule_appointment":
		return fmt.Sprintf("I'd be happy to book a visit at %s. Please share your name, phone number, the service you need, and your preferred date and time.", settings.Info.Name), nil
	case "check_availability":
		return "We're open " + hoursSummary(settings.Hours) + ". Which service and date are you interested in? I'll check the open slots for you.", nil
	case "get_patient_appointments":
		return "Sure, I can look that up. What name and phone number is the appointment under?", nil
	case "get_clinic_info":
		return clinicInfo(settings, message), nil
	}

	if sess != nil && sess.Turns > 1 {
		return "I can help with booking, checking or cancelling appointments, and with questions about our hours and services. What would you like to do?", nil
	}
	return fmt.Sprintf("Hello! Thanks for contacting %s. How can I help you today?", settings.Info.Name), nil
}

func hoursSummary(h api.ClinicHours) string {
	var parts []string
	for _, day := range api.DaysOfWeek {
		hours, _ := h.Day(day)
		parts = append(parts, day+" "+hours)
	}
	return strings.Join(parts, ", ")
}

func clinicInfo(settings *api.Settings, message string) string {
	m := strings.ToLower(message)
	switch {
	case strings.Contains(m, "price") || strings.Contains(m, "cost") || strings.Contains(m, "service"):
		keys := make([]string, 0, len(settings.Services))
		for key := range settings.Services {
			keys = append(keys, key)
		}
		sort.Strings(keys)

		var parts []string
		for _, key := range keys {
			svc := settings.Services[key]
			parts = append(parts, fmt.Sprintf("%s (%d min, %s)", svc.Name, svc.DurationMin, svc.Price))
		}
		return "Our services are: " + strings.Join(parts, ", ") + "."
	case strings.Contains(m, "hour") || strings.Contains(m, "open"):
		return "Our hours are " + hoursSummary(settings.Hours) + "."
	}
	return fmt.Sprintf("%s is at %s. You can reach us at %s or %s.",
		settings.Info.Name, settings.Info.Address, settings.Info.Phone, settings.Info.Email)
}
