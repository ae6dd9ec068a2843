package httpapi

import (
	"io"
	"net/http"

	"github.com/gorilla/mux"
	"github.com/korylprince/dental-receptionist/api"
)

//ChatConfig holds the collaborators behind the chat endpoints
type ChatConfig struct {
	Responder   Responder
	Transcriber Transcriber
}

//NewRouter returns an HTTP router for the receptionist backend. Access log lines are written to w.
func NewRouter(w io.Writer, s SessionStore, store api.Store, chatCfg *ChatConfig) http.Handler {

	//construct middleware
	var m = func(h returnHandler) http.Handler {
		return logMiddleware(jsonMiddleware(h), w)
	}
	var admin = func(h returnHandler) http.Handler {
		return logMiddleware(jsonMiddleware(authMiddleware(h, store, "Invalid credentials")), w)
	}

	if chatCfg == nil {
		chatCfg = &ChatConfig{}
	}
	if chatCfg.Responder == nil {
		chatCfg.Responder = NewScriptedResponder(store, 0)
	}
	if chatCfg.Transcriber == nil {
		chatCfg.Transcriber = StaticTranscriber{}
	}

	r := mux.NewRouter()

	r.Path("/session").Methods("GET").Handler(m(handleCreateSession(s)))
	r.Path("/chat").Methods("POST").Handler(logMiddleware(handleChat(s, chatCfg.Responder), w))
	r.Path("/transcribe").Methods("POST").Handler(logMiddleware(jsonMiddleware(handleTranscribe(chatCfg.Transcriber), "multipart/form-data"), w))

	r.Path("/api/appointments").Methods("GET").Handler(admin(handleListAppointments(store)))
	r.Path("/api/appointments/{id:[0-9]+}/cancel").Methods("POST").Handler(admin(handleCancelAppointment(store)))
	r.Path("/api/stats").Methods("GET").Handler(admin(handleReadStats(store)))

	r.Path("/api/settings").Methods("GET").Handler(admin(handleReadSettings(store)))
	r.Path("/api/settings").Methods("POST").Handler(admin(handleUpdateSettings(store)))

	r.Path("/api/admin/change-password").Methods("POST").Handler(
		logMiddleware(jsonMiddleware(authMiddleware(handleChangePassword(store), store, "Current password is incorrect")), w),
	)

	r.NotFoundHandler = m(notFoundHandler)
	r.MethodNotAllowedHandler = m(methodNotAllowedHandler)

	return r
}
