package httpapi

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"html/template"
	"io"
	"mime"
	"net/http"
	"time"

	"github.com/korylprince/dental-receptionist/api"
)

type handlerResponse struct {
	Code int
	Body interface{}
	User string
	Err  error
}

type returnHandler func(http.ResponseWriter, *http.Request) *handlerResponse

const logTemplate = "{{.Date}} {{.Method}} {{.Path}}{{if .Query}}?{{.Query}}{{end}} {{.Code}} ({{.Status}}){{if .User}}, User: {{.User}}{{end}}{{if .Err}}, Error: {{.Err}}{{end}}\n"

var logTmpl = template.Must(template.New("log").Parse(logTemplate))

type logData struct {
	Date   string
	User   string
	Status string
	Code   int
	Method string
	Path   string
	Query  string
	Err    error
}

func logMiddleware(next returnHandler, writer io.Writer) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		resp := next(w, r)

		err := logTmpl.Execute(writer, &logData{
			Date:   time.Now().Format("2006-01-02:15:04:05 -0700"),
			User:   resp.User,
			Status: http.StatusText(resp.Code),
			Code:   resp.Code,
			Method: r.Method,
			Path:   r.URL.Path,
			Query:  r.URL.RawQuery,
			Err:    resp.Err,
		})

		if err != nil {
			panic(err)
		}
	})
}

//jsonMiddleware writes the handler's Body as JSON. Non-GET requests must have
//one of the given media types, or application/json if none are given.
func jsonMiddleware(next returnHandler, mediaTypes ...string) returnHandler {
	if len(mediaTypes) == 0 {
		mediaTypes = []string{"application/json"}
	}

	return func(w http.ResponseWriter, r *http.Request) *handlerResponse {
		var resp *handlerResponse

		if r.Method != http.MethodGet {
			mediaType, _, err := mime.ParseMediaType(r.Header.Get("Content-Type"))
			if err != nil {
				resp = handleError(http.StatusBadRequest, errors.New("Could not parse Content-Type"))
				goto serve
			}
			if !contains(mediaTypes, mediaType) {
				resp = handleError(http.StatusBadRequest, fmt.Errorf("Content-Type not %s", mediaTypes[0]))
				goto serve
			}
		}

		resp = next(w, r)

	serve:
		w.Header().Set("Content-Type", "application/json")
		w.WriteHeader(resp.Code)
		e := json.NewEncoder(w)
		err := e.Encode(resp.Body)
		if err != nil {
			return handleError(http.StatusInternalServerError, fmt.Errorf("Could encode json: %v", err))
		}
		return resp
	}
}

func contains(list []string, s string) bool {
	for _, v := range list {
		if v == s {
			return true
		}
	}
	return false
}

//authMiddleware checks HTTP basic auth credentials against the admin account.
//detail is returned to the client on failure.
func authMiddleware(next returnHandler, s api.Store, detail string) returnHandler {
	return func(w http.ResponseWriter, r *http.Request) *handlerResponse {
		user, pass, ok := r.BasicAuth()
		if !ok {
			w.Header().Set("WWW-Authenticate", `Basic realm="admin"`)
			return handleDetail(http.StatusUnauthorized, detail, errors.New("Authorization header missing"))
		}

		if err := s.Authenticate(r.Context(), user, pass); err != nil {
			var e *api.Error
			if errors.As(err, &e) && e.Type != api.ErrorTypeAuth {
				return checkAPIError(err)
			}
			w.Header().Set("WWW-Authenticate", `Basic realm="admin"`)
			resp := handleDetail(http.StatusUnauthorized, detail, err)
			resp.User = user
			return resp
		}

		ctx := context.WithValue(r.Context(), AdminKey, user)
		resp := next(w, r.WithContext(ctx))
		resp.User = user

		return resp
	}
}
