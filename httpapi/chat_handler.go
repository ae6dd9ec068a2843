package httpapi

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"strings"

	"github.com/korylprince/dental-receptionist/chatbot"
)

const maxAudioBytes = 32 << 20

//Transcriber turns an uploaded recording into text
type Transcriber interface {
	Transcribe(ctx context.Context, audio io.Reader, filename, contentType, language string) (string, error)
}

//StaticTranscriber returns Text for every non-empty recording
type StaticTranscriber struct {
	Text string
}

//Transcribe implements Transcriber
func (t StaticTranscriber) Transcribe(ctx context.Context, audio io.Reader, filename, contentType, language string) (string, error) {
	n, err := io.Copy(io.Discard, audio)
	if err != nil {
		return "", fmt.Errorf("failed to read audio: %w", err)
	}
	if n == 0 {
		return "", errors.New("audio is empty")
	}
	return t.Text, nil
}

//GET /session
func handleCreateSession(s SessionStore) returnHandler {
	return func(w http.ResponseWriter, r *http.Request) *handlerResponse {
		id, err := s.Create()
		if err != nil {
			return handleError(http.StatusInternalServerError, fmt.Errorf("Could not create session: %v", err))
		}
		return &handlerResponse{Code: http.StatusOK, Body: &chatbot.SessionResponse{SessionID: id}}
	}
}

func writeChatError(w http.ResponseWriter, code int, msg string, err error) *handlerResponse {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(code)
	if encErr := json.NewEncoder(w).Encode(&chatbot.ErrorResponse{Error: msg}); encErr != nil {
		err = fmt.Errorf("Could not encode json: %v (%v)", encErr, err)
	}
	return &handlerResponse{Code: code, Err: err}
}

//POST /chat
func handleChat(s SessionStore, rs Responder) returnHandler {
	return func(w http.ResponseWriter, r *http.Request) *handlerResponse {
		var req *chatbot.ChatRequest
		if err := json.NewDecoder(r.Body).Decode(&req); err != nil || req == nil {
			return writeChatError(w, http.StatusBadRequest, "Invalid JSON body.", fmt.Errorf("Could not decode json: %v", err))
		}

		req.Message = strings.TrimSpace(req.Message)
		if req.SessionID == "" || req.Message == "" {
			return writeChatError(w, http.StatusBadRequest, "Both session_id and message are required.", errors.New("missing session_id or message"))
		}

		sess, err := s.Touch(req.SessionID)
		if err != nil {
			return writeChatError(w, http.StatusInternalServerError, "Could not load session.", fmt.Errorf("Could not touch session: %v", err))
		}

		flusher, _ := w.(http.Flusher)

		w.Header().Set("Content-Type", "text/event-stream")
		w.Header().Set("Cache-Control", "no-cache")
		w.Header().Set("Connection", "keep-alive")
		w.Header().Set("X-Accel-Buffering", "no")
		w.WriteHeader(http.StatusOK)

		var buf bytes.Buffer
		emit := func(e chatbot.Event) error {
			buf.Reset()
			if err := chatbot.EncodeEvent(&buf, e); err != nil {
				return err
			}
			if _, err := w.Write(buf.Bytes()); err != nil {
				return fmt.Errorf("failed to write event: %w", err)
			}
			if flusher != nil {
				flusher.Flush()
			}
			return nil
		}

		if err = rs.Respond(r.Context(), sess, req.Message, emit); err != nil {
			return &handlerResponse{Code: http.StatusOK, Err: fmt.Errorf("Could not complete chat turn: %v", err)}
		}

		return &handlerResponse{Code: http.StatusOK}
	}
}

//POST /transcribe
func handleTranscribe(t Transcriber) returnHandler {
	return func(w http.ResponseWriter, r *http.Request) *handlerResponse {
		r.Body = http.MaxBytesReader(w, r.Body, maxAudioBytes)
		if err := r.ParseMultipartForm(maxAudioBytes); err != nil {
			return handleDetail(http.StatusBadRequest, "Could not parse upload", fmt.Errorf("Could not parse multipart form: %v", err))
		}

		f, hdr, err := r.FormFile("audio")
		if err != nil {
			return handleDetail(http.StatusBadRequest, "audio is required", fmt.Errorf("Could not read audio: %v", err))
		}
		defer f.Close()

		lang := r.FormValue("language")
		if lang == "" {
			lang = "en"
		}

		text, err := t.Transcribe(r.Context(), f, hdr.Filename, hdr.Header.Get("Content-Type"), lang)
		if err != nil {
			return handleError(http.StatusInternalServerError, fmt.Errorf("Could not transcribe audio: %v", err))
		}

		return &handlerResponse{Code: http.StatusOK, Body: &chatbot.TranscribeResponse{Text: text}}
	}
}
