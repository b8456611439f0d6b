package internalhttp

import (
	"encoding/json"
	"errors"
	"io"
	"net/http"
	"time"

	"github.com/lomoval/weekcal/api"
	"github.com/lomoval/weekcal/internal/app"
	"github.com/lomoval/weekcal/internal/ics"
	"github.com/lomoval/weekcal/internal/identity"
	"github.com/lomoval/weekcal/internal/storage"
	log "github.com/sirupsen/logrus"
)

const (
	maxBodyBytes = 1 << 20

	msgCreated        = "Event created successfully"
	msgDeleted        = "Deleted"
	msgNotFound       = "Event not found"
	msgRangeRequired  = "start and end query required"
	msgInvalidBody    = "invalid request body"
	msgInternalServer = "Internal server error"
)

func (s *Server) listEvents(w http.ResponseWriter, r *http.Request) {
	start, end, ok := rangeQuery(w, r)
	if !ok {
		return
	}
	events, err := s.app.ListInRange(r.Context(), owner(r), start, end)
	if err != nil {
		writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, api.FromStorageList(events))
}

func (s *Server) createEvent(w http.ResponseWriter, r *http.Request) {
	var body api.EventCreate
	if !decodeBody(w, r, &body, false) {
		return
	}
	e, err := s.app.CreateEvent(r.Context(), owner(r), app.CreateInput{
		Title:       body.Title,
		Description: body.Description,
		Start:       body.Start,
		End:         body.End,
		Color:       body.Color,
	})
	if err != nil {
		writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusCreated, api.CreateResponse{Success: true, Message: msgCreated, Data: api.FromStorage(e)})
}

func (s *Server) updateEvent(w http.ResponseWriter, r *http.Request) {
	var body api.EventPatch
	if !decodeBody(w, r, &body, true) {
		return
	}
	e, err := s.app.UpdateEvent(r.Context(), r.PathValue("id"), owner(r), app.UpdateInput{
		Title:       body.Title,
		Description: body.Description,
		Start:       body.Start,
		End:         body.End,
		Color:       body.Color,
	})
	if err != nil {
		writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, api.FromStorage(e))
}

func (s *Server) removeEvent(w http.ResponseWriter, r *http.Request) {
	if _, err := s.app.RemoveEvent(r.Context(), r.PathValue("id"), owner(r)); err != nil {
		writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, api.MessageResponse{Message: msgDeleted})
}

func (s *Server) exportEvents(w http.ResponseWriter, r *http.Request) {
	start, end, ok := rangeQuery(w, r)
	if !ok {
		return
	}
	events, err := s.app.ListInRange(r.Context(), owner(r), start, end)
	if err != nil {
		writeError(w, r, err)
		return
	}
	w.Header().Set("Content-Type", ics.ContentType)
	w.Header().Set("Content-Disposition", `attachment; filename="calendar.ics"`)
	if err := ics.Write(w, events, time.Now()); err != nil {
		log.Errorf("failed to write calendar export: %v", err)
	}
}

func (s *Server) ping(w http.ResponseWriter, _ *http.Request) {
	writeJSON(w, http.StatusOK, api.MessageResponse{Message: "pong"})
}

func owner(r *http.Request) string {
	id, ok := identity.Owner(r.Context())
	if !ok {
		return identity.DefaultOwner
	}
	return id
}

func rangeQuery(w http.ResponseWriter, r *http.Request) (string, string, bool) {
	start := r.URL.Query().Get("start")
	end := r.URL.Query().Get("end")
	if start == "" || end == "" {
		writeJSON(w, http.StatusBadRequest, api.MessageResponse{Message: msgRangeRequired})
		return "", "", false
	}
	return start, end, true
}

// decodeBody reads a JSON body into v. With emptyOK a missing body leaves v
// untouched.
func decodeBody(w http.ResponseWriter, r *http.Request, v interface{}, emptyOK bool) bool {
	err := json.NewDecoder(http.MaxBytesReader(w, r.Body, maxBodyBytes)).Decode(v)
	if emptyOK && errors.Is(err, io.EOF) {
		return true
	}
	if err != nil {
		log.WithField("request_id", requestID(r.Context())).Debugf("failed to decode body: %v", err)
		writeJSON(w, http.StatusBadRequest, api.MessageResponse{Message: msgInvalidBody})
		return false
	}
	return true
}

func writeError(w http.ResponseWriter, r *http.Request, err error) {
	switch {
	case errors.Is(err, storage.ErrNotFoundEvent):
		writeJSON(w, http.StatusNotFound, api.MessageResponse{Message: msgNotFound})
	case errors.Is(err, app.ErrMissingField), errors.Is(err, app.ErrInvalidRange), errors.Is(err, app.ErrInvalidField):
		writeJSON(w, http.StatusBadRequest, api.MessageResponse{Message: err.Error()})
	default:
		log.WithField("request_id", requestID(r.Context())).Errorf("request failed: %v", err)
		writeJSON(w, http.StatusInternalServerError, api.MessageResponse{Message: msgInternalServer})
	}
}

func writeJSON(w http.ResponseWriter, status int, v interface{}) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(v); err != nil {
		log.Errorf("failed to write response: %v", err)
	}
}
