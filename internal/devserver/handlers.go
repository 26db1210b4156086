package devserver

import (
	"bytes"
	"encoding/json"
	"fmt"
	"io"
	"net/http"

	"github.com/gorilla/mux"

	"github.com/harrylevesque/ecoadmin/internal/models"
	"github.com/harrylevesque/ecoadmin/internal/utils"
)

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	json.NewEncoder(w).Encode(v)
}

// writeError answers with {"message": ...}, or plain text for the routes
// whose real counterparts do that.
func (s *Server) writeError(w http.ResponseWriter, r *http.Request, err error, plain bool) {
	code, msg := utils.StatusCode(err), utils.Message(err)
	if code >= 500 {
		s.logger.Error("request failed", "method", r.Method, "path", r.URL.Path, "error", err)
	}
	if plain {
		http.Error(w, msg, code)
		return
	}
	writeJSON(w, code, map[string]string{"message": msg})
}

func decodeBody(r *http.Request) (map[string]any, error) {
	data, err := io.ReadAll(r.Body)
	if err != nil {
		return nil, utils.New(http.StatusBadRequest, "could not read request body")
	}
	dec := json.NewDecoder(bytes.NewReader(data))
	dec.UseNumber()
	var body map[string]any
	if err := dec.Decode(&body); err != nil {
		return nil, utils.New(http.StatusBadRequest, fmt.Sprintf("invalid JSON body: %v", err))
	}
	return body, nil
}

func plainErrors(resource string) bool {
	return resource == "locations"
}

func (s *Server) ListHandler(w http.ResponseWriter, r *http.Request) {
	resource := mux.Vars(r)["resource"]
	list, err := s.store.List(resource)
	if err != nil {
		s.writeError(w, r, err, plainErrors(resource))
		return
	}
	writeJSON(w, http.StatusOK, list)
}

// PublicLocationsHandler lists locations wrapped in {"locations": [...]}.
func (s *Server) PublicLocationsHandler(w http.ResponseWriter, r *http.Request) {
	list, err := s.store.List("locations")
	if err != nil {
		s.writeError(w, r, err, true)
		return
	}
	writeJSON(w, http.StatusOK, map[string]any{"locations": list})
}

func (s *Server) GetHandler(w http.ResponseWriter, r *http.Request) {
	vars := mux.Vars(r)
	rec, err := s.store.Get(vars["resource"], vars["id"])
	if err != nil {
		s.writeError(w, r, err, plainErrors(vars["resource"]))
		return
	}
	writeJSON(w, http.StatusOK, rec)
}

// CreateHandler stores a new record and echoes it with its key.
func (s *Server) CreateHandler(w http.ResponseWriter, r *http.Request) {
	resource := mux.Vars(r)["resource"]
	body, err := decodeBody(r)
	if err != nil {
		s.writeError(w, r, err, plainErrors(resource))
		return
	}
	rec, err := s.store.Create(resource, body)
	if err != nil {
		s.writeError(w, r, err, plainErrors(resource))
		return
	}
	s.logger.Info("record created", "resource", resource)
	writeJSON(w, http.StatusCreated, rec)
}

func (s *Server) UpdateHandler(w http.ResponseWriter, r *http.Request) {
	vars := mux.Vars(r)
	body, err := decodeBody(r)
	if err != nil {
		s.writeError(w, r, err, plainErrors(vars["resource"]))
		return
	}
	rec, err := s.store.Update(vars["resource"], vars["id"], body)
	if err != nil {
		s.writeError(w, r, err, plainErrors(vars["resource"]))
		return
	}
	writeJSON(w, http.StatusOK, rec)
}

// StatusHandler changes only the status, from {"Status": ...} or {"status": ...}.
func (s *Server) StatusHandler(w http.ResponseWriter, r *http.Request) {
	vars := mux.Vars(r)
	body, err := decodeBody(r)
	if err != nil {
		s.writeError(w, r, err, false)
		return
	}
	var status string
	if k, ok := fieldKey(body, "status"); ok {
		status = models.Stringify(body[k])
	}
	rec, err := s.store.SetStatus(vars["resource"], vars["id"], status)
	if err != nil {
		s.writeError(w, r, err, false)
		return
	}
	writeJSON(w, http.StatusOK, rec)
}

func (s *Server) DeleteHandler(w http.ResponseWriter, r *http.Request) {
	vars := mux.Vars(r)
	if err := s.store.Delete(vars["resource"], vars["id"]); err != nil {
		s.writeError(w, r, err, plainErrors(vars["resource"]))
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

func (s *Server) AnalyticsHandler(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, s.store.Analytics())
}

// LoginHandler checks {Email, PasswordHash} against the known accounts.
func (s *Server) LoginHandler(w http.ResponseWriter, r *http.Request) {
	body, err := decodeBody(r)
	if err != nil {
		s.writeError(w, r, err, false)
		return
	}
	field := func(name string) string {
		if k, ok := fieldKey(body, name); ok {
			return models.Stringify(body[k])
		}
		return ""
	}
	role, ok := s.accounts.Check(field("email"), field("passwordHash"))
	if !ok {
		s.logger.Info("login refused", "email", field("email"))
		writeJSON(w, http.StatusUnauthorized, map[string]any{"success": false, "message": "Invalid email or password"})
		return
	}
	writeJSON(w, http.StatusOK, map[string]any{"success": true, "message": "Login successful", "role": role})
}
