package adapthttp

import (
	"errors"
	"net/http"

	"trackr/internal/app"
	"trackr/internal/domain"
)

// ownUser returns the authenticated user if it matches the {user} path
// segment, writing 403 otherwise.
func (s *Server) ownUser(w http.ResponseWriter, r *http.Request) (*domain.User, bool) {
	u := userFrom(r.Context())
	if u == nil || u.Username != r.PathValue("user") {
		writeError(w, http.StatusForbidden, errors.New("forbidden"))
		return nil, false
	}
	return u, true
}

func (s *Server) handleUser(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodGet {
		w.WriteHeader(http.StatusMethodNotAllowed)
		return
	}
	u, ok := s.ownUser(w, r)
	if !ok {
		return
	}
	entries, err := s.weight.List(r.Context(), u.ID)
	if err != nil {
		s.writeEntryError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, domain.UserPayload{
		User: &domain.UserRecord{Username: u.Username, Weight: entries},
	})
}

func (s *Server) handleUserWeight(w http.ResponseWriter, r *http.Request) {
	switch r.Method {
	case http.MethodPost, http.MethodPut, http.MethodDelete:
	default:
		w.WriteHeader(http.StatusMethodNotAllowed)
		return
	}
	u, ok := s.ownUser(w, r)
	if !ok {
		return
	}
	ctx := r.Context()

	if r.Method == http.MethodDelete {
		if err := s.weight.Delete(ctx, u.ID, r.URL.Query().Get("date")); err != nil {
			s.writeEntryError(w, err)
			return
		}
		writeJSON(w, http.StatusOK, map[string]any{"ok": true})
		return
	}

	var body domain.WeightEntry
	if err := parseJSON(r, &body); err != nil {
		writeError(w, http.StatusBadRequest, err)
		return
	}
	var (
		entry domain.WeightEntry
		err   error
	)
	if r.Method == http.MethodPost {
		entry, err = s.weight.Add(ctx, u.ID, body.Date, body.Weight)
	} else {
		entry, err = s.weight.Modify(ctx, u.ID, body.Date, body.Weight)
	}
	if err != nil {
		s.writeEntryError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, map[string]any{"ok": true, "entry": entry})
}

func (s *Server) writeEntryError(w http.ResponseWriter, err error) {
	switch {
	case errors.Is(err, domain.ErrInvalidDate), errors.Is(err, app.ErrInvalidWeight):
		writeError(w, http.StatusBadRequest, err)
	case errors.Is(err, domain.ErrEntryExists):
		writeError(w, http.StatusConflict, domain.ErrEntryExists)
	case errors.Is(err, domain.ErrEntryNotFound):
		writeError(w, http.StatusNotFound, domain.ErrEntryNotFound)
	default:
		s.log.Error().Err(err).Msg("weight entry operation failed")
		writeError(w, http.StatusInternalServerError, errors.New("internal error"))
	}
}
