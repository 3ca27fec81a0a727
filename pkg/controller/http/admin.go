package http

import (
	"encoding/json"
	"errors"
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/m-mizutani/goerr/v2"
	"github.com/runclub/paceline/pkg/domain/model"
	"github.com/runclub/paceline/pkg/domain/types"
	"github.com/runclub/paceline/pkg/usecase"
	"github.com/runclub/paceline/pkg/utils/errutil"
	"github.com/runclub/paceline/pkg/utils/safe"
)

func writeJSON(w http.ResponseWriter, r *http.Request, v any) {
	data, err := json.Marshal(v)
	if err != nil {
		errutil.HandleHTTP(r.Context(), w, goerr.Wrap(err, "failed to marshal response"), http.StatusInternalServerError)
		return
	}
	w.Header().Set("Content-Type", "application/json")
	safe.Write(r.Context(), w, data)
}

func (s *Server) handleListStravaConnections(w http.ResponseWriter, r *http.Request) {
	conns, err := s.uc.ListStravaConnections(r.Context())
	if err != nil {
		errutil.HandleHTTP(r.Context(), w, err, http.StatusInternalServerError)
		return
	}

	writeJSON(w, r, map[string]any{"ok": true, "connections": conns})
}

func (s *Server) handleListPelotonConnections(w http.ResponseWriter, r *http.Request) {
	conns, err := s.uc.ListPelotonConnections(r.Context())
	if err != nil {
		errutil.HandleHTTP(r.Context(), w, err, http.StatusInternalServerError)
		return
	}

	writeJSON(w, r, map[string]any{"ok": true, "connections": conns})
}

func (s *Server) handleDeletePelotonConnection(w http.ResponseWriter, r *http.Request) {
	id := types.PelotonUserID(chi.URLParam(r, "peloton_user_id"))

	if err := s.uc.DeletePelotonConnection(r.Context(), id); err != nil {
		if errors.Is(err, model.ErrNotFound) {
			errutil.HandleHTTP(r.Context(), w, err, http.StatusNotFound)
			return
		}
		errutil.HandleHTTP(r.Context(), w, err, http.StatusInternalServerError)
		return
	}

	writeJSON(w, r, map[string]any{"ok": true, "message": "Connection deleted"})
}

// handleRelinkSlack attaches a Slack user to an existing athlete, for the
// case where someone connected Strava before knowing their member ID.
func (s *Server) handleRelinkSlack(w http.ResponseWriter, r *http.Request) {
	athleteID, err := types.ParseAthleteID(chi.URLParam(r, "athlete_id"))
	if err != nil {
		errutil.HandleHTTP(r.Context(), w, err, http.StatusBadRequest)
		return
	}

	var req struct {
		SlackUserID types.SlackUserID `json:"slack_user_id"`
	}
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		errutil.HandleHTTP(r.Context(), w, goerr.Wrap(err, "failed to decode request"), http.StatusBadRequest)
		return
	}

	if err := s.uc.RelinkSlack(r.Context(), athleteID, req.SlackUserID); err != nil {
		switch {
		case errors.Is(err, usecase.ErrInvalidSlackUserID):
			errutil.HandleHTTP(r.Context(), w, err, http.StatusBadRequest)
		case errors.Is(err, model.ErrNotFound):
			errutil.HandleHTTP(r.Context(), w, err, http.StatusNotFound)
		default:
			errutil.HandleHTTP(r.Context(), w, err, http.StatusInternalServerError)
		}
		return
	}

	writeJSON(w, r, map[string]any{"ok": true, "message": "Slack user linked"})
}
