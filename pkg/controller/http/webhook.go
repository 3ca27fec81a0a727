package http

import (
	"context"
	"encoding/json"
	"net/http"

	"github.com/m-mizutani/goerr/v2"
	"github.com/runclub/paceline/pkg/domain/model"
	"github.com/runclub/paceline/pkg/utils/async"
	"github.com/runclub/paceline/pkg/utils/errutil"
	"github.com/runclub/paceline/pkg/utils/safe"
)

// handleWebhookChallenge answers Strava's subscription handshake. Strava
// sends hub.mode=subscribe with our verify token and expects the challenge
// echoed back as JSON.
func (s *Server) handleWebhookChallenge(w http.ResponseWriter, r *http.Request) {
	q := r.URL.Query()
	mode := q.Get("hub.mode")
	token := q.Get("hub.verify_token")
	challenge := q.Get("hub.challenge")

	if mode != "subscribe" || token != s.verifyToken {
		errutil.HandleHTTP(r.Context(), w,
			goerr.New("webhook verification failed", goerr.V("mode", mode)),
			http.StatusForbidden)
		return
	}

	w.Header().Set("Content-Type", "application/json")
	data, err := json.Marshal(map[string]string{"hub.challenge": challenge})
	if err != nil {
		errutil.HandleHTTP(r.Context(), w, goerr.Wrap(err, "failed to marshal challenge"), http.StatusInternalServerError)
		return
	}
	safe.Write(r.Context(), w, data)
}

// handleWebhookEvent ACKs immediately and processes the event in the
// background. Strava retries deliveries that do not get a fast 200, and the
// pipeline's dedupe makes those retries harmless.
func (s *Server) handleWebhookEvent(w http.ResponseWriter, r *http.Request) {
	var event model.WebhookEvent
	if err := json.NewDecoder(r.Body).Decode(&event); err != nil {
		errutil.HandleHTTP(r.Context(), w, goerr.Wrap(err, "failed to decode webhook event"), http.StatusBadRequest)
		return
	}

	if s.webhookSyncMode {
		if err := s.uc.HandleStravaEvent(r.Context(), &event); err != nil {
			errutil.Handle(r.Context(), err, "failed to handle webhook event")
		}
	} else {
		async.Dispatch(r.Context(), func(ctx context.Context) error {
			return s.uc.HandleStravaEvent(ctx, &event)
		})
	}

	w.WriteHeader(http.StatusOK)
	safe.Write(r.Context(), w, []byte("EVENT_RECEIVED"))
}
