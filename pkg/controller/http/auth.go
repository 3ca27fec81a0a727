package http

import (
	"errors"
	"fmt"
	"net/http"

	"github.com/runclub/paceline/pkg/domain/types"
	"github.com/runclub/paceline/pkg/service/peloton"
	"github.com/runclub/paceline/pkg/usecase"
	"github.com/runclub/paceline/pkg/utils/errutil"
)

// handleStravaStart redirects to Strava's consent screen. The optional
// slack_user_id query parameter rides along in the OAuth state.
func (s *Server) handleStravaStart(w http.ResponseWriter, r *http.Request) {
	slackUserID := types.SlackUserID(r.URL.Query().Get("slack_user_id"))
	if slackUserID != "" && !slackUserID.IsValid() {
		s.renderMessage(w, r, http.StatusBadRequest, messagePage{
			Title:      "Invalid Slack ID",
			Heading:    "Invalid Slack ID",
			Paragraphs: []string{"Please enter a valid Slack Member ID (starts with U followed by letters/numbers)."},
		})
		return
	}

	http.Redirect(w, r, s.uc.StravaAuthorizeURL(slackUserID), http.StatusFound)
}

func (s *Server) handleStravaCallback(w http.ResponseWriter, r *http.Request) {
	code := r.URL.Query().Get("code")
	if code == "" {
		s.renderMessage(w, r, http.StatusBadRequest, messagePage{
			Title:      "Missing Code",
			Heading:    "Missing authorization code",
			Paragraphs: []string{"Strava did not return an authorization code. Please try connecting again."},
		})
		return
	}

	// The state parameter carries the Slack user ID through the OAuth round
	// trip. A missing or mangled state just means no Slack link.
	slackUserID := types.SlackUserID(r.URL.Query().Get("state"))
	if !slackUserID.IsValid() {
		slackUserID = ""
	}

	conn, dmSent, err := s.uc.ConnectStrava(r.Context(), code, slackUserID)
	if err != nil {
		errutil.HandleHTTP(r.Context(), w, err, http.StatusInternalServerError)
		return
	}

	var note string
	switch {
	case dmSent:
		note = "Check your Slack DMs! We've sent you a verification link to confirm your account."
	case slackUserID != "":
		note = "Connected, but failed to send verification DM. Please contact an admin."
	default:
		note = "Note: No Slack account linked. Visit the homepage to set up your Slack ID."
	}

	s.renderMessage(w, r, http.StatusOK, messagePage{
		Title:   "Connected",
		Heading: "Connected! ✅",
		Paragraphs: []string{
			fmt.Sprintf("Athlete: %s (id %s).", conn.DisplayName(), conn.AthleteID.String()),
			note,
			"You can close this tab.",
		},
	})
}

// handlePelotonStart shows the login form, gated on Slack verification.
func (s *Server) handlePelotonStart(w http.ResponseWriter, r *http.Request) {
	slackUserID := types.SlackUserID(r.URL.Query().Get("slack_user_id"))
	if slackUserID == "" {
		s.renderMessage(w, r, http.StatusBadRequest, messagePage{
			Title:      "Missing Slack ID",
			Heading:    "Missing Slack ID",
			Paragraphs: []string{"Please start from the homepage to connect Peloton."},
		})
		return
	}

	verified, err := s.uc.IsSlackVerified(r.Context(), slackUserID)
	if err != nil {
		errutil.HandleHTTP(r.Context(), w, err, http.StatusInternalServerError)
		return
	}
	if !verified {
		s.renderMessage(w, r, http.StatusForbidden, messagePage{
			Title:   "Not Verified",
			Heading: "Slack Not Verified",
			Paragraphs: []string{
				"You must verify your Slack account before connecting Peloton.",
				"Please go to the homepage and complete Step 1 first.",
			},
		})
		return
	}

	w.Header().Set("Content-Type", "text/html; charset=utf-8")
	if err := pelotonFormTmpl.Execute(w, struct{ SlackUserID string }{string(slackUserID)}); err != nil {
		errutil.Handle(r.Context(), err, "failed to render peloton form")
	}
}

func (s *Server) handlePelotonLogin(w http.ResponseWriter, r *http.Request) {
	if err := r.ParseForm(); err != nil {
		errutil.HandleHTTP(r.Context(), w, err, http.StatusBadRequest)
		return
	}

	slackUserID := types.SlackUserID(r.PostFormValue("slack_user_id"))
	username := r.PostFormValue("username")
	password := r.PostFormValue("password")

	if username == "" || password == "" {
		s.renderMessage(w, r, http.StatusBadRequest, messagePage{
			Title:      "Missing Credentials",
			Heading:    "Missing credentials",
			Paragraphs: []string{"Both username and password are required."},
		})
		return
	}

	_, err := s.uc.ConnectPeloton(r.Context(), slackUserID, username, password)
	switch {
	case err == nil:
		s.renderMessage(w, r, http.StatusOK, messagePage{
			Title:   "Peloton Connected",
			Heading: "✅ Peloton Connected!",
			Paragraphs: []string{
				"Your Peloton account is now linked. Your workouts with distance " +
					"(running, cycling, walking) will be automatically posted to Slack.",
			},
		})

	case errors.Is(err, usecase.ErrNotVerified):
		s.renderMessage(w, r, http.StatusForbidden, messagePage{
			Title:      "Not Verified",
			Heading:    "Slack Not Verified",
			Paragraphs: []string{"Your Slack account must be verified first."},
		})

	case errors.Is(err, usecase.ErrInvalidSlackUserID):
		s.renderMessage(w, r, http.StatusBadRequest, messagePage{
			Title:      "Invalid Slack ID",
			Heading:    "Invalid Slack ID",
			Paragraphs: []string{"Please enter a valid Slack Member ID (starts with U followed by letters/numbers)."},
		})

	case errors.Is(err, peloton.ErrLoginFailed):
		s.renderMessage(w, r, http.StatusBadRequest, messagePage{
			Title:      "Login Failed",
			Heading:    "Peloton Login Failed",
			Paragraphs: []string{"Peloton rejected those credentials. Please check them and try again."},
		})

	default:
		errutil.HandleHTTP(r.Context(), w, err, http.StatusInternalServerError)
	}
}
