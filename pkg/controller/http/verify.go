package http

import (
	"errors"
	"fmt"
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/runclub/paceline/pkg/domain/types"
	"github.com/runclub/paceline/pkg/usecase"
	"github.com/runclub/paceline/pkg/utils/errutil"
)

// handleSlackVerifyStart takes the homepage form and DMs a verification link.
func (s *Server) handleSlackVerifyStart(w http.ResponseWriter, r *http.Request) {
	if err := r.ParseForm(); err != nil {
		errutil.HandleHTTP(r.Context(), w, err, http.StatusBadRequest)
		return
	}

	slackUserID := types.SlackUserID(r.PostFormValue("slack_user_id"))

	alreadyVerified, err := s.uc.StartSlackVerification(r.Context(), slackUserID)
	if err != nil {
		if errors.Is(err, usecase.ErrInvalidSlackUserID) {
			s.renderMessage(w, r, http.StatusBadRequest, messagePage{
				Title:      "Invalid Slack ID",
				Heading:    "Invalid Slack ID",
				Paragraphs: []string{"Please enter a valid Slack Member ID (starts with U followed by letters/numbers)."},
			})
			return
		}
		errutil.HandleHTTP(r.Context(), w, err, http.StatusInternalServerError)
		return
	}

	if alreadyVerified {
		s.renderMessage(w, r, http.StatusOK, messagePage{
			Title:      "Already Verified",
			Heading:    "✅ Already Verified!",
			Paragraphs: []string{"Your Slack account is already verified. You can now connect Strava or Peloton."},
		})
		return
	}

	s.renderMessage(w, r, http.StatusOK, messagePage{
		Title:   "Check Your Slack DMs",
		Heading: "📬 Check Your Slack DMs!",
		Paragraphs: []string{
			"We've sent a verification link to your Slack direct messages.",
			"Click the link in that message to verify your account, then come back here to connect Strava or Peloton.",
		},
	})
}

// handleSlackVerifyComplete consumes a standalone verification token.
func (s *Server) handleSlackVerifyComplete(w http.ResponseWriter, r *http.Request) {
	token := types.VerificationToken(chi.URLParam(r, "token"))

	slackUserID, err := s.uc.CompleteSlackVerification(r.Context(), token)
	if err != nil {
		if errors.Is(err, usecase.ErrTokenInvalid) {
			s.renderMessage(w, r, http.StatusNotFound, messagePage{
				Title:      "Verification Failed",
				Heading:    "Verification Failed",
				Paragraphs: []string{"Invalid or expired verification link."},
			})
			return
		}
		errutil.HandleHTTP(r.Context(), w, err, http.StatusInternalServerError)
		return
	}

	s.renderMessage(w, r, http.StatusOK, messagePage{
		Title:   "Verified",
		Heading: "✅ Verified!",
		Paragraphs: []string{
			fmt.Sprintf("Your Slack account %s is now verified.", slackUserID),
			"You can now connect Strava or Peloton to auto-post your workouts.",
		},
	})
}

// handleStravaVerifyComplete consumes a token issued by the OAuth callback.
func (s *Server) handleStravaVerifyComplete(w http.ResponseWriter, r *http.Request) {
	token := types.VerificationToken(chi.URLParam(r, "token"))

	conn, err := s.uc.CompleteStravaVerification(r.Context(), token)
	if err != nil {
		if errors.Is(err, usecase.ErrTokenInvalid) {
			s.renderMessage(w, r, http.StatusNotFound, messagePage{
				Title:      "Verification Failed",
				Heading:    "Verification Failed",
				Paragraphs: []string{"Invalid or expired verification link."},
			})
			return
		}
		errutil.HandleHTTP(r.Context(), w, err, http.StatusInternalServerError)
		return
	}

	s.renderMessage(w, r, http.StatusOK, messagePage{
		Title:   "Verified",
		Heading: "✅ Verified!",
		Paragraphs: []string{
			"Your Slack account is now verified. Your runs will be automatically posted to the channel.",
			fmt.Sprintf("Athlete: %s", conn.DisplayName()),
			fmt.Sprintf("Slack ID: %s", conn.SlackUserID),
			"You can close this tab and start running! 🏃",
		},
	})
}
