package usecase

import (
	"context"
	"fmt"

	"github.com/m-mizutani/goerr/v2"
	"github.com/runclub/paceline/pkg/domain/model"
	"github.com/runclub/paceline/pkg/domain/types"
	"github.com/runclub/paceline/pkg/utils/logging"
)

// StravaAuthorizeURL builds the redirect to Strava's consent screen. The
// Slack user ID travels in the OAuth state parameter and comes back in the
// callback.
func (uc *UseCases) StravaAuthorizeURL(slackUserID types.SlackUserID) string {
	return uc.strava.AuthorizeURL(string(slackUserID))
}

// ConnectStrava finishes the OAuth flow: exchanges the code, stores the
// connection, and when a Slack user is attached, issues a verification token
// and DMs the link. Returns the stored connection and whether a verification
// DM went out.
func (uc *UseCases) ConnectStrava(ctx context.Context, code string, slackUserID types.SlackUserID) (*model.StravaConnection, bool, error) {
	token, err := uc.strava.ExchangeCode(ctx, code)
	if err != nil {
		return nil, false, goerr.Wrap(err, "failed to exchange authorization code")
	}

	athleteID := types.AthleteID(token.Athlete.ID)

	var verificationToken types.VerificationToken
	if slackUserID != "" {
		if err := slackUserID.Validate(); err != nil {
			return nil, false, goerr.Wrap(ErrInvalidSlackUserID, err.Error())
		}
		verificationToken = types.NewVerificationToken()
	}

	conn := &model.StravaConnection{
		AthleteID:         athleteID,
		RefreshToken:      token.RefreshToken,
		AccessToken:       token.AccessToken,
		ExpiresAt:         token.ExpiresAt,
		FirstName:         token.Athlete.FirstName,
		LastName:          token.Athlete.LastName,
		SlackUserID:       slackUserID,
		VerificationToken: verificationToken,
	}
	if err := uc.repo.Strava().Upsert(ctx, conn); err != nil {
		return nil, false, goerr.Wrap(err, "failed to save strava connection", goerr.V("athlete_id", athleteID))
	}

	stored, err := uc.repo.Strava().Get(ctx, athleteID)
	if err != nil {
		return nil, false, goerr.Wrap(err, "failed to reload strava connection", goerr.V("athlete_id", athleteID))
	}

	dmSent := false
	if slackUserID != "" && verificationToken != "" {
		dmText := fmt.Sprintf(
			"Hi! You've connected your Strava account to the running tracker.\n\n"+
				"To complete setup and start auto-posting your runs, please click this link "+
				"to verify your Slack account:\n\n%s/verify/%s\n\n"+
				"(If you didn't request this, you can ignore this message.)",
			uc.baseURL, verificationToken)
		if err := uc.slack.PostDM(ctx, slackUserID, dmText); err != nil {
			// The connection is stored either way; the athlete can restart
			// verification from the homepage.
			logging.From(ctx).Warn("failed to send verification DM",
				"slack_user_id", slackUserID, "error", err)
		} else {
			dmSent = true
		}
	}

	logging.From(ctx).Info("strava account connected",
		"athlete_id", athleteID, "slack_user_id", slackUserID)
	return stored, dmSent, nil
}

// ConnectPeloton logs in with the member's credentials and stores the session.
// The password is forwarded to Peloton and never persisted. Requires a
// verified Slack user.
func (uc *UseCases) ConnectPeloton(ctx context.Context, slackUserID types.SlackUserID, username, password string) (*model.PelotonConnection, error) {
	if err := slackUserID.Validate(); err != nil {
		return nil, goerr.Wrap(ErrInvalidSlackUserID, err.Error())
	}

	verified, err := uc.repo.SlackVerification().IsVerified(ctx, slackUserID)
	if err != nil {
		return nil, goerr.Wrap(err, "failed to check verification state", goerr.V("slack_user_id", slackUserID))
	}
	if !verified {
		return nil, goerr.Wrap(ErrNotVerified, "peloton connect requires a verified slack user", goerr.V("slack_user_id", slackUserID))
	}

	session, err := uc.peloton.Login(ctx, username, password)
	if err != nil {
		return nil, goerr.Wrap(err, "peloton login failed")
	}

	conn := &model.PelotonConnection{
		PelotonUserID: session.UserID,
		SlackUserID:   slackUserID,
		SessionID:     session.SessionID,
		Username:      model.PelotonDisplayName(username),
	}
	if err := uc.repo.Peloton().Upsert(ctx, conn); err != nil {
		return nil, goerr.Wrap(err, "failed to save peloton connection", goerr.V("peloton_user_id", session.UserID))
	}

	logging.From(ctx).Info("peloton account connected",
		"peloton_user_id", session.UserID, "slack_user_id", slackUserID)
	return conn, nil
}
