package usecase

import (
	"context"
	"errors"
	"fmt"

	"github.com/m-mizutani/goerr/v2"
	"github.com/runclub/paceline/pkg/domain/model"
	"github.com/runclub/paceline/pkg/domain/types"
	"github.com/runclub/paceline/pkg/utils/logging"
)

// StartSlackVerification issues a verification token for a Slack user and DMs
// them the confirmation link. Already-verified users short-circuit without a
// new token.
func (uc *UseCases) StartSlackVerification(ctx context.Context, id types.SlackUserID) (alreadyVerified bool, err error) {
	if err := id.Validate(); err != nil {
		return false, goerr.Wrap(ErrInvalidSlackUserID, err.Error())
	}

	verified, err := uc.repo.SlackVerification().IsVerified(ctx, id)
	if err != nil {
		return false, goerr.Wrap(err, "failed to check verification state", goerr.V("slack_user_id", id))
	}
	if verified {
		return true, nil
	}

	token := types.NewVerificationToken()
	if err := uc.repo.SlackVerification().Upsert(ctx, &model.VerifiedSlackUser{
		SlackUserID:       id,
		VerificationToken: token,
	}); err != nil {
		return false, goerr.Wrap(err, "failed to save verification token", goerr.V("slack_user_id", id))
	}

	dmText := fmt.Sprintf(
		"Hi! You've requested to verify your Slack account for the fitness tracker.\n\n"+
			"Click this link to complete verification:\n\n%s/verify/slack/%s\n\n"+
			"Once verified, you can connect Strava or Peloton to auto-post your workouts.",
		uc.baseURL, token)
	if err := uc.slack.PostDM(ctx, id, dmText); err != nil {
		return false, goerr.Wrap(err, "failed to send verification DM", goerr.V("slack_user_id", id))
	}

	return false, nil
}

// CompleteSlackVerification consumes a standalone verification token and
// returns the now-verified Slack user ID.
func (uc *UseCases) CompleteSlackVerification(ctx context.Context, token types.VerificationToken) (types.SlackUserID, error) {
	user, err := uc.repo.SlackVerification().GetByToken(ctx, token)
	if err != nil {
		if errors.Is(err, model.ErrNotFound) {
			return "", goerr.Wrap(ErrTokenInvalid, "no pending verification for token")
		}
		return "", goerr.Wrap(err, "failed to look up verification token")
	}

	ok, err := uc.repo.SlackVerification().Consume(ctx, token)
	if err != nil {
		return "", goerr.Wrap(err, "failed to consume verification token")
	}
	if !ok {
		return "", goerr.Wrap(ErrTokenInvalid, "verification token already used")
	}

	logging.From(ctx).Info("slack user verified", "slack_user_id", user.SlackUserID)
	return user.SlackUserID, nil
}

// CompleteStravaVerification consumes a token issued during the Strava OAuth
// callback. The verified identity is also recorded in the standalone ledger
// so the same user can connect Peloton without a second round trip.
func (uc *UseCases) CompleteStravaVerification(ctx context.Context, token types.VerificationToken) (*model.StravaConnection, error) {
	conn, err := uc.repo.Strava().GetByVerificationToken(ctx, token)
	if err != nil {
		if errors.Is(err, model.ErrNotFound) {
			return nil, goerr.Wrap(ErrTokenInvalid, "no pending verification for token")
		}
		return nil, goerr.Wrap(err, "failed to look up verification token")
	}

	ok, err := uc.repo.Strava().MarkVerified(ctx, token)
	if err != nil {
		return nil, goerr.Wrap(err, "failed to mark connection verified")
	}
	if !ok {
		return nil, goerr.Wrap(ErrTokenInvalid, "verification token already used")
	}
	conn.Verified = true
	conn.VerificationToken = ""

	if conn.Linked() {
		if err := uc.repo.SlackVerification().Upsert(ctx, &model.VerifiedSlackUser{
			SlackUserID: conn.SlackUserID,
			Verified:    true,
		}); err != nil {
			return nil, goerr.Wrap(err, "failed to record verified slack user", goerr.V("slack_user_id", conn.SlackUserID))
		}
	}

	logging.From(ctx).Info("strava connection verified",
		"athlete_id", conn.AthleteID, "slack_user_id", conn.SlackUserID)
	return conn, nil
}

// IsSlackVerified reports whether the Slack user passed verification.
func (uc *UseCases) IsSlackVerified(ctx context.Context, id types.SlackUserID) (bool, error) {
	return uc.repo.SlackVerification().IsVerified(ctx, id)
}
