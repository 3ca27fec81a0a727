package usecase

import (
	"context"
	"errors"
	"time"

	"github.com/m-mizutani/goerr/v2"
	"github.com/runclub/paceline/pkg/domain/model"
	"github.com/runclub/paceline/pkg/domain/types"
	"github.com/runclub/paceline/pkg/service/strava"
	"github.com/runclub/paceline/pkg/utils/logging"
)

// HandleStravaEvent processes one webhook event end to end. The webhook
// handler has already ACKed by the time this runs, so every early return here
// just drops the event.
//
// Ordering matters: the dedupe check runs before any vendor call, and the
// posted-marker is written only after the Slack post succeeds, so a failed
// post is retried on the next delivery of the same event.
func (uc *UseCases) HandleStravaEvent(ctx context.Context, event *model.WebhookEvent) error {
	logger := logging.From(ctx)

	if !event.IsNewActivity() {
		logger.Debug("ignoring event", "object_type", event.ObjectType, "aspect_type", event.AspectType)
		return nil
	}

	activityID := types.ActivityID(event.ObjectID)
	athleteID := types.AthleteID(event.OwnerID)

	posted, err := uc.repo.PostedActivity().WasPosted(ctx, activityID)
	if err != nil {
		return goerr.Wrap(err, "failed to check posted activity", goerr.V("activity_id", activityID))
	}
	if posted {
		logger.Debug("activity already posted", "activity_id", activityID)
		return nil
	}

	conn, err := uc.repo.Strava().Get(ctx, athleteID)
	if err != nil {
		if errors.Is(err, model.ErrNotFound) {
			logger.Debug("no connection for athlete", "athlete_id", athleteID)
			return nil
		}
		return goerr.Wrap(err, "failed to get strava connection", goerr.V("athlete_id", athleteID))
	}

	// A linked but unverified athlete stays silent until the Slack identity
	// is confirmed. Events are not queued; the next one after verification
	// posts normally.
	if conn.Linked() && !conn.Verified {
		logger.Info("holding activity for unverified athlete",
			"athlete_id", athleteID, "activity_id", activityID)
		return nil
	}

	conn, err = uc.freshConnection(ctx, conn)
	if err != nil {
		return err
	}

	activity, err := uc.strava.GetActivity(ctx, conn.AccessToken, activityID)
	if err != nil {
		return goerr.Wrap(err, "failed to fetch activity", goerr.V("activity_id", activityID))
	}

	if activity.Type != model.ActivityTypeRun {
		logger.Debug("ignoring non-run activity", "activity_id", activityID, "type", activity.Type)
		return nil
	}

	text := uc.composeStravaPost(conn, activity)
	if _, err := uc.slack.PostMessage(ctx, uc.posting.ChannelID, text); err != nil {
		return goerr.Wrap(err, "failed to post activity", goerr.V("activity_id", activityID))
	}

	if err := uc.repo.PostedActivity().Mark(ctx, &model.PostedActivity{
		ActivityID: activityID,
		AthleteID:  athleteID,
		PostedAt:   time.Now().UTC(),
	}); err != nil {
		return goerr.Wrap(err, "failed to mark activity posted", goerr.V("activity_id", activityID))
	}

	logger.Info("posted activity", "activity_id", activityID, "athlete_id", athleteID)
	return nil
}

// freshConnection refreshes expired credentials and persists the rotated
// tokens before returning the connection to use. The refreshed row is
// re-read so coalesced fields stay consistent with the store.
func (uc *UseCases) freshConnection(ctx context.Context, conn *model.StravaConnection) (*model.StravaConnection, error) {
	if !strava.NeedsRefresh(conn, time.Now()) {
		return conn, nil
	}

	token, err := uc.strava.RefreshToken(ctx, conn.RefreshToken)
	if err != nil {
		return nil, goerr.Wrap(err, "failed to refresh strava token", goerr.V("athlete_id", conn.AthleteID))
	}

	if err := uc.repo.Strava().Upsert(ctx, &model.StravaConnection{
		AthleteID:    conn.AthleteID,
		RefreshToken: token.RefreshToken,
		AccessToken:  token.AccessToken,
		ExpiresAt:    token.ExpiresAt,
		FirstName:    conn.FirstName,
		LastName:     conn.LastName,
	}); err != nil {
		return nil, goerr.Wrap(err, "failed to persist refreshed token", goerr.V("athlete_id", conn.AthleteID))
	}

	refreshed, err := uc.repo.Strava().Get(ctx, conn.AthleteID)
	if err != nil {
		return nil, goerr.Wrap(err, "failed to reload connection", goerr.V("athlete_id", conn.AthleteID))
	}

	return refreshed, nil
}
