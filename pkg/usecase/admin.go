package usecase

import (
	"context"
	"errors"

	"github.com/m-mizutani/goerr/v2"
	"github.com/runclub/paceline/pkg/domain/model"
	"github.com/runclub/paceline/pkg/domain/types"
	"github.com/runclub/paceline/pkg/utils/logging"
)

// ListStravaConnections returns credential-free summaries for the admin
// surface.
func (uc *UseCases) ListStravaConnections(ctx context.Context) ([]*model.StravaConnectionSummary, error) {
	return uc.repo.Strava().List(ctx)
}

func (uc *UseCases) ListPelotonConnections(ctx context.Context) ([]*model.PelotonConnectionSummary, error) {
	return uc.repo.Peloton().List(ctx)
}

func (uc *UseCases) DeletePelotonConnection(ctx context.Context, id types.PelotonUserID) error {
	if err := uc.repo.Peloton().Delete(ctx, id); err != nil {
		return err
	}

	logging.From(ctx).Info("peloton connection deleted", "peloton_user_id", id)
	return nil
}

// RelinkSlack attaches a Slack user to an existing Strava connection. The
// upsert path coalesces, so the write carries the full stored connection with
// the replacement ID.
func (uc *UseCases) RelinkSlack(ctx context.Context, athleteID types.AthleteID, slackUserID types.SlackUserID) error {
	if err := slackUserID.Validate(); err != nil {
		return goerr.Wrap(ErrInvalidSlackUserID, err.Error())
	}

	conn, err := uc.repo.Strava().Get(ctx, athleteID)
	if err != nil {
		if errors.Is(err, model.ErrNotFound) {
			return err
		}
		return goerr.Wrap(err, "failed to get strava connection", goerr.V("athlete_id", athleteID))
	}

	conn.SlackUserID = slackUserID
	if err := uc.repo.Strava().Upsert(ctx, conn); err != nil {
		return goerr.Wrap(err, "failed to relink slack user", goerr.V("athlete_id", athleteID))
	}

	logging.From(ctx).Info("slack user relinked",
		"athlete_id", athleteID, "slack_user_id", slackUserID)
	return nil
}
