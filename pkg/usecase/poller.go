package usecase

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/m-mizutani/goerr/v2"
	"github.com/runclub/paceline/pkg/domain/model"
	"github.com/runclub/paceline/pkg/domain/types"
	"github.com/runclub/paceline/pkg/service/peloton"
	"github.com/runclub/paceline/pkg/utils/logging"
)

// PollResult counts the outcome of one poll cycle.
type PollResult struct {
	Posted  int
	Skipped int
	Errors  int
}

func (r *PollResult) add(other PollResult) {
	r.Posted += other.Posted
	r.Skipped += other.Skipped
	r.Errors += other.Errors
}

// PollPeloton runs one poll cycle over every stored Peloton connection. A
// failure on one connection never blocks the others; the cycle itself only
// errors when the connection list cannot be read.
func (uc *UseCases) PollPeloton(ctx context.Context, workoutLimit int) (*PollResult, error) {
	logger := logging.From(ctx)

	summaries, err := uc.repo.Peloton().List(ctx)
	if err != nil {
		return nil, goerr.Wrap(err, "failed to list peloton connections")
	}
	if len(summaries) == 0 {
		return &PollResult{}, nil
	}

	total := &PollResult{}
	for _, summary := range summaries {
		conn, err := uc.repo.Peloton().Get(ctx, summary.PelotonUserID)
		if err != nil {
			logger.Warn("skipping connection", "peloton_user_id", summary.PelotonUserID, "error", err)
			total.Errors++
			continue
		}
		if conn.SessionID == "" {
			logger.Debug("skipping connection without session", "peloton_user_id", conn.PelotonUserID)
			continue
		}

		total.add(uc.pollConnection(ctx, conn, workoutLimit))
	}

	logger.Info("peloton poll cycle complete",
		"posted", total.Posted, "skipped", total.Skipped, "errors", total.Errors)
	return total, nil
}

// pollConnection checks one member's recent workouts. An expired session
// sends a single reconnect DM and stops; per-workout failures are logged and
// counted without aborting the rest of the list.
func (uc *UseCases) pollConnection(ctx context.Context, conn *model.PelotonConnection, workoutLimit int) PollResult {
	logger := logging.From(ctx)
	result := PollResult{}

	workouts, err := uc.peloton.ListWorkouts(ctx, conn.SessionID, conn.PelotonUserID, workoutLimit)
	if err != nil {
		if errors.Is(err, peloton.ErrSessionExpired) {
			logger.Info("peloton session expired", "slack_user_id", conn.SlackUserID)
			uc.notifySessionExpired(ctx, conn)
		} else {
			logger.Warn("failed to list workouts", "peloton_user_id", conn.PelotonUserID, "error", err)
		}
		result.Errors++
		return result
	}

	for _, summary := range workouts {
		posted, err := uc.processWorkout(ctx, conn, summary.ID)
		if err != nil {
			logger.Warn("failed to process workout", "workout_id", summary.ID, "error", err)
			result.Errors++
			continue
		}
		if posted {
			result.Posted++
		} else {
			result.Skipped++
		}
	}

	return result
}

func (uc *UseCases) processWorkout(ctx context.Context, conn *model.PelotonConnection, id types.WorkoutID) (bool, error) {
	posted, err := uc.repo.PostedWorkout().WasPosted(ctx, id)
	if err != nil {
		return false, goerr.Wrap(err, "failed to check posted workout")
	}
	if posted {
		return false, nil
	}

	workout, err := uc.peloton.GetWorkout(ctx, conn.SessionID, id)
	if err != nil {
		return false, goerr.Wrap(err, "failed to fetch workout detail")
	}

	miles, ok := workout.Distance()
	if !ok {
		return false, nil
	}

	text := uc.composePelotonPost(conn, workout, miles)
	if _, err := uc.slack.PostMessage(ctx, uc.posting.ChannelID, text); err != nil {
		return false, goerr.Wrap(err, "failed to post workout")
	}

	if err := uc.repo.PostedWorkout().Mark(ctx, &model.PostedWorkout{
		WorkoutID:   id,
		SlackUserID: conn.SlackUserID,
		PostedAt:    time.Now().UTC(),
	}); err != nil {
		return false, goerr.Wrap(err, "failed to mark workout posted")
	}

	logging.From(ctx).Info("posted workout", "workout_id", id, "slack_user_id", conn.SlackUserID)
	return true, nil
}

func (uc *UseCases) notifySessionExpired(ctx context.Context, conn *model.PelotonConnection) {
	dmText := fmt.Sprintf(
		"Your Peloton session has expired. Your workouts are no longer being posted automatically.\n\n"+
			"Please re-authenticate to resume auto-posting:\n%s/auth/peloton/start?slack_user_id=%s",
		uc.baseURL, conn.SlackUserID)
	if err := uc.slack.PostDM(ctx, conn.SlackUserID, dmText); err != nil {
		logging.From(ctx).Warn("failed to send session expiry DM",
			"slack_user_id", conn.SlackUserID, "error", err)
	}
}
