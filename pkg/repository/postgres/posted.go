package postgres

import (
	"context"
	"time"

	"github.com/jmoiron/sqlx"
	"github.com/m-mizutani/goerr/v2"
	"github.com/runclub/paceline/pkg/domain/interfaces"
	"github.com/runclub/paceline/pkg/domain/model"
	"github.com/runclub/paceline/pkg/domain/types"
)

type postedActivityRepository struct {
	db *sqlx.DB
}

var _ interfaces.PostedActivityRepository = &postedActivityRepository{}

// Mark is idempotent through ON CONFLICT DO NOTHING: a second insert of the
// same activity keeps the original record.
func (r *postedActivityRepository) Mark(ctx context.Context, rec *model.PostedActivity) error {
	postedAt := rec.PostedAt
	if postedAt.IsZero() {
		postedAt = time.Now().UTC()
	}

	_, err := r.db.ExecContext(ctx,
		`INSERT INTO posted_activities (activity_id, athlete_id, posted_at)
		 VALUES ($1, $2, $3)
		 ON CONFLICT (activity_id) DO NOTHING`,
		rec.ActivityID.Int64(), rec.AthleteID.Int64(), postedAt)
	if err != nil {
		return goerr.Wrap(err, "failed to mark activity posted", goerr.V("activity_id", rec.ActivityID))
	}

	return nil
}

func (r *postedActivityRepository) WasPosted(ctx context.Context, id types.ActivityID) (bool, error) {
	var exists bool
	err := r.db.GetContext(ctx, &exists,
		`SELECT EXISTS (SELECT 1 FROM posted_activities WHERE activity_id = $1)`, id.Int64())
	if err != nil {
		return false, goerr.Wrap(err, "failed to check posted activity", goerr.V("activity_id", id))
	}

	return exists, nil
}

type postedWorkoutRepository struct {
	db *sqlx.DB
}

var _ interfaces.PostedWorkoutRepository = &postedWorkoutRepository{}

func (r *postedWorkoutRepository) Mark(ctx context.Context, rec *model.PostedWorkout) error {
	postedAt := rec.PostedAt
	if postedAt.IsZero() {
		postedAt = time.Now().UTC()
	}

	_, err := r.db.ExecContext(ctx,
		`INSERT INTO posted_workouts (workout_id, slack_user_id, posted_at)
		 VALUES ($1, $2, $3)
		 ON CONFLICT (workout_id) DO NOTHING`,
		string(rec.WorkoutID), string(rec.SlackUserID), postedAt)
	if err != nil {
		return goerr.Wrap(err, "failed to mark workout posted", goerr.V("workout_id", rec.WorkoutID))
	}

	return nil
}

func (r *postedWorkoutRepository) WasPosted(ctx context.Context, id types.WorkoutID) (bool, error) {
	var exists bool
	err := r.db.GetContext(ctx, &exists,
		`SELECT EXISTS (SELECT 1 FROM posted_workouts WHERE workout_id = $1)`, string(id))
	if err != nil {
		return false, goerr.Wrap(err, "failed to check posted workout", goerr.V("workout_id", id))
	}

	return exists, nil
}
