package model

import (
	"time"

	"github.com/runclub/paceline/pkg/domain/types"
)

// PostedActivity marks a Strava activity as already posted to Slack. Rows are
// write-once; existence is the sole idempotency signal.
type PostedActivity struct {
	ActivityID types.ActivityID
	AthleteID  types.AthleteID
	PostedAt   time.Time
}

// PostedWorkout marks a Peloton workout as already posted to Slack.
type PostedWorkout struct {
	WorkoutID   types.WorkoutID
	SlackUserID types.SlackUserID
	PostedAt    time.Time
}
