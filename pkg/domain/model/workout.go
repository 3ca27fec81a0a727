package model

import "github.com/runclub/paceline/pkg/domain/types"

// PelotonSession is the credential returned by the vendor login call.
type PelotonSession struct {
	SessionID string              `json:"session_id" masq:"secret"`
	UserID    types.PelotonUserID `json:"user_id"`
}

// WorkoutSummary is one entry of the recent-workouts listing. Only the ID is
// needed before the dedupe check; the detail fetch happens afterwards.
type WorkoutSummary struct {
	ID types.WorkoutID `json:"id"`
}

// WorkoutMetric is one entry of the detail payload's summaries array.
type WorkoutMetric struct {
	Slug  string  `json:"slug"`
	Value float64 `json:"value"`
}

// Workout is the detailed Peloton workout payload. The vendor stores the
// distance metric in different places depending on workout type.
type Workout struct {
	ID                types.WorkoutID `json:"id"`
	FitnessDiscipline string          `json:"fitness_discipline"`
	Title             string          `json:"title"`
	Ride              struct {
		Title string `json:"title"`
	} `json:"ride"`
	OverallSummary struct {
		Distance float64 `json:"distance"`
	} `json:"overall_summary"`
	Summaries []WorkoutMetric `json:"summaries"`
}

// Distance extracts the distance in miles, checking overall_summary first and
// then the summaries array. The second return is false when the workout has
// no usable distance and should be skipped.
func (w *Workout) Distance() (float64, bool) {
	if w.OverallSummary.Distance > 0 {
		return w.OverallSummary.Distance, true
	}

	for _, m := range w.Summaries {
		if m.Slug == "distance" && m.Value > 0 {
			return m.Value, true
		}
	}

	return 0, false
}

// DisplayTitle returns the workout title for posting, preferring the ride
// title over the workout's own.
func (w *Workout) DisplayTitle() string {
	if w.Ride.Title != "" {
		return w.Ride.Title
	}
	if w.Title != "" {
		return w.Title
	}
	return "Peloton Workout"
}
