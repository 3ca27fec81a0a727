package usecase

import (
	"fmt"
	"strings"

	"github.com/runclub/paceline/pkg/domain/model"
)

// composePost builds the channel message. The pedometer bot is mentioned
// first so its mileage counter picks up the distance, then the athlete line,
// then the public workout link.
func (uc *UseCases) composePost(miles float64, emoji, who, title, url string) string {
	var b strings.Builder

	if uc.posting.PedometerUserID != "" {
		fmt.Fprintf(&b, "<@%s> ", uc.posting.PedometerUserID)
	}
	fmt.Fprintf(&b, "+%.2f mile %s\n", miles, emoji)
	fmt.Fprintf(&b, "%s: %s\n", who, title)
	b.WriteString(url)

	return b.String()
}

func (uc *UseCases) composeStravaPost(conn *model.StravaConnection, activity *model.Activity) string {
	who := "*" + conn.DisplayName() + "*"
	if conn.Linked() {
		who = conn.SlackUserID.Mention()
	}

	miles := model.MilesFromMeters(activity.Distance)
	return uc.composePost(miles, uc.posting.Emoji("running"), who, activity.Name, uc.strava.ActivityURL(activity.ID))
}

// composePelotonPost takes the distance in miles; Peloton reports miles
// directly, unlike Strava's meters.
func (uc *UseCases) composePelotonPost(conn *model.PelotonConnection, workout *model.Workout, miles float64) string {
	who := conn.SlackUserID.Mention()
	url := uc.peloton.WorkoutURL(conn.Username, workout.ID)

	return uc.composePost(miles, uc.posting.Emoji(workout.FitnessDiscipline), who, workout.DisplayTitle(), url)
}
