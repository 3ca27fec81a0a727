package model

import "github.com/runclub/paceline/pkg/domain/types"

// MetersPerMile converts Strava's meter distances to the miles posted in
// Slack.
const MetersPerMile = 1609.344

// MilesFromMeters converts a meter distance to miles.
func MilesFromMeters(meters float64) float64 {
	return meters / MetersPerMile
}

// Discipline maps a vendor workout discipline to the emoji used in posts.
type Discipline struct {
	ID    string
	Emoji string
}

// DefaultDisciplines covers the Peloton disciplines that carry a distance.
func DefaultDisciplines() []Discipline {
	return []Discipline{
		{ID: "running", Emoji: "🏃"},
		{ID: "outdoor_running", Emoji: "🏃"},
		{ID: "walking", Emoji: "🚶"},
		{ID: "outdoor_walking", Emoji: "🚶"},
		{ID: "cycling", Emoji: "🚴"},
		{ID: "outdoor_cycling", Emoji: "🚴"},
	}
}

// PostingConfig controls how workout messages are composed.
type PostingConfig struct {
	ChannelID       string
	PedometerUserID types.SlackUserID
	Disciplines     []Discipline
}

// Emoji returns the emoji for a discipline, defaulting to the runner.
func (c *PostingConfig) Emoji(discipline string) string {
	for _, d := range c.Disciplines {
		if d.ID == discipline {
			return d.Emoji
		}
	}
	return "🏃"
}
