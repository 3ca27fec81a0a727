package types

import (
	"regexp"
	"strconv"

	"github.com/m-mizutani/goerr/v2"
)

// AthleteID is the Strava athlete identifier.
type AthleteID int64

func (id AthleteID) Int64() int64 {
	return int64(id)
}

func (id AthleteID) String() string {
	return strconv.FormatInt(int64(id), 10)
}

// ParseAthleteID parses a decimal string into an AthleteID.
func ParseAthleteID(s string) (AthleteID, error) {
	n, err := strconv.ParseInt(s, 10, 64)
	if err != nil {
		return 0, goerr.Wrap(err, "invalid athlete ID", goerr.V("value", s))
	}
	return AthleteID(n), nil
}

// ActivityID is the Strava activity identifier.
type ActivityID int64

func (id ActivityID) Int64() int64 {
	return int64(id)
}

func (id ActivityID) String() string {
	return strconv.FormatInt(int64(id), 10)
}

// slackUserIDPattern matches Slack member IDs like U04HBADQP0B.
var slackUserIDPattern = regexp.MustCompile(`^U[A-Z0-9]{8,}$`)

// SlackUserID is a Slack member ID.
type SlackUserID string

func (id SlackUserID) String() string {
	return string(id)
}

// IsValid reports whether the ID matches the Slack member ID pattern.
func (id SlackUserID) IsValid() bool {
	return slackUserIDPattern.MatchString(string(id))
}

// Validate checks the ID against the Slack member ID pattern.
func (id SlackUserID) Validate() error {
	if !id.IsValid() {
		return goerr.New("invalid Slack member ID", goerr.V("id", string(id)))
	}
	return nil
}

// Mention renders the ID as a Slack mention.
func (id SlackUserID) Mention() string {
	return "<@" + string(id) + ">"
}

// PelotonUserID is the Peloton user identifier.
type PelotonUserID string

func (id PelotonUserID) String() string {
	return string(id)
}

// WorkoutID is the Peloton workout identifier.
type WorkoutID string

func (id WorkoutID) String() string {
	return string(id)
}
