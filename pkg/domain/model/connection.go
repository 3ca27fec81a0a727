package model

import (
	"strings"
	"time"

	"github.com/runclub/paceline/pkg/domain/types"
)

// StravaConnection links one Strava athlete to (optionally) one Slack user,
// together with the OAuth credential needed to fetch activities on their
// behalf. At most one row exists per athlete; upserts coalesce SlackUserID
// and VerificationToken so a token-refresh write cannot clobber an existing
// link.
type StravaConnection struct {
	AthleteID         types.AthleteID
	RefreshToken      string `masq:"secret"`
	AccessToken       string `masq:"secret"`
	ExpiresAt         int64
	FirstName         string
	LastName          string
	SlackUserID       types.SlackUserID
	Verified          bool
	VerificationToken types.VerificationToken `masq:"secret"`
	UpdatedAt         time.Time
}

// DisplayName returns the athlete's full name, or "Runner" when unknown.
func (c *StravaConnection) DisplayName() string {
	name := strings.TrimSpace(c.FirstName + " " + c.LastName)
	if name == "" {
		return "Runner"
	}
	return name
}

// Linked reports whether a Slack user has been attached to this connection.
func (c *StravaConnection) Linked() bool {
	return c.SlackUserID != ""
}

// StravaConnectionSummary is the list projection of a connection. Tokens are
// excluded so the summary is safe to return from admin endpoints.
type StravaConnectionSummary struct {
	AthleteID   types.AthleteID   `json:"athlete_id"`
	FirstName   string            `json:"athlete_firstname"`
	LastName    string            `json:"athlete_lastname"`
	SlackUserID types.SlackUserID `json:"slack_user_id,omitempty"`
	Verified    bool              `json:"verified"`
	UpdatedAt   time.Time         `json:"updated_at"`
}

// Summary projects the connection to its non-secret fields.
func (c *StravaConnection) Summary() *StravaConnectionSummary {
	return &StravaConnectionSummary{
		AthleteID:   c.AthleteID,
		FirstName:   c.FirstName,
		LastName:    c.LastName,
		SlackUserID: c.SlackUserID,
		Verified:    c.Verified,
		UpdatedAt:   c.UpdatedAt,
	}
}
