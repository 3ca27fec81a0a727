package model

import (
	"strings"
	"time"

	"github.com/runclub/paceline/pkg/domain/types"
)

// PelotonConnection links one Peloton user to a Slack user with the session
// credential used for polling. Passwords are forwarded to the vendor at login
// and never stored.
type PelotonConnection struct {
	PelotonUserID types.PelotonUserID
	SlackUserID   types.SlackUserID
	SessionID     string `masq:"secret"`
	Username      string
	UpdatedAt     time.Time
}

// PelotonConnectionSummary is the list projection without the session
// credential.
type PelotonConnectionSummary struct {
	PelotonUserID types.PelotonUserID `json:"peloton_user_id"`
	SlackUserID   types.SlackUserID   `json:"slack_user_id"`
	Username      string              `json:"username"`
	UpdatedAt     time.Time           `json:"updated_at"`
}

// Summary projects the connection to its non-secret fields.
func (c *PelotonConnection) Summary() *PelotonConnectionSummary {
	return &PelotonConnectionSummary{
		PelotonUserID: c.PelotonUserID,
		SlackUserID:   c.SlackUserID,
		Username:      c.Username,
		UpdatedAt:     c.UpdatedAt,
	}
}

// PelotonDisplayName normalizes a login identifier for display and workout
// URLs: when an email is entered, only the local part is kept.
func PelotonDisplayName(usernameOrEmail string) string {
	if at := strings.Index(usernameOrEmail, "@"); at >= 0 {
		return usernameOrEmail[:at]
	}
	return usernameOrEmail
}
