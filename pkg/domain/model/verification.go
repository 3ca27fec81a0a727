package model

import "github.com/runclub/paceline/pkg/domain/types"

// VerifiedSlackUser is the standalone verification ledger row. It exists for
// users who verify their Slack account without (or before) connecting Strava.
type VerifiedSlackUser struct {
	SlackUserID       types.SlackUserID
	VerificationToken types.VerificationToken `masq:"secret"`
	Verified          bool
}
