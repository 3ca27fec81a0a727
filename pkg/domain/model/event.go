package model

import "github.com/runclub/paceline/pkg/domain/types"

// Strava webhook event envelope fields.
const (
	ObjectTypeActivity = "activity"
	AspectTypeCreate   = "create"
)

// ActivityTypeRun is the only Strava activity type that gets posted.
const ActivityTypeRun = "Run"

// WebhookEvent is Strava's push-subscription event envelope.
type WebhookEvent struct {
	ObjectType string           `json:"object_type"`
	AspectType string           `json:"aspect_type"`
	ObjectID   types.ActivityID `json:"object_id"`
	OwnerID    types.AthleteID  `json:"owner_id"`
}

// IsNewActivity reports whether the event denotes a newly created activity.
// All other events are ignored by the webhook pipeline.
func (e *WebhookEvent) IsNewActivity() bool {
	return e.ObjectType == ObjectTypeActivity && e.AspectType == AspectTypeCreate
}

// Activity is the detail payload fetched from Strava after an event arrives.
type Activity struct {
	ID       types.ActivityID `json:"id"`
	Type     string           `json:"type"`
	Name     string           `json:"name"`
	Distance float64          `json:"distance"` // meters
}

// StravaToken is the result of a refresh-token exchange. Strava may rotate
// the refresh token, so the returned one must always be persisted.
type StravaToken struct {
	AccessToken  string `json:"access_token" masq:"secret"`
	RefreshToken string `json:"refresh_token" masq:"secret"`
	ExpiresAt    int64  `json:"expires_at"`
	Athlete      struct {
		ID        types.AthleteID `json:"id"`
		FirstName string          `json:"firstname"`
		LastName  string          `json:"lastname"`
	} `json:"athlete"`
}
