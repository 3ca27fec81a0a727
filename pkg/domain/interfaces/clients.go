package interfaces

import (
	"context"

	"github.com/runclub/paceline/pkg/domain/model"
	"github.com/runclub/paceline/pkg/domain/types"
)

// StravaClient wraps the Strava OAuth and activity endpoints.
type StravaClient interface {
	// ExchangeCode trades an OAuth authorization code for tokens.
	ExchangeCode(ctx context.Context, code string) (*model.StravaToken, error)

	// RefreshToken exchanges a refresh token for fresh credentials. Strava
	// may rotate the refresh token; callers must persist the returned one.
	RefreshToken(ctx context.Context, refreshToken string) (*model.StravaToken, error)

	// GetActivity fetches activity detail with a fresh access token.
	GetActivity(ctx context.Context, accessToken string, id types.ActivityID) (*model.Activity, error)

	// AuthorizeURL builds the vendor authorize redirect carrying state.
	AuthorizeURL(state string) string

	// ActivityURL builds the public activity page URL.
	ActivityURL(id types.ActivityID) string
}

// SlackGateway posts messages on behalf of the bot.
type SlackGateway interface {
	// PostMessage posts to a channel and returns the message timestamp.
	PostMessage(ctx context.Context, channel string, text string) (string, error)

	// PostDM sends a direct message to a user.
	PostDM(ctx context.Context, user types.SlackUserID, text string) error
}

// PelotonClient wraps the unofficial Peloton API.
type PelotonClient interface {
	// Login authenticates with username/email and password. The password is
	// forwarded to the vendor and never persisted.
	Login(ctx context.Context, username, password string) (*model.PelotonSession, error)

	// ListWorkouts fetches recent workout summaries, newest first. An HTTP
	// 401 surfaces as peloton.ErrSessionExpired.
	ListWorkouts(ctx context.Context, sessionID string, userID types.PelotonUserID, limit int) ([]*model.WorkoutSummary, error)

	// GetWorkout fetches full workout detail.
	GetWorkout(ctx context.Context, sessionID string, id types.WorkoutID) (*model.Workout, error)

	// WorkoutURL builds the public workout page URL for a member.
	WorkoutURL(username string, id types.WorkoutID) string
}
