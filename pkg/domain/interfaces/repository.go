package interfaces

import (
	"context"

	"github.com/runclub/paceline/pkg/domain/model"
	"github.com/runclub/paceline/pkg/domain/types"
)

// Repository defines the interface for data persistence.
type Repository interface {
	Strava() StravaConnectionRepository
	Peloton() PelotonConnectionRepository
	SlackVerification() SlackVerificationRepository
	PostedActivity() PostedActivityRepository
	PostedWorkout() PostedWorkoutRepository

	Close() error
}

// StravaConnectionRepository persists Strava athlete connections.
//
// Upsert inserts or updates by athlete ID. SlackUserID and VerificationToken
// coalesce on conflict: an empty incoming value never overwrites an existing
// non-empty one, so token-refresh writes cannot unlink a Slack account. All
// other fields are overwritten unconditionally.
type StravaConnectionRepository interface {
	Upsert(ctx context.Context, conn *model.StravaConnection) error
	Get(ctx context.Context, id types.AthleteID) (*model.StravaConnection, error)
	List(ctx context.Context) ([]*model.StravaConnectionSummary, error)
	GetByVerificationToken(ctx context.Context, token types.VerificationToken) (*model.StravaConnection, error)

	// MarkVerified atomically sets verified=true and clears the token for the
	// row matching token. It returns false when no row matched, which is how
	// a second concurrent consumption of the same token resolves.
	MarkVerified(ctx context.Context, token types.VerificationToken) (bool, error)
}

// PelotonConnectionRepository persists Peloton connections. Upsert overwrites
// all fields; List returns projections without the session credential,
// newest-updated first.
type PelotonConnectionRepository interface {
	Upsert(ctx context.Context, conn *model.PelotonConnection) error
	Get(ctx context.Context, id types.PelotonUserID) (*model.PelotonConnection, error)
	GetBySlackID(ctx context.Context, id types.SlackUserID) (*model.PelotonConnection, error)
	List(ctx context.Context) ([]*model.PelotonConnectionSummary, error)
	Delete(ctx context.Context, id types.PelotonUserID) error
}

// SlackVerificationRepository is the standalone verification ledger.
type SlackVerificationRepository interface {
	Upsert(ctx context.Context, user *model.VerifiedSlackUser) error
	GetByToken(ctx context.Context, token types.VerificationToken) (*model.VerifiedSlackUser, error)

	// Consume atomically sets verified=true and clears the token. A second
	// call with the same token returns false without error.
	Consume(ctx context.Context, token types.VerificationToken) (bool, error)

	// IsVerified reports whether the Slack user completed verification.
	// Missing rows are reported as unverified, not as an error.
	IsVerified(ctx context.Context, id types.SlackUserID) (bool, error)

	Get(ctx context.Context, id types.SlackUserID) (*model.VerifiedSlackUser, error)
}

// PostedActivityRepository is the append-only dedupe set for Strava
// activities. Mark is idempotent: inserting an existing ID is a no-op.
type PostedActivityRepository interface {
	Mark(ctx context.Context, rec *model.PostedActivity) error
	WasPosted(ctx context.Context, id types.ActivityID) (bool, error)
}

// PostedWorkoutRepository is the append-only dedupe set for Peloton workouts.
type PostedWorkoutRepository interface {
	Mark(ctx context.Context, rec *model.PostedWorkout) error
	WasPosted(ctx context.Context, id types.WorkoutID) (bool, error)
}
