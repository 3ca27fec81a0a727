package firestore

import (
	"context"
	"time"

	"cloud.google.com/go/firestore"
	"github.com/m-mizutani/goerr/v2"
	"github.com/runclub/paceline/pkg/domain/interfaces"
	"github.com/runclub/paceline/pkg/domain/model"
	"github.com/runclub/paceline/pkg/domain/types"
	"google.golang.org/grpc/codes"
	"google.golang.org/grpc/status"
)

const (
	postedActivitiesCollection = "posted_activities"
	postedWorkoutsCollection   = "posted_workouts"
)

type postedActivityRepository struct {
	client           *firestore.Client
	collectionPrefix string
}

var _ interfaces.PostedActivityRepository = &postedActivityRepository{}

func newPostedActivityRepository(client *firestore.Client) *postedActivityRepository {
	return &postedActivityRepository{
		client: client,
	}
}

// postedActivityDoc is the Firestore persistence model
type postedActivityDoc struct {
	ActivityID int64     `firestore:"activity_id"`
	AthleteID  int64     `firestore:"athlete_id"`
	PostedAt   time.Time `firestore:"posted_at"`
}

func (r *postedActivityRepository) collection() *firestore.CollectionRef {
	if r.collectionPrefix != "" {
		return r.client.Collection(r.collectionPrefix + "_" + postedActivitiesCollection)
	}
	return r.client.Collection(postedActivitiesCollection)
}

// Mark uses Create so an existing record is never overwritten; the
// AlreadyExists error is what makes Mark idempotent.
func (r *postedActivityRepository) Mark(ctx context.Context, rec *model.PostedActivity) error {
	doc := &postedActivityDoc{
		ActivityID: rec.ActivityID.Int64(),
		AthleteID:  rec.AthleteID.Int64(),
		PostedAt:   rec.PostedAt,
	}
	if doc.PostedAt.IsZero() {
		doc.PostedAt = time.Now().UTC()
	}

	_, err := r.collection().Doc(rec.ActivityID.String()).Create(ctx, doc)
	if err != nil {
		if status.Code(err) == codes.AlreadyExists {
			return nil
		}
		return goerr.Wrap(err, "failed to mark activity posted", goerr.V("activity_id", rec.ActivityID))
	}

	return nil
}

func (r *postedActivityRepository) WasPosted(ctx context.Context, id types.ActivityID) (bool, error) {
	_, err := r.collection().Doc(id.String()).Get(ctx)
	if err != nil {
		if status.Code(err) == codes.NotFound {
			return false, nil
		}
		return false, goerr.Wrap(err, "failed to get posted activity", goerr.V("activity_id", id))
	}

	return true, nil
}

type postedWorkoutRepository struct {
	client           *firestore.Client
	collectionPrefix string
}

var _ interfaces.PostedWorkoutRepository = &postedWorkoutRepository{}

func newPostedWorkoutRepository(client *firestore.Client) *postedWorkoutRepository {
	return &postedWorkoutRepository{
		client: client,
	}
}

// postedWorkoutDoc is the Firestore persistence model
type postedWorkoutDoc struct {
	WorkoutID   string    `firestore:"workout_id"`
	SlackUserID string    `firestore:"slack_user_id"`
	PostedAt    time.Time `firestore:"posted_at"`
}

func (r *postedWorkoutRepository) collection() *firestore.CollectionRef {
	if r.collectionPrefix != "" {
		return r.client.Collection(r.collectionPrefix + "_" + postedWorkoutsCollection)
	}
	return r.client.Collection(postedWorkoutsCollection)
}

func (r *postedWorkoutRepository) Mark(ctx context.Context, rec *model.PostedWorkout) error {
	doc := &postedWorkoutDoc{
		WorkoutID:   string(rec.WorkoutID),
		SlackUserID: string(rec.SlackUserID),
		PostedAt:    rec.PostedAt,
	}
	if doc.PostedAt.IsZero() {
		doc.PostedAt = time.Now().UTC()
	}

	_, err := r.collection().Doc(string(rec.WorkoutID)).Create(ctx, doc)
	if err != nil {
		if status.Code(err) == codes.AlreadyExists {
			return nil
		}
		return goerr.Wrap(err, "failed to mark workout posted", goerr.V("workout_id", rec.WorkoutID))
	}

	return nil
}

func (r *postedWorkoutRepository) WasPosted(ctx context.Context, id types.WorkoutID) (bool, error) {
	_, err := r.collection().Doc(string(id)).Get(ctx)
	if err != nil {
		if status.Code(err) == codes.NotFound {
			return false, nil
		}
		return false, goerr.Wrap(err, "failed to get posted workout", goerr.V("workout_id", id))
	}

	return true, nil
}
