package repository_test

import (
	"context"
	"testing"
	"time"

	"github.com/m-mizutani/gt"
	"github.com/runclub/paceline/pkg/domain/interfaces"
	"github.com/runclub/paceline/pkg/domain/model"
	"github.com/runclub/paceline/pkg/domain/types"
)

func runPostedRepositoryTest(t *testing.T, newRepo func(t *testing.T) interfaces.Repository) {
	t.Helper()

	t.Run("activity Mark then WasPosted", func(t *testing.T) {
		repo := newRepo(t)
		ctx := context.Background()

		id := types.ActivityID(time.Now().UnixNano())

		posted, err := repo.PostedActivity().WasPosted(ctx, id)
		gt.NoError(t, err).Required()
		gt.Bool(t, posted).False()

		gt.NoError(t, repo.PostedActivity().Mark(ctx, &model.PostedActivity{
			ActivityID: id,
			AthleteID:  12345,
		})).Required()

		posted, err = repo.PostedActivity().WasPosted(ctx, id)
		gt.NoError(t, err).Required()
		gt.Bool(t, posted).True()
	})

	t.Run("activity Mark is idempotent", func(t *testing.T) {
		repo := newRepo(t)
		ctx := context.Background()

		id := types.ActivityID(time.Now().UnixNano())
		rec := &model.PostedActivity{ActivityID: id, AthleteID: 12345}

		gt.NoError(t, repo.PostedActivity().Mark(ctx, rec)).Required()
		gt.NoError(t, repo.PostedActivity().Mark(ctx, rec)).Required()

		posted, err := repo.PostedActivity().WasPosted(ctx, id)
		gt.NoError(t, err).Required()
		gt.Bool(t, posted).True()
	})

	t.Run("workout Mark then WasPosted", func(t *testing.T) {
		repo := newRepo(t)
		ctx := context.Background()

		id := types.WorkoutID("workout-" + uniqueSuffix())

		posted, err := repo.PostedWorkout().WasPosted(ctx, id)
		gt.NoError(t, err).Required()
		gt.Bool(t, posted).False()

		gt.NoError(t, repo.PostedWorkout().Mark(ctx, &model.PostedWorkout{
			WorkoutID:   id,
			SlackUserID: "U0AAAAAAAA",
		})).Required()

		posted, err = repo.PostedWorkout().WasPosted(ctx, id)
		gt.NoError(t, err).Required()
		gt.Bool(t, posted).True()
	})

	t.Run("workout Mark is idempotent", func(t *testing.T) {
		repo := newRepo(t)
		ctx := context.Background()

		id := types.WorkoutID("workout-" + uniqueSuffix())
		rec := &model.PostedWorkout{WorkoutID: id, SlackUserID: "U0AAAAAAAA"}

		gt.NoError(t, repo.PostedWorkout().Mark(ctx, rec)).Required()
		gt.NoError(t, repo.PostedWorkout().Mark(ctx, rec)).Required()

		posted, err := repo.PostedWorkout().WasPosted(ctx, id)
		gt.NoError(t, err).Required()
		gt.Bool(t, posted).True()
	})
}

func TestPostedRepository_Memory(t *testing.T) {
	runPostedRepositoryTest(t, newMemoryRepository)
}

func TestPostedRepository_Firestore(t *testing.T) {
	runPostedRepositoryTest(t, newFirestoreRepository)
}

func TestPostedRepository_Postgres(t *testing.T) {
	runPostedRepositoryTest(t, newPostgresRepository)
}
