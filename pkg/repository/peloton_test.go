package repository_test

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/m-mizutani/gt"
	"github.com/runclub/paceline/pkg/domain/interfaces"
	"github.com/runclub/paceline/pkg/domain/model"
	"github.com/runclub/paceline/pkg/domain/types"
)

func runPelotonRepositoryTest(t *testing.T, newRepo func(t *testing.T) interfaces.Repository) {
	t.Helper()

	t.Run("Upsert then Get round-trips the connection", func(t *testing.T) {
		repo := newRepo(t)
		ctx := context.Background()

		id := types.PelotonUserID("peloton-" + uniqueSuffix())
		conn := &model.PelotonConnection{
			PelotonUserID: id,
			SlackUserID:   "U0AAAAAAAA",
			SessionID:     "session-1",
			Username:      "runner42",
		}
		gt.NoError(t, repo.Peloton().Upsert(ctx, conn)).Required()

		got, err := repo.Peloton().Get(ctx, id)
		gt.NoError(t, err).Required()
		gt.Value(t, got.PelotonUserID).Equal(id)
		gt.Value(t, got.SlackUserID).Equal(types.SlackUserID("U0AAAAAAAA"))
		gt.Value(t, got.SessionID).Equal("session-1")
		gt.Value(t, got.Username).Equal("runner42")
		gt.Bool(t, got.UpdatedAt.IsZero()).False()
	})

	t.Run("Upsert overwrites the stored session", func(t *testing.T) {
		repo := newRepo(t)
		ctx := context.Background()

		id := types.PelotonUserID("peloton-" + uniqueSuffix())
		gt.NoError(t, repo.Peloton().Upsert(ctx, &model.PelotonConnection{
			PelotonUserID: id,
			SlackUserID:   "U0AAAAAAAA",
			SessionID:     "session-1",
			Username:      "runner42",
		})).Required()

		gt.NoError(t, repo.Peloton().Upsert(ctx, &model.PelotonConnection{
			PelotonUserID: id,
			SlackUserID:   "U0AAAAAAAA",
			SessionID:     "session-2",
			Username:      "runner42",
		})).Required()

		got, err := repo.Peloton().Get(ctx, id)
		gt.NoError(t, err).Required()
		gt.Value(t, got.SessionID).Equal("session-2")
	})

	t.Run("GetBySlackID finds the linked connection", func(t *testing.T) {
		repo := newRepo(t)
		ctx := context.Background()

		id := types.PelotonUserID("peloton-" + uniqueSuffix())
		slackID := types.SlackUserID("U0SLACK" + uniqueSuffix()[:6])
		gt.NoError(t, repo.Peloton().Upsert(ctx, &model.PelotonConnection{
			PelotonUserID: id,
			SlackUserID:   slackID,
			SessionID:     "session-1",
		})).Required()

		got, err := repo.Peloton().GetBySlackID(ctx, slackID)
		gt.NoError(t, err).Required()
		gt.Value(t, got.PelotonUserID).Equal(id)

		_, err = repo.Peloton().GetBySlackID(ctx, "U0NOSUCHUSER")
		gt.Bool(t, errors.Is(err, model.ErrNotFound)).True()
	})

	t.Run("List omits session credentials", func(t *testing.T) {
		repo := newRepo(t)
		ctx := context.Background()

		id := types.PelotonUserID("peloton-" + uniqueSuffix())
		gt.NoError(t, repo.Peloton().Upsert(ctx, &model.PelotonConnection{
			PelotonUserID: id,
			SlackUserID:   "U0AAAAAAAA",
			SessionID:     "session-secret",
			Username:      "runner42",
		})).Required()

		summaries, err := repo.Peloton().List(ctx)
		gt.NoError(t, err).Required()

		found := false
		for _, s := range summaries {
			if s.PelotonUserID == id {
				found = true
				gt.Value(t, s.Username).Equal("runner42")
			}
		}
		gt.Bool(t, found).True()
	})

	t.Run("Delete removes the connection", func(t *testing.T) {
		repo := newRepo(t)
		ctx := context.Background()

		id := types.PelotonUserID("peloton-" + uniqueSuffix())
		gt.NoError(t, repo.Peloton().Upsert(ctx, &model.PelotonConnection{
			PelotonUserID: id,
			SlackUserID:   "U0AAAAAAAA",
			SessionID:     "session-1",
		})).Required()

		gt.NoError(t, repo.Peloton().Delete(ctx, id)).Required()

		_, err := repo.Peloton().Get(ctx, id)
		gt.Bool(t, errors.Is(err, model.ErrNotFound)).True()

		err = repo.Peloton().Delete(ctx, id)
		gt.Bool(t, errors.Is(err, model.ErrNotFound)).True()
	})

	t.Run("List returns newest first", func(t *testing.T) {
		repo := newRepo(t)
		ctx := context.Background()

		first := types.PelotonUserID("peloton-a-" + uniqueSuffix())
		gt.NoError(t, repo.Peloton().Upsert(ctx, &model.PelotonConnection{
			PelotonUserID: first,
			SlackUserID:   "U0AAAAAAAA",
			SessionID:     "s",
		})).Required()

		time.Sleep(10 * time.Millisecond)

		second := types.PelotonUserID("peloton-b-" + uniqueSuffix())
		gt.NoError(t, repo.Peloton().Upsert(ctx, &model.PelotonConnection{
			PelotonUserID: second,
			SlackUserID:   "U0BBBBBBBB",
			SessionID:     "s",
		})).Required()

		summaries, err := repo.Peloton().List(ctx)
		gt.NoError(t, err).Required()

		posFirst, posSecond := -1, -1
		for i, s := range summaries {
			switch s.PelotonUserID {
			case first:
				posFirst = i
			case second:
				posSecond = i
			}
		}
		gt.Bool(t, posFirst >= 0).True()
		gt.Bool(t, posSecond >= 0).True()
		gt.Bool(t, posSecond < posFirst).True()
	})
}

func TestPelotonConnectionRepository_Memory(t *testing.T) {
	runPelotonRepositoryTest(t, newMemoryRepository)
}

func TestPelotonConnectionRepository_Firestore(t *testing.T) {
	runPelotonRepositoryTest(t, newFirestoreRepository)
}

func TestPelotonConnectionRepository_Postgres(t *testing.T) {
	runPelotonRepositoryTest(t, newPostgresRepository)
}
