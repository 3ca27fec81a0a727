package repository_test

import (
	"context"
	"errors"
	"fmt"
	"testing"
	"time"

	"github.com/m-mizutani/gt"
	"github.com/runclub/paceline/pkg/domain/interfaces"
	"github.com/runclub/paceline/pkg/domain/model"
	"github.com/runclub/paceline/pkg/domain/types"
)

func newAthleteID() types.AthleteID {
	return types.AthleteID(time.Now().UnixNano())
}

func runStravaRepositoryTest(t *testing.T, newRepo func(t *testing.T) interfaces.Repository) {
	t.Helper()

	t.Run("Upsert then Get round-trips the connection", func(t *testing.T) {
		repo := newRepo(t)
		ctx := context.Background()

		id := newAthleteID()
		conn := &model.StravaConnection{
			AthleteID:    id,
			RefreshToken: "refresh-1",
			AccessToken:  "access-1",
			ExpiresAt:    time.Now().Add(time.Hour).Unix(),
			FirstName:    "Ada",
			LastName:     "Lovelace",
			SlackUserID:  "U0AAAAAAAA",
		}

		gt.NoError(t, repo.Strava().Upsert(ctx, conn)).Required()

		got, err := repo.Strava().Get(ctx, id)
		gt.NoError(t, err).Required()
		gt.Value(t, got.AthleteID).Equal(id)
		gt.Value(t, got.RefreshToken).Equal("refresh-1")
		gt.Value(t, got.AccessToken).Equal("access-1")
		gt.Value(t, got.FirstName).Equal("Ada")
		gt.Value(t, got.LastName).Equal("Lovelace")
		gt.Value(t, got.SlackUserID).Equal(types.SlackUserID("U0AAAAAAAA"))
		gt.Bool(t, got.UpdatedAt.IsZero()).False()
	})

	t.Run("Get returns ErrNotFound for unknown athlete", func(t *testing.T) {
		repo := newRepo(t)
		ctx := context.Background()

		_, err := repo.Strava().Get(ctx, newAthleteID())
		gt.Value(t, err).NotNil()
		gt.Bool(t, errors.Is(err, model.ErrNotFound)).True()
	})

	t.Run("Upsert keeps slack link and token when incoming values are empty", func(t *testing.T) {
		repo := newRepo(t)
		ctx := context.Background()

		id := newAthleteID()
		token := types.NewVerificationToken()
		gt.NoError(t, repo.Strava().Upsert(ctx, &model.StravaConnection{
			AthleteID:         id,
			RefreshToken:      "refresh-1",
			AccessToken:       "access-1",
			ExpiresAt:         100,
			SlackUserID:       "U0BBBBBBBB",
			VerificationToken: token,
		})).Required()

		// token refresh write carries no slack identity
		gt.NoError(t, repo.Strava().Upsert(ctx, &model.StravaConnection{
			AthleteID:    id,
			RefreshToken: "refresh-2",
			AccessToken:  "access-2",
			ExpiresAt:    200,
		})).Required()

		got, err := repo.Strava().Get(ctx, id)
		gt.NoError(t, err).Required()
		gt.Value(t, got.RefreshToken).Equal("refresh-2")
		gt.Value(t, got.AccessToken).Equal("access-2")
		gt.Value(t, got.ExpiresAt).Equal(int64(200))
		gt.Value(t, got.SlackUserID).Equal(types.SlackUserID("U0BBBBBBBB"))
		gt.Value(t, got.VerificationToken).Equal(token)
	})

	t.Run("Upsert replaces slack link when incoming value is set", func(t *testing.T) {
		repo := newRepo(t)
		ctx := context.Background()

		id := newAthleteID()
		gt.NoError(t, repo.Strava().Upsert(ctx, &model.StravaConnection{
			AthleteID:    id,
			RefreshToken: "refresh-1",
			AccessToken:  "access-1",
			SlackUserID:  "U0CCCCCCCC",
		})).Required()

		gt.NoError(t, repo.Strava().Upsert(ctx, &model.StravaConnection{
			AthleteID:    id,
			RefreshToken: "refresh-1",
			AccessToken:  "access-1",
			SlackUserID:  "U0DDDDDDDD",
		})).Required()

		got, err := repo.Strava().Get(ctx, id)
		gt.NoError(t, err).Required()
		gt.Value(t, got.SlackUserID).Equal(types.SlackUserID("U0DDDDDDDD"))
	})

	t.Run("GetByVerificationToken finds the matching connection", func(t *testing.T) {
		repo := newRepo(t)
		ctx := context.Background()

		id := newAthleteID()
		token := types.NewVerificationToken()
		gt.NoError(t, repo.Strava().Upsert(ctx, &model.StravaConnection{
			AthleteID:         id,
			RefreshToken:      "refresh-1",
			AccessToken:       "access-1",
			VerificationToken: token,
		})).Required()

		got, err := repo.Strava().GetByVerificationToken(ctx, token)
		gt.NoError(t, err).Required()
		gt.Value(t, got.AthleteID).Equal(id)

		_, err = repo.Strava().GetByVerificationToken(ctx, types.NewVerificationToken())
		gt.Bool(t, errors.Is(err, model.ErrNotFound)).True()
	})

	t.Run("MarkVerified consumes the token exactly once", func(t *testing.T) {
		repo := newRepo(t)
		ctx := context.Background()

		id := newAthleteID()
		token := types.NewVerificationToken()
		gt.NoError(t, repo.Strava().Upsert(ctx, &model.StravaConnection{
			AthleteID:         id,
			RefreshToken:      "refresh-1",
			AccessToken:       "access-1",
			VerificationToken: token,
		})).Required()

		ok, err := repo.Strava().MarkVerified(ctx, token)
		gt.NoError(t, err).Required()
		gt.Bool(t, ok).True()

		got, err := repo.Strava().Get(ctx, id)
		gt.NoError(t, err).Required()
		gt.Bool(t, got.Verified).True()
		gt.Value(t, got.VerificationToken).Equal(types.VerificationToken(""))

		ok, err = repo.Strava().MarkVerified(ctx, token)
		gt.NoError(t, err).Required()
		gt.Bool(t, ok).False()
	})

	t.Run("Empty token never matches a consumed row", func(t *testing.T) {
		repo := newRepo(t)
		ctx := context.Background()

		id := newAthleteID()
		token := types.NewVerificationToken()
		gt.NoError(t, repo.Strava().Upsert(ctx, &model.StravaConnection{
			AthleteID:         id,
			RefreshToken:      "refresh-1",
			AccessToken:       "access-1",
			VerificationToken: token,
		})).Required()

		ok, err := repo.Strava().MarkVerified(ctx, token)
		gt.NoError(t, err).Required()
		gt.Bool(t, ok).True()

		_, err = repo.Strava().GetByVerificationToken(ctx, "")
		gt.Bool(t, errors.Is(err, model.ErrNotFound)).True()

		ok, err = repo.Strava().MarkVerified(ctx, "")
		gt.NoError(t, err).Required()
		gt.Bool(t, ok).False()
	})

	t.Run("Verified survives a later token refresh write", func(t *testing.T) {
		repo := newRepo(t)
		ctx := context.Background()

		id := newAthleteID()
		token := types.NewVerificationToken()
		gt.NoError(t, repo.Strava().Upsert(ctx, &model.StravaConnection{
			AthleteID:         id,
			RefreshToken:      "refresh-1",
			AccessToken:       "access-1",
			VerificationToken: token,
		})).Required()

		ok, err := repo.Strava().MarkVerified(ctx, token)
		gt.NoError(t, err).Required()
		gt.Bool(t, ok).True()

		gt.NoError(t, repo.Strava().Upsert(ctx, &model.StravaConnection{
			AthleteID:    id,
			RefreshToken: "refresh-2",
			AccessToken:  "access-2",
		})).Required()

		got, err := repo.Strava().Get(ctx, id)
		gt.NoError(t, err).Required()
		gt.Bool(t, got.Verified).True()
	})

	t.Run("List returns summaries without credentials, newest first", func(t *testing.T) {
		repo := newRepo(t)
		ctx := context.Background()

		first := newAthleteID()
		gt.NoError(t, repo.Strava().Upsert(ctx, &model.StravaConnection{
			AthleteID:    first,
			RefreshToken: "refresh-1",
			AccessToken:  "access-1",
			FirstName:    "First",
		})).Required()

		time.Sleep(10 * time.Millisecond)

		second := types.AthleteID(first.Int64() + 1)
		gt.NoError(t, repo.Strava().Upsert(ctx, &model.StravaConnection{
			AthleteID:    second,
			RefreshToken: "refresh-2",
			AccessToken:  "access-2",
			FirstName:    "Second",
		})).Required()

		summaries, err := repo.Strava().List(ctx)
		gt.NoError(t, err).Required()

		posFirst, posSecond := -1, -1
		for i, s := range summaries {
			switch s.AthleteID {
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

func TestStravaConnectionRepository_Memory(t *testing.T) {
	runStravaRepositoryTest(t, newMemoryRepository)
}

func TestStravaConnectionRepository_Firestore(t *testing.T) {
	runStravaRepositoryTest(t, newFirestoreRepository)
}

func TestStravaConnectionRepository_Postgres(t *testing.T) {
	runStravaRepositoryTest(t, newPostgresRepository)
}

func uniqueSuffix() string {
	return fmt.Sprintf("%d", time.Now().UnixNano())
}
