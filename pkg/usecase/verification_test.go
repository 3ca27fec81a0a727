package usecase_test

import (
	"context"
	"strings"
	"testing"
	"time"

	"github.com/m-mizutani/gt"
	"github.com/runclub/paceline/pkg/domain/interfaces"
	"github.com/runclub/paceline/pkg/domain/model"
	"github.com/runclub/paceline/pkg/domain/types"
	"github.com/runclub/paceline/pkg/repository/memory"
	"github.com/runclub/paceline/pkg/usecase"
)

func newVerificationFixture(t *testing.T) (interfaces.Repository, *slackGatewayMock, *usecase.UseCases) {
	t.Helper()

	repo := memory.New()
	slackMock := &slackGatewayMock{}
	stravaMock := &stravaClientMock{
		exchangeCodeFn: func(ctx context.Context, code string) (*model.StravaToken, error) {
			token := &model.StravaToken{
				AccessToken:  "new-access",
				RefreshToken: "new-refresh",
				ExpiresAt:    time.Now().Add(6 * time.Hour).Unix(),
			}
			token.Athlete.ID = 42
			token.Athlete.FirstName = "Ada"
			token.Athlete.LastName = "Lovelace"
			return token, nil
		},
	}
	pelotonMock := &pelotonClientMock{
		loginFn: func(ctx context.Context, username, password string) (*model.PelotonSession, error) {
			return &model.PelotonSession{SessionID: "sess-abc", UserID: "p-1"}, nil
		},
	}

	uc := usecase.New(repo,
		usecase.WithStravaClient(stravaMock),
		usecase.WithPelotonClient(pelotonMock),
		usecase.WithSlackGateway(slackMock),
		usecase.WithBaseURL("https://example.com"),
	)

	return repo, slackMock, uc
}

func TestStartSlackVerification(t *testing.T) {
	ctx := context.Background()

	t.Run("issues a token and DMs the link", func(t *testing.T) {
		repo, slackMock, uc := newVerificationFixture(t)

		already, err := uc.StartSlackVerification(ctx, "U0ABCDEF12")
		gt.NoError(t, err).Required()
		gt.Bool(t, already).False()

		dms := slackMock.sentDMs()
		gt.Array(t, dms).Length(1)
		gt.Value(t, dms[0].Channel).Equal("U0ABCDEF12")
		gt.String(t, dms[0].Text).Contains("https://example.com/verify/slack/")

		user, err := repo.SlackVerification().Get(ctx, "U0ABCDEF12")
		gt.NoError(t, err).Required()
		gt.Bool(t, user.Verified).False()
		gt.Value(t, user.VerificationToken).NotEqual("")
		gt.String(t, dms[0].Text).Contains(string(user.VerificationToken))
	})

	t.Run("rejects malformed slack user IDs", func(t *testing.T) {
		_, slackMock, uc := newVerificationFixture(t)

		_, err := uc.StartSlackVerification(ctx, "not-a-slack-id")
		gt.Error(t, err).Is(usecase.ErrInvalidSlackUserID)
		gt.Array(t, slackMock.sentDMs()).Length(0)
	})

	t.Run("already-verified users get no new token", func(t *testing.T) {
		repo, slackMock, uc := newVerificationFixture(t)
		gt.NoError(t, repo.SlackVerification().Upsert(ctx, &model.VerifiedSlackUser{
			SlackUserID: "U0ABCDEF12",
			Verified:    true,
		})).Required()

		already, err := uc.StartSlackVerification(ctx, "U0ABCDEF12")
		gt.NoError(t, err).Required()
		gt.Bool(t, already).True()
		gt.Array(t, slackMock.sentDMs()).Length(0)
	})
}

func TestCompleteSlackVerification(t *testing.T) {
	ctx := context.Background()

	t.Run("consumes the token once", func(t *testing.T) {
		_, slackMock, uc := newVerificationFixture(t)

		_, err := uc.StartSlackVerification(ctx, "U0ABCDEF12")
		gt.NoError(t, err).Required()

		// pull the token out of the DM like the user would
		dms := slackMock.sentDMs()
		gt.Array(t, dms).Length(1)
		idx := strings.LastIndex(dms[0].Text, "/verify/slack/")
		gt.Number(t, idx).Greater(0)
		rest := dms[0].Text[idx+len("/verify/slack/"):]
		token := types.VerificationToken(strings.Fields(rest)[0])

		id, err := uc.CompleteSlackVerification(ctx, token)
		gt.NoError(t, err).Required()
		gt.Value(t, id).Equal(types.SlackUserID("U0ABCDEF12"))

		verified, err := uc.IsSlackVerified(ctx, "U0ABCDEF12")
		gt.NoError(t, err).Required()
		gt.Bool(t, verified).True()

		_, err = uc.CompleteSlackVerification(ctx, token)
		gt.Error(t, err).Is(usecase.ErrTokenInvalid)
	})

	t.Run("unknown token fails", func(t *testing.T) {
		_, _, uc := newVerificationFixture(t)

		_, err := uc.CompleteSlackVerification(ctx, types.NewVerificationToken())
		gt.Error(t, err).Is(usecase.ErrTokenInvalid)
	})
}

func TestConnectStrava(t *testing.T) {
	ctx := context.Background()

	t.Run("stores the connection and DMs a verification link", func(t *testing.T) {
		repo, slackMock, uc := newVerificationFixture(t)

		stored, dmSent, err := uc.ConnectStrava(ctx, "oauth-code", "U0ABCDEF12")
		gt.NoError(t, err).Required()
		gt.Bool(t, dmSent).True()
		gt.Value(t, stored.AthleteID).Equal(types.AthleteID(42))
		gt.Value(t, stored.SlackUserID).Equal(types.SlackUserID("U0ABCDEF12"))
		gt.Bool(t, stored.Verified).False()
		gt.Value(t, stored.VerificationToken).NotEqual("")

		dms := slackMock.sentDMs()
		gt.Array(t, dms).Length(1)
		gt.String(t, dms[0].Text).Contains("https://example.com/verify/" + string(stored.VerificationToken))

		got, err := repo.Strava().Get(ctx, 42)
		gt.NoError(t, err).Required()
		gt.Value(t, got.RefreshToken).Equal("new-refresh")
	})

	t.Run("anonymous connect skips token and DM", func(t *testing.T) {
		repo, slackMock, uc := newVerificationFixture(t)

		stored, dmSent, err := uc.ConnectStrava(ctx, "oauth-code", "")
		gt.NoError(t, err).Required()
		gt.Bool(t, dmSent).False()
		gt.Value(t, stored.VerificationToken).Equal(types.VerificationToken(""))
		gt.Array(t, slackMock.sentDMs()).Length(0)

		_, err = repo.Strava().Get(ctx, 42)
		gt.NoError(t, err).Required()
	})

	t.Run("DM failure does not lose the connection", func(t *testing.T) {
		repo, slackMock, uc := newVerificationFixture(t)
		slackMock.dmErr = context.DeadlineExceeded

		stored, dmSent, err := uc.ConnectStrava(ctx, "oauth-code", "U0ABCDEF12")
		gt.NoError(t, err).Required()
		gt.Bool(t, dmSent).False()
		gt.Value(t, stored.AthleteID).Equal(types.AthleteID(42))

		_, err = repo.Strava().Get(ctx, 42)
		gt.NoError(t, err).Required()
	})

	t.Run("rejects malformed slack user IDs", func(t *testing.T) {
		_, _, uc := newVerificationFixture(t)

		_, _, err := uc.ConnectStrava(ctx, "oauth-code", "bogus")
		gt.Error(t, err).Is(usecase.ErrInvalidSlackUserID)
	})
}

func TestCompleteStravaVerification(t *testing.T) {
	ctx := context.Background()

	t.Run("marks the connection verified and opens the peloton gate", func(t *testing.T) {
		_, _, uc := newVerificationFixture(t)

		stored, _, err := uc.ConnectStrava(ctx, "oauth-code", "U0ABCDEF12")
		gt.NoError(t, err).Required()

		conn, err := uc.CompleteStravaVerification(ctx, stored.VerificationToken)
		gt.NoError(t, err).Required()
		gt.Bool(t, conn.Verified).True()
		gt.Value(t, conn.VerificationToken).Equal(types.VerificationToken(""))

		// strava verification also satisfies the peloton gate
		peloConn, err := uc.ConnectPeloton(ctx, "U0ABCDEF12", "ada@example.com", "hunter2")
		gt.NoError(t, err).Required()
		gt.Value(t, peloConn.Username).Equal("ada")

		_, err = uc.CompleteStravaVerification(ctx, stored.VerificationToken)
		gt.Error(t, err).Is(usecase.ErrTokenInvalid)
	})

	t.Run("does not invalidate a pending standalone token", func(t *testing.T) {
		_, slackMock, uc := newVerificationFixture(t)

		_, err := uc.StartSlackVerification(ctx, "U0ABCDEF12")
		gt.NoError(t, err).Required()

		dms := slackMock.sentDMs()
		gt.Array(t, dms).Length(1)
		idx := strings.LastIndex(dms[0].Text, "/verify/slack/")
		rest := dms[0].Text[idx+len("/verify/slack/"):]
		standaloneToken := types.VerificationToken(strings.Fields(rest)[0])

		stored, _, err := uc.ConnectStrava(ctx, "oauth-code", "U0ABCDEF12")
		gt.NoError(t, err).Required()
		_, err = uc.CompleteStravaVerification(ctx, stored.VerificationToken)
		gt.NoError(t, err).Required()

		// the earlier standalone link still works
		id, err := uc.CompleteSlackVerification(ctx, standaloneToken)
		gt.NoError(t, err).Required()
		gt.Value(t, id).Equal(types.SlackUserID("U0ABCDEF12"))
	})

	t.Run("unknown token fails", func(t *testing.T) {
		_, _, uc := newVerificationFixture(t)

		_, err := uc.CompleteStravaVerification(ctx, types.NewVerificationToken())
		gt.Error(t, err).Is(usecase.ErrTokenInvalid)
	})
}

func TestConnectPeloton(t *testing.T) {
	ctx := context.Background()

	t.Run("requires a verified slack user", func(t *testing.T) {
		_, _, uc := newVerificationFixture(t)

		_, err := uc.ConnectPeloton(ctx, "U0ABCDEF12", "ada@example.com", "hunter2")
		gt.Error(t, err).Is(usecase.ErrNotVerified)
	})

	t.Run("stores the session with the email local part as username", func(t *testing.T) {
		repo, _, uc := newVerificationFixture(t)
		gt.NoError(t, repo.SlackVerification().Upsert(ctx, &model.VerifiedSlackUser{
			SlackUserID: "U0ABCDEF12",
			Verified:    true,
		})).Required()

		conn, err := uc.ConnectPeloton(ctx, "U0ABCDEF12", "ada@example.com", "hunter2")
		gt.NoError(t, err).Required()
		gt.Value(t, conn.PelotonUserID).Equal(types.PelotonUserID("p-1"))
		gt.Value(t, conn.SessionID).Equal("sess-abc")
		gt.Value(t, conn.Username).Equal("ada")

		got, err := repo.Peloton().GetBySlackID(ctx, "U0ABCDEF12")
		gt.NoError(t, err).Required()
		gt.Value(t, got.SessionID).Equal("sess-abc")
	})

	t.Run("rejects malformed slack user IDs", func(t *testing.T) {
		_, _, uc := newVerificationFixture(t)

		_, err := uc.ConnectPeloton(ctx, "bogus", "ada@example.com", "hunter2")
		gt.Error(t, err).Is(usecase.ErrInvalidSlackUserID)
	})
}
