package postgres

import (
	"context"
	"database/sql"
	"errors"

	"github.com/jmoiron/sqlx"
	"github.com/m-mizutani/goerr/v2"
	"github.com/runclub/paceline/pkg/domain/interfaces"
	"github.com/runclub/paceline/pkg/domain/model"
	"github.com/runclub/paceline/pkg/domain/types"
)

type verificationRepository struct {
	db *sqlx.DB
}

var _ interfaces.SlackVerificationRepository = &verificationRepository{}

type verifiedSlackUserRow struct {
	SlackUserID       string `db:"slack_user_id"`
	VerificationToken string `db:"verification_token"`
	Verified          bool   `db:"verified"`
}

func (r verifiedSlackUserRow) toModel() *model.VerifiedSlackUser {
	return &model.VerifiedSlackUser{
		SlackUserID:       types.SlackUserID(r.SlackUserID),
		VerificationToken: types.VerificationToken(r.VerificationToken),
		Verified:          r.Verified,
	}
}

// An empty incoming token keeps the stored one, mirroring the connection
// store's coalesce. verified is overwritten by the incoming value.
const upsertVerifiedSlackUserQuery = `
INSERT INTO verified_slack_users (slack_user_id, verification_token, verified)
VALUES ($1, $2, $3)
ON CONFLICT (slack_user_id) DO UPDATE SET
	verification_token = COALESCE(NULLIF(EXCLUDED.verification_token, ''), verified_slack_users.verification_token),
	verified = EXCLUDED.verified
`

func (r *verificationRepository) Upsert(ctx context.Context, user *model.VerifiedSlackUser) error {
	_, err := r.db.ExecContext(ctx, upsertVerifiedSlackUserQuery,
		string(user.SlackUserID),
		string(user.VerificationToken),
		user.Verified,
	)
	if err != nil {
		return goerr.Wrap(err, "failed to upsert verified slack user", goerr.V("slack_user_id", user.SlackUserID))
	}

	return nil
}

func (r *verificationRepository) GetByToken(ctx context.Context, token types.VerificationToken) (*model.VerifiedSlackUser, error) {
	var row verifiedSlackUserRow
	err := r.db.GetContext(ctx, &row,
		`SELECT * FROM verified_slack_users WHERE verification_token = $1 AND verification_token <> ''`,
		string(token))
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, goerr.Wrap(model.ErrNotFound, "no slack user for verification token")
		}
		return nil, goerr.Wrap(err, "failed to query by verification token")
	}

	return row.toModel(), nil
}

func (r *verificationRepository) Consume(ctx context.Context, token types.VerificationToken) (bool, error) {
	res, err := r.db.ExecContext(ctx,
		`UPDATE verified_slack_users
		 SET verified = TRUE, verification_token = ''
		 WHERE verification_token = $1 AND verification_token <> ''`,
		string(token))
	if err != nil {
		return false, goerr.Wrap(err, "failed to consume verification token")
	}

	affected, err := res.RowsAffected()
	if err != nil {
		return false, goerr.Wrap(err, "failed to read affected rows")
	}

	return affected > 0, nil
}

func (r *verificationRepository) IsVerified(ctx context.Context, id types.SlackUserID) (bool, error) {
	var verified bool
	err := r.db.GetContext(ctx, &verified,
		`SELECT verified FROM verified_slack_users WHERE slack_user_id = $1`, string(id))
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return false, nil
		}
		return false, goerr.Wrap(err, "failed to get verified slack user", goerr.V("slack_user_id", id))
	}

	return verified, nil
}

func (r *verificationRepository) Get(ctx context.Context, id types.SlackUserID) (*model.VerifiedSlackUser, error) {
	var row verifiedSlackUserRow
	err := r.db.GetContext(ctx, &row,
		`SELECT * FROM verified_slack_users WHERE slack_user_id = $1`, string(id))
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, goerr.Wrap(model.ErrNotFound, "slack user not found", goerr.V("slack_user_id", id))
		}
		return nil, goerr.Wrap(err, "failed to get verified slack user", goerr.V("slack_user_id", id))
	}

	return row.toModel(), nil
}
