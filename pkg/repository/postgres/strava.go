package postgres

import (
	"context"
	"database/sql"
	"errors"
	"time"

	"github.com/jmoiron/sqlx"
	"github.com/m-mizutani/goerr/v2"
	"github.com/runclub/paceline/pkg/domain/interfaces"
	"github.com/runclub/paceline/pkg/domain/model"
	"github.com/runclub/paceline/pkg/domain/types"
)

type stravaRepository struct {
	db *sqlx.DB
}

var _ interfaces.StravaConnectionRepository = &stravaRepository{}

type stravaConnectionRow struct {
	AthleteID         int64     `db:"athlete_id"`
	RefreshToken      string    `db:"refresh_token"`
	AccessToken       string    `db:"access_token"`
	ExpiresAt         int64     `db:"expires_at"`
	FirstName         string    `db:"firstname"`
	LastName          string    `db:"lastname"`
	SlackUserID       string    `db:"slack_user_id"`
	Verified          bool      `db:"verified"`
	VerificationToken string    `db:"verification_token"`
	UpdatedAt         time.Time `db:"updated_at"`
}

func (r stravaConnectionRow) toModel() *model.StravaConnection {
	return &model.StravaConnection{
		AthleteID:         types.AthleteID(r.AthleteID),
		RefreshToken:      r.RefreshToken,
		AccessToken:       r.AccessToken,
		ExpiresAt:         r.ExpiresAt,
		FirstName:         r.FirstName,
		LastName:          r.LastName,
		SlackUserID:       types.SlackUserID(r.SlackUserID),
		Verified:          r.Verified,
		VerificationToken: types.VerificationToken(r.VerificationToken),
		UpdatedAt:         r.UpdatedAt,
	}
}

// Upsert relies on COALESCE(NULLIF(...)) so an empty incoming slack_user_id
// or verification_token keeps the stored value, and verified is never touched
// by token-refresh writes.
const upsertStravaConnectionQuery = `
INSERT INTO strava_connections (
	athlete_id, refresh_token, access_token, expires_at,
	firstname, lastname, slack_user_id, verified, verification_token, updated_at
) VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, now())
ON CONFLICT (athlete_id) DO UPDATE SET
	refresh_token = EXCLUDED.refresh_token,
	access_token = EXCLUDED.access_token,
	expires_at = EXCLUDED.expires_at,
	firstname = EXCLUDED.firstname,
	lastname = EXCLUDED.lastname,
	slack_user_id = COALESCE(NULLIF(EXCLUDED.slack_user_id, ''), strava_connections.slack_user_id),
	verification_token = COALESCE(NULLIF(EXCLUDED.verification_token, ''), strava_connections.verification_token),
	updated_at = now()
`

func (r *stravaRepository) Upsert(ctx context.Context, conn *model.StravaConnection) error {
	_, err := r.db.ExecContext(ctx, upsertStravaConnectionQuery,
		conn.AthleteID.Int64(),
		conn.RefreshToken,
		conn.AccessToken,
		conn.ExpiresAt,
		conn.FirstName,
		conn.LastName,
		string(conn.SlackUserID),
		conn.Verified,
		string(conn.VerificationToken),
	)
	if err != nil {
		return goerr.Wrap(err, "failed to upsert strava connection", goerr.V("athlete_id", conn.AthleteID))
	}

	return nil
}

func (r *stravaRepository) Get(ctx context.Context, id types.AthleteID) (*model.StravaConnection, error) {
	var row stravaConnectionRow
	err := r.db.GetContext(ctx, &row,
		`SELECT * FROM strava_connections WHERE athlete_id = $1`, id.Int64())
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, goerr.Wrap(model.ErrNotFound, "strava connection not found", goerr.V("athlete_id", id))
		}
		return nil, goerr.Wrap(err, "failed to get strava connection", goerr.V("athlete_id", id))
	}

	return row.toModel(), nil
}

func (r *stravaRepository) List(ctx context.Context) ([]*model.StravaConnectionSummary, error) {
	var rows []stravaConnectionRow
	err := r.db.SelectContext(ctx, &rows,
		`SELECT * FROM strava_connections ORDER BY updated_at DESC`)
	if err != nil {
		return nil, goerr.Wrap(err, "failed to list strava connections")
	}

	result := make([]*model.StravaConnectionSummary, 0, len(rows))
	for _, row := range rows {
		result = append(result, row.toModel().Summary())
	}

	return result, nil
}

func (r *stravaRepository) GetByVerificationToken(ctx context.Context, token types.VerificationToken) (*model.StravaConnection, error) {
	var row stravaConnectionRow
	err := r.db.GetContext(ctx, &row,
		`SELECT * FROM strava_connections WHERE verification_token = $1 AND verification_token <> ''`,
		string(token))
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, goerr.Wrap(model.ErrNotFound, "no connection for verification token")
		}
		return nil, goerr.Wrap(err, "failed to query by verification token")
	}

	return row.toModel(), nil
}

func (r *stravaRepository) MarkVerified(ctx context.Context, token types.VerificationToken) (bool, error) {
	res, err := r.db.ExecContext(ctx,
		`UPDATE strava_connections
		 SET verified = TRUE, verification_token = '', updated_at = now()
		 WHERE verification_token = $1 AND verification_token <> ''`,
		string(token))
	if err != nil {
		return false, goerr.Wrap(err, "failed to mark strava connection verified")
	}

	affected, err := res.RowsAffected()
	if err != nil {
		return false, goerr.Wrap(err, "failed to read affected rows")
	}

	return affected > 0, nil
}
