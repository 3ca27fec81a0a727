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

type pelotonRepository struct {
	db *sqlx.DB
}

var _ interfaces.PelotonConnectionRepository = &pelotonRepository{}

type pelotonConnectionRow struct {
	PelotonUserID string    `db:"peloton_user_id"`
	SlackUserID   string    `db:"slack_user_id"`
	SessionID     string    `db:"session_id"`
	Username      string    `db:"username"`
	UpdatedAt     time.Time `db:"updated_at"`
}

func (r pelotonConnectionRow) toModel() *model.PelotonConnection {
	return &model.PelotonConnection{
		PelotonUserID: types.PelotonUserID(r.PelotonUserID),
		SlackUserID:   types.SlackUserID(r.SlackUserID),
		SessionID:     r.SessionID,
		Username:      r.Username,
		UpdatedAt:     r.UpdatedAt,
	}
}

const upsertPelotonConnectionQuery = `
INSERT INTO peloton_connections (peloton_user_id, slack_user_id, session_id, username, updated_at)
VALUES ($1, $2, $3, $4, now())
ON CONFLICT (peloton_user_id) DO UPDATE SET
	slack_user_id = EXCLUDED.slack_user_id,
	session_id = EXCLUDED.session_id,
	username = EXCLUDED.username,
	updated_at = now()
`

func (r *pelotonRepository) Upsert(ctx context.Context, conn *model.PelotonConnection) error {
	_, err := r.db.ExecContext(ctx, upsertPelotonConnectionQuery,
		string(conn.PelotonUserID),
		string(conn.SlackUserID),
		conn.SessionID,
		conn.Username,
	)
	if err != nil {
		return goerr.Wrap(err, "failed to upsert peloton connection", goerr.V("peloton_user_id", conn.PelotonUserID))
	}

	return nil
}

func (r *pelotonRepository) Get(ctx context.Context, id types.PelotonUserID) (*model.PelotonConnection, error) {
	var row pelotonConnectionRow
	err := r.db.GetContext(ctx, &row,
		`SELECT * FROM peloton_connections WHERE peloton_user_id = $1`, string(id))
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, goerr.Wrap(model.ErrNotFound, "peloton connection not found", goerr.V("peloton_user_id", id))
		}
		return nil, goerr.Wrap(err, "failed to get peloton connection", goerr.V("peloton_user_id", id))
	}

	return row.toModel(), nil
}

func (r *pelotonRepository) GetBySlackID(ctx context.Context, id types.SlackUserID) (*model.PelotonConnection, error) {
	var row pelotonConnectionRow
	err := r.db.GetContext(ctx, &row,
		`SELECT * FROM peloton_connections WHERE slack_user_id = $1 LIMIT 1`, string(id))
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, goerr.Wrap(model.ErrNotFound, "peloton connection not found", goerr.V("slack_user_id", id))
		}
		return nil, goerr.Wrap(err, "failed to query peloton connection by slack user")
	}

	return row.toModel(), nil
}

func (r *pelotonRepository) List(ctx context.Context) ([]*model.PelotonConnectionSummary, error) {
	var rows []pelotonConnectionRow
	err := r.db.SelectContext(ctx, &rows,
		`SELECT * FROM peloton_connections ORDER BY updated_at DESC`)
	if err != nil {
		return nil, goerr.Wrap(err, "failed to list peloton connections")
	}

	result := make([]*model.PelotonConnectionSummary, 0, len(rows))
	for _, row := range rows {
		result = append(result, row.toModel().Summary())
	}

	return result, nil
}

func (r *pelotonRepository) Delete(ctx context.Context, id types.PelotonUserID) error {
	res, err := r.db.ExecContext(ctx,
		`DELETE FROM peloton_connections WHERE peloton_user_id = $1`, string(id))
	if err != nil {
		return goerr.Wrap(err, "failed to delete peloton connection", goerr.V("peloton_user_id", id))
	}

	affected, err := res.RowsAffected()
	if err != nil {
		return goerr.Wrap(err, "failed to read affected rows")
	}
	if affected == 0 {
		return goerr.Wrap(model.ErrNotFound, "peloton connection not found", goerr.V("peloton_user_id", id))
	}

	return nil
}
