package postgres

import (
	"context"

	_ "github.com/jackc/pgx/v5/stdlib"
	"github.com/jmoiron/sqlx"
	"github.com/m-mizutani/goerr/v2"
	"github.com/runclub/paceline/pkg/domain/interfaces"
)

type Postgres struct {
	db           *sqlx.DB
	strava       *stravaRepository
	peloton      *pelotonRepository
	verification *verificationRepository
	postedAct    *postedActivityRepository
	postedWkt    *postedWorkoutRepository
}

var _ interfaces.Repository = &Postgres{}

func New(ctx context.Context, dsn string) (*Postgres, error) {
	db, err := sqlx.ConnectContext(ctx, "pgx", dsn)
	if err != nil {
		return nil, goerr.Wrap(err, "failed to connect to postgres")
	}

	p := &Postgres{
		db:           db,
		strava:       &stravaRepository{db: db},
		peloton:      &pelotonRepository{db: db},
		verification: &verificationRepository{db: db},
		postedAct:    &postedActivityRepository{db: db},
		postedWkt:    &postedWorkoutRepository{db: db},
	}

	if err := p.migrate(ctx); err != nil {
		_ = db.Close()
		return nil, err
	}

	return p, nil
}

var migrations = []string{
	`CREATE TABLE IF NOT EXISTS strava_connections (
		athlete_id BIGINT PRIMARY KEY,
		refresh_token TEXT NOT NULL,
		access_token TEXT NOT NULL,
		expires_at BIGINT NOT NULL,
		firstname TEXT NOT NULL DEFAULT '',
		lastname TEXT NOT NULL DEFAULT '',
		slack_user_id TEXT NOT NULL DEFAULT '',
		verified BOOLEAN NOT NULL DEFAULT FALSE,
		verification_token TEXT NOT NULL DEFAULT '',
		updated_at TIMESTAMPTZ NOT NULL DEFAULT now()
	)`,
	`CREATE TABLE IF NOT EXISTS peloton_connections (
		peloton_user_id TEXT PRIMARY KEY,
		slack_user_id TEXT NOT NULL,
		session_id TEXT NOT NULL,
		username TEXT NOT NULL DEFAULT '',
		updated_at TIMESTAMPTZ NOT NULL DEFAULT now()
	)`,
	`CREATE TABLE IF NOT EXISTS verified_slack_users (
		slack_user_id TEXT PRIMARY KEY,
		verification_token TEXT NOT NULL DEFAULT '',
		verified BOOLEAN NOT NULL DEFAULT FALSE
	)`,
	`CREATE TABLE IF NOT EXISTS posted_activities (
		activity_id BIGINT PRIMARY KEY,
		athlete_id BIGINT NOT NULL,
		posted_at TIMESTAMPTZ NOT NULL DEFAULT now()
	)`,
	`CREATE TABLE IF NOT EXISTS posted_workouts (
		workout_id TEXT PRIMARY KEY,
		slack_user_id TEXT NOT NULL,
		posted_at TIMESTAMPTZ NOT NULL DEFAULT now()
	)`,
}

func (p *Postgres) migrate(ctx context.Context) error {
	for _, stmt := range migrations {
		if _, err := p.db.ExecContext(ctx, stmt); err != nil {
			return goerr.Wrap(err, "failed to run migration", goerr.V("stmt", stmt))
		}
	}
	return nil
}

func (p *Postgres) Strava() interfaces.StravaConnectionRepository {
	return p.strava
}

func (p *Postgres) Peloton() interfaces.PelotonConnectionRepository {
	return p.peloton
}

func (p *Postgres) SlackVerification() interfaces.SlackVerificationRepository {
	return p.verification
}

func (p *Postgres) PostedActivity() interfaces.PostedActivityRepository {
	return p.postedAct
}

func (p *Postgres) PostedWorkout() interfaces.PostedWorkoutRepository {
	return p.postedWkt
}

func (p *Postgres) Close() error {
	return p.db.Close()
}
