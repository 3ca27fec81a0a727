package memory

import (
	"context"
	"sort"
	"sync"
	"time"

	"github.com/m-mizutani/goerr/v2"
	"github.com/runclub/paceline/pkg/domain/model"
	"github.com/runclub/paceline/pkg/domain/types"
)

type stravaRepository struct {
	mu    sync.RWMutex
	conns map[types.AthleteID]*model.StravaConnection
}

func newStravaRepository() *stravaRepository {
	return &stravaRepository{
		conns: make(map[types.AthleteID]*model.StravaConnection),
	}
}

func copyStravaConnection(c *model.StravaConnection) *model.StravaConnection {
	copied := *c
	return &copied
}

// Upsert inserts or updates by athlete ID. SlackUserID and VerificationToken
// coalesce: empty incoming values keep the stored value.
func (r *stravaRepository) Upsert(ctx context.Context, conn *model.StravaConnection) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	incoming := copyStravaConnection(conn)
	if existing, ok := r.conns[conn.AthleteID]; ok {
		if incoming.SlackUserID == "" {
			incoming.SlackUserID = existing.SlackUserID
		}
		if incoming.VerificationToken == "" {
			incoming.VerificationToken = existing.VerificationToken
		}
		incoming.Verified = existing.Verified
	}
	incoming.UpdatedAt = time.Now().UTC()

	r.conns[conn.AthleteID] = incoming
	return nil
}

func (r *stravaRepository) Get(ctx context.Context, id types.AthleteID) (*model.StravaConnection, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	conn, ok := r.conns[id]
	if !ok {
		return nil, goerr.Wrap(model.ErrNotFound, "strava connection not found", goerr.V("athlete_id", id))
	}

	return copyStravaConnection(conn), nil
}

func (r *stravaRepository) List(ctx context.Context) ([]*model.StravaConnectionSummary, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	result := make([]*model.StravaConnectionSummary, 0, len(r.conns))
	for _, c := range r.conns {
		result = append(result, c.Summary())
	}

	sort.Slice(result, func(i, j int) bool {
		return result[i].UpdatedAt.After(result[j].UpdatedAt)
	})

	return result, nil
}

func (r *stravaRepository) GetByVerificationToken(ctx context.Context, token types.VerificationToken) (*model.StravaConnection, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	for _, c := range r.conns {
		if c.VerificationToken != "" && c.VerificationToken == token {
			return copyStravaConnection(c), nil
		}
	}

	return nil, goerr.Wrap(model.ErrNotFound, "no connection for verification token")
}

// MarkVerified flips verified and clears the token under the store lock, so
// concurrent consumption of the same token affects exactly one row.
func (r *stravaRepository) MarkVerified(ctx context.Context, token types.VerificationToken) (bool, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	for _, c := range r.conns {
		if c.VerificationToken != "" && c.VerificationToken == token {
			c.Verified = true
			c.VerificationToken = ""
			c.UpdatedAt = time.Now().UTC()
			return true, nil
		}
	}

	return false, nil
}
