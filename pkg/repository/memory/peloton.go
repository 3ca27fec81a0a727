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

type pelotonRepository struct {
	mu    sync.RWMutex
	conns map[types.PelotonUserID]*model.PelotonConnection
}

func newPelotonRepository() *pelotonRepository {
	return &pelotonRepository{
		conns: make(map[types.PelotonUserID]*model.PelotonConnection),
	}
}

func copyPelotonConnection(c *model.PelotonConnection) *model.PelotonConnection {
	copied := *c
	return &copied
}

func (r *pelotonRepository) Upsert(ctx context.Context, conn *model.PelotonConnection) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	incoming := copyPelotonConnection(conn)
	incoming.UpdatedAt = time.Now().UTC()
	r.conns[conn.PelotonUserID] = incoming
	return nil
}

func (r *pelotonRepository) Get(ctx context.Context, id types.PelotonUserID) (*model.PelotonConnection, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	conn, ok := r.conns[id]
	if !ok {
		return nil, goerr.Wrap(model.ErrNotFound, "peloton connection not found", goerr.V("peloton_user_id", id))
	}

	return copyPelotonConnection(conn), nil
}

func (r *pelotonRepository) GetBySlackID(ctx context.Context, id types.SlackUserID) (*model.PelotonConnection, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	for _, c := range r.conns {
		if c.SlackUserID == id {
			return copyPelotonConnection(c), nil
		}
	}

	return nil, goerr.Wrap(model.ErrNotFound, "peloton connection not found", goerr.V("slack_user_id", id))
}

func (r *pelotonRepository) List(ctx context.Context) ([]*model.PelotonConnectionSummary, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	result := make([]*model.PelotonConnectionSummary, 0, len(r.conns))
	for _, c := range r.conns {
		result = append(result, c.Summary())
	}

	sort.Slice(result, func(i, j int) bool {
		return result[i].UpdatedAt.After(result[j].UpdatedAt)
	})

	return result, nil
}

func (r *pelotonRepository) Delete(ctx context.Context, id types.PelotonUserID) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	if _, ok := r.conns[id]; !ok {
		return goerr.Wrap(model.ErrNotFound, "peloton connection not found", goerr.V("peloton_user_id", id))
	}

	delete(r.conns, id)
	return nil
}
