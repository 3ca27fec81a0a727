package memory

import (
	"context"
	"sync"

	"github.com/m-mizutani/goerr/v2"
	"github.com/runclub/paceline/pkg/domain/model"
	"github.com/runclub/paceline/pkg/domain/types"
)

type verificationRepository struct {
	mu    sync.RWMutex
	users map[types.SlackUserID]*model.VerifiedSlackUser
}

func newVerificationRepository() *verificationRepository {
	return &verificationRepository{
		users: make(map[types.SlackUserID]*model.VerifiedSlackUser),
	}
}

func copyVerifiedSlackUser(u *model.VerifiedSlackUser) *model.VerifiedSlackUser {
	copied := *u
	return &copied
}

// Upsert keeps the stored token when the incoming one is empty, so a
// verified-flag write does not invalidate a pending verification link.
func (r *verificationRepository) Upsert(ctx context.Context, user *model.VerifiedSlackUser) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	stored := copyVerifiedSlackUser(user)
	if existing, ok := r.users[user.SlackUserID]; ok && stored.VerificationToken == "" {
		stored.VerificationToken = existing.VerificationToken
	}
	r.users[user.SlackUserID] = stored
	return nil
}

func (r *verificationRepository) GetByToken(ctx context.Context, token types.VerificationToken) (*model.VerifiedSlackUser, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	for _, u := range r.users {
		if u.VerificationToken != "" && u.VerificationToken == token {
			return copyVerifiedSlackUser(u), nil
		}
	}

	return nil, goerr.Wrap(model.ErrNotFound, "no slack user for verification token")
}

func (r *verificationRepository) Consume(ctx context.Context, token types.VerificationToken) (bool, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	for _, u := range r.users {
		if u.VerificationToken != "" && u.VerificationToken == token {
			u.Verified = true
			u.VerificationToken = ""
			return true, nil
		}
	}

	return false, nil
}

func (r *verificationRepository) IsVerified(ctx context.Context, id types.SlackUserID) (bool, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	u, ok := r.users[id]
	if !ok {
		return false, nil
	}

	return u.Verified, nil
}

func (r *verificationRepository) Get(ctx context.Context, id types.SlackUserID) (*model.VerifiedSlackUser, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	u, ok := r.users[id]
	if !ok {
		return nil, goerr.Wrap(model.ErrNotFound, "slack user not found", goerr.V("slack_user_id", id))
	}

	return copyVerifiedSlackUser(u), nil
}
