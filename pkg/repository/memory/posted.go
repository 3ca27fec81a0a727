package memory

import (
	"context"
	"sync"
	"time"

	"github.com/runclub/paceline/pkg/domain/model"
	"github.com/runclub/paceline/pkg/domain/types"
)

type postedActivityRepository struct {
	mu   sync.RWMutex
	seen map[types.ActivityID]*model.PostedActivity
}

func newPostedActivityRepository() *postedActivityRepository {
	return &postedActivityRepository{
		seen: make(map[types.ActivityID]*model.PostedActivity),
	}
}

// Mark records the activity as posted. Marking an already-recorded activity
// keeps the original record.
func (r *postedActivityRepository) Mark(ctx context.Context, rec *model.PostedActivity) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	if _, ok := r.seen[rec.ActivityID]; ok {
		return nil
	}

	copied := *rec
	if copied.PostedAt.IsZero() {
		copied.PostedAt = time.Now().UTC()
	}
	r.seen[rec.ActivityID] = &copied
	return nil
}

func (r *postedActivityRepository) WasPosted(ctx context.Context, id types.ActivityID) (bool, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	_, ok := r.seen[id]
	return ok, nil
}

type postedWorkoutRepository struct {
	mu   sync.RWMutex
	seen map[types.WorkoutID]*model.PostedWorkout
}

func newPostedWorkoutRepository() *postedWorkoutRepository {
	return &postedWorkoutRepository{
		seen: make(map[types.WorkoutID]*model.PostedWorkout),
	}
}

func (r *postedWorkoutRepository) Mark(ctx context.Context, rec *model.PostedWorkout) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	if _, ok := r.seen[rec.WorkoutID]; ok {
		return nil
	}

	copied := *rec
	if copied.PostedAt.IsZero() {
		copied.PostedAt = time.Now().UTC()
	}
	r.seen[rec.WorkoutID] = &copied
	return nil
}

func (r *postedWorkoutRepository) WasPosted(ctx context.Context, id types.WorkoutID) (bool, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	_, ok := r.seen[id]
	return ok, nil
}
