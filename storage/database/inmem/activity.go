package inmemdb

import (
	"context"

	"github.com/devShreyas21/studentPortal/core/activity"
)

type activityRepository struct {
	db *DB
}

var _ activity.Repository = (*activityRepository)(nil) // interface compliance check

func NewActivityRepository(db *DB) *activityRepository {
	return &activityRepository{db: db}
}

func (repo *activityRepository) Insert(_ context.Context, e activity.Entry) error {
	repo.db.mu.Lock()
	defer repo.db.mu.Unlock()

	e.ID = repo.db.nextID("activity_log")
	repo.db.activity = append(repo.db.activity, e)
	return nil
}

func (repo *activityRepository) Query(_ context.Context, limit int) ([]activity.Entry, error) {
	repo.db.mu.RLock()
	defer repo.db.mu.RUnlock()

	n := len(repo.db.activity)
	if limit > n {
		limit = n
	}
	entries := make([]activity.Entry, 0, limit)
	for i := n - 1; i >= n-limit; i-- {
		entries = append(entries, repo.db.activity[i])
	}
	return entries, nil
}
