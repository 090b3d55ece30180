package sqlxrepos

import (
	"context"

	"github.com/jmoiron/sqlx"
	"github.com/pkg/errors"

	"github.com/devShreyas21/studentPortal/core/activity"
)

type activityRepository struct {
	db *sqlx.DB
}

var _ activity.Repository = (*activityRepository)(nil) // interface compliance check

func NewActivityRepository(db *sqlx.DB) *activityRepository {
	return &activityRepository{db: db}
}

func (repo *activityRepository) Insert(ctx context.Context, e activity.Entry) error {
	q := `INSERT INTO activity_log (user_id, action, timestamp) VALUES (:user_id, :action, :timestamp)`
	_, err := repo.db.NamedExecContext(ctx, q, e)
	return errors.Wrap(err, "inserting activity entry")
}

func (repo *activityRepository) Query(ctx context.Context, limit int) ([]activity.Entry, error) {
	entries := make([]activity.Entry, 0, limit)
	q := `SELECT id, user_id, action, timestamp FROM activity_log ORDER BY timestamp DESC, id DESC LIMIT $1`
	if err := repo.db.SelectContext(ctx, &entries, q, limit); err != nil {
		return nil, errors.Wrap(err, "querying activity entries")
	}
	return entries, nil
}
