package activity

import (
	"context"
	"time"

	"github.com/pkg/errors"

	"github.com/devShreyas21/studentPortal/core"
)

const (
	DefaultLimit = 100
	MaxLimit     = 1000
)

type Entry struct {
	ID        int64     `json:"-" db:"id"`
	UserID    int64     `json:"user_id" db:"user_id"`
	Action    string    `json:"action" db:"action"`
	Timestamp time.Time `json:"timestamp" db:"timestamp"` // UTC
}

type (
	Repository interface {
		Insert(ctx context.Context, e Entry) error
		// Query returns the latest `limit` entries, newest first.
		Query(ctx context.Context, limit int) ([]Entry, error)
	}

	Service struct {
		repo   Repository
		logger core.Logger
	}
)

var _ core.ActivityRecorder = (*Service)(nil)

func NewService(repo Repository, logger core.Logger) *Service {
	return &Service{repo: repo, logger: logger}
}

// Record appends an entry. Failures are logged and swallowed.
func (svc *Service) Record(ctx context.Context, userID int64, action string) {
	err := svc.repo.Insert(ctx, Entry{UserID: userID, Action: action, Timestamp: time.Now().UTC()})
	if err != nil {
		svc.logger.Error("recording activity "+action, errors.Wrap(err, "inserting activity entry"))
	}
}

// Query returns the latest entries. A non-positive limit means DefaultLimit.
func (svc *Service) Query(ctx context.Context, limit int) ([]Entry, error) {
	if limit <= 0 {
		limit = DefaultLimit
	}
	if limit > MaxLimit {
		limit = MaxLimit
	}
	return svc.repo.Query(ctx, limit)
}
