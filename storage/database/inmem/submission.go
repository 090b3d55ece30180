package inmemdb

import (
	"context"
	"sort"
	"time"

	"github.com/samber/lo"

	"github.com/devShreyas21/studentPortal/core/submission"
)

type submissionRepository struct {
	db *DB
}

var _ submission.Repository = (*submissionRepository)(nil) // interface compliance check

func NewSubmissionRepository(db *DB) *submissionRepository {
	return &submissionRepository{db: db}
}

func (repo *submissionRepository) Upsert(_ context.Context, s submission.Submission, check submission.Check) (submission.Submission, error) {
	repo.db.mu.Lock()
	defer repo.db.mu.Unlock()

	p, t, err := repo.db.getTask(s.TaskID)
	if err != nil {
		return submission.Submission{}, err
	}
	if err = check(p, t); err != nil {
		return submission.Submission{}, err
	}

	key := submissionKey{taskID: s.TaskID, studentID: s.StudentID}
	if prev, ok := repo.db.submissions[key]; ok {
		s.ID = prev.ID
	} else {
		s.ID = repo.db.nextID("submission")
	}
	s.Grade = nil
	s.GradedAt = nil
	repo.db.submissions[key] = s
	return s, nil
}

func (repo *submissionRepository) Grade(
	_ context.Context,
	taskID, studentID int64,
	grade string,
	gradedAt time.Time,
	check submission.Check,
) (submission.Submission, error) {
	repo.db.mu.Lock()
	defer repo.db.mu.Unlock()

	p, t, err := repo.db.getTask(taskID)
	if err != nil {
		return submission.Submission{}, err
	}
	if err = check(p, t); err != nil {
		return submission.Submission{}, err
	}

	key := submissionKey{taskID: taskID, studentID: studentID}
	s, ok := repo.db.submissions[key]
	if !ok {
		return submission.Submission{}, submission.ErrNoSubmission
	}
	s.Grade = &grade
	s.GradedAt = &gradedAt
	repo.db.submissions[key] = s
	return s, nil
}

func (repo *submissionRepository) Get(_ context.Context, taskID, studentID int64) (submission.Submission, error) {
	repo.db.mu.RLock()
	defer repo.db.mu.RUnlock()

	s, ok := repo.db.submissions[submissionKey{taskID: taskID, studentID: studentID}]
	if !ok {
		return submission.Submission{}, submission.ErrNoSubmission
	}
	return s, nil
}

func (repo *submissionRepository) QueryByTasks(_ context.Context, taskIDs []int64) ([]submission.Submission, error) {
	return repo.query(func(s submission.Submission) bool {
		return lo.Contains(taskIDs, s.TaskID)
	}), nil
}

func (repo *submissionRepository) QueryByStudent(_ context.Context, studentID int64, taskIDs []int64) ([]submission.Submission, error) {
	return repo.query(func(s submission.Submission) bool {
		return s.StudentID == studentID && lo.Contains(taskIDs, s.TaskID)
	}), nil
}

func (repo *submissionRepository) query(keep func(s submission.Submission) bool) []submission.Submission {
	repo.db.mu.RLock()
	defer repo.db.mu.RUnlock()

	subs := make([]submission.Submission, 0)
	for _, s := range repo.db.submissions {
		if keep(s) {
			subs = append(subs, s)
		}
	}
	sort.Slice(subs, func(i, j int) bool {
		if subs[i].TaskID == subs[j].TaskID {
			return subs[i].StudentID < subs[j].StudentID
		}
		return subs[i].TaskID < subs[j].TaskID
	})
	return subs
}
