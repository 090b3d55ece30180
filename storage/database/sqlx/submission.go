package sqlxrepos

import (
	"context"
	"time"

	"github.com/jmoiron/sqlx"
	"github.com/lib/pq"
	"github.com/pkg/errors"
	"github.com/samber/lo"
	"github.com/volatiletech/null/v8"

	"github.com/devShreyas21/studentPortal/core/submission"
)

const submissionColumns = `id, task_id, student_id, content, file_id, grade, submitted_at, graded_at`

type submissionRow struct {
	ID          int64       `db:"id"`
	TaskID      int64       `db:"task_id"`
	StudentID   int64       `db:"student_id"`
	Content     string      `db:"content"`
	FileID      null.String `db:"file_id"`
	Grade       null.String `db:"grade"`
	SubmittedAt time.Time   `db:"submitted_at"`
	GradedAt    null.Time   `db:"graded_at"`
}

func (r submissionRow) toSubmission() submission.Submission {
	s := submission.Submission{
		ID:          r.ID,
		TaskID:      r.TaskID,
		StudentID:   r.StudentID,
		Content:     r.Content,
		FileID:      r.FileID.Ptr(),
		Grade:       r.Grade.Ptr(),
		SubmittedAt: r.SubmittedAt.UTC(),
	}
	if r.GradedAt.Valid {
		gradedAt := r.GradedAt.Time.UTC()
		s.GradedAt = &gradedAt
	}
	return s
}

type submissionRepository struct {
	db *sqlx.DB
}

var _ submission.Repository = (*submissionRepository)(nil) // interface compliance check

func NewSubmissionRepository(db *sqlx.DB) *submissionRepository {
	return &submissionRepository{db: db}
}

func (repo *submissionRepository) Upsert(ctx context.Context, s submission.Submission, check submission.Check) (submission.Submission, error) {
	var row submissionRow
	err := withTx(ctx, repo.db, func(tx *sqlx.Tx) error {
		p, t, err := lockTask(ctx, tx, s.TaskID)
		if err != nil {
			return err
		}
		if err = check(p, t); err != nil {
			return err
		}
		q := `INSERT INTO submission (task_id, student_id, content, file_id, submitted_at)
			VALUES ($1, $2, $3, $4, $5)
			ON CONFLICT (task_id, student_id) DO UPDATE
			SET content = EXCLUDED.content,
				file_id = EXCLUDED.file_id,
				submitted_at = EXCLUDED.submitted_at,
				grade = NULL,
				graded_at = NULL
			RETURNING ` + submissionColumns
		err = tx.GetContext(ctx, &row, q, s.TaskID, s.StudentID, s.Content, null.StringFromPtr(s.FileID), s.SubmittedAt)
		return errors.Wrap(err, "upserting submission")
	})
	if err != nil {
		return submission.Submission{}, err
	}
	return row.toSubmission(), nil
}

func (repo *submissionRepository) Grade(
	ctx context.Context,
	taskID, studentID int64,
	grade string,
	gradedAt time.Time,
	check submission.Check,
) (submission.Submission, error) {
	var row submissionRow
	err := withTx(ctx, repo.db, func(tx *sqlx.Tx) error {
		p, t, err := lockTask(ctx, tx, taskID)
		if err != nil {
			return err
		}
		if err = check(p, t); err != nil {
			return err
		}
		q := `UPDATE submission SET grade = $3, graded_at = $4
			WHERE task_id = $1 AND student_id = $2
			RETURNING ` + submissionColumns
		err = tx.GetContext(ctx, &row, q, taskID, studentID, grade, gradedAt)
		return trapNoRows(err, submission.ErrNoSubmission, "grading submission")
	})
	if err != nil {
		return submission.Submission{}, err
	}
	return row.toSubmission(), nil
}

func (repo *submissionRepository) Get(ctx context.Context, taskID, studentID int64) (submission.Submission, error) {
	var row submissionRow
	q := `SELECT ` + submissionColumns + ` FROM submission WHERE task_id = $1 AND student_id = $2`
	if err := repo.db.GetContext(ctx, &row, q, taskID, studentID); err != nil {
		return submission.Submission{}, trapNoRows(err, submission.ErrNoSubmission, "getting submission")
	}
	return row.toSubmission(), nil
}

func (repo *submissionRepository) QueryByTasks(ctx context.Context, taskIDs []int64) ([]submission.Submission, error) {
	q := `SELECT ` + submissionColumns + ` FROM submission WHERE task_id = ANY($1) ORDER BY task_id, student_id`
	return repo.query(ctx, q, pq.Array(taskIDs))
}

func (repo *submissionRepository) QueryByStudent(ctx context.Context, studentID int64, taskIDs []int64) ([]submission.Submission, error) {
	q := `SELECT ` + submissionColumns + ` FROM submission
		WHERE student_id = $1 AND task_id = ANY($2) ORDER BY task_id`
	return repo.query(ctx, q, studentID, pq.Array(taskIDs))
}

func (repo *submissionRepository) query(ctx context.Context, q string, args ...interface{}) ([]submission.Submission, error) {
	rows := make([]submissionRow, 0)
	if err := repo.db.SelectContext(ctx, &rows, q, args...); err != nil {
		return nil, errors.Wrap(err, "querying submissions")
	}
	return lo.Map(rows, func(r submissionRow, _ int) submission.Submission { return r.toSubmission() }), nil
}
