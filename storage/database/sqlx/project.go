package sqlxrepos

import (
	"context"
	"time"

	"github.com/jmoiron/sqlx"
	"github.com/lib/pq"
	"github.com/pkg/errors"
	"github.com/samber/lo"

	"github.com/devShreyas21/studentPortal/core/project"
)

const (
	projectColumns = `id, title, description, owner_id, student_ids, status, created_at, updated_at`
	taskColumns    = `id, project_id, title, description, status, created_at, updated_at`
)

type projectRow struct {
	ID          int64         `db:"id"`
	Title       string        `db:"title"`
	Description string        `db:"description"`
	OwnerID     int64         `db:"owner_id"`
	StudentIDs  pq.Int64Array `db:"student_ids"`
	Status      string        `db:"status"`
	CreatedAt   time.Time     `db:"created_at"`
	UpdatedAt   time.Time     `db:"updated_at"`
}

func (r projectRow) toProject() project.Project {
	return project.Project{
		ID:          r.ID,
		Title:       r.Title,
		Description: r.Description,
		OwnerID:     r.OwnerID,
		StudentIDs:  []int64(r.StudentIDs),
		Status:      project.Status(r.Status),
		CreatedAt:   r.CreatedAt.UTC(),
		UpdatedAt:   r.UpdatedAt.UTC(),
	}
}

type projectRepository struct {
	db *sqlx.DB
}

var _ project.Repository = (*projectRepository)(nil) // interface compliance check

func NewProjectRepository(db *sqlx.DB) *projectRepository {
	return &projectRepository{db: db}
}

func (repo *projectRepository) CreateProject(ctx context.Context, p project.Project) (project.Project, error) {
	q := `INSERT INTO project (title, description, owner_id, student_ids, status, created_at, updated_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7) RETURNING id`
	err := repo.db.GetContext(ctx, &p.ID, q,
		p.Title, p.Description, p.OwnerID, pq.Array(p.StudentIDs), p.Status, p.CreatedAt, p.UpdatedAt)
	if err != nil {
		return project.Project{}, errors.Wrap(err, "inserting project")
	}
	return p, nil
}

func (repo *projectRepository) GetProject(ctx context.Context, id int64) (project.Project, error) {
	return getProject(ctx, repo.db, id, false)
}

func getProject(ctx context.Context, q sqlx.QueryerContext, id int64, forUpdate bool) (project.Project, error) {
	query := `SELECT ` + projectColumns + ` FROM project WHERE id = $1`
	if forUpdate {
		query += " FOR UPDATE"
	}
	var row projectRow
	if err := sqlx.GetContext(ctx, q, &row, query, id); err != nil {
		return project.Project{}, trapNoRows(err, project.ErrNotFound, "getting project")
	}
	return row.toProject(), nil
}

func (repo *projectRepository) QueryProjects(ctx context.Context, filter project.QueryFilter) ([]project.Project, error) {
	q := `SELECT ` + projectColumns + ` FROM project
		WHERE ($1::BIGINT = 0 OR owner_id = $1::BIGINT)
		AND ($2::BIGINT = 0 OR $2::BIGINT = ANY(student_ids))
		AND (cardinality($3::BIGINT[]) = 0 OR id = ANY($3))
		ORDER BY created_at DESC, id DESC`
	ids := filter.IDs
	if ids == nil {
		ids = []int64{}
	}
	rows := make([]projectRow, 0)
	if err := repo.db.SelectContext(ctx, &rows, q, filter.OwnerID, filter.StudentID, pq.Array(ids)); err != nil {
		return nil, errors.Wrap(err, "querying projects")
	}
	return lo.Map(rows, func(r projectRow, _ int) project.Project { return r.toProject() }), nil
}

func (repo *projectRepository) UpdateProject(ctx context.Context, id int64, fn func(p *project.Project) error) (project.Project, error) {
	var p project.Project
	err := withTx(ctx, repo.db, func(tx *sqlx.Tx) error {
		var err error
		if p, err = getProject(ctx, tx, id, true); err != nil {
			return err
		}
		if err = fn(&p); err != nil {
			return err
		}
		q := `UPDATE project SET title = $2, description = $3, status = $4, updated_at = $5 WHERE id = $1`
		_, err = tx.ExecContext(ctx, q, p.ID, p.Title, p.Description, p.Status, p.UpdatedAt)
		return errors.Wrap(err, "updating project")
	})
	if err != nil {
		return project.Project{}, err
	}
	return p, nil
}

func (repo *projectRepository) CreateTask(ctx context.Context, t project.Task, check func(p project.Project) error) (project.Task, error) {
	err := withTx(ctx, repo.db, func(tx *sqlx.Tx) error {
		p, err := getProject(ctx, tx, t.ProjectID, true)
		if err != nil {
			return err
		}
		if err = check(p); err != nil {
			return err
		}
		q := `INSERT INTO task (project_id, title, description, status, created_at, updated_at)
			VALUES ($1, $2, $3, $4, $5, $6) RETURNING id`
		err = tx.GetContext(ctx, &t.ID, q, t.ProjectID, t.Title, t.Description, t.Status, t.CreatedAt, t.UpdatedAt)
		return errors.Wrap(err, "inserting task")
	})
	if err != nil {
		return project.Task{}, err
	}
	return t, nil
}

func (repo *projectRepository) GetTask(ctx context.Context, id int64) (project.Task, error) {
	return getTask(ctx, repo.db, id, false)
}

func getTask(ctx context.Context, q sqlx.QueryerContext, id int64, forUpdate bool) (project.Task, error) {
	query := `SELECT ` + taskColumns + ` FROM task WHERE id = $1`
	if forUpdate {
		query += " FOR UPDATE"
	}
	var t project.Task
	if err := sqlx.GetContext(ctx, q, &t, query, id); err != nil {
		return project.Task{}, trapNoRows(err, project.ErrTaskNotFound, "getting task")
	}
	return t, nil
}

// lockTask locks a task and its project, project first.
func lockTask(ctx context.Context, tx *sqlx.Tx, taskID int64) (project.Project, project.Task, error) {
	t, err := getTask(ctx, tx, taskID, false)
	if err != nil {
		return project.Project{}, project.Task{}, err
	}
	p, err := getProject(ctx, tx, t.ProjectID, true)
	if err != nil {
		return project.Project{}, project.Task{}, err
	}
	if t, err = getTask(ctx, tx, taskID, true); err != nil {
		return project.Project{}, project.Task{}, err
	}
	return p, t, nil
}

func (repo *projectRepository) QueryTasks(ctx context.Context, projectIDs []int64) ([]project.Task, error) {
	tasks := make([]project.Task, 0)
	q := `SELECT ` + taskColumns + ` FROM task WHERE project_id = ANY($1) ORDER BY created_at, id`
	if err := repo.db.SelectContext(ctx, &tasks, q, pq.Array(projectIDs)); err != nil {
		return nil, errors.Wrap(err, "querying tasks")
	}
	return tasks, nil
}

func (repo *projectRepository) UpdateTask(ctx context.Context, id int64, fn func(p project.Project, t *project.Task) error) (project.Task, error) {
	var t project.Task
	err := withTx(ctx, repo.db, func(tx *sqlx.Tx) error {
		var (
			p   project.Project
			err error
		)
		if p, t, err = lockTask(ctx, tx, id); err != nil {
			return err
		}
		if err = fn(p, &t); err != nil {
			return err
		}
		q := `UPDATE task SET title = $2, description = $3, status = $4, updated_at = $5 WHERE id = $1`
		_, err = tx.ExecContext(ctx, q, t.ID, t.Title, t.Description, t.Status, t.UpdatedAt)
		return errors.Wrap(err, "updating task")
	})
	if err != nil {
		return project.Task{}, err
	}
	return t, nil
}
