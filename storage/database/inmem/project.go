package inmemdb

import (
	"context"
	"sort"

	"github.com/samber/lo"

	"github.com/devShreyas21/studentPortal/core/project"
)

type projectRepository struct {
	db *DB
}

var _ project.Repository = (*projectRepository)(nil) // interface compliance check

func NewProjectRepository(db *DB) *projectRepository {
	return &projectRepository{db: db}
}

func (repo *projectRepository) CreateProject(_ context.Context, p project.Project) (project.Project, error) {
	repo.db.mu.Lock()
	defer repo.db.mu.Unlock()

	p.ID = repo.db.nextID("project")
	p.StudentIDs = cloneIDs(p.StudentIDs)
	repo.db.projects[p.ID] = p
	return p, nil
}

func (repo *projectRepository) GetProject(_ context.Context, id int64) (project.Project, error) {
	repo.db.mu.RLock()
	defer repo.db.mu.RUnlock()
	return repo.db.getProject(id)
}

func (db *DB) getProject(id int64) (project.Project, error) {
	p, ok := db.projects[id]
	if !ok {
		return project.Project{}, project.ErrNotFound
	}
	p.StudentIDs = cloneIDs(p.StudentIDs)
	return p, nil
}

// getTask returns a task with its project.
func (db *DB) getTask(id int64) (project.Project, project.Task, error) {
	t, ok := db.tasks[id]
	if !ok {
		return project.Project{}, project.Task{}, project.ErrTaskNotFound
	}
	p, err := db.getProject(t.ProjectID)
	if err != nil {
		return project.Project{}, project.Task{}, err
	}
	return p, t, nil
}

func (repo *projectRepository) QueryProjects(_ context.Context, filter project.QueryFilter) ([]project.Project, error) {
	repo.db.mu.RLock()
	defer repo.db.mu.RUnlock()

	projects := make([]project.Project, 0)
	for _, p := range repo.db.projects {
		if filter.OwnerID != 0 && p.OwnerID != filter.OwnerID {
			continue
		}
		if filter.StudentID != 0 && !p.HasStudent(filter.StudentID) {
			continue
		}
		if len(filter.IDs) > 0 && !lo.Contains(filter.IDs, p.ID) {
			continue
		}
		p.StudentIDs = cloneIDs(p.StudentIDs)
		projects = append(projects, p)
	}
	sort.Slice(projects, func(i, j int) bool {
		if projects[i].CreatedAt.Equal(projects[j].CreatedAt) {
			return projects[i].ID > projects[j].ID
		}
		return projects[i].CreatedAt.After(projects[j].CreatedAt)
	})
	return projects, nil
}

func (repo *projectRepository) UpdateProject(_ context.Context, id int64, fn func(p *project.Project) error) (project.Project, error) {
	repo.db.mu.Lock()
	defer repo.db.mu.Unlock()

	p, err := repo.db.getProject(id)
	if err != nil {
		return project.Project{}, err
	}
	if err = fn(&p); err != nil {
		return project.Project{}, err
	}
	repo.db.projects[id] = p
	return p, nil
}

func (repo *projectRepository) CreateTask(_ context.Context, t project.Task, check func(p project.Project) error) (project.Task, error) {
	repo.db.mu.Lock()
	defer repo.db.mu.Unlock()

	p, err := repo.db.getProject(t.ProjectID)
	if err != nil {
		return project.Task{}, err
	}
	if err = check(p); err != nil {
		return project.Task{}, err
	}
	t.ID = repo.db.nextID("task")
	repo.db.tasks[t.ID] = t
	return t, nil
}

func (repo *projectRepository) GetTask(_ context.Context, id int64) (project.Task, error) {
	repo.db.mu.RLock()
	defer repo.db.mu.RUnlock()

	t, ok := repo.db.tasks[id]
	if !ok {
		return project.Task{}, project.ErrTaskNotFound
	}
	return t, nil
}

func (repo *projectRepository) QueryTasks(_ context.Context, projectIDs []int64) ([]project.Task, error) {
	repo.db.mu.RLock()
	defer repo.db.mu.RUnlock()

	tasks := make([]project.Task, 0)
	for _, t := range repo.db.tasks {
		if lo.Contains(projectIDs, t.ProjectID) {
			tasks = append(tasks, t)
		}
	}
	sort.Slice(tasks, func(i, j int) bool { return tasks[i].ID < tasks[j].ID })
	return tasks, nil
}

func (repo *projectRepository) UpdateTask(_ context.Context, id int64, fn func(p project.Project, t *project.Task) error) (project.Task, error) {
	repo.db.mu.Lock()
	defer repo.db.mu.Unlock()

	p, t, err := repo.db.getTask(id)
	if err != nil {
		return project.Task{}, err
	}
	if err = fn(p, &t); err != nil {
		return project.Task{}, err
	}
	repo.db.tasks[id] = t
	return t, nil
}
