package project

import (
	"context"
	"net/mail"
	"time"

	"github.com/pkg/errors"
	"github.com/samber/lo"

	"github.com/devShreyas21/studentPortal/core"
	"github.com/devShreyas21/studentPortal/core/user"
)

var (
	// errors
	ErrNotFound       = errors.New("project not found")
	ErrTaskNotFound   = errors.New("task not found")
	ErrNotOwner       = errors.New("you do not own this project")
	ErrAlreadyDeleted = errors.New("this item has been deleted")
)

type (
	// Repository persists projects and tasks. The Update*/CreateTask callbacks run while the
	// affected rows are locked so the checks they perform hold at write time.
	Repository interface {
		CreateProject(ctx context.Context, p Project) (Project, error)
		GetProject(ctx context.Context, id int64) (Project, error)
		// QueryProjects returns the matching projects, newest first.
		QueryProjects(ctx context.Context, filter QueryFilter) ([]Project, error)
		UpdateProject(ctx context.Context, id int64, fn func(p *Project) error) (Project, error)
		CreateTask(ctx context.Context, t Task, check func(p Project) error) (Task, error)
		GetTask(ctx context.Context, id int64) (Task, error)
		// QueryTasks returns the tasks of the given projects, oldest first.
		QueryTasks(ctx context.Context, projectIDs []int64) ([]Task, error)
		UpdateTask(ctx context.Context, id int64, fn func(p Project, t *Task) error) (Task, error)
	}

	Service struct {
		repo     Repository
		users    *user.Service
		mailer   core.EmailService
		activity core.ActivityRecorder
	}
)

func NewService(repo Repository, users *user.Service, mailer core.EmailService, activity core.ActivityRecorder) *Service {
	return &Service{
		repo:     repo,
		users:    users,
		mailer:   mailer,
		activity: activity,
	}
}

// CreateProject creates a project owned by `teacherID` and notifies the assigned students.
func (svc *Service) CreateProject(ctx context.Context, teacherID int64, np NewProject) (Project, error) {
	np.Clean()
	if np.Title == "" {
		return Project{}, core.NewValidationError(nil, core.FieldError{Field: "title", Error: "this field cannot be blank"})
	}
	students, err := svc.users.GetStudents(ctx, "students", np.StudentIDs)
	if err != nil {
		return Project{}, err
	}

	now := time.Now().UTC()
	p, err := svc.repo.CreateProject(ctx, Project{
		Title:       np.Title,
		Description: np.Description,
		OwnerID:     teacherID,
		StudentIDs:  lo.Uniq(np.StudentIDs),
		Status:      StatusActive,
		CreatedAt:   now,
		UpdatedAt:   now,
	})
	if err != nil {
		return Project{}, errors.Wrap(err, "creating project")
	}

	svc.activity.Record(ctx, teacherID, "project.create")
	svc.notifyAssigned(ctx, p, students)
	return p, nil
}

// EditProject replaces title and description and marks the project edited.
func (svc *Service) EditProject(ctx context.Context, teacherID, projectID int64, up UpdateProject) (Project, error) {
	up.Clean()
	p, err := svc.repo.UpdateProject(ctx, projectID, func(p *Project) error {
		if err := p.CheckMutable(teacherID); err != nil {
			return err
		}
		p.Title = up.Title
		p.Description = up.Description
		p.Status = StatusEdited
		p.UpdatedAt = time.Now().UTC()
		return nil
	})
	if err != nil {
		return Project{}, err
	}
	svc.activity.Record(ctx, teacherID, "project.edit")
	return p, nil
}

// DeleteProject soft-deletes the project. Deleting it again is a no-op.
func (svc *Service) DeleteProject(ctx context.Context, teacherID, projectID int64) error {
	_, err := svc.repo.UpdateProject(ctx, projectID, func(p *Project) error {
		if err := p.CheckOwner(teacherID); err != nil {
			return err
		}
		if !p.IsDeleted() {
			p.Status = StatusDeleted
			p.UpdatedAt = time.Now().UTC()
		}
		return nil
	})
	if err != nil {
		return err
	}
	svc.activity.Record(ctx, teacherID, "project.delete")
	return nil
}

func (svc *Service) AddTask(ctx context.Context, teacherID int64, nt NewTask) (Task, error) {
	nt.Clean()
	now := time.Now().UTC()
	t, err := svc.repo.CreateTask(ctx, Task{
		ProjectID:   nt.ProjectID,
		Title:       nt.Title,
		Description: nt.Description,
		Status:      StatusActive,
		CreatedAt:   now,
		UpdatedAt:   now,
	}, func(p Project) error {
		return p.CheckMutable(teacherID)
	})
	if err != nil {
		return Task{}, err
	}
	svc.activity.Record(ctx, teacherID, "task.add")
	return t, nil
}

func (svc *Service) EditTask(ctx context.Context, teacherID, taskID int64, ut UpdateTask) (Task, error) {
	ut.Clean()
	t, err := svc.repo.UpdateTask(ctx, taskID, func(p Project, t *Task) error {
		if err := p.CheckMutable(teacherID); err != nil {
			return err
		}
		if t.IsDeleted() {
			return ErrAlreadyDeleted
		}
		t.Title = ut.Title
		t.Description = ut.Description
		t.Status = StatusEdited
		t.UpdatedAt = time.Now().UTC()
		return nil
	})
	if err != nil {
		return Task{}, err
	}
	svc.activity.Record(ctx, teacherID, "task.edit")
	return t, nil
}

// DeleteTask soft-deletes the task. Deleting it again is a no-op, but a task of a deleted
// project can no longer be touched.
func (svc *Service) DeleteTask(ctx context.Context, teacherID, taskID int64) error {
	_, err := svc.repo.UpdateTask(ctx, taskID, func(p Project, t *Task) error {
		if err := p.CheckMutable(teacherID); err != nil {
			return err
		}
		if !t.IsDeleted() {
			t.Status = StatusDeleted
			t.UpdatedAt = time.Now().UTC()
		}
		return nil
	})
	if err != nil {
		return err
	}
	svc.activity.Record(ctx, teacherID, "task.delete")
	return nil
}

func (svc *Service) GetProject(ctx context.Context, id int64) (Project, error) {
	return svc.repo.GetProject(ctx, id)
}

// GetTask returns a task along with its project.
func (svc *Service) GetTask(ctx context.Context, id int64) (Project, Task, error) {
	t, err := svc.repo.GetTask(ctx, id)
	if err != nil {
		return Project{}, Task{}, err
	}
	p, err := svc.repo.GetProject(ctx, t.ProjectID)
	if err != nil {
		return Project{}, Task{}, errors.Wrap(err, "finding task project")
	}
	return p, t, nil
}

// ListForTeacher returns every project owned by `teacherID`, deleted ones included.
func (svc *Service) ListForTeacher(ctx context.Context, teacherID int64) ([]Overview, error) {
	return svc.overviews(ctx, QueryFilter{OwnerID: teacherID})
}

// ListForStudent returns every project `studentID` is assigned to, deleted ones included.
func (svc *Service) ListForStudent(ctx context.Context, studentID int64) ([]Overview, error) {
	return svc.overviews(ctx, QueryFilter{StudentID: studentID})
}

func (svc *Service) overviews(ctx context.Context, filter QueryFilter) ([]Overview, error) {
	projects, err := svc.repo.QueryProjects(ctx, filter)
	if err != nil {
		return nil, errors.Wrap(err, "querying projects")
	}
	if len(projects) == 0 {
		return []Overview{}, nil
	}

	ids := lo.Map(projects, func(p Project, _ int) int64 { return p.ID })
	tasks, err := svc.repo.QueryTasks(ctx, ids)
	if err != nil {
		return nil, errors.Wrap(err, "querying tasks")
	}
	byProject := lo.GroupBy(tasks, func(t Task) int64 { return t.ProjectID })

	return lo.Map(projects, func(p Project, _ int) Overview {
		ts := byProject[p.ID]
		if ts == nil {
			ts = []Task{}
		}
		return Overview{Project: p, Tasks: ts}
	}), nil
}

type assignedData struct {
	StudentName  string
	TeacherName  string
	ProjectTitle string
}

func (svc *Service) notifyAssigned(ctx context.Context, p Project, students []user.User) {
	teacherName := ""
	if teacher, err := svc.users.GetByID(ctx, p.OwnerID); err == nil {
		teacherName = teacher.Name
	}

	msgs := make([]*core.EmailMessage, 0, len(students))
	for _, std := range students {
		msgs = append(msgs, &core.EmailMessage{
			To:           []mail.Address{{Name: std.Name, Address: std.Email}},
			Subject:      "New project: " + p.Title,
			TemplateName: "project_assigned",
			TemplateData: assignedData{
				StudentName:  std.Name,
				TeacherName:  teacherName,
				ProjectTitle: p.Title,
			},
		})
	}
	svc.mailer.SendMessages(msgs...)
}
