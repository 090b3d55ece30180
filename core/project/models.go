package project

import (
	"time"

	"github.com/devShreyas21/studentPortal/core"
)

// Status is the lifecycle tag shared by projects and tasks.
// StatusDeleted is terminal.
type Status string

const (
	StatusActive  Status = "active"
	StatusEdited  Status = "edited"
	StatusDeleted Status = "deleted"
)

func (s Status) IsEdited() bool  { return s == StatusEdited }
func (s Status) IsDeleted() bool { return s == StatusDeleted }

type Project struct {
	ID          int64     `json:"id" db:"id"`
	Title       string    `json:"title" db:"title"`
	Description string    `json:"description" db:"description"`
	OwnerID     int64     `json:"owner_id" db:"owner_id"`
	StudentIDs  []int64   `json:"student_ids" db:"-"`
	Status      Status    `json:"status" db:"status"`
	CreatedAt   time.Time `json:"created_at" db:"created_at"` // UTC
	UpdatedAt   time.Time `json:"updated_at" db:"updated_at"` // UTC
}

func (p Project) IsEdited() bool  { return p.Status.IsEdited() }
func (p Project) IsDeleted() bool { return p.Status.IsDeleted() }

func (p Project) HasStudent(id int64) bool {
	for _, sid := range p.StudentIDs {
		if sid == id {
			return true
		}
	}
	return false
}

// CheckOwner fails with ErrNotOwner unless `teacherID` owns the project.
func (p Project) CheckOwner(teacherID int64) error {
	if p.OwnerID != teacherID {
		return ErrNotOwner
	}
	return nil
}

// CheckMutable fails unless `teacherID` owns the project and it is not deleted.
func (p Project) CheckMutable(teacherID int64) error {
	if err := p.CheckOwner(teacherID); err != nil {
		return err
	}
	if p.IsDeleted() {
		return ErrAlreadyDeleted
	}
	return nil
}

type Task struct {
	ID          int64     `json:"id" db:"id"`
	ProjectID   int64     `json:"project_id" db:"project_id"`
	Title       string    `json:"title" db:"title"`
	Description string    `json:"description" db:"description"`
	Status      Status    `json:"status" db:"status"`
	CreatedAt   time.Time `json:"created_at" db:"created_at"` // UTC
	UpdatedAt   time.Time `json:"updated_at" db:"updated_at"` // UTC
}

func (t Task) IsEdited() bool  { return t.Status.IsEdited() }
func (t Task) IsDeleted() bool { return t.Status.IsDeleted() }

// Overview is a project with its tasks, as listed to teachers and students.
type Overview struct {
	Project Project
	Tasks   []Task
}

// NewProject contains information needed to create a new Project.
type NewProject struct {
	Title       string  `json:"title" validate:"notblank,max=200"`
	Description string  `json:"description" validate:"max=5000"`
	StudentIDs  []int64 `json:"students" validate:"required,min=1"`
}

func (np *NewProject) Clean() {
	np.Title = core.CleanString(np.Title)
	np.Description = core.CleanString(np.Description)
}

// UpdateProject contains the editable fields of a Project.
type UpdateProject struct {
	Title       string `json:"title" validate:"notblank,max=200"`
	Description string `json:"description" validate:"notblank,max=5000"`
}

func (up *UpdateProject) Clean() {
	up.Title = core.CleanString(up.Title)
	up.Description = core.CleanString(up.Description)
}

// NewTask contains information needed to add a Task to a Project.
type NewTask struct {
	ProjectID   int64  `json:"project_id" validate:"required"`
	Title       string `json:"title" validate:"notblank,max=200"`
	Description string `json:"description" validate:"max=5000"`
}

func (nt *NewTask) Clean() {
	nt.Title = core.CleanString(nt.Title)
	nt.Description = core.CleanString(nt.Description)
}

// UpdateTask contains the editable fields of a Task.
type UpdateTask struct {
	Title       string `json:"title" validate:"notblank,max=200"`
	Description string `json:"description" validate:"max=5000"`
}

func (ut *UpdateTask) Clean() {
	ut.Title = core.CleanString(ut.Title)
	ut.Description = core.CleanString(ut.Description)
}

// QueryFilter applies AND on its non-zero fields.
type QueryFilter struct {
	OwnerID   int64
	StudentID int64
	IDs       []int64
}
