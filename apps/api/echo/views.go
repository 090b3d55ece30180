package echoapi

import (
	"time"

	"github.com/jinzhu/copier"
	"github.com/pkg/errors"
	"github.com/samber/lo"

	"github.com/devShreyas21/studentPortal/core/project"
	"github.com/devShreyas21/studentPortal/core/submission"
)

// Views expose the status tag along with the is_edited/is_deleted flags the UI renders markers from.
// IsEdited and IsDeleted are filled by copier from the methods of the same name.
type (
	projectView struct {
		ID          int64          `json:"id"`
		Title       string         `json:"title"`
		Description string         `json:"description"`
		OwnerID     int64          `json:"owner_id"`
		StudentIDs  []int64        `json:"student_ids"`
		Status      project.Status `json:"status"`
		IsEdited    bool           `json:"is_edited"`
		IsDeleted   bool           `json:"is_deleted"`
		CreatedAt   time.Time      `json:"created_at"`
		UpdatedAt   time.Time      `json:"updated_at"`
		Tasks       interface{}    `json:"tasks,omitempty"` // []teacherTaskView | []studentTaskView
	}

	taskView struct {
		ID          int64          `json:"id"`
		ProjectID   int64          `json:"project_id"`
		Title       string         `json:"title"`
		Description string         `json:"description"`
		Status      project.Status `json:"status"`
		IsEdited    bool           `json:"is_edited"`
		IsDeleted   bool           `json:"is_deleted"`
		CreatedAt   time.Time      `json:"created_at"`
		UpdatedAt   time.Time      `json:"updated_at"`
	}

	teacherTaskView struct {
		taskView
		Submissions []submission.Submission `json:"submissions"`
	}

	studentTaskView struct {
		taskView
		Submission *submission.Submission `json:"submission"`
	}
)

func newProjectView(p project.Project) (projectView, error) {
	var view projectView
	if err := copier.Copy(&view, &p); err != nil {
		return projectView{}, errors.Wrap(err, "copying project")
	}
	if view.StudentIDs == nil {
		view.StudentIDs = []int64{}
	}
	return view, nil
}

func newTaskView(t project.Task) (taskView, error) {
	var view taskView
	if err := copier.Copy(&view, &t); err != nil {
		return taskView{}, errors.Wrap(err, "copying task")
	}
	return view, nil
}

func taskIDs(overviews []project.Overview) []int64 {
	ids := make([]int64, 0, len(overviews))
	for _, o := range overviews {
		for _, t := range o.Tasks {
			ids = append(ids, t.ID)
		}
	}
	return ids
}

// teacherProjectViews nests every submission under its task.
func teacherProjectViews(overviews []project.Overview, subs []submission.Submission) ([]projectView, error) {
	byTask := lo.GroupBy(subs, func(s submission.Submission) int64 { return s.TaskID })

	views := make([]projectView, 0, len(overviews))
	for _, o := range overviews {
		view, err := newProjectView(o.Project)
		if err != nil {
			return nil, err
		}
		tasks := make([]teacherTaskView, 0, len(o.Tasks))
		for _, t := range o.Tasks {
			tv, err := newTaskView(t)
			if err != nil {
				return nil, err
			}
			tsubs, ok := byTask[t.ID]
			if !ok {
				tsubs = []submission.Submission{}
			}
			tasks = append(tasks, teacherTaskView{taskView: tv, Submissions: tsubs})
		}
		view.Tasks = tasks
		views = append(views, view)
	}
	return views, nil
}

// studentProjectViews nests the student's own submission (or null) under each task.
func studentProjectViews(overviews []project.Overview, subs []submission.Submission) ([]projectView, error) {
	byTask := lo.KeyBy(subs, func(s submission.Submission) int64 { return s.TaskID })

	views := make([]projectView, 0, len(overviews))
	for _, o := range overviews {
		view, err := newProjectView(o.Project)
		if err != nil {
			return nil, err
		}
		tasks := make([]studentTaskView, 0, len(o.Tasks))
		for _, t := range o.Tasks {
			tv, err := newTaskView(t)
			if err != nil {
				return nil, err
			}
			stv := studentTaskView{taskView: tv}
			if s, ok := byTask[t.ID]; ok {
				stv.Submission = &s
			}
			tasks = append(tasks, stv)
		}
		view.Tasks = tasks
		views = append(views, view)
	}
	return views, nil
}
