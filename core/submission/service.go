package submission

import (
	"context"
	"net/mail"
	"time"
	"unicode/utf8"

	"github.com/pkg/errors"

	"github.com/devShreyas21/studentPortal/core"
	"github.com/devShreyas21/studentPortal/core/project"
	"github.com/devShreyas21/studentPortal/core/user"
)

var (
	// errors
	ErrNotAssigned     = errors.New("you are not assigned to this project")
	ErrTaskUnavailable = errors.New("this task is no longer accepting submissions")
	ErrNoSubmission    = errors.New("no submission found for this student")
	ErrEmptySubmission = errors.New("a submission needs content or a file")
	ErrUnknownFile     = errors.New("file not found")
)

type (
	// Check is run by the repository against the task and its project, both locked,
	// right before a write.
	Check func(p project.Project, t project.Task) error

	Repository interface {
		// Upsert creates or replaces the submission of (s.TaskID, s.StudentID), clearing its grade.
		Upsert(ctx context.Context, s Submission, check Check) (Submission, error)
		// Grade sets the grade of an existing submission or fails with ErrNoSubmission.
		Grade(ctx context.Context, taskID, studentID int64, grade string, gradedAt time.Time, check Check) (Submission, error)
		Get(ctx context.Context, taskID, studentID int64) (Submission, error)
		QueryByTasks(ctx context.Context, taskIDs []int64) ([]Submission, error)
		QueryByStudent(ctx context.Context, studentID int64, taskIDs []int64) ([]Submission, error)
	}

	// FileChecker tells whether an uploaded file exists.
	FileChecker interface {
		Exists(ctx context.Context, id string) (bool, error)
	}

	Service struct {
		repo     Repository
		projects *project.Service
		users    *user.Service
		files    FileChecker
		mailer   core.EmailService
		activity core.ActivityRecorder
	}
)

func NewService(
	repo Repository,
	projects *project.Service,
	users *user.Service,
	files FileChecker,
	mailer core.EmailService,
	activity core.ActivityRecorder,
) *Service {
	return &Service{
		repo:     repo,
		projects: projects,
		users:    users,
		files:    files,
		mailer:   mailer,
		activity: activity,
	}
}

// Submit stores the student's work for a task. A resubmission replaces the previous one and
// drops its grade.
func (svc *Service) Submit(ctx context.Context, studentID int64, ns NewSubmission) (Submission, error) {
	ns.Clean()
	if ns.Content == "" && ns.FileID == nil {
		return Submission{}, core.NewValidationError(ErrEmptySubmission, core.FieldError{
			Field: "content",
			Error: ErrEmptySubmission.Error(),
		})
	}
	if ns.FileID != nil {
		ok, err := svc.files.Exists(ctx, *ns.FileID)
		if err != nil {
			return Submission{}, errors.Wrap(err, "checking file")
		}
		if !ok {
			return Submission{}, core.NewValidationError(ErrUnknownFile, core.FieldError{
				Field: "fileId",
				Error: ErrUnknownFile.Error(),
			})
		}
	}

	s, err := svc.repo.Upsert(ctx, Submission{
		TaskID:      ns.TaskID,
		StudentID:   studentID,
		Content:     ns.Content,
		FileID:      ns.FileID,
		SubmittedAt: time.Now().UTC(),
	}, func(p project.Project, t project.Task) error {
		if !p.HasStudent(studentID) {
			return ErrNotAssigned
		}
		if p.IsDeleted() || t.IsDeleted() {
			return ErrTaskUnavailable
		}
		return nil
	})
	if err != nil {
		return Submission{}, err
	}
	svc.activity.Record(ctx, studentID, "submission.submit")
	return s, nil
}

// Grade marks a student's submission. Only the teacher owning the task's project may grade,
// deleted tasks included.
func (svc *Service) Grade(ctx context.Context, teacherID int64, gi GradeInput) (Submission, error) {
	gi.Clean()
	if gi.Grade == "" {
		return Submission{}, core.NewValidationError(nil, core.FieldError{Field: "grade", Error: "this field cannot be blank"})
	}
	if utf8.RuneCountInString(gi.Grade) > maxGradeLen {
		return Submission{}, core.NewValidationError(nil, core.FieldError{Field: "grade", Error: "grade is too long"})
	}

	var task project.Task
	s, err := svc.repo.Grade(ctx, gi.TaskID, gi.StudentID, gi.Grade, time.Now().UTC(), func(p project.Project, t project.Task) error {
		task = t
		return p.CheckOwner(teacherID)
	})
	if err != nil {
		return Submission{}, err
	}

	svc.activity.Record(ctx, teacherID, "submission.grade")
	svc.notifyGraded(ctx, task, s)
	return s, nil
}

// ListByTask returns all submissions of a task owned by `teacherID`.
func (svc *Service) ListByTask(ctx context.Context, teacherID, taskID int64) ([]Submission, error) {
	p, _, err := svc.projects.GetTask(ctx, taskID)
	if err != nil {
		return nil, err
	}
	if err = p.CheckOwner(teacherID); err != nil {
		return nil, err
	}
	return svc.repo.QueryByTasks(ctx, []int64{taskID})
}

// ForTasks returns the submissions of every student for the given tasks.
func (svc *Service) ForTasks(ctx context.Context, taskIDs []int64) ([]Submission, error) {
	if len(taskIDs) == 0 {
		return []Submission{}, nil
	}
	return svc.repo.QueryByTasks(ctx, taskIDs)
}

// ForStudent returns the submissions of `studentID` for the given tasks.
func (svc *Service) ForStudent(ctx context.Context, studentID int64, taskIDs []int64) ([]Submission, error) {
	if len(taskIDs) == 0 {
		return []Submission{}, nil
	}
	return svc.repo.QueryByStudent(ctx, studentID, taskIDs)
}

func (svc *Service) Get(ctx context.Context, taskID, studentID int64) (Submission, error) {
	return svc.repo.Get(ctx, taskID, studentID)
}

type gradedData struct {
	StudentName string
	TaskTitle   string
	Grade       string
}

func (svc *Service) notifyGraded(ctx context.Context, t project.Task, s Submission) {
	std, err := svc.users.GetByID(ctx, s.StudentID)
	if err != nil || s.Grade == nil {
		return
	}
	svc.mailer.SendMessages(&core.EmailMessage{
		To:           []mail.Address{{Name: std.Name, Address: std.Email}},
		Subject:      "Your submission for " + t.Title + " was graded",
		TemplateName: "submission_graded",
		TemplateData: gradedData{
			StudentName: std.Name,
			TaskTitle:   t.Title,
			Grade:       *s.Grade,
		},
	})
}
