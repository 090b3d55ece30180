// Package testutil wires the application on in-memory storage for tests.
package testutil

import (
	"context"
	"io"
	"log"
	"testing"
	"time"

	ut "github.com/go-playground/universal-translator"
	"github.com/go-playground/validator/v10"

	"github.com/devShreyas21/studentPortal/core"
	"github.com/devShreyas21/studentPortal/core/activity"
	"github.com/devShreyas21/studentPortal/core/auth"
	"github.com/devShreyas21/studentPortal/core/file"
	"github.com/devShreyas21/studentPortal/core/project"
	"github.com/devShreyas21/studentPortal/core/submission"
	"github.com/devShreyas21/studentPortal/core/user"
	appfs "github.com/devShreyas21/studentPortal/fs"
	"github.com/devShreyas21/studentPortal/services/email"
	"github.com/devShreyas21/studentPortal/services/logger"
	"github.com/devShreyas21/studentPortal/storage/database/inmem"
)

type App struct {
	Conf       *core.Config
	DB         *inmemdb.DB
	Logger     *logsvc.RollbarLogger
	Mailer     *emailsvc.ConsoleServiceMock
	Validate   *validator.Validate
	Translator ut.Translator

	UserRepo    user.Repository
	Users       *user.Service
	Activity    *activity.Service
	Auth        *auth.Service
	Projects    *project.Service
	Files       *file.Service
	Submissions *submission.Service
}

// NewApp returns the services backed by a fresh in-memory database.
func NewApp(t *testing.T) *App {
	t.Helper()

	conf := core.NewTestConfig()
	logger := logsvc.NewRollbarLogger(log.New(io.Discard, "", 0), conf)
	logger.Enable(false)
	core.ParseEmailTemplates(appfs.FS, logger)

	translator := core.NewTranslator()
	validate := validator.New()
	core.InitValidators(validate, translator)
	user.InitValidators(validate, translator)

	db := inmemdb.Open()
	mailer := emailsvc.NewConsoleServiceMock(logger, conf)

	app := &App{
		Conf:       conf,
		DB:         db,
		Logger:     logger,
		Mailer:     mailer,
		Validate:   validate,
		Translator: translator,
		UserRepo:   inmemdb.NewUserRepository(db),
	}
	app.Users = user.NewService(app.UserRepo)
	app.Activity = activity.NewService(inmemdb.NewActivityRepository(db), logger)
	app.Auth = auth.NewService(conf, app.Users, app.Activity)
	app.Projects = project.NewService(inmemdb.NewProjectRepository(db), app.Users, mailer, app.Activity)
	app.Files = file.NewService(inmemdb.NewFileStore(db), conf.Upload.MaxSize, app.Activity)
	app.Submissions = submission.NewService(
		inmemdb.NewSubmissionRepository(db), app.Projects, app.Users, app.Files, mailer, app.Activity,
	)
	return app
}

// CreateUser stores a user directly through the repository, bypassing validation.
func CreateUser(t *testing.T, repo user.Repository, name, email, pwd string, role user.Role, createdAt ...time.Time) user.User {
	t.Helper()

	tstamp := time.Now().UTC()
	if len(createdAt) > 0 {
		tstamp = createdAt[0].UTC()
	}
	usr := user.User{
		Name:      name,
		Email:     email,
		Role:      role,
		CreatedAt: tstamp,
		UpdatedAt: tstamp,
	}
	if pwd == "" {
		pwd = "Secret-Pwd-123"
	}
	if err := usr.SetPassword(pwd); err != nil {
		t.Fatalf("CreateUser() failed: %v", err)
	}
	usr, err := repo.CreateUser(context.Background(), usr)
	if err != nil {
		t.Fatalf("CreateUser() failed: %v", err)
	}
	return usr
}

// CreateProject creates a project with `tasks` task titles through the service.
func CreateProject(t *testing.T, svc *project.Service, teacherID int64, title string, studentIDs []int64, tasks ...string) (project.Project, []project.Task) {
	t.Helper()

	ctx := context.Background()
	p, err := svc.CreateProject(ctx, teacherID, project.NewProject{Title: title, Description: title + " description", StudentIDs: studentIDs})
	if err != nil {
		t.Fatalf("CreateProject() failed: %v", err)
	}
	created := make([]project.Task, 0, len(tasks))
	for _, tt := range tasks {
		task, err := svc.AddTask(ctx, teacherID, project.NewTask{ProjectID: p.ID, Title: tt})
		if err != nil {
			t.Fatalf("AddTask() failed: %v", err)
		}
		created = append(created, task)
	}
	return p, created
}
