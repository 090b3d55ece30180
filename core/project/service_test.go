package project_test

import (
	"context"
	"testing"

	"github.com/pkg/errors"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/devShreyas21/studentPortal/core"
	"github.com/devShreyas21/studentPortal/core/project"
	"github.com/devShreyas21/studentPortal/core/user"
	"github.com/devShreyas21/studentPortal/testutil"
)

func TestService_CreateProject(t *testing.T) {
	app := testutil.NewApp(t)
	ctx := context.Background()

	teacher := testutil.CreateUser(t, app.UserRepo, "Teacher", "teacher@test.cd", "", user.RoleTeacher)
	std := testutil.CreateUser(t, app.UserRepo, "Student", "std@test.cd", "", user.RoleStudent)
	other := testutil.CreateUser(t, app.UserRepo, "Other Teacher", "other@test.cd", "", user.RoleTeacher)

	tests := []struct {
		name      string
		np        project.NewProject
		wantField string
	}{
		{name: "no students", np: project.NewProject{Title: "Thesis"}, wantField: "students"},
		{name: "unknown student", np: project.NewProject{Title: "Thesis", StudentIDs: []int64{std.ID, 999}}, wantField: "students"},
		{name: "non-student user", np: project.NewProject{Title: "Thesis", StudentIDs: []int64{other.ID}}, wantField: "students"},
		{name: "blank title", np: project.NewProject{Title: "  ", StudentIDs: []int64{std.ID}}, wantField: "title"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := app.Projects.CreateProject(ctx, teacher.ID, tt.np)
			require.Error(t, err)

			var verr *core.ValidationError
			require.True(t, errors.As(err, &verr), "want ValidationError, got %v", err)
			require.Len(t, verr.Fields, 1)
			assert.Equal(t, tt.wantField, verr.Fields[0].Field)
		})
	}

	t.Run("duplicates collapsed and listed to the student", func(t *testing.T) {
		app.Mailer.Reset()
		p, err := app.Projects.CreateProject(ctx, teacher.ID, project.NewProject{
			Title:       " Thesis ",
			Description: "final year",
			StudentIDs:  []int64{std.ID, std.ID},
		})
		require.NoError(t, err)
		assert.Equal(t, "Thesis", p.Title)
		assert.Equal(t, []int64{std.ID}, p.StudentIDs)
		assert.Equal(t, project.StatusActive, p.Status)

		overviews, err := app.Projects.ListForStudent(ctx, std.ID)
		require.NoError(t, err)
		require.Len(t, overviews, 1)
		assert.Equal(t, p.ID, overviews[0].Project.ID)
		assert.Empty(t, overviews[0].Tasks)

		sent := app.Mailer.SentMessages()
		require.Len(t, sent, 1)
		assert.Equal(t, std.Email, sent[0].To[0].Address)
		assert.Contains(t, sent[0].TextContent, "Thesis")
		assert.Contains(t, sent[0].TextContent, "Teacher")
	})
}

func TestService_ownership(t *testing.T) {
	app := testutil.NewApp(t)
	ctx := context.Background()

	teacher := testutil.CreateUser(t, app.UserRepo, "Teacher", "teacher@test.cd", "", user.RoleTeacher)
	intruder := testutil.CreateUser(t, app.UserRepo, "Intruder", "intruder@test.cd", "", user.RoleTeacher)
	std := testutil.CreateUser(t, app.UserRepo, "Student", "std@test.cd", "", user.RoleStudent)
	p, tasks := testutil.CreateProject(t, app.Projects, teacher.ID, "Thesis", []int64{std.ID}, "Chapter 1")

	_, err := app.Projects.EditProject(ctx, intruder.ID, p.ID, project.UpdateProject{Title: "x", Description: "y"})
	assert.Equal(t, project.ErrNotOwner, errors.Cause(err))

	err = app.Projects.DeleteProject(ctx, intruder.ID, p.ID)
	assert.Equal(t, project.ErrNotOwner, errors.Cause(err))

	_, err = app.Projects.AddTask(ctx, intruder.ID, project.NewTask{ProjectID: p.ID, Title: "x"})
	assert.Equal(t, project.ErrNotOwner, errors.Cause(err))

	_, err = app.Projects.EditTask(ctx, intruder.ID, tasks[0].ID, project.UpdateTask{Title: "x"})
	assert.Equal(t, project.ErrNotOwner, errors.Cause(err))

	err = app.Projects.DeleteTask(ctx, intruder.ID, tasks[0].ID)
	assert.Equal(t, project.ErrNotOwner, errors.Cause(err))

	_, err = app.Projects.EditProject(ctx, teacher.ID, 404, project.UpdateProject{Title: "x", Description: "y"})
	assert.Equal(t, project.ErrNotFound, errors.Cause(err))

	_, err = app.Projects.EditTask(ctx, teacher.ID, 404, project.UpdateTask{Title: "x"})
	assert.Equal(t, project.ErrTaskNotFound, errors.Cause(err))
}

func TestService_softDelete(t *testing.T) {
	app := testutil.NewApp(t)
	ctx := context.Background()

	teacher := testutil.CreateUser(t, app.UserRepo, "Teacher", "teacher@test.cd", "", user.RoleTeacher)
	std := testutil.CreateUser(t, app.UserRepo, "Student", "std@test.cd", "", user.RoleStudent)
	p, tasks := testutil.CreateProject(t, app.Projects, teacher.ID, "Thesis", []int64{std.ID}, "Chapter 1", "Chapter 2")

	// edit then delete a task
	task, err := app.Projects.EditTask(ctx, teacher.ID, tasks[0].ID, project.UpdateTask{Title: "Intro", Description: "d"})
	require.NoError(t, err)
	assert.Equal(t, project.StatusEdited, task.Status)

	require.NoError(t, app.Projects.DeleteTask(ctx, teacher.ID, tasks[1].ID))
	require.NoError(t, app.Projects.DeleteTask(ctx, teacher.ID, tasks[1].ID), "deleting twice is a no-op")

	_, err = app.Projects.EditTask(ctx, teacher.ID, tasks[1].ID, project.UpdateTask{Title: "x"})
	assert.Equal(t, project.ErrAlreadyDeleted, errors.Cause(err))

	// edit then delete the project
	p, err = app.Projects.EditProject(ctx, teacher.ID, p.ID, project.UpdateProject{Title: "Thesis v2", Description: "new"})
	require.NoError(t, err)
	assert.True(t, p.IsEdited())

	require.NoError(t, app.Projects.DeleteProject(ctx, teacher.ID, p.ID))
	require.NoError(t, app.Projects.DeleteProject(ctx, teacher.ID, p.ID), "deleting twice is a no-op")

	_, err = app.Projects.AddTask(ctx, teacher.ID, project.NewTask{ProjectID: p.ID, Title: "Chapter 3"})
	assert.Equal(t, project.ErrAlreadyDeleted, errors.Cause(err))

	_, err = app.Projects.EditProject(ctx, teacher.ID, p.ID, project.UpdateProject{Title: "x", Description: "y"})
	assert.Equal(t, project.ErrAlreadyDeleted, errors.Cause(err))

	_, err = app.Projects.EditTask(ctx, teacher.ID, tasks[0].ID, project.UpdateTask{Title: "x"})
	assert.Equal(t, project.ErrAlreadyDeleted, errors.Cause(err), "tasks of a deleted project are read-only")

	// still listed, with flags
	for _, list := range []func(context.Context, int64) ([]project.Overview, error){
		func(ctx context.Context, _ int64) ([]project.Overview, error) { return app.Projects.ListForTeacher(ctx, teacher.ID) },
		func(ctx context.Context, _ int64) ([]project.Overview, error) { return app.Projects.ListForStudent(ctx, std.ID) },
	} {
		overviews, err := list(ctx, 0)
		require.NoError(t, err)
		require.Len(t, overviews, 1)
		assert.True(t, overviews[0].Project.IsDeleted())
		assert.Equal(t, "Thesis v2", overviews[0].Project.Title)
		require.Len(t, overviews[0].Tasks, 2)
		assert.True(t, overviews[0].Tasks[0].IsEdited())
		assert.True(t, overviews[0].Tasks[1].IsDeleted())
	}
}

func TestService_listing(t *testing.T) {
	app := testutil.NewApp(t)
	ctx := context.Background()

	teacher := testutil.CreateUser(t, app.UserRepo, "Teacher", "teacher@test.cd", "", user.RoleTeacher)
	other := testutil.CreateUser(t, app.UserRepo, "Other", "other@test.cd", "", user.RoleTeacher)
	app.DB.SetSequence("user", 6)
	std7 := testutil.CreateUser(t, app.UserRepo, "Seven", "seven@test.cd", "", user.RoleStudent)
	std8 := testutil.CreateUser(t, app.UserRepo, "Eight", "eight@test.cd", "", user.RoleStudent)
	require.Equal(t, int64(7), std7.ID)

	p1, _ := testutil.CreateProject(t, app.Projects, teacher.ID, "P1", []int64{7})
	p2, _ := testutil.CreateProject(t, app.Projects, teacher.ID, "P2", []int64{std7.ID, std8.ID})
	p3, _ := testutil.CreateProject(t, app.Projects, other.ID, "P3", []int64{std8.ID})

	ids := func(overviews []project.Overview) []int64 {
		res := make([]int64, 0, len(overviews))
		for _, o := range overviews {
			res = append(res, o.Project.ID)
		}
		return res
	}

	got, err := app.Projects.ListForStudent(ctx, 7)
	require.NoError(t, err)
	assert.Equal(t, []int64{p2.ID, p1.ID}, ids(got), "newest first")

	got, err = app.Projects.ListForStudent(ctx, std8.ID)
	require.NoError(t, err)
	assert.Equal(t, []int64{p3.ID, p2.ID}, ids(got))

	got, err = app.Projects.ListForTeacher(ctx, teacher.ID)
	require.NoError(t, err)
	assert.Equal(t, []int64{p2.ID, p1.ID}, ids(got))

	got, err = app.Projects.ListForTeacher(ctx, 12345)
	require.NoError(t, err)
	assert.Empty(t, got)
}

func TestService_ownerDeleted(t *testing.T) {
	app := testutil.NewApp(t)
	ctx := context.Background()

	teacher := testutil.CreateUser(t, app.UserRepo, "Teacher", "teacher@test.cd", "", user.RoleTeacher)
	std := testutil.CreateUser(t, app.UserRepo, "Student", "std@test.cd", "", user.RoleStudent)

	p, err := app.Projects.CreateProject(ctx, teacher.ID, project.NewProject{Title: "Thesis", StudentIDs: []int64{std.ID}})
	require.NoError(t, err)
	require.NoError(t, app.Users.Delete(ctx, teacher.ID))

	overviews, err := app.Projects.ListForStudent(ctx, std.ID)
	require.NoError(t, err)
	if assert.Len(t, overviews, 1) {
		assert.Equal(t, p.ID, overviews[0].Project.ID)
		assert.Equal(t, teacher.ID, overviews[0].Project.OwnerID)
	}
}
