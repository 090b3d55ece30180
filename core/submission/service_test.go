package submission_test

import (
	"bytes"
	"context"
	"fmt"
	"strings"
	"sync"
	"testing"

	"github.com/pkg/errors"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/devShreyas21/studentPortal/core"
	"github.com/devShreyas21/studentPortal/core/project"
	"github.com/devShreyas21/studentPortal/core/submission"
	"github.com/devShreyas21/studentPortal/core/user"
	"github.com/devShreyas21/studentPortal/testutil"
)

type fixture struct {
	app      *testutil.App
	teacher  user.User
	std      user.User
	outsider user.User
	project  project.Project
	tasks    []project.Task
}

func setup(t *testing.T) fixture {
	app := testutil.NewApp(t)
	f := fixture{
		app:      app,
		teacher:  testutil.CreateUser(t, app.UserRepo, "Teacher", "teacher@test.cd", "", user.RoleTeacher),
		std:      testutil.CreateUser(t, app.UserRepo, "Student", "std@test.cd", "", user.RoleStudent),
		outsider: testutil.CreateUser(t, app.UserRepo, "Outsider", "out@test.cd", "", user.RoleStudent),
	}
	f.project, f.tasks = testutil.CreateProject(t, app.Projects, f.teacher.ID, "Thesis", []int64{f.std.ID}, "Chapter 1", "Chapter 2")
	return f
}

func TestService_Submit(t *testing.T) {
	f := setup(t)
	ctx := context.Background()

	uploaded, err := f.app.Files.Upload(ctx, f.std.ID, bytes.NewBufferString("%PDF-1.4 draft"), "draft.pdf", "")
	require.NoError(t, err)
	unknown := "1b4e28ba-2fa1-11d2-883f-0016d3cca427"
	blank := "   "

	tests := []struct {
		name      string
		studentID int64
		ns        submission.NewSubmission
		wantErr   error
		wantField string
	}{
		{name: "unknown task", studentID: f.std.ID, ns: submission.NewSubmission{TaskID: 404, Content: "x"}, wantErr: project.ErrTaskNotFound},
		{name: "not assigned", studentID: f.outsider.ID, ns: submission.NewSubmission{TaskID: f.tasks[0].ID, Content: "x"}, wantErr: submission.ErrNotAssigned},
		{name: "empty", studentID: f.std.ID, ns: submission.NewSubmission{TaskID: f.tasks[0].ID, Content: " ", FileID: &blank}, wantField: "content"},
		{name: "unknown file", studentID: f.std.ID, ns: submission.NewSubmission{TaskID: f.tasks[0].ID, FileID: &unknown}, wantField: "fileId"},
		{name: "file only", studentID: f.std.ID, ns: submission.NewSubmission{TaskID: f.tasks[0].ID, FileID: &uploaded.ID}},
		{name: "content only", studentID: f.std.ID, ns: submission.NewSubmission{TaskID: f.tasks[1].ID, Content: "my answer"}},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			s, err := f.app.Submissions.Submit(ctx, tt.studentID, tt.ns)
			switch {
			case tt.wantErr != nil:
				assert.Equal(t, tt.wantErr, errors.Cause(err))
			case tt.wantField != "":
				var verr *core.ValidationError
				require.True(t, errors.As(err, &verr), "want ValidationError, got %v", err)
				assert.Equal(t, tt.wantField, verr.Fields[0].Field)
			default:
				require.NoError(t, err)
				assert.Equal(t, tt.studentID, s.StudentID)
				assert.Equal(t, tt.ns.TaskID, s.TaskID)
				assert.Nil(t, s.Grade)
			}
		})
	}
}

func TestService_Submit_unavailable(t *testing.T) {
	f := setup(t)
	ctx := context.Background()

	require.NoError(t, f.app.Projects.DeleteTask(ctx, f.teacher.ID, f.tasks[0].ID))
	_, err := f.app.Submissions.Submit(ctx, f.std.ID, submission.NewSubmission{TaskID: f.tasks[0].ID, Content: "late"})
	assert.Equal(t, submission.ErrTaskUnavailable, errors.Cause(err))

	require.NoError(t, f.app.Projects.DeleteProject(ctx, f.teacher.ID, f.project.ID))
	_, err = f.app.Submissions.Submit(ctx, f.std.ID, submission.NewSubmission{TaskID: f.tasks[1].ID, Content: "late"})
	assert.Equal(t, submission.ErrTaskUnavailable, errors.Cause(err))
}

func TestService_Submit_upsert(t *testing.T) {
	f := setup(t)
	ctx := context.Background()
	taskID := f.tasks[0].ID

	const n = 5
	for i := 1; i <= n; i++ {
		_, err := f.app.Submissions.Submit(ctx, f.std.ID, submission.NewSubmission{TaskID: taskID, Content: fmt.Sprintf("v%d", i)})
		require.NoError(t, err)
	}

	subs, err := f.app.Submissions.ListByTask(ctx, f.teacher.ID, taskID)
	require.NoError(t, err)
	require.Len(t, subs, 1)
	assert.Equal(t, fmt.Sprintf("v%d", n), subs[0].Content)
}

func TestService_Submit_concurrent(t *testing.T) {
	f := setup(t)
	ctx := context.Background()
	taskID := f.tasks[0].ID

	var wg sync.WaitGroup
	for i := 0; i < 20; i++ {
		wg.Add(1)
		go func(i int) {
			defer wg.Done()
			_, err := f.app.Submissions.Submit(ctx, f.std.ID, submission.NewSubmission{TaskID: taskID, Content: fmt.Sprintf("v%d", i)})
			assert.NoError(t, err)
		}(i)
	}
	wg.Wait()

	subs, err := f.app.Submissions.ListByTask(ctx, f.teacher.ID, taskID)
	require.NoError(t, err)
	assert.Len(t, subs, 1)
}

func TestService_Grade(t *testing.T) {
	f := setup(t)
	ctx := context.Background()
	taskID := f.tasks[0].ID
	intruder := testutil.CreateUser(t, f.app.UserRepo, "Intruder", "intruder@test.cd", "", user.RoleTeacher)

	_, err := f.app.Submissions.Grade(ctx, f.teacher.ID, submission.GradeInput{TaskID: taskID, StudentID: f.std.ID, Grade: "A"})
	assert.Equal(t, submission.ErrNoSubmission, errors.Cause(err))

	_, err = f.app.Submissions.Submit(ctx, f.std.ID, submission.NewSubmission{TaskID: taskID, Content: "draft"})
	require.NoError(t, err)

	_, err = f.app.Submissions.Grade(ctx, intruder.ID, submission.GradeInput{TaskID: taskID, StudentID: f.std.ID, Grade: "A"})
	assert.Equal(t, project.ErrNotOwner, errors.Cause(err))

	for _, grade := range []string{"", "   ", "this grade is way too long to be a grade at all"} {
		_, err = f.app.Submissions.Grade(ctx, f.teacher.ID, submission.GradeInput{TaskID: taskID, StudentID: f.std.ID, Grade: grade})
		var verr *core.ValidationError
		assert.True(t, errors.As(err, &verr), "grade %q: want ValidationError, got %v", grade, err)
	}

	// the length limit counts characters, not bytes
	accented := strings.Repeat("é", 32)
	s, err := f.app.Submissions.Grade(ctx, f.teacher.ID, submission.GradeInput{TaskID: taskID, StudentID: f.std.ID, Grade: accented})
	require.NoError(t, err)
	assert.Equal(t, accented, *s.Grade)
	_, err = f.app.Submissions.Grade(ctx, f.teacher.ID, submission.GradeInput{TaskID: taskID, StudentID: f.std.ID, Grade: accented + "é"})
	var verr *core.ValidationError
	assert.True(t, errors.As(err, &verr), "33 characters: want ValidationError, got %v", err)

	f.app.Mailer.Reset()
	s, err = f.app.Submissions.Grade(ctx, f.teacher.ID, submission.GradeInput{TaskID: taskID, StudentID: f.std.ID, Grade: " good job "})
	require.NoError(t, err)
	require.NotNil(t, s.Grade)
	assert.Equal(t, "good job", *s.Grade)
	assert.NotNil(t, s.GradedAt)

	sent := f.app.Mailer.SentMessages()
	require.Len(t, sent, 1)
	assert.Equal(t, f.std.Email, sent[0].To[0].Address)
	assert.Contains(t, sent[0].TextContent, "good job")

	// deleted tasks can still be graded
	require.NoError(t, f.app.Projects.DeleteProject(ctx, f.teacher.ID, f.project.ID))
	s, err = f.app.Submissions.Grade(ctx, f.teacher.ID, submission.GradeInput{TaskID: taskID, StudentID: f.std.ID, Grade: "B"})
	require.NoError(t, err)
	assert.Equal(t, "B", *s.Grade)
}

func TestService_ListByTask(t *testing.T) {
	f := setup(t)
	ctx := context.Background()
	intruder := testutil.CreateUser(t, f.app.UserRepo, "Intruder", "intruder@test.cd", "", user.RoleTeacher)

	_, err := f.app.Submissions.ListByTask(ctx, intruder.ID, f.tasks[0].ID)
	assert.Equal(t, project.ErrNotOwner, errors.Cause(err))

	_, err = f.app.Submissions.ListByTask(ctx, f.teacher.ID, 404)
	assert.Equal(t, project.ErrTaskNotFound, errors.Cause(err))

	subs, err := f.app.Submissions.ListByTask(ctx, f.teacher.ID, f.tasks[0].ID)
	require.NoError(t, err)
	assert.Empty(t, subs)
}

// teacher creates "Thesis" for students 5 and 6 with two tasks, student 5 submits "draft",
// gets "B+", resubmits "final" (grade cleared) and finally gets "A".
func TestService_thesisScenario(t *testing.T) {
	app := testutil.NewApp(t)
	ctx := context.Background()

	teacher := testutil.CreateUser(t, app.UserRepo, "Teacher", "teacher@test.cd", "", user.RoleTeacher)
	app.DB.SetSequence("user", 4)
	std5 := testutil.CreateUser(t, app.UserRepo, "Five", "five@test.cd", "", user.RoleStudent)
	std6 := testutil.CreateUser(t, app.UserRepo, "Six", "six@test.cd", "", user.RoleStudent)
	require.Equal(t, int64(5), std5.ID)
	require.Equal(t, int64(6), std6.ID)

	p, err := app.Projects.CreateProject(ctx, teacher.ID, project.NewProject{Title: "Thesis", Description: "...", StudentIDs: []int64{5, 6}})
	require.NoError(t, err)
	task1, err := app.Projects.AddTask(ctx, teacher.ID, project.NewTask{ProjectID: p.ID, Title: "Proposal"})
	require.NoError(t, err)
	_, err = app.Projects.AddTask(ctx, teacher.ID, project.NewTask{ProjectID: p.ID, Title: "Defense"})
	require.NoError(t, err)

	grade := func(g string) {
		_, err := app.Submissions.Grade(ctx, teacher.ID, submission.GradeInput{TaskID: task1.ID, StudentID: 5, Grade: g})
		require.NoError(t, err)
	}
	submit := func(content string) {
		_, err := app.Submissions.Submit(ctx, 5, submission.NewSubmission{TaskID: task1.ID, Content: content})
		require.NoError(t, err)
	}

	submit("draft")
	grade("B+")
	submit("final")

	s, err := app.Submissions.Get(ctx, task1.ID, 5)
	require.NoError(t, err)
	assert.Equal(t, "final", s.Content)
	assert.Nil(t, s.Grade, "resubmitting clears the grade")
	assert.Nil(t, s.GradedAt)

	grade("A")

	subs, err := app.Submissions.ListByTask(ctx, teacher.ID, task1.ID)
	require.NoError(t, err)
	require.Len(t, subs, 1)
	assert.Equal(t, int64(5), subs[0].StudentID)
	assert.Equal(t, "final", subs[0].Content)
	require.NotNil(t, subs[0].Grade)
	assert.Equal(t, "A", *subs[0].Grade)
}
