package echoapi

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/devShreyas21/studentPortal/core/project"
	"github.com/devShreyas21/studentPortal/core/submission"
)

func TestProjectViews(t *testing.T) {
	now := time.Now().UTC()
	p := project.Project{ID: 1, Title: "Thesis", OwnerID: 2, Status: project.StatusEdited, CreatedAt: now, UpdatedAt: now}
	tasks := []project.Task{
		{ID: 10, ProjectID: 1, Title: "Draft", Status: project.StatusDeleted},
		{ID: 11, ProjectID: 1, Title: "Final", Status: project.StatusActive},
	}
	overviews := []project.Overview{{Project: p, Tasks: tasks}}
	subs := []submission.Submission{{ID: 100, TaskID: 10, StudentID: 3, Content: "v1", SubmittedAt: now}}

	t.Run("single project", func(t *testing.T) {
		view, err := newProjectView(p)
		require.NoError(t, err)
		assert.Equal(t, int64(1), view.ID)
		assert.Equal(t, "Thesis", view.Title)
		assert.Equal(t, int64(2), view.OwnerID)
		assert.True(t, view.IsEdited)
		assert.False(t, view.IsDeleted)
		assert.Equal(t, []int64{}, view.StudentIDs)
		assert.Equal(t, now, view.CreatedAt)
	})

	t.Run("teacher", func(t *testing.T) {
		views, err := teacherProjectViews(overviews, subs)
		require.NoError(t, err)
		require.Len(t, views, 1)

		tvs, ok := views[0].Tasks.([]teacherTaskView)
		require.True(t, ok)
		require.Len(t, tvs, 2)
		assert.True(t, tvs[0].IsDeleted)
		assert.Equal(t, subs, tvs[0].Submissions)
		assert.Equal(t, []submission.Submission{}, tvs[1].Submissions)
	})

	t.Run("student", func(t *testing.T) {
		views, err := studentProjectViews(overviews, subs)
		require.NoError(t, err)
		require.Len(t, views, 1)

		svs, ok := views[0].Tasks.([]studentTaskView)
		require.True(t, ok)
		require.Len(t, svs, 2)
		if assert.NotNil(t, svs[0].Submission) {
			assert.Equal(t, int64(100), svs[0].Submission.ID)
		}
		assert.Nil(t, svs[1].Submission)
		assert.Equal(t, "Final", svs[1].Title)
	})
}
