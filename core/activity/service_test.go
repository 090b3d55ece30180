package activity_test

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/devShreyas21/studentPortal/core/activity"
	"github.com/devShreyas21/studentPortal/testutil"
)

func TestService_Query(t *testing.T) {
	app := testutil.NewApp(t)
	ctx := context.Background()

	const total = activity.MaxLimit + 5
	for i := 0; i < total; i++ {
		app.Activity.Record(ctx, int64(i%3+1), "login")
	}
	app.Activity.Record(ctx, 42, "project.create")

	tests := []struct {
		name  string
		limit int
		want  int
	}{
		{name: "default", limit: 0, want: activity.DefaultLimit},
		{name: "negative", limit: -1, want: activity.DefaultLimit},
		{name: "explicit", limit: 3, want: 3},
		{name: "clamped", limit: activity.MaxLimit * 2, want: activity.MaxLimit},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			entries, err := app.Activity.Query(ctx, tt.limit)
			require.NoError(t, err)
			require.Len(t, entries, tt.want)

			assert.Equal(t, int64(42), entries[0].UserID, "newest first")
			assert.Equal(t, "project.create", entries[0].Action)
			for i := 1; i < len(entries); i++ {
				assert.False(t, entries[i].Timestamp.After(entries[i-1].Timestamp))
			}
		})
	}
}
