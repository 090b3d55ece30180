// Package inmemdb implements the repositories in process memory. All tables share one lock
// so multi-table checks and writes are atomic.
package inmemdb

import (
	"sync"

	"github.com/devShreyas21/studentPortal/core/activity"
	"github.com/devShreyas21/studentPortal/core/file"
	"github.com/devShreyas21/studentPortal/core/project"
	"github.com/devShreyas21/studentPortal/core/submission"
	"github.com/devShreyas21/studentPortal/core/user"
)

type submissionKey struct {
	taskID    int64
	studentID int64
}

type DB struct {
	mu sync.RWMutex

	users       map[int64]user.User
	projects    map[int64]project.Project
	tasks       map[int64]project.Task
	submissions map[submissionKey]submission.Submission
	activity    []activity.Entry
	files       map[string]file.File

	seq map[string]int64
}

func Open() *DB {
	return &DB{
		users:       make(map[int64]user.User),
		projects:    make(map[int64]project.Project),
		tasks:       make(map[int64]project.Task),
		submissions: make(map[submissionKey]submission.Submission),
		files:       make(map[string]file.File),
		seq:         make(map[string]int64),
	}
}

// nextID must be called with the write lock held.
func (db *DB) nextID(table string) int64 {
	db.seq[table]++
	return db.seq[table]
}

// SetSequence makes the next id of `table` be n+1. Used by fixtures needing fixed ids.
func (db *DB) SetSequence(table string, n int64) {
	db.mu.Lock()
	defer db.mu.Unlock()
	db.seq[table] = n
}

func cloneIDs(ids []int64) []int64 {
	return append([]int64(nil), ids...)
}
