package submission

import (
	"time"

	"github.com/devShreyas21/studentPortal/core"
)

const maxGradeLen = 32

type Submission struct {
	ID          int64      `json:"id"`
	TaskID      int64      `json:"task_id"`
	StudentID   int64      `json:"student_id"`
	Content     string     `json:"content"`
	FileID      *string    `json:"file_id"`
	Grade       *string    `json:"grade"`
	SubmittedAt time.Time  `json:"submitted_at"` // UTC
	GradedAt    *time.Time `json:"graded_at"`    // UTC
}

func (s Submission) IsGraded() bool { return s.Grade != nil }

// NewSubmission is what a student hands in for a task.
type NewSubmission struct {
	TaskID  int64   `json:"task_id" validate:"required"`
	Content string  `json:"content" validate:"max=20000"`
	FileID  *string `json:"fileId"`
}

func (ns *NewSubmission) Clean() {
	ns.Content = core.CleanString(ns.Content)
	if ns.FileID != nil {
		if fid := core.CleanString(*ns.FileID); fid == "" {
			ns.FileID = nil
		} else {
			ns.FileID = &fid
		}
	}
}

// GradeInput is a teacher's mark for one student's submission.
type GradeInput struct {
	TaskID    int64  `json:"task_id" validate:"required"`
	StudentID int64  `json:"student_id" validate:"required"`
	Grade     string `json:"grade" validate:"notblank,max=32"`
}

func (gi *GradeInput) Clean() {
	gi.Grade = core.CleanString(gi.Grade)
}
