package file

import (
	"bytes"
	"context"
	"fmt"
	"io"
	"net/http"
	"path/filepath"
	"time"

	"github.com/google/uuid"
	"github.com/pkg/errors"

	"github.com/devShreyas21/studentPortal/core"
)

var (
	// errors
	ErrNotFound = errors.New("file not found")
	ErrEmpty    = errors.New("the uploaded file is empty")
)

// File is an uploaded blob. It never changes once stored.
type File struct {
	ID          string    `json:"id"`
	Name        string    `json:"name"`
	ContentType string    `json:"content_type"`
	Size        int64     `json:"size"`
	UploadedBy  int64     `json:"uploaded_by"`
	CreatedAt   time.Time `json:"created_at"` // UTC
	Content     []byte    `json:"-"`
}

type (
	// Store keeps files by id. Put must never overwrite an existing id.
	Store interface {
		Put(ctx context.Context, f File) error
		Get(ctx context.Context, id string) (File, error)
		Exists(ctx context.Context, id string) (bool, error)
	}

	Service struct {
		store    Store
		maxSize  int64
		activity core.ActivityRecorder
	}
)

func NewService(store Store, maxSize int64, activity core.ActivityRecorder) *Service {
	return &Service{store: store, maxSize: maxSize, activity: activity}
}

// Upload reads at most maxSize bytes from `r` and stores them under a new id.
func (svc *Service) Upload(ctx context.Context, uploaderID int64, r io.Reader, name, contentType string) (File, error) {
	content, err := io.ReadAll(io.LimitReader(r, svc.maxSize+1))
	if err != nil {
		return File{}, errors.Wrap(err, "reading upload")
	}
	if len(content) == 0 {
		return File{}, core.NewValidationError(ErrEmpty, core.FieldError{Field: "file", Error: ErrEmpty.Error()})
	}
	if int64(len(content)) > svc.maxSize {
		msg := fmt.Sprintf("file must not exceed %d bytes", svc.maxSize)
		return File{}, core.NewValidationError(nil, core.FieldError{Field: "file", Error: msg})
	}
	if contentType == "" || contentType == "application/octet-stream" {
		contentType = http.DetectContentType(content)
	}

	f := File{
		ID:          uuid.NewString(),
		Name:        filepath.Base(name),
		ContentType: contentType,
		Size:        int64(len(content)),
		UploadedBy:  uploaderID,
		CreatedAt:   time.Now().UTC(),
		Content:     content,
	}
	if err = svc.store.Put(ctx, f); err != nil {
		return File{}, errors.Wrap(err, "storing file")
	}
	svc.activity.Record(ctx, uploaderID, "file.upload")
	return f, nil
}

func (svc *Service) Fetch(ctx context.Context, id string) (File, error) {
	if _, err := uuid.Parse(id); err != nil {
		return File{}, ErrNotFound
	}
	return svc.store.Get(ctx, id)
}

func (svc *Service) Exists(ctx context.Context, id string) (bool, error) {
	if _, err := uuid.Parse(id); err != nil {
		return false, nil
	}
	return svc.store.Exists(ctx, id)
}

// Reader returns the file content as a ReadSeeker, for http.ServeContent.
func (f File) Reader() io.ReadSeeker {
	return bytes.NewReader(f.Content)
}
