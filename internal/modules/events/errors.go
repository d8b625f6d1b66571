package events

import (
	"errors"
	"fmt"

	"eventadmin/internal/pkg/notice"
)

var (
	ErrNotFound   = errors.New("not_found")
	ErrFormClosed = errors.New("form already submitted")
	ErrSubmitting = errors.New("form submission in progress")
)

// UploadError is a media field whose upload did not go through.
type UploadError struct {
	Field   string
	Notices []notice.Notice
	Err     error
}

func (e *UploadError) Error() string {
	return fmt.Sprintf("%s upload: %v", e.Field, e.Err)
}

func (e *UploadError) Unwrap() error { return e.Err }

// PatchError lists the rules a partial update broke, by field.
type PatchError struct {
	Fields map[string]string
}

func (e *PatchError) Error() string {
	return fmt.Sprintf("invalid patch: %v", e.Fields)
}
