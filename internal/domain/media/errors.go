package media

import (
	"errors"
	"fmt"
)

var (
	ErrNothingUploaded = errors.New("no file was uploaded")
	ErrBatchNotFound   = errors.New("upload batch not found")
)

// PolicyViolation blocks a batch operation. The pending set is left as it was.
type PolicyViolation struct {
	Reason string
}

func (e *PolicyViolation) Error() string { return e.Reason }

// UploadFailure is a single file the media host did not accept.
type UploadFailure struct {
	File string
	Err  error
}

func (e *UploadFailure) Error() string {
	return fmt.Sprintf("failed to upload %s: %v", e.File, e.Err)
}

func (e *UploadFailure) Unwrap() error { return e.Err }
