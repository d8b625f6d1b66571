package media

import (
	"context"
	"fmt"
	"sync"
	"sync/atomic"
	"time"

	"github.com/google/uuid"
	"github.com/sirupsen/logrus"

	"eventadmin/internal/metrics"
	"eventadmin/internal/pkg/notice"
)

// Result is the outcome of one batch upload.
type Result struct {
	URLs    []string        `json:"urls"`
	Failed  []string        `json:"failed,omitempty"`
	Notices []notice.Notice `json:"notices"`
}

// Batch is one upload interaction: the pending files and the URLs of its last
// successful upload. All methods are safe for concurrent use; they run one at a time.
type Batch struct {
	id     string
	policy Policy
	host   Host
	log    logrus.FieldLogger

	mu       sync.Mutex
	pending  []File
	uploaded []string

	lastUsed atomic.Int64
}

func NewBatch(policy Policy, host Host, log logrus.FieldLogger) *Batch {
	b := &Batch{
		id:     uuid.NewString(),
		policy: policy,
		host:   host,
		log:    log,
	}
	b.touch()
	return b
}

func (b *Batch) ID() string { return b.id }

func (b *Batch) Policy() Policy { return b.policy }

// SelectFiles adds files to the pending set. Oversized and non-image files are
// skipped with a warning. In multi mode an addition that would exceed the file
// cap is rejected as a whole.
func (b *Batch) SelectFiles(files []File) ([]notice.Notice, error) {
	b.mu.Lock()
	defer b.mu.Unlock()
	b.touch()

	var (
		valid    []File
		oversize int
		nonImage int
	)
	for _, f := range files {
		switch {
		case f.Size > b.policy.MaxFileSize:
			oversize++
		case !f.IsImage():
			nonImage++
		default:
			valid = append(valid, f)
		}
	}

	if b.policy.Replace {
		if len(valid) > 0 {
			b.pending = []File{valid[0]}
		}
	} else {
		if len(b.pending)+len(valid) > b.policy.MaxFiles {
			return nil, &PolicyViolation{
				Reason: fmt.Sprintf("You can only upload a maximum of %d images.", b.policy.MaxFiles),
			}
		}
		b.pending = append(b.pending, valid...)
	}

	var notices []notice.Notice
	if oversize > 0 {
		notices = append(notices, notice.Warning("Warning",
			fmt.Sprintf("Some files were skipped because they exceed the %s size limit.", b.policy.SizeLabel())))
	}
	if nonImage > 0 {
		notices = append(notices, notice.Warning("Warning",
			"Some files were skipped because they are not images."))
	}
	return notices, nil
}

// RemoveFile drops the pending file at index.
func (b *Batch) RemoveFile(index int) error {
	b.mu.Lock()
	defer b.mu.Unlock()
	b.touch()

	if index < 0 || index >= len(b.pending) {
		return &PolicyViolation{Reason: fmt.Sprintf("no pending file at index %d", index)}
	}
	b.pending = append(b.pending[:index], b.pending[index+1:]...)
	return nil
}

func (b *Batch) Pending() []FileInfo {
	b.mu.Lock()
	defer b.mu.Unlock()

	out := make([]FileInfo, 0, len(b.pending))
	for i, f := range b.pending {
		out = append(out, FileInfo{Index: i, Name: f.Name, Size: f.Size, ContentType: f.ContentType})
	}
	return out
}

// Uploaded returns the URLs produced by the last successful upload.
func (b *Batch) Uploaded() []string {
	b.mu.Lock()
	defer b.mu.Unlock()
	return append([]string(nil), b.uploaded...)
}

// Upload sends the pending files to the host one after another, in selection
// order. A failed file does not stop the batch. When at least one file made it
// the pending set is cleared; when none did it is kept for a retry and
// ErrNothingUploaded is returned alongside the per-file notices.
func (b *Batch) Upload(ctx context.Context) (Result, error) {
	b.mu.Lock()
	defer b.mu.Unlock()
	b.touch()

	if len(b.pending) == 0 {
		return Result{}, &PolicyViolation{Reason: "Please select a file to upload."}
	}

	var res Result
	for _, f := range b.pending {
		url, err := b.host.Upload(ctx, f)
		if err != nil {
			failure := &UploadFailure{File: f.Name, Err: err}
			b.log.WithFields(logrus.Fields{
				"batch": b.id,
				"file":  f.Name,
				"size":  f.Size,
				"error": err,
			}).Error("media upload failed")
			metrics.RecordUpload(false)

			res.Failed = append(res.Failed, f.Name)
			res.Notices = append(res.Notices, notice.Error("Error",
				fmt.Sprintf("Failed to upload %s. Please try again.", failure.File)))
			continue
		}
		metrics.RecordUpload(true)
		res.URLs = append(res.URLs, url)
	}
	b.touch()

	if len(res.URLs) == 0 {
		return res, ErrNothingUploaded
	}

	res.Notices = append(res.Notices, notice.Success("Success",
		fmt.Sprintf("%d image(s) uploaded successfully!", len(res.URLs))))
	b.pending = nil
	b.uploaded = append([]string(nil), res.URLs...)
	return res, nil
}

func (b *Batch) touch() {
	b.lastUsed.Store(time.Now().UnixNano())
}

func (b *Batch) idleSince() time.Time {
	return time.Unix(0, b.lastUsed.Load())
}
