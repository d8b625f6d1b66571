package events

import (
	"context"
	"errors"
	"fmt"

	"github.com/sirupsen/logrus"

	"eventadmin/internal/domain/event"
	"eventadmin/internal/domain/media"
	"eventadmin/internal/pkg/notice"
)

// DeleteOutcome tells a successful delete apart from one that found nothing.
type DeleteOutcome string

const (
	Deleted     DeleteOutcome = "deleted"
	AlreadyGone DeleteOutcome = "already_gone"
)

// Uploads are local files submitted together with a form. Empty fields keep
// the URLs already in the values.
type Uploads struct {
	Banner []media.File
	Images []media.File
}

func (u Uploads) empty() bool {
	return len(u.Banner) == 0 && len(u.Images) == 0
}

// Submission is a saved event and the notices produced on the way.
type Submission struct {
	Event   *event.Event    `json:"event"`
	Notices []notice.Notice `json:"notices"`
}

type Service struct {
	store   event.Store
	batches Batches
	log     logrus.FieldLogger
	today   func() event.Date
}

func NewService(store event.Store, batches Batches, log logrus.FieldLogger) *Service {
	return &Service{store: store, batches: batches, log: log, today: event.Today}
}

func (s *Service) List(ctx context.Context) ([]event.Event, error) {
	return s.store.List(ctx)
}

// Get returns nil when the event does not exist.
func (s *Service) Get(ctx context.Context, id string) (*event.Event, error) {
	return s.store.GetByID(ctx, id)
}

func (s *Service) NewForm(ctx context.Context) (*Editor, error) {
	return NewEditor(ctx, CreateStrategy(s.store, s.today), s.batches, s.log)
}

// EditForm opens the form of an existing event, populated from the store.
func (s *Service) EditForm(ctx context.Context, id string) (*Editor, error) {
	return NewEditor(ctx, UpdateStrategy(s.store, id), s.batches, s.log)
}

func (s *Service) Create(ctx context.Context, values FormValues, uploads Uploads) (*Submission, error) {
	editor, err := s.NewForm(ctx)
	if err != nil {
		return nil, err
	}
	sub, err := s.submit(ctx, editor, values, uploads)
	if err != nil {
		return sub, err
	}
	sub.Notices = append(sub.Notices, notice.Success("Success",
		fmt.Sprintf("Event %s created successfully. See you on %s.", sub.Event.Name, sub.Event.EventDate)))
	return sub, nil
}

// Update overwrites every field of an existing event with values.
func (s *Service) Update(ctx context.Context, id string, values FormValues, uploads Uploads) (*Submission, error) {
	editor, err := s.EditForm(ctx, id)
	if err != nil {
		return nil, err
	}
	sub, err := s.submit(ctx, editor, values, uploads)
	if err != nil {
		return sub, err
	}
	sub.Notices = append(sub.Notices, notice.Success("Success",
		fmt.Sprintf("Event %s updated successfully.", sub.Event.Name)))
	return sub, nil
}

func (s *Service) submit(ctx context.Context, editor *Editor, values FormValues, uploads Uploads) (*Submission, error) {
	if err := editor.Set(values); err != nil {
		return nil, err
	}

	sub := &Submission{}
	if !uploads.empty() {
		// an invalid form should not cost an upload
		if ferr := withPendingMedia(values, uploads).Validate(); ferr != nil {
			return nil, ferr
		}
	}
	if len(uploads.Banner) > 0 {
		notices, err := editor.AttachBanner(ctx, uploads.Banner)
		sub.Notices = append(sub.Notices, notices...)
		if err != nil {
			return sub, &UploadError{Field: "banner", Notices: sub.Notices, Err: err}
		}
	}
	if len(uploads.Images) > 0 {
		notices, err := editor.AttachImages(ctx, uploads.Images)
		sub.Notices = append(sub.Notices, notices...)
		if err != nil {
			return sub, &UploadError{Field: "image_urls", Notices: sub.Notices, Err: err}
		}
	}

	saved, err := editor.Submit(ctx)
	if err != nil {
		return sub, err
	}
	sub.Event = saved
	return sub, nil
}

// Patch applies a partial update. Only the present members are validated.
func (s *Service) Patch(ctx context.Context, id string, p event.Patch) (*event.Event, error) {
	if errs := p.Validate(); errs != nil {
		return nil, &PatchError{Fields: errs}
	}
	updated, err := s.store.Update(ctx, id, p)
	if errors.Is(err, event.ErrEventNotFound) {
		return nil, ErrNotFound
	}
	return updated, err
}

func (s *Service) Delete(ctx context.Context, id string) (DeleteOutcome, error) {
	deleted, err := s.store.Delete(ctx, id)
	if err != nil {
		return "", err
	}
	if !deleted {
		return AlreadyGone, nil
	}
	return Deleted, nil
}

// withPendingMedia stands in placeholder URLs for the media fields that are
// about to be uploaded, so the rest of the form can be checked first.
func withPendingMedia(values FormValues, uploads Uploads) FormValues {
	const placeholder = "https://pending.invalid/upload"
	if len(uploads.Banner) > 0 {
		values.Banner = placeholder
	}
	if len(uploads.Images) > 0 {
		values.ImageURLs = []string{placeholder}
	}
	return values
}
