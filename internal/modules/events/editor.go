package events

import (
	"context"
	"errors"
	"sync"

	"github.com/sirupsen/logrus"

	"eventadmin/internal/domain/event"
	"eventadmin/internal/domain/media"
	"eventadmin/internal/pkg/notice"
)

// State of an editor.
type State string

const (
	StateEditing    State = "editing"
	StateSubmitting State = "submitting"
	StateSucceeded  State = "succeeded"
	StateFailed     State = "failed"
)

// Strategy is what differs between creating and editing an event: where the
// initial values come from and what a valid submission does.
type Strategy interface {
	Populate(ctx context.Context) (FormValues, error)
	Submit(ctx context.Context, values FormValues) (*event.Event, error)
}

// Batches opens upload batches for the form's media fields.
type Batches interface {
	Open(mode media.Mode) (*media.Batch, error)
	Discard(id string) bool
}

// Editor is one open event form. A submission that fails validation never
// reaches the strategy. A submission the store rejects leaves the values in
// place so the user can retry.
type Editor struct {
	strategy Strategy
	batches  Batches
	log      logrus.FieldLogger

	mu      sync.Mutex
	state   State
	values  FormValues
	saved   *event.Event
	lastErr error
}

func NewEditor(ctx context.Context, strategy Strategy, batches Batches, log logrus.FieldLogger) (*Editor, error) {
	values, err := strategy.Populate(ctx)
	if err != nil {
		return nil, err
	}
	return &Editor{
		strategy: strategy,
		batches:  batches,
		log:      log,
		state:    StateEditing,
		values:   values,
	}, nil
}

func (e *Editor) State() State {
	e.mu.Lock()
	defer e.mu.Unlock()
	return e.state
}

func (e *Editor) Values() FormValues {
	e.mu.Lock()
	defer e.mu.Unlock()
	v := e.values
	v.ImageURLs = append([]string(nil), e.values.ImageURLs...)
	return v
}

// Saved is the stored event after a successful submission.
func (e *Editor) Saved() *event.Event {
	e.mu.Lock()
	defer e.mu.Unlock()
	return e.saved
}

func (e *Editor) Err() error {
	e.mu.Lock()
	defer e.mu.Unlock()
	return e.lastErr
}

// Set replaces all values.
func (e *Editor) Set(values FormValues) error {
	return e.Edit(func(v *FormValues) { *v = values })
}

// Edit changes values in place. A failed editor goes back to editing.
func (e *Editor) Edit(change func(v *FormValues)) error {
	e.mu.Lock()
	defer e.mu.Unlock()

	if err := e.editable(); err != nil {
		return err
	}
	change(&e.values)
	e.state = StateEditing
	e.lastErr = nil
	return nil
}

// AttachBanner uploads a single image and uses its URL as the banner.
func (e *Editor) AttachBanner(ctx context.Context, files []media.File) ([]notice.Notice, error) {
	urls, notices, err := e.upload(ctx, media.ModeSingle, files)
	if err != nil {
		return notices, err
	}
	return notices, e.Edit(func(v *FormValues) { v.Banner = urls[0] })
}

// AttachImages uploads a gallery and uses the resulting URLs as the image list.
func (e *Editor) AttachImages(ctx context.Context, files []media.File) ([]notice.Notice, error) {
	urls, notices, err := e.upload(ctx, media.ModeMulti, files)
	if err != nil {
		return notices, err
	}
	return notices, e.Edit(func(v *FormValues) { v.ImageURLs = urls })
}

func (e *Editor) upload(ctx context.Context, mode media.Mode, files []media.File) ([]string, []notice.Notice, error) {
	e.mu.Lock()
	err := e.editable()
	e.mu.Unlock()
	if err != nil {
		return nil, nil, err
	}

	batch, err := e.batches.Open(mode)
	if err != nil {
		return nil, nil, err
	}
	defer e.batches.Discard(batch.ID())

	notices, err := batch.SelectFiles(files)
	if err != nil {
		return nil, notices, err
	}
	res, err := batch.Upload(ctx)
	notices = append(notices, res.Notices...)
	if err != nil {
		return nil, notices, err
	}
	return res.URLs, notices, nil
}

// Submit validates and hands the values to the strategy.
func (e *Editor) Submit(ctx context.Context) (*event.Event, error) {
	e.mu.Lock()
	if err := e.editable(); err != nil {
		e.mu.Unlock()
		return nil, err
	}
	if ferr := e.values.Validate(); ferr != nil {
		e.state = StateEditing
		e.mu.Unlock()
		return nil, ferr
	}
	e.state = StateSubmitting
	values := e.values
	e.mu.Unlock()

	saved, err := e.strategy.Submit(ctx, values)

	e.mu.Lock()
	defer e.mu.Unlock()
	if err != nil {
		e.state = StateFailed
		e.lastErr = err
		e.log.WithFields(logrus.Fields{
			"name":  values.Name,
			"error": err,
		}).Error("event form submission failed")
		return nil, err
	}
	e.state = StateSucceeded
	e.saved = saved
	return saved, nil
}

func (e *Editor) editable() error {
	switch e.state {
	case StateSucceeded:
		return ErrFormClosed
	case StateSubmitting:
		return ErrSubmitting
	}
	return nil
}

// createStrategy starts from empty defaults and inserts a new event.
type createStrategy struct {
	store event.Store
	today func() event.Date
}

func CreateStrategy(store event.Store, today func() event.Date) Strategy {
	if today == nil {
		today = event.Today
	}
	return &createStrategy{store: store, today: today}
}

func (s *createStrategy) Populate(context.Context) (FormValues, error) {
	return DefaultValues(s.today()), nil
}

func (s *createStrategy) Submit(ctx context.Context, values FormValues) (*event.Event, error) {
	return s.store.Create(ctx, values.Fields())
}

// updateStrategy starts from the stored event and overwrites every field on submit.
type updateStrategy struct {
	store event.Store
	id    string
}

func UpdateStrategy(store event.Store, id string) Strategy {
	return &updateStrategy{store: store, id: id}
}

func (s *updateStrategy) Populate(ctx context.Context) (FormValues, error) {
	e, err := s.store.GetByID(ctx, s.id)
	if err != nil {
		return FormValues{}, err
	}
	if e == nil {
		return FormValues{}, ErrNotFound
	}
	return ValuesOf(*e), nil
}

func (s *updateStrategy) Submit(ctx context.Context, values FormValues) (*event.Event, error) {
	updated, err := s.store.Update(ctx, s.id, event.FullPatch(values.Fields()))
	if errors.Is(err, event.ErrEventNotFound) {
		return nil, ErrNotFound
	}
	return updated, err
}
