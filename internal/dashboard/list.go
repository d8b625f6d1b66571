package dashboard

import (
	"context"
	"fmt"
	"sync"

	"github.com/sirupsen/logrus"

	"eventadmin/internal/domain/event"
	"eventadmin/internal/pkg/notice"
)

// EventsAPI is the part of the HTTP client the views need.
type EventsAPI interface {
	ListEvents(ctx context.Context) ([]event.Event, error)
	GetEvent(ctx context.Context, id string) (*event.Event, error)
	DeleteEvent(ctx context.Context, id string) (bool, error)
}

// Confirmer asks the operator a yes/no question.
type Confirmer interface {
	Confirm(prompt string) bool
}

// Notifier shows transient notices to the operator.
type Notifier interface {
	Notify(n notice.Notice)
}

// ConfirmFunc adapts a function to Confirmer.
type ConfirmFunc func(prompt string) bool

func (f ConfirmFunc) Confirm(prompt string) bool { return f(prompt) }

var declineAll = ConfirmFunc(func(string) bool { return false })

// NotifyFunc adapts a function to Notifier.
type NotifyFunc func(n notice.Notice)

func (f NotifyFunc) Notify(n notice.Notice) { f(n) }

// DeleteResult is what a delete request from the list ended with.
type DeleteResult int

const (
	DeleteCancelled DeleteResult = iota
	DeleteRemoved
	DeleteAlreadyGone
	DeleteFailed
)

func (r DeleteResult) String() string {
	switch r {
	case DeleteCancelled:
		return "cancelled"
	case DeleteRemoved:
		return "removed"
	case DeleteAlreadyGone:
		return "already_gone"
	case DeleteFailed:
		return "failed"
	}
	return "unknown"
}

// ListView holds the event listing shown on the dashboard. After a delete the
// local list is reconciled by id instead of being fetched again.
type ListView struct {
	api     EventsAPI
	confirm Confirmer
	notify  Notifier
	log     logrus.FieldLogger

	mu      sync.RWMutex
	events  []event.Event
	loading bool
}

// NewListView builds a view over api. A nil confirm declines every delete and
// a nil notify drops notices.
func NewListView(api EventsAPI, confirm Confirmer, notify Notifier, log logrus.FieldLogger) *ListView {
	if confirm == nil {
		confirm = declineAll
	}
	if notify == nil {
		notify = NotifyFunc(func(notice.Notice) {})
	}
	return &ListView{api: api, confirm: confirm, notify: notify, log: log}
}

// Load replaces the listing with a fresh copy from the API. On failure the
// previous listing is kept.
func (v *ListView) Load(ctx context.Context) error {
	v.mu.Lock()
	v.loading = true
	v.mu.Unlock()

	list, err := v.api.ListEvents(ctx)

	v.mu.Lock()
	defer v.mu.Unlock()
	v.loading = false
	if err != nil {
		v.log.WithError(err).Error("loading events failed")
		v.notify.Notify(notice.Error("Error", "Failed to load events. Please try again."))
		return err
	}
	v.events = list
	return nil
}

func (v *ListView) Loading() bool {
	v.mu.RLock()
	defer v.mu.RUnlock()
	return v.loading
}

// Events returns a copy of the current listing.
func (v *ListView) Events() []event.Event {
	v.mu.RLock()
	defer v.mu.RUnlock()
	out := make([]event.Event, len(v.events))
	copy(out, v.events)
	return out
}

func (v *ListView) Find(id string) (event.Event, bool) {
	v.mu.RLock()
	defer v.mu.RUnlock()
	for _, e := range v.events {
		if e.ID == id {
			return e, true
		}
	}
	return event.Event{}, false
}

// Delete asks for confirmation, deletes the event and reconciles the listing.
// A declined confirmation changes nothing.
func (v *ListView) Delete(ctx context.Context, id string) DeleteResult {
	name := id
	if e, ok := v.Find(id); ok {
		name = e.Name
	}
	if !v.confirm.Confirm(fmt.Sprintf("Are you sure you want to delete %q?", name)) {
		return DeleteCancelled
	}

	deleted, err := v.api.DeleteEvent(ctx, id)
	if err != nil {
		v.log.WithError(err).WithField("event_id", id).Error("deleting event failed")
		v.notify.Notify(notice.Error("Error", "Failed to delete event. Please try again."))
		return DeleteFailed
	}

	v.RemoveByID(id)
	if !deleted {
		v.notify.Notify(notice.Info("Info", "The event no longer exists or has already been deleted."))
		return DeleteAlreadyGone
	}
	v.notify.Notify(notice.Success("Success", fmt.Sprintf("Event %q has been deleted.", name)))
	return DeleteRemoved
}

// RemoveByID drops the event with id from the listing, if present.
func (v *ListView) RemoveByID(id string) bool {
	v.mu.Lock()
	defer v.mu.Unlock()
	for i, e := range v.events {
		if e.ID == id {
			v.events = append(v.events[:i:i], v.events[i+1:]...)
			return true
		}
	}
	return false
}
