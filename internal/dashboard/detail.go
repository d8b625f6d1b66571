package dashboard

import (
	"context"
	"errors"

	"eventadmin/internal/domain/event"
)

var ErrEventNotFound = errors.New("event not found")

// DetailView shows a single event looked up by id.
type DetailView struct {
	api EventsAPI
}

func NewDetailView(api EventsAPI) *DetailView {
	return &DetailView{api: api}
}

func (v *DetailView) Show(ctx context.Context, id string) (*event.Event, error) {
	e, err := v.api.GetEvent(ctx, id)
	if err != nil {
		return nil, err
	}
	if e == nil {
		return nil, ErrEventNotFound
	}
	return e, nil
}
