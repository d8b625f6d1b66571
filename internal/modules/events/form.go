package events

import (
	"sort"
	"strings"

	"eventadmin/internal/domain/event"
	"eventadmin/internal/pkg/validator"
)

// FormValues is the editable field set shared by the create and edit forms.
type FormValues struct {
	Name        string      `json:"name" validate:"required"`
	Description string      `json:"description" validate:"min=10"`
	Venue       string      `json:"venue" validate:"required"`
	EventDate   *event.Date `json:"event_date" validate:"required"`
	EventTime   string      `json:"event_time" validate:"required,clock"`
	Banner      string      `json:"banner" validate:"url"`
	ImageURLs   []string    `json:"image_urls" validate:"min=1,dive,url"`
	IsPaid      bool        `json:"is_paid"`
	IsOnline    bool        `json:"is_online"`
	Guest       string      `json:"guest"`
	IsPrivate   bool        `json:"is_private"`
}

// FieldError is the first rule a form submission broke.
type FieldError struct {
	Field   string `json:"field"`
	Message string `json:"message"`
}

func (e *FieldError) Error() string {
	return e.Field + ": " + e.Message
}

var fieldOrder = map[string]int{
	"name":        0,
	"description": 1,
	"venue":       2,
	"event_date":  3,
	"event_time":  4,
	"banner":      5,
	"image_urls":  6,
}

// Validate checks every rule and reports only the first failure, in form order.
func (v FormValues) Validate() *FieldError {
	failures := validator.Errors(v)
	if v.EventDate != nil && v.EventDate.IsZero() {
		failures = append(failures, validator.FieldError{Field: "event_date", Tag: "required"})
	}
	if len(failures) == 0 {
		return nil
	}

	sort.SliceStable(failures, func(i, j int) bool {
		return rank(failures[i].Field) < rank(failures[j].Field)
	})
	first := failures[0]
	return &FieldError{Field: first.Field, Message: message(first)}
}

func rank(field string) int {
	if i := strings.IndexByte(field, '['); i >= 0 {
		field = field[:i]
	}
	if r, ok := fieldOrder[field]; ok {
		return r
	}
	return len(fieldOrder)
}

func message(f validator.FieldError) string {
	switch {
	case f.Field == "name":
		return "Name is required"
	case f.Field == "description":
		return "Description must be at least 10 characters"
	case f.Field == "venue":
		return "Venue is required"
	case f.Field == "event_date":
		return "Event date is required"
	case f.Field == "event_time" && f.Tag == "required":
		return "Event time is required"
	case f.Field == "event_time":
		return "Event time must be in HH:MM format"
	case f.Field == "image_urls":
		return "At least one image URL is required"
	case f.Tag == "url":
		return "Must be a valid URL"
	default:
		return "Invalid value"
	}
}

// Fields converts submitted values into the stored field set. A blank guest
// becomes no guest.
func (v FormValues) Fields() event.Fields {
	f := event.Fields{
		Name:        v.Name,
		Description: v.Description,
		Venue:       v.Venue,
		IsPaid:      v.IsPaid,
		IsOnline:    v.IsOnline,
		EventTime:   v.EventTime,
		Banner:      v.Banner,
		ImageURLs:   append([]string(nil), v.ImageURLs...),
		IsPrivate:   v.IsPrivate,
	}
	if v.EventDate != nil {
		f.EventDate = *v.EventDate
	}
	if g := strings.TrimSpace(v.Guest); g != "" {
		guest := v.Guest
		f.Guest = &guest
	}
	return f
}

// ValuesOf fills the form from a stored event. No guest shows as an empty string.
func ValuesOf(e event.Event) FormValues {
	date := e.EventDate
	v := FormValues{
		Name:        e.Name,
		Description: e.Description,
		Venue:       e.Venue,
		EventDate:   &date,
		EventTime:   e.EventTime,
		Banner:      e.Banner,
		ImageURLs:   append([]string{}, e.ImageURLs...),
		IsPaid:      e.IsPaid,
		IsOnline:    e.IsOnline,
		IsPrivate:   e.IsPrivate,
	}
	if e.Guest != nil {
		v.Guest = *e.Guest
	}
	return v
}

// DefaultValues are the values of an empty create form.
func DefaultValues(today event.Date) FormValues {
	return FormValues{
		EventDate: &today,
		EventTime: "12:00",
		ImageURLs: []string{},
	}
}
