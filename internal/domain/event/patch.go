package event

import (
	"bytes"
	"encoding/json"
	"fmt"
	"io"
	"strings"

	"eventadmin/internal/pkg/validator"
)

// OptionalString distinguishes an absent key from an explicit null.
// Set is true whenever the key was present in the payload.
type OptionalString struct {
	Set   bool
	Value *string
}

func SomeString(s string) OptionalString { return OptionalString{Set: true, Value: &s} }

func NullString() OptionalString { return OptionalString{Set: true} }

func (o OptionalString) IsZero() bool { return !o.Set }

func (o OptionalString) MarshalJSON() ([]byte, error) {
	if o.Value == nil {
		return []byte("null"), nil
	}
	return json.Marshal(*o.Value)
}

func (o *OptionalString) UnmarshalJSON(data []byte) error {
	o.Set = true
	if string(data) == "null" {
		o.Value = nil
		return nil
	}
	var s string
	if err := json.Unmarshal(data, &s); err != nil {
		return err
	}
	o.Value = &s
	return nil
}

// Patch is a partial update. Nil members are left untouched.
type Patch struct {
	Name        *string        `json:"name,omitempty" validate:"omitnil,min=1"`
	Description *string        `json:"description,omitempty" validate:"omitnil,min=10"`
	Venue       *string        `json:"venue,omitempty" validate:"omitnil,min=1"`
	IsPaid      *bool          `json:"is_paid,omitempty"`
	IsOnline    *bool          `json:"is_online,omitempty"`
	Guest       OptionalString `json:"guest,omitzero"`
	EventDate   *Date          `json:"event_date,omitempty"`
	EventTime   *string        `json:"event_time,omitempty" validate:"omitnil,clock"`
	Banner      *string        `json:"banner,omitempty" validate:"omitnil,url"`
	ImageURLs   *[]string      `json:"image_urls,omitempty" validate:"omitnil,min=1,dive,url"`
	IsPrivate   *bool          `json:"is_private,omitempty"`
}

// FullPatch turns a complete field set into a patch that overwrites every column.
func FullPatch(f Fields) Patch {
	images := append([]string(nil), f.ImageURLs...)
	date := f.EventDate
	guest := OptionalString{Set: true}
	if f.Guest != nil {
		guest = SomeString(*f.Guest)
	}
	return Patch{
		Name:        &f.Name,
		Description: &f.Description,
		Venue:       &f.Venue,
		IsPaid:      &f.IsPaid,
		IsOnline:    &f.IsOnline,
		Guest:       guest,
		EventDate:   &date,
		EventTime:   &f.EventTime,
		Banner:      &f.Banner,
		ImageURLs:   &images,
		IsPrivate:   &f.IsPrivate,
	}
}

func (p Patch) IsEmpty() bool {
	return p.Name == nil && p.Description == nil && p.Venue == nil &&
		p.IsPaid == nil && p.IsOnline == nil && !p.Guest.Set &&
		p.EventDate == nil && p.EventTime == nil && p.Banner == nil &&
		p.ImageURLs == nil && p.IsPrivate == nil
}

// Apply copies the present members onto f.
func (p Patch) Apply(f *Fields) {
	if p.Name != nil {
		f.Name = *p.Name
	}
	if p.Description != nil {
		f.Description = *p.Description
	}
	if p.Venue != nil {
		f.Venue = *p.Venue
	}
	if p.IsPaid != nil {
		f.IsPaid = *p.IsPaid
	}
	if p.IsOnline != nil {
		f.IsOnline = *p.IsOnline
	}
	if p.Guest.Set {
		f.Guest = normalizeGuest(p.Guest.Value)
	}
	if p.EventDate != nil {
		f.EventDate = *p.EventDate
	}
	if p.EventTime != nil {
		f.EventTime = *p.EventTime
	}
	if p.Banner != nil {
		f.Banner = *p.Banner
	}
	if p.ImageURLs != nil {
		f.ImageURLs = append([]string(nil), (*p.ImageURLs)...)
	}
	if p.IsPrivate != nil {
		f.IsPrivate = *p.IsPrivate
	}
}

// Validate checks the members that are present. It returns field -> failed rule.
func (p Patch) Validate() map[string]string {
	errs := validator.Validate(p)
	if p.EventDate != nil && p.EventDate.IsZero() {
		if errs == nil {
			errs = map[string]string{}
		}
		errs["event_date"] = "required"
	}
	return errs
}

// DecodePatch reads a JSON patch and rejects keys that are not event fields.
func DecodePatch(r io.Reader) (Patch, error) {
	var p Patch
	dec := json.NewDecoder(r)
	dec.DisallowUnknownFields()
	if err := dec.Decode(&p); err != nil {
		return Patch{}, fmt.Errorf("%w: %v", ErrInvalidPatch, err)
	}
	if dec.More() {
		return Patch{}, fmt.Errorf("%w: trailing data after patch object", ErrInvalidPatch)
	}
	if p.IsEmpty() {
		return Patch{}, fmt.Errorf("%w: no fields to update", ErrInvalidPatch)
	}
	return p, nil
}

// DecodePatchBytes is DecodePatch for an in-memory payload.
func DecodePatchBytes(data []byte) (Patch, error) {
	return DecodePatch(bytes.NewReader(data))
}

// a blank guest means "no guest"
func normalizeGuest(g *string) *string {
	if g == nil || strings.TrimSpace(*g) == "" {
		return nil
	}
	v := *g
	return &v
}
