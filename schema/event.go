package schema

import (
	validation "github.com/go-ozzo/ozzo-validation/v4"
	"github.com/go-ozzo/ozzo-validation/v4/is"
)

// Event is an immutable domain record describing a single event.
// Records are identified by slug and are owned by the cache once
// fetched; updates always replace the whole record.
type Event struct {
	Name        string `json:"name"`
	Slug        string `json:"slug"`
	City        string `json:"city"`
	Date        string `json:"date"`
	Description string `json:"description,omitempty"`
	URL         string `json:"url,omitempty"`
	Alt         string `json:"alt,omitempty"`
	// Price is the ticket price in cents.
	Price int `json:"price"`
}

// Validate checks the record against the schema rules. Records with an
// empty name or slug, a malformed image URL or a negative price are
// rejected at the API boundary.
func (e Event) Validate() error {
	return validation.ValidateStruct(&e,
		validation.Field(&e.Name, validation.Required),
		validation.Field(&e.Slug, validation.Required),
		validation.Field(&e.City, validation.Required),
		validation.Field(&e.Date, validation.Required),
		validation.Field(&e.URL, is.URL),
		validation.Field(&e.Price, validation.Min(0)),
	)
}

// EventList is the backend list envelope for events.
type EventList struct {
	Count      int         `json:"count"`
	Events     []Event     `json:"events"`
	Pagination *Pagination `json:"pagination,omitempty"`
}

// Validate checks the envelope and every record in it.
func (l EventList) Validate() error {
	if err := validation.ValidateStruct(&l,
		validation.Field(&l.Count, validation.Min(0)),
	); err != nil {
		return err
	}
	for _, e := range l.Events {
		if err := e.Validate(); err != nil {
			return err
		}
	}
	return nil
}
