package schema

import (
	validation "github.com/go-ozzo/ozzo-validation/v4"
	"github.com/go-ozzo/ozzo-validation/v4/is"
)

// City is an immutable domain record describing a browsable city.
// The backend uses "city"/"citySlug" field names; they are adapted to
// Name/Slug here so every record exposes the same identity shape.
type City struct {
	Name string `json:"city"`
	Slug string `json:"citySlug"`
	URL  string `json:"url,omitempty"`
	Alt  string `json:"alt,omitempty"`
}

// Validate checks the record against the schema rules.
func (c City) Validate() error {
	return validation.ValidateStruct(&c,
		validation.Field(&c.Name, validation.Required),
		validation.Field(&c.Slug, validation.Required),
		validation.Field(&c.URL, is.URL),
	)
}

// CityList is the backend list envelope for cities.
type CityList struct {
	Count      int         `json:"count"`
	Cities     []City      `json:"cities"`
	Pagination *Pagination `json:"pagination,omitempty"`
}

// Validate checks the envelope and every record in it.
func (l CityList) Validate() error {
	if err := validation.ValidateStruct(&l,
		validation.Field(&l.Count, validation.Min(0)),
	); err != nil {
		return err
	}
	for _, c := range l.Cities {
		if err := c.Validate(); err != nil {
			return err
		}
	}
	return nil
}
