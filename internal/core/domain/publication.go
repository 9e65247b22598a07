package domain

import (
	"time"

	"github.com/shopspring/decimal"
)

func init() {
	// The marketplace API exchanges prices as JSON numbers.
	decimal.MarshalJSONWithoutQuotes = true
}

// Condition describes the physical state of a listed item.
type Condition string

const (
	ConditionExcellent  Condition = "Excelente"
	ConditionGood       Condition = "Bueno"
	ConditionAcceptable Condition = "Aceptable"
)

// Image is a picture attached to a publication.
type Image struct {
	ID            string `json:"id"`
	URL           string `json:"url"`
	AltText       string `json:"altText"`
	DisplayOrder  int    `json:"displayOrder"`
	PublicationID string `json:"publicationId"`
}

// Publication is a marketplace listing.
type Publication struct {
	ID            string          `json:"id"`
	Title         string          `json:"title"`
	Description   string          `json:"description"`
	Price         decimal.Decimal `json:"price"`
	City          string          `json:"city"`
	IsPremium     bool            `json:"isPremium"`
	Type          string          `json:"type"`
	IsPaused      bool            `json:"isPaused"`
	UserID        int64           `json:"userId"`
	Brand         string          `json:"brand"`
	Model         string          `json:"model"`
	Color         string          `json:"color"`
	Condition     Condition       `json:"condition"`
	Compatibility string          `json:"compatibility"`
	Images        []Image         `json:"images"`
	CreatedAt     time.Time       `json:"createdAt"`
	UpdatedAt     time.Time       `json:"updatedAt"`
}

// PublicationFields are the user-editable attributes of a publication.
type PublicationFields struct {
	Title         string          `json:"title"         validate:"required,max=120"`
	Description   string          `json:"description"   validate:"required"`
	Price         decimal.Decimal `json:"price"         validate:"gt=0"`
	City          string          `json:"city"          validate:"required"`
	IsPremium     bool            `json:"isPremium"`
	Type          string          `json:"type"          validate:"required"`
	Brand         string          `json:"brand"`
	Model         string          `json:"model"`
	Color         string          `json:"color"`
	Condition     Condition       `json:"condition"     validate:"omitempty,oneof=Excelente Bueno Aceptable"`
	Compatibility string          `json:"compatibility"`
}

// Apply copies the editable fields onto p.
func (f PublicationFields) Apply(p *Publication) {
	p.Title = f.Title
	p.Description = f.Description
	p.Price = f.Price
	p.City = f.City
	p.IsPremium = f.IsPremium
	p.Type = f.Type
	p.Brand = f.Brand
	p.Model = f.Model
	p.Color = f.Color
	p.Condition = f.Condition
	p.Compatibility = f.Compatibility
}

// CreatePublicationRequest is the body of POST api/Publications.
type CreatePublicationRequest struct {
	PublicationFields
}

// EditPublicationRequest is the body of PUT api/Publications/{id}.
type EditPublicationRequest struct {
	ID string `json:"id" validate:"required"`
	PublicationFields
}

// ListPublicationsRequest selects one page of the public feed. Page is 1-based.
type ListPublicationsRequest struct {
	Page int
	Size int
}

// ListPublicationsResponse is one page of the public feed.
type ListPublicationsResponse struct {
	Total        int64         `json:"total"`
	Publications []Publication `json:"publications"`
}
