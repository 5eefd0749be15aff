package models

import (
	"strings"
	"time"
	"unicode/utf8"

	"github.com/harrylevesque/rentnest/internal/utils"
)

type PropertyType string

const (
	TypeApartment PropertyType = "apartment"
	TypeHouse     PropertyType = "house"
	TypeVilla     PropertyType = "villa"
	TypeStudio    PropertyType = "studio"
	TypePG        PropertyType = "pg"
)

var PropertyTypes = []PropertyType{TypeApartment, TypeHouse, TypeVilla, TypeStudio, TypePG}

type Furnishing string

const (
	Furnished     Furnishing = "furnished"
	SemiFurnished Furnishing = "semi-furnished"
	Unfurnished   Furnishing = "unfurnished"
)

var Furnishings = []Furnishing{Furnished, SemiFurnished, Unfurnished}

type TenantPreference string

const (
	TenantAny       TenantPreference = "any"
	TenantFamily    TenantPreference = "family"
	TenantBachelors TenantPreference = "bachelors"
)

var TenantPreferences = []TenantPreference{TenantAny, TenantFamily, TenantBachelors}

type PropertyStatus string

const (
	StatusActive   PropertyStatus = "active"
	StatusRented   PropertyStatus = "rented"
	StatusInactive PropertyStatus = "inactive"
)

var PropertyStatuses = []PropertyStatus{StatusActive, StatusRented, StatusInactive}

func ValidPropertyStatus(s PropertyStatus) bool { return contains(PropertyStatuses, s) }

const (
	MinTitleLength = 3
	MaxTitleLength = 120
	MaxBHK         = 10
	MaxAmenities   = 30
)

type Property struct {
	ID               string           `json:"id"`
	OwnerID          string           `json:"owner_id"`
	Title            string           `json:"title"`
	Description      string           `json:"description"`
	DescriptionHTML  string           `json:"description_html,omitempty"`
	Type             PropertyType     `json:"type"`
	BHK              int              `json:"bhk"`
	Rent             int64            `json:"rent"`
	Deposit          int64            `json:"deposit"`
	AreaSqft         int              `json:"area_sqft"`
	Furnishing       Furnishing       `json:"furnishing"`
	TenantPreference TenantPreference `json:"tenant_preference"`
	City             string           `json:"city"`
	Locality         string           `json:"locality"`
	Address          string           `json:"address,omitempty"`
	Amenities        []string         `json:"amenities"`
	AvailableFrom    time.Time        `json:"available_from"`
	Status           PropertyStatus   `json:"status"`
	Views            int64            `json:"views"`
	Shortlisted      bool             `json:"shortlisted,omitempty"`
	Images           []PropertyImage  `json:"images,omitempty"`
	CreatedAt        time.Time        `json:"created_at"`
	UpdatedAt        time.Time        `json:"updated_at"`
}

type PropertyImage struct {
	ID          string    `json:"id"`
	PropertyID  string    `json:"property_id"`
	FileName    string    `json:"-"`
	ContentType string    `json:"content_type"`
	Size        int64     `json:"size"`
	Hash        string    `json:"hash"`
	CreatedAt   time.Time `json:"created_at"`
}

// Normalize trims text fields, lower-cases enums, dedupes amenities and fills defaults.
func (p *Property) Normalize() {
	p.Title = strings.TrimSpace(p.Title)
	p.Description = strings.TrimSpace(p.Description)
	p.City = strings.TrimSpace(p.City)
	p.Locality = strings.TrimSpace(p.Locality)
	p.Address = strings.TrimSpace(p.Address)
	p.Type = PropertyType(lower(string(p.Type)))
	p.Furnishing = Furnishing(lower(string(p.Furnishing)))
	p.TenantPreference = TenantPreference(lower(string(p.TenantPreference)))
	p.Status = PropertyStatus(lower(string(p.Status)))
	if p.Type == "" {
		p.Type = TypeApartment
	}
	if p.Furnishing == "" {
		p.Furnishing = Unfurnished
	}
	if p.TenantPreference == "" {
		p.TenantPreference = TenantAny
	}
	if p.Status == "" {
		p.Status = StatusActive
	}
	p.Amenities = NormalizeAmenities(p.Amenities)
}

func (p *Property) Validate() error {
	n := utf8.RuneCountInString(p.Title)
	if n < MinTitleLength || n > MaxTitleLength {
		return utils.Invalid("title must be between %d and %d characters", MinTitleLength, MaxTitleLength)
	}
	if p.City == "" {
		return utils.Invalid("city is required")
	}
	if p.Rent <= 0 {
		return utils.Invalid("rent must be positive")
	}
	if p.Deposit < 0 {
		return utils.Invalid("deposit must not be negative")
	}
	if p.BHK < 0 || p.BHK > MaxBHK {
		return utils.Invalid("bhk must be between 0 and %d", MaxBHK)
	}
	if p.AreaSqft < 0 {
		return utils.Invalid("area must not be negative")
	}
	if !contains(PropertyTypes, p.Type) {
		return utils.Invalid("unknown property type %q", p.Type)
	}
	if !contains(Furnishings, p.Furnishing) {
		return utils.Invalid("unknown furnishing %q", p.Furnishing)
	}
	if !contains(TenantPreferences, p.TenantPreference) {
		return utils.Invalid("unknown tenant preference %q", p.TenantPreference)
	}
	if !ValidPropertyStatus(p.Status) {
		return utils.Invalid("unknown status %q", p.Status)
	}
	if len(p.Amenities) > MaxAmenities {
		return utils.Invalid("at most %d amenities are allowed", MaxAmenities)
	}
	return nil
}

// PropertyPatch is a partial update; nil fields are left untouched.
type PropertyPatch struct {
	Title            *string           `json:"title,omitempty"`
	Description      *string           `json:"description,omitempty"`
	Type             *PropertyType     `json:"type,omitempty"`
	BHK              *int              `json:"bhk,omitempty"`
	Rent             *int64            `json:"rent,omitempty"`
	Deposit          *int64            `json:"deposit,omitempty"`
	AreaSqft         *int              `json:"area_sqft,omitempty"`
	Furnishing       *Furnishing       `json:"furnishing,omitempty"`
	TenantPreference *TenantPreference `json:"tenant_preference,omitempty"`
	City             *string           `json:"city,omitempty"`
	Locality         *string           `json:"locality,omitempty"`
	Address          *string           `json:"address,omitempty"`
	Amenities        *[]string         `json:"amenities,omitempty"`
	AvailableFrom    *time.Time        `json:"available_from,omitempty"`
}

// Apply copies the set fields of the patch onto p.
func (patch *PropertyPatch) Apply(p *Property) {
	if patch.Title != nil {
		p.Title = *patch.Title
	}
	if patch.Description != nil {
		p.Description = *patch.Description
	}
	if patch.Type != nil {
		p.Type = *patch.Type
	}
	if patch.BHK != nil {
		p.BHK = *patch.BHK
	}
	if patch.Rent != nil {
		p.Rent = *patch.Rent
	}
	if patch.Deposit != nil {
		p.Deposit = *patch.Deposit
	}
	if patch.AreaSqft != nil {
		p.AreaSqft = *patch.AreaSqft
	}
	if patch.Furnishing != nil {
		p.Furnishing = *patch.Furnishing
	}
	if patch.TenantPreference != nil {
		p.TenantPreference = *patch.TenantPreference
	}
	if patch.City != nil {
		p.City = *patch.City
	}
	if patch.Locality != nil {
		p.Locality = *patch.Locality
	}
	if patch.Address != nil {
		p.Address = *patch.Address
	}
	if patch.Amenities != nil {
		p.Amenities = append([]string(nil), (*patch.Amenities)...)
	}
	if patch.AvailableFrom != nil {
		p.AvailableFrom = *patch.AvailableFrom
	}
}

// NormalizeAmenities lower-cases, trims, drops empties and dedupes, keeping order.
func NormalizeAmenities(in []string) []string {
	out := make([]string, 0, len(in))
	seen := make(map[string]bool, len(in))
	for _, a := range in {
		a = lower(a)
		if a == "" || seen[a] {
			continue
		}
		seen[a] = true
		out = append(out, a)
	}
	return out
}

func lower(s string) string { return strings.ToLower(strings.TrimSpace(s)) }

func contains[T comparable](list []T, v T) bool {
	for _, x := range list {
		if x == v {
			return true
		}
	}
	return false
}
