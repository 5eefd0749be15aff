package models

import "strings"

type SortOrder string

const (
	SortNewest   SortOrder = "newest"
	SortRentAsc  SortOrder = "rent_asc"
	SortRentDesc SortOrder = "rent_desc"
	SortPopular  SortOrder = "popular"
)

const (
	DefaultPageSize = 20
	MaxPageSize     = 100
)

// Filter describes a browse or search request over active listings.
type Filter struct {
	Query            string           `json:"query,omitempty"`
	City             string           `json:"city,omitempty"`
	Locality         string           `json:"locality,omitempty"`
	MinRent          int64            `json:"min_rent,omitempty"`
	MaxRent          int64            `json:"max_rent,omitempty"`
	BHK              []int            `json:"bhk,omitempty"`
	Types            []PropertyType   `json:"types,omitempty"`
	Furnishing       []Furnishing     `json:"furnishing,omitempty"`
	TenantPreference TenantPreference `json:"tenant_preference,omitempty"`
	Amenities        []string         `json:"amenities,omitempty"`
	Sort             SortOrder        `json:"sort,omitempty"`
	Page             int              `json:"page,omitempty"`
	PageSize         int              `json:"page_size,omitempty"`
}

// Normalize clamps paging, swaps an inverted rent range, lower-cases enums
// and drops unknown enum values rather than failing the search.
func (f *Filter) Normalize() {
	f.Query = strings.TrimSpace(f.Query)
	f.City = strings.TrimSpace(f.City)
	f.Locality = strings.TrimSpace(f.Locality)
	if f.Page < 1 {
		f.Page = 1
	}
	if f.PageSize < 1 {
		f.PageSize = DefaultPageSize
	}
	if f.PageSize > MaxPageSize {
		f.PageSize = MaxPageSize
	}
	if f.MinRent < 0 {
		f.MinRent = 0
	}
	if f.MaxRent < 0 {
		f.MaxRent = 0
	}
	if f.MaxRent > 0 && f.MinRent > f.MaxRent {
		f.MinRent, f.MaxRent = f.MaxRent, f.MinRent
	}

	bhk := f.BHK[:0:0]
	for _, b := range f.BHK {
		if b >= 0 && b <= MaxBHK && !contains(bhk, b) {
			bhk = append(bhk, b)
		}
	}
	f.BHK = bhk

	types := f.Types[:0:0]
	for _, t := range f.Types {
		t = PropertyType(lower(string(t)))
		if contains(PropertyTypes, t) && !contains(types, t) {
			types = append(types, t)
		}
	}
	f.Types = types

	furnishing := f.Furnishing[:0:0]
	for _, fu := range f.Furnishing {
		fu = Furnishing(lower(string(fu)))
		if contains(Furnishings, fu) && !contains(furnishing, fu) {
			furnishing = append(furnishing, fu)
		}
	}
	f.Furnishing = furnishing

	f.TenantPreference = TenantPreference(lower(string(f.TenantPreference)))
	if !contains(TenantPreferences, f.TenantPreference) {
		f.TenantPreference = ""
	}
	f.Amenities = NormalizeAmenities(f.Amenities)

	f.Sort = SortOrder(lower(string(f.Sort)))
	switch f.Sort {
	case SortNewest, SortRentAsc, SortRentDesc, SortPopular:
	default:
		f.Sort = SortNewest
	}
}

// Offset returns the row offset of the requested page. Normalize first.
func (f *Filter) Offset() int { return (f.Page - 1) * f.PageSize }

// IsSearch reports whether the filter narrows by text or location, which is
// what gets recorded in a user's recent searches.
func (f *Filter) IsSearch() bool { return f.Query != "" || f.City != "" || f.Locality != "" }

// Page is one page of results plus the total match count.
type Page[T any] struct {
	Items    []T `json:"items"`
	Total    int `json:"total"`
	Page     int `json:"page"`
	PageSize int `json:"page_size"`
}

// HasMore reports whether another page follows this one.
func (p Page[T]) HasMore() bool { return p.Page*p.PageSize < p.Total }
