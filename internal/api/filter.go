package api

import (
	"net/url"
	"strconv"
	"strings"

	"github.com/harrylevesque/rentnest/internal/models"
	"github.com/harrylevesque/rentnest/internal/utils"
)

// parseFilter reads a search filter from query parameters. List parameters
// may repeat or be comma-separated: ?bhk=1,2&type=apartment&type=villa.
func parseFilter(q url.Values) (models.Filter, error) {
	f := models.Filter{
		Query:            q.Get("q"),
		City:             q.Get("city"),
		Locality:         q.Get("locality"),
		TenantPreference: models.TenantPreference(q.Get("tenant_preference")),
		Amenities:        list(q, "amenity"),
		Sort:             models.SortOrder(q.Get("sort")),
	}
	var err error
	if f.MinRent, err = int64Param(q, "min_rent"); err != nil {
		return f, err
	}
	if f.MaxRent, err = int64Param(q, "max_rent"); err != nil {
		return f, err
	}
	if f.Page, err = intParam(q, "page"); err != nil {
		return f, err
	}
	if f.PageSize, err = intParam(q, "page_size"); err != nil {
		return f, err
	}
	for _, v := range list(q, "bhk") {
		n, err := strconv.Atoi(v)
		if err != nil {
			return f, utils.Invalid("bhk: %q is not a number", v)
		}
		f.BHK = append(f.BHK, n)
	}
	for _, v := range list(q, "type") {
		f.Types = append(f.Types, models.PropertyType(v))
	}
	for _, v := range list(q, "furnishing") {
		f.Furnishing = append(f.Furnishing, models.Furnishing(v))
	}
	return f, nil
}

func list(q url.Values, key string) []string {
	var out []string
	for _, raw := range q[key] {
		for _, v := range strings.Split(raw, ",") {
			if v = strings.TrimSpace(v); v != "" {
				out = append(out, v)
			}
		}
	}
	return out
}

func int64Param(q url.Values, key string) (int64, error) {
	v := q.Get(key)
	if v == "" {
		return 0, nil
	}
	n, err := strconv.ParseInt(v, 10, 64)
	if err != nil {
		return 0, utils.Invalid("%s: %q is not a number", key, v)
	}
	return n, nil
}

func intParam(q url.Values, key string) (int, error) {
	n, err := int64Param(q, key)
	return int(n), err
}
