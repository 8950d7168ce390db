package listings

import (
	"errors"
	"regexp"
	"sort"
	"strconv"
	"strings"

	"realty-backend/internal/domain"
)

// SortOrder names a listing ordering.
type SortOrder string

const (
	SortNone      SortOrder = ""
	SortPriceAsc  SortOrder = "priceLowToHigh"
	SortPriceDesc SortOrder = "priceHighToLow"
	SortNewest    SortOrder = "newest"
)

var ErrInvalidFilter = errors.New("Invalid filter")

// Filter narrows and orders a listing set. Zero values disable a criterion.
type Filter struct {
	SearchText   string
	PriceMin     *int64
	PriceMax     *int64
	Bedrooms     *int
	PropertyType string
	SortBy       SortOrder
}

var bedroomsInTitle = regexp.MustCompile(`(?i)(\d+)\s*-?\s*bed(?:room)?s?\b`)

// ParseSortOrder accepts the UI names and the short aliases.
func ParseSortOrder(s string) SortOrder {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "pricelowtohigh", "priceasc", "price_asc":
		return SortPriceAsc
	case "pricehightolow", "pricedesc", "price_desc":
		return SortPriceDesc
	case "newest":
		return SortNewest
	}
	return SortNone
}

// ParseFilter reads search, priceRange ("min,max"), priceMin, priceMax,
// bedrooms, propertyType and sortBy from query parameters.
func ParseFilter(q map[string]string) (Filter, error) {
	f := Filter{
		SearchText:   strings.TrimSpace(q["search"]),
		PropertyType: strings.TrimSpace(q["propertyType"]),
		SortBy:       ParseSortOrder(q["sortBy"]),
	}
	if r := strings.TrimSpace(q["priceRange"]); r != "" {
		lo, hi, ok := strings.Cut(r, ",")
		if !ok {
			return Filter{}, ErrInvalidFilter
		}
		low, err1 := parseBound(lo)
		high, err2 := parseBound(hi)
		if err1 != nil || err2 != nil {
			return Filter{}, ErrInvalidFilter
		}
		f.PriceMin, f.PriceMax = low, high
	}
	if v := strings.TrimSpace(q["priceMin"]); v != "" {
		low, err := parseBound(v)
		if err != nil {
			return Filter{}, ErrInvalidFilter
		}
		f.PriceMin = low
	}
	if v := strings.TrimSpace(q["priceMax"]); v != "" {
		high, err := parseBound(v)
		if err != nil {
			return Filter{}, ErrInvalidFilter
		}
		f.PriceMax = high
	}
	if f.PriceMin != nil && f.PriceMax != nil && *f.PriceMin > *f.PriceMax {
		return Filter{}, ErrInvalidFilter
	}
	if v := strings.TrimSpace(q["bedrooms"]); v != "" {
		n, err := strconv.Atoi(v)
		if err != nil || n < 0 {
			return Filter{}, ErrInvalidFilter
		}
		f.Bedrooms = &n
	}
	return f, nil
}

func parseBound(s string) (*int64, error) {
	s = strings.TrimSpace(s)
	if s == "" {
		return nil, nil
	}
	n, err := strconv.ParseInt(domain.DigitsOnly(s), 10, 64)
	if err != nil {
		return nil, err
	}
	return &n, nil
}

// Apply returns the listings matching f, ordered by f.SortBy. The input slice
// is not modified. Unsorted results keep input order; sorts are stable.
func Apply(listings []domain.Listing, f Filter) []domain.Listing {
	search := strings.ToLower(f.SearchText)
	propertyType := strings.ToLower(f.PropertyType)

	out := make([]domain.Listing, 0, len(listings))
	for _, l := range listings {
		if search != "" &&
			!strings.Contains(strings.ToLower(l.Title), search) &&
			!strings.Contains(strings.ToLower(l.Description), search) {
			continue
		}
		price := domain.NumericPrice(l.Price)
		if f.PriceMin != nil && price < *f.PriceMin {
			continue
		}
		if f.PriceMax != nil && price > *f.PriceMax {
			continue
		}
		if f.Bedrooms != nil && TitleBedrooms(l) != *f.Bedrooms {
			continue
		}
		if propertyType != "" && !strings.Contains(strings.ToLower(l.Title), propertyType) {
			continue
		}
		out = append(out, l)
	}

	switch f.SortBy {
	case SortPriceAsc:
		sort.SliceStable(out, func(i, j int) bool {
			return domain.NumericPrice(out[i].Price) < domain.NumericPrice(out[j].Price)
		})
	case SortPriceDesc:
		sort.SliceStable(out, func(i, j int) bool {
			return domain.NumericPrice(out[i].Price) > domain.NumericPrice(out[j].Price)
		})
	case SortNewest:
		sort.SliceStable(out, func(i, j int) bool {
			if !out[i].CreatedAt.Equal(out[j].CreatedAt) {
				return out[i].CreatedAt.After(out[j].CreatedAt)
			}
			return out[i].ID.String() > out[j].ID.String()
		})
	}
	return out
}

// TitleBedrooms is the bedroom count written in the title ("3 Bedroom House"),
// falling back to the Bedrooms column when the title carries none.
func TitleBedrooms(l domain.Listing) int {
	if m := bedroomsInTitle.FindStringSubmatch(l.Title); m != nil {
		if n, err := strconv.Atoi(m[1]); err == nil {
			return n
		}
	}
	return l.Bedrooms
}
