package repository

import (
	"math"
	"strconv"
	"strings"

	"gorm.io/gorm"
	"gorm.io/gorm/clause"

	"realty_backend/internal/model"
)

const (
	DefaultLimit = 10
	MaxLimit     = 100
)

// sortColumns is the allow-list of public sort keys.
var sortColumns = map[string]string{
	"price":      "price",
	"createdAt":  "created_at",
	"viewsCount": "views_count",
	"bedrooms":   "bedrooms",
	"bathrooms":  "bathrooms",
}

// ListingFilter holds the public search parameters after parsing. Nil
// pointers and empty strings mean "not supplied".
type ListingFilter struct {
	PriceMin     *float64
	PriceMax     *float64
	Beds         *float64
	Baths        *float64
	PropertyType string
	Keyword      string
	Limit        int
	Skip         int
	Sort         string
}

// ParseListingFilter reads the search parameters through get, which returns ""
// for absent keys. Values that do not parse are treated as absent.
func ParseListingFilter(get func(key string) string) ListingFilter {
	return ListingFilter{
		PriceMin:     parseFloat(get("priceMin")),
		PriceMax:     parseFloat(get("priceMax")),
		Beds:         parseFloat(get("beds")),
		Baths:        parseFloat(get("baths")),
		PropertyType: strings.TrimSpace(get("propertyType")),
		Keyword:      strings.TrimSpace(get("keyword")),
		Limit:        ClampLimit(get("limit")),
		Skip:         ClampSkip(get("skip")),
		Sort:         strings.TrimSpace(get("sort")),
	}
}

// ClampLimit maps the raw limit to [0, MaxLimit]. Missing, unparsable and zero
// values fall back to DefaultLimit.
func ClampLimit(raw string) int {
	n := parseInt(raw)
	switch {
	case n == nil || *n == 0:
		return DefaultLimit
	case *n < 0:
		return 0
	case *n > MaxLimit:
		return MaxLimit
	}
	return *n
}

func ClampSkip(raw string) int {
	n := parseInt(raw)
	if n == nil || *n < 0 {
		return 0
	}
	return *n
}

// ResolveSort maps a sort key to a column. A leading "-" means descending;
// unknown keys sort newest first.
func ResolveSort(key string) clause.OrderByColumn {
	desc := strings.HasPrefix(key, "-")
	field := strings.TrimPrefix(key, "-")
	column, ok := sortColumns[field]
	if !ok {
		return clause.OrderByColumn{Column: clause.Column{Name: "created_at"}, Desc: true}
	}
	return clause.OrderByColumn{Column: clause.Column{Name: column}, Desc: desc}
}

// apply adds the filter predicates, ordering and paging to db. The caller owns
// the status predicate.
func (f ListingFilter) apply(db *gorm.DB) *gorm.DB {
	if f.PriceMin != nil {
		db = db.Where("price >= ?", *f.PriceMin)
	}
	if f.PriceMax != nil {
		db = db.Where("price <= ?", *f.PriceMax)
	}
	if f.Beds != nil {
		db = db.Where("bedrooms >= ?", *f.Beds)
	}
	if f.Baths != nil {
		db = db.Where("bathrooms >= ?", *f.Baths)
	}
	if f.PropertyType != "" {
		db = db.Where("property_type = ?", model.PropertyType(f.PropertyType))
	}
	if f.Keyword != "" {
		pattern := likePattern(f.Keyword)
		db = db.Where(
			`(LOWER(title) LIKE ? ESCAPE '\' OR LOWER(description) LIKE ? ESCAPE '\' OR LOWER(city) LIKE ? ESCAPE '\')`,
			pattern, pattern, pattern,
		)
	}
	return db.Order(ResolveSort(f.Sort)).Limit(f.Limit).Offset(f.Skip)
}

func likePattern(keyword string) string {
	escaped := strings.NewReplacer(`\`, `\\`, `%`, `\%`, `_`, `\_`).Replace(keyword)
	return "%" + strings.ToLower(escaped) + "%"
}

func parseFloat(raw string) *float64 {
	raw = strings.TrimSpace(raw)
	if raw == "" {
		return nil
	}
	v, err := strconv.ParseFloat(raw, 64)
	if err != nil || math.IsNaN(v) || math.IsInf(v, 0) {
		return nil
	}
	return &v
}

func parseInt(raw string) *int {
	f := parseFloat(raw)
	if f == nil {
		return nil
	}
	v := int(math.Max(math.Min(*f, math.MaxInt32), math.MinInt32))
	return &v
}
