package service

import (
	"math"
	"strings"

	"realty_backend/internal/model"
)

// ListingInput carries client-writable listing fields. Nil means "not
// supplied"; on create every descriptive field is required.
type ListingInput struct {
	Title        *string  `json:"title"`
	Description  *string  `json:"description"`
	Price        *float64 `json:"price"`
	Address      *string  `json:"address"`
	City         *string  `json:"city"`
	State        *string  `json:"state"`
	ZipCode      *string  `json:"zipCode"`
	Latitude     *float64 `json:"latitude"`
	Longitude    *float64 `json:"longitude"`
	PropertyType *string  `json:"propertyType"`
	Bedrooms     *int     `json:"bedrooms"`
	Bathrooms    *int     `json:"bathrooms"`
	SqFt         *int     `json:"sqFt"`
	YearBuilt    *int     `json:"yearBuilt"`
	Status       *string  `json:"status"`
	IsFeatured   *bool    `json:"isFeatured"`
}

// fieldSet is the validated column -> value map of an input.
type fieldSet map[string]interface{}

// validate checks every supplied field and returns the column updates. With
// requireAll, missing descriptive fields are reported; status is left out.
func (in ListingInput) validate(requireAll bool) (fieldSet, error) {
	fields := fieldSet{}
	var missing, invalid []string

	text := func(name, column string, v *string) {
		if v == nil {
			if requireAll {
				missing = append(missing, name)
			}
			return
		}
		trimmed := strings.TrimSpace(*v)
		if trimmed == "" {
			missing = append(missing, name)
			return
		}
		fields[column] = trimmed
	}
	number := func(name, column string, v *float64, min, max float64) {
		if v == nil {
			if requireAll {
				missing = append(missing, name)
			}
			return
		}
		if math.IsNaN(*v) || *v < min || *v > max {
			invalid = append(invalid, name)
			return
		}
		fields[column] = *v
	}
	count := func(name, column string, v *int, min int) {
		if v == nil {
			if requireAll {
				missing = append(missing, name)
			}
			return
		}
		if *v < min {
			invalid = append(invalid, name)
			return
		}
		fields[column] = *v
	}

	text("title", "title", in.Title)
	text("description", "description", in.Description)
	number("price", "price", in.Price, 0, math.MaxFloat64)
	text("address", "address", in.Address)
	text("city", "city", in.City)
	text("state", "state", in.State)
	text("zipCode", "zip_code", in.ZipCode)
	number("latitude", "latitude", in.Latitude, -90, 90)
	number("longitude", "longitude", in.Longitude, -180, 180)
	count("bedrooms", "bedrooms", in.Bedrooms, 0)
	count("bathrooms", "bathrooms", in.Bathrooms, 0)
	count("sqFt", "sq_ft", in.SqFt, 0)
	count("yearBuilt", "year_built", in.YearBuilt, 0)

	switch {
	case in.PropertyType == nil:
		if requireAll {
			missing = append(missing, "propertyType")
		}
	case !model.PropertyType(*in.PropertyType).Valid():
		invalid = append(invalid, "propertyType")
	default:
		fields["property_type"] = model.PropertyType(*in.PropertyType)
	}

	if !requireAll && in.Status != nil {
		if model.ListingStatus(*in.Status).Valid() {
			fields["status"] = model.ListingStatus(*in.Status)
		} else {
			invalid = append(invalid, "status")
		}
	}
	if in.IsFeatured != nil {
		fields["is_featured"] = *in.IsFeatured
	}

	if len(missing) > 0 {
		return nil, Validationf("Missing required fields: %s", strings.Join(missing, ", "))
	}
	if len(invalid) > 0 {
		return nil, Validationf("Invalid value for: %s", strings.Join(invalid, ", "))
	}
	return fields, nil
}

// newListing builds a listing from a field set validated with requireAll.
func (f fieldSet) newListing() *model.Listing {
	l := &model.Listing{
		Title:        f["title"].(string),
		Description:  f["description"].(string),
		Price:        f["price"].(float64),
		Address:      f["address"].(string),
		City:         f["city"].(string),
		State:        f["state"].(string),
		ZipCode:      f["zip_code"].(string),
		Latitude:     f["latitude"].(float64),
		Longitude:    f["longitude"].(float64),
		PropertyType: f["property_type"].(model.PropertyType),
		Bedrooms:     f["bedrooms"].(int),
		Bathrooms:    f["bathrooms"].(int),
		SqFt:         f["sq_ft"].(int),
		YearBuilt:    f["year_built"].(int),
	}
	if featured, ok := f["is_featured"].(bool); ok {
		l.IsFeatured = featured
	}
	return l
}
