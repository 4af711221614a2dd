package controller

import (
	"encoding/json"
	"io"
	"mime/multipart"
	"strconv"
	"strings"

	"github.com/gofiber/fiber/v2"

	"realty_backend/internal/repository"
	"realty_backend/internal/service"
	"realty_backend/pkg/media"
	"realty_backend/pkg/utils/validation"
)

const imagesField = "images"

type ListingController struct {
	listings *service.ListingService
}

func NewListingController(listings *service.ListingService) *ListingController {
	return &ListingController{listings: listings}
}

// GetAllListings is the public search.
func (h *ListingController) GetAllListings(c *fiber.Ctx) error {
	filter := repository.ParseListingFilter(func(key string) string { return c.Query(key) })

	listings, err := h.listings.Search(c.UserContext(), filter)
	if err != nil {
		return err
	}

	return c.JSON(fiber.Map{
		"results":  len(listings),
		"listings": listings,
	})
}

// GetListing returns one Active listing and counts the view.
func (h *ListingController) GetListing(c *fiber.Ctx) error {
	listing, err := h.listings.GetActive(c.UserContext(), c.Params("id"))
	if err != nil {
		return err
	}
	return c.JSON(fiber.Map{"listing": listing})
}

func (h *ListingController) GetMyListings(c *fiber.Ctx) error {
	id, err := currentUser(c)
	if err != nil {
		return err
	}

	listings, err := h.listings.ListForAgent(c.UserContext(), id)
	if err != nil {
		return err
	}

	return c.JSON(fiber.Map{
		"results":  len(listings),
		"listings": listings,
	})
}

func (h *ListingController) CreateListing(c *fiber.Ctx) error {
	id, err := currentUser(c)
	if err != nil {
		return err
	}

	body, err := parseListingBody(c)
	if err != nil {
		return err
	}

	listing, err := h.listings.Create(c.UserContext(), id, body.ListingInput, body.Files)
	if err != nil {
		return err
	}

	return c.Status(fiber.StatusCreated).JSON(fiber.Map{"listing": listing})
}

func (h *ListingController) UpdateListing(c *fiber.Ctx) error {
	id, err := currentUser(c)
	if err != nil {
		return err
	}

	body, err := parseListingBody(c)
	if err != nil {
		return err
	}

	listing, err := h.listings.Update(c.UserContext(), id, c.Params("id"), body.ListingInput, body.ImagesToDelete, body.Files)
	if err != nil {
		return err
	}

	return c.JSON(fiber.Map{"listing": listing})
}

func (h *ListingController) DeleteListing(c *fiber.Ctx) error {
	id, err := currentUser(c)
	if err != nil {
		return err
	}

	if err := h.listings.Delete(c.UserContext(), id, c.Params("id")); err != nil {
		return err
	}
	return c.SendStatus(fiber.StatusNoContent)
}

// listingBody is a create or update request in either encoding.
type listingBody struct {
	service.ListingInput
	ImagesToDelete []string     `json:"imagesToDelete"`
	Files          []media.File `json:"-"`
}

func parseListingBody(c *fiber.Ctx) (*listingBody, error) {
	body := new(listingBody)
	if !c.Is("json") && len(c.Body()) > 0 {
		return body, parseListingForm(c, body)
	}
	if err := parseJSON(c, body); err != nil {
		return nil, err
	}
	return body, nil
}

// parseListingForm reads a multipart or urlencoded body. Photos arrive under
// the "images" field.
func parseListingForm(c *fiber.Ctx, body *listingBody) error {
	values := map[string][]string{}
	var files []*multipart.FileHeader

	if strings.HasPrefix(c.Get(fiber.HeaderContentType), fiber.MIMEMultipartForm) {
		form, err := c.MultipartForm()
		if err != nil {
			return service.Validationf("Invalid multipart form")
		}
		values = form.Value
		files = form.File[imagesField]
	} else {
		c.Request().PostArgs().VisitAll(func(key, value []byte) {
			values[string(key)] = append(values[string(key)], string(value))
		})
	}

	f := formReader{values: values}
	in := &body.ListingInput
	in.Title = f.text("title")
	in.Description = f.text("description")
	in.Price = f.number("price")
	in.Address = f.text("address")
	in.City = f.text("city")
	in.State = f.text("state")
	in.ZipCode = f.text("zipCode")
	in.Latitude = f.number("latitude")
	in.Longitude = f.number("longitude")
	in.PropertyType = f.text("propertyType")
	in.Bedrooms = f.integer("bedrooms")
	in.Bathrooms = f.integer("bathrooms")
	in.SqFt = f.integer("sqFt")
	in.YearBuilt = f.integer("yearBuilt")
	in.Status = f.text("status")
	in.IsFeatured = f.boolean("isFeatured")
	body.ImagesToDelete = f.list("imagesToDelete")
	if len(f.invalid) > 0 {
		return service.Validationf("Invalid value for: %s", strings.Join(f.invalid, ", "))
	}

	if err := validation.ValidateImages(files); err != nil {
		return service.Validationf("%s", err.Error())
	}
	for _, fh := range files {
		file, err := readFile(fh)
		if err != nil {
			return err
		}
		body.Files = append(body.Files, file)
	}
	return nil
}

func readFile(fh *multipart.FileHeader) (media.File, error) {
	src, err := fh.Open()
	if err != nil {
		return media.File{}, service.Validationf("Could not read image %q.", fh.Filename)
	}
	defer src.Close()

	data, err := io.ReadAll(io.LimitReader(src, validation.MaxImageSize+1))
	if err != nil || len(data) > validation.MaxImageSize {
		return media.File{}, service.Validationf("Could not read image %q.", fh.Filename)
	}
	return media.File{
		Filename:    fh.Filename,
		ContentType: fh.Header.Get(fiber.HeaderContentType),
		Data:        data,
	}, nil
}

// formReader converts form strings to typed, optional values and remembers
// the fields that did not parse.
type formReader struct {
	values  map[string][]string
	invalid []string
}

func (f *formReader) raw(key string) (string, bool) {
	v, ok := f.values[key]
	if !ok || len(v) == 0 {
		return "", false
	}
	return v[0], true
}

func (f *formReader) text(key string) *string {
	v, ok := f.raw(key)
	if !ok {
		return nil
	}
	return &v
}

func (f *formReader) number(key string) *float64 {
	v, ok := f.raw(key)
	if !ok {
		return nil
	}
	n, err := strconv.ParseFloat(strings.TrimSpace(v), 64)
	if err != nil {
		f.invalid = append(f.invalid, key)
		return nil
	}
	return &n
}

func (f *formReader) integer(key string) *int {
	v, ok := f.raw(key)
	if !ok {
		return nil
	}
	n, err := strconv.Atoi(strings.TrimSpace(v))
	if err != nil {
		f.invalid = append(f.invalid, key)
		return nil
	}
	return &n
}

func (f *formReader) boolean(key string) *bool {
	v, ok := f.raw(key)
	if !ok {
		return nil
	}
	b, err := strconv.ParseBool(strings.TrimSpace(v))
	if err != nil {
		f.invalid = append(f.invalid, key)
		return nil
	}
	return &b
}

// list accepts repeated fields ("key" or "key[]") or one JSON array.
func (f *formReader) list(key string) []string {
	values := append(append([]string{}, f.values[key]...), f.values[key+"[]"]...)
	if len(values) == 1 && strings.HasPrefix(strings.TrimSpace(values[0]), "[") {
		var parsed []string
		if err := json.Unmarshal([]byte(values[0]), &parsed); err != nil {
			f.invalid = append(f.invalid, key)
			return nil
		}
		return parsed
	}
	var out []string
	for _, v := range values {
		if v = strings.TrimSpace(v); v != "" {
			out = append(out, v)
		}
	}
	return out
}
