package listings

import (
	"errors"
	"mime/multipart"
	"strconv"
	"strings"

	imagesvc "realty-backend/internal/application/images"
	listsvc "realty-backend/internal/application/listings"
	"realty-backend/internal/pkg/response"
	"realty-backend/internal/pkg/validation"

	"github.com/gofiber/fiber/v2"
	"github.com/google/uuid"
	"github.com/rs/zerolog/log"
)

type Handlers struct {
	Service *listsvc.Service
	Images  *imagesvc.Service
}

// CreateListing POST /api/listings. Multipart form with mainImage and
// additionalImages files, or JSON carrying image URLs. 201 with the listing.
func (h *Handlers) CreateListing(c *fiber.Ctx) error {
	if strings.HasPrefix(c.Get(fiber.HeaderContentType), fiber.MIMEMultipartForm) {
		return h.createFromForm(c)
	}
	var in listsvc.CreateListingInput
	if err := c.BodyParser(&in); err != nil {
		return response.Error(c, "Invalid request body", fiber.StatusBadRequest, nil)
	}
	return h.create(c, in, nil)
}

func (h *Handlers) createFromForm(c *fiber.Ctx) error {
	form, err := c.MultipartForm()
	if err != nil {
		return response.Error(c, "Invalid multipart form", fiber.StatusBadRequest, nil)
	}
	in, fieldErrs := inputFromForm(form)
	if len(fieldErrs) > 0 {
		return response.Invalid(c, "Missing or invalid fields", &validation.Error{Fields: fieldErrs})
	}
	// Reject bad fields before any file is written.
	if err := in.Validate(); err != nil {
		return response.Invalid(c, "Missing or invalid fields", err)
	}

	main := fileList(form.File["mainImage"])
	additional := fileList(form.File["additionalImages"])
	if len(main) == 0 && len(additional) == 0 {
		return h.create(c, in, nil)
	}
	if h.Images == nil {
		return response.Error(c, "Image uploads are not configured", fiber.StatusServiceUnavailable, nil)
	}
	stored, err := h.Images.Ingest(c.UserContext(), main, additional)
	if err != nil {
		if isImageRejection(err) {
			return response.Error(c, err.Error(), fiber.StatusBadRequest, nil)
		}
		log.Error().Err(err).Msg("listings: storing images failed")
		return response.Internal(c)
	}
	if len(main) > 0 {
		in.MainImage = stored.MainImage
	}
	if len(additional) > 0 {
		in.AdditionalImages = stored.AdditionalImages
	}
	return h.create(c, in, stored)
}

func (h *Handlers) create(c *fiber.Ctx, in listsvc.CreateListingInput, stored *imagesvc.Stored) error {
	listing, err := h.Service.CreateListing(c.UserContext(), in)
	if err != nil {
		if stored != nil {
			h.Images.Discard(c.UserContext(), stored)
		}
		var verr *validation.Error
		if errors.As(err, &verr) {
			return response.Invalid(c, "Missing or invalid fields", err)
		}
		log.Error().Err(err).Msg("listings: create failed")
		return response.Error(c, "Failed to create listing", fiber.StatusInternalServerError, nil)
	}
	return response.SuccessCreated(c, "Listing created successfully", listing, nil)
}

// GetListings GET /api/listings. All listings, narrowed and ordered by the
// search, priceRange, bedrooms, propertyType and sortBy query params.
func (h *Handlers) GetListings(c *fiber.Ctx) error {
	filter, err := listsvc.ParseFilter(c.Queries())
	if err != nil {
		return response.Error(c, err.Error(), fiber.StatusBadRequest, nil)
	}
	listings, err := h.Service.SearchListings(c.UserContext(), filter)
	if err != nil {
		log.Error().Err(err).Msg("listings: fetch failed")
		return response.Error(c, "Failed to fetch listings", fiber.StatusInternalServerError, nil)
	}
	return response.Success(c, "Listings fetched successfully", listings, fiber.Map{"count": len(listings)})
}

// GetListingByID GET /api/listings/:id
func (h *Handlers) GetListingByID(c *fiber.Ctx) error {
	id, err := uuid.Parse(c.Params("id"))
	if err != nil {
		return response.Error(c, "Invalid listing id", fiber.StatusBadRequest, nil)
	}
	listing, err := h.Service.GetListingByID(c.UserContext(), id)
	if err != nil {
		if errors.Is(err, listsvc.ErrListingNotFound) {
			return response.Error(c, err.Error(), fiber.StatusNotFound, nil)
		}
		log.Error().Err(err).Str("listing_id", id.String()).Msg("listings: fetch failed")
		return response.Internal(c)
	}
	return response.Success(c, "Listing fetched successfully", listing, nil)
}

// GetProperties GET /api/properties?ids=a,b,c. The listings among ids;
// unknown or malformed ids are left out.
func (h *Handlers) GetProperties(c *fiber.Ctx) error {
	var ids []string
	for _, raw := range strings.Split(c.Query("ids"), ",") {
		if raw = strings.TrimSpace(raw); raw != "" {
			ids = append(ids, raw)
		}
	}
	listings, err := h.Service.GetListingsByIDs(c.UserContext(), ids)
	if err != nil {
		log.Error().Err(err).Msg("listings: fetch by ids failed")
		return response.Internal(c)
	}
	return response.Success(c, "Properties fetched successfully", listings, fiber.Map{"count": len(listings)})
}

func inputFromForm(form *multipart.Form) (listsvc.CreateListingInput, map[string]string) {
	value := func(k string) string {
		if v := form.Value[k]; len(v) > 0 {
			return strings.TrimSpace(v[0])
		}
		return ""
	}
	errs := map[string]string{}
	in := listsvc.CreateListingInput{
		Title:        value("title"),
		Description:  value("description"),
		PropertyType: value("propertyType"),
		Price:        value("price"),
		Address:      value("address"),
		MainImage:    value("mainImage"),
	}
	for _, u := range form.Value["additionalImages"] {
		if u = strings.TrimSpace(u); u != "" {
			in.AdditionalImages = append(in.AdditionalImages, u)
		}
	}
	if s := value("bedrooms"); s != "" {
		if n, err := strconv.Atoi(s); err == nil {
			in.Bedrooms = &n
		} else {
			errs["bedrooms"] = "must be a whole number"
		}
	}
	if s := value("bathrooms"); s != "" {
		if f, err := strconv.ParseFloat(s, 64); err == nil {
			in.Bathrooms = &f
		} else {
			errs["bathrooms"] = "must be a number"
		}
	}
	if s := value("squareFootage"); s != "" {
		if n, err := strconv.Atoi(strings.ReplaceAll(s, ",", "")); err == nil {
			in.SquareFootage = &n
		} else {
			errs["squareFootage"] = "must be a whole number"
		}
	}
	return in, errs
}

func fileList(headers []*multipart.FileHeader) []imagesvc.File {
	out := make([]imagesvc.File, 0, len(headers))
	for _, fh := range headers {
		out = append(out, imagesvc.FromHeader(fh))
	}
	return out
}

func isImageRejection(err error) bool {
	return errors.Is(err, imagesvc.ErrTooManyImages) ||
		errors.Is(err, imagesvc.ErrImageTooLarge) ||
		errors.Is(err, imagesvc.ErrNotAnImage)
}
