package handlers

import (
	"strconv"
	"strings"

	"github.com/anjiri1684/stay_booking/apperrors"
	"github.com/anjiri1684/stay_booking/models"
	"github.com/gofiber/fiber/v2"
	"github.com/shopspring/decimal"
	"go.uber.org/zap"
)

type ListingRequest struct {
	Title         string          `json:"title" validate:"required,min=5,max=255"`
	Description   string          `json:"description" validate:"max=5000"`
	Location      string          `json:"location" validate:"required"`
	PropertyType  string          `json:"property_type" validate:"omitempty,oneof=apartment house villa cabin room other"`
	PricePerNight decimal.Decimal `json:"price_per_night"`
	Currency      string          `json:"currency" validate:"omitempty,len=3"`
	MaxGuests     int             `json:"max_guests" validate:"required,gt=0,lte=50"`
	Bedrooms      int             `json:"bedrooms" validate:"gte=0"`
	ImageURLs     []string        `json:"image_urls" validate:"dive,url"`
}

func (r *ListingRequest) check() error {
	if err := validate.Struct(r); err != nil {
		return apperrors.Validation(err.Error())
	}
	if !r.PricePerNight.IsPositive() {
		return apperrors.Validation("price_per_night must be greater than zero")
	}
	return nil
}

func (h *Handler) CreateListing(c *fiber.Ctx) error {
	p := currentPrincipal(c)
	if !p.CanCreateListing() {
		return h.respondError(c, apperrors.Forbidden("only hosts can create listings"))
	}

	var req ListingRequest
	if err := c.BodyParser(&req); err != nil {
		return badRequest(c, "Cannot parse JSON")
	}
	if err := req.check(); err != nil {
		return h.respondError(c, err)
	}

	currency := strings.ToUpper(req.Currency)
	if currency == "" {
		currency = "USD"
	}
	listing := models.Listing{
		HostID:        p.UserID,
		Title:         req.Title,
		Description:   req.Description,
		Location:      req.Location,
		PropertyType:  req.PropertyType,
		PricePerNight: req.PricePerNight.Round(2),
		Currency:      currency,
		MaxGuests:     req.MaxGuests,
		Bedrooms:      req.Bedrooms,
		ImageURLs:     strings.Join(req.ImageURLs, ","),
		Status:        models.ListingPending,
	}
	if err := h.db.WithContext(c.UserContext()).Omit("Host").Create(&listing).Error; err != nil {
		return h.respondError(c, apperrors.Upstream("failed to create listing", err))
	}

	// Earnings need somewhere to land once the first stay is paid.
	if err := h.store.EnsureWallet(c.UserContext(), p.UserID); err != nil {
		h.log.Warn("failed to provision host wallet", zap.String("host_id", p.UserID.String()), zap.Error(err))
	}

	return c.Status(fiber.StatusCreated).JSON(listing)
}

func (h *Handler) ListMyListings(c *fiber.Ctx) error {
	var listings []models.Listing
	err := h.db.WithContext(c.UserContext()).
		Where("host_id = ?", currentPrincipal(c).UserID).
		Order("created_at desc").
		Find(&listings).Error
	if err != nil {
		return h.respondError(c, apperrors.Upstream("failed to load listings", err))
	}
	return c.JSON(listings)
}

// UpdateListing lets the owning host edit details. Any edit sends the listing
// back to moderation.
func (h *Handler) UpdateListing(c *fiber.Ctx) error {
	listingID, err := paramUUID(c, "listingId")
	if err != nil {
		return h.respondError(c, err)
	}

	db := h.db.WithContext(c.UserContext())
	var listing models.Listing
	if err := db.First(&listing, "id = ?", listingID).Error; err != nil {
		return h.respondError(c, dbError(err, "listing not found"))
	}
	if !currentPrincipal(c).CanManageListing(listing.HostID) {
		return h.respondError(c, apperrors.Forbidden("you do not own this listing"))
	}

	var req ListingRequest
	if err := c.BodyParser(&req); err != nil {
		return badRequest(c, "Cannot parse JSON")
	}
	if err := req.check(); err != nil {
		return h.respondError(c, err)
	}

	updates := map[string]interface{}{
		"title":           req.Title,
		"description":     req.Description,
		"location":        req.Location,
		"property_type":   req.PropertyType,
		"price_per_night": req.PricePerNight.Round(2),
		"max_guests":      req.MaxGuests,
		"bedrooms":        req.Bedrooms,
		"image_urls":      strings.Join(req.ImageURLs, ","),
		"status":          string(models.ListingPending),
	}
	if req.Currency != "" {
		updates["currency"] = strings.ToUpper(req.Currency)
	}
	if err := db.Model(&listing).Updates(updates).Error; err != nil {
		return h.respondError(c, apperrors.Upstream("failed to update listing", err))
	}
	if err := db.First(&listing, "id = ?", listingID).Error; err != nil {
		return h.respondError(c, dbError(err, "listing not found"))
	}
	return c.JSON(listing)
}

// ListListings is the public search over approved listings.
func (h *Handler) ListListings(c *fiber.Ctx) error {
	page, limit, offset := pagination(c)

	query := h.db.WithContext(c.UserContext()).Model(&models.Listing{}).
		Where("status = ?", string(models.ListingApproved))

	if location := strings.TrimSpace(c.Query("location")); location != "" {
		query = query.Where("location ILIKE ?", "%"+location+"%")
	}
	if maxPrice := c.Query("max_price"); maxPrice != "" {
		price, err := decimal.NewFromString(maxPrice)
		if err != nil {
			return badRequest(c, "max_price must be a number")
		}
		query = query.Where("price_per_night <= ?", price)
	}
	if guests, err := strconv.Atoi(c.Query("guests")); err == nil && guests > 0 {
		query = query.Where("max_guests >= ?", guests)
	}
	if minRating, err := strconv.ParseFloat(c.Query("min_rating"), 64); err == nil {
		query = query.Where("avg_rating >= ?", minRating)
	}

	var total int64
	if err := query.Count(&total).Error; err != nil {
		return h.respondError(c, apperrors.Upstream("failed to count listings", err))
	}

	var listings []models.Listing
	err := query.Order("avg_rating desc, created_at desc").
		Offset(offset).Limit(limit).
		Preload("Host").
		Find(&listings).Error
	if err != nil {
		return h.respondError(c, apperrors.Upstream("failed to load listings", err))
	}

	return c.JSON(fiber.Map{"data": listings, "meta": pageMeta(total, page, limit)})
}

func (h *Handler) GetListing(c *fiber.Ctx) error {
	listingID, err := paramUUID(c, "listingId")
	if err != nil {
		return h.respondError(c, err)
	}

	db := h.db.WithContext(c.UserContext())
	var listing models.Listing
	err = db.Preload("Host").
		First(&listing, "id = ? AND status = ?", listingID, string(models.ListingApproved)).Error
	if err != nil {
		return h.respondError(c, dbError(err, "listing not found"))
	}

	var reviews []models.Review
	db.Where("listing_id = ?", listingID).Preload("Guest").Order("created_at desc").Limit(20).Find(&reviews)

	return c.JSON(fiber.Map{"listing": listing, "reviews": reviews})
}
