package handlers

import (
	"strings"

	"github.com/anjiri1684/stay_booking/models"
	"github.com/gofiber/fiber/v2"
)

type UpdateProfileRequest struct {
	FullName          *string `json:"full_name" validate:"omitempty,min=3"`
	Phone             *string `json:"phone"`
	ProfilePictureURL *string `json:"profile_picture_url" validate:"omitempty,url"`
	Bio               *string `json:"bio"`
}

func (h *Handler) GetProfile(c *fiber.Ctx) error {
	var user models.User
	if err := h.db.WithContext(c.UserContext()).First(&user, "id = ?", currentPrincipal(c).UserID).Error; err != nil {
		return h.respondError(c, dbError(err, "user not found"))
	}
	return c.JSON(user)
}

func (h *Handler) UpdateProfile(c *fiber.Ctx) error {
	var req UpdateProfileRequest
	if err := c.BodyParser(&req); err != nil {
		return badRequest(c, "Cannot parse JSON")
	}
	if err := validate.Struct(req); err != nil {
		return badRequest(c, err.Error())
	}

	updates := map[string]interface{}{}
	if req.FullName != nil {
		updates["full_name"] = strings.TrimSpace(*req.FullName)
	}
	if req.Phone != nil {
		updates["phone"] = req.Phone
	}
	if req.ProfilePictureURL != nil {
		updates["profile_picture_url"] = req.ProfilePictureURL
	}
	if req.Bio != nil {
		updates["bio"] = req.Bio
	}

	userID := currentPrincipal(c).UserID
	db := h.db.WithContext(c.UserContext())
	if len(updates) > 0 {
		if err := db.Model(&models.User{}).Where("id = ?", userID).Updates(updates).Error; err != nil {
			return h.respondError(c, dbError(err, "user not found"))
		}
	}

	var user models.User
	if err := db.First(&user, "id = ?", userID).Error; err != nil {
		return h.respondError(c, dbError(err, "user not found"))
	}
	return c.JSON(user)
}
