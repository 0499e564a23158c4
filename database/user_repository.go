package database

import (
	"context"

	"github.com/anjiri1684/stay_booking/models"
	"github.com/google/uuid"
)

func (r *Repository) GetUser(ctx context.Context, id uuid.UUID) (*models.User, error) {
	var user models.User
	if err := r.db.WithContext(ctx).First(&user, "id = ?", id).Error; err != nil {
		return nil, err
	}
	return &user, nil
}
