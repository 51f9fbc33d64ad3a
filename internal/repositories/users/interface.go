package users

import (
	"context"

	"github.com/dmitrijs2005/todoauth/internal/models"
)

type Repository interface {
	Load(ctx context.Context) []models.StoredUser
	Save(ctx context.Context, users []models.StoredUser)
	// Update runs fn over the current collection and saves the result.
	// An error from fn is returned and nothing is written.
	Update(ctx context.Context, fn func([]models.StoredUser) ([]models.StoredUser, error)) error
	FindByEmail(ctx context.Context, email string) (models.StoredUser, bool)
	FindByID(ctx context.Context, id string) (models.StoredUser, bool)
}
