package resettokens

import (
	"context"

	"github.com/dmitrijs2005/todoauth/internal/models"
)

type Repository interface {
	Load(ctx context.Context) map[string]models.ResetToken
	Save(ctx context.Context, tokens map[string]models.ResetToken)
	// Put stores the user's reset token, replacing any earlier one.
	Put(ctx context.Context, userID string, token models.ResetToken)
	// FindByToken returns the owner and record of token regardless of expiry.
	FindByToken(ctx context.Context, token string) (string, models.ResetToken, bool)
	DeleteByUserID(ctx context.Context, userID string)
}
