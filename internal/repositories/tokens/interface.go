package tokens

import "context"

type Repository interface {
	Load(ctx context.Context) map[string]string
	Save(ctx context.Context, tokens map[string]string)
	// Put binds token to userID, replacing any previous token of that user.
	Put(ctx context.Context, userID, token string)
	// DeleteByUserID removes the user's token. Unknown ids are ignored.
	DeleteByUserID(ctx context.Context, userID string)
	UserIDByToken(ctx context.Context, token string) (string, bool)
	TokenByUserID(ctx context.Context, userID string) (string, bool)
}
