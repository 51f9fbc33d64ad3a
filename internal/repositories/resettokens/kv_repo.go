package resettokens

import (
	"context"
	"crypto/subtle"

	"github.com/dmitrijs2005/todoauth/internal/common"
	"github.com/dmitrijs2005/todoauth/internal/logging"
	"github.com/dmitrijs2005/todoauth/internal/models"
	"github.com/dmitrijs2005/todoauth/internal/repositories/kv"
)

type KVRepository struct {
	kv     kv.Repository
	logger logging.Logger
}

func NewKVRepository(store kv.Repository, logger logging.Logger) *KVRepository {
	return &KVRepository{kv: store, logger: logger.With("store", common.ResetTokensStorageKey)}
}

func (r *KVRepository) Load(ctx context.Context) map[string]models.ResetToken {
	m := kv.LoadJSON[map[string]models.ResetToken](ctx, r.kv, r.logger, common.ResetTokensStorageKey)
	if m == nil {
		return map[string]models.ResetToken{}
	}
	return m
}

func (r *KVRepository) Save(ctx context.Context, tokens map[string]models.ResetToken) {
	if tokens == nil {
		tokens = map[string]models.ResetToken{}
	}
	kv.SaveJSON(ctx, r.kv, r.logger, common.ResetTokensStorageKey, tokens)
}

func (r *KVRepository) update(ctx context.Context, fn func(map[string]models.ResetToken)) {
	_ = kv.UpdateJSON(ctx, r.kv, r.logger, common.ResetTokensStorageKey,
		func(m map[string]models.ResetToken) (map[string]models.ResetToken, error) {
			if m == nil {
				m = map[string]models.ResetToken{}
			}
			fn(m)
			return m, nil
		})
}

func (r *KVRepository) Put(ctx context.Context, userID string, token models.ResetToken) {
	r.update(ctx, func(m map[string]models.ResetToken) { m[userID] = token })
}

func (r *KVRepository) DeleteByUserID(ctx context.Context, userID string) {
	r.update(ctx, func(m map[string]models.ResetToken) { delete(m, userID) })
}

func (r *KVRepository) FindByToken(ctx context.Context, token string) (string, models.ResetToken, bool) {
	if token == "" {
		return "", models.ResetToken{}, false
	}
	for userID, rt := range r.Load(ctx) {
		if subtle.ConstantTimeCompare([]byte(rt.Token), []byte(token)) == 1 {
			return userID, rt, true
		}
	}
	return "", models.ResetToken{}, false
}
