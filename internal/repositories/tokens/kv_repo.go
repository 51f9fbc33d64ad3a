package tokens

import (
	"context"
	"maps"
	"sync"

	"github.com/dmitrijs2005/todoauth/internal/common"
	"github.com/dmitrijs2005/todoauth/internal/logging"
	"github.com/dmitrijs2005/todoauth/internal/repositories/kv"
)

type KVRepository struct {
	kv     kv.Repository
	logger logging.Logger

	mu      sync.RWMutex
	loaded  bool
	byUser  map[string]string
	byToken map[string]string
}

func NewKVRepository(store kv.Repository, logger logging.Logger) *KVRepository {
	return &KVRepository{
		kv:      store,
		logger:  logger.With("store", common.TokensStorageKey),
		byUser:  map[string]string{},
		byToken: map[string]string{},
	}
}

// reindex replaces both indexes with the contents of m.
func (r *KVRepository) reindex(m map[string]string) {
	byUser := make(map[string]string, len(m))
	byToken := make(map[string]string, len(m))
	for userID, token := range m {
		byUser[userID] = token
		byToken[token] = userID
	}

	r.mu.Lock()
	r.byUser, r.byToken = byUser, byToken
	r.loaded = true
	r.mu.Unlock()
}

// ensureIndex reads the document once; afterwards the index is kept current
// by Load, Save, Put and DeleteByUserID.
func (r *KVRepository) ensureIndex(ctx context.Context) {
	r.mu.RLock()
	loaded := r.loaded
	r.mu.RUnlock()
	if !loaded {
		r.Load(ctx)
	}
}

func (r *KVRepository) Load(ctx context.Context) map[string]string {
	m := kv.LoadJSON[map[string]string](ctx, r.kv, r.logger, common.TokensStorageKey)
	if m == nil {
		m = map[string]string{}
	}
	r.reindex(m)
	return m
}

func (r *KVRepository) Save(ctx context.Context, tokens map[string]string) {
	if tokens == nil {
		tokens = map[string]string{}
	}
	kv.SaveJSON(ctx, r.kv, r.logger, common.TokensStorageKey, tokens)
	r.reindex(tokens)
}

func (r *KVRepository) update(ctx context.Context, fn func(map[string]string)) {
	var written map[string]string
	_ = kv.UpdateJSON(ctx, r.kv, r.logger, common.TokensStorageKey, func(m map[string]string) (map[string]string, error) {
		if m == nil {
			m = map[string]string{}
		}
		fn(m)
		written = maps.Clone(m)
		return m, nil
	})
	if written != nil {
		r.reindex(written)
	}
}

func (r *KVRepository) Put(ctx context.Context, userID, token string) {
	r.update(ctx, func(m map[string]string) { m[userID] = token })
}

func (r *KVRepository) DeleteByUserID(ctx context.Context, userID string) {
	r.update(ctx, func(m map[string]string) { delete(m, userID) })
}

// UserIDByToken resolves token through the in-memory index.
func (r *KVRepository) UserIDByToken(ctx context.Context, token string) (string, bool) {
	if token == "" {
		return "", false
	}
	r.ensureIndex(ctx)

	r.mu.RLock()
	defer r.mu.RUnlock()
	id, ok := r.byToken[token]
	return id, ok
}

func (r *KVRepository) TokenByUserID(ctx context.Context, userID string) (string, bool) {
	r.ensureIndex(ctx)

	r.mu.RLock()
	defer r.mu.RUnlock()
	token, ok := r.byUser[userID]
	return token, ok
}
