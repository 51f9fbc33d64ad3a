package users

import (
	"context"
	"strings"

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
	return &KVRepository{kv: store, logger: logger.With("store", common.UsersStorageKey)}
}

func (r *KVRepository) Load(ctx context.Context) []models.StoredUser {
	users := kv.LoadJSON[[]models.StoredUser](ctx, r.kv, r.logger, common.UsersStorageKey)
	if users == nil {
		return []models.StoredUser{}
	}
	return users
}

func (r *KVRepository) Save(ctx context.Context, users []models.StoredUser) {
	if users == nil {
		users = []models.StoredUser{}
	}
	kv.SaveJSON(ctx, r.kv, r.logger, common.UsersStorageKey, users)
}

func (r *KVRepository) Update(ctx context.Context, fn func([]models.StoredUser) ([]models.StoredUser, error)) error {
	return kv.UpdateJSON(ctx, r.kv, r.logger, common.UsersStorageKey, func(users []models.StoredUser) ([]models.StoredUser, error) {
		if users == nil {
			users = []models.StoredUser{}
		}
		return fn(users)
	})
}

func (r *KVRepository) FindByEmail(ctx context.Context, email string) (models.StoredUser, bool) {
	users := r.Load(ctx)
	if i := IndexByEmail(users, email); i >= 0 {
		return users[i], true
	}
	return models.StoredUser{}, false
}

func (r *KVRepository) FindByID(ctx context.Context, id string) (models.StoredUser, bool) {
	users := r.Load(ctx)
	if i := IndexByID(users, id); i >= 0 {
		return users[i], true
	}
	return models.StoredUser{}, false
}

// NormalizeEmail trims and lowercases an address.
func NormalizeEmail(email string) string {
	return strings.ToLower(strings.TrimSpace(email))
}

// IndexByEmail returns the index of the user with the given email compared
// case-insensitively, or -1.
func IndexByEmail(users []models.StoredUser, email string) int {
	email = NormalizeEmail(email)
	for i := range users {
		if NormalizeEmail(users[i].Email) == email {
			return i
		}
	}
	return -1
}

// IndexByUsername is like IndexByEmail for usernames.
func IndexByUsername(users []models.StoredUser, username string) int {
	username = strings.TrimSpace(username)
	for i := range users {
		if strings.EqualFold(users[i].Username, username) {
			return i
		}
	}
	return -1
}

// IndexByID matches ids exactly.
func IndexByID(users []models.StoredUser, id string) int {
	for i := range users {
		if users[i].ID == id {
			return i
		}
	}
	return -1
}
