package kv

import (
	"context"
	"encoding/json"

	"github.com/dmitrijs2005/todoauth/internal/logging"
)

// LoadJSON decodes the value stored under key. A missing key, a read error
// or undecodable data all yield the zero value; failures are logged.
func LoadJSON[T any](ctx context.Context, repo Repository, logger logging.Logger, key string) T {
	raw, err := repo.Get(ctx, key)
	if err != nil {
		logger.Error(ctx, "failed to read store entry", "key", key, "error", err)
		var zero T
		return zero
	}
	return decodeJSON[T](ctx, logger, key, raw)
}

func decodeJSON[T any](ctx context.Context, logger logging.Logger, key string, raw []byte) T {
	var v T
	if len(raw) == 0 {
		return v
	}
	if err := json.Unmarshal(raw, &v); err != nil {
		logger.Error(ctx, "corrupt store entry, using empty value", "key", key, "error", err)
		var zero T
		return zero
	}
	return v
}

// SaveJSON encodes v under key. Failures are logged and not returned.
func SaveJSON[T any](ctx context.Context, repo Repository, logger logging.Logger, key string, v T) {
	raw, err := json.Marshal(v)
	if err != nil {
		logger.Error(ctx, "failed to encode store entry", "key", key, "error", err)
		return
	}
	if err := repo.Set(ctx, key, raw); err != nil {
		logger.Error(ctx, "failed to write store entry", "key", key, "error", err)
	}
}

// UpdateJSON runs fn over the decoded value under key and stores its result
// in one Repository.Update. An error from fn aborts the write and is
// returned. When the backend fails before fn has seen the stored value, fn
// runs on the zero value and its result is written with SaveJSON. Storage
// failures are logged and swallowed; only a cancelled ctx is returned.
func UpdateJSON[T any](ctx context.Context, repo Repository, logger logging.Logger, key string, fn func(T) (T, error)) error {
	var (
		ran   bool
		fnErr error
	)
	err := repo.Update(ctx, key, func(current []byte) ([]byte, error) {
		ran = true
		next, err := fn(decodeJSON[T](ctx, logger, key, current))
		if err != nil {
			fnErr = err
			return nil, err
		}
		return json.Marshal(next)
	})
	if fnErr != nil {
		return fnErr
	}
	if err == nil {
		return nil
	}
	if ctxErr := ctx.Err(); ctxErr != nil {
		return ctxErr
	}
	logger.Error(ctx, "failed to update store entry", "key", key, "error", err)
	if ran {
		return nil
	}

	var zero T
	next, err := fn(zero)
	if err != nil {
		return err
	}
	SaveJSON(ctx, repo, logger, key, next)
	return nil
}
