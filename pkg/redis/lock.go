package redis

import (
	"context"
	"errors"
	"strings"
	"time"

	"github.com/google/uuid"

	"github.com/fulfilment-application/monolith/pkg/config"
	pkgerrors "github.com/fulfilment-application/monolith/pkg/errors"
)

// lockStore defines the operations used by MutationLocks.
type lockStore interface {
	SetNX(ctx context.Context, key string, value any, ttl time.Duration) (bool, error)
	Get(ctx context.Context, key string) (string, error)
	Del(ctx context.Context, keys ...string) error
}

// MutationLocks hands out short-lived per-key locks that serialize
// validate-then-write sequences against the same aggregate. The counted
// aggregates (per store, per warehouse, per location) stay consistent across
// concurrent writers only while exactly one writer holds the key.
type MutationLocks struct {
	client lockStore
	cfg    config.LockConfig
}

// Lease is a held lock. Release is safe to call once the guarded write landed.
type Lease struct {
	client lockStore
	key    string
	owner  string
}

// NewMutationLocks builds a lock provider over the shared redis client.
func NewMutationLocks(client lockStore, cfg config.LockConfig) (*MutationLocks, error) {
	if client == nil {
		return nil, errors.New("redis client required for mutation locks")
	}
	if cfg.TTL <= 0 {
		cfg.TTL = 10 * time.Second
	}
	if cfg.RetryInterval <= 0 {
		cfg.RetryInterval = 25 * time.Millisecond
	}
	if cfg.MaxWait <= 0 {
		cfg.MaxWait = 2 * time.Second
	}
	return &MutationLocks{client: client, cfg: cfg}, nil
}

// Key builds a namespaced mutation lock key for the given scope and parts.
func (l *MutationLocks) Key(scope string, parts ...string) string {
	segments := append([]string{keyNamespace, mutationPrefix, scope}, parts...)
	return strings.Join(segments, ":")
}

// Acquire obtains the lock for key, retrying until MaxWait elapses.
func (l *MutationLocks) Acquire(ctx context.Context, key string) (*Lease, error) {
	if key == "" {
		return nil, errors.New("lock key is required")
	}

	owner := uuid.NewString()
	deadline := time.Now().Add(l.cfg.MaxWait)

	for {
		ok, err := l.client.SetNX(ctx, key, owner, l.cfg.TTL)
		if err != nil {
			return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "acquire mutation lock")
		}
		if ok {
			return &Lease{client: l.client, key: key, owner: owner}, nil
		}
		if time.Now().After(deadline) {
			return nil, pkgerrors.Newf(pkgerrors.CodeConflict, "concurrent modification in progress for %s", key)
		}
		select {
		case <-ctx.Done():
			return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, ctx.Err(), "acquire mutation lock")
		case <-time.After(l.cfg.RetryInterval):
		}
	}
}

// Release frees the lock only if the owner value still matches.
func (le *Lease) Release(ctx context.Context) error {
	if le == nil || le.owner == "" {
		return nil
	}
	value, err := le.client.Get(ctx, le.key)
	if err != nil {
		if IsNil(err) {
			return nil
		}
		return err
	}
	if value != le.owner {
		// lock expired and was taken by someone else; do not delete theirs
		return nil
	}
	return le.client.Del(ctx, le.key)
}
