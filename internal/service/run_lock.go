package service

import (
	"context"
	"sync"
	"time"

	"go.uber.org/zap"

	appErrors "github.com/noah-isme/revision-planner-api/pkg/errors"
)

// RunLockStore is a distributed lock backend.
type RunLockStore interface {
	Acquire(ctx context.Context, key string, ttl time.Duration) (string, bool, error)
	Release(ctx context.Context, key, token string) error
}

// RunLocker serialises planner runs per user. A second run while one is in
// flight fails with CONFLICT instead of waiting.
type RunLocker struct {
	store   RunLockStore
	ttl     time.Duration
	logger  *zap.Logger
	metrics *MetricsService

	mu   sync.Mutex
	held map[string]struct{}
}

// NewRunLocker builds a locker. With a nil store locks are held in-process only.
func NewRunLocker(store RunLockStore, ttl time.Duration, metrics *MetricsService, logger *zap.Logger) *RunLocker {
	if ttl <= 0 {
		ttl = 30 * time.Second
	}
	if logger == nil {
		logger = zap.NewNop()
	}
	return &RunLocker{store: store, ttl: ttl, logger: logger, metrics: metrics, held: make(map[string]struct{})}
}

func runLockKey(userID string) string {
	return "planner:lock:" + userID
}

// Lock takes the user's run lock and returns the function releasing it.
func (l *RunLocker) Lock(ctx context.Context, userID string) (func(), error) {
	if l.store == nil {
		return l.lockLocal(userID)
	}

	key := runLockKey(userID)
	token, ok, err := l.store.Acquire(ctx, key, l.ttl)
	if err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to acquire planner lock")
	}
	if !ok {
		l.metrics.RecordLockContention()
		return nil, appErrors.Clone(appErrors.ErrConflict, "a planning run is already in progress")
	}
	return func() {
		// The request context may already be cancelled; release on a fresh one.
		releaseCtx, cancel := context.WithTimeout(context.Background(), 2*time.Second)
		defer cancel()
		if err := l.store.Release(releaseCtx, key, token); err != nil {
			l.logger.Warn("planner lock release failed", zap.String("user_id", userID), zap.Error(err))
		}
	}, nil
}

func (l *RunLocker) lockLocal(userID string) (func(), error) {
	l.mu.Lock()
	defer l.mu.Unlock()
	if _, busy := l.held[userID]; busy {
		l.metrics.RecordLockContention()
		return nil, appErrors.Clone(appErrors.ErrConflict, "a planning run is already in progress")
	}
	l.held[userID] = struct{}{}
	return func() {
		l.mu.Lock()
		delete(l.held, userID)
		l.mu.Unlock()
	}, nil
}
