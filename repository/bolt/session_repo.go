// Package bolt persists sessions in an embedded BoltDB file for single-node
// deployments without Redis.
package bolt

import (
	"context"
	"encoding/json"
	"time"

	"github.com/fastygo/todo/domain"
	boltstore "github.com/fastygo/todo/internal/infrastructure/bolt"
	"github.com/fastygo/todo/repository"
)

// SessionRepository stores sessions as JSON documents keyed by session id.
// Expired entries are hidden on read and removed by Purge.
type SessionRepository struct {
	store *boltstore.Store
	ttl   time.Duration
	now   func() time.Time
}

var _ repository.SessionRepository = (*SessionRepository)(nil)

func NewSessionRepository(store *boltstore.Store, ttl time.Duration) *SessionRepository {
	if ttl <= 0 {
		ttl = time.Hour
	}
	return &SessionRepository{store: store, ttl: ttl, now: time.Now}
}

func (r *SessionRepository) Get(_ context.Context, id string) (*domain.Session, error) {
	raw, err := r.store.Get(id)
	if err != nil {
		return nil, err
	}
	if raw == nil {
		return nil, domain.ErrSessionNotFound
	}
	var session domain.Session
	if err := json.Unmarshal(raw, &session); err != nil {
		return nil, err
	}
	if session.IsExpired(r.now()) {
		_ = r.store.Delete(id)
		return nil, domain.ErrSessionNotFound
	}
	return &session, nil
}

func (r *SessionRepository) Save(_ context.Context, session *domain.Session) error {
	if session == nil || session.ID == "" {
		return domain.ErrInvalidPayload
	}
	if session.CreatedAt.IsZero() {
		session.CreatedAt = r.now()
	}
	if !session.ExpiresAt.After(session.CreatedAt) {
		session.ExpiresAt = session.CreatedAt.Add(r.ttl)
	}
	payload, err := json.Marshal(session)
	if err != nil {
		return err
	}
	return r.store.Put(session.ID, payload)
}

func (r *SessionRepository) Delete(_ context.Context, id string) error {
	return r.store.Delete(id)
}

func (r *SessionRepository) Extend(_ context.Context, id string, ttl time.Duration) error {
	if ttl <= 0 {
		ttl = r.ttl
	}
	return r.store.Update(id, func(current []byte) ([]byte, error) {
		if current == nil {
			return nil, domain.ErrSessionNotFound
		}
		var session domain.Session
		if err := json.Unmarshal(current, &session); err != nil {
			return nil, err
		}
		session.ExpiresAt = r.now().Add(ttl)
		return json.Marshal(session)
	})
}

// Purge deletes expired and unreadable sessions.
func (r *SessionRepository) Purge(_ context.Context) (int, error) {
	now := r.now()
	return r.store.Cleanup(func(value []byte) bool {
		var session domain.Session
		if err := json.Unmarshal(value, &session); err != nil {
			return true
		}
		return session.IsExpired(now)
	})
}
