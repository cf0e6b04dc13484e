package auth

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"sync"
	"time"

	"github.com/google/uuid"
	"github.com/redis/go-redis/v9"

	"github.com/ayush/vipauth/internal/models"
)

const (
	SessionTTL    = 24 * time.Hour
	SessionCookie = "session_id"

	sessionKeyPrefix = "session:"
)

// Session is the server-side state of one browser. A nil CurrentUser means
// the browser is not logged in.
type Session struct {
	ID          string       `json:"-"`
	CurrentUser *models.User `json:"current_user,omitempty"`
}

// Authenticated reports whether a user is attached to the session.
func (s *Session) Authenticated() bool {
	return s != nil && s.CurrentUser != nil
}

// SessionBackend persists session state by id.
type SessionBackend interface {
	// Load returns nil, nil when the id is unknown or expired.
	Load(ctx context.Context, id string) (*Session, error)
	Save(ctx context.Context, s *Session, ttl time.Duration) error
	Delete(ctx context.Context, id string) error
}

// SessionStore ties a SessionBackend to the session cookie.
type SessionStore struct {
	backend SessionBackend
	ttl     time.Duration
	secure  bool
}

func NewSessionStore(backend SessionBackend, ttl time.Duration, secureCookie bool) *SessionStore {
	if ttl <= 0 {
		ttl = SessionTTL
	}
	return &SessionStore{backend: backend, ttl: ttl, secure: secureCookie}
}

// Load returns the session referenced by the request cookie, or a fresh
// unsaved session when there is none. On a backend error the returned
// session is anonymous but keeps the cookie id, so Destroy still reaches
// the stored state.
func (s *SessionStore) Load(r *http.Request) (*Session, error) {
	cookie, err := r.Cookie(SessionCookie)
	if err != nil || cookie.Value == "" {
		return &Session{}, nil
	}
	sess, err := s.backend.Load(r.Context(), cookie.Value)
	if err != nil {
		return &Session{ID: cookie.Value}, err
	}
	if sess == nil {
		return &Session{}, nil
	}
	sess.ID = cookie.Value
	return sess, nil
}

// Establish attaches user to the session under a new id, dropping the old
// server state, and sets the cookie.
func (s *SessionStore) Establish(ctx context.Context, w http.ResponseWriter, sess *Session, user *models.User) error {
	if sess.ID != "" {
		if err := s.backend.Delete(ctx, sess.ID); err != nil {
			return fmt.Errorf("drop previous session: %w", err)
		}
	}
	next := &Session{ID: uuid.New().String(), CurrentUser: user}
	if err := s.backend.Save(ctx, next, s.ttl); err != nil {
		return fmt.Errorf("save session: %w", err)
	}
	*sess = *next

	http.SetCookie(w, &http.Cookie{
		Name:     SessionCookie,
		Value:    sess.ID,
		Path:     "/",
		HttpOnly: true,
		Secure:   s.secure,
		SameSite: http.SameSiteLaxMode,
		MaxAge:   int(s.ttl / time.Second),
	})
	return nil
}

// Destroy removes the server state and expires the cookie.
func (s *SessionStore) Destroy(ctx context.Context, w http.ResponseWriter, sess *Session) error {
	if sess.ID != "" {
		if err := s.backend.Delete(ctx, sess.ID); err != nil {
			return fmt.Errorf("destroy session: %w", err)
		}
	}
	*sess = Session{}

	http.SetCookie(w, &http.Cookie{
		Name:     SessionCookie,
		Value:    "",
		Path:     "/",
		HttpOnly: true,
		Secure:   s.secure,
		MaxAge:   -1,
	})
	return nil
}

// RedisSessions stores sessions as JSON under session:<id>.
type RedisSessions struct {
	rdb *redis.Client
}

func NewRedisSessions(rdb *redis.Client) *RedisSessions {
	return &RedisSessions{rdb: rdb}
}

func (s *RedisSessions) Load(ctx context.Context, id string) (*Session, error) {
	val, err := s.rdb.Get(ctx, sessionKeyPrefix+id).Bytes()
	if errors.Is(err, redis.Nil) {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("redis get session: %w", err)
	}
	var sess Session
	if err := json.Unmarshal(val, &sess); err != nil {
		return nil, fmt.Errorf("decode session: %w", err)
	}
	return &sess, nil
}

func (s *RedisSessions) Save(ctx context.Context, sess *Session, ttl time.Duration) error {
	data, err := json.Marshal(sess)
	if err != nil {
		return fmt.Errorf("encode session: %w", err)
	}
	return s.rdb.Set(ctx, sessionKeyPrefix+sess.ID, data, ttl).Err()
}

func (s *RedisSessions) Delete(ctx context.Context, id string) error {
	return s.rdb.Del(ctx, sessionKeyPrefix+id).Err()
}

// MemorySessions keeps sessions in process memory.
type MemorySessions struct {
	mu    sync.Mutex
	now   func() time.Time
	items map[string]memorySession
}

type memorySession struct {
	user      *models.User
	expiresAt time.Time
}

func NewMemorySessions() *MemorySessions {
	return &MemorySessions{now: time.Now, items: make(map[string]memorySession)}
}

func (s *MemorySessions) Load(_ context.Context, id string) (*Session, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	item, ok := s.items[id]
	if !ok {
		return nil, nil
	}
	if !s.now().Before(item.expiresAt) {
		delete(s.items, id)
		return nil, nil
	}
	return &Session{ID: id, CurrentUser: item.user}, nil
}

func (s *MemorySessions) Save(_ context.Context, sess *Session, ttl time.Duration) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.items[sess.ID] = memorySession{user: sess.CurrentUser, expiresAt: s.now().Add(ttl)}
	return nil
}

func (s *MemorySessions) Delete(_ context.Context, id string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	delete(s.items, id)
	return nil
}

// Len returns the number of live sessions.
func (s *MemorySessions) Len() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return len(s.items)
}
