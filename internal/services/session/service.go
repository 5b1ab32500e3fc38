package session

import (
	"context"
	"encoding/json"
	"net/http"
	"sync"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"github.com/google/uuid"

	"github.com/rubiogarciadental/iadental/internal/assistant/models"
	"github.com/rubiogarciadental/iadental/internal/config"
	"github.com/rubiogarciadental/iadental/internal/infrastructure/redis"
)

const (
	// cookieLifetime covers one clinic workday; chat surfaces are not meant
	// to outlive a shift.
	cookieLifetime = 8 * time.Hour
)

// SessionClaims bind a browser to one assistant session. Mode lives in the
// signed claims, so a surface can never upgrade its capability tier without
// opening a new session.
type SessionClaims struct {
	jwt.RegisteredClaims
	SessionID   string      `json:"sid"`
	AssistantID string      `json:"aid"`
	Mode        models.Mode `json:"mode"`
}

type SessionStore interface {
	Set(ctx context.Context, sessionID string, claims *SessionClaims) error
	Get(ctx context.Context, sessionID string) (*SessionClaims, error)
	Delete(ctx context.Context, sessionID string) error
}

type RedisStore struct {
	redisService *redis.Service
}

type MemoryStore struct {
	mu       sync.RWMutex
	sessions map[string]*SessionClaims
}

type Service struct {
	store SessionStore
}

func NewService(redisService *redis.Service) *Service {
	var store SessionStore
	if redisService != nil {
		// Test Redis connection
		ctx := context.Background()
		if err := redisService.Ping(ctx); err != nil {
			store = NewMemoryStore()
		} else {
			store = &RedisStore{redisService: redisService}
		}
	} else {
		store = NewMemoryStore()
	}

	return &Service{store: store}
}

func NewMemoryStore() *MemoryStore {
	return &MemoryStore{
		sessions: make(map[string]*SessionClaims),
	}
}

// Redis Store implementation
func (rs *RedisStore) Set(ctx context.Context, sessionID string, claims *SessionClaims) error {
	data, err := json.Marshal(claims)
	if err != nil {
		return err
	}

	return rs.redisService.Set(ctx, sessionID, string(data), cookieLifetime)
}

func (rs *RedisStore) Get(ctx context.Context, sessionID string) (*SessionClaims, error) {
	data, err := rs.redisService.Get(ctx, sessionID)
	if err != nil || data == "" {
		return nil, nil
	}

	var claims SessionClaims
	if err := json.Unmarshal([]byte(data), &claims); err != nil {
		return nil, err
	}

	return &claims, nil
}

func (rs *RedisStore) Delete(ctx context.Context, sessionID string) error {
	return rs.redisService.Delete(ctx, sessionID)
}

// Memory Store implementation. Unlike Redis there is no native TTL, so
// expiry is enforced here: Get refuses expired claims and Set prunes them,
// keeping the map bounded even for surfaces that never log out.
func (ms *MemoryStore) Set(ctx context.Context, sessionID string, claims *SessionClaims) error {
	ms.mu.Lock()
	defer ms.mu.Unlock()

	now := time.Now()
	for id, c := range ms.sessions {
		if expired(c, now) {
			delete(ms.sessions, id)
		}
	}

	ms.sessions[sessionID] = claims
	return nil
}

func (ms *MemoryStore) Get(ctx context.Context, sessionID string) (*SessionClaims, error) {
	ms.mu.Lock()
	defer ms.mu.Unlock()
	claims, exists := ms.sessions[sessionID]
	if !exists {
		return nil, nil
	}
	if expired(claims, time.Now()) {
		delete(ms.sessions, sessionID)
		return nil, nil
	}
	return claims, nil
}

func expired(claims *SessionClaims, now time.Time) bool {
	return claims.ExpiresAt != nil && claims.ExpiresAt.Before(now)
}

func (ms *MemoryStore) Delete(ctx context.Context, sessionID string) error {
	ms.mu.Lock()
	defer ms.mu.Unlock()
	delete(ms.sessions, sessionID)
	return nil
}

// CreateSession binds the given assistant session to a new surface cookie
// and sets it on the response.
func (s *Service) CreateSession(w http.ResponseWriter, assistantID string, mode models.Mode) error {
	ctx := context.Background()

	sessionID := uuid.New().String()
	claims := &SessionClaims{
		RegisteredClaims: jwt.RegisteredClaims{
			ExpiresAt: jwt.NewNumericDate(time.Now().Add(cookieLifetime)),
			IssuedAt:  jwt.NewNumericDate(time.Now()),
			ID:        sessionID,
		},
		SessionID:   sessionID,
		AssistantID: assistantID,
		Mode:        mode,
	}

	if err := s.store.Set(ctx, sessionID, claims); err != nil {
		return err
	}

	token := jwt.NewWithClaims(jwt.SigningMethodHS256, claims)
	signedToken, err := token.SignedString(config.GetJWTSecret())
	if err != nil {
		return err
	}

	cookie := &http.Cookie{
		Name:     config.GetSessionCookieName(),
		Value:    signedToken,
		Path:     "/",
		HttpOnly: true,
		Secure:   true,
		SameSite: http.SameSiteStrictMode,
		Expires:  time.Now().Add(cookieLifetime),
	}

	http.SetCookie(w, cookie)
	return nil
}

// ValidateSession checks for a valid surface cookie and returns its claims,
// or nil when no valid session exists.
func (s *Service) ValidateSession(r *http.Request) (*SessionClaims, error) {
	ctx := r.Context()

	cookie, err := r.Cookie(config.GetSessionCookieName())
	if err != nil {
		if err == http.ErrNoCookie {
			return nil, nil
		}
		return nil, err
	}

	token, err := jwt.ParseWithClaims(cookie.Value, &SessionClaims{}, func(token *jwt.Token) (interface{}, error) {
		return config.GetJWTSecret(), nil
	})
	if err != nil {
		return nil, err
	}

	if claims, ok := token.Claims.(*SessionClaims); ok && token.Valid {
		// Verify session still exists in the store
		storedClaims, err := s.store.Get(ctx, claims.SessionID)
		if err != nil {
			return nil, err
		}
		if storedClaims == nil {
			return nil, nil
		}

		return claims, nil
	}

	return nil, nil
}

// ClearSession removes the surface cookie and its stored claims.
func (s *Service) ClearSession(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()

	if cookie, err := r.Cookie(config.GetSessionCookieName()); err == nil {
		if token, err := jwt.ParseWithClaims(cookie.Value, &SessionClaims{}, func(token *jwt.Token) (interface{}, error) {
			return config.GetJWTSecret(), nil
		}); err == nil {
			if claims, ok := token.Claims.(*SessionClaims); ok {
				_ = s.store.Delete(ctx, claims.SessionID)
			}
		}
	}

	cookie := &http.Cookie{
		Name:     config.GetSessionCookieName(),
		Value:    "",
		Path:     "/",
		HttpOnly: true,
		Secure:   true,
		SameSite: http.SameSiteStrictMode,
		Expires:  time.Now().Add(-1 * time.Hour),
	}

	http.SetCookie(w, cookie)
}
