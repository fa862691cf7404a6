package session

import (
	"context"
	"crypto/rand"
	"encoding/base64"
	"encoding/json"
	"errors"
	"fmt"
	"strings"
	"time"

	redislib "github.com/redis/go-redis/v9"

	"github.com/angelmondragon/storefront-gateway/pkg/auth"
	"github.com/angelmondragon/storefront-gateway/pkg/config"
	"github.com/angelmondragon/storefront-gateway/pkg/enums"
	redisclient "github.com/angelmondragon/storefront-gateway/pkg/redis"
)

const sessionIDBytes = 32

var (
	ErrSessionNotFound = errors.New("session not found")
	ErrTokenExpired    = errors.New("backend token already expired")
)

type sessionStore interface {
	Set(ctx context.Context, key string, value any, ttl time.Duration) error
	SetKeepTTL(ctx context.Context, key string, value any) error
	Get(ctx context.Context, key string) (string, error)
	Del(ctx context.Context, keys ...string) error
}

type sessionKeyer interface {
	SessionKey(sessionID string) string
}

// Session is the server-side record behind one gateway session token.
type Session struct {
	ID           string       `json:"-"`
	UserID       string       `json:"user_id"`
	Email        string       `json:"email"`
	FullName     string       `json:"full_name,omitempty"`
	Roles        []enums.Role `json:"roles"`
	BackendToken string       `json:"backend_token"`
	CreatedAt    time.Time    `json:"created_at"`
	ExpiresAt    time.Time    `json:"expires_at"`
}

// Credential returns the explicit credential passed to services.
func (s *Session) Credential() auth.Credential {
	if s == nil {
		return auth.Anonymous
	}
	return auth.Credential{SessionID: s.ID, UserID: s.UserID, Token: s.BackendToken}
}

// HasRole reports whether the session carries role.
func (s *Session) HasRole(role enums.Role) bool {
	return s != nil && enums.HasRole(s.Roles, role)
}

// CreateParams carries what login learned about the user.
type CreateParams struct {
	BackendToken string
	UserID       string
	Email        string
	FullName     string
	Roles        []enums.Role
}

// Manager stores gateway sessions in Redis.
type Manager struct {
	store sessionStore
	keyer sessionKeyer
	ttl   time.Duration
	now   func() time.Time
}

// Store is the surface used by the auth middleware and the users service.
type Store interface {
	Create(ctx context.Context, params CreateParams) (*Session, error)
	Get(ctx context.Context, sessionID string) (*Session, error)
	UpdateRoles(ctx context.Context, sessionID string, roles []enums.Role) error
	Revoke(ctx context.Context, sessionID string) error
}

// NewManager constructs a session manager backed by Redis.
func NewManager(client *redisclient.Client, cfg config.SessionConfig) (*Manager, error) {
	if client == nil {
		return nil, fmt.Errorf("redis client is required")
	}
	if cfg.TTL <= 0 {
		return nil, fmt.Errorf("session ttl must be positive")
	}
	return &Manager{
		store: client,
		keyer: client,
		ttl:   cfg.TTL,
		now:   time.Now,
	}, nil
}

// Create opens a session. Its lifetime is the configured TTL, capped by the backend token expiry.
func (m *Manager) Create(ctx context.Context, params CreateParams) (*Session, error) {
	token := strings.TrimSpace(params.BackendToken)
	if token == "" {
		return nil, fmt.Errorf("backend token is required")
	}
	info, err := auth.InspectBearer(token)
	if err != nil {
		return nil, err
	}

	now := m.now().UTC()
	if info.Expired(now) {
		return nil, ErrTokenExpired
	}
	ttl := info.Lifetime(now, m.ttl)

	id, err := generateSessionID()
	if err != nil {
		return nil, err
	}

	userID := params.UserID
	if userID == "" {
		userID = info.Subject
	}
	sess := &Session{
		ID:           id,
		UserID:       userID,
		Email:        params.Email,
		FullName:     params.FullName,
		Roles:        params.Roles,
		BackendToken: token,
		CreatedAt:    now,
		ExpiresAt:    now.Add(ttl),
	}
	payload, err := json.Marshal(sess)
	if err != nil {
		return nil, fmt.Errorf("encoding session: %w", err)
	}
	if err := m.store.Set(ctx, m.keyer.SessionKey(id), payload, ttl); err != nil {
		return nil, err
	}
	return sess, nil
}

// Get loads a live session.
func (m *Manager) Get(ctx context.Context, sessionID string) (*Session, error) {
	if strings.TrimSpace(sessionID) == "" {
		return nil, ErrSessionNotFound
	}
	raw, err := m.store.Get(ctx, m.keyer.SessionKey(sessionID))
	if err != nil {
		return nil, wrapNotFound(err)
	}
	var sess Session
	if err := json.Unmarshal([]byte(raw), &sess); err != nil {
		return nil, fmt.Errorf("decoding session: %w", err)
	}
	if !sess.ExpiresAt.IsZero() && !m.now().Before(sess.ExpiresAt) {
		return nil, ErrSessionNotFound
	}
	sess.ID = sessionID
	return &sess, nil
}

// UpdateRoles rewrites the stored roles, for instance after becoming a seller.
func (m *Manager) UpdateRoles(ctx context.Context, sessionID string, roles []enums.Role) error {
	sess, err := m.Get(ctx, sessionID)
	if err != nil {
		return err
	}
	sess.Roles = roles
	payload, err := json.Marshal(sess)
	if err != nil {
		return fmt.Errorf("encoding session: %w", err)
	}
	return m.store.SetKeepTTL(ctx, m.keyer.SessionKey(sessionID), payload)
}

// Revoke deletes the session.
func (m *Manager) Revoke(ctx context.Context, sessionID string) error {
	if strings.TrimSpace(sessionID) == "" {
		return fmt.Errorf("session id is required")
	}
	return m.store.Del(ctx, m.keyer.SessionKey(sessionID))
}

// HasSession reports whether the session is still live.
func (m *Manager) HasSession(ctx context.Context, sessionID string) (bool, error) {
	if _, err := m.Get(ctx, sessionID); err != nil {
		if errors.Is(err, ErrSessionNotFound) {
			return false, nil
		}
		return false, err
	}
	return true, nil
}

func generateSessionID() (string, error) {
	bytes := make([]byte, sessionIDBytes)
	if _, err := rand.Read(bytes); err != nil {
		return "", fmt.Errorf("generating session id: %w", err)
	}
	return base64.RawURLEncoding.EncodeToString(bytes), nil
}

func wrapNotFound(err error) error {
	if errors.Is(err, redislib.Nil) {
		return ErrSessionNotFound
	}
	return err
}
