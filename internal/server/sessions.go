package server

import (
	"crypto/rand"
	"errors"
	"fmt"
	"strings"
	"sync"
	"time"

	"github.com/gin-gonic/gin"
	"gorm.io/gorm"

	"target-shooting/internal/db"
)

const sessionCookie = "ts_session"

// sessionStore maps login tokens to usernames, in memory or in the sessions
// table when a relational backend is configured.
type sessionStore struct {
	db       *gorm.DB
	ttl      time.Duration
	now      func() time.Time
	mu       sync.Mutex
	sessions map[string]sessionData
}

type sessionData struct {
	Username  string
	ExpiresAt time.Time
}

func newSessionStore(conn *gorm.DB, ttl time.Duration) *sessionStore {
	return &sessionStore{
		db:       conn,
		ttl:      ttl,
		now:      time.Now,
		sessions: make(map[string]sessionData),
	}
}

// Create issues a token for username. Expired sessions are swept on the way so
// tokens that are never presented again do not pile up.
func (s *sessionStore) Create(username string) (string, error) {
	id, err := newSessionID()
	if err != nil {
		return "", err
	}
	now := s.now().UTC()
	expires := now.Add(s.ttl)
	if s.db == nil {
		s.mu.Lock()
		for key, data := range s.sessions {
			if now.After(data.ExpiresAt) {
				delete(s.sessions, key)
			}
		}
		s.sessions[id] = sessionData{Username: username, ExpiresAt: expires}
		s.mu.Unlock()
		return id, nil
	}
	if err := s.db.Where("expires_at < ?", now).Delete(&db.Session{}).Error; err != nil {
		return "", err
	}
	record := db.Session{
		ID:        id,
		Username:  username,
		ExpiresAt: expires,
	}
	if err := s.db.Create(&record).Error; err != nil {
		return "", err
	}
	return id, nil
}

func (s *sessionStore) Lookup(id string) (string, bool) {
	if id == "" {
		return "", false
	}
	now := s.now().UTC()
	if s.db == nil {
		s.mu.Lock()
		defer s.mu.Unlock()
		data, ok := s.sessions[id]
		if !ok {
			return "", false
		}
		if now.After(data.ExpiresAt) {
			delete(s.sessions, id)
			return "", false
		}
		return data.Username, true
	}
	var record db.Session
	if err := s.db.Where("id = ?", id).First(&record).Error; err != nil {
		return "", false
	}
	if now.After(record.ExpiresAt) {
		_ = s.db.Delete(&db.Session{}, "id = ?", id).Error
		return "", false
	}
	return record.Username, true
}

func (s *sessionStore) Delete(id string) error {
	if id == "" {
		return errors.New("session id is empty")
	}
	if s.db == nil {
		s.mu.Lock()
		delete(s.sessions, id)
		s.mu.Unlock()
		return nil
	}
	return s.db.Delete(&db.Session{}, "id = ?", id).Error
}

// sessionToken reads the bearer token, falling back to the session cookie.
func sessionToken(c *gin.Context) string {
	if header := c.GetHeader("Authorization"); header != "" {
		if token, ok := strings.CutPrefix(header, "Bearer "); ok {
			return strings.TrimSpace(token)
		}
	}
	if cookie, err := c.Cookie(sessionCookie); err == nil {
		return cookie
	}
	return ""
}

func newSessionID() (string, error) {
	buf := make([]byte, 16)
	if _, err := rand.Read(buf); err != nil {
		return "", fmt.Errorf("generate session id: %w", err)
	}
	return fmt.Sprintf("%x", buf), nil
}
