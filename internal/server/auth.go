package server

import (
	"crypto/subtle"
	"net/http"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"

	"target-shooting/internal/scoring"
)

const accessKey = "access"

type loginRequest struct {
	Username string `json:"username" binding:"required,max=64"`
	Password string `json:"password" binding:"required,max=128"`
}

var loginMessages = bindMessages{
	"Username": {"required": "username is required"},
	"Password": {"required": "password is required"},
}

type accessResponse struct {
	Username string         `json:"username"`
	IsAdmin  bool           `json:"isAdmin"`
	Room     scoring.RoomID `json:"room"`
	Token    string         `json:"token,omitempty"`
}

// authenticate accepts any username known to the policy with the shared password.
func (s *Server) authenticate(username, password string) (scoring.Access, bool) {
	access := s.policy.Resolve(username)
	passwordOK := subtle.ConstantTimeCompare([]byte(password), []byte(s.password)) == 1
	if !access.Known() || !passwordOK {
		return scoring.Access{}, false
	}
	return access, true
}

func (s *Server) handleLogin(c *gin.Context) {
	if !s.enforceRateLimit(c, "login") {
		return
	}
	var req loginRequest
	if !bindJSON(c, &req, loginMessages, "username and password are required") {
		return
	}
	access, ok := s.authenticate(req.Username, req.Password)
	if !ok {
		s.metrics.logins.WithLabelValues("rejected").Inc()
		s.log.Info("login rejected", zap.String("user", scoring.NormalizeUsername(req.Username)))
		writeError(c, http.StatusUnauthorized, "invalid username or password")
		return
	}
	token, err := s.sessions.Create(access.Username)
	if err != nil {
		s.log.Error("session create failed", zap.Error(err))
		writeError(c, http.StatusInternalServerError, "failed to sign in")
		return
	}
	s.metrics.logins.WithLabelValues("accepted").Inc()
	c.SetSameSite(http.SameSiteLaxMode)
	c.SetCookie(sessionCookie, token, int(s.sessions.ttl.Seconds()), "/", "", false, true)
	s.log.Info("user signed in", zap.String("user", access.Username), zap.Bool("admin", access.IsAdmin), zap.Int("room", int(access.Room)))
	c.JSON(http.StatusOK, accessResponse{
		Username: access.Username,
		IsAdmin:  access.IsAdmin,
		Room:     access.Room,
		Token:    token,
	})
}

func (s *Server) handleLogout(c *gin.Context) {
	if token := sessionToken(c); token != "" {
		_ = s.sessions.Delete(token)
	}
	c.SetCookie(sessionCookie, "", -1, "/", "", false, true)
	c.Status(http.StatusNoContent)
}

func (s *Server) handleMe(c *gin.Context) {
	access := currentAccess(c)
	c.JSON(http.StatusOK, accessResponse{
		Username: access.Username,
		IsAdmin:  access.IsAdmin,
		Room:     access.Room,
	})
}

// sessionAccess resolves the caller, re-reading the policy on every request so
// a changed policy applies to existing sessions.
func (s *Server) sessionAccess(c *gin.Context) (scoring.Access, bool) {
	username, ok := s.sessions.Lookup(sessionToken(c))
	if !ok {
		return scoring.Access{}, false
	}
	access := s.policy.Resolve(username)
	return access, access.Known()
}

func (s *Server) requireUser(c *gin.Context) {
	access, ok := s.sessionAccess(c)
	if !ok {
		writeError(c, http.StatusUnauthorized, "authentication required")
		return
	}
	c.Set(accessKey, access)
	c.Next()
}

func (s *Server) requireAdmin(c *gin.Context) {
	access, ok := s.sessionAccess(c)
	if !ok {
		writeError(c, http.StatusUnauthorized, "authentication required")
		return
	}
	if !access.IsAdmin {
		writeError(c, http.StatusForbidden, "admin access required")
		return
	}
	c.Set(accessKey, access)
	c.Next()
}

func currentAccess(c *gin.Context) scoring.Access {
	if value, ok := c.Get(accessKey); ok {
		if access, ok := value.(scoring.Access); ok {
			return access
		}
	}
	return scoring.Access{}
}
