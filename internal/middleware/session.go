package middleware

import (
	"net/http"
	"strings"
	"time"

	"golang-food-storefront/internal/models"
	"golang-food-storefront/pkg/auth"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
)

const sessionKey = "session"

type SessionConfig struct {
	CookieName string
	Secure     bool
	TTL        time.Duration
}

type SessionMiddleware struct {
	jwtManager *auth.JWTManager
	config     SessionConfig
}

func NewSessionMiddleware(jwtManager *auth.JWTManager, config SessionConfig) *SessionMiddleware {
	return &SessionMiddleware{jwtManager: jwtManager, config: config}
}

// Resolve attaches the shopper session to the request. A bearer token from
// the session provider makes the session authenticated; everybody else gets
// a guest session tracked by cookie.
func (s *SessionMiddleware) Resolve() gin.HandlerFunc {
	return func(c *gin.Context) {
		if authHeader := c.GetHeader("Authorization"); authHeader != "" {
			tokenParts := strings.Split(authHeader, " ")
			if len(tokenParts) != 2 || tokenParts[0] != "Bearer" {
				c.AbortWithStatusJSON(http.StatusUnauthorized, gin.H{"error": "Invalid authorization header format"})
				return
			}

			claims, err := s.jwtManager.ValidateToken(tokenParts[1])
			if err != nil {
				c.AbortWithStatusJSON(http.StatusUnauthorized, gin.H{"error": "Invalid token"})
				return
			}

			c.Set(sessionKey, models.Session{
				ID:            "user:" + claims.UserID,
				UserID:        claims.UserID,
				Name:          claims.Name,
				Email:         claims.Email,
				Token:         tokenParts[1],
				Authenticated: true,
			})
			c.Next()
			return
		}

		guestID, err := c.Cookie(s.config.CookieName)
		if _, parseErr := uuid.Parse(guestID); err != nil || parseErr != nil {
			guestID = uuid.NewString()
		}
		// refresh on every request so active guests keep their cart
		c.SetSameSite(http.SameSiteLaxMode)
		c.SetCookie(s.config.CookieName, guestID, int(s.config.TTL.Seconds()), "/", "", s.config.Secure, true)

		c.Set(sessionKey, models.Session{ID: "guest:" + guestID})
		c.Next()
	}
}

// GetSession returns the session Resolve attached
func GetSession(c *gin.Context) (models.Session, bool) {
	v, exists := c.Get(sessionKey)
	if !exists {
		return models.Session{}, false
	}
	session, ok := v.(models.Session)
	return session, ok
}
