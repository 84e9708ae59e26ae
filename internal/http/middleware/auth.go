package middleware

import (
	"errors"
	"net/http"
	"strings"
	"time"

	"github.com/gin-gonic/gin"

	"roadside-service/internal/auth"
	"roadside-service/internal/model"
)

const (
	claimsContextKey    = "tokenClaims"
	principalContextKey = "principal"
	authorizationHeader = "Authorization"
	bearerPrefix        = "Bearer"
	// browsers cannot set headers on websocket upgrades
	accessTokenQuery = "access_token"
)

// Authenticator resolves bearer tokens into principals.
type Authenticator struct {
	parser      *auth.Parser
	revocations *auth.Revocations
}

func NewAuthenticator(parser *auth.Parser, revocations *auth.Revocations) *Authenticator {
	return &Authenticator{parser: parser, revocations: revocations}
}

// Required rejects requests without a valid, unrevoked token.
func (a *Authenticator) Required() gin.HandlerFunc {
	return func(c *gin.Context) {
		raw, err := bearerToken(c)
		if err != nil {
			c.AbortWithStatusJSON(http.StatusUnauthorized, gin.H{"error": err.Error()})
			return
		}
		if !a.authenticate(c, raw) {
			c.AbortWithStatusJSON(http.StatusUnauthorized, gin.H{"error": "invalid token"})
			return
		}
		c.Next()
	}
}

// Optional attaches a principal when a valid token is present and lets the
// request through as a guest otherwise. A token that is present but invalid
// is still rejected.
func (a *Authenticator) Optional() gin.HandlerFunc {
	return func(c *gin.Context) {
		if c.GetHeader(authorizationHeader) == "" && c.Query(accessTokenQuery) == "" {
			c.Next()
			return
		}
		raw, err := bearerToken(c)
		if err != nil {
			c.AbortWithStatusJSON(http.StatusUnauthorized, gin.H{"error": err.Error()})
			return
		}
		if !a.authenticate(c, raw) {
			c.AbortWithStatusJSON(http.StatusUnauthorized, gin.H{"error": "invalid token"})
			return
		}
		c.Next()
	}
}

func (a *Authenticator) authenticate(c *gin.Context, raw string) bool {
	claims, err := a.parser.Parse(raw)
	if err != nil || a.revocations.IsRevoked(claims.ID) {
		return false
	}

	c.Set(claimsContextKey, claims)
	c.Set(principalContextKey, model.Principal{
		UserID:  claims.UserID,
		Role:    claims.Role,
		TokenID: claims.ID,
	})
	return true
}

var (
	errMissingAuthorization = errors.New("authorization header missing")
	errInvalidAuthorization = errors.New("invalid authorization header")
)

func bearerToken(c *gin.Context) (string, error) {
	rawHeader := c.GetHeader(authorizationHeader)
	if rawHeader == "" {
		if token := c.Query(accessTokenQuery); token != "" {
			return token, nil
		}
		return "", errMissingAuthorization
	}

	parts := strings.SplitN(rawHeader, " ", 2)
	if len(parts) != 2 || !strings.EqualFold(parts[0], bearerPrefix) {
		return "", errInvalidAuthorization
	}
	return parts[1], nil
}

// RequireRole must run after Required.
func RequireRole(roles ...model.Role) gin.HandlerFunc {
	return func(c *gin.Context) {
		principal, ok := MustPrincipal(c)
		if !ok {
			c.AbortWithStatusJSON(http.StatusUnauthorized, gin.H{"error": "missing principal"})
			return
		}
		for _, role := range roles {
			if principal.Role == role {
				c.Next()
				return
			}
		}
		c.AbortWithStatusJSON(http.StatusForbidden, gin.H{"error": "permission denied"})
	}
}

func MustPrincipal(c *gin.Context) (model.Principal, bool) {
	value, exists := c.Get(principalContextKey)
	if !exists {
		return model.Principal{}, false
	}

	principal, ok := value.(model.Principal)
	if !ok {
		return model.Principal{}, false
	}

	return principal, true
}

// TokenExpiry returns the expiry of the token that authenticated the request.
func TokenExpiry(c *gin.Context) (time.Time, bool) {
	value, exists := c.Get(claimsContextKey)
	if !exists {
		return time.Time{}, false
	}
	claims, ok := value.(*auth.Claims)
	if !ok || claims.ExpiresAt == nil {
		return time.Time{}, false
	}
	return claims.ExpiresAt.Time, true
}
