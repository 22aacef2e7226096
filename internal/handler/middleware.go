package handler

import (
	"context"
	"errors"
	"net/http"
	"slices"
	"strings"

	"github.com/gin-gonic/gin"
	"github.com/kitforge/backend/internal/model"
	"github.com/kitforge/backend/internal/service"
)

const authUserKey = "auth_user"

// Authenticator resolves a bearer access token to the current state of its user.
type Authenticator interface {
	Authenticate(ctx context.Context, accessToken string) (*model.AuthUser, error)
}

// Gate attaches the authenticated user to the request. Required and Optional share one resolver.
type Gate struct {
	auth Authenticator
	errs errorWriter
}

func NewGate(auth Authenticator, exposeInternal bool) *Gate {
	return &Gate{auth: auth, errs: errorWriter{exposeInternal: exposeInternal}}
}

// Required rejects the request unless a valid access token of an active user is presented.
func (g *Gate) Required() gin.HandlerFunc {
	return func(c *gin.Context) {
		if c.Request.Method == http.MethodOptions {
			c.Next()
			return
		}

		user, err := g.resolve(c)
		if err != nil {
			// The token was valid but its user is gone: still an authentication failure.
			if errors.Is(err, service.ErrUserNotFound) {
				abortWith(c, http.StatusUnauthorized, service.CodeUserNotFound, service.ErrUserNotFound.Message)
				return
			}
			g.errs.write(c, err)
			return
		}

		c.Set(authUserKey, user)
		c.Next()
	}
}

// Optional attaches the user when the token resolves and otherwise continues anonymously.
func (g *Gate) Optional() gin.HandlerFunc {
	return func(c *gin.Context) {
		if user, err := g.resolve(c); err == nil {
			c.Set(authUserKey, user)
		}
		c.Next()
	}
}

func (g *Gate) resolve(c *gin.Context) (*model.AuthUser, error) {
	token, ok := bearerToken(c.GetHeader("Authorization"))
	if !ok {
		return nil, service.ErrTokenRequired
	}
	return g.auth.Authenticate(c.Request.Context(), token)
}

func bearerToken(header string) (string, bool) {
	scheme, token, found := strings.Cut(strings.TrimSpace(header), " ")
	if !found || !strings.EqualFold(scheme, "Bearer") {
		return "", false
	}
	token = strings.TrimSpace(token)
	return token, token != ""
}

// RoleGate admits users whose role is in AllowedRoles. It must run after Gate.Required.
type RoleGate struct {
	AllowedRoles []model.Role
}

func (r RoleGate) Handler() gin.HandlerFunc {
	return func(c *gin.Context) {
		user := GetAuthUser(c)
		if user == nil {
			abortWith(c, http.StatusUnauthorized, service.CodeTokenRequired, service.ErrTokenRequired.Message)
			return
		}
		if !slices.Contains(r.AllowedRoles, user.Role) {
			abortWith(c, http.StatusForbidden, service.CodeInsufficientPermissions, service.ErrInsufficientPermissions.Message)
			return
		}
		c.Next()
	}
}

func RequireRoles(roles ...model.Role) gin.HandlerFunc {
	return RoleGate{AllowedRoles: roles}.Handler()
}

func RequireVerifiedEmail() gin.HandlerFunc {
	return func(c *gin.Context) {
		user := GetAuthUser(c)
		if user == nil {
			abortWith(c, http.StatusUnauthorized, service.CodeTokenRequired, service.ErrTokenRequired.Message)
			return
		}
		if !user.IsEmailVerified {
			abortWith(c, http.StatusForbidden, service.CodeEmailNotVerified, service.ErrEmailNotVerified.Message)
			return
		}
		c.Next()
	}
}

func GetAuthUser(c *gin.Context) *model.AuthUser {
	if value, ok := c.Get(authUserKey); ok {
		if user, ok := value.(*model.AuthUser); ok {
			return user
		}
	}
	return nil
}

func CORSMiddleware(allowedOrigins []string) gin.HandlerFunc {
	originMap := make(map[string]struct{}, len(allowedOrigins))
	allowAll := false
	for _, origin := range allowedOrigins {
		trimmed := strings.TrimSpace(origin)
		switch trimmed {
		case "":
			continue
		case "*":
			allowAll = true
		}
		originMap[trimmed] = struct{}{}
	}

	return func(c *gin.Context) {
		origin := c.GetHeader("Origin")
		if origin != "" {
			if _, ok := originMap[origin]; ok || allowAll {
				c.Header("Access-Control-Allow-Origin", origin)
				c.Header("Vary", "Origin")
				c.Header("Access-Control-Allow-Headers", "Authorization, Content-Type")
				c.Header("Access-Control-Allow-Methods", "GET, POST, PUT, PATCH, DELETE, OPTIONS")
				c.Header("Access-Control-Max-Age", "600")
			}
		}

		if c.Request.Method == http.MethodOptions {
			c.AbortWithStatus(http.StatusNoContent)
			return
		}

		c.Next()
	}
}

// SecurityHeaders sets conservative defaults for a JSON API.
func SecurityHeaders(hsts bool) gin.HandlerFunc {
	return func(c *gin.Context) {
		h := c.Writer.Header()
		h.Set("X-Content-Type-Options", "nosniff")
		h.Set("X-Frame-Options", "DENY")
		h.Set("Referrer-Policy", "no-referrer")
		h.Set("Content-Security-Policy", "default-src 'none'; frame-ancestors 'none'")
		if hsts {
			h.Set("Strict-Transport-Security", "max-age=31536000; includeSubDomains")
		}
		c.Next()
	}
}
