package ginserver

import (
	"net/http"
	"strings"

	gin "github.com/gin-gonic/gin"
)

const principalContextKey = "flatbook.principal"

// Identity arrives from the gateway in trusted headers; this service never
// sees credentials.
const (
	headerUserID    = "X-User-ID"
	headerUserName  = "X-User-Name"
	headerUserRoles = "X-User-Roles"
)

type principal struct {
	ID    string
	Name  string
	Roles []string
}

func (p principal) HasRole(role string) bool {
	role = strings.ToLower(strings.TrimSpace(role))
	if role == "" {
		return false
	}
	for _, r := range p.Roles {
		if strings.ToLower(r) == role {
			return true
		}
	}
	return false
}

// HeaderAuthMiddleware resolves the request principal from gateway headers.
// Requests without an ID stay anonymous; route guards decide what that means.
type HeaderAuthMiddleware struct{}

func (m HeaderAuthMiddleware) Handle(c *gin.Context) {
	id := strings.TrimSpace(c.GetHeader(headerUserID))
	if id == "" {
		c.Next()
		return
	}
	var roles []string
	for _, raw := range strings.Split(c.GetHeader(headerUserRoles), ",") {
		role := strings.TrimSpace(raw)
		if role != "" {
			roles = append(roles, role)
		}
	}
	setPrincipal(c, principal{
		ID:    id,
		Name:  strings.TrimSpace(c.GetHeader(headerUserName)),
		Roles: roles,
	})
	c.Next()
}

func setPrincipal(c *gin.Context, p principal) {
	c.Set(principalContextKey, p)
}

func currentPrincipal(c *gin.Context) (principal, bool) {
	val, exists := c.Get(principalContextKey)
	if !exists {
		return principal{}, false
	}
	p, ok := val.(principal)
	return p, ok
}

func requireRole(c *gin.Context, role string) (principal, bool) {
	p, ok := currentPrincipal(c)
	if !ok {
		c.JSON(http.StatusUnauthorized, gin.H{"error": "auth required"})
		return principal{}, false
	}
	if role != "" && !p.HasRole(role) {
		c.JSON(http.StatusForbidden, gin.H{"error": "insufficient permissions"})
		return principal{}, false
	}
	return p, true
}
