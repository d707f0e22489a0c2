package httpkit

import (
	"slices"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
)

// Identity is the caller as established by AuthRequired.
type Identity struct {
	UserID uuid.UUID
	Roles  []string
}

// HasRole reports whether the caller carries role.
func (i Identity) HasRole(role string) bool {
	return slices.Contains(i.Roles, role)
}

// IdentityFrom reads the identity stored by AuthRequired. ok is false on
// routes that are not behind it.
func IdentityFrom(c *gin.Context) (Identity, bool) {
	raw, exists := c.Get(ContextUserIDKey)
	if !exists {
		return Identity{}, false
	}
	userID, ok := raw.(uuid.UUID)
	if !ok || userID == uuid.Nil {
		return Identity{}, false
	}

	var roles []string
	if value, exists := c.Get(ContextRolesKey); exists {
		roles, _ = value.([]string)
	}
	return Identity{UserID: userID, Roles: roles}, true
}
