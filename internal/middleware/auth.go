package middleware

import (
	"github.com/gin-contrib/sessions"
	"github.com/gin-gonic/gin"
	"github.com/guillecolu/machinetrack-api/internal/constants"
	apierrors "github.com/guillecolu/machinetrack-api/internal/errors"
)

// CurrentMember copies the acting team member from the session into the
// context. Requests without a selected member pass through untouched.
func CurrentMember() gin.HandlerFunc {
	return func(c *gin.Context) {
		session := sessions.Default(c)
		if memberID, ok := session.Get(constants.ContextKeyMemberID).(string); ok && memberID != "" {
			c.Set(constants.ContextKeyMemberID, memberID)
		}
		c.Next()
	}
}

// RequireMember rejects requests that have no acting team member selected
func RequireMember() gin.HandlerFunc {
	return func(c *gin.Context) {
		if _, exists := GetMemberID(c); !exists {
			apierrors.Unauthorized(c, "")
			c.Abort()
			return
		}
		c.Next()
	}
}

// GetMemberID retrieves the acting team member ID from context
func GetMemberID(c *gin.Context) (string, bool) {
	memberID, exists := c.Get(constants.ContextKeyMemberID)
	if !exists {
		return "", false
	}

	id, ok := memberID.(string)
	if !ok || id == "" {
		return "", false
	}
	return id, true
}

// MemberIDPtr returns the acting member ID as an optional value
func MemberIDPtr(c *gin.Context) *string {
	if id, ok := GetMemberID(c); ok {
		return &id
	}
	return nil
}
