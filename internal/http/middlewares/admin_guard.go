package middlewares

import (
	"context"
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/movepost/movepost/internal/profile"
)

// ProfileReader fetches the authoritative role/blocked row.
type ProfileReader interface {
	GetByUserID(ctx context.Context, userID string) (profile.Row, error)
}

// TokenRevoker force-expires every live session of a user.
type TokenRevoker interface {
	RevokeAllForUser(ctx context.Context, userID string) error
}

// MarkerRemover clears the advisory admin session marker.
type MarkerRemover interface {
	Delete(ctx context.Context, userID string) error
}

// AdminGuard gates the admin console. The role and blocked flag are fetched
// fresh from the profile store on every guarded request; the advisory marker
// is never trusted for authorization.
type AdminGuard struct {
	profiles ProfileReader
	tokens   TokenRevoker
	markers  MarkerRemover
}

func NewAdminGuard(profiles ProfileReader, tokens TokenRevoker, markers MarkerRemover) *AdminGuard {
	return &AdminGuard{
		profiles: profiles,
		tokens:   tokens,
		markers:  markers,
	}
}

func (g *AdminGuard) RequireAdmin() gin.HandlerFunc {
	return func(c *gin.Context) {
		userID, ok := UserIDFromContext(c)

		if !ok || userID == "" {
			c.AbortWithStatusJSON(http.StatusUnauthorized, gin.H{
				"error": gin.H{
					"code":    "unauthorized",
					"message": "Missing identity context",
				},
			})
			return
		}

		ctx := c.Request.Context()

		row, err := g.profiles.GetByUserID(ctx, userID)

		if err != nil {
			c.AbortWithStatusJSON(http.StatusForbidden, gin.H{
				"error": gin.H{
					"code":    "forbidden",
					"message": "Could not verify admin access",
				},
			})
			return
		}

		if row.IsBlocked {
			// Blocked accounts are signed out everywhere, not just denied.
			_ = g.tokens.RevokeAllForUser(ctx, userID)
			_ = g.markers.Delete(ctx, userID)

			c.AbortWithStatusJSON(http.StatusUnauthorized, gin.H{
				"error": gin.H{
					"code":    "account_blocked",
					"message": "This account has been blocked",
				},
			})
			return
		}

		if !profile.IsAdminRole(profile.FromRow(row).Role) {
			// Plain users keep their session; the UI redirects them away.
			c.AbortWithStatusJSON(http.StatusForbidden, gin.H{
				"error": gin.H{
					"code":    "forbidden",
					"message": "Admin role required",
				},
			})
			return
		}

		c.Next()
	}
}
