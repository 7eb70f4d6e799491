package handlers

import (
	"context"
	"net/http"
	"strings"

	"github.com/gin-gonic/gin"
	"github.com/movepost/movepost/internal/http/middlewares"
	"github.com/movepost/movepost/internal/onboarding"
)

type OnboardingStatusReader interface {
	GetStatus(ctx context.Context, userID string) (onboarding.Status, error)
}

// OAuthHandler finishes a third-party sign-in: once the token has settled it
// decides where the client should navigate next.
type OAuthHandler struct {
	verifier middlewares.TokenVerifier
	status   OnboardingStatusReader
}

func NewOAuthHandler(verifier middlewares.TokenVerifier, status OnboardingStatusReader) *OAuthHandler {
	return &OAuthHandler{
		verifier: verifier,
		status:   status,
	}
}

func (h *OAuthHandler) Complete(ctx *gin.Context) {
	raw := bearerToken(ctx)

	if raw == "" {
		ctx.JSON(http.StatusUnauthorized, gin.H{
			"destination": onboarding.LoginRoute,
			"error": APIError{
				Code:      "unauthorized",
				Message:   "Sign-in did not complete",
				RequestID: requestIDFrom(ctx),
			},
		})
		return
	}

	claims, err := h.verifier.VerifyAccessToken(raw)

	if err != nil {
		ctx.JSON(http.StatusUnauthorized, gin.H{
			"destination": onboarding.LoginRoute,
			"error": APIError{
				Code:      "unauthorized",
				Message:   "Sign-in did not complete",
				RequestID: requestIDFrom(ctx),
			},
		})
		return
	}

	// a failed status lookup routes to the dashboard instead of blocking
	// the user (fail-open)
	status, err := h.status.GetStatus(ctx.Request.Context(), claims.UserID)

	ctx.JSON(http.StatusOK, gin.H{
		"destination": onboarding.NextRoute(status, err),
	})
}

func bearerToken(ctx *gin.Context) string {
	header := ctx.GetHeader("Authorization")

	if !strings.HasPrefix(header, "Bearer ") {
		return ""
	}

	return strings.TrimSpace(strings.TrimPrefix(header, "Bearer"))
}
