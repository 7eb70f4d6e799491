package handlers

import (
	"context"
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/movepost/movepost/internal/http/middlewares"
	"github.com/movepost/movepost/internal/profile"
)

type ProfileService interface {
	Get(ctx context.Context, userID string) (profile.Profile, error)
	Apply(ctx context.Context, userID string, updates profile.Update) (profile.Profile, error)
}

type ProfileHandler struct {
	svc ProfileService
}

func NewProfileHandler(svc ProfileService) *ProfileHandler {
	return &ProfileHandler{svc: svc}
}

func (h *ProfileHandler) GetProfile(ctx *gin.Context) {
	userID, _ := middlewares.UserIDFromContext(ctx)

	p, err := h.svc.Get(ctx.Request.Context(), userID)

	if err != nil {
		respondProfileError(ctx, err)
		return
	}

	RespondJSONWithETag(ctx, http.StatusOK, p)
}

func (h *ProfileHandler) UpdateProfile(ctx *gin.Context) {
	userID, _ := middlewares.UserIDFromContext(ctx)

	var updates profile.Update

	if !BindJSON(ctx, &updates) {
		return
	}

	p, err := h.svc.Apply(ctx.Request.Context(), userID, updates)

	if err != nil {
		respondProfileError(ctx, err)
		return
	}

	ctx.JSON(http.StatusOK, p)
}

func respondProfileError(ctx *gin.Context, err error) {
	switch {
	case errors.Is(err, profile.ErrNotAuthenticated):
		RespondUnAuthorized(ctx, "not_authenticated", "Not authenticated")
	case errors.Is(err, profile.ErrNotFound):
		RespondNotFound(ctx, "Profile not found")
	default:
		RespondInternal(ctx, "Could not load profile")
	}
}
