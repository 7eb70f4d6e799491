package handlers

import (
	"context"
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/movepost/movepost/internal/http/middlewares"
	"github.com/movepost/movepost/internal/session"
)

type MarkerReader interface {
	Get(ctx context.Context, userID string) (session.Marker, error)
}

// AdminSessionHandler serves the advisory marker the admin layout reads on
// mount. A missing marker means the console should bounce to login; the
// marker itself grants nothing.
type AdminSessionHandler struct {
	markers MarkerReader
}

func NewAdminSessionHandler(markers MarkerReader) *AdminSessionHandler {
	return &AdminSessionHandler{markers: markers}
}

func (h *AdminSessionHandler) Get(ctx *gin.Context) {
	userID, _ := middlewares.UserIDFromContext(ctx)

	marker, err := h.markers.Get(ctx.Request.Context(), userID)

	if err != nil {
		if errors.Is(err, session.ErrNoMarker) {
			RespondUnAuthorized(ctx, "no_admin_session", "No admin session")
			return
		}

		RespondInternal(ctx, "Could not load admin session")
		return
	}

	ctx.JSON(http.StatusOK, marker)
}
