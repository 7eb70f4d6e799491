package handlers

import (
	"context"
	"errors"
	"net/http"
	"strconv"

	"github.com/gin-gonic/gin"
	"github.com/movepost/movepost/internal/domain/campaign"
	"github.com/movepost/movepost/internal/domain/mover"
	"github.com/movepost/movepost/internal/postgrid"
	"github.com/movepost/movepost/internal/repo/postgres"
)

// MailGateway is the postgrid client surface; tests fake it.
type MailGateway interface {
	SendPostcard(ctx context.Context, recipient mover.Recipient, designURL string, camp campaign.Campaign) (*postgrid.Postcard, error)
	GetPostcardStatus(ctx context.Context, id string) (*postgrid.Postcard, error)
	CancelPostcard(ctx context.Context, id string) (*postgrid.CancelResult, error)
	ListPostcards(ctx context.Context, opts postgrid.ListOptions) (*postgrid.PostcardList, error)
	ProgressTestPostcard(ctx context.Context, id string) (*postgrid.Postcard, error)
	ValidateConfiguration(ctx context.Context) postgrid.ValidationResult
}

type CampaignReader interface {
	GetByID(ctx context.Context, id string) (campaign.Campaign, error)
}

type RecipientReader interface {
	GetByID(ctx context.Context, id string) (mover.Recipient, error)
}

type PostcardsHandler struct {
	gateway    MailGateway
	campaigns  CampaignReader
	recipients RecipientReader
}

func NewPostcardsHandler(gateway MailGateway, campaigns CampaignReader, recipients RecipientReader) *PostcardsHandler {
	return &PostcardsHandler{
		gateway:    gateway,
		campaigns:  campaigns,
		recipients: recipients,
	}
}

type SendPostcardRequest struct {
	CampaignID  string `json:"campaignId" binding:"required"`
	RecipientID string `json:"recipientId" binding:"required"`
	DesignURL   string `json:"designUrl" binding:"omitempty,url"`
}

func (h *PostcardsHandler) Send(ctx *gin.Context) {
	var req SendPostcardRequest

	if !BindJSON(ctx, &req) {
		return
	}

	rctx := ctx.Request.Context()

	camp, err := h.campaigns.GetByID(rctx, req.CampaignID)

	if err != nil {
		if errors.Is(err, postgres.ErrCampaignNotFound) {
			RespondNotFound(ctx, "Campaign not found")
			return
		}

		RespondInternal(ctx, "Could not load campaign")
		return
	}

	recipient, err := h.recipients.GetByID(rctx, req.RecipientID)

	if err != nil {
		if errors.Is(err, postgres.ErrRecipientNotFound) {
			RespondNotFound(ctx, "Recipient not found")
			return
		}

		RespondInternal(ctx, "Could not load recipient")
		return
	}

	designURL := req.DesignURL

	if designURL == "" {
		designURL = camp.DesignURL
	}

	if designURL == "" {
		RespondBadRequest(ctx, "No design configured for this campaign", nil)
		return
	}

	pc, err := h.gateway.SendPostcard(rctx, recipient, designURL, camp)

	if err != nil {
		respondGatewayError(ctx, err)
		return
	}

	ctx.JSON(http.StatusCreated, pc)
}

func (h *PostcardsHandler) Get(ctx *gin.Context) {
	pc, err := h.gateway.GetPostcardStatus(ctx.Request.Context(), ctx.Param("id"))

	if err != nil {
		respondGatewayError(ctx, err)
		return
	}

	ctx.JSON(http.StatusOK, pc)
}

func (h *PostcardsHandler) Cancel(ctx *gin.Context) {
	result, err := h.gateway.CancelPostcard(ctx.Request.Context(), ctx.Param("id"))

	if err != nil {
		// late cancels come back as vendor errors; forward them as-is
		respondGatewayError(ctx, err)
		return
	}

	ctx.JSON(http.StatusOK, result)
}

func (h *PostcardsHandler) List(ctx *gin.Context) {
	opts := postgrid.ListOptions{
		Search: ctx.Query("search"),
		Skip:   intQuery(ctx, "skip", 0),
		Limit:  intQuery(ctx, "limit", 0),
	}

	list, err := h.gateway.ListPostcards(ctx.Request.Context(), opts)

	if err != nil {
		respondGatewayError(ctx, err)
		return
	}

	RespondJSONWithETag(ctx, http.StatusOK, list)
}

func (h *PostcardsHandler) Progress(ctx *gin.Context) {
	pc, err := h.gateway.ProgressTestPostcard(ctx.Request.Context(), ctx.Param("id"))

	if err != nil {
		if errors.Is(err, postgrid.ErrNotTestKey) {
			RespondBadRequest(ctx, "Progressions are only available with a test-mode key", nil)
			return
		}

		respondGatewayError(ctx, err)
		return
	}

	ctx.JSON(http.StatusOK, pc)
}

// VendorHealth reports whether the configured credential is accepted and in
// which mode. Always 200; the verdict is in the body.
func (h *PostcardsHandler) VendorHealth(ctx *gin.Context) {
	result := h.gateway.ValidateConfiguration(ctx.Request.Context())

	ctx.JSON(http.StatusOK, result)
}

func respondGatewayError(ctx *gin.Context, err error) {
	if errors.Is(err, postgrid.ErrMissingAPIKey) {
		RespondError(ctx, http.StatusServiceUnavailable, "vendor_not_configured", "Mail vendor is not configured", nil)
		return
	}

	RespondVendorFailure(ctx, err)
}

func intQuery(ctx *gin.Context, name string, fallback int) int {
	raw := ctx.Query(name)

	if raw == "" {
		return fallback
	}

	n, err := strconv.Atoi(raw)

	if err != nil {
		return fallback
	}

	return n
}
