package handlers

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/gin-gonic/gin"
	"github.com/movepost/movepost/internal/domain/campaign"
	"github.com/movepost/movepost/internal/domain/mover"
	"github.com/movepost/movepost/internal/postgrid"
	"github.com/movepost/movepost/internal/repo/postgres"
)

// fakeGateway uses function fields so each test overrides only what it needs.
type fakeGateway struct {
	sendFn     func(ctx context.Context, recipient mover.Recipient, designURL string, camp campaign.Campaign) (*postgrid.Postcard, error)
	statusFn   func(ctx context.Context, id string) (*postgrid.Postcard, error)
	cancelFn   func(ctx context.Context, id string) (*postgrid.CancelResult, error)
	listFn     func(ctx context.Context, opts postgrid.ListOptions) (*postgrid.PostcardList, error)
	progressFn func(ctx context.Context, id string) (*postgrid.Postcard, error)
	validateFn func(ctx context.Context) postgrid.ValidationResult
}

func (f *fakeGateway) SendPostcard(ctx context.Context, recipient mover.Recipient, designURL string, camp campaign.Campaign) (*postgrid.Postcard, error) {
	return f.sendFn(ctx, recipient, designURL, camp)
}

func (f *fakeGateway) GetPostcardStatus(ctx context.Context, id string) (*postgrid.Postcard, error) {
	return f.statusFn(ctx, id)
}

func (f *fakeGateway) CancelPostcard(ctx context.Context, id string) (*postgrid.CancelResult, error) {
	return f.cancelFn(ctx, id)
}

func (f *fakeGateway) ListPostcards(ctx context.Context, opts postgrid.ListOptions) (*postgrid.PostcardList, error) {
	return f.listFn(ctx, opts)
}

func (f *fakeGateway) ProgressTestPostcard(ctx context.Context, id string) (*postgrid.Postcard, error) {
	return f.progressFn(ctx, id)
}

func (f *fakeGateway) ValidateConfiguration(ctx context.Context) postgrid.ValidationResult {
	return f.validateFn(ctx)
}

type fakeCampaigns struct {
	camp campaign.Campaign
	err  error
}

func (f *fakeCampaigns) GetByID(ctx context.Context, id string) (campaign.Campaign, error) {
	return f.camp, f.err
}

type fakeRecipients struct {
	recipient mover.Recipient
	err       error
}

func (f *fakeRecipients) GetByID(ctx context.Context, id string) (mover.Recipient, error) {
	return f.recipient, f.err
}

func postcardsRouter(h *PostcardsHandler) *gin.Engine {
	gin.SetMode(gin.TestMode)
	r := gin.New()

	r.POST("/admin/postcards", h.Send)
	r.GET("/admin/postcards", h.List)
	r.GET("/admin/postcards/:id", h.Get)
	r.DELETE("/admin/postcards/:id", h.Cancel)
	r.POST("/admin/postcards/:id/progressions", h.Progress)
	r.GET("/admin/postgrid/health", h.VendorHealth)

	return r
}

func TestSendPostcardHandler(t *testing.T) {
	var gotDesign string

	gateway := &fakeGateway{
		sendFn: func(ctx context.Context, recipient mover.Recipient, designURL string, camp campaign.Campaign) (*postgrid.Postcard, error) {
			gotDesign = designURL
			return &postgrid.Postcard{ID: "postcard_1", Status: postgrid.StatusCreated}, nil
		},
	}

	h := NewPostcardsHandler(gateway,
		&fakeCampaigns{camp: campaign.Campaign{ID: "camp_1", DesignURL: "https://cdn.example.com/front.pdf"}},
		&fakeRecipients{recipient: mover.Recipient{ID: "rec_1", FullName: "Jane Doe"}},
	)

	body := `{"campaignId":"camp_1","recipientId":"rec_1"}`

	w := httptest.NewRecorder()
	req := httptest.NewRequest(http.MethodPost, "/admin/postcards", strings.NewReader(body))
	req.Header.Set("Content-Type", "application/json")
	postcardsRouter(h).ServeHTTP(w, req)

	if w.Code != http.StatusCreated {
		t.Fatalf("status = %d, want 201, body %s", w.Code, w.Body.String())
	}

	// design falls back to the campaign's configured artwork
	if gotDesign != "https://cdn.example.com/front.pdf" {
		t.Errorf("designURL = %q, want campaign fallback", gotDesign)
	}

	var pc postgrid.Postcard

	if err := json.Unmarshal(w.Body.Bytes(), &pc); err != nil {
		t.Fatalf("decode response: %v", err)
	}

	if pc.ID != "postcard_1" || pc.Status != postgrid.StatusCreated {
		t.Errorf("unexpected postcard in response: %+v", pc)
	}
}

func TestSendPostcardHandlerCampaignNotFound(t *testing.T) {
	h := NewPostcardsHandler(&fakeGateway{},
		&fakeCampaigns{err: postgres.ErrCampaignNotFound},
		&fakeRecipients{},
	)

	body := `{"campaignId":"missing","recipientId":"rec_1"}`

	w := httptest.NewRecorder()
	req := httptest.NewRequest(http.MethodPost, "/admin/postcards", strings.NewReader(body))
	req.Header.Set("Content-Type", "application/json")
	postcardsRouter(h).ServeHTTP(w, req)

	if w.Code != http.StatusNotFound {
		t.Errorf("status = %d, want 404", w.Code)
	}
}

func TestSendPostcardHandlerNoDesignAnywhere(t *testing.T) {
	h := NewPostcardsHandler(&fakeGateway{},
		&fakeCampaigns{camp: campaign.Campaign{ID: "camp_1"}},
		&fakeRecipients{recipient: mover.Recipient{ID: "rec_1"}},
	)

	body := `{"campaignId":"camp_1","recipientId":"rec_1"}`

	w := httptest.NewRecorder()
	req := httptest.NewRequest(http.MethodPost, "/admin/postcards", strings.NewReader(body))
	req.Header.Set("Content-Type", "application/json")
	postcardsRouter(h).ServeHTTP(w, req)

	if w.Code != http.StatusBadRequest {
		t.Errorf("status = %d, want 400", w.Code)
	}
}

func TestSendPostcardHandlerVendorNotConfigured(t *testing.T) {
	gateway := &fakeGateway{
		sendFn: func(ctx context.Context, recipient mover.Recipient, designURL string, camp campaign.Campaign) (*postgrid.Postcard, error) {
			return nil, postgrid.ErrMissingAPIKey
		},
	}

	h := NewPostcardsHandler(gateway,
		&fakeCampaigns{camp: campaign.Campaign{ID: "camp_1", DesignURL: "https://cdn.example.com/front.pdf"}},
		&fakeRecipients{recipient: mover.Recipient{ID: "rec_1"}},
	)

	body := `{"campaignId":"camp_1","recipientId":"rec_1"}`

	w := httptest.NewRecorder()
	req := httptest.NewRequest(http.MethodPost, "/admin/postcards", strings.NewReader(body))
	req.Header.Set("Content-Type", "application/json")
	postcardsRouter(h).ServeHTTP(w, req)

	if w.Code != http.StatusServiceUnavailable {
		t.Errorf("status = %d, want 503", w.Code)
	}
}

func TestSendPostcardHandlerVendorFailure(t *testing.T) {
	gateway := &fakeGateway{
		sendFn: func(ctx context.Context, recipient mover.Recipient, designURL string, camp campaign.Campaign) (*postgrid.Postcard, error) {
			return nil, errors.New("send postcard: api error (status 422): to.addressLine1 is required")
		},
	}

	h := NewPostcardsHandler(gateway,
		&fakeCampaigns{camp: campaign.Campaign{ID: "camp_1", DesignURL: "https://cdn.example.com/front.pdf"}},
		&fakeRecipients{recipient: mover.Recipient{ID: "rec_1"}},
	)

	body := `{"campaignId":"camp_1","recipientId":"rec_1"}`

	w := httptest.NewRecorder()
	req := httptest.NewRequest(http.MethodPost, "/admin/postcards", strings.NewReader(body))
	req.Header.Set("Content-Type", "application/json")
	postcardsRouter(h).ServeHTTP(w, req)

	if w.Code != http.StatusBadGateway {
		t.Errorf("status = %d, want 502", w.Code)
	}
}

func TestListPostcardsHandlerQueryParams(t *testing.T) {
	var gotOpts postgrid.ListOptions

	gateway := &fakeGateway{
		listFn: func(ctx context.Context, opts postgrid.ListOptions) (*postgrid.PostcardList, error) {
			gotOpts = opts
			return &postgrid.PostcardList{Skip: opts.Skip, Limit: 25, TotalCount: 0, Data: []postgrid.Postcard{}}, nil
		},
	}

	h := NewPostcardsHandler(gateway, &fakeCampaigns{}, &fakeRecipients{})

	w := httptest.NewRecorder()
	req := httptest.NewRequest(http.MethodGet, "/admin/postcards?search=jane&skip=50&limit=25", nil)
	postcardsRouter(h).ServeHTTP(w, req)

	if w.Code != http.StatusOK {
		t.Fatalf("status = %d, want 200", w.Code)
	}

	if gotOpts.Search != "jane" || gotOpts.Skip != 50 || gotOpts.Limit != 25 {
		t.Errorf("opts = %+v, want search=jane skip=50 limit=25", gotOpts)
	}
}

func TestCancelPostcardHandler(t *testing.T) {
	gateway := &fakeGateway{
		cancelFn: func(ctx context.Context, id string) (*postgrid.CancelResult, error) {
			return &postgrid.CancelResult{ID: id, Deleted: true}, nil
		},
	}

	h := NewPostcardsHandler(gateway, &fakeCampaigns{}, &fakeRecipients{})

	w := httptest.NewRecorder()
	req := httptest.NewRequest(http.MethodDelete, "/admin/postcards/postcard_1", nil)
	postcardsRouter(h).ServeHTTP(w, req)

	if w.Code != http.StatusOK {
		t.Fatalf("status = %d, want 200", w.Code)
	}

	var result postgrid.CancelResult

	if err := json.Unmarshal(w.Body.Bytes(), &result); err != nil {
		t.Fatalf("decode response: %v", err)
	}

	if result.ID != "postcard_1" || !result.Deleted {
		t.Errorf("unexpected cancel result: %+v", result)
	}
}

func TestProgressHandlerRejectsLiveKey(t *testing.T) {
	gateway := &fakeGateway{
		progressFn: func(ctx context.Context, id string) (*postgrid.Postcard, error) {
			return nil, postgrid.ErrNotTestKey
		},
	}

	h := NewPostcardsHandler(gateway, &fakeCampaigns{}, &fakeRecipients{})

	w := httptest.NewRecorder()
	req := httptest.NewRequest(http.MethodPost, "/admin/postcards/postcard_1/progressions", nil)
	postcardsRouter(h).ServeHTTP(w, req)

	if w.Code != http.StatusBadRequest {
		t.Errorf("status = %d, want 400", w.Code)
	}
}

func TestVendorHealthHandlerAlways200(t *testing.T) {
	gateway := &fakeGateway{
		validateFn: func(ctx context.Context) postgrid.ValidationResult {
			return postgrid.ValidationResult{Valid: false, Error: "PostGrid API key is not configured"}
		},
	}

	h := NewPostcardsHandler(gateway, &fakeCampaigns{}, &fakeRecipients{})

	w := httptest.NewRecorder()
	req := httptest.NewRequest(http.MethodGet, "/admin/postgrid/health", nil)
	postcardsRouter(h).ServeHTTP(w, req)

	if w.Code != http.StatusOK {
		t.Fatalf("status = %d, want 200", w.Code)
	}

	var result postgrid.ValidationResult

	if err := json.Unmarshal(w.Body.Bytes(), &result); err != nil {
		t.Fatalf("decode response: %v", err)
	}

	if result.Valid {
		t.Errorf("expected invalid verdict, got %+v", result)
	}
}
