package handlers

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/gin-gonic/gin"
	"github.com/movepost/movepost/internal/http/middlewares"
	"github.com/movepost/movepost/internal/profile"
)

type fakeProfileService struct {
	getFn   func(ctx context.Context, userID string) (profile.Profile, error)
	applyFn func(ctx context.Context, userID string, updates profile.Update) (profile.Profile, error)
}

func (f *fakeProfileService) Get(ctx context.Context, userID string) (profile.Profile, error) {
	return f.getFn(ctx, userID)
}

func (f *fakeProfileService) Apply(ctx context.Context, userID string, updates profile.Update) (profile.Profile, error) {
	return f.applyFn(ctx, userID, updates)
}

func profileRouter(h *ProfileHandler, userID string) *gin.Engine {
	gin.SetMode(gin.TestMode)
	r := gin.New()

	identity := func(c *gin.Context) {
		if userID != "" {
			c.Set(middlewares.CtxUserID, userID)
		}
		c.Next()
	}

	r.GET("/me/profile", identity, h.GetProfile)
	r.PATCH("/me/profile", identity, h.UpdateProfile)

	return r
}

func TestGetProfile(t *testing.T) {
	svc := &fakeProfileService{
		getFn: func(ctx context.Context, userID string) (profile.Profile, error) {
			return profile.Profile{UserID: userID, Email: "jane@example.com", Role: profile.RoleUser, Timezone: "UTC"}, nil
		},
	}

	h := NewProfileHandler(svc)

	w := httptest.NewRecorder()
	req := httptest.NewRequest(http.MethodGet, "/me/profile", nil)
	profileRouter(h, "usr_1").ServeHTTP(w, req)

	if w.Code != http.StatusOK {
		t.Fatalf("status = %d, want 200, body %s", w.Code, w.Body.String())
	}

	if w.Header().Get("ETag") == "" {
		t.Error("expected an ETag on profile reads")
	}

	var p profile.Profile

	if err := json.Unmarshal(w.Body.Bytes(), &p); err != nil {
		t.Fatalf("decode response: %v", err)
	}

	if p.UserID != "usr_1" || p.Email != "jane@example.com" {
		t.Errorf("unexpected profile: %+v", p)
	}
}

func TestGetProfileUnauthenticated(t *testing.T) {
	svc := &fakeProfileService{
		getFn: func(ctx context.Context, userID string) (profile.Profile, error) {
			return profile.Profile{}, profile.ErrNotAuthenticated
		},
	}

	h := NewProfileHandler(svc)

	w := httptest.NewRecorder()
	req := httptest.NewRequest(http.MethodGet, "/me/profile", nil)
	profileRouter(h, "").ServeHTTP(w, req)

	if w.Code != http.StatusUnauthorized {
		t.Errorf("status = %d, want 401", w.Code)
	}
}

func TestUpdateProfile(t *testing.T) {
	var gotUpdates profile.Update

	svc := &fakeProfileService{
		applyFn: func(ctx context.Context, userID string, updates profile.Update) (profile.Profile, error) {
			gotUpdates = updates
			return profile.Profile{UserID: userID, FirstName: "Jane", LastName: "Doe", FullName: "Jane Doe"}, nil
		},
	}

	h := NewProfileHandler(svc)

	body := `{"firstName":"Jane","lastName":"Doe"}`

	w := httptest.NewRecorder()
	req := httptest.NewRequest(http.MethodPatch, "/me/profile", strings.NewReader(body))
	req.Header.Set("Content-Type", "application/json")
	profileRouter(h, "usr_1").ServeHTTP(w, req)

	if w.Code != http.StatusOK {
		t.Fatalf("status = %d, want 200, body %s", w.Code, w.Body.String())
	}

	if gotUpdates.FirstName == nil || *gotUpdates.FirstName != "Jane" {
		t.Errorf("firstName not bound: %+v", gotUpdates)
	}

	if gotUpdates.LastName == nil || *gotUpdates.LastName != "Doe" {
		t.Errorf("lastName not bound: %+v", gotUpdates)
	}
}

func TestUpdateProfileNotFound(t *testing.T) {
	svc := &fakeProfileService{
		applyFn: func(ctx context.Context, userID string, updates profile.Update) (profile.Profile, error) {
			return profile.Profile{}, profile.ErrNotFound
		},
	}

	h := NewProfileHandler(svc)

	body := `{"company":"Acme"}`

	w := httptest.NewRecorder()
	req := httptest.NewRequest(http.MethodPatch, "/me/profile", strings.NewReader(body))
	req.Header.Set("Content-Type", "application/json")
	profileRouter(h, "usr_gone").ServeHTTP(w, req)

	if w.Code != http.StatusNotFound {
		t.Errorf("status = %d, want 404", w.Code)
	}
}
