package handlers_test

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/gofiber/fiber/v2"
	"github.com/localnerve/designerhub/internal/config"
	"github.com/localnerve/designerhub/internal/handlers"
	"github.com/localnerve/designerhub/internal/mail"
	"github.com/localnerve/designerhub/internal/services"
	"github.com/localnerve/designerhub/internal/testutil"
	"github.com/localnerve/designerhub/internal/utils"
	"golang.org/x/crypto/bcrypt"
	"gorm.io/gorm"
)

const testPassword = "correct horse battery"

type testServer struct {
	app *fiber.App
	db  *gorm.DB
}

type denyAll struct{}

func (denyAll) Allow(context.Context, string) bool { return false }

type failingMailer struct{}

func (failingMailer) Send(context.Context, mail.Message) error {
	return errors.New("smtp: connection refused")
}

func newTestServer(t *testing.T, configure func(*handlers.Services)) *testServer {
	t.Helper()

	db := testutil.NewDB(t)
	cfg := &config.Config{
		DBType:           "sqlite-nocgo",
		DBDatabase:       ":memory:",
		JWTSecret:        "handler-test-secret",
		AccessTokenTTL:   5 * time.Minute,
		RefreshTokenTTL:  time.Hour,
		PasswordResetTTL: 24 * time.Hour,
		PasswordResetURL: "http://localhost/reset/",
	}

	auth := services.NewAuthService(db, cfg, mail.LogMailer{}, nil)
	auth.HashCost = bcrypt.MinCost

	svc := handlers.Services{
		Auth:       auth,
		Catalog:    services.NewCatalogService(db, nil),
		Engagement: services.NewEngagementService(db),
		Profiles:   services.NewProfileService(db),
		Messaging:  services.NewMessagingService(db),
		Reviews:    services.NewReviewService(db),
		Health:     &handlers.HealthHandler{Config: cfg, DB: db},
	}
	if configure != nil {
		configure(&svc)
	}

	app := fiber.New(fiber.Config{ErrorHandler: utils.ErrorHandler})
	handlers.RegisterRoutes(app.Group("/api"), svc)
	return &testServer{app: app, db: db}
}

func (s *testServer) do(t *testing.T, method, path, token string, body any) *http.Response {
	t.Helper()

	var reader io.Reader
	if body != nil {
		raw, err := json.Marshal(body)
		if err != nil {
			t.Fatalf("Failed to encode body: %v", err)
		}
		reader = bytes.NewReader(raw)
	}
	req := httptest.NewRequest(method, path, reader)
	if body != nil {
		req.Header.Set("Content-Type", "application/json")
	}
	if token != "" {
		req.Header.Set("Authorization", "Bearer "+token)
	}
	resp, err := s.app.Test(req, 5000)
	if err != nil {
		t.Fatalf("Failed to execute request: %v", err)
	}
	return resp
}

// login creates an account and returns its access token
func (s *testServer) login(t *testing.T, email string) (uint64, string) {
	t.Helper()

	account := testutil.CreateAccount(t, s.db, email, testPassword)
	resp := s.do(t, "POST", "/api/login", "", map[string]string{"email": email, "password": testPassword})
	assertStatus(t, resp, fiber.StatusOK)

	var pair services.TokenPair
	parseJSON(t, resp, &pair)
	if pair.Access == "" || pair.Refresh == "" {
		t.Fatalf("Expected both tokens, got %+v", pair)
	}
	return account.ID, pair.Access
}

func assertStatus(t *testing.T, resp *http.Response, expected int) {
	t.Helper()
	if resp.StatusCode != expected {
		body, _ := io.ReadAll(resp.Body)
		t.Fatalf("Expected status %d, got %d: %s", expected, resp.StatusCode, body)
	}
}

func parseJSON(t *testing.T, resp *http.Response, target any) {
	t.Helper()
	defer resp.Body.Close()
	body, err := io.ReadAll(resp.Body)
	if err != nil {
		t.Fatalf("Failed to read response body: %v", err)
	}
	if err := json.Unmarshal(body, target); err != nil {
		t.Fatalf("Failed to decode JSON: %v. Body: %s", err, string(body))
	}
}

func TestRegisterLoginMe(t *testing.T) {
	s := newTestServer(t, nil)

	register := map[string]string{
		"email":      "Ada@Example.COM",
		"first_name": "Ada",
		"password":   testPassword,
		"password2":  testPassword,
	}
	resp := s.do(t, "POST", "/api/register", "", register)
	assertStatus(t, resp, fiber.StatusCreated)

	var status utils.StatusResponseStruct
	parseJSON(t, resp, &status)
	if status.Status != "registered" {
		t.Errorf("Expected registered, got %q", status.Status)
	}

	resp = s.do(t, "POST", "/api/register", "", register)
	assertStatus(t, resp, fiber.StatusConflict)

	resp = s.do(t, "POST", "/api/login", "", map[string]string{"email": "Ada@example.com", "password": testPassword})
	assertStatus(t, resp, fiber.StatusOK)
	var pair services.TokenPair
	parseJSON(t, resp, &pair)

	resp = s.do(t, "GET", "/api/me", pair.Access, nil)
	assertStatus(t, resp, fiber.StatusOK)
	var me map[string]any
	parseJSON(t, resp, &me)
	if me["email"] != "Ada@example.com" {
		t.Errorf("Expected normalized email, got %v", me["email"])
	}

	resp = s.do(t, "POST", "/api/token/refresh", "", map[string]string{"refresh": pair.Refresh})
	assertStatus(t, resp, fiber.StatusOK)
	var refreshed services.TokenPair
	parseJSON(t, resp, &refreshed)
	if refreshed.Access == "" || refreshed.Refresh != "" {
		t.Errorf("Expected an access-only pair, got %+v", refreshed)
	}

	// refresh tokens are not accepted as access tokens
	resp = s.do(t, "GET", "/api/me", pair.Refresh, nil)
	assertStatus(t, resp, fiber.StatusUnauthorized)
}

func TestRegisterValidation(t *testing.T) {
	s := newTestServer(t, nil)

	tests := []struct {
		name string
		body any
	}{
		{"empty body", nil},
		{"missing first name", map[string]string{"email": "a@example.com", "password": testPassword, "password2": testPassword}},
		{"bad email", map[string]string{"email": "nope", "first_name": "A", "password": testPassword, "password2": testPassword}},
		{"mismatch", map[string]string{"email": "a@example.com", "first_name": "A", "password": testPassword, "password2": "other password"}},
		{"numeric password", map[string]string{"email": "a@example.com", "first_name": "A", "password": "12345678", "password2": "12345678"}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			resp := s.do(t, "POST", "/api/register", "", tt.body)
			assertStatus(t, resp, fiber.StatusBadRequest)

			var errResp utils.ErrorResponseStruct
			parseJSON(t, resp, &errResp)
			if errResp.Ok || errResp.Status != fiber.StatusBadRequest {
				t.Errorf("Unexpected error envelope: %+v", errResp)
			}
		})
	}
}

func TestLoginRejectsBadPassword(t *testing.T) {
	s := newTestServer(t, nil)
	testutil.CreateAccount(t, s.db, "grace@example.com", testPassword)

	resp := s.do(t, "POST", "/api/login", "", map[string]string{"email": "grace@example.com", "password": "wrong password"})
	assertStatus(t, resp, fiber.StatusUnauthorized)
}

func TestPasswordResetIsUniform(t *testing.T) {
	s := newTestServer(t, nil)
	testutil.CreateAccount(t, s.db, "known@example.com", testPassword)

	for _, email := range []string{"known@example.com", "unknown@example.com"} {
		resp := s.do(t, "POST", "/api/password-reset", "", map[string]string{"email": email})
		assertStatus(t, resp, fiber.StatusOK)
	}

	resp := s.do(t, "POST", "/api/password-reset-confirm", "", map[string]string{
		"token":            "00000000-0000-0000-0000-000000000000",
		"new_password":     "another secret",
		"confirm_password": "another secret",
	})
	assertStatus(t, resp, fiber.StatusNotFound)
}

func TestPasswordResetIsUniformWhenMailFails(t *testing.T) {
	s := newTestServer(t, func(svc *handlers.Services) {
		svc.Auth.Mailer = failingMailer{}
	})
	testutil.CreateAccount(t, s.db, "known@example.com", testPassword)

	var bodies []string
	for _, email := range []string{"known@example.com", "unknown@example.com"} {
		resp := s.do(t, "POST", "/api/password-reset", "", map[string]string{"email": email})
		if resp.StatusCode != fiber.StatusOK {
			t.Fatalf("Expected 200 for %s, got %d", email, resp.StatusCode)
		}
		raw, err := io.ReadAll(resp.Body)
		resp.Body.Close()
		if err != nil {
			t.Fatalf("Failed to read response body: %v", err)
		}
		bodies = append(bodies, string(raw))
	}
	if bodies[0] != bodies[1] {
		t.Errorf("Expected identical bodies, got %q and %q", bodies[0], bodies[1])
	}
}

func TestAuthRateLimit(t *testing.T) {
	s := newTestServer(t, func(svc *handlers.Services) {
		svc.AuthLimiter = denyAll{}
	})

	resp := s.do(t, "POST", "/api/login", "", map[string]string{"email": "a@example.com", "password": testPassword})
	assertStatus(t, resp, fiber.StatusTooManyRequests)

	// registration is not throttled
	resp = s.do(t, "POST", "/api/register", "", map[string]string{
		"email": "a@example.com", "first_name": "A", "password": testPassword, "password2": testPassword,
	})
	assertStatus(t, resp, fiber.StatusCreated)
}

func TestProtectedRoutesRequireAuth(t *testing.T) {
	s := newTestServer(t, nil)

	for _, route := range []struct{ method, path string }{
		{"GET", "/api/me"},
		{"GET", "/api/designes/1"},
		{"POST", "/api/designes"},
		{"GET", "/api/favorites"},
		{"POST", "/api/like/add_design"},
		{"GET", "/api/chat"},
		{"GET", "/api/messages"},
		{"GET", "/api/cocial-accounts"},
		{"POST", "/api/reviews"},
	} {
		resp := s.do(t, route.method, route.path, "", nil)
		if resp.StatusCode != fiber.StatusUnauthorized {
			t.Errorf("%s %s: expected 401, got %d", route.method, route.path, resp.StatusCode)
		}
	}

	for _, path := range []string{"/api/categories", "/api/designes", "/api/user-profile", "/api/contacts", "/api/reviews"} {
		resp := s.do(t, "GET", path, "", nil)
		if resp.StatusCode != fiber.StatusOK {
			t.Errorf("GET %s: expected 200, got %d", path, resp.StatusCode)
		}
	}
}

func TestCategoriesAdminOnly(t *testing.T) {
	s := newTestServer(t, nil)
	_, userToken := s.login(t, "user@example.com")

	admin := testutil.CreateAccount(t, s.db, "admin@example.com", testPassword)
	if err := s.db.Model(&admin).Update("is_admin", true).Error; err != nil {
		t.Fatalf("Failed to promote admin: %v", err)
	}
	resp := s.do(t, "POST", "/api/login", "", map[string]string{"email": "admin@example.com", "password": testPassword})
	assertStatus(t, resp, fiber.StatusOK)
	var pair services.TokenPair
	parseJSON(t, resp, &pair)

	resp = s.do(t, "POST", "/api/categories", userToken, map[string]string{"name": "Branding"})
	assertStatus(t, resp, fiber.StatusForbidden)

	resp = s.do(t, "POST", "/api/categories", pair.Access, map[string]string{"name": "Branding"})
	assertStatus(t, resp, fiber.StatusCreated)

	resp = s.do(t, "POST", "/api/categories", pair.Access, map[string]string{"name": "Branding"})
	assertStatus(t, resp, fiber.StatusConflict)
}

func TestWorkLifecycle(t *testing.T) {
	s := newTestServer(t, nil)
	ownerID, owner := s.login(t, "owner@example.com")
	_, viewer := s.login(t, "viewer@example.com")
	category := testutil.CreateCategory(t, s.db, "Illustration")

	resp := s.do(t, "POST", "/api/designes", owner, map[string]any{
		"design_title": "Poster",
		"media_data":   "https://cdn.example.com/poster.png",
		"descriptions": "A poster",
		"category":     fmt.Sprint(category.ID),
		"hashtag":      "#print",
	})
	assertStatus(t, resp, fiber.StatusCreated)
	var work services.WorkView
	parseJSON(t, resp, &work)
	if work.AccountID != ownerID || work.Views != 0 {
		t.Fatalf("Unexpected work: %+v", work)
	}

	path := fmt.Sprintf("/api/designes/%d", work.ID)
	for i := 0; i < 3; i++ {
		resp = s.do(t, "GET", path, viewer, nil)
		assertStatus(t, resp, fiber.StatusOK)
		parseJSON(t, resp, &work)
	}
	if work.Views != 1 {
		t.Errorf("Expected 1 view after repeated reads, got %d", work.Views)
	}

	resp = s.do(t, "GET", "/api/designes?designe_title=post&hashtag=PRINT", "", nil)
	assertStatus(t, resp, fiber.StatusOK)
	var works []services.WorkView
	parseJSON(t, resp, &works)
	if len(works) != 1 {
		t.Errorf("Expected 1 filtered work, got %d", len(works))
	}

	resp = s.do(t, "GET", "/api/designes?publicated_date_after=yesterday", "", nil)
	assertStatus(t, resp, fiber.StatusBadRequest)

	resp = s.do(t, "PATCH", path, viewer, map[string]string{"hashtag": "#stolen"})
	assertStatus(t, resp, fiber.StatusForbidden)

	resp = s.do(t, "PATCH", path, owner, map[string]string{"hashtag": "#poster"})
	assertStatus(t, resp, fiber.StatusOK)
	parseJSON(t, resp, &work)
	if work.Hashtag != "#poster" {
		t.Errorf("Expected patched hashtag, got %q", work.Hashtag)
	}

	// PUT requires the full work
	resp = s.do(t, "PUT", path, owner, map[string]string{"hashtag": "#poster"})
	assertStatus(t, resp, fiber.StatusBadRequest)

	resp = s.do(t, "DELETE", path, owner, nil)
	assertStatus(t, resp, fiber.StatusNoContent)

	resp = s.do(t, "GET", path, viewer, nil)
	assertStatus(t, resp, fiber.StatusNotFound)
}

func TestCollections(t *testing.T) {
	s := newTestServer(t, nil)
	ownerID, _ := s.login(t, "owner@example.com")
	_, fan := s.login(t, "fan@example.com")
	category := testutil.CreateCategory(t, s.db, "Web")
	work := testutil.CreateWork(t, s.db, ownerID, category.ID, "Landing")

	for _, base := range []string{"/api/favorites", "/api/like"} {
		t.Run(base, func(t *testing.T) {
			resp := s.do(t, "POST", base+"/remove_design", fan, map[string]any{"design_id": work.ID})
			assertStatus(t, resp, fiber.StatusNotFound)

			want := []string{"added", "already_present"}
			for _, expected := range want {
				resp = s.do(t, "POST", base+"/add_design", fan, map[string]any{"design_id": fmt.Sprint(work.ID)})
				assertStatus(t, resp, fiber.StatusOK)
				var status utils.StatusResponseStruct
				parseJSON(t, resp, &status)
				if status.Status != expected {
					t.Errorf("Expected %q, got %q", expected, status.Status)
				}
			}

			resp = s.do(t, "GET", base, fan, nil)
			assertStatus(t, resp, fiber.StatusOK)
			var view services.CollectionView
			parseJSON(t, resp, &view)
			if len(view.Designs) != 1 || view.Designs[0] != work.ID {
				t.Errorf("Unexpected collection: %+v", view)
			}

			resp = s.do(t, "POST", base+"/remove_design", fan, map[string]any{"design_id": work.ID})
			assertStatus(t, resp, fiber.StatusOK)
		})
	}

	resp := s.do(t, "POST", "/api/like/add_design", fan, map[string]any{"design_id": 9999})
	assertStatus(t, resp, fiber.StatusNotFound)

	resp = s.do(t, "POST", "/api/like/add_design", fan, map[string]any{"design_id": "abc"})
	assertStatus(t, resp, fiber.StatusBadRequest)
}

func TestChatsAndMessages(t *testing.T) {
	s := newTestServer(t, nil)
	aliceID, alice := s.login(t, "alice@example.com")
	bobID, bob := s.login(t, "bob@example.com")
	carolID, carol := s.login(t, "carol@example.com")
	for _, id := range []uint64{aliceID, bobID, carolID} {
		testutil.CreateProfile(t, s.db, id)
	}

	resp := s.do(t, "POST", "/api/chat", alice, map[string]any{"user2": aliceID})
	assertStatus(t, resp, fiber.StatusBadRequest)

	resp = s.do(t, "POST", "/api/chat", alice, map[string]any{"user2": fmt.Sprint(bobID)})
	assertStatus(t, resp, fiber.StatusCreated)
	var chat services.ChatView
	parseJSON(t, resp, &chat)

	resp = s.do(t, "POST", "/api/chat", bob, map[string]any{"user2": aliceID})
	assertStatus(t, resp, fiber.StatusConflict)

	resp = s.do(t, "POST", "/api/messages", bob, map[string]any{"chat": chat.ID, "text": "hello"})
	assertStatus(t, resp, fiber.StatusCreated)

	resp = s.do(t, "POST", "/api/messages", carol, map[string]any{"chat": chat.ID, "text": "let me in"})
	assertStatus(t, resp, fiber.StatusForbidden)

	resp = s.do(t, "GET", fmt.Sprintf("/api/messages?chat=%d", chat.ID), alice, nil)
	assertStatus(t, resp, fiber.StatusOK)
	var messages []services.MessageView
	parseJSON(t, resp, &messages)
	if len(messages) != 1 || messages[0].Text != "hello" {
		t.Fatalf("Unexpected messages: %+v", messages)
	}

	resp = s.do(t, "GET", fmt.Sprintf("/api/messages/%d", messages[0].ID), carol, nil)
	assertStatus(t, resp, fiber.StatusForbidden)

	resp = s.do(t, "GET", fmt.Sprintf("/api/chat/%d", chat.ID), alice, nil)
	assertStatus(t, resp, fiber.StatusOK)
	parseJSON(t, resp, &chat)
	if len(chat.Messages) != 1 || chat.User2.AccountID != bobID {
		t.Errorf("Unexpected chat: %+v", chat)
	}

	resp = s.do(t, "GET", "/api/chat", carol, nil)
	assertStatus(t, resp, fiber.StatusOK)
	var chats []services.ChatView
	parseJSON(t, resp, &chats)
	if len(chats) != 0 {
		t.Errorf("Expected no chats for carol, got %d", len(chats))
	}
}

func TestProfilesAndReviews(t *testing.T) {
	s := newTestServer(t, nil)
	ownerID, owner := s.login(t, "owner@example.com")
	_, critic := s.login(t, "critic@example.com")
	category := testutil.CreateCategory(t, s.db, "Print")
	work := testutil.CreateWork(t, s.db, ownerID, category.ID, "Flyer")

	// a single object is accepted where a list is expected
	resp := s.do(t, "POST", "/api/user-profile", owner, map[string]any{
		"user_descriptions": "Designer",
		"social_networks":   map[string]string{"social_network_title": "Dribbble", "link_to_social_networks": "https://dribbble.com/owner"},
		"contact_data":      []map[string]string{{"contact_title": "Phone", "contact_data": "+1 555 0100"}},
	})
	assertStatus(t, resp, fiber.StatusCreated)
	var profile services.ProfileView
	parseJSON(t, resp, &profile)
	if len(profile.SocialNetworks) != 1 || len(profile.ContactData) != 1 {
		t.Fatalf("Unexpected profile: %+v", profile)
	}

	path := fmt.Sprintf("/api/user-profile/%d", profile.ID)
	resp = s.do(t, "PUT", path, owner, map[string]any{"social_networks": []any{}})
	assertStatus(t, resp, fiber.StatusBadRequest)

	resp = s.do(t, "PATCH", path, critic, map[string]any{"user_descriptions": "mine now"})
	assertStatus(t, resp, fiber.StatusForbidden)

	resp = s.do(t, "POST", "/api/reviews", critic, map[string]any{"design": work.ID, "text": "Needs more contrast"})
	assertStatus(t, resp, fiber.StatusNotFound)

	criticProfile := s.do(t, "POST", "/api/user-profile", critic, map[string]any{"user_descriptions": "Critic"})
	assertStatus(t, criticProfile, fiber.StatusCreated)

	resp = s.do(t, "POST", "/api/reviews", critic, map[string]any{"design": fmt.Sprint(work.ID), "text": "Needs more contrast"})
	assertStatus(t, resp, fiber.StatusCreated)
	var review map[string]any
	parseJSON(t, resp, &review)

	resp = s.do(t, "GET", fmt.Sprintf("/api/reviews?design=%d", work.ID), "", nil)
	assertStatus(t, resp, fiber.StatusOK)
	var reviews []map[string]any
	parseJSON(t, resp, &reviews)
	if len(reviews) != 1 {
		t.Errorf("Expected 1 review, got %d", len(reviews))
	}

	resp = s.do(t, "DELETE", fmt.Sprintf("/api/reviews/%v", review["id"]), owner, nil)
	assertStatus(t, resp, fiber.StatusForbidden)

	resp = s.do(t, "DELETE", path, owner, nil)
	assertStatus(t, resp, fiber.StatusNoContent)
}

func TestHealth(t *testing.T) {
	s := newTestServer(t, nil)
	resp := s.do(t, "GET", "/api/health", "", nil)
	assertStatus(t, resp, fiber.StatusOK)

	down := newTestServer(t, func(svc *handlers.Services) {
		svc.Health.Components = map[string]services.Pinger{
			"redis": services.PingFunc(func(context.Context) error { return errors.New("connection refused") }),
		}
	})
	resp = down.do(t, "GET", "/api/health", "", nil)
	assertStatus(t, resp, fiber.StatusServiceUnavailable)

	var result services.HealthCheckResult
	parseJSON(t, resp, &result)
	if result.Components["redis"] != "unreachable" {
		t.Errorf("Expected redis unreachable, got %+v", result.Components)
	}
}
