package handlers

import (
	"github.com/gofiber/fiber/v2"
	"github.com/localnerve/designerhub/internal/middleware"
	"github.com/localnerve/designerhub/internal/services"
)

// Services bundles what the API routes need
type Services struct {
	Auth       *services.AuthService
	Catalog    *services.CatalogService
	Engagement *services.EngagementService
	Profiles   *services.ProfileService
	Messaging  *services.MessagingService
	Reviews    *services.ReviewService
	Health     *HealthHandler

	// AuthLimiter throttles login and password reset; nil disables it
	AuthLimiter middleware.Limiter
}

// RegisterRoutes mounts every API route on the given router
func RegisterRoutes(api fiber.Router, svc Services) {
	api.Use(middleware.Authenticate(svc.Auth))

	auth := middleware.RequireAuth()
	admin := middleware.RequireAdmin()
	limit := middleware.RateLimit(svc.AuthLimiter)

	if svc.Health != nil {
		api.Get("/health", svc.Health.Health)
	}

	// Identity
	ah := &AuthHandler{Auth: svc.Auth}
	api.Post("/register", ah.Register)
	api.Post("/login", limit, ah.Login)
	api.Post("/token/refresh", ah.Refresh)
	api.Post("/password-reset", limit, ah.PasswordReset)
	api.Post("/password-reset-confirm", limit, ah.PasswordResetConfirm)
	api.Get("/me", auth, ah.Me)

	// Catalog
	ch := &CatalogHandler{Catalog: svc.Catalog}
	api.Get("/categories", ch.ListCategories)
	api.Post("/categories", admin, ch.CreateCategory)
	api.Get("/designes", ch.ListWorks)
	api.Post("/designes", auth, ch.CreateWork)
	api.Get("/designes/:id", auth, ch.GetWork)
	api.Put("/designes/:id", auth, ch.ReplaceWork)
	api.Patch("/designes/:id", auth, ch.PatchWork)
	api.Delete("/designes/:id", auth, ch.DeleteWork)

	// Engagement
	for path, kind := range map[string]services.CollectionKind{
		"/favorites": services.Favorites,
		"/like":      services.Likes,
	} {
		eh := &EngagementHandler{Engagement: svc.Engagement, Kind: kind}
		group := api.Group(path, auth)
		group.Get("/", eh.List)
		group.Post("/add_design", eh.Add)
		group.Post("/remove_design", eh.Remove)
	}

	// Profiles, social links, contacts
	ph := &ProfileHandler{Profiles: svc.Profiles}
	api.Get("/user-profile", ph.ListProfiles)
	api.Post("/user-profile", auth, ph.CreateProfile)
	api.Get("/user-profile/:id", ph.GetProfile)
	api.Put("/user-profile/:id", auth, ph.UpdateProfile)
	api.Patch("/user-profile/:id", auth, ph.UpdateProfile)
	api.Delete("/user-profile/:id", auth, ph.DeleteProfile)

	social := api.Group("/cocial-accounts", auth)
	social.Get("/", ph.ListSocialLinks)
	social.Post("/", ph.CreateSocialLink)
	social.Get("/:id", ph.GetSocialLink)
	social.Put("/:id", ph.UpdateSocialLink)
	social.Patch("/:id", ph.UpdateSocialLink)
	social.Delete("/:id", ph.DeleteSocialLink)

	api.Get("/contacts", ph.ListContacts)
	api.Post("/contacts", auth, ph.CreateContact)
	api.Get("/contacts/:id", ph.GetContact)
	api.Put("/contacts/:id", auth, ph.UpdateContact)
	api.Patch("/contacts/:id", auth, ph.UpdateContact)
	api.Delete("/contacts/:id", auth, ph.DeleteContact)

	// Reviews
	rh := &ReviewHandler{Reviews: svc.Reviews}
	api.Get("/reviews", rh.List)
	api.Post("/reviews", auth, rh.Create)
	api.Get("/reviews/:id", rh.Get)
	api.Put("/reviews/:id", auth, rh.Update)
	api.Patch("/reviews/:id", auth, rh.Update)
	api.Delete("/reviews/:id", auth, rh.Delete)

	// Messaging
	mh := &MessagingHandler{Messaging: svc.Messaging}
	chat := api.Group("/chat", auth)
	chat.Get("/", mh.ListChats)
	chat.Post("/", mh.CreateChat)
	chat.Get("/:id", mh.GetChat)

	messages := api.Group("/messages", auth)
	messages.Get("/", mh.ListMessages)
	messages.Post("/", mh.PostMessage)
	messages.Get("/:id", mh.GetMessage)
}
