package apiapp

import (
	"github.com/go-chi/chi/v5"
	"go.uber.org/zap"

	"github.com/nkoval/vitrine/internal/config"
	analyticsvc "github.com/nkoval/vitrine/internal/services/analytics"
	authsvc "github.com/nkoval/vitrine/internal/services/auth"
	listingssvc "github.com/nkoval/vitrine/internal/services/listings"
	mediasvc "github.com/nkoval/vitrine/internal/services/media"
	membershipsvc "github.com/nkoval/vitrine/internal/services/membership"
	modsvc "github.com/nkoval/vitrine/internal/services/moderation"
	rolessvc "github.com/nkoval/vitrine/internal/services/roles"
	userssvc "github.com/nkoval/vitrine/internal/services/users"
	"github.com/nkoval/vitrine/internal/transport/http/handlers"
)

type Dependencies struct {
	AuthService       *authsvc.Service
	RoleService       *rolessvc.Service
	ListingService    *listingssvc.Service
	MediaService      *mediasvc.Service
	MembershipService *membershipsvc.Service
	ModerationService *modsvc.Service
	UserService       *userssvc.Service
	AnalyticsService  *analyticsvc.Service
	Logger            *zap.Logger
	Config            config.Config
}

func RegisterRoutes(r chi.Router, deps Dependencies) {
	authHandler := handlers.NewAuthHandler(deps.AuthService)
	roleHandler := handlers.NewRoleHandler(deps.RoleService)
	listingHandler := handlers.NewListingHandler(deps.ListingService)
	mediaHandler := handlers.NewMediaHandler(deps.MediaService, deps.ListingService)
	membershipHandler := handlers.NewMembershipHandler(deps.MembershipService)
	moderationHandler := handlers.NewModerationHandler(deps.ModerationService)
	adminHandler := handlers.NewAdminHandler(deps.UserService)
	eventsHandler := handlers.NewEventsHandler(deps.AnalyticsService)
	configHandler := handlers.NewConfigHandler(deps.Config.Gate.AgeGateEnabled)
	healthHandler := handlers.NewHealthHandler()

	authMW := AuthMiddleware(deps.AuthService, deps.Logger)
	optionalAuthMW := OptionalAuthMiddleware(deps.AuthService)
	adminMW := RequireRole("ADMIN")
	ageGateMW := AgeGateMiddleware(deps.Config.Gate.AgeGateEnabled)

	r.Get("/healthz", healthHandler.Get)
	r.Get("/config", configHandler.Client)

	r.Route("/auth", func(r chi.Router) {
		r.Post("/register", authHandler.Register)
		r.Post("/login", authHandler.Login)
		r.Post("/refresh", authHandler.Refresh)
		r.With(authMW).Post("/logout", authHandler.Logout)
		r.With(authMW).Post("/logout_all", authHandler.LogoutAll)
	})

	r.Route("/role", func(r chi.Router) {
		r.Put("/", roleHandler.Select)
		r.Get("/", roleHandler.Get)
		r.Delete("/", roleHandler.Clear)
	})

	// Public catalog. Identity is optional: the same routes serve guests and
	// members, the tier decides what they see.
	r.Route("/listings", func(r chi.Router) {
		r.Use(ageGateMW)
		r.With(optionalAuthMW).Get("/", listingHandler.Browse)
		r.With(optionalAuthMW).Get("/{listingID}", listingHandler.View)
		r.With(authMW).Post("/{listingID}/contact/reveal", listingHandler.Reveal)
	})

	// Owner side.
	r.Route("/my/listings", func(r chi.Router) {
		r.Use(authMW)
		r.Get("/", listingHandler.ListOwn)
		r.Post("/", listingHandler.Create)
		r.Put("/{listingID}", listingHandler.Update)
		r.Post("/{listingID}/suspend", listingHandler.Suspend)
		r.Post("/{listingID}/media/{kind}", mediaHandler.Upload)
		r.Get("/{listingID}/media", mediaHandler.List)
		r.Delete("/{listingID}/media/{assetID}", mediaHandler.Delete)
	})

	r.With(authMW).Get("/me/membership", membershipHandler.Me)

	r.Route("/moderation", func(r chi.Router) {
		r.Use(authMW, adminMW)
		r.Get("/queue/next", moderationHandler.Next)
		r.Post("/listings/{listingID}/approve", moderationHandler.Approve)
		r.Post("/listings/{listingID}/reject", moderationHandler.Reject)
		r.Get("/reject-reasons", moderationHandler.Reasons)
	})

	r.Route("/admin", func(r chi.Router) {
		r.Use(authMW, adminMW)
		r.Get("/stats", adminHandler.Stats)
		r.Get("/users/lookup", adminHandler.Lookup)
		r.Post("/users/{userID}/ban", adminHandler.Ban)
		r.Post("/users/{userID}/unban", adminHandler.Unban)
		r.Post("/users/{userID}/vip", adminHandler.GrantVIP)
	})

	r.With(optionalAuthMW).Post("/events/batch", eventsHandler.Batch)
}
