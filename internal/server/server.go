package server

import (
	"strings"

	"github.com/gofiber/fiber/v2"
	"github.com/gofiber/fiber/v2/middleware/cors"
	"github.com/gofiber/fiber/v2/middleware/logger"
	"github.com/gofiber/fiber/v2/middleware/recover"
	"github.com/redis/go-redis/v9"
	"go.uber.org/zap"
	"gorm.io/gorm"

	"realty_backend/internal/controller"
	"realty_backend/internal/middleware"
	"realty_backend/internal/model"
	"realty_backend/internal/repository"
	"realty_backend/internal/service"
	"realty_backend/pkg/config"
	"realty_backend/pkg/email"
	"realty_backend/pkg/media"
	"realty_backend/pkg/utils/jwt"
	"realty_backend/pkg/utils/validation"
)

// Deps are the collaborators the HTTP app is built from. Redis is optional.
type Deps struct {
	Config   *config.Config
	DB       *gorm.DB
	Media    media.Store
	Notifier email.Notifier
	Redis    *redis.Client
	Logger   *zap.Logger
}

// bodyLimit leaves room for a full set of photos plus form fields.
const bodyLimit = validation.MaxImages*validation.MaxImageSize + 4*1024*1024

func NewApp(deps Deps) (*fiber.App, error) {
	cfg := deps.Config
	log := deps.Logger

	tokens, err := jwt.NewManager(cfg.JWT.Secret, cfg.JWT.ExpiresIn)
	if err != nil {
		return nil, err
	}

	users := repository.NewUserRepository(deps.DB)
	listings := repository.NewListingRepository(deps.DB)
	leads := repository.NewLeadRepository(deps.DB)

	authService := service.NewAuthService(users, tokens, log)
	listingService := service.NewListingService(listings, deps.Media, log)
	leadService := service.NewLeadService(leads, listings, deps.Notifier, log)
	adminService := service.NewAdminService(users, listings, log)

	app := fiber.New(fiber.Config{
		AppName:      "realty-backend",
		BodyLimit:    bodyLimit,
		ErrorHandler: middleware.ErrorHandler(log),
	})

	app.Use(recover.New())
	app.Use(logger.New())
	app.Use(cors.New(cors.Config{
		AllowOrigins:     strings.Join(cfg.Server.CORSAllowedOrigins, ","),
		AllowCredentials: true,
		AllowHeaders:     "Origin, Content-Type, Accept, Authorization",
		AllowMethods:     "GET,POST,PATCH,DELETE,OPTIONS",
	}))

	if cfg.Media.Driver == config.MediaDriverLocal {
		app.Static(cfg.Media.LocalURL, cfg.Media.LocalDir)
	}

	app.Get("/health", func(c *fiber.Ctx) error {
		return c.JSON(fiber.Map{"status": "ok"})
	})

	setupRoutes(app, routeHandlers{
		auth:     controller.NewAuthController(authService),
		listings: controller.NewListingController(listingService),
		stats:    controller.NewStatsController(listingService),
		leads:    controller.NewLeadController(leadService),
		admin:    controller.NewAdminController(adminService),
		protect:  middleware.AuthMiddleware(authService),
		leadLimit: middleware.RateLimiter(deps.Redis, middleware.RateLimitConfig{
			Limit:     cfg.Leads.RateLimit,
			Window:    cfg.Leads.RateWindow,
			Block:     cfg.Leads.RateBlock,
			KeyPrefix: "rl:leads",
		}, log),
	})

	return app, nil
}

type routeHandlers struct {
	auth      *controller.AuthController
	listings  *controller.ListingController
	stats     *controller.StatsController
	leads     *controller.LeadController
	admin     *controller.AdminController
	protect   fiber.Handler
	leadLimit fiber.Handler
}

func setupRoutes(app *fiber.App, h routeHandlers) {
	api := app.Group("/api")
	managers := middleware.RestrictTo(model.RoleAgent, model.RoleAdmin)

	// Auth Routes
	auth := api.Group("/auth")
	auth.Post("/signup", h.auth.Signup)
	auth.Post("/login", h.auth.Login)
	auth.Get("/me", h.protect, h.auth.GetMe)

	// Listing Routes
	listings := api.Group("/listings")
	listings.Get("/", h.listings.GetAllListings)
	listings.Get("/agent/my-listings", h.protect, managers, h.listings.GetMyListings)
	listings.Get("/agent/stats", h.protect, managers, h.stats.GetDashboardStats)
	listings.Get("/:id", h.listings.GetListing)
	listings.Post("/", h.protect, managers, h.listings.CreateListing)
	listings.Patch("/:id", h.protect, managers, h.listings.UpdateListing)
	listings.Delete("/:id", h.protect, managers, h.listings.DeleteListing)

	// Lead Routes
	leads := api.Group("/leads")
	leads.Post("/", h.leadLimit, h.leads.CreateLead)
	leads.Get("/mylistings", h.protect, middleware.RestrictTo(model.RoleAgent), h.leads.GetMyLeads)
	leads.Patch("/:id", h.protect, managers, h.leads.UpdateLeadStatus)

	// Admin Routes
	admin := api.Group("/admin", h.protect, middleware.RestrictTo(model.RoleAdmin))
	admin.Get("/users", h.admin.ListUsers)
	admin.Patch("/users/:id/role", h.admin.UpdateUserRole)
	admin.Get("/listings", h.admin.ListListings)
}
