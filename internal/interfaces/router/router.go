package router

import (
	"context"
	"fmt"

	authsvc "realty-backend/internal/application/auth"
	healthsvc "realty-backend/internal/application/health"
	imagesvc "realty-backend/internal/application/images"
	listsvc "realty-backend/internal/application/listings"
	purchasesvc "realty-backend/internal/application/purchases"
	uploadsvc "realty-backend/internal/application/uploads"
	usersvc "realty-backend/internal/application/user"
	wishsvc "realty-backend/internal/application/wishlist"
	"realty-backend/internal/config"
	"realty-backend/internal/infrastructure/database"
	"realty-backend/internal/infrastructure/storage"
	"realty-backend/internal/infrastructure/storage/local"
	authhandler "realty-backend/internal/interfaces/handlers/auth"
	healthhandler "realty-backend/internal/interfaces/handlers/health"
	listhandler "realty-backend/internal/interfaces/handlers/listings"
	purchasehandler "realty-backend/internal/interfaces/handlers/purchases"
	uploadhandler "realty-backend/internal/interfaces/handlers/uploads"
	userhandler "realty-backend/internal/interfaces/handlers/user"
	wishhandler "realty-backend/internal/interfaces/handlers/wishlist"
	"realty-backend/internal/middleware"

	"github.com/gofiber/fiber/v2"
	"github.com/gofiber/fiber/v2/middleware/filesystem"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	"github.com/redis/go-redis/v9"
	"github.com/rs/zerolog/log"
	"gorm.io/gorm"
)

// bodyLimitSlack covers the text fields of a listing form on top of its images.
const bodyLimitSlack = 1 << 20

// CreateApp wires storage, services and routes. The caller owns the returned
// DB and Redis client.
func CreateApp(cfg *config.Config) (*fiber.App, *gorm.DB, *redis.Client, error) {
	db, err := database.Open(cfg.DatabaseURL)
	if err != nil {
		return nil, nil, nil, fmt.Errorf("database: %w", err)
	}
	if err := database.AutoMigrate(db); err != nil {
		closeDB(db)
		return nil, nil, nil, fmt.Errorf("migrate: %w", err)
	}

	opt, err := redis.ParseURL(cfg.RedisURL)
	if err != nil {
		closeDB(db)
		return nil, nil, nil, fmt.Errorf("redis url: %w", err)
	}
	rdb := redis.NewClient(opt)

	store, err := storage.Open(context.Background(), cfg)
	if err != nil {
		_ = rdb.Close()
		closeDB(db)
		return nil, nil, nil, err
	}
	log.Info().Str("backend", store.Backend()).Msg("storage: ready")

	maxImage := cfg.MaxImageBytes
	if maxImage <= 0 {
		maxImage = imagesvc.DefaultMaxBytes
	}
	app := fiber.New(fiber.Config{
		DisableStartupMessage:   true,
		ErrorHandler:            middleware.ErrorHandler,
		EnableTrustedProxyCheck: true,
		BodyLimit:               int(maxImage)*(imagesvc.MaxAdditional+1) + bodyLimitSlack,
	})

	reg := prometheus.NewRegistry()
	reg.MustRegister(collectors.NewGoCollector(), collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}))
	httpMetrics := middleware.NewHTTPMetrics(reg)

	sessionCfg := middleware.SessionConfig{
		Secret:       cfg.SessionSecret,
		CrossSite:    cfg.CookieCrossSite,
		IsProduction: cfg.IsProduction(),
	}

	app.Use(middleware.Tracing())
	app.Use(middleware.RouteLogger())
	app.Use(middleware.CORS(middleware.CORSConfig{
		AllowedOrigins: cfg.FrontendOrigins,
		AllowLocalhost: !cfg.IsProduction(),
	}))
	app.Use(httpMetrics.Handler())
	app.Use(middleware.HealthMarker(rdb))
	app.Use(middleware.Session(sessionCfg, rdb))

	// Health
	hh := &healthhandler.Handlers{
		Deps: healthsvc.Dependencies{
			Redis:    rdb,
			Database: healthsvc.GormPinger{DB: db},
			Storage:  store,
		},
		HealthAdminKey: cfg.HealthAdminKey,
	}
	app.Get("/health", hh.Dashboard)
	app.Get("/health/json", hh.JSON)
	app.Get("/health/errors", hh.Errors)
	app.Get("/health/reset", hh.Reset)
	app.Get("/metrics", middleware.MetricsEndpoint(reg))

	// Images served from disk when stored locally.
	if ls, ok := store.(*local.Store); ok {
		app.Use(cfg.UploadURLPrefix, filesystem.New(filesystem.Config{
			Root:   ls.HTTPFS(),
			MaxAge: 86400,
		}))
	}

	api := app.Group("/api")

	// Listings
	listings := &listsvc.Service{DB: db}
	lh := &listhandler.Handlers{
		Service: listings,
		Images:  &imagesvc.Service{Store: store, MaxBytes: maxImage},
	}
	api.Post("/listings", lh.CreateListing)
	api.Get("/listings", lh.GetListings)
	api.Get("/listings/:id", lh.GetListingByID)
	api.Get("/properties", lh.GetProperties)

	// Accounts
	uh := &userhandler.Handlers{Service: &usersvc.Service{DB: db}}
	api.Post("/register", uh.Register)
	ah := &authhandler.Handlers{
		UserFinder: &authsvc.GormUserFinder{DB: db},
		Rdb:        rdb,
		Config:     sessionCfg,
	}
	api.Post("/login", ah.Login)
	api.Get("/me", ah.Me)
	api.Delete("/logout", ah.Logout)

	// Wishlist
	wh := &wishhandler.Handlers{Service: &wishsvc.Service{DB: db, Listings: listings}}
	wg := api.Group("/wishlist", middleware.RequireAuth())
	wg.Post("/", wh.Add)
	wg.Delete("/", wh.Remove)
	wg.Get("/", wh.List)
	wg.Get("/:userId", wh.List)

	// Direct uploads
	var presigner uploadsvc.Presigner
	if p, ok := store.(storage.Presigner); ok {
		presigner = p
	}
	uph := &uploadhandler.Handlers{Service: &uploadsvc.Service{Presigner: presigner, TTL: cfg.PresignTTL}}
	api.Post("/upload-url", uph.GetUploadURL)

	// Deposit requests
	ph := &purchasehandler.Handlers{Service: &purchasesvc.Service{DB: db, Listings: listings}}
	pg := api.Group("/purchases", middleware.RequireAuth())
	pg.Post("/", ph.Submit)
	pg.Get("/", ph.List)

	return app, db, rdb, nil
}

// closeDB releases the SQL pool when startup fails after the DB was opened.
var closeDB = func(db *gorm.DB) {
	sqlDB, err := db.DB()
	if err != nil {
		return
	}
	if err := sqlDB.Close(); err != nil {
		log.Warn().Err(err).Msg("database: close failed")
	}
}
