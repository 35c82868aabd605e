package router

import (
	"net/http"

	impsvc "ahu-backend/internal/application/importer"
	oppsvc "ahu-backend/internal/application/opportunities"
	"ahu-backend/internal/config"
	"ahu-backend/internal/infrastructure/database"
	healthhandler "ahu-backend/internal/interfaces/handlers/health"
	importhandler "ahu-backend/internal/interfaces/handlers/imports"
	opphandler "ahu-backend/internal/interfaces/handlers/opportunities"
	unlockhandler "ahu-backend/internal/interfaces/handlers/unlock"
	"ahu-backend/internal/middleware"

	"github.com/gofiber/fiber/v2"
	"github.com/gofiber/fiber/v2/middleware/adaptor"
	"gorm.io/gorm"
)

type gormDBPinger struct {
	db *gorm.DB
}

func (g *gormDBPinger) Ping() error {
	if g == nil || g.db == nil {
		return nil
	}
	sqlDB, err := g.db.DB()
	if err != nil {
		return err
	}
	return sqlDB.Ping()
}

func CreateApp(cfg *config.Config) (*fiber.App, *gorm.DB, error) {
	app := fiber.New(fiber.Config{
		DisableStartupMessage:   true,
		ErrorHandler:            middleware.ErrorHandler,
		EnableTrustedProxyCheck: true,
	})

	gate := middleware.GateConfig{
		Password:     cfg.AppPassword,
		IsProduction: cfg.Env == "production",
	}

	app.Use(middleware.CORS(middleware.CORSConfig{
		AllowedSuffix: cfg.FrontendURLEndsWith,
		DevPassword:   cfg.DevPassword,
	}))
	app.Use(middleware.AccessGate(gate))
	app.Use(middleware.Tracing())
	app.Use(middleware.RouteLogger())

	hh := &healthhandler.Handlers{}
	app.Get("/health/json", hh.JSON)

	uh := &unlockhandler.Handlers{Gate: gate}
	app.Post("/api/unlock", uh.Unlock)

	var db *gorm.DB
	if cfg.DatabaseURL != "" {
		var errDB error
		db, errDB = database.Open(cfg.DatabaseURL)
		if errDB != nil {
			return nil, nil, errDB
		}
		hh.DB = &gormDBPinger{db: db}
	}

	if db != nil {
		os := &oppsvc.Service{DB: db}
		oh := &opphandler.Handlers{Service: os}
		og := app.Group("/api/v1/opportunities")
		og.Get("/", oh.List)
		og.Post("/", oh.Create)
		og.Get("/:id", oh.Get)
		og.Put("/:id", oh.Update)
		og.Patch("/:id", oh.Patch)
		og.Delete("/:id", oh.Delete)

		is := &impsvc.Service{DB: db}
		ih := &importhandler.Handlers{Service: is}
		ig := app.Group("/api/v1/import")
		ig.Post("/", ih.Upload)
		ig.Get("/runs", ih.Runs)
	}

	return app, db, nil
}

func Handler(app *fiber.App) http.Handler {
	return adaptor.FiberApp(app)
}
