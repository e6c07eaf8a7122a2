package api

import (
	"context"
	"log/slog"
	"time"

	"github.com/gofiber/fiber/v2"
	"github.com/gofiber/fiber/v2/middleware/cors"
	"github.com/gofiber/fiber/v2/middleware/requestid"

	swagger "github.com/go-swagno/swagno-fiber/swagger"
	"github.com/saturnino-fabrica-de-software/rekko-enroll/internal/api/docs"
	"github.com/saturnino-fabrica-de-software/rekko-enroll/internal/api/handler"
	"github.com/saturnino-fabrica-de-software/rekko-enroll/internal/api/middleware"
	"github.com/saturnino-fabrica-de-software/rekko-enroll/internal/audit"
	"github.com/saturnino-fabrica-de-software/rekko-enroll/internal/ws"
)

type Dependencies struct {
	Station handler.Station
	// Hub carries live station events; the router runs it
	Hub       *ws.Hub
	Readiness []handler.ReadinessCheck
}

// Router serves the operator API of one enrollment station
type Router struct {
	app       *fiber.App
	logger    *slog.Logger
	deps      *Dependencies
	cancelHub context.CancelFunc
}

func NewRouter(logger *slog.Logger, deps *Dependencies) *Router {
	return &Router{
		app:    newApp("Rekko Enrollment Station", logger),
		logger: logger,
		deps:   deps,
	}
}

func newApp(name string, logger *slog.Logger) *fiber.App {
	app := fiber.New(fiber.Config{
		ErrorHandler: middleware.ErrorHandler(logger),
		AppName:      name,
		UnescapePath: true,
	})

	app.Use(requestid.New())
	app.Use(middleware.Recover(logger))
	app.Use(middleware.Logger(logger))
	app.Use(cors.New(cors.Config{
		AllowOrigins: "*",
		AllowMethods: "GET,POST,PUT,DELETE,OPTIONS",
		AllowHeaders: "Origin,Content-Type,Accept",
	}))

	return app
}

func (r *Router) Setup() {
	sw := docs.NewSwagger()
	swagger.SwaggerHandler(r.app, sw.MustToJson())

	var checks []handler.ReadinessCheck
	if r.deps != nil {
		checks = r.deps.Readiness
	}
	healthHandler := handler.NewHealthHandler(r.logger, checks...)
	r.app.Get("/health", healthHandler.Health)
	r.app.Get("/ready", healthHandler.Ready)

	if r.deps == nil || r.deps.Station == nil {
		return
	}

	v1 := r.app.Group("/v1")

	stationHandler := handler.NewStationHandler(r.deps.Station, r.logger)
	v1.Get("/state", stationHandler.State)
	v1.Post("/camera/start", stationHandler.StartCamera)
	v1.Post("/camera/stop", stationHandler.StopCamera)
	v1.Post("/camera/toggle", stationHandler.ToggleCamera)
	v1.Put("/identifier", stationHandler.SetIdentifier)
	v1.Post("/enrollments", stationHandler.Enroll)
	v1.Get("/faces", stationHandler.ListFaces)
	v1.Delete("/faces/:id", stationHandler.RemoveFace)

	if r.deps.Hub != nil {
		station := r.deps.Station
		r.deps.Hub.SetWelcome(func() ws.Event {
			return ws.Event{Type: ws.EventState, Data: station.Snapshot(), Timestamp: time.Now()}
		})

		hubCtx, hubCancel := context.WithCancel(context.Background())
		r.cancelHub = hubCancel
		go r.deps.Hub.Run(hubCtx)

		v1.Get("/ws", ws.UpgradeMiddleware(), ws.Handler(r.deps.Hub))
	}
}

func (r *Router) App() *fiber.App {
	return r.app
}

func (r *Router) Listen(addr string) error {
	return r.app.Listen(addr)
}

func (r *Router) Shutdown() error {
	if r.cancelHub != nil {
		r.cancelHub()
	}
	return r.app.Shutdown()
}

// RegistryRouter serves the registry wire protocol for local development
type RegistryRouter struct {
	app    *fiber.App
	logger *slog.Logger
	store   handler.FaceStore
	auditor audit.Logger
	checks  []handler.ReadinessCheck
}

// NewRegistryRouter wires the registry endpoint; a nil auditor discards events
func NewRegistryRouter(logger *slog.Logger, store handler.FaceStore, auditor audit.Logger, checks ...handler.ReadinessCheck) *RegistryRouter {
	return &RegistryRouter{
		app:     newApp("Rekko Registry", logger),
		logger:  logger,
		store:   store,
		auditor: auditor,
		checks:  checks,
	}
}

func (r *RegistryRouter) Setup() {
	healthHandler := handler.NewHealthHandler(r.logger, r.checks...)
	r.app.Get("/health", healthHandler.Health)
	r.app.Get("/ready", healthHandler.Ready)

	registryHandler := handler.NewRegistryHandler(r.store, r.auditor, r.logger)
	r.app.Post("/registry", registryHandler.Handle)
}

func (r *RegistryRouter) App() *fiber.App {
	return r.app
}

func (r *RegistryRouter) Listen(addr string) error {
	return r.app.Listen(addr)
}

func (r *RegistryRouter) Shutdown() error {
	return r.app.Shutdown()
}
