package app

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"skill-catalog/internal/delivery/http/handler"
	"skill-catalog/internal/delivery/http/middleware"
	"skill-catalog/internal/delivery/http/routes"
	v1 "skill-catalog/internal/delivery/http/routes/v1"
	"skill-catalog/internal/ws"

	"github.com/gofiber/fiber/v3"
	"golang.org/x/sync/errgroup"
)

type App struct {
	Fiber     *fiber.App
	container *Container
}

func New(c *Container) *App {
	f := fiber.New(fiber.Config{AppName: c.Config.App.AppName})

	registerGlobalMiddleware(f, c)
	registerRoutes(f, c)

	return &App{Fiber: f, container: c}
}

func registerGlobalMiddleware(app *fiber.App, c *Container) {
	if app == nil {
		return
	}

	accessMw := middleware.NewAccessLogMiddleware(c.Logger)
	errMw := middleware.NewErrorMiddleware(c.Logger)
	app.Use(accessMw.Middleware())
	app.Use(errMw.Middleware())
}

func registerRoutes(app *fiber.App, c *Container) {
	if app == nil {
		return
	}

	var redis handler.Pinger
	if c.Redis.Available() {
		redis = c.Redis
	}
	authMw := middleware.NewAuthMiddleware(c.JWT, c.Config.JWT.AuthDisabled)

	routes.NewRegistry(
		handler.NewHealthHandler(c.DB, redis),
		ws.NewHandler(c.Hub, c.Logger),
		authMw.Middleware(),
		v1.Handlers{
			Catalog:       handler.NewCatalogHandler(c.Catalog, c.Validator),
			Import:        handler.NewImportHandler(c.Imports),
			Finalization:  handler.NewFinalizationHandler(c.Finalization),
			ProjectSkills: handler.NewProjectSkillHandler(c.Exports, c.Imports, c.Refresh),
		},
	).Register(app)
}

// Serve runs the HTTP server and the realtime plumbing until ctx is done.
// With workers set the finalization workers run in the same process.
func (a *App) Serve(ctx context.Context, addr string, workers bool) error {
	c := a.container
	c.configureDispatch(workers)
	g, gctx := errgroup.WithContext(ctx)

	g.Go(func() error {
		c.Hub.Run(gctx.Done())
		return nil
	})
	g.Go(func() error {
		if err := c.Bus.StartForwarder(gctx); err != nil && !errors.Is(err, context.Canceled) {
			c.Logger.Warn("event forwarder stopped", "error", err)
		}
		return nil
	})
	if workers {
		g.Go(func() error {
			return c.Finalizer.Run(gctx)
		})
	}
	g.Go(func() error {
		c.Logger.Info("http listening", "addr", addr)
		return a.Fiber.Listen(addr, fiber.ListenConfig{DisableStartupMessage: true})
	})
	g.Go(func() error {
		<-gctx.Done()
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
		defer cancel()
		return a.Fiber.ShutdownWithContext(shutdownCtx)
	})

	err := g.Wait()
	if errors.Is(err, context.Canceled) {
		return nil
	}
	return err
}

func ListenAddr(port string) (string, error) {
	p := strings.TrimSpace(port)
	if p == "" {
		return "", fmt.Errorf("empty HTTP port")
	}
	if strings.HasPrefix(p, ":") {
		return p, nil
	}
	return ":" + p, nil
}

// RunWorkers runs only the finalization workers until ctx is done. Events go
// out through the bus, so serving instances still relay them to websockets.
func RunWorkers(ctx context.Context, c *Container) error {
	if !c.Redis.Available() {
		c.Logger.Warn("redis unavailable: this worker only sees jobs recovered by its sweeper")
	}
	err := c.Finalizer.Run(ctx)
	if errors.Is(err, context.Canceled) {
		return nil
	}
	return err
}
