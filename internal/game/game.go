// Package game assembles the diorama: frame loop, camera, animation
// manager, bookmark tour and the viewer endpoint.
package game

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"time"

	"go.uber.org/zap"
	"golang.org/x/sync/errgroup"

	"github.com/Faultbox/offshore-diorama/internal/config"
	"github.com/Faultbox/offshore-diorama/internal/engine/animation"
	"github.com/Faultbox/offshore-diorama/internal/engine/camera"
	"github.com/Faultbox/offshore-diorama/internal/engine/frame"
	"github.com/Faultbox/offshore-diorama/internal/engine/scene"
	"github.com/Faultbox/offshore-diorama/internal/game/bookmark"
	"github.com/Faultbox/offshore-diorama/internal/network"
)

// Entity ids published to viewers.
const (
	BoatID      = "boat"
	PinpointID  = "pinpoint"
	SubmarineID = "submarine"
)

const shutdownTimeout = 5 * time.Second

// Game is the running diorama.
type Game struct {
	cfg *config.Config
	log *zap.Logger

	sched   *frame.Scheduler
	hub     *network.Hub
	camera  *camera.Flyer
	manager *animation.Manager
	tour    *bookmark.Tour
	server  *http.Server

	boat      *network.RemoteMesh
	pinpoint  *network.RemoteMesh
	submarine *network.RemoteMesh
	turbines  []*network.RemoteMesh
}

// New wires the diorama from cfg. Nothing runs until Run.
func New(cfg *config.Config, log *zap.Logger) (*Game, error) {
	if log == nil {
		log = zap.NewNop()
	}
	log.Info("initializing diorama",
		zap.String("addr", cfg.Server.Addr),
		zap.Int("fps", cfg.Server.FPS),
		zap.Int("bookmarks", len(cfg.Bookmarks)),
	)

	g := &Game{
		cfg:   cfg,
		log:   log,
		sched: frame.NewScheduler(log.Named("frame")),
		hub:   network.NewHub(nil, log.Named("hub")),
	}

	g.camera = camera.NewFlyer(g.sched, cfg.Camera.Initial, log.Named("camera"))
	g.camera.BaseDuration = cfg.Camera.BaseDuration
	g.camera.Watch(g.hub.CameraSink())

	var err error
	g.manager, err = animation.New(g.sched, g.camera,
		animation.WithParams(cfg.Animation),
		animation.WithLogger(log.Named("animation")),
	)
	if err != nil {
		return nil, fmt.Errorf("failed to create animation manager: %w", err)
	}

	g.boat = network.NewRemoteMesh(BoatID, g.hub)
	g.pinpoint = network.NewRemoteMesh(PinpointID, g.hub)
	g.submarine = network.NewRemoteMesh(SubmarineID, g.hub)

	turbines := make([]scene.Entity, 0, len(cfg.Assets.Turbines))
	for _, t := range cfg.Assets.Turbines {
		m := network.NewRemoteMesh(t.ID, g.hub)
		m.SetAttribute(cfg.Animation.Turbine.SpeedAttribute, t.WindSpeed)
		g.turbines = append(g.turbines, m)
		turbines = append(turbines, m)
	}

	route, err := cfg.Route.RoutePoints()
	if err != nil {
		return nil, fmt.Errorf("failed to load submarine route: %w", err)
	}
	if err := g.manager.SetupSubmarine(route, g.submarine); err != nil {
		return nil, err
	}

	if err := g.manager.FollowCameraHeading(g.pinpoint); err != nil {
		return nil, err
	}

	g.tour, err = bookmark.NewTour(cfg.Bookmarks, g.manager, bookmark.Targets{
		Boat:     g.boat,
		Pinpoint: g.pinpoint,
		Turbines: turbines,
	}, log.Named("tour"))
	if err != nil {
		return nil, fmt.Errorf("failed to create tour: %w", err)
	}
	g.tour.OnSelect(func(b bookmark.Bookmark) {
		g.hub.PublishBookmark(b.ID, b.Name, true)
	})
	g.hub.SetHandler(g.tour)

	mux := http.NewServeMux()
	mux.Handle(cfg.Server.WSPath, g.hub)
	mux.HandleFunc("/healthz", func(w http.ResponseWriter, _ *http.Request) {
		w.WriteHeader(http.StatusOK)
	})
	g.server = &http.Server{
		Addr:              cfg.Server.Addr,
		Handler:           mux,
		ReadHeaderTimeout: 10 * time.Second,
	}

	log.Info("diorama initialized successfully")
	return g, nil
}

// Manager returns the animation manager.
func (g *Game) Manager() *animation.Manager { return g.manager }

// Tour returns the bookmark tour.
func (g *Game) Tour() *bookmark.Tour { return g.tour }

// Run selects the first bookmark and serves until ctx is cancelled.
func (g *Game) Run(ctx context.Context) error {
	eg, ctx := errgroup.WithContext(ctx)

	eg.Go(func() error {
		err := g.sched.Run(ctx, g.cfg.Server.FPS)
		if errors.Is(err, context.Canceled) {
			return nil
		}
		return err
	})

	eg.Go(func() error {
		g.log.Info("serving viewers", zap.String("addr", g.server.Addr), zap.String("path", g.cfg.Server.WSPath))
		if err := g.server.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			return fmt.Errorf("viewer endpoint: %w", err)
		}
		return nil
	})

	eg.Go(func() error {
		<-ctx.Done()
		g.manager.StopAll()
		g.hub.Close()
		shutdownCtx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
		defer cancel()
		return g.server.Shutdown(shutdownCtx)
	})

	if err := g.tour.Select(ctx, g.cfg.Bookmarks[0].ID); err != nil {
		g.log.Warn("initial bookmark failed", zap.Error(err))
	}

	return eg.Wait()
}

// Close releases resources held outside Run.
func (g *Game) Close() {
	if err := g.manager.Close(); err != nil {
		g.log.Warn("closing animation manager", zap.Error(err))
	}
	g.hub.Close()
	g.tour.Wait()
	g.log.Info("diorama closed", zap.Uint64("frames", g.sched.Frames()))
}
