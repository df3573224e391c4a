// Package web exposes the pi-assistant control surface: device
// registration, remote playback control, pipeline runs and a WebSocket
// event stream.
package web

import (
	"context"
	"log/slog"
	"sync"
	"time"

	"github.com/gofiber/contrib/websocket"
	"github.com/gofiber/fiber/v2"

	"github.com/mKenfenheuer/pi-assistant/internal/entries"
	"github.com/mKenfenheuer/pi-assistant/internal/log"
	"github.com/mKenfenheuer/pi-assistant/pkg/assist"
	"github.com/mKenfenheuer/pi-assistant/pkg/device"
	"github.com/mKenfenheuer/pi-assistant/pkg/media"
)

// Server is the HTTP/WebSocket control surface.
type Server struct {
	app      *fiber.App
	store    *entries.Store
	source   assist.Source
	selector *assist.Selector
	resolver media.Resolver
	hub      *eventHub
	log      *slog.Logger

	mu      sync.RWMutex
	players map[string]*device.Player // keyed by entry ID
}

// NewServer wires the control surface. resolver may be nil.
func NewServer(store *entries.Store, source assist.Source, selector *assist.Selector, resolver media.Resolver) *Server {
	s := &Server{
		store:    store,
		source:   source,
		selector: selector,
		resolver: resolver,
		hub:      newEventHub(),
		log:      log.Component("web"),
		players:  make(map[string]*device.Player),
	}

	app := fiber.New(fiber.Config{
		AppName:               "pi-assistant",
		DisableStartupMessage: true,
	})

	api := app.Group("/api")
	api.Get("/entries", s.handleListEntries)
	api.Post("/entries", s.handleCreateEntry)
	api.Put("/entries/:id", s.handleReconfigureEntry)
	api.Delete("/entries/:id", s.handleRemoveEntry)

	api.Get("/players/:id/state", s.handlePlayerState)
	api.Post("/players/:id/command/:command", s.handlePlayerCommand)

	api.Post("/assist/:id/run", s.handleAssistRun)

	app.Use("/ws", func(c *fiber.Ctx) error {
		if websocket.IsWebSocketUpgrade(c) {
			return c.Next()
		}
		return fiber.ErrUpgradeRequired
	})
	app.Get("/ws/assist", websocket.New(func(conn *websocket.Conn) {
		s.hub.Serve(conn)
	}))

	s.app = app

	// Rebuild proxies for entries registered before this server.
	for _, entry := range store.List() {
		s.registerPlayer(entry)
	}

	return s
}

// App returns the underlying fiber app, mainly for tests.
func (s *Server) App() *fiber.App { return s.app }

// Listen serves on addr until Shutdown is called.
func (s *Server) Listen(addr string) error {
	s.log.Info("listening", "addr", addr)
	return s.app.Listen(addr)
}

// Shutdown stops the server gracefully.
func (s *Server) Shutdown() error {
	return s.app.Shutdown()
}

// PollStates refreshes every registered player's device state on the
// given interval until ctx is cancelled.
func (s *Server) PollStates(ctx context.Context, every time.Duration) {
	ticker := time.NewTicker(every)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			for _, player := range s.snapshotPlayers() {
				player.RefreshState()
			}
		}
	}
}

func (s *Server) registerPlayer(entry entries.Entry) *device.Player {
	player := device.NewPlayer(entry.Hostname, s.resolver)

	s.mu.Lock()
	s.players[entry.ID] = player
	s.mu.Unlock()
	return player
}

func (s *Server) unregisterPlayer(entryID string) {
	s.mu.Lock()
	delete(s.players, entryID)
	s.mu.Unlock()
}

func (s *Server) player(entryID string) (*device.Player, bool) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	player, ok := s.players[entryID]
	return player, ok
}

func (s *Server) snapshotPlayers() []*device.Player {
	s.mu.RLock()
	defer s.mu.RUnlock()
	out := make([]*device.Player, 0, len(s.players))
	for _, p := range s.players {
		out = append(out, p)
	}
	return out
}
